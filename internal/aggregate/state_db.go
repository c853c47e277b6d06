package aggregate

import (
	"context"
	"time"
)

// StateBackend is a named state table, such as indexer_state in Postgres.
type StateBackend interface {
	LoadState(ctx context.Context, name string) (time.Time, bool, error)
	SaveState(ctx context.Context, name string, ts time.Time) error
}

// DBStateStore stores state under Name in a StateBackend.
type DBStateStore struct {
	Backend StateBackend
	Name    string
}

func (s *DBStateStore) Load(ctx context.Context) (time.Time, bool, error) {
	if s == nil || s.Backend == nil {
		return time.Time{}, false, nil
	}
	return s.Backend.LoadState(ctx, s.Name)
}

func (s *DBStateStore) Save(ctx context.Context, ts time.Time) error {
	if s == nil || s.Backend == nil {
		return nil
	}
	return s.Backend.SaveState(ctx, s.Name, ts)
}
