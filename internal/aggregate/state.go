package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// StateStore persists the time up to which work has been done.
type StateStore interface {
	Load(ctx context.Context) (time.Time, bool, error)
	Save(ctx context.Context, ts time.Time) error
}

// FileStateStore stores state in a local JSON file, replaced atomically.
type FileStateStore struct {
	Path string
}

type stateRecord struct {
	LastRunAt time.Time `json:"last_run_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *FileStateStore) Load(_ context.Context) (time.Time, bool, error) {
	if s == nil || s.Path == "" {
		return time.Time{}, false, nil
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("read state: %w", err)
	}

	var rec stateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return time.Time{}, false, fmt.Errorf("parse state: %w", err)
	}
	return rec.LastRunAt, true, nil
}

func (s *FileStateStore) Save(_ context.Context, ts time.Time) error {
	if s == nil || s.Path == "" {
		return nil
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	data, err := json.Marshal(stateRecord{LastRunAt: ts.UTC(), UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}
