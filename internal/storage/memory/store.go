// Package memory is an in-process farm store used when no database is configured.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"yieldScope/internal/model"
)

// Store keeps farms in insertion order and snapshots sorted by time.
type Store struct {
	mu        sync.RWMutex
	farms     map[string]model.Farm
	order     []string
	snapshots map[string][]model.FarmSnapshot
	state     map[string]time.Time
}

// New returns a store holding farms.
func New(farms ...model.Farm) *Store {
	s := &Store{
		farms:     make(map[string]model.Farm, len(farms)),
		snapshots: make(map[string][]model.FarmSnapshot),
		state:     make(map[string]time.Time),
	}
	s.upsert(farms)
	return s
}

func (s *Store) ListFarms(_ context.Context) ([]model.Farm, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Farm, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, cloneFarm(s.farms[id]))
	}
	return out, nil
}

func (s *Store) GetFarm(_ context.Context, id string) (model.Farm, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	farm, ok := s.farms[id]
	if !ok {
		return model.Farm{}, false, nil
	}
	return cloneFarm(farm), true, nil
}

func (s *Store) ListSnapshots(_ context.Context, farmID string, since time.Time) ([]model.FarmSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.snapshots[farmID]
	i, _ := slices.BinarySearchFunc(all, since, func(snap model.FarmSnapshot, t time.Time) int {
		return snap.Timestamp.Compare(t)
	})
	return slices.Clone(all[i:]), nil
}

func (s *Store) UpsertFarms(_ context.Context, farms []model.Farm) error {
	s.upsert(farms)
	return nil
}

func (s *Store) PutSnapshots(_ context.Context, snapshots []model.FarmSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	touched := make(map[string]struct{})
	for _, snap := range snapshots {
		s.snapshots[snap.FarmID] = append(s.snapshots[snap.FarmID], snap)
		touched[snap.FarmID] = struct{}{}
	}
	for id := range touched {
		slices.SortStableFunc(s.snapshots[id], func(a, b model.FarmSnapshot) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
	}
	return nil
}

// LoadState returns the timestamp saved under name.
func (s *Store) LoadState(_ context.Context, name string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ts, ok := s.state[name]
	return ts, ok, nil
}

// SaveState records ts under name.
func (s *Store) SaveState(_ context.Context, name string, ts time.Time) error {
	s.mu.Lock()
	s.state[name] = ts
	s.mu.Unlock()
	return nil
}

func (s *Store) upsert(farms []model.Farm) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, farm := range farms {
		existing, ok := s.farms[farm.ID]
		switch {
		case !ok:
			s.order = append(s.order, farm.ID)
		case !existing.FirstSeen.IsZero():
			farm.FirstSeen = existing.FirstSeen
		}
		if farm.FirstSeen.IsZero() {
			farm.FirstSeen = farm.UpdatedAt
		}
		s.farms[farm.ID] = cloneFarm(farm)
	}
}

func cloneFarm(f model.Farm) model.Farm {
	f.Tokens = slices.Clone(f.Tokens)
	return f
}
