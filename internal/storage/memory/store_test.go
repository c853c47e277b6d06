package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldScope/internal/model"
	"yieldScope/internal/storage"
)

var _ storage.Store = (*Store)(nil)

func TestStoreUpsertKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New(model.Farm{ID: "a", TVL: 1}, model.Farm{ID: "b", TVL: 2})

	require.NoError(t, s.UpsertFarms(ctx, []model.Farm{{ID: "c", TVL: 3}, {ID: "a", TVL: 10}}))

	farms, err := s.ListFarms(ctx)
	require.NoError(t, err)
	require.Len(t, farms, 3)
	assert.Equal(t, "a", farms[0].ID)
	assert.Equal(t, 10.0, farms[0].TVL)
	assert.Equal(t, "c", farms[2].ID)

	_, ok, err := s.GetFarm(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New(model.Farm{ID: "a", Tokens: []string{"ETH", "USDC"}})

	farm, ok, err := s.GetFarm(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	farm.Tokens[0] = "XXX"

	again, _, _ := s.GetFarm(ctx, "a")
	assert.Equal(t, "ETH", again.Tokens[0])
}

func TestStoreSnapshotsSortedAndFiltered(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.PutSnapshots(ctx, []model.FarmSnapshot{
		{FarmID: "a", Timestamp: base.Add(2 * time.Hour), TVL: 3},
		{FarmID: "a", Timestamp: base, TVL: 1},
		{FarmID: "b", Timestamp: base, TVL: 9},
	}))
	require.NoError(t, s.PutSnapshots(ctx, []model.FarmSnapshot{{FarmID: "a", Timestamp: base.Add(time.Hour), TVL: 2}}))

	all, err := s.ListSnapshots(ctx, "a", time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, want := range []float64{1, 2, 3} {
		assert.Equal(t, want, all[i].TVL)
	}

	recent, err := s.ListSnapshots(ctx, "a", base.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	none, err := s.ListSnapshots(ctx, "zzz", time.Time{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStoreState(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, ok, err := s.LoadState(ctx, "indexer")
	require.NoError(t, err)
	assert.False(t, ok)

	ts := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	require.NoError(t, s.SaveState(ctx, "indexer", ts))
	got, ok, err := s.LoadState(ctx, "indexer")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ts, got)
}

func TestStoreKeepsFirstSeen(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(model.Farm{ID: "a", UpdatedAt: t0})

	require.NoError(t, s.UpsertFarms(ctx, []model.Farm{{ID: "a", UpdatedAt: t0.Add(48 * time.Hour)}}))

	farm, _, err := s.GetFarm(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, t0, farm.FirstSeen)
	assert.Equal(t, t0.Add(48*time.Hour), farm.UpdatedAt)
}
