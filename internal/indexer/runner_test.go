package indexer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldScope/internal/aggregate"
	"yieldScope/internal/defillama"
	"yieldScope/internal/model"
	"yieldScope/internal/storage"
	"yieldScope/internal/storage/memory"
)

const (
	curvePoolID   = "bd3a3b85-f5a3-4e6a-a9b5-1c5f0a0e0e0e"
	raydiumPoolID = "9b2f5b6e-0f7a-4b1e-8f0e-2f4b1d7c9a11"
)

type fakeFetcher struct {
	pools      []defillama.Pool
	charts     map[string][]defillama.ChartPoint
	err        error
	chartCalls []string
}

func (f *fakeFetcher) FetchPools(context.Context) ([]defillama.Pool, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pools, nil
}

func (f *fakeFetcher) FetchPoolChart(_ context.Context, poolID string) ([]defillama.ChartPoint, error) {
	f.chartCalls = append(f.chartCalls, poolID)
	return f.charts[poolID], nil
}

func ptr(v float64) *float64 { return &v }

func testPools(curveTVL float64) []defillama.Pool {
	return []defillama.Pool{
		{Chain: "Ethereum", Project: "curve-dex", Symbol: "DAI-USDC-USDT", PoolID: curvePoolID, TVLUSD: curveTVL, APY: ptr(4.2), APYBase: ptr(3.2), APYReward: ptr(1), RewardTokens: []string{"CRV"}, Stablecoin: true},
		{Chain: "Solana", Project: "raydium-amm", Symbol: "SOL-USDC", PoolID: raydiumPoolID, TVLUSD: 34_000_000, APY: ptr(24.2), APYBase: ptr(18.5)},
		{Chain: "Fantom", Project: "spookyswap", Symbol: "FTM-USDC", PoolID: "x", TVLUSD: 5_000_000},
		{Chain: "Ethereum", Project: "uniswap-v3", Symbol: "PEPE-WETH", PoolID: "tiny", TVLUSD: 500},
		{Chain: "Ethereum", Project: "curve-dex", Symbol: "DAI-USDC-USDT", PoolID: curvePoolID, TVLUSD: curveTVL},
		{Chain: "Arbitrum", Project: "uniswap-v3", Symbol: "ARB-ETH", PoolID: " ", TVLUSD: 1_000_000},
	}
}

func TestRunOnceIndexesPools(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	fetcher := &fakeFetcher{
		pools: testPools(245_000_000),
		charts: map[string][]defillama.ChartPoint{
			curvePoolID: {
				{Timestamp: now.Add(-40 * 24 * time.Hour), TVLUSD: 1, APY: ptr(1)},
				{Timestamp: now.Add(-48 * time.Hour), TVLUSD: 240_000_000, APY: ptr(4), APYBase: ptr(3), APYReward: ptr(1)},
			},
		},
	}
	store := memory.New()
	dir := t.TempDir()
	sink := storage.NewJsonlStorage(filepath.Join(dir, "snapshots.jsonl"))
	state := &aggregate.FileStateStore{Path: filepath.Join(dir, "state.json")}

	var invalidated int
	r := NewRunner(RunConfig{MinTVL: DefaultMinTVL, BackfillTop: 1, StateStore: state}, fetcher, store, nil).
		WithSinks(sink).
		WithInvalidator(func() { invalidated++ })
	r.now = func() time.Time { return now }

	summary, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{At: now, Fetched: 6, Indexed: 2, Skipped: 3, Failed: 1, Backfilled: 1}, summary)
	assert.Equal(t, []string{curvePoolID}, fetcher.chartCalls)
	assert.Equal(t, 1, invalidated)

	farms, err := store.ListFarms(ctx)
	require.NoError(t, err)
	require.Len(t, farms, 2)

	curve := farms[0]
	assert.Equal(t, "ethereum:curve-dex:"+curvePoolID, curve.ID)
	assert.Equal(t, model.ILRiskNone, curve.ILRisk)
	assert.Equal(t, "Curve", curve.Protocol)
	assert.NotEmpty(t, curve.ProtocolLogo)
	assert.NotZero(t, curve.RiskScore)
	assert.Zero(t, curve.TVLChange24h)

	raydium := farms[1]
	assert.Equal(t, model.ChainSolana, raydium.Chain)
	assert.Equal(t, model.ILRiskMedium, raydium.ILRisk)

	snaps, err := store.ListSnapshots(ctx, curve.ID, time.Time{})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 240_000_000.0, snaps[0].TVL)
	assert.True(t, snaps[1].Timestamp.Equal(now))

	last, ok, err := state.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, last.Equal(now))

	raw, err := os.ReadFile(sink.Path())
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(raw), "\n"))
}

func TestRunOnceComputesTVLChange(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	now := start

	fetcher := &fakeFetcher{pools: testPools(200_000_000)}
	store := memory.New()
	r := NewRunner(RunConfig{MinTVL: DefaultMinTVL, Chains: []model.Chain{model.ChainEthereum}}, fetcher, store, nil)
	r.now = func() time.Time { return now }

	_, err := r.RunOnce(ctx)
	require.NoError(t, err)

	now = start.Add(time.Hour)
	fetcher.pools = testPools(220_000_000)
	summary, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Indexed)

	farm, ok, err := store.GetFarm(ctx, "ethereum:curve-dex:"+curvePoolID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 10, farm.TVLChange24h, 1e-9)
	assert.Equal(t, 220_000_000.0, farm.TVL)

	_, ok, err = store.GetFarm(ctx, "solana:raydium-amm:"+raydiumPoolID)
	require.NoError(t, err)
	assert.False(t, ok, "solana is not in the configured chain set")
}

func TestRunOnceFetchError(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	r := NewRunner(RunConfig{}, fetcher, memory.New(), nil)

	_, err := r.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestInitialDelay(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	state := &aggregate.FileStateStore{Path: filepath.Join(t.TempDir(), "state.json")}

	r := NewRunner(RunConfig{Interval: 5 * time.Minute, StateStore: state}, &fakeFetcher{}, memory.New(), nil)
	r.now = func() time.Time { return now }

	wait, err := r.initialDelay(ctx)
	require.NoError(t, err)
	assert.Zero(t, wait)

	require.NoError(t, state.Save(ctx, now.Add(-time.Minute)))
	wait, err = r.initialDelay(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4*time.Minute, wait)

	require.NoError(t, state.Save(ctx, now.Add(-time.Hour)))
	wait, err = r.initialDelay(ctx)
	require.NoError(t, err)
	assert.Zero(t, wait)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{pools: testPools(1_000_000)}
	var runs int
	r := NewRunner(RunConfig{Interval: time.Hour}, fetcher, memory.New(), nil).
		WithInvalidator(func() {
			runs++
			cancel()
		})

	err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, runs)
}
