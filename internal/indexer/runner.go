// Package indexer pulls yield pools from DeFiLlama into the farm catalog.
package indexer

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"yieldScope/internal/aggregate"
	"yieldScope/internal/catalog"
	"yieldScope/internal/defillama"
	"yieldScope/internal/model"
	"yieldScope/internal/normalize"
	"yieldScope/internal/risk"
	"yieldScope/internal/storage"
)

const (
	DefaultMinTVL    = 10_000
	DefaultInterval  = 5 * time.Minute
	DefaultBatchSize = 500

	backfillDays = 30
)

// Fetcher is the upstream pool source.
type Fetcher interface {
	FetchPools(ctx context.Context) ([]defillama.Pool, error)
	FetchPoolChart(ctx context.Context, poolID string) ([]defillama.ChartPoint, error)
}

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	Chains    []model.Chain
	MinTVL    float64
	Interval  time.Duration
	BatchSize int
	// BackfillTop loads chart history for up to this many newly seen farms,
	// largest TVL first.
	BackfillTop int
	StateStore  aggregate.StateStore
}

// Summary describes one indexing pass.
type Summary struct {
	At         time.Time
	Fetched    int
	Indexed    int
	Skipped    int
	Failed     int
	Backfilled int
}

// Runner fetches, normalizes, scores and stores pools.
type Runner struct {
	cfg        RunConfig
	fetcher    Fetcher
	store      storage.Store
	sinks      []storage.SnapshotSink
	invalidate func()
	logger     *zap.Logger
	now        func() time.Time
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg RunConfig, fetcher Fetcher, store storage.Store, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.Chains) == 0 {
		cfg.Chains = append([]model.Chain(nil), model.Chains...)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithSinks adds extra destinations for the snapshots of every run.
func (r *Runner) WithSinks(sinks ...storage.SnapshotSink) *Runner {
	r.sinks = append(r.sinks, sinks...)
	return r
}

// WithInvalidator registers a hook called after farms are written.
func (r *Runner) WithInvalidator(fn func()) *Runner {
	r.invalidate = fn
	return r
}

// Run indexes every Interval until ctx is done. When the state store shows a
// run within the last interval, the first pass waits out the remainder.
func (r *Runner) Run(ctx context.Context) error {
	wait, err := r.initialDelay(ctx)
	if err != nil {
		return err
	}
	if wait > 0 {
		r.logger.Info("waiting for next index run", zap.Duration("in", wait))
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("index run failed", zap.Error(err))
		}
		timer.Reset(r.cfg.Interval)
	}
}

func (r *Runner) initialDelay(ctx context.Context) (time.Duration, error) {
	if r.cfg.StateStore == nil {
		return 0, nil
	}
	last, ok, err := r.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load indexer state: %w", err)
	}
	if !ok {
		return 0, nil
	}
	elapsed := r.now().Sub(last)
	if elapsed < 0 || elapsed >= r.cfg.Interval {
		return 0, nil
	}
	return r.cfg.Interval - elapsed, nil
}

// RunOnce performs a single indexing pass. Pools that fail to normalize are
// logged and skipped; storage failures abort the pass.
func (r *Runner) RunOnce(ctx context.Context) (Summary, error) {
	if r.fetcher == nil {
		return Summary{}, fmt.Errorf("fetcher is nil")
	}
	if r.store == nil {
		return Summary{}, fmt.Errorf("store is nil")
	}

	pools, err := r.fetcher.FetchPools(ctx)
	if err != nil {
		return Summary{}, err
	}

	now := r.now()
	summary := Summary{At: now, Fetched: len(pools)}
	r.logger.Info("fetched pools", zap.Int("pools", len(pools)))

	farms := make([]model.Farm, 0, len(pools))
	var fresh []model.Farm
	seen := make(map[string]struct{}, len(pools))

	for _, pool := range pools {
		if !r.wanted(pool) {
			summary.Skipped++
			continue
		}

		farm, err := normalize.Pool(pool, now)
		if err != nil {
			summary.Failed++
			r.logger.Warn("normalize pool", zap.String("pool", pool.PoolID), zap.String("project", pool.Project), zap.Error(err))
			continue
		}
		if _, dup := seen[farm.ID]; dup {
			summary.Skipped++
			continue
		}
		seen[farm.ID] = struct{}{}

		r.score(&farm)

		existed, err := r.applyTVLChange(ctx, &farm)
		if err != nil {
			return summary, err
		}
		if !existed {
			fresh = append(fresh, farm)
		}
		farms = append(farms, farm)
	}

	batches, err := SplitBatches(len(farms), r.cfg.BatchSize)
	if err != nil {
		return summary, err
	}
	for _, b := range batches {
		if err := r.store.UpsertFarms(ctx, farms[b.From:b.To]); err != nil {
			return summary, fmt.Errorf("upsert farms: %w", err)
		}
	}
	summary.Indexed = len(farms)

	snapshots := make([]model.FarmSnapshot, 0, len(farms))
	for _, farm := range farms {
		snapshots = append(snapshots, storage.SnapshotOf(farm, now))
	}
	if err := r.putSnapshots(ctx, snapshots); err != nil {
		return summary, err
	}

	summary.Backfilled = r.backfill(ctx, fresh)

	if r.invalidate != nil {
		r.invalidate()
	}

	if r.cfg.StateStore != nil {
		if err := r.cfg.StateStore.Save(ctx, now); err != nil {
			return summary, fmt.Errorf("save indexer state: %w", err)
		}
	}

	r.logger.Info("index run complete",
		zap.Int("fetched", summary.Fetched),
		zap.Int("indexed", summary.Indexed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("backfilled", summary.Backfilled),
	)
	return summary, nil
}

func (r *Runner) wanted(pool defillama.Pool) bool {
	chain, ok := normalize.Chain(pool.Chain)
	if !ok || !slices.Contains(r.cfg.Chains, chain) {
		return false
	}
	return pool.TVLUSD > 0 && pool.TVLUSD >= r.cfg.MinTVL
}

func (r *Runner) score(farm *model.Farm) {
	assessment := risk.Calculate(risk.Input{
		Protocol:    farm.Protocol,
		TVL:         farm.TVL,
		Tokens:      farm.Tokens,
		Audited:     farm.Audited,
		PoolAgeDays: risk.DefaultPoolAgeDays,
		RewardToken: farm.RewardToken,
	})
	farm.RiskScore = assessment.Score
	// Pools DeFiLlama flags as stablecoin-only keep their None class.
	if farm.ILRisk != model.ILRiskNone {
		farm.ILRisk = assessment.ILRisk
	}
	if p, ok := catalog.LookupProtocol(farm.Protocol); ok {
		farm.ProtocolLogo = p.LogoURL
	}
}

// applyTVLChange sets the 24h TVL change from the oldest snapshot of the last
// day and reports whether the farm was already known.
func (r *Runner) applyTVLChange(ctx context.Context, farm *model.Farm) (bool, error) {
	_, existed, err := r.store.GetFarm(ctx, farm.ID)
	if err != nil {
		return false, fmt.Errorf("get farm %s: %w", farm.ID, err)
	}
	if !existed {
		return false, nil
	}

	snaps, err := r.store.ListSnapshots(ctx, farm.ID, farm.UpdatedAt.Add(-24*time.Hour))
	if err != nil {
		return true, fmt.Errorf("list snapshots %s: %w", farm.ID, err)
	}
	if len(snaps) > 0 && snaps[0].TVL > 0 {
		farm.TVLChange24h = (farm.TVL - snaps[0].TVL) / snaps[0].TVL * 100
	}
	return true, nil
}

func (r *Runner) putSnapshots(ctx context.Context, snapshots []model.FarmSnapshot) error {
	if err := r.store.PutSnapshots(ctx, snapshots); err != nil {
		return fmt.Errorf("store snapshots: %w", err)
	}
	for _, sink := range r.sinks {
		if err := sink.PutSnapshots(ctx, snapshots); err != nil {
			return fmt.Errorf("write snapshots: %w", err)
		}
	}
	return nil
}

// backfill loads recent chart history for the largest newly seen farms.
func (r *Runner) backfill(ctx context.Context, fresh []model.Farm) int {
	if r.cfg.BackfillTop <= 0 || len(fresh) == 0 {
		return 0
	}
	slices.SortFunc(fresh, func(a, b model.Farm) int { return cmp.Compare(b.TVL, a.TVL) })

	since := r.now().Add(-backfillDays * 24 * time.Hour)
	var done int
	for _, farm := range fresh {
		if done >= r.cfg.BackfillTop {
			break
		}
		poolID, ok := normalize.SourcePoolID(farm.ID)
		if !ok {
			continue
		}
		points, err := r.fetcher.FetchPoolChart(ctx, poolID)
		if err != nil {
			r.logger.Warn("backfill chart", zap.String("farm", farm.ID), zap.Error(err))
			continue
		}

		snapshots := make([]model.FarmSnapshot, 0, len(points))
		for _, p := range points {
			if p.Timestamp.Before(since) {
				continue
			}
			snapshots = append(snapshots, model.FarmSnapshot{
				FarmID:    farm.ID,
				Timestamp: p.Timestamp.UTC(),
				TVL:       p.TVLUSD,
				BaseAPY:   defillama.Value(p.APYBase),
				RewardAPY: defillama.Value(p.APYReward),
				TotalAPY:  defillama.Value(p.APY),
			})
		}
		if err := r.store.PutSnapshots(ctx, snapshots); err != nil {
			r.logger.Warn("backfill store", zap.String("farm", farm.ID), zap.Error(err))
			continue
		}
		done++
	}
	return done
}
