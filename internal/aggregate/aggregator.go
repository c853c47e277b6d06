package aggregate

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"yieldScope/internal/model"
	"yieldScope/internal/storage"
)

// Config controls aggregation behavior.
type Config struct {
	Window        time.Duration
	BatchSize     int
	RecomputeFrom time.Time
	StateStore    StateStore
}

// Aggregator rolls a JSONL snapshot log into window averages written to a sink.
type Aggregator struct {
	cfg          Config
	windowSec    uint64
	sink         storage.SnapshotSink
	logger       *zap.Logger
	accumulators map[string]*Accumulator
	watermark    uint64
}

func NewAggregator(cfg Config, sink storage.SnapshotSink, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	return &Aggregator{
		cfg:          cfg,
		windowSec:    uint64(cfg.Window / time.Second),
		sink:         sink,
		logger:       logger,
		accumulators: make(map[string]*Accumulator),
	}
}

// Run aggregates every snapshot in inputPath newer than the saved state.
// Snapshots of a farm are expected in time order, as the indexer writes them.
func (a *Aggregator) Run(ctx context.Context, inputPath string) error {
	if a.windowSec == 0 {
		return fmt.Errorf("window must be at least 1s")
	}

	startTs, err := a.loadStartTimestamp(ctx)
	if err != nil {
		return err
	}
	a.watermark = startTs

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer file.Close()

	batch := make([]model.FarmSnapshot, 0, a.cfg.BatchSize)
	var total, written, skipped, failed int

	err = storage.ScanSnapshots(file, func(snap model.FarmSnapshot) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		total++

		ts := unixSeconds(snap.Timestamp)
		if ts <= startTs || snap.FarmID == "" {
			skipped++
			return nil
		}

		start := windowStart(ts, a.windowSec)
		acc := a.accumulators[snap.FarmID]
		switch {
		case acc == nil:
			acc = NewAccumulator(snap.FarmID, start, start+a.windowSec)
			a.accumulators[snap.FarmID] = acc
		case acc.WindowStart != start:
			batch = append(batch, acc.Snapshot())
			written++
			acc = NewAccumulator(snap.FarmID, start, start+a.windowSec)
			a.accumulators[snap.FarmID] = acc
		}
		acc.Add(snap)

		if ts > a.watermark {
			a.watermark = ts
		}

		if len(batch) >= a.cfg.BatchSize {
			if err := a.flush(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
			if err := a.saveState(ctx); err != nil {
				return err
			}
		}
		return nil
	}, func(line int, err error) {
		failed++
		a.logger.Warn("decode snapshot", zap.Int("line", line), zap.Error(err))
	})
	if err != nil {
		return err
	}

	// Open windows are written but the saved state stays before them, so the
	// next run re-reads them whole.
	resumeAt := a.safeTimestamp()
	for id, acc := range a.accumulators {
		batch = append(batch, acc.Snapshot())
		written++
		delete(a.accumulators, id)
	}
	if err := a.flush(ctx, batch); err != nil {
		return err
	}
	if err := a.saveStateAt(ctx, resumeAt); err != nil {
		return err
	}

	a.logger.Info("aggregate complete",
		zap.Int("total", total),
		zap.Int("written", written),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return nil
}

func (a *Aggregator) loadStartTimestamp(ctx context.Context) (uint64, error) {
	if !a.cfg.RecomputeFrom.IsZero() {
		if ts := unixSeconds(a.cfg.RecomputeFrom); ts > 0 {
			return ts - 1, nil
		}
		return 0, nil
	}
	if a.cfg.StateStore == nil {
		return 0, nil
	}
	last, ok, err := a.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return unixSeconds(last), nil
}

func (a *Aggregator) saveState(ctx context.Context) error {
	return a.saveStateAt(ctx, a.safeTimestamp())
}

func (a *Aggregator) saveStateAt(ctx context.Context, ts uint64) error {
	if a.cfg.StateStore == nil {
		return nil
	}
	return a.cfg.StateStore.Save(ctx, time.Unix(int64(ts), 0).UTC())
}

// safeTimestamp is the newest timestamp it is safe to resume after: the
// watermark when no window is open, otherwise just before the oldest open one.
func (a *Aggregator) safeTimestamp() uint64 {
	if open := minOpenWindowStart(a.accumulators); open > 0 {
		return open - 1
	}
	return a.watermark
}

func (a *Aggregator) flush(ctx context.Context, batch []model.FarmSnapshot) error {
	if len(batch) == 0 {
		return nil
	}
	if err := a.sink.PutSnapshots(ctx, batch); err != nil {
		return fmt.Errorf("write windows: %w", err)
	}
	return nil
}

func minOpenWindowStart(acc map[string]*Accumulator) uint64 {
	var min uint64
	for _, entry := range acc {
		if entry == nil {
			continue
		}
		if min == 0 || entry.WindowStart < min {
			min = entry.WindowStart
		}
	}
	return min
}
