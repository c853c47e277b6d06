// Package aggregate rolls farm snapshots up into fixed time windows.
package aggregate

import (
	"cmp"
	"slices"
	"time"

	"yieldScope/internal/model"
)

// Windows averages snapshots into window-sized buckets keyed by farm and
// window start. The result is ordered by window start, then farm id.
func Windows(snapshots []model.FarmSnapshot, window time.Duration) []model.FarmSnapshot {
	windowSec := uint64(window / time.Second)
	if windowSec == 0 || len(snapshots) == 0 {
		return nil
	}

	type key struct {
		farmID string
		start  uint64
	}
	accs := make(map[key]*Accumulator)
	for _, snap := range snapshots {
		start := windowStart(unixSeconds(snap.Timestamp), windowSec)
		k := key{snap.FarmID, start}
		acc := accs[k]
		if acc == nil {
			acc = NewAccumulator(snap.FarmID, start, start+windowSec)
			accs[k] = acc
		}
		acc.Add(snap)
	}

	out := make([]model.FarmSnapshot, 0, len(accs))
	for _, acc := range accs {
		out = append(out, acc.Snapshot())
	}
	slices.SortFunc(out, func(a, b model.FarmSnapshot) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.FarmID, b.FarmID)
	})
	return out
}

// HistoryPoints is Windows for a single farm, shaped for the history endpoint.
func HistoryPoints(snapshots []model.FarmSnapshot, window time.Duration) []model.APYHistoryPoint {
	windows := Windows(snapshots, window)
	out := make([]model.APYHistoryPoint, 0, len(windows))
	for _, w := range windows {
		out = append(out, model.APYHistoryPoint{
			Timestamp: w.Timestamp,
			TVL:       w.TVL,
			BaseAPY:   w.BaseAPY,
			RewardAPY: w.RewardAPY,
			TotalAPY:  w.TotalAPY,
		})
	}
	return out
}

func windowStart(ts uint64, windowSec uint64) uint64 {
	return ts - (ts % windowSec)
}
