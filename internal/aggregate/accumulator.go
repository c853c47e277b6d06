package aggregate

import (
	"time"

	"yieldScope/internal/model"
)

// Accumulator averages the snapshots of one farm inside one window.
type Accumulator struct {
	FarmID      string
	WindowStart uint64
	WindowEnd   uint64
	Count       int
	LastTS      uint64

	tvl       float64
	baseAPY   float64
	rewardAPY float64
	totalAPY  float64
}

func NewAccumulator(farmID string, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		FarmID:      farmID,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}
}

func (a *Accumulator) Add(snap model.FarmSnapshot) {
	a.Count++
	a.tvl += snap.TVL
	a.baseAPY += snap.BaseAPY
	a.rewardAPY += snap.RewardAPY
	a.totalAPY += snap.TotalAPY
	if ts := unixSeconds(snap.Timestamp); ts > a.LastTS {
		a.LastTS = ts
	}
}

// Snapshot returns the window average stamped at the window start.
func (a *Accumulator) Snapshot() model.FarmSnapshot {
	snap := model.FarmSnapshot{
		FarmID:    a.FarmID,
		Timestamp: time.Unix(int64(a.WindowStart), 0).UTC(),
	}
	if a.Count == 0 {
		return snap
	}
	n := float64(a.Count)
	snap.TVL = a.tvl / n
	snap.BaseAPY = a.baseAPY / n
	snap.RewardAPY = a.rewardAPY / n
	snap.TotalAPY = a.totalAPY / n
	return snap
}

func unixSeconds(t time.Time) uint64 {
	if t.Unix() < 0 {
		return 0
	}
	return uint64(t.Unix())
}
