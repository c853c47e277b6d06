// Package storage defines where the catalog reads farms from and where the
// indexer writes them.
package storage

import (
	"context"
	"time"

	"yieldScope/internal/model"
)

// FarmStore is the read side used by the catalog.
type FarmStore interface {
	ListFarms(ctx context.Context) ([]model.Farm, error)
	// GetFarm reports false when the farm does not exist.
	GetFarm(ctx context.Context, id string) (model.Farm, bool, error)
	// ListSnapshots returns snapshots of a farm taken at or after since, oldest first.
	ListSnapshots(ctx context.Context, farmID string, since time.Time) ([]model.FarmSnapshot, error)
}

// SnapshotSink receives farm snapshots.
type SnapshotSink interface {
	PutSnapshots(ctx context.Context, snapshots []model.FarmSnapshot) error
}

// FarmSink is the write side used by the indexer.
type FarmSink interface {
	SnapshotSink
	UpsertFarms(ctx context.Context, farms []model.Farm) error
}

// Store is a backend that can both serve and receive farms.
type Store interface {
	FarmStore
	FarmSink
}

// SnapshotOf records the current yield of a farm at ts.
func SnapshotOf(farm model.Farm, ts time.Time) model.FarmSnapshot {
	return model.FarmSnapshot{
		FarmID:    farm.ID,
		Timestamp: ts,
		TVL:       farm.TVL,
		BaseAPY:   farm.BaseAPY,
		RewardAPY: farm.RewardAPY,
		TotalAPY:  farm.TotalAPY,
	}
}
