package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yieldScope/internal/catalog"
	"yieldScope/internal/config"
	"yieldScope/internal/model"
	"yieldScope/internal/storage"
	"yieldScope/internal/storage/postgres"
)

func runSeed(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSeed(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	chains := catalog.Chains()
	if err := store.UpsertChains(ctx, chains); err != nil {
		return fmt.Errorf("seed chains: %w", err)
	}
	protocols := catalog.Protocols()
	if err := store.UpsertProtocols(ctx, protocols); err != nil {
		return fmt.Errorf("seed protocols: %w", err)
	}

	now := time.Now().UTC()
	farms := storage.SeedFarms(now)
	if err := store.UpsertFarms(ctx, farms); err != nil {
		return fmt.Errorf("seed farms: %w", err)
	}
	snapshots := make([]model.FarmSnapshot, 0, len(farms))
	for _, f := range farms {
		snapshots = append(snapshots, storage.SnapshotOf(f, now))
	}
	if err := store.PutSnapshots(ctx, snapshots); err != nil {
		return fmt.Errorf("seed snapshots: %w", err)
	}

	logger.Info("seed complete",
		zap.Int("chains", len(chains)),
		zap.Int("protocols", len(protocols)),
		zap.Int("farms", len(farms)),
	)
	return nil
}
