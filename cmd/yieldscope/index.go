package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yieldScope/internal/aggregate"
	"yieldScope/internal/config"
	"yieldScope/internal/defillama"
	"yieldScope/internal/indexer"
	"yieldScope/internal/storage"
)

func runIndex(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadIndex(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PGDSN == "" && cfg.Out == "" {
		return fmt.Errorf("one of pg-dsn or out is required")
	}

	chains, err := indexer.ParseChains(cfg.Chains)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.PGDSN, false, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var stateStore aggregate.StateStore
	if cfg.StateFile != "" {
		stateStore = &aggregate.FileStateStore{Path: cfg.StateFile}
	} else {
		stateStore = &aggregate.DBStateStore{Backend: store, Name: "indexer"}
	}

	runner := indexer.NewRunner(indexer.RunConfig{
		Chains:      chains,
		MinTVL:      cfg.MinTVL,
		Interval:    cfg.Interval,
		BatchSize:   cfg.BatchSize,
		BackfillTop: cfg.BackfillTop,
		StateStore:  stateStore,
	}, defillama.NewClient(cfg.ClientConfig(), logger), store, logger)
	if cfg.Out != "" {
		runner.WithSinks(storage.NewJsonlStorage(cfg.Out))
	}

	logger.Info("indexer start",
		zap.String("defillama_url", cfg.DefiLlamaURL),
		zap.Int("chains", len(chains)),
		zap.Float64("min_tvl", cfg.MinTVL),
		zap.Duration("interval", cfg.Interval),
		zap.Bool("once", cfg.Once),
		zap.String("out", cfg.Out),
		zap.String("state_file", cfg.StateFile),
	)

	if cfg.Once {
		_, err := runner.RunOnce(ctx)
		return err
	}
	if err := runner.Run(ctx); !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
