package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"yieldScope/internal/aggregate"
	"yieldScope/internal/api"
	"yieldScope/internal/cache"
	"yieldScope/internal/catalog"
	"yieldScope/internal/config"
	"yieldScope/internal/defillama"
	"yieldScope/internal/indexer"
	"yieldScope/internal/storage"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	chains, err := indexer.ParseChains(cfg.Chains)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.PGDSN, true, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	c := cache.New(cache.Config{Size: cfg.CacheSize, TTLs: cfg.CacheTTLs})
	svc := catalog.NewService(store, c, logger)
	server := api.NewServer(api.Config{
		Addr:        cfg.Addr,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
	}, svc, logger)

	logger.Info("serve start",
		zap.String("addr", cfg.Addr),
		zap.Strings("cors_origins", cfg.CORSOrigins),
		zap.Int("rate_limit", cfg.RateLimit),
		zap.Duration("index_interval", cfg.IndexInterval),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(ctx)
	})

	if cfg.IndexInterval > 0 {
		client := defillama.NewClient(defillama.Config{BaseURL: cfg.DefiLlamaURL}, logger)
		runner := indexer.NewRunner(indexer.RunConfig{
			Chains:     chains,
			MinTVL:     cfg.MinTVL,
			Interval:   cfg.IndexInterval,
			StateStore: &aggregate.DBStateStore{Backend: store, Name: "indexer"},
		}, client, store, logger).WithInvalidator(svc.Invalidate)
		if cfg.SnapshotOut != "" {
			runner.WithSinks(storage.NewJsonlStorage(cfg.SnapshotOut))
		}

		g.Go(func() error {
			if err := runner.Run(ctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}
