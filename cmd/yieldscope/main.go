package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"yieldScope/internal/aggregate"
	"yieldScope/internal/api"
	"yieldScope/internal/config"
	"yieldScope/internal/defillama"
	"yieldScope/internal/model"
	"yieldScope/internal/storage"
	"yieldScope/internal/storage/memory"
	"yieldScope/internal/storage/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "yieldscope",
		Short:        "Yield farm catalog and impermanent-loss calculator",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return config.LoadEnvFile(envFile)
		},
	}

	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().String("env-file", "", "dotenv file (default .env when present)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the farm catalog and calculator API",
		RunE:  runServe,
	}

	serveCmd.Flags().String("addr", api.DefaultAddr, "listen address")
	serveCmd.Flags().StringSlice("cors-origin", []string{api.DefaultCORSOrigin}, "allowed CORS origins (comma-separated)")
	serveCmd.Flags().Int("rate-limit", api.DefaultRateLimit, "requests per minute per client, 0 disables")
	serveCmd.Flags().String("pg-dsn", "", "Postgres DSN, empty uses the in-memory development store")
	serveCmd.Flags().Int("cache-size", 1024, "entries per cache bucket")
	serveCmd.Flags().Duration("ttl-farms", time.Minute, "farm listing and detail cache TTL")
	serveCmd.Flags().Duration("ttl-protocols", time.Hour, "protocol cache TTL")
	serveCmd.Flags().Duration("ttl-chains", 24*time.Hour, "chain cache TTL")
	serveCmd.Flags().Duration("ttl-history", 5*time.Minute, "history cache TTL")
	serveCmd.Flags().Duration("index-interval", 0, "run the indexer in-process at this interval, 0 disables")
	serveCmd.Flags().String("defillama-url", defillama.DefaultBaseURL, "DeFiLlama yields API base URL")
	serveCmd.Flags().StringSlice("chains", nil, "chains to index (comma-separated, default all)")
	serveCmd.Flags().Float64("min-tvl", 10_000, "minimum pool TVL in USD to index")
	serveCmd.Flags().String("out", "", "optional JSONL snapshot output for the in-process indexer")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Index DeFiLlama yield pools",
		RunE:  runIndex,
	}

	indexCmd.Flags().String("defillama-url", defillama.DefaultBaseURL, "DeFiLlama yields API base URL")
	indexCmd.Flags().StringSlice("chains", nil, "chains to index (comma-separated, default all)")
	indexCmd.Flags().Float64("min-tvl", 10_000, "minimum pool TVL in USD")
	indexCmd.Flags().Duration("interval", 5*time.Minute, "interval between runs")
	indexCmd.Flags().Bool("once", false, "run a single pass and exit")
	indexCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	indexCmd.Flags().String("out", "", "JSONL snapshot output path")
	indexCmd.Flags().String("state-file", "", "optional local state file for run tracking")
	indexCmd.Flags().Int("batch-size", 500, "farms per upsert batch")
	indexCmd.Flags().Int("backfill-top", 0, "load chart history for up to N new farms per run")
	indexCmd.Flags().Float64("rate-limit", 2, "DeFiLlama requests per second")
	indexCmd.Flags().Duration("http-timeout", 30*time.Second, "DeFiLlama request timeout")
	indexCmd.Flags().Int("max-retries", 3, "maximum retry attempts")
	indexCmd.Flags().Duration("retry-backoff", time.Second, "initial retry backoff")
	indexCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(indexCmd)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and load the development dataset into Postgres",
		RunE:  runSeed,
	}

	seedCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	seedCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(seedCmd)

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Roll a JSONL snapshot log up into window averages",
		RunE:  runAggregate,
	}

	aggregateCmd.Flags().String("in", "./data/snapshots.jsonl", "input snapshot JSONL")
	aggregateCmd.Flags().String("out", "", "output JSONL for window averages")
	aggregateCmd.Flags().Duration("window", time.Hour, "aggregation window (e.g. 1h, 24h)")
	aggregateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	aggregateCmd.Flags().Int("batch-size", 1000, "batch size for writes")
	aggregateCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	aggregateCmd.Flags().String("recompute-from", "", "recompute from timestamp (unix seconds or RFC3339)")
	aggregateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(aggregateCmd)

	calcCmd := &cobra.Command{
		Use:   "calc",
		Short: "Value a 50/50 liquidity position after a price move",
		RunE:  runCalc,
	}

	calcCmd.Flags().Float64("token0", 0, "deposited amount of token 0")
	calcCmd.Flags().Float64("token1", 0, "deposited amount of token 1")
	calcCmd.Flags().Float64("initial-price", 0, "token 0 price in token 1 at entry")
	calcCmd.Flags().Float64("current-price", 0, "token 0 price in token 1 now")
	calcCmd.Flags().Float64("apy", 0, "pool APY in percent, adds days to breakeven")

	root.AddCommand(calcCmd)

	curveCmd := &cobra.Command{
		Use:   "curve",
		Short: "Print or plot impermanent loss against price change",
		RunE:  runCurve,
	}

	curveCmd.Flags().Float64("min", 0.1, "lowest price ratio")
	curveCmd.Flags().Float64("max", 5, "highest price ratio")
	curveCmd.Flags().Int("points", 20, "number of samples")
	curveCmd.Flags().String("png", "", "write a PNG chart to this path instead of a table")

	root.AddCommand(curveCmd)

	breakevenCmd := &cobra.Command{
		Use:   "breakeven",
		Short: "Estimate days of yield needed to recover impermanent loss",
		RunE:  runBreakeven,
	}

	breakevenCmd.Flags().Float64("il", 0, "impermanent loss in percent")
	breakevenCmd.Flags().Float64("apy", 0, "pool APY in percent")
	breakevenCmd.Flags().Float64("days", 0, "target days, adds the APY required to break even in time")

	root.AddCommand(breakevenCmd)

	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// backend is a farm store that can also persist run state.
type backend interface {
	storage.Store
	aggregate.StateBackend
}

// openStore connects to Postgres when dsn is set, otherwise returns an
// in-memory store, seeded with the development farms when seed is true.
func openStore(ctx context.Context, dsn string, seed bool, logger *zap.Logger) (backend, func(), error) {
	if dsn == "" {
		var farms []model.Farm
		if seed {
			farms = storage.SeedFarms(time.Now().UTC())
		}
		logger.Info("using in-memory store", zap.Int("farms", len(farms)))
		return memory.New(farms...), func() {}, nil
	}

	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, nil, err
	}
	logger.Info("using postgres store", zap.String("pg_dsn", redactDSN(dsn)))
	return store, store.Close, nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
