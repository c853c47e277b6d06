package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"yieldScope/internal/defillama"
)

// IndexConfig holds settings for the index command.
type IndexConfig struct {
	DefiLlamaURL  string
	Chains        []string
	MinTVL        float64
	Interval      time.Duration
	Once          bool
	PGDSN         string
	Out           string
	StateFile     string
	BatchSize     int
	BackfillTop   int
	RatePerSecond float64
	Timeout       time.Duration
	MaxRetries    int
	RetryBackoff  time.Duration
	LogLevel      string
}

// LoadIndex merges config file, environment variables, and flags into IndexConfig.
func LoadIndex(cfgFile string, flags *pflag.FlagSet) (IndexConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"defillama-url": defillama.DefaultBaseURL,
		"min-tvl":       10_000.0,
		"interval":      5 * time.Minute,
		"batch-size":    500,
		"backfill-top":  0,
		"rate-limit":    2.0,
		"http-timeout":  30 * time.Second,
		"max-retries":   3,
		"retry-backoff": time.Second,
	})
	if err != nil {
		return IndexConfig{}, err
	}

	cfg := IndexConfig{
		DefiLlamaURL:  v.GetString("defillama-url"),
		Chains:        getStringSlice(v, "chains"),
		MinTVL:        v.GetFloat64("min-tvl"),
		Interval:      v.GetDuration("interval"),
		Once:          v.GetBool("once"),
		PGDSN:         v.GetString("pg-dsn"),
		Out:           v.GetString("out"),
		StateFile:     v.GetString("state-file"),
		BatchSize:     v.GetInt("batch-size"),
		BackfillTop:   v.GetInt("backfill-top"),
		RatePerSecond: v.GetFloat64("rate-limit"),
		Timeout:       v.GetDuration("http-timeout"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		LogLevel:      v.GetString("log-level"),
	}
	if cfg.MinTVL < 0 {
		return IndexConfig{}, fmt.Errorf("min-tvl must be at least 0")
	}
	if !cfg.Once && cfg.Interval <= 0 {
		return IndexConfig{}, fmt.Errorf("interval must be positive")
	}
	return cfg, nil
}

// ClientConfig returns the DeFiLlama client settings.
func (c IndexConfig) ClientConfig() defillama.Config {
	return defillama.Config{
		BaseURL:       c.DefiLlamaURL,
		Timeout:       c.Timeout,
		RatePerSecond: c.RatePerSecond,
		MaxRetries:    c.MaxRetries,
		RetryBackoff:  c.RetryBackoff,
	}
}
