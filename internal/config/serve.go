package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"yieldScope/internal/cache"
	"yieldScope/internal/defillama"
)

// ServeConfig holds settings for the serve command.
type ServeConfig struct {
	Addr          string
	CORSOrigins   []string
	RateLimit     int
	PGDSN         string
	CacheSize     int
	CacheTTLs     map[cache.Bucket]time.Duration
	IndexInterval time.Duration
	DefiLlamaURL  string
	Chains        []string
	MinTVL        float64
	SnapshotOut   string
	LogLevel      string
}

// LoadServe merges config file, environment variables, and flags into ServeConfig.
func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]any{
		"addr":           ":3001",
		"cors-origin":    "http://localhost:3000",
		"rate-limit":     100,
		"cache-size":     1024,
		"ttl-farms":      cache.DefaultTTLs[cache.BucketFarms],
		"ttl-protocols":  cache.DefaultTTLs[cache.BucketProtocols],
		"ttl-chains":     cache.DefaultTTLs[cache.BucketChains],
		"ttl-history":    cache.DefaultTTLs[cache.BucketHistory],
		"index-interval": time.Duration(0),
		"defillama-url":  defillama.DefaultBaseURL,
		"min-tvl":        10_000.0,
	})
	if err != nil {
		return ServeConfig{}, err
	}

	ttls := map[cache.Bucket]time.Duration{
		cache.BucketFarms:     v.GetDuration("ttl-farms"),
		cache.BucketProtocols: v.GetDuration("ttl-protocols"),
		cache.BucketChains:    v.GetDuration("ttl-chains"),
		cache.BucketHistory:   v.GetDuration("ttl-history"),
	}

	cfg := ServeConfig{
		Addr:          v.GetString("addr"),
		CORSOrigins:   getStringSlice(v, "cors-origin"),
		RateLimit:     v.GetInt("rate-limit"),
		PGDSN:         v.GetString("pg-dsn"),
		CacheSize:     v.GetInt("cache-size"),
		CacheTTLs:     ttls,
		IndexInterval: v.GetDuration("index-interval"),
		DefiLlamaURL:  v.GetString("defillama-url"),
		Chains:        getStringSlice(v, "chains"),
		MinTVL:        v.GetFloat64("min-tvl"),
		SnapshotOut:   v.GetString("out"),
		LogLevel:      v.GetString("log-level"),
	}
	if cfg.RateLimit < 0 {
		return ServeConfig{}, fmt.Errorf("rate-limit must be at least 0")
	}
	if cfg.IndexInterval < 0 {
		return ServeConfig{}, fmt.Errorf("index-interval must be at least 0")
	}
	return cfg, nil
}

// SeedConfig holds settings for the seed command.
type SeedConfig struct {
	PGDSN    string
	LogLevel string
}

// LoadSeed merges config file, environment variables, and flags into SeedConfig.
func LoadSeed(cfgFile string, flags *pflag.FlagSet) (SeedConfig, error) {
	v, err := newViper(cfgFile, flags, nil)
	if err != nil {
		return SeedConfig{}, err
	}
	cfg := SeedConfig{
		PGDSN:    v.GetString("pg-dsn"),
		LogLevel: v.GetString("log-level"),
	}
	if cfg.PGDSN == "" {
		return SeedConfig{}, fmt.Errorf("pg-dsn is required")
	}
	return cfg, nil
}
