// Package defillama is a client for the DeFiLlama yields API.
package defillama

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://yields.llama.fi"

	defaultTimeout      = 30 * time.Second
	defaultRatePerSec   = 5
	defaultMaxRetries   = 3
	defaultRetryBackoff = 500 * time.Millisecond
	maxErrorBody        = 512
)

// Config controls the client.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	MaxRetries    int
	RetryBackoff  time.Duration
}

// Client fetches pools and pool history with rate limiting and retries.
type Client struct {
	http         *http.Client
	baseURL      string
	limiter      *rate.Limiter
	maxTries     uint
	retryBackoff time.Duration
	logger       *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = defaultRatePerSec
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = defaultRetryBackoff
	}

	return &Client{
		http:         &http.Client{Timeout: cfg.Timeout},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		limiter:      rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
		maxTries:     uint(cfg.MaxRetries) + 1,
		retryBackoff: cfg.RetryBackoff,
		logger:       logger,
	}
}

// FetchPools returns every pool listed by the yields API.
func (c *Client) FetchPools(ctx context.Context) ([]Pool, error) {
	var resp envelope[Pool]
	if err := c.get(ctx, "/pools", &resp); err != nil {
		return nil, fmt.Errorf("fetch pools: %w", err)
	}
	return resp.Data, nil
}

// FetchPoolChart returns the daily TVL/APY history of a pool.
func (c *Client) FetchPoolChart(ctx context.Context, poolID string) ([]ChartPoint, error) {
	id, err := uuid.Parse(poolID)
	if err != nil {
		return nil, fmt.Errorf("invalid pool id %q: %w", poolID, err)
	}
	var resp envelope[ChartPoint]
	if err := c.get(ctx, "/chart/"+id.String(), &resp); err != nil {
		return nil, fmt.Errorf("fetch pool chart: %w", err)
	}
	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryBackoff
	policy.MaxInterval = c.retryBackoff * 10

	notify := func(err error, wait time.Duration) {
		c.logger.Warn("defillama request failed", zap.String("path", path), zap.Error(err), zap.Duration("backoff", wait))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.do(ctx, path, out)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(notify),
	)
	return err
}

func (c *Client) do(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return statusErr
		}
		return backoff.Permanent(statusErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
