package defillama

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const poolsBody = `{"status":"success","data":[
	{"chain":"Ethereum","project":"curve-dex","symbol":"DAI-USDC-USDT","tvlUsd":245000000,"apy":4.2,"apyBase":3.2,"apyReward":1.0,"pool":"bd3a3b85-f5a3-4e6a-a9b5-1c5f0a0e0e0e","rewardTokens":["0xD533a949740bb3306d119CC777fa900bA034cd52"],"stablecoin":true},
	{"chain":"Solana","project":"raydium-amm","symbol":"SOL-USDC","tvlUsd":34000000,"apy":24.2,"apyBase":18.5,"apyReward":null,"pool":"9b2f5b6e-0f7a-4b1e-8f0e-2f4b1d7c9a11"}
]}`

func newTestClient(url string) *Client {
	return NewClient(Config{
		BaseURL:       url,
		RatePerSecond: 1000,
		MaxRetries:    2,
		RetryBackoff:  time.Millisecond,
	}, nil)
}

func TestFetchPools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pools", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(poolsBody))
	}))
	defer srv.Close()

	pools, err := newTestClient(srv.URL).FetchPools(context.Background())
	require.NoError(t, err)
	require.Len(t, pools, 2)

	assert.Equal(t, "curve-dex", pools[0].Project)
	assert.Equal(t, 245_000_000.0, pools[0].TVLUSD)
	assert.Equal(t, 1.0, Value(pools[0].APYReward))
	assert.True(t, pools[0].Stablecoin)

	assert.Nil(t, pools[1].APYReward)
	assert.Equal(t, 0.0, Value(pools[1].APYReward))
}

func TestFetchPoolsRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream busy", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(poolsBody))
	}))
	defer srv.Close()

	pools, err := newTestClient(srv.URL).FetchPools(context.Background())
	require.NoError(t, err)
	assert.Len(t, pools, 2)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchPoolsGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchPools(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchPoolsDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchPools(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchPoolChart(t *testing.T) {
	const id = "9b2f5b6e-0f7a-4b1e-8f0e-2f4b1d7c9a11"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chart/"+id, r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success","data":[
			{"timestamp":"2024-03-01T00:00:00.000Z","tvlUsd":1000,"apy":12.5,"apyBase":10,"apyReward":2.5},
			{"timestamp":"2024-03-02T00:00:00.000Z","tvlUsd":1100,"apy":11,"apyBase":11,"apyReward":null}
		]}`))
	}))
	defer srv.Close()

	points, err := newTestClient(srv.URL).FetchPoolChart(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), points[0].Timestamp.UTC())
	assert.Equal(t, 12.5, Value(points[0].APY))
	assert.Equal(t, 1100.0, points[1].TVLUSD)
}

func TestFetchPoolChartRejectsBadID(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:0").FetchPoolChart(context.Background(), "0xabc")
	require.Error(t, err)
}
