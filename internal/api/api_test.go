package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldScope/internal/catalog"
	"yieldScope/internal/storage"
	"yieldScope/internal/storage/memory"
)

const curveFarmID = "ethereum:curve:0xbebc44782c7db0a1a60cb6fe97d0b483032ff1c7"

func newTestServer(t *testing.T, cfg Config) http.Handler {
	t.Helper()
	store := memory.New(storage.SeedFarms(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))...)
	return NewServer(cfg, catalog.NewService(store, nil, nil), nil).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, Config{})
	w := do(t, h, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "ok", body["status"])
	_, err := time.Parse(time.RFC3339Nano, body["timestamp"].(string))
	assert.NoError(t, err)

	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestCalculateIL(t *testing.T) {
	h := newTestServer(t, Config{})
	w := do(t, h, http.MethodPost, "/api/v1/calculator/il",
		`{"token0Amount":1,"token1Amount":3500,"initialPrice":3500,"currentPrice":7000}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.InDelta(t, -5.7191, data["impermanentLoss"], 1e-9)
	assert.InDelta(t, 9899.49, data["lpValue"], 1e-9)
	assert.InDelta(t, 10500, data["holdValue"], 1e-9)
	assert.InDelta(t, 0.707107, data["token0InLP"], 1e-9)
	assert.InDelta(t, 4949.747468, data["token1InLP"], 1e-9)
	assert.InDelta(t, 5.7191, data["breakEvenFees"], 1e-9)
}

func TestCalculateILExtremeAmounts(t *testing.T) {
	h := newTestServer(t, Config{})
	w := do(t, h, http.MethodPost, "/api/v1/calculator/il",
		`{"token0Amount":1e200,"token1Amount":1e200,"initialPrice":1,"currentPrice":1}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.InDelta(t, 0, data["impermanentLoss"], 1e-9)
	assert.InEpsilon(t, 2e200, data["lpValue"], 1e-9)
	assert.InEpsilon(t, 2e200, data["holdValue"], 1e-9)

	w = do(t, h, http.MethodPost, "/api/v1/calculator/il",
		`{"token0Amount":1e300,"token1Amount":1,"initialPrice":1,"currentPrice":1e300}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, decode(t, w)["error"], "float64 range")
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	err := writeJSON(w, http.StatusOK, dataBody{Data: math.Inf(1)})

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["error"])
}

func TestRecoverPanics(t *testing.T) {
	s := NewServer(Config{}, nil, nil)

	h := s.recoverPanics(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/farms", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["error"])

	started := s.recoverPanics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":`))
		panic("boom")
	}))
	w = httptest.NewRecorder()
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		started.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/farms", nil))
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"data":`, w.Body.String())
}

func TestCalculateILValidation(t *testing.T) {
	h := newTestServer(t, Config{})
	cases := map[string]struct {
		body  string
		field string
	}{
		"missing":   {`{"token1Amount":3500,"initialPrice":3500,"currentPrice":7000}`, "token0Amount"},
		"zero":      {`{"token0Amount":1,"token1Amount":3500,"initialPrice":0,"currentPrice":7000}`, "initialPrice"},
		"negative":  {`{"token0Amount":1,"token1Amount":3500,"initialPrice":3500,"currentPrice":-1}`, "currentPrice"},
		"malformed": {`{"token0Amount":`, "body"},
		"wrongType": {`{"token0Amount":"one","token1Amount":3500,"initialPrice":3500,"currentPrice":7000}`, "body"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/v1/calculator/il", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var body errorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Validation error", body.Error)
			require.Len(t, body.Details, 1)
			assert.Equal(t, tc.field, body.Details[0].Field)
		})
	}
}

func TestListFarms(t *testing.T) {
	h := newTestServer(t, Config{})
	w := do(t, h, http.MethodGet, "/api/v1/farms?limit=2", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	data := body["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, 40.5, data[0].(map[string]any)["totalAPY"])

	meta := body["meta"].(map[string]any)
	assert.Equal(t, 6.0, meta["total"])
	assert.Equal(t, 3.0, meta["totalPages"])
}

func TestListFarmsBadQuery(t *testing.T) {
	h := newTestServer(t, Config{})
	for _, target := range []string{
		"/api/v1/farms?sort=apr",
		"/api/v1/farms?limit=500",
		"/api/v1/farms?chains=dogechain",
		"/api/v1/farms?stablecoinOnly=maybe",
	} {
		w := do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestGetFarm(t *testing.T) {
	h := newTestServer(t, Config{})

	w := do(t, h, http.MethodGet, "/api/v1/farms/"+curveFarmID, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, curveFarmID, data["id"])
	assert.Contains(t, data, "riskFactors")

	w = do(t, h, http.MethodGet, "/api/v1/farms/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Farm not found", decode(t, w)["error"])
}

func TestFarmHistory(t *testing.T) {
	h := newTestServer(t, Config{})

	w := do(t, h, http.MethodGet, "/api/v1/farms/"+curveFarmID+"/history?days=7", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode(t, w)["data"], 8)

	w = do(t, h, http.MethodGet, "/api/v1/farms/"+curveFarmID+"/history?days=week", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/farms/nope/history", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegistryRoutes(t *testing.T) {
	h := newTestServer(t, Config{})

	w := do(t, h, http.MethodGet, "/api/v1/chains", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 5)

	w = do(t, h, http.MethodGet, "/api/v1/chains/ethereum", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["data"].(map[string]any)["chainId"])

	w = do(t, h, http.MethodGet, "/api/v1/chains/dogechain", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Chain not found", decode(t, w)["error"])

	w = do(t, h, http.MethodGet, "/api/v1/protocols/curve", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/protocols/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Protocol not found", decode(t, w)["error"])
}

func TestUnknownRoute(t *testing.T) {
	h := newTestServer(t, Config{})
	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/api/v2/farms"},
		{http.MethodDelete, "/api/v1/farms"},
	} {
		w := do(t, h, tc.method, tc.target, "")
		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Not found", decode(t, w)["error"])
	}
}

func TestCurve(t *testing.T) {
	h := newTestServer(t, Config{})

	w := do(t, h, http.MethodGet, "/api/v1/calculator/curve", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].([]any)
	require.Len(t, data, 50)
	assert.Equal(t, -90.0, data[0].(map[string]any)["priceChange"])
	assert.Equal(t, 400.0, data[49].(map[string]any)["priceChange"])

	w = do(t, h, http.MethodGet, "/api/v1/calculator/curve?min=3&max=1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/calculator/curve?points=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/calculator/curve?format=svg", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCurvePNG(t *testing.T) {
	h := newTestServer(t, Config{})
	w := do(t, h, http.MethodGet, "/api/v1/calculator/curve?points=20&format=png", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestBreakeven(t *testing.T) {
	h := newTestServer(t, Config{})

	w := do(t, h, http.MethodGet, "/api/v1/calculator/breakeven?il=-10&apy=36.5&days=50", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.InDelta(t, 100, data["daysToBreakeven"], 1e-9)
	assert.InDelta(t, 73, data["requiredApy"], 1e-9)

	w = do(t, h, http.MethodGet, "/api/v1/calculator/breakeven?il=-10&apy=0", "")
	require.Equal(t, http.StatusOK, w.Code)
	data = decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "never", data["daysToBreakeven"])
	assert.NotContains(t, data, "requiredApy")

	w = do(t, h, http.MethodGet, "/api/v1/calculator/breakeven?apy=10", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/v1/calculator/breakeven?il=-5&apy=10&days=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	h := newTestServer(t, Config{RateLimit: 2})

	for i := 0; i < 2; i++ {
		w := do(t, h, http.MethodGet, "/health", "")
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Too many requests, please try again later.", decode(t, w)["error"])
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.9")
	other := httptest.NewRecorder()
	h.ServeHTTP(other, r)
	assert.Equal(t, http.StatusOK, other.Code, "limits are per client")
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, Config{CORSOrigins: []string{"https://app.example.com"}})

	r := httptest.NewRequest(http.MethodOptions, "/api/v1/calculator/il", nil)
	r.Header.Set("Origin", "https://app.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newTestServer(t, Config{})
	const id = "0b8f3c1e-9a51-4c55-9b7e-2a4f2a9d6c10"

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.Header.Set(requestIDHeader, id)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, id, w.Header().Get(requestIDHeader))
}
