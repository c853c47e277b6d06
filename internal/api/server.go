// Package api serves the farm catalog and the impermanent-loss calculator over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"yieldScope/internal/catalog"
	"yieldScope/internal/model"
)

const (
	DefaultAddr       = ":3001"
	DefaultCORSOrigin = "http://localhost:3000"
	DefaultRateLimit  = 100

	shutdownTimeout = 10 * time.Second
)

// Catalog is the read side the handlers need.
type Catalog interface {
	List(ctx context.Context, params catalog.ListParams) (model.Page[model.Farm], error)
	Get(ctx context.Context, id string) (model.FarmDetail, error)
	History(ctx context.Context, id string, days int) ([]model.APYHistoryPoint, error)
	Chains() []model.ChainInfo
	Chain(id string) (model.ChainInfo, error)
	Protocols() []model.Protocol
	Protocol(id string) (model.Protocol, error)
}

// Config holds HTTP server settings.
type Config struct {
	Addr         string
	CORSOrigins  []string
	RateLimit    int // requests per minute per client, 0 disables
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server wires routes and middleware around a Catalog.
type Server struct {
	cfg     Config
	catalog Catalog
	logger  *zap.Logger
	limiter *clientLimiter
	handler http.Handler
}

func NewServer(cfg Config, c Catalog, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{DefaultCORSOrigin}
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 15 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 60 * time.Second
	}

	s := &Server{cfg: cfg, catalog: c, logger: logger}
	if cfg.RateLimit > 0 {
		s.limiter = newClientLimiter(cfg.RateLimit, time.Minute)
	}
	s.handler = s.routes()
	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handleNotFound)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/farms", s.handleListFarms).Methods(http.MethodGet)
	v1.HandleFunc("/farms/{id}", s.handleGetFarm).Methods(http.MethodGet)
	v1.HandleFunc("/farms/{id}/history", s.handleFarmHistory).Methods(http.MethodGet)
	v1.HandleFunc("/protocols", s.handleListProtocols).Methods(http.MethodGet)
	v1.HandleFunc("/protocols/{id}", s.handleGetProtocol).Methods(http.MethodGet)
	v1.HandleFunc("/chains", s.handleListChains).Methods(http.MethodGet)
	v1.HandleFunc("/chains/{id}", s.handleGetChain).Methods(http.MethodGet)
	v1.HandleFunc("/calculator/il", s.handleCalculateIL).Methods(http.MethodPost)
	v1.HandleFunc("/calculator/curve", s.handleCurve).Methods(http.MethodGet)
	v1.HandleFunc("/calculator/breakeven", s.handleBreakeven).Methods(http.MethodGet)

	var h http.Handler = r
	if s.limiter != nil {
		h = s.rateLimit(h)
	}
	h = securityHeaders(h)
	h = s.accessLog(h)
	h = s.recoverPanics(h)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader, "RateLimit-Limit", "RateLimit-Remaining"},
		AllowCredentials: true,
	})
	return c.Handler(h)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("api server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
