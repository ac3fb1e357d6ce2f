// Package server exposes the assessment pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/veridoc/veridoc/internal/assistant"
	"github.com/veridoc/veridoc/internal/config"
	"github.com/veridoc/veridoc/internal/pipeline"
	"github.com/veridoc/veridoc/internal/storage"
)

// Server is the HTTP front end over the assessor, store and assistant.
type Server struct {
	cfg       config.ServerConfig
	logger    *zap.Logger
	assessor  *pipeline.Assessor
	store     storage.Store
	responder *assistant.Responder
	version   string
	httpSrv   *http.Server
}

// New builds a Server around its collaborators.
func New(cfg config.ServerConfig, assessor *pipeline.Assessor, store storage.Store, responder *assistant.Responder, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:       cfg,
		logger:    logger,
		assessor:  assessor,
		store:     store,
		responder: responder,
		version:   version,
	}
}

// Router assembles the chi router with the standard middleware chain.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Post("/upload", s.handleUpload)
	r.Get("/audit", s.handleAudit)
	r.Get("/dashboard/metrics/summary", s.handleMetricsSummary)
	r.Get("/dashboard/metrics/timeseries", s.handleTimeseries)
	r.Post("/assistant/query", s.handleAssistantQuery)

	return r
}

// Start runs the HTTP server until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
