// Package http exposes the legal assistant over a JSON HTTP API.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/juralis/juralis-core/internal/core/ports/driven"
	"github.com/juralis/juralis-core/internal/core/ports/driving"
	"github.com/juralis/juralis-core/internal/runtime"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	queryService driving.QueryService
	ingestion    driving.IngestionService

	// Infrastructure
	registry  driven.ConnectorRegistry
	services  *runtime.Services
	taskQueue driven.TaskQueue // can be nil, ingestion then runs inline
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	QueryService driving.QueryService
	Ingestion    driving.IngestionService
	Registry     driven.ConnectorRegistry
	Services     *runtime.Services
	TaskQueue    driven.TaskQueue
	Logger       *slog.Logger
}

// DefaultAddr returns sensible defaults
func DefaultAddr() (string, int) {
	return "0.0.0.0", 8080
}

// NewServer creates a new HTTP server
func NewServer(cfg Config) *Server {
	host := cfg.Host
	port := cfg.Port
	if host == "" {
		host, _ = DefaultAddr()
	}
	if port == 0 {
		_, port = DefaultAddr()
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:       http.NewServeMux(),
		version:      version,
		logger:       logger,
		queryService: cfg.QueryService,
		ingestion:    cfg.Ingestion,
		registry:     cfg.Registry,
		services:     cfg.Services,
		taskQueue:    cfg.TaskQueue,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /healthz", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Query endpoints
	s.router.HandleFunc("POST /api/v1/query", s.handleQuery)
	s.router.HandleFunc("POST /api/v1/search", s.handleSearch)

	// Source and ingestion endpoints
	s.router.HandleFunc("GET /api/v1/sources", s.handleListSources)
	s.router.HandleFunc("POST /api/v1/ingest", s.handleIngestAll)
	s.router.HandleFunc("POST /api/v1/sources/{id}/ingest", s.handleIngestSource)

	// Capability status
	s.router.HandleFunc("GET /api/v1/status", s.handleStatus)
}

// Handler returns the root handler, useful for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until the context is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
