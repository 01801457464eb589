// Package opsserver provides the operational HTTP server, served on the
// metrics port: Prometheus metrics, health probes and the API description
package opsserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/infrastructure/config"
	"github.com/mealbuddy/engine/pkg/healthcheck"
)

// Server exposes operational endpoints
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  *chi.Mux
	health  *healthcheck.HealthCheck
	metrics http.Handler
	openAPI *OpenAPIHandler
}

// NewServer creates the operational server. A nil metrics handler leaves
// /metrics unmounted.
func NewServer(cfg *config.Config, health *healthcheck.HealthCheck, metrics http.Handler, log *zap.Logger) *Server {
	s := &Server{
		config:  cfg,
		logger:  log.Named("ops-server"),
		health:  health,
		metrics: metrics,
		openAPI: NewOpenAPIHandler(cfg.App.Version, log),
	}

	s.router = s.setupRoutes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Monitoring.MetricsPort),
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	healthPath := s.config.Monitoring.HealthCheckPath
	if healthPath == "" {
		healthPath = "/health"
	}
	readyPath := s.config.Monitoring.ReadinessPath
	if readyPath == "" {
		readyPath = "/ready"
	}

	r.Get(healthPath, s.health.Handler())
	r.Get(readyPath, s.health.ReadinessHandler())
	r.Get("/live", s.health.LivenessHandler())

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Get("/openapi.yaml", s.openAPI.ServeOpenAPISpec)
	r.Get("/openapi.json", s.openAPI.ServeOpenAPIIndex)

	return r
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting operations server", zap.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the operations server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down operations server")
	return s.server.Shutdown(ctx)
}
