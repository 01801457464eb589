// Package server provides the JSON API HTTP server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/infrastructure/config"
	"github.com/mealbuddy/engine/internal/infrastructure/http/handlers"
	"github.com/mealbuddy/engine/internal/infrastructure/http/middleware"
	"github.com/mealbuddy/engine/internal/infrastructure/monitoring"
	"github.com/mealbuddy/engine/internal/ports/inbound"
	apperrors "github.com/mealbuddy/engine/pkg/errors"
)

// Dependencies groups what the API server routes to
type Dependencies struct {
	MealPlans inbound.MealPlanService
	Pricing   inbound.PricingService
	Auth      middleware.TokenValidator
	Metrics   *monitoring.MetricsCollector
	Tracing   *monitoring.TracingProvider
	// Maintenance reports whether API traffic should be refused
	Maintenance func() bool
}

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     *zap.Logger
	engine     *gin.Engine
	server     *http.Server
	middleware *middleware.Middleware
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Maintenance == nil {
		deps.Maintenance = func() bool { return false }
	}

	s := &Server{
		config:     cfg,
		logger:     logger.Named("api-server"),
		middleware: middleware.New(cfg, logger),
	}

	engine, err := s.setupRouter(deps)
	if err != nil {
		return nil, err
	}
	s.engine = engine

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           engine,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	return s, nil
}

// setupRouter configures the HTTP router with middleware and routes
func (s *Server) setupRouter(deps Dependencies) (*gin.Engine, error) {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	if err := r.SetTrustedProxies(s.config.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	m := s.middleware

	// Global middleware
	r.Use(m.RequestID())
	if deps.Tracing != nil {
		r.Use(deps.Tracing.HTTPMiddleware())
	}
	r.Use(m.Logger())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.HTTPMiddleware())
	}
	r.Use(m.Recovery())
	r.Use(m.SecurityHeaders())
	r.Use(m.CORS())
	r.Use(m.RateLimit())
	r.Use(m.Timeout(s.config.Server.RequestTimeout))
	r.Use(m.ErrorHandler())

	r.NoRoute(func(c *gin.Context) {
		appErr := apperrors.NewNotFoundError("Route")
		c.JSON(appErr.StatusCode(), apperrors.ToErrorResponse(appErr, c.GetString(middleware.RequestIDKey)))
	})
	r.NoMethod(func(c *gin.Context) {
		appErr := apperrors.NewAppError(apperrors.CodeBadRequest, "Method not allowed", c.Request.Method)
		c.JSON(http.StatusMethodNotAllowed, apperrors.ToErrorResponse(appErr, c.GetString(middleware.RequestIDKey)))
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(m.MaintenanceMode(deps.Maintenance))

	handlers.NewPricingHandlers(deps.Pricing, s.logger).RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(m.Authenticate(deps.Auth))
	handlers.NewMealPlanHandlers(deps.MealPlans, s.logger).RegisterRoutes(protected)

	return r, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	defer s.middleware.Close()
	return s.server.Shutdown(ctx)
}
