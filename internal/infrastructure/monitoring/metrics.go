package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/domain/mealplan"
	"github.com/mealbuddy/engine/internal/domain/shared"
	"github.com/mealbuddy/engine/internal/ports/outbound"
)

const namespace = "mealbuddy"

// MetricsCollector handles Prometheus metrics collection
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// Business metrics
	mealPlansGenerated  *prometheus.CounterVec
	generationDuration  prometheus.Histogram
	planTotalCost       prometheus.Histogram
	persistenceFailures *prometheus.CounterVec
	pricingReports      *prometheus.CounterVec
	exportsTotal        *prometheus.CounterVec
	cacheOperations     *prometheus.CounterVec
	errorRateTotal      *prometheus.CounterVec

	// Database metrics
	dbQueryDuration *prometheus.HistogramVec
}

var _ outbound.MetricsRecorder = (*MetricsCollector)(nil)

// NewMetricsCollector creates a collector backed by its own registry, with
// the Go runtime and process collectors attached
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &MetricsCollector{
		logger:   logger,
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		httpResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path", "status_code"},
		),

		mealPlansGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "meal_plans_generated_total",
				Help:      "Total number of meal plans generated and stored",
			},
			[]string{"budget_tier"},
		),
		generationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "meal_plan_generation_duration_seconds",
				Help:      "Time to assemble, price and store a meal plan",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
		),
		planTotalCost: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "meal_plan_total_cost_dollars",
				Help:      "Estimated weekly cost of generated meal plans",
				Buckets:   []float64{25, 50, 75, 100, 150, 200, 300, 500},
			},
		),
		persistenceFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "meal_plan_persistence_failures_total",
				Help:      "Meal plans discarded because they could not be stored",
			},
			[]string{"reason"},
		),
		pricingReports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pricing_reports_total",
				Help:      "Pricing reports computed, by budget tier",
			},
			[]string{"budget_tier"},
		),
		exportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "meal_plan_exports_total",
				Help:      "Meal plan exports to object storage",
			},
			[]string{"status"},
		),
		cacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_operations_total",
				Help:      "Cache lookups by result",
			},
			[]string{"cache", "result"},
		),
		errorRateTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Errors by source and type",
			},
			[]string{"service", "error_type"},
		),
		dbQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_query_duration_seconds",
				Help:      "Database statement latency by operation and status",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"operation", "status"},
		),
	}
}

// HTTPMiddleware creates a Gin middleware for HTTP metrics collection
func (m *MetricsCollector) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		duration := time.Since(start).Seconds()
		statusCode := strconv.Itoa(c.Writer.Status())

		m.httpRequestsTotal.WithLabelValues(c.Request.Method, path, statusCode).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, path, statusCode).Observe(duration)
		m.httpResponseSize.WithLabelValues(c.Request.Method, path, statusCode).Observe(float64(c.Writer.Size()))

		if c.Writer.Status() >= 400 {
			errorType := "client_error"
			if c.Writer.Status() >= 500 {
				errorType = "server_error"
			}
			m.errorRateTotal.WithLabelValues("http", errorType).Inc()
		}
	}
}

// MealPlanGenerated records a stored plan
func (m *MetricsCollector) MealPlanGenerated(budgetTier string, totalCost float64) {
	m.mealPlansGenerated.WithLabelValues(budgetTier).Inc()
	m.planTotalCost.Observe(totalCost)
}

// HandleMealPlanGenerated is an event handler for mealplan.generated
func (m *MetricsCollector) HandleMealPlanGenerated(event shared.DomainEvent) error {
	generated, ok := event.(mealplan.MealPlanGeneratedEvent)
	if !ok {
		return nil
	}
	m.MealPlanGenerated(generated.BudgetTier, generated.TotalCost)
	return nil
}

// GenerationCompleted records the end-to-end generation latency
func (m *MetricsCollector) GenerationCompleted(d time.Duration) {
	m.generationDuration.Observe(d.Seconds())
}

// PersistenceFailed records a discarded plan
func (m *MetricsCollector) PersistenceFailed(reason string) {
	m.persistenceFailures.WithLabelValues(reason).Inc()
}

// PricingReported records a freshly computed pricing report
func (m *MetricsCollector) PricingReported(budgetTier string) {
	m.pricingReports.WithLabelValues(budgetTier).Inc()
}

// PlanExported records an export attempt
func (m *MetricsCollector) PlanExported(status string) {
	m.exportsTotal.WithLabelValues(status).Inc()
}

// CacheOperation records a cache lookup result: hit, miss or error
func (m *MetricsCollector) CacheOperation(cache, result string) {
	m.cacheOperations.WithLabelValues(cache, result).Inc()
}

func (m *MetricsCollector) RecordError(service, errorType string) {
	m.errorRateTotal.WithLabelValues(service, errorType).Inc()
}

// DBQueryObserved records one database statement
func (m *MetricsCollector) DBQueryObserved(operation string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.dbQueryDuration.WithLabelValues(operation, status).Observe(d.Seconds())
}

// Registry exposes the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
