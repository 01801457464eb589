package opsserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/infrastructure/config"
	"github.com/mealbuddy/engine/internal/infrastructure/monitoring"
	"github.com/mealbuddy/engine/pkg/healthcheck"
)

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "MealBuddy", Version: "1.2.3"},
		Server: config.ServerConfig{Host: "127.0.0.1"},
		Monitoring: config.MonitoringConfig{
			MetricsPort:     9090,
			HealthCheckPath: "/health",
			ReadinessPath:   "/ready",
		},
	}
}

func staticChecker(status healthcheck.Status) *healthcheck.CustomChecker {
	return healthcheck.NewCustomChecker("dependency", func(ctx context.Context) (healthcheck.Status, string, interface{}) {
		return status, "", nil
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Probes(t *testing.T) {
	tests := []struct {
		name       string
		status     healthcheck.Status
		wantHealth int
		wantReady  int
	}{
		{"healthy", healthcheck.StatusHealthy, http.StatusOK, http.StatusOK},
		{"degraded", healthcheck.StatusDegraded, http.StatusOK, http.StatusOK},
		{"unhealthy", healthcheck.StatusUnhealthy, http.StatusServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			health := healthcheck.New("1.2.3", zap.NewNop())
			health.SetCacheTTL(0)
			health.Register("dependency", staticChecker(tt.status))
			s := NewServer(testConfig(), health, nil, zap.NewNop())

			assert.Equal(t, tt.wantHealth, get(t, s.Handler(), "/health").Code)
			assert.Equal(t, tt.wantReady, get(t, s.Handler(), "/ready").Code)
			assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/live").Code)
		})
	}
}

func TestServer_Metrics(t *testing.T) {
	metrics := monitoring.NewMetricsCollector(zap.NewNop())
	metrics.PlanExported("failure")
	s := NewServer(testConfig(), healthcheck.New("1.2.3", zap.NewNop()), metrics.Handler(), zap.NewNop())

	rec := get(t, s.Handler(), "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mealbuddy_meal_plan_exports_total{status="failure"} 1`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	s := NewServer(testConfig(), healthcheck.New("1.2.3", zap.NewNop()), nil, zap.NewNop())

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/metrics").Code)
}

func TestServer_OpenAPI(t *testing.T) {
	s := NewServer(testConfig(), healthcheck.New("1.2.3", zap.NewNop()), nil, zap.NewNop())

	rec := get(t, s.Handler(), "/openapi.yaml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "/location-recommendations:")
	assert.Contains(t, rec.Body.String(), "/meal-plans/{id}:")

	rec = get(t, s.Handler(), "/openapi.json")
	require.Equal(t, http.StatusOK, rec.Code)
	var index map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &index))
	assert.Equal(t, "1.2.3", index["version"])
	assert.Equal(t, "http://example.com/openapi.yaml", index["spec_url"])
}

func TestServer_Addr(t *testing.T) {
	s := NewServer(testConfig(), healthcheck.New("1.2.3", zap.NewNop()), nil, zap.NewNop())

	assert.Equal(t, "127.0.0.1:9090", s.Addr())
}
