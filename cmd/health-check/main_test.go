package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mealbuddy/engine/pkg/healthcheck"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		status healthcheck.Status
		expect healthcheck.Status
		want   int
	}{
		{healthcheck.StatusHealthy, healthcheck.StatusHealthy, exitCodeSuccess},
		{healthcheck.StatusDegraded, healthcheck.StatusDegraded, exitCodeSuccess},
		{healthcheck.StatusDegraded, healthcheck.StatusHealthy, exitCodeFailure},
		{healthcheck.StatusUnhealthy, healthcheck.StatusDegraded, exitCodeFailure},
		{"", healthcheck.StatusDegraded, exitCodeFailure},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCode(tt.status, tt.expect), "%s expecting %s", tt.status, tt.expect)
	}
}

func TestRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"degraded","version":"1.0.0","checks":[{"name":"redis","status":"degraded","duration_ms":2}]}`))
	}))
	defer srv.Close()

	opts := Options{URL: srv.URL, OutputFormat: "compact", ExpectedStatus: "degraded"}
	assert.Equal(t, exitCodeSuccess, run(opts))

	opts.ExpectedStatus = "healthy"
	assert.Equal(t, exitCodeFailure, run(opts))
}

func TestRun_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	assert.Equal(t, exitCodeError, run(Options{URL: url, ExpectedStatus: "degraded"}))
}
