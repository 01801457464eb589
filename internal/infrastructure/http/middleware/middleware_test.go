package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mealbuddy/engine/internal/infrastructure/config"
	"github.com/mealbuddy/engine/internal/infrastructure/security"
	apperrors "github.com/mealbuddy/engine/pkg/errors"
	"github.com/mealbuddy/engine/test/testutils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "MealBuddy", Environment: "test"},
		Server: config.ServerConfig{
			EnableCORS:     true,
			AllowedOrigins: []string{"https://app.example.com"},
		},
		Auth: config.AuthConfig{
			JWTSecret:     "test-secret",
			JWTExpiration: time.Hour,
			Issuer:        "mealbuddy",
			Audience:      "mealbuddy-api",
		},
	}
}

func newRouter(m *Middleware, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(m.RequestID(), m.Recovery(), m.ErrorHandler())
	r.Use(handlers...)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	m := New(testConfig(), zap.NewNop())
	r := newRouter(m)
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, rec.Header().Get("X-Request-ID"), rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = serve(r, req)
	assert.Equal(t, "abc-123", rec.Body.String())
}

func TestRecovery(t *testing.T) {
	m := New(testConfig(), zap.NewNop())
	r := newRouter(m)
	r.GET("/", func(c *gin.Context) { panic("boom") })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	body := testutils.NewHTTPAssertions(t).ErrorResponse(rec, http.StatusInternalServerError, apperrors.CodeInternal)
	assert.NotEmpty(t, body.Error.RequestID)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   apperrors.ErrorCode
	}{
		{"validation", apperrors.NewValidationError("familySize must be at least 1"), http.StatusBadRequest, apperrors.CodeValidationFailed},
		{"not found", apperrors.NewMealPlanNotFoundError("x"), http.StatusNotFound, apperrors.CodeMealPlanNotFound},
		{"timeout", apperrors.NewTimeoutError("store meal plan", errors.New("deadline")), http.StatusGatewayTimeout, apperrors.CodeTimeout},
		{"plain error", errors.New("pq: relation does not exist"), http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(testConfig(), zap.NewNop())
			r := newRouter(m)
			r.GET("/", func(c *gin.Context) { _ = c.Error(tt.err) })

			rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

			body := testutils.NewHTTPAssertions(t).ErrorResponse(rec, tt.status, tt.code)
			assert.NotContains(t, rec.Body.String(), "pq:")
			assert.Equal(t, rec.Header().Get("X-Request-ID"), body.Error.RequestID)
		})
	}
}

func TestErrorHandler_ServerErrorsHideDetails(t *testing.T) {
	m := New(testConfig(), zap.NewNop())
	r := newRouter(m)
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(apperrors.NewDatabaseError("store meal plan", errors.New("connection reset by peer")))
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	body := testutils.NewHTTPAssertions(t).ErrorResponse(rec, http.StatusInternalServerError, apperrors.CodeDatabaseError)
	assert.Empty(t, body.Error.Details)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}

func TestSecurityHeaders(t *testing.T) {
	m := New(testConfig(), zap.NewNop())
	r := newRouter(m, m.SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{}) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))

	testutils.NewHTTPAssertions(t).SecurityHeaders(rec)
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORS(t *testing.T) {
	m := New(testConfig(), zap.NewNop())
	r := newRouter(m, m.CORS())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := serve(r, req)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = serve(r, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthenticate(t *testing.T) {
	cfg := testConfig()
	auth := security.NewAuthService(cfg, zap.NewNop())
	m := New(cfg, zap.NewNop())

	r := newRouter(m, m.Authenticate(auth))
	r.GET("/", func(c *gin.Context) {
		userID, ok := UserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, userID.String())
	})

	userID := uuid.New()
	token, err := auth.GenerateAccessToken(userID, "cook@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := serve(r, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), rec.Body.String())

	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer not-a-token",
		"scheme":  "Basic " + token,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := serve(r, req)
			testutils.NewHTTPAssertions(t).ErrorResponse(rec, http.StatusUnauthorized, apperrors.CodeUnauthorized)
		})
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enable: true, RequestsPerMin: 1, BurstSize: 2}
	m := New(cfg, zap.NewNop())
	defer m.Close()

	r := newRouter(m, m.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req)
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, request("10.0.0.1").Code)

	rec := request("10.0.0.1")
	testutils.NewHTTPAssertions(t).ErrorResponse(rec, http.StatusTooManyRequests, apperrors.CodeTooManyRequests)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, request("10.0.0.2").Code)
}

func TestClientLimiter_PurgeIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newClientLimiter(60, 1, time.Minute)
	defer l.stop()
	l.now = func() time.Time { return now }

	l.allow("a")
	now = now.Add(30 * time.Second)
	l.allow("b")
	now = now.Add(45 * time.Second)

	l.purgeIdle()

	assert.Equal(t, 1, l.size())
}

func TestTimeout(t *testing.T) {
	m := New(testConfig(), zap.NewNop())
	r := newRouter(m, m.Timeout(50*time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(50*time.Millisecond), deadline, 50*time.Millisecond)
		c.Status(http.StatusNoContent)
	})

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMaintenanceMode(t *testing.T) {
	enabled := true
	m := New(testConfig(), zap.NewNop())
	r := newRouter(m, m.MaintenanceMode(func() bool { return enabled }))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	testutils.NewHTTPAssertions(t).ErrorResponse(rec, http.StatusServiceUnavailable, apperrors.CodeServiceUnavailable)

	enabled = false
	rec = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
