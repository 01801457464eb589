package middleware

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mealbuddy/engine/internal/infrastructure/security"
	apperrors "github.com/mealbuddy/engine/pkg/errors"
)

const contentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"

// TokenValidator resolves a bearer token to the caller it identifies
type TokenValidator interface {
	ValidateToken(token string) (*security.Identity, error)
}

// SecurityHeaders adds security headers for API responses
func (m *Middleware) SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", contentSecurityPolicy)
		c.Header("Cache-Control", "no-store")

		if m.config.IsProduction() {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

// Authenticate requires a valid bearer token and stores the caller's user ID
func (m *Middleware) Authenticate(auth TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found {
			token = ""
		}

		identity, err := auth.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			message := "Invalid or expired token"
			if errors.Is(err, security.ErrMissingToken) {
				message = "Authorization header with bearer token is required"
			}

			m.logger.Debug("Authentication failed",
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.Error(err),
			)

			appErr := apperrors.NewUnauthorizedError(message)
			c.AbortWithStatusJSON(appErr.StatusCode(), apperrors.ToErrorResponse(appErr, c.GetString(RequestIDKey)))
			return
		}

		c.Set(UserIDKey, identity.UserID)
		c.Next()
	}
}

// RateLimit limits each client IP to the configured request rate
func (m *Middleware) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.limiter == nil {
			c.Next()
			return
		}

		if !m.limiter.allow(c.ClientIP()) {
			appErr := apperrors.NewAppError(apperrors.CodeTooManyRequests, "Rate limit exceeded", "")
			c.Header("Retry-After", strconv.Itoa(m.limiter.retryAfter()))
			c.AbortWithStatusJSON(appErr.StatusCode(), apperrors.ToErrorResponse(appErr, c.GetString(RequestIDKey)))
			return
		}

		c.Next()
	}
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client. Idle buckets are swept
// on the cleanup interval.
type clientLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
	done     chan struct{}
	stopOnce sync.Once
}

func newClientLimiter(requestsPerMin, burst int, cleanupInterval time.Duration) *clientLimiter {
	if requestsPerMin < 1 {
		requestsPerMin = 1
	}
	if burst < 1 {
		burst = 1
	}

	l := &clientLimiter{
		clients: make(map[string]*clientEntry),
		limit:   rate.Limit(float64(requestsPerMin) / 60),
		burst:   burst,
		idle:    cleanupInterval,
		now:     time.Now,
		done:    make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go l.sweep(cleanupInterval)
	}

	return l
}

func (l *clientLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.clients[key]
	if !exists {
		entry = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = l.now()

	return entry.limiter.AllowN(entry.lastSeen, 1)
}

// retryAfter is the number of seconds until one token is available
func (l *clientLimiter) retryAfter() int {
	return int(math.Ceil(1 / float64(l.limit)))
}

func (l *clientLimiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.purgeIdle()
		case <-l.done:
			return
		}
	}
}

func (l *clientLimiter) purgeIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.idle)
	for key, entry := range l.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

func (l *clientLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *clientLimiter) stop() {
	l.stopOnce.Do(func() { close(l.done) })
}
