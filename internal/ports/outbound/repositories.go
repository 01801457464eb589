// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mealbuddy/engine/internal/domain/mealplan"
)

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// MealPlanRepository defines the interface for meal plan persistence
type MealPlanRepository interface {
	// Save stores the plan and all of its meals atomically. Saving a plan
	// that is already stored leaves the stored rows unchanged.
	Save(ctx context.Context, plan *mealplan.MealPlan) error
	FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*mealplan.MealPlan, int, error)
}

// ProfileRepository reads user profile data owned by the account system
type ProfileRepository interface {
	// FindLocation returns the user's stored location, or "" when none is set
	FindLocation(ctx context.Context, userID uuid.UUID) (string, error)
}

// CacheRepository defines the interface for caching
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// StorageService stores exported documents in object storage
type StorageService interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// MetricsRecorder receives business measurements from the application layer
type MetricsRecorder interface {
	GenerationCompleted(d time.Duration)
	PersistenceFailed(reason string)
	PlanExported(status string)
	PricingReported(budgetTier string)
	CacheOperation(cache, result string)
}

// NopMetrics discards every measurement
type NopMetrics struct{}

func (NopMetrics) GenerationCompleted(time.Duration) {}
func (NopMetrics) PersistenceFailed(string)          {}
func (NopMetrics) PlanExported(string)               {}
func (NopMetrics) PricingReported(string)            {}
func (NopMetrics) CacheOperation(string, string)     {}
