// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mealbuddy/engine/internal/domain/mealplan"
	"github.com/mealbuddy/engine/internal/domain/pricing"
	"github.com/mealbuddy/engine/internal/ports/outbound"
)

// MockMealPlanRepository provides a mock implementation of MealPlanRepository
type MockMealPlanRepository struct {
	mock.Mock
	plans map[uuid.UUID]*mealplan.MealPlan
	mu    sync.RWMutex
}

// NewMockMealPlanRepository creates a new mock meal plan repository
func NewMockMealPlanRepository() *MockMealPlanRepository {
	return &MockMealPlanRepository{
		plans: make(map[uuid.UUID]*mealplan.MealPlan),
	}
}

// Save records the plan when the expectation returns no error
func (m *MockMealPlanRepository) Save(ctx context.Context, plan *mealplan.MealPlan) error {
	args := m.Called(ctx, plan)

	if args.Error(0) == nil {
		m.mu.Lock()
		m.plans[plan.ID()] = plan
		m.mu.Unlock()
	}

	return args.Error(0)
}

// FindByID finds a plan by ID
func (m *MockMealPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*mealplan.MealPlan, error) {
	args := m.Called(ctx, id)

	if args.Error(1) != nil {
		return nil, args.Error(1)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if p, exists := m.plans[id]; exists {
		return p, nil
	}

	return args.Get(0).(*mealplan.MealPlan), nil
}

// FindByOwner finds a page of plans by owner
func (m *MockMealPlanRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*mealplan.MealPlan, int, error) {
	args := m.Called(ctx, ownerID, offset, limit)
	return args.Get(0).([]*mealplan.MealPlan), args.Int(1), args.Error(2)
}

// Saved returns a stored plan
func (m *MockMealPlanRepository) Saved(id uuid.UUID) (*mealplan.MealPlan, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plans[id]
	return p, ok
}

// MockProfileRepository provides a mock implementation of ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

// FindLocation returns the stored location for a user
func (m *MockProfileRepository) FindLocation(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

// MockCacheRepository provides a mock implementation of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

// Get retrieves a value
func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Set stores a value
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

// Delete removes a value
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Exists checks for a key
func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockStorageService provides a mock implementation of StorageService
type MockStorageService struct {
	mock.Mock
}

// Upload stores a document
func (m *MockStorageService) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

// MockPricingReporter provides a mock pricing collaborator
type MockPricingReporter struct {
	mock.Mock
}

// Report returns the configured pricing report
func (m *MockPricingReporter) Report(ctx context.Context, ingredients []string, location string, tier pricing.BudgetTier) (*pricing.Report, error) {
	args := m.Called(ctx, ingredients, location, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Report), args.Error(1)
}

// RecordingMetrics counts the measurements it receives
type RecordingMetrics struct {
	mu                  sync.Mutex
	Generations         int
	PersistenceFailures []string
	Exports             []string
	PricingReports      []string
	CacheResults        []string
}

var _ outbound.MetricsRecorder = (*RecordingMetrics)(nil)

func (r *RecordingMetrics) GenerationCompleted(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Generations++
}

func (r *RecordingMetrics) PersistenceFailed(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PersistenceFailures = append(r.PersistenceFailures, reason)
}

func (r *RecordingMetrics) PlanExported(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Exports = append(r.Exports, status)
}

func (r *RecordingMetrics) PricingReported(budgetTier string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PricingReports = append(r.PricingReports, budgetTier)
}

func (r *RecordingMetrics) CacheOperation(_, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CacheResults = append(r.CacheResults, result)
}

// FixedClock always returns the same instant
type FixedClock struct {
	Time time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time { return c.Time }

// SequencePicker returns its indexes in order, cycling when exhausted
type SequencePicker struct {
	mu      sync.Mutex
	Indexes []int
	next    int
}

// Pick returns the next index in the sequence
func (p *SequencePicker) Pick(int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Indexes) == 0 {
		return 0
	}
	idx := p.Indexes[p.next%len(p.Indexes)]
	p.next++
	return idx
}
