package pricing_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apppricing "github.com/mealbuddy/engine/internal/application/pricing"
	"github.com/mealbuddy/engine/internal/domain/pricing"
	"github.com/mealbuddy/engine/internal/infrastructure/persistence/memory"
	"github.com/mealbuddy/engine/internal/infrastructure/security"
	"github.com/mealbuddy/engine/internal/ports/inbound"
	"github.com/mealbuddy/engine/internal/ports/outbound"
	apperrors "github.com/mealbuddy/engine/pkg/errors"
	"github.com/mealbuddy/engine/test/testutils"
)

func newService(cache outbound.CacheRepository, metrics outbound.MetricsRecorder) *apppricing.Service {
	return apppricing.NewService(
		pricing.NewEngine(),
		cache,
		time.Minute,
		security.NewValidationService(zap.NewNop()),
		metrics,
		zap.NewNop(),
	)
}

func floridaCommand() inbound.PricingCommand {
	return inbound.PricingCommand{
		Location:         "Miami, Florida",
		Ingredients:      []string{"salmon", "rice"},
		BudgetPreference: "budget",
	}
}

func TestGetLocationRecommendations(t *testing.T) {
	svc := newService(nil, nil)

	report, err := svc.GetLocationRecommendations(context.Background(), floridaCommand())
	require.NoError(t, err)

	require.Len(t, report.IngredientPricing, 2)
	assert.InDelta(t, 12.99*0.9, report.IngredientPricing[0].LocalPrice, 1e-9)
	assert.Equal(t, []string{"citrus fruits", "tomatoes", "peppers", "tropical fruits"}, report.RegionalSuggestions)
	assert.InDelta(t, 7.5, report.CostOptimization.TotalSavings, 1e-9)
}

func TestGetLocationRecommendations_Validation(t *testing.T) {
	svc := newService(nil, nil)

	tests := []struct {
		name string
		cmd  inbound.PricingCommand
	}{
		{"missing location", inbound.PricingCommand{Ingredients: []string{"rice"}, BudgetPreference: "budget"}},
		{"no ingredients", inbound.PricingCommand{Location: "Ohio", BudgetPreference: "budget"}},
		{"bad tier", inbound.PricingCommand{Location: "Ohio", Ingredients: []string{"rice"}, BudgetPreference: "luxury"}},
		{"blank ingredient", inbound.PricingCommand{Location: "Ohio", Ingredients: []string{"chicken", "   "}, BudgetPreference: "budget"}},
		{"empty ingredient", inbound.PricingCommand{Location: "Ohio", Ingredients: []string{"", "rice"}, BudgetPreference: "budget"}},
		{"tier not lower case", inbound.PricingCommand{Location: "Ohio", Ingredients: []string{"rice"}, BudgetPreference: "BUDGET "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetLocationRecommendations(context.Background(), tt.cmd)
			assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed), "got %v", err)
		})
	}
}

func TestGetLocationRecommendations_IngredientNamesAreNotRewritten(t *testing.T) {
	svc := newService(nil, nil)

	report, err := svc.GetLocationRecommendations(context.Background(), inbound.PricingCommand{
		Location:         "Ohio",
		Ingredients:      []string{"Chicken Breast", "chicken  breast"},
		BudgetPreference: "budget",
	})
	require.NoError(t, err)

	require.Len(t, report.IngredientPricing, 2)
	assert.Equal(t, "Chicken Breast", report.IngredientPricing[0].Name)
	assert.InDelta(t, 6.99*0.9, report.IngredientPricing[0].LocalPrice, 1e-9)
	// inner whitespace is kept, so the name misses the catalog
	assert.Equal(t, "chicken  breast", report.IngredientPricing[1].Name)
	assert.InDelta(t, pricing.FallbackPrice*0.9, report.IngredientPricing[1].LocalPrice, 1e-9)
	assert.InDelta(t, 7.5, report.CostOptimization.TotalSavings, 1e-9)
}

func TestGetLocationRecommendations_CacheHitReturnsIdenticalReport(t *testing.T) {
	cache := memory.NewCacheRepository(0)
	metrics := &testutils.RecordingMetrics{}
	svc := newService(cache, metrics)
	ctx := context.Background()

	first, err := svc.GetLocationRecommendations(ctx, floridaCommand())
	require.NoError(t, err)

	cmd := floridaCommand()
	cmd.Location = "MIAMI, FLORIDA"
	second, err := svc.GetLocationRecommendations(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"miss", "hit"}, metrics.CacheResults)
	assert.Equal(t, []string{"budget"}, metrics.PricingReports)
	assert.Equal(t, 1, cache.Len())
}

func TestGetLocationRecommendations_IngredientOrderIsPartOfKey(t *testing.T) {
	cache := memory.NewCacheRepository(0)
	svc := newService(cache, nil)
	ctx := context.Background()

	_, err := svc.GetLocationRecommendations(ctx, floridaCommand())
	require.NoError(t, err)

	cmd := floridaCommand()
	cmd.Ingredients = []string{"rice", "salmon"}
	report, err := svc.GetLocationRecommendations(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, "rice", report.IngredientPricing[0].Name)
	assert.Equal(t, 2, cache.Len())
}

func TestGetLocationRecommendations_CacheErrorsAreBypassed(t *testing.T) {
	cache := &testutils.MockCacheRepository{}
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, time.Minute).Return(errors.New("connection refused"))
	metrics := &testutils.RecordingMetrics{}

	report, err := newService(cache, metrics).GetLocationRecommendations(context.Background(), floridaCommand())

	require.NoError(t, err)
	assert.Len(t, report.Stores, 3)
	assert.Equal(t, []string{"error"}, metrics.CacheResults)
	cache.AssertExpectations(t)
}

func TestGetLocationRecommendations_CorruptEntryIsRecomputed(t *testing.T) {
	cache := &testutils.MockCacheRepository{}
	cache.On("Get", mock.Anything, mock.Anything).Return([]byte("{not json"), nil)
	cache.On("Delete", mock.Anything, mock.Anything).Return(nil).Once()
	cache.On("Set", mock.Anything, mock.Anything, mock.MatchedBy(func(b []byte) bool {
		return json.Valid(b)
	}), time.Minute).Return(nil).Once()

	report, err := newService(cache, nil).GetLocationRecommendations(context.Background(), floridaCommand())

	require.NoError(t, err)
	assert.Len(t, report.IngredientPricing, 2)
	cache.AssertExpectations(t)
}
