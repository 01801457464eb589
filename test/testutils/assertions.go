// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"math"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealbuddy/engine/internal/domain/mealplan"
	"github.com/mealbuddy/engine/internal/ports/inbound"
	apperrors "github.com/mealbuddy/engine/pkg/errors"
)

// MealPlanAssertions provides plan-specific assertion methods
type MealPlanAssertions struct {
	t *testing.T
}

// NewMealPlanAssertions creates a new plan assertions helper
func NewMealPlanAssertions(t *testing.T) *MealPlanAssertions {
	return &MealPlanAssertions{t: t}
}

// CompleteWeek asserts the DTO holds one meal per day and slot, in day then
// slot order, with the total equal to the sum of meal costs
func (pa *MealPlanAssertions) CompleteWeek(plan *inbound.MealPlanDTO, familySize int) {
	require.NotNil(pa.t, plan, "Meal plan should not be nil")
	require.Len(pa.t, plan.Meals, mealplan.MealsPerPlan)
	assert.NotEqual(pa.t, uuid.Nil, plan.ID, "Meal plan should have a valid ID")

	var sum float64
	for i, meal := range plan.Meals {
		assert.Equal(pa.t, i/3+1, meal.DayOfWeek, "meal %d day", i)
		assert.Equal(pa.t, string(mealplan.MealTypes[i%3]), meal.MealType, "meal %d type", i)
		if meal.MealType == string(mealplan.MealTypeBreakfast) {
			assert.InDelta(pa.t, mealplan.BreakfastCostPerPerson*float64(familySize), meal.EstimatedCost, 1e-9)
		}
		sum += meal.EstimatedCost
	}
	assert.True(pa.t, math.Abs(sum-plan.TotalEstimatedCost) < 1e-9,
		"total %v should equal the sum of meal costs %v", plan.TotalEstimatedCost, sum)
}

// HTTPAssertions provides HTTP response assertions
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// JSONResponse asserts the status code and decodes the body into target
func (ha *HTTPAssertions) JSONResponse(rec *httptest.ResponseRecorder, expectedCode int, target interface{}) {
	require.Equal(ha.t, expectedCode, rec.Code, "body: %s", rec.Body.String())
	assert.Contains(ha.t, rec.Header().Get("Content-Type"), "application/json")
	if target != nil {
		require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), target))
	}
}

// ErrorResponse asserts the status code and error code of an error body
func (ha *HTTPAssertions) ErrorResponse(rec *httptest.ResponseRecorder, expectedCode int, code apperrors.ErrorCode) apperrors.ErrorResponse {
	var body apperrors.ErrorResponse
	ha.JSONResponse(rec, expectedCode, &body)
	assert.Equal(ha.t, code, body.Error.Code)
	return body
}

// SecurityHeaders asserts that security headers are present
func (ha *HTTPAssertions) SecurityHeaders(rec *httptest.ResponseRecorder) {
	for _, header := range []string{
		"X-Content-Type-Options",
		"X-Frame-Options",
		"Referrer-Policy",
		"Content-Security-Policy",
	} {
		assert.NotEmpty(ha.t, rec.Header().Get(header), "Security header %s should be present", header)
	}
}
