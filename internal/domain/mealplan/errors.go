package mealplan

import "errors"

// Domain errors for meal plan operations

var (
	// Assembly errors
	ErrInvalidFamilySize       = errors.New("family size must be at least 1")
	ErrTemplateIndexOutOfRange = errors.New("template picker returned an index outside the pool")
	ErrMissingOwner            = errors.New("meal plan owner is required")

	// Invariant violations
	ErrIncompleteSchedule = errors.New("meal plan must contain exactly one meal per day and meal type")

	ErrMealPlanNotFound = errors.New("meal plan not found")
)
