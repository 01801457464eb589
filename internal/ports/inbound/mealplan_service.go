// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mealbuddy/engine/internal/domain/mealplan"
	"github.com/mealbuddy/engine/internal/domain/pricing"
)

// MealPlanService defines the use cases for meal plan generation
type MealPlanService interface {
	// Commands
	GenerateMealPlan(ctx context.Context, cmd GenerateMealPlanCommand) (*GenerateMealPlanResult, error)

	// Queries
	GetMealPlan(ctx context.Context, planID, userID uuid.UUID) (*MealPlanDTO, error)
	ListMealPlans(ctx context.Context, userID uuid.UUID, params PaginationParams) (*MealPlanList, error)
}

// PricingService defines the use cases for location-based pricing
type PricingService interface {
	GetLocationRecommendations(ctx context.Context, cmd PricingCommand) (*pricing.Report, error)
}

// GenerateMealPlanCommand contains data for generating a plan
type GenerateMealPlanCommand struct {
	UserID             uuid.UUID `validate:"required"`
	Ingredients        []string  `validate:"required,min=1,max=50,dive,ingredient"`
	DietaryPreferences []string  `validate:"max=20,dive,max=50"`
	BudgetPreference   string    `validate:"required,budget_tier"`
	FamilySize         int       `validate:"min=1"`
	Location           string    `validate:"max=200"`
	IncludePricing     bool
}

// PricingCommand contains data for a pricing report
type PricingCommand struct {
	Location         string   `validate:"required,max=200"`
	Ingredients      []string `validate:"required,min=1,max=50,dive,ingredient"`
	BudgetPreference string   `validate:"required,budget_tier"`
}

// PaginationParams contains pagination parameters
type PaginationParams struct {
	Page  int
	Limit int
}

// Offset returns the row offset for the page
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Normalize fills in defaults and clamps the limit
func (p PaginationParams) Normalize() PaginationParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	return p
}

// Data transfer objects

// MealDTO represents a scheduled meal for API responses
type MealDTO struct {
	ID            uuid.UUID `json:"id"`
	DayOfWeek     int       `json:"dayOfWeek"`
	MealType      string    `json:"mealType"`
	RecipeName    string    `json:"recipeName"`
	Instructions  string    `json:"instructions"`
	PrepTime      int       `json:"prepTime"`
	EstimatedCost float64   `json:"estimatedCost"`
}

// MealPlanDTO represents a meal plan for API responses
type MealPlanDTO struct {
	ID                 uuid.UUID `json:"id"`
	Title              string    `json:"title"`
	WeekStartDate      string    `json:"weekStartDate"`
	Meals              []MealDTO `json:"meals"`
	TotalEstimatedCost float64   `json:"totalEstimatedCost"`
	Ingredients        []string  `json:"ingredients"`
	DietaryPreferences []string  `json:"dietaryPreferences"`
	BudgetPreference   string    `json:"budgetPreference"`
	FamilySize         int       `json:"familySize"`
	Location           string    `json:"location,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
}

// GenerateMealPlanResult is the outcome of a generation request
type GenerateMealPlanResult struct {
	MealPlan      *MealPlanDTO    `json:"mealPlan"`
	PricingReport *pricing.Report `json:"pricingReport,omitempty"`
}

// MealPlanList represents a paginated list of plans
type MealPlanList struct {
	MealPlans  []*MealPlanDTO `json:"mealPlans"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

// NewMealPlanDTO maps the aggregate to its API representation
func NewMealPlanDTO(plan *mealplan.MealPlan) *MealPlanDTO {
	meals := plan.Meals()
	dtos := make([]MealDTO, len(meals))
	for i, m := range meals {
		dtos[i] = MealDTO{
			ID:            m.ID,
			DayOfWeek:     m.DayOfWeek,
			MealType:      string(m.Type),
			RecipeName:    m.RecipeName,
			Instructions:  m.Instructions,
			PrepTime:      m.PrepMinutes,
			EstimatedCost: m.EstimatedCost,
		}
	}

	return &MealPlanDTO{
		ID:                 plan.ID(),
		Title:              plan.Title(),
		WeekStartDate:      plan.WeekStart().Format(mealplan.WeekStartLayout),
		Meals:              dtos,
		TotalEstimatedCost: plan.TotalCost(),
		Ingredients:        plan.Ingredients(),
		DietaryPreferences: plan.DietaryPreferences(),
		BudgetPreference:   string(plan.BudgetTier()),
		FamilySize:         plan.FamilySize(),
		Location:           plan.Location(),
		CreatedAt:          plan.CreatedAt(),
	}
}
