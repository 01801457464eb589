package gorm

import (
	"fmt"
	"slices"
	"time"

	"github.com/mealbuddy/engine/internal/domain/mealplan"
	"github.com/mealbuddy/engine/internal/domain/pricing"
)

// MealPlanToModel converts a domain plan into its row and meal rows
func MealPlanToModel(plan *mealplan.MealPlan) (*MealPlanModel, []MealModel) {
	s := plan.Snapshot()

	model := &MealPlanModel{
		ID:                 s.ID,
		UserID:             s.OwnerID,
		Title:              s.Title,
		WeekStartDate:      s.WeekStart.Format(mealplan.WeekStartLayout),
		Ingredients:        StringSlice(s.Ingredients),
		DietaryPreferences: StringSlice(s.DietaryPreferences),
		BudgetPreference:   string(s.BudgetTier),
		FamilySize:         s.FamilySize,
		Location:           s.Location,
		TotalEstimatedCost: s.TotalCost,
		CreatedAt:          s.CreatedAt,
	}

	meals := make([]MealModel, len(s.Meals))
	for i, m := range s.Meals {
		meals[i] = MealModel{
			ID:                 m.ID,
			MealPlanID:         s.ID,
			DayOfWeek:          m.DayOfWeek,
			MealType:           string(m.Type),
			RecipeName:         m.RecipeName,
			RecipeInstructions: m.Instructions,
			EstimatedPrepTime:  m.PrepMinutes,
			EstimatedCost:      m.EstimatedCost,
		}
	}

	return model, meals
}

// ModelToMealPlan rebuilds the domain plan from stored rows
func ModelToMealPlan(model *MealPlanModel) (*mealplan.MealPlan, error) {
	weekStart, err := time.ParseInLocation(mealplan.WeekStartLayout, model.WeekStartDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("meal plan %s: bad week start %q: %w", model.ID, model.WeekStartDate, err)
	}

	meals := make([]mealplan.Meal, len(model.Meals))
	for i, m := range model.Meals {
		meals[i] = mealplan.Meal{
			ID:            m.ID,
			DayOfWeek:     m.DayOfWeek,
			Type:          mealplan.MealType(m.MealType),
			RecipeName:    m.RecipeName,
			Instructions:  m.RecipeInstructions,
			PrepMinutes:   m.EstimatedPrepTime,
			EstimatedCost: m.EstimatedCost,
		}
	}
	slices.SortFunc(meals, compareSlots)

	plan, err := mealplan.Restore(mealplan.Snapshot{
		ID:                 model.ID,
		OwnerID:            model.UserID,
		Title:              model.Title,
		WeekStart:          weekStart,
		Meals:              meals,
		TotalCost:          model.TotalEstimatedCost,
		Ingredients:        model.Ingredients,
		DietaryPreferences: model.DietaryPreferences,
		BudgetTier:         pricing.BudgetTier(model.BudgetPreference),
		FamilySize:         model.FamilySize,
		Location:           model.Location,
		CreatedAt:          model.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("meal plan %s: %w", model.ID, err)
	}
	return plan, nil
}

func mealTypeOrder(t mealplan.MealType) int {
	return slices.Index(mealplan.MealTypes, t)
}

// compareSlots orders meals by day, then breakfast, lunch, dinner
func compareSlots(a, b mealplan.Meal) int {
	if a.DayOfWeek != b.DayOfWeek {
		return a.DayOfWeek - b.DayOfWeek
	}
	return mealTypeOrder(a.Type) - mealTypeOrder(b.Type)
}
