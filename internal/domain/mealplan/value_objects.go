package mealplan

import "github.com/google/uuid"

// MealType is the slot a meal occupies in a day
type MealType string

// Meal types in schedule order
const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
)

// MealTypes lists the meal types in the order they are scheduled each day
var MealTypes = []MealType{MealTypeBreakfast, MealTypeLunch, MealTypeDinner}

// DaysPerWeek is the number of scheduled days in a plan
const DaysPerWeek = 7

// MealsPerPlan is the number of meals in a complete plan
const MealsPerPlan = DaysPerWeek * 3

// Meal is one scheduled meal. DayOfWeek runs 1..7 starting on Monday.
type Meal struct {
	ID            uuid.UUID
	DayOfWeek     int
	Type          MealType
	RecipeName    string
	Instructions  string
	PrepMinutes   int
	EstimatedCost float64
}

func newMeal(day int, mealType MealType, template MealTemplate, familySize int) Meal {
	return Meal{
		ID:            uuid.New(),
		DayOfWeek:     day,
		Type:          mealType,
		RecipeName:    template.Name,
		Instructions:  template.Instructions,
		PrepMinutes:   template.PrepMinutes,
		EstimatedCost: template.BaseCost * float64(familySize),
	}
}

type slot struct {
	day      int
	mealType MealType
}

// validateSchedule checks for exactly one meal per (day, type)
func validateSchedule(meals []Meal) error {
	if len(meals) != MealsPerPlan {
		return ErrIncompleteSchedule
	}
	seen := make(map[slot]bool, MealsPerPlan)
	for _, m := range meals {
		if m.DayOfWeek < 1 || m.DayOfWeek > DaysPerWeek {
			return ErrIncompleteSchedule
		}
		switch m.Type {
		case MealTypeBreakfast, MealTypeLunch, MealTypeDinner:
		default:
			return ErrIncompleteSchedule
		}
		key := slot{m.DayOfWeek, m.Type}
		if seen[key] {
			return ErrIncompleteSchedule
		}
		seen[key] = true
	}
	return nil
}
