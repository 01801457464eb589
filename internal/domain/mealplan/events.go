package mealplan

import (
	"time"

	"github.com/google/uuid"
)

// MealPlanGeneratedEvent is raised when a plan has been assembled
type MealPlanGeneratedEvent struct {
	PlanID      uuid.UUID
	OwnerID     uuid.UUID
	FamilySize  int
	BudgetTier  string
	TotalCost   float64
	GeneratedAt time.Time
}

func (e MealPlanGeneratedEvent) EventName() string {
	return "mealplan.generated"
}

func (e MealPlanGeneratedEvent) OccurredAt() time.Time {
	return e.GeneratedAt
}
