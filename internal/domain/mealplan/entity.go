// Package mealplan contains the meal plan aggregate, the recipe templates and
// the assembler that schedules a week of meals.
package mealplan

import (
	"time"

	"github.com/google/uuid"

	"github.com/mealbuddy/engine/internal/domain/pricing"
	"github.com/mealbuddy/engine/internal/domain/shared"
)

// TitleDateLayout is the date format used in plan titles
const TitleDateLayout = "Mon Jan 02 2006"

// WeekStartLayout is the wire format of the week start date
const WeekStartLayout = "2006-01-02"

// MealPlan is the aggregate root for a generated week of meals
type MealPlan struct {
	shared.AggregateRoot

	id                 uuid.UUID
	ownerID            uuid.UUID
	title              string
	weekStart          time.Time
	meals              []Meal
	totalCost          float64
	ingredients        []string
	dietaryPreferences []string
	budgetTier         pricing.BudgetTier
	familySize         int
	location           string
	createdAt          time.Time
}

// Snapshot is a plain copy of a plan's state, used by adapters
type Snapshot struct {
	ID                 uuid.UUID
	OwnerID            uuid.UUID
	Title              string
	WeekStart          time.Time
	Meals              []Meal
	TotalCost          float64
	Ingredients        []string
	DietaryPreferences []string
	BudgetTier         pricing.BudgetTier
	FamilySize         int
	Location           string
	CreatedAt          time.Time
}

// Restore rebuilds a plan from stored state without raising events
func Restore(s Snapshot) (*MealPlan, error) {
	if err := validateSchedule(s.Meals); err != nil {
		return nil, err
	}
	return &MealPlan{
		id:                 s.ID,
		ownerID:            s.OwnerID,
		title:              s.Title,
		weekStart:          s.WeekStart,
		meals:              append([]Meal{}, s.Meals...),
		totalCost:          s.TotalCost,
		ingredients:        append([]string{}, s.Ingredients...),
		dietaryPreferences: append([]string{}, s.DietaryPreferences...),
		budgetTier:         s.BudgetTier,
		familySize:         s.FamilySize,
		location:           s.Location,
		createdAt:          s.CreatedAt,
	}, nil
}

// Snapshot returns a copy of the plan's state
func (p *MealPlan) Snapshot() Snapshot {
	return Snapshot{
		ID:                 p.id,
		OwnerID:            p.ownerID,
		Title:              p.title,
		WeekStart:          p.weekStart,
		Meals:              p.Meals(),
		TotalCost:          p.totalCost,
		Ingredients:        append([]string{}, p.ingredients...),
		DietaryPreferences: append([]string{}, p.dietaryPreferences...),
		BudgetTier:         p.budgetTier,
		FamilySize:         p.familySize,
		Location:           p.location,
		CreatedAt:          p.createdAt,
	}
}

// Getters

func (p *MealPlan) ID() uuid.UUID                  { return p.id }
func (p *MealPlan) OwnerID() uuid.UUID             { return p.ownerID }
func (p *MealPlan) Title() string                  { return p.title }
func (p *MealPlan) WeekStart() time.Time           { return p.weekStart }
func (p *MealPlan) TotalCost() float64             { return p.totalCost }
func (p *MealPlan) BudgetTier() pricing.BudgetTier { return p.budgetTier }
func (p *MealPlan) FamilySize() int                { return p.familySize }
func (p *MealPlan) Location() string               { return p.location }
func (p *MealPlan) CreatedAt() time.Time           { return p.createdAt }

// Meals returns a copy of the scheduled meals in schedule order
func (p *MealPlan) Meals() []Meal {
	return append([]Meal{}, p.meals...)
}

// Ingredients returns the ingredients the plan was requested with
func (p *MealPlan) Ingredients() []string {
	return append([]string{}, p.ingredients...)
}

// DietaryPreferences returns the preferences the plan was requested with
func (p *MealPlan) DietaryPreferences() []string {
	return append([]string{}, p.dietaryPreferences...)
}

// MealAt returns the meal scheduled for the given day and type
func (p *MealPlan) MealAt(day int, mealType MealType) (Meal, bool) {
	for _, m := range p.meals {
		if m.DayOfWeek == day && m.Type == mealType {
			return m, true
		}
	}
	return Meal{}, false
}

// OwnedBy reports whether the user owns the plan
func (p *MealPlan) OwnedBy(userID uuid.UUID) bool {
	return p.ownerID == userID
}

func sumCosts(meals []Meal) float64 {
	var total float64
	for _, m := range meals {
		total += m.EstimatedCost
	}
	return total
}
