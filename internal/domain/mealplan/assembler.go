package mealplan

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/mealbuddy/engine/internal/domain/pricing"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns the current local time
func (SystemClock) Now() time.Time { return time.Now() }

// TemplatePicker chooses an index in [0, n)
type TemplatePicker interface {
	Pick(n int) int
}

// RandomPicker picks uniformly at random
type RandomPicker struct{}

// Pick returns a uniformly random index in [0, n)
func (RandomPicker) Pick(n int) int { return rand.Intn(n) }

// AssembleCommand carries the inputs for one plan
type AssembleCommand struct {
	OwnerID            uuid.UUID
	Ingredients        []string
	DietaryPreferences []string
	BudgetTier         pricing.BudgetTier
	FamilySize         int
	Location           string
}

// Assembler schedules a week of meals from the template library
type Assembler struct {
	clock  Clock
	picker TemplatePicker
}

// NewAssembler creates an assembler
func NewAssembler(clock Clock, picker TemplatePicker) *Assembler {
	if clock == nil {
		clock = SystemClock{}
	}
	if picker == nil {
		picker = RandomPicker{}
	}
	return &Assembler{clock: clock, picker: picker}
}

// Assemble builds a plan of 21 meals starting on the current week's Monday.
// Ingredients and dietary preferences are recorded on the plan but do not
// influence template selection.
func (a *Assembler) Assemble(cmd AssembleCommand) (*MealPlan, error) {
	if cmd.OwnerID == uuid.Nil {
		return nil, ErrMissingOwner
	}
	if cmd.FamilySize < 1 {
		return nil, ErrInvalidFamilySize
	}
	if !cmd.BudgetTier.IsValid() {
		return nil, pricing.ErrInvalidBudgetTier
	}

	now := a.clock.Now()
	weekStart := WeekStart(now)
	pool := LunchAndDinnerPool()
	breakfast := Breakfast()

	meals := make([]Meal, 0, MealsPerPlan)
	for day := 1; day <= DaysPerWeek; day++ {
		meals = append(meals, newMeal(day, MealTypeBreakfast, breakfast, cmd.FamilySize))

		for _, mealType := range []MealType{MealTypeLunch, MealTypeDinner} {
			idx := a.picker.Pick(len(pool))
			if idx < 0 || idx >= len(pool) {
				return nil, ErrTemplateIndexOutOfRange
			}
			meals = append(meals, newMeal(day, mealType, pool[idx], cmd.FamilySize))
		}
	}

	plan := &MealPlan{
		id:                 uuid.New(),
		ownerID:            cmd.OwnerID,
		title:              Title(weekStart),
		weekStart:          weekStart,
		meals:              meals,
		totalCost:          sumCosts(meals),
		ingredients:        append([]string{}, cmd.Ingredients...),
		dietaryPreferences: append([]string{}, cmd.DietaryPreferences...),
		budgetTier:         cmd.BudgetTier,
		familySize:         cmd.FamilySize,
		location:           cmd.Location,
		createdAt:          now,
	}

	plan.AddEvent(MealPlanGeneratedEvent{
		PlanID:      plan.id,
		OwnerID:     plan.ownerID,
		FamilySize:  plan.familySize,
		BudgetTier:  string(plan.budgetTier),
		TotalCost:   plan.totalCost,
		GeneratedAt: now,
	})

	return plan, nil
}

// WeekStart returns midnight of the Monday on or before t, in t's location
func WeekStart(t time.Time) time.Time {
	// Sunday is 0; it belongs to the week that started six days earlier.
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// Title builds the display title for a week
func Title(weekStart time.Time) string {
	return "Meal Plan for " + weekStart.Format(TitleDateLayout)
}
