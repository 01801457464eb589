// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/mealbuddy/engine/internal/domain/mealplan"
	"github.com/mealbuddy/engine/internal/domain/pricing"
	"github.com/mealbuddy/engine/internal/ports/inbound"
)

// CatalogIngredients are names the price catalog knows
var CatalogIngredients = []string{
	"chicken", "beef", "salmon", "rice", "pasta", "broccoli", "spinach",
	"tomatoes", "onions", "carrots", "potatoes", "eggs", "milk", "cheese",
	"bread", "avocado", "quinoa",
}

// Locations exercise each multiplier rule and the default
var Locations = []string{
	"San Francisco, California",
	"Brooklyn, New York",
	"Miami, Florida",
	"Austin, Texas",
	"Des Moines, Iowa",
}

// MealPlanRequestFactory provides methods to create generation requests
type MealPlanRequestFactory struct {
	faker *gofakeit.Faker
}

// NewMealPlanRequestFactory creates a new factory with seeded faker
func NewMealPlanRequestFactory(seed int64) *MealPlanRequestFactory {
	return &MealPlanRequestFactory{
		faker: gofakeit.New(seed),
	}
}

// GenerateCommand returns a valid command for userID
func (f *MealPlanRequestFactory) GenerateCommand(userID uuid.UUID) inbound.GenerateMealPlanCommand {
	return inbound.GenerateMealPlanCommand{
		UserID:             userID,
		Ingredients:        f.Ingredients(f.faker.Number(1, 6)),
		DietaryPreferences: f.pick([]string{"vegetarian", "gluten-free", "dairy-free", "low-carb"}, f.faker.Number(0, 2)),
		BudgetPreference:   string(f.BudgetTier()),
		FamilySize:         f.faker.Number(1, 8),
		Location:           f.Location(),
	}
}

// PricingCommand returns a valid pricing command
func (f *MealPlanRequestFactory) PricingCommand() inbound.PricingCommand {
	return inbound.PricingCommand{
		Location:         f.Location(),
		Ingredients:      f.Ingredients(f.faker.Number(1, 6)),
		BudgetPreference: string(f.BudgetTier()),
	}
}

// Ingredients returns n catalog names, with an occasional unknown produce name
func (f *MealPlanRequestFactory) Ingredients(n int) []string {
	out := f.pick(CatalogIngredients, n)
	if n > 1 && f.faker.Bool() {
		out[n-1] = f.faker.Vegetable()
	}
	return out
}

// BudgetTier returns a random valid tier
func (f *MealPlanRequestFactory) BudgetTier() pricing.BudgetTier {
	tiers := []pricing.BudgetTier{pricing.BudgetTierBudget, pricing.BudgetTierModerate, pricing.BudgetTierPremium}
	return tiers[f.faker.Number(0, len(tiers)-1)]
}

// Location returns one of the test locations
func (f *MealPlanRequestFactory) Location() string {
	return Locations[f.faker.Number(0, len(Locations)-1)]
}

func (f *MealPlanRequestFactory) pick(from []string, n int) []string {
	if n > len(from) {
		n = len(from)
	}
	shuffled := append([]string{}, from...)
	f.faker.ShuffleStrings(shuffled)
	return shuffled[:n]
}

// MealPlanBuilder provides a fluent interface for building test plans
type MealPlanBuilder struct {
	ownerID    uuid.UUID
	now        time.Time
	tier       pricing.BudgetTier
	familySize int
	location   string
	picks      []int
}

// NewMealPlanBuilder creates a new plan builder with default values
func NewMealPlanBuilder() *MealPlanBuilder {
	return &MealPlanBuilder{
		ownerID:    uuid.New(),
		now:        time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC),
		tier:       pricing.BudgetTierModerate,
		familySize: 4,
		picks:      []int{0},
	}
}

// WithOwner sets the plan owner
func (b *MealPlanBuilder) WithOwner(ownerID uuid.UUID) *MealPlanBuilder {
	b.ownerID = ownerID
	return b
}

// WithNow sets the generation instant
func (b *MealPlanBuilder) WithNow(now time.Time) *MealPlanBuilder {
	b.now = now
	return b
}

// WithFamilySize sets the family size
func (b *MealPlanBuilder) WithFamilySize(size int) *MealPlanBuilder {
	b.familySize = size
	return b
}

// WithLocation sets the plan location
func (b *MealPlanBuilder) WithLocation(location string) *MealPlanBuilder {
	b.location = location
	return b
}

// WithPicks sets the template index sequence
func (b *MealPlanBuilder) WithPicks(picks ...int) *MealPlanBuilder {
	b.picks = picks
	return b
}

// Build assembles the plan
func (b *MealPlanBuilder) Build() (*mealplan.MealPlan, error) {
	assembler := mealplan.NewAssembler(FixedClock{Time: b.now}, &SequencePicker{Indexes: b.picks})
	return assembler.Assemble(mealplan.AssembleCommand{
		OwnerID:     b.ownerID,
		Ingredients: []string{"chicken", "rice"},
		BudgetTier:  b.tier,
		FamilySize:  b.familySize,
		Location:    b.location,
	})
}
