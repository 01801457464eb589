package pricing

// Value Objects - Immutable values shared by the catalog, resolver and engine

// BudgetTier is the spending tier chosen by the user
type BudgetTier string

// Budget tiers
const (
	BudgetTierBudget   BudgetTier = "budget"
	BudgetTierModerate BudgetTier = "moderate"
	BudgetTierPremium  BudgetTier = "premium"
)

// ParseBudgetTier accepts exactly one of the lower-case tier names
func ParseBudgetTier(s string) (BudgetTier, error) {
	tier := BudgetTier(s)
	if !tier.IsValid() {
		return "", ErrInvalidBudgetTier
	}
	return tier, nil
}

// IsValid checks if the tier is one of the known tiers
func (t BudgetTier) IsValid() bool {
	switch t {
	case BudgetTierBudget, BudgetTierModerate, BudgetTierPremium:
		return true
	}
	return false
}

// SavingsMultiplier scales the per-ingredient savings estimate
func (t BudgetTier) SavingsMultiplier() float64 {
	switch t {
	case BudgetTierBudget:
		return 1.5
	case BudgetTierModerate:
		return 1.2
	default:
		return 1.0
	}
}

// Unit is the unit of measure an ingredient is priced in
type Unit string

// Units
const (
	UnitPound  Unit = "lb"
	UnitEach   Unit = "each"
	UnitDozen  Unit = "dozen"
	UnitGallon Unit = "gallon"
)

// Availability is the seasonal availability tier of an ingredient
type Availability string

// Availability tiers
const (
	AvailabilityHigh   Availability = "high"
	AvailabilityMedium Availability = "medium"
	AvailabilityLow    Availability = "low"
)

// PriceLevel is the price tier shown for a store
type PriceLevel string

// Price levels
const (
	PriceLevelBudget   PriceLevel = "budget"
	PriceLevelModerate PriceLevel = "moderate"
	PriceLevelPremium  PriceLevel = "premium"
)

// Ingredient is a catalog entry with every field resolved
type Ingredient struct {
	Name         string
	BasePrice    float64
	Unit         Unit
	Availability Availability
	SeasonalNote string
	Alternatives []string
}

// StoreRecommendation is a store suggested to the user
type StoreRecommendation struct {
	Name        string     `json:"name"`
	Distance    string     `json:"distance"`
	PriceLevel  PriceLevel `json:"priceLevel"`
	Specialties []string   `json:"specialties"`
}

// IngredientPricing is the location-adjusted price of one requested ingredient
type IngredientPricing struct {
	Name         string       `json:"name"`
	LocalPrice   float64      `json:"localPrice"`
	Unit         Unit         `json:"unit"`
	Availability Availability `json:"availability"`
	Seasonality  string       `json:"seasonality"`
	Alternatives []string     `json:"alternatives"`
}

// CostOptimization holds the savings estimate and shopping tips
type CostOptimization struct {
	TotalSavings float64  `json:"totalSavings"`
	Tips         []string `json:"tips"`
}

// Report is the pricing and cost-optimization report for a request
type Report struct {
	Stores              []StoreRecommendation `json:"stores"`
	IngredientPricing   []IngredientPricing   `json:"ingredientPricing"`
	RegionalSuggestions []string              `json:"regionalSuggestions"`
	CostOptimization    CostOptimization      `json:"costOptimization"`
}
