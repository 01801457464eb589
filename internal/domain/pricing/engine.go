// Package pricing holds the ingredient price catalog, the location resolver
// and the engine that combines them into a pricing report.
package pricing

// SavingsPerIngredient is the base weekly savings estimate per ingredient
const SavingsPerIngredient = 2.5

var baselineTips = []string{
	"Shop at farmers markets for seasonal produce",
	"Buy in bulk for non-perishable items",
	"Use store loyalty programs and digital coupons",
}

var budgetTips = []string{
	"Consider generic brands for staple items",
	"Plan meals around weekly store sales",
	"Freeze ingredients that are on sale",
}

// Engine produces pricing reports. It holds no state.
type Engine struct{}

// NewEngine creates a pricing engine
func NewEngine() *Engine {
	return &Engine{}
}

// Price builds the report for the given ingredients, location and tier.
// Output depends only on the inputs.
func (e *Engine) Price(ingredients []string, location string, tier BudgetTier) (*Report, error) {
	if !tier.IsValid() {
		return nil, ErrInvalidBudgetTier
	}

	multiplier, regional := Classify(location)

	pricing := make([]IngredientPricing, 0, len(ingredients))
	for _, name := range ingredients {
		item := Lookup(name)
		pricing = append(pricing, IngredientPricing{
			Name:         name,
			LocalPrice:   item.BasePrice * multiplier,
			Unit:         item.Unit,
			Availability: item.Availability,
			Seasonality:  item.SeasonalNote,
			Alternatives: item.Alternatives,
		})
	}

	return &Report{
		Stores:              Stores(tier),
		IngredientPricing:   pricing,
		RegionalSuggestions: regional,
		CostOptimization: CostOptimization{
			TotalSavings: float64(len(ingredients)) * SavingsPerIngredient * tier.SavingsMultiplier(),
			Tips:         Tips(tier),
		},
	}, nil
}

// Stores returns the three recommended stores with tier-dependent price levels
func Stores(tier BudgetTier) []StoreRecommendation {
	farmersLevel := PriceLevelModerate
	if tier == BudgetTierBudget {
		farmersLevel = PriceLevelBudget
	}
	specialtyLevel := PriceLevelModerate
	if tier == BudgetTierPremium {
		specialtyLevel = PriceLevelPremium
	}

	return []StoreRecommendation{
		{
			Name:        "Local Farmers Market",
			Distance:    "0.8 miles",
			PriceLevel:  farmersLevel,
			Specialties: []string{"Fresh vegetables", "Local produce", "Organic options"},
		},
		{
			Name:        "SuperValue Grocery",
			Distance:    "1.2 miles",
			PriceLevel:  PriceLevelBudget,
			Specialties: []string{"Bulk items", "Generic brands", "Weekly deals"},
		},
		{
			Name:        "Fresh & Fine Market",
			Distance:    "2.1 miles",
			PriceLevel:  specialtyLevel,
			Specialties: []string{"Premium ingredients", "International foods", "Organic selection"},
		},
	}
}

// Tips returns the baseline tips, extended for the budget tier
func Tips(tier BudgetTier) []string {
	tips := append([]string{}, baselineTips...)
	if tier == BudgetTierBudget {
		tips = append(tips, budgetTips...)
	}
	return tips
}
