package pricing

import "strings"

// DefaultMultiplier applies when no cost-of-living keyword matches
const DefaultMultiplier = 1.0

type multiplierRule struct {
	keywords   []string
	multiplier float64
}

// multiplierRules are checked in order; the first matching group wins.
var multiplierRules = []multiplierRule{
	{keywords: []string{"new york", "san francisco", "los angeles"}, multiplier: 1.3},
	{keywords: []string{"texas", "florida", "ohio"}, multiplier: 0.9},
}

type regionalRule struct {
	keyword     string
	ingredients []string
}

// regionalRules are independent of multiplierRules and checked in order.
var regionalRules = []regionalRule{
	{keyword: "california", ingredients: []string{"avocados", "almonds", "citrus fruits", "artichokes"}},
	{keyword: "florida", ingredients: []string{"citrus fruits", "tomatoes", "peppers", "tropical fruits"}},
	{keyword: "texas", ingredients: []string{"beef", "peppers", "onions", "pecans"}},
	{keyword: "maine", ingredients: []string{"lobster", "blueberries", "potatoes", "maple syrup"}},
}

var defaultRegionalIngredients = []string{"seasonal vegetables", "local dairy", "regional grains"}

// PriceMultiplier maps free-text location to a cost-of-living multiplier
func PriceMultiplier(location string) float64 {
	text := strings.ToLower(location)
	for _, rule := range multiplierRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.multiplier
			}
		}
	}
	return DefaultMultiplier
}

// RegionalIngredients maps free-text location to regionally typical ingredients
func RegionalIngredients(location string) []string {
	text := strings.ToLower(location)
	for _, rule := range regionalRules {
		if strings.Contains(text, rule.keyword) {
			return append([]string{}, rule.ingredients...)
		}
	}
	return append([]string{}, defaultRegionalIngredients...)
}

// Classify resolves both location classifications. Empty or unknown text
// yields the defaults.
func Classify(location string) (float64, []string) {
	return PriceMultiplier(location), RegionalIngredients(location)
}
