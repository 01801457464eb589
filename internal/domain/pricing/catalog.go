package pricing

import "strings"

// Fallback values returned for ingredients missing from the catalog
const (
	FallbackPrice        = 3.99
	FallbackUnit         = UnitPound
	FallbackAvailability = AvailabilityMedium
	FallbackSeasonalNote = "Available year-round"
)

type catalogEntry struct {
	price        float64
	unit         Unit
	availability Availability
	note         string
	alternatives []string
}

// catalog is keyed by lowercase name. Zero fields fall back per field.
var catalog = map[string]catalogEntry{
	"chicken":        {price: 6.99},
	"chicken breast": {price: 6.99},
	"beef":           {price: 8.99},
	"ground beef":    {price: 5.99},
	"salmon":         {price: 12.99, alternatives: []string{"local trout", "tilapia", "cod"}},
	"rice":           {price: 2.99},
	"brown rice":     {price: 2.99},
	"pasta":          {price: 1.99},
	"broccoli": {
		price:        2.49,
		availability: AvailabilityHigh,
		note:         "Peak season (fall/winter) - best prices October-March",
	},
	"spinach": {
		price:        2.99,
		availability: AvailabilityMedium,
		note:         "Available year-round - slight price variations",
		alternatives: []string{"local greens", "kale", "collard greens"},
	},
	"tomatoes": {
		price:        2.99,
		availability: AvailabilityHigh,
		note:         "Peak season (summer) - best prices June-September",
	},
	"onions": {price: 1.49},
	"carrots": {
		price:        1.99,
		availability: AvailabilityHigh,
		note:         "Available year-round - consistent pricing",
	},
	"potatoes": {
		price:        1.79,
		availability: AvailabilityHigh,
		note:         "Harvest season (fall) - best prices September-November",
	},
	"sweet potatoes": {
		price:        1.79,
		availability: AvailabilityHigh,
		note:         "Peak season (fall) - best prices October-December",
	},
	"eggs":    {price: 3.49, unit: UnitDozen},
	"milk":    {price: 3.99, unit: UnitGallon},
	"cheese":  {price: 4.99},
	"bread":   {price: 2.49},
	"avocado": {price: 1.49, unit: UnitEach, alternatives: []string{"local nuts", "olive oil", "sunflower seeds"}},
	"quinoa":  {alternatives: []string{"local grains", "brown rice", "barley"}},
}

func normalizeName(name string) string {
	return strings.ToLower(name)
}

// Lookup resolves an ingredient by name, case-insensitively. Misses and
// partially described entries are completed with the fallback values.
func Lookup(name string) Ingredient {
	entry := catalog[normalizeName(name)]

	ingredient := Ingredient{
		Name:         name,
		BasePrice:    entry.price,
		Unit:         entry.unit,
		Availability: entry.availability,
		SeasonalNote: entry.note,
		Alternatives: append([]string{}, entry.alternatives...),
	}
	if ingredient.BasePrice == 0 {
		ingredient.BasePrice = FallbackPrice
	}
	if ingredient.Unit == "" {
		ingredient.Unit = FallbackUnit
	}
	if ingredient.Availability == "" {
		ingredient.Availability = FallbackAvailability
	}
	if ingredient.SeasonalNote == "" {
		ingredient.SeasonalNote = FallbackSeasonalNote
	}
	return ingredient
}

// BasePrice returns the unadjusted unit price
func BasePrice(name string) float64 { return Lookup(name).BasePrice }

// UnitOf returns the unit the ingredient is priced in
func UnitOf(name string) Unit { return Lookup(name).Unit }

// AvailabilityOf returns the seasonal availability tier
func AvailabilityOf(name string) Availability { return Lookup(name).Availability }

// SeasonalNote returns the seasonal buying note
func SeasonalNote(name string) string { return Lookup(name).SeasonalNote }

// Alternatives returns substitutes for the ingredient; never nil
func Alternatives(name string) []string { return Lookup(name).Alternatives }

// Known reports whether the ingredient has its own catalog entry
func Known(name string) bool {
	_, ok := catalog[normalizeName(name)]
	return ok
}
