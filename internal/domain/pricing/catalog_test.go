package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup_KnownIngredients(t *testing.T) {
	tests := []struct {
		name         string
		price        float64
		unit         Unit
		availability Availability
	}{
		{"chicken breast", 6.99, UnitPound, AvailabilityMedium},
		{"salmon", 12.99, UnitPound, AvailabilityMedium},
		{"eggs", 3.49, UnitDozen, AvailabilityMedium},
		{"milk", 3.99, UnitGallon, AvailabilityMedium},
		{"avocado", 1.49, UnitEach, AvailabilityMedium},
		{"tomatoes", 2.99, UnitPound, AvailabilityHigh},
		{"sweet potatoes", 1.79, UnitPound, AvailabilityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := Lookup(tt.name)
			assert.Equal(t, tt.price, item.BasePrice)
			assert.Equal(t, tt.unit, item.Unit)
			assert.Equal(t, tt.availability, item.Availability)
		})
	}
}

func TestLookup_CaseInsensitive(t *testing.T) {
	assert.Equal(t, 6.99, BasePrice("Chicken Breast"))
	assert.Equal(t, 6.99, BasePrice("CHICKEN BREAST"))
	// names match exactly apart from case
	assert.False(t, Known("  chicken breast "))
	assert.False(t, Known("chicken  breast"))
	assert.Equal(t, FallbackPrice, BasePrice("chicken  breast"))
	assert.Equal(t, UnitDozen, UnitOf("Eggs"))
	assert.True(t, Known("SALMON"))
}

func TestLookup_Fallback(t *testing.T) {
	item := Lookup("unobtainium")

	assert.False(t, Known("unobtainium"))
	assert.Equal(t, 3.99, item.BasePrice)
	assert.Equal(t, UnitPound, item.Unit)
	assert.Equal(t, AvailabilityMedium, item.Availability)
	assert.Equal(t, "Available year-round", item.SeasonalNote)
	assert.NotNil(t, item.Alternatives)
	assert.Empty(t, item.Alternatives)
}

func TestLookup_PartialEntriesUseFallbackFields(t *testing.T) {
	// quinoa only carries alternatives
	assert.Equal(t, 3.99, BasePrice("quinoa"))
	assert.Equal(t, []string{"local grains", "brown rice", "barley"}, Alternatives("quinoa"))

	// chicken carries no seasonal data
	assert.Equal(t, "Available year-round", SeasonalNote("chicken"))
	assert.Equal(t, AvailabilityMedium, AvailabilityOf("chicken"))
}

func TestSeasonalNotes(t *testing.T) {
	assert.Equal(t, "Peak season (summer) - best prices June-September", SeasonalNote("tomatoes"))
	assert.Equal(t, "Peak season (fall/winter) - best prices October-March", SeasonalNote("broccoli"))
	assert.Equal(t, "Available year-round - slight price variations", SeasonalNote("spinach"))
	assert.Equal(t, "Harvest season (fall) - best prices September-November", SeasonalNote("potatoes"))
}

func TestAlternatives_ReturnsCopy(t *testing.T) {
	alts := Alternatives("salmon")
	alts[0] = "mutated"

	assert.Equal(t, []string{"local trout", "tilapia", "cod"}, Alternatives("salmon"))
}
