package mealplan

// MealTemplate is a reusable recipe definition priced per single serving
type MealTemplate struct {
	Name         string
	Ingredients  []string
	Instructions string
	PrepMinutes  int
	BaseCost     float64
}

// BreakfastCostPerPerson is the fixed per-person breakfast cost
const BreakfastCostPerPerson = 2.50

var breakfast = MealTemplate{
	Name:         "Oatmeal with Fruit",
	Ingredients:  []string{"Oats", "Milk", "Fresh Fruit"},
	Instructions: "Cook oats with milk, top with fresh fruit.",
	PrepMinutes:  10,
	BaseCost:     BreakfastCostPerPerson,
}

var lunchAndDinnerPool = []MealTemplate{
	{
		Name:         "Chicken and Vegetable Stir Fry",
		Ingredients:  []string{"Chicken Breast", "Bell Peppers", "Broccoli", "Brown Rice"},
		Instructions: "1. Cook rice according to package directions. 2. Cut chicken into strips and cook in a large pan. 3. Add vegetables and stir fry until tender. 4. Serve over rice.",
		PrepMinutes:  25,
		BaseCost:     8.50,
	},
	{
		Name:         "Vegetable Pasta",
		Ingredients:  []string{"Whole Wheat Pasta", "Tomatoes", "Spinach", "Garlic"},
		Instructions: "1. Cook pasta according to package directions. 2. Sauté garlic, add tomatoes and spinach. 3. Toss with pasta and serve.",
		PrepMinutes:  20,
		BaseCost:     6.00,
	},
	{
		Name:         "Quinoa Bowl",
		Ingredients:  []string{"Quinoa", "Black Beans", "Avocado", "Bell Peppers"},
		Instructions: "1. Cook quinoa according to package directions. 2. Heat black beans. 3. Slice avocado and peppers. 4. Combine in bowl and serve.",
		PrepMinutes:  15,
		BaseCost:     7.25,
	},
}

func (t MealTemplate) clone() MealTemplate {
	t.Ingredients = append([]string{}, t.Ingredients...)
	return t
}

// Breakfast returns the fixed breakfast template
func Breakfast() MealTemplate {
	return breakfast.clone()
}

// LunchAndDinnerPool returns a copy of the lunch and dinner templates
func LunchAndDinnerPool() []MealTemplate {
	pool := make([]MealTemplate, len(lunchAndDinnerPool))
	for i, t := range lunchAndDinnerPool {
		pool[i] = t.clone()
	}
	return pool
}
