// Package categorize guesses which of the default categories a product name
// belongs to. It backs the suggestion endpoint; the client decides whether
// to take the hint.
package categorize

import "strings"

// Suggest returns the default category for the given product name.
// Matching is case-insensitive: exact match first, then substring match.
// Falls back to "Other" when nothing matches.
func Suggest(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "Other"
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	// Substring entries are ordered more-specific first.
	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return "Other"
}

var exactMatch = map[string]string{
	// Produce
	"apple":        "Produce",
	"apples":       "Produce",
	"banana":       "Produce",
	"bananas":      "Produce",
	"orange":       "Produce",
	"oranges":      "Produce",
	"lemon":        "Produce",
	"lime":         "Produce",
	"avocado":      "Produce",
	"tomato":       "Produce",
	"tomatoes":     "Produce",
	"potato":       "Produce",
	"potatoes":     "Produce",
	"onion":        "Produce",
	"onions":       "Produce",
	"garlic":       "Produce",
	"lettuce":      "Produce",
	"spinach":      "Produce",
	"broccoli":     "Produce",
	"carrots":      "Produce",
	"celery":       "Produce",
	"cucumber":     "Produce",
	"mushrooms":    "Produce",
	"grapes":       "Produce",
	"strawberries": "Produce",
	"blueberries":  "Produce",
	"ginger":       "Produce",
	"zucchini":     "Produce",
	"green beans":  "Produce",

	// Dairy
	"milk":           "Dairy",
	"eggs":           "Dairy",
	"butter":         "Dairy",
	"cheese":         "Dairy",
	"yogurt":         "Dairy",
	"cream cheese":   "Dairy",
	"sour cream":     "Dairy",
	"heavy cream":    "Dairy",
	"cottage cheese": "Dairy",

	// Meat
	"chicken":     "Meat",
	"beef":        "Meat",
	"pork":        "Meat",
	"turkey":      "Meat",
	"bacon":       "Meat",
	"sausage":     "Meat",
	"ham":         "Meat",
	"steak":       "Meat",
	"salmon":      "Meat",
	"shrimp":      "Meat",
	"tuna":        "Meat",
	"fish":        "Meat",
	"ground beef": "Meat",
	"hot dogs":    "Meat",
	"deli meat":   "Meat",
	"lamb":        "Meat",

	// Bakery
	"bread":      "Bakery",
	"bagels":     "Bakery",
	"tortillas":  "Bakery",
	"rolls":      "Bakery",
	"buns":       "Bakery",
	"muffins":    "Bakery",
	"croissants": "Bakery",
	"pita":       "Bakery",

	// Pantry
	"rice":          "Pantry",
	"pasta":         "Pantry",
	"flour":         "Pantry",
	"sugar":         "Pantry",
	"salt":          "Pantry",
	"pepper":        "Pantry",
	"olive oil":     "Pantry",
	"vinegar":       "Pantry",
	"soy sauce":     "Pantry",
	"ketchup":       "Pantry",
	"mustard":       "Pantry",
	"mayonnaise":    "Pantry",
	"honey":         "Pantry",
	"peanut butter": "Pantry",
	"jam":           "Pantry",
	"cereal":        "Pantry",
	"oatmeal":       "Pantry",
	"soup":          "Pantry",
	"broth":         "Pantry",
	"beans":         "Pantry",
	"lentils":       "Pantry",
	"nuts":          "Pantry",
	"spaghetti":     "Pantry",
	"noodles":       "Pantry",
	"salsa":         "Pantry",
	"coffee":        "Pantry",
	"tea":           "Pantry",
	"juice":         "Pantry",
	"soda":          "Pantry",
	"water":         "Pantry",
	"chips":         "Pantry",
	"crackers":      "Pantry",
	"cookies":       "Pantry",
	"popcorn":       "Pantry",
	"candy":         "Pantry",
	"chocolate":     "Pantry",

	// Frozen
	"ice cream":      "Frozen",
	"frozen pizza":   "Frozen",
	"frozen veggies": "Frozen",
	"frozen fruit":   "Frozen",
	"popsicles":      "Frozen",

	// Household
	"paper towels":      "Household",
	"toilet paper":      "Household",
	"trash bags":        "Household",
	"dish soap":         "Household",
	"laundry detergent": "Household",
	"sponges":           "Household",
	"aluminum foil":     "Household",
	"plastic wrap":      "Household",
	"shampoo":           "Household",
	"toothpaste":        "Household",
	"soap":              "Household",
	"batteries":         "Household",
}

type substringEntry struct {
	keyword  string
	category string
}

var substringMatches = []substringEntry{
	{"frozen", "Frozen"},
	{"chicken", "Meat"},
	{"beef", "Meat"},
	{"pork", "Meat"},
	{"turkey", "Meat"},
	{"sausage", "Meat"},
	{"salmon", "Meat"},
	{"shrimp", "Meat"},
	{"bread", "Bakery"},
	{"bagel", "Bakery"},
	{"tortilla", "Bakery"},
	{"yogurt", "Dairy"},
	{"cheese", "Dairy"},
	{"milk", "Dairy"},
	{"cream", "Dairy"},
	{"spinach", "Produce"},
	{"lettuce", "Produce"},
	{"berr", "Produce"},
	{"organic", "Produce"},
	{"canned", "Pantry"},
	{"sauce", "Pantry"},
	{"water", "Pantry"},
	{"juice", "Pantry"},
	{"coffee", "Pantry"},
	{"chip", "Pantry"},
	{"soap", "Household"},
	{"detergent", "Household"},
	{"cleaner", "Household"},
	{"paper", "Household"},
	{"wipes", "Household"},
}
