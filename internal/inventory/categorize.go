package inventory

import (
	"strings"

	"github.com/dukerupert/reciperescue/internal/model"
)

// Categorize infers a category from an ingredient name.
// It performs case-insensitive matching: exact match first, then substring match.
// Falls back to other if no match is found.
func Categorize(name string) model.Category {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return model.CategoryOther
	}

	if cat, ok := exactMatch[n]; ok {
		return cat
	}

	for _, e := range substringMatches {
		if strings.Contains(n, e.keyword) {
			return e.category
		}
	}

	return model.CategoryOther
}

// NormalizeCategory returns raw when it names a valid category, otherwise
// the category inferred from the ingredient name.
func NormalizeCategory(raw, name string) model.Category {
	if c, ok := model.ParseCategory(strings.ToLower(strings.TrimSpace(raw))); ok {
		return c
	}
	return Categorize(name)
}

var exactMatch = map[string]model.Category{
	// Produce
	"apple":       model.CategoryProduce,
	"apples":      model.CategoryProduce,
	"banana":      model.CategoryProduce,
	"bananas":     model.CategoryProduce,
	"lemon":       model.CategoryProduce,
	"lemons":      model.CategoryProduce,
	"lime":        model.CategoryProduce,
	"avocado":     model.CategoryProduce,
	"avocados":    model.CategoryProduce,
	"tomato":      model.CategoryProduce,
	"tomatoes":    model.CategoryProduce,
	"lettuce":     model.CategoryProduce,
	"spinach":     model.CategoryProduce,
	"kale":        model.CategoryProduce,
	"broccoli":    model.CategoryProduce,
	"carrot":      model.CategoryProduce,
	"carrots":     model.CategoryProduce,
	"celery":      model.CategoryProduce,
	"cucumber":    model.CategoryProduce,
	"zucchini":    model.CategoryProduce,
	"mushrooms":   model.CategoryProduce,
	"grapes":      model.CategoryProduce,
	"cilantro":    model.CategoryProduce,
	"parsley":     model.CategoryProduce,
	"basil":       model.CategoryProduce,
	"ginger":      model.CategoryProduce,
	"garlic":      model.CategoryProduce,
	"asparagus":   model.CategoryProduce,
	"green beans": model.CategoryProduce,

	// Dairy
	"milk":       model.CategoryDairy,
	"butter":     model.CategoryDairy,
	"yogurt":     model.CategoryDairy,
	"cheese":     model.CategoryDairy,
	"cheddar":    model.CategoryDairy,
	"mozzarella": model.CategoryDairy,
	"parmesan":   model.CategoryDairy,
	"feta":       model.CategoryDairy,
	"cream":      model.CategoryDairy,
	"kefir":      model.CategoryDairy,

	// Protein
	"egg":     model.CategoryProtein,
	"eggs":    model.CategoryProtein,
	"chicken": model.CategoryProtein,
	"beef":    model.CategoryProtein,
	"pork":    model.CategoryProtein,
	"bacon":   model.CategoryProtein,
	"ham":     model.CategoryProtein,
	"turkey":  model.CategoryProtein,
	"salmon":  model.CategoryProtein,
	"tuna":    model.CategoryProtein,
	"shrimp":  model.CategoryProtein,
	"tofu":    model.CategoryProtein,
	"tempeh":  model.CategoryProtein,
	"sausage": model.CategoryProtein,

	// Pantry
	"rice":      model.CategoryPantry,
	"pasta":     model.CategoryPantry,
	"flour":     model.CategoryPantry,
	"sugar":     model.CategoryPantry,
	"oats":      model.CategoryPantry,
	"bread":     model.CategoryPantry,
	"ketchup":   model.CategoryPantry,
	"mustard":   model.CategoryPantry,
	"mayo":      model.CategoryPantry,
	"jam":       model.CategoryPantry,
	"honey":     model.CategoryPantry,
	"salsa":     model.CategoryPantry,
	"olive oil": model.CategoryPantry,
	"soy sauce": model.CategoryPantry,
}

type substringEntry struct {
	keyword  string
	category model.Category
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var substringMatches = []substringEntry{
	// Dairy phrases that would otherwise hit a produce or protein keyword
	{"cream cheese", model.CategoryDairy},
	{"sour cream", model.CategoryDairy},
	{"peanut butter", model.CategoryPantry},
	{"almond milk", model.CategoryDairy},
	{"oat milk", model.CategoryDairy},
	{"greek yogurt", model.CategoryDairy},

	// Protein
	{"chicken", model.CategoryProtein},
	{"ground beef", model.CategoryProtein},
	{"steak", model.CategoryProtein},
	{"pork", model.CategoryProtein},
	{"bacon", model.CategoryProtein},
	{"salmon", model.CategoryProtein},
	{"fish", model.CategoryProtein},
	{"shrimp", model.CategoryProtein},
	{"tofu", model.CategoryProtein},
	{"sausage", model.CategoryProtein},
	{"egg", model.CategoryProtein},

	// Dairy
	{"yogurt", model.CategoryDairy},
	{"cheese", model.CategoryDairy},
	{"milk", model.CategoryDairy},
	{"butter", model.CategoryDairy},
	{"cream", model.CategoryDairy},

	// Produce
	{"salad", model.CategoryProduce},
	{"spinach", model.CategoryProduce},
	{"pepper", model.CategoryProduce},
	{"onion", model.CategoryProduce},
	{"potato", model.CategoryProduce},
	{"tomato", model.CategoryProduce},
	{"berries", model.CategoryProduce},
	{"berry", model.CategoryProduce},
	{"lettuce", model.CategoryProduce},
	{"apple", model.CategoryProduce},
	{"herb", model.CategoryProduce},
	{"fruit", model.CategoryProduce},

	// Pantry
	{"sauce", model.CategoryPantry},
	{"canned", model.CategoryPantry},
	{"beans", model.CategoryPantry},
	{"noodle", model.CategoryPantry},
	{"cereal", model.CategoryPantry},
	{"oil", model.CategoryPantry},
	{"vinegar", model.CategoryPantry},
	{"spice", model.CategoryPantry},
}
