package gemini

import (
	"google.golang.org/genai"

	"github.com/dukerupert/reciperescue/internal/model"
)

func stringSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeString}
}

func stringListSchema() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: stringSchema()}
}

// ingredientListSchema describes the recognition response: a bare array.
func ingredientListSchema() *genai.Schema {
	categories := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		categories[i] = string(c)
	}
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name":       stringSchema(),
				"quantity":   stringSchema(),
				"category":   {Type: genai.TypeString, Enum: categories},
				"expiryDate": {Type: genai.TypeString, Description: "YYYY-MM-DD"},
			},
			PropertyOrdering: []string{"name", "quantity", "category", "expiryDate"},
		},
	}
}

func recipeListSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"recipes": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":       stringSchema(),
						"description": stringSchema(),
						"cookingTime": stringSchema(),
						"difficulty": {
							Type: genai.TypeString,
							Enum: []string{string(model.DifficultyEasy), string(model.DifficultyMedium), string(model.DifficultyHard)},
						},
						"usedIngredients":    stringListSchema(),
						"missingIngredients": stringListSchema(),
						"instructions":       stringListSchema(),
						"calories":           {Type: genai.TypeNumber},
					},
				},
			},
		},
	}
}
