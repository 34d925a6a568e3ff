package model

import "strings"

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty is case-insensitive and reports whether s was recognized.
func ParseDifficulty(s string) (Difficulty, bool) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if strings.EqualFold(strings.TrimSpace(s), string(d)) {
			return d, true
		}
	}
	return "", false
}

type Recipe struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	CookingTime        string     `json:"cooking_time"`
	Difficulty         Difficulty `json:"difficulty"`
	UsedIngredients    []string   `json:"used_ingredients"`
	MissingIngredients []string   `json:"missing_ingredients"`
	Instructions       []string   `json:"instructions"`
	Calories           *float64   `json:"calories,omitempty"`
}
