package inventory

import (
	"testing"

	"github.com/dukerupert/reciperescue/internal/model"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		input string
		want  model.Category
	}{
		{"milk", model.CategoryDairy},
		{"Eggs", model.CategoryProtein},
		{"chicken thighs", model.CategoryProtein},
		{"baby spinach", model.CategoryProduce},
		{"cream cheese", model.CategoryDairy},
		{"peanut butter", model.CategoryPantry},
		{"canned chickpeas", model.CategoryPantry},
		{"  BUTTER  ", model.CategoryDairy},
		{"", model.CategoryOther},
		{"widget", model.CategoryOther},
	}
	for _, tt := range tests {
		if got := Categorize(tt.input); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		raw, name string
		want      model.Category
	}{
		{"dairy", "anything", model.CategoryDairy},
		{"PRODUCE", "anything", model.CategoryProduce},
		{"meat", "salmon fillet", model.CategoryProtein},
		{"", "rice", model.CategoryPantry},
		{"", "unknown", model.CategoryOther},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.raw, tt.name); got != tt.want {
			t.Errorf("NormalizeCategory(%q, %q) = %q, want %q", tt.raw, tt.name, got, tt.want)
		}
	}
}
