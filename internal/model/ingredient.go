package model

// Category is one of the fixed ingredient categories.
type Category string

const (
	CategoryProduce Category = "produce"
	CategoryDairy   Category = "dairy"
	CategoryProtein Category = "protein"
	CategoryPantry  Category = "pantry"
	CategoryOther   Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryProduce, CategoryDairy, CategoryProtein, CategoryPantry, CategoryOther}

// ParseCategory reports whether s names one of the fixed categories.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Ingredient is one inventory record. ExpiryDate is YYYY-MM-DD or empty.
type Ingredient struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Quantity   string   `json:"quantity,omitempty"`
	ExpiryDate string   `json:"expiry_date,omitempty"`
}

// RecognizedItem is an ingredient as reported by image recognition,
// before it is assigned an id.
type RecognizedItem struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity,omitempty"`
	Category   string `json:"category"`
	ExpiryDate string `json:"expiry_date,omitempty"`
}
