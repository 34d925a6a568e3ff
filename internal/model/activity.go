package model

import "time"

// Activity kinds recorded for impact stats and AI call auditing.
const (
	ActivityIngredientUsed    = "ingredient_used"
	ActivityIngredientExpired = "ingredient_expired"
	ActivityRecipesGenerated  = "recipes_generated"
	ActivityAICall            = "ai_call"
)

type ActivityEvent struct {
	ID         int64     `json:"id"`
	KitchenID  string    `json:"kitchen_id"`
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject"`
	OK         bool      `json:"ok"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Impact summarizes food rescued over a period.
type Impact struct {
	Used    int       `json:"used"`
	Saved   int       `json:"saved"`
	Expired int       `json:"expired"`
	Since   time.Time `json:"since"`
}

// StyledImage is the output of the food stylist. URL is set when the image
// was published to the gallery.
type StyledImage struct {
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data,omitempty"`
	URL      string `json:"url,omitempty"`
}
