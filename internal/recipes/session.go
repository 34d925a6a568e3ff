package recipes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dukerupert/reciperescue/internal/ai"
	"github.com/dukerupert/reciperescue/internal/model"
)

var (
	ErrNoIngredients = errors.New("no ingredients to cook with")
	// ErrSuperseded is returned when a newer generation started, or the
	// session was shut down, before this one finished.
	ErrSuperseded = errors.New("recipe generation superseded")
)

// Batch is the current set of suggestions. Recipes and citations always
// come from the same generation.
type Batch struct {
	Recipes     []model.Recipe         `json:"recipes"`
	Citations   []model.GroundingChunk `json:"citations"`
	GeneratedAt time.Time              `json:"generated_at,omitempty"`
}

// Session holds the latest recipe batch for one kitchen.
type Session struct {
	mu     sync.Mutex
	batch  Batch
	ticket uint64
	now    func() time.Time
}

func NewSession() *Session {
	return &Session{now: time.Now}
}

// Summaries renders ingredients the way the recipe prompt expects them.
func Summaries(ingredients []model.Ingredient) []string {
	out := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		date := ing.ExpiryDate
		if date == "" {
			date = "unknown"
		}
		out = append(out, fmt.Sprintf("%s (expires: %s)", ing.Name, date))
	}
	return out
}

// Generate asks the suggester for recipes using ingredients and replaces
// the current batch with the result. On any error the current batch is
// left as it was.
func (s *Session) Generate(ctx context.Context, suggester ai.RecipeSuggester, ingredients []model.Ingredient, prefs string) (Batch, error) {
	if len(ingredients) == 0 {
		return Batch{}, ErrNoIngredients
	}

	s.mu.Lock()
	s.ticket++
	ticket := s.ticket
	s.mu.Unlock()

	res, err := suggester.SuggestRecipes(ctx, Summaries(ingredients), prefs)
	if err != nil {
		return Batch{}, fmt.Errorf("suggest recipes: %w", err)
	}

	recipes := make([]model.Recipe, len(res.Recipes))
	copy(recipes, res.Recipes)
	for i := range recipes {
		if recipes[i].ID == "" {
			recipes[i].ID = fmt.Sprintf("recipe-%d", i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket != s.ticket || ctx.Err() != nil {
		return Batch{}, ErrSuperseded
	}

	citations := res.Citations
	if citations == nil {
		citations = []model.GroundingChunk{}
	}
	s.batch = Batch{
		Recipes:     recipes,
		Citations:   citations,
		GeneratedAt: s.now(),
	}
	return s.batch, nil
}

// Current returns the latest batch. Before the first generation it is
// empty, never nil.
func (s *Session) Current() Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.batch
	if b.Recipes == nil {
		b.Recipes = []model.Recipe{}
	}
	if b.Citations == nil {
		b.Citations = []model.GroundingChunk{}
	}
	return b
}
