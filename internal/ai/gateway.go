// Package ai defines the operations the kitchen needs from a generative
// model provider. Implementations live in their own packages.
package ai

import (
	"context"
	"errors"

	"github.com/dukerupert/reciperescue/internal/model"
)

var (
	ErrNoImage       = errors.New("no image was produced")
	ErrEmptyResponse = errors.New("empty response from model")
	ErrNotConfigured = errors.New("ai provider not configured")
)

// RecipeResult is one batch of suggestions and the web sources that
// grounded them.
type RecipeResult struct {
	Recipes   []model.Recipe         `json:"recipes"`
	Citations []model.GroundingChunk `json:"citations"`
}

type Recognizer interface {
	// RecognizeIngredients lists the food items visible in a JPEG photo.
	RecognizeIngredients(ctx context.Context, image []byte) ([]model.RecognizedItem, error)
}

type RecipeSuggester interface {
	// SuggestRecipes proposes recipes that use up the summarized
	// ingredients. prefs may be empty.
	SuggestRecipes(ctx context.Context, summaries []string, prefs string) (RecipeResult, error)
}

type StoreFinder interface {
	// FindNearbyStores returns a summary of grocery stores near the
	// coordinates. Zero citations is a valid result.
	FindNearbyStores(ctx context.Context, lat, lng float64) (model.StoreSearch, error)
}

type ImageEditor interface {
	// EditImage applies a natural-language instruction to a JPEG photo.
	// It returns ErrNoImage when the model answered without an image.
	EditImage(ctx context.Context, image []byte, instruction string) (model.StyledImage, error)
}

// Gateway is the full set of provider operations.
type Gateway interface {
	Recognizer
	RecipeSuggester
	StoreFinder
	ImageEditor
}

// Unconfigured is a Gateway whose every call fails with ErrNotConfigured.
// It keeps the service usable for inventory work when no API key is set.
type Unconfigured struct{}

var _ Gateway = Unconfigured{}

func (Unconfigured) RecognizeIngredients(context.Context, []byte) ([]model.RecognizedItem, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) SuggestRecipes(context.Context, []string, string) (RecipeResult, error) {
	return RecipeResult{}, ErrNotConfigured
}

func (Unconfigured) FindNearbyStores(context.Context, float64, float64) (model.StoreSearch, error) {
	return model.StoreSearch{}, ErrNotConfigured
}

func (Unconfigured) EditImage(context.Context, []byte, string) (model.StyledImage, error) {
	return model.StyledImage{}, ErrNotConfigured
}
