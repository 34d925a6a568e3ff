package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dukerupert/reciperescue/internal/ai"
	"github.com/dukerupert/reciperescue/internal/model"
)

const jpegMIME = "image/jpeg"

// RecognizeIngredients asks the vision model to list the food in a JPEG.
func (c *Client) RecognizeIngredients(ctx context.Context, image []byte) ([]model.RecognizedItem, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, jpegMIME),
			genai.NewPartFromText(recognitionPrompt(c.now())),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(inventoryInstruction, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    ingredientListSchema(),
	}

	resp, err := c.generate(ctx, "recognize", c.cfg.VisionModel, contents, config)
	if err != nil {
		return nil, err
	}

	var wire []wireIngredient
	if err := decodeJSON(resp.Text(), "[]", &wire); err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}

	items := make([]model.RecognizedItem, 0, len(wire))
	for _, w := range wire {
		it := w.toModel()
		if it.Name == "" {
			continue
		}
		items = append(items, it)
	}
	return items, nil
}

// SuggestRecipes asks for recipes grounded by Google Search.
func (c *Client) SuggestRecipes(ctx context.Context, summaries []string, prefs string) (ai.RecipeResult, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(recipeInstruction, genai.RoleUser),
		Tools:             []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    recipeListSchema(),
	}

	resp, err := c.generate(ctx, "recipes", c.cfg.RecipeModel, genai.Text(recipePrompt(summaries, prefs)), config)
	if err != nil {
		return ai.RecipeResult{}, err
	}

	var wire wireRecipeList
	if err := decodeJSON(resp.Text(), `{"recipes": []}`, &wire); err != nil {
		return ai.RecipeResult{}, fmt.Errorf("recipes: %w", err)
	}

	recipes := make([]model.Recipe, 0, len(wire.Recipes))
	for i, w := range wire.Recipes {
		r := w.toModel()
		r.ID = fmt.Sprintf("recipe-%d", i)
		recipes = append(recipes, r)
	}
	return ai.RecipeResult{Recipes: recipes, Citations: model.FilterCitations(citations(resp), model.CitationWeb)}, nil
}

// FindNearbyStores asks the maps-grounded model for grocery stores near a
// location.
func (c *Client) FindNearbyStores(ctx context.Context, lat, lng float64) (model.StoreSearch, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleMaps: &genai.GoogleMaps{}}},
		ToolConfig: &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{Latitude: genai.Ptr(lat), Longitude: genai.Ptr(lng)},
			},
		},
	}

	resp, err := c.generate(ctx, "stores", c.cfg.MapsModel, genai.Text(storesPrompt), config)
	if err != nil {
		return model.StoreSearch{}, err
	}

	summary := strings.TrimSpace(resp.Text())
	if summary == "" {
		summary = noStoresText
	}
	return model.StoreSearch{Summary: summary, Citations: model.FilterCitations(citations(resp), model.CitationMaps)}, nil
}

// EditImage applies instruction to a JPEG and returns the edited image.
func (c *Client) EditImage(ctx context.Context, image []byte, instruction string) (model.StyledImage, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, jpegMIME),
			genai.NewPartFromText(instruction),
		}, genai.RoleUser),
	}

	resp, err := c.generate(ctx, "edit", c.cfg.ImageModel, contents, nil)
	if err != nil {
		return model.StyledImage{}, err
	}

	blob, ok := firstImage(resp)
	if !ok {
		return model.StyledImage{}, fmt.Errorf("edit: %w", ai.ErrNoImage)
	}
	mime := blob.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return model.StyledImage{MIMEType: mime, Data: blob.Data}, nil
}
