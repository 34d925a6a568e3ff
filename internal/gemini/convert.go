package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/dukerupert/reciperescue/internal/model"
)

// stripFences removes a surrounding ```json ... ``` block, which models
// sometimes add despite being asked for raw JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func decodeJSON(text, fallback string, v any) error {
	text = stripFences(text)
	if text == "" {
		text = fallback
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("decode model response: %w", err)
	}
	return nil
}

type wireIngredient struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
	Category   string `json:"category"`
	ExpiryDate string `json:"expiryDate"`
}

func (w wireIngredient) toModel() model.RecognizedItem {
	return model.RecognizedItem{
		Name:       strings.TrimSpace(w.Name),
		Quantity:   strings.TrimSpace(w.Quantity),
		Category:   strings.ToLower(strings.TrimSpace(w.Category)),
		ExpiryDate: normalizeDate(w.ExpiryDate),
	}
}

// normalizeDate reduces a model-supplied date to YYYY-MM-DD, or empty when
// it cannot be read as a date.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return s
	}
	if len(s) > 10 {
		if _, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return s[:10]
		}
	}
	return ""
}

type wireRecipe struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	CookingTime        string   `json:"cookingTime"`
	Difficulty         string   `json:"difficulty"`
	UsedIngredients    []string `json:"usedIngredients"`
	MissingIngredients []string `json:"missingIngredients"`
	Instructions       []string `json:"instructions"`
	Calories           *float64 `json:"calories"`
}

type wireRecipeList struct {
	Recipes []wireRecipe `json:"recipes"`
}

func (w wireRecipe) toModel() model.Recipe {
	d, ok := model.ParseDifficulty(w.Difficulty)
	if !ok {
		d = model.DifficultyMedium
	}
	return model.Recipe{
		Title:              strings.TrimSpace(w.Title),
		Description:        strings.TrimSpace(w.Description),
		CookingTime:        strings.TrimSpace(w.CookingTime),
		Difficulty:         d,
		UsedIngredients:    nonNil(w.UsedIngredients),
		MissingIngredients: nonNil(w.MissingIngredients),
		Instructions:       nonNil(w.Instructions),
		Calories:           w.Calories,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// citations converts the grounding chunks of the first candidate. Chunks
// of unsupported kinds are skipped.
func citations(resp *genai.GenerateContentResponse) []model.GroundingChunk {
	out := []model.GroundingChunk{}
	if resp == nil || len(resp.Candidates) == 0 {
		return out
	}
	md := resp.Candidates[0].GroundingMetadata
	if md == nil {
		return out
	}
	for _, ch := range md.GroundingChunks {
		if ch == nil {
			continue
		}
		switch {
		case ch.Web != nil:
			out = append(out, model.NewWebCitation(ch.Web.URI, ch.Web.Title))
		case ch.Maps != nil:
			out = append(out, model.NewMapsCitation(ch.Maps.URI, ch.Maps.Title, reviewSnippets(ch.Maps)))
		}
	}
	return out
}

func reviewSnippets(m *genai.GroundingChunkMaps) []json.RawMessage {
	if m.PlaceAnswerSources == nil {
		return nil
	}
	var out []json.RawMessage
	for _, rs := range m.PlaceAnswerSources.ReviewSnippets {
		if rs == nil {
			continue
		}
		b, err := json.Marshal(rs)
		if err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}

// firstImage returns the first inline data part of the first candidate.
func firstImage(resp *genai.GenerateContentResponse) (*genai.Blob, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, false
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.InlineData != nil && len(p.InlineData.Data) > 0 {
			return p.InlineData, true
		}
	}
	return nil, false
}
