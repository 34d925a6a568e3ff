package recipes

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/reciperescue/internal/ai"
	"github.com/dukerupert/reciperescue/internal/model"
)

type fakeSuggester struct {
	calls     int
	summaries []string
	prefs     string
	result    ai.RecipeResult
	err       error
	// block, when set, is waited on before returning.
	block chan struct{}
}

func (f *fakeSuggester) SuggestRecipes(ctx context.Context, summaries []string, prefs string) (ai.RecipeResult, error) {
	f.calls++
	f.summaries = summaries
	f.prefs = prefs
	if f.block != nil {
		<-f.block
	}
	return f.result, f.err
}

func sampleResult(titles ...string) ai.RecipeResult {
	var res ai.RecipeResult
	for _, title := range titles {
		res.Recipes = append(res.Recipes, model.Recipe{Title: title, Difficulty: model.DifficultyEasy})
	}
	res.Citations = []model.GroundingChunk{model.NewWebCitation("https://example.com/"+titles[0], titles[0])}
	return res
}

var pantry = []model.Ingredient{
	{ID: "1", Name: "Eggs", ExpiryDate: "2026-05-04"},
	{ID: "2", Name: "Rice"},
}

func TestSummaries(t *testing.T) {
	got := Summaries(pantry)
	want := []string{"Eggs (expires: 2026-05-04)", "Rice (expires: unknown)"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("summary %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGenerateNoIngredients(t *testing.T) {
	s := NewSession()
	f := &fakeSuggester{result: sampleResult("Omelette")}

	_, err := s.Generate(context.Background(), f, nil, "")
	if !errors.Is(err, ErrNoIngredients) {
		t.Fatalf("err = %v, want ErrNoIngredients", err)
	}
	if f.calls != 0 {
		t.Errorf("suggester called %d times, want 0", f.calls)
	}
}

func TestGenerateReplacesBatch(t *testing.T) {
	s := NewSession()
	f := &fakeSuggester{result: sampleResult("Omelette", "Fried rice", "Congee")}

	b, err := s.Generate(context.Background(), f, pantry, "vegetarian")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if f.prefs != "vegetarian" {
		t.Errorf("prefs = %q", f.prefs)
	}
	if len(f.summaries) != 2 {
		t.Errorf("summaries = %v", f.summaries)
	}
	if len(b.Recipes) != 3 {
		t.Fatalf("recipes = %d, want 3", len(b.Recipes))
	}
	for i, want := range []string{"recipe-0", "recipe-1", "recipe-2"} {
		if b.Recipes[i].ID != want {
			t.Errorf("recipe %d id = %q, want %q", i, b.Recipes[i].ID, want)
		}
	}

	f.result = sampleResult("Shakshuka")
	b, err = s.Generate(context.Background(), f, pantry, "")
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}

	cur := s.Current()
	if len(cur.Recipes) != 1 || cur.Recipes[0].Title != "Shakshuka" {
		t.Errorf("recipes = %+v, want only Shakshuka", cur.Recipes)
	}
	if len(cur.Citations) != 1 || cur.Citations[0].Web.Title != "Shakshuka" {
		t.Errorf("citations = %+v, want the second batch's", cur.Citations)
	}
}

func TestGenerateKeepsProvidedIDs(t *testing.T) {
	s := NewSession()
	f := &fakeSuggester{result: ai.RecipeResult{Recipes: []model.Recipe{{ID: "abc", Title: "Toast"}}}}

	b, err := s.Generate(context.Background(), f, pantry, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if b.Recipes[0].ID != "abc" {
		t.Errorf("id = %q, want abc", b.Recipes[0].ID)
	}
}

func TestGenerateFailureLeavesBatch(t *testing.T) {
	s := NewSession()
	f := &fakeSuggester{result: sampleResult("Omelette")}
	if _, err := s.Generate(context.Background(), f, pantry, ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	f.err = errors.New("quota exceeded")
	if _, err := s.Generate(context.Background(), f, pantry, ""); err == nil {
		t.Fatal("expected error")
	}

	cur := s.Current()
	if len(cur.Recipes) != 1 || cur.Recipes[0].Title != "Omelette" {
		t.Errorf("batch changed after failure: %+v", cur.Recipes)
	}
	if len(cur.Citations) != 1 {
		t.Errorf("citations changed after failure: %+v", cur.Citations)
	}
}

func TestGenerateStaleResultDropped(t *testing.T) {
	s := NewSession()
	slow := &fakeSuggester{result: sampleResult("Slow"), block: make(chan struct{})}
	fast := &fakeSuggester{result: sampleResult("Fast")}

	done := make(chan error, 1)
	go func() {
		_, err := s.Generate(context.Background(), slow, pantry, "")
		done <- err
	}()

	// Wait until the slow call holds its ticket.
	for {
		s.mu.Lock()
		started := s.ticket == 1
		s.mu.Unlock()
		if started {
			break
		}
	}

	if _, err := s.Generate(context.Background(), fast, pantry, ""); err != nil {
		t.Fatalf("fast Generate: %v", err)
	}
	close(slow.block)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("slow err = %v, want ErrSuperseded", err)
	}
	if got := s.Current().Recipes[0].Title; got != "Fast" {
		t.Errorf("current = %q, want Fast", got)
	}
}

func TestGenerateCancelledContext(t *testing.T) {
	s := NewSession()
	ctx, cancel := context.WithCancel(context.Background())
	f := &fakeSuggester{result: sampleResult("Late"), block: make(chan struct{})}

	done := make(chan error, 1)
	go func() {
		_, err := s.Generate(ctx, f, pantry, "")
		done <- err
	}()
	cancel()
	close(f.block)

	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Errorf("err = %v, want ErrSuperseded", err)
	}
	if len(s.Current().Recipes) != 0 {
		t.Error("cancelled generation committed recipes")
	}
}
