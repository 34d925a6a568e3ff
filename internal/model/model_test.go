package model

import (
	"encoding/json"
	"testing"
)

func TestParseView(t *testing.T) {
	tests := []struct {
		in   string
		want View
		ok   bool
	}{
		{"inventory", ViewInventory, true},
		{"recipes", ViewRecipes, true},
		{"stores", ViewStores, true},
		{"stylist", ViewStylist, true},
		{"Stores", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseView(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseView(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		if got, ok := ParseCategory(string(c)); !ok || got != c {
			t.Errorf("ParseCategory(%q) = %q, %v", c, got, ok)
		}
	}
	if _, ok := ParseCategory("frozen"); ok {
		t.Error("ParseCategory accepted an unknown category")
	}
}

func TestCitationLink(t *testing.T) {
	web := NewWebCitation("https://example.com/shakshuka", "Shakshuka")
	if uri, title := web.Link(); uri != "https://example.com/shakshuka" || title != "Shakshuka" {
		t.Errorf("web Link = %q, %q", uri, title)
	}

	maps := NewMapsCitation("https://maps.google.com/?cid=1", "Corner Market", []json.RawMessage{json.RawMessage(`{"text":"fresh"}`)})
	if uri, _ := maps.Link(); uri != "https://maps.google.com/?cid=1" {
		t.Errorf("maps Link uri = %q", uri)
	}

	broken := GroundingChunk{Kind: CitationWeb}
	if uri, _ := broken.Link(); uri != "" {
		t.Errorf("Link on empty chunk = %q", uri)
	}
}

func TestFilterCitations(t *testing.T) {
	chunks := []GroundingChunk{
		NewWebCitation("https://a.example.com", "A"),
		NewMapsCitation("https://maps.google.com/?cid=2", "Store", nil),
		NewWebCitation("", "no link"),
		NewWebCitation("https://b.example.com", "B"),
	}

	web := FilterCitations(chunks, CitationWeb)
	if len(web) != 2 || web[0].Web.Title != "A" || web[1].Web.Title != "B" {
		t.Errorf("web citations = %+v", web)
	}
	if got := FilterCitations(chunks, CitationMaps); len(got) != 1 {
		t.Errorf("maps citations = %d, want 1", len(got))
	}
	if got := FilterCitations(nil, CitationWeb); got == nil || len(got) != 0 {
		t.Errorf("FilterCitations(nil) = %#v, want empty slice", got)
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
		ok   bool
	}{
		{"Easy", DifficultyEasy, true},
		{" hard ", DifficultyHard, true},
		{"MEDIUM", DifficultyMedium, true},
		{"expert", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDifficulty(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseDifficulty(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
