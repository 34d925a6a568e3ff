package model

import "encoding/json"

// CitationKind tags which variant of a GroundingChunk is set.
type CitationKind string

const (
	CitationWeb  CitationKind = "web"
	CitationMaps CitationKind = "maps"
)

type WebCitation struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type MapsCitation struct {
	URI            string            `json:"uri"`
	Title          string            `json:"title"`
	ReviewSnippets []json.RawMessage `json:"review_snippets,omitempty"`
}

// GroundingChunk is a citation attached to a generated answer. Exactly one
// of Web or Maps is set, matching Kind.
type GroundingChunk struct {
	Kind CitationKind  `json:"kind"`
	Web  *WebCitation  `json:"web,omitempty"`
	Maps *MapsCitation `json:"maps,omitempty"`
}

func NewWebCitation(uri, title string) GroundingChunk {
	return GroundingChunk{Kind: CitationWeb, Web: &WebCitation{URI: uri, Title: title}}
}

func NewMapsCitation(uri, title string, snippets []json.RawMessage) GroundingChunk {
	return GroundingChunk{Kind: CitationMaps, Maps: &MapsCitation{URI: uri, Title: title, ReviewSnippets: snippets}}
}

// Link returns the citation's URI and title regardless of kind.
func (g GroundingChunk) Link() (uri, title string) {
	switch g.Kind {
	case CitationWeb:
		if g.Web != nil {
			return g.Web.URI, g.Web.Title
		}
	case CitationMaps:
		if g.Maps != nil {
			return g.Maps.URI, g.Maps.Title
		}
	}
	return "", ""
}

// FilterCitations returns the chunks of the given kind that carry a URI.
// The result is never nil.
func FilterCitations(chunks []GroundingChunk, kind CitationKind) []GroundingChunk {
	out := []GroundingChunk{}
	for _, c := range chunks {
		if c.Kind != kind {
			continue
		}
		if uri, _ := c.Link(); uri == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// StoreSearch is the result of a nearby grocery store lookup. Zero
// citations is a valid outcome.
type StoreSearch struct {
	Summary   string           `json:"summary"`
	Citations []GroundingChunk `json:"citations"`
}
