package imagery

import (
	"context"
	"fmt"
	"strings"
)

const unsplashSourceURL = "https://source.unsplash.com"

// Unsplash builds Unsplash Source URLs without calling an API. The
// service picks a matching photo server-side, so no key is needed and
// construction never fails. Queries are widened with a topic category
// to keep results on theme for abstract keywords.
type Unsplash struct {
	width  int
	height int
}

var _ Provider = (*Unsplash)(nil)

// NewUnsplash creates the keyless Unsplash source provider.
func NewUnsplash() *Unsplash {
	return &Unsplash{width: 800, height: 600}
}

// Name identifies the provider in plans and logs.
func (u *Unsplash) Name() string { return "unsplash" }

// categoryTerms widens a keyword with a broad topic so the source
// endpoint has something to match when the keyword alone is too narrow.
var categoryTerms = []struct {
	match    string
	category string
}{
	{"exercise", "fitness"},
	{"workout", "fitness"},
	{"health", "health"},
	{"doctor", "medical"},
	{"sleep", "rest"},
	{"water", "nature"},
	{"food", "food"},
	{"nutrition", "food"},
}

func categoryFor(query string) string {
	lowered := strings.ToLower(query)
	for _, entry := range categoryTerms {
		if strings.Contains(lowered, entry.match) {
			return entry.category
		}
	}
	return "health"
}

// Search returns a single deterministic source URL for the query.
func (u *Unsplash) Search(_ context.Context, query string) ([]ImageReference, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("unsplash: %w", ErrNoImage)
	}
	terms := categoryFor(query) + "," + strings.ReplaceAll(query, " ", ",")
	sourceURL := fmt.Sprintf("%s/%dx%d/?%s", unsplashSourceURL, u.width, u.height, terms)
	return []ImageReference{{Provider: u.Name(), URL: sourceURL, Query: query}}, nil
}
