package imagery

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
)

const picsumBaseURL = "https://picsum.photos"

// Picsum is the last-resort provider. It derives a stable placeholder
// URL from the query hash so plans stay reproducible without any
// network access at planning time. Repeat lookups for the same query
// fold an attempt counter into the hash so the chain can still hand
// out distinct URLs.
type Picsum struct {
	mu       sync.Mutex
	attempts map[string]int
}

var _ Provider = (*Picsum)(nil)

// NewPicsum creates the placeholder provider.
func NewPicsum() *Picsum {
	return &Picsum{attempts: make(map[string]int)}
}

// Name identifies the provider in plans and logs.
func (p *Picsum) Name() string { return "picsum" }

// Search returns one deterministic placeholder URL for the query.
func (p *Picsum) Search(_ context.Context, query string) ([]ImageReference, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("picsum: %w", ErrNoImage)
	}

	p.mu.Lock()
	attempt := p.attempts[query]
	p.attempts[query]++
	p.mu.Unlock()

	digest := fnv.New32a()
	digest.Write([]byte(query))
	if attempt > 0 {
		fmt.Fprintf(digest, "#%d", attempt)
	}
	placeholderURL := fmt.Sprintf("%s/800/600?random=%d", picsumBaseURL, digest.Sum32())
	return []ImageReference{{Provider: p.Name(), URL: placeholderURL, Query: query}}, nil
}
