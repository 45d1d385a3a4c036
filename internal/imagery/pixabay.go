package imagery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const pixabayBaseURL = "https://pixabay.com/api/"

// Pixabay queries the Pixabay image search API. The API key travels as
// a query parameter rather than a header.
type Pixabay struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	perPage    int
}

var _ Provider = (*Pixabay)(nil)

// NewPixabay creates a Pixabay provider. The API key is required.
func NewPixabay(apiKey string, timeout time.Duration, opts ...Option) (*Pixabay, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("pixabay api key required")
	}
	resolved := buildOptions(pixabayBaseURL, timeout, opts)
	return &Pixabay{
		apiKey:     apiKey,
		baseURL:    resolved.baseURL,
		httpClient: resolved.httpClient,
		perPage:    3,
	}, nil
}

// Name identifies the provider in plans and logs.
func (p *Pixabay) Name() string { return "pixabay" }

type pixabayHit struct {
	ID            int64  `json:"id"`
	LargeImageURL string `json:"largeImageURL"`
	WebformatURL  string `json:"webformatURL"`
	Tags          string `json:"tags"`
}

type pixabayResponse struct {
	Total int          `json:"total"`
	Hits  []pixabayHit `json:"hits"`
}

// Search performs a horizontal photo search.
func (p *Pixabay) Search(ctx context.Context, query string) ([]ImageReference, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse pixabay url: %w", err)
	}
	params := url.Values{}
	params.Set("key", p.apiKey)
	params.Set("q", query)
	params.Set("image_type", "photo")
	params.Set("orientation", "horizontal")
	params.Set("per_page", strconv.Itoa(p.perPage))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute pixabay search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pixabay search returned %d", resp.StatusCode)
	}

	var payload pixabayResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode pixabay response: %w", err)
	}

	refs := make([]ImageReference, 0, len(payload.Hits))
	for _, hit := range payload.Hits {
		imageURL := hit.LargeImageURL
		if imageURL == "" {
			imageURL = hit.WebformatURL
		}
		if imageURL == "" {
			continue
		}
		refs = append(refs, ImageReference{Provider: p.Name(), URL: imageURL, Query: query})
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("pixabay %q: %w", query, ErrNoImage)
	}
	return refs, nil
}
