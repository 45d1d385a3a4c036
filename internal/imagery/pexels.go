package imagery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const pexelsBaseURL = "https://api.pexels.com/v1"

// Pexels queries the Pexels photo search API. Requests authenticate
// with the account API key in the Authorization header.
type Pexels struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	perPage    int
}

var _ Provider = (*Pexels)(nil)

// NewPexels creates a Pexels provider. The API key is required.
func NewPexels(apiKey string, timeout time.Duration, opts ...Option) (*Pexels, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("pexels api key required")
	}
	resolved := buildOptions(pexelsBaseURL, timeout, opts)
	return &Pexels{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(resolved.baseURL, "/"),
		httpClient: resolved.httpClient,
		perPage:    5,
	}, nil
}

// Name identifies the provider in plans and logs.
func (p *Pexels) Name() string { return "pexels" }

type pexelsPhoto struct {
	ID  int64  `json:"id"`
	Alt string `json:"alt"`
	Src struct {
		Original string `json:"original"`
		Large2x  string `json:"large2x"`
		Large    string `json:"large"`
	} `json:"src"`
}

type pexelsResponse struct {
	Photos       []pexelsPhoto `json:"photos"`
	TotalResults int           `json:"total_results"`
}

// Search performs a landscape-oriented photo search.
func (p *Pexels) Search(ctx context.Context, query string) ([]ImageReference, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(p.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse pexels url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", fmt.Sprintf("%d", p.perPage))
	params.Set("orientation", "landscape")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute pexels search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels search returned %d", resp.StatusCode)
	}

	var payload pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode pexels response: %w", err)
	}
	if len(payload.Photos) == 0 {
		return nil, fmt.Errorf("pexels %q: %w", query, ErrNoImage)
	}

	refs := make([]ImageReference, 0, len(payload.Photos))
	for _, photo := range payload.Photos {
		imageURL := photo.Src.Large
		if imageURL == "" {
			imageURL = photo.Src.Original
		}
		if imageURL == "" {
			continue
		}
		refs = append(refs, ImageReference{Provider: p.Name(), URL: imageURL, Query: query})
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("pexels %q: %w", query, ErrNoImage)
	}
	return refs, nil
}
