package imagery

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ImageReference identifies a stock image candidate for one keyword.
// LocalPath stays empty until the fetch stage downloads the asset.
type ImageReference struct {
	Provider  string `json:"provider"`
	URL       string `json:"url"`
	Query     string `json:"query"`
	LocalPath string `json:"local_path,omitempty"`
}

// Provider searches one image source for candidates matching a query.
// Implementations return candidates in preference order and must not
// return an empty slice with a nil error.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) ([]ImageReference, error)
}

// ErrNoImage reports that every provider in a chain was exhausted
// without yielding a usable image.
var ErrNoImage = errors.New("no image available")

const defaultRequestTimeout = 10 * time.Second

// Option adjusts provider construction, primarily for tests.
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL overrides the provider API endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		if baseURL != "" {
			o.baseURL = baseURL
		}
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

func buildOptions(defaultBaseURL string, timeout time.Duration, opts []Option) options {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	resolved := options{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(&resolved)
	}
	return resolved
}
