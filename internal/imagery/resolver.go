package imagery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"broll/internal/config"
	"broll/internal/logging"
)

// Resolver walks a provider chain until one returns an image that has
// not already been claimed by an earlier insertion. Provider failures
// are logged and skipped; only full exhaustion is an error.
type Resolver struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger

	mu   sync.Mutex
	used map[string]struct{}
}

// NewResolver builds a resolver over the supplied providers, tried in
// order for every query.
func NewResolver(providers []Provider, timeout time.Duration, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Resolver{
		providers: providers,
		timeout:   timeout,
		logger:    logger,
		used:      make(map[string]struct{}),
	}
}

// Resolve returns the first unused image any provider yields for the
// query. It returns ErrNoImage when the chain is exhausted.
func (r *Resolver) Resolve(ctx context.Context, query string) (*ImageReference, error) {
	if len(r.providers) == 0 {
		return nil, fmt.Errorf("resolve %q: %w", query, ErrNoImage)
	}
	for _, provider := range r.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		searchCtx, cancel := context.WithTimeout(ctx, r.timeout)
		refs, err := provider.Search(searchCtx, query)
		cancel()
		if err != nil {
			r.logger.Warn("provider search failed",
				slog.String(logging.FieldProvider, provider.Name()),
				slog.String(logging.FieldKeyword, query),
				logging.Error(err))
			continue
		}
		for _, ref := range refs {
			if r.claim(ref.URL) {
				return &ref, nil
			}
		}
		r.logger.Debug("provider candidates already used",
			slog.String(logging.FieldProvider, provider.Name()),
			slog.String(logging.FieldKeyword, query))
	}
	return nil, fmt.Errorf("resolve %q: %w", query, ErrNoImage)
}

func (r *Resolver) claim(imageURL string) bool {
	if imageURL == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.used[imageURL]; taken {
		return false
	}
	r.used[imageURL] = struct{}{}
	return true
}

// Chain assembles the provider fallback order from configuration.
// Providers without credentials are skipped; the keyless Unsplash and
// Picsum sources always anchor the tail so resolution cannot come up
// empty-handed for a non-empty query.
func Chain(cfg *config.Config, logger *slog.Logger) []Provider {
	if logger == nil {
		logger = logging.NewNop()
	}
	timeout := time.Duration(cfg.Providers.RequestTimeout) * time.Second
	providers := make([]Provider, 0, 4)

	if pexels, err := NewPexels(cfg.Providers.PexelsAPIKey, timeout); err == nil {
		providers = append(providers, pexels)
	} else {
		logger.Debug("pexels disabled", logging.Error(err))
	}
	if pixabay, err := NewPixabay(cfg.Providers.PixabayAPIKey, timeout); err == nil {
		providers = append(providers, pixabay)
	} else {
		logger.Debug("pixabay disabled", logging.Error(err))
	}
	providers = append(providers, NewUnsplash(), NewPicsum())
	return providers
}
