package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"broll/internal/broll"
	"broll/internal/config"
	"broll/internal/imagery"
	"broll/internal/keywords"
	"broll/internal/logging"
)

// ImageResolver supplies one unused image per keyword query. The
// production implementation is imagery.Resolver; tests substitute
// scripted resolvers to keep plans deterministic.
type ImageResolver interface {
	Resolve(ctx context.Context, query string) (*imagery.ImageReference, error)
}

// Settings control the greedy scheduling scan. All times are seconds.
type Settings struct {
	MinInterval     float64
	MaxInterval     float64
	OverlayDuration float64
	LeadIn          float64
	TailMargin      float64
	ResolverRetries int
	Positions       []broll.Position
}

// SettingsFromConfig maps the planner configuration section onto
// scheduler settings.
func SettingsFromConfig(cfg *config.Config) Settings {
	positions := make([]broll.Position, 0, len(cfg.Planner.Positions))
	for _, raw := range cfg.Planner.Positions {
		positions = append(positions, broll.Position(raw))
	}
	return Settings{
		MinInterval:     cfg.Planner.MinInterval,
		MaxInterval:     cfg.Planner.MaxInterval,
		OverlayDuration: cfg.Planner.OverlayDuration,
		LeadIn:          cfg.Planner.LeadIn,
		TailMargin:      cfg.Planner.TailMargin,
		ResolverRetries: cfg.Planner.ResolverRetries,
		Positions:       positions,
	}
}

// Planner builds insertion schedules with a greedy forward scan. It is
// single-threaded; one Planner serves one plan at a time.
type Planner struct {
	settings Settings
	resolver ImageResolver
	cycle    *broll.Cycle
	logger   *slog.Logger
}

// New creates a planner. The resolver is required.
func New(settings Settings, resolver ImageResolver, logger *slog.Logger) (*Planner, error) {
	if resolver == nil {
		return nil, errors.New("planner requires an image resolver")
	}
	if settings.MinInterval <= 0 || settings.MaxInterval < settings.MinInterval {
		return nil, fmt.Errorf("interval bounds [%.3f, %.3f] are invalid", settings.MinInterval, settings.MaxInterval)
	}
	if settings.OverlayDuration <= 0 {
		return nil, fmt.Errorf("overlay duration %.3f must be positive", settings.OverlayDuration)
	}
	if settings.LeadIn < 0 {
		settings.LeadIn = 0
	}
	if settings.TailMargin < 0 {
		settings.TailMargin = 0
	}
	if settings.ResolverRetries < 1 {
		settings.ResolverRetries = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Planner{
		settings: settings,
		resolver: resolver,
		cycle:    broll.NewCycle(settings.Positions),
		logger:   logger,
	}, nil
}

// Plan schedules insertion events across the video. The scan walks a
// cursor forward, picks the strongest keyword occurrence inside each
// target window, resolves an image for it, and emits one event per
// slot. Each occurrence is spent at most once, so the scan always
// terminates. Failed resolutions drop the occurrence and fall back to
// the next-best candidate up to the retry bound; a slot that cannot be
// filled is skipped rather than failing the plan.
func (p *Planner) Plan(ctx context.Context, occurrences []keywords.Occurrence, videoDuration float64) (*broll.Plan, error) {
	if videoDuration < 0 {
		return nil, fmt.Errorf("video duration %.3f is negative", videoDuration)
	}
	plan := &broll.Plan{
		VideoDuration: videoDuration,
		MinInterval:   p.settings.MinInterval,
		MaxInterval:   p.settings.MaxInterval,
		Events:        []broll.InsertionEvent{},
	}
	if videoDuration < p.settings.MinInterval {
		return plan, nil
	}

	pool := make([]keywords.Occurrence, len(occurrences))
	copy(pool, occurrences)

	cursor := p.settings.LeadIn
	limit := videoDuration - p.settings.TailMargin

	for cursor+p.settings.MinInterval < limit && len(pool) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		windowLow := cursor + p.settings.MinInterval
		windowHigh := cursor + p.settings.MaxInterval

		event, spent := p.fillSlot(ctx, pool, windowLow, windowHigh, videoDuration)
		pool = removeOccurrences(pool, spent)
		if event == nil {
			cursor += p.settings.MinInterval
			continue
		}
		if event.Image.Provider == "picsum" {
			plan.FallbackCount++
		}
		plan.Events = append(plan.Events, *event)
		cursor = event.StartTime
	}

	if err := p.cycle.Assign(plan.Events); err != nil {
		return nil, fmt.Errorf("assign effects: %w", err)
	}
	if plan.FallbackCount*2 > len(plan.Events) && plan.FallbackCount > 0 {
		p.logger.Warn("most insertions use placeholder imagery",
			logging.Int("fallback_count", plan.FallbackCount),
			logging.Int("event_count", len(plan.Events)))
	}
	return plan, nil
}

// fillSlot resolves an image for the best candidate in the window,
// walking down the candidate list when resolution fails. It returns
// the emitted event, if any, plus the indices of pool entries that
// were consumed or abandoned.
func (p *Planner) fillSlot(ctx context.Context, pool []keywords.Occurrence, windowLow, windowHigh, videoDuration float64) (*broll.InsertionEvent, []int) {
	candidates := rankCandidates(pool, windowLow, windowHigh)
	if len(candidates) > p.settings.ResolverRetries {
		candidates = candidates[:p.settings.ResolverRetries]
	}

	var spent []int
	for _, idx := range candidates {
		occurrence := pool[idx]
		spent = append(spent, idx)
		ref, err := p.resolver.Resolve(ctx, occurrence.Term)
		if err != nil {
			p.logger.Warn("image resolution failed, trying next candidate",
				logging.String(logging.FieldKeyword, occurrence.Term),
				logging.Error(err))
			continue
		}

		start := clamp(occurrence.Timestamp, windowLow, windowHigh)
		duration := p.settings.OverlayDuration
		if duration > p.settings.MaxInterval {
			duration = p.settings.MaxInterval
		}
		// Keeping the overlay shorter than the minimum spacing
		// guarantees the next event cannot start underneath it.
		if duration > p.settings.MinInterval {
			duration = p.settings.MinInterval
		}
		if remaining := videoDuration - start; duration > remaining {
			duration = remaining
		}
		if duration <= 0 {
			continue
		}
		return &broll.InsertionEvent{
			StartTime: start,
			Duration:  duration,
			Keyword:   occurrence.Term,
			Image:     *ref,
		}, spent
	}
	return nil, spent
}

// rankCandidates orders pool indices for one slot: in-window
// occurrences by descending weight with earlier timestamps breaking
// ties, then out-of-window occurrences by distance to the window.
func rankCandidates(pool []keywords.Occurrence, windowLow, windowHigh float64) []int {
	inWindow := make([]int, 0, len(pool))
	outside := make([]int, 0, len(pool))
	for i, occurrence := range pool {
		if occurrence.Timestamp >= windowLow && occurrence.Timestamp <= windowHigh {
			inWindow = append(inWindow, i)
		} else {
			outside = append(outside, i)
		}
	}
	sort.SliceStable(inWindow, func(a, b int) bool {
		left, right := pool[inWindow[a]], pool[inWindow[b]]
		if left.Weight != right.Weight {
			return left.Weight > right.Weight
		}
		return left.Timestamp < right.Timestamp
	})
	sort.SliceStable(outside, func(a, b int) bool {
		left := windowDistance(pool[outside[a]].Timestamp, windowLow, windowHigh)
		right := windowDistance(pool[outside[b]].Timestamp, windowLow, windowHigh)
		if left != right {
			return left < right
		}
		return pool[outside[a]].Timestamp < pool[outside[b]].Timestamp
	})
	return append(inWindow, outside...)
}

func windowDistance(timestamp, windowLow, windowHigh float64) float64 {
	switch {
	case timestamp < windowLow:
		return windowLow - timestamp
	case timestamp > windowHigh:
		return timestamp - windowHigh
	default:
		return 0
	}
}

func removeOccurrences(pool []keywords.Occurrence, spent []int) []keywords.Occurrence {
	if len(spent) == 0 {
		return pool
	}
	drop := make(map[int]struct{}, len(spent))
	for _, idx := range spent {
		drop[idx] = struct{}{}
	}
	kept := pool[:0]
	for i, occurrence := range pool {
		if _, gone := drop[i]; !gone {
			kept = append(kept, occurrence)
		}
	}
	return kept
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
