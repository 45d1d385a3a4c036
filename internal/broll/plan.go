package broll

import (
	"errors"
	"fmt"

	"broll/internal/imagery"
)

// Effect names the overlay animation applied to one insertion.
type Effect string

const (
	EffectSlide Effect = "slide"
	EffectZoom  Effect = "zoom"
	EffectFade  Effect = "fade"
)

// Valid reports whether the effect is one of the known animations.
func (e Effect) Valid() bool {
	switch e {
	case EffectSlide, EffectZoom, EffectFade:
		return true
	}
	return false
}

// Position names where the overlay sits on the frame.
type Position string

const (
	PositionRight       Position = "right"
	PositionLeft        Position = "left"
	PositionTopLeft     Position = "top-left"
	PositionTopRight    Position = "top-right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottomRight Position = "bottom-right"
	PositionCenter      Position = "center"
)

// Valid reports whether the position is one of the known placements.
func (p Position) Valid() bool {
	switch p {
	case PositionRight, PositionLeft, PositionTopLeft, PositionTopRight,
		PositionBottomLeft, PositionBottomRight, PositionCenter:
		return true
	}
	return false
}

// InsertionEvent schedules one image overlay at an absolute point in
// the video. Times are in seconds from the start of the video.
type InsertionEvent struct {
	StartTime float64                `json:"start_time"`
	Duration  float64                `json:"duration"`
	Keyword   string                 `json:"keyword"`
	Image     imagery.ImageReference `json:"image"`
	Effect    Effect                 `json:"effect"`
	Position  Position               `json:"position"`
}

// End returns the time the overlay leaves the frame.
func (e InsertionEvent) End() float64 { return e.StartTime + e.Duration }

// Plan is the finalized insertion schedule for one video. It carries
// the generation parameters so a consumer can verify the schedule
// without re-deriving anything. A plan is a value object once built;
// re-planning produces a new Plan.
type Plan struct {
	VideoDuration float64          `json:"video_duration"`
	MinInterval   float64          `json:"min_interval"`
	MaxInterval   float64          `json:"max_interval"`
	FallbackCount int              `json:"fallback_count"`
	Events        []InsertionEvent `json:"events"`
}

// intervalSlack absorbs float accumulation across a long scan.
const intervalSlack = 1e-6

// Validate checks the structural invariants every well-formed plan
// holds: ordered non-overlapping events inside the video bounds,
// spacing no tighter than the generation minimum, and populated enums.
func (p *Plan) Validate() error {
	if p == nil {
		return errors.New("plan is nil")
	}
	if p.VideoDuration < 0 {
		return fmt.Errorf("video duration %.3f is negative", p.VideoDuration)
	}
	if p.MinInterval <= 0 || p.MaxInterval < p.MinInterval {
		return fmt.Errorf("interval bounds [%.3f, %.3f] are invalid", p.MinInterval, p.MaxInterval)
	}
	for i, event := range p.Events {
		if event.StartTime < 0 {
			return fmt.Errorf("event %d starts at %.3f before the video", i, event.StartTime)
		}
		if event.Duration <= 0 {
			return fmt.Errorf("event %d has non-positive duration %.3f", i, event.Duration)
		}
		if event.End() > p.VideoDuration+intervalSlack {
			return fmt.Errorf("event %d ends at %.3f past video end %.3f", i, event.End(), p.VideoDuration)
		}
		if event.Keyword == "" {
			return fmt.Errorf("event %d has no keyword", i)
		}
		if event.Image.URL == "" {
			return fmt.Errorf("event %d has no image", i)
		}
		if !event.Effect.Valid() {
			return fmt.Errorf("event %d has unknown effect %q", i, event.Effect)
		}
		if !event.Position.Valid() {
			return fmt.Errorf("event %d has unknown position %q", i, event.Position)
		}
		if i == 0 {
			continue
		}
		prev := p.Events[i-1]
		if event.StartTime < prev.End()-intervalSlack {
			return fmt.Errorf("event %d at %.3f overlaps previous ending %.3f", i, event.StartTime, prev.End())
		}
		// Only the lower bound is structural. The image fetch drops events
		// whose download failed, which can widen gaps past MaxInterval in an
		// otherwise well-formed plan.
		gap := event.StartTime - prev.StartTime
		if gap < p.MinInterval-intervalSlack {
			return fmt.Errorf("event %d spacing %.3f below minimum %.3f", i, gap, p.MinInterval)
		}
	}
	return nil
}
