package broll

import "fmt"

// effectOrder is the fixed rotation applied to successive insertions.
var effectOrder = []Effect{EffectSlide, EffectZoom, EffectFade}

// Cycle hands out effect and position pairs for successive insertion
// events. Effects rotate slide, zoom, fade; positions rotate through
// the configured placement list, alternating sides by default. The
// cycle restarts from the same state for every plan, which keeps
// assignment deterministic.
type Cycle struct {
	positions []Position
	index     int
}

// NewCycle builds a cycle over the given placements. An empty list
// falls back to alternating right and left.
func NewCycle(positions []Position) *Cycle {
	if len(positions) == 0 {
		positions = []Position{PositionRight, PositionLeft}
	}
	copied := make([]Position, len(positions))
	copy(copied, positions)
	return &Cycle{positions: copied}
}

// Reset rewinds the cycle to its initial state.
func (c *Cycle) Reset() { c.index = 0 }

// Next returns the effect and position for the next event in sequence.
func (c *Cycle) Next() (Effect, Position) {
	effect := effectOrder[c.index%len(effectOrder)]
	position := c.positions[c.index%len(c.positions)]
	c.index++
	return effect, position
}

// Assign populates effect and position on every event in order,
// restarting the rotation first. It rejects a rotation that would give
// two consecutive events an identical effect and position pair.
func (c *Cycle) Assign(events []InsertionEvent) error {
	c.Reset()
	for i := range events {
		events[i].Effect, events[i].Position = c.Next()
		if i == 0 {
			continue
		}
		if events[i].Effect == events[i-1].Effect && events[i].Position == events[i-1].Position {
			return fmt.Errorf("events %d and %d both assigned %s/%s", i-1, i, events[i].Effect, events[i].Position)
		}
	}
	return nil
}
