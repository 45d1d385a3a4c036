// Package broll defines the insertion plan hand-off: the event and
// plan value types, the effect and position rotation, and the
// versioned JSON codec a renderer reads the schedule from.
package broll
