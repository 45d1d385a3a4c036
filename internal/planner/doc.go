// Package planner schedules B-roll insertion events. A greedy forward
// scan walks the video in keyword-relevance windows and emits a
// strictly ordered, non-overlapping schedule that the renderer can
// replay without re-deriving anything.
package planner
