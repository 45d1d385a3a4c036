// Package workflow coordinates the B-roll pipeline: it polls the queue,
// advances items through transcription, planning, fetching, and rendering,
// persists stage outcomes, and emits notifications along the way.
package workflow
