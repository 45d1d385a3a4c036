// Package planning implements the pipeline stage that extracts keywords from
// a transcript, resolves stock images, and writes the versioned insertion plan.
package planning
