// Package render implements the pipeline stage that composites planned image
// overlays onto the source video via an ffmpeg filtergraph.
package render
