// Package ffprobe shells out to ffprobe and exposes the subset of container
// metadata the pipeline needs: duration, video dimensions, frame rate, and
// audio stream counts.
package ffprobe
