// Package fetch implements the pipeline stage that downloads the plan's
// resolved images into staging ahead of rendering.
package fetch
