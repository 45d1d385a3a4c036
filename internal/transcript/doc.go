// Package transcript models the word-level speech transcription consumed by
// keyword extraction and planning. The transcription engine's raw payload is
// converted into this normalized form once; everything downstream treats it
// as immutable.
package transcript
