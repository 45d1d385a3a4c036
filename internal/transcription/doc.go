// Package transcription implements the pipeline stage that turns a queued
// video into a word-level transcript via ffmpeg audio extraction and WhisperX.
package transcription
