// Package services holds shared error classification for stage handlers and
// clients of external tools and APIs.
//
// Stage code wraps failures with one of the sentinel markers (validation,
// configuration, timeout, transient, …) via Wrap; the workflow manager later
// maps the marker onto the queue status the item should land in. Subpackages
// contain the concrete external collaborators, such as the WhisperX
// transcription service.
package services
