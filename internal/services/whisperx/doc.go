// Package whisperx invokes WhisperX for word-level speech transcription.
//
// This package handles:
//   - Narration audio extraction via ffmpeg (mono 16kHz WAV)
//   - WhisperX invocation through uvx
//   - Conversion of the WhisperX JSON payload into the transcript model
//
// Configuration options (model, CUDA, VAD method, language) are passed via
// Config. A custom command runner can be injected for tests.
package whisperx
