// Package keywords derives a ranked, timestamped topic model from a
// transcript. Single words and short phrases are scored from priority-list
// membership, in-transcript frequency, and word length; stop-words are
// suppressed. Extraction is pure and deterministic so a plan can be replayed
// from the same transcript and configuration.
package keywords
