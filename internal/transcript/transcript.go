package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Word is a single spoken word with its timing in seconds.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Segment groups consecutive words as emitted by the transcription engine.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Words []Word  `json:"words,omitempty"`
}

// Transcript is the normalized word-level transcription of one video.
// Once produced by the transcription stage it is treated as read-only.
type Transcript struct {
	Source        string    `json:"source,omitempty"`
	Language      string    `json:"language,omitempty"`
	VideoDuration float64   `json:"video_duration"`
	Segments      []Segment `json:"segments"`
}

// Words returns the flattened, ordered word sequence. Segments that carry no
// word-level timing contribute a single pseudo-word spanning the segment.
func (t *Transcript) Words() []Word {
	if t == nil {
		return nil
	}
	words := make([]Word, 0, len(t.Segments)*8)
	for _, seg := range t.Segments {
		if len(seg.Words) == 0 {
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}
			words = append(words, Word{Text: text, Start: seg.Start, End: seg.End})
			continue
		}
		words = append(words, seg.Words...)
	}
	return words
}

// Empty reports whether the transcript carries no spoken words.
func (t *Transcript) Empty() bool {
	return t == nil || len(t.Words()) == 0
}

// Text returns the concatenated transcript text.
func (t *Transcript) Text() string {
	if t == nil {
		return ""
	}
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Validate checks the timing invariants: non-negative word starts in
// non-decreasing order, with start <= end for every word. End times are
// deliberately not bounded by VideoDuration, since the transcription
// engine stamps the last word a fraction past the probed container
// duration on many real recordings.
func (t *Transcript) Validate() error {
	if t == nil {
		return errors.New("transcript: nil")
	}
	if t.VideoDuration < 0 {
		return fmt.Errorf("transcript: negative video duration %v", t.VideoDuration)
	}
	previous := 0.0
	for i, word := range t.Words() {
		if word.Start < 0 {
			return fmt.Errorf("transcript: word %d starts before zero (%v)", i, word.Start)
		}
		if word.End < word.Start {
			return fmt.Errorf("transcript: word %d ends (%v) before it starts (%v)", i, word.End, word.Start)
		}
		if word.Start < previous {
			return fmt.Errorf("transcript: word %d start %v precedes previous start %v", i, word.Start, previous)
		}
		previous = word.Start
	}
	return nil
}

// Save writes the transcript as a standalone JSON artifact.
func (t *Transcript) Save(path string) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure transcript dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	return nil
}

// Load reads a transcript artifact written by Save.
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse transcript: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
