package transcript_test

import (
	"path/filepath"
	"testing"

	"broll/internal/transcript"
)

func sampleTranscript() *transcript.Transcript {
	return &transcript.Transcript{
		Source:        "clip.mp4",
		Language:      "en",
		VideoDuration: 20,
		Segments: []transcript.Segment{
			{
				Text:  "drink more water",
				Start: 1.0,
				End:   2.5,
				Words: []transcript.Word{
					{Text: "drink", Start: 1.0, End: 1.4},
					{Text: "more", Start: 1.5, End: 1.9},
					{Text: "water", Start: 2.0, End: 2.5},
				},
			},
			{Text: "sleep matters", Start: 8.0, End: 9.0},
		},
	}
}

func TestWordsFlattenWithSegmentFallback(t *testing.T) {
	tr := sampleTranscript()
	words := tr.Words()
	if len(words) != 4 {
		t.Fatalf("expected 4 words, got %d", len(words))
	}
	if words[3].Text != "sleep matters" || words[3].Start != 8.0 {
		t.Fatalf("expected segment pseudo-word, got %+v", words[3])
	}
}

func TestValidateAcceptsEmptyTranscript(t *testing.T) {
	tr := &transcript.Transcript{VideoDuration: 5}
	if err := tr.Validate(); err != nil {
		t.Fatalf("empty transcript should validate: %v", err)
	}
	if !tr.Empty() {
		t.Fatal("expected Empty to be true")
	}
}

func TestValidateToleratesWordEndingPastVideoDuration(t *testing.T) {
	tr := &transcript.Transcript{
		VideoDuration: 10,
		Segments: []transcript.Segment{
			{
				Text:  "goodbye",
				Start: 9.5,
				End:   10.08,
				Words: []transcript.Word{{Text: "goodbye", Start: 9.5, End: 10.08}},
			},
		},
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("overhanging final word should validate: %v", err)
	}
}

func TestValidateRejectsDecreasingStarts(t *testing.T) {
	tr := &transcript.Transcript{
		VideoDuration: 10,
		Segments: []transcript.Segment{
			{Text: "b", Start: 5, End: 6},
			{Text: "a", Start: 2, End: 3},
		},
	}
	if err := tr.Validate(); err == nil {
		t.Fatal("expected error for decreasing starts")
	}
}

func TestValidateRejectsEndBeforeStart(t *testing.T) {
	tr := &transcript.Transcript{
		VideoDuration: 10,
		Segments: []transcript.Segment{
			{Text: "a", Start: 3, End: 2},
		},
	}
	if err := tr.Validate(); err == nil {
		t.Fatal("expected error for end before start")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tr := sampleTranscript()
	path := filepath.Join(t.TempDir(), "artifacts", "transcript.json")
	if err := tr.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := transcript.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.VideoDuration != tr.VideoDuration {
		t.Fatalf("duration mismatch: %v", loaded.VideoDuration)
	}
	if loaded.Text() != tr.Text() {
		t.Fatalf("text mismatch: %q vs %q", loaded.Text(), tr.Text())
	}
	if len(loaded.Words()) != len(tr.Words()) {
		t.Fatalf("word count mismatch")
	}
}
