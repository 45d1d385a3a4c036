package services_test

import (
	"errors"
	"testing"

	"broll/internal/queue"
	"broll/internal/services"
)

func TestWrapTagsMarkerAndDetail(t *testing.T) {
	base := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "transcribe", "run whisperx", "model load failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to survive wrapping: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected cause to survive wrapping: %v", err)
	}
	want := "external tool error: transcribe: run whisperx: model load failed: exit status 1"
	if err.Error() != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", err.Error(), want)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "fetch", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestFailureStatusClassification(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status queue.Status
	}{
		{"validation", services.Wrap(services.ErrValidation, "plan", "", "bad transcript", nil), queue.StatusReview},
		{"configuration", services.Wrap(services.ErrConfiguration, "plan", "", "", nil), queue.StatusReview},
		{"timeout", services.Wrap(services.ErrTimeout, "resolve", "", "", nil), queue.StatusFailed},
		{"plain", errors.New("boom"), queue.StatusFailed},
	}
	for _, tc := range cases {
		if got := services.FailureStatus(tc.err); got != tc.status {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.status)
		}
	}
}
