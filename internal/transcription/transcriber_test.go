package transcription_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"broll/internal/config"
	"broll/internal/logging"
	"broll/internal/media/ffprobe"
	"broll/internal/queue"
	"broll/internal/services"
	"broll/internal/services/whisperx"
	"broll/internal/testsupport"
	"broll/internal/transcript"
	"broll/internal/transcription"
)

const whisperOutput = `{
  "segments": [
    {
      "text": "Start your morning with water",
      "start": 0.5,
      "end": 3.0,
      "words": [
        {"word": "Start", "start": 0.5, "end": 0.8},
        {"word": "your", "start": 0.8, "end": 1.0},
        {"word": "morning", "start": 1.0, "end": 1.6},
        {"word": "with", "start": 1.6, "end": 1.9},
        {"word": "water", "start": 1.9, "end": 3.0}
      ]
    }
  ]
}`

func probeResult(duration string, audioStreams int) ffprobe.Result {
	result := ffprobe.Result{Format: ffprobe.Format{Duration: duration}}
	result.Streams = append(result.Streams, ffprobe.Stream{CodecType: "video"})
	for i := 0; i < audioStreams; i++ {
		result.Streams = append(result.Streams, ffprobe.Stream{CodecType: "audio"})
	}
	return result
}

func newTranscriber(t *testing.T, cfg *config.Config, store *queue.Store, runner func(ctx context.Context, name string, args ...string) error) *transcription.Transcriber {
	t.Helper()
	service := whisperx.NewService(whisperx.Config{Model: "tiny"}, cfg.FFmpegBinary())
	service.WithCommandRunner(runner)
	tr := transcription.NewTranscriberWithService(cfg, store, logging.NewNop(), service)
	tr.SetProbe(func(context.Context, string, string) (ffprobe.Result, error) {
		return probeResult("42.5", 1), nil
	})
	return tr
}

func TestPrepareCreatesStagingDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(cfg.Paths.IncomingDir, "Morning_Routine.mp4")
	testsupport.WriteFile(t, source, 128)
	item := testsupport.NewVideo(t, store, source)

	tr := newTranscriber(t, cfg, store, func(context.Context, string, ...string) error { return nil })
	if err := tr.Prepare(context.Background(), item); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if item.StagingDir == "" {
		t.Fatal("expected staging dir to be assigned")
	}
	if _, err := os.Stat(item.StagingDir); err != nil {
		t.Fatalf("staging dir not created: %v", err)
	}
	if !strings.HasPrefix(item.StagingDir, cfg.Paths.StagingDir) {
		t.Fatalf("staging dir %s outside configured root", item.StagingDir)
	}
}

func TestPrepareRejectsMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewVideo(t, store, filepath.Join(cfg.Paths.IncomingDir, "gone.mp4"))

	tr := newTranscriber(t, cfg, store, func(context.Context, string, ...string) error { return nil })
	err := tr.Prepare(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteProducesTranscriptArtifact(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(cfg.Paths.IncomingDir, "clip.mp4")
	testsupport.WriteFile(t, source, 128)
	item := testsupport.NewVideo(t, store, source)

	var stagingDir string
	runner := func(_ context.Context, name string, args ...string) error {
		if name == whisperx.UVXCommand {
			jsonPath := filepath.Join(stagingDir, "narration.json")
			return os.WriteFile(jsonPath, []byte(whisperOutput), 0o644)
		}
		// ffmpeg audio extraction: create the WAV destination.
		dest := args[len(args)-1]
		return os.WriteFile(dest, []byte("wav"), 0o644)
	}
	tr := newTranscriber(t, cfg, store, runner)

	ctx := context.Background()
	if err := tr.Prepare(ctx, item); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	stagingDir = item.StagingDir
	if err := tr.Execute(ctx, item); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if item.TranscriptPath == "" {
		t.Fatal("expected transcript path on item")
	}
	loaded, err := transcript.Load(item.TranscriptPath)
	if err != nil {
		t.Fatalf("load transcript: %v", err)
	}
	if loaded.VideoDuration != 42.5 {
		t.Fatalf("expected probed duration 42.5, got %v", loaded.VideoDuration)
	}
	if loaded.Source != source {
		t.Fatalf("expected source %s, got %s", source, loaded.Source)
	}
	words := loaded.Words()
	if len(words) != 5 {
		t.Fatalf("expected 5 words, got %d", len(words))
	}
}

func TestExecuteRejectsVideoWithoutAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(cfg.Paths.IncomingDir, "silent.mp4")
	testsupport.WriteFile(t, source, 128)
	item := testsupport.NewVideo(t, store, source)

	tr := newTranscriber(t, cfg, store, func(context.Context, string, ...string) error { return nil })
	tr.SetProbe(func(context.Context, string, string) (ffprobe.Result, error) {
		return probeResult("30", 0), nil
	})

	ctx := context.Background()
	if err := tr.Prepare(ctx, item); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	err := tr.Execute(ctx, item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteWrapsWhisperFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(cfg.Paths.IncomingDir, "clip.mp4")
	testsupport.WriteFile(t, source, 128)
	item := testsupport.NewVideo(t, store, source)

	runner := func(_ context.Context, name string, args ...string) error {
		if name == whisperx.UVXCommand {
			return errors.New("cuda out of memory")
		}
		return os.WriteFile(args[len(args)-1], []byte("wav"), 0o644)
	}
	tr := newTranscriber(t, cfg, store, runner)

	ctx := context.Background()
	if err := tr.Prepare(ctx, item); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	err := tr.Execute(ctx, item)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
