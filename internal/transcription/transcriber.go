package transcription

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"log/slog"

	"broll/internal/config"
	"broll/internal/logging"
	"broll/internal/media/ffprobe"
	"broll/internal/queue"
	"broll/internal/services"
	"broll/internal/services/whisperx"
	"broll/internal/stage"
)

// TranscriptFileName is the transcript artifact written into the item
// staging directory.
const TranscriptFileName = "transcript.json"

// Transcriber produces the word-level transcript for a queued video.
type Transcriber struct {
	store   *queue.Store
	cfg     *config.Config
	logger  *slog.Logger
	service *whisperx.Service
	probe   func(ctx context.Context, binary string, path string) (ffprobe.Result, error)
}

// NewTranscriber constructs the transcription stage handler.
func NewTranscriber(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Transcriber {
	service := whisperx.NewService(whisperx.Config{
		Model:       cfg.Transcription.Model,
		CUDAEnabled: cfg.Transcription.CUDAEnabled,
		VADMethod:   cfg.Transcription.VADMethod,
		HFToken:     cfg.Transcription.HFToken,
		Language:    cfg.Transcription.Language,
	}, cfg.FFmpegBinary())
	return NewTranscriberWithService(cfg, store, logger, service)
}

// NewTranscriberWithService allows injecting the WhisperX service (used in tests).
func NewTranscriberWithService(cfg *config.Config, store *queue.Store, logger *slog.Logger, service *whisperx.Service) *Transcriber {
	return &Transcriber{
		store:   store,
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "transcriber"),
		service: service,
		probe:   ffprobe.Inspect,
	}
}

// SetProbe replaces the media inspector (used in tests).
func (t *Transcriber) SetProbe(probe func(ctx context.Context, binary string, path string) (ffprobe.Result, error)) {
	if probe != nil {
		t.probe = probe
	}
}

func (t *Transcriber) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)
	item.InitProgress("Transcribing", "Preparing transcription")

	source := strings.TrimSpace(item.SourcePath)
	if source == "" {
		return services.Wrap(services.ErrValidation, "transcribing", "validate inputs",
			"No source video recorded for this item", nil)
	}
	if _, err := os.Stat(source); err != nil {
		return services.Wrap(services.ErrValidation, "transcribing", "validate inputs",
			fmt.Sprintf("Source video %s is not readable", source), err)
	}

	if item.StagingDir == "" {
		item.StagingDir = filepath.Join(t.cfg.Paths.StagingDir, fmt.Sprintf("%d-%s", item.ID, sanitizeTitle(item.Title)))
	}
	if err := os.MkdirAll(item.StagingDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "transcribing", "create staging dir",
			fmt.Sprintf("Cannot create staging directory %s", item.StagingDir), err)
	}
	logger.Info("transcription prepared", logging.String("staging_dir", item.StagingDir))
	return nil
}

func (t *Transcriber) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, t.logger)

	result, err := t.probe(ctx, t.cfg.FFprobeBinary(), item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribing", "probe video",
			"ffprobe could not inspect the source video", err)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return services.Wrap(services.ErrValidation, "transcribing", "probe video",
			"Source video reports no duration", nil)
	}
	if result.AudioStreamCount() == 0 {
		return services.Wrap(services.ErrValidation, "transcribing", "probe video",
			"Source video has no audio track to transcribe", nil)
	}

	item.SetProgress("Transcribing", "Extracting narration audio", 10)
	if err := t.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist progress", logging.Error(err))
	}

	audioPath := filepath.Join(item.StagingDir, "narration.wav")
	if err := t.service.ExtractAudio(ctx, item.SourcePath, t.cfg.Transcription.AudioTrack, audioPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribing", "extract audio",
			"ffmpeg could not extract the narration track", err)
	}

	item.SetProgress("Transcribing", fmt.Sprintf("Running WhisperX (%s)", t.service.Model()), 30)
	if err := t.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist progress", logging.Error(err))
	}

	model, err := t.service.Transcribe(ctx, audioPath, item.StagingDir)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribing", "run whisperx",
			"WhisperX transcription failed; no plan is possible without a transcript", err)
	}
	model.Source = item.SourcePath
	model.VideoDuration = duration
	if err := model.Validate(); err != nil {
		return services.Wrap(services.ErrExternalTool, "transcribing", "validate transcript",
			"WhisperX produced an inconsistent transcript", err)
	}

	transcriptPath := filepath.Join(item.StagingDir, TranscriptFileName)
	if err := model.Save(transcriptPath); err != nil {
		return services.Wrap(services.ErrTransient, "transcribing", "write transcript",
			"Could not persist the transcript artifact", err)
	}
	item.TranscriptPath = transcriptPath
	item.SetProgressComplete("Transcribed", fmt.Sprintf("Transcript ready (%d segments, %.1fs)", len(model.Segments), duration))

	logger.Info("transcription complete",
		logging.Int("segments", len(model.Segments)),
		logging.Float64("video_duration", duration),
		logging.String("transcript", transcriptPath))
	return nil
}

// HealthCheck verifies the external tools transcription shells out to.
func (t *Transcriber) HealthCheck(context.Context) stage.Health {
	const name = "transcriber"
	if _, err := exec.LookPath(t.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffmpeg not found (%s)", t.cfg.FFmpegBinary()))
	}
	if _, err := exec.LookPath(t.cfg.FFprobeBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffprobe not found (%s)", t.cfg.FFprobeBinary()))
	}
	if _, err := exec.LookPath(whisperx.UVXCommand); err != nil {
		return stage.Unhealthy(name, "uvx not found; install uv to run WhisperX")
	}
	return stage.Healthy(name)
}

func sanitizeTitle(title string) string {
	title = strings.TrimSpace(strings.ToLower(title))
	if title == "" {
		return "video"
	}
	var b strings.Builder
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteRune('-')
		}
	}
	cleaned := strings.Trim(b.String(), "-")
	if cleaned == "" {
		return "video"
	}
	return cleaned
}
