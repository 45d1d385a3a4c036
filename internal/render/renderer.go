package render

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"log/slog"

	"broll/internal/broll"
	"broll/internal/config"
	"broll/internal/fileutil"
	"broll/internal/logging"
	"broll/internal/media/ffprobe"
	"broll/internal/queue"
	"broll/internal/services"
	"broll/internal/stage"
)

// Renderer composites the fetched overlay images onto the source video with
// ffmpeg. With rendering disabled it still produces an output file so the
// pipeline always finishes with a deliverable.
type Renderer struct {
	store  *queue.Store
	cfg    *config.Config
	logger *slog.Logger
	runner func(ctx context.Context, name string, args ...string) error
	probe  func(ctx context.Context, binary string, path string) (ffprobe.Result, error)
}

// NewRenderer builds the compositing stage.
func NewRenderer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Renderer {
	r := &Renderer{
		store:  store,
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "renderer"),
		probe:  ffprobe.Inspect,
	}
	r.runner = r.runCommand
	return r
}

// SetCommandRunner replaces the ffmpeg invoker (used in tests).
func (r *Renderer) SetCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	if runner != nil {
		r.runner = runner
	}
}

// SetProbe replaces the media inspector (used in tests).
func (r *Renderer) SetProbe(probe func(ctx context.Context, binary string, path string) (ffprobe.Result, error)) {
	if probe != nil {
		r.probe = probe
	}
}

func (r *Renderer) Prepare(ctx context.Context, item *queue.Item) error {
	item.InitProgress("Rendering", "Preparing composite render")

	if item.SourcePath == "" {
		return services.Wrap(services.ErrValidation, "rendering", "validate inputs",
			"No source video recorded for this item", nil)
	}
	if item.PlanPath == "" {
		return services.Wrap(services.ErrValidation, "rendering", "validate inputs",
			"No insertion plan recorded for this item; planning must run first", nil)
	}
	if err := os.MkdirAll(r.cfg.Paths.OutputDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "rendering", "create output dir",
			fmt.Sprintf("Cannot create output directory %s", r.cfg.Paths.OutputDir), err)
	}
	return nil
}

func (r *Renderer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)

	plan, err := broll.Load(item.PlanPath)
	if err != nil {
		return services.Wrap(services.ErrValidation, "rendering", "load plan",
			fmt.Sprintf("Insertion plan %s is unreadable", item.PlanPath), err)
	}

	outputPath := filepath.Join(r.cfg.Paths.OutputDir, outputName(item.SourcePath))

	if !r.cfg.Render.Enabled || len(plan.Events) == 0 {
		reason := "rendering disabled"
		if r.cfg.Render.Enabled {
			reason = "plan has no insertions"
		}
		if err := fileutil.CopyFileVerified(item.SourcePath, outputPath); err != nil {
			return services.Wrap(services.ErrTransient, "rendering", "copy source",
				"Could not copy the source video to the output directory", err)
		}
		item.OutputFile = outputPath
		item.SetProgressComplete("Rendered", fmt.Sprintf("Source copied to output (%s)", reason))
		logger.Info("render skipped", logging.String("reason", reason), logging.String("output", outputPath))
		return nil
	}

	for i, event := range plan.Events {
		if event.Image.LocalPath == "" {
			return services.Wrap(services.ErrValidation, "rendering", "validate plan",
				fmt.Sprintf("Event %d has no downloaded image; fetching must run first", i), nil)
		}
		if _, err := os.Stat(event.Image.LocalPath); err != nil {
			return services.Wrap(services.ErrValidation, "rendering", "validate plan",
				fmt.Sprintf("Overlay image %s is missing from staging", event.Image.LocalPath), err)
		}
	}

	result, err := r.probe(ctx, r.cfg.FFprobeBinary(), item.SourcePath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "rendering", "probe video",
			"ffprobe could not inspect the source video", err)
	}
	stream, ok := result.VideoStream()
	if !ok || stream.Width <= 0 || stream.Height <= 0 {
		return services.Wrap(services.ErrValidation, "rendering", "probe video",
			"Source video has no usable video stream", nil)
	}

	graph, err := BuildFilterGraph(plan, GraphOptions{
		FrameWidth:        stream.Width,
		FrameHeight:       stream.Height,
		OverlayWidthRatio: r.cfg.Render.OverlayWidthRatio,
		ColorGrade:        r.cfg.Render.ColorGrade,
	})
	if err != nil {
		return services.Wrap(services.ErrValidation, "rendering", "build filtergraph", "Could not build the ffmpeg filtergraph", err)
	}

	item.SetProgress("Rendering", fmt.Sprintf("Compositing %d overlays", len(plan.Events)), 20)
	if err := r.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist progress", logging.Error(err))
	}

	args := ffmpegArgs(item.SourcePath, plan, graph, outputPath, r.cfg.Render.Threads)
	if err := r.runner(ctx, r.cfg.FFmpegBinary(), args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "rendering", "run ffmpeg",
			"ffmpeg compositing failed", err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return services.Wrap(services.ErrExternalTool, "rendering", "verify output",
			fmt.Sprintf("ffmpeg reported success but %s is missing", outputPath), err)
	}

	item.OutputFile = outputPath
	item.SetProgressComplete("Rendered", fmt.Sprintf("Composited %d overlays", len(plan.Events)))
	logger.Info("render complete",
		logging.Int("overlays", len(plan.Events)),
		logging.String("output", outputPath))
	return nil
}

// HealthCheck verifies ffmpeg is reachable when compositing is enabled.
func (r *Renderer) HealthCheck(context.Context) stage.Health {
	const name = "renderer"
	if !r.cfg.Render.Enabled {
		return stage.Health{Name: name, Ready: true, Detail: "rendering disabled; output is a verified copy of the source"}
	}
	if _, err := exec.LookPath(r.cfg.FFmpegBinary()); err != nil {
		return stage.Unhealthy(name, fmt.Sprintf("ffmpeg not found (%s)", r.cfg.FFmpegBinary()))
	}
	return stage.Healthy(name)
}

// ffmpegArgs assembles the full ffmpeg invocation: the source, one looped
// still per event, the filtergraph, and stream mapping that keeps the
// original audio untouched.
func ffmpegArgs(source string, plan *broll.Plan, graph, outputPath string, threads int) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", source}
	for _, event := range plan.Events {
		args = append(args,
			"-loop", "1",
			"-t", fmt.Sprintf("%.3f", event.Duration),
			"-i", event.Image.LocalPath,
		)
	}
	args = append(args,
		"-filter_complex", graph,
		"-map", "[vout]",
		"-map", "0:a?",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-c:a", "copy",
	)
	if threads > 0 {
		args = append(args, "-threads", strconv.Itoa(threads))
	}
	return append(args, outputPath)
}

func (r *Renderer) runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// outputName derives the deliverable name from the source, tagging it so a
// watched incoming directory never re-ingests its own output.
func outputName(sourcePath string) string {
	base := filepath.Base(sourcePath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".mp4"
	}
	return stem + "_broll" + ext
}
