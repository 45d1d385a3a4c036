package render_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"broll/internal/broll"
	"broll/internal/config"
	"broll/internal/imagery"
	"broll/internal/logging"
	"broll/internal/media/ffprobe"
	"broll/internal/queue"
	"broll/internal/render"
	"broll/internal/services"
	"broll/internal/testsupport"
)

func fetchedPlan(t *testing.T, dir string) *broll.Plan {
	t.Helper()
	plan := &broll.Plan{
		VideoDuration: 60,
		MinInterval:   5,
		MaxInterval:   15,
	}
	effects := []broll.Effect{broll.EffectSlide, broll.EffectZoom, broll.EffectFade}
	positions := []broll.Position{broll.PositionRight, broll.PositionLeft}
	for i := 0; i < 3; i++ {
		local := filepath.Join(dir, "img_"+string(rune('0'+i))+".jpg")
		testsupport.WriteFile(t, local, 64)
		plan.Events = append(plan.Events, broll.InsertionEvent{
			StartTime: 5 + float64(i)*10,
			Duration:  4,
			Keyword:   "hydration",
			Image: imagery.ImageReference{
				Provider:  "pexels",
				URL:       "https://images.example/hydration.jpg",
				Query:     "hydration",
				LocalPath: local,
			},
			Effect:   effects[i%len(effects)],
			Position: positions[i%len(positions)],
		})
	}
	return plan
}

func renderItem(t *testing.T, cfg *config.Config, store *queue.Store, plan *broll.Plan) *queue.Item {
	t.Helper()
	source := filepath.Join(cfg.Paths.IncomingDir, "clip.mp4")
	testsupport.WriteFile(t, source, 256)
	item := testsupport.NewVideo(t, store, source)
	item.StagingDir = t.TempDir()
	item.PlanPath = filepath.Join(item.StagingDir, "plan.json")
	if err := broll.Save(item.PlanPath, plan); err != nil {
		t.Fatalf("save plan fixture: %v", err)
	}
	return item
}

func hdProbe(context.Context, string, string) (ffprobe.Result, error) {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video", Width: 1920, Height: 1080},
			{CodecType: "audio"},
		},
		Format: ffprobe.Format{Duration: "60"},
	}, nil
}

func TestBuildFilterGraphCoversEveryEvent(t *testing.T) {
	plan := fetchedPlan(t, t.TempDir())
	graph, err := render.BuildFilterGraph(plan, render.GraphOptions{
		FrameWidth:        1920,
		FrameHeight:       1080,
		OverlayWidthRatio: 0.35,
		ColorGrade:        true,
	})
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}

	for _, fragment := range []string{
		"[1:v]", "[2:v]", "[3:v]",
		"enable='between(t,5.000,9.000)'",
		"enable='between(t,15.000,19.000)'",
		"enable='between(t,25.000,29.000)'",
		"zoompan",
		"fade=t=in",
		"fade=t=out",
		"eq=contrast",
		"[vout]",
	} {
		if !strings.Contains(graph, fragment) {
			t.Fatalf("graph missing %q:\n%s", fragment, graph)
		}
	}
	// 35% of 1920, rounded even.
	if !strings.Contains(graph, "scale=672:") {
		t.Fatalf("expected 672px overlay scaling:\n%s", graph)
	}
}

func TestBuildFilterGraphWithoutColorGrade(t *testing.T) {
	plan := fetchedPlan(t, t.TempDir())
	graph, err := render.BuildFilterGraph(plan, render.GraphOptions{
		FrameWidth:  1280,
		FrameHeight: 720,
	})
	if err != nil {
		t.Fatalf("build graph: %v", err)
	}
	if strings.Contains(graph, "eq=") {
		t.Fatal("color grade should be absent")
	}
	if !strings.Contains(graph, "null[vout]") {
		t.Fatalf("expected passthrough terminal filter:\n%s", graph)
	}
}

func TestBuildFilterGraphRejectsEmptyPlan(t *testing.T) {
	_, err := render.BuildFilterGraph(&broll.Plan{MinInterval: 5, MaxInterval: 15}, render.GraphOptions{FrameWidth: 1920, FrameHeight: 1080})
	if err == nil {
		t.Fatal("expected error for empty plan")
	}
}

func TestExecuteRunsFFmpegWithPlannedInputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	plan := fetchedPlan(t, t.TempDir())
	item := renderItem(t, cfg, store, plan)

	var gotName string
	var gotArgs []string
	r := render.NewRenderer(cfg, store, logging.NewNop())
	r.SetProbe(hdProbe)
	r.SetCommandRunner(func(_ context.Context, name string, args ...string) error {
		gotName = name
		gotArgs = args
		// ffmpeg writes the output file; emulate that.
		return os.WriteFile(args[len(args)-1], []byte("mp4"), 0o644)
	})

	ctx := context.Background()
	if err := r.Prepare(ctx, item); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if err := r.Execute(ctx, item); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if gotName != cfg.FFmpegBinary() {
		t.Fatalf("expected ffmpeg invocation, got %q", gotName)
	}
	joined := strings.Join(gotArgs, " ")
	for _, event := range plan.Events {
		if !strings.Contains(joined, event.Image.LocalPath) {
			t.Fatalf("ffmpeg args missing image input %s", event.Image.LocalPath)
		}
	}
	if !strings.Contains(joined, "-filter_complex") {
		t.Fatal("ffmpeg args missing filtergraph")
	}
	if item.OutputFile == "" {
		t.Fatal("expected output file recorded on item")
	}
	if !strings.HasPrefix(item.OutputFile, cfg.Paths.OutputDir) {
		t.Fatalf("output %s outside configured output dir", item.OutputFile)
	}
	if filepath.Base(item.OutputFile) != "clip_broll.mp4" {
		t.Fatalf("unexpected output name %s", filepath.Base(item.OutputFile))
	}
}

func TestExecuteCopiesSourceWhenRenderingDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Render.Enabled = false
	store := testsupport.MustOpenStore(t, cfg)

	plan := fetchedPlan(t, t.TempDir())
	item := renderItem(t, cfg, store, plan)

	r := render.NewRenderer(cfg, store, logging.NewNop())
	r.SetCommandRunner(func(context.Context, string, ...string) error {
		t.Fatal("ffmpeg must not run with rendering disabled")
		return nil
	})

	ctx := context.Background()
	if err := r.Prepare(ctx, item); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	if err := r.Execute(ctx, item); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	if item.OutputFile == "" {
		t.Fatal("expected output file recorded on item")
	}
	info, err := os.Stat(item.OutputFile)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if info.Size() != 256 {
		t.Fatalf("expected verbatim source copy, got %d bytes", info.Size())
	}
}

func TestExecuteRejectsUnfetchedPlan(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	plan := fetchedPlan(t, t.TempDir())
	for i := range plan.Events {
		plan.Events[i].Image.LocalPath = ""
	}
	item := renderItem(t, cfg, store, plan)

	r := render.NewRenderer(cfg, store, logging.NewNop())
	r.SetProbe(hdProbe)

	ctx := context.Background()
	if err := r.Prepare(ctx, item); err != nil {
		t.Fatalf("prepare failed: %v", err)
	}
	err := r.Execute(ctx, item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
