package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"broll/internal/broll"
	"broll/internal/imagery"
	"broll/internal/queue"
	"broll/internal/testsupport"
)

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "broll 0.1.0")
}

func TestAddAndQueueList(t *testing.T) {
	env := setupCLITestEnv(t)

	videoPath := filepath.Join(env.baseDir, "Morning Run.mp4")
	testsupport.WriteFile(t, videoPath, 2048)

	out, _, err := runCLI(t, []string{"add", videoPath}, env.configPath)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	requireContains(t, out, "Queued Morning Run.mp4")

	out, _, err = runCLI(t, []string{"add", videoPath}, env.configPath)
	if err != nil {
		t.Fatalf("repeat add: %v", err)
	}
	requireContains(t, out, "Already queued")

	out, _, err = runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Morning Run")
	requireContains(t, out, "pending")
}

func TestAddRejectsUnsupportedExtension(t *testing.T) {
	env := setupCLITestEnv(t)

	notesPath := filepath.Join(env.baseDir, "notes.txt")
	testsupport.WriteFile(t, notesPath, 16)

	_, _, err := runCLI(t, []string{"add", notesPath}, env.configPath)
	if err == nil {
		t.Fatal("expected unsupported extension error")
	}
	requireContains(t, err.Error(), "unsupported file extension")
}

func TestQueueStatusEmpty(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"queue", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestQueueRetryAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	videoPath := filepath.Join(env.baseDir, "clip.mp4")
	testsupport.WriteFile(t, videoPath, 1024)
	item := testsupport.NewVideo(t, env.store, videoPath)

	item.Status = queue.StatusFailed
	item.ErrorMessage = "transcription failed"
	if err := env.store.Update(ctx, item); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry"}, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Retried 1 failed items")

	updated, err := env.store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("lookup item: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected pending after retry, got %s", updated.Status)
	}

	updated.Status = queue.StatusFailed
	if err := env.store.Update(ctx, updated); err != nil {
		t.Fatalf("mark failed again: %v", err)
	}

	out, _, err = runCLI(t, []string{"queue", "clear", "--failed"}, env.configPath)
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	requireContains(t, out, "Cleared 1 failed items")
}

func TestQueueRetryReportsMissingItem(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"queue", "retry", "42"}, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Item 42 not found")
}

func TestPlanShowFromFile(t *testing.T) {
	env := setupCLITestEnv(t)

	plan := &broll.Plan{
		VideoDuration: 30,
		MinInterval:   5,
		MaxInterval:   15,
		FallbackCount: 1,
		Events: []broll.InsertionEvent{
			{
				StartTime: 5,
				Duration:  4,
				Keyword:   "sunrise",
				Image:     imagery.ImageReference{Provider: "pexels", URL: "https://images.example/sunrise.jpg"},
				Effect:    broll.EffectZoom,
				Position:  broll.PositionTopRight,
			},
			{
				StartTime: 15,
				Duration:  4,
				Keyword:   "coffee",
				Image:     imagery.ImageReference{Provider: "picsum", URL: "https://picsum.photos/seed/coffee/640"},
				Effect:    broll.EffectFade,
				Position:  broll.PositionBottomLeft,
			},
		},
	}
	planPath := filepath.Join(env.baseDir, "plan.json")
	if err := broll.Save(planPath, plan); err != nil {
		t.Fatalf("save plan: %v", err)
	}

	out, _, err := runCLI(t, []string{"plan", "show", planPath}, env.configPath)
	if err != nil {
		t.Fatalf("plan show: %v", err)
	}
	requireContains(t, out, "Events: 2")
	requireContains(t, out, "Fallbacks: 1")
	requireContains(t, out, "sunrise")
	requireContains(t, out, "picsum")
	requireContains(t, out, "top-right")
}

func TestPlanShowMissingItem(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"plan", "show", "7"}, env.configPath)
	if err == nil {
		t.Fatal("expected missing item error")
	}
	requireContains(t, err.Error(), "item 7 not found")
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestDepsCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"deps"}, env.configPath)
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	requireContains(t, out, "ffmpeg")
	requireContains(t, out, "ffprobe")
	requireContains(t, out, "ok")
}

func TestProvidersCommandWithoutKeys(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"providers"}, env.configPath)
	if err != nil {
		t.Fatalf("providers: %v", err)
	}
	requireContains(t, out, "pexels")
	requireContains(t, out, "placeholder")
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "ntfy topic not configured")
}
