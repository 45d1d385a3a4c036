package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"broll/internal/config"
)

func TestLoadDefaultsExpandPathsAndReadEnvKeys(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("PEXELS_API_KEY", "pexels-test")
	t.Setenv("PIXABAY_API_KEY", "pixabay-test")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantIncoming := filepath.Join(tempHome, ".local", "share", "broll", "incoming")
	if cfg.Paths.IncomingDir != wantIncoming {
		t.Fatalf("unexpected incoming dir: got %q want %q", cfg.Paths.IncomingDir, wantIncoming)
	}
	if cfg.Providers.PexelsAPIKey != "pexels-test" {
		t.Fatalf("expected Pexels key from env, got %q", cfg.Providers.PexelsAPIKey)
	}
	if cfg.Providers.PixabayAPIKey != "pixabay-test" {
		t.Fatalf("expected Pixabay key from env, got %q", cfg.Providers.PixabayAPIKey)
	}
	if cfg.Planner.MinInterval != 5 || cfg.Planner.MaxInterval != 15 {
		t.Fatalf("unexpected interval defaults: %v/%v", cfg.Planner.MinInterval, cfg.Planner.MaxInterval)
	}
	if cfg.Transcription.VADMethod != "silero" {
		t.Fatalf("expected VAD default silero, got %q", cfg.Transcription.VADMethod)
	}
	if got := cfg.Planner.Positions; len(got) != 2 || got[0] != "right" || got[1] != "left" {
		t.Fatalf("unexpected default positions: %v", got)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.IncomingDir, cfg.Paths.StagingDir, cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPathOverridesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "broll.toml")

	contents := strings.Join([]string{
		"[planner]",
		"min_interval = 4.0",
		"max_interval = 9.0",
		"positions = [\"center\", \"bottom-right\"]",
		"",
		"[keywords]",
		"priority_terms = [\"exercise\", \"  health \", \"\"]",
		"",
		"[logging]",
		"format = \"json\"",
	}, "\n")
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Planner.MinInterval != 4 || cfg.Planner.MaxInterval != 9 {
		t.Fatalf("unexpected intervals: %v/%v", cfg.Planner.MinInterval, cfg.Planner.MaxInterval)
	}
	if got := cfg.Planner.Positions; len(got) != 2 || got[0] != "center" || got[1] != "bottom-right" {
		t.Fatalf("unexpected positions: %v", got)
	}
	if got := cfg.Keywords.PriorityTerms; len(got) != 2 || got[0] != "exercise" || got[1] != "health" {
		t.Fatalf("expected trimmed priority terms, got %v", got)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsInvertedIntervals(t *testing.T) {
	cfg := config.Default()
	cfg.Planner.MinInterval = 20
	cfg.Planner.MaxInterval = 10
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for min_interval > max_interval")
	}
	if !strings.Contains(err.Error(), "max_interval") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownPosition(t *testing.T) {
	cfg := config.Default()
	cfg.Planner.Positions = []string{"right", "middle"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown position")
	}
}

func TestValidateRejectsBadVADMethod(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.VADMethod = "loudness"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown vad method")
	}
}

func TestCreateSampleWritesParseableConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	path := filepath.Join(tempHome, "cfg", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Planner.MinInterval != config.Default().Planner.MinInterval {
		t.Fatalf("sample changed defaults: %v", cfg.Planner.MinInterval)
	}
}
