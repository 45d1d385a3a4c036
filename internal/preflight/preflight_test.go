package preflight_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"broll/internal/preflight"
	"broll/internal/testsupport"
)

func TestRunAllPassesWithPreparedDirectories(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	results := preflight.RunAll(context.Background(), cfg)
	if len(results) == 0 {
		t.Fatal("expected preflight results")
	}
	for _, result := range results {
		if !result.Passed {
			t.Fatalf("check %s failed: %s", result.Name, result.Detail)
		}
	}
}

func TestDirectoryAccessReportsMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "never-created")
	result := preflight.CheckDirectoryAccess("Incoming directory", missing)
	if result.Passed {
		t.Fatal("expected missing directory to fail")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestDirectoryAccessRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	testsupport.WriteFile(t, file, 8)
	result := preflight.CheckDirectoryAccess("Staging directory", file)
	if result.Passed {
		t.Fatal("expected regular file to fail directory check")
	}
}

func TestDiskSpaceImpossibleRequirement(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDiskSpace("Staging disk space", dir, 1<<62)
	if result.Passed {
		t.Fatal("expected impossible disk requirement to fail")
	}
}

func TestProvidersSummaryNamesKeyedProviders(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	result := preflight.CheckProviders(cfg)
	if !result.Passed {
		t.Fatalf("keyless provider summary should pass: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "placeholder") {
		t.Fatalf("expected placeholder mention, got %q", result.Detail)
	}

	cfg.Providers.PexelsAPIKey = "key"
	result = preflight.CheckProviders(cfg)
	if !strings.Contains(result.Detail, "pexels") {
		t.Fatalf("expected pexels named, got %q", result.Detail)
	}
}

func TestSystemDepsListsPipelineBinaries(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	statuses := preflight.CheckSystemDeps(cfg)
	if len(statuses) != 3 {
		t.Fatalf("expected 3 dependency statuses, got %d", len(statuses))
	}
	for _, status := range statuses {
		if !status.Available {
			t.Fatalf("stubbed binary %s should be available: %s", status.Name, status.Detail)
		}
	}
}
