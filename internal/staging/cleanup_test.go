package staging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"broll/internal/logging"
	"broll/internal/staging"
)

func TestCleanOrphanedIgnoresInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := staging.CleanOrphaned(dir, nil, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanOrphanedKeepsActiveDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	activeDir := filepath.Join(tmpDir, "3-morning-run")
	orphanDir := filepath.Join(tmpDir, "1-deleted-item")
	for _, dir := range []string{activeDir, orphanDir} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(filepath.Join(orphanDir, "narration.wav"), []byte("riff"), 0o644); err != nil {
		t.Fatalf("seed orphan: %v", err)
	}

	active := map[string]struct{}{activeDir: {}}
	result := staging.CleanOrphaned(tmpDir, active, logging.NewNop())

	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != orphanDir {
		t.Fatalf("expected only %s removed, got %v", orphanDir, result.Removed)
	}
	if _, err := os.Stat(orphanDir); !os.IsNotExist(err) {
		t.Fatal("orphan directory should have been removed")
	}
	if _, err := os.Stat(activeDir); err != nil {
		t.Fatalf("active directory should still exist: %v", err)
	}
}

func TestCleanStaleRemovesOldDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	oldDir := filepath.Join(tmpDir, "2-old-clip")
	if err := os.Mkdir(oldDir, 0o755); err != nil {
		t.Fatalf("create old dir: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldDir, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	recentDir := filepath.Join(tmpDir, "4-fresh-clip")
	if err := os.Mkdir(recentDir, 0o755); err != nil {
		t.Fatalf("create recent dir: %v", err)
	}

	result := staging.CleanStale(tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != oldDir {
		t.Fatalf("expected %s removed, got %v", oldDir, result.Removed)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Fatal("old directory should have been removed")
	}
	if _, err := os.Stat(recentDir); err != nil {
		t.Fatalf("recent directory should still exist: %v", err)
	}
}

func TestCleanStaleSkipsFiles(t *testing.T) {
	tmpDir := t.TempDir()

	filePath := filepath.Join(tmpDir, "stray.json")
	if err := os.WriteFile(filePath, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	oldTime := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filePath, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	result := staging.CleanStale(tmpDir, time.Hour, logging.NewNop())
	if len(result.Removed) != 0 {
		t.Fatalf("expected no removals, got %v", result.Removed)
	}
	if _, err := os.Stat(filePath); err != nil {
		t.Fatalf("stray file should be untouched: %v", err)
	}
}
