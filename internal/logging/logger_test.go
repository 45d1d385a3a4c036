package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"broll/internal/config"
	"broll/internal/logging"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := logging.New(logging.Options{Format: "xml"})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if !strings.Contains(err.Error(), "xml") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.Logging.Format = "json"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	logger.Info("pipeline started", logging.String("source", "clip.mp4"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "broll.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "pipeline started") {
		t.Fatalf("log file missing message: %s", data)
	}
	if !strings.Contains(string(data), `"source":"clip.mp4"`) {
		t.Fatalf("log file missing attr: %s", data)
	}
}

func TestComponentLoggerTagsRecords(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "planner")
	// Nop base: must not panic and must stay disabled.
	logger.Info("ignored")
}
