package staging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"broll/internal/logging"
)

// CleanupResult holds the outcome of a staging directory sweep.
type CleanupResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanOrphaned removes per-item staging directories that no live queue
// item references anymore. Extracted audio, transcripts, and downloaded
// stills for finished or deleted items have no further use.
func CleanOrphaned(stagingDir string, activeDirs map[string]struct{}, logger *slog.Logger) CleanupResult {
	result := CleanupResult{}

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return result
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		}
		return result
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dirPath := filepath.Join(stagingDir, entry.Name())
		if _, active := activeDirs[dirPath]; active {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logger.Warn("remove orphaned staging directory",
				logging.String("path", dirPath),
				logging.Error(err))
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		logger.Info("removed orphaned staging directory", logging.String("path", dirPath))
	}

	return result
}

// CleanStale removes staging directories untouched for longer than maxAge,
// regardless of queue state. A safety net for items deleted from the queue
// while their stage was mid-write.
func CleanStale(stagingDir string, maxAge time.Duration, logger *slog.Logger) CleanupResult {
	result := CleanupResult{}

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" || maxAge <= 0 {
		return result
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		dirPath := filepath.Join(stagingDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logger.Warn("remove stale staging directory",
				logging.String("path", dirPath),
				logging.Error(err))
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		logger.Info("removed stale staging directory",
			logging.String("path", dirPath),
			logging.Duration("age", time.Since(info.ModTime())))
	}

	return result
}
