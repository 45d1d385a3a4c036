package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"broll/internal/config"
	"broll/internal/deps"
)

// minFreeBytes is the staging headroom required before processing starts.
// Extracted WAV audio plus downloaded stills for one long video stay well
// under this.
const minFreeBytes = 2 << 30

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem holding path has at least required
// bytes available.
func CheckDiskSpace(name, path string, required uint64) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	available := stat.Bavail * uint64(stat.Bsize)
	if available < required {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%.1f GiB free, %.1f GiB required)",
			path, gib(available), gib(required))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%.1f GiB free)", path, gib(available))}
}

// CheckProviders summarizes which image providers the configured credentials
// enable. This never fails hard: the placeholder provider keeps planning
// working with zero keys.
func CheckProviders(cfg *config.Config) Result {
	const name = "Image providers"

	keyed := make([]string, 0, 2)
	if strings.TrimSpace(cfg.Providers.PexelsAPIKey) != "" {
		keyed = append(keyed, "pexels")
	}
	if strings.TrimSpace(cfg.Providers.PixabayAPIKey) != "" {
		keyed = append(keyed, "pixabay")
	}
	if len(keyed) == 0 {
		return Result{Name: name, Passed: true,
			Detail: "no API keys configured; stock lookups fall back to placeholder images"}
	}
	return Result{Name: name, Passed: true,
		Detail: fmt.Sprintf("%s enabled (plus keyless fallbacks)", strings.Join(keyed, ", "))}
}

// CheckSystemDeps evaluates all system-level binary dependencies. Both the
// daemon startup path and the CLI deps command use this list.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.Requirements(cfg))
}

func gib(bytes uint64) float64 {
	return float64(bytes) / float64(1<<30)
}
