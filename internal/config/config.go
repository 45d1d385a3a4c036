package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	IncomingDir string `toml:"incoming_dir"`
	StagingDir  string `toml:"staging_dir"`
	OutputDir   string `toml:"output_dir"`
	LogDir      string `toml:"log_dir"`
}

// Transcription contains configuration for the WhisperX transcription step.
type Transcription struct {
	Model       string `toml:"model"`
	CUDAEnabled bool   `toml:"cuda_enabled"`
	VADMethod   string `toml:"vad_method"`
	HFToken     string `toml:"hf_token"`
	Language    string `toml:"language"`
	AudioTrack  int    `toml:"audio_track"`
}

// Keywords contains configuration for keyword extraction.
type Keywords struct {
	PriorityTerms  []string `toml:"priority_terms"`
	ExtraStopwords []string `toml:"extra_stopwords"`
	MinWeight      float64  `toml:"min_weight"`
	MaxPhraseWords int      `toml:"max_phrase_words"`
}

// Providers contains image provider credentials and limits. A missing API key
// disables that provider; it is never a fatal condition.
type Providers struct {
	PexelsAPIKey   string `toml:"pexels_api_key"`
	PixabayAPIKey  string `toml:"pixabay_api_key"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Planner contains configuration for B-roll insertion scheduling.
// Interval and duration values are in seconds.
type Planner struct {
	MinInterval     float64  `toml:"min_interval"`
	MaxInterval     float64  `toml:"max_interval"`
	OverlayDuration float64  `toml:"overlay_duration"`
	LeadIn          float64  `toml:"lead_in"`
	TailMargin      float64  `toml:"tail_margin"`
	ResolverRetries int      `toml:"resolver_retries"`
	Positions       []string `toml:"positions"`
}

// Render contains configuration for the ffmpeg compositing step.
type Render struct {
	Enabled           bool    `toml:"enabled"`
	OverlayWidthRatio float64 `toml:"overlay_width_ratio"`
	ColorGrade        bool    `toml:"color_grade"`
	Threads           int     `toml:"threads"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Completed      bool   `toml:"completed"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains daemon timing and concurrency settings.
type Workflow struct {
	QueuePollInterval  int `toml:"queue_poll_interval"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	SettleSeconds      int `toml:"settle_seconds"`
	DownloadWorkers    int `toml:"download_workers"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the B-roll pipeline.
//
// Configuration sections by subsystem:
//   - Paths: incoming/staging/output/log directories
//   - Transcription: WhisperX model and device settings
//   - Keywords: priority terms and extraction thresholds
//   - Providers: image provider credentials and request timeout
//   - Planner: insertion spacing and overlay duration
//   - Render: ffmpeg compositing settings
//   - Notifications: ntfy push notification settings
//   - Workflow: daemon polling intervals and download concurrency
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Transcription Transcription `toml:"transcription"`
	Keywords      Keywords      `toml:"keywords"`
	Providers     Providers     `toml:"providers"`
	Planner       Planner       `toml:"planner"`
	Render        Render        `toml:"render"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/broll/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/broll/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("broll.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.IncomingDir, c.Paths.StagingDir, c.Paths.OutputDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for audio extraction and rendering.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
