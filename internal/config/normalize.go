package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeKeywords()
	c.normalizeProviders()
	c.normalizePlanner()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.IncomingDir, err = expandPath(c.Paths.IncomingDir); err != nil {
		return fmt.Errorf("paths.incoming_dir: %w", err)
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultWhisperModel
	}
	c.Transcription.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod))
	if c.Transcription.VADMethod == "" {
		c.Transcription.VADMethod = defaultVADMethod
	}
	c.Transcription.HFToken = strings.TrimSpace(c.Transcription.HFToken)
	if c.Transcription.HFToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.Transcription.HFToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Transcription.HFToken = strings.TrimSpace(value)
		}
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
	if c.Transcription.Language == "" {
		c.Transcription.Language = defaultLanguage
	}
}

func (c *Config) normalizeKeywords() {
	terms := make([]string, 0, len(c.Keywords.PriorityTerms))
	for _, term := range c.Keywords.PriorityTerms {
		if trimmed := strings.TrimSpace(term); trimmed != "" {
			terms = append(terms, trimmed)
		}
	}
	c.Keywords.PriorityTerms = terms
	if c.Keywords.MaxPhraseWords <= 0 {
		c.Keywords.MaxPhraseWords = defaultMaxPhraseWords
	}
}

func (c *Config) normalizeProviders() {
	c.Providers.PexelsAPIKey = strings.TrimSpace(c.Providers.PexelsAPIKey)
	if c.Providers.PexelsAPIKey == "" {
		if value, ok := os.LookupEnv("PEXELS_API_KEY"); ok {
			c.Providers.PexelsAPIKey = strings.TrimSpace(value)
		}
	}
	c.Providers.PixabayAPIKey = strings.TrimSpace(c.Providers.PixabayAPIKey)
	if c.Providers.PixabayAPIKey == "" {
		if value, ok := os.LookupEnv("PIXABAY_API_KEY"); ok {
			c.Providers.PixabayAPIKey = strings.TrimSpace(value)
		}
	}
	if c.Providers.RequestTimeout <= 0 {
		c.Providers.RequestTimeout = defaultProviderTimeout
	}
}

func (c *Config) normalizePlanner() {
	if len(c.Planner.Positions) == 0 {
		c.Planner.Positions = defaultPositions()
		return
	}
	positions := make([]string, 0, len(c.Planner.Positions))
	for _, pos := range c.Planner.Positions {
		if trimmed := strings.ToLower(strings.TrimSpace(pos)); trimmed != "" {
			positions = append(positions, trimmed)
		}
	}
	c.Planner.Positions = positions
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
