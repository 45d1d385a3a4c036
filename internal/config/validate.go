package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownPositions = map[string]struct{}{
	"left":         {},
	"right":        {},
	"top-left":     {},
	"top-right":    {},
	"bottom-left":  {},
	"bottom-right": {},
	"center":       {},
}

// Validate ensures the configuration is usable. Interval misconfiguration is
// rejected here, at load time, rather than surfacing mid-plan.
func (c *Config) Validate() error {
	if err := c.validatePlanner(); err != nil {
		return err
	}
	if err := c.validateKeywords(); err != nil {
		return err
	}
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePlanner() error {
	if c.Planner.MinInterval <= 0 {
		return errors.New("planner.min_interval must be positive (seconds)")
	}
	if c.Planner.MaxInterval < c.Planner.MinInterval {
		return errors.New("planner.max_interval must be >= planner.min_interval")
	}
	if c.Planner.OverlayDuration <= 0 {
		return errors.New("planner.overlay_duration must be positive (seconds)")
	}
	if c.Planner.LeadIn < 0 {
		return errors.New("planner.lead_in must be >= 0")
	}
	if c.Planner.TailMargin < 0 {
		return errors.New("planner.tail_margin must be >= 0")
	}
	if c.Planner.ResolverRetries < 1 {
		return errors.New("planner.resolver_retries must be >= 1")
	}
	if len(c.Planner.Positions) == 0 {
		return errors.New("planner.positions must include at least one position")
	}
	for _, pos := range c.Planner.Positions {
		if _, ok := knownPositions[pos]; !ok {
			return fmt.Errorf("planner.positions: unknown position %q", pos)
		}
	}
	return nil
}

func (c *Config) validateKeywords() error {
	if c.Keywords.MinWeight < 0 {
		return errors.New("keywords.min_weight must be >= 0")
	}
	if c.Keywords.MaxPhraseWords < 1 || c.Keywords.MaxPhraseWords > 5 {
		return errors.New("keywords.max_phrase_words must be between 1 and 5")
	}
	return nil
}

func (c *Config) validateRender() error {
	if c.Render.OverlayWidthRatio <= 0 || c.Render.OverlayWidthRatio >= 1 {
		return errors.New("render.overlay_width_ratio must be between 0 and 1 exclusive")
	}
	if c.Render.Threads < 1 {
		return errors.New("render.threads must be >= 1")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"workflow.settle_seconds":       c.Workflow.SettleSeconds,
		"workflow.download_workers":     c.Workflow.DownloadWorkers,
		"providers.request_timeout":     c.Providers.RequestTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTranscription() error {
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method must be silero or pyannote, got %q", c.Transcription.VADMethod)
	}
	if c.Transcription.AudioTrack < 0 {
		return errors.New("transcription.audio_track must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	if strings.Contains(c.Notifications.NtfyTopic, " ") {
		return errors.New("notifications.ntfy_topic must not contain spaces")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
