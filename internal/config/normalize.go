package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.MediaDir, err = expandPath(c.Paths.MediaDir); err != nil {
		return fmt.Errorf("paths.media_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Diagram.FontPath) != "" {
		if c.Diagram.FontPath, err = expandPath(c.Diagram.FontPath); err != nil {
			return fmt.Errorf("diagram.font_path: %w", err)
		}
	}

	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}

	if c.Scenario.ExclusionWindow < 0 {
		c.Scenario.ExclusionWindow = 0
	}
	if c.Diagram.Width <= 0 {
		c.Diagram.Width = defaultDiagramWidth
	}
	if c.Diagram.Height <= 0 {
		c.Diagram.Height = defaultDiagramHeight
	}
	if c.Stages.ScriptTimeoutSeconds <= 0 {
		c.Stages.ScriptTimeoutSeconds = defaultScriptTimeoutSeconds
	}
	if c.Stages.DiagramTimeoutSeconds <= 0 {
		c.Stages.DiagramTimeoutSeconds = defaultDiagramTimeoutSeconds
	}
	if c.Publishing.SchedulerTickSeconds <= 0 {
		c.Publishing.SchedulerTickSeconds = defaultSchedulerTickSeconds
	}
	if c.Publishing.PublishTimeoutSeconds <= 0 {
		c.Publishing.PublishTimeoutSeconds = defaultPublishTimeoutSeconds
	}
	if c.Publishing.FirstSlotDelayMinutes <= 0 {
		c.Publishing.FirstSlotDelayMinutes = defaultFirstSlotDelayMinutes
	}
	if c.Workflow.MaxConcurrentGenerations <= 0 {
		c.Workflow.MaxConcurrentGenerations = defaultMaxConcurrentGenerations
	}
	if c.Workflow.BatchLimit <= 0 {
		c.Workflow.BatchLimit = defaultBatchLimit
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}

	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
	return nil
}

// ExpandPath resolves ~ and relativity the same way config loading
// does, for callers taking paths on the command line.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.New("resolve home directory")
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", trimmed, err)
	}
	return abs, nil
}
