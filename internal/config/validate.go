package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Paths.MediaDir == "" {
		return errors.New("paths.media_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Publishing.IntervalMinutes <= 0 {
		return errors.New("publishing.interval_minutes must be positive")
	}
	if c.Stages.NarrationEnabled || c.Stages.VideoEnabled {
		return errors.New("stages.narration_enabled and stages.video_enabled are not available yet")
	}
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
