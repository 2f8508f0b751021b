package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	MediaDir string `toml:"media_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Scenario contains configuration for the scenario selector.
type Scenario struct {
	// ExclusionWindow is the count of most-recently-selected templates
	// excluded from the next selection. Relaxed automatically when the
	// filtered pool is smaller than the window.
	ExclusionWindow int `toml:"exclusion_window"`
}

// LLM contains connection settings for the script-stage fallback model.
// The client speaks the OpenAI-compatible chat completions protocol.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Enabled reports whether the fallback model can be used.
func (l LLM) Enabled() bool {
	return strings.TrimSpace(l.APIKey) != ""
}

// Diagram contains configuration for the diagram renderer.
type Diagram struct {
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	FontPath string `toml:"font_path"`
}

// Stages toggles the optional later pipeline stages. Both default to
// disabled; the pipeline skips them entirely when off.
type Stages struct {
	NarrationEnabled bool `toml:"narration_enabled"`
	VideoEnabled     bool `toml:"video_enabled"`
	// Timeouts applied around each stage executor call.
	ScriptTimeoutSeconds  int `toml:"script_timeout_seconds"`
	DiagramTimeoutSeconds int `toml:"diagram_timeout_seconds"`
}

// Publishing contains the publish scheduler settings. IntervalMinutes is
// the boot default; the runtime value lives in the settings table and is
// mutable through the API without a restart.
type Publishing struct {
	IntervalMinutes        int `toml:"interval_minutes"`
	SchedulerTickSeconds   int `toml:"scheduler_tick_seconds"`
	PublishTimeoutSeconds  int `toml:"publish_timeout_seconds"`
	FirstSlotDelayMinutes  int `toml:"first_slot_delay_minutes"`
}

// Workflow contains pipeline concurrency and batching limits.
type Workflow struct {
	MaxConcurrentGenerations int `toml:"max_concurrent_generations"`
	BatchLimit               int `toml:"batch_limit"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Generation     bool   `toml:"generation"`
	Publish        bool   `toml:"publish"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// TwitterCredentials holds the OAuth 1.0a user-context credentials for
// the Twitter/X publisher. Sourced from the environment (optionally via
// a .env file), never from the TOML config.
type TwitterCredentials struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string
}

// Configured reports whether all four credentials are present.
func (t TwitterCredentials) Configured() bool {
	return t.APIKey != "" && t.APISecret != "" && t.AccessToken != "" && t.AccessTokenSecret != ""
}

// Config encapsulates all configuration values for EduStream.
//
// Sections by subsystem:
//   - Paths: data/media/log directories and the API bind address
//   - Scenario: selector recency window
//   - LLM: script-stage fallback model connection
//   - Diagram: renderer canvas and font settings
//   - Stages: optional stage toggles and per-stage timeouts
//   - Publishing: scheduler tick, publish spacing, timeouts
//   - Workflow: pipeline concurrency and batch limits
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Scenario      Scenario      `toml:"scenario"`
	LLM           LLM           `toml:"llm"`
	Diagram       Diagram       `toml:"diagram"`
	Stages        Stages        `toml:"stages"`
	Publishing    Publishing    `toml:"publishing"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`

	Twitter TwitterCredentials `toml:"-"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/edustream/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and credentials resolved from the
// environment.
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
	cfg.loadCredentials()
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadCredentials resolves platform secrets from the environment. A .env
// file alongside the working directory is honored when present.
func (c *Config) loadCredentials() {
	_ = godotenv.Load()
	c.Twitter = TwitterCredentials{
		APIKey:            strings.TrimSpace(os.Getenv("TWITTER_API_KEY")),
		APISecret:         strings.TrimSpace(os.Getenv("TWITTER_API_SECRET")),
		AccessToken:       strings.TrimSpace(os.Getenv("TWITTER_ACCESS_TOKEN")),
		AccessTokenSecret: strings.TrimSpace(os.Getenv("TWITTER_ACCESS_TOKEN_SECRET")),
	}
	if key := strings.TrimSpace(os.Getenv("EDUSTREAM_LLM_API_KEY")); key != "" {
		c.LLM.APIKey = key
	}
	if token := strings.TrimSpace(os.Getenv("EDUSTREAM_API_TOKEN")); token != "" {
		c.Paths.APIToken = token
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	projectPath, err := filepath.Abs("edustream.toml")
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the daemon writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.MediaDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
