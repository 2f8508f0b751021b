package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"edustream/internal/config"
)

func TestDefaultsNormalize(t *testing.T) {
	cfg := config.Default()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write empty config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if loaded.Publishing.IntervalMinutes != cfg.Publishing.IntervalMinutes {
		t.Fatalf("defaults not applied: %#v", loaded.Publishing)
	}
	if !filepath.IsAbs(loaded.Paths.DataDir) {
		t.Fatalf("data_dir not expanded: %q", loaded.Paths.DataDir)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
data_dir = "` + dir + `/data"
media_dir = "` + dir + `/media"
log_dir = "` + dir + `/logs"

[publishing]
interval_minutes = 15

[scenario]
exclusion_window = 2
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Publishing.IntervalMinutes != 15 {
		t.Fatalf("interval override not applied: %d", cfg.Publishing.IntervalMinutes)
	}
	if cfg.Scenario.ExclusionWindow != 2 {
		t.Fatalf("exclusion window override not applied: %d", cfg.Scenario.ExclusionWindow)
	}
}

func TestValidateRejectsUnavailableStages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[stages]
narration_enabled = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected narration_enabled to be rejected")
	}
}

func TestValidateRejectsBadLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected log format to be rejected")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[publishing]") {
		t.Fatalf("sample config missing publishing section: %s", contents)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	if cfg.Workflow.BatchLimit != 30 {
		t.Fatalf("sample batch limit = %d", cfg.Workflow.BatchLimit)
	}
}

func TestCredentialsFromEnvironment(t *testing.T) {
	t.Setenv("TWITTER_API_KEY", "k")
	t.Setenv("TWITTER_API_SECRET", "s")
	t.Setenv("TWITTER_ACCESS_TOKEN", "t")
	t.Setenv("TWITTER_ACCESS_TOKEN_SECRET", "ts")

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(""), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Twitter.Configured() {
		t.Fatalf("twitter credentials not resolved: %#v", cfg.Twitter)
	}
}
