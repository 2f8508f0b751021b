package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runConfigCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestConfigInitCreatesSample(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runConfigCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[publishing]") {
		t.Fatalf("sample config missing publishing section:\n%s", data)
	}

	// a second init without --overwrite refuses to clobber the file
	if _, err := runConfigCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init over existing file to fail")
	}
	if _, err := runConfigCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigValidateWithoutFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := runConfigCLI(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "using defaults")
	requireContains(t, out, "Twitter credentials are not set")
}

func TestConfigValidateExistingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	target := filepath.Join(t.TempDir(), "config.toml")
	if _, err := runConfigCLI(t, "config", "init", "--path", target); err != nil {
		t.Fatalf("config init: %v", err)
	}
	out, err := runConfigCLI(t, "config", "validate", "--path", target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "is valid")
}

func TestConfigShowDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	out, err := runConfigCLI(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "built-in defaults")
	requireContains(t, out, "publish_interval_minutes")
}
