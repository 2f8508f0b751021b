package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConsoleHandlerOrdersFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("publish complete",
		String(FieldComponent, "scheduler"),
		String(FieldPlatform, "twitter"),
		Int64(FieldItemID, 42),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO scheduler: publish complete") {
		t.Fatalf("component prefix missing: %q", line)
	}
	if !strings.Contains(line, "platform=twitter") || !strings.Contains(line, "item_id=42") {
		t.Fatalf("attributes missing: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Warn("stage failed", String("reason", "diagram render timed out"))

	if !strings.Contains(buf.String(), `reason="diagram render timed out"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("should be dropped")
	if buf.Len() != 0 {
		t.Fatalf("info record not filtered: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		" info  ": slog.LevelInfo,
	}
	for input, want := range cases {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestFormatValueTime(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	got := formatValue(slog.TimeValue(ts))
	if got != "2026-03-01T12:00:00Z" {
		t.Fatalf("formatValue time = %q", got)
	}
}
