package logs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeLog(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edustream.log")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTailReturnsLastLines(t *testing.T) {
	path := writeLog(t, "one\ntwo\nthree\nfour\n")

	lines, offset, err := Tail(path, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 || lines[0] != "three" || lines[1] != "four" {
		t.Fatalf("unexpected tail: %v", lines)
	}
	if offset == 0 {
		t.Fatal("expected non-zero offset after tail")
	}
}

func TestTailShortFile(t *testing.T) {
	path := writeLog(t, "only\n")

	lines, _, err := Tail(path, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "only" {
		t.Fatalf("unexpected tail: %v", lines)
	}
}

func TestTailMissingFile(t *testing.T) {
	lines, offset, err := Tail(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 || offset != 0 {
		t.Fatalf("expected empty result, got %v at %d", lines, offset)
	}
}

func TestTailZeroLimitSeeksToEnd(t *testing.T) {
	path := writeLog(t, "a\nb\n")

	lines, offset, err := Tail(path, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %v", lines)
	}
	if offset != 4 {
		t.Fatalf("expected offset at end of file, got %d", offset)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "old\n")

	_, offset, err := Tail(path, 0)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, offset, func(line string) { got <- line })
	}()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("fresh\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	select {
	case line := <-got:
		if line != "fresh" {
			t.Fatalf("expected appended line, got %q", line)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follow never emitted the appended line")
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not stop on cancel")
	}
}

func TestFollowRestartsAfterTruncate(t *testing.T) {
	path := writeLog(t, "aaaa\nbbbb\ncccc\n")

	_, offset, err := Tail(path, 0)
	if err != nil {
		t.Fatal(err)
	}

	// rotate: replace with a shorter file
	if err := os.WriteFile(path, []byte("new\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	lines, _, err := readFrom(path, offset)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "new" {
		t.Fatalf("expected restart from beginning, got %v", lines)
	}
}
