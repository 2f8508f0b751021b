package services_test

import (
	"errors"
	"strings"
	"testing"

	"edustream/internal/services"
)

func TestWrapPreservesMarker(t *testing.T) {
	inner := errors.New("boom")
	err := services.Wrap(services.ErrStageFailure, "diagram", "render", "canvas init", inner)

	if !errors.Is(err, services.ErrStageFailure) {
		t.Fatal("wrapped error lost its marker")
	}
	if !errors.Is(err, inner) {
		t.Fatal("wrapped error lost the inner cause")
	}
	if !strings.Contains(err.Error(), "diagram: render: canvas init") {
		t.Fatalf("unexpected detail: %v", err)
	}
}

func TestWrapNilMarkerDefaultsToStageFailure(t *testing.T) {
	err := services.Wrap(nil, "script", "", "", nil)
	if !errors.Is(err, services.ErrStageFailure) {
		t.Fatalf("expected stage failure marker, got %v", err)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := services.Wrap(services.ErrPublishFailure, "", "", "", nil)
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %v", err)
	}
}
