package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying every failure the pipeline and publish
// subsystem can surface. Callers match with errors.Is; the concrete
// message carries stage/operation context via Wrap.
var (
	// ErrEmptyPool indicates the scenario selector found no template
	// matching the requested filter.
	ErrEmptyPool = errors.New("empty scenario pool")

	// ErrStageFailure indicates a generation stage failed. Terminal for
	// the content item; partial artifacts from earlier stages remain.
	ErrStageFailure = errors.New("stage failure")

	// ErrInvalidState indicates an operation required a content status
	// the item is not in.
	ErrInvalidState = errors.New("invalid state")

	// ErrDuplicateSchedule indicates a pending schedule entry already
	// exists for the (content, platform) pair.
	ErrDuplicateSchedule = errors.New("duplicate schedule")

	// ErrNotConfigured indicates the target platform lacks credentials.
	ErrNotConfigured = errors.New("platform not configured")

	// ErrPublishFailure indicates the platform call failed.
	ErrPublishFailure = errors.New("publish failure")

	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes component context while
// tagging it with the provided marker for later classification. The
// marker should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrStageFailure
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
