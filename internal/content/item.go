package content

import (
	"strings"
	"time"
)

// Type is the closed set of content kinds. Fixed at item creation.
type Type string

const (
	TypeProblem Type = "problem"
	TypeConcept Type = "concept"
)

// ParseType converts a string into a known Type, defaulting to problem.
func ParseType(value string) Type {
	if Type(strings.ToLower(strings.TrimSpace(value))) == TypeConcept {
		return TypeConcept
	}
	return TypeProblem
}

// Status represents the lifecycle of a content item.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusGenerating Status = "generating"
	StatusReady      Status = "ready"
	StatusQueued     Status = "queued"
	StatusPublished  Status = "published"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusDraft,
	StatusGenerating,
	StatusReady,
	StatusQueued,
	StatusPublished,
	StatusFailed,
}

// legalTransitions is the single source of truth for status edges.
// Generation moves draft -> generating -> ready|failed; the publish
// subsystem moves ready -> queued -> published and may fail a queued
// item when the platform call fails. failed -> generating covers an
// explicit operator retry; nothing else leaves failed.
var legalTransitions = map[Status][]Status{
	StatusDraft:      {StatusGenerating},
	StatusGenerating: {StatusReady, StatusFailed},
	StatusReady:      {StatusQueued, StatusPublished},
	StatusQueued:     {StatusPublished, StatusFailed},
	StatusPublished:  {},
	StatusFailed:     {StatusGenerating},
}

// CanTransition reports whether the edge from -> to is legal.
func CanTransition(from, to Status) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// IsTerminal reports whether no further automatic transition applies.
func (s Status) IsTerminal() bool {
	return s == StatusPublished || s == StatusFailed
}

// Publishable reports whether an item in this status may be handed to a
// platform publisher.
func (s Status) Publishable() bool {
	return s == StatusReady || s == StatusQueued
}

// Item is one generated piece of content persisted in SQLite.
type Item struct {
	ID           int64
	TopicName    string
	Category     string
	Description  string
	ContentType  Type
	TemplateID   string
	ScriptJSON   string
	DiagramPath  string
	AudioPath    string
	VideoPath    string
	Status       Status
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasScript reports whether the script stage has produced a payload.
func (i *Item) HasScript() bool {
	return strings.TrimSpace(i.ScriptJSON) != ""
}

// Script decodes the stored script payload. Returns nil when absent.
func (i *Item) Script() (*Script, error) {
	if !i.HasScript() {
		return nil, nil
	}
	return DecodeScript(i.ScriptJSON)
}
