// Package publish defines the platform publisher contract and its
// implementations. Twitter is the only platform with a working
// backend; the remaining platforms are registered as stubs so queueing
// against them fails loudly instead of silently dropping content.
package publish

import (
	"context"
	"sort"

	"edustream/internal/content"
	"edustream/internal/services"
)

// Result is what a successful platform call returns.
type Result struct {
	PostID string
	URL    string
}

// Publisher pushes one content item to a platform.
type Publisher interface {
	Name() string
	Configured() bool
	Publish(ctx context.Context, item *content.Item, caption string) (*Result, error)
}

// Registry holds the known publishers keyed by platform name.
type Registry struct {
	publishers map[string]Publisher
}

// NewRegistry builds a registry from the given publishers.
func NewRegistry(publishers ...Publisher) *Registry {
	r := &Registry{publishers: make(map[string]Publisher, len(publishers))}
	for _, p := range publishers {
		r.publishers[p.Name()] = p
	}
	return r
}

// Get returns the publisher for a platform, or ErrNotConfigured for an
// unknown platform name.
func (r *Registry) Get(platform string) (Publisher, error) {
	p, ok := r.publishers[platform]
	if !ok {
		return nil, services.Wrap(services.ErrNotConfigured, "publish", "lookup",
			"unknown platform "+platform, nil)
	}
	return p, nil
}

// Platforms lists all registered platform names, sorted.
func (r *Registry) Platforms() []string {
	out := make([]string, 0, len(r.publishers))
	for name := range r.publishers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Configured lists the platforms with working credentials, sorted.
func (r *Registry) Configured() []string {
	out := make([]string, 0, len(r.publishers))
	for name, p := range r.publishers {
		if p.Configured() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Stub is a placeholder publisher for platforms without a backend.
type Stub struct {
	name string
}

// NewStub builds a stub publisher with the given platform name.
func NewStub(name string) *Stub { return &Stub{name: name} }

func (s *Stub) Name() string     { return s.name }
func (s *Stub) Configured() bool { return false }

func (s *Stub) Publish(context.Context, *content.Item, string) (*Result, error) {
	return nil, services.Wrap(services.ErrNotConfigured, s.name, "publish",
		"platform has no backend", nil)
}
