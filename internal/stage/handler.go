// Package stage defines the contract generation stages implement and
// the stubs for stages that are configured but not yet available.
package stage

import (
	"context"

	"edustream/internal/content"
	"edustream/internal/services"
)

// Handler describes the contract the pipeline runner needs from each
// generation stage. Execute mutates the item in place; the runner
// persists the mutated item after each stage.
type Handler interface {
	Name() string
	Execute(context.Context, *content.Item) error
	HealthCheck(context.Context) Health
}

// Disabled is a placeholder handler for stages that exist in the
// pipeline order but have no working implementation yet. Executing it
// is a configuration error, not a generation failure.
type Disabled struct {
	name string
}

// NewDisabled builds a placeholder handler with the given stage name.
func NewDisabled(name string) *Disabled {
	return &Disabled{name: name}
}

func (d *Disabled) Name() string { return d.name }

func (d *Disabled) Execute(context.Context, *content.Item) error {
	return services.Wrap(services.ErrStageFailure, d.name, "execute", "stage is not available", nil)
}

func (d *Disabled) HealthCheck(context.Context) Health {
	return Unhealthy(d.name, "not available")
}
