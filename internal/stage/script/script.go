// Package script implements the first generation stage: producing the
// structured script payload for a content item. The template pool is
// the primary source; a language model is the fallback for pinned
// topics no template covers.
package script

import (
	"context"
	"errors"
	"log/slog"

	"edustream/internal/content"
	"edustream/internal/logging"
	"edustream/internal/scenario"
	"edustream/internal/services"
	"edustream/internal/stage"
)

// Fallback generates a script when the template pool has no match.
type Fallback interface {
	GenerateScript(ctx context.Context, topic, category, description string) (*content.Script, error)
}

// Stage produces the script payload for an item.
type Stage struct {
	selector *scenario.Selector
	fallback Fallback
	logger   *slog.Logger
}

// New builds the script stage. fallback may be nil when no model is
// configured; pool misses then fail the stage.
func New(selector *scenario.Selector, fallback Fallback, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		selector: selector,
		fallback: fallback,
		logger:   logging.WithComponent(logger, "stage-script"),
	}
}

func (s *Stage) Name() string { return "script" }

func (s *Stage) Execute(ctx context.Context, item *content.Item) error {
	filter := scenario.Filter{
		Topic:       item.TopicName,
		Category:    item.Category,
		Description: item.Description,
	}

	script, tmpl, err := s.selector.Generate(filter)
	switch {
	case err == nil:
		item.TemplateID = tmpl.ID
		s.logger.InfoContext(ctx, "script generated from template",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String("template", tmpl.ID))
	case errors.Is(err, services.ErrEmptyPool) && s.fallback != nil:
		s.logger.InfoContext(ctx, "no template match, using model fallback",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String("topic", item.TopicName))
		script, err = s.fallback.GenerateScript(ctx, item.TopicName, item.Category, item.Description)
		if err != nil {
			return services.Wrap(services.ErrStageFailure, "script", "fallback", "model generation failed", err)
		}
	default:
		return services.Wrap(services.ErrStageFailure, "script", "select", "no script source for topic", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := script.Validate(); err != nil {
		return services.Wrap(services.ErrStageFailure, "script", "validate", "script payload incomplete", err)
	}

	encoded, err := script.Encode()
	if err != nil {
		return services.Wrap(services.ErrStageFailure, "script", "encode", "script payload not serializable", err)
	}
	item.ScriptJSON = encoded
	if item.TemplateID == "" {
		item.TemplateID = script.TemplateID
	}
	return nil
}

func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.selector == nil || s.selector.PoolSize() == 0 {
		return stage.Unhealthy("script", "template pool is empty")
	}
	return stage.Healthy("script")
}
