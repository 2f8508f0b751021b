// Package diagram implements the second generation stage: rendering
// the static diagram PNG described by the script payload.
package diagram

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"edustream/internal/config"
	"edustream/internal/content"
	"edustream/internal/fileutil"
	"edustream/internal/logging"
	"edustream/internal/services"
	"edustream/internal/stage"
	"edustream/internal/textutil"
)

// Stage renders diagrams into the media directory.
type Stage struct {
	cfg      config.Diagram
	mediaDir string
	logger   *slog.Logger
}

// New builds the diagram stage.
func New(cfg config.Diagram, mediaDir string, logger *slog.Logger) *Stage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Stage{
		cfg:      cfg,
		mediaDir: mediaDir,
		logger:   logging.WithComponent(logger, "stage-diagram"),
	}
}

func (s *Stage) Name() string { return "diagram" }

func (s *Stage) Execute(ctx context.Context, item *content.Item) error {
	script, err := item.Script()
	if err != nil {
		return services.Wrap(services.ErrStageFailure, "diagram", "load script", "script payload missing or malformed", err)
	}
	if script.DiagramDescription == "" {
		return services.Wrap(services.ErrStageFailure, "diagram", "load script", "script has no diagram description", nil)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(s.mediaDir, "diagrams")
	if err := fileutil.EnsureDir(dir); err != nil {
		return services.Wrap(services.ErrStageFailure, "diagram", "prepare", "create diagram directory", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("item-%d-%s.png", item.ID, textutil.SanitizeToken(item.TopicName)))

	r := newRenderer(s.cfg)
	if err := r.render(script, path); err != nil {
		return services.Wrap(services.ErrStageFailure, "diagram", "render", "diagram rendering failed", err)
	}

	item.DiagramPath = path
	s.logger.InfoContext(ctx, "diagram rendered",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("path", path),
		logging.String("kind", string(classify(script.DiagramDescription))))
	return nil
}

func (s *Stage) HealthCheck(context.Context) stage.Health {
	if s.cfg.Width <= 0 || s.cfg.Height <= 0 {
		return stage.Unhealthy("diagram", "invalid canvas dimensions")
	}
	if err := fileutil.EnsureDir(filepath.Join(s.mediaDir, "diagrams")); err != nil {
		return stage.Unhealthy("diagram", "media directory not writable: "+err.Error())
	}
	return stage.Healthy("diagram")
}
