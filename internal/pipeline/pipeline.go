// Package pipeline runs the asynchronous generation workflow: it
// accepts generation requests, walks each item through the ordered
// stages in a background goroutine and persists the outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"edustream/internal/config"
	"edustream/internal/content"
	"edustream/internal/logging"
	"edustream/internal/notifications"
	"edustream/internal/services"
	"edustream/internal/stage"
	"edustream/internal/store"
)

// Request describes one piece of content to generate.
type Request struct {
	Topic       string
	Category    string
	Description string
	ContentType content.Type
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return services.Wrap(services.ErrInvalidState, "pipeline", "request", "topic is required", nil)
	}
	return nil
}

// Manager owns the generation workers. Accepting a request returns
// immediately; stages execute on background goroutines bounded by the
// configured concurrency limit.
type Manager struct {
	cfg      *config.Config
	store    *store.Store
	stages   []stage.Handler
	notifier notifications.Service
	logger   *slog.Logger

	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager wires the stage handlers into a manager. Stage order
// follows the slice order.
func NewManager(cfg *config.Config, st *store.Store, stages []stage.Handler, notifier notifications.Service, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	limit := cfg.Workflow.MaxConcurrentGenerations
	if limit <= 0 {
		limit = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		cfg:      cfg,
		store:    st,
		stages:   stages,
		notifier: notifier,
		logger:   logging.WithComponent(logger, "pipeline"),
		sem:      semaphore.NewWeighted(int64(limit)),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Request creates a content item and starts generating it. The item is
// returned in generating status; stages run in the background.
func (m *Manager) Request(ctx context.Context, req Request) (*content.Item, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = content.TypeProblem
	}

	item, err := m.store.CreateItem(ctx, strings.TrimSpace(req.Topic), strings.TrimSpace(req.Category),
		strings.TrimSpace(req.Description), contentType)
	if err != nil {
		return nil, err
	}
	item, err = m.store.TransitionItem(ctx, item.ID, content.StatusDraft, content.StatusGenerating, nil)
	if err != nil {
		return nil, err
	}

	m.launch(item)
	return item, nil
}

// RequestBatch accepts up to the configured batch limit of requests.
// Oversized batches are rejected whole rather than silently truncated.
func (m *Manager) RequestBatch(ctx context.Context, reqs []Request) ([]*content.Item, error) {
	limit := m.cfg.Workflow.BatchLimit
	if limit > 0 && len(reqs) > limit {
		return nil, services.Wrap(services.ErrInvalidState, "pipeline", "batch",
			fmt.Sprintf("batch of %d exceeds limit of %d", len(reqs), limit), nil)
	}
	items := make([]*content.Item, 0, len(reqs))
	for _, req := range reqs {
		item, err := m.Request(ctx, req)
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Retry restarts generation for a failed item. The previous error
// message is cleared; artifacts from the failed run are overwritten as
// stages complete.
func (m *Manager) Retry(ctx context.Context, id int64) (*content.Item, error) {
	item, err := m.store.TransitionItem(ctx, id, content.StatusFailed, content.StatusGenerating, func(it *content.Item) {
		it.ErrorMessage = ""
	})
	if err != nil {
		return nil, err
	}
	m.launch(item)
	return item, nil
}

func (m *Manager) launch(item *content.Item) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(item)
	}()
}

// run executes the stage chain for one item. The item is already in
// generating status; this persists exactly one final transition.
func (m *Manager) run(item *content.Item) {
	if err := m.sem.Acquire(m.ctx, 1); err != nil {
		m.fail(item, err)
		return
	}
	defer m.sem.Release(1)

	for _, h := range m.stages {
		stageCtx, cancel := context.WithTimeout(m.ctx, m.stageTimeout(h.Name()))
		start := time.Now()
		err := h.Execute(stageCtx, item)
		cancel()
		if err != nil {
			m.logger.Error("stage failed",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.String(logging.FieldStage, h.Name()),
				logging.Error(err))
			m.fail(item, err)
			return
		}
		m.logger.Info("stage complete",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.String(logging.FieldStage, h.Name()),
			logging.Duration("elapsed", time.Since(start)))
	}

	final, err := m.store.TransitionItem(m.ctx, item.ID, content.StatusGenerating, content.StatusReady, func(it *content.Item) {
		copyArtifacts(it, item)
	})
	if err != nil {
		m.logger.Error("persist generated item",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err))
		return
	}
	if err := m.notifier.NotifyGenerationCompleted(m.ctx, final.TopicName, final.ID); err != nil {
		m.logger.Warn("generation notification failed", logging.Error(err))
	}
}

// fail marks the item failed while keeping whatever artifacts earlier
// stages produced.
func (m *Manager) fail(item *content.Item, cause error) {
	// shutdown is not a generation failure; leave the item generating
	// so a restart can be audited and retried by the operator
	if m.ctx.Err() != nil && errors.Is(cause, context.Canceled) {
		return
	}
	_, err := m.store.TransitionItem(context.Background(), item.ID, content.StatusGenerating, content.StatusFailed, func(it *content.Item) {
		copyArtifacts(it, item)
		it.ErrorMessage = cause.Error()
	})
	if err != nil {
		m.logger.Error("persist failed item",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err))
		return
	}
	if err := m.notifier.NotifyGenerationFailed(context.Background(), item.TopicName, item.ID, cause); err != nil {
		m.logger.Warn("failure notification failed", logging.Error(err))
	}
}

func copyArtifacts(dst, src *content.Item) {
	dst.TemplateID = src.TemplateID
	dst.ScriptJSON = src.ScriptJSON
	dst.DiagramPath = src.DiagramPath
	dst.AudioPath = src.AudioPath
	dst.VideoPath = src.VideoPath
}

func (m *Manager) stageTimeout(name string) time.Duration {
	seconds := 0
	switch name {
	case "script":
		seconds = m.cfg.Stages.ScriptTimeoutSeconds
	case "diagram":
		seconds = m.cfg.Stages.DiagramTimeoutSeconds
	}
	if seconds <= 0 {
		seconds = 120
	}
	return time.Duration(seconds) * time.Second
}

// Health reports readiness of each stage in order.
func (m *Manager) Health(ctx context.Context) []stage.Health {
	out := make([]stage.Health, 0, len(m.stages))
	for _, h := range m.stages {
		out = append(out, h.HealthCheck(ctx))
	}
	return out
}

// Wait blocks until all in-flight generations finish. Used by tests
// and by shutdown.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Stop cancels in-flight stage work and waits for workers to exit.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
}
