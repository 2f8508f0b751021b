package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"edustream/internal/content"
	"edustream/internal/logging"
	"edustream/internal/notifications"
	"edustream/internal/publish"
	"edustream/internal/services"
	"edustream/internal/store"
)

// Executor performs the actual platform call for one item and records
// the outcome. All publish paths (scheduler tick and operator
// publish-now) funnel through here so the per-item lock plus the
// conditional status update guarantee at most one successful publish
// and exactly one history record for it.
type Executor struct {
	store    *store.Store
	registry *publish.Registry
	notifier notifications.Service
	logger   *slog.Logger
	timeout  time.Duration

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewExecutor builds the shared publish executor.
func NewExecutor(st *store.Store, registry *publish.Registry, notifier notifications.Service, timeout time.Duration, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Executor{
		store:    st,
		registry: registry,
		notifier: notifier,
		logger:   logging.WithComponent(logger, "publish"),
		timeout:  timeout,
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (e *Executor) itemLock(id int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	return l
}

// Publish pushes one item to a platform. entry, when non-nil, is the
// schedule entry being served and is finished alongside the item.
// overrides lets an operator replace the generated caption or hashtags.
// Concurrent attempts on the same item serialize on a per-item lock;
// the loser finds the item already published and returns
// services.ErrInvalidState without a platform call or history record.
func (e *Executor) Publish(ctx context.Context, itemID int64, platform string, entry *store.ScheduleEntry, overrides publish.CaptionOverrides) (*store.HistoryRecord, error) {
	lock := e.itemLock(itemID)
	lock.Lock()
	defer lock.Unlock()

	item, err := e.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "publish", "load item",
			"content item missing", nil)
	}
	if !item.Status.Publishable() {
		return nil, services.Wrap(services.ErrInvalidState, "publish", "load item",
			"content item is "+string(item.Status), nil)
	}

	publisher, err := e.registry.Get(platform)
	if err != nil {
		return nil, err
	}
	if !publisher.Configured() {
		return nil, e.recordFailure(ctx, item, platform, entry,
			services.Wrap(services.ErrNotConfigured, platform, "publish", "credentials missing", nil))
	}

	caption := publish.BuildCaptionWith(item.TopicName, item.ScriptJSON, overrides)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	result, err := publisher.Publish(callCtx, item, caption)
	cancel()
	if err != nil {
		return nil, e.recordFailure(ctx, item, platform, entry, err)
	}

	now := time.Now().UTC()
	if _, err := e.store.TransitionItem(ctx, item.ID, item.Status, content.StatusPublished, nil); err != nil {
		// the platform call went out but the row moved underneath;
		// record the attempt so the post id is not lost
		e.logger.Error("item transition after publish failed",
			logging.Int64(logging.FieldItemID, item.ID),
			logging.Error(err))
	}
	if entry != nil {
		if err := e.store.MarkEntryPublished(ctx, entry.ID, result.PostID, now); err != nil {
			e.logger.Error("finish schedule entry failed",
				logging.Int64("entry_id", entry.ID),
				logging.Error(err))
		}
	}

	record, err := e.store.AppendHistory(ctx, store.HistoryRecord{
		ContentID:      item.ID,
		Platform:       platform,
		Status:         store.SchedulePublished,
		PlatformPostID: result.PostID,
		AttemptKey:     uuid.NewString(),
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("published",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldPlatform, platform),
		logging.String("post_id", result.PostID))
	if e.notifier != nil {
		if err := e.notifier.NotifyPublished(ctx, item.TopicName, platform, result.PostID); err != nil {
			e.logger.Warn("publish notification failed", logging.Error(err))
		}
	}
	return record, nil
}

// recordFailure writes the failed attempt to history, finishes the
// schedule entry and, for scheduler-driven attempts, fails the item.
// Operator publish-now on a ready item leaves the item ready so it can
// be retried or queued normally.
func (e *Executor) recordFailure(ctx context.Context, item *content.Item, platform string, entry *store.ScheduleEntry, cause error) error {
	if _, err := e.store.AppendHistory(ctx, store.HistoryRecord{
		ContentID:    item.ID,
		Platform:     platform,
		Status:       store.ScheduleFailed,
		ErrorMessage: cause.Error(),
		AttemptKey:   uuid.NewString(),
	}); err != nil {
		e.logger.Error("append failure history", logging.Error(err))
	}

	if entry != nil {
		if err := e.store.MarkEntryFailed(ctx, entry.ID, cause.Error()); err != nil {
			e.logger.Error("fail schedule entry", logging.Error(err))
		}
	}
	if item.Status == content.StatusQueued {
		if _, err := e.store.TransitionItem(ctx, item.ID, content.StatusQueued, content.StatusFailed, func(it *content.Item) {
			it.ErrorMessage = cause.Error()
		}); err != nil {
			e.logger.Error("fail item after publish error", logging.Error(err))
		}
	}

	e.logger.Error("publish failed",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldPlatform, platform),
		logging.Error(cause))
	if e.notifier != nil {
		if err := e.notifier.NotifyPublishFailed(ctx, item.TopicName, platform, cause); err != nil {
			e.logger.Warn("failure notification failed", logging.Error(err))
		}
	}
	return cause
}
