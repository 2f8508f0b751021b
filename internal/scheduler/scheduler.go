// Package scheduler owns the durable publish queue and the background
// loop that drains it one entry per tick.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"edustream/internal/config"
	"edustream/internal/content"
	"edustream/internal/logging"
	"edustream/internal/notifications"
	"edustream/internal/publish"
	"edustream/internal/services"
	"edustream/internal/store"
)

// Scheduler queues ready content for publishing and drains due entries
// on a fixed tick.
type Scheduler struct {
	cfg      *config.Config
	store    *store.Store
	executor *Executor
	notifier notifications.Service
	logger   *slog.Logger
	now      func() time.Time
}

// New builds a scheduler around the shared publish executor.
func New(cfg *config.Config, st *store.Store, executor *Executor, notifier notifications.Service, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{
		cfg:      cfg,
		store:    st,
		executor: executor,
		notifier: notifier,
		logger:   logging.WithComponent(logger, "scheduler"),
		now:      time.Now,
	}
}

// Interval reports the publish spacing in minutes, preferring the
// runtime override stored in the database over the config value.
func (s *Scheduler) Interval(ctx context.Context) int {
	return s.store.PublishIntervalMinutes(ctx, s.cfg.Publishing.IntervalMinutes)
}

// SetInterval stores a runtime publish-spacing override.
func (s *Scheduler) SetInterval(ctx context.Context, minutes int) error {
	if minutes <= 0 {
		return services.Wrap(services.ErrInvalidState, "scheduler", "set interval",
			fmt.Sprintf("interval must be positive, got %d", minutes), nil)
	}
	return s.store.SetSetting(ctx, store.SettingPublishInterval, strconv.Itoa(minutes))
}

// nextSlot computes the default publish slot: one interval after the
// last pending entry, or a short delay from now when the queue is
// empty.
func (s *Scheduler) nextSlot(ctx context.Context) (time.Time, error) {
	last, ok, err := s.store.LastPendingSlot(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if ok {
		return last.Add(time.Duration(s.Interval(ctx)) * time.Minute), nil
	}
	return s.now().UTC().Add(time.Duration(s.cfg.Publishing.FirstSlotDelayMinutes) * time.Minute), nil
}

// Queue schedules one ready item for a platform. A nil at picks the
// next free slot. The item moves to queued; an item already queued for
// another platform stays queued.
func (s *Scheduler) Queue(ctx context.Context, contentID int64, platform string, at *time.Time) (*store.ScheduleEntry, error) {
	item, err := s.store.GetItem(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "scheduler", "queue",
			fmt.Sprintf("content item %d", contentID), nil)
	}
	if !item.Status.Publishable() {
		return nil, services.Wrap(services.ErrInvalidState, "scheduler", "queue",
			fmt.Sprintf("content item %d is %s", contentID, item.Status), nil)
	}
	published, err := s.store.HasPublished(ctx, contentID, platform)
	if err != nil {
		return nil, err
	}
	if published {
		return nil, services.Wrap(services.ErrInvalidState, "scheduler", "queue",
			fmt.Sprintf("content item %d was already published on %s", contentID, platform), nil)
	}

	slot := time.Time{}
	if at != nil {
		slot = at.UTC()
	} else {
		slot, err = s.nextSlot(ctx)
		if err != nil {
			return nil, err
		}
	}

	entry, err := s.store.CreateScheduleEntry(ctx, contentID, platform, slot)
	if err != nil {
		return nil, err
	}

	if item.Status == content.StatusReady {
		if _, err := s.store.TransitionItem(ctx, contentID, content.StatusReady, content.StatusQueued, nil); err != nil {
			return nil, err
		}
	}

	s.logger.Info("queued",
		logging.Int64(logging.FieldItemID, contentID),
		logging.String(logging.FieldPlatform, platform),
		logging.Time("slot", entry.ScheduledAt))
	return entry, nil
}

// QueueAll schedules every ready item for the platform, spaced one
// interval apart in creation order. Items that already hold a pending
// entry for the platform are skipped.
func (s *Scheduler) QueueAll(ctx context.Context, platform string) ([]*store.ScheduleEntry, error) {
	items, err := s.store.ListItems(ctx, content.StatusReady)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	slot, err := s.nextSlot(ctx)
	if err != nil {
		return nil, err
	}
	interval := time.Duration(s.Interval(ctx)) * time.Minute

	entries := make([]*store.ScheduleEntry, 0, len(items))
	for _, item := range items {
		entry, err := s.Queue(ctx, item.ID, platform, &slot)
		if errors.Is(err, services.ErrDuplicateSchedule) {
			continue
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
		slot = slot.Add(interval)
	}

	if s.notifier != nil && len(entries) > 0 {
		if err := s.notifier.NotifyBatchQueued(ctx, len(entries)); err != nil {
			s.logger.Warn("batch notification failed", logging.Error(err))
		}
	}
	return entries, nil
}

// PublishNow bypasses the queue and publishes immediately. When a
// pending entry exists for the pair it is finished alongside the item
// so the scheduler does not try to publish it again. overrides carries
// an operator caption or hashtag list; zero means the generated ones.
func (s *Scheduler) PublishNow(ctx context.Context, contentID int64, platform string, overrides publish.CaptionOverrides) (*store.HistoryRecord, error) {
	entry, err := s.pendingEntryFor(ctx, contentID, platform)
	if err != nil {
		return nil, err
	}
	return s.executor.Publish(ctx, contentID, platform, entry, overrides)
}

func (s *Scheduler) pendingEntryFor(ctx context.Context, contentID int64, platform string) (*store.ScheduleEntry, error) {
	pending, err := s.store.PendingEntries(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range pending {
		if entry.ContentID == contentID && entry.Platform == platform {
			return entry, nil
		}
	}
	return nil, nil
}

// Status summarizes the queue for operators.
type Status struct {
	Pending         []*store.ScheduleEntry
	IntervalMinutes int
	NextDue         *store.ScheduleEntry
}

// QueueStatus reports the pending entries, the effective interval and
// the entry the next tick would serve.
func (s *Scheduler) QueueStatus(ctx context.Context) (*Status, error) {
	pending, err := s.store.PendingEntries(ctx)
	if err != nil {
		return nil, err
	}
	due, err := s.store.NextDueEntry(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}
	return &Status{
		Pending:         pending,
		IntervalMinutes: s.Interval(ctx),
		NextDue:         due,
	}, nil
}

// Run drains the queue until ctx is cancelled, serving at most one due
// entry per tick so publishes stay spaced even after downtime.
func (s *Scheduler) Run(ctx context.Context) error {
	tick := time.Duration(s.cfg.Publishing.SchedulerTickSeconds) * time.Second
	if tick <= 0 {
		tick = time.Minute
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	s.logger.Info("scheduler started", logging.Duration("tick", tick))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Error("tick failed", logging.Error(err))
			}
		}
	}
}

// Tick serves the single oldest due entry, if any.
func (s *Scheduler) Tick(ctx context.Context) error {
	entry, err := s.store.NextDueEntry(ctx, s.now().UTC())
	if err != nil {
		return err
	}
	if entry == nil {
		return nil
	}

	_, err = s.executor.Publish(ctx, entry.ContentID, entry.Platform, entry, publish.CaptionOverrides{})
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrInvalidState) {
		// the item vanished or was published out of band; retire the
		// entry instead of retrying it every tick
		if markErr := s.store.MarkEntryFailed(ctx, entry.ID, err.Error()); markErr != nil {
			s.logger.Error("retire stale entry", logging.Error(markErr))
		}
		return nil
	}
	if err != nil {
		// executor already recorded the failure
		return nil
	}
	return nil
}
