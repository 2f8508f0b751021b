package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"edustream/internal/services"
)

// ScheduleStatus is the lifecycle of a schedule entry.
type ScheduleStatus string

const (
	SchedulePending   ScheduleStatus = "pending"
	SchedulePublished ScheduleStatus = "published"
	ScheduleFailed    ScheduleStatus = "failed"
)

// ScheduleEntry is one queued publish intent.
type ScheduleEntry struct {
	ID             int64
	ContentID      int64
	Platform       string
	ScheduledAt    time.Time
	PublishedAt    *time.Time
	Status         ScheduleStatus
	PlatformPostID string
	ErrorMessage   string
	CreatedAt      time.Time
}

const entryColumns = "id, content_id, platform, scheduled_at, published_at, status, platform_post_id, error_message, created_at"

// CreateScheduleEntry inserts a pending entry. The partial unique index
// on (content_id, platform) rejects a second pending entry for the pair;
// that surfaces as services.ErrDuplicateSchedule.
func (s *Store) CreateScheduleEntry(ctx context.Context, contentID int64, platform string, scheduledAt time.Time) (*ScheduleEntry, error) {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO schedule_entries (content_id, platform, scheduled_at, status, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		contentID,
		platform,
		formatTime(scheduledAt),
		string(SchedulePending),
		formatTime(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, services.Wrap(services.ErrDuplicateSchedule, "store", "schedule",
				fmt.Sprintf("content %d already pending for %s", contentID, platform), nil)
		}
		return nil, fmt.Errorf("insert schedule entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetScheduleEntry(ctx, id)
}

// GetScheduleEntry fetches an entry by identifier. Returns nil when absent.
func (s *Store) GetScheduleEntry(ctx context.Context, id int64) (*ScheduleEntry, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM schedule_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schedule entry: %w", err)
	}
	return entry, nil
}

// NextDueEntry returns the earliest pending entry with scheduled_at <= now,
// ties broken by insertion order. Returns nil when nothing is due.
func (s *Store) NextDueEntry(ctx context.Context, now time.Time) (*ScheduleEntry, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+entryColumns+` FROM schedule_entries
         WHERE status = ? AND scheduled_at <= ?
         ORDER BY scheduled_at, id LIMIT 1`,
		string(SchedulePending),
		formatTime(now),
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("next due entry: %w", err)
	}
	return entry, nil
}

// PendingEntries returns all pending entries ordered by scheduled_at.
func (s *Store) PendingEntries(ctx context.Context) ([]*ScheduleEntry, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM schedule_entries WHERE status = ? ORDER BY scheduled_at, id`,
		string(SchedulePending),
	)
	if err != nil {
		return nil, fmt.Errorf("pending entries: %w", err)
	}
	defer rows.Close()

	var entries []*ScheduleEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// LastPendingSlot returns the latest scheduled_at among pending entries.
func (s *Store) LastPendingSlot(ctx context.Context) (time.Time, bool, error) {
	ctx = ensureContext(ctx)
	var raw sql.NullString
	err := s.db.QueryRowContext(
		ctx,
		`SELECT MAX(scheduled_at) FROM schedule_entries WHERE status = ?`,
		string(SchedulePending),
	).Scan(&raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last pending slot: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, false, nil
	}
	slot, err := parseTimeString(raw.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse pending slot: %w", err)
	}
	return slot, true, nil
}

// MarkEntryPublished flips a pending entry to published. Conditional on
// the entry still being pending so a second processing pass cannot
// overwrite an outcome.
func (s *Store) MarkEntryPublished(ctx context.Context, id int64, postID string, publishedAt time.Time) error {
	return s.finishEntry(ctx, id, SchedulePublished, postID, "", &publishedAt)
}

// MarkEntryFailed flips a pending entry to failed with the given error.
func (s *Store) MarkEntryFailed(ctx context.Context, id int64, message string) error {
	return s.finishEntry(ctx, id, ScheduleFailed, "", message, nil)
}

func (s *Store) finishEntry(ctx context.Context, id int64, status ScheduleStatus, postID, message string, publishedAt *time.Time) error {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(
		ctx,
		`UPDATE schedule_entries
         SET status = ?, platform_post_id = ?, error_message = ?, published_at = ?
         WHERE id = ? AND status = ?`,
		string(status),
		nullableString(postID),
		nullableString(message),
		nullableTime(publishedAt),
		id,
		string(SchedulePending),
	)
	if err != nil {
		return fmt.Errorf("finish schedule entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrInvalidState, "store", "schedule",
			fmt.Sprintf("entry %d is no longer pending", id), nil)
	}
	return nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*ScheduleEntry, error) {
	var (
		id           int64
		contentID    int64
		platform     string
		scheduledRaw string
		publishedRaw sql.NullString
		statusStr    string
		postID       sql.NullString
		errorMessage sql.NullString
		createdRaw   sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&contentID,
		&platform,
		&scheduledRaw,
		&publishedRaw,
		&statusStr,
		&postID,
		&errorMessage,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	entry := &ScheduleEntry{
		ID:             id,
		ContentID:      contentID,
		Platform:       platform,
		Status:         ScheduleStatus(statusStr),
		PlatformPostID: postID.String,
		ErrorMessage:   errorMessage.String,
	}
	if scheduled, err := parseTimeString(scheduledRaw); err == nil {
		entry.ScheduledAt = scheduled
	}
	if publishedRaw.Valid {
		if published, err := parseTimeString(publishedRaw.String); err == nil {
			entry.PublishedAt = &published
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		entry.CreatedAt = created
	}
	return entry, nil
}
