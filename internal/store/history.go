package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// HistoryRecord is one append-only publish attempt outcome.
type HistoryRecord struct {
	ID             int64
	ContentID      int64
	Platform       string
	Status         ScheduleStatus
	PlatformPostID string
	ErrorMessage   string
	AttemptKey     string
	CreatedAt      time.Time
}

const historyColumns = "id, content_id, platform, status, platform_post_id, error_message, attempt_key, created_at"

// AppendHistory records one publish attempt. Write-once; no update or
// delete path exists.
func (s *Store) AppendHistory(ctx context.Context, record HistoryRecord) (*HistoryRecord, error) {
	ctx = ensureContext(ctx)
	record.CreatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO publish_history (content_id, platform, status, platform_post_id, error_message, attempt_key, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ContentID,
		record.Platform,
		string(record.Status),
		nullableString(record.PlatformPostID),
		nullableString(record.ErrorMessage),
		record.AttemptKey,
		formatTime(record.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("append history: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	record.ID = id
	return &record, nil
}

// HistoryForContent returns all records for an item, newest first.
func (s *Store) HistoryForContent(ctx context.Context, contentID int64) ([]*HistoryRecord, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+historyColumns+` FROM publish_history WHERE content_id = ? ORDER BY created_at DESC, id DESC`,
		contentID,
	)
	if err != nil {
		return nil, fmt.Errorf("history for content: %w", err)
	}
	defer rows.Close()

	var records []*HistoryRecord
	for rows.Next() {
		record, err := scanHistory(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// HasPublished reports whether the item already has a successful publish
// record for the platform.
func (s *Store) HasPublished(ctx context.Context, contentID int64, platform string) (bool, error) {
	ctx = ensureContext(ctx)
	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM publish_history WHERE content_id = ? AND platform = ? AND status = ?`,
		contentID,
		platform,
		string(SchedulePublished),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check published history: %w", err)
	}
	return count > 0, nil
}

func scanHistory(scanner interface{ Scan(dest ...any) error }) (*HistoryRecord, error) {
	var (
		id           int64
		contentID    int64
		platform     string
		statusStr    string
		postID       sql.NullString
		errorMessage sql.NullString
		attemptKey   string
		createdRaw   sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&contentID,
		&platform,
		&statusStr,
		&postID,
		&errorMessage,
		&attemptKey,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	record := &HistoryRecord{
		ID:             id,
		ContentID:      contentID,
		Platform:       platform,
		Status:         ScheduleStatus(statusStr),
		PlatformPostID: postID.String,
		ErrorMessage:   errorMessage.String,
		AttemptKey:     attemptKey,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	return record, nil
}
