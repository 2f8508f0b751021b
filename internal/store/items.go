package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"edustream/internal/content"
	"edustream/internal/services"
)

const itemColumns = "id, topic_name, category, description, content_type, template_id, script_json, diagram_path, audio_path, video_path, status, error_message, created_at, updated_at"

// CreateItem inserts a new content item in draft status.
func (s *Store) CreateItem(ctx context.Context, topicName, category, description string, contentType content.Type) (*content.Item, error) {
	ctx = ensureContext(ctx)
	timestamp := formatTime(time.Now())

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO content_items (
            topic_name, category, description, content_type, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullableString(topicName),
		nullableString(category),
		nullableString(description),
		string(contentType),
		string(content.StatusDraft),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert content item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItem(ctx, id)
}

// GetItem fetches a content item by identifier. Returns nil when absent.
func (s *Store) GetItem(ctx context.Context, id int64) (*content.Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM content_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content item: %w", err)
	}
	return item, nil
}

// ListItems returns content items filtered by status set (or all items
// when no status is provided), oldest first.
func (s *Store) ListItems(ctx context.Context, statuses ...content.Status) ([]*content.Item, error) {
	ctx = ensureContext(ctx)
	baseQuery := `SELECT ` + itemColumns + ` FROM content_items`
	orderClause := ` ORDER BY created_at, id`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = string(status)
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}
	defer rows.Close()

	var items []*content.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// TransitionItem applies a compare-and-set status transition: the edge
// must be legal per content.CanTransition and the row must still hold the
// expected status at update time. mutate, when non-nil, adjusts the
// remaining fields under the same conditional write. Returns the updated
// item, or services.ErrInvalidState when the item moved underneath.
func (s *Store) TransitionItem(ctx context.Context, id int64, from, to content.Status, mutate func(*content.Item)) (*content.Item, error) {
	ctx = ensureContext(ctx)
	if !content.CanTransition(from, to) {
		return nil, services.Wrap(services.ErrInvalidState, "store", "transition",
			fmt.Sprintf("illegal edge %s -> %s", from, to), nil)
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, services.Wrap(services.ErrNotFound, "store", "transition",
			fmt.Sprintf("content item %d", id), nil)
	}
	if item.Status != from {
		return nil, services.Wrap(services.ErrInvalidState, "store", "transition",
			fmt.Sprintf("content item %d is %s, expected %s", id, item.Status, from), nil)
	}

	updated := *item
	updated.Status = to
	if mutate != nil {
		mutate(&updated)
		updated.Status = to // mutate may not override the edge
	}
	updated.UpdatedAt = time.Now().UTC()

	res, err := s.execWithRetry(
		ctx,
		`UPDATE content_items
         SET topic_name = ?, category = ?, description = ?, content_type = ?,
             template_id = ?, script_json = ?, diagram_path = ?, audio_path = ?,
             video_path = ?, status = ?, error_message = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		nullableString(updated.TopicName),
		nullableString(updated.Category),
		nullableString(updated.Description),
		string(updated.ContentType),
		nullableString(updated.TemplateID),
		nullableString(updated.ScriptJSON),
		nullableString(updated.DiagramPath),
		nullableString(updated.AudioPath),
		nullableString(updated.VideoPath),
		string(updated.Status),
		nullableString(updated.ErrorMessage),
		formatTime(updated.UpdatedAt),
		id,
		string(from),
	)
	if err != nil {
		return nil, fmt.Errorf("transition content item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, services.Wrap(services.ErrInvalidState, "store", "transition",
			fmt.Sprintf("content item %d changed concurrently", id), nil)
	}
	return &updated, nil
}

// DeleteItem removes an item and its schedule entries. History records
// are retained for audit.
func (s *Store) DeleteItem(ctx context.Context, id int64) (bool, error) {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, `DELETE FROM content_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete content item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Stats returns a count of items grouped by status.
func (s *Store) Stats(ctx context.Context) (map[content.Status]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM content_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("content stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[content.Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[content.Status(status)] = count
	}
	return stats, rows.Err()
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*content.Item, error) {
	var (
		id           int64
		topicName    sql.NullString
		category     sql.NullString
		description  sql.NullString
		contentType  string
		templateID   sql.NullString
		scriptJSON   sql.NullString
		diagramPath  sql.NullString
		audioPath    sql.NullString
		videoPath    sql.NullString
		statusStr    string
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&topicName,
		&category,
		&description,
		&contentType,
		&templateID,
		&scriptJSON,
		&diagramPath,
		&audioPath,
		&videoPath,
		&statusStr,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &content.Item{
		ID:           id,
		TopicName:    topicName.String,
		Category:     category.String,
		Description:  description.String,
		ContentType:  content.Type(contentType),
		TemplateID:   templateID.String,
		ScriptJSON:   scriptJSON.String,
		DiagramPath:  diagramPath.String,
		AudioPath:    audioPath.String,
		VideoPath:    videoPath.String,
		Status:       content.Status(statusStr),
		ErrorMessage: errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}
