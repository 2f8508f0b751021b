// Package api defines the JSON types of the daemon's control API and
// the typed client the CLI uses to call it.
package api

import "time"

// GenerateRequest asks the daemon to generate one piece of content.
type GenerateRequest struct {
	Topic       string `json:"topic"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// BatchGenerateRequest asks for several items at once.
type BatchGenerateRequest struct {
	Requests []GenerateRequest `json:"requests"`
}

// ContentItem mirrors one content row.
type ContentItem struct {
	ID           int64  `json:"id"`
	TopicName    string `json:"topic_name"`
	Category     string `json:"category,omitempty"`
	Description  string `json:"description,omitempty"`
	ContentType  string `json:"content_type"`
	TemplateID   string `json:"template_id,omitempty"`
	Status       string `json:"status"`
	DiagramPath  string `json:"diagram_path,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// ContentListResponse lists items.
type ContentListResponse struct {
	Items []ContentItem `json:"items"`
}

// BatchGenerateResponse lists the accepted items.
type BatchGenerateResponse struct {
	Items []ContentItem `json:"items"`
}

// QueueRequest schedules one item on a platform. ScheduledAt is
// RFC 3339; empty means the next free slot.
type QueueRequest struct {
	ContentID   int64  `json:"content_id"`
	Platform    string `json:"platform"`
	ScheduledAt string `json:"scheduled_at,omitempty"`
}

// QueueAllRequest schedules every ready item on a platform.
type QueueAllRequest struct {
	Platform string `json:"platform"`
}

// PublishRequest publishes one item immediately. Caption and Hashtags
// are optional operator overrides for the generated caption.
type PublishRequest struct {
	ContentID int64    `json:"content_id"`
	Platform  string   `json:"platform"`
	Caption   string   `json:"caption,omitempty"`
	Hashtags  []string `json:"hashtags,omitempty"`
}

// ScheduleEntry mirrors one publish queue row.
type ScheduleEntry struct {
	ID             int64      `json:"id"`
	ContentID      int64      `json:"content_id"`
	Platform       string     `json:"platform"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	Status         string     `json:"status"`
	PlatformPostID string     `json:"platform_post_id,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
}

// QueueResponse wraps one entry.
type QueueResponse struct {
	Entry ScheduleEntry `json:"entry"`
}

// QueueListResponse lists entries.
type QueueListResponse struct {
	Entries []ScheduleEntry `json:"entries"`
}

// QueueStatusResponse summarizes the publish queue.
type QueueStatusResponse struct {
	Pending         []ScheduleEntry `json:"pending"`
	IntervalMinutes int             `json:"interval_minutes"`
	NextDue         *ScheduleEntry  `json:"next_due,omitempty"`
}

// HistoryRecord mirrors one append-only publish attempt.
type HistoryRecord struct {
	ID             int64  `json:"id"`
	ContentID      int64  `json:"content_id"`
	Platform       string `json:"platform"`
	Status         string `json:"status"`
	PlatformPostID string `json:"platform_post_id,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
	AttemptKey     string `json:"attempt_key"`
	CreatedAt      string `json:"created_at"`
}

// HistoryResponse lists publish attempts for one item.
type HistoryResponse struct {
	Records []HistoryRecord `json:"records"`
}

// IntervalRequest sets the publish spacing.
type IntervalRequest struct {
	Minutes int `json:"minutes"`
}

// IntervalResponse reports the effective publish spacing.
type IntervalResponse struct {
	Minutes int `json:"minutes"`
}

// PlatformsResponse lists registered and configured platforms.
type PlatformsResponse struct {
	Platforms  []string `json:"platforms"`
	Configured []string `json:"configured"`
}

// StageHealth reports one stage's readiness.
type StageHealth struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus reports daemon runtime information.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	DBPath       string         `json:"db_path"`
	LockFilePath string         `json:"lock_file_path"`
	ItemCounts   map[string]int `json:"item_counts"`
	Stages       []StageHealth  `json:"stages"`
}

// ErrorResponse carries an API error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
