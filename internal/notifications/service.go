package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"edustream/internal/config"
)

const userAgent = "Edustream/0.1.0"

// Service defines the notification surface exposed to the pipeline and
// the publish scheduler.
type Service interface {
	NotifyGenerationCompleted(ctx context.Context, topic string, itemID int64) error
	NotifyGenerationFailed(ctx context.Context, topic string, itemID int64, cause error) error
	NotifyPublished(ctx context.Context, topic, platform, postID string) error
	NotifyPublishFailed(ctx context.Context, topic, platform string, cause error) error
	NotifyBatchQueued(ctx context.Context, count int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when a topic
// is configured. Without a topic, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	endpoint := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:   endpoint,
		client:     &http.Client{Timeout: timeout},
		generation: cfg.Notifications.Generation,
		publish:    cfg.Notifications.Publish,
		errors:     cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	generation bool
	publish    bool
	errors     bool
}

func (n *ntfyService) NotifyGenerationCompleted(ctx context.Context, topic string, itemID int64) error {
	if !n.generation {
		return nil
	}
	topic = strings.TrimSpace(topic)
	data := payload{
		title:   "Edustream - Content Ready",
		message: fmt.Sprintf("Generation complete: %s (item %d)", topic, itemID),
		tags:    []string{"edustream", "generation", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyGenerationFailed(ctx context.Context, topic string, itemID int64, cause error) error {
	if !n.errors {
		return nil
	}
	topic = strings.TrimSpace(topic)
	detail := "unknown"
	if cause != nil {
		detail = strings.TrimSpace(cause.Error())
	}
	data := payload{
		title:    "Edustream - Generation Failed",
		message:  fmt.Sprintf("Generation failed: %s (item %d)\n%s", topic, itemID, detail),
		tags:     []string{"edustream", "generation", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublished(ctx context.Context, topic, platform, postID string) error {
	if !n.publish {
		return nil
	}
	topic = strings.TrimSpace(topic)
	message := fmt.Sprintf("Published to %s: %s", platform, topic)
	if postID != "" {
		message = fmt.Sprintf("%s\nPost: %s", message, postID)
	}
	data := payload{
		title:   "Edustream - Published",
		message: message,
		tags:    []string{"edustream", "publish", platform},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishFailed(ctx context.Context, topic, platform string, cause error) error {
	if !n.errors {
		return nil
	}
	detail := "unknown"
	if cause != nil {
		detail = strings.TrimSpace(cause.Error())
	}
	data := payload{
		title:    "Edustream - Publish Failed",
		message:  fmt.Sprintf("Publish to %s failed: %s\n%s", platform, strings.TrimSpace(topic), detail),
		tags:     []string{"edustream", "publish", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchQueued(ctx context.Context, count int) error {
	if !n.publish {
		return nil
	}
	data := payload{
		title:   "Edustream - Queue Updated",
		message: fmt.Sprintf("Scheduled %d items for publishing", count),
		tags:    []string{"edustream", "queue"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Edustream - Test",
		message:  "Notification system test",
		tags:     []string{"edustream", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyGenerationCompleted(context.Context, string, int64) error        { return nil }
func (noopService) NotifyGenerationFailed(context.Context, string, int64, error) error    { return nil }
func (noopService) NotifyPublished(context.Context, string, string, string) error         { return nil }
func (noopService) NotifyPublishFailed(context.Context, string, string, error) error      { return nil }
func (noopService) NotifyBatchQueued(context.Context, int) error                          { return nil }
func (noopService) TestNotification(context.Context) error                                { return nil }
