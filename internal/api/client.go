package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client calls the daemon control API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a client for the daemon at baseURL. token may be
// empty when the daemon runs without authentication.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call daemon: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Generate submits one generation request.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*ContentItem, error) {
	var item ContentItem
	if err := c.do(ctx, http.MethodPost, "/api/generate", req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// GenerateBatch submits several generation requests.
func (c *Client) GenerateBatch(ctx context.Context, reqs []GenerateRequest) ([]ContentItem, error) {
	var resp BatchGenerateResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate/batch", BatchGenerateRequest{Requests: reqs}, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// ListContent lists items, optionally filtered by status.
func (c *Client) ListContent(ctx context.Context, statuses ...string) ([]ContentItem, error) {
	path := "/api/content"
	if len(statuses) > 0 {
		path += "?status=" + strings.Join(statuses, "&status=")
	}
	var resp ContentListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// GetContent fetches one item.
func (c *Client) GetContent(ctx context.Context, id int64) (*ContentItem, error) {
	var item ContentItem
	if err := c.do(ctx, http.MethodGet, "/api/content/"+strconv.FormatInt(id, 10), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteContent removes one item and its schedule entries.
func (c *Client) DeleteContent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/content/"+strconv.FormatInt(id, 10), nil, nil)
}

// RetryContent restarts generation for a failed item.
func (c *Client) RetryContent(ctx context.Context, id int64) (*ContentItem, error) {
	var item ContentItem
	if err := c.do(ctx, http.MethodPost, "/api/content/"+strconv.FormatInt(id, 10)+"/retry", nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Queue schedules one item.
func (c *Client) Queue(ctx context.Context, req QueueRequest) (*ScheduleEntry, error) {
	var resp QueueResponse
	if err := c.do(ctx, http.MethodPost, "/api/queue", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Entry, nil
}

// QueueAll schedules every ready item.
func (c *Client) QueueAll(ctx context.Context, platform string) ([]ScheduleEntry, error) {
	var resp QueueListResponse
	if err := c.do(ctx, http.MethodPost, "/api/queue/all", QueueAllRequest{Platform: platform}, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// QueueStatus reports the publish queue.
func (c *Client) QueueStatus(ctx context.Context) (*QueueStatusResponse, error) {
	var resp QueueStatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/queue/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Publish posts one item immediately.
func (c *Client) Publish(ctx context.Context, req PublishRequest) (*HistoryRecord, error) {
	var record HistoryRecord
	if err := c.do(ctx, http.MethodPost, "/api/publish", req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// History lists publish attempts for one item.
func (c *Client) History(ctx context.Context, contentID int64) ([]HistoryRecord, error) {
	var resp HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/api/content/"+strconv.FormatInt(contentID, 10)+"/history", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// Interval reports the publish spacing.
func (c *Client) Interval(ctx context.Context) (int, error) {
	var resp IntervalResponse
	if err := c.do(ctx, http.MethodGet, "/api/settings/interval", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Minutes, nil
}

// SetInterval stores a publish spacing override.
func (c *Client) SetInterval(ctx context.Context, minutes int) error {
	return c.do(ctx, http.MethodPut, "/api/settings/interval", IntervalRequest{Minutes: minutes}, nil)
}

// Platforms lists registered and configured platforms.
func (c *Client) Platforms(ctx context.Context) (*PlatformsResponse, error) {
	var resp PlatformsResponse
	if err := c.do(ctx, http.MethodGet, "/api/platforms", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status reports daemon runtime information.
func (c *Client) Status(ctx context.Context) (*DaemonStatus, error) {
	var resp DaemonStatus
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
