// Package llm provides the chat-completions client used as the script
// stage fallback when no pool template matches a pinned topic. It
// speaks the OpenAI-compatible protocol so any compatible gateway
// works as the backend.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"edustream/internal/config"
	"edustream/internal/content"
	"edustream/internal/services"
)

const (
	defaultTimeout = 120 * time.Second
	maxAttempts    = 3
)

// Client calls a chat-completions endpoint and parses the response
// into a script payload.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	sleep      func(context.Context, time.Duration) error
}

type Option func(*Client)

// WithHTTPClient overrides the transport, for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithSleeper overrides the retry backoff sleep, for tests.
func WithSleeper(sleep func(context.Context, time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// New builds a client from the configured connection settings.
func New(cfg config.LLM, opts ...Option) *Client {
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		sleep: sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

const systemPrompt = `You write scripts for 45-second vertical educational videos on engineering mechanics.
Respond with a single JSON object and nothing else, using these keys:
type (one of quiz_abcd, identify, true_false, infographic), hook_text,
diagram_description, content_steps (array of {text, highlight}),
answer_options (array, quiz only), correct_answer (letter, quiz only),
statement (true_false only), key_facts (array, infographic only),
formula, explanation, cta_text, tweet_text.
hook_text and diagram_description are mandatory. Keep hooks under 120
characters and steps under 200 characters each.`

// GenerateScript asks the model for a script covering the given topic.
// Retries transient transport and server errors with backoff.
func (c *Client) GenerateScript(ctx context.Context, topic, category, description string) (*content.Script, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, services.Wrap(services.ErrNotConfigured, "llm", "generate", "api key not set", nil)
	}

	user := fmt.Sprintf("Topic: %s", topic)
	if category != "" {
		user += fmt.Sprintf("\nCategory: %s", category)
	}
	if description != "" {
		user += fmt.Sprintf("\nNotes: %s", description)
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature:    0.8,
		ResponseFormat: &respFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, services.Wrap(services.ErrStageFailure, "llm", "generate", "encode request", err)
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, backoff(attempt)); err != nil {
				return nil, err
			}
		}
		script, retryable, err := c.once(ctx, payload)
		if err == nil {
			return script, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}
	return nil, lastErr
}

func backoff(attempt int) time.Duration {
	return time.Duration(attempt-1) * 2 * time.Second
}

func (c *Client) once(ctx context.Context, payload []byte) (*content.Script, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, false, services.Wrap(services.ErrStageFailure, "llm", "generate", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, services.Wrap(services.ErrStageFailure, "llm", "generate", "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, true, services.Wrap(services.ErrStageFailure, "llm", "generate", "read response", err)
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, services.Wrap(services.ErrStageFailure, "llm", "generate",
			fmt.Sprintf("server returned status %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, services.Wrap(services.ErrStageFailure, "llm", "generate",
			fmt.Sprintf("server returned status %d: %s", resp.StatusCode, truncate(string(body), 200)), nil)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, false, services.Wrap(services.ErrStageFailure, "llm", "generate", "decode response", err)
	}
	if parsed.Error != nil {
		return nil, false, services.Wrap(services.ErrStageFailure, "llm", "generate", parsed.Error.Message, nil)
	}
	if len(parsed.Choices) == 0 {
		return nil, false, services.Wrap(services.ErrStageFailure, "llm", "generate", "response contained no choices", nil)
	}

	script, err := parseScript(parsed.Choices[0].Message.Content)
	if err != nil {
		return nil, false, err
	}
	return script, false, nil
}

// parseScript decodes the model output, tolerating markdown code
// fences around the JSON object.
func parseScript(raw string) (*content.Script, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		if idx := strings.LastIndex(raw, "```"); idx >= 0 {
			raw = raw[:idx]
		}
		raw = strings.TrimSpace(raw)
	}
	script, err := content.DecodeScript(raw)
	if err != nil {
		return nil, services.Wrap(services.ErrStageFailure, "llm", "generate", "model returned malformed script", err)
	}
	if err := script.Validate(); err != nil {
		return nil, services.Wrap(services.ErrStageFailure, "llm", "generate", "model returned incomplete script", err)
	}
	return script, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
