package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"edustream/internal/config"
	"edustream/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyPublished(context.Background(), "beam reactions", "twitter", "123"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

type capture struct {
	title    string
	tags     string
	priority string
	body     string
	calls    int
}

func captureServer(t *testing.T, c *capture) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		c.calls++
		c.title = r.Header.Get("Title")
		c.tags = r.Header.Get("Tags")
		c.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		c.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
}

func serverConfig(url string) config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = url
	cfg.Notifications.RequestTimeout = 5
	return cfg
}

func TestNtfyServiceFormatsMessages(t *testing.T) {
	var got capture
	server := captureServer(t, &got)
	defer server.Close()

	cfg := serverConfig(server.URL)
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyGenerationCompleted(context.Background(), "beam reactions", 12); err != nil {
		t.Fatal(err)
	}
	if got.title != "Edustream - Content Ready" {
		t.Fatalf("title = %q", got.title)
	}
	if got.body != "Generation complete: beam reactions (item 12)" {
		t.Fatalf("body = %q", got.body)
	}
	if got.tags != "edustream,generation,completed" {
		t.Fatalf("tags = %q", got.tags)
	}

	if err := svc.NotifyPublished(context.Background(), "beam reactions", "twitter", "19001"); err != nil {
		t.Fatal(err)
	}
	if got.body != "Published to twitter: beam reactions\nPost: 19001" {
		t.Fatalf("body = %q", got.body)
	}

	if err := svc.NotifyGenerationFailed(context.Background(), "beam reactions", 12, errors.New("renderer crashed")); err != nil {
		t.Fatal(err)
	}
	if got.priority != "high" {
		t.Fatalf("priority = %q", got.priority)
	}
	if got.body != "Generation failed: beam reactions (item 12)\nrenderer crashed" {
		t.Fatalf("body = %q", got.body)
	}
}

func TestNtfyServiceHonorsCategoryToggles(t *testing.T) {
	var got capture
	server := captureServer(t, &got)
	defer server.Close()

	cfg := serverConfig(server.URL)
	cfg.Notifications.Generation = false
	cfg.Notifications.Publish = false
	svc := notifications.NewService(&cfg)

	if err := svc.NotifyGenerationCompleted(context.Background(), "beam reactions", 1); err != nil {
		t.Fatal(err)
	}
	if err := svc.NotifyPublished(context.Background(), "beam reactions", "twitter", ""); err != nil {
		t.Fatal(err)
	}
	if err := svc.NotifyBatchQueued(context.Background(), 4); err != nil {
		t.Fatal(err)
	}
	if got.calls != 0 {
		t.Fatalf("expected suppressed categories to skip delivery, got %d calls", got.calls)
	}

	// errors stay enabled
	if err := svc.NotifyPublishFailed(context.Background(), "beam reactions", "twitter", errors.New("rate limited")); err != nil {
		t.Fatal(err)
	}
	if got.calls != 1 {
		t.Fatalf("expected error notification to go through, got %d calls", got.calls)
	}
}

func TestNtfyServiceSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := serverConfig(server.URL)
	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
