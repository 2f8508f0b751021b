package main

import (
	"context"
	"strings"
	"testing"

	"edustream/internal/content"
	"edustream/internal/testsupport"
)

func TestCLIGenerateAndContentCommands(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "generate", "beam reactions simply supported", "--category", "statics")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	requireContains(t, out, "Accepted #1")

	waitForItemStatus(t, env, 1, content.StatusReady)

	out, _, err = runCLI(t, env, "content", "list")
	if err != nil {
		t.Fatalf("content list: %v", err)
	}
	requireContains(t, out, "beam reactions simply supported")
	requireContains(t, out, "ready")

	out, _, err = runCLI(t, env, "content", "list", "--status", "failed")
	if err != nil {
		t.Fatalf("content list --status failed: %v", err)
	}
	requireContains(t, out, "No content items found")

	out, _, err = runCLI(t, env, "content", "show", "1")
	if err != nil {
		t.Fatalf("content show: %v", err)
	}
	requireContains(t, out, "beam reactions simply supported")
	requireContains(t, out, "ready")

	// retry only applies to failed items
	if _, _, err := runCLI(t, env, "content", "retry", "1"); err == nil {
		t.Fatal("expected retry of a ready item to fail")
	}

	out, _, err = runCLI(t, env, "content", "delete", "1")
	if err != nil {
		t.Fatalf("content delete: %v", err)
	}
	requireContains(t, out, "Deleted #1")

	item, err := env.store.GetItem(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item != nil {
		t.Fatalf("expected item removed, got %+v", item)
	}
}

func TestCLIGenerateRequiresTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, env, "generate"); err == nil {
		t.Fatal("expected an error without a topic or --file")
	}
}

func TestCLIQueuePublishAndHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item := newReadyCLIItem(t, env, "torsion of a shaft")

	out, _, err := runCLI(t, env, "queue", "add", "1")
	if err != nil {
		t.Fatalf("queue add: %v", err)
	}
	requireContains(t, out, "Queued #1 on twitter")

	out, _, err = runCLI(t, env, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "twitter")
	requireContains(t, out, "Publish interval: 30 minutes")

	// duplicate pending entry is rejected
	if _, _, err := runCLI(t, env, "queue", "add", "1"); err == nil {
		t.Fatal("expected duplicate queue add to fail")
	}

	out, _, err = runCLI(t, env, "publish", "1")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	requireContains(t, out, "Published #1 on twitter (post post-7)")

	updated, err := env.store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if updated.Status != content.StatusPublished {
		t.Fatalf("expected published item, got %s", updated.Status)
	}

	out, _, err = runCLI(t, env, "history", "1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "published")
	requireContains(t, out, "post-7")

	out, _, err = runCLI(t, env, "queue", "status")
	if err != nil {
		t.Fatalf("queue status after publish: %v", err)
	}
	requireContains(t, out, "Publish queue is empty")
}

func TestCLIPublishWithCaptionAndHashtags(t *testing.T) {
	env := setupCLITestEnv(t)

	newReadyCLIItem(t, env, "torsion of a shaft")

	out, _, err := runCLI(t, env, "publish", "1",
		"--caption", "Torsion rerun for the midterm crowd.",
		"--hashtag", "#Torsion", "--hashtag", "shaft design")
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	requireContains(t, out, "Published #1 on twitter (post post-7)")

	want := "Torsion rerun for the midterm crowd.\n\n#Torsion #ShaftDesign"
	if got := env.publisher.lastCaption(); got != want {
		t.Fatalf("caption = %q, want %q", got, want)
	}
}

func TestCLIQueueAllAndInterval(t *testing.T) {
	env := setupCLITestEnv(t)

	newReadyCLIItem(t, env, "shear force diagrams")
	newReadyCLIItem(t, env, "Euler buckling")

	out, _, err := runCLI(t, env, "queue", "interval", "45")
	if err != nil {
		t.Fatalf("queue interval 45: %v", err)
	}
	requireContains(t, out, "Publish interval set to 45 minutes")

	out, _, err = runCLI(t, env, "queue", "all")
	if err != nil {
		t.Fatalf("queue all: %v", err)
	}
	requireContains(t, out, "Queued 2 items on twitter")

	out, _, err = runCLI(t, env, "queue", "interval")
	if err != nil {
		t.Fatalf("queue interval: %v", err)
	}
	requireContains(t, out, "Publish interval: 45 minutes")

	if _, _, err := runCLI(t, env, "queue", "interval", "0"); err == nil {
		t.Fatal("expected zero interval to be rejected")
	}
}

func TestCLIStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Daemon running")
	requireContains(t, out, "script")
	requireContains(t, out, "diagram")
	requireContains(t, out, "Platforms configured: twitter")
}

func TestCLIRejectsBadToken(t *testing.T) {
	env := setupCLITestEnv(t)

	cmd := newRootCommand()
	var stdout, stderr strings.Builder
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--address", env.address, "--token", "wrong", "content", "list"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an authentication error")
	}
}

func newReadyCLIItem(t *testing.T, env *cliTestEnv, topic string) *content.Item {
	t.Helper()
	return testsupport.NewReadyItem(t, env.store, topic)
}
