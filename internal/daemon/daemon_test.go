package daemon

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"edustream/internal/api"
	"edustream/internal/config"
	"edustream/internal/content"
	"edustream/internal/pipeline"
	"edustream/internal/publish"
	"edustream/internal/scenario"
	"edustream/internal/scheduler"
	"edustream/internal/stage"
	"edustream/internal/stage/diagram"
	"edustream/internal/stage/script"
	"edustream/internal/store"
	"edustream/internal/testsupport"
)

type fakePublisher struct {
	mu    sync.Mutex
	calls int
}

func (f *fakePublisher) Name() string     { return "twitter" }
func (f *fakePublisher) Configured() bool { return true }

func (f *fakePublisher) Publish(context.Context, *content.Item, string) (*publish.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &publish.Result{PostID: "post-42"}, nil
}

func (f *fakePublisher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type harness struct {
	cfg       *config.Config
	store     *store.Store
	daemon    *Daemon
	client    *api.Client
	scheduler *scheduler.Scheduler
	publisher *fakePublisher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIToken = "test-token"
	cfg.Diagram.Width = 200
	cfg.Diagram.Height = 320

	st := testsupport.MustOpenStore(t, cfg)

	selector := scenario.NewSelector(cfg.Scenario.ExclusionWindow,
		scenario.WithRand(rand.New(rand.NewSource(11))))
	stages := []stage.Handler{
		script.New(selector, nil, nil),
		diagram.New(cfg.Diagram, cfg.Paths.MediaDir, nil),
	}
	pm := pipeline.NewManager(cfg, st, stages, nil, nil)

	pub := &fakePublisher{}
	registry := publish.NewRegistry(pub, publish.NewStub("youtube"), publish.NewStub("tiktok"), publish.NewStub("instagram"))
	executor := scheduler.NewExecutor(st, registry, nil, time.Second, nil)
	sched := scheduler.New(cfg, st, executor, nil, nil)

	d, err := New(cfg, st, nil, pm, sched, registry)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Stop)

	return &harness{
		cfg:       cfg,
		store:     st,
		daemon:    d,
		client:    api.NewClient("http://"+d.Addr(), "test-token"),
		scheduler: sched,
		publisher: pub,
	}
}

func waitForStatus(t *testing.T, h *harness, id int64, want content.Status) *content.Item {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		item, err := h.store.GetItem(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if item != nil && item.Status == want {
			return item
		}
		if item != nil && item.Status == content.StatusFailed && want != content.StatusFailed {
			t.Fatalf("item failed while waiting for %s: %s", want, item.ErrorMessage)
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("item %d never reached %s", id, want)
	return nil
}

func TestGenerateQueuePublishRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	item, err := h.client.Generate(ctx, api.GenerateRequest{Topic: "beam reactions simply supported"})
	if err != nil {
		t.Fatal(err)
	}
	if item.Status != string(content.StatusGenerating) {
		t.Fatalf("accepted status = %s", item.Status)
	}

	ready := waitForStatus(t, h, item.ID, content.StatusReady)
	if ready.ScriptJSON == "" || ready.DiagramPath == "" {
		t.Fatalf("artifacts missing: %+v", ready)
	}

	past := time.Now().UTC().Add(-time.Minute).Format(time.RFC3339)
	entry, err := h.client.Queue(ctx, api.QueueRequest{ContentID: item.ID, Platform: "twitter", ScheduledAt: past})
	if err != nil {
		t.Fatal(err)
	}
	if entry.Status != string(store.SchedulePending) {
		t.Fatalf("entry status = %s", entry.Status)
	}

	if err := h.scheduler.Tick(ctx); err != nil {
		t.Fatal(err)
	}
	if h.publisher.callCount() != 1 {
		t.Fatalf("platform calls = %d", h.publisher.callCount())
	}

	published, err := h.client.GetContent(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if published.Status != string(content.StatusPublished) {
		t.Fatalf("final status = %s", published.Status)
	}

	records, err := h.client.History(ctx, item.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("history records = %d", len(records))
	}
	if records[0].Status != string(store.SchedulePublished) || records[0].PlatformPostID != "post-42" {
		t.Fatalf("history = %+v", records[0])
	}
}

func TestAPIRejectsBadToken(t *testing.T) {
	h := newHarness(t)
	bad := api.NewClient("http://"+h.daemon.Addr(), "wrong-token")
	_, err := bad.Status(context.Background())
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAPIStatusAndPlatforms(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	status, err := h.client.Status(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !status.Running || status.DBPath == "" {
		t.Fatalf("status = %+v", status)
	}
	if len(status.Stages) != 2 {
		t.Fatalf("stages = %+v", status.Stages)
	}

	platforms, err := h.client.Platforms(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(platforms.Platforms) != 4 {
		t.Fatalf("platforms = %v", platforms.Platforms)
	}
	if len(platforms.Configured) != 1 || platforms.Configured[0] != "twitter" {
		t.Fatalf("configured = %v", platforms.Configured)
	}
}

func TestAPIDeleteAndIntervalEndpoints(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	item := testsupport.NewReadyItem(t, h.store, "stress basics")
	if err := h.client.DeleteContent(ctx, item.ID); err != nil {
		t.Fatal(err)
	}
	if err := h.client.DeleteContent(ctx, item.ID); err == nil {
		t.Fatal("expected 404 for second delete")
	}

	if err := h.client.SetInterval(ctx, 75); err != nil {
		t.Fatal(err)
	}
	minutes, err := h.client.Interval(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if minutes != 75 {
		t.Fatalf("interval = %d", minutes)
	}
}

func TestDaemonLockPreventsSecondInstance(t *testing.T) {
	h := newHarness(t)

	st2 := testsupport.MustOpenStore(t, h.cfg)
	pm2 := pipeline.NewManager(h.cfg, st2, nil, nil, nil)
	registry := publish.NewRegistry(publish.NewStub("twitter"))
	executor := scheduler.NewExecutor(st2, registry, nil, time.Second, nil)
	sched2 := scheduler.New(h.cfg, st2, executor, nil, nil)

	second, err := New(h.cfg, st2, nil, pm2, sched2, registry)
	if err != nil {
		t.Fatal(err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be rejected")
	}
}
