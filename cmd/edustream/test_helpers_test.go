package main

import (
	"bytes"
	"context"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"edustream/internal/config"
	"edustream/internal/content"
	"edustream/internal/daemon"
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

const cliTestToken = "cli-test-token"

type recordingPublisher struct {
	mu       sync.Mutex
	calls    int
	captions []string
}

func (p *recordingPublisher) Name() string     { return "twitter" }
func (p *recordingPublisher) Configured() bool { return true }

func (p *recordingPublisher) Publish(_ context.Context, _ *content.Item, caption string) (*publish.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.captions = append(p.captions, caption)
	return &publish.Result{PostID: "post-7"}, nil
}

func (p *recordingPublisher) lastCaption() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.captions) == 0 {
		return ""
	}
	return p.captions[len(p.captions)-1]
}

type cliTestEnv struct {
	cfg       *config.Config
	store     *store.Store
	daemon    *daemon.Daemon
	scheduler *scheduler.Scheduler
	publisher *recordingPublisher
	address   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	t.Setenv("HOME", t.TempDir())

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIToken = cliTestToken
	cfg.Diagram.Width = 200
	cfg.Diagram.Height = 320

	st := testsupport.MustOpenStore(t, cfg)

	selector := scenario.NewSelector(cfg.Scenario.ExclusionWindow,
		scenario.WithRand(rand.New(rand.NewSource(3))))
	stages := []stage.Handler{
		script.New(selector, nil, nil),
		diagram.New(cfg.Diagram, cfg.Paths.MediaDir, nil),
	}
	pm := pipeline.NewManager(cfg, st, stages, nil, nil)

	pub := &recordingPublisher{}
	registry := publish.NewRegistry(pub, publish.NewStub("youtube"))
	executor := scheduler.NewExecutor(st, registry, nil, time.Second, nil)
	sched := scheduler.New(cfg, st, executor, nil, nil)

	d, err := daemon.New(cfg, st, nil, pm, sched, registry)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(d.Stop)

	return &cliTestEnv{
		cfg:       cfg,
		store:     st,
		daemon:    d,
		scheduler: sched,
		publisher: pub,
		address:   d.Addr(),
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--address", env.address, "--token", cliTestToken}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func waitForItemStatus(t *testing.T, env *cliTestEnv, id int64, want content.Status) *content.Item {
	t.Helper()

	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		item, err := env.store.GetItem(context.Background(), id)
		if err != nil {
			t.Fatalf("GetItem: %v", err)
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

func requireContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, out)
	}
}
