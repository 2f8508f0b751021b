// Package daemon coordinates the background services: the generation
// pipeline, the publish scheduler and the control API. A file lock
// enforces single-instance execution.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"edustream/internal/config"
	"edustream/internal/logging"
	"edustream/internal/pipeline"
	"edustream/internal/publish"
	"edustream/internal/scheduler"
	"edustream/internal/stage"
	"edustream/internal/store"
)

// Daemon owns the long-running services and enforces single-instance
// execution via a lock file.
type Daemon struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	pipeline  *pipeline.Manager
	scheduler *scheduler.Scheduler
	registry  *publish.Registry
	api       *apiServer

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	schedDone chan struct{}

	stopOnce sync.Once
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	DBPath       string
	LockFilePath string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, pm *pipeline.Manager, sched *scheduler.Scheduler, registry *publish.Registry) (*Daemon, error) {
	if cfg == nil || st == nil || pm == nil || sched == nil || registry == nil {
		return nil, errors.New("daemon requires config, store, pipeline, scheduler and registry")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.DataDir, "edustream.lock")
	d := &Daemon{
		cfg:       cfg,
		logger:    logging.WithComponent(logger, "daemon"),
		store:     st,
		pipeline:  pm,
		scheduler: sched,
		registry:  registry,
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock, starts the scheduler loop and brings
// up the control API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another edustream daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.schedDone = make(chan struct{})
	go func() {
		defer close(d.schedDone)
		if err := d.scheduler.Run(d.ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("scheduler exited", logging.Error(err))
		}
	}()

	if d.api != nil {
		if err := d.api.start(d.ctx); err != nil {
			d.cancel()
			<-d.schedDone
			_ = d.lock.Unlock()
			return err
		}
	}

	d.running.Store(true)
	d.stopOnce = sync.Once{}
	d.logger.Info("edustream daemon started",
		logging.String("lock", d.lockPath),
		logging.Int("pid", os.Getpid()))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.stopOnce.Do(func() {
		if d.cancel != nil {
			d.cancel()
		}
		if d.schedDone != nil {
			<-d.schedDone
		}
		d.pipeline.Stop()
		if d.api != nil {
			d.api.stop()
		}
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(err))
		}
		d.running.Store(false)
		d.logger.Info("edustream daemon stopped")
	})
}

// Close stops the daemon and releases the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports runtime information for the control API.
func (d *Daemon) Status(context.Context) Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		DBPath:       d.store.Path(),
		LockFilePath: d.lockPath,
	}
}

// StageHealth reports stage readiness for the control API.
func (d *Daemon) StageHealth(ctx context.Context) []stage.Health {
	return d.pipeline.Health(ctx)
}

// Addr reports the control API listen address, for tests binding to
// an ephemeral port.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}
