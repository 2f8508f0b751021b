package main

import (
	"context"
	"fmt"
	"math/rand"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"edustream/internal/config"
	"edustream/internal/daemon"
	"edustream/internal/logging"
	"edustream/internal/notifications"
	"edustream/internal/pipeline"
	"edustream/internal/publish"
	"edustream/internal/scenario"
	"edustream/internal/scheduler"
	"edustream/internal/services/llm"
	"edustream/internal/stage"
	"edustream/internal/stage/diagram"
	"edustream/internal/stage/script"
	"edustream/internal/store"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the generation and publishing daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runDaemon(cfg)
		},
	}
}

func runDaemon(cfg *config.Config) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		OutputPaths: []string{
			"stdout",
			filepath.Join(cfg.Paths.LogDir, "edustream.log"),
		},
	})
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	notifier := notifications.NewService(cfg)

	selector := scenario.NewSelector(cfg.Scenario.ExclusionWindow,
		scenario.WithRand(rand.New(rand.NewSource(time.Now().UnixNano()))))

	var fallback script.Fallback
	if cfg.LLM.Enabled() {
		fallback = llm.New(cfg.LLM)
	}

	stages := []stage.Handler{
		script.New(selector, fallback, logger),
		diagram.New(cfg.Diagram, cfg.Paths.MediaDir, logger),
	}
	if cfg.Stages.NarrationEnabled {
		stages = append(stages, stage.NewDisabled("narration"))
	}
	if cfg.Stages.VideoEnabled {
		stages = append(stages, stage.NewDisabled("video"))
	}

	pm := pipeline.NewManager(cfg, st, stages, notifier, logger)

	registry := publish.NewRegistry(
		publish.NewTwitter(cfg.Twitter, time.Duration(cfg.Publishing.PublishTimeoutSeconds)*time.Second),
		publish.NewStub("youtube"),
		publish.NewStub("tiktok"),
		publish.NewStub("instagram"),
	)
	executor := scheduler.NewExecutor(st, registry, notifier,
		time.Duration(cfg.Publishing.PublishTimeoutSeconds)*time.Second, logger)
	sched := scheduler.New(cfg, st, executor, notifier, logger)

	d, err := daemon.New(cfg, st, logger, pm, sched, registry)
	if err != nil {
		_ = st.Close()
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := d.Start(sigCtx); err != nil {
		_ = st.Close()
		return err
	}

	<-sigCtx.Done()
	return d.Close()
}
