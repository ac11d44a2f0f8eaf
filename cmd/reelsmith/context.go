package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"reelsmith/internal/config"
	"reelsmith/internal/content"
	"reelsmith/internal/jobs"
	"reelsmith/internal/logging"
	"reelsmith/internal/metrics"
	"reelsmith/internal/services"
	"reelsmith/internal/statestore"
	"reelsmith/internal/workflow"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool
	caps       capabilityFactory

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool, caps capabilityFactory) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
		caps:       caps,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// session is one locked, restored project.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *statestore.Store
	recorder *metrics.Recorder
	engine   *workflow.Engine
}

// withSession locks the state directory, restores the project, runs fn, and
// tears everything down again.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(context.Context, *session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock state directory: %w", err)
	}
	if !locked {
		return fmt.Errorf("another reelsmith command is using %s", cfg.Paths.StateDir)
	}
	defer func() { _ = lock.Unlock() }()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	store, err := statestore.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	s := &session{cfg: cfg, logger: logger, store: store}
	opts := workflow.Options{
		Defaults:  selectionsFromConfig(cfg),
		Logger:    logger,
		Persister: store,
		FanOut:    cfg.Workflow.FanOutLimit,
		Jobs:      jobOptions(cfg),
	}
	if cfg.Metrics.Enabled {
		s.recorder = metrics.New()
		opts.Recorder = s.recorder
		opts.Jobs.Recorder = s.recorder
	}
	s.engine = workflow.New(c.caps(cfg), opts)
	s.engine.Restore(ctx)
	defer s.engine.Close()

	runErr := fn(ctx, s)
	if s.recorder != nil && cfg.Metrics.Textfile != "" {
		if err := s.recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logging.WarnWithContext(logger, "metrics export failed", "metrics_failed", logging.Error(err))
		}
	}
	return describeError(runErr)
}

func selectionsFromConfig(cfg *config.Config) workflow.Selections {
	w := cfg.Workflow
	return workflow.Selections{
		Platform:       w.Platform,
		Format:         w.Format,
		ScriptLength:   content.ScriptLength(w.ScriptLength),
		ImageStyle:     w.ImageStyle,
		ThumbnailStyle: w.ThumbnailStyle,
		PromptLanguage: content.PromptLanguage(w.PromptLanguage),
		VbeeVoice:      w.VbeeVoice,
		GoogleVoice:    w.GoogleVoice,
	}
}

func jobOptions(cfg *config.Config) jobs.Options {
	v := cfg.Video
	return jobs.Options{
		Interval: seconds(v.PollIntervalSeconds),
		MaxPolls: v.MaxPolls,
		Timeout:  seconds(v.JobTimeoutSeconds),
	}
}

// describeError appends the service hint to classified errors.
func describeError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	details := services.Details(err)
	if details.Kind == "unknown" {
		return err
	}
	return fmt.Errorf("%w\nhint: %s", err, details.Hint)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
