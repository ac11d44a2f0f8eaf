package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelsmith/internal/config"
)

func clearServiceEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"REELSMITH_LLM_API_KEY", "OPENROUTER_API_KEY", "IMAGE_API_KEY",
		"VBEE_APP_ID", "VBEE_API_KEY", "GOOGLE_TTS_API_KEY", "VIDEO_API_KEY",
		"REELSMITH_REDIS_PASSWORD",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	clearServiceEnv(t)
	t.Setenv("REELSMITH_LLM_API_KEY", "llm-key")
	t.Setenv("VBEE_APP_ID", "app")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "reelsmith")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.LLM.APIKey != "llm-key" {
		t.Fatalf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Vbee.AppID != "app" {
		t.Fatalf("expected Vbee app id from env, got %q", cfg.Vbee.AppID)
	}
	if cfg.Workflow.Platform != "YouTube" {
		t.Fatalf("unexpected platform default: %q", cfg.Workflow.Platform)
	}
	if cfg.Video.MaxPolls != 90 || cfg.Video.JobTimeoutSeconds != 1800 {
		t.Fatalf("unexpected video bounds: %d polls, %ds", cfg.Video.MaxPolls, cfg.Video.JobTimeoutSeconds)
	}
	if cfg.Persistence.Backend != config.BackendSQLite {
		t.Fatalf("unexpected backend: %q", cfg.Persistence.Backend)
	}
	if got := cfg.SnapshotPath(); got != filepath.Join(wantState, "project.db") {
		t.Fatalf("unexpected snapshot path: %q", got)
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	clearServiceEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg := config.Default()
	cfg.Paths.StateDir = "~/projects/reel"
	cfg.Paths.LogDir = ""
	cfg.Workflow.ScriptLength = "LONG"
	cfg.Workflow.PromptLanguage = "EN"
	cfg.Persistence.Backend = "File"
	cfg.Metrics.Enabled = true

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(tempHome, "custom.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	wantState := filepath.Join(tempHome, "projects", "reel")
	if loaded.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: %q", loaded.Paths.StateDir)
	}
	if loaded.Paths.LogDir != filepath.Join(wantState, "logs") {
		t.Fatalf("expected log dir derived from state dir, got %q", loaded.Paths.LogDir)
	}
	if loaded.Workflow.ScriptLength != "long" || loaded.Workflow.PromptLanguage != "en" {
		t.Fatalf("expected lowered workflow values, got %q %q", loaded.Workflow.ScriptLength, loaded.Workflow.PromptLanguage)
	}
	if loaded.SnapshotPath() != filepath.Join(wantState, "project.json") {
		t.Fatalf("unexpected file snapshot path: %q", loaded.SnapshotPath())
	}
	if loaded.Metrics.Textfile != filepath.Join(wantState, "reelsmith.prom") {
		t.Fatalf("unexpected metrics textfile: %q", loaded.Metrics.Textfile)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"backend", func(c *config.Config) { c.Persistence.Backend = "etcd" }, "persistence.backend"},
		{"poll interval", func(c *config.Config) { c.Video.PollIntervalSeconds = 0 }, "video.poll_interval_seconds"},
		{"max polls", func(c *config.Config) { c.Video.MaxPolls = -1 }, "video.max_polls"},
		{"script length", func(c *config.Config) { c.Workflow.ScriptLength = "epic" }, "workflow.script_length"},
		{"language", func(c *config.Config) { c.Workflow.PromptLanguage = "fr" }, "workflow.prompt_language"},
		{"timeout", func(c *config.Config) { c.LLM.TimeoutSeconds = 0 }, "llm.timeout_seconds"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"redis addr", func(c *config.Config) {
			c.Persistence.Backend = config.BackendRedis
			c.Persistence.RedisAddr = " "
		}, "persistence.redis_addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestMaxPollsZeroDisablesBound(t *testing.T) {
	cfg := config.Default()
	cfg.Video.MaxPolls = 0
	cfg.Video.JobTimeoutSeconds = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected zero bounds to be accepted, got %v", err)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	clearServiceEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Workflow.VbeeVoice != "hn_male_manhdung_48k-fhg" {
		t.Fatalf("unexpected sample voice: %q", cfg.Workflow.VbeeVoice)
	}
}

func TestEnsureDirectoriesCreatesStateAndLogs(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "state", "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q: %v", dir, err)
		}
	}
}
