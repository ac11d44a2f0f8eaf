package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validatePersistence(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateTimeouts() error {
	return ensurePositiveMap(map[string]int{
		"llm.timeout_seconds":        c.LLM.TimeoutSeconds,
		"image.timeout_seconds":      c.Image.TimeoutSeconds,
		"vbee.timeout_seconds":       c.Vbee.TimeoutSeconds,
		"google_tts.timeout_seconds": c.GoogleTTS.TimeoutSeconds,
		"video.timeout_seconds":      c.Video.TimeoutSeconds,
	})
}

func (c *Config) validateVideo() error {
	if c.Video.PollIntervalSeconds <= 0 {
		return errors.New("video.poll_interval_seconds must be positive")
	}
	if c.Video.MaxPolls < 0 {
		return errors.New("video.max_polls must be >= 0 (0 disables the bound)")
	}
	if c.Video.JobTimeoutSeconds < 0 {
		return errors.New("video.job_timeout_seconds must be >= 0 (0 disables the deadline)")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	switch c.Workflow.ScriptLength {
	case "short", "medium", "long":
	default:
		return fmt.Errorf("workflow.script_length: unsupported value %q (want short, medium, or long)", c.Workflow.ScriptLength)
	}
	switch c.Workflow.PromptLanguage {
	case "vi", "en":
	default:
		return fmt.Errorf("workflow.prompt_language: unsupported value %q (want vi or en)", c.Workflow.PromptLanguage)
	}
	return nil
}

func (c *Config) validatePersistence() error {
	switch c.Persistence.Backend {
	case BackendSQLite, BackendFile:
		return nil
	case BackendRedis:
		if strings.TrimSpace(c.Persistence.RedisAddr) == "" {
			return errors.New("persistence.redis_addr must be set when persistence.backend is redis")
		}
		if c.Persistence.RedisDB < 0 {
			return errors.New("persistence.redis_db must be >= 0")
		}
		return nil
	default:
		return fmt.Errorf("persistence.backend: unsupported value %q", c.Persistence.Backend)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
