package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeServices()
	c.normalizeWorkflow()
	c.normalizePersistence()
	c.normalizeLogging()
	return c.normalizeMetrics()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = envFallback(c.LLM.APIKey, "REELSMITH_LLM_API_KEY", "OPENROUTER_API_KEY")
	c.LLM.BaseURL = stringDefault(c.LLM.BaseURL, defaultLLMBaseURL)
	c.LLM.Model = stringDefault(c.LLM.Model, defaultLLMModel)
	c.LLM.Referer = strings.TrimSpace(c.LLM.Referer)
	c.LLM.Title = strings.TrimSpace(c.LLM.Title)
}

func (c *Config) normalizeServices() {
	c.Image.APIKey = envFallback(c.Image.APIKey, "IMAGE_API_KEY")
	c.Image.BaseURL = stringDefault(c.Image.BaseURL, defaultImageBaseURL)
	c.Image.Model = stringDefault(c.Image.Model, defaultImageModel)
	c.Image.Size = stringDefault(c.Image.Size, defaultImageSize)

	c.Vbee.AppID = envFallback(c.Vbee.AppID, "VBEE_APP_ID")
	c.Vbee.APIKey = envFallback(c.Vbee.APIKey, "VBEE_API_KEY")
	c.Vbee.BaseURL = stringDefault(c.Vbee.BaseURL, defaultVbeeBaseURL)

	c.GoogleTTS.APIKey = envFallback(c.GoogleTTS.APIKey, "GOOGLE_TTS_API_KEY")
	c.GoogleTTS.BaseURL = stringDefault(c.GoogleTTS.BaseURL, defaultGoogleTTSBaseURL)

	c.Video.APIKey = envFallback(c.Video.APIKey, "VIDEO_API_KEY")
	c.Video.BaseURL = stringDefault(c.Video.BaseURL, defaultVideoBaseURL)
}

func (c *Config) normalizeWorkflow() {
	w := &c.Workflow
	w.Platform = stringDefault(w.Platform, defaultPlatform)
	w.Format = stringDefault(w.Format, defaultFormat)
	w.ScriptLength = strings.ToLower(stringDefault(w.ScriptLength, defaultScriptLength))
	w.ImageStyle = stringDefault(w.ImageStyle, defaultImageStyle)
	w.ThumbnailStyle = stringDefault(w.ThumbnailStyle, defaultThumbnailStyle)
	w.PromptLanguage = strings.ToLower(stringDefault(w.PromptLanguage, defaultPromptLanguage))
	w.VbeeVoice = stringDefault(w.VbeeVoice, defaultVbeeVoice)
	w.GoogleVoice = stringDefault(w.GoogleVoice, defaultGoogleVoice)
	if w.FanOutLimit <= 0 {
		w.FanOutLimit = defaultFanOutLimit
	}
}

func (c *Config) normalizePersistence() {
	p := &c.Persistence
	p.Backend = strings.ToLower(stringDefault(p.Backend, defaultPersistenceBackend))
	p.RedisAddr = stringDefault(p.RedisAddr, defaultRedisAddr)
	p.RedisKey = stringDefault(p.RedisKey, defaultRedisKey)
	if p.RedisPassword == "" {
		if value, ok := os.LookupEnv("REELSMITH_REDIS_PASSWORD"); ok {
			p.RedisPassword = value
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(stringDefault(c.Logging.Format, defaultLogFormat))
	c.Logging.Level = strings.ToLower(stringDefault(c.Logging.Level, defaultLogLevel))
}

func (c *Config) normalizeMetrics() error {
	if !c.Metrics.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Metrics.Textfile) == "" {
		c.Metrics.Textfile = filepath.Join(c.Paths.StateDir, defaultMetricsTextfileSuffix)
	}
	var err error
	if c.Metrics.Textfile, err = expandPath(c.Metrics.Textfile); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}

func stringDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func envFallback(value string, keys ...string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	for _, key := range keys {
		if env, ok := os.LookupEnv(key); ok && strings.TrimSpace(env) != "" {
			return strings.TrimSpace(env)
		}
	}
	return ""
}
