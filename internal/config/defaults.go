package config

// Snapshot backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

const (
	defaultConfigPath            = "~/.config/reelsmith/config.toml"
	defaultStateDir              = "~/.local/share/reelsmith"
	defaultLogDir                = "~/.local/share/reelsmith/logs"
	defaultLLMBaseURL            = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel              = "google/gemini-2.5-flash"
	defaultLLMReferer            = "https://github.com/reelsmith/reelsmith"
	defaultLLMTitle              = "reelsmith"
	defaultLLMTimeoutSeconds     = 90
	defaultImageBaseURL          = "https://api.openai.com/v1/images/generations"
	defaultImageModel            = "gpt-image-1"
	defaultImageSize             = "1536x1024"
	defaultImageTimeoutSeconds   = 120
	defaultVbeeBaseURL           = "https://vbee.vn/api/v1/tts"
	defaultGoogleTTSBaseURL      = "https://texttospeech.googleapis.com/v1/text:synthesize"
	defaultTTSTimeoutSeconds     = 60
	defaultVideoBaseURL          = "https://api.useapi.net/v1/runwayml/gen3turbo"
	defaultVideoTimeoutSeconds   = 30
	defaultVideoPollInterval     = 10
	defaultVideoMaxPolls         = 90
	defaultVideoJobTimeout       = 1800
	defaultRequestsPerSecond     = 2
	defaultPlatform              = "YouTube"
	defaultFormat                = "Long-form video (over 1 minute)"
	defaultScriptLength          = "medium"
	defaultImageStyle            = "Cinematic, photorealistic"
	defaultThumbnailStyle        = "Vibrant, eye-catching, high-contrast"
	defaultPromptLanguage        = "vi"
	defaultVbeeVoice             = "hn_male_manhdung_48k-fhg"
	defaultGoogleVoice           = "vi-VN-Standard-A"
	defaultFanOutLimit           = 3
	defaultPersistenceBackend    = BackendSQLite
	defaultRedisAddr             = "127.0.0.1:6379"
	defaultRedisKey              = "reelsmith:project"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultMetricsTextfileSuffix = "reelsmith.prom"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Image: Image{
			BaseURL:           defaultImageBaseURL,
			Model:             defaultImageModel,
			Size:              defaultImageSize,
			TimeoutSeconds:    defaultImageTimeoutSeconds,
			RequestsPerSecond: defaultRequestsPerSecond,
		},
		Vbee: Vbee{
			BaseURL:           defaultVbeeBaseURL,
			TimeoutSeconds:    defaultTTSTimeoutSeconds,
			RequestsPerSecond: defaultRequestsPerSecond,
		},
		GoogleTTS: GoogleTTS{
			BaseURL:           defaultGoogleTTSBaseURL,
			TimeoutSeconds:    defaultTTSTimeoutSeconds,
			RequestsPerSecond: defaultRequestsPerSecond,
		},
		Video: Video{
			BaseURL:             defaultVideoBaseURL,
			TimeoutSeconds:      defaultVideoTimeoutSeconds,
			PollIntervalSeconds: defaultVideoPollInterval,
			MaxPolls:            defaultVideoMaxPolls,
			JobTimeoutSeconds:   defaultVideoJobTimeout,
			RequestsPerSecond:   defaultRequestsPerSecond,
		},
		Workflow: Workflow{
			Platform:       defaultPlatform,
			Format:         defaultFormat,
			ScriptLength:   defaultScriptLength,
			ImageStyle:     defaultImageStyle,
			ThumbnailStyle: defaultThumbnailStyle,
			PromptLanguage: defaultPromptLanguage,
			VbeeVoice:      defaultVbeeVoice,
			GoogleVoice:    defaultGoogleVoice,
			FanOutLimit:    defaultFanOutLimit,
		},
		Persistence: Persistence{
			Backend:   defaultPersistenceBackend,
			RedisAddr: defaultRedisAddr,
			RedisKey:  defaultRedisKey,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
