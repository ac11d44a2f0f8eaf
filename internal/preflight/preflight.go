package preflight

import (
	"context"

	"reelsmith/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for cfg. The LLM check makes a live
// request only when live is true.
func RunAll(ctx context.Context, cfg *config.Config, live bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}

	if cfg.Persistence.Backend == config.BackendRedis {
		results = append(results, CheckRedis(ctx, cfg.Persistence.RedisAddr, cfg.Persistence.RedisPassword, cfg.Persistence.RedisDB))
	}

	if live {
		results = append(results, CheckLLM(ctx, cfg.LLM))
	} else {
		results = append(results, CheckCredentials("LLM", map[string]string{"llm.api_key": cfg.LLM.APIKey}))
	}
	results = append(results,
		CheckCredentials("Image generation", map[string]string{"image.api_key": cfg.Image.APIKey}),
		CheckCredentials("Vbee TTS", map[string]string{"vbee.app_id": cfg.Vbee.AppID, "vbee.api_key": cfg.Vbee.APIKey}),
		CheckCredentials("Google TTS", map[string]string{"google_tts.api_key": cfg.GoogleTTS.APIKey}),
		CheckCredentials("Video generation", map[string]string{"video.api_key": cfg.Video.APIKey}),
	)
	return results
}
