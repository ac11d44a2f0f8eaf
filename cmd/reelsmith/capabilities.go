package main

import (
	"time"

	"reelsmith/internal/capability"
	"reelsmith/internal/config"
	"reelsmith/internal/content"
	"reelsmith/internal/services/imagegen"
	"reelsmith/internal/services/llm"
	"reelsmith/internal/services/tts"
	"reelsmith/internal/services/video"
)

type capabilityFactory func(*config.Config) capability.Set

// buildCapabilities wires the HTTP adapters that have credentials. Missing
// credentials leave the capability nil so the engine reports it unavailable.
func buildCapabilities(cfg *config.Config) capability.Set {
	var set capability.Set
	if cfg.LLM.APIKey != "" {
		client := llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			Referer:        cfg.LLM.Referer,
			Title:          cfg.LLM.Title,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
			Temperature:    0.7,
		})
		set.Text = llm.NewGenerator(client)
	}
	if cfg.Image.APIKey != "" {
		set.Images = imagegen.New(imagegen.Config{
			APIKey:            cfg.Image.APIKey,
			BaseURL:           cfg.Image.BaseURL,
			Model:             cfg.Image.Model,
			Size:              cfg.Image.Size,
			TimeoutSeconds:    cfg.Image.TimeoutSeconds,
			RequestsPerSecond: cfg.Image.RequestsPerSecond,
		})
	}
	set.Speech = make(map[content.Engine]capability.SpeechSynthesizer)
	if cfg.Vbee.AppID != "" && cfg.Vbee.APIKey != "" {
		set.Speech[content.EngineVbee] = tts.NewVbee(tts.VbeeConfig{
			AppID:             cfg.Vbee.AppID,
			APIKey:            cfg.Vbee.APIKey,
			BaseURL:           cfg.Vbee.BaseURL,
			TimeoutSeconds:    cfg.Vbee.TimeoutSeconds,
			RequestsPerSecond: cfg.Vbee.RequestsPerSecond,
		})
	}
	if cfg.GoogleTTS.APIKey != "" {
		set.Speech[content.EngineGoogle] = tts.NewGoogle(tts.GoogleConfig{
			APIKey:            cfg.GoogleTTS.APIKey,
			BaseURL:           cfg.GoogleTTS.BaseURL,
			TimeoutSeconds:    cfg.GoogleTTS.TimeoutSeconds,
			RequestsPerSecond: cfg.GoogleTTS.RequestsPerSecond,
		})
	}
	if cfg.Video.APIKey != "" {
		set.Video = video.New(video.Config{
			APIKey:            cfg.Video.APIKey,
			BaseURL:           cfg.Video.BaseURL,
			TimeoutSeconds:    cfg.Video.TimeoutSeconds,
			RequestsPerSecond: cfg.Video.RequestsPerSecond,
		})
	}
	return set
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
