package tts

import (
	"context"
	"net/url"
	"strings"

	"golang.org/x/text/language"

	"reelsmith/internal/capability"
	"reelsmith/internal/services"
	"reelsmith/internal/services/httpapi"
)

const (
	defaultGoogleURL = "https://texttospeech.googleapis.com/v1/text:synthesize"
	fallbackLanguage = "vi-VN"
)

// GoogleConfig describes the Cloud Text-to-Speech endpoint.
type GoogleConfig struct {
	APIKey            string
	BaseURL           string
	TimeoutSeconds    int
	RequestsPerSecond float64
}

// Google synthesizes MP3 speech and returns it inline as a data URL.
type Google struct {
	cfg  GoogleConfig
	http *httpapi.Client
}

var _ capability.SpeechSynthesizer = (*Google)(nil)

func NewGoogle(cfg GoogleConfig, opts ...httpapi.Option) *Google {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultGoogleURL
	}
	return &Google{cfg: cfg, http: httpapi.New("google_tts", transport(cfg.TimeoutSeconds, cfg.RequestsPerSecond, opts)...)}
}

type googleRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding string `json:"audioEncoding"`
	} `json:"audioConfig"`
}

type googleResponse struct {
	AudioContent string `json:"audioContent"`
}

func (g *Google) Synthesize(ctx context.Context, text, voice string) (string, error) {
	if err := checkInput("google_tts", text, voice); err != nil {
		return "", err
	}
	if g.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "google_tts", "synthesize", "api key required", nil)
	}
	endpoint, err := url.Parse(g.cfg.BaseURL)
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "google_tts", "synthesize", "invalid base url", err)
	}
	query := endpoint.Query()
	query.Set("key", g.cfg.APIKey)
	endpoint.RawQuery = query.Encode()

	var body googleRequest
	body.Input.Text = strings.TrimSpace(text)
	body.Voice.Name = strings.TrimSpace(voice)
	body.Voice.LanguageCode = VoiceLanguage(body.Voice.Name)
	body.AudioConfig.AudioEncoding = "MP3"

	var resp googleResponse
	if err := g.http.PostJSON(ctx, "synthesize", endpoint.String(), nil, body, &resp); err != nil {
		return "", err
	}
	audio := strings.TrimSpace(resp.AudioContent)
	if audio == "" {
		return "", services.Wrap(services.ErrExternalTool, "google_tts", "synthesize", "response contained no audio", nil)
	}
	return "data:audio/mpeg;base64," + audio, nil
}

// VoiceLanguage derives the BCP 47 tag from a voice name such as
// "vi-VN-Wavenet-A". Unparseable names fall back to Vietnamese.
func VoiceLanguage(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 2 {
		return fallbackLanguage
	}
	tag, err := language.Parse(parts[0] + "-" + parts[1])
	if err != nil {
		return fallbackLanguage
	}
	return tag.String()
}
