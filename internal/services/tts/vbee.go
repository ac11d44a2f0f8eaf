package tts

import (
	"context"
	"net/http"
	"strings"
	"time"

	"reelsmith/internal/capability"
	"reelsmith/internal/services"
	"reelsmith/internal/services/httpapi"
)

const (
	defaultVbeeURL  = "https://vbee.vn/api/v1/tts"
	defaultTimeout  = 60 * time.Second
	vbeeBitRate     = "128000"
	vbeeSampleRate  = "44100"
	vbeeAudioFormat = "mp3"
)

// VbeeConfig describes the Vbee endpoint and credentials.
type VbeeConfig struct {
	AppID             string
	APIKey            string
	BaseURL           string
	TimeoutSeconds    int
	RequestsPerSecond float64
}

// Vbee synthesizes Vietnamese speech and returns a hosted audio link.
type Vbee struct {
	cfg  VbeeConfig
	http *httpapi.Client
}

var _ capability.SpeechSynthesizer = (*Vbee)(nil)

func NewVbee(cfg VbeeConfig, opts ...httpapi.Option) *Vbee {
	cfg.AppID = strings.TrimSpace(cfg.AppID)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultVbeeURL
	}
	return &Vbee{cfg: cfg, http: httpapi.New("vbee", transport(cfg.TimeoutSeconds, cfg.RequestsPerSecond, opts)...)}
}

type vbeeRequest struct {
	InputText   string `json:"input_text"`
	VoiceCode   string `json:"voice_code"`
	AppID       string `json:"app_id"`
	BitRate     string `json:"bit_rate"`
	SampleRate  string `json:"sample_rate"`
	AudioFormat string `json:"audio_format"`
}

type vbeeResponse struct {
	AudioLink string `json:"audio_link"`
	Result    struct {
		AudioLink string `json:"audio_link"`
	} `json:"result"`
	Error string `json:"error"`
}

func (v *Vbee) Synthesize(ctx context.Context, text, voice string) (string, error) {
	if err := checkInput("vbee", text, voice); err != nil {
		return "", err
	}
	if v.cfg.AppID == "" || v.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "vbee", "synthesize", "app id and api key required", nil)
	}
	header := http.Header{}
	header.Set("api-key", v.cfg.APIKey)
	body := vbeeRequest{
		InputText:   strings.TrimSpace(text),
		VoiceCode:   strings.TrimSpace(voice),
		AppID:       v.cfg.AppID,
		BitRate:     vbeeBitRate,
		SampleRate:  vbeeSampleRate,
		AudioFormat: vbeeAudioFormat,
	}
	var resp vbeeResponse
	if err := v.http.PostJSON(ctx, "synthesize", v.cfg.BaseURL, header, body, &resp); err != nil {
		return "", err
	}
	if link := firstLink(resp.AudioLink, resp.Result.AudioLink); link != "" {
		return link, nil
	}
	detail := "response contained no audio link"
	if resp.Error != "" {
		detail += ": " + resp.Error
	}
	return "", services.Wrap(services.ErrExternalTool, "vbee", "synthesize", detail, nil)
}

func firstLink(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func checkInput(service, text, voice string) error {
	if strings.TrimSpace(text) == "" || strings.TrimSpace(voice) == "" {
		return services.Wrap(services.ErrValidation, service, "synthesize", "text and voice are required", nil)
	}
	return nil
}

func transport(timeoutSeconds int, rps float64, extra []httpapi.Option) []httpapi.Option {
	timeout := defaultTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	opts := []httpapi.Option{httpapi.WithTimeout(timeout)}
	if rps > 0 {
		opts = append(opts, httpapi.WithRateLimit(rps, 1))
	}
	return append(opts, extra...)
}
