// Package imagegen renders scene visuals and thumbnails through an OpenAI-style
// image generation endpoint.
package imagegen

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reelsmith/internal/capability"
	"reelsmith/internal/services"
	"reelsmith/internal/services/httpapi"
)

const (
	defaultBaseURL = "https://api.openai.com/v1/images/generations"
	defaultModel   = "gpt-image-1"
	defaultSize    = "1536x1024"
	defaultTimeout = 120 * time.Second
)

// Config describes the image endpoint.
type Config struct {
	APIKey            string
	BaseURL           string
	Model             string
	Size              string
	TimeoutSeconds    int
	RequestsPerSecond float64
}

// Client implements capability.ImageGenerator.
type Client struct {
	cfg  Config
	http *httpapi.Client
}

var _ capability.ImageGenerator = (*Client)(nil)

// New constructs a client; opts override the transport defaults.
func New(cfg Config, opts ...httpapi.Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModel
	}
	if strings.TrimSpace(cfg.Size) == "" {
		cfg.Size = defaultSize
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	base := []httpapi.Option{httpapi.WithTimeout(timeout)}
	if cfg.RequestsPerSecond > 0 {
		base = append(base, httpapi.WithRateLimit(cfg.RequestsPerSecond, 1))
	}
	return &Client{cfg: cfg, http: httpapi.New("imagegen", append(base, opts...)...)}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

type generateResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// GenerateImage renders prompt in style and returns a PNG data URL, or the
// hosted URL when the service returns one instead.
func (c *Client) GenerateImage(ctx context.Context, prompt, style string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, "imagegen", "generate", "prompt is required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "imagegen", "generate", "api key required", nil)
	}
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	var resp generateResponse
	body := generateRequest{Model: c.cfg.Model, Prompt: composePrompt(prompt, style), Size: c.cfg.Size, N: 1}
	if err := c.http.PostJSON(ctx, "generate", c.cfg.BaseURL, header, body, &resp); err != nil {
		return "", err
	}
	for _, item := range resp.Data {
		if data := strings.TrimSpace(item.B64JSON); data != "" {
			return "data:image/png;base64," + data, nil
		}
		if url := strings.TrimSpace(item.URL); url != "" {
			return url, nil
		}
	}
	return "", services.Wrap(services.ErrExternalTool, "imagegen", "generate", "response contained no image", nil)
}

func composePrompt(prompt, style string) string {
	style = strings.TrimSpace(style)
	if style == "" {
		return prompt
	}
	return fmt.Sprintf("%s. Style: %s.", strings.TrimRight(prompt, ". "), style)
}
