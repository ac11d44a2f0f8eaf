package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"reelsmith/internal/services"
	"reelsmith/internal/services/httpapi"
)

const (
	defaultBaseURL   = "https://openrouter.ai/api/v1/chat/completions"
	defaultTimeout   = 60 * time.Second
	jsonResponseType = "json_object"
)

// Config captures the runtime settings required to talk to the model.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	Temperature    float64
}

// Client wraps the chat completion API.
type Client struct {
	cfg  Config
	http *httpapi.Client
}

// NewClient constructs a client. Transport options are passed to httpapi.
func NewClient(cfg Config, opts ...httpapi.Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	base := []httpapi.Option{httpapi.WithTimeout(timeout), httpapi.WithRetry(4, time.Second, 10*time.Second)}
	return &Client{cfg: cfg, http: httpapi.New("llm", append(base, opts...)...)}
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompleteJSON requests a JSON-only completion and returns the raw payload.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, "complete_json", systemPrompt, userPrompt, true)
}

// CompleteText requests a free-text completion.
func (c *Client) CompleteText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.complete(ctx, "complete_text", systemPrompt, userPrompt, false)
}

func (c *Client) complete(ctx context.Context, op, systemPrompt, userPrompt string, jsonMode bool) (string, error) {
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" || userPrompt == "" {
		return "", services.Wrap(services.ErrValidation, "llm", op, "system and user prompts are required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "llm", op, "api key required", nil)
	}
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: c.cfg.Temperature,
	}
	if jsonMode {
		payload.ResponseFormat = map[string]string{"type": jsonResponseType}
	}

	var content string
	_, err := c.http.Do(ctx, op, httpapi.Request{
		Method: http.MethodPost,
		URL:    c.cfg.BaseURL,
		Header: c.headers(),
		Body:   payload,
		Check: func(body []byte) error {
			var parseErr error
			content, parseErr = parseCompletion(op, body)
			return parseErr
		},
	})
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.Referer != "" {
		h.Set("HTTP-Referer", c.cfg.Referer)
		h.Set("Referer", c.cfg.Referer)
	}
	if c.cfg.Title != "" {
		h.Set("X-Title", c.cfg.Title)
	}
	return h
}

// HealthCheck issues a fast ping to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	content, err := c.CompleteJSON(ctx, "You must respond with JSON only.", `Respond with {"ok":true}`)
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeJSON(content, &parsed); err != nil {
		return services.Wrap(services.ErrValidation, "llm", "health", "parse payload", err)
	}
	if !parsed.OK {
		return services.Wrap(services.ErrValidation, "llm", "health", "unexpected response", errors.New(content))
	}
	return nil
}
