// Package video adapts a Runway-style asynchronous text-to-video API to
// capability.VideoGenerator: one call creates a task, later calls poll it.
package video

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelsmith/internal/capability"
	"reelsmith/internal/services"
	"reelsmith/internal/services/httpapi"
)

const (
	defaultBaseURL = "https://api.useapi.net/v1/runwayml/gen3turbo"
	defaultTimeout = 30 * time.Second
)

// Config describes the video endpoint.
type Config struct {
	APIKey            string
	BaseURL           string
	TimeoutSeconds    int
	RequestsPerSecond float64
}

// Client implements capability.VideoGenerator.
type Client struct {
	cfg  Config
	http *httpapi.Client
}

var _ capability.VideoGenerator = (*Client)(nil)

func New(cfg Config, opts ...httpapi.Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	base := []httpapi.Option{httpapi.WithTimeout(timeout)}
	if cfg.RequestsPerSecond > 0 {
		base = append(base, httpapi.WithRateLimit(cfg.RequestsPerSecond, 1))
	}
	// Creating a task is not idempotent and a failed status check must fail
	// the job, so neither call is retried whatever opts say.
	opts = append(append(base, opts...), httpapi.WithRetry(1, 0, 0))
	return &Client{cfg: cfg, http: httpapi.New("video", opts...)}
}

type createRequest struct {
	TextPrompt string `json:"text_prompt"`
}

type task struct {
	TaskID    string `json:"taskId"`
	Status    string `json:"status"`
	Error     string `json:"error"`
	Artifacts []struct {
		URL string `json:"url"`
	} `json:"artifacts"`
}

// StartVideoJob creates a generation task and returns its id.
func (c *Client) StartVideoJob(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, "video", "start", "prompt is required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "video", "start", "api key required", nil)
	}
	var created task
	if err := c.http.PostJSON(ctx, "start", c.cfg.BaseURL+"/create", c.headers(), createRequest{TextPrompt: prompt}, &created); err != nil {
		return "", err
	}
	id := strings.TrimSpace(created.TaskID)
	if id == "" {
		return "", services.Wrap(services.ErrExternalTool, "video", "start", "response contained no task id", nil)
	}
	return id, nil
}

// PollVideoJob fetches the task once and maps its status.
func (c *Client) PollVideoJob(ctx context.Context, jobID string) (capability.VideoStatus, error) {
	if strings.TrimSpace(jobID) == "" {
		return capability.VideoStatus{}, services.Wrap(services.ErrValidation, "video", "poll", "job id is required", nil)
	}
	var current task
	endpoint := c.cfg.BaseURL + "/tasks/" + url.PathEscape(jobID)
	if err := c.http.GetJSON(ctx, "poll", endpoint, c.headers(), &current); err != nil {
		return capability.VideoStatus{}, err
	}
	return mapStatus(current), nil
}

func mapStatus(t task) capability.VideoStatus {
	switch strings.ToUpper(strings.TrimSpace(t.Status)) {
	case "SUCCEEDED", "COMPLETED":
		for _, artifact := range t.Artifacts {
			if link := strings.TrimSpace(artifact.URL); link != "" {
				return capability.VideoStatus{State: capability.VideoSucceeded, Result: link}
			}
		}
		return capability.VideoStatus{State: capability.VideoFailed, Error: "task finished without a video"}
	case "FAILED", "CANCELLED", "CANCELED", "ERROR":
		msg := strings.TrimSpace(t.Error)
		if msg == "" {
			msg = "video generation failed"
		}
		return capability.VideoStatus{State: capability.VideoFailed, Error: msg}
	default:
		return capability.VideoStatus{State: capability.VideoRunning}
	}
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.cfg.APIKey)
	return h
}
