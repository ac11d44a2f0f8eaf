package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"reelsmith/internal/services"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = time.Second
	defaultRetryMaxDelay  = 10 * time.Second
	maxErrorBody          = 512
)

// Check inspects a successful response body. Errors wrapped with
// services.ErrTransient are retried; any other error is returned as is.
type Check func(body []byte) error

// Client performs rate-limited, retried HTTP calls for one service.
type Client struct {
	service    string
	httpClient *http.Client
	limiter    *rate.Limiter

	attempts  int
	baseDelay time.Duration
	maxDelay  time.Duration
	sleeper   func(time.Duration)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithRateLimit allows rps requests per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry overrides the attempt count and backoff bounds.
func WithRetry(attempts int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.baseDelay = baseDelay
		c.maxDelay = maxDelay
	}
}

// WithSleeper replaces the backoff sleep (tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// New returns a client labelled service in errors.
func New(service string, opts ...Option) *Client {
	c := &Client{
		service:    service,
		httpClient: &http.Client{Timeout: defaultTimeout},
		attempts:   defaultRetryAttempts,
		baseDelay:  defaultRetryBaseDelay,
		maxDelay:   defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.attempts < 1 {
		c.attempts = 1
	}
	return c
}

// Timeout reports the per-request timeout.
func (c *Client) Timeout() time.Duration {
	if c.httpClient.Timeout <= 0 {
		return defaultTimeout
	}
	return c.httpClient.Timeout
}

// Request describes one call. Body, when non-nil, is JSON encoded.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   any
	Check  Check
}

// Do performs req with rate limiting and retries, returning the body of the
// first acceptable response.
func (c *Client) Do(ctx context.Context, op string, req Request) ([]byte, error) {
	var encoded []byte
	if req.Body != nil {
		var err error
		if encoded, err = json.Marshal(req.Body); err != nil {
			return nil, services.Wrap(services.ErrValidation, c.service, op, "encode request", err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		body, err := c.once(ctx, req, encoded)
		if err == nil && req.Check != nil {
			err = req.Check(body)
		}
		if err == nil {
			return body, nil
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, err, attempt)
		if !retry {
			break
		}
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
	return nil, c.classify(op, lastErr)
}

// PostJSON posts body and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, op, url string, header http.Header, body, out any) error {
	data, err := c.Do(ctx, op, Request{Method: http.MethodPost, URL: url, Header: header, Body: body})
	if err != nil {
		return err
	}
	return c.decode(op, data, out)
}

// GetJSON fetches url and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, op, url string, header http.Header, out any) error {
	data, err := c.Do(ctx, op, Request{Method: http.MethodGet, URL: url, Header: header})
	if err != nil {
		return err
	}
	return c.decode(op, data, out)
}

func (c *Client) decode(op string, data []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return services.Wrap(services.ErrValidation, c.service, op, "decode response: "+Snippet(string(data)), err)
	}
	return nil
}

func (c *Client) once(ctx context.Context, req Request, encoded []byte) ([]byte, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var reader io.Reader
	if encoded != nil {
		reader = bytes.NewReader(encoded)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, reader)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if encoded != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http error (timeout=%s): %w", c.Timeout(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := ParseRetryAfter(resp.Header.Get("Retry-After"))
		return body, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body)), RetryAfter: retryAfter}
	}
	return body, nil
}

// classify tags err with the marker the workflow uses to pick a hint.
func (c *Client) classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	for _, marker := range []error{services.ErrConfiguration, services.ErrValidation, services.ErrTransient, services.ErrTimeout, services.ErrNotFound} {
		if errors.Is(err, marker) {
			return err
		}
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusUnauthorized, statusErr.StatusCode == http.StatusForbidden:
			return services.Wrap(services.ErrConfiguration, c.service, op, "credentials rejected", err)
		case statusErr.StatusCode == http.StatusNotFound:
			return services.Wrap(services.ErrNotFound, c.service, op, "", err)
		case statusErr.retryable():
			return services.Wrap(services.ErrTransient, c.service, op, "", err)
		default:
			return services.Wrap(services.ErrExternalTool, c.service, op, "", err)
		}
	}
	if isTimeout(err) {
		return services.Wrap(services.ErrTimeout, c.service, op, "", err)
	}
	return services.Wrap(services.ErrExternalTool, c.service, op, "", err)
}

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, Snippet(e.Body))
}

func (e *StatusError) retryable() bool {
	return e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= http.StatusInternalServerError
}

// Snippet flattens content to one line of at most maxErrorBody runes.
func Snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	runes := []rune(clean)
	if len(runes) > maxErrorBody {
		return string(runes[:maxErrorBody]) + "..."
	}
	return clean
}
