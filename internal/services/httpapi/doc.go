// Package httpapi is the shared HTTP transport for the generation services.
//
// A Client adds three things to net/http: a token-bucket rate limit per
// service, retries with exponential backoff for 408/429/5xx responses and
// network timeouts (honouring Retry-After), and classification of failures
// into the services error markers so the workflow can log a useful hint.
//
// Callers pass a Check function to treat a well-formed but unusable body as
// retryable; returning an error wrapped with services.ErrTransient asks for
// another attempt.
package httpapi
