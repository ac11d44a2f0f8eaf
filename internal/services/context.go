package services

import "context"

type contextKey string

const (
	stageKey       contextKey = "stage"
	artifactKeyKey contextKey = "artifact_key"
	jobIDKey       contextKey = "job_id"
	requestIDKey   contextKey = "request_id"
)

func withString(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func stringFrom(ctx context.Context, key contextKey) (string, bool) {
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the workflow stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	return withString(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, stageKey)
}

// WithArtifactKey annotates context with the scene or thumbnail key being generated.
func WithArtifactKey(ctx context.Context, key string) context.Context {
	return withString(ctx, artifactKeyKey, key)
}

// ArtifactKeyFromContext returns the artifact key if present.
func ArtifactKeyFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, artifactKeyKey)
}

// WithJobID annotates context with a remote video job identifier.
func WithJobID(ctx context.Context, id string) context.Context {
	return withString(ctx, jobIDKey, id)
}

// JobIDFromContext returns the remote job identifier if present.
func JobIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, jobIDKey)
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return withString(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringFrom(ctx, requestIDKey)
}
