package logging

import (
	"context"
	"log/slog"

	"reelsmith/internal/services"
)

const (
	FieldComponent = "component"
	// FieldStage names the workflow stage a record belongs to.
	FieldStage = "stage"
	// FieldArtifactKey is the canonical key of an image, thumbnail or voice.
	FieldArtifactKey = "artifact_key"
	// FieldJobID is the remote id of a video job.
	FieldJobID = "job_id"
	// FieldCorrelationID ties together the records of one engine action.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields lifts the project coordinates stored on ctx into attributes.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, Stage(stage))
	}
	if key, ok := services.ArtifactKeyFromContext(ctx); ok {
		fields = append(fields, ArtifactKey(key))
	}
	if job, ok := services.JobIDFromContext(ctx); ok {
		fields = append(fields, JobID(job))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns logger with ContextFields(ctx) attached.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
