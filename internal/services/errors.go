package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrGeneration    = errors.New("generation failed")
	ErrExternalTool  = errors.New("external service error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether repeating the call could succeed without operator action.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, ErrTransient), errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return true
	default:
		return false
	}
}

// Hint returns a short operator-facing next step for err, used as error_hint in logs.
func Hint(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "check credentials and endpoints in config.toml"
	case errors.Is(err, ErrValidation):
		return "the service returned unusable output; retry the step"
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrTransient):
		return "temporary failure; retry the step"
	case errors.Is(err, ErrNotFound):
		return "the remote resource no longer exists"
	default:
		return "check logs for details"
	}
}

// ErrorDetails is the structured view of a classified error.
type ErrorDetails struct {
	Kind    string
	Hint    string
	Message string
}

// Details classifies err by its marker for structured log fields and user-facing banners.
func Details(err error) ErrorDetails {
	if err == nil {
		return ErrorDetails{}
	}
	kind := "unknown"
	for _, marker := range []struct {
		err  error
		name string
	}{
		{ErrConfiguration, "configuration"},
		{ErrValidation, "validation"},
		{ErrTimeout, "timeout"},
		{ErrTransient, "transient"},
		{ErrNotFound, "not_found"},
		{ErrExternalTool, "external"},
		{ErrGeneration, "generation"},
	} {
		if errors.Is(err, marker.err) {
			kind = marker.name
			break
		}
	}
	return ErrorDetails{Kind: kind, Hint: Hint(err), Message: err.Error()}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{stage, operation, message} {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
