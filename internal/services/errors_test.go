package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"reelsmith/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "voiceover", "vbee", "synthesize failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"voiceover", "vbee", "synthesize failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"transient", services.Wrap(services.ErrTransient, "llm", "call", "503", nil), true},
		{"timeout", services.Wrap(services.ErrTimeout, "llm", "call", "", nil), true},
		{"deadline", fmt.Errorf("wrapped: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"config", services.Wrap(services.ErrConfiguration, "llm", "call", "no key", nil), false},
	}
	for _, tt := range tests {
		if got := services.Retryable(tt.err); got != tt.want {
			t.Fatalf("%s: Retryable = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHintMentionsConfigForConfigurationErrors(t *testing.T) {
	err := services.Wrap(services.ErrConfiguration, "image", "generate", "missing api key", nil)
	if !strings.Contains(services.Hint(err), "config") {
		t.Fatalf("unexpected hint %q", services.Hint(err))
	}
}

func TestDetailsClassifiesMarker(t *testing.T) {
	err := services.Wrap(services.ErrValidation, "ideas", "decode", "schema mismatch", nil)
	details := services.Details(err)
	if details.Kind != "validation" {
		t.Fatalf("unexpected kind %q", details.Kind)
	}
	if details.Message != err.Error() {
		t.Fatalf("unexpected message %q", details.Message)
	}
	if (services.Details(nil) != services.ErrorDetails{}) {
		t.Fatal("expected zero details for nil error")
	}
}
