package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

func TestNewFromConfigWritesJSONFileCopy(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Level = "error"

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Error("boom", logging.String("scene", "Scene 1"))

	data, err := os.ReadFile(filepath.Join(cfg.Paths.LogDir, "reelsmith.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("expected json log line, got %q: %v", data, err)
	}
	if record["msg"] != "boom" || record["scene"] != "Scene 1" || record["level"] != "error" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerRendersSubject(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "subject.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "jobs").Info("poll",
		logging.String(logging.FieldStage, "Voiceover"),
		logging.String(logging.FieldArtifactKey, "Scene 2"),
		logging.String("status", "processing"),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	for _, want := range []string{"INFO [jobs]", `Voiceover · "Scene 2"`, "- poll", "status=processing"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

type captureHandler struct {
	records *[]slog.Record
	attrs   []slog.Attr
}

func (h captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h captureHandler) Handle(_ context.Context, r slog.Record) error {
	r.AddAttrs(h.attrs...)
	*h.records = append(*h.records, r)
	return nil
}

func (h captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return captureHandler{records: h.records, attrs: append(append([]slog.Attr(nil), h.attrs...), attrs...)}
}

func (h captureHandler) WithGroup(string) slog.Handler { return h }

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "Voiceover")
	ctx = services.WithArtifactKey(ctx, "Scene 1")
	ctx = services.WithJobID(ctx, "job-1")
	ctx = services.WithRequestID(ctx, "req-xyz")

	var records []slog.Record
	logger := slog.New(captureHandler{records: &records})
	logging.WithContext(ctx, logger).Info("contextual log")

	if len(records) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(records))
	}
	got := map[string]string{}
	records[0].Attrs(func(a slog.Attr) bool {
		got[a.Key] = a.Value.String()
		return true
	})
	want := map[string]string{
		logging.FieldStage:         "Voiceover",
		logging.FieldArtifactKey:   "Scene 1",
		logging.FieldJobID:         "job-1",
		logging.FieldCorrelationID: "req-xyz",
	}
	for key, value := range want {
		if got[key] != value {
			t.Fatalf("field %s = %q, want %q", key, got[key], value)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var records []slog.Record
	logger := slog.New(captureHandler{records: &records})
	logging.WarnWithContext(logger, "persist failed", "persist_failed", logging.String(logging.FieldImpact, "state not saved"))

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := map[string]string{}
	records[0].Attrs(func(a slog.Attr) bool {
		got[a.Key] = a.Value.String()
		return true
	})
	if got[logging.FieldEventType] != "persist_failed" {
		t.Fatalf("unexpected event type %q", got[logging.FieldEventType])
	}
	if got[logging.FieldImpact] != "state not saved" {
		t.Fatalf("impact overwritten: %q", got[logging.FieldImpact])
	}
	if got[logging.FieldErrorHint] == "" {
		t.Fatal("expected default error hint")
	}
}
