package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"reelsmith/internal/config"
	"reelsmith/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckLLM_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	result := CheckLLM(context.Background(), config.LLM{APIKey: "key", BaseURL: srv.URL})
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckLLM_BadKey(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	result := CheckLLM(context.Background(), config.LLM{APIKey: "bad", BaseURL: srv.URL})
	if result.Passed {
		t.Fatal("expected failure for bad key")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestCheckLLM_MissingKey(t *testing.T) {
	result := CheckLLM(context.Background(), config.LLM{})
	if result.Passed || !strings.Contains(result.Detail, "missing") {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckRedis(t *testing.T) {
	server := miniredis.RunT(t)
	addr := server.Addr()
	if result := CheckRedis(context.Background(), addr, "", 0); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	server.Close()
	if result := CheckRedis(context.Background(), addr, "", 0); result.Passed {
		t.Fatal("expected failure after server shutdown")
	}
}

func TestCheckCredentials(t *testing.T) {
	result := CheckCredentials("Vbee TTS", map[string]string{"vbee.app_id": "", "vbee.api_key": ""})
	if result.Passed || result.Detail != "missing vbee.api_key, vbee.app_id" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result := CheckCredentials("Image", map[string]string{"image.api_key": "k"}); !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	results := RunAll(context.Background(), cfg, false)

	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}
	if !byName["State directory"].Passed || !byName["LLM"].Passed || !byName["Image generation"].Passed {
		t.Fatalf("unexpected results %+v", results)
	}
	if byName["Vbee TTS"].Passed {
		t.Fatal("vbee has no credentials in the test config")
	}
	if _, ok := byName["Redis"]; ok {
		t.Fatal("redis check should only run for the redis backend")
	}
}
