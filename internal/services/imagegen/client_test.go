package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelsmith/internal/services"
)

func TestGenerateImageReturnsDataURL(t *testing.T) {
	var seen generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("authorization = %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&seen)
		_, _ = w.Write([]byte(`{"data":[{"b64_json":"aGVsbG8="}]}`))
	}))
	defer server.Close()

	client := New(Config{APIKey: "key", BaseURL: server.URL})
	got, err := client.GenerateImage(context.Background(), "a cat on a table.", "Cinematic")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if got != "data:image/png;base64,aGVsbG8=" {
		t.Fatalf("got %q", got)
	}
	if seen.Prompt != "a cat on a table. Style: Cinematic." || seen.Model != defaultModel || seen.Size != defaultSize || seen.N != 1 {
		t.Fatalf("unexpected request %+v", seen)
	}
}

func TestGenerateImageHostedURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"url":"https://cdn.example/cat.png"}]}`))
	}))
	defer server.Close()

	got, err := New(Config{APIKey: "key", BaseURL: server.URL}).GenerateImage(context.Background(), "cat", "")
	if err != nil || got != "https://cdn.example/cat.png" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestGenerateImageFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	tests := []struct {
		name   string
		client *Client
		prompt string
		want   error
	}{
		{"empty prompt", New(Config{APIKey: "key", BaseURL: server.URL}), " ", services.ErrValidation},
		{"missing key", New(Config{BaseURL: server.URL}), "cat", services.ErrConfiguration},
		{"no image", New(Config{APIKey: "key", BaseURL: server.URL}), "cat", services.ErrExternalTool},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.client.GenerateImage(context.Background(), tt.prompt, "")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
