package tts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelsmith/internal/services"
)

func TestVbeeSynthesize(t *testing.T) {
	var seen vbeeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("api-key"); got != "secret" {
			t.Errorf("api-key = %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&seen)
		_, _ = w.Write([]byte(`{"audio_link":"https://vbee.example/a.mp3"}`))
	}))
	defer server.Close()

	client := NewVbee(VbeeConfig{AppID: "app", APIKey: "secret", BaseURL: server.URL})
	link, err := client.Synthesize(context.Background(), "Xin chào", "hn_male_manhdung_48k-fhg")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if link != "https://vbee.example/a.mp3" {
		t.Fatalf("link = %q", link)
	}
	want := vbeeRequest{InputText: "Xin chào", VoiceCode: "hn_male_manhdung_48k-fhg", AppID: "app", BitRate: "128000", SampleRate: "44100", AudioFormat: "mp3"}
	if seen != want {
		t.Fatalf("request = %+v", seen)
	}
}

func TestVbeeMissingLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
	}))
	defer server.Close()

	_, err := NewVbee(VbeeConfig{AppID: "app", APIKey: "secret", BaseURL: server.URL}).Synthesize(context.Background(), "a", "v")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestVbeeRequiresCredentials(t *testing.T) {
	_, err := NewVbee(VbeeConfig{APIKey: "secret"}).Synthesize(context.Background(), "a", "v")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestGoogleSynthesize(t *testing.T) {
	var seen googleRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "gkey" {
			t.Errorf("key = %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&seen)
		_, _ = w.Write([]byte(`{"audioContent":"SUQz"}`))
	}))
	defer server.Close()

	client := NewGoogle(GoogleConfig{APIKey: "gkey", BaseURL: server.URL})
	audio, err := client.Synthesize(context.Background(), "Xin chào", "vi-VN-Wavenet-A")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if audio != "data:audio/mpeg;base64,SUQz" {
		t.Fatalf("audio = %q", audio)
	}
	if seen.Voice.LanguageCode != "vi-VN" || seen.Voice.Name != "vi-VN-Wavenet-A" || seen.AudioConfig.AudioEncoding != "MP3" {
		t.Fatalf("request = %+v", seen)
	}
}

func TestSynthesizeValidatesInput(t *testing.T) {
	_, err := NewGoogle(GoogleConfig{APIKey: "gkey"}).Synthesize(context.Background(), "  ", "vi-VN-Standard-A")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVoiceLanguage(t *testing.T) {
	tests := map[string]string{
		"vi-VN-Standard-A": "vi-VN",
		"en-US-Neural2-C":  "en-US",
		"manhdung":         "vi-VN",
		"zz-!!-x":          "vi-VN",
	}
	for voice, want := range tests {
		if got := VoiceLanguage(voice); got != want {
			t.Errorf("VoiceLanguage(%q) = %q want %q", voice, got, want)
		}
	}
}
