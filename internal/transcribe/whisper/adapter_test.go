package whisper

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"speech-segmentation-service/internal/transcribe"
)

func TestNew_RequiresEndpoint(t *testing.T) {
	if _, err := New("", time.Second); err == nil {
		t.Error("expected error for empty endpoint")
	}
}

func TestTranscribe_PostsAudioWithOptions(t *testing.T) {
	var gotBody []byte
	var gotQuery map[string][]string
	var gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotQuery = r.URL.Query()
		gotContentType = r.Header.Get("Content-Type")
		json.NewEncoder(w).Encode(transcribe.Result{Text: "hello there", Language: "en", Duration: 2.5})
	}))
	defer srv.Close()

	a, err := New(srv.URL, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := a.Transcribe(context.Background(), []byte("wav-bytes"), "audio/wav", transcribe.Options{
		Model:          "whisper-1",
		Language:       "en",
		Translate:      true,
		ResponseFormat: "json",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Text != "hello there" || res.Language != "en" || res.Duration != 2.5 {
		t.Errorf("unexpected result: %+v", res)
	}
	if string(gotBody) != "wav-bytes" {
		t.Errorf("expected raw audio body, got %q", gotBody)
	}
	if gotContentType != "audio/wav" {
		t.Errorf("expected content type audio/wav, got %s", gotContentType)
	}
	for key, want := range map[string]string{
		"model":           "whisper-1",
		"language":        "en",
		"task":            "translate",
		"response_format": "json",
	} {
		if len(gotQuery[key]) != 1 || gotQuery[key][0] != want {
			t.Errorf("query %s: expected %q, got %v", key, want, gotQuery[key])
		}
	}
}

func TestTranscribe_AutoLanguageOmitted(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(transcribe.Result{Text: "ok"})
	}))
	defer srv.Close()

	a, _ := New(srv.URL, time.Second)
	if _, err := a.Transcribe(context.Background(), nil, "audio/wav", transcribe.Options{Language: "auto"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gotQuery["language"]; ok {
		t.Error("auto language should not be sent to the server")
	}
}

func TestTranscribe_StatusClassification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"bad gateway", http.StatusBadGateway, true},
		{"unavailable", http.StatusServiceUnavailable, true},
		{"internal error", http.StatusInternalServerError, true},
		{"bad request", http.StatusBadRequest, false},
		{"unsupported media", http.StatusUnsupportedMediaType, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			a, _ := New(srv.URL, time.Second)
			_, err := a.Transcribe(context.Background(), nil, "audio/wav", transcribe.Options{})
			if err == nil {
				t.Fatalf("expected error for status %d", tt.status)
			}
			if got := transcribe.IsTransient(err); got != tt.transient {
				t.Errorf("IsTransient(%v) = %v, want %v", err, got, tt.transient)
			}
		})
	}
}

func TestTranscribe_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	a, _ := New(srv.URL, time.Second)
	if _, err := a.Transcribe(context.Background(), nil, "audio/wav", transcribe.Options{}); err == nil {
		t.Error("expected error for malformed response body")
	}
}
