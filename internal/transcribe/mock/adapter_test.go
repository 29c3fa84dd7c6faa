package mock

import (
	"context"
	"errors"
	"testing"

	"speech-segmentation-service/internal/transcribe"
)

func TestAdapter_CyclesTranscripts(t *testing.T) {
	a := New()
	ctx := context.Background()

	for i := 0; i < len(DefaultTranscripts)+2; i++ {
		res, err := a.Transcribe(ctx, []byte("audio"), "audio/wav", transcribe.Options{})
		if err != nil {
			t.Fatalf("unexpected error on call %d: %v", i, err)
		}
		want := DefaultTranscripts[i%len(DefaultTranscripts)]
		if res.Text != want {
			t.Errorf("call %d: expected %q, got %q", i, want, res.Text)
		}
	}
	if a.Calls() != len(DefaultTranscripts)+2 {
		t.Errorf("expected %d calls, got %d", len(DefaultTranscripts)+2, a.Calls())
	}
}

func TestAdapter_ScriptedErrors(t *testing.T) {
	a := New()
	a.Errs = []error{errors.New("boom"), nil, errors.New("boom again")}
	ctx := context.Background()

	if _, err := a.Transcribe(ctx, nil, "audio/wav", transcribe.Options{}); err == nil {
		t.Error("expected scripted error on first call")
	}
	if _, err := a.Transcribe(ctx, nil, "audio/wav", transcribe.Options{}); err != nil {
		t.Errorf("expected success on second call, got %v", err)
	}
	if _, err := a.Transcribe(ctx, nil, "audio/wav", transcribe.Options{}); err == nil {
		t.Error("expected scripted error on third call")
	}

	// Past the script, every call succeeds.
	if _, err := a.Transcribe(ctx, nil, "audio/wav", transcribe.Options{}); err != nil {
		t.Errorf("expected success past the script, got %v", err)
	}
}

func TestAdapter_LanguageDefaults(t *testing.T) {
	a := New()
	ctx := context.Background()

	res, _ := a.Transcribe(ctx, nil, "audio/wav", transcribe.Options{Language: "auto"})
	if res.Language != "en" {
		t.Errorf("expected language 'en' for auto, got %s", res.Language)
	}
	res, _ = a.Transcribe(ctx, nil, "audio/wav", transcribe.Options{Language: "de"})
	if res.Language != "de" {
		t.Errorf("expected requested language 'de', got %s", res.Language)
	}
}

func TestAdapter_Name(t *testing.T) {
	if got := New().Name(); got != "mock" {
		t.Errorf("expected name 'mock', got %s", got)
	}
}
