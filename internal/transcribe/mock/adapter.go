// Package mock provides a mock transcription adapter for running the
// pipeline without a provider. It cycles through canned transcripts and can
// be scripted to fail, which makes the retry policy testable end to end.
package mock

import (
	"context"
	"sync"

	"speech-segmentation-service/internal/transcribe"
)

// DefaultTranscripts are cycled through on successive calls.
var DefaultTranscripts = []string{
	"I want to cancel my subscription",
	"Yes please go ahead",
	"Can you help me with my account",
	"I've been waiting for over an hour",
	"Thank you very much",
}

// Adapter implements transcribe.Adapter with canned responses.
type Adapter struct {
	mu    sync.Mutex
	calls int

	// Errs is consumed one per call before falling back to success. Lets
	// tests script transient/permanent failure sequences.
	Errs []error
}

// New creates a mock adapter.
func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Name() string { return "mock" }

// Calls returns how many Transcribe calls the adapter has seen.
func (a *Adapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Transcribe returns the next scripted error, or the next canned transcript.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, mime string, opts transcribe.Options) (*transcribe.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := a.calls
	a.calls++

	if idx < len(a.Errs) && a.Errs[idx] != nil {
		return nil, a.Errs[idx]
	}

	text := DefaultTranscripts[idx%len(DefaultTranscripts)]
	lang := opts.Language
	if lang == "" || lang == "auto" {
		lang = "en"
	}
	return &transcribe.Result{
		Text:     text,
		Language: lang,
		Duration: float64(len(audio)) / 88200.0, // 16-bit mono at 44.1kHz
	}, nil
}
