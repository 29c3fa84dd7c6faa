// Package transcribe defines the transcription provider interface and the
// sequential dispatch client that feeds segments to it.
package transcribe

import (
	"context"
	"errors"
	"net"
	"strings"
)

// Options are the per-request transcription options.
type Options struct {
	Model          string
	Language       string // BCP-47 code or "auto"
	Translate      bool
	ResponseFormat string // e.g. "json", "verbose_json"
}

// ResultSegment is one timed span of a transcription result.
type ResultSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the provider response for one audio buffer.
type Result struct {
	Text     string          `json:"text"`
	Language string          `json:"language,omitempty"`
	Duration float64         `json:"duration,omitempty"`
	Segments []ResultSegment `json:"segments,omitempty"`
}

// Adapter is a transcription provider (whisper HTTP endpoint, Google Cloud
// Speech, mock). It accepts an opaque audio buffer with a declared mime type
// and returns the transcript or an error.
type Adapter interface {
	Transcribe(ctx context.Context, audio []byte, mime string, opts Options) (*Result, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}

// transientMarkers are the error substrings the retry policy treats as
// recoverable. Anything else propagates immediately.
var transientMarkers = []string{
	"network",
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"server error",
	"status 502",
	"status 503",
	"status 504",
	"rate limit",
	"rate-limit",
	"rate_limit",
}

// IsTransient classifies an error for the retry policy.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
