// Package models defines the data structures for transcript events.
package models

// Event type constants for the two published topics.
const (
	EventTranscriptFinal = "session.transcript.final"
	EventSegmentFailed   = "session.segment.failed"
)

// TranscriptFinal represents a completed segment transcription.
type TranscriptFinal struct {
	EventType string  `json:"eventType"`
	SessionID string  `json:"sessionId"`
	SegmentID string  `json:"segmentId"`
	Timestamp int64   `json:"timestamp"`
	Text      string  `json:"text"`
	Language  string  `json:"language,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	Provider  string  `json:"provider"`
}

// SegmentFailed represents a segment whose transcription exhausted its
// retries or hit a non-transient error.
type SegmentFailed struct {
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId"`
	SegmentID string `json:"segmentId"`
	Timestamp int64  `json:"timestamp"`
	Error     string `json:"error"`
	Attempts  int    `json:"attempts"`
	Provider  string `json:"provider"`
}
