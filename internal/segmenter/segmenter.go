// Package segmenter decides when the buffered audio of a recording session is
// ready to hand off for transcription. Segmentation is voice-activity gated
// rather than fixed-interval: a segment "ripens" once enough voiced seconds
// accumulate, then waits for a pause so the cut never lands mid-word.
package segmenter

import (
	"sync"
	"time"
)

// Gates applied to each detection tick, on top of the classifier's own
// internal energy gate. This coarser second filter rejects low-level false
// positives before they drive segmentation.
const (
	MinConfidence = 0.3
	MinAudioLevel = 20.0
)

// Config holds the segmentation timing knobs.
type Config struct {
	// SegmentDuration is the voiced time after which a segment ripens.
	// Recommended 3-30s.
	SegmentDuration time.Duration

	// PauseThreshold is the continuous silence required before a ripe
	// segment is emitted. Recommended 500-3000ms.
	PauseThreshold time.Duration
}

// DefaultConfig matches the service defaults: 8s segments, 1s pause.
func DefaultConfig() Config {
	return Config{
		SegmentDuration: 8 * time.Second,
		PauseThreshold:  time.Second,
	}
}

// Tick is the per-detection-tick input: the classifier decision reduced to
// what segmentation needs.
type Tick struct {
	IsHumanVoice bool
	Confidence   float64
	AudioLevel   float64
}

// Snapshot is a read-only copy of the machine's state for display and tests.
type Snapshot struct {
	Recording            bool
	IsVoiceActive        bool
	WasVoiceActive       bool
	TotalRecordingTime   int // seconds since Start
	ActiveRecordingTime  int // voiced seconds, cumulative for the session
	SegmentRecordingTime int // voiced seconds since the last emission
	IsSegmentReady       bool
	LastVoiceEndTime     time.Time
}

// Segmenter is the per-session segmentation state machine. The second-tick
// and detection-tick clocks both mutate the same state, so every transition
// runs under one mutex; callers must route both tickers through a single
// instance.
type Segmenter struct {
	mu  sync.Mutex
	cfg Config

	recording            bool
	isVoiceActive        bool
	wasVoiceActive       bool
	totalRecordingTime   int
	activeRecordingTime  int
	segmentRecordingTime int
	isSegmentReady       bool
	lastVoiceEndTime     time.Time
}

// New creates a segmenter in the idle state.
func New(cfg Config) *Segmenter {
	return &Segmenter{cfg: cfg}
}

// Start transitions Idle -> Recording with fresh counters.
func (s *Segmenter) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = true
	s.isVoiceActive = false
	s.wasVoiceActive = false
	s.totalRecordingTime = 0
	s.activeRecordingTime = 0
	s.segmentRecordingTime = 0
	s.isSegmentReady = false
	s.lastVoiceEndTime = time.Time{}
}

// Stop transitions back to Idle. Counters are preserved for a final snapshot.
func (s *Segmenter) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recording = false
}

// Recording reports whether the machine is in the Recording state.
func (s *Segmenter) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recording
}

// SecondTick advances the coarse clocks. Voiced seconds ripen the segment;
// once ripe it stays ripe until emission, even if the speaker keeps going
// past the nominal duration.
func (s *Segmenter) SecondTick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return
	}
	s.totalRecordingTime++
	if !s.isVoiceActive {
		return
	}
	s.activeRecordingTime++
	s.segmentRecordingTime++
	if !s.isSegmentReady && float64(s.segmentRecordingTime) >= s.cfg.SegmentDuration.Seconds() {
		s.isSegmentReady = true
	}
}

// DetectionTick consumes one classifier decision and reports whether the
// buffered segment should be emitted now. Emission resets segment ripeness
// and the per-segment clock; the cumulative active clock is untouched.
func (s *Segmenter) DetectionTick(tick Tick, now time.Time) (emit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.recording {
		return false
	}

	voiceDetected := tick.IsHumanVoice && tick.Confidence > MinConfidence && tick.AudioLevel > MinAudioLevel

	switch {
	case voiceDetected && !s.isVoiceActive:
		s.isVoiceActive = true
		s.wasVoiceActive = true
	case !voiceDetected && s.isVoiceActive:
		s.isVoiceActive = false
		s.lastVoiceEndTime = now
	}

	if s.isSegmentReady && !s.isVoiceActive &&
		!s.lastVoiceEndTime.IsZero() && now.Sub(s.lastVoiceEndTime) >= s.cfg.PauseThreshold {
		s.isSegmentReady = false
		s.segmentRecordingTime = 0
		return true
	}
	return false
}

// Snapshot returns a consistent copy of the current state.
func (s *Segmenter) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Recording:            s.recording,
		IsVoiceActive:        s.isVoiceActive,
		WasVoiceActive:       s.wasVoiceActive,
		TotalRecordingTime:   s.totalRecordingTime,
		ActiveRecordingTime:  s.activeRecordingTime,
		SegmentRecordingTime: s.segmentRecordingTime,
		IsSegmentReady:       s.isSegmentReady,
		LastVoiceEndTime:     s.lastVoiceEndTime,
	}
}
