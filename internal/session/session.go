// Package session runs one recording session: it pulls frames from the
// source, drives detection and suppression, feeds the segmentation state
// machine, and hands ripe segments off for transcription.
package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"speech-segmentation-service/internal/audio"
	"speech-segmentation-service/internal/denoise"
	"speech-segmentation-service/internal/detect"
	"speech-segmentation-service/internal/observability/logging"
	"speech-segmentation-service/internal/observability/metrics"
	"speech-segmentation-service/internal/segmenter"
	"speech-segmentation-service/internal/transcribe"
	"speech-segmentation-service/internal/transcript"
)

// maxBufferedSeconds caps the pending audio buffer; if the speaker never
// pauses, the oldest audio is dropped rather than growing without bound.
const maxBufferedSeconds = 300

// Dispatcher queues a segment for transcription. Satisfied by
// transcribe.Client.
type Dispatcher interface {
	Enqueue(req transcribe.Request) error
}

// Config holds per-session settings.
type Config struct {
	DetectionPeriod   time.Duration
	Segmenter         segmenter.Config
	MinSegmentBytes   int
	SuppressorEnabled bool
}

// DefaultConfig returns the service defaults.
func DefaultConfig() Config {
	return Config{
		DetectionPeriod: 10 * time.Millisecond,
		Segmenter:       segmenter.DefaultConfig(),
		MinSegmentBytes: 1024,
	}
}

// Session owns one set of detector/suppressor instances and their bounded
// history buffers. Nothing here is shared across sessions.
type Session struct {
	id         string
	cfg        Config
	source     audio.FrameSource
	format     audio.Format
	extractor  *detect.Extractor
	tracker    *detect.NoiseTracker
	classifier *detect.Classifier
	processor  *denoise.Processor
	seg        *segmenter.Segmenter
	store      *transcript.Store
	dispatcher Dispatcher
	metrics    *metrics.Metrics
	log        zerolog.Logger

	ids    segmentIDs
	buffer []float64

	// levels delivers per-tick detection results to observers. Sends never
	// block; a slow consumer just misses updates.
	levels chan detect.DetectionResult
}

// New creates a session over the given source. The source format must
// validate; capture/device failures are the caller's terminal errors.
func New(source audio.FrameSource, cfg Config, store *transcript.Store, dispatcher Dispatcher) (*Session, error) {
	format := source.Format()
	if err := format.Validate(); err != nil {
		return nil, err
	}
	extractor := detect.NewExtractor(format)
	proc := denoise.NewProcessor()
	proc.SetEnabled(cfg.SuppressorEnabled)

	id := newSessionID()
	return &Session{
		id:         id,
		cfg:        cfg,
		source:     source,
		format:     format,
		extractor:  extractor,
		tracker:    detect.NewNoiseTracker(),
		classifier: detect.NewClassifier(extractor.Bands()),
		processor:  proc,
		seg:        segmenter.New(cfg.Segmenter),
		store:      store,
		dispatcher: dispatcher,
		metrics:    metrics.DefaultMetrics,
		log:        logging.WithSession(id),
		levels:     make(chan detect.DetectionResult, 64),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Levels returns the detection result stream for display consumers.
func (s *Session) Levels() <-chan detect.DetectionResult { return s.levels }

// Snapshot returns the segmentation state for display.
func (s *Session) Snapshot() segmenter.Snapshot { return s.seg.Snapshot() }

// Run drives the session until ctx is cancelled or the source is exhausted.
// Both tickers post into this single loop, so all state transitions are
// serialized; a detection tick that overruns its period is coalesced by the
// ticker rather than run concurrently.
func (s *Session) Run(ctx context.Context) error {
	s.seg.Start()
	s.metrics.RecordSessionStart()
	defer s.metrics.RecordSessionEnd()
	defer s.seg.Stop()

	s.log.Info().
		Int("sampleRate", s.format.SampleRate).
		Int("fftSize", s.format.FFTSize).
		Dur("detectionPeriod", s.cfg.DetectionPeriod).
		Msg("Recording session started")

	detectTicker := time.NewTicker(s.cfg.DetectionPeriod)
	defer detectTicker.Stop()
	secondTicker := time.NewTicker(time.Second)
	defer secondTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Recording session stopped")
			return ctx.Err()
		case <-secondTicker.C:
			s.seg.SecondTick()
		case now := <-detectTicker.C:
			if !s.detectionTick(now) {
				s.log.Info().Msg("Frame source exhausted, session ending")
				return nil
			}
		}
	}
}

// detectionTick processes one frame. Returns false when the source is done.
func (s *Session) detectionTick(now time.Time) bool {
	frame, ok := s.source.Next()
	if !ok {
		return false
	}
	s.metrics.RecordFrame()

	features, err := s.extractor.Extract(frame)
	if err != nil {
		// Malformed frame: log, count, and treat the tick as silence
		// rather than crashing the session.
		s.log.Warn().Err(err).Msg("Skipping malformed frame")
		s.metrics.RecordTickSkipped()
		s.seg.DetectionTick(segmenter.Tick{}, now)
		return true
	}

	s.tracker.Update(features.ShortTimeEnergy)
	result := s.classifier.Classify(features, frame.FrequencyMagnitudes)

	s.processor.Process(frame.FrequencyMagnitudes, frame.TimeSamples,
		result.IsHumanVoice, s.tracker.BackgroundNoiseLevel())

	s.metrics.RecordDetection(classOf(result), result.AudioLevel, s.tracker.BackgroundNoiseLevel())
	select {
	case s.levels <- result:
	default:
	}

	s.bufferSamples(frame.TimeSamples)

	emit := s.seg.DetectionTick(segmenter.Tick{
		IsHumanVoice: result.IsHumanVoice,
		Confidence:   result.Confidence,
		AudioLevel:   result.AudioLevel,
	}, now)
	if emit {
		s.emitSegment()
	}
	return true
}

func (s *Session) bufferSamples(samples []float64) {
	s.buffer = append(s.buffer, samples...)
	if max := maxBufferedSeconds * s.format.SampleRate; len(s.buffer) > max {
		s.buffer = s.buffer[len(s.buffer)-max:]
	}
}

// emitSegment packages the buffered audio and queues it for transcription.
// Near-empty buffers are discarded silently; they carry nothing worth
// transcribing.
func (s *Session) emitSegment() {
	wav := audio.EncodeWAV(s.buffer, s.format.SampleRate)
	s.buffer = s.buffer[:0]

	if len(wav) < s.cfg.MinSegmentBytes {
		s.metrics.RecordSegmentDiscarded("too_small")
		s.log.Debug().Int("bytes", len(wav)).Msg("Discarding undersized segment")
		return
	}

	segID := s.ids.next(s.id)
	s.store.Begin(segID, time.Now())
	s.metrics.RecordSegmentEmitted()

	logger := logging.WithSegment(s.id, segID)
	logger.Info().Int("bytes", len(wav)).Msg("Segment ready, queueing for transcription")

	if err := s.dispatcher.Enqueue(transcribe.Request{
		SessionID: s.id,
		SegmentID: segID,
		Audio:     wav,
		Mime:      "audio/wav",
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to queue segment")
	}
}

func classOf(r detect.DetectionResult) string {
	switch {
	case r.IsHumanVoice:
		return "voice"
	case r.IsComputerAudio:
		return "computer"
	case r.Confidence >= detect.SilenceConfidence:
		return "silence"
	default:
		return "ambiguous"
	}
}
