package transcribe

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"speech-segmentation-service/internal/models"
	"speech-segmentation-service/internal/observability/logging"
	"speech-segmentation-service/internal/observability/metrics"
	"speech-segmentation-service/internal/transcript"
)

const (
	// requestSpacing is the minimum gap between any two provider requests,
	// success or not, to respect upstream rate limits.
	requestSpacing = 200 * time.Millisecond

	// maxRetries bounds retries for transient errors; backoff doubles from
	// backoffBase (1s, 2s, 4s).
	maxRetries  = 3
	backoffBase = time.Second
)

// EventSink receives completion events. Satisfied by events.Publisher.
type EventSink interface {
	PublishFinal(ctx context.Context, key string, event any) error
	PublishFailed(ctx context.Context, key string, event any) error
}

// Request is one audio segment queued for transcription.
type Request struct {
	SessionID string
	SegmentID string
	Audio     []byte
	Mime      string
}

// Client dispatches segments to a provider sequentially: one worker, at most
// one request in flight, spacing between requests, exponential backoff on
// transient failures. A permanently failed segment is marked in the store and
// reported on the side channel; it never stops the worker.
type Client struct {
	adapter Adapter
	store   *transcript.Store
	sink    EventSink
	metrics *metrics.Metrics
	opts    Options
	queue   chan Request
	log     zerolog.Logger

	lastRequest time.Time

	// sleep is replaced in tests to observe backoff without waiting.
	sleep func(ctx context.Context, d time.Duration)
}

// NewClient creates a client over the given provider adapter.
func NewClient(adapter Adapter, store *transcript.Store, sink EventSink, opts Options, queueDepth int) *Client {
	if queueDepth <= 0 {
		queueDepth = 16
	}
	return &Client{
		adapter: adapter,
		store:   store,
		sink:    sink,
		metrics: metrics.DefaultMetrics,
		opts:    opts,
		queue:   make(chan Request, queueDepth),
		log:     logging.WithComponent("transcribe"),
		sleep:   sleepCtx,
	}
}

// Enqueue adds a segment to the dispatch queue without blocking. When the
// queue is full the segment is failed immediately; detection must never stall
// behind a slow provider.
func (c *Client) Enqueue(req Request) error {
	select {
	case c.queue <- req:
		return nil
	default:
		c.store.Fail(req.SegmentID)
		c.metrics.RecordSegmentFailed()
		return fmt.Errorf("transcription queue full, segment %s dropped", req.SegmentID)
	}
}

// Run processes the queue until ctx is cancelled. Call from one goroutine.
func (c *Client) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-c.queue:
			c.process(ctx, req)
		}
	}
}

func (c *Client) process(ctx context.Context, req Request) {
	logger := c.log.With().
		Str("sessionId", req.SessionID).
		Str("segmentId", req.SegmentID).
		Str("provider", c.adapter.Name()).
		Logger()

	var lastErr error
	attempts := 0
	for retry := 0; retry <= maxRetries; retry++ {
		if retry > 0 {
			backoff := backoffBase << (retry - 1)
			logger.Warn().
				Err(lastErr).
				Int("retry", retry).
				Dur("backoff", backoff).
				Msg("Transient transcription error, backing off")
			c.metrics.RecordRetry()
			c.sleep(ctx, backoff)
		}
		c.waitSpacing(ctx)
		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		res, err := c.adapter.Transcribe(ctx, req.Audio, req.Mime, c.opts)
		c.lastRequest = time.Now()
		attempts++
		c.metrics.RecordTranscribe(c.adapter.Name(), errType(err), time.Since(start).Seconds())

		if err == nil {
			c.complete(ctx, req, res, logger)
			return
		}
		lastErr = err
		if !IsTransient(err) {
			break
		}
	}

	c.store.Fail(req.SegmentID)
	c.metrics.RecordSegmentFailed()
	logger.Error().
		Err(lastErr).
		Int("attempts", attempts).
		Msg("Segment transcription failed permanently")

	ev := models.SegmentFailed{
		EventType: models.EventSegmentFailed,
		SessionID: req.SessionID,
		SegmentID: req.SegmentID,
		Timestamp: time.Now().UnixMilli(),
		Error:     lastErr.Error(),
		Attempts:  attempts,
		Provider:  c.adapter.Name(),
	}
	if err := c.sink.PublishFailed(ctx, req.SessionID, ev); err != nil {
		logger.Error().Err(err).Msg("Failed to publish segment-failed event")
	}
}

func (c *Client) complete(ctx context.Context, req Request, res *Result, logger zerolog.Logger) {
	if !c.store.Complete(req.SegmentID, res.Text) {
		// Duplicate or unknown completion; updates are idempotent by id.
		logger.Debug().Msg("Completion ignored for non-processing segment")
		return
	}
	logger.Info().
		Int("audioBytes", len(req.Audio)).
		Str("language", res.Language).
		Msg("Segment transcribed")

	ev := models.TranscriptFinal{
		EventType: models.EventTranscriptFinal,
		SessionID: req.SessionID,
		SegmentID: req.SegmentID,
		Timestamp: time.Now().UnixMilli(),
		Text:      res.Text,
		Language:  res.Language,
		Duration:  res.Duration,
		Provider:  c.adapter.Name(),
	}
	if err := c.sink.PublishFinal(ctx, req.SessionID, ev); err != nil {
		logger.Error().Err(err).Msg("Failed to publish transcript event")
	}
}

// waitSpacing enforces the minimum gap since the previous request ended.
func (c *Client) waitSpacing(ctx context.Context) {
	if c.lastRequest.IsZero() {
		return
	}
	if wait := requestSpacing - time.Since(c.lastRequest); wait > 0 {
		c.sleep(ctx, wait)
	}
}

func errType(err error) string {
	switch {
	case err == nil:
		return ""
	case IsTransient(err):
		return "transient"
	default:
		return "permanent"
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
