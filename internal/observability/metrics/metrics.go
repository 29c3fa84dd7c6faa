// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "speech_segmentation"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Session metrics
	SessionsTotal  prometheus.Counter
	SessionsActive prometheus.Gauge

	// Detection metrics
	FramesProcessed prometheus.Counter
	TicksSkipped    prometheus.Counter
	Detections      *prometheus.CounterVec
	NoiseFloor      prometheus.Gauge
	AudioLevel      prometheus.Gauge

	// Segment metrics
	SegmentsEmitted   prometheus.Counter
	SegmentsDiscarded *prometheus.CounterVec
	SegmentsFailed    prometheus.Counter

	// Transcription metrics
	TranscribeLatency *prometheus.HistogramVec
	TranscribeRetries prometheus.Counter
	TranscribeErrors  *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		SessionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of recording sessions started",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently active recording sessions",
		}),

		FramesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_processed_total",
			Help:      "Total number of analysis frames processed",
		}),
		TicksSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_skipped_total",
			Help:      "Total number of detection ticks skipped due to malformed frames",
		}),
		Detections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detections_total",
			Help:      "Total number of per-tick classification outcomes",
		}, []string{"class"}),
		NoiseFloor: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "noise_floor",
			Help:      "Current background noise floor estimate",
		}),
		AudioLevel: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "audio_level",
			Help:      "Most recent normalized audio level (0-100)",
		}),

		SegmentsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_emitted_total",
			Help:      "Total number of audio segments handed off for transcription",
		}),
		SegmentsDiscarded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_discarded_total",
			Help:      "Total number of segments discarded before handoff",
		}, []string{"reason"}),
		SegmentsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_failed_total",
			Help:      "Total number of segments whose transcription failed permanently",
		}),

		TranscribeLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcribe_latency_seconds",
			Help:      "Transcription request latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider"}),
		TranscribeRetries: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcribe_retries_total",
			Help:      "Total number of transcription retry attempts",
		}),
		TranscribeErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcribe_errors_total",
			Help:      "Total number of transcription errors",
		}, []string{"provider", "error_type"}),

		KafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),
	}
}

// RecordSessionStart records a new recording session starting.
func (m *Metrics) RecordSessionStart() {
	m.SessionsTotal.Inc()
	m.SessionsActive.Inc()
}

// RecordSessionEnd records a recording session ending.
func (m *Metrics) RecordSessionEnd() {
	m.SessionsActive.Dec()
}

// RecordFrame records one processed analysis frame.
func (m *Metrics) RecordFrame() {
	m.FramesProcessed.Inc()
}

// RecordTickSkipped records a detection tick skipped due to a bad frame.
func (m *Metrics) RecordTickSkipped() {
	m.TicksSkipped.Inc()
}

// RecordDetection records a classification outcome: "voice", "computer",
// "silence" or "ambiguous".
func (m *Metrics) RecordDetection(class string, audioLevel, noiseFloor float64) {
	m.Detections.WithLabelValues(class).Inc()
	m.AudioLevel.Set(audioLevel)
	m.NoiseFloor.Set(noiseFloor)
}

// RecordSegmentEmitted records a segment handed off for transcription.
func (m *Metrics) RecordSegmentEmitted() {
	m.SegmentsEmitted.Inc()
}

// RecordSegmentDiscarded records a segment discarded before handoff.
func (m *Metrics) RecordSegmentDiscarded(reason string) {
	m.SegmentsDiscarded.WithLabelValues(reason).Inc()
}

// RecordSegmentFailed records a segment that exhausted transcription retries.
func (m *Metrics) RecordSegmentFailed() {
	m.SegmentsFailed.Inc()
}

// RecordTranscribe records one transcription attempt. errType is "" on
// success, "transient" or "permanent" otherwise.
func (m *Metrics) RecordTranscribe(provider, errType string, latencySeconds float64) {
	m.TranscribeLatency.WithLabelValues(provider).Observe(latencySeconds)
	if errType != "" {
		m.TranscribeErrors.WithLabelValues(provider, errType).Inc()
	}
}

// RecordRetry records a transcription retry attempt.
func (m *Metrics) RecordRetry() {
	m.TranscribeRetries.Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}
