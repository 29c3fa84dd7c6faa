// Package config loads service configuration from the environment.
// Configuration errors fail fast, before any audio capture begins.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServiceConfig identifies the service instance.
type ServiceConfig struct {
	Principal string
	Env       string // "dev" enables console logging
}

// SourceConfig describes the frame source geometry and tick rate.
type SourceConfig struct {
	SampleRateHz    int
	FFTSize         int
	WindowSize      int
	DetectionPeriod time.Duration
}

// SegmenterConfig holds the segmentation timing knobs.
type SegmenterConfig struct {
	SegmentDuration time.Duration
	PauseThreshold  time.Duration
	MinSegmentBytes int
}

// SuppressorConfig toggles the noise suppression path.
type SuppressorConfig struct {
	Enabled bool
}

// TranscribeConfig selects and parameterizes the transcription provider.
type TranscribeConfig struct {
	Provider       string // mock, whisper, google
	Endpoint       string // whisper only
	Model          string
	Language       string // code or "auto"
	Translate      bool
	ResponseFormat string
	Timeout        time.Duration
	QueueDepth     int
}

// KafkaConfig holds event publishing configuration.
type KafkaConfig struct {
	Enabled     bool
	Brokers     []string
	TopicFinal  string
	TopicFailed string
	Principal   string
}

// ObservabilityConfig holds logging and metrics server settings.
type ObservabilityConfig struct {
	LogLevel   string
	LogFormat  string
	HTTPAddr   string
	GRPCPort   string
	StaleAfter time.Duration
}

// Configuration is the full service configuration.
type Configuration struct {
	Service       ServiceConfig
	Source        SourceConfig
	Segmenter     SegmenterConfig
	Suppressor    SuppressorConfig
	Transcribe    TranscribeConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// Load reads configuration from the environment, applying defaults for
// anything unset or unparseable.
func Load() *Configuration {
	cfg := &Configuration{
		Service: ServiceConfig{
			Principal: envOrDefault("SERVICE_PRINCIPAL", "svc-speech-segmentation"),
			Env:       envOrDefault("ENV", ""),
		},
		Source: SourceConfig{
			SampleRateHz:    envOrDefaultInt("SOURCE_SAMPLE_RATE_HZ", 44100),
			FFTSize:         envOrDefaultInt("SOURCE_FFT_SIZE", 256),
			WindowSize:      envOrDefaultInt("SOURCE_WINDOW_SIZE", 256),
			DetectionPeriod: envOrDefaultDuration("DETECTION_PERIOD", 10*time.Millisecond),
		},
		Segmenter: SegmenterConfig{
			SegmentDuration: envOrDefaultDuration("SEGMENT_DURATION", 8*time.Second),
			PauseThreshold:  envOrDefaultDuration("PAUSE_THRESHOLD", time.Second),
			MinSegmentBytes: envOrDefaultInt("MIN_SEGMENT_BYTES", 1024),
		},
		Suppressor: SuppressorConfig{
			Enabled: envOrDefaultBool("SUPPRESSOR_ENABLED", true),
		},
		Transcribe: TranscribeConfig{
			Provider:       envOrDefault("TRANSCRIBE_PROVIDER", "mock"),
			Endpoint:       envOrDefault("TRANSCRIBE_ENDPOINT", ""),
			Model:          envOrDefault("TRANSCRIBE_MODEL", "whisper-1"),
			Language:       envOrDefault("TRANSCRIBE_LANGUAGE", "auto"),
			Translate:      envOrDefaultBool("TRANSCRIBE_TRANSLATE", false),
			ResponseFormat: envOrDefault("TRANSCRIBE_RESPONSE_FORMAT", "json"),
			Timeout:        envOrDefaultDuration("TRANSCRIBE_TIMEOUT", 30*time.Second),
			QueueDepth:     envOrDefaultInt("TRANSCRIBE_QUEUE_DEPTH", 16),
		},
		Kafka: KafkaConfig{
			Enabled:     envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:     splitNonEmpty(envOrDefault("KAFKA_BROKERS", "")),
			TopicFinal:  envOrDefault("KAFKA_TOPIC_FINAL", "session.transcript.final"),
			TopicFailed: envOrDefault("KAFKA_TOPIC_FAILED", "session.segment.failed"),
			Principal:   envOrDefault("KAFKA_PRINCIPAL", ""),
		},
		Observability: ObservabilityConfig{
			LogLevel:   envOrDefault("LOG_LEVEL", "info"),
			LogFormat:  envOrDefault("LOG_FORMAT", "json"),
			HTTPAddr:   envOrDefault("OBSERVABILITY_ADDR", ":9090"),
			GRPCPort:   envOrDefault("GRPC_PORT", "50051"),
			StaleAfter: envOrDefaultDuration("SEGMENT_STALE_AFTER", 30*time.Second),
		},
	}

	if cfg.Kafka.Principal == "" {
		cfg.Kafka.Principal = cfg.Service.Principal
	}
	return cfg
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Configuration) Validate() error {
	if d := c.Segmenter.SegmentDuration; d < 3*time.Second || d > 30*time.Second {
		return fmt.Errorf("SEGMENT_DURATION %v outside recommended range 3s-30s", d)
	}
	if p := c.Segmenter.PauseThreshold; p < 100*time.Millisecond || p > 5*time.Second {
		return fmt.Errorf("PAUSE_THRESHOLD %v outside range 100ms-5s", p)
	}
	if c.Source.DetectionPeriod <= 0 {
		return fmt.Errorf("DETECTION_PERIOD must be positive, got %v", c.Source.DetectionPeriod)
	}
	switch c.Transcribe.Provider {
	case "mock":
	case "whisper":
		if c.Transcribe.Endpoint == "" {
			return fmt.Errorf("TRANSCRIBE_ENDPOINT required for whisper provider")
		}
	case "google":
		if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS required for google provider")
		}
	default:
		return fmt.Errorf("unknown TRANSCRIBE_PROVIDER %q", c.Transcribe.Provider)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS required when Kafka is enabled")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
