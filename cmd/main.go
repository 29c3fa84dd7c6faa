package main

import (
	"context"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"speech-segmentation-service/internal/audio"
	"speech-segmentation-service/internal/config"
	"speech-segmentation-service/internal/events"
	"speech-segmentation-service/internal/observability"
	"speech-segmentation-service/internal/observability/logging"
	"speech-segmentation-service/internal/segmenter"
	"speech-segmentation-service/internal/session"
	"speech-segmentation-service/internal/transcribe"
	googleadapter "speech-segmentation-service/internal/transcribe/google"
	"speech-segmentation-service/internal/transcribe/mock"
	"speech-segmentation-service/internal/transcribe/whisper"
	"speech-segmentation-service/internal/transcript"
)

func main() {
	cfg := config.Load()

	format := cfg.Observability.LogFormat
	if cfg.Service.Env == "dev" {
		format = "console"
	}
	logging.Init(logging.Config{
		Level:      cfg.Observability.LogLevel,
		Format:     format,
		TimeFormat: time.RFC3339,
	})

	// Configuration errors fail fast, before any capture or serving begins.
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	publisher := events.New(&events.Config{
		Enabled:     cfg.Kafka.Enabled,
		Brokers:     cfg.Kafka.Brokers,
		TopicFinal:  cfg.Kafka.TopicFinal,
		TopicFailed: cfg.Kafka.TopicFailed,
		Principal:   cfg.Kafka.Principal,
	})
	defer publisher.Close()

	store := transcript.NewStore()

	adapter, err := buildAdapter(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Transcribe.Provider).Msg("Failed to create transcription adapter")
	}

	client := transcribe.NewClient(adapter, store, publisher, transcribe.Options{
		Model:          cfg.Transcribe.Model,
		Language:       cfg.Transcribe.Language,
		Translate:      cfg.Transcribe.Translate,
		ResponseFormat: cfg.Transcribe.ResponseFormat,
	}, cfg.Transcribe.QueueDepth)

	obs := observability.NewServer(cfg.Observability.HTTPAddr, store)
	obs.Start()

	lis, err := net.Listen("tcp", ":"+cfg.Observability.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to listen on gRPC port")
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	// The capture layer is an external collaborator; this binary runs the
	// pipeline over the built-in synthetic source so the whole service can
	// be exercised without audio hardware.
	sess, err := session.New(demoSource(), session.Config{
		DetectionPeriod:   cfg.Source.DetectionPeriod,
		MinSegmentBytes:   cfg.Segmenter.MinSegmentBytes,
		SuppressorEnabled: cfg.Suppressor.Enabled,
		Segmenter: segmenter.Config{
			SegmentDuration: cfg.Segmenter.SegmentDuration,
			PauseThreshold:  cfg.Segmenter.PauseThreshold,
		},
	}, store, client)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create recording session")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		client.Run(gctx)
		return nil
	})
	g.Go(func() error {
		err := sess.Run(gctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info().Str("port", cfg.Observability.GRPCPort).Msg("Speech segmentation service started")
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
		grpcServer.GracefulStop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return obs.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("Service exited with error")
	}

	for _, seg := range store.Stale(cfg.Observability.StaleAfter, time.Now()) {
		log.Warn().Str("segmentId", seg.ID).Time("since", seg.Timestamp).Msg("Segment still processing at shutdown")
	}
	log.Info().Int("segments", store.Len()).Msg("Service shut down")
}

func buildAdapter(ctx context.Context, cfg *config.Configuration) (transcribe.Adapter, error) {
	switch cfg.Transcribe.Provider {
	case "whisper":
		return whisper.New(cfg.Transcribe.Endpoint, cfg.Transcribe.Timeout)
	case "google":
		return googleadapter.New(ctx, cfg.Source.SampleRateHz)
	default:
		return mock.New(), nil
	}
}

// demoSource scripts alternating speech-like tones and silence so segments
// ripen and emit on a short loop.
func demoSource() audio.FrameSource {
	var script []audio.ScriptSegment
	for i := 0; i < 6; i++ {
		script = append(script,
			audio.ScriptSegment{Ticks: 900, FreqHz: 150, Amplitude: 0.5},
			audio.ScriptSegment{Ticks: 200},
		)
	}
	return audio.NewSyntheticSource(script)
}
