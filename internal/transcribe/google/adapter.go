// Package google provides a Google Cloud Speech-to-Text adapter. Segments
// arrive as complete buffers, so batch Recognize fits the contract better
// than the streaming API.
package google

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"

	"speech-segmentation-service/internal/transcribe"
)

// Adapter implements transcribe.Adapter using Google Cloud Speech-to-Text.
type Adapter struct {
	client       *speech.Client
	sampleRateHz int32
}

// New creates a new Google adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, sampleRateHz int) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: c, sampleRateHz: int32(sampleRateHz)}, nil
}

func (a *Adapter) Name() string { return "google" }

// Transcribe runs a synchronous recognition over the buffered segment and
// flattens the alternatives into a single result.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, mime string, opts transcribe.Options) (*transcribe.Result, error) {
	lang := opts.Language
	if lang == "" || lang == "auto" {
		lang = "en-US"
	}

	resp, err := a.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encodingFor(mime),
			SampleRateHertz: a.sampleRateHz,
			LanguageCode:    lang,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("google recognize: %w", err)
	}

	result := &transcribe.Result{}
	var parts []string
	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		parts = append(parts, alt.Transcript)
		if r.LanguageCode != "" {
			result.Language = r.LanguageCode
		}
	}
	result.Text = strings.TrimSpace(strings.Join(parts, " "))
	return result, nil
}

// Close releases the underlying gRPC client.
func (a *Adapter) Close() error {
	return a.client.Close()
}

func encodingFor(mime string) speechpb.RecognitionConfig_AudioEncoding {
	switch {
	case strings.Contains(mime, "wav"), strings.Contains(mime, "wave"):
		return speechpb.RecognitionConfig_LINEAR16
	case strings.Contains(mime, "flac"):
		return speechpb.RecognitionConfig_FLAC
	case strings.Contains(mime, "ogg"):
		return speechpb.RecognitionConfig_OGG_OPUS
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED
	}
}
