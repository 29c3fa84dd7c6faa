// Package whisper provides a transcription adapter for whisper-compatible
// HTTP endpoints. The audio buffer is POSTed as-is; options travel as query
// parameters.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"speech-segmentation-service/internal/transcribe"
)

// Adapter implements transcribe.Adapter against a whisper HTTP server.
type Adapter struct {
	endpoint string
	client   *http.Client
}

// New creates an adapter for the given endpoint URL.
func New(endpoint string, timeout time.Duration) (*Adapter, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("whisper endpoint not configured")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid whisper endpoint: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Adapter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

func (a *Adapter) Name() string { return "whisper" }

// Transcribe POSTs the audio buffer and decodes the JSON response.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, mime string, opts transcribe.Options) (*transcribe.Result, error) {
	u, err := url.Parse(a.endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	if opts.Model != "" {
		q.Set("model", opts.Model)
	}
	if opts.Language != "" && opts.Language != "auto" {
		q.Set("language", opts.Language)
	}
	if opts.Translate {
		q.Set("task", "translate")
	}
	if opts.ResponseFormat != "" {
		q.Set("response_format", opts.ResponseFormat)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(audio))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mime)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("whisper rate limit: status %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("whisper server error: status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("whisper rejected request: status %d", resp.StatusCode)
	}

	var out transcribe.Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding whisper response: %w", err)
	}
	return &out, nil
}
