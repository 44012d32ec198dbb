// Package cloud implements transcription.Provider against a hosted
// speech-to-text HTTP API authenticated with an API key.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/voicetypr/remote/transcription"
)

// ProviderName is the engine name this provider serves.
const ProviderName = "cloud"

const defaultTimeout = 300 * time.Second

// Config holds configuration for the cloud ASR provider.
type Config struct {
	// URL is the transcription endpoint.
	URL string `json:"url" yaml:"url"`
	// APIKey authenticates requests as a bearer token.
	APIKey string `json:"api_key" yaml:"api_key"`
	// Model selects the hosted model.
	Model string `json:"model" yaml:"model"`
	// Timeout bounds a single request.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements transcription.Provider against the cloud API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new cloud transcription provider.
func NewProvider(cfg Config) *Provider {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name returns the engine name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether the provider is configured. The API itself is
// not probed to avoid burning quota on availability checks.
func (p *Provider) IsAvailable(_ context.Context) bool {
	return p.cfg.URL != "" && p.cfg.APIKey != ""
}

// Transcribe uploads the audio file to the cloud API and returns the result.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	if p.cfg.URL == "" || p.cfg.APIKey == "" {
		return nil, fmt.Errorf("cloud: provider not configured")
	}

	audioData, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("cloud: read audio file: %w", err)
	}

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio.wav")
	if err != nil {
		return nil, fmt.Errorf("cloud: create form file: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, fmt.Errorf("cloud: write audio data: %w", err)
	}

	if model != "" {
		_ = writer.WriteField("model", model)
	}
	if req.Language != "" {
		_ = writer.WriteField("language", req.Language)
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, &buf)
	if err != nil {
		return nil, fmt.Errorf("cloud: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("cloud: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cloud: error (status %d): %s", resp.StatusCode, string(body))
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("cloud: decode response: %w", err)
	}

	return &transcription.Response{
		Text:     result.Text,
		Duration: result.Duration,
		Language: result.Language,
	}, nil
}

type apiResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Language string  `json:"language"`
}
