// Package whisper implements transcription.Provider using a local
// whisper.cpp command-line binary and an on-disk GGML model.
package whisper

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/voicetypr/remote/transcription"
)

// ProviderName is the engine name this provider serves.
const ProviderName = "whisper"

const (
	defaultBinary  = "whisper-cli"
	defaultTimeout = 10 * time.Minute
)

// Config holds configuration for the local whisper provider.
type Config struct {
	// Binary is the whisper.cpp CLI executable (looked up on PATH if relative).
	Binary string `json:"binary" yaml:"binary"`
	// ModelPath is the default model file, used when the request carries none.
	ModelPath string `json:"model_path" yaml:"model_path"`
	// Language is the default transcription language.
	Language string `json:"language,omitempty" yaml:"language"`
	// Timeout bounds a single CLI invocation.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider runs whisper.cpp locally.
type Provider struct {
	cfg Config
}

// NewProvider creates a new local whisper provider.
func NewProvider(cfg Config) *Provider {
	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{cfg: cfg}
}

// Name returns the engine name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks that the CLI binary can be resolved.
func (p *Provider) IsAvailable(_ context.Context) bool {
	_, err := exec.LookPath(p.cfg.Binary)
	return err == nil
}

// Transcribe runs the whisper CLI against the request's audio file and
// returns the produced text.
func (p *Provider) Transcribe(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	modelPath := req.ModelPath
	if modelPath == "" {
		modelPath = p.cfg.ModelPath
	}
	if modelPath == "" {
		return nil, fmt.Errorf("whisper: no model path configured")
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("whisper: model not found at %s: %w", modelPath, err)
	}

	lang := req.Language
	if lang == "" {
		lang = p.cfg.Language
	}

	runCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	args := []string{
		"-m", modelPath,
		"-f", req.AudioPath,
		"--no-timestamps",
		"--no-prints",
	}
	if lang != "" {
		args = append(args, "-l", lang)
	}

	cmd := exec.CommandContext(runCtx, p.cfg.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("whisper: transcription timed out after %s", p.cfg.Timeout)
		}
		return nil, fmt.Errorf("whisper: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	text := strings.TrimSpace(stdout.String())
	return &transcription.Response{
		Text:     text,
		Language: lang,
	}, nil
}
