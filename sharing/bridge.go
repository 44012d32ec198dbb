package sharing

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/voicetypr/remote/errors"
	"github.com/voicetypr/remote/logger"
	"github.com/voicetypr/remote/transcription"
)

// ServerContext is the narrow interface the protocol layer depends on.
// It is satisfied by EngineBridge in production and by mocks in tests.
type ServerContext interface {
	GetModelName() string
	GetServerName() string
	// GetPassword returns the shared secret, or "" when no auth is required.
	GetPassword() string
	Transcribe(ctx context.Context, audio []byte) (*TranscribeResponse, error)
}

// EngineBridge implements ServerContext by writing request audio to a
// temporary file and dispatching to whichever registered engine the current
// ModelState names.
//
// Transcriptions are serialized process-wide: local inference saturates the
// CPU/accelerator, so concurrent runs would thrash rather than parallelize.
// Status reads are not serialized.
type EngineBridge struct {
	serverName string
	password   string
	state      *ModelState
	registry   *transcription.Registry
	log        *logger.Logger

	// transcribeMu admits one transcription at a time.
	transcribeMu sync.Mutex
}

// NewEngineBridge creates a bridge over the given model state and engine registry.
func NewEngineBridge(serverName, password string, state *ModelState, registry *transcription.Registry, log *logger.Logger) *EngineBridge {
	return &EngineBridge{
		serverName: serverName,
		password:   password,
		state:      state,
		registry:   registry,
		log:        log.WithComponent("bridge"),
	}
}

// GetModelName returns the currently served model name.
func (b *EngineBridge) GetModelName() string { return b.state.ModelName() }

// GetServerName returns the server's display name.
func (b *EngineBridge) GetServerName() string { return b.serverName }

// GetPassword returns the shared secret, or "" when no auth is required.
func (b *EngineBridge) GetPassword() string { return b.password }

// Transcribe writes the audio bytes to a temporary file and runs the engine
// named by the current model state.
func (b *EngineBridge) Transcribe(ctx context.Context, audio []byte) (*TranscribeResponse, error) {
	start := time.Now()

	if len(audio) == 0 {
		return nil, fmt.Errorf("Empty audio data")
	}

	// Read the model identity once; a hot swap mid-request must not affect us.
	model := b.state.Snapshot()

	b.log.Info("starting transcription", logger.Fields(
		"bytes", len(audio),
		logger.FieldEngine, model.Engine,
		logger.FieldModel, model.Name,
	))

	tmp, err := os.CreateTemp("", "voicetypr-remote-*.wav")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(audio); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush temp file: %w", err)
	}

	provider, err := b.registry.Get(model.Engine)
	if err != nil {
		return nil, errors.Transcription(err)
	}
	if !provider.IsAvailable(ctx) {
		return nil, errors.Transcription(fmt.Errorf("engine %s is not available", model.Engine))
	}

	b.transcribeMu.Lock()
	result, err := provider.Transcribe(ctx, transcription.Request{
		AudioPath: tmpPath,
		ModelPath: model.Path,
		Model:     model.Name,
	})
	b.transcribeMu.Unlock()
	if err != nil {
		return nil, errors.Transcription(err)
	}

	durationMS := uint64(time.Since(start).Milliseconds())

	b.log.Info("transcription completed", logger.Fields(
		"chars", len(result.Text),
		logger.FieldDuration, durationMS,
		logger.FieldModel, model.Name,
		logger.FieldEngine, model.Engine,
	))

	return &TranscribeResponse{
		Text:       result.Text,
		DurationMS: durationMS,
		Model:      model.Name,
	}, nil
}
