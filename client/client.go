package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/voicetypr/remote/logger"
	"github.com/voicetypr/remote/sharing"
)

const (
	// statusTimeout bounds the lightweight status probe.
	statusTimeout = 5 * time.Second
	// maxErrorBody limits how much of an error response we read back.
	maxErrorBody = 4 << 10
)

// Client talks to a remote transcription server.
type Client struct {
	http *http.Client
	log  *logger.Logger
}

// New creates a client. The underlying http.Client carries no global
// timeout; per-request deadlines come from the request context.
func New(log *logger.Logger) *Client {
	return &Client{
		http: &http.Client{},
		log:  log.WithComponent("remote-client"),
	}
}

// Status probes a remote server and returns its status payload.
func (c *Client) Status(ctx context.Context, conn Connection) (*sharing.StatusResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, conn.StatusURL(), nil)
	if err != nil {
		return nil, newConnectionError(err)
	}
	if conn.Password != "" {
		req.Header.Set(sharing.AuthHeader, conn.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, newAuthError()
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newServerError(resp.StatusCode, body)
	}

	var status sharing.StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, newProtocolError(fmt.Sprintf("invalid status response: %v", err))
	}
	return &status, nil
}

// Transcribe sends audio to a remote server and returns the transcript.
// The request deadline scales with the audio duration and source.
func (c *Client) Transcribe(ctx context.Context, conn Connection, audio []byte, audioDuration time.Duration, source Source) (*sharing.TranscribeResponse, error) {
	timeout := CalculateTimeout(audioDuration, source)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c.log.Debug("sending audio for remote transcription", logger.Fields(
		logger.FieldServer, conn.DisplayName(),
		"bytes", len(audio),
		"timeout", timeout.String(),
		"source", source.String(),
	))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, conn.TranscribeURL(), bytes.NewReader(audio))
	if err != nil {
		return nil, newConnectionError(err)
	}
	req.Header.Set("Content-Type", "audio/wav")
	if conn.Password != "" {
		req.Header.Set(sharing.AuthHeader, conn.Password)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, newAuthError()
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := serverMessage(body)
		return nil, &Error{Code: CodeServer, StatusCode: resp.StatusCode, Message: msg}
	}

	// Decode into a raw map first so a well-formed JSON body that is
	// missing the transcript still surfaces as a protocol error.
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, newProtocolError(fmt.Sprintf("invalid transcription response: %v", err))
	}
	textRaw, ok := raw["text"]
	if !ok {
		return nil, newProtocolError("transcription response missing text field")
	}

	var result sharing.TranscribeResponse
	if err := json.Unmarshal(textRaw, &result.Text); err != nil {
		return nil, newProtocolError(fmt.Sprintf("invalid text field: %v", err))
	}
	if v, ok := raw["duration_ms"]; ok {
		_ = json.Unmarshal(v, &result.DurationMS)
	}
	if v, ok := raw["model"]; ok {
		_ = json.Unmarshal(v, &result.Model)
	}

	c.log.Info("remote transcription complete", logger.DurationFields("transcribe", time.Since(start)), logger.Fields(
		logger.FieldServer, conn.DisplayName(),
		logger.FieldModel, result.Model,
	))
	return &result, nil
}

// serverMessage extracts the error message from a server error body,
// falling back to the raw body when it is not the expected JSON shape.
func serverMessage(body []byte) string {
	var er sharing.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		return er.Error
	}
	return string(body)
}

// classifyTransport maps a transport-level failure to a typed error.
func classifyTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newTimeoutError(err)
	}
	var ne interface{ Timeout() bool }
	if errors.As(err, &ne) && ne.Timeout() {
		return newTimeoutError(err)
	}
	return newConnectionError(err)
}
