package sharing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/voicetypr/remote/errors"
	"github.com/voicetypr/remote/logger"
)

// mockContext implements ServerContext for handler tests.
type mockContext struct {
	password string
	failWith string
	failErr  error
	called   bool
}

func (m *mockContext) GetModelName() string  { return "mock-model" }
func (m *mockContext) GetServerName() string { return "mock-server" }
func (m *mockContext) GetPassword() string   { return m.password }
func (m *mockContext) Transcribe(_ context.Context, _ []byte) (*TranscribeResponse, error) {
	m.called = true
	if m.failErr != nil {
		return nil, m.failErr
	}
	if m.failWith != "" {
		return nil, fmt.Errorf("%s", m.failWith)
	}
	return &TranscribeResponse{Text: "mock transcription", DurationMS: 100, Model: "mock-model"}, nil
}

func newTestRouter(ctx ServerContext) http.Handler {
	var inflight atomic.Int64
	return NewRouter(ctx, &inflight, logger.NewDefault("test"))
}

func TestStatusNoAuth(t *testing.T) {
	router := newTestRouter(&mockContext{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/status", http.NoBody))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %s", resp.Status)
	}
	if resp.Model != "mock-model" || resp.Name != "mock-server" {
		t.Errorf("unexpected identity: %+v", resp)
	}
}

func TestStatusAuthRequired(t *testing.T) {
	router := newTestRouter(&mockContext{password: "secret123"})

	// Missing header.
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/status", http.NoBody))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", rr.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errResp.Error != "unauthorized" {
		t.Errorf("expected unauthorized body, got %q", errResp.Error)
	}

	// Wrong header.
	rr = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/status", http.NoBody)
	req.Header.Set(AuthHeader, "wrongpassword")
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong header, got %d", rr.Code)
	}

	// Exact match.
	rr = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/v1/status", http.NoBody)
	req.Header.Set(AuthHeader, "secret123")
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with correct header, got %d", rr.Code)
	}
}

func TestTranscribeAuthCheckedBeforeBridge(t *testing.T) {
	ctx := &mockContext{password: "secret123"}
	router := newTestRouter(ctx)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/transcribe", bytes.NewReader([]byte("audio")))
	req.Header.Set("Content-Type", "audio/wav")
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if ctx.called {
		t.Error("bridge must not be invoked when auth fails")
	}
}

func TestTranscribeContentType(t *testing.T) {
	ctx := &mockContext{}
	router := newTestRouter(ctx)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/transcribe", bytes.NewReader([]byte("audio")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", rr.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errResp.Error != "unsupported_media_type" {
		t.Errorf("expected unsupported_media_type, got %q", errResp.Error)
	}
	if ctx.called {
		t.Error("bridge must not be invoked for a non-audio body")
	}
}

func TestTranscribeSuccess(t *testing.T) {
	router := newTestRouter(&mockContext{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/transcribe", bytes.NewReader([]byte("audio")))
	req.Header.Set("Content-Type", "audio/wav")
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp TranscribeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "mock transcription" {
		t.Errorf("unexpected text: %q", resp.Text)
	}
	if resp.Model != "mock-model" {
		t.Errorf("unexpected model: %s", resp.Model)
	}
}

func TestTranscribeBridgeFailure(t *testing.T) {
	router := newTestRouter(&mockContext{failWith: "model load failed"})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/transcribe", bytes.NewReader([]byte("audio")))
	req.Header.Set("Content-Type", "audio/wav")
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if errResp.Error != "model load failed" {
		t.Errorf("expected underlying message, got %q", errResp.Error)
	}
}

func TestTranscribeTypedErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "engine failure surfaces underlying message",
			err:        errors.Transcription(fmt.Errorf("model load failed")),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "model load failed",
		},
		{
			name:       "invalid input maps to its own status",
			err:        errors.Validation("audio too short"),
			wantStatus: http.StatusBadRequest,
			wantBody:   "audio too short",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&mockContext{failErr: tc.err})

			rr := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/v1/transcribe", bytes.NewReader([]byte("audio")))
			req.Header.Set("Content-Type", "audio/wav")
			router.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			var errResp ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if errResp.Error != tc.wantBody {
				t.Errorf("expected %q on the wire, got %q", tc.wantBody, errResp.Error)
			}
		})
	}
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter(&mockContext{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/api/v1/status", http.NoBody))
	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id in response headers")
	}
}
