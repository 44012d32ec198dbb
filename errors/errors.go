// Package errors provides structured error handling for the remote
// transcription subsystem: typed error codes, HTTP status mapping, and
// retryable detection.
package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// --- Common Error Constructors ---

// Unauthorized creates an AppError for a failed shared-secret check.
func Unauthorized() *AppError {
	return &AppError{
		Code: ErrCodeUnauthorized, Message: "unauthorized",
		HTTPStatus: http.StatusUnauthorized, Retryable: false,
	}
}

// UnsupportedMediaType creates an AppError for a non-audio request body.
func UnsupportedMediaType(contentType string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedMedia, Message: "unsupported_media_type",
		HTTPStatus: http.StatusUnsupportedMediaType, Retryable: false,
		Details: map[string]any{"content_type": contentType},
	}
}

// BindFailed creates an AppError for a listener that could not be bound.
func BindFailed(addr string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeBindFailed, Message: fmt.Sprintf("failed to bind %s", addr),
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"addr": addr},
		Cause:   cause,
	}
}

// Transcription creates an AppError for a failed transcription run.
func Transcription(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscription, Message: cause.Error(),
		HTTPStatus: http.StatusInternalServerError, Retryable: true,
		Cause: cause,
	}
}

// NotFound creates an AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// Validation creates an AppError for invalid input.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// Internal creates an AppError wrapping an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Cause: cause,
	}
}
