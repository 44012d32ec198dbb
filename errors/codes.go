package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Protocol errors
const (
	// ErrCodeUnauthorized indicates the shared-secret check failed.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeUnsupportedMedia indicates the request body is not audio.
	ErrCodeUnsupportedMedia ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
)

// Lifecycle errors
const (
	// ErrCodeBindFailed indicates a listener could not be bound.
	ErrCodeBindFailed ErrorCode = "BIND_FAILED"
)

// Transcription errors
const (
	// ErrCodeTranscription indicates the transcription engine failed.
	ErrCodeTranscription ErrorCode = "TRANSCRIPTION_FAILED"
)

// Registry/validation errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)
