package client

import (
	"errors"
	"fmt"
)

// ErrorCode classifies client-side request errors.
type ErrorCode int

const (
	// CodeTimeout indicates the request deadline elapsed.
	CodeTimeout ErrorCode = iota
	// CodeConnection indicates a connect-level failure (refused, DNS, reset).
	CodeConnection
	// CodeAuth indicates the server rejected the shared secret (401).
	CodeAuth
	// CodeServer indicates a non-2xx, non-401 response.
	CodeServer
	// CodeProtocol indicates a malformed success response.
	CodeProtocol
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case CodeTimeout:
		return "timeout"
	case CodeConnection:
		return "connection"
	case CodeAuth:
		return "auth"
	case CodeServer:
		return "server"
	case CodeProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is a classified remote request error.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// StatusCode is the HTTP status code (0 for connection-level errors).
	StatusCode int
	// Message describes the error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("remote: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("remote: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

func newTimeoutError(err error) *Error {
	return &Error{Code: CodeTimeout, Message: err.Error(), Err: err}
}

func newConnectionError(err error) *Error {
	return &Error{Code: CodeConnection, Message: err.Error(), Err: err}
}

func newAuthError() *Error {
	return &Error{Code: CodeAuth, StatusCode: 401, Message: "authentication failed"}
}

func newServerError(statusCode int, body []byte) *Error {
	return &Error{Code: CodeServer, StatusCode: statusCode, Message: string(body)}
}

func newProtocolError(msg string) *Error {
	return &Error{Code: CodeProtocol, StatusCode: 200, Message: msg}
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeTimeout
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeConnection
}

// IsAuth checks if an error is an authentication error.
func IsAuth(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == CodeAuth
}
