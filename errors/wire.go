package errors

import (
	stderrors "errors"
	"net/http"
)

// The wire protocol surfaces errors as a flat {"error": "<message>"} body.
// These helpers map an error chain onto that shape so handlers never have
// to type-switch on AppError themselves.

// AsAppError unwraps err into an *AppError when one is anywhere in its chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsAppError reports whether an *AppError is anywhere in err's chain.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

// WireStatus returns the HTTP status a handler should respond with for err.
// Untyped errors map to 500.
func WireStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// WireMessage returns the message a handler should put on the wire for err.
// AppErrors surface their Message, keeping internal cause chains and error
// codes off the wire; untyped errors surface Error() verbatim.
func WireMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
