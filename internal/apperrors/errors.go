package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies application errors for transport-agnostic handling.
// All domain errors surfaced by services are expressed as one of these kinds.
type Kind string

const (
	// KindValidation marks malformed or missing input. Never mutates state.
	KindValidation Kind = "validation"
	// KindNotFound marks a referenced record that does not exist.
	KindNotFound Kind = "not_found"
	// KindConflict marks a uniqueness or idempotency violation.
	KindConflict Kind = "conflict"
	// KindIntegrity marks a missing record the system's invariants require to
	// exist. Fatal to the enclosing transaction and logged for operators.
	KindIntegrity Kind = "integrity"
	// KindTransient marks exhausted notification retries or a store
	// transaction that could not commit. The caller retries from the top.
	KindTransient Kind = "transient"
)

// HTTPStatus maps an error kind to its HTTP status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindIntegrity:
		return http.StatusInternalServerError
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is the standard typed error used across services. Handlers translate
// it to an HTTP response; everything else propagates it unchanged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for errors.Is/errors.As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status for this error's kind.
func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// Validation creates a validation error.
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Integrity creates an integrity error.
func Integrity(format string, args ...interface{}) *Error {
	return &Error{Kind: KindIntegrity, Message: fmt.Sprintf(format, args...)}
}

// Transient creates a transient error wrapping the underlying cause.
func Transient(message string, err error) *Error {
	return &Error{Kind: KindTransient, Message: message, Err: err}
}

// KindOf returns the kind of err, or the empty Kind when err is not an
// application error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// HTTPStatus returns the status for err, defaulting to 500 for untyped errors.
func HTTPStatus(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
