// Package errors defines the coded error type shared by the service and the
// API layer.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a session operation failure.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates invalid input parameters.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeConflict indicates the candidate time range overlaps an
	// existing session.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeNotFound indicates the requested session does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeUnavailable indicates an infrastructure failure (store or
	// worker pool); the request may be retried.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
)

// Error is a structured error carrying a code, a message and an optional
// cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// InvalidArgument creates an invalid argument error.
func InvalidArgument(msg string) *Error {
	return &Error{Code: ErrCodeInvalidArgument, Message: msg}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: ErrCodeConflict, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: msg}
}

// Unavailable creates an unavailable error with its cause.
func Unavailable(msg string, cause error) *Error {
	return &Error{Code: ErrCodeUnavailable, Message: msg, Cause: cause}
}

// IsCode checks if an error carries a specific code.
func IsCode(err error, code ErrorCode) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf extracts the error code from any error, falling back to the given
// default for uncoded errors.
func CodeOf(err error, defaultCode ErrorCode) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return defaultCode
}
