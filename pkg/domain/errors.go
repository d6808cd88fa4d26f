// Package domain provides the canonical request/response model and the
// boundary error taxonomy shared by every layer of the client core.
package domain

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes a boundary error.
type ErrorKind string

const (
	// KindInvalidInput indicates malformed caller input (bad URL, bad payload).
	KindInvalidInput ErrorKind = "invalid_input"

	// KindIOFailure indicates a transport-level failure.
	KindIOFailure ErrorKind = "io_failure"

	// KindPluginLoadFailure indicates a plugin could not be loaded:
	// path not found, factory symbol missing, or factory returned nothing.
	KindPluginLoadFailure ErrorKind = "plugin_load_failure"

	// KindBufferTooSmall indicates a caller-provided buffer was too short
	// for a copy-out operation.
	KindBufferTooSmall ErrorKind = "buffer_too_small"

	// KindInternalPanic indicates a hook or internal operation failed
	// catastrophically and was contained.
	KindInternalPanic ErrorKind = "internal_panic"
)

// BoundaryError is the error type that crosses the client core's boundary.
// Internal code is free to use richer errors; the boundary flattens
// everything to a kind plus a human-readable message.
type BoundaryError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *BoundaryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *BoundaryError) Unwrap() error {
	return e.Err
}

// NewBoundaryError creates a boundary error with the given kind and message.
func NewBoundaryError(kind ErrorKind, message string) *BoundaryError {
	return &BoundaryError{Kind: kind, Message: message}
}

// WithCause attaches the underlying cause.
func (e *BoundaryError) WithCause(err error) *BoundaryError {
	e.Err = err
	return e
}

// Convenience constructors for the taxonomy.

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) *BoundaryError {
	return NewBoundaryError(KindInvalidInput, message)
}

// ErrIO creates a transport failure error.
func ErrIO(message string) *BoundaryError {
	return NewBoundaryError(KindIOFailure, message)
}

// ErrPluginLoad creates a plugin load failure error.
func ErrPluginLoad(message string) *BoundaryError {
	return NewBoundaryError(KindPluginLoadFailure, message)
}

// ErrBufferTooSmall creates a short buffer error.
func ErrBufferTooSmall(message string) *BoundaryError {
	return NewBoundaryError(KindBufferTooSmall, message)
}

// ErrInternalPanic creates a contained panic error.
func ErrInternalPanic(message string) *BoundaryError {
	return NewBoundaryError(KindInternalPanic, message)
}

// AsBoundary coerces err into a *BoundaryError. Errors that are not already
// boundary errors are flattened to the given fallback kind.
func AsBoundary(err error, fallback ErrorKind) *BoundaryError {
	var be *BoundaryError
	if errors.As(err, &be) {
		return be
	}
	return &BoundaryError{Kind: fallback, Message: err.Error(), Err: err}
}

// KindOf returns the kind of a boundary error, or KindInternalPanic for
// anything else.
func KindOf(err error) ErrorKind {
	var be *BoundaryError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternalPanic
}
