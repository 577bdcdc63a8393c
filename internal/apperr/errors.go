// Package apperr formalizes the five wire-visible error kinds
// (VALIDATION_ERROR, RESOURCE_NOT_FOUND, CONFLICT, DATABASE_ERROR,
// INTERNAL_ERROR). Repository and validator code wraps errors with
// fmt.Errorf/%w; apperr gives that wrapping a typed, dispatcher-visible
// code instead of leaving it as plain strings.
package apperr

import (
	"errors"
	"fmt"
)

// Code is one of the five wire-visible error kinds.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeNotFound      Code = "RESOURCE_NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeDatabase      Code = "DATABASE_ERROR"
	CodeInternal      Code = "INTERNAL_ERROR"
)

// Error is the concrete carrier for a coded, wrapped error.
type Error struct {
	Code    Code
	Message string
	Details string
	cause   error
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an *Error with no wrapped cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds an *Error carrying cause, so errors.Is/As still reach it.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithDetails attaches a one-line details field (used by INTERNAL_ERROR
// envelopes per the error handling design) and returns the receiver for
// chaining.
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

// NotFound is a convenience constructor for RESOURCE_NOT_FOUND.
func NotFound(kind, id string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s %q not found", kind, id))
}

// Validation is a convenience constructor for VALIDATION_ERROR.
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// Conflict is a convenience constructor for CONFLICT.
func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

// Database wraps a lower-layer failure as DATABASE_ERROR.
func Database(cause error) *Error {
	return Wrap(CodeDatabase, "database operation failed", cause)
}

// CodeOf extracts the Code from err if it (or something it wraps) is an
// *Error, otherwise returns CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
