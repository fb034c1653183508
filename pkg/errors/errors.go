// Package errors provides structured error types for choosable.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the book model, codec, exporter and CLI
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The book model reports four families of failure:
//   - CONFLICT: uniqueness or referential-integrity violations (duplicate
//     character, duplicate choice target, deleting a character in use,
//     exporting over the book's own file)
//   - NOT_FOUND: lookup misses (unknown character, page or choice)
//   - SCHEMA: a persisted document that is malformed or semantically invalid
//   - INVARIANT: an attempt to persist a structurally invalid book
//
// INVALID_* codes cover bad user input, and CANCELED marks an operation the
// caller declined (for example, refusing an overwrite prompt).
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConflict, "character %q already exists", name)
//	if errors.Is(err, errors.ErrCodeConflict) {
//	    // Handle conflict
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSchema, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Model errors
	ErrCodeConflict  Code = "CONFLICT"
	ErrCodeNotFound  Code = "NOT_FOUND"
	ErrCodeSchema    Code = "SCHEMA"
	ErrCodeInvariant Code = "INVARIANT"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidColor  Code = "INVALID_COLOR"

	// Caller declined to proceed
	ErrCodeCanceled Code = "CANCELED"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// IsConflict reports whether err carries [ErrCodeConflict].
func IsConflict(err error) bool { return Is(err, ErrCodeConflict) }

// IsNotFound reports whether err carries [ErrCodeNotFound].
func IsNotFound(err error) bool { return Is(err, ErrCodeNotFound) }

// IsSchema reports whether err carries [ErrCodeSchema].
func IsSchema(err error) bool { return Is(err, ErrCodeSchema) }

// IsInvariant reports whether err carries [ErrCodeInvariant].
func IsInvariant(err error) bool { return Is(err, ErrCodeInvariant) }

// IsCanceled reports whether err carries [ErrCodeCanceled].
func IsCanceled(err error) bool { return Is(err, ErrCodeCanceled) }

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}
