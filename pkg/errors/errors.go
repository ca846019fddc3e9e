// Package errors provides structured error types for poolsynth.
//
// Error codes let the CLI tell apart failures that abort a run before any
// frame is written (configuration, filesystem) from failures that abort it
// mid-split (render, export), so a user knows whether a resume is possible.
//
// # Error Codes
//
//   - INVALID_*: configuration and input validation failures
//   - FILESYSTEM: output tree could not be deleted or created
//   - RENDER_FAILED / EXPORT_FAILED: a frame could not be captured or written
//   - PLACEMENT_EXHAUSTED: rejection sampling ran out of attempts
//   - CHECKPOINT: the resume ledger could not be read or written
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfig, "train_ratio out of range: %v", r)
//	if errors.Is(err, errors.ErrCodeInvalidConfig) {
//	    // Handle validation error
//	}
//
//	err := errors.Wrap(errors.ErrCodeFilesystem, origErr, "create %s", dir)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Output tree errors
	ErrCodeFilesystem Code = "FILESYSTEM"

	// Per-frame errors
	ErrCodeRender             Code = "RENDER_FAILED"
	ErrCodeExport             Code = "EXPORT_FAILED"
	ErrCodePlacementExhausted Code = "PLACEMENT_EXHAUSTED"

	// Resume ledger errors
	ErrCodeCheckpoint Code = "CHECKPOINT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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
		return e.Message
	}
	return err.Error()
}
