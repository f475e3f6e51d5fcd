// Package errors provides structured error types for metagraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the engine, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Codes fall into three groups:
//   - Definition errors (CONFIGURATION): fatal while building a graph
//   - Parameter errors (RANGE, UNKNOWN_PARAM): local, graph shape untouched
//   - Validator findings (MISSING_LINK, CYCLE, DANGLING_AUX, DUPLICATE_INPUT)
//
// # Usage
//
//	err := errors.New(errors.ErrCodeRange, "%s=%v outside [%v, %v]", name, v, lo, hi)
//	if errors.Is(err, errors.ErrCodeRange) {
//	    // keep the previous value
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeConfiguration, origErr, "node %q", id)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Definition errors
	ErrCodeConfiguration Code = "CONFIGURATION"

	// Parameter errors
	ErrCodeRange        Code = "RANGE"
	ErrCodeUnknownParam Code = "UNKNOWN_PARAM"
	ErrCodeUnknownNode  Code = "UNKNOWN_NODE"
	ErrCodeUnknownMode  Code = "UNKNOWN_MODE_VALUE"

	// Validator findings
	ErrCodeMissingLink    Code = "MISSING_LINK"
	ErrCodeCycle          Code = "CYCLE"
	ErrCodeDanglingAux    Code = "DANGLING_AUX"
	ErrCodeDuplicateInput Code = "DUPLICATE_INPUT"

	// Lifecycle errors
	ErrCodeClosed Code = "GRAPH_CLOSED"

	// Input errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeNotFound      Code = "NOT_FOUND"

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
// Only the outermost *Error in the chain is consulted, so a RANGE error
// wrapped into a CONFIGURATION error reports CONFIGURATION.
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

// IsStructural reports whether err is a validator finding.
func IsStructural(err error) bool {
	switch GetCode(err) {
	case ErrCodeMissingLink, ErrCodeCycle, ErrCodeDanglingAux, ErrCodeDuplicateInput:
		return true
	}
	return false
}
