// Package errors provides structured error types for the layoutview application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and HTTP service
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//
// Fatal failures (database creation, LEF/DEF parsing, missing technology)
// are returned as *Error values. There is no process-wide "last error"
// state; every fallible operation returns its own error.
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_PARSE: Layout file ingestion failures
//   - NO_*: Required database content is missing
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDesignFiles, "LEF technology file is required")
//	if errors.Is(err, errors.ErrCodeInvalidDesignFiles) {
//	    // Report as a 400
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDEFParse, origErr, "read %s", path)
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
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidFormat      Code = "INVALID_FORMAT"
	ErrCodeInvalidPath        Code = "INVALID_PATH"
	ErrCodeInvalidDesignFiles Code = "INVALID_DESIGN_FILES"
	ErrCodeTooLarge           Code = "TOO_LARGE"

	// Layout database errors
	ErrCodeDatabaseInit Code = "DATABASE_INIT"
	ErrCodeLEFParse     Code = "LEF_PARSE"
	ErrCodeDEFParse     Code = "DEF_PARSE"
	ErrCodeTechParse    Code = "TECH_PARSE"
	ErrCodeNoTechnology Code = "NO_TECHNOLOGY"
	ErrCodeNoDesign     Code = "NO_DESIGN"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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

// IsUserError reports whether err was caused by the caller's input rather
// than by the service. HTTP handlers map these to 4xx responses.
func IsUserError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath,
		ErrCodeInvalidDesignFiles, ErrCodeTooLarge,
		ErrCodeLEFParse, ErrCodeDEFParse, ErrCodeTechParse,
		ErrCodeNoTechnology, ErrCodeNoDesign:
		return true
	}
	return false
}
