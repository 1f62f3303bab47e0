// Package errors provides structured error types for scormlens.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages that name the failing stage
//
// # Fatal Codes
//
// Three codes mark failures after which no course model can be built:
//   - CORRUPT_ARCHIVE: the upload is not a readable zip archive
//   - MANIFEST_NOT_FOUND: the archive holds no imsmanifest.xml
//   - MALFORMED_XML: the manifest is not well-formed XML
//
// Everything else the analysis detects is reported as a validation finding
// inside a successfully built model, never as an error.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeManifestNotFound, "no imsmanifest.xml found")
//	if errors.Is(err, errors.ErrCodeManifestNotFound) {
//	    // Handle missing manifest
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeCorruptArchive, zipErr, "archive could not be opened")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Fatal analysis errors
	ErrCodeCorruptArchive   Code = "CORRUPT_ARCHIVE"
	ErrCodeManifestNotFound Code = "MANIFEST_NOT_FOUND"
	ErrCodeMalformedXML     Code = "MALFORMED_XML"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

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

// IsFatal reports whether err carries one of the codes that prevent a
// course model from being built.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case ErrCodeCorruptArchive, ErrCodeManifestNotFound, ErrCodeMalformedXML:
		return true
	}
	return false
}

// Stage names the analysis stage a fatal code belongs to.
// Returns an empty string for non-fatal codes.
func Stage(code Code) string {
	switch code {
	case ErrCodeCorruptArchive:
		return "archive"
	case ErrCodeManifestNotFound:
		return "manifest lookup"
	case ErrCodeMalformedXML:
		return "manifest parsing"
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix, followed
// by the underlying cause when present.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s (%v)", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
