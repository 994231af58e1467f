// Package errors provides structured error types for modmirror.
//
// Every failure raised by a sync step carries a [Code] so the sync driver,
// the CLI and metrics can classify it without string matching:
//   - NETWORK_FAILURE: non-200 response or transport error
//   - MARKUP_PARSE_FAILURE: an expected marker is absent from a page
//   - AMBIGUOUS_MATCH: zero or several asset candidates survived the pattern
//   - CLASSIFICATION_FAILURE: the artifact could not be read as an archive
//   - METADATA_EXTRACTION_FAILURE: the package identifier could not be recovered
//   - FILESYSTEM_FAILURE: reading or writing the state directory failed
//   - INVALID_CONFIG: the repository list or settings are unusable
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMarkupParse, "marker %q not found", marker)
//	if errors.Is(err, errors.ErrCodeMarkupParse) {
//	    // markup changed upstream
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "failed to fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure taxonomy.
const (
	ErrCodeNetwork            Code = "NETWORK_FAILURE"
	ErrCodeMarkupParse        Code = "MARKUP_PARSE_FAILURE"
	ErrCodeAmbiguousMatch     Code = "AMBIGUOUS_MATCH"
	ErrCodeClassification     Code = "CLASSIFICATION_FAILURE"
	ErrCodeMetadataExtraction Code = "METADATA_EXTRACTION_FAILURE"
	ErrCodeFilesystem         Code = "FILESYSTEM_FAILURE"

	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInternal      Code = "INTERNAL_ERROR"
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
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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
