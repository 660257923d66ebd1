package errors

import (
	stderrors "errors"
	"fmt"
)

// Common error types
var (
	// Configuration errors
	ErrMissingConfig = New("configuration is required")
	ErrInvalidConfig = New("invalid configuration")

	// Summarization pipeline errors
	ErrUploadFailed       = New("audio upload failed")
	ErrLinkageMissing     = New("backend audio id missing")
	ErrTranscriptionStart = New("transcription start failed")
	ErrPollExhausted      = New("summary not ready after polling")
	ErrPollTransport      = New("summary poll failed")
	ErrPersistence        = New("record persistence failed")
	ErrNotEligible        = New("record is not eligible for summarization")

	// Edit errors
	ErrInvalidInput = New("invalid input")
	ErrNoSummary    = New("record has no summary")

	// Database errors
	ErrDatabaseConnection = New("database connection failed")
	ErrNotFound           = New("record not found")
	ErrQueryFailed        = New("query failed")
	ErrScanFailed         = New("scan failed")
	ErrInsertFailed       = New("insert failed")
	ErrUpdateFailed       = New("update failed")
	ErrDeleteFailed       = New("delete failed")

	// File errors
	ErrFileNotFound   = New("file not found")
	ErrFileReadFailed = New("file read failed")

	// Network errors
	ErrRequestFailed   = New("request failed")
	ErrResponseInvalid = New("invalid response")
)

// Error represents a standardized error
type Error struct {
	message string
	cause   error
}

// New creates a new error
func New(message string) *Error {
	return &Error{message: message}
}

// Newf creates a new formatted error
func Newf(format string, args ...interface{}) *Error {
	return &Error{message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: message,
		cause:   err,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{
		message: fmt.Sprintf(format, args...),
		cause:   err,
	}
}

// Mark tags cause with a sentinel so errors.Is matches both.
func Mark(sentinel *Error, cause error) error {
	if cause == nil {
		return sentinel
	}
	return &Error{
		message: sentinel.message,
		cause:   cause,
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.cause
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.message == t.message
}

// Is is errors.Is from the standard library, re-exported so callers that
// import this package under the errors name keep one import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is errors.As from the standard library.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// NotFound returns an error for items that were not found
func NotFound(itemType string, id int) error {
	return Mark(ErrNotFound, Newf("%s %d", itemType, id))
}

// Reason maps a pipeline error to a short label used in logs and metrics.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrUploadFailed):
		return "upload"
	case Is(err, ErrLinkageMissing):
		return "linkage_missing"
	case Is(err, ErrTranscriptionStart):
		return "transcription_start"
	case Is(err, ErrPollTransport):
		return "poll_transport"
	case Is(err, ErrPollExhausted):
		return "poll_exhausted"
	case Is(err, ErrPersistence):
		return "persistence"
	default:
		return "internal"
	}
}
