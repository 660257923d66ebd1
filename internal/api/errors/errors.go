// Package errors defines the JSON error body returned by the HTTP API and
// maps application errors onto it.
package errors

import (
	"fmt"
	"net/http"

	apperrors "voicenotes/internal/app/errors"
)

// ErrorKind classifies an API error and selects its HTTP status.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindNotFound           ErrorKind = "not_found"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindBadRequest         ErrorKind = "bad_request"
)

var statusByKind = map[ErrorKind]int{
	KindValidation:         http.StatusUnprocessableEntity,
	KindBadRequest:         http.StatusBadRequest,
	KindNotFound:           http.StatusNotFound,
	KindConflict:           http.StatusConflict,
	KindServiceUnavailable: http.StatusServiceUnavailable,
}

// APIError is the body of every failed API response.
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Code      string            `json:"code,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus is the response status for e's kind. Unknown kinds are 500.
func (e *APIError) HTTPStatus() int {
	if status, ok := statusByKind[e.Kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithCode sets the machine-readable code and returns e.
func (e *APIError) WithCode(code string) *APIError {
	e.Code = code
	return e
}

func newError(kind ErrorKind, message string) *APIError {
	return &APIError{Kind: kind, Message: message}
}

// NewValidationError reports invalid request fields, keyed by JSON name.
func NewValidationError(message string, fields map[string]string) *APIError {
	e := newError(KindValidation, message)
	e.Details = fields
	return e
}

func NewNotFoundError(resource string) *APIError {
	return newError(KindNotFound, fmt.Sprintf("%s not found", resource))
}

func NewConflictError(message string) *APIError {
	return newError(KindConflict, message)
}

func NewInternalError(message string) *APIError {
	return newError(KindInternal, message)
}

func NewBadRequestError(message string) *APIError {
	return newError(KindBadRequest, message)
}

func NewServiceUnavailableError(message string) *APIError {
	return newError(KindServiceUnavailable, message)
}

// FromError maps an application error to an API error. An *APIError is
// returned as is; anything unrecognized becomes an internal error whose
// message hides the cause.
func FromError(err error, resource string) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if apperrors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		return NewNotFoundError(resource)
	case apperrors.Is(err, apperrors.ErrNotEligible):
		return NewConflictError(resource + " is not eligible for summarization").WithCode("not_eligible")
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return NewBadRequestError(err.Error())
	case apperrors.Is(err, apperrors.ErrNoSummary):
		return NewConflictError(resource + " has no summary to edit").WithCode("no_summary")
	case apperrors.Is(err, apperrors.ErrLinkageMissing):
		return NewConflictError(resource + " is not uploaded").WithCode("not_uploaded")
	case apperrors.Is(err, apperrors.ErrPollTransport):
		return NewServiceUnavailableError("summarization service unavailable").WithCode("poll_transport")
	case apperrors.Is(err, apperrors.ErrDatabaseConnection):
		return NewServiceUnavailableError("record store unavailable")
	case apperrors.Is(err, apperrors.ErrUploadFailed):
		return NewServiceUnavailableError("summarization service unavailable").WithCode(apperrors.Reason(err))
	default:
		return NewInternalError("Internal server error")
	}
}
