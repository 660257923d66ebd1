package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "voicenotes/internal/app/errors"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *APIError
		want int
	}{
		{NewValidationError("bad", nil), http.StatusUnprocessableEntity},
		{NewBadRequestError("bad"), http.StatusBadRequest},
		{NewNotFoundError("note"), http.StatusNotFound},
		{NewConflictError("busy"), http.StatusConflict},
		{NewServiceUnavailableError("down"), http.StatusServiceUnavailable},
		{NewInternalError("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.HTTPStatus(), string(tt.err.Kind))
	}
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, "note"))

	original := NewBadRequestError("invalid id")
	assert.Same(t, original, FromError(original, "note"))
	assert.Same(t, original, FromError(fmt.Errorf("parse: %w", original), "note"))

	notFound := FromError(apperrors.NotFound("note", 3), "note")
	assert.Equal(t, KindNotFound, notFound.Kind)
	assert.Equal(t, "note not found", notFound.Message)

	conflict := FromError(apperrors.ErrNotEligible, "audio record")
	assert.Equal(t, KindConflict, conflict.Kind)
	assert.Equal(t, "not_eligible", conflict.Code)

	upload := FromError(apperrors.Mark(apperrors.ErrUploadFailed, fmt.Errorf("refused")), "audio record")
	assert.Equal(t, KindServiceUnavailable, upload.Kind)
	assert.Equal(t, "upload", upload.Code)

	invalid := FromError(apperrors.Mark(apperrors.ErrInvalidInput, fmt.Errorf("title must not be blank")), "audio record")
	assert.Equal(t, KindBadRequest, invalid.Kind)
	assert.Contains(t, invalid.Message, "title must not be blank")

	noSummary := FromError(apperrors.ErrNoSummary, "audio record")
	assert.Equal(t, http.StatusConflict, noSummary.HTTPStatus())
	assert.Equal(t, "no_summary", noSummary.Code)

	notUploaded := FromError(apperrors.ErrLinkageMissing, "audio record")
	assert.Equal(t, "audio record is not uploaded", notUploaded.Message)
	assert.Equal(t, "not_uploaded", notUploaded.Code)

	poll := FromError(apperrors.Mark(apperrors.ErrPollTransport, fmt.Errorf("timeout")), "audio record")
	assert.Equal(t, http.StatusServiceUnavailable, poll.HTTPStatus())
	assert.Equal(t, "poll_transport", poll.Code)

	internal := FromError(fmt.Errorf("disk on fire"), "note")
	assert.Equal(t, KindInternal, internal.Kind)
	assert.NotContains(t, internal.Message, "disk")
}
