package model

import (
	"strings"

	apperrors "voicenotes/internal/app/errors"
)

// AudioRecordEdit carries user edits to a record. Nil fields are left
// unchanged.
type AudioRecordEdit struct {
	Title          *string
	TranscriptText *string
	SummaryText    *string
}

// Empty reports whether the edit changes nothing.
func (e AudioRecordEdit) Empty() bool {
	return e.Title == nil && e.TranscriptText == nil && e.SummaryText == nil
}

// ApplyEdit writes e onto r. The summary text can only be edited once a
// summary exists; summary status and linkage are never touched.
func (r *AudioRecord) ApplyEdit(e AudioRecordEdit) error {
	if e.Empty() {
		return apperrors.Mark(apperrors.ErrInvalidInput, apperrors.New("nothing to edit"))
	}
	title := r.Title
	if e.Title != nil {
		title = strings.TrimSpace(*e.Title)
		if title == "" {
			return apperrors.Mark(apperrors.ErrInvalidInput, apperrors.New("title must not be blank"))
		}
	}
	if e.SummaryText != nil && !r.HasSummary {
		return apperrors.ErrNoSummary
	}

	r.Title = title
	if e.TranscriptText != nil {
		r.TranscriptText = *e.TranscriptText
	}
	if e.SummaryText != nil {
		r.SummaryText = *e.SummaryText
	}
	return nil
}
