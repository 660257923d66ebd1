package dto

import (
	"path/filepath"
	"strings"
	"time"

	"voicenotes/internal/api/errors"
	"voicenotes/internal/app/display"
	"voicenotes/internal/app/model"
)

// AddAudioRecordRequest registers a captured audio file with a note.
type AddAudioRecordRequest struct {
	Title      string `json:"title" binding:"max=200"`
	FilePath   string `json:"file_path" binding:"required"`
	DurationMS int64  `json:"duration_ms" binding:"gte=0"`
}

func (r *AddAudioRecordRequest) Validate() error {
	if !filepath.IsAbs(r.FilePath) {
		return errors.NewValidationError("Invalid audio record", map[string]string{"file_path": "must be absolute"})
	}
	return nil
}

// Duration returns the request duration.
func (r *AddAudioRecordRequest) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

// UpdateAudioRecordRequest is the body of PATCH /api/v1/audio/:id.
// Omitted fields are left unchanged.
type UpdateAudioRecordRequest struct {
	Title          *string `json:"title" binding:"omitempty,max=200"`
	TranscriptText *string `json:"transcript_text"`
	SummaryText    *string `json:"summary_text"`
}

func (r *UpdateAudioRecordRequest) Validate() error {
	if r.Edit().Empty() {
		return errors.NewValidationError("Invalid audio record edit", map[string]string{"title": "nothing to edit"})
	}
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return errors.NewValidationError("Invalid audio record edit", map[string]string{"title": "must not be blank"})
	}
	return nil
}

// Edit converts the request to a model edit.
func (r *UpdateAudioRecordRequest) Edit() model.AudioRecordEdit {
	return model.AudioRecordEdit{
		Title:          r.Title,
		TranscriptText: r.TranscriptText,
		SummaryText:    r.SummaryText,
	}
}

// AudioRecordResponse represents an audio record in API responses
type AudioRecordResponse struct {
	ID                  int       `json:"id"`
	NoteID              int       `json:"note_id"`
	Title               string    `json:"title"`
	FileName            string    `json:"file_name"`
	DurationMS          int64     `json:"duration_ms"`
	FileSizeBytes       int64     `json:"file_size_bytes"`
	RecordedAt          time.Time `json:"recorded_at"`
	IsUploaded          bool      `json:"is_uploaded"`
	BackendAudioID      string    `json:"backend_audio_id,omitempty"`
	SummaryStatus       string    `json:"summary_status"`
	HasSummary          bool      `json:"has_summary"`
	SummaryText         string    `json:"summary_text,omitempty"`
	SummaryConfidence   float64   `json:"summary_confidence,omitempty"`
	SummaryLanguageCode string    `json:"summary_language_code,omitempty"`
	TranscriptText      string    `json:"transcript_text,omitempty"`

	Display display.Record `json:"display"`
}

func NewAudioRecordResponse(rec model.AudioRecord) AudioRecordResponse {
	return AudioRecordResponse{
		ID:                  rec.ID,
		NoteID:              rec.NoteID,
		Title:               rec.Title,
		FileName:            rec.FileName,
		DurationMS:          rec.Duration.Milliseconds(),
		FileSizeBytes:       rec.FileSizeBytes,
		RecordedAt:          rec.RecordedAt,
		IsUploaded:          rec.IsUploaded,
		BackendAudioID:      rec.BackendAudioID,
		SummaryStatus:       string(rec.SummaryStatus),
		HasSummary:          rec.HasSummary,
		SummaryText:         rec.SummaryText,
		SummaryConfidence:   rec.SummaryConfidence,
		SummaryLanguageCode: rec.SummaryLanguageCode,
		TranscriptText:      rec.TranscriptText,
		Display:             display.ForRecord(rec),
	}
}

// SummarizeResponse is returned when a record is accepted for summarization.
type SummarizeResponse struct {
	ID          int    `json:"id"`
	Status      string `json:"status"`
	QueueLength int    `json:"queue_length"`
}

// SyncResponse reports the outcome of uploading unuploaded records.
type SyncResponse struct {
	Uploaded int `json:"uploaded"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
}

// RefreshResponse reports a one-off fetch of the remote transcript and
// summary. Record is the stored record after the fetch.
type RefreshResponse struct {
	Ready  bool                `json:"ready"`
	Record AudioRecordResponse `json:"record"`
}
