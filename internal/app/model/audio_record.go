package model

import (
	"fmt"
	"path/filepath"
	"time"
)

// AudioRecord is a voice memo attached to a note and the unit of
// summarization work.
type AudioRecord struct {
	ID            int           `json:"id"`
	NoteID        int           `json:"note_id"`
	Title         string        `json:"title"`
	FileName      string        `json:"file_name"`
	FilePath      string        `json:"file_path"`
	Duration      time.Duration `json:"duration"`
	FileSizeBytes int64         `json:"file_size_bytes"`
	RecordedAt    time.Time     `json:"recorded_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Remote linkage
	BackendAudioID string `json:"backend_audio_id"`
	IsUploaded     bool   `json:"is_uploaded"`

	SummaryStatus       SummaryStatus `json:"summary_status"`
	HasSummary          bool          `json:"has_summary"`
	SummaryText         string        `json:"summary_text"`
	SummaryConfidence   float64       `json:"summary_confidence"`
	SummaryLanguageCode string        `json:"summary_language_code"`

	TranscriptText         string `json:"transcript_text"`
	TranscriptLanguageCode string `json:"transcript_language_code"`
}

// NewAudioRecord creates an unsaved record for a captured file.
func NewAudioRecord(noteID int, title, filePath string, duration time.Duration, size int64) *AudioRecord {
	return &AudioRecord{
		NoteID:        noteID,
		Title:         title,
		FileName:      filepath.Base(filePath),
		FilePath:      filePath,
		Duration:      duration,
		FileSizeBytes: size,
		SummaryStatus: SummaryNone,
	}
}

// CanSummarize reports whether the record may be enqueued for summarization.
func (r *AudioRecord) CanSummarize() bool {
	return r != nil && !r.HasSummary && !r.SummaryStatus.InFlight()
}

// Persisted reports whether the record store has assigned an id.
func (r *AudioRecord) Persisted() bool {
	return r != nil && r.ID != 0
}

// Validate checks the summary and linkage invariants.
func (r *AudioRecord) Validate() error {
	if r.HasSummary && r.SummaryStatus != SummaryCompleted {
		return fmt.Errorf("audio record %d: has summary with status %q", r.ID, r.SummaryStatus)
	}
	if r.SummaryStatus.InFlight() && r.HasSummary {
		return fmt.Errorf("audio record %d: status %q with summary present", r.ID, r.SummaryStatus)
	}
	if r.IsUploaded && r.BackendAudioID == "" {
		return fmt.Errorf("audio record %d: uploaded without backend audio id", r.ID)
	}
	return nil
}

// Clone returns a copy safe to hand to observers.
func (r *AudioRecord) Clone() AudioRecord {
	return *r
}
