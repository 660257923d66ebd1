package dto

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"voicenotes/internal/api/errors"
	"voicenotes/internal/app/model"
)

// CreateNoteRequest is the body of POST /api/v1/notes.
type CreateNoteRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

// Validate rejects titles made only of whitespace.
func (r *CreateNoteRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.NewValidationError("Invalid note", map[string]string{"title": "is required"})
	}
	return nil
}

// UpdateNoteRequest is the body of PATCH /api/v1/notes/:id.
type UpdateNoteRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

func (r *UpdateNoteRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.NewValidationError("Invalid note", map[string]string{"title": "is required"})
	}
	return nil
}

// NoteResponse represents a note in API responses
type NoteResponse struct {
	ID           int                   `json:"id"`
	Title        string                `json:"title"`
	Date         time.Time             `json:"date"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	AudioCount   int                   `json:"audio_count"`
	AudioRecords []AudioRecordResponse `json:"audio_records,omitempty"`
}

// ListNotesResponse wraps the note list.
type ListNotesResponse struct {
	Notes []NoteResponse `json:"notes"`
	Total int            `json:"total"`
}

// NewNoteResponse converts a note. Records are included when withRecords
// is set.
func NewNoteResponse(note *model.Note, withRecords bool) NoteResponse {
	resp := NoteResponse{
		ID:         note.ID,
		Title:      note.Title,
		Date:       note.Date,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
		AudioCount: note.AudioRecordCount(),
	}
	if withRecords {
		resp.AudioRecords = lo.Map(note.AudioRecords, func(rec model.AudioRecord, _ int) AudioRecordResponse {
			return NewAudioRecordResponse(rec)
		})
	}
	return resp
}
