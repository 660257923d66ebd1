package repository

import (
	"context"

	"voicenotes/internal/app/model"
)

// NoteDAO persists notes.
type NoteDAO interface {
	// GetNotes returns all notes, newest Date first, with their audio records.
	GetNotes(ctx context.Context) ([]model.Note, error)
	GetNote(ctx context.Context, id int) (*model.Note, error)
	// SaveNote inserts when note.ID is zero and updates otherwise.
	SaveNote(ctx context.Context, note *model.Note) (int, error)
	// DeleteNote deletes the note and all of its audio records atomically.
	DeleteNote(ctx context.Context, note *model.Note) error
}

// AudioRecordDAO persists audio records.
type AudioRecordDAO interface {
	GetAudioRecord(ctx context.Context, id int) (*model.AudioRecord, error)
	// GetAudioRecordsByNoteID returns the note's records, most recently recorded first.
	GetAudioRecordsByNoteID(ctx context.Context, noteID int) ([]model.AudioRecord, error)
	GetAudioRecords(ctx context.Context) ([]model.AudioRecord, error)
	// SaveAudioRecord inserts when record.ID is zero and updates otherwise.
	// Both paths refresh UpdatedAt.
	SaveAudioRecord(ctx context.Context, record *model.AudioRecord) (int, error)
	// MarkUploaded persists only the upload linkage of an existing record.
	MarkUploaded(ctx context.Context, record *model.AudioRecord) error
	// DeleteAudioRecord removes the row, then the audio file. Failing to
	// remove the file is logged, not returned.
	DeleteAudioRecord(ctx context.Context, record *model.AudioRecord) error
}

// RecordStore is the full persistence contract used by the application.
type RecordStore interface {
	NoteDAO
	AudioRecordDAO
	Close() error
}
