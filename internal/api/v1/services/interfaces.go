package services

import (
	"context"

	"voicenotes/internal/api/v1/dto"
	"voicenotes/internal/app/model"
)

// NoteService defines the interface for note operations
type NoteService interface {
	ListNotes(ctx context.Context) (*dto.ListNotesResponse, error)
	CreateNote(ctx context.Context, req *dto.CreateNoteRequest) (*dto.NoteResponse, error)
	// GetNote loads the note with its records. The first load of a note in
	// this process resumes summaries left in flight by an earlier run.
	GetNote(ctx context.Context, id int) (*dto.NoteResponse, error)
	UpdateNote(ctx context.Context, id int, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	DeleteNote(ctx context.Context, id int) error
	AddAudioRecord(ctx context.Context, noteID int, req *dto.AddAudioRecordRequest) (*dto.AudioRecordResponse, error)
}

// AudioService defines the interface for audio record operations
type AudioService interface {
	GetAudioRecord(ctx context.Context, id int) (*dto.AudioRecordResponse, error)
	// UpdateAudioRecord edits title, transcript or summary text. Records
	// the orchestrator is working on are refused.
	UpdateAudioRecord(ctx context.Context, id int, req *dto.UpdateAudioRecordRequest) (*dto.AudioRecordResponse, error)
	DeleteAudioRecord(ctx context.Context, id int) error
	// Refresh fetches the remote transcript and summary of an uploaded
	// record once.
	Refresh(ctx context.Context, id int) (*dto.RefreshResponse, error)
	Summarize(ctx context.Context, id int) (*dto.SummarizeResponse, error)
	ReSummarize(ctx context.Context, id int) (*dto.SummarizeResponse, error)
	Sync(ctx context.Context) (*dto.SyncResponse, error)
}

// Summarizer is the part of the orchestrator the services drive.
type Summarizer interface {
	Enqueue(ctx context.Context, rec *model.AudioRecord) bool
	ResumePending(ctx context.Context, records []*model.AudioRecord) int
	ReSummarize(ctx context.Context, rec *model.AudioRecord) error
	Refresh(ctx context.Context, id int) (*model.AudioRecord, bool, error)
	Tracked(id int) bool
	// Reserve keeps id out of the queue until Release. It fails when id is
	// already queued, running or reserved.
	Reserve(id int) bool
	Release(id int)
	QueueLen() int
}

// Syncer uploads records that have not reached the remote service yet.
type Syncer interface {
	GetUnuploadedAudioRecords(ctx context.Context) ([]model.AudioRecord, error)
	UploadAudioRecord(ctx context.Context, record *model.AudioRecord) error
}
