package services

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"voicenotes/internal/api/errors"
	"voicenotes/internal/api/v1/dto"
	apperrors "voicenotes/internal/app/errors"
	"voicenotes/internal/app/logging"
	"voicenotes/internal/app/model"
	"voicenotes/internal/app/repository"
)

// NoteServiceImpl implements NoteService
type NoteServiceImpl struct {
	store      repository.RecordStore
	summarizer Summarizer
	logger     *zap.Logger

	mu      sync.Mutex
	resumed map[int]struct{}
}

// NewNoteService creates a new note service
func NewNoteService(store repository.RecordStore, summarizer Summarizer, logger *zap.Logger) *NoteServiceImpl {
	return &NoteServiceImpl{
		store:      store,
		summarizer: summarizer,
		logger:     logging.OrNop(logger),
		resumed:    make(map[int]struct{}),
	}
}

func (s *NoteServiceImpl) ListNotes(ctx context.Context) (*dto.ListNotesResponse, error) {
	notes, err := s.store.GetNotes(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListNotesResponse{Notes: make([]dto.NoteResponse, 0, len(notes)), Total: len(notes)}
	for i := range notes {
		resp.Notes = append(resp.Notes, dto.NewNoteResponse(&notes[i], false))
	}
	return resp, nil
}

func (s *NoteServiceImpl) CreateNote(ctx context.Context, req *dto.CreateNoteRequest) (*dto.NoteResponse, error) {
	note := &model.Note{Title: strings.TrimSpace(req.Title)}
	if _, err := s.store.SaveNote(ctx, note); err != nil {
		return nil, err
	}
	resp := dto.NewNoteResponse(note, true)
	return &resp, nil
}

func (s *NoteServiceImpl) GetNote(ctx context.Context, id int) (*dto.NoteResponse, error) {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.markResumed(id) {
		// The orchestrator owns the records it accepts, so it gets copies
		// and the response is rebuilt from the store.
		pending := make([]*model.AudioRecord, 0, len(note.AudioRecords))
		for _, rec := range note.AudioRecords {
			rec := rec
			pending = append(pending, &rec)
		}
		if n := s.summarizer.ResumePending(ctx, pending); n > 0 {
			s.logger.Info("resumed note summaries", zap.Int("note_id", id), zap.Int("count", n))
			if note.AudioRecords, err = s.store.GetAudioRecordsByNoteID(ctx, id); err != nil {
				return nil, err
			}
		}
	}

	resp := dto.NewNoteResponse(note, true)
	return &resp, nil
}

// markResumed reports whether this is the first load of note id.
func (s *NoteServiceImpl) markResumed(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resumed[id]; ok {
		return false
	}
	s.resumed[id] = struct{}{}
	return true
}

func (s *NoteServiceImpl) UpdateNote(ctx context.Context, id int, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return nil, err
	}
	note.Title = strings.TrimSpace(req.Title)
	if _, err := s.store.SaveNote(ctx, note); err != nil {
		return nil, err
	}
	resp := dto.NewNoteResponse(note, true)
	return &resp, nil
}

// DeleteNote reserves every record of the note before the cascade, so
// none can be enqueued while its row is going away.
func (s *NoteServiceImpl) DeleteNote(ctx context.Context, id int) error {
	note, err := s.store.GetNote(ctx, id)
	if err != nil {
		return err
	}

	reserved := make([]int, 0, len(note.AudioRecords))
	defer func() {
		for _, rid := range reserved {
			s.summarizer.Release(rid)
		}
	}()
	for _, rec := range note.AudioRecords {
		if !s.summarizer.Reserve(rec.ID) {
			return errors.NewConflictError("note has a summary in progress")
		}
		reserved = append(reserved, rec.ID)
	}
	return s.store.DeleteNote(ctx, note)
}

func (s *NoteServiceImpl) AddAudioRecord(ctx context.Context, noteID int, req *dto.AddAudioRecordRequest) (*dto.AudioRecordResponse, error) {
	if _, err := s.store.GetNote(ctx, noteID); err != nil {
		return nil, err
	}

	info, err := os.Stat(req.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewBadRequestError("File not found: " + req.FilePath)
		}
		return nil, apperrors.Mark(apperrors.ErrFileReadFailed, err)
	}
	if info.IsDir() {
		return nil, errors.NewBadRequestError("Not a file: " + req.FilePath)
	}

	rec := model.NewAudioRecord(noteID, strings.TrimSpace(req.Title), req.FilePath, req.Duration(), info.Size())
	if _, err := s.store.SaveAudioRecord(ctx, rec); err != nil {
		return nil, err
	}

	resp := dto.NewAudioRecordResponse(*rec)
	return &resp, nil
}
