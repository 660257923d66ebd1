package services

import (
	"context"

	"go.uber.org/zap"

	"voicenotes/internal/api/errors"
	"voicenotes/internal/api/v1/dto"
	apperrors "voicenotes/internal/app/errors"
	"voicenotes/internal/app/logging"
	"voicenotes/internal/app/model"
	"voicenotes/internal/app/repository"
)

// AudioServiceImpl implements AudioService
type AudioServiceImpl struct {
	store      repository.AudioRecordDAO
	summarizer Summarizer
	syncer     Syncer
	logger     *zap.Logger
}

// NewAudioService creates a new audio record service
func NewAudioService(store repository.AudioRecordDAO, summarizer Summarizer, syncer Syncer, logger *zap.Logger) *AudioServiceImpl {
	return &AudioServiceImpl{
		store:      store,
		summarizer: summarizer,
		syncer:     syncer,
		logger:     logging.OrNop(logger),
	}
}

func (s *AudioServiceImpl) GetAudioRecord(ctx context.Context, id int) (*dto.AudioRecordResponse, error) {
	rec, err := s.store.GetAudioRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewAudioRecordResponse(*rec)
	return &resp, nil
}

func (s *AudioServiceImpl) UpdateAudioRecord(ctx context.Context, id int, req *dto.UpdateAudioRecordRequest) (*dto.AudioRecordResponse, error) {
	if _, err := s.store.GetAudioRecord(ctx, id); err != nil {
		return nil, err
	}
	if !s.summarizer.Reserve(id) {
		return nil, errors.NewConflictError("audio record has a summary in progress")
	}
	defer s.summarizer.Release(id)

	// reload under the reservation so no pipeline write is lost
	rec, err := s.store.GetAudioRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := rec.ApplyEdit(req.Edit()); err != nil {
		return nil, err
	}
	if _, err := s.store.SaveAudioRecord(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("audio record edited", zap.Int("record_id", id), zap.Int("note_id", rec.NoteID))

	resp := dto.NewAudioRecordResponse(*rec)
	return &resp, nil
}

func (s *AudioServiceImpl) DeleteAudioRecord(ctx context.Context, id int) error {
	if _, err := s.store.GetAudioRecord(ctx, id); err != nil {
		return err
	}
	if !s.summarizer.Reserve(id) {
		return errors.NewConflictError("audio record has a summary in progress")
	}
	defer s.summarizer.Release(id)

	rec, err := s.store.GetAudioRecord(ctx, id)
	if err != nil {
		return err
	}
	return s.store.DeleteAudioRecord(ctx, rec)
}

// Refresh fetches the remote transcript and summary once. When the remote
// summary is not ready the stored record is returned unchanged.
func (s *AudioServiceImpl) Refresh(ctx context.Context, id int) (*dto.RefreshResponse, error) {
	if _, err := s.store.GetAudioRecord(ctx, id); err != nil {
		return nil, err
	}
	rec, ready, err := s.summarizer.Refresh(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotEligible) {
			return nil, errors.NewConflictError("audio record has a summary in progress")
		}
		return nil, err
	}
	return &dto.RefreshResponse{Ready: ready, Record: dto.NewAudioRecordResponse(*rec)}, nil
}

// Summarize enqueues the record. The record belongs to the orchestrator
// once accepted, so the response is built from the id alone.
func (s *AudioServiceImpl) Summarize(ctx context.Context, id int) (*dto.SummarizeResponse, error) {
	rec, err := s.store.GetAudioRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.summarizer.Enqueue(ctx, rec) {
		return nil, apperrors.ErrNotEligible
	}
	return s.accepted(id), nil
}

func (s *AudioServiceImpl) ReSummarize(ctx context.Context, id int) (*dto.SummarizeResponse, error) {
	rec, err := s.store.GetAudioRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.summarizer.ReSummarize(ctx, rec); err != nil {
		return nil, err
	}
	return s.accepted(id), nil
}

func (s *AudioServiceImpl) accepted(id int) *dto.SummarizeResponse {
	return &dto.SummarizeResponse{
		ID:          id,
		Status:      string(model.SummaryQueued),
		QueueLength: s.summarizer.QueueLen(),
	}
}

type syncOutcome int

const (
	syncUploaded syncOutcome = iota
	syncFailed
	syncSkipped
)

// Sync uploads every unuploaded record that the orchestrator is not
// already working on. Each record is reserved for the length of its
// upload, so it cannot be enqueued and uploaded twice.
func (s *AudioServiceImpl) Sync(ctx context.Context) (*dto.SyncResponse, error) {
	pending, err := s.syncer.GetUnuploadedAudioRecords(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.SyncResponse{}
	for _, r := range pending {
		switch s.syncOne(ctx, r.ID) {
		case syncUploaded:
			resp.Uploaded++
		case syncFailed:
			resp.Failed++
		default:
			resp.Skipped++
		}
	}
	s.logger.Info("sync finished",
		zap.Int("uploaded", resp.Uploaded),
		zap.Int("failed", resp.Failed),
		zap.Int("skipped", resp.Skipped))
	return resp, nil
}

func (s *AudioServiceImpl) syncOne(ctx context.Context, id int) syncOutcome {
	if ctx.Err() != nil {
		return syncFailed
	}
	if !s.summarizer.Reserve(id) {
		return syncSkipped
	}
	defer s.summarizer.Release(id)

	rec, err := s.store.GetAudioRecord(ctx, id)
	switch {
	case apperrors.Is(err, apperrors.ErrNotFound):
		return syncSkipped
	case err != nil:
		s.logger.Warn("audio record reload failed", zap.Int("record_id", id), zap.Error(err))
		return syncFailed
	case rec.IsUploaded:
		return syncSkipped
	}

	if err := s.syncer.UploadAudioRecord(ctx, rec); err != nil {
		s.logger.Warn("audio upload failed", zap.Int("record_id", id), zap.Error(err))
		return syncFailed
	}
	return syncUploaded
}
