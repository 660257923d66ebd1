package uploader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"voicenotes/internal/app/api/summary"
	apperrors "voicenotes/internal/app/errors"
	"voicenotes/internal/app/logging"
	"voicenotes/internal/app/model"
	"voicenotes/internal/app/repository"
)

// Service uploads captured audio files to the remote service and records
// the returned backend id.
type Service struct {
	api    summary.API
	store  repository.AudioRecordDAO
	logger *zap.Logger
}

// SyncResult counts the outcome of SyncUnuploaded.
type SyncResult struct {
	Uploaded int
	Failed   int
}

// NewService creates an uploader.
func NewService(api summary.API, store repository.AudioRecordDAO, logger *zap.Logger) *Service {
	return &Service{
		api:    api,
		store:  store,
		logger: logging.OrNop(logger),
	}
}

// UploadAudioRecord streams the record's file to the remote service. On
// success BackendAudioID, IsUploaded, FileName and FileSizeBytes are set
// and only those columns are persisted.
func (s *Service) UploadAudioRecord(ctx context.Context, record *model.AudioRecord) error {
	if record == nil {
		return apperrors.Mark(apperrors.ErrUploadFailed, apperrors.New("nil audio record"))
	}

	file, err := os.Open(record.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.Mark(apperrors.ErrUploadFailed, apperrors.Wrapf(apperrors.ErrFileNotFound, "%s", record.FilePath))
		}
		return apperrors.Mark(apperrors.ErrUploadFailed, apperrors.Mark(apperrors.ErrFileReadFailed, err))
	}
	defer file.Close()

	resp, err := s.api.Upload(ctx, filepath.Base(record.FilePath), file)
	if err != nil {
		return apperrors.Mark(apperrors.ErrUploadFailed, err)
	}
	if resp == nil || !resp.Success {
		msg := "upload rejected"
		if resp != nil && resp.Message != "" {
			msg = resp.Message
		}
		return apperrors.Mark(apperrors.ErrUploadFailed, apperrors.Mark(apperrors.ErrResponseInvalid, apperrors.New(msg)))
	}
	if resp.AudioID == "" {
		return apperrors.Mark(apperrors.ErrUploadFailed, apperrors.Mark(apperrors.ErrResponseInvalid, apperrors.New("empty audio id")))
	}

	record.BackendAudioID = resp.AudioID
	record.IsUploaded = true
	if resp.Filename != "" {
		record.FileName = resp.Filename
	}
	if resp.FileSize > 0 {
		record.FileSizeBytes = resp.FileSize
	}

	if err := s.store.MarkUploaded(ctx, record); err != nil {
		return apperrors.Mark(apperrors.ErrUploadFailed, fmt.Errorf("persist upload of record %d: %w", record.ID, err))
	}

	s.logger.Info("uploaded audio record",
		zap.Int("record_id", record.ID),
		zap.String("backend_audio_id", record.BackendAudioID),
		zap.Int64("size", record.FileSizeBytes))
	return nil
}

// UploadMultiple uploads records sequentially.
func (s *Service) UploadMultiple(ctx context.Context, records []*model.AudioRecord) SyncResult {
	var result SyncResult
	for _, rec := range records {
		if ctx.Err() != nil {
			result.Failed++
			continue
		}
		if err := s.UploadAudioRecord(ctx, rec); err != nil {
			s.logger.Warn("audio upload failed", zap.Int("record_id", rec.ID), zap.Error(err))
			result.Failed++
			continue
		}
		result.Uploaded++
	}
	return result
}

// GetUnuploadedAudioRecords returns every record not yet uploaded.
func (s *Service) GetUnuploadedAudioRecords(ctx context.Context) ([]model.AudioRecord, error) {
	all, err := s.store.GetAudioRecords(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(all, func(r model.AudioRecord, _ int) bool {
		return !r.IsUploaded
	}), nil
}

// SyncUnuploaded uploads every unuploaded record. A single failure never
// aborts the sync.
func (s *Service) SyncUnuploaded(ctx context.Context) (SyncResult, error) {
	pending, err := s.GetUnuploadedAudioRecords(ctx)
	if err != nil {
		return SyncResult{}, err
	}
	if len(pending) == 0 {
		return SyncResult{}, nil
	}

	records := lo.Map(pending, func(r model.AudioRecord, i int) *model.AudioRecord {
		return &pending[i]
	})
	result := s.UploadMultiple(ctx, records)
	s.logger.Info("sync finished", zap.Int("uploaded", result.Uploaded), zap.Int("failed", result.Failed))
	return result, nil
}
