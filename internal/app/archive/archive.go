package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"voicenotes/internal/app/logging"
	"voicenotes/internal/app/model"
	"voicenotes/internal/app/utils"
	"voicenotes/internal/config"
)

// ObjectStore is the subset of *minio.Client the archive uses.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Service copies audio files to S3-compatible storage.
type Service struct {
	client ObjectStore
	bucket string
	logger *zap.Logger
}

// Result counts the outcome of ArchiveNote.
type Result struct {
	Archived []string
	Failed   int
}

// NewMinioClient creates a MinIO client from config.
func NewMinioClient(cfg config.ArchiveConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return client, nil
}

// NewService creates an archive writing to bucket.
func NewService(client ObjectStore, bucket string, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		logger: logging.OrNop(logger),
	}
}

// ObjectKey is the archive key of rec: notes/{noteID}/{recordID}-{file}.
func ObjectKey(rec *model.AudioRecord) string {
	name := rec.FileName
	if name == "" {
		name = filepath.Base(rec.FilePath)
	}
	return fmt.Sprintf("notes/%d/%d-%s", rec.NoteID, rec.ID, name)
}

// EnsureBucket creates the bucket when it does not exist.
func (s *Service) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	s.logger.Info("created archive bucket", zap.String("bucket", s.bucket))
	return nil
}

// ArchiveRecord uploads the record's audio file and returns its key.
func (s *Service) ArchiveRecord(ctx context.Context, rec *model.AudioRecord) (string, error) {
	if rec.FilePath == "" {
		return "", fmt.Errorf("audio record %d has no file", rec.ID)
	}
	key := ObjectKey(rec)

	sum, err := utils.CalculateFileHash(rec.FilePath)
	if err != nil {
		return "", err
	}

	_, err = s.client.FPutObject(ctx, s.bucket, key, rec.FilePath, minio.PutObjectOptions{
		ContentType: contentType(rec.FilePath),
		UserMetadata: map[string]string{
			"record-id":      fmt.Sprint(rec.ID),
			"note-id":        fmt.Sprint(rec.NoteID),
			"summary-status": string(rec.SummaryStatus),
			"sha256":         sum,
			"archived-at":    time.Now().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

// ArchiveNote uploads every record of note. A failed record is logged and
// counted; the rest are still archived.
func (s *Service) ArchiveNote(ctx context.Context, note *model.Note) (Result, error) {
	var result Result
	if err := s.EnsureBucket(ctx); err != nil {
		return result, err
	}

	for i := range note.AudioRecords {
		rec := &note.AudioRecords[i]
		key, err := s.ArchiveRecord(ctx, rec)
		if err != nil {
			s.logger.Warn("failed to archive audio record", zap.Int("record_id", rec.ID), zap.Error(err))
			result.Failed++
			continue
		}
		result.Archived = append(result.Archived, key)
	}
	return result, nil
}

func contentType(path string) string {
	switch filepath.Ext(path) {
	case ".m4a":
		return "audio/mp4"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
