package audio

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"voicenotes/internal/app/logging"
	"voicenotes/internal/app/model"
	"voicenotes/internal/app/repository"
	"voicenotes/internal/app/util/files"
)

// ProbeFunc reports the duration of an audio file.
type ProbeFunc func(ctx context.Context, path string) (Info, error)

// Importer registers the audio files of a directory with a note.
type Importer struct {
	store  repository.AudioRecordDAO
	probe  ProbeFunc
	logger *zap.Logger
}

// ImportResult counts what ImportDir did.
type ImportResult struct {
	Imported []model.AudioRecord
	Skipped  int
	Failed   int
}

// NewImporter creates an importer. probe may be nil, in which case
// durations are left zero.
func NewImporter(store repository.AudioRecordDAO, probe ProbeFunc, logger *zap.Logger) *Importer {
	return &Importer{store: store, probe: probe, logger: logging.OrNop(logger)}
}

// ImportDir adds every audio file in dir that note does not already
// reference, oldest first. Each record starts with summary status none.
func (im *Importer) ImportDir(ctx context.Context, note *model.Note, dir string) (ImportResult, error) {
	var result ImportResult

	found, err := files.GetAllAudioFiles(dir)
	if err != nil {
		return result, err
	}

	known := lo.SliceToMap(note.AudioRecords, func(r model.AudioRecord) (string, struct{}) {
		return r.FilePath, struct{}{}
	})

	for _, f := range found {
		if _, ok := known[f.FullPath]; ok {
			result.Skipped++
			continue
		}

		title := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
		rec := model.NewAudioRecord(note.ID, title, f.FullPath, 0, f.Size)
		rec.RecordedAt = f.ModTime

		if im.probe != nil {
			info, err := im.probe(ctx, f.FullPath)
			if err != nil {
				im.logger.Warn("failed to probe audio file", zap.String("path", f.FullPath), zap.Error(err))
			} else {
				rec.Duration = info.Duration
			}
		}

		if _, err := im.store.SaveAudioRecord(ctx, rec); err != nil {
			im.logger.Error("failed to save imported audio record", zap.String("path", f.FullPath), zap.Error(err))
			result.Failed++
			continue
		}
		result.Imported = append(result.Imported, *rec)
	}

	im.logger.Info("audio import finished",
		zap.Int("note_id", note.ID),
		zap.Int("imported", len(result.Imported)),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))
	return result, nil
}
