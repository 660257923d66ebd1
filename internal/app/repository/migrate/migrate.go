package migrate

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"voicenotes/internal/app/logging"
	"voicenotes/internal/app/repository"
)

// Result counts what a Copy moved.
type Result struct {
	Notes        int
	AudioRecords int
	Skipped      int
}

// Copy moves every note and audio record from src into dst, typically from
// the local sqlite file into postgres. Ids are reassigned by dst and note
// links are remapped. Records that fail validation are logged and skipped.
func Copy(ctx context.Context, src, dst repository.RecordStore, logger *zap.Logger) (Result, error) {
	logger = logging.OrNop(logger)
	var result Result

	notes, err := src.GetNotes(ctx)
	if err != nil {
		return result, fmt.Errorf("read source notes: %w", err)
	}

	for i := range notes {
		note := notes[i]
		records := note.AudioRecords
		oldID := note.ID

		note.ID = 0
		note.AudioRecords = nil
		newID, err := dst.SaveNote(ctx, &note)
		if err != nil {
			return result, fmt.Errorf("copy note %d: %w", oldID, err)
		}
		result.Notes++

		for j := range records {
			rec := records[j]
			if strings.TrimSpace(rec.FilePath) == "" {
				logger.Warn("skipping audio record without file path", zap.Int("record_id", rec.ID))
				result.Skipped++
				continue
			}
			if err := rec.Validate(); err != nil {
				logger.Warn("skipping invalid audio record", zap.Int("record_id", rec.ID), zap.Error(err))
				result.Skipped++
				continue
			}

			oldRecordID := rec.ID
			rec.ID = 0
			rec.NoteID = newID
			if _, err := dst.SaveAudioRecord(ctx, &rec); err != nil {
				return result, fmt.Errorf("copy audio record %d: %w", oldRecordID, err)
			}
			result.AudioRecords++
		}
	}

	logger.Info("data migration completed",
		zap.Int("notes", result.Notes),
		zap.Int("audio_records", result.AudioRecords),
		zap.Int("skipped", result.Skipped))
	return result, nil
}
