package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "voicenotes/internal/app/errors"
	"voicenotes/internal/app/logging"
	"voicenotes/internal/app/model"
)

// CommonDB provides shared database functionality
type CommonDB struct {
	db           *sql.DB
	driverName   string
	placeholders PlaceholderFunc
	logger       *zap.Logger
	now          func() time.Time
}

// PlaceholderFunc generates parameter placeholders for different SQL dialects
type PlaceholderFunc func(n int) string

var _ RecordStore = (*CommonDB)(nil)

// NewCommonDB creates a new CommonDB instance
func NewCommonDB(db *sql.DB, driverName string, logger *zap.Logger) *CommonDB {
	var placeholders PlaceholderFunc

	switch driverName {
	case "sqlite3":
		placeholders = func(n int) string { return "?" }
	case "postgres":
		placeholders = func(n int) string { return fmt.Sprintf("$%d", n) }
	default:
		placeholders = func(n int) string { return "?" }
	}

	return &CommonDB{
		db:           db,
		driverName:   driverName,
		placeholders: placeholders,
		logger:       logging.OrNop(logger),
		now:          time.Now,
	}
}

// SetClock replaces the time source used for CreatedAt/UpdatedAt stamps.
func (c *CommonDB) SetClock(now func() time.Time) {
	c.now = now
}

// params renders n placeholders starting at index from.
func (c *CommonDB) params(from, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = c.placeholders(from + i)
	}
	return out
}

const noteColumns = `id, title, date, created_at, updated_at`

const audioColumns = `id, note_id, title, file_name, file_path, duration_ms, file_size_bytes,
	recorded_at, updated_at, backend_audio_id, is_uploaded, summary_status, has_summary,
	summary_text, summary_confidence, summary_language_code, transcript_text, transcript_language_code`

// audioWriteColumns is audioColumns without id, in bind order.
var audioWriteColumns = []string{
	"note_id", "title", "file_name", "file_path", "duration_ms", "file_size_bytes",
	"recorded_at", "updated_at", "backend_audio_id", "is_uploaded", "summary_status", "has_summary",
	"summary_text", "summary_confidence", "summary_language_code", "transcript_text", "transcript_language_code",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(s rowScanner) (model.Note, error) {
	var n model.Note
	var date, created, updated int64
	if err := s.Scan(&n.ID, &n.Title, &date, &created, &updated); err != nil {
		return n, err
	}
	n.Date = fromMillis(date)
	n.CreatedAt = fromMillis(created)
	n.UpdatedAt = fromMillis(updated)
	return n, nil
}

func scanAudioRecord(s rowScanner) (model.AudioRecord, error) {
	var r model.AudioRecord
	var durationMs, recordedAt, updatedAt int64
	var isUploaded, hasSummary int
	var status string
	err := s.Scan(
		&r.ID, &r.NoteID, &r.Title, &r.FileName, &r.FilePath, &durationMs, &r.FileSizeBytes,
		&recordedAt, &updatedAt, &r.BackendAudioID, &isUploaded, &status, &hasSummary,
		&r.SummaryText, &r.SummaryConfidence, &r.SummaryLanguageCode, &r.TranscriptText, &r.TranscriptLanguageCode,
	)
	if err != nil {
		return r, err
	}
	r.Duration = time.Duration(durationMs) * time.Millisecond
	r.RecordedAt = fromMillis(recordedAt)
	r.UpdatedAt = fromMillis(updatedAt)
	r.IsUploaded = isUploaded != 0
	r.HasSummary = hasSummary != 0
	r.SummaryStatus = model.ParseSummaryStatus(status)
	return r, nil
}

func audioArgs(r *model.AudioRecord) []any {
	return []any{
		r.NoteID, r.Title, r.FileName, r.FilePath, r.Duration.Milliseconds(), r.FileSizeBytes,
		toMillis(r.RecordedAt), toMillis(r.UpdatedAt), r.BackendAudioID, boolToInt(r.IsUploaded),
		string(r.SummaryStatus), boolToInt(r.HasSummary), r.SummaryText, r.SummaryConfidence,
		r.SummaryLanguageCode, r.TranscriptText, r.TranscriptLanguageCode,
	}
}

// GetNotes retrieves all notes, newest first, each with its audio records
func (c *CommonDB) GetNotes(ctx context.Context) ([]model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes ORDER BY date DESC, id DESC`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Mark(apperrors.ErrQueryFailed, err)
	}
	defer rows.Close()

	notes := make([]model.Note, 0)
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, apperrors.Mark(apperrors.ErrScanFailed, err)
		}
		notes = append(notes, n)
	}
	if err = rows.Err(); err != nil {
		return nil, apperrors.Mark(apperrors.ErrQueryFailed, err)
	}

	for i := range notes {
		records, err := c.GetAudioRecordsByNoteID(ctx, notes[i].ID)
		if err != nil {
			return nil, err
		}
		notes[i].AudioRecords = records
	}
	return notes, nil
}

// GetNote retrieves a note and its audio records
func (c *CommonDB) GetNote(ctx context.Context, id int) (*model.Note, error) {
	query := fmt.Sprintf(`SELECT `+noteColumns+` FROM notes WHERE id = %s`, c.placeholders(1))

	n, err := scanNote(c.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("note", id)
	}
	if err != nil {
		return nil, apperrors.Mark(apperrors.ErrQueryFailed, err)
	}

	records, err := c.GetAudioRecordsByNoteID(ctx, id)
	if err != nil {
		return nil, err
	}
	n.AudioRecords = records
	return &n, nil
}

// SaveNote inserts or updates a note and returns its id
func (c *CommonDB) SaveNote(ctx context.Context, note *model.Note) (int, error) {
	now := c.now()
	note.UpdatedAt = now

	if note.ID != 0 {
		p := c.params(1, 4)
		query := fmt.Sprintf(`UPDATE notes SET title = %s, date = %s, updated_at = %s WHERE id = %s`,
			p[0], p[1], p[2], p[3])
		res, err := c.db.ExecContext(ctx, query, note.Title, toMillis(note.Date), toMillis(note.UpdatedAt), note.ID)
		if err != nil {
			return 0, apperrors.Mark(apperrors.ErrUpdateFailed, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return 0, apperrors.NotFound("note", note.ID)
		}
		return note.ID, nil
	}

	note.CreatedAt = now
	if note.Date.IsZero() {
		note.Date = now
	}
	p := c.params(1, 4)
	query := fmt.Sprintf(`INSERT INTO notes (title, date, created_at, updated_at) VALUES (%s, %s, %s, %s) RETURNING id`,
		p[0], p[1], p[2], p[3])
	var id int
	err := c.db.QueryRowContext(ctx, query, note.Title, toMillis(note.Date), toMillis(note.CreatedAt), toMillis(note.UpdatedAt)).Scan(&id)
	if err != nil {
		return 0, apperrors.Mark(apperrors.ErrInsertFailed, err)
	}
	note.ID = id
	return id, nil
}

// DeleteNote deletes the note and its audio records in one transaction.
// Audio files are removed only after the commit.
func (c *CommonDB) DeleteNote(ctx context.Context, note *model.Note) error {
	records, err := c.GetAudioRecordsByNoteID(ctx, note.ID)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Mark(apperrors.ErrDeleteFailed, err)
	}
	defer tx.Rollback()

	p := c.placeholders(1)
	if _, err := tx.ExecContext(ctx, `DELETE FROM audio_records WHERE note_id = `+p, note.ID); err != nil {
		return apperrors.Mark(apperrors.ErrDeleteFailed, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = `+p, note.ID); err != nil {
		return apperrors.Mark(apperrors.ErrDeleteFailed, err)
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Mark(apperrors.ErrDeleteFailed, err)
	}

	for i := range records {
		c.removeAudioFile(&records[i])
	}
	return nil
}

// GetAudioRecord retrieves one audio record by id
func (c *CommonDB) GetAudioRecord(ctx context.Context, id int) (*model.AudioRecord, error) {
	query := fmt.Sprintf(`SELECT `+audioColumns+` FROM audio_records WHERE id = %s`, c.placeholders(1))

	r, err := scanAudioRecord(c.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("audio record", id)
	}
	if err != nil {
		return nil, apperrors.Mark(apperrors.ErrQueryFailed, err)
	}
	return &r, nil
}

// GetAudioRecordsByNoteID retrieves a note's records, most recently recorded first
func (c *CommonDB) GetAudioRecordsByNoteID(ctx context.Context, noteID int) ([]model.AudioRecord, error) {
	query := fmt.Sprintf(
		`SELECT `+audioColumns+` FROM audio_records WHERE note_id = %s ORDER BY recorded_at DESC, id DESC`,
		c.placeholders(1),
	)
	records, err := c.queryAudioRecords(ctx, query, noteID)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("loaded audio records", zap.Int("note_id", noteID), zap.Int("count", len(records)))
	return records, nil
}

// GetAudioRecords retrieves every audio record
func (c *CommonDB) GetAudioRecords(ctx context.Context) ([]model.AudioRecord, error) {
	return c.queryAudioRecords(ctx, `SELECT `+audioColumns+` FROM audio_records ORDER BY id`)
}

func (c *CommonDB) queryAudioRecords(ctx context.Context, query string, args ...any) ([]model.AudioRecord, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Mark(apperrors.ErrQueryFailed, err)
	}
	defer rows.Close()

	records := make([]model.AudioRecord, 0)
	for rows.Next() {
		r, err := scanAudioRecord(rows)
		if err != nil {
			return nil, apperrors.Mark(apperrors.ErrScanFailed, err)
		}
		records = append(records, r)
	}
	if err = rows.Err(); err != nil {
		return nil, apperrors.Mark(apperrors.ErrQueryFailed, err)
	}
	return records, nil
}

// SaveAudioRecord inserts or updates an audio record and returns its id
func (c *CommonDB) SaveAudioRecord(ctx context.Context, record *model.AudioRecord) (int, error) {
	now := c.now()
	record.UpdatedAt = now
	if record.SummaryStatus == "" {
		record.SummaryStatus = model.SummaryNone
	}

	if record.ID != 0 {
		p := c.params(1, len(audioWriteColumns)+1)
		sets := make([]string, len(audioWriteColumns))
		for i, col := range audioWriteColumns {
			sets[i] = col + " = " + p[i]
		}
		query := fmt.Sprintf(`UPDATE audio_records SET %s WHERE id = %s`,
			strings.Join(sets, ", "), p[len(audioWriteColumns)])

		args := append(audioArgs(record), record.ID)
		res, err := c.db.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, apperrors.Mark(apperrors.ErrUpdateFailed, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return 0, apperrors.NotFound("audio record", record.ID)
		}
		return record.ID, nil
	}

	if record.RecordedAt.IsZero() {
		record.RecordedAt = now
	}
	p := c.params(1, len(audioWriteColumns))
	query := fmt.Sprintf(`INSERT INTO audio_records (%s) VALUES (%s) RETURNING id`,
		strings.Join(audioWriteColumns, ", "), strings.Join(p, ", "))

	var id int
	if err := c.db.QueryRowContext(ctx, query, audioArgs(record)...).Scan(&id); err != nil {
		return 0, apperrors.Mark(apperrors.ErrInsertFailed, err)
	}
	record.ID = id
	return id, nil
}

// MarkUploaded writes only the upload columns of record: backend id,
// uploaded flag, file name and size. Summary fields are left untouched.
func (c *CommonDB) MarkUploaded(ctx context.Context, record *model.AudioRecord) error {
	record.UpdatedAt = c.now()
	p := c.params(1, 6)
	query := fmt.Sprintf(`UPDATE audio_records SET backend_audio_id = %s, is_uploaded = %s, file_name = %s, file_size_bytes = %s, updated_at = %s WHERE id = %s`,
		p[0], p[1], p[2], p[3], p[4], p[5])

	res, err := c.db.ExecContext(ctx, query,
		record.BackendAudioID, boolToInt(record.IsUploaded), record.FileName, record.FileSizeBytes,
		toMillis(record.UpdatedAt), record.ID)
	if err != nil {
		return apperrors.Mark(apperrors.ErrUpdateFailed, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NotFound("audio record", record.ID)
	}
	return nil
}

// DeleteAudioRecord deletes the row, then removes the audio file if present
func (c *CommonDB) DeleteAudioRecord(ctx context.Context, record *model.AudioRecord) error {
	query := fmt.Sprintf(`DELETE FROM audio_records WHERE id = %s`, c.placeholders(1))
	if _, err := c.db.ExecContext(ctx, query, record.ID); err != nil {
		return apperrors.Mark(apperrors.ErrDeleteFailed, err)
	}
	c.removeAudioFile(record)
	return nil
}

func (c *CommonDB) removeAudioFile(record *model.AudioRecord) {
	if record.FilePath == "" {
		return
	}
	if err := os.Remove(record.FilePath); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("failed to delete audio file",
			zap.Int("record_id", record.ID),
			zap.String("path", record.FilePath),
			zap.Error(err))
	}
}

// Close closes the database connection
func (c *CommonDB) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database connection
func (c *CommonDB) DB() *sql.DB {
	return c.db
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
