package repository

import (
	"context"
	"fmt"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT    NOT NULL DEFAULT '',
	date       INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL DEFAULT 0,
	updated_at INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS audio_records (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	note_id                  INTEGER NOT NULL,
	title                    TEXT    NOT NULL DEFAULT '',
	file_name                TEXT    NOT NULL DEFAULT '',
	file_path                TEXT    NOT NULL DEFAULT '',
	duration_ms              INTEGER NOT NULL DEFAULT 0,
	file_size_bytes          INTEGER NOT NULL DEFAULT 0,
	recorded_at              INTEGER NOT NULL DEFAULT 0,
	updated_at               INTEGER NOT NULL DEFAULT 0,
	backend_audio_id         TEXT    NOT NULL DEFAULT '',
	is_uploaded              INTEGER NOT NULL DEFAULT 0,
	summary_status           TEXT    NOT NULL DEFAULT 'none',
	has_summary              INTEGER NOT NULL DEFAULT 0,
	summary_text             TEXT    NOT NULL DEFAULT '',
	summary_confidence       REAL    NOT NULL DEFAULT 0,
	summary_language_code    TEXT    NOT NULL DEFAULT '',
	transcript_text          TEXT    NOT NULL DEFAULT '',
	transcript_language_code TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audio_records_note_id ON audio_records (note_id);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS notes (
	id         SERIAL PRIMARY KEY,
	title      TEXT   NOT NULL DEFAULT '',
	date       BIGINT NOT NULL DEFAULT 0,
	created_at BIGINT NOT NULL DEFAULT 0,
	updated_at BIGINT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS audio_records (
	id                       SERIAL PRIMARY KEY,
	note_id                  INTEGER          NOT NULL,
	title                    TEXT             NOT NULL DEFAULT '',
	file_name                TEXT             NOT NULL DEFAULT '',
	file_path                TEXT             NOT NULL DEFAULT '',
	duration_ms              BIGINT           NOT NULL DEFAULT 0,
	file_size_bytes          BIGINT           NOT NULL DEFAULT 0,
	recorded_at              BIGINT           NOT NULL DEFAULT 0,
	updated_at               BIGINT           NOT NULL DEFAULT 0,
	backend_audio_id         TEXT             NOT NULL DEFAULT '',
	is_uploaded              INTEGER          NOT NULL DEFAULT 0,
	summary_status           TEXT             NOT NULL DEFAULT 'none',
	has_summary              INTEGER          NOT NULL DEFAULT 0,
	summary_text             TEXT             NOT NULL DEFAULT '',
	summary_confidence       DOUBLE PRECISION NOT NULL DEFAULT 0,
	summary_language_code    TEXT             NOT NULL DEFAULT '',
	transcript_text          TEXT             NOT NULL DEFAULT '',
	transcript_language_code TEXT             NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_audio_records_note_id ON audio_records (note_id);
`

// EnsureSchema creates the tables for the connection's dialect.
func (c *CommonDB) EnsureSchema(ctx context.Context) error {
	schema := sqliteSchema
	if c.driverName == "postgres" {
		schema = postgresSchema
	}
	if _, err := c.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
