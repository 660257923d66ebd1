package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	apperrors "voicenotes/internal/app/errors"
	"voicenotes/internal/app/repository"
)

// SQLiteDB is the default record store backed by a local sqlite file.
type SQLiteDB struct {
	*repository.CommonDB
}

var _ repository.RecordStore = (*SQLiteDB)(nil)

// NewSQLiteDB opens (or creates) the database file at dbPath and ensures the schema exists.
func NewSQLiteDB(dbPath string, logger *zap.Logger) (*SQLiteDB, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc&_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, apperrors.Mark(apperrors.ErrDatabaseConnection, err)
	}
	// sqlite allows a single writer
	db.SetMaxOpenConns(1)

	store := &SQLiteDB{CommonDB: repository.NewCommonDB(db, "sqlite3", logger)}
	if err := store.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}
