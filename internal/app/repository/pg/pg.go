package pg

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	apperrors "voicenotes/internal/app/errors"
	"voicenotes/internal/app/repository"
)

// PostgresDB is the record store backed by PostgreSQL.
type PostgresDB struct {
	*repository.CommonDB
}

var _ repository.RecordStore = (*PostgresDB)(nil)

// NewPostgresDB opens a connection pool for connectionString. The schema is
// created lazily by EnsureSchema so that opening never needs a live server.
func NewPostgresDB(connectionString string, logger *zap.Logger) (*PostgresDB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, apperrors.Mark(apperrors.ErrDatabaseConnection, err)
	}
	return &PostgresDB{CommonDB: repository.NewCommonDB(db, "postgres", logger)}, nil
}

// Open connects and creates the schema.
func Open(ctx context.Context, connectionString string, logger *zap.Logger) (*PostgresDB, error) {
	store, err := NewPostgresDB(connectionString, logger)
	if err != nil {
		return nil, err
	}
	if err := store.DB().PingContext(ctx); err != nil {
		store.Close()
		return nil, apperrors.Mark(apperrors.ErrDatabaseConnection, err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
