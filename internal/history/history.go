// Package history records import runs to PostgreSQL.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one recorded import run.
type Entry struct {
	RunID              string
	Command            string
	Entity             string
	Behavior           string
	SourceFile         string
	StagedFile         string
	Checksum           string
	Status             string
	Message            string
	ProcessedRows      int
	ProcessedEntities  int
	InvalidRows        int
	TotalErrors        int
	ErrorLimitExceeded bool
	StartedAt          time.Time
	FinishedAt         time.Time
}

// Recorder persists import runs.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	Close()
}

// NopRecorder discards entries.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(context.Context, Entry) error { return nil }

// Close implements Recorder.
func (NopRecorder) Close() {}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS import_history (
	run_id               TEXT PRIMARY KEY,
	command              TEXT NOT NULL,
	entity               TEXT NOT NULL,
	behavior             TEXT NOT NULL,
	source_file          TEXT NOT NULL,
	staged_file          TEXT NOT NULL,
	checksum             TEXT NOT NULL DEFAULT '',
	status               TEXT NOT NULL,
	message              TEXT NOT NULL DEFAULT '',
	processed_rows       INTEGER NOT NULL DEFAULT 0,
	processed_entities   INTEGER NOT NULL DEFAULT 0,
	invalid_rows         INTEGER NOT NULL DEFAULT 0,
	total_errors         INTEGER NOT NULL DEFAULT 0,
	error_limit_exceeded BOOLEAN NOT NULL DEFAULT FALSE,
	started_at           TIMESTAMPTZ NOT NULL,
	finished_at          TIMESTAMPTZ NOT NULL
)`

const insertSQL = `
INSERT INTO import_history (
	run_id, command, entity, behavior, source_file, staged_file, checksum, status, message,
	processed_rows, processed_entities, invalid_rows, total_errors, error_limit_exceeded,
	started_at, finished_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRecorder writes entries to the import_history table.
type PostgresRecorder struct {
	db     execer
	close  func()
	logger *slog.Logger
}

// NewPostgresRecorder connects to dsn and ensures the history table exists.
func NewPostgresRecorder(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresRecorder, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse history database DSN; %w", err)
	}
	poolConfig.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to history database; %w", err)
	}

	r := newRecorder(pool, pool.Close, logger)
	if err := r.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func newRecorder(db execer, closeFn func(), logger *slog.Logger) *PostgresRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresRecorder{db: db, close: closeFn, logger: logger}
}

func (r *PostgresRecorder) migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create import_history table; %w", err)
	}
	return nil
}

// Record implements Recorder.
func (r *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	_, err := r.db.Exec(ctx, insertSQL,
		e.RunID, e.Command, e.Entity, e.Behavior, e.SourceFile, e.StagedFile, e.Checksum, e.Status, e.Message,
		e.ProcessedRows, e.ProcessedEntities, e.InvalidRows, e.TotalErrors, e.ErrorLimitExceeded,
		e.StartedAt, e.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record import run %s; %w", e.RunID, err)
	}

	r.logger.Debug("import run recorded", "run_id", e.RunID, "status", e.Status)
	return nil
}

// Close implements Recorder.
func (r *PostgresRecorder) Close() {
	if r.close != nil {
		r.close()
	}
}
