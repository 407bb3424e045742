// Package sqlite provides a SQLite-backed implementation of repository.Store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/okian/ekiden/internal/adapters/repository"
	"github.com/okian/ekiden/pkg/logger"
	"github.com/okian/ekiden/pkg/metrics"
)

// Ensure Store implements repository.Store.
var _ repository.Store = (*Store)(nil)

const (
	defaultBusyTimeout = 5 * time.Second
	dirPermission      = 0o755
)

// Store implements repository.Store using SQLite.
type Store struct {
	db          *sql.DB
	log         logger.Logger
	busyTimeout time.Duration
	now         func() time.Time
}

// New opens the database at dbPath, creating parent directories, and runs
// migrations.
func New(ctx context.Context, dbPath string, opts ...Option) (*Store, error) {
	s := &Store{
		busyTimeout: defaultBusyTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), dirPermission); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", s.busyTimeout.Milliseconds()))
	db, err := sql.Open("sqlite", "file:"+dbPath+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if s.log != nil {
		s.log.Info(ctx, "sqlite store ready", logger.String("path", dbPath))
	}
	s.db = db
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// observeRead records read latency and classifies failures.
func (s *Store) observeRead(op string, start time.Time, err error) {
	metrics.RecordRepositoryQueryLatency(op, float64(time.Since(start).Microseconds())/1000)
	s.observeErr(op, err)
}

// observeWrite records write latency and classifies failures.
func (s *Store) observeWrite(op string, start time.Time, err error) {
	metrics.RecordRepositoryUpdateLatency(op, float64(time.Since(start).Microseconds())/1000)
	s.observeErr(op, err)
}

func (s *Store) observeErr(op string, err error) {
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		metrics.RecordErrorByComponent("repository", "not_found")
	case errors.Is(err, repository.ErrConflict):
		metrics.RecordErrorByComponent("repository", "conflict")
	default:
		metrics.RecordErrorByComponent("repository", "store_error")
		if s.log != nil {
			s.log.Error(context.Background(), "sqlite operation failed", logger.String("op", op), logger.Error(err))
		}
	}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && (se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY)
}

func toUnixMilli(t time.Time) int64 { return t.UnixMilli() }

func fromUnixMilli(ms int64) time.Time { return time.UnixMilli(ms).UTC() }
