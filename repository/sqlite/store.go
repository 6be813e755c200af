// Package sqlite implements the repositories on an embedded SQLite file. The
// schema carries the same unique, check and cascading foreign key constraints
// as the Postgres one, so the database rejects bad rows even when two
// writers race.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fastygo/planner/repository"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a SQLite-backed repository.Store.
type Store struct {
	db *sql.DB
	tx *sql.Tx
	q  querier
}

// Open opens (creating if needed) the database file at path. Foreign keys are
// switched on for every pooled connection and writers take the lock up front.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite: empty path")
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if isMemory(path) {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an already opened handle. The handle must have foreign keys enabled.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// DSN builds the go-sqlite3 connection string used by Open and by the migration runner.
func DSN(path string) string {
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
}

// DB exposes the underlying handle, e.g. for migrations.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Users() repository.UserRepository { return &userRepository{q: s.q} }

func (s *Store) Tasks() repository.TaskRepository { return &taskRepository{s: s} }

func (s *Store) Events() repository.ScheduleEventRepository {
	return &scheduleEventRepository{q: s.q}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.inTx(ctx, func(tx *Store) error { return fn(tx) })
}

func (s *Store) inTx(ctx context.Context, fn func(tx *Store) error) (err error) {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(&Store{db: s.db, tx: tx, q: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.tx != nil {
		return nil
	}
	return s.db.Close()
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

func ensureDir(path string) error {
	if isMemory(path) {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}

var _ repository.Store = (*Store)(nil)
