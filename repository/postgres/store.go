package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/planner/repository"
)

// querier is the subset shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a Postgres-backed repository.Store. The zero-transaction Store
// borrows a pooled connection per statement; a transactional Store pins one.
type Store struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
	q    querier
}

// NewStore wraps an existing pool. The pool is owned by the caller until Close.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, q: pool}
}

func (s *Store) Users() repository.UserRepository { return &userRepository{q: s.q} }

func (s *Store) Tasks() repository.TaskRepository { return &taskRepository{s: s} }

func (s *Store) Events() repository.ScheduleEventRepository {
	return &scheduleEventRepository{q: s.q}
}

func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.inTx(ctx, func(tx *Store) error { return fn(tx) })
}

func (s *Store) inTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.tx != nil {
		return fn(s)
	}
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(&Store{pool: s.pool, tx: tx, q: tx})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	if s.tx == nil {
		s.pool.Close()
	}
	return nil
}

var _ repository.Store = (*Store)(nil)
