package repository

import "context"

// Store groups the repositories that share one backing database.
type Store interface {
	Users() UserRepository
	Tasks() TaskRepository
	Events() ScheduleEventRepository

	// WithinTx runs fn inside a single transaction. The Store handed to fn
	// routes every call through that transaction; it commits when fn
	// returns nil and rolls back otherwise, including on panic and on
	// context cancellation. Calling WithinTx on a transactional Store
	// reuses the open transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	Ping(ctx context.Context) error
	Close() error
}
