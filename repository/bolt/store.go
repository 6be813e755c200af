// Package bolt implements the repositories on a bbolt file. Bolt has no
// constraints of its own, so every rule is checked inside the same write
// transaction that stores the row. Bolt allows a single writer at a time,
// which makes each check-then-write step atomic with respect to other
// writers.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/planner/repository"
)

var (
	bucketUsers      = []byte("users")
	bucketUserEmails = []byte("users_by_email")
	bucketTasks      = []byte("tasks")
	bucketEvents     = []byte("schedule_events")
	// bucketTaskEvents is the (task_id, start_at, id) index.
	bucketTaskEvents = []byte("schedule_events_by_task_start")
)

var allBuckets = [][]byte{bucketUsers, bucketUserEmails, bucketTasks, bucketEvents, bucketTaskEvents}

// Store is a bbolt-backed repository.Store.
type Store struct {
	db *bolt.DB
	// tx is set on the Store handed to WithinTx callbacks.
	tx *bolt.Tx
}

// Open initializes the Bolt file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Users() repository.UserRepository { return &userRepository{s: s} }

func (s *Store) Tasks() repository.TaskRepository { return &taskRepository{s: s} }

func (s *Store) Events() repository.ScheduleEventRepository {
	return &scheduleEventRepository{s: s}
}

// WithinTx runs fn in one read-write Bolt transaction. Repositories used
// inside fn must not be handed to other goroutines.
func (s *Store) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		return fn(&Store{db: s.db, tx: tx})
	})
}

func (s *Store) update(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		if !s.tx.Writable() {
			return bolt.ErrTxNotWritable
		}
		return fn(s.tx)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		// A caller that gave up while we held the write lock gets a rollback.
		return ctx.Err()
	})
}

func (s *Store) view(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(s.tx)
	}
	return s.db.View(fn)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.view(ctx, func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if tx.Bucket(name) == nil {
				return fmt.Errorf("bolt: missing bucket %s", name)
			}
		}
		return nil
	})
}

func (s *Store) Close() error {
	if s == nil || s.db == nil || s.tx != nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes Bolt statistics for monitoring endpoints.
func (s *Store) Stats() bolt.Stats {
	if s == nil || s.db == nil {
		return bolt.Stats{}
	}
	return s.db.Stats()
}

func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func btoi(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b))
}

// taskEventKey orders the index by task, then start time, then event id.
func taskEventKey(taskID int64, start time.Time, eventID int64) []byte {
	key := make([]byte, 0, 24)
	key = append(key, itob(taskID)...)
	key = binary.BigEndian.AppendUint64(key, uint64(start.UnixMicro())+1<<63)
	key = append(key, itob(eventID)...)
	return key
}

func put(b *bolt.Bucket, key []byte, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, payload)
}

func get(b *bolt.Bucket, key []byte, v any) (bool, error) {
	raw := b.Get(key)
	if raw == nil {
		return false, nil
	}
	return true, decode(key, raw, v)
}

func decode(key, raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %x: %w", key, err)
	}
	return nil
}

var _ repository.Store = (*Store)(nil)
