package bolt

import (
	"bytes"
	"context"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
)

type taskRepository struct {
	s *Store
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	var task *domain.Task
	err := r.s.view(ctx, func(tx *bolt.Tx) error {
		var err error
		task, err = loadTask(tx, id)
		return err
	})
	return task, err
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	limit := repository.ClampLimit(filter.Limit)
	var tasks []domain.Task
	err := r.s.view(ctx, func(tx *bolt.Tx) error {
		skipped := 0
		c := tx.Bucket(bucketTasks).Cursor()
		for k, v := c.First(); k != nil && len(tasks) < limit; k, v = c.Next() {
			task, err := decodeTask(k, v)
			if err != nil {
				return err
			}
			if filter.Status != "" && task.Status != filter.Status {
				continue
			}
			if skipped < filter.Offset {
				skipped++
				continue
			}
			tasks = append(tasks, *task)
		}
		return nil
	})
	return tasks, err
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	if err := task.Validate(); err != nil {
		return err
	}
	return r.s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		row := normalizeTask(*task)
		row.ID = int64(seq)
		if err := put(b, itob(row.ID), row); err != nil {
			return err
		}
		*task = row
		return nil
	})
}

func (r *taskRepository) Update(ctx context.Context, id int64, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var task *domain.Task
	err := r.s.update(ctx, func(tx *bolt.Tx) error {
		current, err := loadTask(tx, id)
		if err != nil {
			return err
		}
		current.Apply(patch, updatedAt)
		if err := current.Validate(); err != nil {
			return err
		}
		if err := put(tx.Bucket(bucketTasks), itob(id), current); err != nil {
			return err
		}
		task = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes the task's events through the (task, start) index and then
// the task itself, all in the same write transaction.
func (r *taskRepository) Delete(ctx context.Context, id int64) (int, error) {
	var removed int
	err := r.s.update(ctx, func(tx *bolt.Tx) error {
		tasks := tx.Bucket(bucketTasks)
		if tasks.Get(itob(id)) == nil {
			return domain.ErrTaskNotFound
		}

		events := tx.Bucket(bucketEvents)
		index := tx.Bucket(bucketTaskEvents)
		prefix := itob(id)

		var keys [][]byte
		c := index.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := events.Delete(k[16:24]); err != nil {
				return err
			}
			if err := index.Delete(k); err != nil {
				return err
			}
		}
		removed = len(keys)
		return tasks.Delete(prefix)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func loadTask(tx *bolt.Tx, id int64) (*domain.Task, error) {
	raw := tx.Bucket(bucketTasks).Get(itob(id))
	if raw == nil {
		return nil, domain.ErrTaskNotFound
	}
	return decodeTask(itob(id), raw)
}

func decodeTask(key, raw []byte) (*domain.Task, error) {
	var task domain.Task
	if err := decode(key, raw, &task); err != nil {
		return nil, err
	}
	row := normalizeTask(task)
	return &row, nil
}

func normalizeTask(t domain.Task) domain.Task {
	t.CreatedAt = domain.Timestamp(t.CreatedAt)
	t.UpdatedAt = domain.Timestamp(t.UpdatedAt)
	if t.DueAt != nil {
		due := domain.Timestamp(*t.DueAt)
		t.DueAt = &due
	}
	return t
}
