package bolt

import (
	"bytes"
	"context"
	"iter"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/planner/domain"
)

type scheduleEventRepository struct {
	s *Store
}

func (r *scheduleEventRepository) Create(ctx context.Context, event *domain.ScheduleEvent) error {
	if event == nil {
		return domain.ErrInvalidPayload
	}
	row := normalizeEvent(*event)
	if err := row.Validate(); err != nil {
		return err
	}
	return r.s.update(ctx, func(tx *bolt.Tx) error {
		if tx.Bucket(bucketTasks).Get(itob(row.TaskID)) == nil {
			return domain.ErrDanglingTask
		}

		events := tx.Bucket(bucketEvents)
		seq, err := events.NextSequence()
		if err != nil {
			return err
		}
		row.ID = int64(seq)
		if err := put(events, itob(row.ID), row); err != nil {
			return err
		}
		if err := tx.Bucket(bucketTaskEvents).Put(taskEventKey(row.TaskID, row.StartAt, row.ID), nil); err != nil {
			return err
		}
		*event = row
		return nil
	})
}

func (r *scheduleEventRepository) GetByID(ctx context.Context, id int64) (*domain.ScheduleEvent, error) {
	var ev *domain.ScheduleEvent
	err := r.s.view(ctx, func(tx *bolt.Tx) error {
		var err error
		ev, err = loadEvent(tx, id)
		return err
	})
	return ev, err
}

func (r *scheduleEventRepository) Update(ctx context.Context, event *domain.ScheduleEvent) error {
	if event == nil {
		return domain.ErrInvalidPayload
	}
	if err := domain.ValidateInterval(event.StartAt, event.EndAt); err != nil {
		return err
	}
	return r.s.update(ctx, func(tx *bolt.Tx) error {
		current, err := loadEvent(tx, event.ID)
		if err != nil {
			return err
		}

		row := normalizeEvent(*event)
		row.TaskID = current.TaskID
		row.CreatedAt = current.CreatedAt
		if err := row.Validate(); err != nil {
			return err
		}

		index := tx.Bucket(bucketTaskEvents)
		if err := index.Delete(taskEventKey(current.TaskID, current.StartAt, current.ID)); err != nil {
			return err
		}
		if err := index.Put(taskEventKey(row.TaskID, row.StartAt, row.ID), nil); err != nil {
			return err
		}
		if err := put(tx.Bucket(bucketEvents), itob(row.ID), row); err != nil {
			return err
		}
		*event = row
		return nil
	})
}

func (r *scheduleEventRepository) Delete(ctx context.Context, id int64) error {
	return r.s.update(ctx, func(tx *bolt.Tx) error {
		current, err := loadEvent(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Bucket(bucketTaskEvents).Delete(taskEventKey(current.TaskID, current.StartAt, current.ID)); err != nil {
			return err
		}
		return tx.Bucket(bucketEvents).Delete(itob(id))
	})
}

// ListByTask reads a snapshot of the index in one read transaction per
// iteration and yields it after the transaction is closed, so callers may
// write to the store while ranging.
func (r *scheduleEventRepository) ListByTask(ctx context.Context, taskID int64) iter.Seq2[domain.ScheduleEvent, error] {
	return func(yield func(domain.ScheduleEvent, error) bool) {
		var snapshot []domain.ScheduleEvent
		err := r.s.view(ctx, func(tx *bolt.Tx) error {
			prefix := itob(taskID)
			c := tx.Bucket(bucketTaskEvents).Cursor()
			for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
				ev, err := loadEvent(tx, btoi(k[16:24]))
				if err != nil {
					return err
				}
				snapshot = append(snapshot, *ev)
			}
			return nil
		})
		if err != nil {
			yield(domain.ScheduleEvent{}, err)
			return
		}
		for _, ev := range snapshot {
			if !yield(ev, nil) {
				return
			}
		}
	}
}

func loadEvent(tx *bolt.Tx, id int64) (*domain.ScheduleEvent, error) {
	var ev domain.ScheduleEvent
	ok, err := get(tx.Bucket(bucketEvents), itob(id), &ev)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	row := normalizeEvent(ev)
	return &row, nil
}

func normalizeEvent(ev domain.ScheduleEvent) domain.ScheduleEvent {
	ev.StartAt = domain.Timestamp(ev.StartAt)
	ev.EndAt = domain.Timestamp(ev.EndAt)
	ev.CreatedAt = domain.Timestamp(ev.CreatedAt)
	return ev
}
