package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
)

const taskColumns = `id, title, description, estimated_minutes, due_at, priority, status, created_at, updated_at`

type taskRepository struct {
	s *Store
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	return getTask(ctx, r.s.q, id)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE (? = '' OR status = ?)
	ORDER BY id
	LIMIT ? OFFSET ?
	`
	status := string(filter.Status)
	rows, err := r.s.q.QueryContext(ctx, query, status, status, repository.ClampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO tasks (title, description, estimated_minutes, due_at, priority, status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	if err := checkStorable(task.CreatedAt, task.UpdatedAt); err != nil {
		return err
	}
	if task.DueAt != nil {
		if err := checkStorable(*task.DueAt); err != nil {
			return err
		}
	}
	task.CreatedAt = domain.Timestamp(task.CreatedAt)
	task.UpdatedAt = domain.Timestamp(task.UpdatedAt)
	if task.DueAt != nil {
		due := domain.Timestamp(*task.DueAt)
		task.DueAt = &due
	}

	res, err := r.s.q.ExecContext(ctx, query,
		task.Title,
		nullString(task.Description),
		nullInt(task.EstimatedMinutes),
		nullTime(task.DueAt),
		task.Priority,
		string(task.Status),
		formatTime(task.CreatedAt),
		formatTime(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", mapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	task.ID = id
	return nil
}

func (r *taskRepository) Update(ctx context.Context, id int64, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error) {
	const query = `
	UPDATE tasks
	SET title = COALESCE(?, title),
		description = COALESCE(?, description),
		estimated_minutes = COALESCE(?, estimated_minutes),
		due_at = COALESCE(?, due_at),
		priority = COALESCE(?, priority),
		status = COALESCE(?, status),
		updated_at = ?
	WHERE id = ?
	`

	if err := checkStorable(updatedAt); err != nil {
		return nil, err
	}
	if patch.DueAt != nil {
		if err := checkStorable(*patch.DueAt); err != nil {
			return nil, err
		}
	}

	var status sql.NullString
	if patch.Status != nil {
		status = sql.NullString{String: string(*patch.Status), Valid: true}
	}
	var priority sql.NullInt64
	if patch.Priority != nil {
		priority = sql.NullInt64{Int64: int64(*patch.Priority), Valid: true}
	}

	var task *domain.Task
	err := r.s.inTx(ctx, func(tx *Store) error {
		res, err := tx.q.ExecContext(ctx, query,
			nullString(patch.Title),
			nullString(patch.Description),
			nullInt(patch.EstimatedMinutes),
			nullTime(patch.DueAt),
			priority,
			status,
			formatTime(updatedAt),
			id,
		)
		if err != nil {
			return mapError(err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return domain.ErrTaskNotFound
		}
		task, err = getTask(ctx, tx.q, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}
	return task, nil
}

// Delete removes the events explicitly before the task so the count is
// exact; the foreign key cascade covers the same rows if it ever fires first.
func (r *taskRepository) Delete(ctx context.Context, id int64) (int, error) {
	var removed int
	err := r.s.inTx(ctx, func(tx *Store) error {
		res, err := tx.q.ExecContext(ctx, `DELETE FROM schedule_events WHERE task_id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		removed = int(n)

		res, err = tx.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrTaskNotFound
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func getTask(ctx context.Context, q querier, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return scanTask(q.QueryRowContext(ctx, query, id))
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		estimate    sql.NullInt64
		due         sql.NullString
		status      string
		created     string
		updated     string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&estimate,
		&due,
		&task.Priority,
		&status,
		&created,
		&updated,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	var err error
	task.Description = stringPtr(description)
	task.EstimatedMinutes = intPtr(estimate)
	task.Status = domain.TaskStatus(status)
	if task.DueAt, err = parseNullTime(due); err != nil {
		return nil, err
	}
	if task.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &task, nil
}
