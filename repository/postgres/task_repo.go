package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
)

const taskColumns = `id, title, description, estimated_minutes, due_at, priority, status, created_at, updated_at`

type taskRepository struct {
	s *Store
}

func (r *taskRepository) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.s.q.QueryRow(ctx, query, id))
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR status = $1)
	ORDER BY id
	LIMIT $2 OFFSET $3
	`
	rows, err := r.s.q.Query(ctx, query, string(filter.Status), repository.ClampLimit(filter.Limit), filter.Offset)
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
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id
	`

	task.CreatedAt = domain.Timestamp(task.CreatedAt)
	task.UpdatedAt = domain.Timestamp(task.UpdatedAt)
	task.DueAt = utcPtr(task.DueAt)

	if err := r.s.q.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.EstimatedMinutes,
		nullTime(task.DueAt),
		task.Priority,
		string(task.Status),
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID); err != nil {
		return fmt.Errorf("insert task: %w", mapError(err))
	}
	return nil
}

func (r *taskRepository) Update(ctx context.Context, id int64, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error) {
	query := `
	UPDATE tasks
	SET title = COALESCE($2, title),
		description = COALESCE($3, description),
		estimated_minutes = COALESCE($4, estimated_minutes),
		due_at = COALESCE($5, due_at),
		priority = COALESCE($6, priority),
		status = COALESCE($7, status),
		updated_at = $8
	WHERE id = $1
	RETURNING ` + taskColumns

	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}

	task, err := scanTask(r.s.q.QueryRow(ctx, query,
		id,
		patch.Title,
		patch.Description,
		patch.EstimatedMinutes,
		nullTime(patch.DueAt),
		patch.Priority,
		status,
		domain.Timestamp(updatedAt),
	))
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, mapError(err))
	}
	return task, nil
}

// Delete removes the events explicitly before the task so the count is
// exact; the foreign key cascade covers the same rows if it ever fires first.
func (r *taskRepository) Delete(ctx context.Context, id int64) (int, error) {
	var removed int
	err := r.s.inTx(ctx, func(tx *Store) error {
		var locked int64
		if err := tx.q.QueryRow(ctx, `SELECT id FROM tasks WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrTaskNotFound
			}
			return err
		}

		tag, err := tx.q.Exec(ctx, `DELETE FROM schedule_events WHERE task_id = $1`, id)
		if err != nil {
			return err
		}
		removed = int(tag.RowsAffected())

		tag, err = tx.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != 1 {
			return domain.ErrIntegrity
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		task   domain.Task
		status string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.EstimatedMinutes,
		&task.DueAt,
		&task.Priority,
		&status,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.DueAt = utcPtr(task.DueAt)
	task.CreatedAt = domain.Timestamp(task.CreatedAt)
	task.UpdatedAt = domain.Timestamp(task.UpdatedAt)
	return &task, nil
}
