package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/fastygo/planner/domain"
)

const eventColumns = `id, task_id, start_at, end_at, source, created_at`

type scheduleEventRepository struct {
	q querier
}

func (r *scheduleEventRepository) Create(ctx context.Context, event *domain.ScheduleEvent) error {
	if event == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO schedule_events (task_id, start_at, end_at, source, created_at)
	VALUES (?, ?, ?, ?, ?)
	`

	if err := checkStorable(event.StartAt, event.EndAt, event.CreatedAt); err != nil {
		return err
	}
	normalizeEvent(event)
	res, err := r.q.ExecContext(ctx, query,
		event.TaskID,
		formatTime(event.StartAt),
		formatTime(event.EndAt),
		nullString(event.Source),
		formatTime(event.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert schedule event: %w", mapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = id
	return nil
}

func (r *scheduleEventRepository) GetByID(ctx context.Context, id int64) (*domain.ScheduleEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM schedule_events WHERE id = ?`
	return scanEvent(r.q.QueryRowContext(ctx, query, id))
}

func (r *scheduleEventRepository) Update(ctx context.Context, event *domain.ScheduleEvent) error {
	if event == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE schedule_events
	SET start_at = ?,
		end_at = ?,
		source = ?
	WHERE id = ?
	RETURNING task_id, created_at
	`

	if err := checkStorable(event.StartAt, event.EndAt); err != nil {
		return err
	}
	normalizeEvent(event)
	var created string
	if err := r.q.QueryRowContext(ctx, query,
		formatTime(event.StartAt),
		formatTime(event.EndAt),
		nullString(event.Source),
		event.ID,
	).Scan(&event.TaskID, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("update schedule event %d: %w", event.ID, mapError(err))
	}
	t, err := parseTime(created)
	if err != nil {
		return err
	}
	event.CreatedAt = t
	return nil
}

func (r *scheduleEventRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM schedule_events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *scheduleEventRepository) ListByTask(ctx context.Context, taskID int64) iter.Seq2[domain.ScheduleEvent, error] {
	query := `
	SELECT ` + eventColumns + `
	FROM schedule_events
	WHERE task_id = ?
	ORDER BY start_at, id
	`
	return func(yield func(domain.ScheduleEvent, error) bool) {
		rows, err := r.q.QueryContext(ctx, query, taskID)
		if err != nil {
			yield(domain.ScheduleEvent{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			ev, err := scanEvent(rows)
			if err != nil {
				yield(domain.ScheduleEvent{}, err)
				return
			}
			if !yield(*ev, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.ScheduleEvent{}, err)
		}
	}
}

func normalizeEvent(event *domain.ScheduleEvent) {
	event.StartAt = domain.Timestamp(event.StartAt)
	event.EndAt = domain.Timestamp(event.EndAt)
	event.CreatedAt = domain.Timestamp(event.CreatedAt)
}

func scanEvent(row scanner) (*domain.ScheduleEvent, error) {
	var (
		ev                  domain.ScheduleEvent
		start, end, created string
		source              sql.NullString
	)
	if err := row.Scan(&ev.ID, &ev.TaskID, &start, &end, &source, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}

	var err error
	if ev.StartAt, err = parseTime(start); err != nil {
		return nil, err
	}
	if ev.EndAt, err = parseTime(end); err != nil {
		return nil, err
	}
	if ev.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	ev.Source = stringPtr(source)
	return &ev, nil
}
