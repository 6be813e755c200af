package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"

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
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id
	`

	normalizeEvent(event)
	if err := r.q.QueryRow(ctx, query,
		event.TaskID,
		event.StartAt,
		event.EndAt,
		event.Source,
		event.CreatedAt,
	).Scan(&event.ID); err != nil {
		return fmt.Errorf("insert schedule event: %w", mapError(err))
	}
	return nil
}

func (r *scheduleEventRepository) GetByID(ctx context.Context, id int64) (*domain.ScheduleEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM schedule_events WHERE id = $1`
	return scanEvent(r.q.QueryRow(ctx, query, id))
}

func (r *scheduleEventRepository) Update(ctx context.Context, event *domain.ScheduleEvent) error {
	if event == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE schedule_events
	SET start_at = $2,
		end_at = $3,
		source = $4
	WHERE id = $1
	RETURNING task_id, created_at
	`

	normalizeEvent(event)
	if err := r.q.QueryRow(ctx, query, event.ID, event.StartAt, event.EndAt, event.Source).
		Scan(&event.TaskID, &event.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("update schedule event %d: %w", event.ID, mapError(err))
	}
	event.CreatedAt = domain.Timestamp(event.CreatedAt)
	return nil
}

func (r *scheduleEventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM schedule_events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

func (r *scheduleEventRepository) ListByTask(ctx context.Context, taskID int64) iter.Seq2[domain.ScheduleEvent, error] {
	query := `
	SELECT ` + eventColumns + `
	FROM schedule_events
	WHERE task_id = $1
	ORDER BY start_at, id
	`
	return func(yield func(domain.ScheduleEvent, error) bool) {
		rows, err := r.q.Query(ctx, query, taskID)
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
	var ev domain.ScheduleEvent
	if err := row.Scan(&ev.ID, &ev.TaskID, &ev.StartAt, &ev.EndAt, &ev.Source, &ev.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	normalizeEvent(&ev)
	return &ev, nil
}
