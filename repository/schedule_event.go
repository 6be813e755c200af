package repository

import (
	"context"
	"iter"

	"github.com/fastygo/planner/domain"
)

type ScheduleEventRepository interface {
	// Create rejects inverted intervals and unknown tasks at write time.
	Create(ctx context.Context, event *domain.ScheduleEvent) error
	GetByID(ctx context.Context, id int64) (*domain.ScheduleEvent, error)
	// Update replaces start, end and source of an existing event.
	Update(ctx context.Context, event *domain.ScheduleEvent) error
	Delete(ctx context.Context, id int64) error
	// ListByTask yields the task's events ordered by start time. The query
	// runs each time the sequence is ranged over; nothing is cached.
	ListByTask(ctx context.Context, taskID int64) iter.Seq2[domain.ScheduleEvent, error]
}

// Collect drains seq into a slice, stopping at the first error.
func Collect(seq iter.Seq2[domain.ScheduleEvent, error]) ([]domain.ScheduleEvent, error) {
	var out []domain.ScheduleEvent
	for ev, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}
