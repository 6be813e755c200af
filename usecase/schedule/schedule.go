package schedule

import (
	"context"
	"iter"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/usecase"
)

type AddEventInput struct {
	TaskID  int64
	StartAt time.Time
	EndAt   time.Time
	Source  *string
}

type UseCase struct {
	store  repository.Store
	clock  usecase.Clock
	logger *zap.Logger
}

func New(store repository.Store, clock usecase.Clock, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		store:  store,
		clock:  clock.OrSystem(),
		logger: logger,
	}
}

// Add attaches a time block to an existing task.
func (uc *UseCase) Add(ctx context.Context, in AddEventInput) (*domain.ScheduleEvent, error) {
	event := &domain.ScheduleEvent{
		TaskID:    in.TaskID,
		StartAt:   domain.Timestamp(in.StartAt),
		EndAt:     domain.Timestamp(in.EndAt),
		Source:    in.Source,
		CreatedAt: uc.clock(),
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if err := uc.store.Events().Create(ctx, event); err != nil {
		return nil, err
	}
	uc.logger.Debug("schedule event added", zap.Int64("event_id", event.ID), zap.Int64("task_id", event.TaskID))
	return event, nil
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*domain.ScheduleEvent, error) {
	return uc.store.Events().GetByID(ctx, id)
}

// Update merges patch into the stored event and rewrites it in one
// transaction, so the interval check sees the merged bounds.
func (uc *UseCase) Update(ctx context.Context, id int64, patch domain.EventPatch) (*domain.ScheduleEvent, error) {
	var updated *domain.ScheduleEvent
	err := uc.store.WithinTx(ctx, func(tx repository.Store) error {
		event, err := tx.Events().GetByID(ctx, id)
		if err != nil {
			return err
		}
		event.Apply(patch)
		if err := event.Validate(); err != nil {
			return err
		}
		if err := tx.Events().Update(ctx, event); err != nil {
			return err
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (uc *UseCase) Delete(ctx context.Context, id int64) error {
	return uc.store.Events().Delete(ctx, id)
}

// ForTask lists the task's events by start time. A missing task yields an
// empty sequence.
func (uc *UseCase) ForTask(ctx context.Context, taskID int64) iter.Seq2[domain.ScheduleEvent, error] {
	return uc.store.Events().ListByTask(ctx, taskID)
}
