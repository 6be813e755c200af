package task

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/usecase"
)

// CreateTaskInput carries the caller's fields for a new task. Status is
// accepted for wire compatibility and ignored: new tasks start as TODO.
type CreateTaskInput struct {
	Title            string
	Description      *string
	EstimatedMinutes *int
	DueAt            *time.Time
	Priority         int
	Status           domain.TaskStatus
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

func (uc *UseCase) Create(ctx context.Context, in CreateTaskInput) (*domain.Task, error) {
	task := domain.NewTask(in.Title, uc.clock())
	task.Description = in.Description
	task.EstimatedMinutes = in.EstimatedMinutes
	if in.DueAt != nil {
		due := domain.Timestamp(*in.DueAt)
		task.DueAt = &due
	}
	task.Priority = in.Priority

	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := uc.store.Tasks().Create(ctx, task); err != nil {
		return nil, err
	}
	uc.logger.Debug("task created", zap.Int64("task_id", task.ID))
	return task, nil
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return uc.store.Tasks().GetByID(ctx, id)
}

// List returns tasks ordered by id. An empty status matches every task.
func (uc *UseCase) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Limit = repository.ClampLimit(filter.Limit)
	return uc.store.Tasks().List(ctx, filter)
}

// UpdateFields applies patch. A rejected patch leaves the row, including
// updatedAt, untouched.
func (uc *UseCase) UpdateFields(ctx context.Context, id int64, patch domain.TaskPatch) (*domain.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	task, err := uc.store.Tasks().Update(ctx, id, patch.Normalize(), uc.clock())
	if err != nil {
		return nil, err
	}
	uc.logger.Debug("task updated", zap.Int64("task_id", id))
	return task, nil
}

// UpdateStatus moves the task to raw. Any status is reachable from any other.
func (uc *UseCase) UpdateStatus(ctx context.Context, id int64, raw string) (*domain.Task, error) {
	status, err := domain.ParseTaskStatus(raw)
	if err != nil {
		return nil, err
	}
	return uc.UpdateFields(ctx, id, domain.TaskPatch{Status: &status})
}

// Delete removes the task together with its schedule events and returns
// how many events were removed.
func (uc *UseCase) Delete(ctx context.Context, id int64) (int, error) {
	removed, err := uc.store.Tasks().Delete(ctx, id)
	if err != nil {
		return 0, err
	}
	uc.logger.Info("task deleted", zap.Int64("task_id", id), zap.Int("events_removed", removed))
	return removed, nil
}
