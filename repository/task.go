package repository

import (
	"context"
	"time"

	"github.com/fastygo/planner/domain"
)

type TaskFilter struct {
	Status domain.TaskStatus
	Limit  int
	Offset int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	// Create assigns the id. CreatedAt and UpdatedAt are taken from the task as given.
	Create(ctx context.Context, task *domain.Task) error
	// Update applies patch atomically and stamps updatedAt with the supplied time.
	Update(ctx context.Context, id int64, patch domain.TaskPatch, updatedAt time.Time) (*domain.Task, error)
	// Delete removes the task and every schedule event it owns in one
	// transaction and reports how many events went with it.
	Delete(ctx context.Context, id int64) (int, error)
}

// ClampLimit bounds list page sizes.
func ClampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
