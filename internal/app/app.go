// Package app assembles the service layer on top of an opened store.
package app

import (
	"go.uber.org/zap"

	"github.com/fastygo/planner/internal/config"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/usecase"
	"github.com/fastygo/planner/usecase/schedule"
	"github.com/fastygo/planner/usecase/task"
	"github.com/fastygo/planner/usecase/user"
)

// App exposes the operations external collaborators call into.
type App struct {
	Users    *user.UseCase
	Tasks    *task.UseCase
	Schedule *schedule.UseCase
}

// New wires the use cases over store with a shared clock.
func New(store repository.Store, cfg config.SecurityConfig, clock usecase.Clock, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		Users:    user.New(store.Users(), cfg.BcryptCost, clock, logger.Named("user")),
		Tasks:    task.New(store, clock, logger.Named("task")),
		Schedule: schedule.New(store, clock, logger.Named("schedule")),
	}
}
