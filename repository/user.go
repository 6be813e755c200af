package repository

import (
	"context"

	"github.com/fastygo/planner/domain"
)

// UserRepository persists account identities. Email uniqueness is enforced by the store.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}
