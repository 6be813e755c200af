package user

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository"
	"github.com/fastygo/planner/usecase"
)

// MinPasswordLength is counted in bytes. bcrypt ignores input past 72 bytes.
const MinPasswordLength = 8

const maxPasswordLength = 72

type UseCase struct {
	users  repository.UserRepository
	cost   int
	clock  usecase.Clock
	logger *zap.Logger
}

func New(users repository.UserRepository, cost int, clock usecase.Clock, logger *zap.Logger) *UseCase {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		cost:   cost,
		clock:  clock.OrSystem(),
		logger: logger,
	}
}

// Register creates an account. A taken email is reported as CONFLICT even
// when two registrations race.
func (uc *UseCase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if len(password) < MinPasswordLength || len(password) > maxPasswordLength {
		return nil, domain.ErrInvalidPassword
	}
	user := &domain.User{Email: email, PasswordHash: "pending", CreatedAt: uc.clock()}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.Int64("user_id", user.ID))
	return user, nil
}

func (uc *UseCase) Get(ctx context.Context, id int64) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

func (uc *UseCase) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return uc.users.GetByEmail(ctx, email)
}

// VerifyPassword returns the user when password matches. An unknown email
// and a wrong password produce the same error.
func (uc *UseCase) VerifyPassword(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}
