package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fastygo/planner/domain"
)

type userRepository struct {
	q querier
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	const query = `INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, ?)`

	user.CreatedAt = domain.Timestamp(user.CreatedAt)
	res, err := r.q.ExecContext(ctx, query, user.Email, user.PasswordHash, formatTime(user.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", mapError(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const query = `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`
	return scanUser(r.q.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`
	return scanUser(r.q.QueryRowContext(ctx, query, email))
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		user    domain.User
		created string
	)
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = t
	return &user, nil
}
