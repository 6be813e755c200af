package bolt

import (
	"context"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/planner/domain"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	return r.s.update(ctx, func(tx *bolt.Tx) error {
		emails := tx.Bucket(bucketUserEmails)
		if emails.Get([]byte(user.Email)) != nil {
			return domain.ErrDuplicateEmail
		}

		users := tx.Bucket(bucketUsers)
		seq, err := users.NextSequence()
		if err != nil {
			return err
		}

		row := *user
		row.ID = int64(seq)
		row.CreatedAt = domain.Timestamp(row.CreatedAt)
		if err := put(users, itob(row.ID), newStoredUser(row)); err != nil {
			return err
		}
		if err := emails.Put([]byte(row.Email), itob(row.ID)); err != nil {
			return err
		}
		*user = row
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user *domain.User
	err := r.s.view(ctx, func(tx *bolt.Tx) error {
		var err error
		user, err = loadUser(tx, id)
		return err
	})
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := r.s.view(ctx, func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketUserEmails).Get([]byte(email))
		if raw == nil {
			return domain.ErrUserNotFound
		}
		var err error
		user, err = loadUser(tx, btoi(raw))
		return err
	})
	return user, err
}

func loadUser(tx *bolt.Tx, id int64) (*domain.User, error) {
	var stored storedUser
	ok, err := get(tx.Bucket(bucketUsers), itob(id), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return stored.user(), nil
}
