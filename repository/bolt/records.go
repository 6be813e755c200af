package bolt

import (
	"time"

	"github.com/fastygo/planner/domain"
)

// storedUser is the on-disk shape of a user; domain.User hides the hash from JSON.
type storedUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func newStoredUser(u domain.User) storedUser {
	return storedUser{ID: u.ID, Email: u.Email, PasswordHash: u.PasswordHash, CreatedAt: u.CreatedAt}
}

func (s storedUser) user() *domain.User {
	return &domain.User{ID: s.ID, Email: s.Email, PasswordHash: s.PasswordHash, CreatedAt: s.CreatedAt.UTC()}
}
