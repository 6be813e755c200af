package domain

import (
	"strings"
	"time"
)

// User represents an account identity. Users are immutable once created.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Validate checks the fields every stored user must carry.
func (u *User) Validate() error {
	if u == nil {
		return ErrInvalidPayload
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if u.PasswordHash == "" {
		return ErrInvalidPassword
	}
	return nil
}
