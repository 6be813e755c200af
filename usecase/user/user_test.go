package user

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/planner/domain"
	"github.com/fastygo/planner/repository/bolt"
)

func newUseCase(t *testing.T) *UseCase {
	t.Helper()
	store, err := bolt.Open(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return New(store.Users(), bcrypt.MinCost, nil, nil)
}

func TestRegisterAndVerify(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	user, err := uc.Register(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 || user.PasswordHash == "correct horse" {
		t.Fatalf("unexpected user %+v", user)
	}

	got, err := uc.VerifyPassword(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("verified user %d, want %d", got.ID, user.ID)
	}

	if _, err := uc.VerifyPassword(ctx, "ada@example.com", "wrong password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := uc.VerifyPassword(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterDuplicateIsConflict(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	first, err := uc.Register(ctx, "dup@example.com", "password1")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err = uc.Register(ctx, "dup@example.com", "password2")
	if !errors.Is(err, domain.ErrDuplicateEmail) || !domain.IsDomainError(err, domain.ErrCodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// The first account still authenticates with its own password.
	if _, err := uc.VerifyPassword(ctx, "dup@example.com", "password1"); err != nil {
		t.Fatalf("first user affected: %v", err)
	}
	got, err := uc.Get(ctx, first.ID)
	if err != nil || got.Email != "dup@example.com" {
		t.Fatalf("get: %+v, %v", got, err)
	}
}

func TestRegisterValidation(t *testing.T) {
	uc := newUseCase(t)
	ctx := context.Background()

	if _, err := uc.Register(ctx, "short@example.com", "1234567"); !errors.Is(err, domain.ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
	if _, err := uc.Register(ctx, "no-at-sign", "long enough"); !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := uc.GetByEmail(ctx, "short@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("rejected registration was stored: %v", err)
	}
}
