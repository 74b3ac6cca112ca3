// Package auth provides password verification and JWT session tokens for the
// HTTP surface. The core services never see credentials; they only receive
// the resolved user id.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mleng/courtmate/internal/apperr"
	"github.com/mleng/courtmate/internal/models"
	"github.com/mleng/courtmate/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// PasswordAuthenticator implements phone + password authentication using bcrypt.
type PasswordAuthenticator struct {
	users storage.UserStore
}

// NewPasswordAuthenticator creates a password authenticator over the user store.
func NewPasswordAuthenticator(users storage.UserStore) *PasswordAuthenticator {
	return &PasswordAuthenticator{users: users}
}

// ValidatePassword checks minimum password requirements.
func (a *PasswordAuthenticator) ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword hashes a plaintext password after validating it.
func (a *PasswordAuthenticator) HashPassword(password string) (string, error) {
	if err := a.ValidatePassword(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Authenticate verifies phone and password, returning the user if valid.
// Disabled accounts authenticate like unknown ones so callers cannot probe
// account state.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, phone, password string) (*models.User, error) {
	user, err := a.users.GetUserByPhone(ctx, phone)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
