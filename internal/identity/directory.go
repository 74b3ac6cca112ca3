// Package identity resolves user identifiers to existence and account state.
//
// The services depend only on the Directory interface; the store-backed
// implementation here is the default, but the contract leaves room for an
// external user service later.
package identity

import (
	"context"
	"errors"

	"github.com/mleng/courtmate/internal/apperr"
	"github.com/mleng/courtmate/internal/storage"
)

// Directory answers whether a user exists and whether the account is active.
type Directory interface {
	Exists(ctx context.Context, userID string) (bool, error)
	IsActive(ctx context.Context, userID string) (bool, error)
}

// StoreDirectory implements Directory over the user store.
type StoreDirectory struct {
	users storage.UserStore
}

var _ Directory = (*StoreDirectory)(nil)

// NewStoreDirectory creates a Directory backed by the given user store.
func NewStoreDirectory(users storage.UserStore) *StoreDirectory {
	return &StoreDirectory{users: users}
}

// Exists reports whether the user id resolves to an account.
// Store unavailability propagates; it is never reported as absence.
func (d *StoreDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := d.users.GetUser(ctx, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperr.NotFoundf("")) {
		return false, nil
	}
	return false, err
}

// IsActive reports whether the account exists and is active.
func (d *StoreDirectory) IsActive(ctx context.Context, userID string) (bool, error) {
	user, err := d.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.NotFoundf("")) {
			return false, nil
		}
		return false, err
	}
	return user.Active, nil
}
