package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mleng/courtmate/internal/apperr"
	"github.com/mleng/courtmate/internal/models"
)

const userColumns = `id, nickname, phone, password_hash, active, total_settled, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	u := &models.User{}
	var createdAt, updatedAt int64
	var total string

	err := row.Scan(&u.ID, &u.Nickname, &u.Phone, &u.PasswordHash, &u.Active,
		&total, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	u.CreatedAt = time.Unix(createdAt, 0)
	u.UpdatedAt = time.Unix(updatedAt, 0)

	u.TotalSettled, err = scanDecimal(total)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a new user. A duplicate phone number is a Conflict.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, nickname, phone, password_hash, active, total_settled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Nickname, user.Phone, user.PasswordHash, user.Active,
		user.TotalSettled.String(), user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return apperr.Conflictf("phone %s is already registered", user.Phone)
		}
		return unavailable("failed to insert user", err)
	}
	return nil
}

// GetUser retrieves a user by id.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("user %s not found", id)
	}
	if err != nil {
		return nil, unavailable("failed to get user", err)
	}
	return user, nil
}

// GetUserByPhone retrieves a user by phone number.
func (s *Store) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone = ?`, phone)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("no user with phone %s", phone)
	}
	if err != nil {
		return nil, unavailable("failed to get user by phone", err)
	}
	return user, nil
}
