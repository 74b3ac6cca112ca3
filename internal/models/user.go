package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a registered member. Active users can organize and join
// activities; deactivated accounts keep their history but are rejected by
// the identity directory.
type User struct {
	ID           string
	Nickname     string
	Phone        string
	PasswordHash string
	Active       bool

	// TotalSettled accumulates every share amount this user has settled.
	// Bumped exactly once per share when it transitions to Settled.
	TotalSettled decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}
