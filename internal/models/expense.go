package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies what a cost was incurred for.
type ExpenseCategory string

const (
	CategoryVenue     ExpenseCategory = "venue"
	CategoryFood      ExpenseCategory = "food"
	CategoryTransport ExpenseCategory = "transport"
	CategoryOther     ExpenseCategory = "other"
)

// ParseExpenseCategory maps a raw string to a category, defaulting to other.
func ParseExpenseCategory(s string) ExpenseCategory {
	switch ExpenseCategory(s) {
	case CategoryVenue, CategoryFood, CategoryTransport, CategoryOther:
		return ExpenseCategory(s)
	}
	return CategoryOther
}

// SplitMethod selects how an expense is divided among participants.
type SplitMethod string

const (
	// SplitEqual divides the total into near-equal shares; leftover cents go
	// to the earliest participants in input order.
	SplitEqual SplitMethod = "equal"
	// SplitCustom uses caller-supplied per-participant amounts that must sum
	// to the total exactly.
	SplitCustom SplitMethod = "custom"
)

// ParseSplitMethod maps a raw string to a split method, defaulting to equal.
func ParseSplitMethod(s string) SplitMethod {
	switch SplitMethod(s) {
	case SplitEqual, SplitCustom:
		return SplitMethod(s)
	}
	return SplitEqual
}

// Expense is one cost incurred for an activity, paid up front by one user.
type Expense struct {
	ID          string
	ActivityID  string
	PayerID     string
	Category    ExpenseCategory
	Title       string
	Description string
	TotalAmount decimal.Decimal
	SplitMethod SplitMethod
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// ShareStatus is the settlement state of one participant's share.
// Pending → Settled is the only transition and it is one-way.
type ShareStatus string

const (
	SharePending ShareStatus = "pending"
	ShareSettled ShareStatus = "settled"
)

// ExpenseShare is one participant's portion of an expense. For a given
// expense batch the share amounts sum to the expense total exactly.
type ExpenseShare struct {
	ID        string
	ExpenseID string
	UserID    string
	Amount    decimal.Decimal
	Status    ShareStatus
	SettledAt *time.Time
	CreatedAt time.Time
}

// minAmount is the smallest representable charge: one cent.
var minAmount = decimal.New(1, -2)

// ValidAmount reports whether d is a well-formed monetary amount:
// at least 0.01 with no more than two fractional digits.
func ValidAmount(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(minAmount) && d.Equal(d.Truncate(2))
}
