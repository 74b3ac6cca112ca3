// Package storage defines the durable persistence contract for the core.
//
// The Store is the single write path for all four record collections
// (activities, participations, expenses, shares) plus user accounts. It is
// responsible for per-entity serialization: read-modify-write operations on a
// single activity or share (capacity changes, status transitions, settlement)
// are atomic, and when two callers race, exactly one wins while the other
// gets a Conflict. Multi-record writes named by a single method (activity
// plus organizer participation, a batch of shares, delete with cascade) are
// applied as one unit or not at all.
//
// Implementations report failures with apperr kinds: NotFound for missing
// rows, Conflict for lost races and violated guards, Unavailable for backend
// failures.
package storage

import (
	"context"
	"time"

	"github.com/mleng/courtmate/internal/models"
)

// Store is the durable persistence interface used by the services.
type Store interface {
	ActivityStore
	ExpenseStore
	UserStore

	// Close releases any resources held by the store.
	Close() error
}

// ActivityStore persists activities and their participation rosters.
type ActivityStore interface {
	// CreateActivityWithOrganizer persists a new activity together with the
	// organizer's confirmed participation as one atomic unit.
	CreateActivityWithOrganizer(ctx context.Context, activity *models.Activity, organizer *models.Participation) error

	// GetActivity retrieves a non-deleted activity by id.
	GetActivity(ctx context.Context, id string) (*models.Activity, error)

	// TransitionActivity moves an activity from one status to another and
	// refreshes its update timestamp. The transition is guarded: if the
	// activity is no longer in from, Conflict is returned.
	TransitionActivity(ctx context.Context, id string, from, to models.ActivityStatus, at time.Time) error

	// AddParticipant increments the player counter and creates (or
	// reactivates) a confirmed participation, atomically. Conflict is
	// returned when the activity is full, no longer pending, or the user
	// already holds a confirmed participation.
	AddParticipant(ctx context.Context, activityID string, p *models.Participation) error

	// RemoveParticipant decrements the player counter (never below zero) and
	// cancels the user's participation, atomically. Conflict is returned
	// when the user has no confirmed participation.
	RemoveParticipant(ctx context.Context, activityID, userID string, at time.Time) error

	// GetParticipation retrieves one user's participation in an activity.
	GetParticipation(ctx context.Context, activityID, userID string) (*models.Participation, error)

	// ListParticipants returns all participations for an activity in join order.
	ListParticipants(ctx context.Context, activityID string) ([]*models.Participation, error)

	// CountConfirmedParticipants counts confirmed participations, organizer included.
	CountConfirmedParticipants(ctx context.Context, activityID string) (int, error)

	ListActivitiesByOrganizer(ctx context.Context, organizerID string) ([]*models.Activity, error)
	ListActivitiesByStatus(ctx context.Context, status models.ActivityStatus) ([]*models.Activity, error)

	// ListActivitiesByTimeRange returns activities whose start time falls
	// within [lo, hi], bounds inclusive.
	ListActivitiesByTimeRange(ctx context.Context, lo, hi time.Time) ([]*models.Activity, error)

	// ListAvailableActivities returns pending activities that still have room.
	ListAvailableActivities(ctx context.Context) ([]*models.Activity, error)
}

// ExpenseStore persists expenses and their shares.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves a non-deleted expense by id.
	GetExpense(ctx context.Context, id string) (*models.Expense, error)

	// DeleteExpenseWithShares soft-deletes the expense and removes all of its
	// shares as one atomic unit.
	DeleteExpenseWithShares(ctx context.Context, expenseID string, at time.Time) error

	ListExpensesByActivity(ctx context.Context, activityID string) ([]*models.Expense, error)

	// CreateShares persists a batch of shares atomically: either the whole
	// set is stored or none of it.
	CreateShares(ctx context.Context, shares []*models.ExpenseShare) error

	GetShare(ctx context.Context, shareID string) (*models.ExpenseShare, error)

	// SettleShare transitions a share from pending to settled. Conflict is
	// returned when the share is already settled.
	SettleShare(ctx context.Context, shareID string, at time.Time) error

	// SettleShareWithCredit settles the share and adds its amount to the
	// owner's running total, both in one atomic unit. The guard on the share
	// status means the total moves at most once per share.
	SettleShareWithCredit(ctx context.Context, shareID, ownerID string, at time.Time) error

	ListSharesByExpense(ctx context.Context, expenseID string) ([]*models.ExpenseShare, error)
	ListSharesByUser(ctx context.Context, userID string) ([]*models.ExpenseShare, error)
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
}
