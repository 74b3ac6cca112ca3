package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mleng/courtmate/internal/identity"
	"github.com/mleng/courtmate/internal/models"
	"github.com/mleng/courtmate/internal/storage/sqlite"
)

// testEnv wires both services over a real sqlite store with a pinned clock.
// Tests advance time by assigning env.now.
type testEnv struct {
	store      *sqlite.Store
	activities *ActivityService
	expenses   *ExpenseService
	now        time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "courtmate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	env := &testEnv{
		store: store,
		now:   time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
	}
	clock := ClockFunc(func() time.Time { return env.now })
	directory := identity.NewStoreDirectory(store)
	env.activities = NewActivityService(store, directory, clock)
	env.expenses = NewExpenseService(store, store, directory, clock)
	return env
}

func (e *testEnv) createUser(t *testing.T, nickname string, active bool) *models.User {
	t.Helper()

	user := &models.User{
		Nickname:     nickname,
		Phone:        "555-" + nickname,
		PasswordHash: "irrelevant",
		Active:       active,
		TotalSettled: decimal.Zero,
		CreatedAt:    e.now,
		UpdatedAt:    e.now,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) activityInput(organizerID string) CreateActivityInput {
	return CreateActivityInput{
		OrganizerID:  organizerID,
		Title:        "Friday night badminton",
		Venue:        "Sunrise Sports Hall",
		Address:      "12 Harbour Rd",
		StartTime:    e.now.Add(24 * time.Hour),
		EndTime:      e.now.Add(26 * time.Hour),
		MaxPlayers:   4,
		EstimatedFee: dec("120.00"),
	}
}

func (e *testEnv) createActivity(t *testing.T, organizerID string) *models.Activity {
	t.Helper()

	activity, err := e.activities.Create(context.Background(), e.activityInput(organizerID))
	require.NoError(t, err)
	return activity
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
