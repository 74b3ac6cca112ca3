package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mleng/courtmate/internal/apperr"
	"github.com/mleng/courtmate/internal/models"
)

var testTime = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedUser(t *testing.T, store *Store, nickname string) *models.User {
	t.Helper()

	user := &models.User{
		Nickname:     nickname,
		Phone:        "555-" + nickname,
		PasswordHash: "irrelevant",
		Active:       true,
		TotalSettled: decimal.Zero,
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func seedActivity(t *testing.T, store *Store, organizerID string, maxPlayers int) *models.Activity {
	t.Helper()

	activity := &models.Activity{
		Title:          "Friday night badminton",
		OrganizerID:    organizerID,
		Venue:          "Sunrise Sports Hall",
		StartTime:      testTime.Add(time.Hour),
		EndTime:        testTime.Add(3 * time.Hour),
		MaxPlayers:     maxPlayers,
		CurrentPlayers: 1,
		EstimatedFee:   decimal.RequireFromString("80.50"),
		Status:         models.ActivityPending,
		CreatedAt:      testTime,
		UpdatedAt:      testTime,
	}
	organizer := &models.Participation{
		UserID:      organizerID,
		Status:      models.ParticipationConfirmed,
		JoinedAt:    testTime,
		IsOrganizer: true,
	}
	require.NoError(t, store.CreateActivityWithOrganizer(context.Background(), activity, organizer))
	return activity
}

func seedExpense(t *testing.T, store *Store, activityID, payerID string, total string) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		ActivityID:  activityID,
		PayerID:     payerID,
		Category:    models.CategoryVenue,
		Title:       "Court rental",
		TotalAmount: decimal.RequireFromString(total),
		SplitMethod: models.SplitEqual,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	}
	require.NoError(t, store.CreateExpense(context.Background(), expense))
	return expense
}

func TestActivityRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	organizer := seedUser(t, store, "alice")
	activity := seedActivity(t, store, organizer.ID, 4)

	got, err := store.GetActivity(ctx, activity.ID)
	require.NoError(t, err)

	assert.Equal(t, activity.Title, got.Title)
	assert.Equal(t, activity.OrganizerID, got.OrganizerID)
	assert.Equal(t, activity.MaxPlayers, got.MaxPlayers)
	assert.Equal(t, activity.CurrentPlayers, got.CurrentPlayers)
	assert.True(t, got.EstimatedFee.Equal(decimal.RequireFromString("80.50")),
		"fee survives the round trip exactly")
	assert.Equal(t, activity.StartTime.Unix(), got.StartTime.Unix())
	assert.Equal(t, activity.EndTime.Unix(), got.EndTime.Unix())
	assert.Nil(t, got.DeletedAt)
}

func TestAddParticipantGuards(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	organizer := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	carol := seedUser(t, store, "carol")

	join := func(activityID, userID string) error {
		return store.AddParticipant(ctx, activityID, &models.Participation{
			UserID:   userID,
			Status:   models.ParticipationConfirmed,
			JoinedAt: testTime,
		})
	}

	t.Run("capacity guard", func(t *testing.T) {
		activity := seedActivity(t, store, organizer.ID, 2)
		require.NoError(t, join(activity.ID, bob.ID))

		err := join(activity.ID, carol.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))

		got, err := store.GetActivity(ctx, activity.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.CurrentPlayers, "the counter never overshoots the cap")
	})

	t.Run("duplicate join", func(t *testing.T) {
		activity := seedActivity(t, store, organizer.ID, 4)
		require.NoError(t, join(activity.ID, bob.ID))

		err := join(activity.ID, bob.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("non-pending activity", func(t *testing.T) {
		activity := seedActivity(t, store, organizer.ID, 4)
		require.NoError(t, store.TransitionActivity(ctx, activity.ID,
			models.ActivityPending, models.ActivityOngoing, testTime))

		err := join(activity.ID, bob.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("missing activity", func(t *testing.T) {
		err := join("missing", bob.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestTransitionActivityGuard(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	organizer := seedUser(t, store, "alice")
	activity := seedActivity(t, store, organizer.ID, 4)

	require.NoError(t, store.TransitionActivity(ctx, activity.ID,
		models.ActivityPending, models.ActivityOngoing, testTime))

	// A second transition assuming the old status loses to the guard.
	err := store.TransitionActivity(ctx, activity.ID,
		models.ActivityPending, models.ActivityCancelled, testTime)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	err = store.TransitionActivity(ctx, "missing",
		models.ActivityPending, models.ActivityOngoing, testTime)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRemoveParticipant(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	organizer := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	activity := seedActivity(t, store, organizer.ID, 4)

	require.NoError(t, store.AddParticipant(ctx, activity.ID, &models.Participation{
		UserID: bob.ID, Status: models.ParticipationConfirmed, JoinedAt: testTime,
	}))

	require.NoError(t, store.RemoveParticipant(ctx, activity.ID, bob.ID, testTime))
	got, err := store.GetActivity(ctx, activity.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentPlayers)

	t.Run("second leave conflicts", func(t *testing.T) {
		err := store.RemoveParticipant(ctx, activity.ID, bob.ID, testTime)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("organizer row is protected", func(t *testing.T) {
		err := store.RemoveParticipant(ctx, activity.ID, organizer.ID, testTime)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})
}

func TestSettleShareGuard(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	organizer := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	activity := seedActivity(t, store, organizer.ID, 4)
	expense := seedExpense(t, store, activity.ID, organizer.ID, "10.00")

	shares := []*models.ExpenseShare{
		{ExpenseID: expense.ID, UserID: organizer.ID, Amount: decimal.RequireFromString("5.00"),
			Status: models.SharePending, CreatedAt: testTime},
		{ExpenseID: expense.ID, UserID: bob.ID, Amount: decimal.RequireFromString("5.00"),
			Status: models.SharePending, CreatedAt: testTime},
	}
	require.NoError(t, store.CreateShares(ctx, shares))

	t.Run("plain settle leaves the total alone", func(t *testing.T) {
		require.NoError(t, store.SettleShare(ctx, shares[0].ID, testTime))

		got, err := store.GetShare(ctx, shares[0].ID)
		require.NoError(t, err)
		assert.Equal(t, models.ShareSettled, got.Status)
		require.NotNil(t, got.SettledAt)

		user, err := store.GetUser(ctx, organizer.ID)
		require.NoError(t, err)
		assert.True(t, user.TotalSettled.Equal(decimal.Zero))
	})

	t.Run("settle with credit bumps the total", func(t *testing.T) {
		require.NoError(t, store.SettleShareWithCredit(ctx, shares[1].ID, bob.ID, testTime))

		got, err := store.GetShare(ctx, shares[1].ID)
		require.NoError(t, err)
		assert.Equal(t, models.ShareSettled, got.Status)

		user, err := store.GetUser(ctx, bob.ID)
		require.NoError(t, err)
		assert.True(t, user.TotalSettled.Equal(decimal.RequireFromString("5.00")))
	})

	t.Run("second settle loses to the guard", func(t *testing.T) {
		err := store.SettleShareWithCredit(ctx, shares[1].ID, bob.ID, testTime.Add(time.Minute))
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))

		user, err := store.GetUser(ctx, bob.ID)
		require.NoError(t, err)
		assert.True(t, user.TotalSettled.Equal(decimal.RequireFromString("5.00")),
			"the running total moves exactly once")
	})

	t.Run("missing share", func(t *testing.T) {
		err := store.SettleShare(ctx, "missing", testTime)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	})
}

func TestDeleteExpenseWithShares(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	organizer := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	activity := seedActivity(t, store, organizer.ID, 4)
	expense := seedExpense(t, store, activity.ID, organizer.ID, "10.00")

	shares := []*models.ExpenseShare{
		{ExpenseID: expense.ID, UserID: organizer.ID, Amount: decimal.RequireFromString("5.00"),
			Status: models.SharePending, CreatedAt: testTime},
		{ExpenseID: expense.ID, UserID: bob.ID, Amount: decimal.RequireFromString("5.00"),
			Status: models.SharePending, CreatedAt: testTime},
	}
	require.NoError(t, store.CreateShares(ctx, shares))

	require.NoError(t, store.DeleteExpenseWithShares(ctx, expense.ID, testTime))

	_, err := store.GetExpense(ctx, expense.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	for _, share := range shares {
		_, err := store.GetShare(ctx, share.ID)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	}

	err = store.DeleteExpenseWithShares(ctx, expense.ID, testTime)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestCreateUserDuplicatePhone(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	seedUser(t, store, "alice")

	dup := &models.User{
		Nickname:     "alice again",
		Phone:        "555-alice",
		PasswordHash: "irrelevant",
		Active:       true,
		TotalSettled: decimal.Zero,
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}
	err := store.CreateUser(ctx, dup)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}
