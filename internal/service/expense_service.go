package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mleng/courtmate/internal/apperr"
	"github.com/mleng/courtmate/internal/calculator"
	"github.com/mleng/courtmate/internal/identity"
	"github.com/mleng/courtmate/internal/models"
	"github.com/mleng/courtmate/internal/storage"
)

// ActivityResolver is the only coupling the expense engine has to the
// activity lifecycle: checking that an expense references a real activity.
type ActivityResolver interface {
	GetActivity(ctx context.Context, id string) (*models.Activity, error)
}

// ExpenseService owns expenses and their shares: it computes per-participant
// divisions and tracks each share to settlement.
type ExpenseService struct {
	store      storage.ExpenseStore
	activities ActivityResolver
	directory  identity.Directory
	clock      Clock
}

// NewExpenseService creates an ExpenseService.
func NewExpenseService(store storage.ExpenseStore, activities ActivityResolver, directory identity.Directory, clock Clock) *ExpenseService {
	return &ExpenseService{store: store, activities: activities, directory: directory, clock: clock}
}

// CreateExpenseInput carries a payer's request to record a cost.
type CreateExpenseInput struct {
	ActivityID  string
	PayerID     string
	Category    string
	Title       string
	Description string
	TotalAmount decimal.Decimal
	SplitMethod string
}

// CreateExpense records a cost against an activity. The payer need not be
// the organizer, and unrecognized categories and split methods fall back to
// their defaults (other, equal).
func (s *ExpenseService) CreateExpense(ctx context.Context, in CreateExpenseInput) (*models.Expense, error) {
	if _, err := s.activities.GetActivity(ctx, in.ActivityID); err != nil {
		return nil, err
	}
	if err := requireActiveUser(ctx, s.directory, in.PayerID, "payer"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validationf("expense title must not be blank")
	}
	if !models.ValidAmount(in.TotalAmount) {
		return nil, apperr.Validationf("total amount %s must be at least 0.01 with at most two decimal places", in.TotalAmount)
	}

	now := s.clock.Now()
	expense := &models.Expense{
		ActivityID:  in.ActivityID,
		PayerID:     in.PayerID,
		Category:    models.ParseExpenseCategory(in.Category),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		TotalAmount: in.TotalAmount,
		SplitMethod: models.ParseSplitMethod(in.SplitMethod),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, err
	}

	slog.Info("expense created",
		"expense_id", expense.ID,
		"activity_id", expense.ActivityID,
		"payer_id", expense.PayerID,
		"total", expense.TotalAmount,
		"split_method", expense.SplitMethod,
	)
	return expense, nil
}

// CreateShares computes and persists one pending share per participant, as
// one atomic batch. Participants are processed in the given order; for equal
// splits the leftover cents go to the earliest entries.
//
// Participants are not required to hold a participation in the expense's
// activity; costs can be shared with people outside the roster. Only user
// existence is checked.
//
// Calling CreateShares twice for the same expense creates a second share set;
// callers who want to re-split must delete the expense (or its shares) first.
func (s *ExpenseService) CreateShares(ctx context.Context, expenseID string, participantIDs []string, customAmounts map[string]decimal.Decimal) ([]*models.ExpenseShare, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if len(participantIDs) == 0 {
		return nil, apperr.Validationf("participant list must not be empty")
	}

	seen := make(map[string]bool, len(participantIDs))
	for _, id := range participantIDs {
		if seen[id] {
			return nil, apperr.Validationf("participant %s listed more than once", id)
		}
		seen[id] = true

		exists, err := s.directory.Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.NotFoundf("participant %s not found", id)
		}
	}

	var amounts []decimal.Decimal
	switch expense.SplitMethod {
	case models.SplitCustom:
		amounts = make([]decimal.Decimal, len(participantIDs))
		for i, id := range participantIDs {
			amount, ok := customAmounts[id]
			if !ok {
				return nil, apperr.Validationf("no amount supplied for participant %s", id)
			}
			amounts[i] = amount
		}
		if err := calculator.ValidateCustomShares(expense.TotalAmount, amounts); err != nil {
			return nil, apperr.Validationf("invalid custom split: %v", err)
		}
	default:
		amounts, err = calculator.EqualShares(expense.TotalAmount, len(participantIDs))
		if err != nil {
			return nil, apperr.Validationf("invalid equal split: %v", err)
		}
	}

	now := s.clock.Now()
	shares := make([]*models.ExpenseShare, len(participantIDs))
	for i, id := range participantIDs {
		shares[i] = &models.ExpenseShare{
			ExpenseID: expenseID,
			UserID:    id,
			Amount:    amounts[i],
			Status:    models.SharePending,
			CreatedAt: now,
		}
	}

	if err := s.store.CreateShares(ctx, shares); err != nil {
		return nil, err
	}

	slog.Info("shares created",
		"expense_id", expenseID,
		"count", len(shares),
		"split_method", expense.SplitMethod,
	)
	return shares, nil
}

// ConfirmShare lets the share's owner settle their own pending share. It is
// an acknowledgement only: the owner's running total is not credited.
func (s *ExpenseService) ConfirmShare(ctx context.Context, shareID, userID string) error {
	share, err := s.store.GetShare(ctx, shareID)
	if err != nil {
		return err
	}
	if share.UserID != userID {
		return apperr.Forbiddenf("only the share owner may confirm it")
	}
	if share.Status == models.ShareSettled {
		return apperr.Conflictf("share %s is already settled", share.ID)
	}
	if err := s.store.SettleShare(ctx, share.ID, s.clock.Now()); err != nil {
		return err
	}

	slog.Info("share confirmed", "share_id", share.ID, "user_id", share.UserID, "amount", share.Amount)
	return nil
}

// MarkAsPaid settles a pending share; the share owner or the expense's payer
// may trigger it. Unlike ConfirmShare, the settled amount is credited to the
// share owner's running total.
func (s *ExpenseService) MarkAsPaid(ctx context.Context, shareID, userID string) error {
	share, err := s.store.GetShare(ctx, shareID)
	if err != nil {
		return err
	}
	expense, err := s.store.GetExpense(ctx, share.ExpenseID)
	if err != nil {
		return err
	}
	if userID != share.UserID && userID != expense.PayerID {
		return apperr.Forbiddenf("only the share owner or the expense payer may settle a share")
	}
	if share.Status == models.ShareSettled {
		return apperr.Conflictf("share %s is already settled", share.ID)
	}
	// The store's guard makes settlement one-way even under a racing second
	// call, so the owner's running total moves exactly once.
	if err := s.store.SettleShareWithCredit(ctx, share.ID, share.UserID, s.clock.Now()); err != nil {
		return err
	}

	slog.Info("share marked paid", "share_id", share.ID, "user_id", share.UserID, "amount", share.Amount)
	return nil
}

// DeleteExpense soft-deletes an expense and removes all of its shares.
// Only the original payer may delete, and only while the expense is in its
// normal state.
func (s *ExpenseService) DeleteExpense(ctx context.Context, expenseID, userID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if expense.PayerID != userID {
		return apperr.Forbiddenf("only the payer may delete an expense")
	}

	if err := s.store.DeleteExpenseWithShares(ctx, expenseID, s.clock.Now()); err != nil {
		return err
	}

	slog.Info("expense deleted", "expense_id", expenseID, "payer_id", userID)
	return nil
}

// ListByActivity returns all expenses recorded against an activity.
func (s *ExpenseService) ListByActivity(ctx context.Context, activityID string) ([]*models.Expense, error) {
	if _, err := s.activities.GetActivity(ctx, activityID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByActivity(ctx, activityID)
}

// SharesByExpense returns all shares of an expense.
func (s *ExpenseService) SharesByExpense(ctx context.Context, expenseID string) ([]*models.ExpenseShare, error) {
	if _, err := s.store.GetExpense(ctx, expenseID); err != nil {
		return nil, err
	}
	return s.store.ListSharesByExpense(ctx, expenseID)
}

// SharesByUser returns all shares assigned to a user.
func (s *ExpenseService) SharesByUser(ctx context.Context, userID string) ([]*models.ExpenseShare, error) {
	return s.store.ListSharesByUser(ctx, userID)
}

// SummarizeActivity aggregates every participant's owed, settled, and pending
// amounts across all expenses of an activity.
func (s *ExpenseService) SummarizeActivity(ctx context.Context, activityID string) ([]calculator.UserSummary, error) {
	expenses, err := s.ListByActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	var entries []calculator.ShareEntry
	for _, expense := range expenses {
		shares, err := s.store.ListSharesByExpense(ctx, expense.ID)
		if err != nil {
			return nil, err
		}
		for _, share := range shares {
			entries = append(entries, calculator.ShareEntry{
				UserID:  share.UserID,
				Amount:  share.Amount,
				Settled: share.Status == models.ShareSettled,
			})
		}
	}
	return calculator.SummarizeShares(entries), nil
}
