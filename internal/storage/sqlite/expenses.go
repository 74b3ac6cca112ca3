package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/mleng/courtmate/internal/apperr"
	"github.com/mleng/courtmate/internal/models"
)

const expenseColumns = `id, activity_id, payer_id, category, title, description,
	total_amount, split_method, created_at, updated_at, deleted_at`

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	var createdAt, updatedAt int64
	var deletedAt sql.NullInt64
	var amount string

	err := row.Scan(&e.ID, &e.ActivityID, &e.PayerID, (*string)(&e.Category),
		&e.Title, &e.Description, &amount, (*string)(&e.SplitMethod),
		&createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	e.CreatedAt = time.Unix(createdAt, 0)
	e.UpdatedAt = time.Unix(updatedAt, 0)
	e.DeletedAt = timeFromNullable(deletedAt)

	e.TotalAmount, err = scanDecimal(amount)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CreateExpense persists a new expense.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, activity_id, payer_id, category, title, description,
			total_amount, split_method, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.ActivityID, expense.PayerID, string(expense.Category),
		expense.Title, expense.Description, expense.TotalAmount.String(),
		string(expense.SplitMethod), expense.CreatedAt.Unix(), expense.UpdatedAt.Unix(),
	)
	if err != nil {
		return unavailable("failed to insert expense", err)
	}
	return nil
}

// GetExpense retrieves a non-deleted expense by id.
func (s *Store) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND deleted_at IS NULL`, id)

	expense, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("expense %s not found", id)
	}
	if err != nil {
		return nil, unavailable("failed to get expense", err)
	}
	return expense, nil
}

// DeleteExpenseWithShares soft-deletes the expense and removes its shares in
// one transaction. The guard on deleted_at makes a second delete a Conflict.
func (s *Store) DeleteExpenseWithShares(ctx context.Context, expenseID string, at time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE expenses SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
			at.Unix(), at.Unix(), expenseID,
		)
		if err != nil {
			return unavailable("failed to delete expense", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return unavailable("failed to check delete result", err)
		}
		if affected == 0 {
			return apperr.NotFoundf("expense %s not found", expenseID)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM expense_shares WHERE expense_id = ?`, expenseID); err != nil {
			return unavailable("failed to delete expense shares", err)
		}
		return nil
	})
}

// ListExpensesByActivity returns all non-deleted expenses for an activity.
func (s *Store) ListExpensesByActivity(ctx context.Context, activityID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE activity_id = ? AND deleted_at IS NULL ORDER BY created_at`,
		activityID,
	)
	if err != nil {
		return nil, unavailable("failed to list expenses", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, unavailable("failed to scan expense", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("failed to iterate expenses", err)
	}
	return expenses, nil
}

// CreateShares persists a batch of shares atomically.
func (s *Store) CreateShares(ctx context.Context, shares []*models.ExpenseShare) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, share := range shares {
			if share.ID == "" {
				share.ID = uuid.New().String()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO expense_shares (id, expense_id, user_id, amount, status, created_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				share.ID, share.ExpenseID, share.UserID, share.Amount.String(),
				string(share.Status), share.CreatedAt.Unix(),
			)
			if err != nil {
				return unavailable("failed to insert share", err)
			}
		}
		return nil
	})
}

func scanShare(row rowScanner) (*models.ExpenseShare, error) {
	share := &models.ExpenseShare{}
	var createdAt int64
	var settledAt sql.NullInt64
	var amount string

	err := row.Scan(&share.ID, &share.ExpenseID, &share.UserID, &amount,
		(*string)(&share.Status), &settledAt, &createdAt)
	if err != nil {
		return nil, err
	}

	share.CreatedAt = time.Unix(createdAt, 0)
	share.SettledAt = timeFromNullable(settledAt)

	share.Amount, err = scanDecimal(amount)
	if err != nil {
		return nil, err
	}
	return share, nil
}

const shareColumns = `id, expense_id, user_id, amount, status, settled_at, created_at`

// GetShare retrieves a share by id.
func (s *Store) GetShare(ctx context.Context, shareID string) (*models.ExpenseShare, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shareColumns+` FROM expense_shares WHERE id = ?`, shareID)

	share, err := scanShare(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("share %s not found", shareID)
	}
	if err != nil {
		return nil, unavailable("failed to get share", err)
	}
	return share, nil
}

// settleShareTx flips a pending share to settled. The status guard in the
// UPDATE makes re-settlement lose: exactly one settle succeeds per share.
func settleShareTx(ctx context.Context, tx *sql.Tx, shareID string, at time.Time) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE expense_shares SET status = ?, settled_at = ?
		 WHERE id = ? AND status = ?`,
		string(models.ShareSettled), at.Unix(), shareID, string(models.SharePending),
	)
	if err != nil {
		return unavailable("failed to settle share", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return unavailable("failed to check settle result", err)
	}
	if affected == 0 {
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM expense_shares WHERE id = ?`, shareID).Scan(&status)
		if err == sql.ErrNoRows {
			return apperr.NotFoundf("share %s not found", shareID)
		}
		if err != nil {
			return unavailable("failed to inspect share", err)
		}
		return apperr.Conflictf("share %s is already %s", shareID, status)
	}
	return nil
}

// SettleShare settles a pending share without touching any running total.
func (s *Store) SettleShare(ctx context.Context, shareID string, at time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return settleShareTx(ctx, tx, shareID, at)
	})
}

// SettleShareWithCredit settles a pending share and adds its amount to the
// owner's running total, in one transaction. The status guard makes the
// total move exactly once per share.
func (s *Store) SettleShareWithCredit(ctx context.Context, shareID, ownerID string, at time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := settleShareTx(ctx, tx, shareID, at); err != nil {
			return err
		}

		var amountStr, totalStr string
		if err := tx.QueryRowContext(ctx,
			`SELECT amount FROM expense_shares WHERE id = ?`, shareID).Scan(&amountStr); err != nil {
			return unavailable("failed to read share amount", err)
		}
		if err := tx.QueryRowContext(ctx,
			`SELECT total_settled FROM users WHERE id = ?`, ownerID).Scan(&totalStr); err != nil {
			if err == sql.ErrNoRows {
				return apperr.NotFoundf("user %s not found", ownerID)
			}
			return unavailable("failed to read user total", err)
		}

		amount, err := scanDecimal(amountStr)
		if err != nil {
			return unavailable("corrupt share amount", err)
		}
		total, err := scanDecimal(totalStr)
		if err != nil {
			return unavailable("corrupt user total", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE users SET total_settled = ?, updated_at = ? WHERE id = ?`,
			total.Add(amount).String(), at.Unix(), ownerID); err != nil {
			return unavailable("failed to update user total", err)
		}
		return nil
	})
}

func (s *Store) listShares(ctx context.Context, where string, args ...any) ([]*models.ExpenseShare, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shareColumns+` FROM expense_shares WHERE `+where+` ORDER BY created_at, id`,
		args...)
	if err != nil {
		return nil, unavailable("failed to list shares", err)
	}
	defer rows.Close()

	var shares []*models.ExpenseShare
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, unavailable("failed to scan share", err)
		}
		shares = append(shares, share)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("failed to iterate shares", err)
	}
	return shares, nil
}

// ListSharesByExpense returns all shares of an expense.
func (s *Store) ListSharesByExpense(ctx context.Context, expenseID string) ([]*models.ExpenseShare, error) {
	return s.listShares(ctx, "expense_id = ?", expenseID)
}

// ListSharesByUser returns all shares assigned to a user.
func (s *Store) ListSharesByUser(ctx context.Context, userID string) ([]*models.ExpenseShare, error) {
	return s.listShares(ctx, "user_id = ?", userID)
}
