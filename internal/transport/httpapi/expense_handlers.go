package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mleng/courtmate/internal/models"
	"github.com/mleng/courtmate/internal/observability"
	"github.com/mleng/courtmate/internal/service"
)

type createExpenseRequest struct {
	ActivityID  string `json:"activity_id" binding:"required"`
	Category    string `json:"category"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	TotalAmount string `json:"total_amount" binding:"required"`
	SplitMethod string `json:"split_method"`
}

type expenseResponse struct {
	ID          string `json:"id"`
	ActivityID  string `json:"activity_id"`
	PayerID     string `json:"payer_id"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TotalAmount string `json:"total_amount"`
	SplitMethod string `json:"split_method"`
	CreatedAt   int64  `json:"created_at"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		ActivityID:  e.ActivityID,
		PayerID:     e.PayerID,
		Category:    string(e.Category),
		Title:       e.Title,
		Description: e.Description,
		TotalAmount: e.TotalAmount.String(),
		SplitMethod: string(e.SplitMethod),
		CreatedAt:   e.CreatedAt.Unix(),
	}
}

type shareResponse struct {
	ID        string `json:"id"`
	ExpenseID string `json:"expense_id"`
	UserID    string `json:"user_id"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	SettledAt *int64 `json:"settled_at,omitempty"`
}

func toShareResponse(share *models.ExpenseShare) shareResponse {
	resp := shareResponse{
		ID:        share.ID,
		ExpenseID: share.ExpenseID,
		UserID:    share.UserID,
		Amount:    share.Amount.String(),
		Status:    string(share.Status),
	}
	if share.SettledAt != nil {
		ts := share.SettledAt.Unix()
		resp.SettledAt = &ts
	}
	return resp
}

func toShareResponses(shares []*models.ExpenseShare) []shareResponse {
	out := make([]shareResponse, len(shares))
	for i, share := range shares {
		out[i] = toShareResponse(share)
	}
	return out
}

func (s *Server) createExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBadRequest(c, "invalid create expense request")
		return
	}

	total, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		failBadRequest(c, "total_amount is not a valid amount")
		return
	}

	expense, err := s.expenses.CreateExpense(c.Request.Context(), service.CreateExpenseInput{
		ActivityID:  req.ActivityID,
		PayerID:     callerID(c),
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		TotalAmount: total,
		SplitMethod: req.SplitMethod,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, toExpenseResponse(expense))
}

type createSharesRequest struct {
	ParticipantIDs []string          `json:"participant_ids" binding:"required"`
	CustomAmounts  map[string]string `json:"custom_amounts"`
}

func (s *Server) createShares(c *gin.Context) {
	var req createSharesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failBadRequest(c, "invalid create shares request")
		return
	}

	var customAmounts map[string]decimal.Decimal
	if len(req.CustomAmounts) > 0 {
		customAmounts = make(map[string]decimal.Decimal, len(req.CustomAmounts))
		for userID, raw := range req.CustomAmounts {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				failBadRequest(c, "custom amount for "+userID+" is not a valid amount")
				return
			}
			customAmounts[userID] = amount
		}
	}

	shares, err := s.expenses.CreateShares(c.Request.Context(), c.Param("id"), req.ParticipantIDs, customAmounts)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, toShareResponses(shares))
}

func (s *Server) listShares(c *gin.Context) {
	shares, err := s.expenses.SharesByExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, toShareResponses(shares))
}

func (s *Server) deleteExpense(c *gin.Context) {
	if err := s.expenses.DeleteExpense(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) confirmShare(c *gin.Context) {
	if err := s.expenses.ConfirmShare(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		fail(c, err)
		return
	}
	observability.RecordShareSettled()
	ok(c, http.StatusOK, gin.H{"status": string(models.ShareSettled)})
}

func (s *Server) settleShare(c *gin.Context) {
	if err := s.expenses.MarkAsPaid(c.Request.Context(), c.Param("id"), callerID(c)); err != nil {
		fail(c, err)
		return
	}
	observability.RecordShareSettled()
	ok(c, http.StatusOK, gin.H{"status": string(models.ShareSettled)})
}

func (s *Server) listActivityExpenses(c *gin.Context) {
	expenses, err := s.expenses.ListByActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e)
	}
	ok(c, http.StatusOK, out)
}

type summaryResponse struct {
	UserID       string `json:"user_id"`
	TotalOwed    string `json:"total_owed"`
	TotalSettled string `json:"total_settled"`
	TotalPending string `json:"total_pending"`
}

func (s *Server) activitySummary(c *gin.Context) {
	summaries, err := s.expenses.SummarizeActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]summaryResponse, len(summaries))
	for i, sum := range summaries {
		out[i] = summaryResponse{
			UserID:       sum.UserID,
			TotalOwed:    sum.TotalOwed.String(),
			TotalSettled: sum.TotalSettled.String(),
			TotalPending: sum.TotalPending.String(),
		}
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) myShares(c *gin.Context) {
	shares, err := s.expenses.SharesByUser(c.Request.Context(), callerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, toShareResponses(shares))
}
