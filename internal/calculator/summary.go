package calculator

import "github.com/shopspring/decimal"

// ShareEntry is the minimal share information needed for settlement summaries.
type ShareEntry struct {
	UserID  string
	Amount  decimal.Decimal
	Settled bool
}

// UserSummary aggregates one user's position across a set of shares.
type UserSummary struct {
	UserID       string
	TotalOwed    decimal.Decimal // sum of all share amounts assigned to the user
	TotalSettled decimal.Decimal // portion already settled
	TotalPending decimal.Decimal // portion still outstanding
}

// SummarizeShares aggregates shares per user. Users appear in the order of
// their first share so output is deterministic for a given input.
func SummarizeShares(entries []ShareEntry) []UserSummary {
	index := make(map[string]int)
	var summaries []UserSummary

	for _, e := range entries {
		i, ok := index[e.UserID]
		if !ok {
			i = len(summaries)
			index[e.UserID] = i
			summaries = append(summaries, UserSummary{
				UserID:       e.UserID,
				TotalOwed:    decimal.Zero,
				TotalSettled: decimal.Zero,
				TotalPending: decimal.Zero,
			})
		}

		summaries[i].TotalOwed = summaries[i].TotalOwed.Add(e.Amount)
		if e.Settled {
			summaries[i].TotalSettled = summaries[i].TotalSettled.Add(e.Amount)
		} else {
			summaries[i].TotalPending = summaries[i].TotalPending.Add(e.Amount)
		}
	}
	return summaries
}
