// Package calculator implements the expense division arithmetic.
//
// All amounts are exact decimals with at most two fractional digits. Equal
// division works in whole cents so a batch of shares always sums back to the
// original total with no rounding drift.
package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// centsPerUnit converts between major units and the minimal currency unit.
var centsPerUnit = decimal.NewFromInt(100)

// EqualShares divides total into n near-equal shares.
//
// Each share starts at floor(total/n) truncated to two decimal places; the
// leftover cents are handed out one per share starting from index 0. The
// order dependence is deliberate: it is a simple deterministic tie-break, and
// callers pass participants in join order. Guarantees:
//
//   - the shares sum to total exactly
//   - max share − min share ≤ one cent
//   - every share ≥ 0.01 as long as total ≥ 0.01·n
func EqualShares(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("participant count must be positive, got %d", n)
	}
	if !total.Equal(total.Truncate(2)) {
		return nil, fmt.Errorf("total %s has more than two fractional digits", total)
	}

	totalCents := total.Mul(centsPerUnit).IntPart()
	if totalCents < int64(n) {
		return nil, fmt.Errorf("total %s cannot give each of %d participants at least one cent", total, n)
	}

	base := totalCents / int64(n)
	remainder := totalCents % int64(n)

	shares := make([]decimal.Decimal, n)
	for i := range shares {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		shares[i] = decimal.New(cents, -2)
	}
	return shares, nil
}

// ValidateCustomShares checks a caller-supplied division of total.
// Every amount must be positive with at most two fractional digits, and the
// amounts must sum to total exactly. Returns nil only when the whole set is
// acceptable; a custom split is all-or-nothing.
func ValidateCustomShares(total decimal.Decimal, amounts []decimal.Decimal) error {
	if len(amounts) == 0 {
		return fmt.Errorf("no share amounts supplied")
	}

	sum := decimal.Zero
	for i, amount := range amounts {
		if amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("share amount at position %d must be positive, got %s", i, amount)
		}
		if !amount.Equal(amount.Truncate(2)) {
			return fmt.Errorf("share amount %s has more than two fractional digits", amount)
		}
		sum = sum.Add(amount)
	}

	if !sum.Equal(total) {
		return fmt.Errorf("sum mismatch: shares total %s, expense total %s", sum, total)
	}
	return nil
}
