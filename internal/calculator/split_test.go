package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEqualShares(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		n       int
		want    []string
		wantErr bool
	}{
		{
			name:  "ten among three gives extra cent to first",
			total: "10.00",
			n:     3,
			want:  []string{"3.34", "3.33", "3.33"},
		},
		{
			name:  "even division has no remainder",
			total: "30.00",
			n:     3,
			want:  []string{"10.00", "10.00", "10.00"},
		},
		{
			name:  "two cents remainder goes to first two",
			total: "1.00",
			n:     7,
			want:  []string{"0.15", "0.15", "0.14", "0.14", "0.14", "0.14", "0.14"},
		},
		{
			name:  "single participant gets the whole total",
			total: "57.89",
			n:     1,
			want:  []string{"57.89"},
		},
		{
			name:  "minimum one cent each",
			total: "0.03",
			n:     3,
			want:  []string{"0.01", "0.01", "0.01"},
		},
		{
			name:    "zero participants",
			total:   "10.00",
			n:       0,
			wantErr: true,
		},
		{
			name:    "total too small for one cent each",
			total:   "0.02",
			n:       3,
			wantErr: true,
		},
		{
			name:    "sub-cent precision rejected",
			total:   "10.005",
			n:       2,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := EqualShares(dec(tt.total), tt.n)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EqualShares() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if len(shares) != len(tt.want) {
				t.Fatalf("got %d shares, want %d", len(shares), len(tt.want))
			}
			sum := decimal.Zero
			for i, share := range shares {
				if !share.Equal(dec(tt.want[i])) {
					t.Errorf("share[%d] = %s, want %s", i, share, tt.want[i])
				}
				sum = sum.Add(share)
			}
			if !sum.Equal(dec(tt.total)) {
				t.Errorf("shares sum to %s, want %s", sum, tt.total)
			}
		})
	}
}

// The fairness bound: across any equal split, no two shares differ by more
// than one cent, and the batch always sums back to the total.
func TestEqualSharesBounds(t *testing.T) {
	oneCent := dec("0.01")

	for cents := int64(1); cents <= 500; cents += 7 {
		total := decimal.New(cents, -2)
		for n := 1; n <= 9; n++ {
			if cents < int64(n) {
				continue
			}
			shares, err := EqualShares(total, n)
			if err != nil {
				t.Fatalf("EqualShares(%s, %d) error: %v", total, n, err)
			}

			sum := decimal.Zero
			min, max := shares[0], shares[0]
			for _, s := range shares {
				sum = sum.Add(s)
				if s.LessThan(min) {
					min = s
				}
				if s.GreaterThan(max) {
					max = s
				}
			}
			if !sum.Equal(total) {
				t.Fatalf("EqualShares(%s, %d): sum %s != total", total, n, sum)
			}
			if max.Sub(min).GreaterThan(oneCent) {
				t.Fatalf("EqualShares(%s, %d): spread %s exceeds one cent", total, n, max.Sub(min))
			}
		}
	}
}

func TestValidateCustomShares(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		amounts []string
		wantErr bool
	}{
		{
			name:    "exact sum accepted",
			total:   "50.00",
			amounts: []string{"20.00", "25.00", "5.00"},
		},
		{
			name:    "sum below total rejected",
			total:   "50.00",
			amounts: []string{"20.00", "20.00"},
			wantErr: true,
		},
		{
			name:    "sum above total rejected",
			total:   "50.00",
			amounts: []string{"30.00", "30.00"},
			wantErr: true,
		},
		{
			name:    "zero amount rejected",
			total:   "10.00",
			amounts: []string{"10.00", "0.00"},
			wantErr: true,
		},
		{
			name:    "negative amount rejected",
			total:   "10.00",
			amounts: []string{"15.00", "-5.00"},
			wantErr: true,
		},
		{
			name:    "sub-cent amount rejected",
			total:   "10.00",
			amounts: []string{"5.005", "4.995"},
			wantErr: true,
		},
		{
			name:    "empty set rejected",
			total:   "10.00",
			amounts: nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amounts := make([]decimal.Decimal, len(tt.amounts))
			for i, a := range tt.amounts {
				amounts[i] = dec(a)
			}
			err := ValidateCustomShares(dec(tt.total), amounts)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCustomShares() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSummarizeShares(t *testing.T) {
	entries := []ShareEntry{
		{UserID: "alice", Amount: dec("3.34"), Settled: true},
		{UserID: "bob", Amount: dec("3.33")},
		{UserID: "alice", Amount: dec("10.00")},
	}

	summaries := SummarizeShares(entries)
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}

	alice := summaries[0]
	if alice.UserID != "alice" {
		t.Fatalf("first summary is %q, want alice (first-seen order)", alice.UserID)
	}
	if !alice.TotalOwed.Equal(dec("13.34")) || !alice.TotalSettled.Equal(dec("3.34")) || !alice.TotalPending.Equal(dec("10.00")) {
		t.Errorf("alice summary = %+v", alice)
	}

	bob := summaries[1]
	if !bob.TotalOwed.Equal(dec("3.33")) || !bob.TotalPending.Equal(dec("3.33")) {
		t.Errorf("bob summary = %+v", bob)
	}
}
