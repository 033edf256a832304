package settle

import (
	"errors"
	"math"
	"testing"

	"github.com/etnz/settle/date"
)

func TestExpense_Validate(t *testing.T) {
	on := date.MustParse("2025-01-10")
	testCases := []struct {
		name    string
		expense Expense
		wantErr error
	}{
		{
			name:    "equal split",
			expense: NewExpense("e1", on, "EUR", 30000, Row("ann", 30000, 10000), Owes("bob", 10000), Owes("cat", 10000)),
		},
		{
			name:    "settlement",
			expense: NewSettlement("s1", on, "EUR", 500, "bob", "ann"),
		},
		{
			name:    "paid more than the amount",
			expense: NewExpense("e2", on, "EUR", 300, Pays("ann", 400), Owes("bob", 300)),
			wantErr: ErrMalformedSplit,
		},
		{
			name:    "owes less than the amount",
			expense: NewExpense("e3", on, "EUR", 300, Pays("ann", 300), Owes("bob", 200)),
			wantErr: ErrMalformedSplit,
		},
		{
			name:    "negative row",
			expense: NewExpense("e4", on, "EUR", 300, Pays("ann", 300), Owes("bob", 400), Owes("cat", -100)),
			wantErr: ErrMalformedSplit,
		},
		{
			name:    "flag disagrees with amount",
			expense: NewExpense("e5", on, "EUR", 300, Split{Participant: "ann", PayAmount: 300}, Owes("bob", 300)),
			wantErr: ErrMalformedSplit,
		},
		{
			name:    "duplicate participant",
			expense: NewExpense("e6", on, "EUR", 300, Pays("ann", 300), Owes("bob", 100), Owes("bob", 200)),
			wantErr: ErrMalformedSplit,
		},
		{
			name:    "pay amounts wrap around to the amount",
			expense: NewExpense("e9", on, "EUR", 2, Pays("ann", math.MaxInt64), Pays("bob", math.MaxInt64), Pays("cat", 4), Owes("dan", 2)),
			wantErr: ErrMalformedSplit,
		},
		{
			name:    "owe amounts wrap around to the amount",
			expense: NewExpense("e10", on, "EUR", 2, Pays("ann", 2), Owes("bob", math.MaxInt64), Owes("cat", math.MaxInt64), Owes("dan", 4)),
			wantErr: ErrMalformedSplit,
		},
		{
			name:    "largest amount",
			expense: NewExpense("e11", on, "EUR", math.MaxInt64, Pays("ann", math.MaxInt64), Owes("bob", math.MaxInt64-1), Owes("cat", 1)),
		},
		{
			name:    "zero amount",
			expense: NewExpense("e7", on, "EUR", 0),
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown currency",
			expense: NewExpense("e8", on, "QQQ", 300, Pays("ann", 300), Owes("bob", 300)),
			wantErr: ErrUnsupportedCurrency,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.expense.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

// TestExpense_Conservation checks Σ pay == Σ owe == amount on the valid fixtures.
func TestExpense_Conservation(t *testing.T) {
	for _, e := range fixtureExpenses() {
		var pay, owe int64
		for _, s := range e.Splits {
			pay += s.PayAmount
			owe += s.OweAmount
		}
		if pay != e.Amount || owe != e.Amount {
			t.Errorf("expense %s: pay %d owe %d amount %d", e.ID, pay, owe, e.Amount)
		}
	}
}
