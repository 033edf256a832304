package settle

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/etnz/settle/date"
)

func TestNormalize_EqualSplit(t *testing.T) {
	on := date.MustParse("2025-01-10")
	entries, err := NormalizeExpenses(NewExpense("e1", on, "EUR", 30000, Row("A", 30000, 10000), Owes("B", 10000), Owes("C", 10000)))
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	want := []Entry{
		{From: "B", To: "A", Amount: M(10000, "EUR"), Source: "e1"},
		{From: "C", To: "A", Amount: M(10000, "EUR"), Source: "e1"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("Normalize() = %v, want %v", entries, want)
	}
}

func TestNormalize_SeveralPayers(t *testing.T) {
	on := date.MustParse("2025-01-10")
	e := NewExpense("e1", on, "EUR", 1000, Row("A", 600, 333), Row("B", 400, 333), Owes("C", 334))
	entries, err := NormalizeExpenses(e)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	want := []Entry{
		{From: "A", To: "B", Amount: M(133, "EUR"), Source: "e1"},
		{From: "B", To: "A", Amount: M(200, "EUR"), Source: "e1"},
		{From: "C", To: "A", Amount: M(200, "EUR"), Source: "e1"},
		{From: "C", To: "B", Amount: M(134, "EUR"), Source: "e1"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("Normalize() = %v, want %v", entries, want)
	}

	// each participant nets exactly pay - owe.
	net := netBalances(t, entries, AllScope())["EUR"]
	for _, s := range e.Splits {
		if got, want := net[s.Participant], s.PayAmount-s.OweAmount; got != want {
			t.Errorf("net[%s] = %d, want %d", s.Participant, got, want)
		}
	}
}

func TestNormalize_RoundingConservesRows(t *testing.T) {
	on := date.MustParse("2025-01-10")
	// odd amounts over uneven payers exercise the residue walk.
	e := NewExpense("e1", on, "EUR", 1001,
		Row("A", 333, 143), Row("B", 334, 143), Row("C", 334, 143),
		Owes("D", 143), Owes("E", 143), Owes("F", 143), Owes("G", 143))
	entries, err := NormalizeExpenses(e)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	net := netBalances(t, entries, AllScope())["EUR"]
	for _, s := range e.Splits {
		if got, want := net[s.Participant], s.PayAmount-s.OweAmount; got != want {
			t.Errorf("net[%s] = %d, want %d", s.Participant, got, want)
		}
	}
	if net.Sum() != 0 {
		t.Errorf("net sums to %d, want 0", net.Sum())
	}
}

func TestNormalize_SettlementCancelsDebt(t *testing.T) {
	on := date.MustParse("2025-01-10")
	entries, err := NormalizeExpenses(
		NewExpense("e1", on, "EUR", 30000, Row("A", 30000, 10000), Owes("B", 10000), Owes("C", 10000)),
		NewSettlement("s1", on.Add(1), "EUR", 10000, "B", "A"),
	)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	net := netBalances(t, entries, AllScope())["EUR"]
	want := Net{"A": 10000, "B": 0, "C": -10000}
	if !reflect.DeepEqual(net, want) {
		t.Errorf("NetBalances() = %v, want %v", net, want)
	}
}

func TestNormalize_Loan(t *testing.T) {
	l := Loan{
		ID: "l1", Lender: "A", Borrower: "B", Principal: 50000, Currency: "EUR", Status: LoanPartiallyRepaid,
		Repayments: []Repayment{{Amount: 20000, At: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}},
	}
	entries, err := Normalize([]Record{l})
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if got := PairBalance(entries, "A", "B", "EUR"); got != 30000 {
		t.Errorf("PairBalance(A, B) = %d, want 30000", got)
	}
}

func TestNormalize_MalformedFailsWholeBatch(t *testing.T) {
	on := date.MustParse("2025-01-10")
	entries, err := NormalizeExpenses(
		NewExpense("ok", on, "EUR", 300, Pays("A", 300), Owes("B", 300)),
		NewExpense("bad", on, "EUR", 300, Pays("A", 300), Owes("B", 100)),
	)
	if !errors.Is(err, ErrMalformedSplit) {
		t.Fatalf("Normalize() error = %v, want ErrMalformedSplit", err)
	}
	if entries != nil {
		t.Errorf("Normalize() returned %d entries on failure", len(entries))
	}
}

func TestNormalize_Fixture(t *testing.T) {
	entries, err := Normalize(records(fixtureExpenses()...))
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	for _, e := range entries {
		if e.From == e.To {
			t.Errorf("entry %v is a self debt", e)
		}
		if !e.Amount.IsPositive() {
			t.Errorf("entry %v is not positive", e)
		}
	}
}
