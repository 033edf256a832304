package settle

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"
)

func TestSimplify(t *testing.T) {
	testCases := []struct {
		name string
		net  Net
		want []Transfer
	}{
		{
			name: "one creditor",
			net:  Net{"A": 20000, "B": -10000, "C": -10000},
			want: []Transfer{
				{From: "B", To: "A", Amount: M(10000, "EUR")},
				{From: "C", To: "A", Amount: M(10000, "EUR")},
			},
		},
		{
			name: "two pointers",
			net:  Net{"a": -50, "b": -30, "c": 60, "d": 20},
			want: []Transfer{
				{From: "a", To: "c", Amount: M(50, "EUR")},
				{From: "b", To: "c", Amount: M(10, "EUR")},
				{From: "b", To: "d", Amount: M(20, "EUR")},
			},
		},
		{
			name: "equal amounts advance both sides",
			net:  Net{"a": -10, "b": -20, "x": 10, "y": 20},
			want: []Transfer{
				{From: "a", To: "x", Amount: M(10, "EUR")},
				{From: "b", To: "y", Amount: M(20, "EUR")},
			},
		},
		{
			name: "all settled",
			net:  Net{"a": 0, "b": 0},
			want: []Transfer{},
		},
		{
			name: "empty",
			net:  Net{},
			want: []Transfer{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Simplify("EUR", tc.net)
			if err != nil {
				t.Fatalf("Simplify() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Simplify() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSimplify_Unbalanced(t *testing.T) {
	testCases := []struct {
		name string
		net  Net
	}{
		{"residue", Net{"a": 100, "b": -99}},
		{"credits wrap to zero", Net{"a": math.MaxInt64, "b": math.MaxInt64, "c": 2}},
		{"debits wrap", Net{"a": -math.MaxInt64, "b": -math.MaxInt64, "c": math.MaxInt64}},
		{"smallest balance", Net{"a": math.MinInt64, "b": math.MaxInt64, "c": 1}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			transfers, err := Simplify("EUR", tc.net)
			if !errors.Is(err, ErrUnbalancedLedger) {
				t.Errorf("Simplify() = %v, %v, want ErrUnbalancedLedger", transfers, err)
			}
		})
	}
}

func TestSimplify_LargestBalances(t *testing.T) {
	transfers, err := Simplify("EUR", Net{"a": math.MaxInt64, "b": -math.MaxInt64 + 1, "c": -1})
	if err != nil {
		t.Fatalf("Simplify() unexpected error: %v", err)
	}
	want := []Transfer{
		{From: "b", To: "a", Amount: M(math.MaxInt64-1, "EUR")},
		{From: "c", To: "a", Amount: M(1, "EUR")},
	}
	if !reflect.DeepEqual(transfers, want) {
		t.Errorf("Simplify() = %v, want %v", transfers, want)
	}
}

// TestSimplify_Properties checks on random tables that transfers zero every
// balance and that n nonzero participants need at most n-1 transfers.
func TestSimplify_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 2025))
	for round := range 200 {
		n := 2 + rng.IntN(12)
		net := make(Net, n)
		var sum int64
		for i := range n - 1 {
			v := rng.Int64N(200001) - 100000
			net[fmt.Sprintf("p%02d", i)] = v
			sum += v
		}
		net[fmt.Sprintf("p%02d", n-1)] = -sum

		transfers, err := Simplify("EUR", net)
		if err != nil {
			t.Fatalf("round %d: Simplify() unexpected error: %v", round, err)
		}

		nonzero := 0
		for _, v := range net {
			if v != 0 {
				nonzero++
			}
		}
		if nonzero > 0 && len(transfers) > nonzero-1 {
			t.Errorf("round %d: %d transfers for %d participants", round, len(transfers), nonzero)
		}
		for id, v := range Apply(net, transfers) {
			if v != 0 {
				t.Errorf("round %d: %s left with %d", round, id, v)
			}
		}
		for _, tr := range transfers {
			if !tr.Amount.IsPositive() || tr.From == tr.To {
				t.Errorf("round %d: invalid transfer %v", round, tr)
			}
		}
	}
}

func TestSimplify_Deterministic(t *testing.T) {
	net := Net{"z": 30, "y": 30, "x": -20, "w": -40}
	first, _ := Simplify("EUR", net)
	for range 20 {
		again, _ := Simplify("EUR", net)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Simplify() is not deterministic: %v then %v", first, again)
		}
	}
}

func TestSimplifyAll(t *testing.T) {
	entries := fixtureEntries(t)
	transfers, err := SimplifyAll(netBalances(t, entries, AllScope()))
	if err != nil {
		t.Fatalf("SimplifyAll() unexpected error: %v", err)
	}
	want := []Transfer{
		{From: "bob", To: "ann", Amount: M(4033, "EUR")},
		{From: "cat", To: "ann", Amount: M(10934, "EUR")},
		{From: "dan", To: "ann", Amount: M(2500, "USD")},
	}
	if !reflect.DeepEqual(transfers, want) {
		t.Errorf("SimplifyAll() = %v, want %v", transfers, want)
	}
}
