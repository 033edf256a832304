package settle

import (
	"testing"

	"github.com/etnz/settle/date"
)

// fixtureExpenses returns a small trip: three expenses and a settlement in EUR,
// one dinner in USD outside the group.
func fixtureExpenses() []Expense {
	on := date.MustParse("2025-01-10")
	return []Expense{
		NewExpense("hotel", on, "EUR", 30000, Row("ann", 30000, 10000), Owes("bob", 10000), Owes("cat", 10000)).WithGroup("trip"),
		NewExpense("fuel", on.Add(1), "EUR", 9000, Row("bob", 9000, 3000), Owes("ann", 3000), Owes("cat", 3000)).WithGroup("trip"),
		NewExpense("museum", on.Add(2), "EUR", 100, Row("cat", 100, 34), Owes("ann", 33), Owes("bob", 33)).WithGroup("trip"),
		NewSettlement("payback", on.Add(3), "EUR", 2000, "cat", "ann").WithGroup("trip"),
		NewExpense("dinner", on.Add(4), "USD", 5000, Row("ann", 5000, 2500), Owes("dan", 2500)),
	}
}

// records converts expenses to records.
func records(expenses ...Expense) []Record {
	list := make([]Record, len(expenses))
	for i, e := range expenses {
		list[i] = e
	}
	return list
}

// netBalances is NetBalances failing the test on error.
func netBalances(t *testing.T, entries []Entry, scope Scope) map[string]Net {
	t.Helper()
	tables, err := NetBalances(entries, scope)
	if err != nil {
		t.Fatalf("NetBalances(%v) unexpected error: %v", scope, err)
	}
	return tables
}

// aggregate is Aggregate failing the test on error.
func aggregate(t *testing.T, entries []Entry, subject string, scope Scope, opts AggregateOptions) map[string]Net {
	t.Helper()
	tables, err := Aggregate(entries, subject, scope, opts)
	if err != nil {
		t.Fatalf("Aggregate(%s) unexpected error: %v", subject, err)
	}
	return tables
}
