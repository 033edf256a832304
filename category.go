package settle

import (
	"fmt"
	"slices"
)

// Category classifies an expense. The set of categories is closed.
type Category int

const (
	General Category = iota
	Food
	Transport
	Housing
	Utilities
	Entertainment
	Shopping
	Travel
	Health
	Other
)

var categoryCodes = [...]string{
	General:       "general",
	Food:          "food",
	Transport:     "transport",
	Housing:       "housing",
	Utilities:     "utilities",
	Entertainment: "entertainment",
	Shopping:      "shopping",
	Travel:        "travel",
	Health:        "health",
	Other:         "other",
}

// Categories returns every category, in declaration order.
func Categories() []Category {
	list := make([]Category, len(categoryCodes))
	for i := range list {
		list[i] = Category(i)
	}
	return list
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryCodes) {
		return "unknown"
	}
	return categoryCodes[c]
}

// ParseCategory parses a category code. The empty code is General.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return General, nil
	}
	i := slices.Index(categoryCodes[:], s)
	if i < 0 {
		return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidRecord, s)
	}
	return Category(i), nil
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Category) UnmarshalText(text []byte) error {
	v, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// SpendingByCategory sums, per category, the share participant owes on
// expenses in currency. Settlements are not spending and are skipped.
func SpendingByCategory(expenses []Expense, participant, currency string) map[Category]Money {
	totals := make(map[Category]Money)
	for _, e := range expenses {
		if e.Kind != KindExpense || e.Currency != currency {
			continue
		}
		for _, s := range e.Splits {
			if s.Participant != participant || !s.Owing || s.OweAmount <= 0 {
				continue
			}
			t, ok := totals[e.Category]
			if !ok {
				t = Zero(currency)
			}
			totals[e.Category] = t.Add(M(s.OweAmount, currency))
		}
	}
	return totals
}
