package settle

import (
	"errors"
	"fmt"

	"github.com/etnz/settle/date"
)

// Split is one participant's row on an expense, in minor units of the
// expense currency.
type Split struct {
	Participant string
	PayAmount   int64
	OweAmount   int64
	Paying      bool
	Owing       bool
}

// Expense is a shared expense or, when Kind is KindSettle, an agreed
// settlement between participants.
//
// The split rows are already materialized: the engine does not know how the
// amounts were split, only what each participant paid and owes.
type Expense struct {
	ID        string
	Kind      Kind // KindExpense or KindSettle
	Amount    int64
	Currency  string
	Splits    []Split
	Group     string // empty for expenses outside any group
	CreatedBy string
	Date      date.Date
	Category  Category
	Memo      string
}

// NewExpense returns an expense of amount minor units.
func NewExpense(id string, on date.Date, currency string, amount int64, splits ...Split) Expense {
	return Expense{ID: id, Kind: KindExpense, Amount: amount, Currency: currency, Splits: splits, Date: on}
}

// NewSettlement returns the settlement of amount paid by from to to.
func NewSettlement(id string, on date.Date, currency string, amount int64, from, to string) Expense {
	return Expense{
		ID:       id,
		Kind:     KindSettle,
		Amount:   amount,
		Currency: currency,
		Date:     on,
		Splits: []Split{
			Pays(from, amount),
			Owes(to, amount),
		},
	}
}

// Pays returns a row of a participant paying amount and owing nothing.
func Pays(participant string, amount int64) Split {
	return Split{Participant: participant, PayAmount: amount, Paying: amount > 0}
}

// Owes returns a row of a participant owing amount and paying nothing.
func Owes(participant string, amount int64) Split {
	return Split{Participant: participant, OweAmount: amount, Owing: amount > 0}
}

// Row returns a row of a participant who both paid and owes.
func Row(participant string, pay, owe int64) Split {
	return Split{Participant: participant, PayAmount: pay, OweAmount: owe, Paying: pay > 0, Owing: owe > 0}
}

func (e Expense) What() Kind      { return e.Kind }
func (e Expense) When() date.Date { return e.Date }
func (e Expense) Ident() string   { return e.ID }
func (e Expense) Total() Money    { return M(e.Amount, e.Currency) }

// WithGroup returns a copy of the expense recorded in group.
func (e Expense) WithGroup(group string) Expense {
	e.Group = group
	return e
}

// Validate checks that the split rows conserve the expense amount:
// Σ pay == amount == Σ owe. Violations wrap ErrMalformedSplit.
func (e Expense) Validate() error {
	if e.Kind != KindExpense && e.Kind != KindSettle {
		return fmt.Errorf("%w %q: kind %q is not an expense", ErrInvalidRecord, e.ID, e.Kind)
	}
	if err := ValidateCurrency(e.Currency); err != nil {
		return fmt.Errorf("expense %q: %w", e.ID, err)
	}
	if e.Amount <= 0 {
		return fmt.Errorf("expense %q: %w: amount must be positive, got %d", e.ID, ErrInvalidAmount, e.Amount)
	}

	var errs error
	var pay, owe int64
	seen := make(map[string]struct{}, len(e.Splits))
	for i, s := range e.Splits {
		if s.Participant == "" {
			errs = errors.Join(errs, fmt.Errorf("row %d has no participant", i))
		}
		if _, dup := seen[s.Participant]; dup {
			errs = errors.Join(errs, fmt.Errorf("participant %q has more than one row", s.Participant))
		}
		seen[s.Participant] = struct{}{}
		if s.PayAmount < 0 || s.OweAmount < 0 {
			errs = errors.Join(errs, fmt.Errorf("row %q has a negative amount", s.Participant))
		}
		if s.Paying != (s.PayAmount > 0) {
			errs = errors.Join(errs, fmt.Errorf("row %q: paying=%t with pay amount %d", s.Participant, s.Paying, s.PayAmount))
		}
		if s.Owing != (s.OweAmount > 0) {
			errs = errors.Join(errs, fmt.Errorf("row %q: owing=%t with owe amount %d", s.Participant, s.Owing, s.OweAmount))
		}
		var ok bool
		if pay, ok = addMinor(pay, s.PayAmount); !ok {
			errs = errors.Join(errs, fmt.Errorf("row %q: pay amounts overflow", s.Participant))
		}
		if owe, ok = addMinor(owe, s.OweAmount); !ok {
			errs = errors.Join(errs, fmt.Errorf("row %q: owe amounts overflow", s.Participant))
		}
	}
	if pay != e.Amount {
		errs = errors.Join(errs, fmt.Errorf("paid %d != amount %d", pay, e.Amount))
	}
	if owe != e.Amount {
		errs = errors.Join(errs, fmt.Errorf("owed %d != amount %d", owe, e.Amount))
	}
	if errs != nil {
		return fmt.Errorf("expense %q: %w: %w", e.ID, ErrMalformedSplit, errs)
	}
	return nil
}
