package settle

import (
	"fmt"

	"github.com/etnz/settle/date"
)

// Kind identifies the type of a record in a records file.
type Kind string

// Record kinds.
const (
	KindExpense Kind = "expense"
	KindSettle  Kind = "settle"
	KindLoan    Kind = "loan"
)

// Record is a validated fact supplied by the upstream store: an expense, a
// settlement, or a loan with its repayments.
type Record interface {
	What() Kind      // What returns the kind of record.
	When() date.Date // When returns the day the record was created.
	Ident() string   // Ident returns the record id.
	Validate() error // Validate checks the record invariants.
}

// ParseKind parses a record kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindExpense, KindSettle, KindLoan:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidRecord, s)
	}
}
