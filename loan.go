package settle

import (
	"fmt"
	"slices"
	"time"

	"github.com/etnz/settle/date"
	"github.com/google/uuid"
)

// LoanStatus is the lifecycle state of a loan.
type LoanStatus string

const (
	LoanOpen            LoanStatus = "open"
	LoanPartiallyRepaid LoanStatus = "partially_repaid"
	LoanClosed          LoanStatus = "closed"
)

// ParseLoanStatus parses a loan status. The empty string is LoanOpen.
func ParseLoanStatus(s string) (LoanStatus, error) {
	switch st := LoanStatus(s); st {
	case "":
		return LoanOpen, nil
	case LoanOpen, LoanPartiallyRepaid, LoanClosed:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown loan status %q", ErrInvalidRecord, s)
	}
}

// Repayment is an amount, in minor units of the loan currency, paid back by the borrower.
type Repayment struct {
	Amount int64
	At     time.Time
	Note   string
}

// Loan is money lent by Lender to Borrower.
//
// Loans are values: AddRepayment and CloseLoan return an updated copy and
// leave their input untouched.
type Loan struct {
	ID                  string
	Lender              string
	Borrower            string
	Principal           int64
	Currency            string
	Repayments          []Repayment
	Status              LoanStatus
	Date                date.Date
	EstimatedReturnDate date.Date // zero when the loan has no due date
	ClosedAt            time.Time
	CloseNote           string
	Memo                string
}

// LoanOption configures NewLoan.
type LoanOption func(*Loan)

// WithLoanID sets the loan id instead of a generated one.
func WithLoanID(id string) LoanOption { return func(l *Loan) { l.ID = id } }

// DueOn sets the estimated return date of the loan.
func DueOn(d date.Date) LoanOption { return func(l *Loan) { l.EstimatedReturnDate = d } }

// LoanMemo sets a free text memo on the loan.
func LoanMemo(memo string) LoanOption { return func(l *Loan) { l.Memo = memo } }

// NewLoan returns an open loan of principal, or an error when it is invalid.
func NewLoan(on date.Date, lender, borrower string, principal Money, opts ...LoanOption) (Loan, error) {
	l := Loan{
		ID:        uuid.NewString(),
		Lender:    lender,
		Borrower:  borrower,
		Principal: principal.Minor(),
		Currency:  principal.Currency(),
		Status:    LoanOpen,
		Date:      on,
	}
	for _, opt := range opts {
		opt(&l)
	}
	if err := l.Validate(); err != nil {
		return Loan{}, err
	}
	return l, nil
}

func (l Loan) What() Kind      { return KindLoan }
func (l Loan) When() date.Date { return l.Date }
func (l Loan) Ident() string   { return l.ID }

// Validate checks the loan fields and that its repayments never exceed the principal.
func (l Loan) Validate() error {
	if l.Lender == "" || l.Borrower == "" {
		return fmt.Errorf("%w: loan %q needs a lender and a borrower", ErrInvalidRecord, l.ID)
	}
	if l.Lender == l.Borrower {
		return fmt.Errorf("%w: loan %q lender and borrower are both %q", ErrInvalidRecord, l.ID, l.Lender)
	}
	if err := ValidateCurrency(l.Currency); err != nil {
		return fmt.Errorf("loan %q: %w", l.ID, err)
	}
	if l.Principal <= 0 {
		return fmt.Errorf("loan %q: %w: principal must be positive, got %d", l.ID, ErrInvalidAmount, l.Principal)
	}
	if _, err := ParseLoanStatus(string(l.Status)); err != nil {
		return fmt.Errorf("loan %q: %w", l.ID, err)
	}
	var repaid int64
	for i, r := range l.Repayments {
		if r.Amount <= 0 {
			return fmt.Errorf("loan %q: repayment %d: %w: got %d", l.ID, i, ErrInvalidAmount, r.Amount)
		}
		if r.Amount > l.Principal-repaid {
			return fmt.Errorf("loan %q: repayment %d: %w", l.ID, i, ErrOverRepayment)
		}
		repaid += r.Amount
	}
	return nil
}

// Repaid returns the sum of all repayments.
func (l Loan) Repaid() Money {
	var sum int64
	for _, r := range l.Repayments {
		sum += r.Amount
	}
	return M(sum, l.Currency)
}

// Outstanding returns max(0, principal - Σ repayments), never above the principal.
func Outstanding(l Loan) Money {
	rest := l.Principal - l.Repaid().Minor()
	return M(min(max(rest, 0), l.Principal), l.Currency)
}

// RepaymentOptions configures AddRepayment.
type RepaymentOptions struct {
	At              time.Time // defaults to time.Now()
	AutoCloseIfFull bool      // close the loan when the repayment clears it
}

// AddRepayment returns loan with a repayment of amount minor units appended.
//
// It fails with ErrInvalidAmount when amount <= 0, ErrOverRepayment when amount
// exceeds the outstanding, and ErrLoanClosed on a closed loan. On failure the
// returned loan is the input, unchanged.
func AddRepayment(l Loan, amount int64, note string, opts RepaymentOptions) (Loan, error) {
	if l.Status == LoanClosed {
		return l, fmt.Errorf("loan %q: %w", l.ID, ErrLoanClosed)
	}
	if amount <= 0 {
		return l, fmt.Errorf("loan %q: %w: repayment must be positive, got %d", l.ID, ErrInvalidAmount, amount)
	}
	outstanding := Outstanding(l)
	if amount > outstanding.Minor() {
		return l, fmt.Errorf("loan %q: %w: repaying %s, outstanding is %s", l.ID, ErrOverRepayment, M(amount, l.Currency), outstanding)
	}

	at := opts.At
	if at.IsZero() {
		at = time.Now()
	}
	next := l
	next.Repayments = append(slices.Clip(l.Repayments), Repayment{Amount: amount, At: at, Note: note})

	switch {
	case Outstanding(next).IsZero() && opts.AutoCloseIfFull:
		next.Status = LoanClosed
		next.ClosedAt = at
	default:
		next.Status = LoanPartiallyRepaid
	}
	return next, nil
}

// CloseLoan returns the loan closed at 'at', whatever its outstanding.
func CloseLoan(l Loan, at time.Time, note string) Loan {
	if at.IsZero() {
		at = time.Now()
	}
	l.Repayments = slices.Clip(l.Repayments)
	l.Status = LoanClosed
	l.ClosedAt = at
	l.CloseNote = note
	return l
}

// CanDelete returns ErrLoanHasRepayments once any repayment was recorded.
func CanDelete(l Loan) error {
	if len(l.Repayments) > 0 {
		return fmt.Errorf("loan %q: %w: %d recorded", l.ID, ErrLoanHasRepayments, len(l.Repayments))
	}
	return nil
}

// Overdue reports whether the loan is still open after its estimated return date.
func Overdue(l Loan, today date.Date) bool {
	if l.Status == LoanClosed || l.EstimatedReturnDate.IsZero() {
		return false
	}
	return today.After(l.EstimatedReturnDate) && !Outstanding(l).IsZero()
}

// LoanTotals sums, per currency, the outstanding participant lent and borrowed
// over loans that are not closed.
func LoanTotals(loans []Loan, participant string) (lent, borrowed map[string]Money) {
	lent, borrowed = make(map[string]Money), make(map[string]Money)
	add := func(m map[string]Money, v Money) {
		t, ok := m[v.Currency()]
		if !ok {
			t = Zero(v.Currency())
		}
		m[v.Currency()] = t.Add(v)
	}
	for _, l := range loans {
		if l.Status == LoanClosed {
			continue
		}
		switch participant {
		case l.Lender:
			add(lent, Outstanding(l))
		case l.Borrower:
			add(borrowed, Outstanding(l))
		}
	}
	return lent, borrowed
}
