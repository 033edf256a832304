package settle

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Entry is a canonical directed debt: From owes To the Amount.
type Entry struct {
	From   string
	To     string
	Amount Money
	Group  string // group of the originating record, empty outside groups
	Source string // id of the originating record
}

// Currency returns the currency of the entry amount.
func (e Entry) Currency() string { return e.Amount.Currency() }

// Normalize converts records into directed entries.
//
// Every record is validated before any entry is produced: a single malformed
// expense fails the whole call with ErrMalformedSplit.
func Normalize(records []Record) ([]Entry, error) {
	var errs error
	for _, r := range records {
		if err := r.Validate(); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	if errs != nil {
		return nil, errs
	}

	entries := make([]Entry, 0, len(records)*2)
	for _, r := range records {
		switch v := r.(type) {
		case Expense:
			entries = append(entries, expenseEntries(v)...)
		case Loan:
			entries = append(entries, loanEntries(v)...)
		default:
			return nil, fmt.Errorf("%w: unsupported record type %T", ErrInvalidRecord, r)
		}
	}
	return entries, nil
}

// NormalizeExpenses is Normalize for a list of expenses.
func NormalizeExpenses(expenses ...Expense) ([]Entry, error) {
	records := make([]Record, len(expenses))
	for i, e := range expenses {
		records[i] = e
	}
	return Normalize(records)
}

// share is the amount one owing row owes one paying row.
type share struct {
	ower, payer int // indexes in the expense splits
	amount      int64
}

// shares distributes every owing row over the paying rows, proportionally to
// what each paid. Rounding residue is assigned walking rows in order, so that
// each owing row gives exactly its owe amount and each paying row receives
// exactly its pay amount. The expense must be valid.
func shares(e Expense) []share {
	var owers, payers []int
	for i, s := range e.Splits {
		if s.Owing && s.OweAmount > 0 {
			owers = append(owers, i)
		}
		if s.Paying && s.PayAmount > 0 {
			payers = append(payers, i)
		}
	}

	total := decimal.NewFromInt(e.Amount)
	cells := make([][]int64, len(owers))
	rowRest := make([]int64, len(owers))
	colRest := make([]int64, len(payers))
	for j, p := range payers {
		colRest[j] = e.Splits[p].PayAmount
	}
	for i, o := range owers {
		owe := e.Splits[o].OweAmount
		cells[i] = make([]int64, len(payers))
		rowRest[i] = owe
		for j, p := range payers {
			q, _ := decimal.NewFromInt(owe).Mul(decimal.NewFromInt(e.Splits[p].PayAmount)).QuoRem(total, 0)
			cells[i][j] = q.IntPart()
			rowRest[i] -= cells[i][j]
			colRest[j] -= cells[i][j]
		}
	}

	// Σ rowRest == Σ colRest because Σ owe == Σ pay.
	for i, j := 0, 0; i < len(owers) && j < len(payers); {
		switch {
		case rowRest[i] == 0:
			i++
		case colRest[j] == 0:
			j++
		default:
			x := min(rowRest[i], colRest[j])
			cells[i][j] += x
			rowRest[i] -= x
			colRest[j] -= x
		}
	}

	var list []share
	for i, o := range owers {
		for j, p := range payers {
			if cells[i][j] > 0 {
				list = append(list, share{ower: o, payer: p, amount: cells[i][j]})
			}
		}
	}
	return list
}

func expenseEntries(e Expense) []Entry {
	var entries []Entry
	for _, s := range shares(e) {
		from, to := e.Splits[s.ower].Participant, e.Splits[s.payer].Participant
		if from == to {
			// paying one's own share is not a debt.
			continue
		}
		entries = append(entries, Entry{
			From:   from,
			To:     to,
			Amount: M(s.amount, e.Currency),
			Group:  e.Group,
			Source: e.ID,
		})
	}
	return entries
}

func loanEntries(l Loan) []Entry {
	entries := make([]Entry, 0, 1+len(l.Repayments))
	entries = append(entries, Entry{From: l.Borrower, To: l.Lender, Amount: M(l.Principal, l.Currency), Source: l.ID})
	for _, r := range l.Repayments {
		entries = append(entries, Entry{From: l.Lender, To: l.Borrower, Amount: M(r.Amount, l.Currency), Source: l.ID})
	}
	return entries
}
