package settle

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/settle/date"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Records files are JSONL: one record per line, amounts written in major
// units of the record currency. For instance:
//
//	{"kind":"expense","id":"e1","date":"2025-01-10","group":"trip","currency":"EUR","amount":300,"splits":[{"participant":"ann","pay":300,"owe":100},{"participant":"bob","owe":100},{"participant":"cat","owe":100}]}
//	{"kind":"loan","id":"l1","date":"2025-02-01","lender":"ann","borrower":"bob","currency":"EUR","principal":500,"repayments":[{"amount":100,"at":"2025-03-01T10:00:00Z"}]}

// amountCmd reads money from an "amount" and a "currency" field.
type amountCmd struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountCmd) Money() (Money, error) { return FromMajor(a.Amount, a.Currency) }

type jsplit struct {
	Participant string          `json:"participant"`
	Pay         decimal.Decimal `json:"pay"`
	Owe         decimal.Decimal `json:"owe"`
	Paying      *bool           `json:"paying,omitempty"` // derived from pay when missing
	Owing       *bool           `json:"owing,omitempty"`  // derived from owe when missing
}

type jexpense struct {
	Kind      Kind      `json:"kind"`
	ID        string    `json:"id"`
	Date      date.Date `json:"date"`
	Group     string    `json:"group"`
	CreatedBy string    `json:"createdBy"`
	Category  Category  `json:"category"`
	Memo      string    `json:"memo"`
	amountCmd
	Splits []jsplit `json:"splits"`
}

type jrepayment struct {
	Amount decimal.Decimal `json:"amount"`
	At     time.Time       `json:"at"`
	Note   string          `json:"note,omitempty"`
}

type jloan struct {
	Kind       Kind            `json:"kind"`
	ID         string          `json:"id"`
	Date       date.Date       `json:"date"`
	Lender     string          `json:"lender"`
	Borrower   string          `json:"borrower"`
	Currency   string          `json:"currency"`
	Principal  decimal.Decimal `json:"principal"`
	Status     LoanStatus      `json:"status"`
	Due        date.Date       `json:"due"`
	Repayments []jrepayment    `json:"repayments"`
	ClosedAt   *time.Time      `json:"closedAt"`
	CloseNote  string          `json:"closeNote"`
	Memo       string          `json:"memo"`
}

func (j jexpense) expense() (Expense, error) {
	e := Expense{
		ID:        j.ID,
		Kind:      j.Kind,
		Currency:  j.Currency,
		Group:     j.Group,
		CreatedBy: j.CreatedBy,
		Date:      j.Date,
		Category:  j.Category,
		Memo:      j.Memo,
	}
	total, err := j.amountCmd.Money()
	if err != nil {
		return Expense{}, fmt.Errorf("expense %q: %w", j.ID, err)
	}
	e.Amount = total.Minor()
	for _, js := range j.Splits {
		pay, err := FromMajor(js.Pay, j.Currency)
		if err != nil {
			return Expense{}, fmt.Errorf("expense %q: pay of %q: %w", j.ID, js.Participant, err)
		}
		owe, err := FromMajor(js.Owe, j.Currency)
		if err != nil {
			return Expense{}, fmt.Errorf("expense %q: owe of %q: %w", j.ID, js.Participant, err)
		}
		s := Row(js.Participant, pay.Minor(), owe.Minor())
		if js.Paying != nil {
			s.Paying = *js.Paying
		}
		if js.Owing != nil {
			s.Owing = *js.Owing
		}
		e.Splits = append(e.Splits, s)
	}
	return e, nil
}

func (j jloan) loan() (Loan, error) {
	principal, err := FromMajor(j.Principal, j.Currency)
	if err != nil {
		return Loan{}, fmt.Errorf("loan %q: %w", j.ID, err)
	}
	status, err := ParseLoanStatus(string(j.Status))
	if err != nil {
		return Loan{}, fmt.Errorf("loan %q: %w", j.ID, err)
	}
	l := Loan{
		ID:                  j.ID,
		Lender:              j.Lender,
		Borrower:            j.Borrower,
		Principal:           principal.Minor(),
		Currency:            j.Currency,
		Status:              status,
		Date:                j.Date,
		EstimatedReturnDate: j.Due,
		CloseNote:           j.CloseNote,
		Memo:                j.Memo,
	}
	if j.ClosedAt != nil {
		l.ClosedAt = *j.ClosedAt
	}
	for _, r := range j.Repayments {
		amount, err := FromMajor(r.Amount, j.Currency)
		if err != nil {
			return Loan{}, fmt.Errorf("loan %q: repayment: %w", j.ID, err)
		}
		l.Repayments = append(l.Repayments, Repayment{Amount: amount.Minor(), At: r.At, Note: r.Note})
	}
	return l, nil
}

// decodeRecord decodes a single json record. It does not validate it.
func decodeRecord(line []byte) (Record, error) {
	var identifier struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(line, &identifier); err != nil {
		return nil, fmt.Errorf("%w: could not identify record kind: %w", ErrInvalidRecord, err)
	}
	kind, err := ParseKind(identifier.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindExpense, KindSettle:
		var j jexpense
		if err := json.Unmarshal(line, &j); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		return j.expense()
	default:
		var j jloan
		if err := json.Unmarshal(line, &j); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
		}
		return j.loan()
	}
}

// UnmarshalRecord decodes and validates a single JSON record.
func UnmarshalRecord(data []byte) (Record, error) {
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// DecodeRecords decodes a JSONL stream of records, in stream order.
// Records are checked with Validate so that only valid records reach the engine.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, err := UnmarshalRecord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return records, nil
}

// DecodeRecordsAt decodes the records selected by a jsonpath expression in a
// single JSON document, for instance "$.data.expenses[*]" in an export.
func DecodeRecordsAt(r io.Reader, path string) ([]Record, error) {
	var doc any
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("not a json document: %w", err)
	}
	selected, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	list, ok := selected.([]any)
	if !ok {
		// a path to a single object selects that object only.
		list = []any{selected}
	}

	records := make([]Record, 0, len(list))
	for i, item := range list {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", path, i, err)
		}
		rec, err := UnmarshalRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", path, i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func major(minor int64, currency string) decimal.Decimal { return M(minor, currency).Major() }

// MarshalJSON writes the expense in the records file format.
func (e Expense) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", e.Kind)
	w.Append("id", e.ID)
	w.Optional("date", e.Date.String())
	w.Optional("group", e.Group)
	w.Optional("createdBy", e.CreatedBy)
	if e.Category != General {
		w.Append("category", e.Category)
	}
	w.Optional("memo", e.Memo)
	w.Append("currency", e.Currency)
	w.Append("amount", major(e.Amount, e.Currency))

	splits := make([]json.RawMessage, 0, len(e.Splits))
	for _, s := range e.Splits {
		var sw jsonObjectWriter
		sw.Append("participant", s.Participant)
		if s.PayAmount != 0 {
			sw.Append("pay", major(s.PayAmount, e.Currency))
		}
		if s.OweAmount != 0 {
			sw.Append("owe", major(s.OweAmount, e.Currency))
		}
		if s.Paying != (s.PayAmount > 0) {
			sw.Append("paying", s.Paying)
		}
		if s.Owing != (s.OweAmount > 0) {
			sw.Append("owing", s.Owing)
		}
		b, err := sw.MarshalJSON()
		if err != nil {
			return nil, err
		}
		splits = append(splits, b)
	}
	w.Append("splits", splits)
	return w.MarshalJSON()
}

// MarshalJSON writes the loan in the records file format.
func (l Loan) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", KindLoan)
	w.Append("id", l.ID)
	w.Optional("date", l.Date.String())
	w.Append("lender", l.Lender)
	w.Append("borrower", l.Borrower)
	w.Append("currency", l.Currency)
	w.Append("principal", major(l.Principal, l.Currency))
	w.Optional("status", l.Status)
	w.Optional("due", l.EstimatedReturnDate.String())
	if len(l.Repayments) > 0 {
		reps := make([]jrepayment, len(l.Repayments))
		for i, r := range l.Repayments {
			reps[i] = jrepayment{Amount: major(r.Amount, l.Currency), At: r.At.UTC(), Note: r.Note}
		}
		w.Append("repayments", reps)
	}
	if !l.ClosedAt.IsZero() {
		w.Append("closedAt", l.ClosedAt.UTC())
	}
	w.Optional("closeNote", l.CloseNote)
	w.Optional("memo", l.Memo)
	return w.MarshalJSON()
}

// EncodeRecord writes a single record as one JSONL line.
func EncodeRecord(w io.Writer, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record %q: %w", rec.Ident(), err)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("failed to write record %q: %w", rec.Ident(), err)
	}
	return nil
}

// EncodeRecords writes records in JSONL format, in the given order.
func EncodeRecords(w io.Writer, records []Record) error {
	for _, rec := range records {
		if err := EncodeRecord(w, rec); err != nil {
			return err
		}
	}
	return nil
}
