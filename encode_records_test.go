package settle

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/etnz/settle/date"
)

const recordsJSONL = `{"kind":"expense","id":"e1","date":"2025-01-10","group":"trip","createdBy":"ann","category":"food","currency":"EUR","amount":300,"splits":[{"participant":"ann","pay":300,"owe":100},{"participant":"bob","owe":100},{"participant":"cat","owe":100}]}
{"kind":"settle","id":"s1","date":"2025-01-11","group":"trip","currency":"EUR","amount":100,"splits":[{"participant":"bob","pay":100},{"participant":"ann","owe":100}]}
{"kind":"loan","id":"l1","date":"2025-02-01","lender":"ann","borrower":"bob","currency":"EUR","principal":500,"status":"partially_repaid","due":"2025-06-30","repayments":[{"amount":100.5,"at":"2025-03-01T10:00:00Z","note":"first"}]}
`

func TestDecodeRecords(t *testing.T) {
	recs, err := DecodeRecords(strings.NewReader(recordsJSONL))
	if err != nil {
		t.Fatalf("DecodeRecords() unexpected error: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("DecodeRecords() returned %d records, want 3", len(recs))
	}

	e, ok := recs[0].(Expense)
	if !ok {
		t.Fatalf("record 0 is %T, want Expense", recs[0])
	}
	if e.Amount != 30000 || e.Category != Food || e.Group != "trip" || e.Date != date.MustParse("2025-01-10") {
		t.Errorf("expense = %+v", e)
	}
	if s := e.Splits[0]; s.PayAmount != 30000 || s.OweAmount != 10000 || !s.Paying || !s.Owing {
		t.Errorf("split 0 = %+v", s)
	}

	if s, ok := recs[1].(Expense); !ok || s.Kind != KindSettle {
		t.Errorf("record 1 = %#v, want a settlement", recs[1])
	}

	l, ok := recs[2].(Loan)
	if !ok {
		t.Fatalf("record 2 is %T, want Loan", recs[2])
	}
	if l.Principal != 50000 || l.Repayments[0].Amount != 10050 || l.EstimatedReturnDate != date.MustParse("2025-06-30") {
		t.Errorf("loan = %+v", l)
	}
	if got := Outstanding(l).Minor(); got != 39950 {
		t.Errorf("Outstanding() = %d, want 39950", got)
	}
}

func TestEncodeRecords_RoundTrip(t *testing.T) {
	recs, err := DecodeRecords(strings.NewReader(recordsJSONL))
	if err != nil {
		t.Fatalf("DecodeRecords() unexpected error: %v", err)
	}
	var b bytes.Buffer
	if err := EncodeRecords(&b, recs); err != nil {
		t.Fatalf("EncodeRecords() unexpected error: %v", err)
	}
	if b.String() != recordsJSONL {
		t.Errorf("EncodeRecords() =\n%s\nwant\n%s", b.String(), recordsJSONL)
	}
}

func TestDecodeRecords_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		line    string
		wantErr error
	}{
		{name: "unknown kind", line: `{"kind":"gift","id":"g1"}`, wantErr: ErrInvalidRecord},
		{name: "too many decimals", line: `{"kind":"expense","id":"e1","currency":"EUR","amount":1.234,"splits":[]}`, wantErr: ErrInvalidAmount},
		{name: "unknown currency", line: `{"kind":"expense","id":"e1","currency":"QQQ","amount":1,"splits":[]}`, wantErr: ErrUnsupportedCurrency},
		{name: "malformed split", line: `{"kind":"expense","id":"e1","currency":"EUR","amount":10,"splits":[{"participant":"a","pay":10},{"participant":"b","owe":9}]}`, wantErr: ErrMalformedSplit},
		{name: "unknown category", line: `{"kind":"expense","id":"e1","category":"bribes","currency":"EUR","amount":10,"splits":[]}`, wantErr: ErrInvalidRecord},
		{name: "amount out of range", line: `{"kind":"expense","id":"e1","currency":"EUR","amount":100000000000000000000,"splits":[{"participant":"a","pay":100000000000000000000},{"participant":"b","owe":100000000000000000000}]}`, wantErr: ErrInvalidAmount},
		{name: "split out of range", line: `{"kind":"expense","id":"e1","currency":"EUR","amount":10,"splits":[{"participant":"a","pay":1e20},{"participant":"b","owe":10}]}`, wantErr: ErrInvalidAmount},
		{name: "principal out of range", line: `{"kind":"loan","id":"l1","lender":"a","borrower":"b","currency":"EUR","principal":1e20}`, wantErr: ErrInvalidAmount},
		{name: "repayments past int64", line: `{"kind":"loan","id":"l1","lender":"a","borrower":"b","currency":"EUR","principal":10,"repayments":[{"amount":5},{"amount":92233720368547758.07}]}`, wantErr: ErrOverRepayment},
		{name: "over repaid loan", line: `{"kind":"loan","id":"l1","lender":"a","borrower":"b","currency":"EUR","principal":10,"repayments":[{"amount":11}]}`, wantErr: ErrOverRepayment},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeRecords(strings.NewReader(tc.line))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("DecodeRecords() error = %v, want %v", err, tc.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "line 1") {
				t.Errorf("error %q does not locate the line", err)
			}
		})
	}
}

func TestDecodeRecordsAt(t *testing.T) {
	export := `{"data":{"user":"ann","expenses":[
		{"kind":"expense","id":"e1","currency":"USD","amount":20,"splits":[{"participant":"ann","pay":20,"owe":10},{"participant":"bob","owe":10}]},
		{"kind":"settle","id":"s1","currency":"USD","amount":10,"splits":[{"participant":"bob","pay":10},{"participant":"ann","owe":10}]}
	]}}`
	recs, err := DecodeRecordsAt(strings.NewReader(export), "$.data.expenses[*]")
	if err != nil {
		t.Fatalf("DecodeRecordsAt() unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("DecodeRecordsAt() returned %d records, want 2", len(recs))
	}
	entries, err := Normalize(recs)
	if err != nil {
		t.Fatalf("Normalize() unexpected error: %v", err)
	}
	if got := PairBalance(entries, "ann", "bob", "USD"); got != 0 {
		t.Errorf("PairBalance() = %d, want 0", got)
	}
}

func TestEncodeRecord_ExplicitFlags(t *testing.T) {
	e := NewExpense("e1", date.Date{}, "EUR", 100, Pays("a", 100), Owes("b", 100))
	e.Splits[1].Owing = false // only Validate would reject it, the codec keeps it.
	var b bytes.Buffer
	if err := EncodeRecord(&b, e); err != nil {
		t.Fatal(err)
	}
	want := `{"kind":"expense","id":"e1","currency":"EUR","amount":1,"splits":[{"participant":"a","pay":1},{"participant":"b","owe":1,"owing":false}]}` + "\n"
	if b.String() != want {
		t.Errorf("EncodeRecord() = %s, want %s", b.String(), want)
	}
}
