package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/settle"
	"github.com/etnz/settle/date"
	"github.com/etnz/settle/wallet"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// tableRows parses doc and returns the cells of every table body row, as text.
func tableRows(t *testing.T, doc string) [][]string {
	t.Helper()
	src := []byte(doc)
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	root := md.Parser().Parse(text.NewReader(src))

	var rows [][]string
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		row, ok := n.(*east.TableRow)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		var cells []string
		for c := row.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, cellText(c, src))
		}
		rows = append(rows, cells)
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		t.Fatalf("walking markdown: %v", err)
	}
	return rows
}

func cellText(n ast.Node, src []byte) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func TestBalances(t *testing.T) {
	doc := Balances("ann", settle.AllScope(), map[string]settle.Net{
		"EUR": {"bob": 7000, "cat": -250},
		"USD": {"dan": 2500},
	})
	rows := tableRows(t, doc)
	want := [][]string{
		{"bob", "+€70.00", "owes you"},
		{"cat", "-€2.50", "you owe"},
		{"dan", "+$25.00", "owes you"},
	}
	assertRows(t, rows, want)
	if !strings.Contains(doc, "Owed to ann: €70.00, owed by ann: €2.50") {
		t.Errorf("Balances() is missing the EUR totals:\n%s", doc)
	}
}

func TestBalances_Settled(t *testing.T) {
	doc := Balances("ann", settle.GroupScope("trip"), nil)
	if !strings.Contains(doc, "All settled up.") || !strings.Contains(doc, "group trip") {
		t.Errorf("Balances() = %q", doc)
	}
}

func TestTransfers(t *testing.T) {
	doc := Transfers([]settle.Transfer{
		{From: "bob", To: "ann", Amount: settle.M(4033, "EUR")},
		{From: "cat", To: "ann", Amount: settle.M(10934, "EUR")},
	})
	assertRows(t, tableRows(t, doc), [][]string{
		{"bob", "ann", "€40.33"},
		{"cat", "ann", "€109.34"},
	})
	if got := Transfers(nil); !strings.Contains(got, "Nothing to settle.") {
		t.Errorf("Transfers(nil) = %q", got)
	}
}

func TestLoans(t *testing.T) {
	open := settle.Loan{ID: "l1", Lender: "ann", Borrower: "bob", Principal: 50000, Currency: "EUR",
		Status: settle.LoanPartiallyRepaid, EstimatedReturnDate: date.New(2025, time.March, 1),
		Repayments: []settle.Repayment{{Amount: 10000}}}
	closed := settle.Loan{ID: "l2", Lender: "cat", Borrower: "ann", Principal: 1000, Currency: "EUR", Status: settle.LoanClosed}

	doc := Loans([]settle.Loan{closed, open}, date.New(2025, time.April, 1))
	assertRows(t, tableRows(t, doc), [][]string{
		{"l1", "ann", "bob", "€500.00", "€100.00", "€400.00", "2025-03-01 (overdue)", "partially_repaid"},
		{"l2", "cat", "ann", "€10.00", "€0.00", "€10.00", "", "closed"},
	})

	doc = Loans([]settle.Loan{open}, date.New(2025, time.April, 1))
	if strings.Contains(doc, "## Closed") {
		t.Errorf("Loans() renders an empty closed section:\n%s", doc)
	}
}

func TestSpending(t *testing.T) {
	doc := Spending("ann", "EUR", map[settle.Category]settle.Money{
		settle.Travel: settle.M(10000, "EUR"),
		settle.Food:   settle.M(2550, "EUR"),
	})
	assertRows(t, tableRows(t, doc), [][]string{
		{"food", "€25.50"},
		{"travel", "€100.00"},
		{"Total", "€125.50"},
	})
}

func TestAccounts(t *testing.T) {
	pm, err := wallet.NewPaymentMethod("pm1", "ann", "EUR")
	if err != nil {
		t.Fatal(err)
	}
	pm.Credit("INR", 100000, wallet.Available)
	pm.Hold("INR", 40000)
	idle, err := wallet.NewPaymentMethod("pm2", "bob", "USD")
	if err != nil {
		t.Fatal(err)
	}

	assertRows(t, tableRows(t, Accounts([]*wallet.PaymentMethod{pm, idle})), [][]string{
		{"pm1", "ann", "INR", "₹600.00", "₹400.00"},
		{"pm2", "bob", "USD", "$0.00", "$0.00"},
	})
}

func assertRows(t *testing.T, got, want [][]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d:\n%q", len(got), len(want), got)
	}
	for i := range want {
		if strings.Join(got[i], "|") != strings.Join(want[i], "|") {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
}
