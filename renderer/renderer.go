// Package renderer formats settle results as markdown documents.
package renderer

import (
	"io"
	"maps"
	"slices"

	"github.com/etnz/settle"
	"github.com/etnz/settle/date"
	"github.com/etnz/settle/wallet"
)

// Balances renders the balances of subject with each counterparty, per currency.
func Balances(subject string, scope settle.Scope, tables map[string]settle.Net) string {
	var r markdown
	r.Printf("# Balances of %s\n\n", subject)
	r.Printf("Scope: %s\n\n", scope)
	if len(tables) == 0 {
		r.Printf("All settled up.\n")
		return r.String()
	}

	for _, cur := range slices.Sorted(maps.Keys(tables)) {
		n := tables[cur]
		owed, owing := settle.Totals(n)
		r.Printf("## %s\n\n", cur)
		r.Printf("| Counterparty | Balance | |\n")
		r.Printf("|:---|---:|:---|\n")
		for _, who := range n.Participants() {
			v := n[who]
			r.Printf("| %s | %s | %s |\n", cell(who), settle.M(v, cur).SignedString(), direction(v))
		}
		r.Printf("\n")
		r.Printf("Owed to %s: %s, owed by %s: %s\n\n", subject, settle.M(owed, cur), subject, settle.M(owing, cur))
	}
	return r.String()
}

func direction(v int64) string {
	switch {
	case v > 0:
		return "owes you"
	case v < 0:
		return "you owe"
	default:
		return "settled"
	}
}

// Net renders the net balance of every participant, per currency.
func Net(scope settle.Scope, tables map[string]settle.Net) string {
	var r markdown
	r.Printf("# Net balances\n\n")
	r.Printf("Scope: %s\n\n", scope)
	for _, cur := range slices.Sorted(maps.Keys(tables)) {
		n := tables[cur]
		r.Printf("## %s\n\n", cur)
		r.Printf("| Participant | Net |\n")
		r.Printf("|:---|---:|\n")
		for _, who := range n.Participants() {
			r.Printf("| %s | %s |\n", cell(who), settle.M(n[who], cur).SignedString())
		}
		r.Printf("\n")
	}
	return r.String()
}

// Transfers renders a settlement plan.
func Transfers(transfers []settle.Transfer) string {
	var r markdown
	r.Printf("# Settlement plan\n\n")
	if len(transfers) == 0 {
		r.Printf("Nothing to settle.\n")
		return r.String()
	}
	r.Printf("| From | To | Amount |\n")
	r.Printf("|:---|:---|---:|\n")
	for _, t := range transfers {
		r.Printf("| %s | %s | %s |\n", cell(t.From), cell(t.To), t.Amount)
	}
	r.Printf("\n%d transfer(s).\n", len(transfers))
	return r.String()
}

// Loans renders loans, open ones first, then the closed ones.
func Loans(loans []settle.Loan, today date.Date) string {
	var r markdown
	r.Printf("# Loans\n\n")
	if len(loans) == 0 {
		r.Printf("No loans.\n")
		return r.String()
	}

	section := func(title string, keep func(settle.Loan) bool) {
		ConditionalBlock(&r, func(w io.Writer) bool {
			var b markdown
			b.Printf("## %s\n\n", title)
			b.Printf("| ID | Lender | Borrower | Principal | Repaid | Outstanding | Due | Status |\n")
			b.Printf("|:---|:---|:---|---:|---:|---:|:---|:---|\n")
			found := false
			for _, l := range loans {
				if !keep(l) {
					continue
				}
				found = true
				due := l.EstimatedReturnDate.String()
				if settle.Overdue(l, today) {
					due += " (overdue)"
				}
				b.Printf("| %s | %s | %s | %s | %s | %s | %s | %s |\n",
					cell(l.ID), cell(l.Lender), cell(l.Borrower),
					settle.M(l.Principal, l.Currency), l.Repaid(), settle.Outstanding(l),
					due, l.Status)
			}
			b.Printf("\n")
			io.WriteString(w, b.String())
			return found
		})
	}
	section("Open", func(l settle.Loan) bool { return l.Status != settle.LoanClosed })
	section("Closed", func(l settle.Loan) bool { return l.Status == settle.LoanClosed })
	return r.String()
}

// Spending renders a participant spending per category.
func Spending(participant string, currency string, spent map[settle.Category]settle.Money) string {
	var r markdown
	r.Printf("# Spending of %s in %s\n\n", participant, currency)
	r.Printf("| Category | Amount |\n")
	r.Printf("|:---|---:|\n")
	total := settle.Zero(currency)
	for _, c := range settle.Categories() {
		v, ok := spent[c]
		if !ok || v.IsZero() {
			continue
		}
		total = total.Add(v)
		r.Printf("| %s | %s |\n", c, v)
	}
	r.Printf("| **Total** | **%s** |\n", total)
	return r.String()
}

// Accounts renders payment methods and their balances.
func Accounts(pms []*wallet.PaymentMethod) string {
	var r markdown
	r.Printf("# Payment methods\n\n")
	if len(pms) == 0 {
		r.Printf("No payment methods.\n")
		return r.String()
	}
	r.Printf("| ID | Owner | Currency | Available | Pending |\n")
	r.Printf("|:---|:---|:---|---:|---:|\n")
	for _, pm := range pms {
		balances := pm.Balances()
		if len(balances) == 0 {
			cur := pm.DefaultCurrency()
			r.Printf("| %s | %s | %s | %s | %s |\n", cell(pm.ID()), cell(pm.Owner()), cur, settle.Zero(cur), settle.Zero(cur))
			continue
		}
		for _, cur := range slices.Sorted(maps.Keys(balances)) {
			b := balances[cur]
			r.Printf("| %s | %s | %s | %s | %s |\n", cell(pm.ID()), cell(pm.Owner()), cur, settle.M(b.Available, cur), settle.M(b.Pending, cur))
		}
	}
	return r.String()
}
