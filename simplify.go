package settle

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// Transfer is a payment of Amount from From to To.
type Transfer struct {
	From   string
	To     string
	Amount Money
}

func (t Transfer) String() string { return fmt.Sprintf("%s→%s %s", t.From, t.To, t.Amount) }

// position is a participant's remaining balance during matching, always positive.
type position struct {
	id   string
	left int64
}

// Simplify returns the transfers that bring every balance of net to zero.
//
// Creditors and debtors are sorted by participant id and matched greedily:
// the current debtor pays the current creditor the smaller of their
// remaining amounts, and whichever reaches zero is passed. For n
// participants with a nonzero balance at most n-1 transfers are returned.
// A table that does not sum to zero fails with ErrUnbalancedLedger.
func Simplify(currency string, net Net) ([]Transfer, error) {
	credits, debits, ok := net.totals()
	if !ok {
		return nil, fmt.Errorf("%w: %s balances overflow", ErrUnbalancedLedger, currency)
	}
	if credits != debits {
		return nil, fmt.Errorf("%w: %s credits %s, debits %s", ErrUnbalancedLedger, currency, M(credits, currency), M(debits, currency))
	}

	var creditors, debtors []position
	for id, v := range net {
		switch {
		case v > 0:
			creditors = append(creditors, position{id: id, left: v})
		case v < 0:
			debtors = append(debtors, position{id: id, left: -v})
		}
	}
	byID := func(a, b position) int { return cmp.Compare(a.id, b.id) }
	slices.SortFunc(creditors, byID)
	slices.SortFunc(debtors, byID)

	transfers := make([]Transfer, 0, max(len(creditors)+len(debtors)-1, 0))
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]
		amount := min(d.left, c.left)
		transfers = append(transfers, Transfer{From: d.id, To: c.id, Amount: M(amount, currency)})
		d.left -= amount
		c.left -= amount
		if d.left == 0 {
			i++
		}
		if c.left == 0 {
			j++
		}
	}
	return transfers, nil
}

// SimplifyAll simplifies every currency table, in currency order.
func SimplifyAll(tables map[string]Net) ([]Transfer, error) {
	var all []Transfer
	for _, cur := range slices.Sorted(maps.Keys(tables)) {
		transfers, err := Simplify(cur, tables[cur])
		if err != nil {
			return nil, err
		}
		all = append(all, transfers...)
	}
	return all, nil
}

// Apply returns the balances of net after paying the transfers: the payer
// balance rises and the payee balance falls by each amount.
func Apply(net Net, transfers []Transfer) Net {
	out := maps.Clone(net)
	if out == nil {
		out = make(Net)
	}
	for _, t := range transfers {
		out[t.From] += t.Amount.Minor()
		out[t.To] -= t.Amount.Minor()
	}
	return out
}
