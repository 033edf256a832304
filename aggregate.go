package settle

import (
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"
)

// Net holds signed balances in minor units of a single currency, keyed by
// participant. Positive values are owed, negative values owe.
type Net map[string]int64

// Sum returns the sum of all balances, zero for a conserved table.
func (n Net) Sum() int64 {
	var s int64
	for _, v := range n {
		s += v
	}
	return s
}

// totals returns the sum of positive balances and the sum of negated
// negative balances, or false when either does not fit in an int64.
func (n Net) totals() (credits, debits int64, ok bool) {
	for _, v := range n {
		switch {
		case v == math.MinInt64:
			return 0, 0, false
		case v > 0:
			credits, ok = addMinor(credits, v)
		case v < 0:
			debits, ok = addMinor(debits, -v)
		default:
			ok = true
		}
		if !ok {
			return 0, 0, false
		}
	}
	return credits, debits, true
}

// Participants returns the participants of the table in id order.
func (n Net) Participants() []string {
	return slices.Sorted(maps.Keys(n))
}

// Totals splits a subject view into what counterparties owe (owed) and
// what the subject owes them (owing), both non-negative.
func Totals(n Net) (owed, owing int64) {
	for _, v := range n {
		if v > 0 {
			owed += v
		} else {
			owing -= v
		}
	}
	return owed, owing
}

type scopeKind int

const (
	scopeAll scopeKind = iota
	scopeGroup
	scopeFriend
	scopePersonal
)

// Scope selects the entries taken into account by the aggregator.
type Scope struct {
	kind   scopeKind
	group  string
	friend [2]string
}

// AllScope keeps every entry.
func AllScope() Scope { return Scope{kind: scopeAll} }

// GroupScope keeps the entries recorded in group.
func GroupScope(group string) Scope { return Scope{kind: scopeGroup, group: group} }

// FriendScope keeps the entries between a and b, in any group.
func FriendScope(a, b string) Scope { return Scope{kind: scopeFriend, friend: [2]string{a, b}} }

// PersonalScope keeps the entries recorded outside any group.
func PersonalScope() Scope { return Scope{kind: scopePersonal} }

// Contains reports whether the entry belongs to the scope.
func (s Scope) Contains(e Entry) bool {
	switch s.kind {
	case scopeGroup:
		return e.Group == s.group
	case scopeFriend:
		a, b := s.friend[0], s.friend[1]
		return (e.From == a && e.To == b) || (e.From == b && e.To == a)
	case scopePersonal:
		return e.Group == ""
	default:
		return true
	}
}

func (s Scope) String() string {
	switch s.kind {
	case scopeGroup:
		return "group " + s.group
	case scopeFriend:
		return "friends " + s.friend[0] + " and " + s.friend[1]
	case scopePersonal:
		return "personal"
	default:
		return "all"
	}
}

// Filter iterates over the entries in scope.
func (s Scope) Filter(entries []Entry) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range entries {
			if s.Contains(e) && !yield(e) {
				return
			}
		}
	}
}

// table returns the Net of currency, creating it on first use.
func table(tables map[string]Net, currency string) Net {
	n, ok := tables[currency]
	if !ok {
		n = make(Net)
		tables[currency] = n
	}
	return n
}

// add adds delta to the balance of id, failing with ErrUnbalancedLedger when
// the balance no longer fits in an int64.
func (n Net) add(id string, delta int64, e Entry) error {
	v, ok := addMinor(n[id], delta)
	if !ok {
		return fmt.Errorf("%w: balance of %q overflows adding %s from %q", ErrUnbalancedLedger, id, e.Amount, e.Source)
	}
	n[id] = v
	return nil
}

// NetBalances folds the entries in scope into one Net per currency:
// net[to] += amount and net[from] -= amount.
// A balance out of the int64 range fails with ErrUnbalancedLedger.
func NetBalances(entries []Entry, scope Scope) (map[string]Net, error) {
	tables := make(map[string]Net)
	for e := range scope.Filter(entries) {
		n := table(tables, e.Currency())
		if err := n.add(e.To, e.Amount.Minor(), e); err != nil {
			return nil, err
		}
		if err := n.add(e.From, -e.Amount.Minor(), e); err != nil {
			return nil, err
		}
	}
	return tables, nil
}

// AggregateOptions configures Aggregate.
type AggregateOptions struct {
	// IncludeZeroBalancePairs keeps related counterparties whose balance nets to zero.
	IncludeZeroBalancePairs bool
}

// Aggregate returns, per currency, the balance of subject with each related
// counterparty: positive when the counterparty owes the subject.
//
// A counterparty is related when at least one entry links it to the subject.
// Unrelated participants never appear. A balance out of the int64 range
// fails with ErrUnbalancedLedger.
func Aggregate(entries []Entry, subject string, scope Scope, opts AggregateOptions) (map[string]Net, error) {
	tables := make(map[string]Net)
	for e := range scope.Filter(entries) {
		var counterparty string
		var delta int64
		switch subject {
		case e.To:
			counterparty, delta = e.From, e.Amount.Minor()
		case e.From:
			counterparty, delta = e.To, -e.Amount.Minor()
		default:
			continue
		}
		if err := table(tables, e.Currency()).add(counterparty, delta, e); err != nil {
			return nil, err
		}
	}

	if opts.IncludeZeroBalancePairs {
		return tables, nil
	}
	for cur, n := range tables {
		maps.DeleteFunc(n, func(_ string, v int64) bool { return v == 0 })
		if len(n) == 0 {
			delete(tables, cur)
		}
	}
	return tables, nil
}

// PairBalance returns what b owes a in currency, negative when a owes b.
// PairBalance(e, a, b, c) == -PairBalance(e, b, a, c).
func PairBalance(entries []Entry, a, b, currency string) int64 {
	var sum int64
	for e := range FriendScope(a, b).Filter(entries) {
		if e.Currency() != currency {
			continue
		}
		if e.To == a {
			sum += e.Amount.Minor()
		} else {
			sum -= e.Amount.Minor()
		}
	}
	return sum
}
