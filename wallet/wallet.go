// Package wallet keeps the per-currency balances of payment methods.
//
// Each currency of a payment method has two buckets: available money, and
// pending money put on hold. Balances change only through operations
// (credit, debit, hold, release) which are atomic: either the whole operation
// applies or nothing changes. Operations on one payment method are
// serialized; different payment methods never contend.
package wallet

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/etnz/settle"
)

// Bucket names a sub-balance of a currency.
type Bucket string

const (
	Available Bucket = "available"
	Pending   Bucket = "pending"
)

// ParseBucket parses a bucket name. The empty name is Available.
func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(s); b {
	case "":
		return Available, nil
	case Available, Pending:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBucket, s)
	}
}

// Action is the kind of a balance operation.
type Action string

const (
	Credit  Action = "credit"
	Debit   Action = "debit"
	Hold    Action = "hold"
	Release Action = "release"
)

// ParseAction parses an action name.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case Credit, Debit, Hold, Release:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAction, s)
	}
}

// Balance is the pair of buckets of one currency, in minor units.
type Balance struct {
	Available int64 `json:"available"`
	Pending   int64 `json:"pending"`
}

// Total returns available plus pending.
func (b Balance) Total() int64 { return b.Available + b.Pending }

func (b Balance) get(k Bucket) int64 {
	if k == Pending {
		return b.Pending
	}
	return b.Available
}

func (b *Balance) add(k Bucket, v int64) {
	if k == Pending {
		b.Pending += v
	} else {
		b.Available += v
	}
}

// Operation is a balance change request. Bucket is only used by credit and
// debit, and defaults to Available. A non-empty Token makes the operation
// idempotent.
type Operation struct {
	Action   Action `json:"action"`
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
	Bucket   Bucket `json:"bucket,omitempty"`
	Token    string `json:"token,omitempty"`
}

func (op Operation) String() string {
	s := fmt.Sprintf("%s %s", op.Action, settle.M(op.Amount, op.Currency))
	if op.Action == Credit || op.Action == Debit {
		s += " " + string(cmp.Or(op.Bucket, Available))
	}
	return s
}

// same reports whether two operations carry the same request.
func (op Operation) same(o Operation) bool {
	return op.Action == o.Action && op.Currency == o.Currency && op.Amount == o.Amount && op.Bucket == o.Bucket
}

// PaymentMethod is an account holding money in several currencies.
// It is safe for concurrent use.
type PaymentMethod struct {
	id              string
	owner           string
	defaultCurrency string

	mu       sync.Mutex
	balances map[string]Balance
	replays  *replays
	deleted  bool
	clock    func() time.Time
	metrics  *Metrics
}

// NewPaymentMethod returns an empty payment method.
func NewPaymentMethod(id, owner, defaultCurrency string, opts ...Option) (*PaymentMethod, error) {
	if id == "" || owner == "" {
		return nil, fmt.Errorf("payment method needs an id and an owner")
	}
	if err := settle.ValidateCurrency(defaultCurrency); err != nil {
		return nil, fmt.Errorf("payment method %q: %w", id, err)
	}
	o := newOptions(opts)
	return &PaymentMethod{
		id:              id,
		owner:           owner,
		defaultCurrency: defaultCurrency,
		balances:        make(map[string]Balance),
		replays:         newReplays(o.retention),
		clock:           o.clock,
		metrics:         o.metrics,
	}, nil
}

func (pm *PaymentMethod) ID() string              { return pm.id }
func (pm *PaymentMethod) Owner() string           { return pm.owner }
func (pm *PaymentMethod) DefaultCurrency() string { return pm.defaultCurrency }

// Balance returns the buckets of currency, zero when the currency was never used.
func (pm *PaymentMethod) Balance(currency string) Balance {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.balances[currency]
}

// Balances returns a copy of every currency balance.
func (pm *PaymentMethod) Balances() map[string]Balance {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return maps.Clone(pm.balances)
}

// Currencies returns the currencies with a bucket, sorted.
func (pm *PaymentMethod) Currencies() []string {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return slices.Sorted(maps.Keys(pm.balances))
}

// Credit adds amount to the bucket of currency.
func (pm *PaymentMethod) Credit(currency string, amount int64, bucket Bucket) (Balance, error) {
	return pm.Apply(Operation{Action: Credit, Currency: currency, Amount: amount, Bucket: bucket})
}

// Debit removes amount from the bucket of currency, failing with
// ErrInsufficientFunds when the bucket holds less.
func (pm *PaymentMethod) Debit(currency string, amount int64, bucket Bucket) (Balance, error) {
	return pm.Apply(Operation{Action: Debit, Currency: currency, Amount: amount, Bucket: bucket})
}

// Hold moves amount from available to pending.
func (pm *PaymentMethod) Hold(currency string, amount int64) (Balance, error) {
	return pm.Apply(Operation{Action: Hold, Currency: currency, Amount: amount})
}

// Release moves amount from pending back to available.
func (pm *PaymentMethod) Release(currency string, amount int64) (Balance, error) {
	return pm.Apply(Operation{Action: Release, Currency: currency, Amount: amount})
}

// Apply runs op atomically and returns the resulting balance of its currency.
//
// When op carries a token already seen within the retention window, the
// result recorded for that token is returned and nothing is applied again.
func (pm *PaymentMethod) Apply(op Operation) (Balance, error) {
	if op.Bucket == "" {
		op.Bucket = Available
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	if pm.deleted {
		return Balance{}, fmt.Errorf("%w: %q", ErrUnknownAccount, pm.id)
	}

	now := pm.clock()
	if op.Token != "" {
		if prior, ok := pm.replays.get(op.Token, now); ok {
			if !prior.op.same(op) {
				pm.metrics.observe(op.Action, ErrIdempotencyConflict)
				return Balance{}, fmt.Errorf("%w: token %q was used for %s", ErrIdempotencyConflict, op.Token, prior.op)
			}
			pm.metrics.replayed()
			return prior.balance, prior.err
		}
	}

	b, err := pm.apply(op)
	if op.Token != "" {
		pm.replays.put(op.Token, now, replay{op: op, balance: b, err: err})
	}
	pm.metrics.observe(op.Action, err)
	return b, err
}

// apply computes the new balance on a copy and commits it only on success.
// pm.mu must be held.
func (pm *PaymentMethod) apply(op Operation) (Balance, error) {
	if err := settle.ValidateCurrency(op.Currency); err != nil {
		return Balance{}, err
	}
	if op.Bucket != Available && op.Bucket != Pending {
		return Balance{}, fmt.Errorf("%w: %q", ErrInvalidBucket, op.Bucket)
	}
	if op.Amount <= 0 {
		return Balance{}, fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidAmount, op.Action, op.Amount)
	}

	b, exists := pm.balances[op.Currency]
	amount := settle.M(op.Amount, op.Currency)
	switch op.Action {
	case Credit:
		// Total stays within int64, so hold and release cannot overflow a bucket.
		if b.Total() > math.MaxInt64-op.Amount {
			return b, fmt.Errorf("%w: crediting %s overflows the %s balance", ErrInvalidAmount, amount, op.Currency)
		}
		b.add(op.Bucket, op.Amount)
	case Debit:
		if !exists || b.get(op.Bucket) < op.Amount {
			return b, fmt.Errorf("%w: cannot debit %s from %s %s", ErrInsufficientFunds, amount, op.Bucket, settle.M(b.get(op.Bucket), op.Currency))
		}
		b.add(op.Bucket, -op.Amount)
	case Hold:
		if !exists || b.Available < op.Amount {
			return b, fmt.Errorf("%w: cannot hold %s from available %s", ErrInsufficientFunds, amount, settle.M(b.Available, op.Currency))
		}
		b.Available -= op.Amount
		b.Pending += op.Amount
	case Release:
		if b.Pending < op.Amount {
			return b, fmt.Errorf("%w: cannot release %s from pending %s", ErrInvalidAmount, amount, settle.M(b.Pending, op.Currency))
		}
		b.Pending -= op.Amount
		b.Available += op.Amount
	default:
		return b, fmt.Errorf("%w: %q", ErrInvalidAction, op.Action)
	}
	pm.balances[op.Currency] = b
	return b, nil
}

// inUse reports whether any bucket holds money. pm.mu must be held.
func (pm *PaymentMethod) inUse() bool {
	for _, b := range pm.balances {
		if b.Available != 0 || b.Pending != 0 {
			return true
		}
	}
	return false
}
