package wallet

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Ledger is a registry of payment methods. It is safe for concurrent use.
type Ledger struct {
	opts []Option

	mu       sync.RWMutex
	accounts map[string]*PaymentMethod
}

// NewLedger returns an empty ledger. Options apply to every payment method it creates.
func NewLedger(opts ...Option) *Ledger {
	return &Ledger{opts: opts, accounts: make(map[string]*PaymentMethod)}
}

// Create registers a new payment method with a generated id.
func (l *Ledger) Create(owner, defaultCurrency string) (*PaymentMethod, error) {
	return l.CreateWithID(uuid.NewString(), owner, defaultCurrency)
}

// CreateWithID registers a new payment method under id.
func (l *Ledger) CreateWithID(id, owner, defaultCurrency string) (*PaymentMethod, error) {
	pm, err := NewPaymentMethod(id, owner, defaultCurrency, l.opts...)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.accounts[id]; exists {
		return nil, fmt.Errorf("%w: %q", ErrExists, id)
	}
	l.accounts[id] = pm
	return pm, nil
}

// Get returns the payment method id, or ErrUnknownAccount.
func (l *Ledger) Get(id string) (*PaymentMethod, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	pm, ok := l.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAccount, id)
	}
	return pm, nil
}

// List returns every payment method, by owner then id.
func (l *Ledger) List() []*PaymentMethod {
	l.mu.RLock()
	list := slices.Collect(maps.Values(l.accounts))
	l.mu.RUnlock()
	slices.SortFunc(list, func(a, b *PaymentMethod) int {
		return cmp.Or(cmp.Compare(a.owner, b.owner), cmp.Compare(a.id, b.id))
	})
	return list
}

// Apply runs op on the payment method id.
func (l *Ledger) Apply(id string, op Operation) (Balance, error) {
	pm, err := l.Get(id)
	if err != nil {
		return Balance{}, err
	}
	return pm.Apply(op)
}

// Delete removes the payment method id. It fails with ErrInUse while any of
// its buckets holds money. Operations still running on a deleted payment
// method fail with ErrUnknownAccount.
func (l *Ledger) Delete(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	pm, ok := l.accounts[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAccount, id)
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if pm.inUse() {
		return fmt.Errorf("%w: %q still holds money", ErrInUse, id)
	}
	pm.deleted = true
	delete(l.accounts, id)
	return nil
}
