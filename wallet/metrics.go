package wallet

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts wallet operations. A nil *Metrics counts nothing.
type Metrics struct {
	operations *prometheus.CounterVec
	replays    prometheus.Counter
}

// NewMetrics creates the wallet counters and registers them in reg, when not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "settle_wallet_operations_total",
			Help: "Wallet operations by action and outcome.",
		}, []string{"action", "outcome"}),
		replays: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "settle_wallet_idempotent_replays_total",
			Help: "Operations answered from a previously recorded result.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.replays)
	}
	return m
}

// Outcome returns the metric label of an operation error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrUnsupportedCurrency):
		return "unsupported_currency"
	case errors.Is(err, ErrInvalidBucket):
		return "invalid_bucket"
	case errors.Is(err, ErrIdempotencyConflict):
		return "conflict"
	default:
		return "error"
	}
}

func (m *Metrics) observe(action Action, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(string(action), Outcome(err)).Inc()
}

func (m *Metrics) replayed() {
	if m == nil {
		return
	}
	m.replays.Inc()
}
