package wallet

import "time"

// Option configures payment methods and ledgers.
type Option func(*options)

type options struct {
	clock     func() time.Time
	retention time.Duration
	metrics   *Metrics
}

func newOptions(opts []Option) options {
	o := options{clock: time.Now, retention: DefaultRetention}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock sets the time source used to expire idempotency tokens.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithRetention sets how long idempotency tokens are remembered.
func WithRetention(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.retention = d
		}
	}
}

// WithMetrics counts operations in m.
func WithMetrics(m *Metrics) Option { return func(o *options) { o.metrics = m } }
