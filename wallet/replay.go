package wallet

import "time"

// DefaultRetention is how long an idempotency token is remembered.
const DefaultRetention = 24 * time.Hour

// replay is the recorded outcome of a tokenized operation.
type replay struct {
	op      Operation
	balance Balance
	err     error
	at      time.Time
}

// replays remembers operation results by token for a retention window.
// Tokens are pruned in the order they were first seen.
type replays struct {
	retention time.Duration
	byToken   map[string]replay
	order     []string
}

func newReplays(retention time.Duration) *replays {
	return &replays{retention: retention, byToken: make(map[string]replay)}
}

func (r *replays) expired(rp replay, now time.Time) bool {
	return now.Sub(rp.at) >= r.retention
}

func (r *replays) get(token string, now time.Time) (replay, bool) {
	r.prune(now)
	rp, ok := r.byToken[token]
	if !ok || r.expired(rp, now) {
		return replay{}, false
	}
	return rp, true
}

func (r *replays) put(token string, now time.Time, rp replay) {
	rp.at = now
	if _, ok := r.byToken[token]; !ok {
		r.order = append(r.order, token)
	}
	r.byToken[token] = rp
}

func (r *replays) prune(now time.Time) {
	n := 0
	for _, token := range r.order {
		rp, ok := r.byToken[token]
		if ok && !r.expired(rp, now) {
			break
		}
		delete(r.byToken, token)
		n++
	}
	if n > 0 {
		r.order = r.order[n:]
	}
}

func (r *replays) len() int { return len(r.byToken) }
