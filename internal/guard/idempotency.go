package guard

import (
	"sync"
	"time"
)

// IdempotencyGuard deduplicates mutating requests by client-supplied
// idempotency key. Keys are held in memory and evicted after the TTL,
// which bounds both replay protection and memory.
type IdempotencyGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewIdempotencyGuard creates an idempotency guard with the given key TTL.
func NewIdempotencyGuard(ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{
		seen: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// WithClock overrides the guard clock. Test hook.
func (ig *IdempotencyGuard) WithClock(now func() time.Time) *IdempotencyGuard {
	ig.now = now
	return ig
}

// Check marks the key as seen and reports whether it was fresh. An empty
// key is always allowed; clients opt in by sending one.
func (ig *IdempotencyGuard) Check(key string) Result {
	if key == "" {
		return Result{Allowed: true}
	}

	ig.mu.Lock()
	defer ig.mu.Unlock()

	now := ig.now()
	for k, at := range ig.seen {
		if now.Sub(at) > ig.ttl {
			delete(ig.seen, k)
		}
	}

	if at, ok := ig.seen[key]; ok && now.Sub(at) <= ig.ttl {
		return Result{
			Allowed: false,
			Reason:  "duplicate request: idempotency key already processed",
			Guard:   "idempotency",
		}
	}

	ig.seen[key] = now
	return Result{Allowed: true}
}

// Remove forgets a key so a failed request can be retried with the same one.
func (ig *IdempotencyGuard) Remove(key string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.seen, key)
}
