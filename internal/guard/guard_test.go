package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func stoppedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

// --- RateLimiter Tests ---

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Check("10.0.0.1").Allowed)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)

	rl.Check("10.0.0.1")
	rl.Check("10.0.0.1")
	result := rl.Check("10.0.0.1")

	assert.False(t, result.Allowed)
	assert.Equal(t, "rate_limiter", result.Guard)
}

func TestRateLimiter_KeysIndependent(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	assert.True(t, rl.Check("10.0.0.1").Allowed)
	assert.True(t, rl.Check("10.0.0.2").Allowed)
	assert.False(t, rl.Check("10.0.0.1").Allowed)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	base := time.Now()
	rl := NewRateLimiter(1, time.Minute).WithClock(stoppedClock(base))

	assert.True(t, rl.Check("k").Allowed)
	assert.False(t, rl.Check("k").Allowed)

	rl.WithClock(stoppedClock(base.Add(61 * time.Second)))
	assert.True(t, rl.Check("k").Allowed)
}

// --- CircuitBreaker Tests ---

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	cb.Check("topic")

	cb.RecordFailure("topic")
	cb.RecordFailure("topic")
	assert.True(t, cb.Check("topic").Allowed)

	cb.RecordFailure("topic")
	result := cb.Check("topic")
	assert.False(t, result.Allowed)
	assert.Equal(t, "circuit_breaker", result.Guard)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)
	cb.Check("topic")

	cb.RecordFailure("topic")
	cb.RecordFailure("topic")
	cb.RecordSuccess("topic")
	cb.RecordFailure("topic")
	cb.RecordFailure("topic")

	assert.True(t, cb.Check("topic").Allowed)
}

func TestCircuitBreaker_HalfOpenProbeCloses(t *testing.T) {
	base := time.Now()
	cb := NewCircuitBreaker(1, time.Minute).WithClock(stoppedClock(base))
	cb.Check("topic")
	cb.RecordFailure("topic")
	assert.False(t, cb.Check("topic").Allowed)

	cb.WithClock(stoppedClock(base.Add(2 * time.Minute)))
	assert.True(t, cb.Check("topic").Allowed)

	cb.RecordSuccess("topic")
	assert.True(t, cb.Check("topic").Allowed)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	base := time.Now()
	cb := NewCircuitBreaker(1, time.Minute).WithClock(stoppedClock(base))
	cb.Check("topic")
	cb.RecordFailure("topic")

	cb.WithClock(stoppedClock(base.Add(2 * time.Minute)))
	assert.True(t, cb.Check("topic").Allowed)

	cb.RecordFailure("topic")
	assert.False(t, cb.Check("topic").Allowed)
}

func TestCircuitBreaker_KeysIndependent(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute)
	cb.Check("a")
	cb.RecordFailure("a")

	assert.False(t, cb.Check("a").Allowed)
	assert.True(t, cb.Check("b").Allowed)
}

// --- IdempotencyGuard Tests ---

func TestIdempotency_FirstUseAllowed(t *testing.T) {
	ig := NewIdempotencyGuard(time.Hour)

	assert.True(t, ig.Check("key-1").Allowed)
}

func TestIdempotency_DuplicateBlocked(t *testing.T) {
	ig := NewIdempotencyGuard(time.Hour)

	ig.Check("key-1")
	result := ig.Check("key-1")

	assert.False(t, result.Allowed)
	assert.Equal(t, "idempotency", result.Guard)
}

func TestIdempotency_EmptyKeyAlwaysAllowed(t *testing.T) {
	ig := NewIdempotencyGuard(time.Hour)

	assert.True(t, ig.Check("").Allowed)
	assert.True(t, ig.Check("").Allowed)
}

func TestIdempotency_KeyExpiresAfterTTL(t *testing.T) {
	base := time.Now()
	ig := NewIdempotencyGuard(time.Minute).WithClock(stoppedClock(base))

	ig.Check("key-1")
	ig.WithClock(stoppedClock(base.Add(2 * time.Minute)))

	assert.True(t, ig.Check("key-1").Allowed)
}

func TestIdempotency_RemoveAllowsRetry(t *testing.T) {
	ig := NewIdempotencyGuard(time.Hour)

	ig.Check("key-1")
	ig.Remove("key-1")

	assert.True(t, ig.Check("key-1").Allowed)
}
