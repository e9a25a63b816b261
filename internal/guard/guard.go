// Package guard provides request admission checks for the API and the
// outbox consumer: sliding-window rate limiting, login lockout, broker
// circuit breaking and idempotency deduplication.
package guard

// Result is the outcome of an admission check.
type Result struct {
	Allowed bool
	Reason  string
	Guard   string
}
