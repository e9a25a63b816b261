package guard

import (
	"context"
	"time"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// MaxFailedLogins before the account locks.
	MaxFailedLogins = 5

	// LockoutWindow over which failed attempts are counted.
	LockoutWindow = 15 * time.Minute
)

// LoginGuard tracks failed logins per email and locks the account after
// repeated failures. Attempts are persisted so the lockout survives
// restarts and applies across instances.
type LoginGuard struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewLoginGuard creates a LoginGuard backed by the given pool.
func NewLoginGuard(pool *pgxpool.Pool) *LoginGuard {
	return &LoginGuard{pool: pool, now: time.Now}
}

// RecordAttempt inserts a login attempt row. Best effort; a failed insert
// never blocks the login flow.
func (g *LoginGuard) RecordAttempt(ctx context.Context, email string, success bool) {
	_, _ = g.pool.Exec(ctx, `
		INSERT INTO login_attempts (email, success)
		VALUES ($1, $2)`,
		email, success)
}

// CheckLocked returns an error if the email has accumulated too many
// failed logins within the lockout window. Fails open on storage errors
// so an unavailable attempts table never blocks every login.
func (g *LoginGuard) CheckLocked(ctx context.Context, email string) error {
	var count int
	err := g.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts
		WHERE email = $1 AND success = false AND created_at > $2`,
		email, g.now().Add(-LockoutWindow)).Scan(&count)
	if err != nil {
		return nil
	}
	if count >= MaxFailedLogins {
		return domain.ErrAccountLocked()
	}
	return nil
}
