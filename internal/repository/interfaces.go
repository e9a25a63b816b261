package repository

import (
	"context"
	"time"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// PlayerRepository provides access to players and their sanction state.
type PlayerRepository interface {
	// FindByID returns a player by ID, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Player, error)

	// Create inserts a new player.
	Create(ctx context.Context, db DBTX, player *domain.Player) error

	// UpdateReputation writes back a freshly recomputed reputation score.
	UpdateReputation(ctx context.Context, db DBTX, id uuid.UUID, score float64) error

	// SetSuspension sets the suspension flag, reason and expiry
	// (last-write-wins on the expiry).
	SetSuspension(ctx context.Context, db DBTX, id uuid.UUID, reason string, expiresAt time.Time) error

	// SetBan marks the player permanently banned and inactive.
	SetBan(ctx context.Context, db DBTX, id uuid.UUID, reason string) error

	// InsertWarning appends to the player's warning log.
	InsertWarning(ctx context.Context, db DBTX, w *domain.Warning) error

	// ClearExpiredSuspensions lifts suspensions whose expiry has passed.
	// Bans (no expiry) are untouched. Returns the number lifted.
	ClearExpiredSuspensions(ctx context.Context, db DBTX, now time.Time) (int, error)

	// IncrementMatchesPlayed bumps matches_played for the given players.
	IncrementMatchesPlayed(ctx context.Context, db DBTX, ids []uuid.UUID) error

	// FindWithinRadius returns players whose home point lies within the
	// given distance (meters) of the point. The geo-query collaborator.
	FindWithinRadius(ctx context.Context, db DBTX, lat, lng float64, meters int) ([]domain.Player, error)
}

// MatchRepository provides access to matches.
type MatchRepository interface {
	// FindByID returns a match by ID, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Match, error)

	// LockForUpdate acquires the per-match row lock. Roster mutations
	// serialize on this lock.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Match, error)

	// Create inserts a new match.
	Create(ctx context.Context, db DBTX, m *domain.Match) error

	// Update persists rosters, status and timeline fields.
	Update(ctx context.Context, db DBTX, m *domain.Match) error

	// FindNearby returns open or full upcoming matches within the radius.
	FindNearby(ctx context.Context, db DBTX, lat, lng float64, meters int) ([]domain.Match, error)
}

// RatingRepository provides access to ratings.
type RatingRepository interface {
	// Insert creates a rating. Returns domain.ErrDuplicateRating if the
	// (rated_player, rated_by, match) unique index rejects it.
	Insert(ctx context.Context, db DBTX, r *domain.Rating) error

	// Exists checks for a prior rating on the same triple.
	Exists(ctx context.Context, db DBTX, ratedPlayer, ratedBy, matchID uuid.UUID) (bool, error)

	// FindMutual returns the symmetric rating (ratee rated rater, same
	// match), or nil.
	FindMutual(ctx context.Context, db DBTX, ratedPlayer, ratedBy, matchID uuid.UUID) (*domain.Rating, error)

	// SetMutual marks a rating as part of a mutual pair.
	SetMutual(ctx context.Context, db DBTX, id uuid.UUID) error

	// ListByPlayer returns every rating received by a player.
	ListByPlayer(ctx context.Context, db DBTX, playerID uuid.UUID) ([]domain.Rating, error)
}

// ReportRepository provides access to reports.
type ReportRepository interface {
	// Insert creates a report.
	Insert(ctx context.Context, db DBTX, r *domain.Report) error

	// FindByID returns a report by ID, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Report, error)

	// CountAgainstSince counts reports against a player created at or
	// after the cutoff.
	CountAgainstSince(ctx context.Context, db DBTX, playerID uuid.UUID, since time.Time) (int, error)

	// CountCriticalUndismissed counts all-time critical reports against a
	// player whose status is not dismissed.
	CountCriticalUndismissed(ctx context.Context, db DBTX, playerID uuid.UUID) (int, error)

	// Resolve writes the resolution and flips status to resolved. The
	// resolution column is write-once; a second resolve is a no-op.
	Resolve(ctx context.Context, db DBTX, id uuid.UUID, res domain.Resolution) error

	// UpdateStatus transitions a report's status (and priority, for
	// escalation).
	UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.ReportStatus, priority int) error

	// ListForReview returns reports matching the review filter, ordered
	// by priority descending then age ascending.
	ListForReview(ctx context.Context, db DBTX, f ReviewFilter) ([]domain.Report, error)

	// StatsByPlayer aggregates report counts for a player.
	StatsByPlayer(ctx context.Context, db DBTX, playerID uuid.UUID) (domain.ReportStats, error)
}

// ReviewFilter narrows the admin review queue.
type ReviewFilter struct {
	Statuses    []domain.ReportStatus
	Severity    domain.Severity
	Category    domain.ReportCategory
	MinPriority int
	Limit       int
}

// RequestRepository provides access to match requests.
type RequestRepository interface {
	// Insert creates a request.
	Insert(ctx context.Context, db DBTX, r *domain.MatchRequest) error

	// FindByID returns a request by ID, or nil if absent.
	FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.MatchRequest, error)

	// LockForUpdate acquires the per-request row lock for contact/join
	// mutations.
	LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.MatchRequest, error)

	// Update persists tracking lists, counters and status.
	Update(ctx context.Context, db DBTX, r *domain.MatchRequest) error

	// ExpireDue bulk-transitions active requests past expiry to expired.
	// Returns the affected count.
	ExpireDue(ctx context.Context, db DBTX, now time.Time) (int, error)
}

// OutboxRepository provides access to the event_outbox table.
type OutboxRepository interface {
	// Insert stages an event in the same transaction as the state change.
	Insert(ctx context.Context, db DBTX, draft domain.OutboxDraft) error

	// FetchUnpublished returns staged events for the poller.
	FetchUnpublished(ctx context.Context, db DBTX, limit int) ([]domain.OutboxDraft, error)

	// MarkPublished stamps events as published.
	MarkPublished(ctx context.Context, db DBTX, ids []int64) error
}

// AuthUserRepository provides access to auth_users.
type AuthUserRepository interface {
	// FindByEmail returns an auth user by email, or nil if absent.
	FindByEmail(ctx context.Context, db DBTX, email string) (*domain.AuthUser, error)

	// Create inserts a new auth user.
	Create(ctx context.Context, db DBTX, user *domain.AuthUser) error
}
