package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/footyheroes/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// In-memory repository fakes. The db handle is ignored; the paths under
// test never open a real transaction, so the services are built with a
// nil pool.

var (
	_ repository.PlayerRepository   = (*fakePlayers)(nil)
	_ repository.MatchRepository    = (*fakeMatches)(nil)
	_ repository.RatingRepository   = (*fakeRatings)(nil)
	_ repository.ReportRepository   = (*fakeReports)(nil)
	_ repository.RequestRepository  = (*fakeRequests)(nil)
	_ repository.OutboxRepository   = (*fakeOutbox)(nil)
	_ repository.AuthUserRepository = (*fakeAuthUsers)(nil)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*domain.AppError)
	require.True(t, ok, "expected *domain.AppError, got %T", err)
	return appErr.Code
}

// --- players ---

type fakePlayers struct {
	players    map[uuid.UUID]*domain.Player
	warnings   []domain.Warning
	nearby     []domain.Player
	lastRadius int
}

func newFakePlayers(players ...*domain.Player) *fakePlayers {
	f := &fakePlayers{players: make(map[uuid.UUID]*domain.Player)}
	for _, p := range players {
		f.players[p.ID] = p
	}
	return f
}

func (f *fakePlayers) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Player, error) {
	return f.players[id], nil
}

func (f *fakePlayers) Create(_ context.Context, _ repository.DBTX, p *domain.Player) error {
	f.players[p.ID] = p
	return nil
}

func (f *fakePlayers) UpdateReputation(_ context.Context, _ repository.DBTX, id uuid.UUID, score float64) error {
	if p, ok := f.players[id]; ok {
		p.ReputationScore = score
	}
	return nil
}

func (f *fakePlayers) SetSuspension(_ context.Context, _ repository.DBTX, id uuid.UUID, reason string, expiresAt time.Time) error {
	p := f.players[id]
	p.IsSuspended = true
	p.SuspensionReason = reason
	t := expiresAt
	p.SuspensionExpiresAt = &t
	return nil
}

func (f *fakePlayers) SetBan(_ context.Context, _ repository.DBTX, id uuid.UUID, reason string) error {
	p := f.players[id]
	p.IsBanned = true
	p.IsSuspended = true
	p.IsActive = false
	p.SuspensionReason = reason
	p.SuspensionExpiresAt = nil
	return nil
}

func (f *fakePlayers) InsertWarning(_ context.Context, _ repository.DBTX, w *domain.Warning) error {
	f.warnings = append(f.warnings, *w)
	return nil
}

func (f *fakePlayers) ClearExpiredSuspensions(_ context.Context, _ repository.DBTX, now time.Time) (int, error) {
	lifted := 0
	for _, p := range f.players {
		if p.IsSuspended && !p.IsBanned && p.SuspensionExpiresAt != nil && now.After(*p.SuspensionExpiresAt) {
			p.IsSuspended = false
			p.SuspensionReason = ""
			p.SuspensionExpiresAt = nil
			lifted++
		}
	}
	return lifted, nil
}

func (f *fakePlayers) IncrementMatchesPlayed(_ context.Context, _ repository.DBTX, ids []uuid.UUID) error {
	for _, id := range ids {
		if p, ok := f.players[id]; ok {
			p.MatchesPlayed++
		}
	}
	return nil
}

func (f *fakePlayers) FindWithinRadius(_ context.Context, _ repository.DBTX, lat, lng float64, meters int) ([]domain.Player, error) {
	f.lastRadius = meters
	return f.nearby, nil
}

// --- matches ---

type fakeMatches struct {
	matches    map[uuid.UUID]*domain.Match
	created    []*domain.Match
	nearby     []domain.Match
	lastRadius int
}

func newFakeMatches(matches ...*domain.Match) *fakeMatches {
	f := &fakeMatches{matches: make(map[uuid.UUID]*domain.Match)}
	for _, m := range matches {
		f.matches[m.ID] = m
	}
	return f
}

func (f *fakeMatches) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Match, error) {
	return f.matches[id], nil
}

func (f *fakeMatches) LockForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Match, error) {
	return f.matches[id], nil
}

func (f *fakeMatches) Create(_ context.Context, _ repository.DBTX, m *domain.Match) error {
	f.matches[m.ID] = m
	f.created = append(f.created, m)
	return nil
}

func (f *fakeMatches) Update(_ context.Context, _ repository.DBTX, m *domain.Match) error {
	f.matches[m.ID] = m
	return nil
}

func (f *fakeMatches) FindNearby(_ context.Context, _ repository.DBTX, lat, lng float64, meters int) ([]domain.Match, error) {
	f.lastRadius = meters
	return f.nearby, nil
}

// --- ratings ---

type fakeRatings struct {
	ratings []domain.Rating
}

func (f *fakeRatings) Insert(_ context.Context, _ repository.DBTX, r *domain.Rating) error {
	f.ratings = append(f.ratings, *r)
	return nil
}

func (f *fakeRatings) Exists(_ context.Context, _ repository.DBTX, ratedPlayer, ratedBy, matchID uuid.UUID) (bool, error) {
	for _, r := range f.ratings {
		if r.RatedPlayer == ratedPlayer && r.RatedBy == ratedBy && r.MatchID == matchID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRatings) FindMutual(_ context.Context, _ repository.DBTX, ratedPlayer, ratedBy, matchID uuid.UUID) (*domain.Rating, error) {
	for i := range f.ratings {
		r := &f.ratings[i]
		if r.RatedPlayer == ratedBy && r.RatedBy == ratedPlayer && r.MatchID == matchID {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRatings) SetMutual(_ context.Context, _ repository.DBTX, id uuid.UUID) error {
	for i := range f.ratings {
		if f.ratings[i].ID == id {
			f.ratings[i].IsMutual = true
		}
	}
	return nil
}

func (f *fakeRatings) ListByPlayer(_ context.Context, _ repository.DBTX, playerID uuid.UUID) ([]domain.Rating, error) {
	var out []domain.Rating
	for _, r := range f.ratings {
		if r.RatedPlayer == playerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- reports ---

type fakeReports struct {
	reports    map[uuid.UUID]*domain.Report
	recent     int
	critical   int
	queue      []domain.Report
	lastFilter repository.ReviewFilter
	stats      domain.ReportStats
}

func newFakeReports(reports ...*domain.Report) *fakeReports {
	f := &fakeReports{reports: make(map[uuid.UUID]*domain.Report)}
	for _, r := range reports {
		f.reports[r.ID] = r
	}
	return f
}

func (f *fakeReports) Insert(_ context.Context, _ repository.DBTX, r *domain.Report) error {
	f.reports[r.ID] = r
	return nil
}

func (f *fakeReports) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.Report, error) {
	return f.reports[id], nil
}

func (f *fakeReports) CountAgainstSince(_ context.Context, _ repository.DBTX, playerID uuid.UUID, since time.Time) (int, error) {
	return f.recent, nil
}

func (f *fakeReports) CountCriticalUndismissed(_ context.Context, _ repository.DBTX, playerID uuid.UUID) (int, error) {
	return f.critical, nil
}

func (f *fakeReports) Resolve(_ context.Context, _ repository.DBTX, id uuid.UUID, res domain.Resolution) error {
	r := f.reports[id]
	if !r.Resolve(res) {
		return domain.ErrConflict("report already carries a resolution")
	}
	return nil
}

func (f *fakeReports) UpdateStatus(_ context.Context, _ repository.DBTX, id uuid.UUID, status domain.ReportStatus, priority int) error {
	r := f.reports[id]
	r.Status = status
	r.Priority = priority
	return nil
}

func (f *fakeReports) ListForReview(_ context.Context, _ repository.DBTX, filter repository.ReviewFilter) ([]domain.Report, error) {
	f.lastFilter = filter
	return f.queue, nil
}

func (f *fakeReports) StatsByPlayer(_ context.Context, _ repository.DBTX, playerID uuid.UUID) (domain.ReportStats, error) {
	return f.stats, nil
}

// --- requests ---

type fakeRequests struct {
	requests map[uuid.UUID]*domain.MatchRequest
	updates  int
}

func newFakeRequests(requests ...*domain.MatchRequest) *fakeRequests {
	f := &fakeRequests{requests: make(map[uuid.UUID]*domain.MatchRequest)}
	for _, r := range requests {
		f.requests[r.ID] = r
	}
	return f
}

func (f *fakeRequests) Insert(_ context.Context, _ repository.DBTX, r *domain.MatchRequest) error {
	f.requests[r.ID] = r
	return nil
}

func (f *fakeRequests) FindByID(_ context.Context, _ repository.DBTX, id uuid.UUID) (*domain.MatchRequest, error) {
	return f.requests[id], nil
}

func (f *fakeRequests) LockForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.MatchRequest, error) {
	return f.requests[id], nil
}

func (f *fakeRequests) Update(_ context.Context, _ repository.DBTX, r *domain.MatchRequest) error {
	f.requests[r.ID] = r
	f.updates++
	return nil
}

func (f *fakeRequests) ExpireDue(_ context.Context, _ repository.DBTX, now time.Time) (int, error) {
	expired := 0
	for _, r := range f.requests {
		if r.ExpireIfDue(now) {
			expired++
		}
	}
	return expired, nil
}

// --- outbox ---

type fakeOutbox struct {
	drafts    []domain.OutboxDraft
	published []int64
}

func (f *fakeOutbox) Insert(_ context.Context, _ repository.DBTX, draft domain.OutboxDraft) error {
	f.drafts = append(f.drafts, draft)
	return nil
}

func (f *fakeOutbox) FetchUnpublished(_ context.Context, _ repository.DBTX, limit int) ([]domain.OutboxDraft, error) {
	if limit > 0 && limit < len(f.drafts) {
		return f.drafts[:limit], nil
	}
	return f.drafts, nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, _ repository.DBTX, ids []int64) error {
	f.published = append(f.published, ids...)
	return nil
}

// --- auth users ---

type fakeAuthUsers struct {
	users map[string]*domain.AuthUser
}

func newFakeAuthUsers(users ...*domain.AuthUser) *fakeAuthUsers {
	f := &fakeAuthUsers{users: make(map[string]*domain.AuthUser)}
	for _, u := range users {
		f.users[u.Email] = u
	}
	return f
}

func (f *fakeAuthUsers) FindByEmail(_ context.Context, _ repository.DBTX, email string) (*domain.AuthUser, error) {
	return f.users[email], nil
}

func (f *fakeAuthUsers) Create(_ context.Context, _ repository.DBTX, user *domain.AuthUser) error {
	f.users[user.Email] = user
	return nil
}
