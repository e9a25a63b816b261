package service

import (
	"context"
	"testing"
	"time"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/footyheroes/platform/internal/policy"
	"github.com/footyheroes/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSanctionFixture(reports *fakeReports, players *fakePlayers) *SanctionService {
	return NewSanctionService(nil, reports, players, newFakeMatches(), &fakeOutbox{}, discardLogger())
}

func pendingReport(priority int) *domain.Report {
	return &domain.Report{
		ID:             uuid.New(),
		ReportedPlayer: uuid.New(),
		ReportedBy:     uuid.New(),
		MatchID:        uuid.New(),
		Category:       domain.ReportNoShow,
		Severity:       domain.SeverityLow,
		Status:         domain.ReportPending,
		Priority:       priority,
		CreatedAt:      time.Now(),
	}
}

// --- DismissReport Tests ---

func TestDismissReport_SetsStatus(t *testing.T) {
	report := pendingReport(1)
	reports := newFakeReports(report)
	svc := newSanctionFixture(reports, newFakePlayers())

	err := svc.DismissReport(context.Background(), report.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.ReportDismissed, report.Status)
	assert.Equal(t, 1, report.Priority)
}

func TestDismissReport_NotFound(t *testing.T) {
	svc := newSanctionFixture(newFakeReports(), newFakePlayers())

	err := svc.DismissReport(context.Background(), uuid.New())

	assert.Equal(t, "NOT_FOUND", appCode(t, err))
}

func TestDismissReport_AlreadyClosed(t *testing.T) {
	report := pendingReport(1)
	report.Status = domain.ReportResolved
	svc := newSanctionFixture(newFakeReports(report), newFakePlayers())

	err := svc.DismissReport(context.Background(), report.ID)

	assert.Equal(t, "CONFLICT", appCode(t, err))
}

// --- EscalateReport Tests ---

func TestEscalateReport_BumpsPriorityAndStatus(t *testing.T) {
	report := pendingReport(2)
	svc := newSanctionFixture(newFakeReports(report), newFakePlayers())

	escalated, err := svc.EscalateReport(context.Background(), report.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.ReportEscalated, escalated.Status)
	assert.Equal(t, 3, escalated.Priority)
	assert.Equal(t, domain.ReportEscalated, report.Status)
}

func TestEscalateReport_PriorityCappedAtFive(t *testing.T) {
	report := pendingReport(5)
	svc := newSanctionFixture(newFakeReports(report), newFakePlayers())

	escalated, err := svc.EscalateReport(context.Background(), report.ID)

	require.NoError(t, err)
	assert.Equal(t, 5, escalated.Priority)
}

func TestEscalateReport_ClosedRejected(t *testing.T) {
	report := pendingReport(2)
	report.Status = domain.ReportDismissed
	svc := newSanctionFixture(newFakeReports(report), newFakePlayers())

	_, err := svc.EscalateReport(context.Background(), report.ID)

	assert.Equal(t, "CONFLICT", appCode(t, err))
}

func TestEscalateReport_NotFound(t *testing.T) {
	svc := newSanctionFixture(newFakeReports(), newFakePlayers())

	_, err := svc.EscalateReport(context.Background(), uuid.New())

	assert.Equal(t, "NOT_FOUND", appCode(t, err))
}

// --- ReviewQueue Tests ---

func TestReviewQueue_DefaultsToOpenStatuses(t *testing.T) {
	reports := newFakeReports()
	svc := newSanctionFixture(reports, newFakePlayers())

	_, err := svc.ReviewQueue(context.Background(), repository.ReviewFilter{})

	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.ReportStatus{
		domain.ReportPending, domain.ReportUnderReview, domain.ReportEscalated,
	}, reports.lastFilter.Statuses)
	assert.Equal(t, 50, reports.lastFilter.Limit)
}

func TestReviewQueue_OversizedLimitReset(t *testing.T) {
	reports := newFakeReports()
	svc := newSanctionFixture(reports, newFakePlayers())

	_, err := svc.ReviewQueue(context.Background(), repository.ReviewFilter{Limit: 500})

	require.NoError(t, err)
	assert.Equal(t, 50, reports.lastFilter.Limit)
}

func TestReviewQueue_ExplicitFilterPassedThrough(t *testing.T) {
	reports := newFakeReports()
	svc := newSanctionFixture(reports, newFakePlayers())

	_, err := svc.ReviewQueue(context.Background(), repository.ReviewFilter{
		Statuses:    []domain.ReportStatus{domain.ReportDismissed},
		Severity:    domain.SeverityHigh,
		MinPriority: 4,
		Limit:       25,
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.ReportStatus{domain.ReportDismissed}, reports.lastFilter.Statuses)
	assert.Equal(t, domain.SeverityHigh, reports.lastFilter.Severity)
	assert.Equal(t, 4, reports.lastFilter.MinPriority)
	assert.Equal(t, 25, reports.lastFilter.Limit)
}

// --- SubmitReport Validation Tests ---

func TestSubmitReport_UnknownCategory(t *testing.T) {
	svc := newSanctionFixture(newFakeReports(), newFakePlayers())

	_, err := svc.SubmitReport(context.Background(), uuid.New(), SubmitReportInput{
		ReportedPlayer: uuid.New(),
		MatchID:        uuid.New(),
		Category:       "time_wasting",
		Severity:       domain.SeverityLow,
		Description:    "kept the ball in the corner",
	})

	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
}

func TestSubmitReport_UnknownSeverity(t *testing.T) {
	svc := newSanctionFixture(newFakeReports(), newFakePlayers())

	_, err := svc.SubmitReport(context.Background(), uuid.New(), SubmitReportInput{
		ReportedPlayer: uuid.New(),
		MatchID:        uuid.New(),
		Category:       domain.ReportNoShow,
		Severity:       "catastrophic",
		Description:    "did not turn up",
	})

	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
}

func TestSubmitReport_DescriptionRequired(t *testing.T) {
	svc := newSanctionFixture(newFakeReports(), newFakePlayers())

	_, err := svc.SubmitReport(context.Background(), uuid.New(), SubmitReportInput{
		ReportedPlayer: uuid.New(),
		MatchID:        uuid.New(),
		Category:       domain.ReportNoShow,
		Severity:       domain.SeverityLow,
	})

	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
}

func TestSubmitReport_SelfReport(t *testing.T) {
	svc := newSanctionFixture(newFakeReports(), newFakePlayers())
	playerID := uuid.New()

	_, err := svc.SubmitReport(context.Background(), playerID, SubmitReportInput{
		ReportedPlayer: playerID,
		MatchID:        uuid.New(),
		Category:       domain.ReportNoShow,
		Severity:       domain.SeverityLow,
		Description:    "reporting myself",
	})

	assert.Equal(t, "SELF_REPORT", appCode(t, err))
}

func TestSubmitReport_MatchNotFound(t *testing.T) {
	svc := newSanctionFixture(newFakeReports(), newFakePlayers())

	_, err := svc.SubmitReport(context.Background(), uuid.New(), SubmitReportInput{
		ReportedPlayer: uuid.New(),
		MatchID:        uuid.New(),
		Category:       domain.ReportNoShow,
		Severity:       domain.SeverityLow,
		Description:    "no such match",
	})

	assert.Equal(t, "NOT_FOUND", appCode(t, err))
}

func TestSubmitReport_ReportedPlayerNotRostered(t *testing.T) {
	now := time.Now()
	reporterID := uuid.New()
	match := &domain.Match{
		ID:          uuid.New(),
		OrganizerID: uuid.New(),
		Format:      domain.Format5v5,
		Status:      domain.MatchCompleted,
		TeamARoster: []domain.RosterEntry{{PlayerID: reporterID, JoinedAt: now}},
		TeamBRoster: []domain.RosterEntry{},
	}
	matches := newFakeMatches(match)
	svc := NewSanctionService(nil, newFakeReports(), newFakePlayers(), matches, &fakeOutbox{}, discardLogger())

	_, err := svc.SubmitReport(context.Background(), reporterID, SubmitReportInput{
		ReportedPlayer: uuid.New(),
		MatchID:        match.ID,
		Category:       domain.ReportNoShow,
		Severity:       domain.SeverityLow,
		Description:    "ghost player",
	})

	assert.Equal(t, "NOT_PARTICIPANT", appCode(t, err))
}

// --- Automatic Sanction Tests ---

func TestApplySanctions_SuspensionResolvesTriggeringReport(t *testing.T) {
	now := time.Now()
	offender := &domain.Player{ID: uuid.New(), IsActive: true}
	report := pendingReport(5)
	report.ReportedPlayer = offender.ID
	reports := newFakeReports(report)
	svc := newSanctionFixture(reports, newFakePlayers(offender))

	decisions := []policy.SanctionDecision{
		{Kind: policy.SanctionSuspension, DurationDays: 7, Reason: "automatic suspension due to critical violation"},
	}
	err := svc.apply(context.Background(), nil, offender, decisions, report, now)

	require.NoError(t, err)
	assert.True(t, offender.IsSuspended)
	assert.Equal(t, domain.ReportResolved, report.Status)
	require.NotNil(t, report.Resolution)
	assert.Equal(t, domain.ActionTempSuspension, report.Resolution.Action)
	assert.Equal(t, 7, report.Resolution.DurationDays)
	assert.Nil(t, report.Resolution.ResolvedBy)
}

func TestApplySanctions_BanOutranksWarningInResolution(t *testing.T) {
	now := time.Now()
	offender := &domain.Player{ID: uuid.New(), IsActive: true}
	report := pendingReport(5)
	report.ReportedPlayer = offender.ID
	svc := newSanctionFixture(newFakeReports(report), newFakePlayers(offender))

	decisions := []policy.SanctionDecision{
		{Kind: policy.SanctionWarning, Reason: "multiple reports received in recent period"},
		{Kind: policy.SanctionPermanentBan, Reason: "multiple critical violations"},
	}
	err := svc.apply(context.Background(), nil, offender, decisions, report, now)

	require.NoError(t, err)
	assert.True(t, offender.IsBanned)
	assert.Equal(t, domain.ReportResolved, report.Status)
	require.NotNil(t, report.Resolution)
	assert.Equal(t, domain.ActionPermanentBan, report.Resolution.Action)
}

func TestApplySanctions_NoDecisionsLeavesReportPending(t *testing.T) {
	now := time.Now()
	offender := &domain.Player{ID: uuid.New(), IsActive: true}
	report := pendingReport(1)
	report.ReportedPlayer = offender.ID
	svc := newSanctionFixture(newFakeReports(report), newFakePlayers(offender))

	err := svc.apply(context.Background(), nil, offender, nil, report, now)

	require.NoError(t, err)
	assert.Equal(t, domain.ReportPending, report.Status)
	assert.Nil(t, report.Resolution)
}

// --- SweepSuspensions Tests ---

func TestSweepSuspensions_LiftsOnlyExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(48 * time.Hour)

	expired := &domain.Player{ID: uuid.New(), IsActive: true, IsSuspended: true, SuspensionExpiresAt: &past}
	serving := &domain.Player{ID: uuid.New(), IsActive: true, IsSuspended: true, SuspensionExpiresAt: &future}
	banned := &domain.Player{ID: uuid.New(), IsSuspended: true, IsBanned: true}

	players := newFakePlayers(expired, serving, banned)
	svc := newSanctionFixture(newFakeReports(), players).WithClock(fixedClock(now))

	lifted, err := svc.SweepSuspensions(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, lifted)
	assert.False(t, expired.IsSuspended)
	assert.True(t, serving.IsSuspended)
	assert.True(t, banned.IsSuspended)
}
