package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/footyheroes/platform/internal/policy"
	"github.com/footyheroes/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	// Window for the volume-based sanction checks.
	recentReportWindow = 30 * 24 * time.Hour

	// Admin-imposed reputation penalty, floored so the score stays on scale.
	reputationPenalty      = 0.5
	reputationPenaltyFloor = 1.0
)

// SanctionService ingests misconduct reports and applies the automatic
// sanction ladder: warnings, bounded suspensions, permanent bans.
type SanctionService struct {
	pool    *pgxpool.Pool
	reports repository.ReportRepository
	players repository.PlayerRepository
	matches repository.MatchRepository
	outbox  repository.OutboxRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewSanctionService creates a SanctionService.
func NewSanctionService(
	pool *pgxpool.Pool,
	reports repository.ReportRepository,
	players repository.PlayerRepository,
	matches repository.MatchRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *SanctionService {
	return &SanctionService{
		pool:    pool,
		reports: reports,
		players: players,
		matches: matches,
		outbox:  outbox,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *SanctionService) WithClock(now func() time.Time) *SanctionService {
	s.now = now
	return s
}

// SubmitReportInput holds a misconduct report submission.
type SubmitReportInput struct {
	ReportedPlayer uuid.UUID             `json:"reported_player"`
	MatchID        uuid.UUID             `json:"match_id"`
	Category       domain.ReportCategory `json:"category"`
	Severity       domain.Severity       `json:"severity"`
	Description    string                `json:"description"`
}

// SubmitReportResult returns the stored report plus every sanction the
// engine applied because of it.
type SubmitReportResult struct {
	Report    *domain.Report            `json:"report"`
	Sanctions []policy.SanctionDecision `json:"sanctions"`
}

// SubmitReport files a report and immediately runs the sanction checks
// against the reported player's history. Reports are append-only; sanctions
// never delete them.
func (s *SanctionService) SubmitReport(ctx context.Context, reporterID uuid.UUID, input SubmitReportInput) (*SubmitReportResult, error) {
	if !input.Category.Valid() {
		return nil, domain.ErrValidation("unknown report category")
	}
	if !input.Severity.Valid() {
		return nil, domain.ErrValidation("unknown severity")
	}
	if input.Description == "" {
		return nil, domain.ErrValidation("description is required")
	}
	if reporterID == input.ReportedPlayer {
		return nil, domain.ErrSelfReport()
	}

	match, err := s.matches.FindByID(ctx, s.pool, input.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("find match", err)
	}
	if match == nil {
		return nil, domain.ErrNotFound("match", input.MatchID.String())
	}
	if !match.HasPlayer(reporterID) && match.OrganizerID != reporterID {
		return nil, domain.ErrNotParticipant()
	}
	if !match.HasPlayer(input.ReportedPlayer) {
		return nil, domain.ErrNotParticipant()
	}

	reported, err := s.players.FindByID(ctx, s.pool, input.ReportedPlayer)
	if err != nil {
		return nil, domain.ErrInternal("find reported player", err)
	}
	if reported == nil {
		return nil, domain.ErrNotFound("player", input.ReportedPlayer.String())
	}

	now := s.now()
	report := &domain.Report{
		ID:             uuid.New(),
		ReportedPlayer: input.ReportedPlayer,
		ReportedBy:     reporterID,
		MatchID:        input.MatchID,
		Category:       input.Category,
		Severity:       input.Severity,
		Description:    input.Description,
		Status:         domain.ReportPending,
		Priority:       domain.DerivePriority(input.Severity, input.Category),
		CreatedAt:      now,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.reports.Insert(ctx, tx, report); err != nil {
		return nil, domain.ErrInternal("insert report", err)
	}

	recent, err := s.reports.CountAgainstSince(ctx, tx, input.ReportedPlayer, now.Add(-recentReportWindow))
	if err != nil {
		return nil, domain.ErrInternal("count recent reports", err)
	}
	critical, err := s.reports.CountCriticalUndismissed(ctx, tx, input.ReportedPlayer)
	if err != nil {
		return nil, domain.ErrInternal("count critical reports", err)
	}

	decisions := policy.EvaluateSanctions(policy.SanctionInputs{
		NewReport:     *report,
		RecentCount:   recent,
		CriticalCount: critical,
	})
	if err := s.apply(ctx, tx, reported, decisions, report, now); err != nil {
		return nil, err
	}

	err = stageEvent(ctx, tx, s.outbox, "report", report.ID.String(), domain.EventReportSubmitted,
		map[string]interface{}{
			"report_id":       report.ID,
			"reported_player": input.ReportedPlayer,
			"category":        input.Category,
			"severity":        input.Severity,
			"priority":        report.Priority,
		}, now)
	if err != nil {
		return nil, domain.ErrInternal("stage event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("report submitted",
		"report_id", report.ID, "reported_player", input.ReportedPlayer,
		"severity", input.Severity, "priority", report.Priority,
		"sanctions", len(decisions))
	return &SubmitReportResult{Report: report, Sanctions: decisions}, nil
}

// apply executes sanction decisions against the player, monotonically:
// a ban supersedes everything, and a new suspension never shortens an
// existing one. Whenever anything fired, the triggering report is closed
// with an engine resolution so it leaves the review queue.
func (s *SanctionService) apply(ctx context.Context, db repository.DBTX, player *domain.Player, decisions []policy.SanctionDecision, report *domain.Report, now time.Time) error {
	for _, d := range decisions {
		switch d.Kind {
		case policy.SanctionWarning:
			if err := s.warn(ctx, db, player.ID, d.Reason, &report.ID, now); err != nil {
				return err
			}

		case policy.SanctionSuspension:
			if err := s.suspend(ctx, db, player, d.Reason, d.DurationDays, now); err != nil {
				return err
			}

		case policy.SanctionPermanentBan:
			if err := s.ban(ctx, db, player, d.Reason, now); err != nil {
				return err
			}
		}
	}
	if len(decisions) == 0 {
		return nil
	}

	res := autoResolution(decisions, now)
	if err := s.reports.Resolve(ctx, db, report.ID, res); err != nil {
		return domain.ErrInternal("resolve report", err)
	}
	report.Resolve(res)
	return nil
}

// autoResolution maps the strongest decision onto the resolution record.
// ResolvedBy stays nil, which marks the closure as engine-applied.
func autoResolution(decisions []policy.SanctionDecision, now time.Time) domain.Resolution {
	rank := func(k policy.SanctionKind) int {
		switch k {
		case policy.SanctionPermanentBan:
			return 3
		case policy.SanctionSuspension:
			return 2
		}
		return 1
	}
	strongest := decisions[0]
	for _, d := range decisions[1:] {
		if rank(d.Kind) > rank(strongest.Kind) {
			strongest = d
		}
	}

	action := domain.ActionWarning
	switch strongest.Kind {
	case policy.SanctionSuspension:
		action = domain.ActionTempSuspension
	case policy.SanctionPermanentBan:
		action = domain.ActionPermanentBan
	}
	return domain.Resolution{
		Action:       action,
		DurationDays: strongest.DurationDays,
		Reason:       strongest.Reason,
		ResolvedAt:   now,
	}
}

func (s *SanctionService) warn(ctx context.Context, db repository.DBTX, playerID uuid.UUID, reason string, reportID *uuid.UUID, now time.Time) error {
	warning := &domain.Warning{
		ID:       uuid.New(),
		PlayerID: playerID,
		Reason:   reason,
		ReportID: reportID,
		IssuedAt: now,
	}
	if err := s.players.InsertWarning(ctx, db, warning); err != nil {
		return domain.ErrInternal("insert warning", err)
	}
	err := stageEvent(ctx, db, s.outbox, "player", playerID.String(), domain.EventPlayerWarned,
		map[string]interface{}{"player_id": playerID, "reason": reason}, now)
	if err != nil {
		return domain.ErrInternal("stage event", err)
	}
	s.logger.Warn("warning issued", "player_id", playerID, "reason", reason)
	return nil
}

func (s *SanctionService) suspend(ctx context.Context, db repository.DBTX, player *domain.Player, reason string, days int, now time.Time) error {
	if player.IsBanned {
		return nil
	}
	expiresAt := now.Add(time.Duration(days) * 24 * time.Hour)
	// Keep the longer suspension.
	if player.SuspensionActive(now) && player.SuspensionExpiresAt != nil && player.SuspensionExpiresAt.After(expiresAt) {
		return nil
	}
	if err := s.players.SetSuspension(ctx, db, player.ID, reason, expiresAt); err != nil {
		return domain.ErrInternal("set suspension", err)
	}
	player.IsSuspended = true
	player.SuspensionReason = reason
	player.SuspensionExpiresAt = &expiresAt

	err := stageEvent(ctx, db, s.outbox, "player", player.ID.String(), domain.EventPlayerSuspended,
		map[string]interface{}{
			"player_id":  player.ID,
			"reason":     reason,
			"days":       days,
			"expires_at": expiresAt,
		}, now)
	if err != nil {
		return domain.ErrInternal("stage event", err)
	}
	s.logger.Warn("suspension applied",
		"player_id", player.ID, "days", days, "reason", reason)
	return nil
}

func (s *SanctionService) ban(ctx context.Context, db repository.DBTX, player *domain.Player, reason string, now time.Time) error {
	if player.IsBanned {
		return nil
	}
	if err := s.players.SetBan(ctx, db, player.ID, reason); err != nil {
		return domain.ErrInternal("set ban", err)
	}
	player.IsBanned = true
	player.IsActive = false
	player.IsSuspended = true
	player.SuspensionReason = reason
	player.SuspensionExpiresAt = nil

	err := stageEvent(ctx, db, s.outbox, "player", player.ID.String(), domain.EventPlayerBanned,
		map[string]interface{}{"player_id": player.ID, "reason": reason}, now)
	if err != nil {
		return domain.ErrInternal("stage event", err)
	}
	s.logger.Warn("permanent ban applied", "player_id", player.ID, "reason", reason)
	return nil
}

// ResolveInput holds an admin resolution.
type ResolveInput struct {
	Action       domain.ResolutionAction `json:"action"`
	DurationDays int                     `json:"duration_days"`
	Reason       string                  `json:"reason"`
}

// ResolveReport closes a report with an explicit action. Resolution is
// write-once; a second attempt conflicts.
func (s *SanctionService) ResolveReport(ctx context.Context, adminID, reportID uuid.UUID, input ResolveInput) error {
	now := s.now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	report, err := s.reports.FindByID(ctx, tx, reportID)
	if err != nil {
		return domain.ErrInternal("find report", err)
	}
	if report == nil {
		return domain.ErrNotFound("report", reportID.String())
	}

	res := domain.Resolution{
		Action:       input.Action,
		DurationDays: input.DurationDays,
		Reason:       input.Reason,
		ResolvedBy:   &adminID,
		ResolvedAt:   now,
	}
	if err := s.reports.Resolve(ctx, tx, reportID, res); err != nil {
		if appErr, ok := err.(*domain.AppError); ok {
			return appErr
		}
		return domain.ErrInternal("resolve report", err)
	}

	player, err := s.players.FindByID(ctx, tx, report.ReportedPlayer)
	if err != nil {
		return domain.ErrInternal("find player", err)
	}
	if player == nil {
		return domain.ErrNotFound("player", report.ReportedPlayer.String())
	}

	switch input.Action {
	case domain.ActionWarning:
		if err := s.warn(ctx, tx, player.ID, input.Reason, &reportID, now); err != nil {
			return err
		}
	case domain.ActionTempSuspension:
		days := input.DurationDays
		if days <= 0 {
			return domain.ErrValidation("suspension requires a positive duration")
		}
		if err := s.suspend(ctx, tx, player, input.Reason, days, now); err != nil {
			return err
		}
	case domain.ActionPermanentBan:
		if err := s.ban(ctx, tx, player, input.Reason, now); err != nil {
			return err
		}
	case domain.ActionReputationPenalty:
		score := player.ReputationScore - reputationPenalty
		if score < reputationPenaltyFloor {
			score = reputationPenaltyFloor
		}
		if err := s.players.UpdateReputation(ctx, tx, player.ID, score); err != nil {
			return domain.ErrInternal("apply reputation penalty", err)
		}
	case domain.ActionNoAction, domain.ActionMatchBan, domain.ActionCommunityService:
		// Recorded on the report; no player state change here.
	default:
		return domain.ErrValidation("unknown resolution action")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("report resolved",
		"report_id", reportID, "action", input.Action, "resolved_by", adminID)
	return nil
}

// DismissReport closes a report without sanctioning anyone. Dismissed
// critical reports stop counting toward the ban threshold.
func (s *SanctionService) DismissReport(ctx context.Context, reportID uuid.UUID) error {
	report, err := s.reports.FindByID(ctx, s.pool, reportID)
	if err != nil {
		return domain.ErrInternal("find report", err)
	}
	if report == nil {
		return domain.ErrNotFound("report", reportID.String())
	}
	if report.Status == domain.ReportResolved || report.Status == domain.ReportDismissed {
		return domain.ErrConflict("report is already closed")
	}
	if err := s.reports.UpdateStatus(ctx, s.pool, reportID, domain.ReportDismissed, report.Priority); err != nil {
		return domain.ErrInternal("dismiss report", err)
	}
	s.logger.Info("report dismissed", "report_id", reportID)
	return nil
}

// EscalateReport raises a report's priority and flags it for senior review.
func (s *SanctionService) EscalateReport(ctx context.Context, reportID uuid.UUID) (*domain.Report, error) {
	report, err := s.reports.FindByID(ctx, s.pool, reportID)
	if err != nil {
		return nil, domain.ErrInternal("find report", err)
	}
	if report == nil {
		return nil, domain.ErrNotFound("report", reportID.String())
	}
	if report.Status == domain.ReportResolved || report.Status == domain.ReportDismissed {
		return nil, domain.ErrConflict("closed reports cannot be escalated")
	}

	report.Escalate()
	if err := s.reports.UpdateStatus(ctx, s.pool, reportID, report.Status, report.Priority); err != nil {
		return nil, domain.ErrInternal("escalate report", err)
	}
	s.logger.Info("report escalated", "report_id", reportID, "priority", report.Priority)
	return report, nil
}

// ReviewQueue returns open reports ordered by priority then age.
func (s *SanctionService) ReviewQueue(ctx context.Context, f repository.ReviewFilter) ([]domain.Report, error) {
	if len(f.Statuses) == 0 {
		f.Statuses = []domain.ReportStatus{domain.ReportPending, domain.ReportUnderReview, domain.ReportEscalated}
	}
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	reports, err := s.reports.ListForReview(ctx, s.pool, f)
	if err != nil {
		return nil, domain.ErrInternal("list review queue", err)
	}
	return reports, nil
}

// SweepSuspensions lifts suspensions whose expiry has passed. Run
// periodically by the sweeper binary.
func (s *SanctionService) SweepSuspensions(ctx context.Context) (int, error) {
	lifted, err := s.players.ClearExpiredSuspensions(ctx, s.pool, s.now())
	if err != nil {
		return 0, domain.ErrInternal("sweep suspensions", err)
	}
	if lifted > 0 {
		s.logger.Info("suspensions lifted", "count", lifted)
	}
	return lifted, nil
}
