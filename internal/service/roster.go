package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/footyheroes/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RosterService manages match lifecycle and team rosters. Roster mutations
// run under a per-match row lock, so concurrent joins against the last slot
// serialize instead of overfilling a team.
type RosterService struct {
	pool    *pgxpool.Pool
	matches repository.MatchRepository
	players repository.PlayerRepository
	outbox  repository.OutboxRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewRosterService creates a RosterService.
func NewRosterService(
	pool *pgxpool.Pool,
	matches repository.MatchRepository,
	players repository.PlayerRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *RosterService {
	return &RosterService{
		pool:    pool,
		matches: matches,
		players: players,
		outbox:  outbox,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *RosterService) WithClock(now func() time.Time) *RosterService {
	s.now = now
	return s
}

// CreateMatchInput holds the match creation request.
type CreateMatchInput struct {
	Title               string            `json:"title"`
	Format              domain.Format     `json:"format"`
	SkillLevelRequired  domain.SkillLevel `json:"skill_level_required"`
	RefereeID           *uuid.UUID        `json:"referee_id"`
	Latitude            float64           `json:"latitude"`
	Longitude           float64           `json:"longitude"`
	Address             string            `json:"address"`
	DateTime            time.Time         `json:"date_time"`
	LateJoinDeadlineMin int               `json:"late_join_deadline_min"`
}

// CreateMatch creates an open match with the organizer outside the rosters.
func (s *RosterService) CreateMatch(ctx context.Context, organizerID uuid.UUID, input CreateMatchInput) (*domain.Match, error) {
	if input.Title == "" {
		return nil, domain.ErrValidation("title is required")
	}
	if input.Format.MaxPlayersPerTeam() == 0 {
		return nil, domain.ErrValidation("format must be one of 5v5, 7v7, 11v11")
	}
	if input.SkillLevelRequired != "" && !input.SkillLevelRequired.Valid() {
		return nil, domain.ErrValidation("unknown skill level")
	}
	if err := domain.ValidateCoordinates(input.Latitude, input.Longitude); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	now := s.now()
	if !input.DateTime.After(now) {
		return nil, domain.ErrValidation("match date must be in the future")
	}
	if input.LateJoinDeadlineMin < 0 {
		return nil, domain.ErrValidation("late join deadline cannot be negative")
	}

	organizer, err := s.players.FindByID(ctx, s.pool, organizerID)
	if err != nil {
		return nil, domain.ErrInternal("find organizer", err)
	}
	if organizer == nil {
		return nil, domain.ErrNotFound("player", organizerID.String())
	}
	if organizer.IsBanned || organizer.SuspensionActive(now) {
		return nil, domain.ErrPlayerSuspended()
	}

	if input.RefereeID != nil {
		if *input.RefereeID == organizerID {
			return nil, domain.ErrValidation("referee must be a different player")
		}
		referee, err := s.players.FindByID(ctx, s.pool, *input.RefereeID)
		if err != nil {
			return nil, domain.ErrInternal("find referee", err)
		}
		if referee == nil {
			return nil, domain.ErrNotFound("player", input.RefereeID.String())
		}
	}

	match := &domain.Match{
		ID:                  uuid.New(),
		Title:               input.Title,
		OrganizerID:         organizerID,
		RefereeID:           input.RefereeID,
		Format:              input.Format,
		SkillLevelRequired:  input.SkillLevelRequired,
		Latitude:            input.Latitude,
		Longitude:           input.Longitude,
		Address:             input.Address,
		DateTime:            input.DateTime,
		LateJoinDeadlineMin: input.LateJoinDeadlineMin,
		Status:              domain.MatchOpen,
		TeamARoster:         []domain.RosterEntry{},
		TeamBRoster:         []domain.RosterEntry{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if match.SkillLevelRequired == "" {
		match.SkillLevelRequired = domain.SkillAny
	}
	if err := s.matches.Create(ctx, s.pool, match); err != nil {
		return nil, domain.ErrInternal("create match", err)
	}

	s.logger.Info("match created",
		"match_id", match.ID, "organizer_id", organizerID, "format", match.Format)
	return match, nil
}

// GetMatch returns one match.
func (s *RosterService) GetMatch(ctx context.Context, id uuid.UUID) (*domain.Match, error) {
	match, err := s.matches.FindByID(ctx, s.pool, id)
	if err != nil {
		return nil, domain.ErrInternal("find match", err)
	}
	if match == nil {
		return nil, domain.ErrNotFound("match", id.String())
	}
	return match, nil
}

// FindNearby returns joinable upcoming matches around a point.
func (s *RosterService) FindNearby(ctx context.Context, lat, lng float64, meters int) ([]domain.Match, error) {
	if meters <= 0 {
		meters = 10000
	}
	matches, err := s.matches.FindNearby(ctx, s.pool, lat, lng, meters)
	if err != nil {
		return nil, domain.ErrInternal("find nearby matches", err)
	}
	return matches, nil
}

// Join adds a player to the match, balancing onto the smaller team. All
// preconditions are checked under the row lock.
func (s *RosterService) Join(ctx context.Context, matchID, playerID uuid.UUID, position string) (domain.Team, error) {
	now := s.now()

	player, err := s.players.FindByID(ctx, s.pool, playerID)
	if err != nil {
		return "", domain.ErrInternal("find player", err)
	}
	if player == nil {
		return "", domain.ErrNotFound("player", playerID.String())
	}
	if !player.IsActive || player.IsBanned {
		return "", domain.ErrNotAuthorized("account is not active")
	}
	if player.SuspensionActive(now) {
		return "", domain.ErrPlayerSuspended()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	match, err := s.matches.LockForUpdate(ctx, tx, matchID)
	if err != nil {
		return "", domain.ErrInternal("lock match", err)
	}
	if match == nil {
		return "", domain.ErrNotFound("match", matchID.String())
	}
	if appErr := match.CanJoin(playerID, now); appErr != nil {
		return "", appErr
	}
	if !player.SkillLevel.Meets(match.SkillLevelRequired) {
		return "", domain.ErrSkillLevelTooLow(match.SkillLevelRequired)
	}

	team := match.AddPlayer(playerID, position, now)
	if err := s.matches.Update(ctx, tx, match); err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("player joined match",
		"match_id", matchID, "player_id", playerID, "team", team)
	return team, nil
}

// Leave removes a player from the match roster, reopening a slot.
func (s *RosterService) Leave(ctx context.Context, matchID, playerID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	match, err := s.matches.LockForUpdate(ctx, tx, matchID)
	if err != nil {
		return domain.ErrInternal("lock match", err)
	}
	if match == nil {
		return domain.ErrNotFound("match", matchID.String())
	}
	if match.Status != domain.MatchOpen && match.Status != domain.MatchFull {
		return domain.ErrMatchLocked()
	}
	if _, removed := match.RemovePlayer(playerID); !removed {
		return domain.ErrNotRostered()
	}

	if err := s.matches.Update(ctx, tx, match); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("player left match", "match_id", matchID, "player_id", playerID)
	return nil
}

// Start transitions the match to ongoing. Organizer only, and both teams
// must meet the per-format minimum.
func (s *RosterService) Start(ctx context.Context, matchID, callerID uuid.UUID) error {
	now := s.now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	match, err := s.matches.LockForUpdate(ctx, tx, matchID)
	if err != nil {
		return domain.ErrInternal("lock match", err)
	}
	if match == nil {
		return domain.ErrNotFound("match", matchID.String())
	}
	if !match.ManagedBy(callerID) {
		return domain.ErrNotAuthorized("only the organizer or referee can start the match")
	}
	if match.Status != domain.MatchOpen && match.Status != domain.MatchFull {
		return domain.ErrInvalidState("match cannot be started from its current state")
	}
	min := match.Format.MinPlayersToStart()
	if len(match.TeamARoster) < min || len(match.TeamBRoster) < min {
		return domain.ErrInsufficientPlayers(min)
	}

	match.Status = domain.MatchOngoing
	match.StartedAt = &now
	if err := s.matches.Update(ctx, tx, match); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("match started", "match_id", matchID)
	return nil
}

// Complete transitions an ongoing match to completed, bumps every
// participant's played counter and stages the completion event. Completion
// is what unlocks post-match ratings and reports.
func (s *RosterService) Complete(ctx context.Context, matchID, callerID uuid.UUID) error {
	now := s.now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	match, err := s.matches.LockForUpdate(ctx, tx, matchID)
	if err != nil {
		return domain.ErrInternal("lock match", err)
	}
	if match == nil {
		return domain.ErrNotFound("match", matchID.String())
	}
	if !match.ManagedBy(callerID) {
		return domain.ErrNotAuthorized("only the organizer or referee can complete the match")
	}
	if match.Status != domain.MatchOngoing {
		return domain.ErrInvalidState("only an ongoing match can be completed")
	}

	match.Status = domain.MatchCompleted
	match.EndedAt = &now
	if err := s.matches.Update(ctx, tx, match); err != nil {
		return err
	}
	if err := s.players.IncrementMatchesPlayed(ctx, tx, match.Participants()); err != nil {
		return domain.ErrInternal("increment matches played", err)
	}
	err = stageEvent(ctx, tx, s.outbox, "match", matchID.String(), domain.EventMatchCompleted,
		map[string]interface{}{"match_id": matchID, "players": match.Participants()}, now)
	if err != nil {
		return domain.ErrInternal("stage event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("match completed", "match_id", matchID, "players", match.TotalPlayers())
	return nil
}

// Cancel voids a match that has not started.
func (s *RosterService) Cancel(ctx context.Context, matchID, callerID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	match, err := s.matches.LockForUpdate(ctx, tx, matchID)
	if err != nil {
		return domain.ErrInternal("lock match", err)
	}
	if match == nil {
		return domain.ErrNotFound("match", matchID.String())
	}
	if match.OrganizerID != callerID {
		return domain.ErrNotAuthorized("only the organizer can cancel the match")
	}
	if match.Status != domain.MatchOpen && match.Status != domain.MatchFull {
		return domain.ErrInvalidState("match cannot be cancelled after it has started")
	}

	match.Status = domain.MatchCancelled
	if err := s.matches.Update(ctx, tx, match); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("match cancelled", "match_id", matchID)
	return nil
}
