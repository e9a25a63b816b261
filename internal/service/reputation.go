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

// Raters below this reputation get every rating flagged for review.
const lowTrustRaterThreshold = 2.0

// ReputationService accepts post-match ratings and maintains each player's
// weighted reputation score.
type ReputationService struct {
	pool    *pgxpool.Pool
	ratings repository.RatingRepository
	players repository.PlayerRepository
	matches repository.MatchRepository
	reports repository.ReportRepository
	outbox  repository.OutboxRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewReputationService creates a ReputationService.
func NewReputationService(
	pool *pgxpool.Pool,
	ratings repository.RatingRepository,
	players repository.PlayerRepository,
	matches repository.MatchRepository,
	reports repository.ReportRepository,
	outbox repository.OutboxRepository,
	logger *slog.Logger,
) *ReputationService {
	return &ReputationService{
		pool:    pool,
		ratings: ratings,
		players: players,
		matches: matches,
		reports: reports,
		outbox:  outbox,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *ReputationService) WithClock(now func() time.Time) *ReputationService {
	s.now = now
	return s
}

// SubmitRatingInput holds a rating submission.
type SubmitRatingInput struct {
	RatedPlayer   uuid.UUID             `json:"rated_player"`
	MatchID       uuid.UUID             `json:"match_id"`
	OverallRating int                   `json:"overall_rating"`
	Categories    domain.CategoryScores `json:"categories"`
	Feedback      string                `json:"feedback"`
}

// SubmitRating records one player's assessment of another after a completed
// match, then recomputes the ratee's reputation. The rating weight is fixed
// at submission from the rater's reputation at that moment; later changes to
// the rater's score do not retroactively reweight it.
func (s *ReputationService) SubmitRating(ctx context.Context, raterID uuid.UUID, input SubmitRatingInput) (*domain.Rating, error) {
	if input.OverallRating < 1 || input.OverallRating > 5 {
		return nil, domain.ErrValidation("overall rating must be between 1 and 5")
	}
	if !input.Categories.Valid() {
		return nil, domain.ErrValidation("category scores must be between 1 and 5")
	}
	if raterID == input.RatedPlayer {
		return nil, domain.ErrSelfRating()
	}

	match, err := s.matches.FindByID(ctx, s.pool, input.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("find match", err)
	}
	if match == nil {
		return nil, domain.ErrNotFound("match", input.MatchID.String())
	}
	if match.Status != domain.MatchCompleted {
		return nil, domain.ErrMatchNotCompleted()
	}
	if !match.HasPlayer(raterID) || !match.HasPlayer(input.RatedPlayer) {
		return nil, domain.ErrNotParticipant()
	}

	exists, err := s.ratings.Exists(ctx, s.pool, input.RatedPlayer, raterID, input.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("check duplicate rating", err)
	}
	if exists {
		return nil, domain.ErrDuplicateRating()
	}

	rater, err := s.players.FindByID(ctx, s.pool, raterID)
	if err != nil {
		return nil, domain.ErrInternal("find rater", err)
	}
	if rater == nil {
		return nil, domain.ErrNotFound("player", raterID.String())
	}

	now := s.now()
	rating := &domain.Rating{
		ID:            uuid.New(),
		RatedPlayer:   input.RatedPlayer,
		RatedBy:       raterID,
		MatchID:       input.MatchID,
		OverallRating: input.OverallRating,
		Categories:    input.Categories,
		Feedback:      input.Feedback,
		RatingWeight:  policy.ComputeRatingWeight(rater.ReputationScore),
		CreatedAt:     now,
	}
	if policy.IsSuspicious(input.OverallRating, input.Categories) {
		rating.Flagged = true
		rating.FlagReason = "extreme overall score diverges from category scores"
	} else if rater.ReputationScore < lowTrustRaterThreshold {
		rating.Flagged = true
		rating.FlagReason = "rater reputation below trust threshold"
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.ratings.Insert(ctx, tx, rating); err != nil {
		// Unique index catches the race the Exists pre-check missed.
		if appErr, ok := err.(*domain.AppError); ok {
			return nil, appErr
		}
		return nil, domain.ErrInternal("insert rating", err)
	}

	// Mutual detection: the symmetric rating marks both sides.
	mutual, err := s.ratings.FindMutual(ctx, tx, input.RatedPlayer, raterID, input.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("find mutual rating", err)
	}
	if mutual != nil {
		rating.IsMutual = true
		if err := s.ratings.SetMutual(ctx, tx, rating.ID); err != nil {
			return nil, domain.ErrInternal("set mutual", err)
		}
		if err := s.ratings.SetMutual(ctx, tx, mutual.ID); err != nil {
			return nil, domain.ErrInternal("set mutual", err)
		}
	}

	score, err := s.recomputeScore(ctx, tx, input.RatedPlayer, now)
	if err != nil {
		return nil, err
	}

	err = stageEvent(ctx, tx, s.outbox, "rating", rating.ID.String(), domain.EventRatingSubmitted,
		map[string]interface{}{
			"rating_id":    rating.ID,
			"rated_player": input.RatedPlayer,
			"rated_by":     raterID,
			"match_id":     input.MatchID,
			"flagged":      rating.Flagged,
		}, now)
	if err != nil {
		return nil, domain.ErrInternal("stage event", err)
	}
	err = stageEvent(ctx, tx, s.outbox, "player", input.RatedPlayer.String(), domain.EventReputationUpdated,
		map[string]interface{}{"player_id": input.RatedPlayer, "reputation_score": score}, now)
	if err != nil {
		return nil, domain.ErrInternal("stage event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("rating submitted",
		"rating_id", rating.ID, "rated_player", input.RatedPlayer,
		"rated_by", raterID, "weight", rating.RatingWeight, "flagged", rating.Flagged)
	return rating, nil
}

// recomputeScore reloads the ratee's full rating set and writes back the
// weighted score. Runs inside the submission transaction.
func (s *ReputationService) recomputeScore(ctx context.Context, db repository.DBTX, playerID uuid.UUID, now time.Time) (float64, error) {
	ratings, err := s.ratings.ListByPlayer(ctx, db, playerID)
	if err != nil {
		return 0, domain.ErrInternal("list ratings", err)
	}
	summary := policy.ComputeReputation(ratings, now)
	if err := s.players.UpdateReputation(ctx, db, playerID, summary.OverallScore); err != nil {
		return 0, domain.ErrInternal("update reputation", err)
	}
	return summary.OverallScore, nil
}

// ReputationProfile is the public view of a player's standing.
type ReputationProfile struct {
	PlayerID      uuid.UUID                `json:"player_id"`
	Summary       policy.ReputationSummary `json:"summary"`
	ReportStats   domain.ReportStats       `json:"report_stats"`
	MatchesPlayed int                      `json:"matches_played"`
	IsSuspended   bool                     `json:"is_suspended"`
	IsBanned      bool                     `json:"is_banned"`
}

// GetProfile aggregates a player's ratings and report history.
func (s *ReputationService) GetProfile(ctx context.Context, playerID uuid.UUID) (*ReputationProfile, error) {
	player, err := s.players.FindByID(ctx, s.pool, playerID)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", playerID.String())
	}

	ratings, err := s.ratings.ListByPlayer(ctx, s.pool, playerID)
	if err != nil {
		return nil, domain.ErrInternal("list ratings", err)
	}
	stats, err := s.reports.StatsByPlayer(ctx, s.pool, playerID)
	if err != nil {
		return nil, domain.ErrInternal("report stats", err)
	}

	return &ReputationProfile{
		PlayerID:      playerID,
		Summary:       policy.ComputeReputation(ratings, s.now()),
		ReportStats:   stats,
		MatchesPlayed: player.MatchesPlayed,
		IsSuspended:   player.SuspensionActive(s.now()),
		IsBanned:      player.IsBanned,
	}, nil
}
