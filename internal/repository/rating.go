package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const ratingColumns = `id, rated_player, rated_by, match_id, overall_rating,
	skill, teamwork, attitude, punctuality, communication,
	feedback, rating_weight, flagged, flag_reason, is_mutual, created_at`

type ratingRepo struct{}

// NewRatingRepository returns a pgx-backed RatingRepository.
func NewRatingRepository() RatingRepository {
	return &ratingRepo{}
}

func (r *ratingRepo) Insert(ctx context.Context, db DBTX, rating *domain.Rating) error {
	_, err := db.Exec(ctx, `
		INSERT INTO ratings (id, rated_player, rated_by, match_id, overall_rating,
			skill, teamwork, attitude, punctuality, communication,
			feedback, rating_weight, flagged, flag_reason, is_mutual, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		rating.ID, rating.RatedPlayer, rating.RatedBy, rating.MatchID, rating.OverallRating,
		rating.Categories.Skill, rating.Categories.Teamwork, rating.Categories.Attitude,
		rating.Categories.Punctuality, rating.Categories.Communication,
		rating.Feedback, rating.RatingWeight, rating.Flagged, rating.FlagReason,
		rating.IsMutual, rating.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateRating()
		}
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}

func (r *ratingRepo) Exists(ctx context.Context, db DBTX, ratedPlayer, ratedBy, matchID uuid.UUID) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM ratings
			WHERE rated_player = $1 AND rated_by = $2 AND match_id = $3
		)`,
		ratedPlayer, ratedBy, matchID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check rating exists: %w", err)
	}
	return exists, nil
}

func (r *ratingRepo) FindMutual(ctx context.Context, db DBTX, ratedPlayer, ratedBy, matchID uuid.UUID) (*domain.Rating, error) {
	// The symmetric rating swaps rater and ratee on the same match.
	row := db.QueryRow(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE rated_player = $1 AND rated_by = $2 AND match_id = $3`,
		ratedBy, ratedPlayer, matchID)
	return scanRating(row)
}

func (r *ratingRepo) SetMutual(ctx context.Context, db DBTX, id uuid.UUID) error {
	_, err := db.Exec(ctx, `UPDATE ratings SET is_mutual = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("set rating mutual: %w", err)
	}
	return nil
}

func (r *ratingRepo) ListByPlayer(ctx context.Context, db DBTX, playerID uuid.UUID) ([]domain.Rating, error) {
	rows, err := db.Query(ctx,
		`SELECT `+ratingColumns+` FROM ratings WHERE rated_player = $1 ORDER BY created_at DESC`,
		playerID)
	if err != nil {
		return nil, fmt.Errorf("query ratings by player: %w", err)
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		rt, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, *rt)
	}
	return ratings, rows.Err()
}

func scanRating(row pgx.Row) (*domain.Rating, error) {
	var rt domain.Rating
	err := row.Scan(
		&rt.ID, &rt.RatedPlayer, &rt.RatedBy, &rt.MatchID, &rt.OverallRating,
		&rt.Categories.Skill, &rt.Categories.Teamwork, &rt.Categories.Attitude,
		&rt.Categories.Punctuality, &rt.Categories.Communication,
		&rt.Feedback, &rt.RatingWeight, &rt.Flagged, &rt.FlagReason,
		&rt.IsMutual, &rt.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan rating: %w", err)
	}
	return &rt, nil
}
