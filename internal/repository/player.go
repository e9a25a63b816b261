package repository

import (
	"fmt"
	"time"

	"context"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const playerColumns = `id, name, username, skill_level, position, latitude, longitude,
	reputation_score, is_active, is_suspended, is_banned,
	suspension_reason, suspension_expires_at,
	matches_played, goals, assists, yellow_cards, red_cards, mvp_awards,
	created_at, updated_at`

type playerRepo struct{}

// NewPlayerRepository returns a pgx-backed PlayerRepository.
func NewPlayerRepository() PlayerRepository {
	return &playerRepo{}
}

func (r *playerRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Player, error) {
	row := db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id)
	return scanPlayer(row)
}

func (r *playerRepo) Create(ctx context.Context, db DBTX, p *domain.Player) error {
	_, err := db.Exec(ctx, `
		INSERT INTO players (id, name, username, skill_level, position, latitude, longitude,
			reputation_score, is_active, is_suspended, is_banned,
			suspension_reason, suspension_expires_at,
			matches_played, goals, assists, yellow_cards, red_cards, mvp_awards,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		p.ID, p.Name, p.Username, p.SkillLevel, p.Position, p.Latitude, p.Longitude,
		p.ReputationScore, p.IsActive, p.IsSuspended, p.IsBanned,
		p.SuspensionReason, p.SuspensionExpiresAt,
		p.MatchesPlayed, p.Goals, p.Assists, p.YellowCards, p.RedCards, p.MVPAwards,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func (r *playerRepo) UpdateReputation(ctx context.Context, db DBTX, id uuid.UUID, score float64) error {
	_, err := db.Exec(ctx,
		`UPDATE players SET reputation_score = $2, updated_at = now() WHERE id = $1`,
		id, score)
	if err != nil {
		return fmt.Errorf("update reputation: %w", err)
	}
	return nil
}

func (r *playerRepo) SetSuspension(ctx context.Context, db DBTX, id uuid.UUID, reason string, expiresAt time.Time) error {
	_, err := db.Exec(ctx, `
		UPDATE players
		SET is_suspended = true, suspension_reason = $2, suspension_expires_at = $3, updated_at = now()
		WHERE id = $1`,
		id, reason, expiresAt)
	if err != nil {
		return fmt.Errorf("set suspension: %w", err)
	}
	return nil
}

func (r *playerRepo) SetBan(ctx context.Context, db DBTX, id uuid.UUID, reason string) error {
	_, err := db.Exec(ctx, `
		UPDATE players
		SET is_banned = true, is_active = false, is_suspended = true,
			suspension_reason = $2, suspension_expires_at = NULL, updated_at = now()
		WHERE id = $1`,
		id, reason)
	if err != nil {
		return fmt.Errorf("set ban: %w", err)
	}
	return nil
}

func (r *playerRepo) InsertWarning(ctx context.Context, db DBTX, w *domain.Warning) error {
	_, err := db.Exec(ctx, `
		INSERT INTO player_warnings (id, player_id, reason, report_id, issued_at)
		VALUES ($1, $2, $3, $4, $5)`,
		w.ID, w.PlayerID, w.Reason, w.ReportID, w.IssuedAt)
	if err != nil {
		return fmt.Errorf("insert warning: %w", err)
	}
	return nil
}

func (r *playerRepo) ClearExpiredSuspensions(ctx context.Context, db DBTX, now time.Time) (int, error) {
	tag, err := db.Exec(ctx, `
		UPDATE players
		SET is_suspended = false, suspension_reason = '', suspension_expires_at = NULL, updated_at = now()
		WHERE is_suspended = true AND is_banned = false
		  AND suspension_expires_at IS NOT NULL AND suspension_expires_at < $1`,
		now)
	if err != nil {
		return 0, fmt.Errorf("clear expired suspensions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *playerRepo) IncrementMatchesPlayed(ctx context.Context, db DBTX, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Exec(ctx,
		`UPDATE players SET matches_played = matches_played + 1, updated_at = now() WHERE id = ANY($1)`,
		ids)
	if err != nil {
		return fmt.Errorf("increment matches played: %w", err)
	}
	return nil
}

// FindWithinRadius uses a haversine distance filter over player home
// coordinates. Good enough at city scale; no PostGIS dependency.
func (r *playerRepo) FindWithinRadius(ctx context.Context, db DBTX, lat, lng float64, meters int) ([]domain.Player, error) {
	rows, err := db.Query(ctx, `
		SELECT `+playerColumns+`
		FROM players
		WHERE 2 * 6371000 * asin(sqrt(
			pow(sin(radians(latitude - $1) / 2), 2) +
			cos(radians($1)) * cos(radians(latitude)) *
			pow(sin(radians(longitude - $2) / 2), 2)
		)) <= $3`,
		lat, lng, meters)
	if err != nil {
		return nil, fmt.Errorf("query players within radius: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func scanPlayer(row pgx.Row) (*domain.Player, error) {
	var p domain.Player
	err := row.Scan(
		&p.ID, &p.Name, &p.Username, &p.SkillLevel, &p.Position, &p.Latitude, &p.Longitude,
		&p.ReputationScore, &p.IsActive, &p.IsSuspended, &p.IsBanned,
		&p.SuspensionReason, &p.SuspensionExpiresAt,
		&p.MatchesPlayed, &p.Goals, &p.Assists, &p.YellowCards, &p.RedCards, &p.MVPAwards,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan player: %w", err)
	}
	return &p, nil
}
