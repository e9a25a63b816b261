package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const matchColumns = `id, title, organizer_id, referee_id, format, skill_level_required,
	latitude, longitude, address, date_time, late_join_deadline_min,
	status, team_a, team_b, started_at, ended_at, created_at, updated_at, version`

type matchRepo struct{}

// NewMatchRepository returns a pgx-backed MatchRepository. Rosters are
// stored as jsonb documents on the match row so a single row lock covers
// both teams.
func NewMatchRepository() MatchRepository {
	return &matchRepo{}
}

func (r *matchRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Match, error) {
	row := db.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

func (r *matchRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Match, error) {
	row := tx.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, id)
	return scanMatch(row)
}

func (r *matchRepo) Create(ctx context.Context, db DBTX, m *domain.Match) error {
	teamA, teamB, err := marshalRosters(m)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, `
		INSERT INTO matches (id, title, organizer_id, referee_id, format, skill_level_required,
			latitude, longitude, address, date_time, late_join_deadline_min,
			status, team_a, team_b, started_at, ended_at, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		m.ID, m.Title, m.OrganizerID, m.RefereeID, m.Format, m.SkillLevelRequired,
		m.Latitude, m.Longitude, m.Address, m.DateTime, m.LateJoinDeadlineMin,
		m.Status, teamA, teamB, m.StartedAt, m.EndedAt, m.CreatedAt, m.UpdatedAt, m.Version,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (r *matchRepo) Update(ctx context.Context, db DBTX, m *domain.Match) error {
	teamA, teamB, err := marshalRosters(m)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, `
		UPDATE matches
		SET status = $2, team_a = $3, team_b = $4,
			started_at = $5, ended_at = $6, updated_at = now(), version = version + 1
		WHERE id = $1 AND version = $7`,
		m.ID, m.Status, teamA, teamB, m.StartedAt, m.EndedAt, m.Version,
	)
	if err != nil {
		return fmt.Errorf("update match: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMatchLocked()
	}
	m.Version++
	return nil
}

func (r *matchRepo) FindNearby(ctx context.Context, db DBTX, lat, lng float64, meters int) ([]domain.Match, error) {
	rows, err := db.Query(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE status IN ('open', 'full') AND date_time > now()
		  AND 2 * 6371000 * asin(sqrt(
			pow(sin(radians(latitude - $1) / 2), 2) +
			cos(radians($1)) * cos(radians(latitude)) *
			pow(sin(radians(longitude - $2) / 2), 2)
		  )) <= $3
		ORDER BY date_time ASC`,
		lat, lng, meters)
	if err != nil {
		return nil, fmt.Errorf("query nearby matches: %w", err)
	}
	defer rows.Close()

	var matches []domain.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func marshalRosters(m *domain.Match) ([]byte, []byte, error) {
	teamA, err := json.Marshal(m.TeamARoster)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal team a roster: %w", err)
	}
	teamB, err := json.Marshal(m.TeamBRoster)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal team b roster: %w", err)
	}
	return teamA, teamB, nil
}

func scanMatch(row pgx.Row) (*domain.Match, error) {
	var (
		m            domain.Match
		teamA, teamB []byte
	)
	err := row.Scan(
		&m.ID, &m.Title, &m.OrganizerID, &m.RefereeID, &m.Format, &m.SkillLevelRequired,
		&m.Latitude, &m.Longitude, &m.Address, &m.DateTime, &m.LateJoinDeadlineMin,
		&m.Status, &teamA, &teamB, &m.StartedAt, &m.EndedAt, &m.CreatedAt, &m.UpdatedAt, &m.Version,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan match: %w", err)
	}
	if err := json.Unmarshal(teamA, &m.TeamARoster); err != nil {
		return nil, fmt.Errorf("unmarshal team a roster: %w", err)
	}
	if err := json.Unmarshal(teamB, &m.TeamBRoster); err != nil {
		return nil, fmt.Errorf("unmarshal team b roster: %w", err)
	}
	return &m, nil
}
