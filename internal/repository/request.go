package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const requestColumns = `id, match_id, requested_by, position_needed, slots_available,
	target_skill_level, max_distance_m, message, status, auto_fulfill, expires_at,
	players_contacted, players_joined,
	total_contacted, total_interested, total_joined, created_at, updated_at`

type requestRepo struct{}

// NewRequestRepository returns a pgx-backed RequestRepository. The contact
// and join tracking lists live in jsonb columns so one row lock covers the
// whole request document.
func NewRequestRepository() RequestRepository {
	return &requestRepo{}
}

func (r *requestRepo) Insert(ctx context.Context, db DBTX, req *domain.MatchRequest) error {
	contacted, joined, err := marshalTracking(req)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, `
		INSERT INTO match_requests (id, match_id, requested_by, position_needed, slots_available,
			target_skill_level, max_distance_m, message, status, auto_fulfill, expires_at,
			players_contacted, players_joined,
			total_contacted, total_interested, total_joined, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		req.ID, req.MatchID, req.RequestedBy, req.PositionNeeded, req.SlotsAvailable,
		req.TargetSkillLevel, req.MaxDistanceM, req.Message, req.Status, req.AutoFulfill, req.ExpiresAt,
		contacted, joined,
		req.TotalContacted, req.TotalInterested, req.TotalJoined, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert match request: %w", err)
	}
	return nil
}

func (r *requestRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.MatchRequest, error) {
	row := db.QueryRow(ctx, `SELECT `+requestColumns+` FROM match_requests WHERE id = $1`, id)
	return scanRequest(row)
}

func (r *requestRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.MatchRequest, error) {
	row := tx.QueryRow(ctx, `SELECT `+requestColumns+` FROM match_requests WHERE id = $1 FOR UPDATE`, id)
	return scanRequest(row)
}

func (r *requestRepo) Update(ctx context.Context, db DBTX, req *domain.MatchRequest) error {
	contacted, joined, err := marshalTracking(req)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, `
		UPDATE match_requests
		SET status = $2, players_contacted = $3, players_joined = $4,
			total_contacted = $5, total_interested = $6, total_joined = $7,
			updated_at = now()
		WHERE id = $1`,
		req.ID, req.Status, contacted, joined,
		req.TotalContacted, req.TotalInterested, req.TotalJoined,
	)
	if err != nil {
		return fmt.Errorf("update match request: %w", err)
	}
	return nil
}

func (r *requestRepo) ExpireDue(ctx context.Context, db DBTX, now time.Time) (int, error) {
	tag, err := db.Exec(ctx, `
		UPDATE match_requests
		SET status = 'expired', updated_at = now()
		WHERE status = 'active' AND expires_at < $1`,
		now)
	if err != nil {
		return 0, fmt.Errorf("expire due requests: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func marshalTracking(req *domain.MatchRequest) ([]byte, []byte, error) {
	contacted, err := json.Marshal(req.PlayersContacted)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal contacted list: %w", err)
	}
	joined, err := json.Marshal(req.PlayersJoined)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal joined list: %w", err)
	}
	return contacted, joined, nil
}

func scanRequest(row pgx.Row) (*domain.MatchRequest, error) {
	var (
		req               domain.MatchRequest
		contacted, joined []byte
	)
	err := row.Scan(
		&req.ID, &req.MatchID, &req.RequestedBy, &req.PositionNeeded, &req.SlotsAvailable,
		&req.TargetSkillLevel, &req.MaxDistanceM, &req.Message, &req.Status, &req.AutoFulfill, &req.ExpiresAt,
		&contacted, &joined,
		&req.TotalContacted, &req.TotalInterested, &req.TotalJoined, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan match request: %w", err)
	}
	if err := json.Unmarshal(contacted, &req.PlayersContacted); err != nil {
		return nil, fmt.Errorf("unmarshal contacted list: %w", err)
	}
	if err := json.Unmarshal(joined, &req.PlayersJoined); err != nil {
		return nil, fmt.Errorf("unmarshal joined list: %w", err)
	}
	return &req, nil
}
