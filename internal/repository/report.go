package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reportColumns = `id, reported_player, reported_by, match_id, category, severity,
	description, status, priority, resolution, created_at`

type reportRepo struct{}

// NewReportRepository returns a pgx-backed ReportRepository.
func NewReportRepository() ReportRepository {
	return &reportRepo{}
}

func (r *reportRepo) Insert(ctx context.Context, db DBTX, rep *domain.Report) error {
	res, err := marshalResolution(rep.Resolution)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, `
		INSERT INTO reports (id, reported_player, reported_by, match_id, category, severity,
			description, status, priority, resolution, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rep.ID, rep.ReportedPlayer, rep.ReportedBy, rep.MatchID, rep.Category, rep.Severity,
		rep.Description, rep.Status, rep.Priority, res, rep.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (r *reportRepo) FindByID(ctx context.Context, db DBTX, id uuid.UUID) (*domain.Report, error) {
	row := db.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	return scanReport(row)
}

func (r *reportRepo) CountAgainstSince(ctx context.Context, db DBTX, playerID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := db.QueryRow(ctx,
		`SELECT count(*) FROM reports WHERE reported_player = $1 AND created_at >= $2`,
		playerID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reports since: %w", err)
	}
	return count, nil
}

func (r *reportRepo) CountCriticalUndismissed(ctx context.Context, db DBTX, playerID uuid.UUID) (int, error) {
	var count int
	err := db.QueryRow(ctx, `
		SELECT count(*) FROM reports
		WHERE reported_player = $1 AND severity = 'critical' AND status <> 'dismissed'`,
		playerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count critical reports: %w", err)
	}
	return count, nil
}

func (r *reportRepo) Resolve(ctx context.Context, db DBTX, id uuid.UUID, res domain.Resolution) error {
	payload, err := marshalResolution(&res)
	if err != nil {
		return err
	}
	// resolution IS NULL guards the write-once invariant at the row level.
	tag, err := db.Exec(ctx, `
		UPDATE reports SET status = 'resolved', resolution = $2
		WHERE id = $1 AND resolution IS NULL`,
		id, payload)
	if err != nil {
		return fmt.Errorf("resolve report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict("report already resolved")
	}
	return nil
}

func (r *reportRepo) UpdateStatus(ctx context.Context, db DBTX, id uuid.UUID, status domain.ReportStatus, priority int) error {
	_, err := db.Exec(ctx,
		`UPDATE reports SET status = $2, priority = $3 WHERE id = $1`,
		id, status, priority)
	if err != nil {
		return fmt.Errorf("update report status: %w", err)
	}
	return nil
}

func (r *reportRepo) ListForReview(ctx context.Context, db DBTX, f ReviewFilter) ([]domain.Report, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		add("status = ANY($%d)", statuses)
	}
	if f.Severity != "" {
		add("severity = $%d", f.Severity)
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.MinPriority > 0 {
		add("priority >= $%d", f.MinPriority)
	}

	query := `SELECT ` + reportColumns + ` FROM reports`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY priority DESC, created_at ASC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query review reports: %w", err)
	}
	defer rows.Close()

	var reports []domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *rep)
	}
	return reports, rows.Err()
}

func (r *reportRepo) StatsByPlayer(ctx context.Context, db DBTX, playerID uuid.UUID) (domain.ReportStats, error) {
	var s domain.ReportStats
	err := db.QueryRow(ctx, `
		SELECT count(*),
			count(*) FILTER (WHERE status = 'pending'),
			count(*) FILTER (WHERE status = 'resolved'),
			count(*) FILTER (WHERE status = 'dismissed'),
			count(*) FILTER (WHERE severity = 'critical')
		FROM reports WHERE reported_player = $1`,
		playerID).Scan(&s.Total, &s.Pending, &s.Resolved, &s.Dismissed, &s.Critical)
	if err != nil {
		return domain.ReportStats{}, fmt.Errorf("report stats: %w", err)
	}
	return s, nil
}

func marshalResolution(res *domain.Resolution) ([]byte, error) {
	if res == nil {
		return nil, nil
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("marshal resolution: %w", err)
	}
	return payload, nil
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	var (
		rep domain.Report
		res []byte
	)
	err := row.Scan(
		&rep.ID, &rep.ReportedPlayer, &rep.ReportedBy, &rep.MatchID, &rep.Category,
		&rep.Severity, &rep.Description, &rep.Status, &rep.Priority, &res, &rep.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan report: %w", err)
	}
	if len(res) > 0 {
		rep.Resolution = &domain.Resolution{}
		if err := json.Unmarshal(res, rep.Resolution); err != nil {
			return nil, fmt.Errorf("unmarshal resolution: %w", err)
		}
	}
	return &rep, nil
}
