package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

type VisitRepository struct {
	db *sql.DB
}

func NewVisitRepository(db *sql.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

func (r *VisitRepository) Record(ctx context.Context, v *domain.Visit) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, visited_at)
		VALUES (?, ?, ?, ?)
	`, v.HashedIP, v.UserAgent, v.Path, formatTime(v.VisitedAt))
	if err != nil {
		return err
	}
	v.ID, err = res.LastInsertId()
	return err
}

func (r *VisitRepository) Stats(ctx context.Context, now time.Time, recent int) (*domain.VisitStats, error) {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.AddDate(0, 0, -7)

	stats := &domain.VisitStats{Recent: []domain.Visit{}}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(DISTINCT hashed_ip),
			COALESCE(SUM(CASE WHEN visited_at >= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN visited_at >= ? THEN 1 ELSE 0 END), 0)
		FROM visitors
	`, formatTime(midnight), formatTime(weekAgo)).Scan(&stats.Total, &stats.Unique, &stats.Today, &stats.ThisWeek)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, path, visited_at
		FROM visitors
		ORDER BY visited_at DESC, id DESC
		LIMIT ?
	`, recent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			v  domain.Visit
			at string
		)
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &at); err != nil {
			return nil, err
		}
		if v.VisitedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		stats.Recent = append(stats.Recent, v)
	}
	return stats, rows.Err()
}

func (r *VisitRepository) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM visitors WHERE visited_at < ?`, formatTime(t))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
