package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

type VisitPostgresRepository struct {
	pool *pgxpool.Pool
}

func CreateVisitTable() string {
	return `CREATE TABLE IF NOT EXISTS visitors
(
	id BIGSERIAL PRIMARY KEY,
	hashed_ip VARCHAR(64) NOT NULL,
	user_agent TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL,
	visited_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visitors_visited_at ON visitors(visited_at);`
}

func (v *VisitPostgresRepository) Record(ctx context.Context, visit *domain.Visit) error {
	return v.pool.QueryRow(ctx,
		"INSERT INTO visitors(hashed_ip, user_agent, path, visited_at) VALUES($1, $2, $3, $4) RETURNING id",
		visit.HashedIP, visit.UserAgent, visit.Path, visit.VisitedAt.UTC()).Scan(&visit.ID)
}

func (v *VisitPostgresRepository) Stats(ctx context.Context, now time.Time, recent int) (*domain.VisitStats, error) {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stats := &domain.VisitStats{Recent: []domain.Visit{}}
	err := v.pool.QueryRow(ctx, `SELECT
			COUNT(*),
			COUNT(DISTINCT hashed_ip),
			COUNT(*) FILTER (WHERE visited_at >= $1),
			COUNT(*) FILTER (WHERE visited_at >= $2)
		FROM visitors`, midnight, now.AddDate(0, 0, -7)).
		Scan(&stats.Total, &stats.Unique, &stats.Today, &stats.ThisWeek)
	if err != nil {
		return nil, err
	}

	rows, err := v.pool.Query(ctx, `SELECT id, hashed_ip, user_agent, path, visited_at
		FROM visitors ORDER BY visited_at DESC, id DESC LIMIT $1`, recent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var visit domain.Visit
		if err := rows.Scan(&visit.ID, &visit.HashedIP, &visit.UserAgent, &visit.Path, &visit.VisitedAt); err != nil {
			return nil, err
		}
		visit.VisitedAt = visit.VisitedAt.UTC()
		stats.Recent = append(stats.Recent, visit)
	}
	return stats, rows.Err()
}

func (v *VisitPostgresRepository) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	cmd, err := v.pool.Exec(ctx, "DELETE FROM visitors WHERE visited_at < $1", t.UTC())
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func NewVisitPostgresRepository(pool *pgxpool.Pool) *VisitPostgresRepository {
	return &VisitPostgresRepository{
		pool: pool,
	}
}
