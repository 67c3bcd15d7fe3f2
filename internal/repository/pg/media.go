package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

type MediaPostgresRepository struct {
	pool *pgxpool.Pool
}

func CreateMediaTable() string {
	return `CREATE TABLE IF NOT EXISTS project_media
(
	id VARCHAR(64) NOT NULL PRIMARY KEY,
	project_slug VARCHAR(100) NOT NULL,
	category VARCHAR(100) NOT NULL,
	title VARCHAR(300) NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	file_name VARCHAR(300) NOT NULL,
	file_url TEXT NOT NULL,
	file_type VARCHAR(10) NOT NULL CHECK (file_type IN ('image', 'video', 'pdf')),
	content_type VARCHAR(100) NOT NULL,
	file_size BIGINT NOT NULL CHECK (file_size >= 0),
	display_order INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_project_media_slug ON project_media(project_slug);
CREATE INDEX IF NOT EXISTS idx_project_media_category ON project_media(category);`
}

const mediaColumns = `id, project_slug, category, title, description, file_name, file_url,
	file_type, content_type, file_size, display_order, created_at, updated_at`

func (m *MediaPostgresRepository) Insert(ctx context.Context, item *domain.MediaItem) error {
	cmd, err := m.pool.Exec(ctx, `INSERT INTO project_media(`+mediaColumns+`)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		item.ID, item.ProjectSlug, string(item.Category), item.Title, item.Description, item.FileName,
		item.FileURL, string(item.FileType), item.ContentType, item.FileSize, item.DisplayOrder,
		item.CreatedAt.UTC(), item.UpdatedAt.UTC())
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return err
	}
	if cmd.RowsAffected() != 1 {
		return fmt.Errorf("RowsAffected() = %d", cmd.RowsAffected())
	}
	return nil
}

func (m *MediaPostgresRepository) List(ctx context.Context, filter domain.MediaFilter) ([]domain.MediaItem, error) {
	var category any
	if filter.Category != "" && filter.Category != domain.CategoryAll {
		category = string(filter.Category)
	}
	var slug any
	if filter.ProjectSlug != "" {
		slug = filter.ProjectSlug
	}
	rows, err := m.pool.Query(ctx, `SELECT `+mediaColumns+` FROM project_media
		WHERE ($1::text IS NULL OR category = $1) AND ($2::text IS NULL OR project_slug = $2)
		ORDER BY display_order ASC, created_at DESC, id ASC`, category, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.MediaItem, 0)
	for rows.Next() {
		item, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (m *MediaPostgresRepository) GetByID(ctx context.Context, id string) (*domain.MediaItem, error) {
	row := m.pool.QueryRow(ctx, `SELECT `+mediaColumns+` FROM project_media WHERE id = $1`, id)
	item, err := scanMedia(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return item, err
}

func (m *MediaPostgresRepository) Delete(ctx context.Context, id string) error {
	cmd, err := m.pool.Exec(ctx, "DELETE FROM project_media WHERE id = $1", id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *MediaPostgresRepository) UpdateDisplayOrder(ctx context.Context, id string, order int, at time.Time) error {
	cmd, err := m.pool.Exec(ctx,
		"UPDATE project_media SET display_order = $1, updated_at = $2 WHERE id = $3",
		order, at.UTC(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (m *MediaPostgresRepository) NextDisplayOrder(ctx context.Context, projectSlug string) (int, error) {
	var next int
	err := m.pool.QueryRow(ctx,
		"SELECT COALESCE(MAX(display_order), -1) + 1 FROM project_media WHERE project_slug = $1",
		projectSlug).Scan(&next)
	return next, err
}

func scanMedia(row pgx.Row) (*domain.MediaItem, error) {
	var (
		item               domain.MediaItem
		category, fileType string
	)
	err := row.Scan(&item.ID, &item.ProjectSlug, &category, &item.Title, &item.Description, &item.FileName,
		&item.FileURL, &fileType, &item.ContentType, &item.FileSize, &item.DisplayOrder,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Category = domain.Category(category)
	item.FileType = domain.FileType(fileType)
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	return &item, nil
}

func NewMediaPostgresRepository(pool *pgxpool.Pool) *MediaPostgresRepository {
	return &MediaPostgresRepository{
		pool: pool,
	}
}
