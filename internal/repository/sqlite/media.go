package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

type MediaRepository struct {
	db *sql.DB
}

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

const mediaColumns = `id, project_slug, category, title, description, file_name, file_url,
	file_type, content_type, file_size, display_order, created_at, updated_at`

func (r *MediaRepository) Insert(ctx context.Context, item *domain.MediaItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO project_media (`+mediaColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.ProjectSlug, string(item.Category), item.Title, item.Description, item.FileName,
		item.FileURL, string(item.FileType), item.ContentType, item.FileSize, item.DisplayOrder,
		formatTime(item.CreatedAt), formatTime(item.UpdatedAt))
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *MediaRepository) List(ctx context.Context, filter domain.MediaFilter) ([]domain.MediaItem, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" && filter.Category != domain.CategoryAll {
		where = append(where, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.ProjectSlug != "" {
		where = append(where, "project_slug = ?")
		args = append(args, filter.ProjectSlug)
	}
	query := "SELECT " + mediaColumns + " FROM project_media"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY display_order ASC, created_at DESC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
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

func (r *MediaRepository) GetByID(ctx context.Context, id string) (*domain.MediaItem, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+mediaColumns+" FROM project_media WHERE id = ?", id)
	item, err := scanMedia(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return item, err
}

func (r *MediaRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM project_media WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (r *MediaRepository) UpdateDisplayOrder(ctx context.Context, id string, order int, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE project_media SET display_order = ?, updated_at = ? WHERE id = ?",
		order, formatTime(at), id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

func (r *MediaRepository) NextDisplayOrder(ctx context.Context, projectSlug string) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(display_order), -1) + 1 FROM project_media WHERE project_slug = ?",
		projectSlug).Scan(&next)
	return next, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMedia(s scanner) (*domain.MediaItem, error) {
	var (
		item                 domain.MediaItem
		category, fileType   string
		createdAt, updatedAt string
	)
	err := s.Scan(&item.ID, &item.ProjectSlug, &category, &item.Title, &item.Description, &item.FileName,
		&item.FileURL, &fileType, &item.ContentType, &item.FileSize, &item.DisplayOrder, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	item.Category = domain.Category(category)
	item.FileType = domain.FileType(fileType)
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
