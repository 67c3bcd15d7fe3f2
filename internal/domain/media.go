package domain

import (
	"context"
	"time"
)

// FileType is the coarse kind of an uploaded asset.
type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
	FileTypePDF   FileType = "pdf"
)

// MediaItem is one uploaded asset attached to a catalog project. Rows are created by
// an upload and removed by a delete; only DisplayOrder is ever updated.
type MediaItem struct {
	ID           string    `json:"id"`
	ProjectSlug  string    `json:"project_slug"`
	Category     Category  `json:"category"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	FileName     string    `json:"file_name"`
	FileURL      string    `json:"file_url"`
	FileType     FileType  `json:"file_type"`
	ContentType  string    `json:"content_type"`
	FileSize     int64     `json:"file_size"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MediaFilter narrows a listing. The zero value lists everything.
type MediaFilter struct {
	Category    Category
	ProjectSlug string
}

// MediaRepository is the row-store side of the media gateway.
type MediaRepository interface {
	Insert(ctx context.Context, item *MediaItem) error
	List(ctx context.Context, filter MediaFilter) ([]MediaItem, error)
	GetByID(ctx context.Context, id string) (*MediaItem, error)
	Delete(ctx context.Context, id string) error
	UpdateDisplayOrder(ctx context.Context, id string, order int, at time.Time) error
	NextDisplayOrder(ctx context.Context, projectSlug string) (int, error)
}
