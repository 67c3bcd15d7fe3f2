// Package media is the access layer over the two halves of the media gateway: the
// object store holding uploaded bytes and the row store describing them.
package media

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/Zachkp/design-portfolio/internal/catalog"
	"github.com/Zachkp/design-portfolio/internal/domain"
	"github.com/Zachkp/design-portfolio/internal/storage"
)

// UploadRequest describes one file posted by the admin form.
type UploadRequest struct {
	File        io.Reader `validate:"required"`
	FileName    string
	ContentType string
	Size        int64
	Project     string `validate:"required"`
	Title       string `validate:"required,max=200"`
	Description string `validate:"max=2000"`
}

type Service struct {
	repo    domain.MediaRepository
	store   storage.ObjectStore
	catalog *catalog.Catalog
	log     *slog.Logger
	now     func() time.Time
}

func NewService(repo domain.MediaRepository, store storage.ObjectStore, cat *catalog.Catalog, log *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		store:   store,
		catalog: cat,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Upload validates req, stores the object and then inserts its row. A failed insert
// leaves the stored object in place.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*domain.MediaItem, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	project, ok := s.catalog.Lookup(req.Project)
	if !ok {
		return nil, &domain.ValidationError{Field: "project", Message: "Please choose one of the listed projects."}
	}

	file := req.File
	contentType := normalizeType(req.ContentType)
	if needsSniffing(contentType) {
		detected, r, err := DetectContentType(file)
		if err != nil {
			return nil, &domain.ValidationError{Field: "file", Message: "The selected file could not be read."}
		}
		contentType, file = detected, r
	}
	fileType, err := ValidateFile(contentType, req.Size)
	if err != nil {
		return nil, err
	}

	now := s.now()
	path := ObjectPath(project.Slug, req.FileName, contentType, now.UnixMilli())
	if err := s.store.Upload(ctx, path, file, req.Size, contentType); err != nil {
		return nil, &domain.GatewayError{Op: "storage.upload", Err: err}
	}

	order, err := s.repo.NextDisplayOrder(ctx, project.Slug)
	if err != nil {
		return nil, &domain.GatewayError{Op: "rows.select", Err: err}
	}
	item := &domain.MediaItem{
		ID:           uuid.NewString(),
		ProjectSlug:  project.Slug,
		Category:     project.Category,
		Title:        req.Title,
		Description:  req.Description,
		FileName:     filepath.Base(req.FileName),
		FileURL:      s.store.PublicURL(path),
		FileType:     fileType,
		ContentType:  contentType,
		FileSize:     req.Size,
		DisplayOrder: order,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		s.log.Warn("row insert failed after upload, object left in place", "path", path, "error", err)
		return nil, &domain.GatewayError{Op: "rows.insert", Err: err}
	}

	s.log.Info("media uploaded",
		"id", item.ID,
		"project", item.ProjectSlug,
		"type", item.FileType,
		"size", humanize.IBytes(uint64(item.FileSize)),
	)
	return item, nil
}

// List returns media matching filter: "" or "All" for everything, a category name,
// or otherwise a project slug.
func (s *Service) List(ctx context.Context, filter string) ([]domain.MediaItem, error) {
	items, err := s.repo.List(ctx, ParseFilter(filter))
	if err != nil {
		return nil, &domain.GatewayError{Op: "rows.list", Err: err}
	}
	return items, nil
}

func ParseFilter(filter string) domain.MediaFilter {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == string(domain.CategoryAll) {
		return domain.MediaFilter{}
	}
	if c, ok := domain.ParseCategory(filter); ok && c.IsConcrete() {
		return domain.MediaFilter{Category: c}
	}
	return domain.MediaFilter{ProjectSlug: filter}
}

// Delete removes the object behind fileURL and then the row. fileURL must be the one
// stored for id. If the object cannot be removed the row is kept.
func (s *Service) Delete(ctx context.Context, id, fileURL string) error {
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Field: "id", Message: "Missing media id."}
	}
	path, err := storage.ResolvePath(s.store, fileURL)
	if err != nil {
		return err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return &domain.GatewayError{Op: "rows.select", Err: err}
	}
	if item.FileURL != fileURL {
		return &domain.PathResolutionError{URL: fileURL}
	}
	if err := s.store.Remove(ctx, path); err != nil {
		return &domain.GatewayError{Op: "storage.remove", Err: err}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return &domain.GatewayError{Op: "rows.delete", Err: err}
	}
	s.log.Info("media deleted", "id", id, "path", path)
	return nil
}

// Reorder moves an item to a new display position within its project.
func (s *Service) Reorder(ctx context.Context, id string, order int) error {
	if order < 0 {
		return &domain.ValidationError{Field: "order", Message: "Display order cannot be negative."}
	}
	if err := s.repo.UpdateDisplayOrder(ctx, id, order, s.now()); err != nil {
		return &domain.GatewayError{Op: "rows.update", Err: err}
	}
	return nil
}
