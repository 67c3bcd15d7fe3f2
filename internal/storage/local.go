package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

var ErrInvalidPath = errors.New("invalid object path")

// Local keeps objects in a directory that the web server exposes under RoutePrefix.
type Local struct {
	dir     string
	baseURL string
	bucket  string
}

// NewLocal creates <root>/<bucket> if needed. baseURL may be empty, in which case
// public URLs are root-relative.
func NewLocal(root, baseURL, bucket string) (*Local, error) {
	dir := filepath.Join(root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		bucket:  bucket,
	}, nil
}

// Dir is the directory holding the bucket's objects.
func (l *Local) Dir() string {
	return l.dir
}

// RoutePrefix is the URL path the objects are served from.
func (l *Local) RoutePrefix() string {
	return "/storage/" + l.bucket
}

func (l *Local) PublicURL(path string) string {
	return l.baseURL + l.RoutePrefix() + "/" + escapePath(path)
}

func (l *Local) resolve(path string) (string, error) {
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return filepath.Join(l.dir, clean), nil
}

func (l *Local) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("object %q: %w", path, domain.ErrConflict)
		}
		return err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("short write: wrote %d of %d bytes", n, size)
	}
	if err != nil {
		os.Remove(full)
		return err
	}
	return nil
}

func (l *Local) Remove(ctx context.Context, paths ...string) error {
	var errs []error
	for _, p := range paths {
		full, err := l.resolve(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := os.Remove(full); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				err = fmt.Errorf("object %q: %w", p, domain.ErrNotFound)
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
