// Package storage is the object-store half of the media gateway: it keeps uploaded
// bytes and hands out the public URLs the row store records.
package storage

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

// ObjectStore stores objects under slash-separated paths.
type ObjectStore interface {
	// Upload fails if an object already exists at path.
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	// Remove deletes every path; a missing object yields domain.ErrNotFound.
	Remove(ctx context.Context, paths ...string) error
	// PublicURL is the URL a browser can fetch path from. PublicURL("") is the prefix
	// shared by every object of the store.
	PublicURL(path string) string
}

// ResolvePath recovers the object path from a URL issued by store.PublicURL.
func ResolvePath(store ObjectStore, fileURL string) (string, error) {
	rest, ok := strings.CutPrefix(fileURL, store.PublicURL(""))
	if !ok || rest == "" {
		return "", &domain.PathResolutionError{URL: fileURL}
	}
	path, err := url.PathUnescape(rest)
	if err != nil {
		return "", &domain.PathResolutionError{URL: fileURL}
	}
	return path, nil
}

func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
