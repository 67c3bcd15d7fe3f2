package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Zachkp/design-portfolio/internal/domain"
)

// GCS stores objects in a publicly readable Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS uses application default credentials unless credentialsFile is set.
func NewGCS(ctx context.Context, bucket, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing storage client: %v", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) PublicURL(path string) string {
	return "https://storage.googleapis.com/" + g.bucket + "/" + escapePath(path)
}

func (g *GCS) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	obj := g.client.Bucket(g.bucket).Object(path).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return fmt.Errorf("object %q: %w", path, domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (g *GCS) Remove(ctx context.Context, paths ...string) error {
	var errs []error
	for _, p := range paths {
		err := g.client.Bucket(g.bucket).Object(p).Delete(ctx)
		if errors.Is(err, storage.ErrObjectNotExist) {
			err = fmt.Errorf("object %q: %w", p, domain.ErrNotFound)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *GCS) Close() error {
	return g.client.Close()
}
