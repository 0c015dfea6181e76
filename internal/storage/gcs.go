package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"

	gcs "cloud.google.com/go/storage"
)

// GCS stores files as objects in a Cloud Storage bucket.
type GCS struct {
	client *gcs.Client
	bucket string
}

// NewGCS uses Application Default Credentials.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	if bucket == "" {
		return nil, errors.New("storage: GCS_BUCKET is required")
	}
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: create gcs client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name, err := UniqueName(filename)
	if err != nil {
		return "", err
	}

	// DoesNotExist guards against overwriting an object with the same name.
	obj := g.client.Bucket(g.bucket).Object(name).If(gcs.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = mime.TypeByExtension(filepath.Ext(name))
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: upload %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: finalize %s: %w", name, err)
	}
	return name, nil
}

func (g *GCS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !validStoredName(name) {
		return nil, ErrInvalidName
	}
	rc, err := g.client.Bucket(g.bucket).Object(name).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	return rc, err
}

func (g *GCS) Delete(ctx context.Context, name string) error {
	if !validStoredName(name) {
		return ErrInvalidName
	}
	err := g.client.Bucket(g.bucket).Object(name).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

// trashPrefix holds objects removed by an uncommitted deletion.
const trashPrefix = "trash/"

func (g *GCS) Trash(ctx context.Context, name string) error {
	if !validStoredName(name) {
		return ErrInvalidName
	}
	return g.move(ctx, name, trashPrefix+name)
}

func (g *GCS) Restore(ctx context.Context, name string) error {
	if !validStoredName(name) {
		return ErrInvalidName
	}
	return g.move(ctx, trashPrefix+name, name)
}

func (g *GCS) Purge(ctx context.Context, name string) error {
	if !validStoredName(name) {
		return ErrInvalidName
	}
	err := g.client.Bucket(g.bucket).Object(trashPrefix + name).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("storage: purge %s: %w", name, err)
	}
	return nil
}

// move copies src to dst and then deletes src. A missing src is not an error.
func (g *GCS) move(ctx context.Context, src, dst string) error {
	bucket := g.client.Bucket(g.bucket)
	from := bucket.Object(src)
	if _, err := bucket.Object(dst).CopierFrom(from).Run(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil
		}
		return fmt.Errorf("storage: copy %s to %s: %w", src, dst, err)
	}
	if err := from.Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("storage: delete %s: %w", src, err)
	}
	return nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
