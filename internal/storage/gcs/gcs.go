package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gstorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"

	"github.com/dev-tams/bucketsweep/internal/retry"
	"github.com/dev-tams/bucketsweep/internal/storage/object"
)

// Bucket is the Google Cloud Storage backend (the "gke" provider).
// Authentication uses application default credentials.
type Bucket struct {
	name   string
	client *gstorage.Client
	handle *gstorage.BucketHandle
}

func New(ctx context.Context, bucket string) (*Bucket, error) {
	if bucket == "" {
		return nil, fmt.Errorf("gcs: bucket is required")
	}

	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}

	return &Bucket{
		name:   bucket,
		client: client,
		handle: client.Bucket(bucket),
	}, nil
}

func (b *Bucket) Name() string { return b.name }

func (b *Bucket) Location(key string) string {
	return fmt.Sprintf("gs://%s/%s", b.name, key)
}

func (b *Bucket) Close() error { return b.client.Close() }

func (b *Bucket) List(ctx context.Context, prefix string) ([]object.Info, error) {
	it := b.handle.Objects(ctx, &gstorage.Query{Prefix: prefix})

	var out []object.Info
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classify(fmt.Errorf("gcs list %s: %w", prefix, err))
		}
		out = append(out, object.Info{
			Key:     attrs.Name,
			Size:    attrs.Size,
			ModTime: attrs.Updated,
		})
	}
	return out, nil
}

func (b *Bucket) Delete(ctx context.Context, key string) error {
	err := b.handle.Object(key).Delete(ctx)
	if err != nil {
		if errors.Is(err, gstorage.ErrObjectNotExist) {
			return fmt.Errorf("gcs delete %s: %w", key, object.ErrNotFound)
		}
		return classify(fmt.Errorf("gcs delete %s: %w", key, err))
	}
	return nil
}

// classify marks errors that retrying cannot fix.
func classify(err error) error {
	if errors.Is(err, gstorage.ErrBucketNotExist) {
		return retry.Permanent(err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return retry.Permanent(err)
		}
	}
	return err
}
