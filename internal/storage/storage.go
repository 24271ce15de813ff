package storage

import (
	"context"

	"github.com/dev-tams/bucketsweep/internal/storage/object"
)

type Bucket interface {
	Name() string
	// List returns every object under prefix. Backends paginate
	// internally; a failed listing restarts from the beginning.
	List(ctx context.Context, prefix string) ([]object.Info, error)
	Delete(ctx context.Context, key string) error
	// Location returns the full identifier for a key (gs://, s3://, path)
	Location(key string) string
}
