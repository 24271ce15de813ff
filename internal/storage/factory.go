package storage

import (
	"context"
	"fmt"

	"github.com/dev-tams/bucketsweep/internal/config"
	"github.com/dev-tams/bucketsweep/internal/storage/gcs"
	"github.com/dev-tams/bucketsweep/internal/storage/local"
	s3store "github.com/dev-tams/bucketsweep/internal/storage/s3"
)

// FromConfig builds the bucket backend selected by CLOUD_PROVIDER.
func FromConfig(ctx context.Context, cfg *config.Config) (Bucket, error) {
	switch cfg.CloudProvider {
	case "gke":
		b, err := gcs.New(ctx, cfg.Bucket)
		if err != nil {
			return nil, fmt.Errorf("provider gke: %w", err)
		}
		return b, nil

	case "aws":
		if cfg.Region == "" {
			return nil, fmt.Errorf("provider aws: AWS_REGION is required")
		}
		b, err := s3store.New(ctx, s3store.Options{
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("provider aws: %w", err)
		}
		return b, nil

	case "local":
		if cfg.LocalPath == "" {
			return nil, fmt.Errorf("provider local: LOCAL_PATH is required")
		}
		return local.New(cfg.Bucket, cfg.LocalPath), nil

	default:
		return nil, fmt.Errorf("unknown CLOUD_PROVIDER %q", cfg.CloudProvider)
	}
}
