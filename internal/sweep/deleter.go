package sweep

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dev-tams/bucketsweep/internal/metrics"
	"github.com/dev-tams/bucketsweep/internal/retry"
	"github.com/dev-tams/bucketsweep/internal/storage"
	"github.com/dev-tams/bucketsweep/internal/storage/object"
)

// deleteBatch issues a best-effort delete for every key. A key that is
// already absent counts as deleted. A failed key never stops the rest of
// the batch; it is retried through pol first and then recorded.
func deleteBatch(ctx context.Context, b storage.Bucket, keys []string, pol retry.Policy) (deleted int, failed []string) {
	for _, key := range keys {
		err := pol.Do(ctx, func() error {
			if err := b.Delete(ctx, key); err != nil {
				if errors.Is(err, object.ErrNotFound) {
					// already gone, same outcome
					return nil
				}
				return err
			}
			return nil
		})
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("delete failed")
			metrics.DeleteFailures.Inc()
			failed = append(failed, key)
			continue
		}

		log.Debug().Str("key", key).Msg("deleted")
		metrics.ObjectsDeleted.Inc()
		deleted++
	}
	return deleted, failed
}
