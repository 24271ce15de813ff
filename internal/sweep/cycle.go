package sweep

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dev-tams/bucketsweep/internal/config"
	"github.com/dev-tams/bucketsweep/internal/metrics"
	"github.com/dev-tams/bucketsweep/internal/storage"
	"github.com/dev-tams/bucketsweep/internal/storage/object"
)

// Runner drives sweep cycles over one bucket.
type Runner struct {
	cfg    *config.Config
	bucket storage.Bucket

	// called after every cycle when non-nil (the upload announcer)
	afterCycle func(ctx context.Context)

	now func() time.Time
}

func New(cfg *config.Config, bucket storage.Bucket) *Runner {
	return &Runner{cfg: cfg, bucket: bucket, now: time.Now}
}

// CycleReport aggregates one scan-and-delete pass. It is built fresh
// every cycle and discarded after logging.
type CycleReport struct {
	Scanned        int
	Deleted        int
	Failed         int
	FailedKeys     []string
	FailedPrefixes []string
}

// Failures reports whether anything in the cycle went wrong.
func (r CycleReport) Failures() bool {
	return r.Failed > 0 || len(r.FailedPrefixes) > 0
}

type prefixReport struct {
	prefix  string
	scanned int
	deleted int
	failed  []string
	listErr error
}

// RunCycle performs one scan-filter-delete pass over every configured
// prefix. Prefixes fan out over a bounded worker pool; every object in
// the cycle is judged against the same instant. One prefix failing never
// touches the outcome of another.
func (r *Runner) RunCycle(ctx context.Context) CycleReport {
	now := r.now().UTC()

	var (
		mu  sync.Mutex
		rep CycleReport
		wg  sync.WaitGroup
	)

	sem := make(chan struct{}, r.cfg.Workers)
	for _, prefix := range r.cfg.Prefixes {
		wg.Add(1)
		sem <- struct{}{}
		go func(prefix string) {
			defer wg.Done()
			defer func() { <-sem }()

			pr := r.sweepPrefixSafe(ctx, prefix, now)

			mu.Lock()
			rep.Scanned += pr.scanned
			rep.Deleted += pr.deleted
			rep.Failed += len(pr.failed)
			rep.FailedKeys = append(rep.FailedKeys, pr.failed...)
			if pr.listErr != nil {
				rep.FailedPrefixes = append(rep.FailedPrefixes, prefix)
			}
			mu.Unlock()
		}(prefix)
	}
	wg.Wait()

	return rep
}

// sweepPrefixSafe keeps a panicking prefix inside its own failure
// domain: the prefix is marked failed and the rest of the cycle is
// untouched.
func (r *Runner) sweepPrefixSafe(ctx context.Context, prefix string, now time.Time) (pr prefixReport) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().
				Interface("panic", p).
				Str("stack", string(debug.Stack())).
				Str("prefix", prefix).
				Msg("prefix sweep panicked")
			pr = prefixReport{prefix: prefix, listErr: fmt.Errorf("panic: %v", p)}
		}
	}()
	return r.sweepPrefix(ctx, prefix, now)
}

func (r *Runner) sweepPrefix(ctx context.Context, prefix string, now time.Time) prefixReport {
	var objects []object.Info
	err := r.cfg.Retry.Do(ctx, func() error {
		var err error
		objects, err = r.bucket.List(ctx, prefix)
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("listing failed, skipping prefix this cycle")
		metrics.ListFailures.Inc()
		return prefixReport{prefix: prefix, listErr: err}
	}

	var stale []string
	scanned := 0
	for _, obj := range objects {
		if obj.Key == prefix {
			// zero-byte folder marker for the prefix itself
			continue
		}
		scanned++
		metrics.ObjectsScanned.Inc()
		if IsStale(obj, now, r.cfg.AgeThreshold) {
			stale = append(stale, obj.Key)
		}
	}

	deleted, failed := deleteBatch(ctx, r.bucket, stale, r.cfg.Retry)

	log.Info().
		Str("prefix", prefix).
		Int("scanned", scanned).
		Int("stale", len(stale)).
		Int("deleted", deleted).
		Int("failed", len(failed)).
		Msg("prefix swept")

	return prefixReport{
		prefix:  prefix,
		scanned: scanned,
		deleted: deleted,
		failed:  failed,
	}
}
