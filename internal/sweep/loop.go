package sweep

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dev-tams/bucketsweep/internal/metrics"
)

// SetAfterCycle registers a hook invoked after each completed cycle,
// before the inter-cycle sleep. Hook failures are the hook's problem;
// the loop does not see them.
func (r *Runner) SetAfterCycle(fn func(ctx context.Context)) {
	r.afterCycle = fn
}

// Run executes cycles forever, sleeping Interval between them. It only
// returns once ctx is cancelled; the cycle in flight at that point is
// allowed to finish and no new cycle is started. A panicking cycle is
// logged and counted as failed, never propagated.
func (r *Runner) Run(ctx context.Context) error {
	log.Info().
		Str("bucket", r.bucket.Name()).
		Strs("prefixes", r.cfg.Prefixes).
		Dur("interval", r.cfg.Interval).
		Dur("age_threshold", r.cfg.AgeThreshold).
		Msg("monitor started")

	for {
		rep := r.runCycleSafe(ctx)

		log.Info().
			Int("scanned", rep.Scanned).
			Int("deleted", rep.Deleted).
			Int("failed", rep.Failed).
			Strs("failed_prefixes", rep.FailedPrefixes).
			Msg("cycle finished")

		if r.afterCycle != nil {
			r.afterCycle(ctx)
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("shutdown requested")
			return nil
		default:
		}

		sleep(ctx, r.cfg.Interval)
		if ctx.Err() != nil {
			log.Info().Msg("shutdown requested")
			return nil
		}
	}
}

// runCycleSafe is the defensive boundary around a cycle: anything
// escaping RunCycle becomes a failed cycle, and the next one is still
// scheduled.
func (r *Runner) runCycleSafe(ctx context.Context) (rep CycleReport) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().
				Interface("panic", p).
				Str("stack", string(debug.Stack())).
				Msg("cycle panicked")
			metrics.CycleFailures.Inc()
			rep = CycleReport{FailedPrefixes: r.cfg.Prefixes}
		}
	}()

	start := time.Now()
	rep = r.RunCycle(ctx)

	metrics.Cycles.Inc()
	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	if rep.Failures() {
		metrics.CycleFailures.Inc()
	}
	return rep
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
