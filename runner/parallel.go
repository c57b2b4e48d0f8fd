package runner

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the worker pool when no explicit concurrency is
// configured.
const DefaultConcurrency = 4

// runParallel executes unit plans across a bounded worker pool. Each unit's
// cases still run serially inside one worker so setup/teardown semantics
// match the serial path. Workers append results through the shared suite
// mutex and the caller re-sorts by discovery index afterwards. Returns true
// when fail-fast stopped the run before every plan executed.
func (r *Runner) runParallel(ctx context.Context, plans []unitPlan) bool {
	concurrency := r.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > len(plans) && len(plans) > 0 {
		concurrency = len(plans)
	}

	r.log.Debug().Int("concurrency", concurrency).Int("units", len(plans)).Msg("Parallel execution")

	var stop atomic.Bool
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, p := range plans {
		p := p
		if stop.Load() {
			break
		}
		g.Go(func() error {
			if stop.Load() || gctx.Err() != nil {
				return nil
			}
			if stopped := r.runUnit(gctx, p); stopped {
				stop.Store(true)
			}
			return nil
		})
	}

	// Workers never return errors; failures live in the suite results.
	_ = g.Wait()
	return stop.Load()
}
