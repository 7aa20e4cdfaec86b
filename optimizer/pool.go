package optimizer

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/quantkit/backtestcore/metrics"
)

// evalAll fans combos out across workerCount() goroutines bounded by a
// weighted semaphore, collecting one Candidate per combo in input order.
// A per-trial error is captured on that Candidate rather than aborting the
// others, per the spec's "failing trial returns a null result ... and the
// optimizer proceeds" rule; only context cancellation aborts the whole
// sweep.
func evalAll(ctx context.Context, combos []map[string]float64, run Runner) ([]Candidate, error) {
	out := make([]Candidate, len(combos))
	sem := semaphore.NewWeighted(int64(workerCount()))
	g, gctx := errgroup.WithContext(ctx)

	for i, params := range combos {
		i, params := i, params
		if err := sem.Acquire(gctx, 1); err != nil {
			// context was cancelled while queuing; stop dispatching more
			// work and let already-dispatched goroutines drain.
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			m, err := run(gctx, params)
			out[i] = Candidate{Params: params, Metrics: m, Err: err}
			metrics.GridCombinationsEvaluated.Inc()
			if gctx.Err() != nil {
				return gctx.Err()
			}
			return nil
		})
	}
	err := g.Wait()
	if ctx.Err() != nil {
		return out, ctx.Err()
	}
	return out, ignoreTrialErrors(err)
}

// ignoreTrialErrors treats a context-cancellation bubbled through errgroup
// as the only fatal error; individual trial failures are already captured
// per-Candidate and must not abort the sweep.
func ignoreTrialErrors(err error) error {
	if err == context.Canceled || err == context.DeadlineExceeded {
		return err
	}
	return nil
}
