// Package optimizer implements the spec's Component I: grid and genetic
// parameter search with parallel fitness evaluation, multi-objective
// scoring and IS/OOS diagnosis. Grounded on the teacher's
// metrics.OrdersSubmitted-style package-wide counters (here
// metrics.GridCombinationsEvaluated), and on the indicator cache's singleflight pattern
// (package cache) for why concurrent trials are safe to fan out: the
// shared bars/cache state is read-only once a run starts.
package optimizer

import (
	"context"
	"runtime"
	"sort"

	"github.com/quantkit/backtestcore/metrics"
)

// ParamRange describes one tunable knob: values are enumerated/sampled at
// Min, Min+Step, ..., up to Max (inclusive if it lands exactly on a step).
type ParamRange struct {
	Name           string
	Min, Max, Step float64
}

// Steps returns the number of discrete values this range contributes.
func (p ParamRange) Steps() int {
	if p.Step <= 0 || p.Max < p.Min {
		return 1
	}
	n := int((p.Max-p.Min)/p.Step) + 1
	if n < 1 {
		return 1
	}
	return n
}

// ValueAt returns the quantized value at step index i (0-based, clamped).
func (p ParamRange) ValueAt(i int) float64 {
	n := p.Steps()
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	return p.Min + float64(i)*p.Step
}

// Quantize snaps an arbitrary value into the range, floored to the nearest
// step and clamped to [Min, Max].
func (p ParamRange) Quantize(v float64) float64 {
	if p.Step <= 0 {
		if v < p.Min {
			return p.Min
		}
		if v > p.Max {
			return p.Max
		}
		return v
	}
	steps := int((v - p.Min) / p.Step)
	q := p.Min + float64(steps)*p.Step
	if q < p.Min {
		q = p.Min
	}
	if q > p.Max {
		q = p.Max
	}
	return q
}

// Runner evaluates one parameter combination end-to-end (apply params to a
// strategy, run the engine, compute metrics) and returns the result. The
// optimizer is agnostic to how params map onto a Strategy — that binding
// lives with the caller.
type Runner func(ctx context.Context, params map[string]float64) (metrics.Metrics, error)

// Candidate is one evaluated parameter combination.
type Candidate struct {
	Params    map[string]float64
	Metrics   metrics.Metrics
	Objective float64
	Err       error
}

// Result is the ranked outcome of a search: candidates sorted by Objective
// descending, with out-of-sample rows attached to the top-K.
type Result struct {
	Candidates []Candidate
	OOS        map[int][]OOSRow // keyed by index into Candidates
}

// OOSRow is one out-of-sample backtest result attached to a ranked
// candidate; it never affects ranking.
type OOSRow struct {
	Label   string
	Metrics metrics.Metrics
}

// workerCount is one logical core fewer than available, per the spec,
// floored at 1.
func workerCount() int {
	n := runtime.NumCPU() - 1
	if n < 1 {
		return 1
	}
	return n
}

func sortDescending(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Objective > candidates[j].Objective
	})
}
