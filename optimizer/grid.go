package optimizer

import (
	"context"

	"github.com/quantkit/backtestcore/backtesterr"
)

// GridCap is the hard ceiling on Cartesian-product combinations a grid
// search will attempt, per the spec.
const GridCap = 500000

// BuildGrid enumerates the Cartesian product of ranges, failing fast with
// GridTooLarge before any combination is materialized if the product
// exceeds GridCap.
func BuildGrid(ranges []ParamRange) ([]map[string]float64, error) {
	if len(ranges) == 0 {
		return nil, backtesterr.ErrNoOptimizableParam
	}
	total := 1
	for _, r := range ranges {
		total *= r.Steps()
		if total > GridCap {
			return nil, backtesterr.Wrap(backtesterr.GridTooLarge, "grid exceeds 500000 combinations", nil)
		}
	}

	combos := make([]map[string]float64, 0, total)
	idx := make([]int, len(ranges))
	for {
		combo := make(map[string]float64, len(ranges))
		for k, r := range ranges {
			combo[r.Name] = r.ValueAt(idx[k])
		}
		combos = append(combos, combo)

		pos := len(ranges) - 1
		for pos >= 0 {
			idx[pos]++
			if idx[pos] < ranges[pos].Steps() {
				break
			}
			idx[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}
	return combos, nil
}

// GridSearch evaluates every combination of ranges via run, scores each
// with objectives, and returns candidates sorted descending by objective.
func GridSearch(ctx context.Context, ranges []ParamRange, objectives []ObjectiveKind, run Runner) (Result, error) {
	combos, err := BuildGrid(ranges)
	if err != nil {
		return Result{}, err
	}
	candidates, err := evalAll(ctx, combos, run)
	if err != nil {
		return Result{Candidates: candidates}, err
	}
	scoreCandidates(objectives, candidates)
	sortDescending(candidates)
	return Result{Candidates: candidates}, nil
}
