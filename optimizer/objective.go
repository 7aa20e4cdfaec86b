package optimizer

import (
	"math"

	"github.com/quantkit/backtestcore/metrics"
)

// ObjectiveKind is the closed set of scoring functions a search can rank
// by. MinStagnation and MinUlcerIndex are minimization objectives; every
// other kind is maximized.
type ObjectiveKind int

const (
	MaxNetProfit ObjectiveKind = iota
	MaxProfitFactor
	MaxSharpe
	MaxSortino
	MaxCalmar
	MaxExpectancy
	MinStagnation
	MinUlcerIndex
)

func (k ObjectiveKind) minimize() bool {
	return k == MinStagnation || k == MinUlcerIndex
}

func (k ObjectiveKind) extract(m metrics.Metrics) float64 {
	switch k {
	case MaxNetProfit:
		return m.NetProfit
	case MaxProfitFactor:
		return m.ProfitFactor
	case MaxSharpe:
		return m.Sharpe
	case MaxSortino:
		return m.Sortino
	case MaxCalmar:
		return m.Calmar
	case MaxExpectancy:
		return m.Expectancy
	case MinStagnation:
		return float64(m.StagnationBars)
	case MinUlcerIndex:
		return m.UlcerIndex
	default:
		return 0
	}
}

// Score computes the composite objective for every entry in all, per the
// spec: minimization objectives are negated before normalization, each
// objective is then min-max normalized to [0,1] across the population, and
// the composite is the arithmetic mean of normalized objectives. A single
// objective skips normalization and is returned as the (possibly negated)
// raw value.
func Score(kinds []ObjectiveKind, all []metrics.Metrics) []float64 {
	n := len(all)
	out := make([]float64, n)
	if n == 0 || len(kinds) == 0 {
		return out
	}

	raw := make([][]float64, len(kinds))
	for k, kind := range kinds {
		raw[k] = make([]float64, n)
		for i, m := range all {
			v := kind.extract(m)
			if kind.minimize() {
				v = -v
			}
			raw[k][i] = v
		}
	}

	if len(kinds) == 1 {
		copy(out, raw[0])
		return out
	}

	normalized := make([][]float64, len(kinds))
	for k := range kinds {
		normalized[k] = minMaxNormalize(raw[k])
	}
	for i := 0; i < n; i++ {
		var sum float64
		for k := range kinds {
			sum += normalized[k][i]
		}
		out[i] = sum / float64(len(kinds))
	}
	return out
}

// scoreCandidates assigns Objective to each candidate in place. Failed
// trials (non-nil Err) are excluded from normalization so one erroring
// combination can't skew the population's min/max, and are pinned to
// negative infinity so they always sort last.
func scoreCandidates(kinds []ObjectiveKind, candidates []Candidate) {
	okIdx := make([]int, 0, len(candidates))
	okMetrics := make([]metrics.Metrics, 0, len(candidates))
	for i, c := range candidates {
		if c.Err != nil {
			candidates[i].Objective = math.Inf(-1)
			continue
		}
		okIdx = append(okIdx, i)
		okMetrics = append(okMetrics, c.Metrics)
	}
	scores := Score(kinds, okMetrics)
	for k, i := range okIdx {
		candidates[i].Objective = scores[k]
	}
}

func minMaxNormalize(vals []float64) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	min, max := vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	spread := max - min
	for i, v := range vals {
		if spread == 0 {
			out[i] = 0.5
			continue
		}
		out[i] = (v - min) / spread
	}
	return out
}
