package indicator

import "github.com/quantkit/backtestcore/types"

// computeVWAP accumulates Σ(typical·volume)/Σ(volume), resetting at each
// calendar day boundary per the spec.
func computeVWAP(bars []types.Bar, cfg Config) Result {
	n := len(bars)
	out := newSeries(n)
	var cumPV, cumV float64
	var day int
	for i, b := range bars {
		y, m, d := b.Timestamp.Date()
		key := y*10000 + int(m)*100 + d
		if i == 0 || key != day {
			cumPV, cumV = 0, 0
			day = key
		}
		typical := (b.High + b.Low + b.Close) / 3
		cumPV += typical * b.Volume
		cumV += b.Volume
		if cumV == 0 {
			continue
		}
		out[i] = cumPV / cumV
	}
	return Result{Primary: out}
}
