package indicator

import (
	"math"

	"github.com/quantkit/backtestcore/types"
)

func trueRangeSeries(bars []types.Bar) []float64 {
	n := len(bars)
	out := make([]float64, n)
	for i, b := range bars {
		if i == 0 {
			out[i] = b.High - b.Low
			continue
		}
		prevClose := bars[i-1].Close
		tr := math.Max(b.High-b.Low, math.Max(math.Abs(b.High-prevClose), math.Abs(b.Low-prevClose)))
		out[i] = tr
	}
	return out
}

func computeTrueRange(bars []types.Bar, cfg Config) Result {
	return Result{Primary: trueRangeSeries(bars)}
}

func computeATR(bars []types.Bar, cfg Config) Result {
	tr := trueRangeSeries(bars)
	return Result{Primary: wilderSeries(tr, cfg.Period)}
}

func computeBollingerBands(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	n := len(c)
	mid := newSeries(n)
	upper := newSeries(n)
	lower := newSeries(n)
	k := cfg.Multiplier
	if k == 0 {
		k = 2
	}
	for i := 0; i < n; i++ {
		m := smaAt(c, i, cfg.Period)
		if IsSentinel(m) {
			continue
		}
		sd := stddevAt(c, i, cfg.Period)
		mid[i] = m
		upper[i] = m + k*sd
		lower[i] = m - k*sd
	}
	return Result{Primary: mid, Aux: map[string]Series{"middle": mid, "upper": upper, "lower": lower}}
}

func computeStdDev(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	n := len(c)
	out := newSeries(n)
	for i := 0; i < n; i++ {
		out[i] = stddevAt(c, i, cfg.Period)
	}
	return Result{Primary: out}
}

func computeKeltnerChannel(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	n := len(c)
	mid := emaSeries(c, cfg.Period)
	atr := wilderSeries(trueRangeSeries(bars), cfg.Period)
	mult := cfg.Multiplier
	if mult == 0 {
		mult = 2
	}
	upper := newSeries(n)
	lower := newSeries(n)
	for i := 0; i < n; i++ {
		if IsSentinel(mid[i]) || IsSentinel(atr[i]) {
			continue
		}
		upper[i] = mid[i] + mult*atr[i]
		lower[i] = mid[i] - mult*atr[i]
	}
	return Result{Primary: mid, Aux: map[string]Series{"middle": mid, "upper": upper, "lower": lower}}
}

// computeUlcerIndex is sqrt(mean(drawdown^2)) of close vs its trailing
// Period-bar high.
func computeUlcerIndex(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	n := len(c)
	out := newSeries(n)
	p := cfg.Period
	for i := p - 1; i < n; i++ {
		sumSq := 0.0
		for j := i - p + 1; j <= i; j++ {
			peak := highestAt(c, j, p)
			if IsSentinel(peak) || peak == 0 {
				peak = c[j]
			}
			dd := 100 * (peak - c[j]) / peak
			sumSq += dd * dd
		}
		out[i] = math.Sqrt(sumSq / float64(p))
	}
	return Result{Primary: out}
}

// computeVortex produces +VI/-VI; the primary channel is +VI, "minus" is -VI.
func computeVortex(bars []types.Bar, cfg Config) Result {
	n := len(bars)
	vmPlus := make([]float64, n)
	vmMinus := make([]float64, n)
	tr := trueRangeSeries(bars)
	for i := 1; i < n; i++ {
		vmPlus[i] = math.Abs(bars[i].High - bars[i-1].Low)
		vmMinus[i] = math.Abs(bars[i].Low - bars[i-1].High)
	}
	p := cfg.Period
	plusVI := newSeries(n)
	minusVI := newSeries(n)
	for i := p; i < n; i++ {
		sumTR, sumVP, sumVM := 0.0, 0.0, 0.0
		for j := i - p + 1; j <= i; j++ {
			sumTR += tr[j]
			sumVP += vmPlus[j]
			sumVM += vmMinus[j]
		}
		if sumTR == 0 {
			continue
		}
		plusVI[i] = sumVP / sumTR
		minusVI[i] = sumVM / sumTR
	}
	return Result{Primary: plusVI, Aux: map[string]Series{"plus": plusVI, "minus": minusVI}}
}

// computeSuperTrend follows price at ATR*multiplier distance, flipping side
// when price crosses the current band.
func computeSuperTrend(bars []types.Bar, cfg Config) Result {
	n := len(bars)
	atr := wilderSeries(trueRangeSeries(bars), cfg.Period)
	mult := cfg.Multiplier
	if mult == 0 {
		mult = 3
	}
	out := newSeries(n)
	upTrend := true
	var band float64
	for i := 0; i < n; i++ {
		if IsSentinel(atr[i]) {
			continue
		}
		hl2 := (bars[i].High + bars[i].Low) / 2
		upperBand := hl2 + mult*atr[i]
		lowerBand := hl2 - mult*atr[i]
		if i == 0 || IsSentinel(out[i-1]) {
			band = lowerBand
			upTrend = true
		} else {
			if upTrend {
				band = math.Max(lowerBand, band)
				if bars[i].Close < band {
					upTrend = false
					band = upperBand
				}
			} else {
				band = math.Min(upperBand, band)
				if bars[i].Close > band {
					upTrend = true
					band = lowerBand
				}
			}
		}
		out[i] = band
	}
	return Result{Primary: out}
}
