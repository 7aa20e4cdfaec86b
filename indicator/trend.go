package indicator

import (
	"math"

	"github.com/quantkit/backtestcore/types"
)

func computeSMA(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	out := newSeries(len(c))
	for i := range c {
		out[i] = smaAt(c, i, cfg.Period)
	}
	return Result{Primary: out}
}

func computeEMA(bars []types.Bar, cfg Config) Result {
	return Result{Primary: emaSeries(closes(bars), cfg.Period)}
}

// computeHullMA implements HMA(p) = WMA(2*WMA(p/2) - WMA(p), sqrt(p)), each
// WMA being a linearly weighted moving average (wmaFull).
func computeHullMA(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	n := len(c)
	halfP := cfg.Period / 2
	if halfP < 1 {
		halfP = 1
	}
	sqrtP := int(math.Sqrt(float64(cfg.Period)))
	if sqrtP < 1 {
		sqrtP = 1
	}
	wmaHalf := wmaFull(c, halfP)
	wmaFullP := wmaFull(c, cfg.Period)
	diff := make([]float64, n)
	for i := 0; i < n; i++ {
		if IsSentinel(wmaHalf[i]) || IsSentinel(wmaFullP[i]) {
			diff[i] = Sentinel
			continue
		}
		diff[i] = 2*wmaHalf[i] - wmaFullP[i]
	}
	return Result{Primary: wmaFull(diff, sqrtP)}
}

// wmaFull computes a linearly-weighted moving average series, treating any
// Sentinel encountered in the window as disqualifying the whole window.
func wmaFull(vals []float64, p int) Series {
	out := newSeries(len(vals))
	if p <= 0 {
		return out
	}
	denom := float64(p*(p+1)) / 2
	for i := range vals {
		if i < p-1 {
			continue
		}
		sum := 0.0
		ok := true
		w := 1
		for j := i - p + 1; j <= i; j++ {
			if IsSentinel(vals[j]) {
				ok = false
				break
			}
			sum += vals[j] * float64(w)
			w++
		}
		if !ok {
			continue
		}
		out[i] = sum / denom
	}
	return out
}

func computeLinearRegression(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	n := len(c)
	out := newSeries(n)
	p := cfg.Period
	if p < 2 {
		p = 2
	}
	for i := p - 1; i < n; i++ {
		sumX, sumY, sumXY, sumXX := 0.0, 0.0, 0.0, 0.0
		for j := 0; j < p; j++ {
			x := float64(j)
			y := c[i-p+1+j]
			sumX += x
			sumY += y
			sumXY += x * y
			sumXX += x * x
		}
		den := float64(p)*sumXX - sumX*sumX
		if den == 0 {
			continue
		}
		slope := (float64(p)*sumXY - sumX*sumY) / den
		intercept := (sumY - slope*sumX) / float64(p)
		out[i] = intercept + slope*float64(p-1)
	}
	return Result{Primary: out}
}

// computeGannHiLo is the HiLo activator: average of the p-bar highest high
// and lowest low, following price from above in a downtrend and below in an
// uptrend.
func computeGannHiLo(bars []types.Bar, cfg Config) Result {
	h := highs(bars)
	l := lows(bars)
	c := closes(bars)
	n := len(bars)
	out := newSeries(n)
	p := cfg.Period
	trendUp := true
	for i := 0; i < n; i++ {
		hh := highestAt(h, i, p)
		ll := lowestAt(l, i, p)
		if IsSentinel(hh) || IsSentinel(ll) {
			continue
		}
		if c[i] > hh {
			trendUp = true
		} else if c[i] < ll {
			trendUp = false
		}
		if trendUp {
			out[i] = ll
		} else {
			out[i] = hh
		}
	}
	return Result{Primary: out}
}

func computeHeikenAshi(bars []types.Bar, cfg Config) Result {
	n := len(bars)
	haClose := newSeries(n)
	haOpen := newSeries(n)
	haHigh := newSeries(n)
	haLow := newSeries(n)
	for i, b := range bars {
		haClose[i] = (b.Open + b.High + b.Low + b.Close) / 4
		if i == 0 {
			haOpen[i] = (b.Open + b.Close) / 2
		} else {
			haOpen[i] = (haOpen[i-1] + haClose[i-1]) / 2
		}
		haHigh[i] = math.Max(b.High, math.Max(haOpen[i], haClose[i]))
		haLow[i] = math.Min(b.Low, math.Min(haOpen[i], haClose[i]))
	}
	return Result{Primary: haClose, Aux: map[string]Series{"open": haOpen, "high": haHigh, "low": haLow}}
}

// computeIchimoku exposes the conversion/base lines and the two cloud spans
// as auxiliary channels; the primary series is the conversion line (tenkan).
func computeIchimoku(bars []types.Bar, cfg Config) Result {
	h := highs(bars)
	l := lows(bars)
	n := len(bars)
	conv := cfg.Period // tenkan period, default 9
	base := cfg.Period2 // kijun period, default 26
	spanBp := cfg.Period3 // senkou span B period, default 52
	if conv < 1 {
		conv = 9
	}
	if base < 1 {
		base = 26
	}
	if spanBp < 1 {
		spanBp = 52
	}
	tenkan := newSeries(n)
	kijun := newSeries(n)
	spanA := newSeries(n)
	spanB := newSeries(n)
	for i := 0; i < n; i++ {
		hh9, ll9 := highestAt(h, i, conv), lowestAt(l, i, conv)
		if !IsSentinel(hh9) && !IsSentinel(ll9) {
			tenkan[i] = (hh9 + ll9) / 2
		}
		hh26, ll26 := highestAt(h, i, base), lowestAt(l, i, base)
		if !IsSentinel(hh26) && !IsSentinel(ll26) {
			kijun[i] = (hh26 + ll26) / 2
		}
		if !IsSentinel(tenkan[i]) && !IsSentinel(kijun[i]) {
			spanA[i] = (tenkan[i] + kijun[i]) / 2
		}
		hh52, ll52 := highestAt(h, i, spanBp), lowestAt(l, i, spanBp)
		if !IsSentinel(hh52) && !IsSentinel(ll52) {
			spanB[i] = (hh52 + ll52) / 2
		}
	}
	return Result{Primary: tenkan, Aux: map[string]Series{"kijun": kijun, "spanA": spanA, "spanB": spanB}}
}

// computeParabolicSAR implements the classic trend-reversal stop-and-reverse
// indicator. af grows by AFStep on each new extreme, capped at AFMax.
func computeParabolicSAR(bars []types.Bar, cfg Config) Result {
	n := len(bars)
	out := newSeries(n)
	if n < 2 {
		return Result{Primary: out}
	}
	afStep := cfg.AFStep
	afMax := cfg.AFMax
	if afStep <= 0 {
		afStep = 0.02
	}
	if afMax <= 0 {
		afMax = 0.2
	}
	uptrend := bars[1].Close >= bars[0].Close
	af := afStep
	var ep, sar float64
	if uptrend {
		ep = bars[0].High
		sar = bars[0].Low
	} else {
		ep = bars[0].Low
		sar = bars[0].High
	}
	out[0] = sar
	for i := 1; i < n; i++ {
		sar = sar + af*(ep-sar)
		if uptrend {
			if bars[i].Low < sar {
				uptrend = false
				sar = ep
				ep = bars[i].Low
				af = afStep
			} else {
				if bars[i].High > ep {
					ep = bars[i].High
					af = math.Min(af+afStep, afMax)
				}
				sar = math.Min(sar, math.Min(bars[i-1].Low, bars[i].Low))
			}
		} else {
			if bars[i].High > sar {
				uptrend = true
				sar = ep
				ep = bars[i].High
				af = afStep
			} else {
				if bars[i].Low < ep {
					ep = bars[i].Low
					af = math.Min(af+afStep, afMax)
				}
				sar = math.Max(sar, math.Max(bars[i-1].High, bars[i].High))
			}
		}
		out[i] = sar
	}
	return Result{Primary: out}
}
