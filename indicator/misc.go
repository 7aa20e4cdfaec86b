package indicator

import (
	"math"

	"github.com/quantkit/backtestcore/types"
)

func computeStochastic(bars []types.Bar, cfg Config) Result {
	h := highs(bars)
	l := lows(bars)
	c := closes(bars)
	n := len(bars)
	kSeries := newSeries(n)
	for i := 0; i < n; i++ {
		hh := highestAt(h, i, cfg.Period)
		ll := lowestAt(l, i, cfg.Period)
		if IsSentinel(hh) || IsSentinel(ll) || hh == ll {
			continue
		}
		kSeries[i] = 100 * (c[i] - ll) / (hh - ll)
	}
	d := cfg.Period2
	if d < 1 {
		d = 3
	}
	dSeries := newSeries(n)
	for i := 0; i < n; i++ {
		dSeries[i] = smaAt(kSeries, i, d)
	}
	return Result{Primary: kSeries, Aux: map[string]Series{"k": kSeries, "d": dSeries}}
}

// computeADX implements Wilder's +DI/-DI/ADX trio; the primary channel is
// ADX, with plusDI/minusDI exposed as auxiliary channels.
func computeADX(bars []types.Bar, cfg Config) Result {
	n := len(bars)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		upMove := bars[i].High - bars[i-1].High
		downMove := bars[i-1].Low - bars[i].Low
		if upMove > downMove && upMove > 0 {
			plusDM[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i] = downMove
		}
	}
	tr := trueRangeSeries(bars)
	smoothTR := wilderSeries(tr, cfg.Period)
	smoothPlusDM := wilderSeries(plusDM, cfg.Period)
	smoothMinusDM := wilderSeries(minusDM, cfg.Period)

	plusDI := newSeries(n)
	minusDI := newSeries(n)
	dx := newSeries(n)
	for i := 0; i < n; i++ {
		if IsSentinel(smoothTR[i]) || smoothTR[i] == 0 {
			continue
		}
		plusDI[i] = 100 * smoothPlusDM[i] / smoothTR[i]
		minusDI[i] = 100 * smoothMinusDM[i] / smoothTR[i]
		denom := plusDI[i] + minusDI[i]
		if denom == 0 {
			continue
		}
		dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / denom
	}
	// ADX smooths DX from its first defined value, so the leading sentinels
	// do not poison the Wilder seed.
	adx := newSeries(n)
	first := 0
	for first < n && IsSentinel(dx[first]) {
		first++
	}
	if first < n {
		copy(adx[first:], wilderSeries(dx[first:], cfg.Period))
	}
	return Result{Primary: adx, Aux: map[string]Series{"plusDI": plusDI, "minusDI": minusDI}}
}

// computeAroon is the classic Aroon-Up / Aroon-Down oscillator pair.
func computeAroon(bars []types.Bar, cfg Config) Result {
	h := highs(bars)
	l := lows(bars)
	n := len(bars)
	p := cfg.Period
	up := newSeries(n)
	down := newSeries(n)
	for i := p; i < n; i++ {
		hiIdx, loIdx := 0, 0
		hiVal, loVal := h[i-p], l[i-p]
		for j := i - p; j <= i; j++ {
			if h[j] >= hiVal {
				hiVal = h[j]
				hiIdx = j
			}
			if l[j] <= loVal {
				loVal = l[j]
				loIdx = j
			}
		}
		up[i] = 100 * float64(p-(i-hiIdx)) / float64(p)
		down[i] = 100 * float64(p-(i-loIdx)) / float64(p)
	}
	return Result{Primary: up, Aux: map[string]Series{"up": up, "down": down}}
}

// computeBarRange is simply high-low per bar; PriceInRange tests whether
// close falls within [low + Multiplier*range, high - Multiplier*range],
// Multiplier being the inset fraction (0 disables the inset).
func computeBarRange(bars []types.Bar, cfg Config) Result {
	n := len(bars)
	out := newSeries(n)
	for i, b := range bars {
		out[i] = b.High - b.Low
	}
	return Result{Primary: out}
}

func computePriceInRange(bars []types.Bar, cfg Config) Result {
	n := len(bars)
	out := newSeries(n)
	inset := cfg.Multiplier
	for i, b := range bars {
		rng := b.High - b.Low
		lo := b.Low + inset*rng
		hi := b.High - inset*rng
		if b.Close >= lo && b.Close <= hi {
			out[i] = 1
		} else {
			out[i] = 0
		}
	}
	return Result{Primary: out}
}

// computeFibonacci exposes the 38.2/50/61.8 retracement levels of the
// trailing Period-bar range as auxiliary channels; the primary channel is
// the 61.8% level, the most commonly traded one.
func computeFibonacci(bars []types.Bar, cfg Config) Result {
	h := highs(bars)
	l := lows(bars)
	n := len(bars)
	lvl382 := newSeries(n)
	lvl500 := newSeries(n)
	lvl618 := newSeries(n)
	for i := 0; i < n; i++ {
		hh := highestAt(h, i, cfg.Period)
		ll := lowestAt(l, i, cfg.Period)
		if IsSentinel(hh) || IsSentinel(ll) {
			continue
		}
		rng := hh - ll
		lvl382[i] = hh - 0.382*rng
		lvl500[i] = hh - 0.5*rng
		lvl618[i] = hh - 0.618*rng
	}
	return Result{Primary: lvl618, Aux: map[string]Series{"382": lvl382, "500": lvl500, "618": lvl618}}
}

// computeFractal flags a Williams fractal: a high (or low) that is the most
// extreme point among the 2 bars on either side. Requires at least 5 bars of
// warmup and evaluates the candidate two bars behind the index it is defined at, since a
// fractal needs bars *after* the candidate to confirm it; we instead expose
// it at the confirming bar's index so it is available without look-ahead by
// the rule evaluator (which only ever reads at or before the current index).
func computeFractal(bars []types.Bar, cfg Config) Result {
	h := highs(bars)
	l := lows(bars)
	n := len(bars)
	up := newSeries(n)
	down := newSeries(n)
	for i := 4; i < n; i++ {
		c := i - 2
		if h[c] > h[c-2] && h[c] > h[c-1] && h[c] > h[c+1] && h[c] > h[c+2] {
			up[i] = 1
		} else {
			up[i] = 0
		}
		if l[c] < l[c-2] && l[c] < l[c-1] && l[c] < l[c+1] && l[c] < l[c+2] {
			down[i] = 1
		} else {
			down[i] = 0
		}
	}
	return Result{Primary: up, Aux: map[string]Series{"up": up, "down": down}}
}

// computePivots derives classic floor-trader pivot levels from the prior
// day's H/L/C, held constant through the current calendar day.
func computePivots(bars []types.Bar, cfg Config) Result {
	n := len(bars)
	pivot := newSeries(n)
	r1 := newSeries(n)
	s1 := newSeries(n)
	var dayHigh, dayLow, dayClose float64
	var prevHigh, prevLow, prevClose float64
	var havePrevDay bool
	var day int
	for i, b := range bars {
		y, m, d := b.Timestamp.Date()
		key := y*10000 + int(m)*100 + d
		if i == 0 {
			day = key
			dayHigh, dayLow = b.High, b.Low
		} else if key != day {
			prevHigh, prevLow, prevClose = dayHigh, dayLow, dayClose
			havePrevDay = true
			day = key
			dayHigh, dayLow = b.High, b.Low
		} else {
			dayHigh = math.Max(dayHigh, b.High)
			dayLow = math.Min(dayLow, b.Low)
		}
		dayClose = b.Close
		if havePrevDay {
			p := (prevHigh + prevLow + prevClose) / 3
			pivot[i] = p
			r1[i] = 2*p - prevLow
			s1[i] = 2*p - prevHigh
		}
	}
	return Result{Primary: pivot, Aux: map[string]Series{"r1": r1, "s1": s1}}
}
