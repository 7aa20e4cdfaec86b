package indicator

import (
	"math"

	"github.com/quantkit/backtestcore/types"
)

// computeRSI implements Wilder-smoothed RSI(p): 100 - 100/(1+RS), RS being
// the ratio of the Wilder average of up-moves to down-moves.
func computeRSI(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	n := len(c)
	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		d := c[i] - c[i-1]
		if d > 0 {
			gains[i] = d
		} else {
			losses[i] = -d
		}
	}
	// gains/losses start at index 1 (index 0 has no prior close), so the
	// Wilder averages run over gains[1:] and losses[1:].
	avgGain := newSeries(n)
	avgLoss := newSeries(n)
	if n > 1 {
		copy(avgGain[1:], wilderSeries(gains[1:], cfg.Period))
		copy(avgLoss[1:], wilderSeries(losses[1:], cfg.Period))
	}
	out := newSeries(n)
	for i := 0; i < n; i++ {
		if IsSentinel(avgGain[i]) || IsSentinel(avgLoss[i]) {
			continue
		}
		if avgLoss[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGain[i] / avgLoss[i]
		out[i] = 100 - 100/(1+rs)
	}
	return Result{Primary: out}
}

func computeMACD(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	fast := emaSeries(c, cfg.Period)
	slow := emaSeries(c, cfg.Period2)
	n := len(c)
	macd := newSeries(n)
	for i := 0; i < n; i++ {
		if IsSentinel(fast[i]) || IsSentinel(slow[i]) {
			continue
		}
		macd[i] = fast[i] - slow[i]
	}
	// the signal EMA starts at the first defined MACD value, so the leading
	// sentinels do not poison its seed.
	signal := newSeries(n)
	first := 0
	for first < n && IsSentinel(macd[first]) {
		first++
	}
	if first < n {
		copy(signal[first:], emaSeries(macd[first:], cfg.Period3))
	}
	hist := newSeries(n)
	for i := 0; i < n; i++ {
		if IsSentinel(macd[i]) || IsSentinel(signal[i]) {
			continue
		}
		hist[i] = macd[i] - signal[i]
	}
	return Result{Primary: macd, Aux: map[string]Series{"signal": signal, "histogram": hist}}
}

func computeROC(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	n := len(c)
	out := newSeries(n)
	p := cfg.Period
	for i := p; i < n; i++ {
		if c[i-p] == 0 {
			continue
		}
		out[i] = 100 * (c[i] - c[i-p]) / c[i-p]
	}
	return Result{Primary: out}
}

func computeWilliamsR(bars []types.Bar, cfg Config) Result {
	h := highs(bars)
	l := lows(bars)
	c := closes(bars)
	n := len(bars)
	out := newSeries(n)
	for i := 0; i < n; i++ {
		hh := highestAt(h, i, cfg.Period)
		ll := lowestAt(l, i, cfg.Period)
		if IsSentinel(hh) || IsSentinel(ll) || hh == ll {
			continue
		}
		out[i] = -100 * (hh - c[i]) / (hh - ll)
	}
	return Result{Primary: out}
}

func computeCCI(bars []types.Bar, cfg Config) Result {
	n := len(bars)
	typical := make([]float64, n)
	for i, b := range bars {
		typical[i] = (b.High + b.Low + b.Close) / 3
	}
	out := newSeries(n)
	p := cfg.Period
	for i := p - 1; i < n; i++ {
		mean := smaAt(typical, i, p)
		meanDev := 0.0
		for j := i - p + 1; j <= i; j++ {
			meanDev += math.Abs(typical[j] - mean)
		}
		meanDev /= float64(p)
		if meanDev == 0 {
			continue
		}
		out[i] = (typical[i] - mean) / (0.015 * meanDev)
	}
	return Result{Primary: out}
}

func computeMomentum(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	n := len(c)
	out := newSeries(n)
	p := cfg.Period
	for i := p; i < n; i++ {
		out[i] = c[i] - c[i-p]
	}
	return Result{Primary: out}
}

// computeLaguerreRSI implements the Laguerre-filter RSI oscillator, a
// low-lag alternative to classic Wilder RSI, using a 4-stage Laguerre filter
// damped by Gamma.
func computeLaguerreRSI(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	n := len(c)
	out := newSeries(n)
	gamma := cfg.Gamma
	if gamma <= 0 || gamma >= 1 {
		gamma = 0.5
	}
	var l0, l1, l2, l3 float64
	for i := 0; i < n; i++ {
		pl0, pl1, pl2 := l0, l1, l2
		l0 = (1-gamma)*c[i] + gamma*pl0
		l1 = -gamma*l0 + pl0 + gamma*pl1
		l2 = -gamma*l1 + pl1 + gamma*pl2
		l3 = -gamma*l2 + pl2 + gamma*l3
		cu, cd := 0.0, 0.0
		if l0 >= l1 {
			cu += l0 - l1
		} else {
			cd += l1 - l0
		}
		if l1 >= l2 {
			cu += l1 - l2
		} else {
			cd += l2 - l1
		}
		if l2 >= l3 {
			cu += l2 - l3
		} else {
			cd += l3 - l2
		}
		if cu+cd != 0 {
			out[i] = cu / (cu + cd)
		}
	}
	return Result{Primary: out}
}

// computeDeMarker compares current-bar extremes to the prior bar and
// Wilder-smooths the up/down components.
func computeDeMarker(bars []types.Bar, cfg Config) Result {
	n := len(bars)
	demMax := make([]float64, n)
	demMin := make([]float64, n)
	for i := 1; i < n; i++ {
		if bars[i].High > bars[i-1].High {
			demMax[i] = bars[i].High - bars[i-1].High
		}
		if bars[i].Low < bars[i-1].Low {
			demMin[i] = bars[i-1].Low - bars[i].Low
		}
	}
	avgMax := wilderSeries(demMax, cfg.Period)
	avgMin := wilderSeries(demMin, cfg.Period)
	out := newSeries(n)
	for i := 0; i < n; i++ {
		if IsSentinel(avgMax[i]) || IsSentinel(avgMin[i]) {
			continue
		}
		d := avgMax[i] + avgMin[i]
		if d == 0 {
			continue
		}
		out[i] = avgMax[i] / d
	}
	return Result{Primary: out}
}

// computeAwesomeOscillator is SMA5(median price) - SMA34(median price).
func computeAwesomeOscillator(bars []types.Bar, cfg Config) Result {
	n := len(bars)
	median := make([]float64, n)
	for i, b := range bars {
		median[i] = (b.High + b.Low) / 2
	}
	fast := cfg.Period
	slow := cfg.Period2
	if fast < 1 {
		fast = 5
	}
	if slow < 1 {
		slow = 34
	}
	out := newSeries(n)
	for i := 0; i < n; i++ {
		f := smaAt(median, i, fast)
		s := smaAt(median, i, slow)
		if IsSentinel(f) || IsSentinel(s) {
			continue
		}
		out[i] = f - s
	}
	return Result{Primary: out}
}

// computeReflex is Ehlers' Reflex indicator: a low-lag trend-smoothness
// oscillator built from a 2-pole super-smoother and a mean-square error
// normalization over Period bars.
func computeReflex(bars []types.Bar, cfg Config) Result {
	c := closes(bars)
	n := len(c)
	p := cfg.Period
	if p < 2 {
		p = 20
	}
	ssf := superSmoother(c)
	out := newSeries(n)
	for i := p; i < n; i++ {
		slope := (ssf[i-p] - ssf[i]) / float64(p)
		sum := 0.0
		ms := 0.0
		for j := 1; j <= p; j++ {
			sum += ssf[i] + float64(j)*slope - ssf[i-j]
			ms += (ssf[i] + float64(j)*slope - ssf[i-j]) * (ssf[i] + float64(j)*slope - ssf[i-j])
		}
		sum /= float64(p)
		ms /= float64(p)
		if ms <= 0 {
			continue
		}
		out[i] = sum / math.Sqrt(ms)
	}
	return Result{Primary: out}
}

// superSmoother is Ehlers' 2-pole low-pass filter, a building block shared
// by Reflex.
func superSmoother(vals []float64) []float64 {
	n := len(vals)
	out := make([]float64, n)
	a1 := math.Exp(-1.414 * math.Pi / 10)
	b1 := 2 * a1 * math.Cos(1.414*math.Pi/10)
	c2 := b1
	c3 := -a1 * a1
	c1 := 1 - c2 - c3
	for i := 0; i < n; i++ {
		if i < 2 {
			out[i] = vals[i]
			continue
		}
		out[i] = c1*(vals[i]+vals[i-1])/2 + c2*out[i-1] + c3*out[i-2]
	}
	return out
}

// computeBullsPower / computeBearsPower measure high/low excursion from an
// EMA of close.
func computeBullsPower(bars []types.Bar, cfg Config) Result {
	ema := emaSeries(closes(bars), cfg.Period)
	n := len(bars)
	out := newSeries(n)
	for i := 0; i < n; i++ {
		if IsSentinel(ema[i]) {
			continue
		}
		out[i] = bars[i].High - ema[i]
	}
	return Result{Primary: out}
}

func computeBearsPower(bars []types.Bar, cfg Config) Result {
	ema := emaSeries(closes(bars), cfg.Period)
	n := len(bars)
	out := newSeries(n)
	for i := 0; i < n; i++ {
		if IsSentinel(ema[i]) {
			continue
		}
		out[i] = bars[i].Low - ema[i]
	}
	return Result{Primary: out}
}
