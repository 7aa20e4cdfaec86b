// Package indicator implements the spec's Component B: pure, vectorized
// computation of 40+ technical indicators. Every Compute call is a pure
// function of (kind, params, bars) — the same inputs always produce the
// same Series, which is what makes the indicator cache (package cache)
// valid as a memoization layer rather than just an optimization.
package indicator

import (
	"fmt"
	"math"

	"github.com/quantkit/backtestcore/types"
)

// Kind enumerates the closed set of indicator variants the core supports.
// Per the spec's design note, dynamic dispatch over indicator kinds is
// modeled as a tagged variant with one compute function per kind rather than
// open-ended polymorphism — the set is fixed at compile time.
type Kind int

const (
	SMA Kind = iota
	EMA
	RSI
	MACD
	BollingerBands
	ATR
	Stochastic
	ADX
	CCI
	ROC
	WilliamsR
	ParabolicSAR
	VWAP
	Aroon
	AwesomeOscillator
	BarRange
	PriceInRange
	BullsPower
	BearsPower
	DeMarker
	Fibonacci
	Fractal
	GannHiLo
	HeikenAshi
	HullMA
	Ichimoku
	KeltnerChannel
	LaguerreRSI
	LinearRegression
	Momentum
	SuperTrend
	TrueRange
	StdDev
	Reflex
	Pivots
	UlcerIndex
	Vortex
)

var names = map[Kind]string{
	SMA: "SMA", EMA: "EMA", RSI: "RSI", MACD: "MACD", BollingerBands: "BollingerBands",
	ATR: "ATR", Stochastic: "Stochastic", ADX: "ADX", CCI: "CCI", ROC: "ROC",
	WilliamsR: "WilliamsR", ParabolicSAR: "ParabolicSAR", VWAP: "VWAP", Aroon: "Aroon",
	AwesomeOscillator: "AwesomeOscillator", BarRange: "BarRange", PriceInRange: "PriceInRange",
	BullsPower: "BullsPower", BearsPower: "BearsPower", DeMarker: "DeMarker",
	Fibonacci: "Fibonacci", Fractal: "Fractal", GannHiLo: "GannHiLo", HeikenAshi: "HeikenAshi",
	HullMA: "HullMA", Ichimoku: "Ichimoku", KeltnerChannel: "KeltnerChannel",
	LaguerreRSI: "LaguerreRSI", LinearRegression: "LinearRegression", Momentum: "Momentum",
	SuperTrend: "SuperTrend", TrueRange: "TrueRange", StdDev: "StdDev", Reflex: "Reflex",
	Pivots: "Pivots", UlcerIndex: "UlcerIndex", Vortex: "Vortex",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Config is the tagged-variant parameter bag for one indicator instance.
// Each Kind only reads the fields relevant to it; unused fields are ignored.
// Output selects an auxiliary channel (e.g. "upper"/"middle"/"lower" for
// BollingerBands) — the empty string selects the indicator's primary series.
type Config struct {
	Kind       Kind
	Period     int     // primary lookback (SMA period, RSI period, ATR period, ...)
	Period2    int     // secondary lookback (MACD slow, Stochastic %D, ...)
	Period3    int     // tertiary lookback (MACD signal, Ichimoku span-B, ...)
	Multiplier float64 // Bollinger k, ATR/Keltner multiplier, SuperTrend multiplier
	AFStep     float64 // Parabolic SAR acceleration step
	AFMax      float64 // Parabolic SAR acceleration cap
	Gamma      float64 // Laguerre RSI damping factor
	Output     string  // auxiliary output channel selector
}

// Series is a per-bar computed value. Entries that are undefined (before the
// lookback window fills, or where a division by zero occurs) hold Sentinel.
type Series []float64

// Sentinel marks "undefined" — the rule evaluator treats any comparison
// touching a Sentinel value as false, and no Sentinel ever leaks past that
// boundary as a usable number.
var Sentinel = math.NaN()

// IsSentinel reports whether v is the indicator sentinel (NaN) or otherwise
// non-finite, per the spec's "no NaNs propagate into rule evaluation" rule.
func IsSentinel(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

func newSeries(n int) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = Sentinel
	}
	return s
}

// Result bundles the primary series with any named auxiliary channels, so a
// single Compute call can serve every Output selector for that Config.
type Result struct {
	Primary Series
	Aux     map[string]Series
}

// Select returns the series for cfg.Output, or Primary if Output is empty.
func (r Result) Select(output string) Series {
	if output == "" {
		return r.Primary
	}
	if s, ok := r.Aux[output]; ok {
		return s
	}
	return nil
}

func closes(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func highs(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

func lows(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}
