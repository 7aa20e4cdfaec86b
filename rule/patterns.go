package rule

import (
	"math"

	"github.com/quantkit/backtestcore/types"
)

// body/shadow helpers shared by the candle-pattern detectors.
func body(b types.Bar) float64   { return math.Abs(b.Close - b.Open) }
func rng(b types.Bar) float64    { return b.High - b.Low }
func upperWick(b types.Bar) float64 {
	return b.High - math.Max(b.Open, b.Close)
}
func lowerWick(b types.Bar) float64 {
	return math.Min(b.Open, b.Close) - b.Low
}
func bullish(b types.Bar) bool { return b.Close > b.Open }
func bearish(b types.Bar) bool { return b.Close < b.Open }

// evalPattern returns 1.0 if bars[i] (with the prior bar where needed)
// exhibits the named pattern, else 0.0. i is assumed to already account for
// the operand's Offset.
func evalPattern(bars []types.Bar, i int, kind PatternKind) float64 {
	if i < 0 || i >= len(bars) {
		return 0
	}
	cur := bars[i]
	r := rng(cur)
	if r == 0 {
		return boolFloat(kind == Doji)
	}
	switch kind {
	case Doji:
		return boolFloat(body(cur)/r <= 0.1)
	case Hammer:
		return boolFloat(lowerWick(cur) >= 2*body(cur) && upperWick(cur) <= 0.2*body(cur))
	case ShootingStar:
		return boolFloat(upperWick(cur) >= 2*body(cur) && lowerWick(cur) <= 0.2*body(cur))
	}
	if i < 1 {
		return 0
	}
	prev := bars[i-1]
	switch kind {
	case BullishEngulfing:
		return boolFloat(bearish(prev) && bullish(cur) && cur.Open <= prev.Close && cur.Close >= prev.Open)
	case BearishEngulfing:
		return boolFloat(bullish(prev) && bearish(cur) && cur.Open >= prev.Close && cur.Close <= prev.Open)
	case DarkCloud:
		mid := (prev.Open + prev.Close) / 2
		return boolFloat(bullish(prev) && bearish(cur) && cur.Open > prev.High && cur.Close < mid && cur.Close > prev.Open)
	case PiercingLine:
		mid := (prev.Open + prev.Close) / 2
		return boolFloat(bearish(prev) && bullish(cur) && cur.Open < prev.Low && cur.Close > mid && cur.Close < prev.Open)
	}
	return 0
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
