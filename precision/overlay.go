package precision

import (
	"math"

	"github.com/quantkit/backtestcore/types"
)

// Config carries the per-run inputs the overlay needs beyond the bar
// itself: the spread/slippage to apply when the mode doesn't supply its
// own, and the aligned finer-grained sources for modes 2-4.
type Config struct {
	Mode Mode
	// SpreadPrice is applied under SelectedTfOnly, M1TickSimulation and
	// RealTickCustomSpread (price units, not pips).
	SpreadPrice float64
	// M1Bars are the M1 bars aligned to the coarse bar's time window, used
	// only under M1TickSimulation.
	M1Bars []types.Bar
	// Ticks are the raw ticks aligned to the coarse bar's time window,
	// used only under RealTickCustomSpread and RealTickRealSpread.
	Ticks []types.Tick
}

// Reconstruct returns the intra-bar price path for bar under cfg. The
// caller (package engine) walks the path in order, checking SL/TP/
// trailing touches at each sample with position.CheckTouch; the first
// sample to touch a level wins,
// which is what makes mode 1's "nearer extreme first" ordering and mode 2's
// per-M1-bar replay produce the spec's documented tie-break behavior.
func Reconstruct(b types.Bar, prevClose float64, cfg Config) Path {
	switch cfg.Mode {
	case SelectedTfOnly:
		return reconstructSelectedTf(b, prevClose, cfg.SpreadPrice)
	case M1TickSimulation:
		if len(cfg.M1Bars) == 0 {
			return reconstructSelectedTf(b, prevClose, cfg.SpreadPrice)
		}
		return reconstructM1(cfg.M1Bars, cfg.SpreadPrice)
	case RealTickCustomSpread:
		return reconstructTicks(cfg.Ticks, cfg.SpreadPrice, false)
	case RealTickRealSpread:
		return reconstructTicks(cfg.Ticks, 0, true)
	default:
		return reconstructSelectedTf(b, prevClose, cfg.SpreadPrice)
	}
}

// reconstructSelectedTf implements mode 1: open -> nearer extreme -> far
// extreme -> close. "Nearer" is measured against the prior bar's close, per
// the spec. When prevClose is unavailable (first bar) high is visited first,
// an arbitrary but deterministic choice.
func reconstructSelectedTf(b types.Bar, prevClose, spread float64) Path {
	first, second := b.High, b.Low
	if !math.IsNaN(prevClose) {
		distHigh := math.Abs(b.High - prevClose)
		distLow := math.Abs(b.Low - prevClose)
		if distLow < distHigh {
			first, second = b.Low, b.High
		}
	}
	return Path{
		{Timestamp: b.Timestamp, Price: b.Open, Spread: spread},
		{Timestamp: b.Timestamp, Price: first, Spread: spread},
		{Timestamp: b.Timestamp, Price: second, Spread: spread},
		{Timestamp: b.Timestamp, Price: b.Close, Spread: spread},
	}
}

// reconstructM1 replays each aligned M1 bar through the same 4-point
// reconstruction as mode 1, chained prior-close to prior-close. This makes
// the overall result path-dependent on the M1 sequence rather than a
// closed-form rule — the spec flags this explicitly as an open question to
// pin against golden data rather than derive analytically.
func reconstructM1(m1 []types.Bar, spread float64) Path {
	var out Path
	prevClose := math.NaN()
	for _, b := range m1 {
		out = append(out, reconstructSelectedTf(b, prevClose, spread)...)
		prevClose = b.Close
	}
	return out
}

func reconstructTicks(ticks []types.Tick, overrideSpread float64, useRealSpread bool) Path {
	out := make(Path, len(ticks))
	for i, t := range ticks {
		spread := overrideSpread
		if useRealSpread {
			spread = t.Ask - t.Bid
		}
		out[i] = Sample{Timestamp: t.Timestamp, Price: t.Mid(), Spread: spread}
	}
	return out
}
