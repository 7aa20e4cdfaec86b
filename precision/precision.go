// Package precision implements the spec's Component H: reconstruction of
// intra-bar price paths at four fidelities, feeding the position engine's
// SL/TP/trailing touch detection. The overlay is a pure function from
// (bar, mode, available sources) to an ordered sequence of price samples.
package precision

import (
	"time"
)

// Mode is the closed set of intra-bar reconstruction fidelities.
type Mode int

const (
	// SelectedTfOnly treats the bar as 4 sequential points: open, then
	// whichever extreme is nearer the prior close, then the other extreme,
	// then close. Ties (both SL and TP touched) resolve to StopLoss.
	SelectedTfOnly Mode = iota
	// M1TickSimulation replays the aligned M1 bars under the same open/
	// near-extreme/far-extreme/close reconstruction as SelectedTfOnly, but
	// path-dependently across however many M1 bars compose the coarse bar.
	M1TickSimulation
	// RealTickCustomSpread replays raw ticks; spread is applied per the
	// strategy's trading-cost config rather than the ticks' own spread.
	RealTickCustomSpread
	// RealTickRealSpread replays raw ticks using their own historical
	// bid/ask, spread is not overridden.
	RealTickRealSpread
)

// Sample is one reconstructed intra-bar price point.
type Sample struct {
	Timestamp time.Time
	Price     float64
	// Spread is the bid/ask spread in price units applicable at this
	// sample. Touch detection (position.CheckTouch) compares Price only and
	// does not read it.
	Spread float64
}

// Path is an ordered sequence of Samples a coarse bar reconstructs to.
type Path []Sample
