// Package bar provides the lazy, restartable bar/tick sequence abstraction
// that the core consumes from external collaborators (CSV ingestion,
// timeframe aggregation, columnar storage — all out of scope per the core's
// own spec). The core only ever reads through the Source interface.
package bar

import (
	"fmt"
	"math"

	"github.com/quantkit/backtestcore/types"
)

// Source exposes bars for a (symbol, timeframe, [start,end]) slice in
// strictly ascending timestamp order. Gaps are allowed only where the
// underlying storage has gaps; the core never mutates what it reads.
type Source interface {
	// Len returns the total number of bars available.
	Len() int
	// At returns the bar at index i, 0 <= i < Len().
	At(i int) types.Bar
	// Slice returns bars in [from, to).
	Slice(from, to int) []types.Bar
}

// TickSource is the tick-level analogue of Source, consumed only under the
// RealTick* precision modes.
type TickSource interface {
	Len() int
	At(i int) types.Tick
	Slice(from, to int) []types.Tick
}

// SliceSource is an in-memory Source backed by a pre-loaded slice. It is the
// only concrete Source the core ships: real ingestion belongs to the host
// application, which adapts its own storage to this interface.
type SliceSource struct {
	bars []types.Bar
}

// NewSliceSource validates and wraps bars as a Source.
//
// Validation enforces the data-model invariants from the spec: strictly
// increasing timestamps, finite OHLC, and low <= open,close <= high.
func NewSliceSource(bars []types.Bar) (*SliceSource, error) {
	for i, b := range bars {
		for _, v := range [4]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("bar.NewSliceSource: non-finite price at index %d", i)
			}
		}
		if i > 0 && !b.Timestamp.After(bars[i-1].Timestamp) {
			return nil, fmt.Errorf("bar.NewSliceSource: timestamps not strictly increasing at index %d", i)
		}
		if b.Low > b.High {
			return nil, fmt.Errorf("bar.NewSliceSource: low > high at index %d", i)
		}
		if b.Open < b.Low || b.Open > b.High || b.Close < b.Low || b.Close > b.High {
			return nil, fmt.Errorf("bar.NewSliceSource: open/close outside [low,high] at index %d", i)
		}
	}
	out := make([]types.Bar, len(bars))
	copy(out, bars)
	return &SliceSource{bars: out}, nil
}

func (s *SliceSource) Len() int { return len(s.bars) }

func (s *SliceSource) At(i int) types.Bar { return s.bars[i] }

func (s *SliceSource) Slice(from, to int) []types.Bar {
	if from < 0 {
		from = 0
	}
	if to > len(s.bars) {
		to = len(s.bars)
	}
	if from >= to {
		return nil
	}
	out := make([]types.Bar, to-from)
	copy(out, s.bars[from:to])
	return out
}

// SliceTickSource is the in-memory TickSource analogue of SliceSource.
type SliceTickSource struct {
	ticks []types.Tick
}

func NewSliceTickSource(ticks []types.Tick) (*SliceTickSource, error) {
	for i, t := range ticks {
		if t.Bid > t.Ask {
			return nil, fmt.Errorf("bar.NewSliceTickSource: bid > ask at index %d", i)
		}
		if i > 0 && !t.Timestamp.After(ticks[i-1].Timestamp) {
			return nil, fmt.Errorf("bar.NewSliceTickSource: timestamps not strictly increasing at index %d", i)
		}
	}
	out := make([]types.Tick, len(ticks))
	copy(out, ticks)
	return &SliceTickSource{ticks: out}, nil
}

func (s *SliceTickSource) Len() int { return len(s.ticks) }

func (s *SliceTickSource) At(i int) types.Tick { return s.ticks[i] }

func (s *SliceTickSource) Slice(from, to int) []types.Tick {
	if from < 0 {
		from = 0
	}
	if to > len(s.ticks) {
		to = len(s.ticks)
	}
	if from >= to {
		return nil
	}
	out := make([]types.Tick, to-from)
	copy(out, s.ticks[from:to])
	return out
}
