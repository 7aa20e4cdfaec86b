// Package risk implements position sizing (spec §4.E): the four sizing
// methods a Strategy can select, each ultimately producing a lot count
// quantized to the instrument's min-lot step. Grounded on the teacher's
// CalcQty (dollar-risk / stop-distance, floored to a step size) generalized
// to the spec's FixedLots/FixedAmount/PercentEquity/RiskBased variants.
package risk

import (
	"math"

	"github.com/quantkit/backtestcore/types"
)

// Method is the closed set of position-sizing strategies.
type Method int

const (
	// FixedLots sizes every trade at a constant lot count (Value = lots).
	FixedLots Method = iota
	// FixedAmount sizes every trade at a constant notional dollar amount
	// (Value = USD).
	FixedAmount
	// PercentEquity sizes every trade at Value (0..1) fraction of current
	// equity, notional-based.
	PercentEquity
	// RiskBased sizes every trade so that a stop-loss touch loses exactly
	// Value (0..1) fraction of equity, given the stop distance in price.
	RiskBased
)

// Sizing is the tagged-variant config for one sizing method.
type Sizing struct {
	Method Method
	Value  float64
}

// Lots computes the quantized lot count for one entry.
//
//   - price is the intended entry price.
//   - slDistance is the stop-loss distance in price units (0 if no SL is
//     configured — RiskBased then falls back to PercentEquity-style sizing
//     using Value as a notional fraction of equity, since there is no risk
//     distance to size against).
func Lots(s Sizing, equity, price, slDistance float64, inst types.InstrumentConfig) float64 {
	if price <= 0 || inst.LotSize <= 0 {
		return 0
	}
	var raw float64
	switch s.Method {
	case FixedLots:
		raw = s.Value
	case FixedAmount:
		raw = s.Value / (price * inst.LotSize)
	case PercentEquity:
		raw = (equity * s.Value) / (price * inst.LotSize)
	case RiskBased:
		if slDistance <= 0 || inst.PipSize <= 0 || inst.PipValue <= 0 {
			raw = (equity * s.Value) / (price * inst.LotSize)
			break
		}
		riskAmt := equity * s.Value
		riskPerLot := (slDistance / inst.PipSize) * inst.PipValue
		if riskPerLot <= 0 {
			return 0
		}
		raw = riskAmt / riskPerLot
	default:
		return 0
	}
	return quantize(raw, inst.MinLot)
}

// quantize floors raw down to the nearest multiple of step, returning 0 if
// the result is below one step (an order too small to place).
func quantize(raw, step float64) float64 {
	if raw <= 0 {
		return 0
	}
	if step <= 0 {
		return raw
	}
	units := math.Floor(raw / step)
	if units < 1 {
		return 0
	}
	return units * step
}
