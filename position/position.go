// Package position implements the spec's Component E: position & order
// engine. It defines the open-position and closed-trade types, prices
// SL/TP/trailing levels, checks precision.Sample values for touches, and
// tracks MAE/MFE; sizing (package risk), the single-position state and the
// walk over a precision.Path live in package engine. Grounded on the
// teacher's PaperExecutor (mutex-protected in-memory position/equity
// state, Submit/Equity/Position accessors) generalized from a
// cash-ledger paper trader to a single-position backtest state machine.
package position

import (
	"time"

	"github.com/quantkit/backtestcore/config"
	"github.com/quantkit/backtestcore/precision"
	"github.com/quantkit/backtestcore/types"
)

// CloseReason is the closed set of reasons a trade can close.
type CloseReason int

const (
	Signal CloseReason = iota
	StopLoss
	TakeProfit
	TrailingStop
	EndOfData
	TimeClose
)

func (r CloseReason) String() string {
	switch r {
	case Signal:
		return "Signal"
	case StopLoss:
		return "StopLoss"
	case TakeProfit:
		return "TakeProfit"
	case TrailingStop:
		return "TrailingStop"
	case EndOfData:
		return "EndOfData"
	case TimeClose:
		return "TimeClose"
	default:
		return "Unknown"
	}
}

// DenialReason is the closed set of reasons an entry signal is rejected
// without opening a position.
type DenialReason int

const (
	NoDenial DenialReason = iota
	DirectionDisallowed
	OutsideTradingHours
	DailyTradeCapReached
	AlreadyInPosition
)

// Position is the currently open position, or nil when flat.
type Position struct {
	Direction      types.Direction
	EntryTime      time.Time
	EntryPrice     float64
	Lots           float64
	SL             float64 // 0 means unset
	TP             float64
	HasSL, HasTP   bool
	TrailingAnchor float64
	HasTrailing    bool

	MAE, MFE float64 // in pips, always >= 0
	BarCount int
}

// Trade is a closed position plus exit accounting.
type Trade struct {
	Direction  types.Direction
	EntryTime  time.Time
	EntryPrice float64
	Lots       float64
	SL, TP     float64

	ExitTime   time.Time
	ExitPrice  float64
	PnL        float64 // money, net of commission
	PnLPips    float64
	Commission float64
	Reason     CloseReason

	MAE, MFE              float64
	DurationBars          int
	DurationWallclock     time.Duration
}

// Open creates a new Position at entryPrice (already adjusted for
// spread/slippage by the caller) with sl/tp levels the caller derived via
// LevelPrice, StopLevel and TargetLevel.
func Open(dir types.Direction, at time.Time, entryPrice, lots float64, sl, tp float64, hasSL, hasTP bool) *Position {
	p := &Position{
		Direction:  dir,
		EntryTime:  at,
		EntryPrice: entryPrice,
		Lots:       lots,
		SL:         sl,
		TP:         tp,
		HasSL:      hasSL,
		HasTP:      hasTP,
	}
	if hasSL {
		p.TrailingAnchor = entryPrice
	}
	return p
}

// pipsFromPrice converts an absolute price distance to pips via pip_size.
func pipsFromPrice(distance float64, inst types.InstrumentConfig) float64 {
	if inst.PipSize <= 0 {
		return 0
	}
	return distance / inst.PipSize
}

// UpdateExcursion folds one more observed price into MAE/MFE, expressed in
// pips adverse/favorable to the position's direction.
func (p *Position) UpdateExcursion(price float64, inst types.InstrumentConfig) {
	var adverse, favorable float64
	switch p.Direction {
	case types.Long:
		adverse = p.EntryPrice - price
		favorable = price - p.EntryPrice
	case types.Short:
		adverse = price - p.EntryPrice
		favorable = p.EntryPrice - price
	}
	if adverse > 0 {
		if pips := pipsFromPrice(adverse, inst); pips > p.MAE {
			p.MAE = pips
		}
	}
	if favorable > 0 {
		if pips := pipsFromPrice(favorable, inst); pips > p.MFE {
			p.MFE = pips
		}
	}
}

// ReanchorTrailing re-anchors the trailing-stop reference price when the
// market has moved favorably, per the spec's "re-anchors on every new bar
// when favorable" rule. dist is the trailing distance in price units.
func (p *Position) ReanchorTrailing(price, dist float64) {
	if !p.HasTrailing || dist <= 0 {
		return
	}
	switch p.Direction {
	case types.Long:
		if price > p.TrailingAnchor {
			p.TrailingAnchor = price
			p.SL = price - dist
		}
	case types.Short:
		if price < p.TrailingAnchor || p.TrailingAnchor == 0 {
			p.TrailingAnchor = price
			p.SL = price + dist
		}
	}
}

// touchResult describes which level (if any) a sample touched.
type touchResult struct {
	hit    bool
	reason CloseReason
	price  float64
}

// CheckTouch walks one precision.Sample against the position's levels.
// Ties within the same sample resolve to StopLoss per the spec.
func (p *Position) CheckTouch(s precision.Sample) (hit bool, reason CloseReason, price float64) {
	switch p.Direction {
	case types.Long:
		if p.HasSL && s.Price <= p.SL {
			return true, StopLoss, p.SL
		}
		if p.HasTP && s.Price >= p.TP {
			return true, TakeProfit, p.TP
		}
	case types.Short:
		if p.HasSL && s.Price >= p.SL {
			return true, StopLoss, p.SL
		}
		if p.HasTP && s.Price <= p.TP {
			return true, TakeProfit, p.TP
		}
	}
	return false, Signal, 0
}

// Close materializes a Trade from the position's final exit.
func (p *Position) Close(exitTime time.Time, exitPrice float64, reason CloseReason, commission float64, inst types.InstrumentConfig, barsHeld int) Trade {
	var pnlPrice float64
	switch p.Direction {
	case types.Long:
		pnlPrice = exitPrice - p.EntryPrice
	case types.Short:
		pnlPrice = p.EntryPrice - exitPrice
	}
	pnlMoney := pnlPrice * p.Lots * inst.LotSize
	if inst.PipSize > 0 {
		pnlMoney = pnlPrice / inst.PipSize * inst.PipValue * p.Lots
	}
	return Trade{
		Direction:         p.Direction,
		EntryTime:         p.EntryTime,
		EntryPrice:        p.EntryPrice,
		Lots:              p.Lots,
		SL:                p.SL,
		TP:                p.TP,
		ExitTime:          exitTime,
		ExitPrice:         exitPrice,
		PnL:               pnlMoney - commission,
		PnLPips:           pipsFromPrice(pnlPrice, inst),
		Commission:        commission,
		Reason:            reason,
		MAE:               p.MAE,
		MFE:               p.MFE,
		DurationBars:      barsHeld,
		DurationWallclock: exitTime.Sub(p.EntryTime),
	}
}

// Commission computes the round-trip-half commission charge for lots at
// notional price under cfg. The engine calls it twice when a position
// closes: once at the entry price and once at the exit price.
func Commission(cfg config.TradingCosts, lots, price float64, inst types.InstrumentConfig) float64 {
	switch cfg.Commission.Kind {
	case config.FixedPerLot:
		return cfg.Commission.Value * lots
	case config.Percentage:
		return cfg.Commission.Value * lots * inst.LotSize * price
	default:
		return 0
	}
}
