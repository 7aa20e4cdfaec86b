// Package config holds the Strategy and BacktestConfig data models (spec
// §3) plus their Validate() methods. Grounded on the teacher's
// StrategyConfig.Validate idiom (bounds-check each tunable, return the
// first violation found) generalized from a fixed oscillator-threshold
// bag to the spec's declarative rule-list strategy.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/quantkit/backtestcore/precision"
	"github.com/quantkit/backtestcore/risk"
	"github.com/quantkit/backtestcore/rule"
	"github.com/quantkit/backtestcore/types"
)

// StopKind is the closed set of ways a stop-loss, take-profit or trailing
// stop distance can be expressed.
type StopKind int

const (
	StopPips StopKind = iota
	StopPercent
	StopATRMultiple
)

// StopConfig is one SL/TP/trailing-stop specification.
type StopConfig struct {
	Kind      StopKind
	Value     float64 // pips, percent (0..1), or ATR multiplier
	ATRPeriod int     // only meaningful for StopATRMultiple
}

// CommissionKind selects how trading commission is computed.
type CommissionKind int

const (
	FixedPerLot CommissionKind = iota
	Percentage
)

// Commission describes the cost charged on both entry and exit.
type Commission struct {
	Kind  CommissionKind
	Value float64 // $ per lot, or fraction (0..1) of notional
}

// TradingCosts bundles spread, slippage and commission.
type TradingCosts struct {
	SpreadPips     float64
	SlippagePips   float64
	SlippageRandom bool
	Commission     Commission
}

// HoursWindow is a trading-hours filter expressed as times-of-day. When
// Start > End the window is interpreted as two disjoint intervals
// [Start,24:00) ∪ [00:00,End), the spec's midnight-crossing rule.
type HoursWindow struct {
	Start time.Duration // offset since midnight
	End   time.Duration
}

// Contains reports whether the time-of-day component of t falls in the
// window.
func (w HoursWindow) Contains(t time.Time) bool {
	tod := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second
	if w.Start <= w.End {
		return tod >= w.Start && tod < w.End
	}
	return tod >= w.Start || tod < w.End
}

// Strategy is the spec's §3 data model: entry/exit rule lists, sizing,
// stop configuration, costs, permitted direction and optional time
// filters.
type Strategy struct {
	LongEntryRules  rule.List
	ShortEntryRules rule.List
	LongExitRules   rule.List
	ShortExitRules  rule.List

	Sizing risk.Sizing

	StopLoss     *StopConfig
	TakeProfit   *StopConfig
	TrailingStop *StopConfig

	TradingCosts TradingCosts

	TradeDirection types.Direction

	TradingHours   *HoursWindow
	MaxDailyTrades int // 0 = unlimited

	// CloseTradesAt, if set, forces a close on the first bar whose
	// timestamp-of-day is >= this time (spec's TimeClose rule).
	CloseTradesAt *time.Duration
}

// Validate enforces the spec's InvalidStrategy conditions: no entry rules
// in either direction, or a negative/non-sensical numeric knob anywhere in
// sizing, stops or costs. It returns the first violation found.
func (s Strategy) Validate() error {
	if len(s.LongEntryRules) == 0 && len(s.ShortEntryRules) == 0 {
		return errors.New("config: strategy has no entry rules in either direction")
	}
	if s.Sizing.Value < 0 {
		return errors.New("config: sizing value cannot be negative")
	}
	for name, sc := range map[string]*StopConfig{
		"stop_loss":     s.StopLoss,
		"take_profit":   s.TakeProfit,
		"trailing_stop": s.TrailingStop,
	} {
		if sc == nil {
			continue
		}
		if sc.Value < 0 {
			return fmt.Errorf("config: %s value cannot be negative", name)
		}
		if sc.Kind == StopATRMultiple && sc.ATRPeriod <= 0 {
			return fmt.Errorf("config: %s uses ATRMultiple but ATRPeriod must be positive", name)
		}
	}
	if s.MaxDailyTrades < 0 {
		return errors.New("config: MaxDailyTrades cannot be negative")
	}
	if s.TradingCosts.SpreadPips < 0 || s.TradingCosts.SlippagePips < 0 {
		return errors.New("config: spread/slippage pips cannot be negative")
	}
	if s.TradingCosts.Commission.Value < 0 {
		return errors.New("config: commission value cannot be negative")
	}
	if s.TradingHours != nil && (s.TradingHours.Start < 0 || s.TradingHours.Start >= 24*time.Hour ||
		s.TradingHours.End < 0 || s.TradingHours.End >= 24*time.Hour) {
		return errors.New("config: trading hours must fall within a single 24h day")
	}
	return nil
}

// BacktestConfig bundles the run-level inputs: capital, instrument,
// timeframe and the precision mode that governs intra-bar reconstruction.
type BacktestConfig struct {
	InitialCapital float64
	Instrument     types.InstrumentConfig
	SymbolID       string
	Timeframe      string
	Start, End     time.Time
	Precision      precision.Mode

	// EquityCurveCap bounds the number of equity-curve points kept via
	// stride sampling (spec §5); 0 selects the default of ~10k.
	EquityCurveCap int

	// ProgressThrottle overrides the spec's 33ms default progress cadence;
	// 0 selects the default.
	ProgressThrottle time.Duration
}

// Validate enforces non-positive-capital, malformed-instrument and
// malformed-range checks.
func (c BacktestConfig) Validate() error {
	if c.InitialCapital <= 0 {
		return fmt.Errorf("config: initial capital must be positive, got %v", c.InitialCapital)
	}
	if c.Instrument.PipSize <= 0 || c.Instrument.LotSize <= 0 {
		return errors.New("config: instrument pip_size and lot_size must be positive")
	}
	if c.SymbolID == "" {
		return errors.New("config: symbol_id is required")
	}
	if !c.Start.IsZero() && !c.End.IsZero() && !c.End.After(c.Start) {
		return errors.New("config: backtest end must be after start")
	}
	if c.EquityCurveCap < 0 {
		return errors.New("config: EquityCurveCap cannot be negative")
	}
	return nil
}

// EquityCurveCapOrDefault returns the configured cap or the spec's ~10k
// default.
func (c BacktestConfig) EquityCurveCapOrDefault() int {
	if c.EquityCurveCap > 0 {
		return c.EquityCurveCap
	}
	return 10000
}

// ProgressThrottleOrDefault returns the configured throttle or the spec's
// 33ms default.
func (c BacktestConfig) ProgressThrottleOrDefault() time.Duration {
	if c.ProgressThrottle > 0 {
		return c.ProgressThrottle
	}
	return 33 * time.Millisecond
}
