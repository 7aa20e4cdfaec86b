// Package rule implements the spec's Component D: a boolean expression tree
// evaluated over operands at a given bar index. Per the spec's design note,
// the operand/indicator tagged variant is modeled as a closed set of kinds
// with one resolver per kind rather than open-ended polymorphism.
package rule

import (
	"github.com/quantkit/backtestcore/indicator"
)

// OperandKind is the tagged-variant discriminator for Operand.
type OperandKind int

const (
	IndicatorOperand OperandKind = iota
	PriceOperand
	ConstantOperand
	BarTimeOperand
	CandlePatternOperand
)

// PriceField selects which OHLC field a PriceOperand resolves to.
type PriceField int

const (
	Open PriceField = iota
	High
	Low
	Close
	DailyOpen
	DailyHigh
	DailyLow
	DailyClose
)

// BarTimeField selects which calendar component a BarTimeOperand resolves to.
type BarTimeField int

const (
	BarHour BarTimeField = iota
	BarMinute
	BarMinuteOfDay
	BarDayOfWeek
	CurrentMonth
)

// PatternKind is the closed set of recognized candlestick patterns.
type PatternKind int

const (
	Doji PatternKind = iota
	Hammer
	ShootingStar
	BearishEngulfing
	BullishEngulfing
	DarkCloud
	PiercingLine
)

// Operand is the tagged variant referenced by a Rule's Left/Right sides.
// Exactly one of the Kind-specific fields is meaningful for a given Kind.
type Operand struct {
	Kind OperandKind

	// IndicatorOperand
	Indicator indicator.Config

	// PriceOperand
	Price PriceField

	// ConstantOperand
	Constant float64

	// BarTimeOperand
	BarTime BarTimeField

	// CandlePatternOperand
	Pattern PatternKind

	// Offset is a non-negative lookback in bars, meaningful for every kind:
	// the operand is resolved as of bar (i - Offset).
	Offset int
}
