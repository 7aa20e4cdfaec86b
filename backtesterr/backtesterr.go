// Package backtesterr defines the closed set of error kinds a backtest or
// optimizer run can fail with, wrapping a cause the way the teacher's
// executor surfaces "insufficient cash" as a plain logged string — except
// here the kind is machine-checkable via errors.Is/As rather than a log
// line, since callers (the desktop app, the optimizer) branch on it.
package backtesterr

import "errors"

// Kind is the closed set of backtest failure categories.
type Kind int

const (
	Internal Kind = iota
	InvalidStrategy
	NoSymbol
	NoData
	GridTooLarge
	NoOptimizableParam
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidStrategy:
		return "InvalidStrategy"
	case NoSymbol:
		return "NoSymbol"
	case NoData:
		return "NoData"
	case GridTooLarge:
		return "GridTooLarge"
	case NoOptimizableParam:
		return "NoOptimizableParam"
	case Cancelled:
		return "Cancelled"
	default:
		return "Internal"
	}
}

// Error is the wrapping error type every package-level failure returns.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Cause.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an *Error with no wrapped cause.
func New(k Kind, msg string) *Error {
	return &Error{Kind: k, Msg: msg}
}

// Wrap builds an *Error carrying cause.
func Wrap(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Msg: msg, Cause: cause}
}

// Is reports whether err is a *Error of kind k, per errors.Is conventions.
func Is(err error, k Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == k
}

// Sentinel instances for errors.Is comparisons against a bare kind when no
// message/cause detail is needed.
var (
	ErrCancelled           = &Error{Kind: Cancelled, Msg: "run cancelled"}
	ErrNoData              = &Error{Kind: NoData, Msg: "no bars available for the requested window"}
	ErrNoSymbol            = &Error{Kind: NoSymbol, Msg: "no symbol_id configured"}
	ErrGridTooLarge        = &Error{Kind: GridTooLarge, Msg: "grid search combination count exceeds the cap"}
	ErrNoOptimizableParam  = &Error{Kind: NoOptimizableParam, Msg: "no parameter range supplied for optimization"}
)
