package rule

import (
	"math"

	"github.com/quantkit/backtestcore/indicator"
)

// Comparator is the closed set of relational operators a Rule may use.
type Comparator int

const (
	GreaterThan Comparator = iota
	LessThan
	GreaterOrEqual
	LessOrEqual
	Equal
	CrossAbove
	CrossBelow
)

// Connector joins this Rule's result with the next one in a List.
type Connector int

const (
	AND Connector = iota
	OR
)

// Rule is one comparison between two operands. Connector is read only when
// the Rule is not the last element of its containing List.
type Rule struct {
	Left       Operand
	Comparator Comparator
	Right      Operand
	Connector  Connector
}

// eval evaluates this single rule at bar index i. Any Sentinel operand
// resolves the comparison to false, per the spec.
func (r Rule) eval(e *Evaluator, i int) bool {
	switch r.Comparator {
	case CrossAbove:
		if i < 1 {
			return false
		}
		lPrev, rPrev := e.Value(r.Left, i-1), e.Value(r.Right, i-1)
		lCur, rCur := e.Value(r.Left, i), e.Value(r.Right, i)
		if anySentinel(lPrev, rPrev, lCur, rCur) {
			return false
		}
		return lPrev <= rPrev && lCur > rCur
	case CrossBelow:
		if i < 1 {
			return false
		}
		lPrev, rPrev := e.Value(r.Left, i-1), e.Value(r.Right, i-1)
		lCur, rCur := e.Value(r.Left, i), e.Value(r.Right, i)
		if anySentinel(lPrev, rPrev, lCur, rCur) {
			return false
		}
		return lPrev >= rPrev && lCur < rCur
	default:
		l, rv := e.Value(r.Left, i), e.Value(r.Right, i)
		if anySentinel(l, rv) {
			return false
		}
		switch r.Comparator {
		case GreaterThan:
			return l > rv
		case LessThan:
			return l < rv
		case GreaterOrEqual:
			return l >= rv
		case LessOrEqual:
			return l <= rv
		case Equal:
			return math.Abs(l-rv) <= e.tickSize/2
		default:
			return false
		}
	}
}

func anySentinel(vals ...float64) bool {
	for _, v := range vals {
		if indicator.IsSentinel(v) {
			return true
		}
	}
	return false
}

// List is an ordered sequence of rules, evaluated strictly left-to-right:
// (((rule1 ⨁1 rule2) ⨁2 rule3) ...). Per the spec's design note (§9), OR
// does NOT bind below AND — connectors apply purely in sequence, which is
// a deliberate, documented departure from conventional boolean precedence
// kept for backward-compatible semantics with existing strategies.
type List []Rule

// Eval evaluates the list at bar index i. An empty list evaluates to false:
// an empty rule set can never produce a signal.
func (l List) Eval(e *Evaluator, i int) bool {
	if len(l) == 0 {
		return false
	}
	result := l[0].eval(e, i)
	for k := 1; k < len(l); k++ {
		next := l[k].eval(e, i)
		switch l[k-1].Connector {
		case AND:
			result = result && next
		case OR:
			result = result || next
		}
	}
	return result
}
