package rule

import (
	"testing"
	"time"

	"github.com/quantkit/backtestcore/cache"
	"github.com/quantkit/backtestcore/indicator"
	"github.com/quantkit/backtestcore/types"
)

func barsUpTrend(n int) []types.Bar {
	bars := make([]types.Bar, n)
	price := 100.0
	for i := range bars {
		bars[i] = types.Bar{
			Timestamp: time.Unix(int64(i)*60, 0),
			Open:      price, High: price + 1, Low: price - 0.5, Close: price + 1, Volume: 10,
		}
		price += 1
	}
	return bars
}

func TestCloseCrossAboveSMA(t *testing.T) {
	bars := barsUpTrend(10)
	// Closes fall for four bars and then rise, so Close sits below SMA(3)
	// at index 3 and crosses above it at index 4.
	for i, cl := range []float64{105, 104, 103, 102, 103, 105, 107, 109, 111, 113} {
		bars[i].Close = cl
	}
	c := cache.New(0)
	e := NewEvaluator(bars, c, "SYM", "H1", 0.0001)

	rules := List{
		{
			Left:       Operand{Kind: PriceOperand, Price: Close},
			Comparator: CrossAbove,
			Right:      Operand{Kind: IndicatorOperand, Indicator: indicator.Config{Kind: indicator.SMA, Period: 3}},
		},
	}

	fired := -1
	for i := 0; i < len(bars); i++ {
		if rules.Eval(e, i) {
			fired = i
			break
		}
	}
	if fired < 0 {
		t.Fatal("expected a cross-above signal once Close turns up through SMA(3)")
	}
}

func TestSentinelOperandNeverFires(t *testing.T) {
	bars := barsUpTrend(10)
	c := cache.New(0)
	e := NewEvaluator(bars, c, "SYM", "H1", 0.0001)
	rules := List{
		{
			Left:       Operand{Kind: IndicatorOperand, Indicator: indicator.Config{Kind: indicator.SMA, Period: 50}},
			Comparator: GreaterThan,
			Right:      Operand{Kind: ConstantOperand, Constant: 0},
		},
	}
	for i := 0; i < len(bars); i++ {
		if rules.Eval(e, i) {
			t.Fatalf("expected no signal while SMA is undefined (warmup 50 > len %d)", len(bars))
		}
	}
}

func TestLeftToRightConnectorSemantics(t *testing.T) {
	c := cache.New(0)
	bars := barsUpTrend(5)
	e := NewEvaluator(bars, c, "SYM", "H1", 0.0001)

	// true OR false AND false  ==  (true OR false) AND false == false
	// (strictly left-to-right, NOT "AND binds tighter")
	rules := List{
		{Left: Operand{Kind: ConstantOperand, Constant: 1}, Comparator: GreaterThan, Right: Operand{Kind: ConstantOperand, Constant: 0}, Connector: OR},
		{Left: Operand{Kind: ConstantOperand, Constant: 0}, Comparator: GreaterThan, Right: Operand{Kind: ConstantOperand, Constant: 1}, Connector: AND},
		{Left: Operand{Kind: ConstantOperand, Constant: 0}, Comparator: GreaterThan, Right: Operand{Kind: ConstantOperand, Constant: 1}},
	}
	if rules.Eval(e, 0) {
		t.Fatal("expected strict left-to-right evaluation to yield false")
	}
}

func TestEqualComparatorToleranceUsesTickSize(t *testing.T) {
	c := cache.New(0)
	bars := barsUpTrend(3)
	e := NewEvaluator(bars, c, "SYM", "H1", 0.001) // tolerance = 0.0005
	rules := List{
		{
			Left:       Operand{Kind: ConstantOperand, Constant: 100.0003},
			Comparator: Equal,
			Right:      Operand{Kind: ConstantOperand, Constant: 100.0},
		},
	}
	if !rules.Eval(e, 0) {
		t.Fatal("expected equality within tick_size/2 tolerance")
	}
}

func TestEmptyListIsAlwaysFalse(t *testing.T) {
	c := cache.New(0)
	bars := barsUpTrend(3)
	e := NewEvaluator(bars, c, "SYM", "H1", 0.0001)
	var empty List
	if empty.Eval(e, 0) {
		t.Fatal("expected empty rule list to evaluate false")
	}
}
