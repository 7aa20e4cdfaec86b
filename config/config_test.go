package config

import (
	"testing"
	"time"

	"github.com/quantkit/backtestcore/risk"
	"github.com/quantkit/backtestcore/rule"
	"github.com/quantkit/backtestcore/types"
)

func validStrategy() Strategy {
	return Strategy{
		LongEntryRules: rule.List{{
			Left:       rule.Operand{Kind: rule.PriceOperand, Price: rule.Close},
			Comparator: rule.GreaterThan,
			Right:      rule.Operand{Kind: rule.ConstantOperand, Constant: 1.0},
		}},
		Sizing:         risk.Sizing{Method: risk.FixedLots, Value: 1},
		TradeDirection: types.Both,
	}
}

func TestStrategyValidateSuccess(t *testing.T) {
	if err := validStrategy().Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestStrategyValidateFailsOnNoEntryRules(t *testing.T) {
	s := validStrategy()
	s.LongEntryRules = nil
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for strategy with no entry rules")
	}
}

func TestStrategyValidateFailsOnNegativeSizing(t *testing.T) {
	s := validStrategy()
	s.Sizing.Value = -1
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for negative sizing value")
	}
}

func TestStrategyValidateFailsOnATRStopMissingPeriod(t *testing.T) {
	s := validStrategy()
	s.StopLoss = &StopConfig{Kind: StopATRMultiple, Value: 2}
	if err := s.Validate(); err == nil {
		t.Fatal("expected error for ATR-multiple stop with zero ATRPeriod")
	}
}

func TestHoursWindowContainsHandlesMidnightCrossing(t *testing.T) {
	w := HoursWindow{Start: 22 * time.Hour, End: 2 * time.Hour}
	late := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	early := time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC)
	midday := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	if !w.Contains(late) || !w.Contains(early) {
		t.Fatal("expected both late-night and early-morning times to be contained")
	}
	if w.Contains(midday) {
		t.Fatal("expected midday to fall outside the window")
	}
}

func validBacktest() BacktestConfig {
	return BacktestConfig{
		InitialCapital: 10000,
		Instrument:     types.InstrumentConfig{SymbolID: "EURUSD", PipSize: 0.0001, PipValue: 10, LotSize: 100000, TickSize: 0.0001},
		SymbolID:       "EURUSD",
		Timeframe:      "M15",
	}
}

func TestBacktestConfigValidateSuccess(t *testing.T) {
	if err := validBacktest().Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestBacktestConfigValidateFailsOnNonPositiveCapital(t *testing.T) {
	c := validBacktest()
	c.InitialCapital = 0
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for zero capital")
	}
}

func TestBacktestConfigDefaults(t *testing.T) {
	c := validBacktest()
	if c.EquityCurveCapOrDefault() != 10000 {
		t.Fatalf("expected default equity curve cap of 10000, got %d", c.EquityCurveCapOrDefault())
	}
	if c.ProgressThrottleOrDefault() != 33*time.Millisecond {
		t.Fatalf("expected default progress throttle of 33ms, got %v", c.ProgressThrottleOrDefault())
	}
}
