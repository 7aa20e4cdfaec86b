package risk

import (
	"testing"

	"github.com/quantkit/backtestcore/types"
)

func inst(minLot float64) types.InstrumentConfig {
	return types.InstrumentConfig{
		SymbolID: "EURUSD", PipSize: 0.0001, PipValue: 10, LotSize: 100000, MinLot: minLot, TickSize: 0.0001,
	}
}

func TestFixedLotsPassesThrough(t *testing.T) {
	got := Lots(Sizing{Method: FixedLots, Value: 1.5}, 10000, 1.1, 0, inst(0.01))
	if got != 1.5 {
		t.Fatalf("expected 1.5 lots, got %v", got)
	}
}

func TestRiskBasedSizesToStopDistance(t *testing.T) {
	// equity 10000, risk 1% = $100. SL distance 0.0020 (20 pips) at pip
	// value $10/pip/lot => risk per lot = 20*10 = $200. lots = 100/200 = 0.5.
	got := Lots(Sizing{Method: RiskBased, Value: 0.01}, 10000, 1.1, 0.0020, inst(0.01))
	if got != 0.5 {
		t.Fatalf("expected 0.5 lots, got %v", got)
	}
}

func TestQuantizeRespectsMinLotFloor(t *testing.T) {
	got := Lots(Sizing{Method: FixedAmount, Value: 1}, 10000, 1.1, 0, inst(0.1))
	if got != 0 {
		t.Fatalf("expected 0 lots (raw below one min-lot step), got %v", got)
	}
}

func TestPercentEquitySizing(t *testing.T) {
	got := Lots(Sizing{Method: PercentEquity, Value: 0.5}, 10000, 1.0, 0, inst(0.01))
	// notional = 5000, lotSize=100000 => raw lots = 5000/100000 = 0.05
	if got != 0.05 {
		t.Fatalf("expected 0.05 lots, got %v", got)
	}
}
