package precision

import (
	"math"
	"testing"
	"time"

	"github.com/quantkit/backtestcore/types"
)

func TestSelectedTfOnlyOrdersNearerExtremeFirst(t *testing.T) {
	b := types.Bar{Timestamp: time.Unix(60, 0), Open: 100, High: 105, Low: 95, Close: 102}
	// prior close near the low (96) => low should come before high.
	path := Reconstruct(b, 96, Config{Mode: SelectedTfOnly})
	if path[1].Price != 95 || path[2].Price != 105 {
		t.Fatalf("expected low then high, got %v then %v", path[1].Price, path[2].Price)
	}
}

func TestSelectedTfOnlyNearerHighFirst(t *testing.T) {
	b := types.Bar{Timestamp: time.Unix(60, 0), Open: 100, High: 105, Low: 95, Close: 102}
	path := Reconstruct(b, 104, Config{Mode: SelectedTfOnly})
	if path[1].Price != 105 || path[2].Price != 95 {
		t.Fatalf("expected high then low, got %v then %v", path[1].Price, path[2].Price)
	}
}

func TestSelectedTfOnlyFirstBarDefaultsHighFirst(t *testing.T) {
	b := types.Bar{Timestamp: time.Unix(60, 0), Open: 100, High: 105, Low: 95, Close: 102}
	path := Reconstruct(b, math.NaN(), Config{Mode: SelectedTfOnly})
	if path[1].Price != 105 {
		t.Fatalf("expected deterministic high-first default, got %v", path[1].Price)
	}
}

func TestM1SimulationChainsBars(t *testing.T) {
	m1 := []types.Bar{
		{Timestamp: time.Unix(0, 0), Open: 100, High: 101, Low: 99, Close: 100.5},
		{Timestamp: time.Unix(60, 0), Open: 100.5, High: 103, Low: 100, Close: 102},
	}
	path := Reconstruct(types.Bar{}, 0, Config{Mode: M1TickSimulation, M1Bars: m1})
	if len(path) != 8 {
		t.Fatalf("expected 4 samples per M1 bar, got %d", len(path))
	}
}

func TestRealTickRealSpreadUsesTickSpread(t *testing.T) {
	ticks := []types.Tick{{Timestamp: time.Unix(0, 0), Bid: 99.9, Ask: 100.1}}
	path := Reconstruct(types.Bar{}, 0, Config{Mode: RealTickRealSpread, Ticks: ticks})
	if math.Abs(path[0].Spread-0.2) > 1e-9 {
		t.Fatalf("expected spread 0.2, got %v", path[0].Spread)
	}
}
