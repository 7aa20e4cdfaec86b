package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/quantkit/backtestcore/types"
)

func syntheticBars(n int, start float64, step float64) []types.Bar {
	bars := make([]types.Bar, n)
	price := start
	for i := 0; i < n; i++ {
		o := price
		c := price + step
		hi := math.Max(o, c) + 0.1
		lo := math.Min(o, c) - 0.1
		bars[i] = types.Bar{
			Timestamp: time.Unix(int64(i)*60, 0),
			Open:      o, High: hi, Low: lo, Close: c, Volume: 1000,
		}
		price = c
	}
	return bars
}

func TestSMAMatchesManualMean(t *testing.T) {
	bars := syntheticBars(10, 100, 1)
	res, err := Compute(bars, Config{Kind: SMA, Period: 3})
	if err != nil {
		t.Fatal(err)
	}
	// closes run 101..110; the last 3 bars at index 9 close at 108,109,110
	got := res.Primary[9]
	want := (108.0 + 109.0 + 110.0) / 3
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("SMA mismatch: got %v want %v", got, want)
	}
	for i := 0; i < 2; i++ {
		if !IsSentinel(res.Primary[i]) {
			t.Fatalf("expected sentinel at warmup index %d", i)
		}
	}
}

func TestEMASeeding(t *testing.T) {
	bars := syntheticBars(20, 100, 0)
	res, err := Compute(bars, Config{Kind: EMA, Period: 5})
	if err != nil {
		t.Fatal(err)
	}
	if IsSentinel(res.Primary[4]) {
		t.Fatal("expected EMA defined once SMA seed window is full")
	}
	if !IsSentinel(res.Primary[3]) {
		t.Fatal("expected sentinel before warmup")
	}
}

func TestRSIBoundedRange(t *testing.T) {
	bars := syntheticBars(30, 100, 1) // monotonically increasing closes
	res, err := Compute(bars, Config{Kind: RSI, Period: 14})
	if err != nil {
		t.Fatal(err)
	}
	last := res.Primary[len(res.Primary)-1]
	if last < 99 || last > 100 {
		t.Fatalf("expected RSI to saturate near 100 for all-up series, got %v", last)
	}
}

func TestMACDAuxChannels(t *testing.T) {
	bars := syntheticBars(60, 100, 0.5)
	res, err := Compute(bars, Config{Kind: MACD, Period: 12, Period2: 26, Period3: 9})
	if err != nil {
		t.Fatal(err)
	}
	if res.Select("signal") == nil || res.Select("histogram") == nil {
		t.Fatal("expected signal and histogram aux channels")
	}
}

func TestBollingerBandsOrdering(t *testing.T) {
	bars := syntheticBars(30, 100, 0)
	res, err := Compute(bars, Config{Kind: BollingerBands, Period: 10, Multiplier: 2})
	if err != nil {
		t.Fatal(err)
	}
	upper := res.Select("upper")
	lower := res.Select("lower")
	for i := 10; i < len(bars); i++ {
		if upper[i] < lower[i] {
			t.Fatalf("expected upper >= lower at %d", i)
		}
	}
}

func TestWarmupNoDataBoundary(t *testing.T) {
	cfg := Config{Kind: ATR, Period: 14}
	if Warmup(cfg) <= 14 {
		t.Fatalf("expected ATR warmup > period, got %d", Warmup(cfg))
	}
}

func TestDivisionByZeroYieldsSentinel(t *testing.T) {
	flat := make([]types.Bar, 20)
	for i := range flat {
		flat[i] = types.Bar{Timestamp: time.Unix(int64(i)*60, 0), Open: 100, High: 100, Low: 100, Close: 100, Volume: 1}
	}
	res, err := Compute(flat, Config{Kind: WilliamsR, Period: 5})
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range res.Primary {
		if !IsSentinel(v) {
			t.Fatalf("expected sentinel for zero-range bars at %d, got %v", i, v)
		}
	}
}
