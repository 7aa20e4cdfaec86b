package cache

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/quantkit/backtestcore/indicator"
	"github.com/quantkit/backtestcore/types"
)

func bars(n int) []types.Bar {
	out := make([]types.Bar, n)
	price := 100.0
	for i := range out {
		out[i] = types.Bar{
			Timestamp: time.Unix(int64(i)*60, 0),
			Open:      price, High: price + 1, Low: price - 1, Close: price + 0.5, Volume: 10,
		}
		price += 0.5
	}
	return out
}

func TestCacheMemoizesAcrossCalls(t *testing.T) {
	c := New(0)
	b := bars(30)
	cfg := indicator.Config{Kind: indicator.SMA, Period: 5}
	start, end := b[0].Timestamp, b[len(b)-1].Timestamp

	r1, err := c.Get(b, cfg, "EURUSD", "H1", start, end)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := c.Get(b, cfg, "EURUSD", "H1", start, end)
	if err != nil {
		t.Fatal(err)
	}
	for i := range r1.Primary {
		if !indicator.IsSentinel(r1.Primary[i]) && math.Abs(r1.Primary[i]-r2.Primary[i]) > 1e-12 {
			t.Fatalf("expected identical series from cache, diverged at %d", i)
		}
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("expected 1 hit and 1 miss, got hits=%d misses=%d", hits, misses)
	}
}

func TestCacheConcurrentSingleFlight(t *testing.T) {
	c := New(0)
	b := bars(50)
	cfg := indicator.Config{Kind: indicator.EMA, Period: 10}
	start, end := b[0].Timestamp, b[len(b)-1].Timestamp

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Get(b, cfg, "EURUSD", "H1", start, end); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	if c.Len() != 1 {
		t.Fatalf("expected exactly 1 memoized entry, got %d", c.Len())
	}
}

func TestCacheLRUEviction(t *testing.T) {
	c := New(2)
	b := bars(20)
	start, end := b[0].Timestamp, b[len(b)-1].Timestamp
	for p := 2; p <= 5; p++ {
		cfg := indicator.Config{Kind: indicator.SMA, Period: p}
		if _, err := c.Get(b, cfg, "SYM", "M1", start, end); err != nil {
			t.Fatal(err)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("expected LRU bound of 2 entries, got %d", c.Len())
	}
}
