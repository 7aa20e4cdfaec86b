package optimizer

import (
	"context"
	"testing"
	"time"

	"github.com/quantkit/backtestcore/metrics"
)

func TestAttachOOSLimitsToTopK(t *testing.T) {
	result := &Result{Candidates: make([]Candidate, 10)}
	for i := range result.Candidates {
		result.Candidates[i] = Candidate{Params: map[string]float64{"x": float64(i)}, Objective: float64(10 - i)}
	}
	windows := []Window{{Label: "2023", Start: time.Unix(0, 0), End: time.Unix(1, 0)}}
	var calls int
	run := func(ctx context.Context, params map[string]float64, w Window) (metrics.Metrics, error) {
		calls++
		return metrics.Metrics{NetProfit: params["x"]}, nil
	}
	if err := AttachOOS(context.Background(), result, windows, 3, run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 OOS evaluations (topK=3, 1 window), got %d", calls)
	}
	if len(result.OOS) != 3 {
		t.Fatalf("expected OOS rows attached to 3 candidates, got %d", len(result.OOS))
	}
}

func TestAttachOOSNeverChangesRanking(t *testing.T) {
	result := &Result{Candidates: []Candidate{
		{Params: map[string]float64{"x": 1}, Objective: 100},
		{Params: map[string]float64{"x": 2}, Objective: 50},
	}}
	before := append([]Candidate(nil), result.Candidates...)
	run := func(ctx context.Context, params map[string]float64, w Window) (metrics.Metrics, error) {
		return metrics.Metrics{NetProfit: -999}, nil
	}
	if err := AttachOOS(context.Background(), result, []Window{{Label: "oos"}}, 0, run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range before {
		if result.Candidates[i].Objective != before[i].Objective {
			t.Fatalf("expected ranking objective to be unchanged by OOS, index %d", i)
		}
	}
}
