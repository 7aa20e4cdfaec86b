package optimizer

import (
	"context"
	"time"

	"github.com/quantkit/backtestcore/metrics"
)

// Window is one out-of-sample evaluation window.
type Window struct {
	Label      string
	Start, End time.Time
}

// OOSRunner evaluates params against a specific window, independent of
// whichever window the ranking Runner used.
type OOSRunner func(ctx context.Context, params map[string]float64, w Window) (metrics.Metrics, error)

// DefaultTopK is the spec's default number of top-ranked IS candidates
// that receive OOS evaluation.
const DefaultTopK = 50

// AttachOOS backtests the top-K ranked candidates (by IS objective, already
// sorted descending in result.Candidates) against each window, attaching
// rows that never influence ranking. topK <= 0 selects DefaultTopK.
func AttachOOS(ctx context.Context, result *Result, windows []Window, topK int, run OOSRunner) error {
	if len(windows) == 0 || len(result.Candidates) == 0 {
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > len(result.Candidates) {
		topK = len(result.Candidates)
	}
	if result.OOS == nil {
		result.OOS = make(map[int][]OOSRow, topK)
	}
	for i := 0; i < topK; i++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		params := result.Candidates[i].Params
		rows := make([]OOSRow, 0, len(windows))
		for _, w := range windows {
			m, err := run(ctx, params, w)
			if err != nil {
				continue
			}
			rows = append(rows, OOSRow{Label: w.Label, Metrics: m})
		}
		result.OOS[i] = rows
	}
	return nil
}
