// Package metrics implements the spec's Component G: post-run summary
// statistics computed from a trade list and equity curve, plus the
// process-wide prometheus collectors the desktop host scrapes while a run
// (or an optimizer sweep) is in flight. Grounded on the teacher's
// prometheus.CounterVec/GaugeVec registration pattern (package-level vars,
// MustRegister in init), generalized from order-submission counters to
// backtest-run and optimizer-sweep counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RunsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtestcore_runs_completed_total",
			Help: "Total number of backtest runs completed, by outcome.",
		},
		[]string{"outcome"}, // "ok", "cancelled", "error"
	)

	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backtestcore_run_duration_seconds",
			Help:    "Wall-clock duration of a single backtest run.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"symbol_id"},
	)

	GridCombinationsEvaluated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backtestcore_grid_combinations_evaluated_total",
			Help: "Total number of parameter combinations evaluated across all grid searches.",
		},
	)

	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backtestcore_indicator_cache_hits_total",
			Help: "Total number of indicator cache hits.",
		},
	)

	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "backtestcore_indicator_cache_misses_total",
			Help: "Total number of indicator cache misses (computed fresh).",
		},
	)

	EquityGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "backtestcore_run_equity",
			Help: "Most recently sampled equity value for an in-flight run, keyed by run id.",
		},
		[]string{"run_id"},
	)
)

func init() {
	prometheus.MustRegister(RunsCompleted, RunDuration, GridCombinationsEvaluated, CacheHits, CacheMisses, EquityGauge)
}
