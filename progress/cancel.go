// Package progress implements the spec's Component J: a cooperative
// cancellation flag and throttled progress emission, plus an optional
// websocket push surface for the desktop host. Grounded on the teacher's
// PaperExecutor (sync-guarded mutable state polled by callers) for the
// cancel flag, and on krisnaepras-backend-screener-crypto's websocket
// handler (gorilla/websocket upgrader, per-connection write loop) for the
// push Hub.
package progress

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// NewRunID mints a unique identifier for one backtest run; engine.New uses
// it as the run's EquityGauge "run_id" label.
func NewRunID() string {
	return uuid.NewString()
}

// Flag is a single atomic cancellation flag scoped to one run. It is safe
// for concurrent Set/IsSet from any goroutine.
type Flag struct {
	v atomic.Bool
}

// Set flips the flag. Idempotent.
func (f *Flag) Set() {
	f.v.Store(true)
}

// IsSet reports whether the flag has been flipped.
func (f *Flag) IsSet() bool {
	return f.v.Load()
}

// Reset clears the flag so the same Flag value can be reused for a new run.
func (f *Flag) Reset() {
	f.v.Store(false)
}
