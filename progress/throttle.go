package progress

import (
	"time"

	"golang.org/x/time/rate"
)

// Throttle gates progress emission to at most once per interval (the spec's
// "≥33ms stride" for backtest progress, or once per optimizer combination).
// It wraps a token-bucket limiter configured to allow exactly one event per
// interval with no burst, so back-to-back Allow calls collapse to the
// configured cadence rather than bursting on startup.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle builds a Throttle emitting at most once per interval. An
// interval <= 0 means "emit every call" (no throttling).
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		return &Throttle{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Allow reports whether an event may be emitted right now, consuming the
// token if so. Non-blocking.
func (t *Throttle) Allow() bool {
	return t.limiter.Allow()
}
