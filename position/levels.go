package position

import (
	"github.com/quantkit/backtestcore/config"
	"github.com/quantkit/backtestcore/types"
)

// LevelPrice converts a StopConfig into a distance in price units from
// entryPrice for a position in direction dir. atr is the current ATR
// value in price units, used only when sc.Kind is StopATRMultiple; pass 0
// when no ATR series is available (the level is then skipped by the
// caller via ok=false).
func LevelPrice(sc *config.StopConfig, dir types.Direction, entryPrice float64, inst types.InstrumentConfig, atr float64) (level float64, ok bool) {
	if sc == nil {
		return 0, false
	}
	var distance float64
	switch sc.Kind {
	case config.StopPips:
		distance = sc.Value * inst.PipSize
	case config.StopPercent:
		distance = entryPrice * sc.Value
	case config.StopATRMultiple:
		if atr <= 0 {
			return 0, false
		}
		distance = atr * sc.Value
	default:
		return 0, false
	}
	if distance <= 0 {
		return 0, false
	}
	// SL, TP and trailing distances are computed the same way here; the
	// caller places them on the correct side (below for long SL, above for
	// long TP) with StopLevel or TargetLevel.
	return distance, true
}

// StopLevel returns the absolute SL price for a long/short position given
// a distance in price units (as returned by LevelPrice).
func StopLevel(dir types.Direction, entryPrice, distance float64) float64 {
	if dir == types.Short {
		return entryPrice + distance
	}
	return entryPrice - distance
}

// TargetLevel returns the absolute TP price for a long/short position
// given a distance in price units.
func TargetLevel(dir types.Direction, entryPrice, distance float64) float64 {
	if dir == types.Short {
		return entryPrice - distance
	}
	return entryPrice + distance
}
