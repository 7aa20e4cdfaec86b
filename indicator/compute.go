package indicator

import (
	"fmt"

	"github.com/quantkit/backtestcore/types"
)

// Compute dispatches to the pure per-kind implementation. It is the sole
// entry point package cache calls to fill a cache miss.
func Compute(bars []types.Bar, cfg Config) (Result, error) {
	switch cfg.Kind {
	case SMA:
		return computeSMA(bars, cfg), nil
	case EMA:
		return computeEMA(bars, cfg), nil
	case RSI:
		return computeRSI(bars, cfg), nil
	case MACD:
		return computeMACD(bars, cfg), nil
	case BollingerBands:
		return computeBollingerBands(bars, cfg), nil
	case ATR:
		return computeATR(bars, cfg), nil
	case Stochastic:
		return computeStochastic(bars, cfg), nil
	case ADX:
		return computeADX(bars, cfg), nil
	case CCI:
		return computeCCI(bars, cfg), nil
	case ROC:
		return computeROC(bars, cfg), nil
	case WilliamsR:
		return computeWilliamsR(bars, cfg), nil
	case ParabolicSAR:
		return computeParabolicSAR(bars, cfg), nil
	case VWAP:
		return computeVWAP(bars, cfg), nil
	case Aroon:
		return computeAroon(bars, cfg), nil
	case AwesomeOscillator:
		return computeAwesomeOscillator(bars, cfg), nil
	case BarRange:
		return computeBarRange(bars, cfg), nil
	case PriceInRange:
		return computePriceInRange(bars, cfg), nil
	case BullsPower:
		return computeBullsPower(bars, cfg), nil
	case BearsPower:
		return computeBearsPower(bars, cfg), nil
	case DeMarker:
		return computeDeMarker(bars, cfg), nil
	case Fibonacci:
		return computeFibonacci(bars, cfg), nil
	case Fractal:
		return computeFractal(bars, cfg), nil
	case GannHiLo:
		return computeGannHiLo(bars, cfg), nil
	case HeikenAshi:
		return computeHeikenAshi(bars, cfg), nil
	case HullMA:
		return computeHullMA(bars, cfg), nil
	case Ichimoku:
		return computeIchimoku(bars, cfg), nil
	case KeltnerChannel:
		return computeKeltnerChannel(bars, cfg), nil
	case LaguerreRSI:
		return computeLaguerreRSI(bars, cfg), nil
	case LinearRegression:
		return computeLinearRegression(bars, cfg), nil
	case Momentum:
		return computeMomentum(bars, cfg), nil
	case SuperTrend:
		return computeSuperTrend(bars, cfg), nil
	case TrueRange:
		return computeTrueRange(bars, cfg), nil
	case StdDev:
		return computeStdDev(bars, cfg), nil
	case Reflex:
		return computeReflex(bars, cfg), nil
	case Pivots:
		return computePivots(bars, cfg), nil
	case UlcerIndex:
		return computeUlcerIndex(bars, cfg), nil
	case Vortex:
		return computeVortex(bars, cfg), nil
	default:
		return Result{}, fmt.Errorf("indicator: unknown kind %v", cfg.Kind)
	}
}

// Warmup returns the per-kind lookback length used as the warmup bar count
// for cfg's primary series. It is derived from the configured periods only,
// so it does not match the number of leading Sentinel entries exactly for
// every kind (SMA, for one, is already defined at index Period-1, and Pivots
// stay undefined through the first calendar day). Only the package tests
// call it; the engine evaluates rules from bar 0 and relies on the sentinel.
func Warmup(cfg Config) int {
	switch cfg.Kind {
	case SMA, BollingerBands, StdDev, CCI, Stochastic, WilliamsR, Aroon, LinearRegression, UlcerIndex:
		return max1(cfg.Period)
	case EMA, RSI:
		return max1(cfg.Period)
	case ATR, KeltnerChannel, SuperTrend, DeMarker, Vortex, ADX:
		return max1(cfg.Period) + 1
	case MACD:
		return cfg.Period2 + cfg.Period3
	case ROC, Momentum:
		return cfg.Period + 1
	case HullMA:
		return max1(cfg.Period) + 1
	case Ichimoku:
		return maxInt(cfg.Period, cfg.Period2, cfg.Period3)
	case Fibonacci, Pivots:
		return max1(cfg.Period)
	case Fractal:
		return 5
	case ParabolicSAR, HeikenAshi, VWAP, BarRange, PriceInRange, GannHiLo, BullsPower, BearsPower:
		return max1(cfg.Period)
	case AwesomeOscillator:
		return maxInt(cfg.Period, cfg.Period2, 34)
	case LaguerreRSI, Reflex:
		return max1(cfg.Period)
	case TrueRange:
		return 1
	default:
		return max1(cfg.Period)
	}
}

func max1(p int) int {
	if p < 1 {
		return 1
	}
	return p
}

func maxInt(vals ...int) int {
	m := 0
	for _, v := range vals {
		if v > m {
			m = v
		}
	}
	return max1(m)
}
