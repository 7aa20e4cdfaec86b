package metrics

import (
	"math"

	"github.com/quantkit/backtestcore/position"
	"github.com/quantkit/backtestcore/types"
)

// Metrics is the spec §4.G summary statistics bundle, computed in at most
// two sequential scans of the trade list and equity curve.
type Metrics struct {
	TotalTrades int
	Wins, Losses int

	NetProfit   float64
	GrossProfit float64
	GrossLoss   float64 // negative or zero
	AvgPnL      float64
	LargestWin  float64
	LargestLoss float64

	WinRate     float64
	ProfitFactor float64
	Expectancy  float64

	AnnualizedReturn float64
	Sharpe           float64
	Sortino          float64
	Calmar           float64

	MaxDrawdownPct float64
	AvgDrawdownPct float64
	MaxDrawdownDurationBars int
	AvgDrawdownDurationBars float64
	RecoveryFactor float64
	UlcerIndex     float64

	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	AvgConsecutiveWins   float64
	AvgConsecutiveLosses float64

	AvgMAE, MaxMAE float64
	AvgMFE, MaxMFE float64

	StagnationBars int
}

// Compute derives Metrics from a closed trade list and the per-bar equity
// curve. trades must be in chronological close order; equity must be in
// chronological order. initialCapital anchors annualized-return and
// percent-drawdown calculations.
func Compute(trades []position.Trade, equity []types.EquityPoint, initialCapital float64) Metrics {
	var m Metrics
	m.TotalTrades = len(trades)

	var pnls []float64
	var consecWin, consecLoss int
	var winStreaks, lossStreaks []int
	var maeSum, mfeSum float64

	for _, tr := range trades {
		pnls = append(pnls, tr.PnL)
		if tr.PnL > 0 {
			m.Wins++
			m.GrossProfit += tr.PnL
			if tr.PnL > m.LargestWin {
				m.LargestWin = tr.PnL
			}
			consecWin++
			if consecLoss > 0 {
				lossStreaks = append(lossStreaks, consecLoss)
				consecLoss = 0
			}
			if consecWin > m.MaxConsecutiveWins {
				m.MaxConsecutiveWins = consecWin
			}
		} else if tr.PnL < 0 {
			m.Losses++
			m.GrossLoss += tr.PnL
			if tr.PnL < m.LargestLoss {
				m.LargestLoss = tr.PnL
			}
			consecLoss++
			if consecWin > 0 {
				winStreaks = append(winStreaks, consecWin)
				consecWin = 0
			}
			if consecLoss > m.MaxConsecutiveLosses {
				m.MaxConsecutiveLosses = consecLoss
			}
		}
		maeSum += tr.MAE
		mfeSum += tr.MFE
		if tr.MAE > m.MaxMAE {
			m.MaxMAE = tr.MAE
		}
		if tr.MFE > m.MaxMFE {
			m.MaxMFE = tr.MFE
		}
		m.NetProfit += tr.PnL
	}
	if consecWin > 0 {
		winStreaks = append(winStreaks, consecWin)
	}
	if consecLoss > 0 {
		lossStreaks = append(lossStreaks, consecLoss)
	}
	m.AvgConsecutiveWins = meanInt(winStreaks)
	m.AvgConsecutiveLosses = meanInt(lossStreaks)

	if m.TotalTrades > 0 {
		m.AvgPnL = m.NetProfit / float64(m.TotalTrades)
		m.AvgMAE = maeSum / float64(m.TotalTrades)
		m.AvgMFE = mfeSum / float64(m.TotalTrades)
		m.WinRate = float64(m.Wins) / float64(m.TotalTrades)
	}
	if m.GrossLoss != 0 {
		m.ProfitFactor = m.GrossProfit / math.Abs(m.GrossLoss)
	} else if m.GrossProfit > 0 {
		m.ProfitFactor = math.Inf(1)
	}

	lossRate := 1 - m.WinRate
	avgWin := safeAvg(m.GrossProfit, m.Wins)
	avgLoss := safeAvg(m.GrossLoss, m.Losses)
	m.Expectancy = m.WinRate*avgWin + lossRate*avgLoss

	computeEquityStats(&m, equity, initialCapital)
	return m
}

func safeAvg(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func meanInt(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum int
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

// computeEquityStats derives the curve-based statistics: annualized
// return, Sharpe/Sortino, drawdown (max/avg, pct and duration), Calmar,
// recovery factor, Ulcer index and stagnation — in two forward scans of the
// curve (one for returns, one for drawdowns).
func computeEquityStats(m *Metrics, equity []types.EquityPoint, initialCapital float64) {
	if len(equity) == 0 || initialCapital <= 0 {
		return
	}
	final := equity[len(equity)-1].Equity

	days := equity[len(equity)-1].Timestamp.Sub(equity[0].Timestamp).Hours() / 24
	if days > 0 {
		m.AnnualizedReturn = math.Pow(final/initialCapital, 365/days) - 1
	}

	returns := make([]float64, 0, len(equity))
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (equity[i].Equity-prev)/prev)
	}
	meanRet, stdRet := meanStd(returns)
	if stdRet > 0 {
		m.Sharpe = meanRet / stdRet * math.Sqrt(252)
	}
	_, downsideStd := meanStd(downsideOnly(returns))
	if downsideStd > 0 {
		m.Sortino = meanRet / downsideStd * math.Sqrt(252)
	}

	peak := equity[0].Equity
	peakIdx := 0
	var ddSum, ddSqSum float64
	var ddCount int
	var ddDurSum float64
	var ddDurCount int
	var curDrawdownStart = -1
	var highWaterMarkIdx int

	for i, pt := range equity {
		if pt.Equity > peak {
			peak = pt.Equity
			peakIdx = i
			if curDrawdownStart >= 0 {
				ddDurSum += float64(i - curDrawdownStart)
				ddDurCount++
				curDrawdownStart = -1
			}
			if gap := i - highWaterMarkIdx - 1; gap > m.StagnationBars {
				m.StagnationBars = gap
			}
			highWaterMarkIdx = i
		} else if peak > 0 {
			ddPct := (peak - pt.Equity) / peak
			if ddPct > 0 {
				if curDrawdownStart < 0 {
					curDrawdownStart = peakIdx
				}
				ddSum += ddPct
				ddSqSum += ddPct * ddPct
				ddCount++
				if ddPct > m.MaxDrawdownPct {
					m.MaxDrawdownPct = ddPct
					m.MaxDrawdownDurationBars = i - peakIdx
				}
			}
		}
	}
	if ddCount > 0 {
		m.AvgDrawdownPct = ddSum / float64(ddCount)
		m.UlcerIndex = math.Sqrt(ddSqSum / float64(len(equity)))
	}
	if ddDurCount > 0 {
		m.AvgDrawdownDurationBars = ddDurSum / float64(ddDurCount)
	}
	if tail := len(equity) - 1 - highWaterMarkIdx; tail > m.StagnationBars {
		m.StagnationBars = tail
	}

	if m.MaxDrawdownPct > 0 {
		m.Calmar = m.AnnualizedReturn / m.MaxDrawdownPct
		m.RecoveryFactor = m.NetProfit / (m.MaxDrawdownPct * initialCapital)
	}
}

func meanStd(vals []float64) (mean, std float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean = sum / float64(len(vals))
	var sqSum float64
	for _, v := range vals {
		d := v - mean
		sqSum += d * d
	}
	std = math.Sqrt(sqSum / float64(len(vals)))
	return mean, std
}

func downsideOnly(rets []float64) []float64 {
	out := make([]float64, 0, len(rets))
	for _, r := range rets {
		if r < 0 {
			out = append(out, r)
		}
	}
	return out
}
