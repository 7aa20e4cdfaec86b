package rule

import (
	"fmt"
	"time"

	"github.com/quantkit/backtestcore/cache"
	"github.com/quantkit/backtestcore/indicator"
	"github.com/quantkit/backtestcore/types"
)

// Evaluator resolves operands to finite floats at a given bar index, backed
// by the shared indicator cache. One Evaluator is built per backtest run (or
// per optimizer trial) over a fixed bar window; it memoizes per-operand
// series locally in addition to whatever package cache shares across runs.
type Evaluator struct {
	bars      []types.Bar
	cache     *cache.Cache
	symbolID  string
	timeframe string
	tickSize  float64

	seriesMemo map[string]indicator.Series
	dailyOpen  []float64
	dailyHigh  []float64
	dailyLow   []float64
	dailyClose []float64
}

// NewEvaluator builds an Evaluator over the full bars slice. tickSize feeds
// the absolute tolerance used by the Equal comparator.
func NewEvaluator(bars []types.Bar, c *cache.Cache, symbolID, timeframe string, tickSize float64) *Evaluator {
	e := &Evaluator{
		bars: bars, cache: c, symbolID: symbolID, timeframe: timeframe, tickSize: tickSize,
		seriesMemo: make(map[string]indicator.Series),
	}
	e.buildDailyOHLC()
	return e
}

func (e *Evaluator) buildDailyOHLC() {
	n := len(e.bars)
	e.dailyOpen = make([]float64, n)
	e.dailyHigh = make([]float64, n)
	e.dailyLow = make([]float64, n)
	e.dailyClose = make([]float64, n)
	var day int
	var o, h, l float64
	for i, b := range e.bars {
		y, m, d := b.Timestamp.Date()
		key := y*10000 + int(m)*100 + d
		if i == 0 || key != day {
			day = key
			o, h, l = b.Open, b.High, b.Low
		} else {
			if b.High > h {
				h = b.High
			}
			if b.Low < l {
				l = b.Low
			}
		}
		e.dailyOpen[i] = o
		e.dailyHigh[i] = h
		e.dailyLow[i] = l
		e.dailyClose[i] = b.Close
	}
}

func (e *Evaluator) indicatorSeries(cfg indicator.Config) (indicator.Series, error) {
	key := fmt.Sprintf("%d|%d|%d|%d|%g|%g|%g|%g|%s",
		cfg.Kind, cfg.Period, cfg.Period2, cfg.Period3, cfg.Multiplier, cfg.AFStep, cfg.AFMax, cfg.Gamma, cfg.Output)
	if s, ok := e.seriesMemo[key]; ok {
		return s, nil
	}
	var start, end time.Time
	if len(e.bars) > 0 {
		start, end = e.bars[0].Timestamp, e.bars[len(e.bars)-1].Timestamp
	}
	res, err := e.cache.Get(e.bars, cfg, e.symbolID, e.timeframe, start, end)
	if err != nil {
		return nil, err
	}
	s := res.Select(cfg.Output)
	e.seriesMemo[key] = s
	return s, nil
}

// Value resolves op at bar index i minus op.Offset. Returns
// indicator.Sentinel for anything undefined.
func (e *Evaluator) Value(op Operand, i int) float64 {
	idx := i - op.Offset
	if idx < 0 || idx >= len(e.bars) {
		return indicator.Sentinel
	}
	switch op.Kind {
	case ConstantOperand:
		return op.Constant
	case PriceOperand:
		return e.priceValue(op.Price, idx)
	case BarTimeOperand:
		return e.barTimeValue(op.BarTime, idx)
	case CandlePatternOperand:
		return evalPattern(e.bars, idx, op.Pattern)
	case IndicatorOperand:
		s, err := e.indicatorSeries(op.Indicator)
		if err != nil || s == nil || idx >= len(s) {
			return indicator.Sentinel
		}
		return s[idx]
	default:
		return indicator.Sentinel
	}
}

func (e *Evaluator) priceValue(f PriceField, idx int) float64 {
	b := e.bars[idx]
	switch f {
	case Open:
		return b.Open
	case High:
		return b.High
	case Low:
		return b.Low
	case Close:
		return b.Close
	case DailyOpen:
		return e.dailyOpen[idx]
	case DailyHigh:
		return e.dailyHigh[idx]
	case DailyLow:
		return e.dailyLow[idx]
	case DailyClose:
		return e.dailyClose[idx]
	default:
		return indicator.Sentinel
	}
}

func (e *Evaluator) barTimeValue(f BarTimeField, idx int) float64 {
	ts := e.bars[idx].Timestamp
	switch f {
	case BarHour:
		return float64(ts.Hour())
	case BarMinute:
		return float64(ts.Minute())
	case BarMinuteOfDay:
		return float64(ts.Hour()*60 + ts.Minute())
	case BarDayOfWeek:
		return float64(ts.Weekday())
	case CurrentMonth:
		return float64(ts.Month())
	default:
		return indicator.Sentinel
	}
}
