// Package engine implements the spec's Component F: the bar-driven
// executor loop. It opens/closes the single permitted position by
// evaluating a Strategy's rule lists, consumes the precision overlay for
// intra-bar SL/TP/trailing detection, applies trading costs and sizing,
// and produces the trade list and equity curve metrics are computed from.
// Grounded on the teacher's PaperExecutor.Submit loop (mutate
// equity/position under a lock, log each fill) generalized to a
// signal-on-close/execute-on-next-open bar loop with cooperative
// cancellation.
package engine

import (
	"context"
	"math"
	"time"

	"github.com/quantkit/backtestcore/backtesterr"
	"github.com/quantkit/backtestcore/cache"
	"github.com/quantkit/backtestcore/config"
	"github.com/quantkit/backtestcore/indicator"
	"github.com/quantkit/backtestcore/metrics"
	"github.com/quantkit/backtestcore/position"
	"github.com/quantkit/backtestcore/precision"
	"github.com/quantkit/backtestcore/progress"
	"github.com/quantkit/backtestcore/risk"
	"github.com/quantkit/backtestcore/rule"
	"github.com/quantkit/backtestcore/types"
)

// IntrabarSource supplies the precision.Config for bar i, given that bar.
// The default (NoIntrabarSource) always selects SelectedTfOnly with the
// strategy's configured spread; a caller wiring M1 or tick data supplies its own.
type IntrabarSource func(i int, b types.Bar) precision.Config

// NoIntrabarSource is the SelectedTfOnly default with cfg's configured
// spread applied uniformly.
func NoIntrabarSource(spreadPrice float64) IntrabarSource {
	return func(i int, b types.Bar) precision.Config {
		return precision.Config{Mode: precision.SelectedTfOnly, SpreadPrice: spreadPrice}
	}
}

// ProgressFunc receives a throttled progress update; done/total are bar
// indices. Engine.Run calls it at most once per ProgressThrottle interval.
type ProgressFunc func(done, total int, equity float64)

// CancelFunc is polled at each bar boundary; returning true aborts the run
// with backtesterr.ErrCancelled.
type CancelFunc func() bool

// Result is everything a completed (or cancelled) run produced.
type Result struct {
	Trades      []position.Trade
	EquityCurve []types.EquityPoint
	Cancelled   bool
}

// Engine runs one backtest over a fixed bar window.
type Engine struct {
	bars     []types.Bar
	strategy config.Strategy
	backtest config.BacktestConfig
	eval     *rule.Evaluator
	cache    *cache.Cache
	intrabar IntrabarSource

	// RunID labels this run's EquityGauge samples. Minted fresh by New;
	// callers that need a caller-supplied id can overwrite it before
	// calling Run.
	RunID string

	atrCache map[int]indicator.Series // keyed by ATR period
}

// New builds an Engine ready to Run over bars.
func New(bars []types.Bar, strat config.Strategy, bt config.BacktestConfig, c *cache.Cache, intrabar IntrabarSource) *Engine {
	if intrabar == nil {
		intrabar = NoIntrabarSource(bt.Instrument.PipSize * strat.TradingCosts.SpreadPips)
	}
	return &Engine{
		bars:     bars,
		strategy: strat,
		backtest: bt,
		eval:     rule.NewEvaluator(bars, c, bt.SymbolID, bt.Timeframe, bt.Instrument.TickSize),
		cache:    c,
		intrabar: intrabar,
		RunID:    progress.NewRunID(),
		atrCache: make(map[int]indicator.Series),
	}
}

type pendingOrder struct {
	direction types.Direction
}

// armedDirection resolves the spec's same-bar tie-break: if both long and
// short entries fire, trade_direction's preferred side wins; Both prefers
// long.
func armedDirection(longFires, shortFires bool, dir types.Direction) (types.Direction, bool) {
	switch {
	case longFires && shortFires:
		if dir == types.Short {
			return types.Short, true
		}
		return types.Long, true
	case longFires:
		return types.Long, true
	case shortFires:
		return types.Short, true
	default:
		return types.Long, false
	}
}

func (e *Engine) atrSeries(period int) (indicator.Series, error) {
	if s, ok := e.atrCache[period]; ok {
		return s, nil
	}
	var start, end time.Time
	if len(e.bars) > 0 {
		start, end = e.bars[0].Timestamp, e.bars[len(e.bars)-1].Timestamp
	}
	res, err := e.cache.Get(e.bars, indicator.Config{Kind: indicator.ATR, Period: period}, e.backtest.SymbolID, e.backtest.Timeframe, start, end)
	if err != nil {
		return nil, err
	}
	s := res.Select("")
	e.atrCache[period] = s
	return s, nil
}

func (e *Engine) atrAt(sc *config.StopConfig, i int) float64 {
	if sc == nil || sc.Kind != config.StopATRMultiple {
		return 0
	}
	s, err := e.atrSeries(sc.ATRPeriod)
	if err != nil || i >= len(s) || indicator.IsSentinel(s[i]) {
		return 0
	}
	return s[i]
}

// Run executes the bar-driven loop described in the spec's §4.F pseudocode.
func (e *Engine) Run(ctx context.Context, onProgress ProgressFunc, isCancelled CancelFunc) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.RunDuration.WithLabelValues(e.backtest.SymbolID).Observe(time.Since(start).Seconds())
		metrics.EquityGauge.DeleteLabelValues(e.RunID)
	}()

	n := len(e.bars)
	if n == 0 {
		metrics.RunsCompleted.WithLabelValues("error").Inc()
		return Result{}, backtesterr.ErrNoData
	}

	equity := e.backtest.InitialCapital
	var trades []position.Trade
	var equityCurve []types.EquityPoint
	var pos *position.Position
	var pendingEntry *pendingOrder
	var pendingExitSignal bool
	var barsInPosition int

	var dayTradeCount int
	var curDay int

	lastProgress := time.Time{}
	throttle := e.backtest.ProgressThrottleOrDefault()

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			metrics.RunsCompleted.WithLabelValues("cancelled").Inc()
			return Result{Trades: trades, EquityCurve: equityCurve, Cancelled: true}, backtesterr.ErrCancelled
		default:
		}
		if isCancelled != nil && isCancelled() {
			metrics.RunsCompleted.WithLabelValues("cancelled").Inc()
			return Result{Trades: trades, EquityCurve: equityCurve, Cancelled: true}, backtesterr.ErrCancelled
		}

		b := e.bars[i]
		y, m, d := b.Timestamp.Date()
		dayKey := y*10000 + int(m)*100 + d
		if dayKey != curDay {
			curDay = dayKey
			dayTradeCount = 0
		}

		// Step 1: execute any order armed on the previous bar at this bar's
		// open (signal-on-close, execution-on-next-open).
		if pendingEntry != nil && pos == nil {
			pos = e.openPosition(pendingEntry.direction, b, equity, i)
			if pos != nil {
				dayTradeCount++
				barsInPosition = 0
			}
			pendingEntry = nil
		}
		if pendingExitSignal && pos != nil {
			equity = e.closePosition(&trades, pos, b.Timestamp, b.Open, position.Signal, equity, barsInPosition)
			pos = nil
			pendingExitSignal = false
		}

		// Step 2: time-based forced close.
		if pos != nil && e.strategy.CloseTradesAt != nil {
			tod := time.Duration(b.Timestamp.Hour())*time.Hour + time.Duration(b.Timestamp.Minute())*time.Minute + time.Duration(b.Timestamp.Second())*time.Second
			if tod >= *e.strategy.CloseTradesAt {
				equity = e.closePosition(&trades, pos, b.Timestamp, b.Close, position.TimeClose, equity, barsInPosition)
				pos = nil
			}
		}

		// Step 3: intra-bar SL/TP/trailing detection, then exit rules.
		if pos != nil {
			barsInPosition++
			path := precision.Reconstruct(b, prevClose(e.bars, i), e.intrabar(i, b))
			closedThisBar := false
			for _, s := range path {
				pos.UpdateExcursion(s.Price, e.backtest.Instrument)
				if hit, reason, price := pos.CheckTouch(s); hit {
					equity = e.closePosition(&trades, pos, b.Timestamp, price, reason, equity, barsInPosition)
					pos = nil
					closedThisBar = true
					break
				}
			}
			if !closedThisBar && pos != nil {
				e.reanchorTrailing(pos, b, i)
				var exitFires bool
				switch pos.Direction {
				case types.Long:
					exitFires = e.strategy.LongExitRules.Eval(e.eval, i)
				case types.Short:
					exitFires = e.strategy.ShortExitRules.Eval(e.eval, i)
				}
				if exitFires {
					pendingExitSignal = true
				}
			}
		} else {
			// Step 4: evaluate entries only when flat.
			allowed := e.entryAllowed(b, dayTradeCount)
			if allowed {
				longFires := (e.strategy.TradeDirection == types.Long || e.strategy.TradeDirection == types.Both) && e.strategy.LongEntryRules.Eval(e.eval, i)
				shortFires := (e.strategy.TradeDirection == types.Short || e.strategy.TradeDirection == types.Both) && e.strategy.ShortEntryRules.Eval(e.eval, i)
				if dir, armed := armedDirection(longFires, shortFires, e.strategy.TradeDirection); armed {
					pendingEntry = &pendingOrder{direction: dir}
				}
			}
		}

		// Step 5: sample equity, emit progress.
		markToMarket := equity
		if pos != nil {
			markToMarket = equity + unrealizedPnL(pos, b.Close, e.backtest.Instrument)
		}
		equityCurve = append(equityCurve, types.EquityPoint{Timestamp: b.Timestamp, Equity: markToMarket})
		metrics.EquityGauge.WithLabelValues(e.RunID).Set(markToMarket)

		if onProgress != nil && (lastProgress.IsZero() || time.Since(lastProgress) >= throttle) {
			onProgress(i+1, n, markToMarket)
			lastProgress = time.Now()
		}
	}

	if pos != nil {
		last := e.bars[n-1]
		equity = e.closePosition(&trades, pos, last.Timestamp, last.Close, position.EndOfData, equity, barsInPosition)
	}

	equityCurve = downsample(equityCurve, e.backtest.EquityCurveCapOrDefault())
	metrics.RunsCompleted.WithLabelValues("ok").Inc()
	return Result{Trades: trades, EquityCurve: equityCurve}, nil
}

func prevClose(bars []types.Bar, i int) float64 {
	if i == 0 {
		return math.NaN()
	}
	return bars[i-1].Close
}

func unrealizedPnL(p *position.Position, price float64, inst types.InstrumentConfig) float64 {
	var pipDist float64
	switch p.Direction {
	case types.Long:
		pipDist = price - p.EntryPrice
	case types.Short:
		pipDist = p.EntryPrice - price
	}
	if inst.PipSize <= 0 {
		return pipDist * p.Lots * inst.LotSize
	}
	return pipDist / inst.PipSize * inst.PipValue * p.Lots
}

func (e *Engine) entryAllowed(b types.Bar, dayTradeCount int) bool {
	if e.strategy.TradingHours != nil && !e.strategy.TradingHours.Contains(b.Timestamp) {
		return false
	}
	if e.strategy.MaxDailyTrades > 0 && dayTradeCount >= e.strategy.MaxDailyTrades {
		return false
	}
	return true
}

func (e *Engine) openPosition(dir types.Direction, b types.Bar, equity float64, i int) *position.Position {
	spread := e.backtest.Instrument.PipSize * e.strategy.TradingCosts.SpreadPips
	slip := e.backtest.Instrument.PipSize * e.strategy.TradingCosts.SlippagePips
	entryPrice := b.Open
	if dir == types.Long {
		entryPrice += spread/2 + slip
	} else {
		entryPrice -= spread/2 + slip
	}

	slDist, hasSL := position.LevelPrice(e.strategy.StopLoss, dir, entryPrice, e.backtest.Instrument, e.atrAt(e.strategy.StopLoss, i))
	tpDist, hasTP := position.LevelPrice(e.strategy.TakeProfit, dir, entryPrice, e.backtest.Instrument, e.atrAt(e.strategy.TakeProfit, i))

	lots := sizingLots(e.strategy, equity, entryPrice, slDist, hasSL, e.backtest.Instrument)
	if lots <= 0 {
		return nil
	}

	var sl, tp float64
	if hasSL {
		sl = position.StopLevel(dir, entryPrice, slDist)
	}
	if hasTP {
		tp = position.TargetLevel(dir, entryPrice, tpDist)
	}
	pos := position.Open(dir, b.Timestamp, entryPrice, lots, sl, tp, hasSL, hasTP)
	if e.strategy.TrailingStop != nil {
		pos.HasTrailing = true
		pos.TrailingAnchor = entryPrice
		if dist, ok := position.LevelPrice(e.strategy.TrailingStop, dir, entryPrice, e.backtest.Instrument, e.atrAt(e.strategy.TrailingStop, i)); ok {
			pos.SL = position.StopLevel(dir, entryPrice, dist)
			pos.HasSL = true
		}
	}
	return pos
}

func sizingLots(strat config.Strategy, equity, entryPrice, slDist float64, hasSL bool, inst types.InstrumentConfig) float64 {
	dist := 0.0
	if hasSL {
		dist = slDist
	}
	return risk.Lots(strat.Sizing, equity, entryPrice, dist, inst)
}

func (e *Engine) reanchorTrailing(p *position.Position, b types.Bar, i int) {
	if !p.HasTrailing || e.strategy.TrailingStop == nil {
		return
	}
	dist, ok := position.LevelPrice(e.strategy.TrailingStop, p.Direction, p.EntryPrice, e.backtest.Instrument, e.atrAt(e.strategy.TrailingStop, i))
	if !ok {
		return
	}
	p.ReanchorTrailing(b.Close, dist)
}

func (e *Engine) closePosition(trades *[]position.Trade, p *position.Position, at time.Time, price float64, reason position.CloseReason, equity float64, barsHeld int) float64 {
	commission := position.Commission(e.strategy.TradingCosts, p.Lots, price, e.backtest.Instrument)
	// openPosition charges no commission and Position carries no running
	// commission state, so the entry side is charged here alongside the exit side.
	entryCommission := position.Commission(e.strategy.TradingCosts, p.Lots, p.EntryPrice, e.backtest.Instrument)
	trade := p.Close(at, price, reason, commission+entryCommission, e.backtest.Instrument, barsHeld)
	*trades = append(*trades, trade)
	return equity + trade.PnL
}

func downsample(pts []types.EquityPoint, cap int) []types.EquityPoint {
	if cap <= 0 || len(pts) <= cap {
		return pts
	}
	stride := (len(pts) + cap - 1) / cap
	out := make([]types.EquityPoint, 0, cap+1)
	for i := 0; i < len(pts); i += stride {
		out = append(out, pts[i])
	}
	if last := pts[len(pts)-1]; len(out) == 0 || out[len(out)-1].Timestamp != last.Timestamp {
		out = append(out, last)
	}
	return out
}
