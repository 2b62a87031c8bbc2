// Package engine drives the band strategy: it polls bars, computes the
// rolling envelope, reconciles account state and maps the confirmed signal
// point plus position state to market orders.
package engine

import (
	"context"
	"fmt"

	"mt5-bands-bot/internal/interfaces"
	"mt5-bands-bot/internal/logger"
	"mt5-bands-bot/internal/store"
	"mt5-bands-bot/internal/ta"
	"mt5-bands-bot/internal/timeframe"
	"mt5-bands-bot/internal/tradelog"
	"mt5-bands-bot/internal/types"
)

const (
	openComment  = "Open"
	closeComment = "Close"
)

type Engine struct {
	gw      interfaces.Gateway
	tracker interfaces.Tracker
	router  interfaces.Router

	symbol    string
	tf        timeframe.Timeframe
	window    int
	bandK     float64
	volume    float64
	deviation int
	margin    int

	// last reported signal point, for the change-detection gate
	lastClose, lastUpper, lastLower float64
	primed                          bool
}

var _ interfaces.Engine = (*Engine)(nil)

func New(cfg *store.Config, gw interfaces.Gateway, tracker interfaces.Tracker, router interfaces.Router) (*Engine, error) {
	tf, err := timeframe.Lookup(cfg.Strategy.Timeframe)
	if err != nil {
		return nil, err
	}
	return &Engine{
		gw:        gw,
		tracker:   tracker,
		router:    router,
		symbol:    cfg.Strategy.Symbol,
		tf:        tf,
		window:    cfg.Strategy.Window,
		bandK:     cfg.Strategy.BandK,
		volume:    cfg.Strategy.Volume,
		deviation: cfg.Strategy.Deviation,
		margin:    cfg.Strategy.MarginBars,
	}, nil
}

// Step runs one strategy iteration. A nil result with nil error means the
// venue has not produced enough confirmed bars yet ("no signal yet").
func (e *Engine) Step(ctx context.Context) (*types.StepResult, error) {
	bars, err := e.gw.BarsByPosition(ctx, e.symbol, e.tf, 0, e.window+e.margin)
	if err != nil {
		return nil, fmt.Errorf("bar fetch: %w", err)
	}
	// The last bar may still be forming; the confirmed signal point is the
	// second-to-last bar. One bar of delay buys confirmed-bar stability.
	if len(bars) < 2 {
		logger.Debug(ctx, "No signal yet", "symbol", e.symbol, "bars", len(bars))
		return nil, nil
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	_, upper, lower := ta.Bands(closes, e.window, e.bandK)

	idx := len(bars) - 2
	if !ta.Defined(upper[idx]) || !ta.Defined(lower[idx]) {
		logger.Debug(ctx, "No signal yet", "symbol", e.symbol, "bars", len(bars), "window", e.window)
		return nil, nil
	}
	confirmed := closes[idx]

	// Refresh is for state reporting only; the trade decision below reads the
	// snapshot regardless of whether anything changed.
	if e.tracker.RefreshPositionsAndOrders(ctx) {
		logger.Debug(ctx, "Account state changed", "symbol", e.symbol)
	}
	positions := e.tracker.Snapshot().Positions

	res := &types.StepResult{
		Symbol: e.symbol,
		Time:   bars[idx].Ts,
		Close:  confirmed,
		Upper:  upper[idx],
		Lower:  lower[idx],
	}

	if !e.primed || confirmed != e.lastClose || upper[idx] != e.lastUpper || lower[idx] != e.lastLower {
		e.lastClose, e.lastUpper, e.lastLower = confirmed, upper[idx], lower[idx]
		e.primed = true
		res.Changed = true
		logger.Signal(ctx, e.symbol, confirmed, upper[idx], lower[idx], len(positions))
		_ = tradelog.AppendSignal(tradelog.SignalEntry{
			Symbol:    e.symbol,
			Close:     confirmed,
			UpperBand: upper[idx],
			LowerBand: lower[idx],
			Positions: len(positions),
		})
	}

	side, ok := decide(len(positions), confirmed, lower[idx], upper[idx])
	if !ok {
		return res, nil
	}

	comment := openComment
	if side == types.SideSell {
		comment = closeComment
	}
	logger.Info(ctx, "Band crossing detected", "symbol", e.symbol, "side", string(side), "close", confirmed)

	result, err := e.router.SendMarket(ctx, e.symbol, side, e.volume, e.deviation, comment)
	if err != nil {
		logger.ErrorWithErr(ctx, "Order submission refused", err, "symbol", e.symbol, "side", string(side))
		return res, nil
	}
	res.Action = string(side)
	res.Orders = append(res.Orders, result)
	_ = tradelog.Append(tradelog.Entry{
		Symbol:  e.symbol,
		Side:    string(side),
		Kind:    string(types.OrderKindMarket),
		Volume:  e.volume,
		Price:   result.Price,
		Retcode: result.Retcode,
		Comment: comment,
	})
	return res, nil
}

// Flatten closes whatever position remains open by submitting one market
// order on the opposite side at the fixed volume. Returns nil when the
// account is already flat.
func (e *Engine) Flatten(ctx context.Context) (*types.OrderResult, error) {
	e.tracker.RefreshPositionsAndOrders(ctx)
	positions := e.tracker.Snapshot().Positions
	if len(positions) == 0 {
		return nil, nil
	}

	side := positions[0].Side.Opposite()
	logger.Info(ctx, "Closing remaining position", "symbol", e.symbol, "side", string(side), "volume", e.volume)

	result, err := e.router.SendMarket(ctx, e.symbol, side, e.volume, e.deviation, closeComment)
	if err != nil {
		return nil, err
	}
	_ = tradelog.Append(tradelog.Entry{
		Symbol:  e.symbol,
		Side:    string(side),
		Kind:    string(types.OrderKindMarket),
		Volume:  e.volume,
		Price:   result.Price,
		Retcode: result.Retcode,
		Comment: closeComment,
	})
	return &result, nil
}

// decide maps position state and the confirmed signal point to an order side.
// Flat and closed below the lower band: enter long. Positioned and closed
// above the upper band: exit. Anything else: no action.
func decide(openPositions int, close, lower, upper float64) (types.Side, bool) {
	if openPositions == 0 {
		if close < lower {
			return types.SideBuy, true
		}
		return "", false
	}
	if close > upper {
		return types.SideSell, true
	}
	return "", false
}
