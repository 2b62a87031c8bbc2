// Package gatewayobs wraps a Gateway with logging and tracing middleware.
package gatewayobs

import (
	"context"
	"time"

	"mt5-bands-bot/internal/interfaces"
	"mt5-bands-bot/internal/logger"
	"mt5-bands-bot/internal/timeframe"
	"mt5-bands-bot/internal/trace"
	"mt5-bands-bot/internal/types"
)

type observableGateway struct {
	gw interfaces.Gateway
}

var _ interfaces.Gateway = (*observableGateway)(nil)

func Wrap(gw interfaces.Gateway) interfaces.Gateway {
	return &observableGateway{gw: gw}
}

func (og *observableGateway) Initialize(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "gateway.Initialize")
	defer span.End()

	if err := og.gw.Initialize(ctx); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Gateway initialization failed", err)
		return err
	}
	logger.InfoSkip(ctx, 1, "Gateway initialized")
	return nil
}

func (og *observableGateway) Shutdown(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "gateway.Shutdown")
	defer span.End()

	og.gw.Shutdown(ctx)
	logger.InfoSkip(ctx, 1, "Gateway shut down")
}

func (og *observableGateway) Positions(ctx context.Context) ([]types.Position, error) {
	ctx, span := trace.StartSpan(ctx, "gateway.Positions")
	defer span.End()

	positions, err := og.gw.Positions(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch positions", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Positions fetched", "count", len(positions))
	return positions, nil
}

func (og *observableGateway) Orders(ctx context.Context) ([]types.Order, error) {
	ctx, span := trace.StartSpan(ctx, "gateway.Orders")
	defer span.End()

	orders, err := og.gw.Orders(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch orders", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Orders fetched", "count", len(orders))
	return orders, nil
}

func (og *observableGateway) HistoryOrders(ctx context.Context, start, end time.Time) ([]types.HistoryRecord, error) {
	ctx, span := trace.StartSpan(ctx, "gateway.HistoryOrders")
	defer span.End()

	records, err := og.gw.HistoryOrders(ctx, start, end)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch history orders", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "History orders fetched", "count", len(records))
	return records, nil
}

func (og *observableGateway) HistoryDeals(ctx context.Context, start, end time.Time) ([]types.HistoryRecord, error) {
	ctx, span := trace.StartSpan(ctx, "gateway.HistoryDeals")
	defer span.End()

	records, err := og.gw.HistoryDeals(ctx, start, end)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch history deals", err)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "History deals fetched", "count", len(records))
	return records, nil
}

func (og *observableGateway) BarsByRange(ctx context.Context, symbol string, tf timeframe.Timeframe, start, end time.Time) ([]types.Bar, error) {
	ctx, span := trace.StartSpan(ctx, "gateway.BarsByRange")
	defer span.End()

	bars, err := og.gw.BarsByRange(ctx, symbol, tf, start, end)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch bars by range", err, "symbol", symbol, "timeframe", tf.Code)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Bars fetched", "symbol", symbol, "timeframe", tf.Code, "count", len(bars))
	return bars, nil
}

func (og *observableGateway) BarsByPosition(ctx context.Context, symbol string, tf timeframe.Timeframe, offset, count int) ([]types.Bar, error) {
	ctx, span := trace.StartSpan(ctx, "gateway.BarsByPosition")
	defer span.End()

	bars, err := og.gw.BarsByPosition(ctx, symbol, tf, offset, count)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch bars by position", err, "symbol", symbol, "timeframe", tf.Code)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Bars fetched", "symbol", symbol, "timeframe", tf.Code, "count", len(bars))
	return bars, nil
}

func (og *observableGateway) SelectSymbol(ctx context.Context, symbol string, visible bool) error {
	ctx, span := trace.StartSpan(ctx, "gateway.SelectSymbol")
	defer span.End()

	if err := og.gw.SelectSymbol(ctx, symbol, visible); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to select symbol", err, "symbol", symbol)
		return err
	}
	return nil
}

func (og *observableGateway) SymbolInfo(ctx context.Context, symbol string) (types.SymbolInfo, error) {
	ctx, span := trace.StartSpan(ctx, "gateway.SymbolInfo")
	defer span.End()

	info, err := og.gw.SymbolInfo(ctx, symbol)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch symbol info", err, "symbol", symbol)
		return types.SymbolInfo{}, err
	}
	return info, nil
}

func (og *observableGateway) SubmitOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error) {
	ctx, span := trace.StartSpan(ctx, "gateway.SubmitOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Submitting order",
		"kind", string(req.Kind),
		"symbol", req.Symbol,
		"side", string(req.Side),
		"volume", req.Volume,
		"ticket", req.Ticket,
	)

	result, err := og.gw.SubmitOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Order submission failed", err,
			"kind", string(req.Kind),
			"symbol", req.Symbol,
		)
		return types.OrderResult{}, err
	}

	logger.InfoSkip(ctx, 1, "Order result received",
		"retcode", result.Retcode,
		"deal", result.Deal,
		"order", result.Order,
		"price", result.Price,
		"ok", result.OK(),
	)
	return result, nil
}
