package interfaces

import (
	"context"
	"time"

	"mt5-bands-bot/internal/timeframe"
	"mt5-bands-bot/internal/types"
)

// Gateway is the venue client boundary. The core consumes it; implementations
// live under internal/gateway.
type Gateway interface {
	// Initialize establishes the venue connection. Shutdown is safe to call
	// whether or not Initialize succeeded.
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context)

	Positions(ctx context.Context) ([]types.Position, error)
	Orders(ctx context.Context) ([]types.Order, error)
	HistoryOrders(ctx context.Context, start, end time.Time) ([]types.HistoryRecord, error)
	HistoryDeals(ctx context.Context, start, end time.Time) ([]types.HistoryRecord, error)

	BarsByRange(ctx context.Context, symbol string, tf timeframe.Timeframe, start, end time.Time) ([]types.Bar, error)
	BarsByPosition(ctx context.Context, symbol string, tf timeframe.Timeframe, offset, count int) ([]types.Bar, error)

	SelectSymbol(ctx context.Context, symbol string, visible bool) error
	SymbolInfo(ctx context.Context, symbol string) (types.SymbolInfo, error)

	SubmitOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error)
}
