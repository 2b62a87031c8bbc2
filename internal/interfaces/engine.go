package interfaces

import (
	"context"
	"time"

	"mt5-bands-bot/internal/types"
)

// Tracker owns the in-memory account snapshot and its change detection.
type Tracker interface {
	RefreshPositionsAndOrders(ctx context.Context) bool
	RefreshHistory(ctx context.Context, start, end time.Time) bool
	Snapshot() types.AccountSnapshot
}

// Router validates and submits orders through the venue. Venue rejections are
// carried inside OrderResult; errors are reserved for local validation and
// transport failures.
type Router interface {
	SendMarket(ctx context.Context, symbol string, side types.Side, volume float64, deviation int, comment string) (types.OrderResult, error)
	SendLimit(ctx context.Context, symbol string, side types.Side, price, volume float64, comment string) (types.OrderResult, error)
	UpdateLimit(ctx context.Context, ticket int64, price float64) (types.OrderResult, error)
	CancelLimit(ctx context.Context, ticket int64) (types.OrderResult, error)
}

// Engine performs one strategy iteration. The supervisor drives it in a loop
// and calls Flatten once while draining.
type Engine interface {
	Step(ctx context.Context) (*types.StepResult, error)
	Flatten(ctx context.Context) (*types.OrderResult, error)
}
