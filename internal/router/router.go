// Package router validates and submits orders through the venue gateway.
// Local validation failures come back as errors; the venue's own verdict on a
// submitted request is carried inside the OrderResult untouched.
package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"mt5-bands-bot/internal/interfaces"
	"mt5-bands-bot/internal/logger"
	"mt5-bands-bot/internal/types"
)

var (
	// ErrSymbolUnavailable means the symbol could not be selected or is not
	// visible/tradable on the venue.
	ErrSymbolUnavailable = errors.New("symbol unavailable")
	// ErrInvalidSide means the side is neither buy nor sell. Checked before
	// any network call.
	ErrInvalidSide = errors.New("invalid side")
)

const defaultDeviation = 20

type Router struct {
	gw    interfaces.Gateway
	magic int64
}

var _ interfaces.Router = (*Router)(nil)

func New(gw interfaces.Gateway, magic int64) *Router {
	return &Router{gw: gw, magic: magic}
}

// SendMarket submits an immediate-fill order at the current bid with the given
// deviation tolerance. A deviation of 0 falls back to the default of 20.
func (r *Router) SendMarket(ctx context.Context, symbol string, side types.Side, volume float64, deviation int, comment string) (types.OrderResult, error) {
	if side != types.SideBuy && side != types.SideSell {
		return types.OrderResult{}, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}
	if deviation == 0 {
		deviation = defaultDeviation
	}

	info, err := r.selectSymbol(ctx, symbol)
	if err != nil {
		return types.OrderResult{}, err
	}

	req := types.OrderRequest{
		Kind:      types.OrderKindMarket,
		Symbol:    symbol,
		Side:      side,
		Volume:    volume,
		Price:     info.Bid,
		Deviation: deviation,
		Magic:     r.magic,
		Comment:   comment,
		ClientID:  uuid.NewString(),
	}

	logger.Trade(ctx, symbol, string(side), volume, 0, comment, "kind", "market", "price", info.Bid)
	return r.gw.SubmitOrder(ctx, req)
}

// SendLimit submits a resting order at the given price. No current-price
// lookup is performed.
func (r *Router) SendLimit(ctx context.Context, symbol string, side types.Side, price, volume float64, comment string) (types.OrderResult, error) {
	if side != types.SideBuy && side != types.SideSell {
		return types.OrderResult{}, fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}

	if _, err := r.selectSymbol(ctx, symbol); err != nil {
		return types.OrderResult{}, err
	}

	req := types.OrderRequest{
		Kind:     types.OrderKindLimit,
		Symbol:   symbol,
		Side:     side,
		Volume:   volume,
		Price:    price,
		Magic:    r.magic,
		Comment:  comment,
		ClientID: uuid.NewString(),
	}

	logger.Trade(ctx, symbol, string(side), volume, 0, comment, "kind", "limit", "price", price)
	return r.gw.SubmitOrder(ctx, req)
}

// UpdateLimit modifies the price of an existing pending order. The order is
// not verified locally first; a venue rejection (already filled, already
// cancelled) surfaces in the result.
func (r *Router) UpdateLimit(ctx context.Context, ticket int64, price float64) (types.OrderResult, error) {
	req := types.OrderRequest{
		Kind:     types.OrderKindModify,
		Ticket:   ticket,
		Price:    price,
		ClientID: uuid.NewString(),
	}
	return r.gw.SubmitOrder(ctx, req)
}

// CancelLimit removes an existing pending order, with the same
// non-verification behavior as UpdateLimit.
func (r *Router) CancelLimit(ctx context.Context, ticket int64) (types.OrderResult, error) {
	req := types.OrderRequest{
		Kind:     types.OrderKindCancel,
		Ticket:   ticket,
		ClientID: uuid.NewString(),
	}
	return r.gw.SubmitOrder(ctx, req)
}

func (r *Router) selectSymbol(ctx context.Context, symbol string) (types.SymbolInfo, error) {
	if err := r.gw.SelectSymbol(ctx, symbol, true); err != nil {
		return types.SymbolInfo{}, fmt.Errorf("%w: %s: %v", ErrSymbolUnavailable, symbol, err)
	}
	info, err := r.gw.SymbolInfo(ctx, symbol)
	if err != nil {
		return types.SymbolInfo{}, fmt.Errorf("%w: %s: %v", ErrSymbolUnavailable, symbol, err)
	}
	if !info.Visible {
		return types.SymbolInfo{}, fmt.Errorf("%w: %s not visible", ErrSymbolUnavailable, symbol)
	}
	return info, nil
}
