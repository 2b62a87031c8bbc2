// Package gatewaytest provides a configurable in-memory Gateway fake for unit
// tests.
package gatewaytest

import (
	"context"
	"sync"
	"time"

	"mt5-bands-bot/internal/interfaces"
	"mt5-bands-bot/internal/timeframe"
	"mt5-bands-bot/internal/types"
)

// Fake is a Gateway whose responses are set directly by the test. Zero value
// is usable: every call succeeds with empty data. Errors set on the Err*
// fields are returned by the matching method.
type Fake struct {
	mu sync.Mutex

	PositionsData []types.Position
	OrdersData    []types.Order
	HistOrders    []types.HistoryRecord
	HistDeals     []types.HistoryRecord
	Bars          []types.Bar
	Info          types.SymbolInfo
	Result        types.OrderResult

	ErrPositions error
	ErrOrders    error
	ErrHistory   error
	ErrBars      error
	ErrSelect    error
	ErrInfo      error
	ErrSubmit    error

	BarCalls    int
	SubmitCalls int
	Submitted   []types.OrderRequest
}

var _ interfaces.Gateway = (*Fake)(nil)

func (f *Fake) Initialize(ctx context.Context) error { return nil }
func (f *Fake) Shutdown(ctx context.Context)         {}

func (f *Fake) Positions(ctx context.Context) ([]types.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ErrPositions != nil {
		return nil, f.ErrPositions
	}
	return append([]types.Position(nil), f.PositionsData...), nil
}

func (f *Fake) Orders(ctx context.Context) ([]types.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ErrOrders != nil {
		return nil, f.ErrOrders
	}
	return append([]types.Order(nil), f.OrdersData...), nil
}

func (f *Fake) HistoryOrders(ctx context.Context, start, end time.Time) ([]types.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ErrHistory != nil {
		return nil, f.ErrHistory
	}
	return append([]types.HistoryRecord(nil), f.HistOrders...), nil
}

func (f *Fake) HistoryDeals(ctx context.Context, start, end time.Time) ([]types.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ErrHistory != nil {
		return nil, f.ErrHistory
	}
	return append([]types.HistoryRecord(nil), f.HistDeals...), nil
}

func (f *Fake) BarsByRange(ctx context.Context, symbol string, tf timeframe.Timeframe, start, end time.Time) ([]types.Bar, error) {
	return f.bars()
}

func (f *Fake) BarsByPosition(ctx context.Context, symbol string, tf timeframe.Timeframe, offset, count int) ([]types.Bar, error) {
	return f.bars()
}

func (f *Fake) bars() ([]types.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BarCalls++
	if f.ErrBars != nil {
		return nil, f.ErrBars
	}
	return append([]types.Bar(nil), f.Bars...), nil
}

func (f *Fake) SelectSymbol(ctx context.Context, symbol string, visible bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ErrSelect
}

func (f *Fake) SymbolInfo(ctx context.Context, symbol string) (types.SymbolInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ErrInfo != nil {
		return types.SymbolInfo{}, f.ErrInfo
	}
	return f.Info, nil
}

func (f *Fake) SubmitOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SubmitCalls++
	f.Submitted = append(f.Submitted, req)
	if f.ErrSubmit != nil {
		return types.OrderResult{}, f.ErrSubmit
	}
	return f.Result, nil
}

// BarCallCount returns the number of bar fetches under lock, for tests that
// poll while the worker runs.
func (f *Fake) BarCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.BarCalls
}

// SubmittedRequests returns a copy of all submitted requests under lock.
func (f *Fake) SubmittedRequests() []types.OrderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.OrderRequest(nil), f.Submitted...)
}

// SetPositions swaps the position list under lock, for tests that mutate
// venue state between refreshes.
func (f *Fake) SetPositions(positions []types.Position) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PositionsData = positions
}

// SetOrders swaps the pending order list under lock.
func (f *Fake) SetOrders(orders []types.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.OrdersData = orders
}
