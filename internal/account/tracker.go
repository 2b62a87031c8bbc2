// Package account tracks the local view of the trading account: open
// positions, pending orders and order/deal history, refreshed from the venue
// and compared against the previous snapshot for change detection.
package account

import (
	"context"
	"slices"
	"sync"
	"time"

	"mt5-bands-bot/internal/interfaces"
	"mt5-bands-bot/internal/logger"
	"mt5-bands-bot/internal/types"
)

// Tracker owns the account snapshot. The strategy worker is the only writer;
// the control surface may read Snapshot concurrently.
type Tracker struct {
	gw interfaces.Gateway

	mu   sync.RWMutex
	snap types.AccountSnapshot
}

var _ interfaces.Tracker = (*Tracker)(nil)

func New(gw interfaces.Gateway) *Tracker {
	return &Tracker{gw: gw}
}

// Prime performs the startup refresh: current positions and orders plus the
// full history baseline from the epoch to now. Venue failures are tolerated
// and leave the corresponding collections empty.
func (t *Tracker) Prime(ctx context.Context) {
	logger.Info(ctx, "Updating balance and positions")

	positions := t.fetchPositions(ctx)
	orders := t.fetchOrders(ctx)
	hOrders, hDeals := t.fetchHistory(ctx, time.Time{}, time.Now())

	t.mu.Lock()
	t.snap = types.AccountSnapshot{
		Positions:     positions,
		Orders:        orders,
		HistoryOrders: hOrders,
		HistoryDeals:  hDeals,
	}
	t.mu.Unlock()

	logger.Info(ctx, "Ready to trade",
		"positions", len(positions),
		"orders", len(orders),
		"history_orders", len(hOrders),
		"history_deals", len(hDeals),
	)
}

// RefreshPositionsAndOrders fetches current positions and pending orders,
// replaces the stored snapshot unconditionally and reports whether either
// collection differed from the previous one by value.
func (t *Tracker) RefreshPositionsAndOrders(ctx context.Context) bool {
	positions := t.fetchPositions(ctx)
	orders := t.fetchOrders(ctx)

	t.mu.Lock()
	defer t.mu.Unlock()

	changed := !slices.Equal(t.snap.Positions, positions) || !slices.Equal(t.snap.Orders, orders)
	t.snap.Positions = positions
	t.snap.Orders = orders
	return changed
}

// RefreshHistory fetches history orders and deals in [start, end] and reports
// whether either differs from the stored baseline. A zero end means "now at
// call time", so two calls moments apart may not agree. The baseline captured
// by Prime is never replaced; change detection is always against it.
func (t *Tracker) RefreshHistory(ctx context.Context, start, end time.Time) bool {
	if end.IsZero() {
		end = time.Now()
	}
	hOrders, hDeals := t.fetchHistory(ctx, start, end)

	t.mu.RLock()
	defer t.mu.RUnlock()

	return !slices.Equal(t.snap.HistoryOrders, hOrders) || !slices.Equal(t.snap.HistoryDeals, hDeals)
}

// Snapshot returns a copy of the current account snapshot.
func (t *Tracker) Snapshot() types.AccountSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return types.AccountSnapshot{
		Positions:     slices.Clone(t.snap.Positions),
		Orders:        slices.Clone(t.snap.Orders),
		HistoryOrders: slices.Clone(t.snap.HistoryOrders),
		HistoryDeals:  slices.Clone(t.snap.HistoryDeals),
	}
}

// Venue hiccups during a refresh must never abort the caller; the fetch
// helpers log and fall back to empty collections.

func (t *Tracker) fetchPositions(ctx context.Context) []types.Position {
	positions, err := t.gw.Positions(ctx)
	if err != nil {
		logger.Warn(ctx, "Position fetch failed, treating as empty", "error", err)
		return []types.Position{}
	}
	if positions == nil {
		positions = []types.Position{}
	}
	return positions
}

func (t *Tracker) fetchOrders(ctx context.Context) []types.Order {
	orders, err := t.gw.Orders(ctx)
	if err != nil {
		logger.Warn(ctx, "Order fetch failed, treating as empty", "error", err)
		return []types.Order{}
	}
	if orders == nil {
		orders = []types.Order{}
	}
	return orders
}

func (t *Tracker) fetchHistory(ctx context.Context, start, end time.Time) ([]types.HistoryRecord, []types.HistoryRecord) {
	hOrders, err := t.gw.HistoryOrders(ctx, start, end)
	if err != nil {
		logger.Warn(ctx, "History order fetch failed, treating as empty", "error", err)
		hOrders = nil
	}
	hDeals, err := t.gw.HistoryDeals(ctx, start, end)
	if err != nil {
		logger.Warn(ctx, "History deal fetch failed, treating as empty", "error", err)
		hDeals = nil
	}
	if hOrders == nil {
		hOrders = []types.HistoryRecord{}
	}
	if hDeals == nil {
		hDeals = []types.HistoryRecord{}
	}
	return hOrders, hDeals
}
