package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mt5-bands-bot/internal/timeframe"
	"mt5-bands-bot/internal/types"
)

func m1(t *testing.T) timeframe.Timeframe {
	t.Helper()
	tf, err := timeframe.Lookup("M1")
	require.NoError(t, err)
	return tf
}

func TestBarsByPosition(t *testing.T) {
	s := New()
	bars, err := s.BarsByPosition(context.Background(), "ETHUSD", m1(t), 0, 36)
	require.NoError(t, err)
	require.Len(t, bars, 36)

	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i].Ts.After(bars[i-1].Ts), "timestamps strictly increasing")
		assert.Equal(t, time.Minute, bars[i].Ts.Sub(bars[i-1].Ts))
	}
	for _, b := range bars {
		assert.GreaterOrEqual(t, b.High, b.Close)
		assert.LessOrEqual(t, b.Low, b.Close)
	}
}

func TestMarketOrderOpensThenCloses(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Initialize(ctx))

	res, err := s.SubmitOrder(ctx, types.OrderRequest{
		Kind: types.OrderKindMarket, Symbol: "ETHUSD", Side: types.SideBuy, Volume: 1, Magic: 7,
	})
	require.NoError(t, err)
	assert.True(t, res.OK())

	positions, err := s.Positions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, types.SideBuy, positions[0].Side)
	assert.Equal(t, int64(7), positions[0].Magic)

	// the opposite-side market order closes instead of opening a second one
	res, err = s.SubmitOrder(ctx, types.OrderRequest{
		Kind: types.OrderKindMarket, Symbol: "ETHUSD", Side: types.SideSell, Volume: 1, Magic: 7,
	})
	require.NoError(t, err)
	assert.True(t, res.OK())

	positions, err = s.Positions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)

	deals, err := s.HistoryDeals(ctx, time.Time{}, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, deals, 2)
}

func TestLimitOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	res, err := s.SubmitOrder(ctx, types.OrderRequest{
		Kind: types.OrderKindLimit, Symbol: "ETHUSD", Side: types.SideBuy, Price: 900, Volume: 1,
	})
	require.NoError(t, err)
	require.True(t, res.OK())
	ticket := res.Order

	orders, err := s.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 900.0, orders[0].Price)

	res, err = s.SubmitOrder(ctx, types.OrderRequest{Kind: types.OrderKindModify, Ticket: ticket, Price: 910})
	require.NoError(t, err)
	assert.True(t, res.OK())

	orders, _ = s.Orders(ctx)
	assert.Equal(t, 910.0, orders[0].Price)

	// same price again: venue reports no changes
	res, err = s.SubmitOrder(ctx, types.OrderRequest{Kind: types.OrderKindModify, Ticket: ticket, Price: 910})
	require.NoError(t, err)
	assert.Equal(t, types.RetcodeNoChanges, res.Retcode)

	res, err = s.SubmitOrder(ctx, types.OrderRequest{Kind: types.OrderKindCancel, Ticket: ticket})
	require.NoError(t, err)
	assert.True(t, res.OK())

	orders, _ = s.Orders(ctx)
	assert.Empty(t, orders)
}

func TestModifyUnknownOrderRejected(t *testing.T) {
	s := New()
	res, err := s.SubmitOrder(context.Background(), types.OrderRequest{Kind: types.OrderKindModify, Ticket: 999, Price: 1})
	require.NoError(t, err, "rejection is data, not an error")
	assert.Equal(t, types.RetcodeInvalid, res.Retcode)
}

func TestSymbolInfoVisible(t *testing.T) {
	s := New()
	info, err := s.SymbolInfo(context.Background(), "ETHUSD")
	require.NoError(t, err)
	assert.True(t, info.Visible)
	assert.Greater(t, info.Ask, info.Bid)
}
