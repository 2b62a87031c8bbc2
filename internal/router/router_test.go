package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mt5-bands-bot/internal/gateway/gatewaytest"
	"mt5-bands-bot/internal/logger"
	"mt5-bands-bot/internal/types"
)

func init() {
	_ = logger.InitWithConfig(logger.LogConfig{Level: "ERROR", Format: "text"})
}

func visibleGateway() *gatewaytest.Fake {
	return &gatewaytest.Fake{
		Info:   types.SymbolInfo{Symbol: "ETHUSD", Visible: true, Bid: 2500, Ask: 2500.25},
		Result: types.OrderResult{Retcode: types.RetcodeDone, Deal: 42, Price: 2500, Volume: 1},
	}
}

func TestSendMarketSubmitsAtBid(t *testing.T) {
	ctx := context.Background()
	gw := visibleGateway()
	r := New(gw, 7)

	res, err := r.SendMarket(ctx, "ETHUSD", types.SideBuy, 1, 0, "Open")
	require.NoError(t, err)
	assert.True(t, res.OK())

	require.Len(t, gw.Submitted, 1)
	req := gw.Submitted[0]
	assert.Equal(t, types.OrderKindMarket, req.Kind)
	assert.Equal(t, types.SideBuy, req.Side)
	assert.Equal(t, 2500.0, req.Price, "market orders price at the current bid")
	assert.Equal(t, 20, req.Deviation, "zero deviation falls back to the default")
	assert.Equal(t, int64(7), req.Magic)
	assert.Equal(t, "Open", req.Comment)
	assert.NotEmpty(t, req.ClientID)
}

func TestSendMarketExplicitDeviation(t *testing.T) {
	gw := visibleGateway()
	r := New(gw, 1)

	_, err := r.SendMarket(context.Background(), "ETHUSD", types.SideSell, 1, 35, "Close")
	require.NoError(t, err)
	require.Len(t, gw.Submitted, 1)
	assert.Equal(t, 35, gw.Submitted[0].Deviation)
}

func TestSendMarketInvalidSide(t *testing.T) {
	gw := visibleGateway()
	r := New(gw, 1)

	_, err := r.SendMarket(context.Background(), "ETHUSD", types.Side("short"), 1, 0, "")
	require.ErrorIs(t, err, ErrInvalidSide)
	assert.Zero(t, gw.SubmitCalls, "validation happens before any network call")
}

func TestSendMarketSymbolNotVisible(t *testing.T) {
	gw := visibleGateway()
	gw.Info.Visible = false
	r := New(gw, 1)

	_, err := r.SendMarket(context.Background(), "ETHUSD", types.SideBuy, 1, 0, "")
	require.ErrorIs(t, err, ErrSymbolUnavailable)
	assert.Zero(t, gw.SubmitCalls)
}

func TestSendMarketSelectFails(t *testing.T) {
	gw := visibleGateway()
	gw.ErrSelect = errors.New("unknown symbol")
	r := New(gw, 1)

	_, err := r.SendMarket(context.Background(), "NOPE", types.SideBuy, 1, 0, "")
	require.ErrorIs(t, err, ErrSymbolUnavailable)
}

func TestSendLimitUsesGivenPrice(t *testing.T) {
	gw := visibleGateway()
	r := New(gw, 1)

	_, err := r.SendLimit(context.Background(), "ETHUSD", types.SideBuy, 2400, 1, "rest")
	require.NoError(t, err)

	require.Len(t, gw.Submitted, 1)
	req := gw.Submitted[0]
	assert.Equal(t, types.OrderKindLimit, req.Kind)
	assert.Equal(t, 2400.0, req.Price, "no current-price lookup for limits")
}

func TestSendLimitInvalidSide(t *testing.T) {
	gw := visibleGateway()
	r := New(gw, 1)

	_, err := r.SendLimit(context.Background(), "ETHUSD", types.Side(""), 2400, 1, "")
	require.ErrorIs(t, err, ErrInvalidSide)
}

func TestUpdateLimitPassesRejectionThrough(t *testing.T) {
	gw := visibleGateway()
	gw.Result = types.OrderResult{Retcode: types.RetcodeInvalid, Comment: "order not found"}
	r := New(gw, 1)

	// No local existence check: the venue's rejection comes back as data.
	res, err := r.UpdateLimit(context.Background(), 12345, 2450)
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, types.RetcodeInvalid, res.Retcode)

	require.Len(t, gw.Submitted, 1)
	assert.Equal(t, types.OrderKindModify, gw.Submitted[0].Kind)
	assert.Equal(t, int64(12345), gw.Submitted[0].Ticket)
}

func TestCancelLimit(t *testing.T) {
	gw := visibleGateway()
	r := New(gw, 1)

	res, err := r.CancelLimit(context.Background(), 12345)
	require.NoError(t, err)
	assert.True(t, res.OK())

	require.Len(t, gw.Submitted, 1)
	assert.Equal(t, types.OrderKindCancel, gw.Submitted[0].Kind)
	assert.Equal(t, int64(12345), gw.Submitted[0].Ticket)
}
