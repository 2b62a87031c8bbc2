// Package bridge is the venue adapter for an MT5-style terminal bridge: JSON
// over HTTP for account state, bars and order submission, with an optional
// websocket quote stream for live pricing.
package bridge

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"mt5-bands-bot/internal/interfaces"
	"mt5-bands-bot/internal/logger"
	"mt5-bands-bot/internal/timeframe"
	"mt5-bands-bot/internal/types"
)

type Params struct {
	BaseURL string
	WSURL   string // empty disables the quote stream
	Token   string
	Timeout time.Duration
}

type Bridge struct {
	p      Params
	rc     *resty.Client
	quotes *quoteStream
}

var _ interfaces.Gateway = (*Bridge)(nil)

func New(p Params) *Bridge {
	rc := resty.New().
		SetBaseURL(p.BaseURL).
		SetTimeout(p.Timeout).
		SetHeader("Accept", "application/json")
	if p.Token != "" {
		rc.SetAuthToken(p.Token)
	}

	b := &Bridge{p: p, rc: rc}
	if p.WSURL != "" {
		b.quotes = newQuoteStream(p.WSURL, p.Token)
	}
	return b
}

// Initialize opens the terminal connection on the bridge side and starts the
// quote stream. Failure tears down whatever came up.
func (b *Bridge) Initialize(ctx context.Context) error {
	var out struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	resp, err := b.rc.R().SetContext(ctx).SetResult(&out).Post("/initialize")
	if err != nil {
		return fmt.Errorf("bridge unreachable: %w", err)
	}
	if !resp.IsSuccess() || !out.OK {
		b.Shutdown(ctx)
		return fmt.Errorf("terminal initialization refused: status=%d error=%s", resp.StatusCode(), out.Error)
	}

	if b.quotes != nil {
		if err := b.quotes.start(ctx); err != nil {
			logger.Warn(ctx, "Quote stream unavailable, falling back to polled pricing", "error", err)
			b.quotes = nil
		}
	}
	return nil
}

func (b *Bridge) Shutdown(ctx context.Context) {
	if b.quotes != nil {
		b.quotes.stop()
	}
	_, _ = b.rc.R().SetContext(ctx).Post("/shutdown")
}

type positionDTO struct {
	Ticket    int64   `json:"ticket"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Volume    float64 `json:"volume"`
	PriceOpen float64 `json:"price_open"`
	Magic     int64   `json:"magic"`
	Time      int64   `json:"time"`
}

func (b *Bridge) Positions(ctx context.Context) ([]types.Position, error) {
	var dtos []positionDTO
	resp, err := b.rc.R().SetContext(ctx).SetResult(&dtos).Get("/positions")
	if err := checkResp(resp, err, "positions"); err != nil {
		return nil, err
	}
	out := make([]types.Position, 0, len(dtos))
	for _, d := range dtos {
		side, err := types.ParseSide(d.Side)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", d.Ticket, err)
		}
		out = append(out, types.Position{
			Ticket:    d.Ticket,
			Symbol:    d.Symbol,
			Side:      side,
			Volume:    d.Volume,
			OpenPrice: d.PriceOpen,
			Magic:     d.Magic,
			OpenedAt:  time.Unix(d.Time, 0).UTC(),
		})
	}
	return out, nil
}

type orderDTO struct {
	Ticket int64   `json:"ticket"`
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
	Magic  int64   `json:"magic"`
	Status string  `json:"status"`
}

func (b *Bridge) Orders(ctx context.Context) ([]types.Order, error) {
	var dtos []orderDTO
	resp, err := b.rc.R().SetContext(ctx).SetResult(&dtos).Get("/orders")
	if err := checkResp(resp, err, "orders"); err != nil {
		return nil, err
	}
	out := make([]types.Order, 0, len(dtos))
	for _, d := range dtos {
		side, err := types.ParseSide(d.Side)
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", d.Ticket, err)
		}
		out = append(out, types.Order{
			Ticket: d.Ticket,
			Symbol: d.Symbol,
			Side:   side,
			Price:  d.Price,
			Volume: d.Volume,
			Magic:  d.Magic,
			Status: types.OrderStatus(d.Status),
		})
	}
	return out, nil
}

type historyDTO struct {
	Ticket int64   `json:"ticket"`
	Symbol string  `json:"symbol"`
	Side   string  `json:"side"`
	Price  float64 `json:"price"`
	Volume float64 `json:"volume"`
	Magic  int64   `json:"magic"`
	Time   int64   `json:"time"`
}

func (b *Bridge) HistoryOrders(ctx context.Context, start, end time.Time) ([]types.HistoryRecord, error) {
	return b.history(ctx, "/history/orders", start, end)
}

func (b *Bridge) HistoryDeals(ctx context.Context, start, end time.Time) ([]types.HistoryRecord, error) {
	return b.history(ctx, "/history/deals", start, end)
}

func (b *Bridge) history(ctx context.Context, path string, start, end time.Time) ([]types.HistoryRecord, error) {
	var dtos []historyDTO
	resp, err := b.rc.R().SetContext(ctx).
		SetQueryParam("start", strconv.FormatInt(start.Unix(), 10)).
		SetQueryParam("end", strconv.FormatInt(end.Unix(), 10)).
		SetResult(&dtos).
		Get(path)
	if err := checkResp(resp, err, path); err != nil {
		return nil, err
	}
	out := make([]types.HistoryRecord, 0, len(dtos))
	for _, d := range dtos {
		side, _ := types.ParseSide(d.Side)
		out = append(out, types.HistoryRecord{
			Ticket: d.Ticket,
			Symbol: d.Symbol,
			Side:   side,
			Price:  d.Price,
			Volume: d.Volume,
			Magic:  d.Magic,
			Time:   time.Unix(d.Time, 0).UTC(),
		})
	}
	return out, nil
}

type barDTO struct {
	Time       int64   `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	TickVolume float64 `json:"tick_volume"`
}

func (b *Bridge) BarsByRange(ctx context.Context, symbol string, tf timeframe.Timeframe, start, end time.Time) ([]types.Bar, error) {
	var dtos []barDTO
	resp, err := b.rc.R().SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetQueryParam("timeframe", strconv.Itoa(tf.ID)).
		SetQueryParam("start", strconv.FormatInt(start.Unix(), 10)).
		SetQueryParam("end", strconv.FormatInt(end.Unix(), 10)).
		SetResult(&dtos).
		Get("/bars/range")
	if err := checkResp(resp, err, "bars by range"); err != nil {
		return nil, err
	}
	return toBars(dtos), nil
}

func (b *Bridge) BarsByPosition(ctx context.Context, symbol string, tf timeframe.Timeframe, offset, count int) ([]types.Bar, error) {
	var dtos []barDTO
	resp, err := b.rc.R().SetContext(ctx).
		SetQueryParam("symbol", symbol).
		SetQueryParam("timeframe", strconv.Itoa(tf.ID)).
		SetQueryParam("offset", strconv.Itoa(offset)).
		SetQueryParam("count", strconv.Itoa(count)).
		SetResult(&dtos).
		Get("/bars/position")
	if err := checkResp(resp, err, "bars by position"); err != nil {
		return nil, err
	}
	return toBars(dtos), nil
}

func toBars(dtos []barDTO) []types.Bar {
	out := make([]types.Bar, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, types.Bar{
			Ts:     time.Unix(d.Time, 0).UTC(),
			Open:   d.Open,
			High:   d.High,
			Low:    d.Low,
			Close:  d.Close,
			Volume: d.TickVolume,
		})
	}
	return out
}

func (b *Bridge) SelectSymbol(ctx context.Context, symbol string, visible bool) error {
	resp, err := b.rc.R().SetContext(ctx).
		SetBody(map[string]any{"visible": visible}).
		Post("/symbols/" + symbol + "/select")
	return checkResp(resp, err, "select symbol")
}

type symbolInfoDTO struct {
	Symbol  string  `json:"symbol"`
	Visible bool    `json:"visible"`
	Bid     float64 `json:"bid"`
	Ask     float64 `json:"ask"`
	Digits  int     `json:"digits"`
}

// SymbolInfo serves the streamed quote when one is fresh; a live subscription
// implies the symbol is selected on the terminal. Otherwise it falls back to
// a bridge round trip.
func (b *Bridge) SymbolInfo(ctx context.Context, symbol string) (types.SymbolInfo, error) {
	if b.quotes != nil {
		if q, ok := b.quotes.latest(symbol); ok {
			return types.SymbolInfo{Symbol: symbol, Visible: true, Bid: q.Bid, Ask: q.Ask}, nil
		}
	}

	var dto symbolInfoDTO
	resp, err := b.rc.R().SetContext(ctx).SetResult(&dto).Get("/symbols/" + symbol)
	if err := checkResp(resp, err, "symbol info"); err != nil {
		return types.SymbolInfo{}, err
	}
	return types.SymbolInfo{
		Symbol:  dto.Symbol,
		Visible: dto.Visible,
		Bid:     dto.Bid,
		Ask:     dto.Ask,
		Digits:  dto.Digits,
	}, nil
}

type orderResultDTO struct {
	Retcode int     `json:"retcode"`
	Deal    int64   `json:"deal"`
	Order   int64   `json:"order"`
	Price   float64 `json:"price"`
	Volume  float64 `json:"volume"`
	Bid     float64 `json:"bid"`
	Ask     float64 `json:"ask"`
	Comment string  `json:"comment"`
}

func (b *Bridge) SubmitOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error) {
	body := map[string]any{
		"kind":      string(req.Kind),
		"symbol":    req.Symbol,
		"side":      string(req.Side),
		"volume":    req.Volume,
		"price":     req.Price,
		"deviation": req.Deviation,
		"ticket":    req.Ticket,
		"magic":     req.Magic,
		"comment":   req.Comment,
		"client_id": req.ClientID,
	}

	var dto orderResultDTO
	resp, err := b.rc.R().SetContext(ctx).SetBody(body).SetResult(&dto).Post("/orders")
	if err := checkResp(resp, err, "submit order"); err != nil {
		return types.OrderResult{}, err
	}
	return types.OrderResult{
		Retcode: dto.Retcode,
		Deal:    dto.Deal,
		Order:   dto.Order,
		Price:   dto.Price,
		Volume:  dto.Volume,
		Bid:     dto.Bid,
		Ask:     dto.Ask,
		Comment: dto.Comment,
	}, nil
}

func checkResp(resp *resty.Response, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%s: bridge returned status %d: %s", op, resp.StatusCode(), resp.String())
	}
	return nil
}
