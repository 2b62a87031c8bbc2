// Package sim is an in-memory venue for DRY_RUN mode: synthetic bar series,
// simulated fills and a local position/order book, so the full trading loop
// runs end-to-end without a terminal connection.
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"mt5-bands-bot/internal/interfaces"
	"mt5-bands-bot/internal/timeframe"
	"mt5-bands-bot/internal/types"
)

type Sim struct {
	mu          sync.Mutex
	rng         *rand.Rand
	nextTicket  int64
	base        map[string]float64
	positions   []types.Position
	orders      []types.Order
	histOrders  []types.HistoryRecord
	histDeals   []types.HistoryRecord
	initialized bool
}

var _ interfaces.Gateway = (*Sim)(nil)

func New() *Sim {
	return &Sim{
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		nextTicket: 1000,
		base:       make(map[string]float64),
	}
}

func (s *Sim) Initialize(ctx context.Context) error {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
	return nil
}

func (s *Sim) Shutdown(ctx context.Context) {
	s.mu.Lock()
	s.initialized = false
	s.mu.Unlock()
}

func (s *Sim) Positions(ctx context.Context) ([]types.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Position, len(s.positions))
	copy(out, s.positions)
	return out, nil
}

func (s *Sim) Orders(ctx context.Context) ([]types.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Order, len(s.orders))
	copy(out, s.orders)
	return out, nil
}

func (s *Sim) HistoryOrders(ctx context.Context, start, end time.Time) ([]types.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterRange(s.histOrders, start, end), nil
}

func (s *Sim) HistoryDeals(ctx context.Context, start, end time.Time) ([]types.HistoryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterRange(s.histDeals, start, end), nil
}

func filterRange(records []types.HistoryRecord, start, end time.Time) []types.HistoryRecord {
	out := make([]types.HistoryRecord, 0, len(records))
	for _, r := range records {
		if r.Time.Before(start) || r.Time.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *Sim) BarsByRange(ctx context.Context, symbol string, tf timeframe.Timeframe, start, end time.Time) ([]types.Bar, error) {
	count := int(end.Sub(start)/tf.Duration()) + 1
	if count <= 0 {
		return []types.Bar{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generateBars(symbol, tf, start, count), nil
}

func (s *Sim) BarsByPosition(ctx context.Context, symbol string, tf timeframe.Timeframe, offset, count int) ([]types.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	end := time.Now().Truncate(tf.Duration()).Add(-time.Duration(offset) * tf.Duration())
	start := end.Add(-time.Duration(count-1) * tf.Duration())
	return s.generateBars(symbol, tf, start, count), nil
}

// generateBars produces a random walk around the symbol's base price, oldest
// bar first. Caller holds the lock.
func (s *Sim) generateBars(symbol string, tf timeframe.Timeframe, start time.Time, count int) []types.Bar {
	base := s.basePrice(symbol)
	bars := make([]types.Bar, 0, count)
	price := base
	for i := 0; i < count; i++ {
		c := price + (s.rng.Float64()-0.5)*base*0.002
		h := c + s.rng.Float64()*base*0.001
		l := c - s.rng.Float64()*base*0.001
		bars = append(bars, types.Bar{
			Ts:     start.Add(time.Duration(i) * tf.Duration()),
			Open:   price,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: s.rng.Float64() * 1000,
		})
		price = c
	}
	s.base[symbol] = price
	return bars
}

func (s *Sim) basePrice(symbol string) float64 {
	if b, ok := s.base[symbol]; ok {
		return b
	}
	b := 1000 + s.rng.Float64()*100
	s.base[symbol] = b
	return b
}

func (s *Sim) SelectSymbol(ctx context.Context, symbol string, visible bool) error {
	return nil
}

func (s *Sim) SymbolInfo(ctx context.Context, symbol string) (types.SymbolInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bid := s.basePrice(symbol)
	return types.SymbolInfo{Symbol: symbol, Visible: true, Bid: bid, Ask: bid + bid*0.0001, Digits: 2}, nil
}

func (s *Sim) SubmitOrder(ctx context.Context, req types.OrderRequest) (types.OrderResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch req.Kind {
	case types.OrderKindMarket:
		return s.fillMarket(req), nil
	case types.OrderKindLimit:
		return s.restLimit(req), nil
	case types.OrderKindModify:
		return s.modifyLimit(req), nil
	case types.OrderKindCancel:
		return s.cancelLimit(req), nil
	}
	return types.OrderResult{Retcode: types.RetcodeInvalid, Comment: "unknown request kind"}, nil
}

// fillMarket closes an opposite-side position on the same symbol if one is
// open, otherwise opens a new one.
func (s *Sim) fillMarket(req types.OrderRequest) types.OrderResult {
	price := s.basePrice(req.Symbol)
	deal := s.ticket()

	for i, p := range s.positions {
		if p.Symbol == req.Symbol && p.Side == req.Side.Opposite() {
			s.positions = append(s.positions[:i], s.positions[i+1:]...)
			s.histDeals = append(s.histDeals, types.HistoryRecord{
				Ticket: deal, Symbol: req.Symbol, Side: req.Side,
				Price: price, Volume: req.Volume, Magic: req.Magic, Time: time.Now(),
			})
			return types.OrderResult{Retcode: types.RetcodeDone, Deal: deal, Price: price, Volume: req.Volume, Bid: price, Comment: "closed"}
		}
	}

	s.positions = append(s.positions, types.Position{
		Ticket: deal, Symbol: req.Symbol, Side: req.Side,
		Volume: req.Volume, OpenPrice: price, Magic: req.Magic, OpenedAt: time.Now(),
	})
	s.histDeals = append(s.histDeals, types.HistoryRecord{
		Ticket: deal, Symbol: req.Symbol, Side: req.Side,
		Price: price, Volume: req.Volume, Magic: req.Magic, Time: time.Now(),
	})
	return types.OrderResult{Retcode: types.RetcodeDone, Deal: deal, Price: price, Volume: req.Volume, Bid: price, Comment: "opened"}
}

func (s *Sim) restLimit(req types.OrderRequest) types.OrderResult {
	ticket := s.ticket()
	s.orders = append(s.orders, types.Order{
		Ticket: ticket, Symbol: req.Symbol, Side: req.Side,
		Price: req.Price, Volume: req.Volume, Magic: req.Magic,
		Status: types.OrderStatusPlaced,
	})
	s.histOrders = append(s.histOrders, types.HistoryRecord{
		Ticket: ticket, Symbol: req.Symbol, Side: req.Side,
		Price: req.Price, Volume: req.Volume, Magic: req.Magic, Time: time.Now(),
	})
	return types.OrderResult{Retcode: types.RetcodeDone, Order: ticket, Price: req.Price, Volume: req.Volume}
}

func (s *Sim) modifyLimit(req types.OrderRequest) types.OrderResult {
	for i, o := range s.orders {
		if o.Ticket != req.Ticket {
			continue
		}
		if o.Price == req.Price {
			return types.OrderResult{Retcode: types.RetcodeNoChanges, Order: o.Ticket, Price: o.Price}
		}
		s.orders[i].Price = req.Price
		return types.OrderResult{Retcode: types.RetcodeDone, Order: o.Ticket, Price: req.Price}
	}
	return types.OrderResult{Retcode: types.RetcodeInvalid, Comment: "order not found"}
}

func (s *Sim) cancelLimit(req types.OrderRequest) types.OrderResult {
	for i, o := range s.orders {
		if o.Ticket != req.Ticket {
			continue
		}
		s.orders = append(s.orders[:i], s.orders[i+1:]...)
		return types.OrderResult{Retcode: types.RetcodeDone, Order: o.Ticket}
	}
	return types.OrderResult{Retcode: types.RetcodeInvalid, Comment: "order not found"}
}

func (s *Sim) ticket() int64 {
	s.nextTicket++
	return s.nextTicket
}
