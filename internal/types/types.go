package types

import (
	"fmt"
	"strings"
	"time"
)

// Bar is a single OHLC candle. Series are ordered by Ts, strictly increasing,
// immutable once fetched.
type Bar struct {
	Ts                     time.Time
	Open, High, Low, Close float64
	Volume                 float64
}

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(s)) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	}
	return "", fmt.Errorf("unknown side %q", s)
}

// Opposite returns the side that closes an exposure opened with s.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Position is a read-only copy of an open holding on the venue.
type Position struct {
	Ticket    int64
	Symbol    string
	Side      Side
	Volume    float64
	OpenPrice float64
	Magic     int64
	OpenedAt  time.Time
}

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "placed"
	OrderStatusPartial   OrderStatus = "partial"
	OrderStatusFilled    OrderStatus = "filled"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusExpired   OrderStatus = "expired"
)

// Order is a pending instruction resting on the venue's book.
type Order struct {
	Ticket int64
	Symbol string
	Side   Side
	Price  float64
	Volume float64
	Magic  int64
	Status OrderStatus
}

// HistoryRecord is a past order or deal returned by a [start, end) history query.
type HistoryRecord struct {
	Ticket int64
	Symbol string
	Side   Side
	Price  float64
	Volume float64
	Magic  int64
	Time   time.Time
}

// AccountSnapshot is the tracker's view of the account at one refresh.
type AccountSnapshot struct {
	Positions     []Position
	Orders        []Order
	HistoryOrders []HistoryRecord
	HistoryDeals  []HistoryRecord
}

// StepResult summarizes one strategy iteration.
type StepResult struct {
	Symbol  string
	Time    time.Time
	Close   float64
	Upper   float64
	Lower   float64
	Changed bool   // confirmed signal point moved since the previous iteration
	Action  string // "buy", "sell" or "" when no trade fired
	Orders  []OrderResult
}

// SymbolInfo is the venue's metadata for one symbol.
type SymbolInfo struct {
	Symbol  string
	Visible bool
	Bid     float64
	Ask     float64
	Digits  int
}
