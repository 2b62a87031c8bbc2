package bridge

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"mt5-bands-bot/internal/logger"
)

// quoteFreshness is how long a streamed quote may serve price lookups before
// callers fall back to a bridge round trip.
const quoteFreshness = 5 * time.Second

const reconnectDelay = 2 * time.Second

type quote struct {
	Bid, Ask float64
	At       time.Time
}

type quoteMessage struct {
	Type   string  `json:"type"`
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
	Time   int64   `json:"time"`
}

// quoteStream keeps a websocket connection to the bridge's tick feed and
// caches the most recent quote per symbol.
type quoteStream struct {
	url   string
	token string

	mu     sync.RWMutex
	quotes map[string]quote

	stopCh   chan struct{}
	stopOnce sync.Once
}

func newQuoteStream(url, token string) *quoteStream {
	return &quoteStream{
		url:    url,
		token:  token,
		quotes: make(map[string]quote),
		stopCh: make(chan struct{}),
	}
}

// start dials the feed and launches the read loop, which re-dials on read
// failure until stopped. The first dial failing is an error so callers can
// fall back to polled pricing.
func (qs *quoteStream) start(ctx context.Context) error {
	conn, err := qs.dial(ctx)
	if err != nil {
		return err
	}
	go qs.readLoop(ctx, conn)
	return nil
}

func (qs *quoteStream) stop() {
	qs.stopOnce.Do(func() { close(qs.stopCh) })
}

func (qs *quoteStream) latest(symbol string) (quote, bool) {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	q, ok := qs.quotes[symbol]
	if !ok || time.Since(q.At) > quoteFreshness {
		return quote{}, false
	}
	return q, true
}

func (qs *quoteStream) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if qs.token != "" {
		header.Set("Authorization", "Bearer "+qs.token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, qs.url, header)
	return conn, err
}

func (qs *quoteStream) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		select {
		case <-qs.stopCh:
			if conn != nil {
				_ = conn.Close()
			}
			return
		case <-ctx.Done():
			if conn != nil {
				_ = conn.Close()
			}
			return
		default:
		}

		if conn == nil {
			select {
			case <-qs.stopCh:
				return
			case <-ctx.Done():
				return
			case <-time.After(reconnectDelay):
			}
			var err error
			conn, err = qs.dial(ctx)
			if err != nil {
				logger.Warn(ctx, "Quote stream reconnect failed", "error", err)
				conn = nil
				continue
			}
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			conn = nil
			logger.Warn(ctx, "Quote stream read failed, reconnecting", "error", err)
			continue
		}

		var msg quoteMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "quote" {
			continue
		}

		qs.mu.Lock()
		qs.quotes[msg.Symbol] = quote{Bid: msg.Bid, Ask: msg.Ask, At: time.Now()}
		qs.mu.Unlock()
	}
}
