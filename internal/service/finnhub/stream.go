package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	applogger "IntelPull/pkg/logger"

	"github.com/gorilla/websocket"
)

type lastTrade struct {
	price float64
	at    time.Time
}

// Stream keeps a board of last trade prices for the watch-list, fed by the
// Finnhub WebSocket. It is an optional enrichment: when the stream is down
// the REST quotes stand on their own.
type Stream struct {
	apiKey         string
	websocketURL   string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *applogger.Logger

	mu    sync.RWMutex
	board map[string]lastTrade

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a live trade stream over the given symbols.
func NewStream(apiKey, websocketURL string, symbols []string, reconnectDelay, pingInterval time.Duration, l *applogger.Logger) *Stream {
	return &Stream{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         l,
		board:          make(map[string]lastTrade),
	}
}

// LastPrice returns the freshest streamed price for symbol, if any.
func (s *Stream) LastPrice(symbol string) (float64, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.board[symbol]
	if !ok {
		return 0, time.Time{}, false
	}
	return t.price, t.at, true
}

// Start connects, subscribes and runs the read loop until ctx is done,
// reconnecting with a fixed delay on read failures.
func (s *Stream) Start(ctx context.Context) {
	go s.pingLoop(ctx)
	go func() {
		for {
			if ctx.Err() != nil {
				return
			}
			if err := s.connect(ctx); err != nil {
				if s.logger != nil {
					s.logger.Warn("finnhub stream connect failed", applogger.Error(err))
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(s.reconnectDelay):
					continue
				}
			}
			s.readLoop(ctx)
			_ = s.Close()
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.reconnectDelay):
			}
		}
	}()
}

func (s *Stream) connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("finnhub connect: %w", err)
	}
	s.conn = conn
	s.connected = true

	for _, sym := range s.symbols {
		msg := map[string]string{"type": "subscribe", "symbol": sym}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}
	if s.logger != nil {
		s.logger.Info("finnhub stream connected", applogger.Strings("symbols", s.symbols))
	}
	return nil
}

type wsTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

func (s *Stream) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if s.conn == nil {
			return
		}
		_, b, err := s.conn.ReadMessage()
		if err != nil {
			if s.logger != nil && ctx.Err() == nil {
				s.logger.Warn("finnhub stream read failed", applogger.Error(err))
			}
			return
		}
		var m wsMessage
		if err := json.Unmarshal(b, &m); err != nil {
			// ignore non-trade frames
			continue
		}
		if m.Type != "trade" {
			continue
		}
		s.mu.Lock()
		for _, d := range m.Data {
			s.board[d.S] = lastTrade{price: d.P, at: time.Unix(d.T/1000, 0).UTC()}
		}
		s.mu.Unlock()
	}
}

func (s *Stream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.conn != nil && s.connected {
				_ = s.conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool { return s.connected }
