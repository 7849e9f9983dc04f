// Package binance implements the tick source adapter over the Binance
// futures trade WebSocket streams, one connection per symbol.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"PairPulse/internal/domain/models"
	drepo "PairPulse/internal/domain/repository"
	xlogger "PairPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Conn is the minimal WebSocket surface the adapter reads from.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Dialer opens a Conn for a stream URL. Swappable in tests.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

type wsDialer struct{}

func (wsDialer) Dial(ctx context.Context, url string) (Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("binance dial %s: %w", url, err)
	}
	return conn, nil
}

// Client implements a MarketStream backed by Binance futures trade streams.
// Each watched symbol gets its own connection loop with bounded exponential
// backoff; a reconnect resumes streaming without replaying missed ticks.
type Client struct {
	baseURL      string
	backoffBase  time.Duration
	backoffCap   time.Duration
	channelDepth int

	dialer  Dialer
	logger  *xlogger.Logger
	metrics drepo.Metrics

	mu     sync.Mutex
	states map[string]drepo.StreamState
	conns  map[string]Conn
	lastTs map[string]time.Time
	closed bool
}

// Option configures the Client.
type Option func(*Client)

// WithDialer replaces the WebSocket dialer.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dialer = d }
}

// WithBackoff sets the reconnect backoff base and cap.
func WithBackoff(base, cap time.Duration) Option {
	return func(c *Client) {
		if base > 0 {
			c.backoffBase = base
		}
		if cap > 0 {
			c.backoffCap = cap
		}
	}
}

// WithChannelDepth sets the per-symbol outbound channel capacity.
func WithChannelDepth(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.channelDepth = n
		}
	}
}

// New creates a Binance MarketStream adapter.
func New(baseURL string, logger *xlogger.Logger, metrics drepo.Metrics, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		backoffBase:  time.Second,
		backoffCap:   30 * time.Second,
		channelDepth: 1024,
		dialer:       wsDialer{},
		logger:       logger,
		metrics:      metrics,
		states:       make(map[string]drepo.StreamState),
		conns:        make(map[string]Conn),
		lastTs:       make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stream starts the managed connection loop for symbol and returns the tick
// channel. The channel closes when ctx is cancelled or the client is closed.
func (c *Client) Stream(ctx context.Context, symbol string) <-chan *models.Tick {
	symbol = strings.ToLower(symbol)
	out := make(chan *models.Tick, c.channelDepth)
	c.setState(symbol, drepo.StateDisconnected)
	go c.run(ctx, symbol, out)
	return out
}

// State reports the connection state for symbol.
func (c *Client) State(symbol string) drepo.StreamState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.states[strings.ToLower(symbol)]; ok {
		return s
	}
	return drepo.StateDisconnected
}

// Close tears down every open connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for sym, conn := range c.conns {
		_ = conn.Close()
		delete(c.conns, sym)
	}
	return nil
}

func (c *Client) run(ctx context.Context, symbol string, out chan<- *models.Tick) {
	defer close(out)
	url := fmt.Sprintf("%s/%s@trade", c.baseURL, symbol)
	backoff := c.backoffBase

	for {
		if ctx.Err() != nil || c.isClosed() {
			c.setState(symbol, drepo.StateDisconnected)
			return
		}

		c.setState(symbol, drepo.StateConnecting)
		conn, err := c.dialer.Dial(ctx, url)
		if err != nil {
			c.metrics.RecordError("stream_connect")
			c.logger.Warn("stream connect failed",
				xlogger.String("symbol", symbol), xlogger.Error(err))
			c.setState(symbol, drepo.StateDisconnected)
			if !c.sleep(ctx, backoff) {
				return
			}
			backoff = c.nextBackoff(backoff)
			continue
		}

		c.trackConn(symbol, conn)
		c.setState(symbol, drepo.StateStreaming)
		c.logger.Info("stream connected", xlogger.String("symbol", symbol))
		backoff = c.backoffBase

		if err := c.readLoop(ctx, symbol, conn, out); err != nil {
			c.metrics.RecordError("stream_read")
			c.metrics.RecordReconnect(symbol)
			c.logger.Warn("stream disconnected",
				xlogger.String("symbol", symbol), xlogger.Error(err))
		}
		c.untrackConn(symbol, conn)
		c.setState(symbol, drepo.StateDisconnected)

		if ctx.Err() != nil || c.isClosed() {
			return
		}
		if !c.sleep(ctx, backoff) {
			return
		}
		backoff = c.nextBackoff(backoff)
	}
}

func (c *Client) readLoop(ctx context.Context, symbol string, conn Conn, out chan<- *models.Tick) error {
	defer conn.Close()
	for {
		if ctx.Err() != nil || c.isClosed() {
			return nil
		}
		_, b, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		tick, ok := c.parse(symbol, b)
		if !ok {
			continue
		}
		select {
		case out <- tick:
		default:
			// downstream full; dropping beats stalling the read loop
			c.metrics.RecordTickDropped("channel_full")
		}
	}
}

// trade stream payload: {"e":"trade","T":<ms>,"p":"<price>","q":"<qty>"}
type tradeMessage struct {
	Event     string `json:"e"`
	EventTime int64  `json:"E"`
	TradeTime int64  `json:"T"`
	Price     string `json:"p"`
	Quantity  string `json:"q"`
}

// parse normalizes a raw frame into a Tick. Malformed, non-positive-price,
// or out-of-order messages are dropped and counted, never fatal.
func (c *Client) parse(symbol string, b []byte) (*models.Tick, bool) {
	var m tradeMessage
	if err := json.Unmarshal(b, &m); err != nil {
		c.metrics.RecordTickDropped("malformed")
		return nil, false
	}
	if m.Event != "trade" {
		return nil, false
	}
	ms := m.TradeTime
	if ms == 0 {
		ms = m.EventTime
	}
	if ms == 0 {
		c.metrics.RecordTickDropped("no_timestamp")
		return nil, false
	}
	price, err := strconv.ParseFloat(m.Price, 64)
	if err != nil || price <= 0 {
		c.metrics.RecordTickDropped("bad_price")
		return nil, false
	}
	size, err := strconv.ParseFloat(m.Quantity, 64)
	if err != nil || size < 0 {
		c.metrics.RecordTickDropped("bad_size")
		return nil, false
	}

	ts := time.UnixMilli(ms).UTC()
	c.mu.Lock()
	if last, ok := c.lastTs[symbol]; ok && ts.Before(last) {
		c.mu.Unlock()
		c.metrics.RecordTickDropped("out_of_order")
		return nil, false
	}
	c.lastTs[symbol] = ts
	c.mu.Unlock()

	return &models.Tick{Symbol: symbol, Ts: ts, Price: price, Size: size}, true
}

func (c *Client) nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > c.backoffCap {
		d = c.backoffCap
	}
	return d
}

func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (c *Client) setState(symbol string, s drepo.StreamState) {
	c.mu.Lock()
	c.states[symbol] = s
	c.mu.Unlock()
}

func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) trackConn(symbol string, conn Conn) {
	c.mu.Lock()
	c.conns[symbol] = conn
	c.mu.Unlock()
}

func (c *Client) untrackConn(symbol string, conn Conn) {
	c.mu.Lock()
	if c.conns[symbol] == conn {
		delete(c.conns, symbol)
	}
	c.mu.Unlock()
}

var _ drepo.MarketStream = (*Client)(nil)
