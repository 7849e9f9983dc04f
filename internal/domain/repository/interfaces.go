package repository

import (
	"context"

	"PairPulse/internal/domain/models"
)

// StreamState is the connection state of one symbol stream.
type StreamState string

const (
	StateDisconnected StreamState = "disconnected"
	StateConnecting   StreamState = "connecting"
	StateStreaming    StreamState = "streaming"
)

// MarketStream delivers normalized ticks for watched symbols. Stream starts a
// managed connection for the symbol and returns a channel of ticks; the
// implementation reconnects with backoff until ctx is cancelled. A reconnect
// is allowed to lose ticks; there is no replay.
type MarketStream interface {
	Stream(ctx context.Context, symbol string) <-chan *models.Tick
	State(symbol string) StreamState
	Close() error
}

// TickStore is the durable tick storage boundary. InsertBatch has upsert
// semantics keyed by (symbol, ts): writing the same key twice keeps the last
// value.
type TickStore interface {
	Init(ctx context.Context) error
	InsertBatch(ctx context.Context, ticks []*models.Tick) error
	RecentTicks(ctx context.Context, symbol string, limit int) ([]*models.Tick, error)
	Health(ctx context.Context) error
	Close() error
}

// TickPublisher mirrors persisted batches to an external stream.
type TickPublisher interface {
	PublishBatch(ctx context.Context, ticks []*models.Tick) error
	Close() error
}

type Metrics interface {
	RecordTickIngested(symbol string)
	RecordTickDropped(reason string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordFlush(rows int)
	RecordReconnect(symbol string)
	RecordAlertFired(metric string)
	RecordSubscribers(n int)
}
