package usecase

import (
	"context"
	"sync"

	"PairPulse/internal/domain/models"
	drepo "PairPulse/internal/domain/repository"
	"PairPulse/internal/middleware"
	"PairPulse/pkg/logger"
)

// TickCollector owns the ingestion side of the pipeline. It opens one managed
// stream per watched symbol and feeds every delivered tick through the ingest
// pipeline. Symbols can be added while running; a symbol is never watched
// twice.
type TickCollector struct {
	stream  drepo.MarketStream
	pipe    *middleware.IngestPipeline
	metrics drepo.Metrics
	logger  *logger.Logger

	mu      sync.Mutex
	ctx     context.Context
	watched map[string]struct{}
	wg      sync.WaitGroup
}

func NewTickCollector(stream drepo.MarketStream, pipe *middleware.IngestPipeline, metrics drepo.Metrics, log *logger.Logger) *TickCollector {
	return &TickCollector{
		stream:  stream,
		pipe:    pipe,
		metrics: metrics,
		logger:  log,
		watched: make(map[string]struct{}),
	}
}

// Start begins collection for the initial symbol set. It returns immediately;
// the per-symbol loops run until ctx is cancelled.
func (c *TickCollector) Start(ctx context.Context, symbols []string) {
	c.mu.Lock()
	c.ctx = ctx
	c.mu.Unlock()
	for _, s := range symbols {
		c.Watch(s)
	}
}

// Watch adds a symbol to the collection set. Tracking starts immediately and
// the call is idempotent. Watch before Start is an error.
func (c *TickCollector) Watch(symbol string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx == nil {
		return false
	}
	if _, ok := c.watched[symbol]; ok {
		return false
	}
	c.watched[symbol] = struct{}{}

	ch := c.stream.Stream(c.ctx, symbol)
	c.wg.Add(1)
	go c.consume(symbol, ch)
	return true
}

// Watched returns the current symbol set.
func (c *TickCollector) Watched() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.watched))
	for s := range c.watched {
		out = append(out, s)
	}
	return out
}

// IsWatched reports whether symbol is in the collection set.
func (c *TickCollector) IsWatched(symbol string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.watched[symbol]
	return ok
}

// State reports the stream state for a symbol.
func (c *TickCollector) State(symbol string) drepo.StreamState {
	return c.stream.State(symbol)
}

// Wait blocks until all per-symbol loops have drained after cancellation.
func (c *TickCollector) Wait() {
	c.wg.Wait()
}

func (c *TickCollector) consume(symbol string, ch <-chan *models.Tick) {
	defer c.wg.Done()
	for t := range ch {
		if err := c.pipe.Process(t); err != nil {
			c.logger.Debug("tick rejected",
				logger.String("symbol", symbol),
				logger.Error(err))
		}
	}
	c.logger.Info("symbol stream closed", logger.String("symbol", symbol))
}
