package usecase

import (
	"context"
	"sync"
	"time"

	"PairPulse/internal/analytics"
	"PairPulse/internal/buffer"
	"PairPulse/internal/domain/models"
	drepo "PairPulse/internal/domain/repository"
	"PairPulse/pkg/logger"
)

// subscriberDepth bounds each subscriber channel. A subscriber that cannot
// keep up loses frames, never stalls the broadcast loop.
const subscriberDepth = 16

// Subscriber is one live metrics consumer.
type Subscriber struct {
	ch chan models.LiveMetricPayload
}

// C is the channel the subscriber reads payloads from. It is closed on
// Unsubscribe.
func (s *Subscriber) C() <-chan models.LiveMetricPayload { return s.ch }

// LiveBroadcaster recomputes pair analytics on a fixed cadence from hot
// buffer snapshots, evaluates alert rules against the result, and fans the
// payload out to every subscriber.
type LiveBroadcaster struct {
	buf     *buffer.TickBuffer
	alerts  *AlertEngine
	metrics drepo.Metrics
	logger  *logger.Logger

	interval time.Duration
	symbolA  string
	symbolB  string
	window   int

	mu     sync.Mutex
	subs   map[*Subscriber]struct{}
	latest *models.LiveMetricPayload
}

type BroadcasterOption func(*LiveBroadcaster)

func WithBroadcastInterval(d time.Duration) BroadcasterOption {
	return func(b *LiveBroadcaster) {
		if d > 0 {
			b.interval = d
		}
	}
}

func WithPair(symbolA, symbolB string) BroadcasterOption {
	return func(b *LiveBroadcaster) {
		if symbolA != "" && symbolB != "" {
			b.symbolA, b.symbolB = symbolA, symbolB
		}
	}
}

func WithWindow(n int) BroadcasterOption {
	return func(b *LiveBroadcaster) {
		if n > 1 {
			b.window = n
		}
	}
}

func NewLiveBroadcaster(buf *buffer.TickBuffer, alerts *AlertEngine, metrics drepo.Metrics, log *logger.Logger, opts ...BroadcasterOption) *LiveBroadcaster {
	b := &LiveBroadcaster{
		buf:      buf,
		alerts:   alerts,
		metrics:  metrics,
		logger:   log,
		interval: 500 * time.Millisecond,
		symbolA:  "btcusdt",
		symbolB:  "ethusdt",
		window:   300,
		subs:     make(map[*Subscriber]struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a live consumer. The most recent payload, if any, is
// replayed immediately so a new subscriber never starts blank.
func (b *LiveBroadcaster) Subscribe() *Subscriber {
	s := &Subscriber{ch: make(chan models.LiveMetricPayload, subscriberDepth)}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	if b.latest != nil {
		s.ch <- *b.latest
	}
	n := len(b.subs)
	b.mu.Unlock()
	b.metrics.RecordSubscribers(n)
	return s
}

// Unsubscribe removes the consumer and closes its channel.
func (b *LiveBroadcaster) Unsubscribe(s *Subscriber) {
	b.mu.Lock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
	n := len(b.subs)
	b.mu.Unlock()
	b.metrics.RecordSubscribers(n)
}

// Latest returns the last broadcast payload, or nil before the first tick.
func (b *LiveBroadcaster) Latest() *models.LiveMetricPayload {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.latest == nil {
		return nil
	}
	out := *b.latest
	return &out
}

// Run drives the broadcast loop until ctx is cancelled.
func (b *LiveBroadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.tick(time.Now().UTC())
		}
	}
}

// tick computes and publishes one frame. Exposed through Run only; tests
// call it directly for determinism.
func (b *LiveBroadcaster) tick(now time.Time) {
	ticksA := b.buf.Snapshot(b.symbolA)
	if len(ticksA) == 0 {
		return
	}
	ticksB := b.buf.Snapshot(b.symbolB)

	snap := analytics.PairMetrics(ticksA, ticksB, analytics.PairParams{
		Window:           b.window,
		IncludeIntercept: true,
	})
	fired := b.alerts.Evaluate(&snap, now)

	last := ticksA[len(ticksA)-1]
	payload := models.LiveMetricPayload{
		Timestamp: now,
		Symbol:    last.Symbol,
		Price:     last.Price,
		Analytics: snap,
		Alerts:    fired,
	}

	b.mu.Lock()
	b.latest = &payload
	for s := range b.subs {
		select {
		case s.ch <- payload:
		default:
			// slow consumer: skip this frame for them
			b.metrics.RecordTickDropped("slow_subscriber")
		}
	}
	b.mu.Unlock()
}
