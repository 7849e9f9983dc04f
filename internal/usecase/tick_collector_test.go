package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"PairPulse/internal/buffer"
	"PairPulse/internal/domain/models"
	drepo "PairPulse/internal/domain/repository"
	"PairPulse/internal/middleware"
	"PairPulse/internal/testutil"
	xlogger "PairPulse/pkg/logger"
)

// fakeStream hands each symbol a pre-scripted tick series.
type fakeStream struct {
	mu      sync.Mutex
	scripts map[string][]*models.Tick
	opened  map[string]int
}

func newFakeStream() *fakeStream {
	return &fakeStream{scripts: make(map[string][]*models.Tick), opened: make(map[string]int)}
}

func (f *fakeStream) script(symbol string, ticks ...*models.Tick) {
	f.mu.Lock()
	f.scripts[symbol] = ticks
	f.mu.Unlock()
}

func (f *fakeStream) Stream(ctx context.Context, symbol string) <-chan *models.Tick {
	f.mu.Lock()
	f.opened[symbol]++
	ticks := f.scripts[symbol]
	f.mu.Unlock()

	ch := make(chan *models.Tick, len(ticks))
	for _, t := range ticks {
		ch <- t
	}
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

func (f *fakeStream) State(string) drepo.StreamState { return drepo.StateStreaming }
func (f *fakeStream) Close() error                   { return nil }

func (f *fakeStream) openCount(symbol string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opened[symbol]
}

func TestCollectorFeedsPipeline(t *testing.T) {
	stream := newFakeStream()
	stream.script("btcusdt", tickAt(1), tickAt(2))
	buf := buffer.New(100)
	pipe := middleware.NewIngestPipeline(buf, testutil.NewCountingMetrics())
	c := NewTickCollector(stream, pipe, testutil.NewCountingMetrics(), xlogger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx, []string{"btcusdt"})

	waitFor(t, func() bool { return buf.Len("btcusdt") == 2 }, "ticks never reached the buffer")
}

func TestWatchIsIdempotent(t *testing.T) {
	stream := newFakeStream()
	buf := buffer.New(100)
	pipe := middleware.NewIngestPipeline(buf, testutil.NewCountingMetrics())
	c := NewTickCollector(stream, pipe, testutil.NewCountingMetrics(), xlogger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx, []string{"btcusdt"})

	if c.Watch("btcusdt") {
		t.Fatal("second watch of the same symbol should be a no-op")
	}
	if !c.Watch("ethusdt") {
		t.Fatal("new symbol should be accepted")
	}
	if stream.openCount("btcusdt") != 1 {
		t.Fatalf("stream opened %d times", stream.openCount("btcusdt"))
	}
	if !c.IsWatched("ethusdt") || len(c.Watched()) != 2 {
		t.Fatalf("watched set wrong: %v", c.Watched())
	}
}

func TestCollectorStopsOnCancel(t *testing.T) {
	stream := newFakeStream()
	stream.script("btcusdt", tickAt(1))
	buf := buffer.New(100)
	pipe := middleware.NewIngestPipeline(buf, testutil.NewCountingMetrics())
	c := NewTickCollector(stream, pipe, testutil.NewCountingMetrics(), xlogger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx, []string{"btcusdt"})
	cancel()

	done := make(chan struct{})
	go func() { c.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector loops did not drain after cancel")
	}
}
