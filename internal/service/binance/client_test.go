package binance

import (
	"context"
	"fmt"
	"testing"
	"time"

	drepo "PairPulse/internal/domain/repository"
	"PairPulse/internal/testutil"
	xlogger "PairPulse/pkg/logger"
)

type scriptedConn struct {
	frames [][]byte
	idx    int
	hold   chan struct{} // when set, block after frames run out until closed
}

func (c *scriptedConn) ReadMessage() (int, []byte, error) {
	if c.idx >= len(c.frames) {
		if c.hold != nil {
			<-c.hold
		}
		return 0, nil, fmt.Errorf("connection reset")
	}
	b := c.frames[c.idx]
	c.idx++
	return 1, b, nil
}

func (c *scriptedConn) Close() error { return nil }

type scriptedDialer struct {
	conns []*scriptedConn
	calls int
}

func (d *scriptedDialer) Dial(ctx context.Context, url string) (Conn, error) {
	if d.calls >= len(d.conns) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	c := d.conns[d.calls]
	d.calls++
	return c, nil
}

func trade(ms int64, price, qty string) []byte {
	return []byte(fmt.Sprintf(`{"e":"trade","T":%d,"p":"%s","q":"%s"}`, ms, price, qty))
}

func newTestClient(d Dialer, m drepo.Metrics) *Client {
	return New("wss://example.test/ws", xlogger.Nop(), m,
		WithDialer(d),
		WithBackoff(time.Millisecond, 5*time.Millisecond),
	)
}

func TestStreamParsesAndValidates(t *testing.T) {
	metrics := testutil.NewCountingMetrics()
	dialer := &scriptedDialer{conns: []*scriptedConn{{
		frames: [][]byte{
			trade(1000, "100.5", "0.25"),
			[]byte(`{"e":"aggTrade"}`),      // wrong event type
			[]byte(`not json`),              // malformed
			trade(2000, "0", "1"),           // non-positive price
			trade(500, "101", "1"),          // out of order
			trade(3000, "102.0", "1.5"),
		},
	}}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := newTestClient(dialer, metrics)
	ch := c.Stream(ctx, "BTCUSDT")

	var got []float64
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case tk := <-ch:
			if tk == nil {
				t.Fatal("channel closed early")
			}
			got = append(got, tk.Price)
		case <-timeout:
			t.Fatalf("timed out, got %v", got)
		}
	}

	if got[0] != 100.5 || got[1] != 102.0 {
		t.Fatalf("unexpected ticks: %v", got)
	}
	if metrics.Count("dropped:malformed") != 1 {
		t.Fatalf("malformed drop not counted")
	}
	if metrics.Count("dropped:bad_price") != 1 {
		t.Fatalf("bad price drop not counted")
	}
	if metrics.Count("dropped:out_of_order") != 1 {
		t.Fatalf("out-of-order drop not counted")
	}
}

func TestStreamReconnects(t *testing.T) {
	metrics := testutil.NewCountingMetrics()
	disconnect := make(chan struct{})
	stayUp := make(chan struct{})
	defer close(stayUp)
	dialer := &scriptedDialer{conns: []*scriptedConn{
		{frames: [][]byte{trade(1000, "100", "1")}, hold: disconnect},
		{frames: [][]byte{trade(2000, "200", "1")}, hold: stayUp},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := newTestClient(dialer, metrics)
	ch := c.Stream(ctx, "btcusdt")

	first := <-ch
	if first == nil || first.Price != 100 {
		t.Fatalf("expected first tick, got %+v", first)
	}
	if st := c.State("btcusdt"); st != drepo.StateStreaming {
		t.Fatalf("expected streaming state, got %s", st)
	}

	// simulated disconnect: release the first conn so its next read errors
	close(disconnect)

	second := <-ch
	if second == nil || second.Price != 200 {
		t.Fatalf("expected tick after reconnect, got %+v", second)
	}
	if dialer.calls != 2 {
		t.Fatalf("expected 2 dials, got %d", dialer.calls)
	}
	if metrics.Count("reconnect:btcusdt") != 1 {
		t.Fatalf("reconnect not counted")
	}
}

func TestStreamStopsOnCancel(t *testing.T) {
	metrics := testutil.NewCountingMetrics()
	dialer := &scriptedDialer{}
	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(dialer, metrics)
	ch := c.Stream(ctx, "btcusdt")

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel did not close after cancel")
	}
	if st := c.State("btcusdt"); st != drepo.StateDisconnected {
		t.Fatalf("expected disconnected after cancel, got %s", st)
	}
}
