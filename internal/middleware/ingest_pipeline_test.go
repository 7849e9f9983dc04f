package middleware

import (
	"testing"
	"time"

	"PairPulse/internal/buffer"
	"PairPulse/internal/domain/models"
	"PairPulse/internal/testutil"
)

func mkTick(i int) *models.Tick {
	return &models.Tick{
		Symbol: "btcusdt",
		Ts:     time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Second),
		Price:  100 + float64(i),
		Size:   1,
	}
}

func TestProcessAppendsAndEnqueues(t *testing.T) {
	buf := buffer.New(10)
	metrics := testutil.NewCountingMetrics()
	p := NewIngestPipeline(buf, metrics, WithQueueSize(4))

	if err := p.Process(mkTick(1)); err != nil {
		t.Fatalf("process: %v", err)
	}
	if buf.Len("btcusdt") != 1 {
		t.Fatalf("tick not appended to hot buffer")
	}
	select {
	case got := <-p.Queue():
		if got.Price != 101 {
			t.Fatalf("wrong tick queued: %v", got.Price)
		}
	default:
		t.Fatal("tick not enqueued for persistence")
	}
}

func TestProcessRejectsInvalid(t *testing.T) {
	buf := buffer.New(10)
	metrics := testutil.NewCountingMetrics()
	p := NewIngestPipeline(buf, metrics)

	bad := []*models.Tick{
		nil,
		{Symbol: "", Ts: time.Now(), Price: 1, Size: 1},
		{Symbol: "btcusdt", Ts: time.Now(), Price: 0, Size: 1},
		{Symbol: "btcusdt", Ts: time.Now(), Price: -5, Size: 1},
		{Symbol: "btcusdt", Ts: time.Now(), Price: 1, Size: -1},
		{Symbol: "btcusdt", Price: 1, Size: 1},
	}
	for i, tk := range bad {
		if err := p.Process(tk); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if buf.Len("btcusdt") != 0 {
		t.Fatal("invalid ticks must not reach the buffer")
	}
	if metrics.Count("dropped:invalid") != len(bad) {
		t.Fatalf("drops not counted: %d", metrics.Count("dropped:invalid"))
	}
}

func TestQueueDropOldest(t *testing.T) {
	buf := buffer.New(100)
	metrics := testutil.NewCountingMetrics()
	p := NewIngestPipeline(buf, metrics, WithQueueSize(2))

	for i := 1; i <= 5; i++ {
		if err := p.Process(mkTick(i)); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}

	// queue holds the newest 2; the oldest were evicted, ingestion never stalled
	var queued []float64
	for {
		select {
		case tk := <-p.Queue():
			queued = append(queued, tk.Price)
			continue
		default:
		}
		break
	}
	if len(queued) != 2 || queued[0] != 104 || queued[1] != 105 {
		t.Fatalf("expected newest two ticks queued, got %v", queued)
	}
	if metrics.Count("dropped:persist_queue_full") != 3 {
		t.Fatalf("expected 3 drop-oldest evictions, got %d", metrics.Count("dropped:persist_queue_full"))
	}
	// the hot buffer is unaffected by persistence backpressure
	if buf.Len("btcusdt") != 5 {
		t.Fatalf("hot buffer should hold all 5 ticks, got %d", buf.Len("btcusdt"))
	}
}
