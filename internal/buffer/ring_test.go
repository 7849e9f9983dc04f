package buffer

import (
	"sync"
	"testing"
	"time"

	"PairPulse/internal/domain/models"
)

func tick(sym string, i int) models.Tick {
	return models.Tick{
		Symbol: sym,
		Ts:     time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Millisecond),
		Price:  100 + float64(i),
		Size:   1,
	}
}

func TestAppendWithinCapacity(t *testing.T) {
	b := New(5)
	for i := 0; i < 3; i++ {
		b.Append(tick("btcusdt", i))
	}
	snap := b.Snapshot("btcusdt")
	if len(snap) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(snap))
	}
	for i, tk := range snap {
		if tk.Price != 100+float64(i) {
			t.Fatalf("tick %d out of order: price=%v", i, tk.Price)
		}
	}
}

func TestEvictionKeepsLastN(t *testing.T) {
	const cap = 4
	b := New(cap)
	for i := 0; i < 10; i++ {
		b.Append(tick("btcusdt", i))
	}
	snap := b.Snapshot("btcusdt")
	if len(snap) != cap {
		t.Fatalf("expected %d ticks, got %d", cap, len(snap))
	}
	// contents must be the last cap appended ticks in order
	for i, tk := range snap {
		want := 100 + float64(10-cap+i)
		if tk.Price != want {
			t.Fatalf("tick %d: got price %v want %v", i, tk.Price, want)
		}
	}
}

func TestSnapshotUnknownSymbol(t *testing.T) {
	b := New(10)
	if snap := b.Snapshot("nosuch"); len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %d", len(snap))
	}
}

func TestSymbolsIsolated(t *testing.T) {
	b := New(10)
	b.Append(tick("btcusdt", 1))
	b.Append(tick("ethusdt", 2))
	if b.Len("btcusdt") != 1 || b.Len("ethusdt") != 1 {
		t.Fatalf("symbols not isolated: %d %d", b.Len("btcusdt"), b.Len("ethusdt"))
	}
}

func TestConcurrentAppendSnapshot(t *testing.T) {
	b := New(64)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 5000; i++ {
			b.Append(tick("btcusdt", i))
		}
		close(stop)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap := b.Snapshot("btcusdt")
			// monotonic prices within a snapshot proves no tearing
			for i := 1; i < len(snap); i++ {
				if snap[i].Price <= snap[i-1].Price {
					t.Errorf("torn snapshot at %d: %v then %v", i, snap[i-1].Price, snap[i].Price)
					return
				}
			}
		}
	}()

	wg.Wait()
	if got := b.Len("btcusdt"); got != 64 {
		t.Fatalf("expected full ring of 64, got %d", got)
	}
}
