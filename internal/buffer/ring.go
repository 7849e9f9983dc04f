// Package buffer holds the in-memory hot window of recent ticks per symbol.
package buffer

import (
	"sync"

	"PairPulse/internal/domain/models"
)

// ring is a fixed-capacity circular tick window.
type ring struct {
	ticks []models.Tick
	head  int // index of the oldest element
	size  int
}

func newRing(capacity int) *ring {
	return &ring{ticks: make([]models.Tick, capacity)}
}

func (r *ring) push(t models.Tick) {
	if r.size < len(r.ticks) {
		r.ticks[(r.head+r.size)%len(r.ticks)] = t
		r.size++
		return
	}
	// full: overwrite the oldest slot
	r.ticks[r.head] = t
	r.head = (r.head + 1) % len(r.ticks)
}

func (r *ring) copyOut() []models.Tick {
	out := make([]models.Tick, r.size)
	n := copy(out, r.ticks[r.head:min(r.head+r.size, len(r.ticks))])
	copy(out[n:], r.ticks[:r.size-n])
	return out
}

// TickBuffer is the per-symbol bounded hot store. Append is O(1) and never
// blocks on persistence or analytics; capacity eviction is the only loss
// mechanism. Snapshot returns a point-in-time copy with no tearing.
type TickBuffer struct {
	mu       sync.RWMutex
	capacity int
	rings    map[string]*ring
}

// New creates a TickBuffer holding up to capacity ticks per symbol.
func New(capacity int) *TickBuffer {
	if capacity <= 0 {
		capacity = 3600
	}
	return &TickBuffer{capacity: capacity, rings: make(map[string]*ring)}
}

// Configure pre-creates rings for the given symbols.
func (b *TickBuffer) Configure(symbols []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range symbols {
		if _, ok := b.rings[s]; !ok {
			b.rings[s] = newRing(b.capacity)
		}
	}
}

// Append adds a tick to its symbol ring, evicting the oldest when full.
func (b *TickBuffer) Append(t models.Tick) {
	b.mu.Lock()
	r, ok := b.rings[t.Symbol]
	if !ok {
		r = newRing(b.capacity)
		b.rings[t.Symbol] = r
	}
	r.push(t)
	b.mu.Unlock()
}

// Snapshot returns the buffered ticks for symbol in append order. Unknown
// symbols yield an empty slice.
func (b *TickBuffer) Snapshot(symbol string) []models.Tick {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.rings[symbol]
	if !ok {
		return nil
	}
	return r.copyOut()
}

// Len reports the number of buffered ticks for symbol.
func (b *TickBuffer) Len(symbol string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if r, ok := b.rings[symbol]; ok {
		return r.size
	}
	return 0
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
