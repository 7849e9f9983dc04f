package testutil

import (
	"context"
	"fmt"
	"sync"

	"PairPulse/internal/domain/models"
)

// ScriptedTickStore is an in-memory TickStore fake. It records every insert
// batch and can be told to fail the next N inserts.
type ScriptedTickStore struct {
	mu       sync.Mutex
	batches  [][]*models.Tick
	ticks    map[string][]*models.Tick
	failNext int
	reads    int
}

func NewScriptedTickStore() *ScriptedTickStore {
	return &ScriptedTickStore{ticks: make(map[string][]*models.Tick)}
}

// FailNext makes the next n InsertBatch calls return an error.
func (s *ScriptedTickStore) FailNext(n int) {
	s.mu.Lock()
	s.failNext = n
	s.mu.Unlock()
}

// Seed preloads stored ticks for RecentTicks.
func (s *ScriptedTickStore) Seed(symbol string, ticks []*models.Tick) {
	s.mu.Lock()
	s.ticks[symbol] = append(s.ticks[symbol], ticks...)
	s.mu.Unlock()
}

// Batches returns a copy of all successfully inserted batches.
func (s *ScriptedTickStore) Batches() [][]*models.Tick {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]*models.Tick, len(s.batches))
	copy(out, s.batches)
	return out
}

// Reads reports how many RecentTicks calls were made.
func (s *ScriptedTickStore) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func (s *ScriptedTickStore) Init(context.Context) error { return nil }

func (s *ScriptedTickStore) InsertBatch(_ context.Context, ticks []*models.Tick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext > 0 {
		s.failNext--
		return fmt.Errorf("simulated insert failure")
	}
	batch := make([]*models.Tick, len(ticks))
	copy(batch, ticks)
	s.batches = append(s.batches, batch)
	for _, t := range batch {
		s.ticks[t.Symbol] = append(s.ticks[t.Symbol], t)
	}
	return nil
}

func (s *ScriptedTickStore) RecentTicks(_ context.Context, symbol string, limit int) ([]*models.Tick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	stored := s.ticks[symbol]
	if limit > 0 && len(stored) > limit {
		stored = stored[len(stored)-limit:]
	}
	out := make([]*models.Tick, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *ScriptedTickStore) Health(context.Context) error { return nil }
func (s *ScriptedTickStore) Close() error                 { return nil }
