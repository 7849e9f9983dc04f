// Package testutil provides shared fakes for unit tests.
package testutil

import "sync"

// CountingMetrics is a thread-safe Metrics fake that tallies calls by key.
type CountingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewCountingMetrics() *CountingMetrics {
	return &CountingMetrics{counts: make(map[string]int)}
}

func (m *CountingMetrics) inc(key string) {
	m.mu.Lock()
	m.counts[key]++
	m.mu.Unlock()
}

// Count returns how many times key was recorded.
func (m *CountingMetrics) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

func (m *CountingMetrics) RecordTickIngested(symbol string)        { m.inc("ingested:" + symbol) }
func (m *CountingMetrics) RecordTickDropped(reason string)         { m.inc("dropped:" + reason) }
func (m *CountingMetrics) RecordError(kind string)                 { m.inc("error:" + kind) }
func (m *CountingMetrics) RecordLastPrice(string, float64)         { m.inc("last_price") }
func (m *CountingMetrics) RecordLatency(op string, _ float64)      { m.inc("latency:" + op) }
func (m *CountingMetrics) RecordFlush(rows int)                    { m.inc("flush") }
func (m *CountingMetrics) RecordReconnect(symbol string)           { m.inc("reconnect:" + symbol) }
func (m *CountingMetrics) RecordAlertFired(metric string)          { m.inc("alert:" + metric) }
func (m *CountingMetrics) RecordSubscribers(int)                   { m.inc("subscribers") }
