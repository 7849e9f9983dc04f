package middleware

import (
	"fmt"
	"time"

	"PairPulse/internal/buffer"
	"PairPulse/internal/domain/models"
	domrepo "PairPulse/internal/domain/repository"
)

// IngestPipeline sits between the market stream and everything downstream.
// For each tick it appends to the hot buffer and enqueues for persistence.
// The persistence hand-off never blocks ingestion: when the queue is full the
// oldest queued tick is dropped to make room.
type IngestPipeline struct {
	buf       *buffer.TickBuffer
	metrics   domrepo.Metrics
	queueSize int
	queue     chan *models.Tick
}

type PipelineOption func(*IngestPipeline)

// WithQueueSize sets the persistence queue capacity.
func WithQueueSize(n int) PipelineOption {
	return func(p *IngestPipeline) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// NewIngestPipeline creates a pipeline feeding buf and a persistence queue.
func NewIngestPipeline(buf *buffer.TickBuffer, metrics domrepo.Metrics, opts ...PipelineOption) *IngestPipeline {
	p := &IngestPipeline{
		buf:       buf,
		metrics:   metrics,
		queueSize: 5000,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.queue = make(chan *models.Tick, p.queueSize)
	return p
}

// Queue exposes the persistence queue for the worker draining it.
func (p *IngestPipeline) Queue() <-chan *models.Tick { return p.queue }

// Process validates the tick, appends it to the hot buffer, and enqueues it
// for persistence with a drop-oldest backpressure policy.
func (p *IngestPipeline) Process(t *models.Tick) error {
	start := time.Now()
	if err := validateTick(t); err != nil {
		p.metrics.RecordTickDropped("invalid")
		return err
	}

	p.buf.Append(*t)
	p.metrics.RecordTickIngested(t.Symbol)
	p.metrics.RecordLastPrice(t.Symbol, t.Price)

	for {
		select {
		case p.queue <- t:
			p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
			return nil
		default:
		}
		// queue full: evict the oldest entry rather than stalling ingestion
		select {
		case <-p.queue:
			p.metrics.RecordTickDropped("persist_queue_full")
		default:
		}
	}
}

func validateTick(t *models.Tick) error {
	if t == nil {
		return fmt.Errorf("tick nil")
	}
	if t.Symbol == "" {
		return fmt.Errorf("symbol empty")
	}
	if t.Ts.IsZero() {
		return fmt.Errorf("timestamp missing")
	}
	if t.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	if t.Size < 0 {
		return fmt.Errorf("size must be non-negative")
	}
	return nil
}
