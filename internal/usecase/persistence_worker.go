package usecase

import (
	"context"
	"time"

	"PairPulse/internal/domain/models"
	drepo "PairPulse/internal/domain/repository"
	"PairPulse/pkg/logger"
)

// PersistenceWorker drains the ingest queue and writes ticks to durable
// storage in batches. A flush happens when the batch reaches batchSize or
// when flushInterval elapses with a non-empty batch, whichever comes first.
//
// Flush failures keep the batch and retry it on the next timer tick. After
// maxFailures consecutive failures the batch is dropped and logged so a dead
// store cannot grow memory without bound.
type PersistenceWorker struct {
	store   drepo.TickStore
	pub     drepo.TickPublisher // optional mirror, may be nil
	metrics drepo.Metrics
	logger  *logger.Logger

	queue         <-chan *models.Tick
	batchSize     int
	flushInterval time.Duration
	maxFailures   int

	batch    []*models.Tick
	failures int
}

type WorkerOption func(*PersistenceWorker)

func WithBatchSize(n int) WorkerOption {
	return func(w *PersistenceWorker) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

func WithFlushInterval(d time.Duration) WorkerOption {
	return func(w *PersistenceWorker) {
		if d > 0 {
			w.flushInterval = d
		}
	}
}

func WithMaxFailures(n int) WorkerOption {
	return func(w *PersistenceWorker) {
		if n > 0 {
			w.maxFailures = n
		}
	}
}

// WithPublisher mirrors every persisted batch to pub. Publish errors are
// logged and never fail the flush.
func WithPublisher(pub drepo.TickPublisher) WorkerOption {
	return func(w *PersistenceWorker) { w.pub = pub }
}

func NewPersistenceWorker(store drepo.TickStore, queue <-chan *models.Tick, metrics drepo.Metrics, log *logger.Logger, opts ...WorkerOption) *PersistenceWorker {
	w := &PersistenceWorker{
		store:         store,
		metrics:       metrics,
		logger:        log,
		queue:         queue,
		batchSize:     200,
		flushInterval: 2 * time.Second,
		maxFailures:   5,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.batch = make([]*models.Tick, 0, w.batchSize)
	return w
}

// Run drains the queue until ctx is cancelled, then makes a final flush
// attempt with a short deadline so shutdown cannot hang on a dead store.
func (w *PersistenceWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.drainRemaining()
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			w.flush(flushCtx)
			cancel()
			return
		case t := <-w.queue:
			w.batch = append(w.batch, t)
			// size trigger; a failing batch waits for the timer instead
			if len(w.batch) >= w.batchSize && w.failures == 0 {
				w.flush(ctx)
			}
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *PersistenceWorker) drainRemaining() {
	for {
		select {
		case t := <-w.queue:
			w.batch = append(w.batch, t)
		default:
			return
		}
	}
}

func (w *PersistenceWorker) flush(ctx context.Context) {
	if len(w.batch) == 0 {
		return
	}
	start := time.Now()
	if err := w.store.InsertBatch(ctx, w.batch); err != nil {
		w.failures++
		w.metrics.RecordError("persist_flush")
		w.logger.Error("tick batch flush failed",
			logger.Int("rows", len(w.batch)),
			logger.Int("consecutive_failures", w.failures),
			logger.Error(err))
		if w.failures >= w.maxFailures {
			w.logger.Error("dropping tick batch after repeated failures",
				logger.Int("rows", len(w.batch)))
			w.metrics.RecordTickDropped("persist_failed")
			w.batch = w.batch[:0]
			w.failures = 0
		}
		return
	}

	w.metrics.RecordFlush(len(w.batch))
	w.metrics.RecordLatency("persist_flush", time.Since(start).Seconds())
	if w.pub != nil {
		if err := w.pub.PublishBatch(ctx, w.batch); err != nil {
			w.metrics.RecordError("publish_batch")
			w.logger.Warn("batch mirror publish failed", logger.Error(err))
		}
	}
	w.batch = w.batch[:0]
	w.failures = 0
}
