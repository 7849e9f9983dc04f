package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	ticksIngested *prometheus.CounterVec
	ticksDropped  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	lastPrice     *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
	flushRows     prometheus.Histogram
	reconnects    *prometheus.CounterVec
	alertsFired   *prometheus.CounterVec
	subscribers   prometheus.Gauge
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		ticksIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairpulse_ticks_ingested_total",
				Help: "Total ticks accepted into the pipeline",
			},
			[]string{"symbol"},
		),
		ticksDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairpulse_ticks_dropped_total",
				Help: "Total ticks dropped, by reason",
			},
			[]string{"reason"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pairpulse_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pairpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		flushRows: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pairpulse_flush_rows",
				Help:    "Rows written per persistence flush",
				Buckets: []float64{1, 10, 50, 100, 200, 500, 1000, 2000},
			},
		),
		reconnects: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairpulse_stream_reconnects_total",
				Help: "Market stream reconnect attempts per symbol",
			},
			[]string{"symbol"},
		),
		alertsFired: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairpulse_alerts_fired_total",
				Help: "Alert rule firings by metric",
			},
			[]string{"metric"},
		),
		subscribers: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pairpulse_live_subscribers",
				Help: "Current live broadcast subscribers",
			},
		),
	}
}

func (r *Recorder) RecordTickIngested(symbol string) {
	r.ticksIngested.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordTickDropped(reason string) {
	r.ticksDropped.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

func (r *Recorder) RecordFlush(rows int) {
	r.flushRows.Observe(float64(rows))
}

func (r *Recorder) RecordReconnect(symbol string) {
	r.reconnects.WithLabelValues(symbol).Inc()
}

func (r *Recorder) RecordAlertFired(metric string) {
	r.alertsFired.WithLabelValues(metric).Inc()
}

func (r *Recorder) RecordSubscribers(n int) {
	r.subscribers.Set(float64(n))
}
