// Package analytics contains the pure computation layer: tick resampling and
// the pair statistics (hedge ratio, spread, z-score, correlation, ADF). No
// function here touches shared state.
package analytics

import (
	"sort"
	"time"

	"PairPulse/internal/domain/models"
	domrepo "PairPulse/internal/domain/repository"
)

// Resample partitions ticks into timeframe-aligned half-open buckets
// [start, start+d) and emits one OHLCV bar per non-empty bucket, sorted
// ascending by bucket start. Empty buckets produce no bar. With the tick
// timeframe every tick maps to its own bar. Deterministic: same input,
// same output.
func Resample(ticks []models.Tick, tf domrepo.Timeframe) []models.Bar {
	if len(ticks) == 0 {
		return nil
	}

	d := tf.Duration()
	if d == 0 {
		bars := make([]models.Bar, 0, len(ticks))
		for _, t := range ticks {
			bars = append(bars, models.Bar{
				Symbol:    t.Symbol,
				Timeframe: string(tf),
				Bucket:    t.Ts,
				Open:      t.Price,
				High:      t.Price,
				Low:       t.Price,
				Close:     t.Price,
				Volume:    t.Size,
			})
		}
		return bars
	}

	byBucket := make(map[time.Time]*models.Bar)
	for _, t := range ticks {
		start := t.Ts.Truncate(d)
		b, ok := byBucket[start]
		if !ok {
			byBucket[start] = &models.Bar{
				Symbol:    t.Symbol,
				Timeframe: string(tf),
				Bucket:    start,
				Open:      t.Price,
				High:      t.Price,
				Low:       t.Price,
				Close:     t.Price,
				Volume:    t.Size,
			}
			continue
		}
		if t.Price > b.High {
			b.High = t.Price
		}
		if t.Price < b.Low {
			b.Low = t.Price
		}
		// ties on timestamp resolve by arrival order: last seen wins the close
		b.Close = t.Price
		b.Volume += t.Size
	}

	bars := make([]models.Bar, 0, len(byBucket))
	for _, b := range byBucket {
		bars = append(bars, *b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Bucket.Before(bars[j].Bucket) })
	return bars
}

// ClosePrices extracts the close series from bars.
func ClosePrices(bars []models.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}
