package analytics

import (
	"reflect"
	"testing"
	"time"

	"PairPulse/internal/domain/models"
	domrepo "PairPulse/internal/domain/repository"
)

func mkTick(sec int, ms int, price, size float64) models.Tick {
	base := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	return models.Tick{
		Symbol: "btcusdt",
		Ts:     base.Add(time.Duration(sec)*time.Second + time.Duration(ms)*time.Millisecond),
		Price:  price,
		Size:   size,
	}
}

func TestResampleBuckets(t *testing.T) {
	ticks := []models.Tick{
		mkTick(0, 100, 100, 1),
		mkTick(0, 500, 103, 2),
		mkTick(0, 900, 99, 1),
		// gap: second 1 empty
		mkTick(2, 0, 101, 5),
	}
	bars := Resample(ticks, domrepo.TF1s)
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars (no forward fill), got %d", len(bars))
	}

	b := bars[0]
	if b.Open != 100 || b.High != 103 || b.Low != 99 || b.Close != 99 {
		t.Fatalf("bad OHLC: %+v", b)
	}
	if b.Volume != 4 {
		t.Fatalf("volume = %v, want 4", b.Volume)
	}
	if !b.Bucket.Equal(time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("bucket not aligned: %v", b.Bucket)
	}
	if !bars[1].Bucket.After(bars[0].Bucket) {
		t.Fatalf("bars not sorted ascending")
	}
}

func TestResampleIdempotent(t *testing.T) {
	ticks := []models.Tick{
		mkTick(0, 0, 10, 1),
		mkTick(0, 10, 12, 1),
		mkTick(1, 0, 11, 2),
		mkTick(61, 0, 9, 1),
	}
	first := Resample(ticks, domrepo.TF1m)
	second := Resample(ticks, domrepo.TF1m)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resample not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestResampleOHLCInvariant(t *testing.T) {
	var ticks []models.Tick
	prices := []float64{50, 70, 30, 60, 40, 80, 20, 55}
	for i, p := range prices {
		ticks = append(ticks, mkTick(i, 0, p, 1))
	}
	for _, tf := range []domrepo.Timeframe{domrepo.TF1s, domrepo.TF1m, domrepo.TF5m} {
		for _, b := range Resample(ticks, tf) {
			if b.Low > b.Open || b.Open > b.High || b.Low > b.Close || b.Close > b.High {
				t.Fatalf("tf %s: OHLC invariant violated: %+v", tf, b)
			}
		}
	}
}

func TestResampleTickPassthrough(t *testing.T) {
	ticks := []models.Tick{mkTick(0, 0, 10, 2), mkTick(0, 1, 11, 3)}
	bars := Resample(ticks, domrepo.TFTick)
	if len(bars) != 2 {
		t.Fatalf("expected 1:1 bars, got %d", len(bars))
	}
	if bars[0].Open != 10 || bars[0].Close != 10 || bars[0].Volume != 2 {
		t.Fatalf("bad passthrough bar: %+v", bars[0])
	}
}

func TestResampleEmpty(t *testing.T) {
	if bars := Resample(nil, domrepo.TF1s); len(bars) != 0 {
		t.Fatalf("expected no bars, got %d", len(bars))
	}
}

func TestResampleEqualTimestampTieBreak(t *testing.T) {
	// two ticks sharing a timestamp: arrival order decides open and close
	ticks := []models.Tick{mkTick(0, 0, 10, 1), mkTick(0, 0, 12, 1)}
	bars := Resample(ticks, domrepo.TF1s)
	if len(bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(bars))
	}
	if bars[0].Open != 10 || bars[0].Close != 12 {
		t.Fatalf("tie-break wrong: open=%v close=%v", bars[0].Open, bars[0].Close)
	}
}
