package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"PairPulse/internal/analytics"
	"PairPulse/internal/buffer"
	"PairPulse/internal/domain/models"
	drepo "PairPulse/internal/domain/repository"
	"PairPulse/pkg/logger"
	"PairPulse/pkg/util"
)

// MarketDataUseCase serves the historical read path. Reads merge durable
// storage with the hot buffer so the freshest not-yet-flushed ticks are
// always visible; on a (symbol, ts) collision the hot copy wins.
type MarketDataUseCase struct {
	store     drepo.TickStore
	buf       *buffer.TickBuffer
	collector *TickCollector
	logger    *logger.Logger
}

func NewMarketDataUseCase(store drepo.TickStore, buf *buffer.TickBuffer, collector *TickCollector, log *logger.Logger) *MarketDataUseCase {
	return &MarketDataUseCase{store: store, buf: buf, collector: collector, logger: log}
}

// History returns up to limit most recent ticks for symbol in ascending
// timestamp order. Requesting an unwatched symbol starts live tracking for
// it as a side effect.
func (uc *MarketDataUseCase) History(ctx context.Context, symbol string, limit int) ([]models.Tick, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if limit <= 0 {
		limit = 1000
	}
	uc.ensureWatched(symbol)

	stored, err := uc.store.RecentTicks(ctx, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent ticks: %w", err)
	}
	merged := mergeTicks(stored, uc.buf.Snapshot(symbol))
	if len(merged) > limit {
		merged = merged[len(merged)-limit:]
	}
	return merged, nil
}

// Bars resamples the merged tick history into OHLCV bars.
func (uc *MarketDataUseCase) Bars(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Bar, error) {
	ticks, err := uc.History(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	return analytics.Resample(ticks, tf), nil
}

// ImportTicks persists externally supplied ticks, e.g. a CSV backfill.
// Invalid rows are counted and skipped; the valid remainder is written in
// one batch with the usual upsert semantics.
func (uc *MarketDataUseCase) ImportTicks(ctx context.Context, ticks []models.Tick) (inserted, skipped int, err error) {
	batch := make([]*models.Tick, 0, len(ticks))
	for i := range ticks {
		t := ticks[i]
		if t.Symbol == "" || t.Ts.IsZero() || t.Price <= 0 || t.Size < 0 {
			skipped++
			continue
		}
		batch = append(batch, &t)
	}
	if len(batch) == 0 {
		return 0, skipped, nil
	}
	if err := uc.store.InsertBatch(ctx, batch); err != nil {
		return 0, skipped, fmt.Errorf("import batch: %w", err)
	}
	uc.logger.Info("tick import complete",
		logger.Int("inserted", len(batch)),
		logger.Int("skipped", skipped))
	return len(batch), skipped, nil
}

// Watch starts live tracking for symbol, returning whether it was new.
func (uc *MarketDataUseCase) Watch(symbol string) bool {
	if uc.collector == nil {
		return false
	}
	return uc.collector.Watch(symbol)
}

func (uc *MarketDataUseCase) ensureWatched(symbol string) {
	if uc.collector == nil || uc.collector.IsWatched(symbol) {
		return
	}
	if uc.collector.Watch(symbol) {
		uc.logger.Info("tracking new symbol on demand", logger.String("symbol", symbol))
	}
}

// mergeTicks combines a durable slice and a hot slice, deduplicating on
// (symbol, ts) with the hot copy winning, sorted ascending by timestamp.
func mergeTicks(stored []*models.Tick, hot []models.Tick) []models.Tick {
	type key struct {
		symbol string
		ts     int64
	}
	seen := make(map[key]models.Tick, len(stored)+len(hot))
	order := make([]key, 0, len(stored)+len(hot))
	put := func(t models.Tick) {
		k := key{t.Symbol, t.Ts.UnixNano()}
		if _, ok := seen[k]; !ok {
			order = append(order, k)
		}
		seen[k] = t
	}
	for _, t := range stored {
		if t != nil {
			put(*t)
		}
	}
	for _, t := range hot {
		put(t)
	}

	out := make([]models.Tick, 0, len(order))
	for _, k := range order {
		out = append(out, seen[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Ts.Before(out[j].Ts) })
	return out
}

// ParseTickTime accepts the timestamp formats tolerated on CSV import:
// RFC 3339 and unix epoch seconds or milliseconds.
func ParseTickTime(s string) (time.Time, error) {
	ts, ok := util.ParseTime(s)
	if !ok {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return ts, nil
}
