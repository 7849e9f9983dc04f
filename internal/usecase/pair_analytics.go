package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"PairPulse/internal/analytics"
	"PairPulse/internal/domain/models"
	drepo "PairPulse/internal/domain/repository"
	"PairPulse/internal/service/cache"
	"PairPulse/pkg/logger"
)

// PairRequest names the two legs and the computation parameters for an
// on-demand analytics snapshot.
type PairRequest struct {
	SymbolA          string          `json:"symbol_a" validate:"required"`
	SymbolB          string          `json:"symbol_b" validate:"required"`
	Timeframe        drepo.Timeframe `json:"timeframe"`
	Window           int             `json:"window"`
	Limit            int             `json:"limit"`
	IncludeIntercept bool            `json:"include_intercept"`
	WithADF          bool            `json:"with_adf"`
}

// PairAnalyticsUseCase computes on-demand pair snapshots over the merged
// history, with a short-TTL byte cache in front so bursts of identical
// requests cost one computation.
type PairAnalyticsUseCase struct {
	data     *MarketDataUseCase
	cache    cache.BytesCache
	cacheTTL time.Duration
	logger   *logger.Logger
}

func NewPairAnalyticsUseCase(data *MarketDataUseCase, c cache.BytesCache, ttl time.Duration, log *logger.Logger) *PairAnalyticsUseCase {
	if ttl <= 0 {
		ttl = time.Second
	}
	return &PairAnalyticsUseCase{data: data, cache: c, cacheTTL: ttl, logger: log}
}

// Snapshot computes the full pair analytics for req.
func (uc *PairAnalyticsUseCase) Snapshot(ctx context.Context, req PairRequest) (*models.AnalyticsSnapshot, error) {
	if req.SymbolA == "" || req.SymbolB == "" {
		return nil, fmt.Errorf("both symbols required")
	}
	if req.Window <= 0 {
		req.Window = 300
	}
	if req.Limit <= 0 {
		req.Limit = 5000
	}
	if req.Timeframe == "" {
		req.Timeframe = drepo.TFTick
	}
	if !drepo.IsValidTimeframe(req.Timeframe) {
		return nil, fmt.Errorf("unsupported timeframe %q", req.Timeframe)
	}

	key := uc.cacheKey(req)
	if uc.cache != nil {
		if b, ok, err := uc.cache.GetBytes(ctx, key); err == nil && ok {
			var snap models.AnalyticsSnapshot
			if err := json.Unmarshal(b, &snap); err == nil {
				return &snap, nil
			}
		}
	}

	ticksA, err := uc.series(ctx, req.SymbolA, req.Timeframe, req.Limit)
	if err != nil {
		return nil, err
	}
	ticksB, err := uc.series(ctx, req.SymbolB, req.Timeframe, req.Limit)
	if err != nil {
		return nil, err
	}

	snap := analytics.PairMetrics(ticksA, ticksB, analytics.PairParams{
		Window:           req.Window,
		IncludeIntercept: req.IncludeIntercept,
		WithADF:          req.WithADF,
	})

	if uc.cache != nil {
		if b, err := json.Marshal(snap); err == nil {
			if err := uc.cache.SetBytes(ctx, key, b, uc.cacheTTL); err != nil {
				uc.logger.Debug("snapshot cache write failed", logger.Error(err))
			}
		}
	}
	return &snap, nil
}

// series loads the merged history for symbol and, for non-tick timeframes,
// collapses it into one synthetic tick per bar at the bucket close.
func (uc *PairAnalyticsUseCase) series(ctx context.Context, symbol string, tf drepo.Timeframe, limit int) ([]models.Tick, error) {
	ticks, err := uc.data.History(ctx, symbol, limit)
	if err != nil {
		return nil, err
	}
	if tf == drepo.TFTick {
		return ticks, nil
	}
	bars := analytics.Resample(ticks, tf)
	out := make([]models.Tick, len(bars))
	for i, b := range bars {
		out[i] = models.Tick{Symbol: b.Symbol, Ts: b.Bucket, Price: b.Close, Size: b.Volume}
	}
	return out, nil
}

func (uc *PairAnalyticsUseCase) cacheKey(req PairRequest) string {
	return fmt.Sprintf("pair:%s:%s:%s:%d:%d:%t:%t",
		req.SymbolA, req.SymbolB, req.Timeframe, req.Window, req.Limit,
		req.IncludeIntercept, req.WithADF)
}
