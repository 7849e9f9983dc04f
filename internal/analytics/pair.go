package analytics

import (
	"PairPulse/internal/domain/models"
)

// PairParams configures a pair metrics computation.
type PairParams struct {
	Window           int
	IncludeIntercept bool
	WithADF          bool
}

// PairMetrics computes the full analytics snapshot for two ordered tick
// series. Insufficient data is never an error: fields the sample cannot
// support come back nil.
func PairMetrics(ticksA, ticksB []models.Tick, p PairParams) models.AnalyticsSnapshot {
	var snap models.AnalyticsSnapshot

	a, b := AlignTicks(ticksA, ticksB)
	if len(a) < 2 {
		return snap
	}

	window := p.Window
	if window < 2 {
		window = 2
	}
	if window > len(a) {
		window = len(a)
		if window < 2 {
			window = 2
		}
	}

	snap.HedgeRatio = HedgeRatio(a, b, p.IncludeIntercept)
	spread := Spread(a, b, snap.HedgeRatio)
	if len(spread) > 0 {
		snap.LatestSpread = ptr(spread[len(spread)-1])
		snap.LatestZScore = LatestZScore(spread, window)
	}
	snap.RollingCorrelation = RollingCorrelation(a, b, window)

	if p.WithADF && len(spread) >= ADFMinObservations {
		snap.ADF = ADF(spread, -1)
	}

	return SanitizeSnapshot(snap)
}
