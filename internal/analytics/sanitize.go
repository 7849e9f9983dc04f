package analytics

import (
	"math"

	"PairPulse/internal/domain/models"
)

// sanitizeFloat converts non-finite values to nil so NaN/Inf never leave the
// engine as numeric sentinels.
func sanitizeFloat(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	return v
}

func sanitizeHedge(h models.HedgeRatio) models.HedgeRatio {
	h.Beta = sanitizeFloat(h.Beta)
	h.Intercept = sanitizeFloat(h.Intercept)
	h.RValue = sanitizeFloat(h.RValue)
	h.PValue = sanitizeFloat(h.PValue)
	h.Stderr = sanitizeFloat(h.Stderr)
	if h.Beta == nil {
		return models.HedgeRatio{}
	}
	return h
}

// SanitizeSnapshot is the final gate on every snapshot leaving the engine.
func SanitizeSnapshot(s models.AnalyticsSnapshot) models.AnalyticsSnapshot {
	s.HedgeRatio = sanitizeHedge(s.HedgeRatio)
	s.LatestSpread = sanitizeFloat(s.LatestSpread)
	s.LatestZScore = sanitizeFloat(s.LatestZScore)
	s.RollingCorrelation = sanitizeFloat(s.RollingCorrelation)
	if s.ADF != nil {
		if math.IsNaN(s.ADF.Statistic) || math.IsInf(s.ADF.Statistic, 0) ||
			math.IsNaN(s.ADF.PValue) || math.IsInf(s.ADF.PValue, 0) {
			s.ADF = nil
		}
	}
	return s
}
