package models

import "time"

// HedgeRatio holds the OLS regression outputs relating series A to series B.
// Pointer fields are nil when the regression could not be fit (insufficient
// data, zero variance) or when the intercept term was excluded.
type HedgeRatio struct {
	Beta      *float64 `json:"beta"`
	Intercept *float64 `json:"intercept"`
	RValue    *float64 `json:"rvalue"`
	PValue    *float64 `json:"pvalue"`
	Stderr    *float64 `json:"stderr"`
}

// ADFResult summarizes an Augmented Dickey-Fuller stationarity test.
type ADFResult struct {
	Statistic      float64            `json:"statistic"`
	PValue         float64            `json:"pvalue"`
	Lags           int                `json:"lags"`
	NObs           int                `json:"nobs"`
	CriticalValues map[string]float64 `json:"critical_values"`
}

// AnalyticsSnapshot is the JSON-safe bundle of pair metrics. Nil fields mean
// the metric could not be computed yet; non-finite floats never appear.
type AnalyticsSnapshot struct {
	HedgeRatio         HedgeRatio `json:"hedge_ratio"`
	LatestSpread       *float64   `json:"latest_spread"`
	LatestZScore       *float64   `json:"latest_zscore"`
	RollingCorrelation *float64   `json:"rolling_correlation"`
	ADF                *ADFResult `json:"adf"`
}

// MetricValue extracts the named metric from the snapshot. The bool result
// is false when the metric is unavailable in this snapshot.
func (s *AnalyticsSnapshot) MetricValue(m Metric) (float64, bool) {
	var v *float64
	switch m {
	case MetricZScore:
		v = s.LatestZScore
	case MetricSpread:
		v = s.LatestSpread
	case MetricCorrelation:
		v = s.RollingCorrelation
	case MetricBeta:
		v = s.HedgeRatio.Beta
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// LiveMetricPayload is the message delivered to each live subscriber on every
// broadcast tick.
type LiveMetricPayload struct {
	Timestamp time.Time         `json:"timestamp"`
	Symbol    string            `json:"symbol"`
	Price     float64           `json:"price"`
	Analytics AnalyticsSnapshot `json:"analytics"`
	Alerts    []AlertEvent      `json:"alerts"`
}
