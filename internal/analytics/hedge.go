package analytics

import (
	"math"
	"time"

	"PairPulse/internal/domain/models"
)

// alignTolerance is how far apart two tick timestamps may be and still count
// as the same observation when pairing series A against series B.
const alignTolerance = time.Second

// AlignTicks pairs each tick of a with the nearest-in-time tick of b within
// alignTolerance and returns the two aligned price series. Both inputs must
// be ordered by timestamp.
func AlignTicks(a, b []models.Tick) (pa, pb []float64) {
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}
	j := 0
	for _, ta := range a {
		// advance j to the closest b timestamp not far behind ta
		for j+1 < len(b) && absDuration(b[j+1].Ts.Sub(ta.Ts)) <= absDuration(b[j].Ts.Sub(ta.Ts)) {
			j++
		}
		if absDuration(b[j].Ts.Sub(ta.Ts)) > alignTolerance {
			continue
		}
		pa = append(pa, ta.Price)
		pb = append(pb, b[j].Price)
	}
	return pa, pb
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// HedgeRatio fits A = beta*B (+ alpha) by ordinary least squares. All result
// fields are nil when n < 2 or B has zero variance. Intercept is nil when the
// intercept term is excluded.
func HedgeRatio(a, b []float64, includeIntercept bool) models.HedgeRatio {
	n := len(a)
	if n != len(b) || n < 2 {
		return models.HedgeRatio{}
	}

	if includeIntercept {
		return hedgeWithIntercept(a, b)
	}
	return hedgeThroughOrigin(a, b)
}

func hedgeWithIntercept(y, x []float64) models.HedgeRatio {
	n := float64(len(y))
	mx, my := mean(x), mean(y)
	var sxx, sxy, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxx += dx * dx
		sxy += dx * dy
		syy += dy * dy
	}
	if sxx == 0 {
		return models.HedgeRatio{}
	}

	beta := sxy / sxx
	alpha := my - beta*mx

	var sse float64
	for i := range x {
		r := y[i] - alpha - beta*x[i]
		sse += r * r
	}

	res := models.HedgeRatio{Beta: ptr(beta), Intercept: ptr(alpha)}
	if syy > 0 {
		res.RValue = ptr(sxy / math.Sqrt(sxx*syy))
	}
	df := n - 2
	if df > 0 {
		se := math.Sqrt(sse / df / sxx)
		res.Stderr = ptr(se)
		if se > 0 {
			res.PValue = ptr(tTestPValue(beta/se, df))
		}
	}
	return sanitizeHedge(res)
}

func hedgeThroughOrigin(y, x []float64) models.HedgeRatio {
	n := float64(len(y))
	var sxx, sxy, syy float64
	for i := range x {
		sxx += x[i] * x[i]
		sxy += x[i] * y[i]
		syy += y[i] * y[i]
	}
	if sxx == 0 || !hasVariance(x) {
		return models.HedgeRatio{}
	}

	beta := sxy / sxx
	var sse float64
	for i := range x {
		r := y[i] - beta*x[i]
		sse += r * r
	}

	res := models.HedgeRatio{Beta: ptr(beta)}
	if syy > 0 {
		// uncentered correlation for the through-origin fit
		res.RValue = ptr(sxy / math.Sqrt(sxx*syy))
	}
	df := n - 1
	if df > 0 {
		se := math.Sqrt(sse / df / sxx)
		res.Stderr = ptr(se)
		if se > 0 {
			res.PValue = ptr(tTestPValue(beta/se, df))
		}
	}
	return sanitizeHedge(res)
}

func hasVariance(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if x[i] != x[0] {
			return true
		}
	}
	return false
}

// Spread computes spread_i = a_i - beta*b_i - alpha over the aligned series.
// Returns nil when the hedge ratio is unavailable.
func Spread(a, b []float64, hedge models.HedgeRatio) []float64 {
	if hedge.Beta == nil || len(a) != len(b) {
		return nil
	}
	alpha := 0.0
	if hedge.Intercept != nil {
		alpha = *hedge.Intercept
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - *hedge.Beta*b[i] - alpha
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var s float64
	for _, x := range xs {
		s += x
	}
	return s / float64(len(xs))
}

func ptr(v float64) *float64 { return &v }
