package analytics

import "math"

// RollingZScore returns the rolling z-score of the spread at window w. Entry
// i covers the trailing slice [max(0, i-w+1) .. i]; it is nil when the slice
// has fewer than 2 points or zero sample standard deviation.
func RollingZScore(spread []float64, w int) []*float64 {
	if w < 2 {
		w = 2
	}
	out := make([]*float64, len(spread))
	for i := range spread {
		lo := i - w + 1
		if lo < 0 {
			lo = 0
		}
		win := spread[lo : i+1]
		if len(win) < 2 {
			continue
		}
		mu := mean(win)
		sd := sampleStd(win, mu)
		if sd == 0 || math.IsNaN(sd) {
			continue
		}
		z := (spread[i] - mu) / sd
		if !math.IsInf(z, 0) && !math.IsNaN(z) {
			out[i] = ptr(z)
		}
	}
	return out
}

// LatestZScore is the rolling z-score at the last index, nil when it could
// not be computed there.
func LatestZScore(spread []float64, w int) *float64 {
	zs := RollingZScore(spread, w)
	if len(zs) == 0 {
		return nil
	}
	return zs[len(zs)-1]
}

// RollingCorrelation is the Pearson correlation of a and b over the trailing
// w points ending at the last index. Nil when fewer than 2 points overlap or
// either window has zero variance.
func RollingCorrelation(a, b []float64, w int) *float64 {
	n := len(a)
	if n != len(b) || n < 2 {
		return nil
	}
	lo := n - w
	if lo < 0 {
		lo = 0
	}
	return pearson(a[lo:], b[lo:])
}

func pearson(x, y []float64) *float64 {
	if len(x) != len(y) || len(x) < 2 {
		return nil
	}
	mx, my := mean(x), mean(y)
	var sxx, syy, sxy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	if sxx == 0 || syy == 0 {
		return nil
	}
	r := sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return nil
	}
	return ptr(r)
}

func sampleStd(xs []float64, mu float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var ss float64
	for _, x := range xs {
		d := x - mu
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}
