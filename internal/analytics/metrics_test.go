package analytics

import (
	"math"
	"testing"
	"time"

	"PairPulse/internal/domain/models"
)

func TestHedgeRatioNoInterceptExact(t *testing.T) {
	a := []float64{2, 4, 6, 8}
	b := []float64{1, 2, 3, 4}
	h := HedgeRatio(a, b, false)
	if h.Beta == nil {
		t.Fatal("expected beta")
	}
	if *h.Beta != 2.0 {
		t.Fatalf("beta = %v, want exactly 2.0", *h.Beta)
	}
	if h.Intercept != nil {
		t.Fatalf("intercept must be nil without intercept term, got %v", *h.Intercept)
	}
}

func TestHedgeRatioWithInterceptExact(t *testing.T) {
	// a = 3*b + 5 exactly
	b := []float64{1, 2, 3, 4, 5}
	a := make([]float64, len(b))
	for i := range b {
		a[i] = 3*b[i] + 5
	}
	h := HedgeRatio(a, b, true)
	if h.Beta == nil || h.Intercept == nil {
		t.Fatal("expected beta and intercept")
	}
	if math.Abs(*h.Beta-3) > 1e-9 || math.Abs(*h.Intercept-5) > 1e-9 {
		t.Fatalf("got beta=%v intercept=%v", *h.Beta, *h.Intercept)
	}
	if h.RValue == nil || math.Abs(*h.RValue-1) > 1e-9 {
		t.Fatalf("expected rvalue 1, got %v", h.RValue)
	}
}

func TestHedgeRatioInsufficientData(t *testing.T) {
	if h := HedgeRatio([]float64{1}, []float64{1}, true); h.Beta != nil {
		t.Fatalf("expected nil beta for n<2, got %v", *h.Beta)
	}
}

func TestHedgeRatioZeroVariance(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{5, 5, 5, 5}
	if h := HedgeRatio(a, b, true); h.Beta != nil {
		t.Fatalf("expected nil beta for zero-variance B, got %v", *h.Beta)
	}
}

func TestSpread(t *testing.T) {
	beta, alpha := 2.0, 1.0
	h := models.HedgeRatio{Beta: &beta, Intercept: &alpha}
	s := Spread([]float64{10, 20}, []float64{4, 9}, h)
	if len(s) != 2 || s[0] != 1 || s[1] != 1 {
		t.Fatalf("spread = %v", s)
	}
}

func TestRollingZScoreNullBoundary(t *testing.T) {
	if z := LatestZScore([]float64{1.0}, 300); z != nil {
		t.Fatalf("expected nil z-score with <2 points, got %v", *z)
	}
	spread := []float64{1, 2, 3, 4, 5, 9}
	z := LatestZScore(spread, 300)
	if z == nil {
		t.Fatal("expected finite z-score")
	}
	if math.IsNaN(*z) || math.IsInf(*z, 0) {
		t.Fatalf("z-score not finite: %v", *z)
	}
	if *z <= 0 {
		t.Fatalf("last point above rolling mean must give positive z, got %v", *z)
	}
}

func TestRollingZScoreZeroStdev(t *testing.T) {
	spread := []float64{3, 3, 3, 3}
	if z := LatestZScore(spread, 4); z != nil {
		t.Fatalf("expected nil z on zero stdev, got %v", *z)
	}
}

func TestRollingZScoreWindowSlice(t *testing.T) {
	// window 3 at the last index covers {2, 4, 6}: mean 4, sample stdev 2
	zs := RollingZScore([]float64{100, 100, 2, 4, 6}, 3)
	got := zs[len(zs)-1]
	if got == nil {
		t.Fatal("expected z-score")
	}
	if math.Abs(*got-1) > 1e-9 {
		t.Fatalf("z = %v, want 1", *got)
	}
}

func TestRollingCorrelation(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{2, 4, 6, 8, 10}
	r := RollingCorrelation(a, b, 5)
	if r == nil || math.Abs(*r-1) > 1e-9 {
		t.Fatalf("correlation = %v, want 1", r)
	}

	inv := []float64{10, 8, 6, 4, 2}
	r = RollingCorrelation(a, inv, 5)
	if r == nil || math.Abs(*r+1) > 1e-9 {
		t.Fatalf("correlation = %v, want -1", r)
	}

	flat := []float64{7, 7, 7, 7, 7}
	if r = RollingCorrelation(a, flat, 5); r != nil {
		t.Fatalf("expected nil correlation on zero variance, got %v", *r)
	}
}

func TestADFTooFewObservations(t *testing.T) {
	series := make([]float64, ADFMinObservations-1)
	for i := range series {
		series[i] = float64(i % 3)
	}
	if res := ADF(series, -1); res != nil {
		t.Fatalf("expected nil below minimum sample, got %+v", res)
	}
}

func pseudoNoise(i int) float64 {
	v := math.Sin(float64(i)*12.9898+78.233) * 43758.5453
	return v - math.Floor(v) - 0.5
}

func TestADFStationarySeries(t *testing.T) {
	series := make([]float64, 200)
	for i := range series {
		series[i] = pseudoNoise(i)
	}
	res := ADF(series, -1)
	if res == nil {
		t.Fatal("expected ADF result")
	}
	crit, ok := res.CriticalValues["5%"]
	if !ok {
		t.Fatalf("missing 5%% critical value: %v", res.CriticalValues)
	}
	if res.Statistic >= crit {
		t.Fatalf("white noise should reject unit root: stat=%v crit=%v", res.Statistic, crit)
	}
	if res.PValue > 0.05 {
		t.Fatalf("pvalue = %v, want <= 0.05", res.PValue)
	}
	if res.NObs <= 0 || res.Lags < 0 {
		t.Fatalf("bad sample accounting: %+v", res)
	}
}

func TestADFTrendingSeries(t *testing.T) {
	series := make([]float64, 150)
	for i := range series {
		series[i] = 0.5*float64(i) + 0.1*pseudoNoise(i)
	}
	res := ADF(series, -1)
	if res == nil {
		t.Fatal("expected ADF result")
	}
	if res.PValue < 0.10 {
		t.Fatalf("trending series should not reject unit root: p=%v", res.PValue)
	}
}

func TestSanitizeSnapshot(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	beta := 1.5
	s := SanitizeSnapshot(models.AnalyticsSnapshot{
		HedgeRatio:         models.HedgeRatio{Beta: &beta, Stderr: &nan},
		LatestSpread:       &inf,
		LatestZScore:       &nan,
		RollingCorrelation: &beta,
		ADF:                &models.ADFResult{Statistic: nan, PValue: 0.5},
	})
	if s.LatestSpread != nil || s.LatestZScore != nil {
		t.Fatal("non-finite values must sanitize to nil")
	}
	if s.HedgeRatio.Stderr != nil {
		t.Fatal("NaN stderr must sanitize to nil")
	}
	if s.HedgeRatio.Beta == nil || *s.HedgeRatio.Beta != 1.5 {
		t.Fatal("finite beta must survive sanitation")
	}
	if s.ADF != nil {
		t.Fatal("NaN ADF statistic must drop the ADF block")
	}
	if s.RollingCorrelation == nil {
		t.Fatal("finite correlation must survive")
	}
}

func TestAlignTicks(t *testing.T) {
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	a := []models.Tick{
		{Symbol: "a", Ts: base, Price: 1},
		{Symbol: "a", Ts: base.Add(time.Second), Price: 2},
		{Symbol: "a", Ts: base.Add(10 * time.Second), Price: 3},
	}
	b := []models.Tick{
		{Symbol: "b", Ts: base.Add(100 * time.Millisecond), Price: 10},
		{Symbol: "b", Ts: base.Add(1100 * time.Millisecond), Price: 20},
	}
	pa, pb := AlignTicks(a, b)
	if len(pa) != 2 || len(pb) != 2 {
		t.Fatalf("expected 2 aligned pairs, got %d", len(pa))
	}
	if pa[0] != 1 || pb[0] != 10 || pa[1] != 2 || pb[1] != 20 {
		t.Fatalf("bad alignment: %v %v", pa, pb)
	}
}

func TestPairMetricsExactPair(t *testing.T) {
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	var ta, tb []models.Tick
	for i := 0; i < 50; i++ {
		ts := base.Add(time.Duration(i) * time.Second)
		pb := 100 + pseudoNoise(i)
		ta = append(ta, models.Tick{Symbol: "a", Ts: ts, Price: 2 * pb})
		tb = append(tb, models.Tick{Symbol: "b", Ts: ts, Price: pb})
	}
	snap := PairMetrics(ta, tb, PairParams{Window: 10, IncludeIntercept: false})
	if snap.HedgeRatio.Beta == nil {
		t.Fatal("expected beta")
	}
	if math.Abs(*snap.HedgeRatio.Beta-2) > 1e-9 {
		t.Fatalf("beta = %v, want 2", *snap.HedgeRatio.Beta)
	}
	// a - 2b is identically zero: zero stdev means null z-score, not Inf
	if snap.LatestZScore != nil {
		t.Fatalf("expected nil z-score for constant spread, got %v", *snap.LatestZScore)
	}
	if snap.LatestSpread == nil || math.Abs(*snap.LatestSpread) > 1e-9 {
		t.Fatalf("latest spread = %v, want 0", snap.LatestSpread)
	}
	if snap.RollingCorrelation == nil || math.Abs(*snap.RollingCorrelation-1) > 1e-9 {
		t.Fatalf("correlation = %v, want 1", snap.RollingCorrelation)
	}
}

func TestPairMetricsEmptyInput(t *testing.T) {
	snap := PairMetrics(nil, nil, PairParams{Window: 300, IncludeIntercept: true})
	if snap.HedgeRatio.Beta != nil || snap.LatestSpread != nil || snap.LatestZScore != nil {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}
