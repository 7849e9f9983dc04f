package analytics

import (
	"math"

	"PairPulse/internal/domain/models"
)

// ADFMinObservations is the smallest spread sample the test accepts. Below
// this the result is nil rather than a number nobody should trust.
const ADFMinObservations = 20

// ADF runs an Augmented Dickey-Fuller test (constant, no trend) on the
// series. Lag order is chosen by AIC up to the Schwert rule-of-thumb maximum
// when maxLag < 0. Returns nil when the sample is too small or the
// regression cannot be fit.
func ADF(series []float64, maxLag int) *models.ADFResult {
	y := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			y = append(y, v)
		}
	}
	n := len(y)
	if n < ADFMinObservations {
		return nil
	}

	if maxLag < 0 {
		// Schwert (1989): floor(12 * (n/100)^(1/4))
		maxLag = int(math.Floor(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if cap := n/2 - 2; maxLag > cap {
		maxLag = cap
	}
	if maxLag < 0 {
		maxLag = 0
	}

	// lag selection by AIC over a common sample so fits are comparable
	bestLag, bestAIC := 0, math.Inf(1)
	for p := 0; p <= maxLag; p++ {
		fit := adfFit(y, p, maxLag)
		if fit == nil {
			continue
		}
		k := float64(p + 2)
		aic := float64(fit.n)*math.Log(fit.sse/float64(fit.n)) + 2*k
		if aic < bestAIC {
			bestAIC = aic
			bestLag = p
		}
	}

	// refit at the chosen lag on the full available sample
	fit := adfFit(y, bestLag, bestLag)
	if fit == nil || fit.seGamma == 0 {
		return nil
	}
	stat := fit.gamma / fit.seGamma
	if math.IsNaN(stat) || math.IsInf(stat, 0) {
		return nil
	}

	nobs := fit.n
	return &models.ADFResult{
		Statistic:      stat,
		PValue:         adfPValue(stat),
		Lags:           bestLag,
		NObs:           nobs,
		CriticalValues: adfCriticalValues(nobs),
	}
}

type adfRegression struct {
	gamma   float64
	seGamma float64
	sse     float64
	n       int
}

// adfFit regresses dy_t on [y_{t-1}, dy_{t-1}..dy_{t-p}, 1], discarding the
// first trim+1 observations so candidate lags share a sample.
func adfFit(y []float64, p, trim int) *adfRegression {
	dy := make([]float64, len(y)-1)
	for i := 1; i < len(y); i++ {
		dy[i-1] = y[i] - y[i-1]
	}
	start := trim // dy index of the first usable row
	rows := len(dy) - start
	k := p + 2
	if rows <= k {
		return nil
	}

	X := make([][]float64, rows)
	target := make([]float64, rows)
	for r := 0; r < rows; r++ {
		t := start + r
		row := make([]float64, k)
		row[0] = y[t] // y_{t-1} relative to dy[t]
		for i := 1; i <= p; i++ {
			row[i] = dy[t-i]
		}
		row[k-1] = 1
		X[r] = row
		target[r] = dy[t]
	}

	coef, invDiag0, sse, ok := olsMulti(X, target)
	if !ok {
		return nil
	}
	dof := float64(rows - k)
	if dof <= 0 {
		return nil
	}
	se := math.Sqrt(sse / dof * invDiag0)
	return &adfRegression{gamma: coef[0], seGamma: se, sse: sse, n: rows}
}

// olsMulti solves the normal equations for y = X*b and returns the
// coefficients, the (0,0) element of (X'X)^-1, and the residual sum of
// squares.
func olsMulti(X [][]float64, y []float64) (coef []float64, invDiag0, sse float64, ok bool) {
	rows := len(X)
	if rows == 0 {
		return nil, 0, 0, false
	}
	k := len(X[0])

	xtx := make([][]float64, k)
	xty := make([]float64, k)
	for i := 0; i < k; i++ {
		xtx[i] = make([]float64, k)
	}
	for r := 0; r < rows; r++ {
		for i := 0; i < k; i++ {
			xty[i] += X[r][i] * y[r]
			for j := i; j < k; j++ {
				xtx[i][j] += X[r][i] * X[r][j]
			}
		}
	}
	for i := 0; i < k; i++ {
		for j := 0; j < i; j++ {
			xtx[i][j] = xtx[j][i]
		}
	}

	coef, ok = solve(cloneMatrix(xtx), append([]float64(nil), xty...))
	if !ok {
		return nil, 0, 0, false
	}
	e0 := make([]float64, k)
	e0[0] = 1
	z, ok := solve(cloneMatrix(xtx), e0)
	if !ok {
		return nil, 0, 0, false
	}

	for r := 0; r < rows; r++ {
		pred := 0.0
		for i := 0; i < k; i++ {
			pred += X[r][i] * coef[i]
		}
		d := y[r] - pred
		sse += d * d
	}
	return coef, z[0], sse, true
}

// solve performs in-place Gaussian elimination with partial pivoting.
func solve(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]
		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}
	x := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		s := b[r]
		for c := r + 1; c < n; c++ {
			s -= a[r][c] * x[c]
		}
		x[r] = s / a[r][r]
	}
	return x, true
}

func cloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// adfCriticalValues evaluates the MacKinnon (2010) response surface for the
// constant-only regression at the given sample size.
func adfCriticalValues(n int) map[string]float64 {
	fn := float64(n)
	eval := func(b0, b1, b2, b3 float64) float64 {
		return b0 + b1/fn + b2/(fn*fn) + b3/(fn*fn*fn)
	}
	return map[string]float64{
		"1%":  eval(-3.43035, -6.5393, -16.786, -79.433),
		"5%":  eval(-2.86154, -2.8903, -4.234, -40.040),
		"10%": eval(-2.56677, -1.5384, -2.809, 0),
	}
}

// adfPValue maps the test statistic to an approximate p-value by linear
// interpolation over the asymptotic Dickey-Fuller tau quantiles for the
// constant-only case, clamped to [0.001, 0.999].
func adfPValue(stat float64) float64 {
	quantiles := []struct {
		p   float64
		tau float64
	}{
		{0.01, -3.43},
		{0.025, -3.12},
		{0.05, -2.86},
		{0.10, -2.57},
		{0.50, -1.57},
		{0.90, -0.44},
		{0.95, -0.07},
		{0.975, 0.23},
		{0.99, 0.60},
	}
	if stat <= quantiles[0].tau {
		return 0.001
	}
	last := quantiles[len(quantiles)-1]
	if stat >= last.tau {
		return 0.999
	}
	for i := 1; i < len(quantiles); i++ {
		lo, hi := quantiles[i-1], quantiles[i]
		if stat <= hi.tau {
			frac := (stat - lo.tau) / (hi.tau - lo.tau)
			return lo.p + frac*(hi.p-lo.p)
		}
	}
	return 0.999
}
