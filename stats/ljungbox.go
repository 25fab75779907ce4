package stats

import (
	"github.com/sartorproj/pricearima/timeseries"
	"gonum.org/v1/gonum/stat/distuv"
)

// LjungBoxResult represents the result of a Ljung-Box test.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int
}

// LjungBox performs the Ljung-Box portmanteau test on model residuals.
// The null hypothesis is no autocorrelation up to lag h; fitdf is the number
// of estimated ARMA coefficients and is subtracted from the degrees of freedom.
// It returns nil when the residual series is too short or constant.
func LjungBox(residuals *timeseries.Series, lags, fitdf int) *LjungBoxResult {
	n := residuals.Len()
	if n < 10 || lags < 1 {
		return nil
	}
	if lags >= n {
		lags = n - 1
	}

	acf := ACF(residuals, lags)
	if acf == nil {
		return nil
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += acf[k] * acf[k] / float64(n-k)
	}
	q *= float64(n) * float64(n+2)

	dof := lags - fitdf
	if dof < 1 {
		dof = 1
	}

	return &LjungBoxResult{
		Statistic: q,
		PValue:    distuv.ChiSquared{K: float64(dof)}.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}
}

// DurbinWatsonResult represents the result of a Durbin-Watson test.
type DurbinWatsonResult struct {
	// d ≈ 2: no autocorrelation
	// d < 2: positive autocorrelation
	// d > 2: negative autocorrelation
	Statistic float64
}

// DurbinWatson calculates the Durbin-Watson statistic for first-order autocorrelation.
func DurbinWatson(residuals []float64) *DurbinWatsonResult {
	n := len(residuals)
	if n < 2 {
		return nil
	}

	num, den := 0.0, 0.0
	for i := 1; i < n; i++ {
		d := residuals[i] - residuals[i-1]
		num += d * d
	}
	for _, r := range residuals {
		den += r * r
	}
	if den == 0 {
		return nil
	}

	return &DurbinWatsonResult{Statistic: num / den}
}
