package stats

import (
	"github.com/sartorproj/pricearima/timeseries"
	"gonum.org/v1/gonum/stat"
)

// ACF calculates the sample autocorrelation function for lags 0 to maxLag.
// It returns nil for constant series.
func ACF(series *timeseries.Series, maxLag int) []float64 {
	n := series.Len()
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := stat.Mean(series.Values, nil)
	denom := 0.0
	for _, v := range series.Values {
		d := v - mean
		denom += d * d
	}
	if denom == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (series.Values[i] - mean) * (series.Values[i-k] - mean)
		}
		acf[k] = sum / denom
	}
	return acf
}

// PACF calculates the partial autocorrelation function with the
// Durbin-Levinson recursion. Index 0 holds 1 and index k the lag-k value.
func PACF(series *timeseries.Series, maxLag int) []float64 {
	n := series.Len()
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 1 {
		return nil
	}

	acf := ACF(series, maxLag)
	if acf == nil {
		return nil
	}

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1

	prev := make([]float64, maxLag+1)
	cur := make([]float64, maxLag+1)
	prev[1] = acf[1]
	pacf[1] = acf[1]

	for k := 2; k <= maxLag; k++ {
		num := acf[k]
		den := 1.0
		for j := 1; j < k; j++ {
			num -= prev[j] * acf[k-j]
			den -= prev[j] * acf[j]
		}
		if den == 0 {
			break
		}

		cur[k] = num / den
		pacf[k] = cur[k]
		for j := 1; j < k; j++ {
			cur[j] = prev[j] - cur[k]*prev[k-j]
		}
		prev, cur = cur, prev
	}

	return pacf
}
