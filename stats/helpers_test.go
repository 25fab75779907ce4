package stats

import (
	"math/rand"

	"github.com/sartorproj/pricearima/timeseries"
)

func whiteNoise(seed int64, n int) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		values[i] = rng.NormFloat64()
	}
	return timeseries.New(values)
}

func randomWalk(seed int64, n int, drift float64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	level := 100.0
	for i := range values {
		level += drift + rng.NormFloat64()
		values[i] = level
	}
	return timeseries.New(values)
}

func linearTrend(seed int64, n int, slope float64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := range values {
		values[i] = slope*float64(i) + rng.NormFloat64()
	}
	return timeseries.New(values)
}

func ar1(seed int64, n int, phi float64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + rng.NormFloat64()
	}
	return timeseries.New(values)
}
