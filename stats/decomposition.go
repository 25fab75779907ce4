package stats

import (
	"math"

	"github.com/sartorproj/pricearima/timeseries"
)

// DecompositionResult holds an additive classical decomposition
// Y = T + S + R. Trend and residual are NaN where the centred moving
// average is undefined.
type DecompositionResult struct {
	Trend    *timeseries.Series
	Seasonal *timeseries.Series
	Residual *timeseries.Series
	Period   int
}

// Decompose performs an additive classical decomposition with a centred
// moving-average trend. It returns nil when the series covers fewer than two
// full periods.
func Decompose(series *timeseries.Series, period int) *DecompositionResult {
	n := series.Len()
	if period < 2 || n < 2*period {
		return nil
	}

	trend := movingAverageTrend(series.Values, period)

	pattern := make([]float64, period)
	counts := make([]int, period)
	for i, v := range series.Values {
		if math.IsNaN(trend[i]) {
			continue
		}
		pattern[i%period] += v - trend[i]
		counts[i%period]++
	}

	mean := 0.0
	for i := range pattern {
		if counts[i] > 0 {
			pattern[i] /= float64(counts[i])
		}
		mean += pattern[i]
	}
	mean /= float64(period)

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i, v := range series.Values {
		seasonal[i] = pattern[i%period] - mean
		if math.IsNaN(trend[i]) {
			residual[i] = math.NaN()
			continue
		}
		residual[i] = v - trend[i] - seasonal[i]
	}

	return &DecompositionResult{
		Trend:    &timeseries.Series{Values: trend, Timestamps: series.Timestamps, Name: "trend"},
		Seasonal: &timeseries.Series{Values: seasonal, Timestamps: series.Timestamps, Name: "seasonal"},
		Residual: &timeseries.Series{Values: residual, Timestamps: series.Timestamps, Name: "residual"},
		Period:   period,
	}
}

// movingAverageTrend uses a 2xperiod MA for even periods and a simple
// centred MA for odd ones.
func movingAverageTrend(values []float64, period int) []float64 {
	n := len(values)
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}

	half := period / 2
	for i := half; i < n-half; i++ {
		sum := 0.0
		if period%2 == 0 {
			sum += 0.5 * (values[i-half] + values[i+half])
			for j := i - half + 1; j < i+half; j++ {
				sum += values[j]
			}
		} else {
			for j := i - half; j <= i+half; j++ {
				sum += values[j]
			}
		}
		trend[i] = sum / float64(period)
	}
	return trend
}
