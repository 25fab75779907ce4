package stats

import (
	"math"
	"testing"

	"github.com/sartorproj/pricearima/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateD(t *testing.T) {
	tests := []struct {
		name       string
		series     *timeseries.Series
		regression Regression
		expected   int
	}{
		{"white noise", whiteNoise(11, 300), RegressionConstant, 0},
		{"random walk with drift", randomWalk(12, 300, 0.5), RegressionConstant, 1},
		{"trend with constant-only test", linearTrend(13, 200, 0.5), RegressionConstant, 1},
		{"trend with trend test", linearTrend(13, 200, 0.5), RegressionTrend, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultDiffOptions()
			opts.Regression = tt.regression

			res, err := EstimateD(tt.series, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.D)
			require.Len(t, res.Checks, tt.expected+1)

			last := res.Checks[len(res.Checks)-1]
			assert.Equal(t, Stationary, last.Verdict)
			for _, c := range res.Checks[:len(res.Checks)-1] {
				assert.Equal(t, NonStationary, c.Verdict)
			}
		})
	}
}

func TestEstimateDRandomWalkMajority(t *testing.T) {
	ones := 0
	for seed := int64(0); seed < 10; seed++ {
		res, err := EstimateD(randomWalk(500+seed, 250, 0), DefaultDiffOptions())
		require.NoError(t, err)
		if res.D == 1 {
			ones++
		}
	}
	assert.GreaterOrEqual(t, ones, 7)
}

func TestEstimateDRespectsMaxD(t *testing.T) {
	opts := DefaultDiffOptions()
	opts.MaxD = 0

	res, err := EstimateD(randomWalk(21, 200, 0.5), opts)
	require.NoError(t, err)
	assert.Equal(t, 0, res.D)
	assert.Len(t, res.Checks, 1)
}

func TestEstimateDMonotone(t *testing.T) {
	series := randomWalk(22, 300, 0.3)

	base, err := EstimateD(series, DefaultDiffOptions())
	require.NoError(t, err)

	for k := 1; k <= 2; k++ {
		res, err := EstimateD(series.DiffN(k), DefaultDiffOptions())
		require.NoError(t, err)
		assert.LessOrEqual(t, res.D, base.D, "after %d differences", k)
	}
}

func TestEstimateDConstantAfterDifferencing(t *testing.T) {
	values := make([]float64, 60)
	for i := range values {
		values[i] = 10 + 2*float64(i)
	}

	opts := DefaultDiffOptions()
	opts.Test = StationTestKPSS

	res, err := EstimateD(timeseries.New(values), opts)
	require.NoError(t, err)
	assert.Equal(t, 1, res.D)
	require.Len(t, res.Checks, 2)
	assert.True(t, res.Checks[1].Degenerate)
	assert.Equal(t, Stationary, res.Checks[1].Verdict)
}

func TestEstimateDErrors(t *testing.T) {
	_, err := EstimateD(timeseries.New(make([]float64, 40)), DefaultDiffOptions())
	assert.ErrorIs(t, err, ErrDegenerateSeries)

	opts := DefaultDiffOptions()
	opts.Test = "pp"
	_, err = EstimateD(whiteNoise(1, 50), opts)
	assert.Error(t, err)
}

func TestNDiffs(t *testing.T) {
	assert.Equal(t, 0, NDiffs(whiteNoise(31, 200), 2, "adf"))
	assert.Equal(t, 1, NDiffs(randomWalk(32, 300, 0.5), 2, ""))
	assert.Equal(t, 0, NDiffs(timeseries.New([]float64{1, 1, 1}), 2, "adf"))
}

func TestNSDiffs(t *testing.T) {
	period := 12
	values := make([]float64, 120)
	for i := range values {
		values[i] = 10 * math.Sin(2*math.Pi*float64(i)/float64(period))
	}
	seasonal := timeseries.New(values)

	assert.Equal(t, 1, NSDiffs(seasonal, period, 1))
	assert.Equal(t, 0, NSDiffs(whiteNoise(33, 120), period, 1))
	assert.Equal(t, 0, NSDiffs(seasonal, 1, 1))
	assert.Equal(t, 0, NSDiffs(timeseries.New(values[:15]), period, 1))
}

func TestSeasonalStrength(t *testing.T) {
	period := 5
	values := make([]float64, 100)
	pattern := []float64{3, -1, 0, 2, -4}
	noise := whiteNoise(34, 100).Values
	for i := range values {
		values[i] = pattern[i%period] + 0.1*noise[i]
	}

	assert.Greater(t, SeasonalStrength(timeseries.New(values), period), 0.9)
	assert.Less(t, SeasonalStrength(whiteNoise(35, 100), period), 0.64)
	assert.Zero(t, SeasonalStrength(timeseries.New(values[:6]), period))
}

func TestCalculateIC(t *testing.T) {
	ic := CalculateIC(-100, 100, 3)

	assert.InDelta(t, 206, ic.AIC, 1e-10)
	assert.InDelta(t, 206+2*3*4/96.0, ic.AICc, 1e-10)
	assert.InDelta(t, 200+3*math.Log(100), ic.BIC, 1e-10)
	assert.Equal(t, -100.0, ic.LogLik)

	assert.True(t, math.IsInf(CalculateIC(-10, 4, 3).AICc, 1))
}
