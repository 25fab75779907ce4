package arima

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/sartorproj/pricearima/stats"
	"github.com/sartorproj/pricearima/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitAR1(t *testing.T) {
	series := simulateARMA(1, 500, []float64{0.7}, nil, 100)

	model, err := Fit(context.Background(), series, Order{P: 1}, true)
	require.NoError(t, err)

	require.Len(t, model.ARCoeffs, 1)
	assert.InDelta(t, 0.7, model.ARCoeffs[0], 0.1)
	assert.InDelta(t, 100, model.Intercept, 0.5)
	assert.InDelta(t, 1, model.Variance, 0.2)
	assert.Equal(t, 500, model.NObs)
	assert.Equal(t, 3, model.NParams)
	t.Logf("AR(1): phi=%.4f mu=%.4f sigma2=%.4f iters=%d", model.ARCoeffs[0], model.Intercept, model.Variance, model.Iterations)
}

func TestFitMA1(t *testing.T) {
	series := simulateARMA(2, 500, nil, []float64{0.5}, 0)

	model, err := Fit(context.Background(), series, Order{Q: 1}, false)
	require.NoError(t, err)

	require.Len(t, model.MACoeffs, 1)
	assert.InDelta(t, 0.5, model.MACoeffs[0], 0.15)
	assert.False(t, model.HasIntercept)
	assert.Zero(t, model.Intercept)
}

func TestFitARMA11(t *testing.T) {
	series := simulateARMA(3, 600, []float64{0.6}, []float64{0.3}, 0)

	model, err := Fit(context.Background(), series, Order{P: 1, Q: 1}, true)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, model.ARCoeffs[0], 0.15)
	assert.InDelta(t, 0.3, model.MACoeffs[0], 0.2)
	assert.Less(t, math.Abs(model.ARCoeffs[0]), 1.0)
	assert.Less(t, math.Abs(model.MACoeffs[0]), 1.0)
}

func TestFitSeasonalAR(t *testing.T) {
	// x_t = 0.6 x_{t-4} + e_t
	series := simulateARMA(4, 400, []float64{0, 0, 0, 0.6}, nil, 0)

	order := Order{SP: 1, M: 4}
	model, err := Fit(context.Background(), series, order, false)
	require.NoError(t, err)

	require.Len(t, model.SARCoeffs, 1)
	assert.InDelta(t, 0.6, model.SARCoeffs[0], 0.15)
	assert.True(t, model.Order.IsSeasonal())
}

func TestFitInformationCriteria(t *testing.T) {
	series := simulateARMA(5, 300, []float64{0.5}, nil, 10)

	model, err := Fit(context.Background(), series, Order{P: 1}, true)
	require.NoError(t, err)

	k := float64(model.NParams)
	n := float64(model.NObs)
	assert.InDelta(t, 2*k-2*model.LogLik, model.AIC, 1e-9)
	assert.InDelta(t, k*math.Log(n)-2*model.LogLik, model.BIC, 1e-9)
	assert.InDelta(t, model.AIC+2*k*(k+1)/(n-k-1), model.AICc, 1e-9)

	assert.Equal(t, model.AIC, model.Criterion("aic"))
	assert.Equal(t, model.BIC, model.Criterion("bic"))
	assert.Equal(t, model.AICc, model.Criterion("aicc"))
}

func TestFitIdempotent(t *testing.T) {
	series := simulateARMA(6, 300, []float64{0.4}, []float64{0.2}, 5)
	order := Order{P: 1, Q: 1}

	first, err := Fit(context.Background(), series, order, true)
	require.NoError(t, err)
	second, err := Fit(context.Background(), series, order, true)
	require.NoError(t, err)

	assert.Equal(t, first.Params(), second.Params())
	assert.Equal(t, first.AIC, second.AIC)
	assert.Equal(t, first.Variance, second.Variance)
}

func TestFitWhiteNoiseClosedForm(t *testing.T) {
	series := simulateARMA(7, 200, nil, nil, 3)

	model, err := Fit(context.Background(), series, Order{}, true)
	require.NoError(t, err)

	mean, variance := series.Mean(), 0.0
	for _, v := range series.Values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(series.Len())

	assert.InDelta(t, mean, model.Intercept, 1e-12)
	assert.InDelta(t, variance, model.Variance, 1e-9)
	assert.Zero(t, model.Iterations)

	n := float64(series.Len())
	expected := -0.5 * n * (math.Log(2*math.Pi*variance) + 1)
	assert.InDelta(t, expected, model.LogLik, 1e-6)
}

func TestFitRandomWalkWithDrift(t *testing.T) {
	series := cumulate(simulateARMA(8, 300, nil, nil, 0), 100, 0.5)

	model, err := Fit(context.Background(), series, Order{D: 1}, true)
	require.NoError(t, err)

	diffs := series.Diff()
	assert.InDelta(t, diffs.Mean(), model.Intercept, 1e-9)
	assert.Equal(t, series.Len()-1, model.NObs)

	fitted := model.FittedValues()
	require.Len(t, fitted, series.Len())
	assert.True(t, math.IsNaN(fitted[0]))
	assert.InDelta(t, series.Values[1]-diffs.Values[0]+model.Intercept, fitted[1], 1e-9)
}

func TestFitOverparameterized(t *testing.T) {
	series := simulateARMA(9, 30, []float64{0.5}, nil, 0)

	_, err := Fit(context.Background(), series, Order{P: 2, Q: 1}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverparameterized)

	var fitErr *FitError
	require.True(t, errors.As(err, &fitErr))
	assert.Equal(t, 30, fitErr.NObs)
	assert.Equal(t, Order{P: 2, Q: 1}, fitErr.Order)
}

func TestFitTenObservations(t *testing.T) {
	series := timeseries.New([]float64{10, 12, 11, 13, 15, 14, 16, 18, 17, 19})

	_, err := Fit(context.Background(), series, Order{D: 1}, true)
	assert.NoError(t, err)

	_, err = Fit(context.Background(), series, Order{P: 1, D: 1}, true)
	assert.ErrorIs(t, err, ErrOverparameterized)
}

func TestFitNonConvergence(t *testing.T) {
	series := simulateARMA(10, 300, []float64{0.5}, []float64{0.4}, 0)

	est := DefaultEstimator()
	est.MaxIterations = 1

	_, err := est.Fit(context.Background(), series, Order{P: 1, Q: 1}, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNonConvergence)
}

func TestFitInvalidOrders(t *testing.T) {
	series := simulateARMA(11, 200, nil, nil, 0)

	tests := []struct {
		name      string
		order     Order
		intercept bool
	}{
		{"negative", Order{P: -1}, false},
		{"seasonal without period", Order{SP: 1}, false},
		{"intercept with d=2", Order{D: 2}, true},
		{"intercept with d+D=2", Order{D: 1, SD: 1, M: 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fit(context.Background(), series, tt.order, tt.intercept)
			assert.ErrorIs(t, err, ErrInvalidOrder)
		})
	}
}

func TestFitDegenerate(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = 5 + 0.25*float64(i)
	}

	_, err := Fit(context.Background(), timeseries.New(values), Order{P: 1, D: 1}, true)
	assert.ErrorIs(t, err, stats.ErrDegenerateSeries)
}

func TestFitContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fit(ctx, simulateARMA(12, 200, nil, nil, 0), Order{P: 1}, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFitErrorMessage(t *testing.T) {
	err := &FitError{Order: Order{P: 1, D: 1, Q: 2}, NObs: 50, Err: ErrNonConvergence}

	assert.Equal(t, "fit ARIMA(1,1,2) on 50 observations: arima: optimizer did not converge", err.Error())
	assert.ErrorIs(t, err, ErrNonConvergence)
}

func TestOrderString(t *testing.T) {
	assert.Equal(t, "ARIMA(2,1,0)", Order{P: 2, D: 1}.String())
	assert.Equal(t, "ARIMA(1,0,1)(0,1,1)[5]", Order{P: 1, Q: 1, SD: 1, SQ: 1, M: 5}.String())
	assert.Equal(t, 4, Order{P: 1, Q: 1, SP: 1, SQ: 1, M: 5}.NumCoeffs())
	assert.Equal(t, 2, Order{P: 1, Q: 1, SP: 1, SQ: 1}.NumCoeffs())
	assert.Equal(t, 6, Order{D: 1, SD: 1, M: 5}.Lost())
}
