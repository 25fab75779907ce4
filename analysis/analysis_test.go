package analysis

import (
	"bytes"
	"context"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/pricearima/arima"
	"github.com/sartorproj/pricearima/autoarima"
	"github.com/sartorproj/pricearima/timeseries"
)

// dailyPrices builds a random walk with drift on consecutive business days
// starting Monday 2024-01-01.
func dailyPrices(t *testing.T, seed int64, n int, drift float64) *timeseries.Series {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	ts := make([]time.Time, n)
	level := 100.0
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range values {
		level += drift + rng.NormFloat64()
		values[i] = level
		ts[i] = day
		day = nextBusinessDay(day)
	}
	s, err := timeseries.NewWithTimestamps(ts, values)
	require.NoError(t, err)
	s.Name = "SPY"
	return s
}

func smallSearch() Options {
	opts := DefaultOptions()
	opts.Search.MaxP = 2
	opts.Search.MaxQ = 2
	opts.Horizon = 5
	return opts
}

type failingFitter struct{}

func (failingFitter) Fit(_ context.Context, series *timeseries.Series, order arima.Order, _ bool) (*arima.Model, error) {
	return nil, &arima.FitError{Order: order, NObs: series.Len(), Err: arima.ErrNonConvergence}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, timeseries.DefaultMinObservations, opts.MinObservations)
	assert.Equal(t, 10, opts.Horizon)
	assert.Equal(t, 0.95, opts.Confidence)
	assert.Equal(t, 0.2, opts.Holdout)
	require.NotNil(t, opts.Search)
	assert.NoError(t, opts.Search.Validate())
}

func TestNewRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
	}{
		{"negative horizon", func(o *Options) { o.Horizon = -1 }},
		{"confidence of one", func(o *Options) { o.Confidence = 1 }},
		{"holdout of one", func(o *Options) { o.Holdout = 1 }},
		{"bad search config", func(o *Options) { o.Search.Criterion = "hqic" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)
			_, err := New(opts, zerolog.Nop())
			assert.Error(t, err)
		})
	}
}

type countingFitter struct {
	mu    sync.Mutex
	calls int
}

func (f *countingFitter) Fit(ctx context.Context, series *timeseries.Series, order arima.Order, intercept bool) (*arima.Model, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return arima.DefaultEstimator().Fit(ctx, series, order, intercept)
}

func TestRunRandomWalk(t *testing.T) {
	series := dailyPrices(t, 2, 160, 0.5)

	a, err := New(smallSearch(), zerolog.Nop())
	require.NoError(t, err)

	rep, err := a.Run(context.Background(), series)
	require.NoError(t, err)

	_, err = uuid.Parse(rep.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "SPY", rep.Name)
	assert.Equal(t, 160, rep.Observations)
	assert.False(t, rep.GeneratedAt.IsZero())

	require.NotNil(t, rep.Stationarity)
	assert.GreaterOrEqual(t, rep.D, 1)
	require.NotNil(t, rep.Model)
	assert.Equal(t, rep.D, rep.Model.D)

	require.NotNil(t, rep.Search)
	assert.Positive(t, rep.Search.ModelsEvaluated)
	assert.Equal(t, "aic", rep.Search.Criterion)

	require.NotNil(t, rep.Forecast)
	require.Len(t, rep.Forecast.Mean, 5)
	require.Len(t, rep.Forecast.Dates, 5)
	last := series.Timestamps[series.Len()-1]
	for i, d := range rep.Forecast.Dates {
		assert.True(t, d.After(last))
		assert.NotEqual(t, time.Saturday, d.Weekday())
		assert.NotEqual(t, time.Sunday, d.Weekday())
		assert.LessOrEqual(t, rep.Forecast.Lower[i], rep.Forecast.Mean[i])
		assert.GreaterOrEqual(t, rep.Forecast.Upper[i], rep.Forecast.Mean[i])
	}

	require.NotNil(t, rep.Backtest)
	assert.Equal(t, 30, rep.Backtest.Test)
	assert.Equal(t, 130, rep.Backtest.Train)
	assert.Positive(t, rep.Backtest.RMSE)
	assert.False(t, math.IsNaN(rep.Backtest.MAPE))
	assert.LessOrEqual(t, rep.Backtest.MAE, rep.Backtest.RMSE)
}

func TestRunLogTransform(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := make([]float64, 120)
	logPrice := math.Log(50)
	for i := range values {
		logPrice += 0.001 + 0.01*rng.NormFloat64()
		values[i] = math.Exp(logPrice)
	}

	opts := smallSearch()
	opts.LogTransform = true
	a, err := New(opts, zerolog.Nop())
	require.NoError(t, err)

	rep, err := a.Run(context.Background(), timeseries.New(values))
	require.NoError(t, err)

	require.NotNil(t, rep.Forecast)
	assert.Empty(t, rep.Forecast.Dates)
	for i, m := range rep.Forecast.Mean {
		// Back on the price scale, near the last observed price.
		assert.InDelta(t, values[len(values)-1], m, 10)
		assert.Positive(t, rep.Forecast.Lower[i])
		assert.LessOrEqual(t, rep.Forecast.Lower[i], m)
		assert.GreaterOrEqual(t, rep.Forecast.Upper[i], m)
	}

	require.NotNil(t, rep.Backtest)
	assert.Less(t, rep.Backtest.MAE, 10.0)
}

func TestRunDisabledSections(t *testing.T) {
	opts := smallSearch()
	opts.Horizon = 0
	opts.Holdout = 0

	a, err := New(opts, zerolog.Nop())
	require.NoError(t, err)

	rep, err := a.Run(context.Background(), dailyPrices(t, 3, 60, 0))
	require.NoError(t, err)
	assert.NotNil(t, rep.Model)
	assert.Nil(t, rep.Forecast)
	assert.Nil(t, rep.Backtest)
}

func TestRunRejectsShortSeries(t *testing.T) {
	a, err := New(DefaultOptions(), zerolog.Nop())
	require.NoError(t, err)

	_, err = a.Run(context.Background(), timeseries.New([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}))
	assert.ErrorIs(t, err, timeseries.ErrInsufficientData)

	_, err = a.Run(context.Background(), nil)
	assert.ErrorIs(t, err, timeseries.ErrInsufficientData)
}

func TestRunLogTransformDropsNonPositivePrices(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		values[i] = float64(i - 10)
	}

	opts := DefaultOptions()
	opts.LogTransform = true
	a, err := New(opts, zerolog.Nop())
	require.NoError(t, err)

	_, err = a.Run(context.Background(), timeseries.New(values))
	require.Error(t, err)
	assert.ErrorIs(t, err, timeseries.ErrInsufficientData)
	assert.Contains(t, err.Error(), "log prices")
}

func TestRunSearchFailure(t *testing.T) {
	a, err := New(smallSearch(), zerolog.Nop(), autoarima.WithFitter(failingFitter{}))
	require.NoError(t, err)

	_, err = a.Run(context.Background(), dailyPrices(t, 4, 80, 0.2))
	require.Error(t, err)
	assert.ErrorIs(t, err, autoarima.ErrNoModelFound)

	var searchErr *autoarima.SearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, 80, searchErr.NObs)
}

func TestRunLogsStages(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	a, err := New(smallSearch(), logger)
	require.NoError(t, err)

	rep, err := a.Run(context.Background(), dailyPrices(t, 5, 80, 0.3))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"stationarity test"`)
	assert.Contains(t, out, `"message":"order search finished"`)
	assert.Contains(t, out, `"message":"analysis finished"`)
	assert.Contains(t, out, `"run_id":"`+rep.RunID+`"`)
	assert.Equal(t, 1, strings.Count(out, `"message":"analysis finished"`))
}

func TestRunBacktestUsesEngineFitter(t *testing.T) {
	series := dailyPrices(t, 4, 120, 0.2)
	fitter := &countingFitter{}

	a, err := New(smallSearch(), zerolog.Nop(), autoarima.WithFitter(fitter))
	require.NoError(t, err)

	rep, err := a.Run(context.Background(), series)
	require.NoError(t, err)
	require.NotNil(t, rep.Search)
	require.NotNil(t, rep.Backtest)

	// Every search candidate plus the backtest refit.
	assert.Equal(t, rep.Search.ModelsEvaluated+1, fitter.calls)
}
