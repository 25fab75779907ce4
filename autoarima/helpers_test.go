package autoarima

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sartorproj/pricearima/arima"
	"github.com/sartorproj/pricearima/timeseries"
)

func ar1(seed int64, n int, phi, mean float64) *timeseries.Series {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	x := 0.0
	for i := 0; i < n+100; i++ {
		x = phi*x + rng.NormFloat64()
		if i >= 100 {
			values[i-100] = mean + x
		}
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

// surfaceFitter scores candidates by a fixed function of the order without
// touching the data.
type surfaceFitter struct {
	score func(order arima.Order, intercept bool) float64
	after func(calls int)

	mu    sync.Mutex
	calls int
}

func (f *surfaceFitter) Fit(_ context.Context, _ *timeseries.Series, order arima.Order, intercept bool) (*arima.Model, error) {
	f.mu.Lock()
	f.calls++
	calls := f.calls
	f.mu.Unlock()
	if f.after != nil {
		f.after(calls)
	}

	v := f.score(order, intercept)
	return &arima.Model{Order: order, HasIntercept: intercept, AIC: v, AICc: v, BIC: v}, nil
}

type failingFitter struct{}

func (failingFitter) Fit(_ context.Context, series *timeseries.Series, order arima.Order, _ bool) (*arima.Model, error) {
	return nil, &arima.FitError{Order: order, NObs: series.Len(), Err: arima.ErrNonConvergence}
}

type countingObserver struct {
	mu       sync.Mutex
	fits     int
	failed   int
	searches int
	orders   []arima.Order
}

func (o *countingObserver) ObserveFit(order arima.Order, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fits++
	if err != nil {
		o.failed++
	}
	o.orders = append(o.orders, order)
}

func (o *countingObserver) ObserveSearch(_ *Result, _ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.searches++
}
