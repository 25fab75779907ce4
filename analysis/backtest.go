package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sartorproj/pricearima/autoarima"
	"github.com/sartorproj/pricearima/report"
	"github.com/sartorproj/pricearima/timeseries"
)

const (
	minTestSize = 3
	maxTestSize = 30
)

// testSize is the number of trailing observations held out: the holdout
// share of n, at least one seasonal period, within [3, 30].
func testSize(n int, holdout float64, period int) int {
	size := int(float64(n) * holdout)
	if period > 1 {
		size = max(size, period)
	}
	return max(min(size, maxTestSize), minTestSize)
}

// backtest refits the selected order on the training prefix and scores its
// forecasts of the held-out tail. Errors are on the price scale.
func (a *Analyzer) backtest(ctx context.Context, res *autoarima.Result, work *timeseries.Series) (*report.BacktestReport, error) {
	n := work.Len()
	test := testSize(n, a.opts.Holdout, res.M)
	train := n - test
	if train < a.opts.MinObservations {
		return nil, fmt.Errorf("%d training observations left after holding out %d", train, test)
	}

	model, err := a.fitter.Fit(ctx, work.Slice(0, train), res.Order, res.Intercept)
	if err != nil {
		return nil, fmt.Errorf("refit %s: %w", res.Order, err)
	}
	predicted, err := model.Predict(test)
	if err != nil {
		return nil, err
	}

	actual := append([]float64(nil), work.Values[train:]...)
	if a.opts.LogTransform {
		expAll(actual)
		expAll(predicted)
	}

	rmse, mae, mape := forecastErrors(actual, predicted)
	return &report.BacktestReport{
		Train: train,
		Test:  test,
		RMSE:  rmse,
		MAE:   mae,
		MAPE:  mape,
	}, nil
}

// forecastErrors returns RMSE, MAE and MAPE (in percent). Zero actuals are
// left out of the MAPE sum.
func forecastErrors(actual, predicted []float64) (rmse, mae, mape float64) {
	n := min(len(actual), len(predicted))
	if n == 0 {
		return
	}
	actual, predicted = actual[:n], predicted[:n]

	rmse = floats.Distance(actual, predicted, 2) / math.Sqrt(float64(n))
	mae = floats.Distance(actual, predicted, 1) / float64(n)
	for i := 0; i < n; i++ {
		if actual[i] != 0 {
			mape += math.Abs(actual[i]-predicted[i]) / math.Abs(actual[i]) * 100
		}
	}
	return rmse, mae, mape / float64(n)
}
