// Package autoarima implements automatic ARIMA model selection.
//
// The differencing order d (and the seasonal order D for seasonal searches)
// is chosen once, up front, by repeated stationarity tests. The ARMA orders
// are then searched at that fixed d and ranked by an information criterion.
//
// # Basic Usage
//
//	result, err := autoarima.AutoARIMA(series, autoarima.DefaultConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Best model: %s, AIC: %.2f, fits: %d\n",
//	    result.Order, result.AIC, result.ModelsEvaluated)
//
//	forecasts, _ := result.Predict(10)
//
// # Engine
//
// An Engine adds cancellation, a logger, a custom estimator and an
// Observer for metrics:
//
//	engine, err := autoarima.NewEngine(cfg,
//	    autoarima.WithLogger(logger),
//	    autoarima.WithObserver(observer))
//	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
//	defer cancel()
//	result, err := engine.Search(ctx, series)
//
// When the context ends or Config.MaxFits is reached the best model found
// so far is returned and Result.StopReason says why. Candidates that fail
// to fit are kept in Result.Failures; only a search in which nothing fits
// fails, with an error matching ErrNoModelFound.
//
// # Search Methods
//
// Two search methods are available:
//   - Stepwise (default): the Hyndman-Khandakar neighborhood search. It
//     starts from a few seed models and moves to the best neighbor while
//     that strictly improves the criterion.
//   - Grid: exhaustive search over all combinations (set Stepwise=false).
//
// Ties on the criterion go to the model with fewer coefficients, then the
// smaller p, then the smaller seasonal P, then the model without intercept.
//
// Candidate fits within a round run concurrently on up to Config.Workers
// goroutines. The result does not depend on the number of workers.
package autoarima
