// Package pricearima analyses financial price series with ARIMA models.
//
// A run cleans the price history, tests it for a unit root with the
// Augmented Dickey-Fuller test, selects the differencing order, searches
// ARIMA (and optionally seasonal) orders by information criterion and
// reports the chosen model with diagnostics, a forecast and a holdout
// backtest.
//
// # Quick Start
//
// Load a saved price history and run the pipeline:
//
//	series, _ := timeseries.LoadCSV("spy.csv", nil)
//	a, _ := analysis.New(analysis.DefaultOptions(), zerolog.Nop())
//	rep, _ := a.Run(ctx, series)
//	rep.Write(os.Stdout, report.FormatText)
//
// Or use the pieces directly:
//
//	adf, _ := stats.ADF(series, stats.DefaultADFOptions())
//	engine, _ := autoarima.NewEngine(autoarima.DefaultConfig())
//	res, _ := engine.Search(ctx, series)
//	fc, _ := res.Forecast(10, 0.95)
//
// # Packages
//
//   - timeseries: price series, cleaning, CSV and JSON loaders
//   - stats: ADF and KPSS tests, differencing order selection, diagnostics
//   - arima: exact maximum likelihood ARIMA estimation and forecasting
//   - autoarima: stepwise and exhaustive order search
//   - report: report assembly and rendering
//   - metrics: Prometheus instrumentation of the order search
//   - analysis: the end-to-end pipeline
//
// The pricearima command in cmd/pricearima wraps the pipeline for saved
// price files.
//
// # References
//
//   - Hyndman, R.J., & Athanasopoulos, G. (2021). Forecasting: Principles and Practice
//   - Hyndman, R.J., & Khandakar, Y. (2008). Automatic time series forecasting: the forecast package for R
//   - MacKinnon, J.G. (2010). Critical values for cointegration tests
package pricearima
