// Package timeseries provides time series data structures and utilities.
//
// This package includes the Series type for representing price histories,
// the Clean preprocessing step that every analysis starts from, and
// loaders for saved CSV and JSON price files.
//
// # Creating a Series
//
//	values := []float64{100, 102, 105, 103, 108, 110}
//	series := timeseries.New(values)
//
// # Cleaning
//
// Clean drops missing observations and enforces a minimum length:
//
//	cleaned, err := timeseries.Clean(series, 20)
//	if errors.Is(err, timeseries.ErrInsufficientData) {
//	    // too few usable prices
//	}
//
// # Loading from CSV
//
//	opts := timeseries.DefaultCSVOptions() // Date,Open,High,Low,Close,...
//	opts.ValueColumn = "Adj Close"
//	series, err := timeseries.LoadCSV("AAPL.csv", opts)
//
// # Loading from JSON
//
//	opts := &timeseries.JSONOptions{
//	    ValuesPath: "chart.result.0.indicators.quote.0.close",
//	    TimesPath:  "chart.result.0.timestamp",
//	}
//	series, err := timeseries.LoadJSONFromReader(f, opts)
//
// # Transformations
//
//	diff := series.Diff()            // First difference
//	diff2 := series.DiffN(2)         // Second difference
//	sdiff := series.SeasonalDiff(5)  // Weekly seasonal difference on trading days
//	logged := series.Log()           // Natural log
package timeseries
