// Package stats provides the statistical tests behind order selection:
// unit-root and stationarity tests, differencing-order estimation,
// autocorrelation functions and residual diagnostics.
//
// # Stationarity Tests
//
//	// Augmented Dickey-Fuller: H0 is a unit root
//	adf, err := stats.ADF(series, stats.DefaultADFOptions())
//	fmt.Printf("ADF: stat=%.4f, p=%.4f, %s\n", adf.Statistic, adf.PValue, adf.Verdict)
//
//	// KPSS: H0 is stationarity
//	kpss, err := stats.KPSS(series, stats.RegressionConstant, 0, 0.05)
//
// ADF p-values follow MacKinnon's (1994) response surface and critical
// values the finite-sample surfaces of MacKinnon (2010).
//
// # Differencing
//
//	res, err := stats.EstimateD(series, stats.DefaultDiffOptions())
//	// res.D, res.Checks
//
//	sd := stats.NSDiffs(series, 5, 1)
//
// # Diagnostics
//
//	lb := stats.LjungBox(residuals, 10, p+q)
//	dw := stats.DurbinWatson(residuals.Values)
package stats
