// Package arima fits seasonal and non-seasonal ARIMA(p,d,q)(P,D,Q)[m]
// models by exact Gaussian maximum likelihood.
//
// The likelihood of the differenced series is computed with a Kalman filter
// on the Harvey state-space form, the innovation variance is concentrated
// out, and the remaining coefficients are found with Nelder-Mead over
// transformed parameters that keep the AR polynomial stationary and the MA
// polynomial invertible.
//
// # Basic Usage
//
//	order := arima.Order{P: 1, D: 1, Q: 1}
//	model, err := arima.Fit(ctx, series, order, true)
//	if err != nil {
//	    // *arima.FitError wrapping ErrNonConvergence, ErrOverparameterized, ...
//	}
//
//	fmt.Printf("AIC: %.2f, BIC: %.2f\n", model.AIC, model.BIC)
//	fc, _ := model.Forecast(10, 0.95)
//
// Orders with p+q+P+Q >= n/10 are rejected before fitting. An intercept is
// only estimated when d+D <= 1; with one difference it is the drift.
//
// For automatic order selection, use the autoarima package.
package arima
