package autoarima

import (
	"github.com/sartorproj/pricearima/arima"
	"github.com/sartorproj/pricearima/stats"
)

// Result represents the result of auto ARIMA model selection.
type Result struct {
	Model *arima.Model
	Order arima.Order

	// Best parameters found
	P  int
	D  int
	Q  int
	SP int
	SD int
	SQ int
	M  int

	Intercept bool

	// Model metrics
	AIC           float64
	AICc          float64
	BIC           float64
	LogLik        float64
	Criterion     float64 // value of CriterionName for the chosen model
	CriterionName string

	// Search information
	ModelsEvaluated int // estimator calls
	ModelsFailed    int // failed calls plus candidates rejected before fitting
	Failures        []FitFailure
	StopReason      StopReason
	Differencing    *stats.DiffResult
	IsSeasonal      bool
}

// Degraded reports whether any candidate failed. The chosen model is still
// the best of those that fitted.
func (r *Result) Degraded() bool {
	return len(r.Failures) > 0
}

// Predict generates forecasts using the selected model.
func (r *Result) Predict(steps int) ([]float64, error) {
	return r.Model.Predict(steps)
}

// Forecast returns point forecasts with prediction intervals at the given
// confidence level.
func (r *Result) Forecast(steps int, confidence float64) (*arima.Forecast, error) {
	return r.Model.Forecast(steps, confidence)
}

// Residuals returns the model residuals.
func (r *Result) Residuals() []float64 {
	return r.Model.Residuals()
}
