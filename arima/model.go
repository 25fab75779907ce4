package arima

import (
	"errors"
	"math"

	"github.com/sartorproj/pricearima/stats"
	"github.com/sartorproj/pricearima/timeseries"
	"gonum.org/v1/gonum/stat/distuv"
)

// Model is a fitted ARIMA model. It is immutable and safe for concurrent
// use once returned by Fit.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // phi
	MACoeffs  []float64 // theta
	SARCoeffs []float64 // seasonal Phi
	SMACoeffs []float64 // seasonal Theta
	// Intercept is the mean of the differenced series, i.e. a drift when
	// d+D = 1. It is zero when HasIntercept is false.
	Intercept    float64
	HasIntercept bool
	Variance     float64 // Innovation variance
	AIC          float64
	AICc         float64 // Corrected AIC for small sample sizes
	BIC          float64
	LogLik       float64
	NObs         int // Observations in the likelihood, after differencing
	NParams      int // Coefficients + intercept + variance
	Iterations   int // Optimizer iterations

	params    []float64
	ss        *stateSpace
	state     []float64
	residuals []float64
	data      []float64
	levels    [][]float64

	// Residual diagnostics, computed once at fit time.
	ljungBox     *stats.LjungBoxResult
	durbinWatson *stats.DurbinWatsonResult
}

// Criterion returns the named information criterion: "aic", "aicc" or "bic".
// Unknown names fall back to AIC.
func (m *Model) Criterion(name string) float64 {
	switch name {
	case "bic":
		return m.BIC
	case "aicc":
		return m.AICc
	default:
		return m.AIC
	}
}

// Params returns the optimizer's unconstrained parameter vector.
func (m *Model) Params() []float64 {
	return append([]float64(nil), m.params...)
}

// Residuals returns the one-step-ahead innovations on the differenced scale.
func (m *Model) Residuals() []float64 {
	return append([]float64(nil), m.residuals...)
}

// FittedValues returns one-step-ahead predictions on the original scale.
// The first observations consumed by differencing are NaN.
func (m *Model) FittedValues() []float64 {
	out := make([]float64, len(m.data))
	lost := len(m.data) - len(m.residuals)
	for i := range out {
		if i < lost {
			out[i] = math.NaN()
			continue
		}
		out[i] = m.data[i] - m.residuals[i-lost]
	}
	return out
}

// Forecast holds point forecasts and symmetric prediction intervals.
type Forecast struct {
	Mean       []float64 `json:"mean" yaml:"mean"`
	Lower      []float64 `json:"lower" yaml:"lower"`
	Upper      []float64 `json:"upper" yaml:"upper"`
	StdErr     []float64 `json:"std_err" yaml:"std_err"`
	Confidence float64   `json:"confidence" yaml:"confidence"`
}

// Forecast produces steps-ahead forecasts on the original scale with
// intervals at the given confidence level (e.g. 0.95).
func (m *Model) Forecast(steps int, confidence float64) (*Forecast, error) {
	if steps < 1 {
		return nil, errors.New("steps must be at least 1")
	}
	if confidence <= 0 || confidence >= 1 {
		return nil, errors.New("confidence must be in (0, 1)")
	}

	w := m.ss.predictState(m.state, steps)
	for i := range w {
		w[i] += m.Intercept
	}
	mean := m.integrate(w)

	// Intervals from the psi weights of the fully integrated process.
	ar := expandAR(m.ARCoeffs, m.SARCoeffs, m.Order.M)
	full := fromPoly(polyMul(arPoly(ar, 1), diffPoly(m.Order.D, m.Order.SD, m.Order.M)), -1)
	psi := psiWeights(full, expandMA(m.MACoeffs, m.SMACoeffs, m.Order.M), steps)

	z := distuv.UnitNormal.Quantile(0.5 + confidence/2)
	fc := &Forecast{
		Mean:       mean,
		Lower:      make([]float64, steps),
		Upper:      make([]float64, steps),
		StdErr:     make([]float64, steps),
		Confidence: confidence,
	}
	cum := 0.0
	for h := 0; h < steps; h++ {
		cum += psi[h] * psi[h]
		se := math.Sqrt(m.Variance * cum)
		fc.StdErr[h] = se
		fc.Lower[h] = mean[h] - z*se
		fc.Upper[h] = mean[h] + z*se
	}
	return fc, nil
}

// Predict returns point forecasts for the given number of steps.
func (m *Model) Predict(steps int) ([]float64, error) {
	fc, err := m.Forecast(steps, 0.95)
	if err != nil {
		return nil, err
	}
	return fc.Mean, nil
}

// integrate undoes the differencing steps in reverse order, extending each
// intermediate level with the forecasts of the next.
func (m *Model) integrate(forecasts []float64) []float64 {
	out := forecasts
	for k := len(m.levels) - 1; k >= 1; k-- {
		lag := 1
		if k > m.Order.D {
			lag = m.Order.M
		}
		history := m.levels[k-1]
		ext := append(append([]float64(nil), history...), make([]float64, len(out))...)
		n := len(history)
		for h, v := range out {
			ext[n+h] = ext[n+h-lag] + v
		}
		out = ext[n:]
	}
	return append([]float64(nil), out...)
}

// Summary returns a summary of the fitted model.
type Summary struct {
	Order        Order
	ARCoeffs     []float64
	MACoeffs     []float64
	SARCoeffs    []float64
	SMACoeffs    []float64
	Intercept    float64
	HasIntercept bool
	Variance     float64
	AIC          float64
	AICc         float64 // Corrected AIC
	BIC          float64
	LogLik       float64
	NObs         int
	LjungBox     *stats.LjungBoxResult
	DurbinWatson *stats.DurbinWatsonResult
}

// diagnose runs the residual tests reported by Summary.
func (m *Model) diagnose() {
	if len(m.residuals) == 0 {
		return
	}
	lags := min(10, len(m.residuals)/5)
	m.ljungBox = stats.LjungBox(timeseries.New(m.residuals), lags, m.Order.NumCoeffs())
	m.durbinWatson = stats.DurbinWatson(m.residuals)
}

// Summary returns a summary of the fitted model with the residual
// diagnostics computed at fit time. Slices and results are copies.
func (m *Model) Summary() *Summary {
	sum := &Summary{
		Order:        m.Order,
		ARCoeffs:     clone(m.ARCoeffs),
		MACoeffs:     clone(m.MACoeffs),
		SARCoeffs:    clone(m.SARCoeffs),
		SMACoeffs:    clone(m.SMACoeffs),
		Intercept:    m.Intercept,
		HasIntercept: m.HasIntercept,
		Variance:     m.Variance,
		AIC:          m.AIC,
		AICc:         m.AICc,
		BIC:          m.BIC,
		LogLik:       m.LogLik,
		NObs:         len(m.data),
	}
	if m.ljungBox != nil {
		lb := *m.ljungBox
		sum.LjungBox = &lb
	}
	if m.durbinWatson != nil {
		dw := *m.durbinWatson
		sum.DurbinWatson = &dw
	}
	return sum
}

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append(make([]float64, 0, len(v)), v...)
}
