// Package report assembles the outcome of a price series analysis into a
// Report and renders it as text, JSON or YAML.
package report

import (
	"math"
	"time"

	"github.com/sartorproj/pricearima/arima"
	"github.com/sartorproj/pricearima/autoarima"
	"github.com/sartorproj/pricearima/stats"
)

// Report is the presentation-ready summary of one analysis run.
type Report struct {
	RunID        string          `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Name         string          `json:"name,omitempty" yaml:"name,omitempty"`
	GeneratedAt  time.Time       `json:"generated_at" yaml:"generated_at"`
	Observations int             `json:"observations" yaml:"observations"`
	Stationarity *ADFReport      `json:"stationarity,omitempty" yaml:"stationarity,omitempty"`
	D            int             `json:"d" yaml:"d"`
	Model        *ModelReport    `json:"model" yaml:"model"`
	Diagnostics  *Diagnostics    `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Search       *SearchReport   `json:"search,omitempty" yaml:"search,omitempty"`
	Forecast     *ForecastReport `json:"forecast,omitempty" yaml:"forecast,omitempty"`
	Backtest     *BacktestReport `json:"backtest,omitempty" yaml:"backtest,omitempty"`
}

// ADFReport is the unit-root test on the cleaned price series.
type ADFReport struct {
	Statistic      float64            `json:"statistic" yaml:"statistic"`
	PValue         float64            `json:"p_value" yaml:"p_value"`
	Lags           int                `json:"lags" yaml:"lags"`
	NObs           int                `json:"n_obs" yaml:"n_obs"`
	Regression     string             `json:"regression" yaml:"regression"`
	CriticalValues map[string]float64 `json:"critical_values" yaml:"critical_values"`
	Significance   float64            `json:"significance" yaml:"significance"`
	Verdict        string             `json:"verdict" yaml:"verdict"`
}

// ModelReport describes the selected model.
type ModelReport struct {
	Order        string    `json:"order" yaml:"order"`
	P            int       `json:"p" yaml:"p"`
	D            int       `json:"d" yaml:"d"`
	Q            int       `json:"q" yaml:"q"`
	SP           int       `json:"seasonal_p,omitempty" yaml:"seasonal_p,omitempty"`
	SD           int       `json:"seasonal_d,omitempty" yaml:"seasonal_d,omitempty"`
	SQ           int       `json:"seasonal_q,omitempty" yaml:"seasonal_q,omitempty"`
	M            int       `json:"period,omitempty" yaml:"period,omitempty"`
	AR           []float64 `json:"ar" yaml:"ar"`
	MA           []float64 `json:"ma" yaml:"ma"`
	SAR          []float64 `json:"seasonal_ar,omitempty" yaml:"seasonal_ar,omitempty"`
	SMA          []float64 `json:"seasonal_ma,omitempty" yaml:"seasonal_ma,omitempty"`
	HasIntercept bool      `json:"has_intercept" yaml:"has_intercept"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Variance     float64   `json:"variance" yaml:"variance"`
	LogLik       float64   `json:"log_likelihood" yaml:"log_likelihood"`
	AIC          float64   `json:"aic" yaml:"aic"`
	AICc         *float64  `json:"aicc,omitempty" yaml:"aicc,omitempty"`
	BIC          float64   `json:"bic" yaml:"bic"`
	NObs         int       `json:"n_obs" yaml:"n_obs"`
	NParams      int       `json:"n_params" yaml:"n_params"`
	Iterations   int       `json:"iterations" yaml:"iterations"`
}

// Diagnostics are residual checks of the selected model.
type Diagnostics struct {
	LjungBox     *LjungBox `json:"ljung_box,omitempty" yaml:"ljung_box,omitempty"`
	DurbinWatson *float64  `json:"durbin_watson,omitempty" yaml:"durbin_watson,omitempty"`
}

// LjungBox is the portmanteau test on the residuals.
type LjungBox struct {
	Statistic  float64 `json:"statistic" yaml:"statistic"`
	PValue     float64 `json:"p_value" yaml:"p_value"`
	Lags       int     `json:"lags" yaml:"lags"`
	WhiteNoise bool    `json:"white_noise" yaml:"white_noise"`
}

// SearchReport describes how the model was selected.
type SearchReport struct {
	Criterion       string            `json:"criterion" yaml:"criterion"`
	Value           *float64          `json:"value,omitempty" yaml:"value,omitempty"`
	ModelsEvaluated int               `json:"models_evaluated" yaml:"models_evaluated"`
	ModelsFailed    int               `json:"models_failed" yaml:"models_failed"`
	StopReason      string            `json:"stop_reason" yaml:"stop_reason"`
	Degraded        bool              `json:"degraded" yaml:"degraded"`
	Differencing    []stats.DiffCheck `json:"differencing,omitempty" yaml:"differencing,omitempty"`
	Failures        []Failure         `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Failure is a candidate that could not be fitted.
type Failure struct {
	Model     string `json:"model" yaml:"model"`
	Intercept bool   `json:"intercept" yaml:"intercept"`
	Error     string `json:"error" yaml:"error"`
}

// ForecastReport holds out-of-sample forecasts on the price scale.
type ForecastReport struct {
	Horizon    int         `json:"horizon" yaml:"horizon"`
	Confidence float64     `json:"confidence" yaml:"confidence"`
	Dates      []time.Time `json:"dates,omitempty" yaml:"dates,omitempty"`
	Mean       []float64   `json:"mean" yaml:"mean"`
	Lower      []float64   `json:"lower" yaml:"lower"`
	Upper      []float64   `json:"upper" yaml:"upper"`
}

// BacktestReport scores forecasts of a model refitted on a training prefix
// against the held-out tail.
type BacktestReport struct {
	Train int     `json:"train" yaml:"train"`
	Test  int     `json:"test" yaml:"test"`
	RMSE  float64 `json:"rmse" yaml:"rmse"`
	MAE   float64 `json:"mae" yaml:"mae"`
	MAPE  float64 `json:"mape" yaml:"mape"`
}

// Summarize assembles a report from the stationarity test on the raw
// series, the selected differencing order and the fitted model. adf may be
// nil when the test could not be run. It only copies values: residual
// diagnostics come from the model's fit, and GeneratedAt is left for the
// caller to stamp.
func Summarize(adf *stats.ADFResult, d int, model *arima.Model) *Report {
	r := &Report{D: d}
	if adf != nil {
		r.Stationarity = &ADFReport{
			Statistic:      adf.Statistic,
			PValue:         adf.PValue,
			Lags:           adf.Lags,
			NObs:           adf.NObs,
			Regression:     string(adf.Regression),
			CriticalValues: adf.CriticalVals,
			Significance:   adf.Significance,
			Verdict:        adf.Verdict.String(),
		}
	}
	if model == nil {
		return r
	}

	sum := model.Summary()
	r.Observations = sum.NObs
	r.Model = &ModelReport{
		Order:        model.Order.String(),
		P:            model.Order.P,
		D:            model.Order.D,
		Q:            model.Order.Q,
		SP:           model.Order.SP,
		SD:           model.Order.SD,
		SQ:           model.Order.SQ,
		M:            model.Order.M,
		AR:           nonNil(sum.ARCoeffs),
		MA:           nonNil(sum.MACoeffs),
		SAR:          sum.SARCoeffs,
		SMA:          sum.SMACoeffs,
		HasIntercept: sum.HasIntercept,
		Intercept:    sum.Intercept,
		Variance:     sum.Variance,
		LogLik:       sum.LogLik,
		AIC:          sum.AIC,
		AICc:         finite(sum.AICc),
		BIC:          sum.BIC,
		NObs:         model.NObs,
		NParams:      model.NParams,
		Iterations:   model.Iterations,
	}

	diag := &Diagnostics{}
	if lb := sum.LjungBox; lb != nil {
		diag.LjungBox = &LjungBox{
			Statistic:  lb.Statistic,
			PValue:     lb.PValue,
			Lags:       lb.Lags,
			WhiteNoise: lb.PValue >= stats.DefaultSignificance,
		}
	}
	if dw := sum.DurbinWatson; dw != nil {
		diag.DurbinWatson = finite(dw.Statistic)
	}
	if diag.LjungBox != nil || diag.DurbinWatson != nil {
		r.Diagnostics = diag
	}
	return r
}

// AttachSearch records how the model was selected.
func (r *Report) AttachSearch(res *autoarima.Result) {
	if res == nil {
		return
	}
	s := &SearchReport{
		Criterion:       res.CriterionName,
		Value:           finite(res.Criterion),
		ModelsEvaluated: res.ModelsEvaluated,
		ModelsFailed:    res.ModelsFailed,
		StopReason:      string(res.StopReason),
		Degraded:        res.Degraded(),
	}
	if res.Differencing != nil {
		s.Differencing = res.Differencing.Checks
	}
	for _, f := range res.Failures {
		s.Failures = append(s.Failures, Failure{
			Model:     f.Order.String(),
			Intercept: f.Intercept,
			Error:     f.Err.Error(),
		})
	}
	r.Search = s
}

// AttachForecast records a forecast. dates may be nil for index-only series.
func (r *Report) AttachForecast(fc *arima.Forecast, dates []time.Time) {
	if fc == nil {
		return
	}
	r.Forecast = &ForecastReport{
		Horizon:    len(fc.Mean),
		Confidence: fc.Confidence,
		Dates:      dates,
		Mean:       fc.Mean,
		Lower:      fc.Lower,
		Upper:      fc.Upper,
	}
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

// finite drops values that JSON cannot carry.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
