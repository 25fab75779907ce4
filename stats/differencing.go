package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/sartorproj/pricearima/timeseries"
	"gonum.org/v1/gonum/stat"
)

// DefaultMaxD is the largest differencing order searched by default.
const DefaultMaxD = 2

// Names of the stationarity tests EstimateD can drive.
const (
	StationTestADF  = "adf"
	StationTestKPSS = "kpss"
)

// DiffOptions configures EstimateD.
type DiffOptions struct {
	MaxD         int    // < 0 selects DefaultMaxD
	Test         string // StationTestADF (default) or StationTestKPSS
	Regression   Regression
	Significance float64
}

// DefaultDiffOptions returns ADF with a constant at the 5% level, up to d=2.
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		MaxD:         DefaultMaxD,
		Test:         StationTestADF,
		Regression:   RegressionConstant,
		Significance: DefaultSignificance,
	}
}

// DiffCheck records the stationarity test run at one differencing level.
type DiffCheck struct {
	D         int     `json:"d" yaml:"d"`
	Test      string  `json:"test" yaml:"test"`
	Statistic float64 `json:"statistic" yaml:"statistic"`
	PValue    float64 `json:"p_value" yaml:"p_value"`
	Verdict   Verdict `json:"verdict" yaml:"verdict"`
	// Degenerate marks a differenced series that collapsed to a constant.
	Degenerate bool `json:"degenerate,omitempty" yaml:"degenerate,omitempty"`
}

// DiffResult is the selected differencing order and the tests that led to it.
type DiffResult struct {
	D      int
	Checks []DiffCheck
}

// EstimateD selects the number of first differences needed for
// stationarity. It tests d = 0, 1, ... in turn and stops at the first
// Stationary verdict or at MaxD; it never steps back down.
//
// A series that becomes constant after differencing is treated as
// stationary. A series too short to test at some d > 0 stops the search at
// that d. Errors at d = 0 are returned to the caller.
func EstimateD(series *timeseries.Series, opts DiffOptions) (*DiffResult, error) {
	if opts.MaxD < 0 {
		opts.MaxD = DefaultMaxD
	}
	if opts.Test == "" {
		opts.Test = StationTestADF
	}
	if opts.Test != StationTestADF && opts.Test != StationTestKPSS {
		return nil, fmt.Errorf("unknown stationarity test %q", opts.Test)
	}
	if opts.Significance <= 0 || opts.Significance >= 1 {
		opts.Significance = DefaultSignificance
	}

	res := &DiffResult{}
	current := series
	for d := 0; ; d++ {
		check, err := testLevel(current, d, opts)
		switch {
		case err == nil:
		case d > 0 && errors.Is(err, ErrDegenerateSeries):
			res.Checks = append(res.Checks, DiffCheck{D: d, Test: opts.Test, Verdict: Stationary, Degenerate: true})
			res.D = d
			return res, nil
		case d > 0 && errors.Is(err, timeseries.ErrInsufficientData):
			res.D = d
			return res, nil
		default:
			return nil, fmt.Errorf("stationarity test at d=%d: %w", d, err)
		}

		res.Checks = append(res.Checks, check)
		if check.Verdict == Stationary || d >= opts.MaxD {
			res.D = d
			return res, nil
		}
		current = current.Diff()
	}
}

func testLevel(series *timeseries.Series, d int, opts DiffOptions) (DiffCheck, error) {
	if opts.Test == StationTestKPSS {
		r, err := KPSS(series, opts.Regression, 0, opts.Significance)
		if err != nil {
			return DiffCheck{}, err
		}
		return DiffCheck{D: d, Test: StationTestKPSS, Statistic: r.Statistic, PValue: r.PValue, Verdict: r.Verdict}, nil
	}

	adfOpts := DefaultADFOptions()
	adfOpts.Regression = opts.Regression
	adfOpts.Significance = opts.Significance
	r, err := ADF(series, adfOpts)
	if err != nil {
		return DiffCheck{}, err
	}
	return DiffCheck{D: d, Test: StationTestADF, Statistic: r.Statistic, PValue: r.PValue, Verdict: r.Verdict}, nil
}

// NDiffs returns the number of first differences required for stationarity,
// or 0 when the series cannot be tested.
// testType can be "adf" (default) or "kpss".
func NDiffs(series *timeseries.Series, maxD int, testType string) int {
	opts := DefaultDiffOptions()
	if maxD > 0 {
		opts.MaxD = maxD
	}
	opts.Test = testType

	res, err := EstimateD(series, opts)
	if err != nil {
		return 0
	}
	return res.D
}

// NSDiffs determines the number of seasonal differences required.
// One seasonal difference is suggested while the seasonal strength F_S is at
// least 0.64. period is the seasonal period (e.g. 5 for weekly cycles in
// daily trading data).
func NSDiffs(series *timeseries.Series, period int, maxD int) int {
	if maxD <= 0 {
		maxD = 1
	}
	if period <= 1 || series.Len() < 2*period {
		return 0
	}

	current := series
	for d := 0; d < maxD; d++ {
		if SeasonalStrength(current, period) < 0.64 {
			return d
		}
		current = current.SeasonalDiff(period)
		if current.Len() < 2*period {
			return d + 1
		}
	}
	return maxD
}

// SeasonalStrength computes F_S = max(0, 1 - Var(R) / Var(S+R)).
func SeasonalStrength(series *timeseries.Series, period int) float64 {
	decomp := Decompose(series, period)
	if decomp == nil {
		return 0
	}

	var resid, seasonalResid []float64
	for i, r := range decomp.Residual.Values {
		if math.IsNaN(r) {
			continue
		}
		resid = append(resid, r)
		seasonalResid = append(seasonalResid, decomp.Seasonal.Values[i]+r)
	}
	if len(resid) < 2 {
		return 0
	}

	varSR := stat.Variance(seasonalResid, nil)
	if varSR == 0 {
		return 0
	}
	return math.Max(0, 1-stat.Variance(resid, nil)/varSR)
}

// InformationCriteria bundles the likelihood-based model selection criteria.
type InformationCriteria struct {
	AIC    float64
	AICc   float64
	BIC    float64
	LogLik float64
}

// CalculateIC computes AIC = 2k - 2LL, BIC = k ln(n) - 2LL and the small
// sample corrected AICc. AICc is +Inf when n - k - 1 <= 0.
func CalculateIC(logLik float64, nObs int, nParams int) *InformationCriteria {
	k := float64(nParams)
	n := float64(nObs)

	aic := -2*logLik + 2*k
	aicc := math.Inf(1)
	if n-k-1 > 0 {
		aicc = aic + 2*k*(k+1)/(n-k-1)
	}

	return &InformationCriteria{
		AIC:    aic,
		AICc:   aicc,
		BIC:    -2*logLik + k*math.Log(n),
		LogLik: logLik,
	}
}
