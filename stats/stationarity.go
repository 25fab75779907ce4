package stats

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sartorproj/pricearima/timeseries"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSignificance is the p-value threshold used for stationarity verdicts.
const DefaultSignificance = 0.05

// ErrDegenerateSeries is returned when a series has (near) zero variance or
// its test regression is singular.
var ErrDegenerateSeries = errors.New("degenerate series")

// Regression selects the deterministic terms of a unit-root regression.
type Regression string

const (
	RegressionNone     Regression = "n"  // no deterministic terms
	RegressionConstant Regression = "c"  // constant only
	RegressionTrend    Regression = "ct" // constant and linear trend
)

// ParseRegression accepts the short codes and the long names
// "none", "constant" and "trend".
func ParseRegression(s string) (Regression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "nc", "none":
		return RegressionNone, nil
	case "", "c", "constant":
		return RegressionConstant, nil
	case "ct", "trend":
		return RegressionTrend, nil
	}
	return "", fmt.Errorf("unknown regression %q", s)
}

func (r Regression) trendTerms() int {
	switch r {
	case RegressionNone:
		return 0
	case RegressionTrend:
		return 2
	default:
		return 1
	}
}

// Verdict is the outcome of a stationarity test.
type Verdict int

const (
	NonStationary Verdict = iota
	Stationary
)

func (v Verdict) String() string {
	if v == Stationary {
		return "stationary"
	}
	return "non-stationary"
}

// MarshalText implements encoding.TextMarshaler.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ADFOptions configures the Augmented Dickey-Fuller test.
type ADFOptions struct {
	Regression   Regression
	MaxLag       int    // < 0 selects 12*(n/100)^(1/4)
	Autolag      string // "aic" (default), "bic" or "none" to use MaxLag as is
	Significance float64
}

// DefaultADFOptions returns the options used when none are given.
func DefaultADFOptions() ADFOptions {
	return ADFOptions{
		Regression:   RegressionConstant,
		MaxLag:       -1,
		Autolag:      "aic",
		Significance: DefaultSignificance,
	}
}

func (o *ADFOptions) normalize() {
	if o.Regression == "" {
		o.Regression = RegressionConstant
	}
	if o.Autolag == "" {
		o.Autolag = "aic"
	}
	if o.Significance <= 0 || o.Significance >= 1 {
		o.Significance = DefaultSignificance
	}
}

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	NObs         int
	Regression   Regression
	CriticalVals map[string]float64 // Critical values at 1%, 5%, 10%
	IC           float64            // Information criterion of the selected lag regression
	Significance float64
	Verdict      Verdict
}

// IsStationary reports whether the unit-root null was rejected.
func (r *ADFResult) IsStationary() bool {
	return r.Verdict == Stationary
}

// ADF performs the Augmented Dickey-Fuller test for a unit root.
// The null hypothesis is that the series has a unit root (is non-stationary);
// the verdict is Stationary when the p-value is below the significance level.
//
// The number of lagged differences is chosen by information criterion on a
// common sample and the regression is then re-run on all usable
// observations with the chosen lag.
func ADF(series *timeseries.Series, opts ADFOptions) (*ADFResult, error) {
	opts.normalize()
	x := series.Values
	n := len(x)
	ntrend := opts.Regression.trendTerms()

	if n < ntrend+4 {
		return nil, fmt.Errorf("%w: ADF needs at least %d observations, got %d",
			timeseries.ErrInsufficientData, ntrend+4, n)
	}
	if isDegenerate(x) {
		return nil, fmt.Errorf("%w: variance is numerically zero (n=%d)", ErrDegenerateSeries, n)
	}

	maxLag := opts.MaxLag
	if maxLag < 0 {
		maxLag = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if limit := n/2 - ntrend - 1; maxLag > limit {
		maxLag = limit
	}
	// Keep at least one residual degree of freedom.
	for maxLag > 0 && n-1-maxLag <= ntrend+1+maxLag {
		maxLag--
	}
	if maxLag < 0 {
		return nil, fmt.Errorf("%w: no lag order fits %d observations", timeseries.ErrInsufficientData, n)
	}

	dx := make([]float64, n-1)
	for i := range dx {
		dx[i] = x[i+1] - x[i]
	}

	usedLag := maxLag
	ic := math.NaN()
	if opts.Autolag != "none" {
		nobs := len(dx) - maxLag
		best := math.Inf(1)
		found := false
		for lag := 0; lag <= maxLag; lag++ {
			design, y := adfDesign(x, dx, lag, nobs, ntrend)
			fit, err := ols(design, y)
			if err != nil {
				continue
			}
			crit := fit.aic()
			if opts.Autolag == "bic" {
				crit = fit.bic()
			}
			if crit < best {
				best = crit
				usedLag = lag
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: no ADF lag regression could be estimated (n=%d)", ErrDegenerateSeries, n)
		}
		ic = best
	}

	nobs := len(dx) - usedLag
	design, y := adfDesign(x, dx, usedLag, nobs, ntrend)
	fit, err := ols(design, y)
	if err != nil {
		return nil, fmt.Errorf("adf regression with %d lags: %w", usedLag, err)
	}
	if math.IsNaN(ic) {
		ic = fit.aic()
	}

	tStat := fit.tValue(0)
	if math.IsNaN(tStat) || math.IsInf(tStat, 0) {
		return nil, fmt.Errorf("%w: undefined test statistic (n=%d)", ErrDegenerateSeries, n)
	}
	pValue := mackinnonPValue(tStat, opts.Regression)

	verdict := NonStationary
	if pValue < opts.Significance {
		verdict = Stationary
	}

	return &ADFResult{
		Statistic:    tStat,
		PValue:       pValue,
		Lags:         usedLag,
		NObs:         nobs,
		Regression:   opts.Regression,
		CriticalVals: mackinnonCriticalValues(opts.Regression, nobs),
		IC:           ic,
		Significance: opts.Significance,
		Verdict:      verdict,
	}, nil
}

// adfDesign builds the regression of dx on the lagged level, the
// deterministic terms and lag lagged differences, using the last nobs rows.
// Column 0 is always the lagged level.
func adfDesign(x, dx []float64, lags, nobs, ntrend int) (*mat.Dense, []float64) {
	start := len(dx) - nobs
	design := mat.NewDense(nobs, 1+ntrend+lags, nil)
	y := make([]float64, nobs)

	for i := 0; i < nobs; i++ {
		j := start + i
		y[i] = dx[j]
		design.Set(i, 0, x[j])
		col := 1
		if ntrend >= 1 {
			design.Set(i, col, 1)
			col++
		}
		if ntrend == 2 {
			design.Set(i, col, float64(i+1))
			col++
		}
		for l := 1; l <= lags; l++ {
			design.Set(i, col, dx[j-l])
			col++
		}
	}
	return design, y
}

func isDegenerate(x []float64) bool {
	if len(x) < 2 {
		return true
	}
	mean, std := stat.MeanStdDev(x, nil)
	return std <= 1e-10*math.Max(1, math.Abs(mean))
}

// MacKinnon (1994) response surface coefficients for a single series.
// Small-p coefficients apply at or below tauStar, large-p above it.
var mackinnonSurface = map[Regression]struct {
	tauMin, tauMax, tauStar float64
	smallP                  [3]float64
	largeP                  [4]float64
}{
	RegressionNone: {
		tauMin: -19.04, tauMax: math.Inf(1), tauStar: -1.04,
		smallP: [3]float64{0.6344, 1.2378, 3.2496e-2},
		largeP: [4]float64{0.4797, 9.3557e-1, -0.6999e-1, 3.3066e-2},
	},
	RegressionConstant: {
		tauMin: -18.83, tauMax: 2.74, tauStar: -1.61,
		smallP: [3]float64{2.1659, 1.4412, 3.8269e-2},
		largeP: [4]float64{1.7339, 9.3202e-1, -1.2745e-1, -1.0368e-2},
	},
	RegressionTrend: {
		tauMin: -16.18, tauMax: 0.7, tauStar: -2.89,
		smallP: [3]float64{3.2512, 1.6047, 4.9588e-2},
		largeP: [4]float64{2.5261, 6.1654e-1, -3.7956e-1, -6.0285e-2},
	},
}

// mackinnonPValue approximates the p-value of a Dickey-Fuller t statistic.
func mackinnonPValue(stat float64, regression Regression) float64 {
	s, ok := mackinnonSurface[regression]
	if !ok {
		s = mackinnonSurface[RegressionConstant]
	}

	switch {
	case stat > s.tauMax:
		return 1
	case stat < s.tauMin:
		return 0
	}

	var z float64
	if stat <= s.tauStar {
		z = s.smallP[0] + s.smallP[1]*stat + s.smallP[2]*stat*stat
	} else {
		z = s.largeP[0] + s.largeP[1]*stat + s.largeP[2]*stat*stat + s.largeP[3]*stat*stat*stat
	}
	return distuv.UnitNormal.CDF(z)
}

// MacKinnon (2010) finite-sample critical value surfaces:
// crit = b0 + b1/T + b2/T^2 + b3/T^3 at 1%, 5% and 10%.
var mackinnonCritical = map[Regression][3][4]float64{
	RegressionNone: {
		{-2.56574, -2.2358, -3.627, 0},
		{-1.94100, -0.2686, -3.365, 31.223},
		{-1.61682, 0.2656, -2.714, 25.364},
	},
	RegressionConstant: {
		{-3.43035, -6.5393, -16.786, -79.433},
		{-2.86154, -2.8903, -4.234, -40.040},
		{-2.56677, -1.5384, -2.809, 0},
	},
	RegressionTrend: {
		{-3.95877, -9.0531, -28.428, -134.155},
		{-3.41049, -4.3904, -9.036, -45.374},
		{-3.12705, -2.5856, -3.925, -22.380},
	},
}

func mackinnonCriticalValues(regression Regression, nobs int) map[string]float64 {
	table, ok := mackinnonCritical[regression]
	if !ok {
		table = mackinnonCritical[RegressionConstant]
	}
	inv := 1 / float64(nobs)
	levels := [3]string{"1%", "5%", "10%"}

	out := make(map[string]float64, len(levels))
	for i, b := range table {
		out[levels[i]] = b[0] + b[1]*inv + b[2]*inv*inv + b[3]*inv*inv*inv
	}
	return out
}

// KPSSResult represents the result of a KPSS test.
type KPSSResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	Regression   Regression
	CriticalVals map[string]float64
	Significance float64
	Verdict      Verdict
}

// IsStationary reports whether the stationarity null was kept.
func (r *KPSSResult) IsStationary() bool {
	return r.Verdict == Stationary
}

// KPSS critical values from Kwiatkowski et al. (1992), table 1.
var kpssTable = map[Regression][4]float64{
	RegressionConstant: {0.347, 0.463, 0.574, 0.739},
	RegressionTrend:    {0.119, 0.146, 0.176, 0.216},
}

var kpssPValues = [4]float64{0.10, 0.05, 0.025, 0.01}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test for stationarity.
// The null hypothesis is that the series is (level or trend) stationary, so
// the verdict is Stationary when the p-value is at least the significance
// level. P-values are interpolated in the published table and clipped to
// [0.01, 0.10].
func KPSS(series *timeseries.Series, regression Regression, nlags int, significance float64) (*KPSSResult, error) {
	n := series.Len()
	if n < 10 {
		return nil, fmt.Errorf("%w: KPSS needs at least 10 observations, got %d", timeseries.ErrInsufficientData, n)
	}
	if isDegenerate(series.Values) {
		return nil, fmt.Errorf("%w: variance is numerically zero (n=%d)", ErrDegenerateSeries, n)
	}
	if regression != RegressionTrend {
		regression = RegressionConstant
	}
	if significance <= 0 || significance >= 1 {
		significance = DefaultSignificance
	}
	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if nlags >= n {
		nlags = n - 1
	}

	residuals := make([]float64, n)
	if regression == RegressionTrend {
		t := make([]float64, n)
		for i := range t {
			t[i] = float64(i)
		}
		a, b := stat.LinearRegression(t, series.Values, nil, false)
		for i, v := range series.Values {
			residuals[i] = v - a - b*t[i]
		}
	} else {
		mean := series.Mean()
		for i, v := range series.Values {
			residuals[i] = v - mean
		}
	}

	// Long-run variance with Bartlett weights (Newey-West).
	s2 := 0.0
	for _, r := range residuals {
		s2 += r * r
	}
	s2 /= float64(n)
	for l := 1; l <= nlags; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += residuals[i] * residuals[i-l]
		}
		cov /= float64(n)
		s2 += 2 * (1 - float64(l)/float64(nlags+1)) * cov
	}
	if s2 <= 0 {
		return nil, fmt.Errorf("%w: non-positive long-run variance", ErrDegenerateSeries)
	}

	eta := 0.0
	cum := 0.0
	for _, r := range residuals {
		cum += r
		eta += cum * cum
	}
	kpssStat := eta / (float64(n) * float64(n) * s2)

	crit := kpssTable[regression]
	pValue := interpolatePValue(kpssStat, crit)

	verdict := NonStationary
	if pValue >= significance {
		verdict = Stationary
	}

	return &KPSSResult{
		Statistic:  kpssStat,
		PValue:     pValue,
		Lags:       nlags,
		Regression: regression,
		CriticalVals: map[string]float64{
			"10%":  crit[0],
			"5%":   crit[1],
			"2.5%": crit[2],
			"1%":   crit[3],
		},
		Significance: significance,
		Verdict:      verdict,
	}, nil
}

func interpolatePValue(stat float64, crit [4]float64) float64 {
	if stat <= crit[0] {
		return kpssPValues[0]
	}
	if stat >= crit[3] {
		return kpssPValues[3]
	}
	for i := 1; i < len(crit); i++ {
		if stat <= crit[i] {
			w := (stat - crit[i-1]) / (crit[i] - crit[i-1])
			return kpssPValues[i-1] + w*(kpssPValues[i]-kpssPValues[i-1])
		}
	}
	return kpssPValues[3]
}
