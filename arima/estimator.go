package arima

import (
	"context"
	"fmt"
	"math"

	"github.com/sartorproj/pricearima/stats"
	"github.com/sartorproj/pricearima/timeseries"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"
)

// penalty is returned by the objective for parameters the filter rejects.
const penalty = 1e10

// Estimator fits ARIMA models by exact Gaussian maximum likelihood. The
// likelihood is evaluated with a Kalman filter and maximized with
// Nelder-Mead over transformed parameters that keep the AR part stationary
// and the MA part invertible.
//
// An Estimator holds only configuration and is safe for concurrent use.
type Estimator struct {
	// MaxIterations caps optimizer iterations. Hitting the cap is reported
	// as ErrNonConvergence.
	MaxIterations int
	// Tolerance is the absolute and relative change in the objective below
	// which the optimizer is considered converged.
	Tolerance float64
	// SimplexSize is the edge length of the initial Nelder-Mead simplex.
	SimplexSize float64
}

// DefaultEstimator returns an Estimator with the settings used by Fit.
func DefaultEstimator() *Estimator {
	return &Estimator{
		MaxIterations: 5000,
		Tolerance:     1e-8,
		SimplexSize:   0.1,
	}
}

// Fit estimates order on series with the default Estimator.
func Fit(ctx context.Context, series *timeseries.Series, order Order, intercept bool) (*Model, error) {
	return DefaultEstimator().Fit(ctx, series, order, intercept)
}

// Fit estimates the coefficients of order on series. With intercept the
// differenced series has a free mean (a drift when d+D = 1); it is only
// allowed for d+D <= 1.
//
// Failures are returned as *FitError wrapping ErrOverparameterized,
// ErrNonConvergence, ErrInvalidOrder, timeseries.ErrInsufficientData,
// stats.ErrDegenerateSeries or the context error.
func (e *Estimator) Fit(ctx context.Context, series *timeseries.Series, order Order, intercept bool) (*Model, error) {
	n := series.Len()
	fail := func(err error) (*Model, error) {
		return nil, &FitError{Order: order, NObs: n, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if err := order.Validate(); err != nil {
		return fail(err)
	}
	if order.M <= 1 {
		order.SP, order.SD, order.SQ, order.M = 0, 0, 0, 0
	}
	if intercept && order.TotalDiff() > 1 {
		return fail(fmt.Errorf("%w: intercept with d+D=%d", ErrInvalidOrder, order.TotalDiff()))
	}
	if float64(order.NumCoeffs()) >= float64(n)/10 {
		return fail(fmt.Errorf("%w: %d coefficients for %d observations", ErrOverparameterized, order.NumCoeffs(), n))
	}

	data := append([]float64(nil), series.Values...)
	levels := differenceStack(data, order)
	w := levels[len(levels)-1]
	nParams := order.NumCoeffs() + 1
	if intercept {
		nParams++
	}
	if len(w) <= nParams {
		return fail(fmt.Errorf("%w: %d observations after differencing", timeseries.ErrInsufficientData, len(w)))
	}

	mean, sd := stat.MeanStdDev(w, nil)
	if !(sd > 1e-10*math.Max(1, math.Abs(mean))) {
		return fail(fmt.Errorf("%w: differenced series is constant", stats.ErrDegenerateSeries))
	}

	lik := &likelihood{order: order, intercept: intercept, w: w, mean: mean, sd: sd}
	x0 := lik.initial()

	// Without ARMA terms the likelihood is maximized at the sample mean.
	iterations := 0
	if order.NumCoeffs() > 0 {
		x, iters, err := e.minimize(ctx, lik, x0)
		if err != nil {
			return fail(err)
		}
		x0, iterations = x, iters
	}

	model, err := lik.model(x0)
	if err != nil {
		return fail(err)
	}
	model.Iterations = iterations
	model.data = data
	model.levels = levels
	model.diagnose()
	return model, nil
}

func (e *Estimator) minimize(ctx context.Context, lik *likelihood, x0 []float64) ([]float64, int, error) {
	maxIter := e.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultEstimator().MaxIterations
	}
	tol := e.Tolerance
	if tol <= 0 {
		tol = DefaultEstimator().Tolerance
	}
	simplex := e.SimplexSize
	if simplex <= 0 {
		simplex = DefaultEstimator().SimplexSize
	}

	problem := optimize.Problem{
		Func: lik.objective,
		Status: func() (optimize.Status, error) {
			if err := ctx.Err(); err != nil {
				return optimize.Failure, err
			}
			return optimize.NotTerminated, nil
		},
	}
	settings := &optimize.Settings{
		MajorIterations: maxIter,
		Converger: &optimize.FunctionConverge{
			Absolute:   tol,
			Relative:   tol,
			Iterations: 10*len(x0) + 20,
		},
	}

	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{SimplexSize: simplex})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, 0, ctxErr
	}
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNonConvergence, err)
	}

	switch result.Status {
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit, optimize.Failure:
		return nil, 0, fmt.Errorf("%w: %s after %d iterations", ErrNonConvergence, result.Status, result.MajorIterations)
	}
	if !(result.F < penalty/2) {
		return nil, 0, fmt.Errorf("%w: no admissible parameters found", ErrNonConvergence)
	}
	return result.X, result.MajorIterations, nil
}

// likelihood evaluates the concentrated exact log-likelihood of one order
// on a differenced series.
//
// The parameter vector is laid out as
// [AR raw (p), MA raw (q), SAR raw (P), SMA raw (Q), mean (if intercept)]
// where the mean is ybar + x*sd.
type likelihood struct {
	order     Order
	intercept bool
	w         []float64
	mean, sd  float64
}

type params struct {
	ar, ma, sar, sma []float64
	mu               float64
}

func (l *likelihood) unpack(x []float64) params {
	o := l.order
	i := 0
	next := func(k int) []float64 {
		s := x[i : i+k]
		i += k
		return s
	}

	var pr params
	pr.ar = partialsToCoeffs(next(o.P))
	pr.ma = maCoeffs(next(o.Q))
	pr.sar = partialsToCoeffs(next(o.SP))
	pr.sma = maCoeffs(next(o.SQ))
	if l.intercept {
		pr.mu = l.mean + x[i]*l.sd
	}
	return pr
}

// initial starts AR terms at the sample partial autocorrelations and
// everything else at zero.
func (l *likelihood) initial() []float64 {
	o := l.order
	size := o.NumCoeffs()
	if l.intercept {
		size++
	}
	x := make([]float64, size)

	if o.P > 0 {
		pacf := stats.PACF(timeseries.New(l.w), o.P)
		for k := 1; k < len(pacf) && k <= o.P; k++ {
			x[k-1] = partialToRaw(pacf[k])
		}
	}
	return x
}

func (l *likelihood) run(pr params, keepResid bool) (*stateSpace, filterResult, bool) {
	phi := expandAR(pr.ar, pr.sar, l.order.M)
	theta := expandMA(pr.ma, pr.sma, l.order.M)

	ss, err := newStateSpace(phi, theta)
	if err != nil {
		return nil, filterResult{}, false
	}

	y := make([]float64, len(l.w))
	for i, v := range l.w {
		y[i] = v - pr.mu
	}
	res, ok := ss.filter(y, keepResid)
	if !ok || res.nu == 0 || !(res.ssq > 0) {
		return nil, res, false
	}
	return ss, res, true
}

func (l *likelihood) objective(x []float64) float64 {
	_, res, ok := l.run(l.unpack(x), false)
	if !ok {
		return penalty
	}
	nu := float64(res.nu)
	v := 0.5*math.Log(res.ssq/nu) + 0.5*res.sumlog/nu
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return penalty
	}
	return v
}

func (l *likelihood) model(x []float64) (*Model, error) {
	pr := l.unpack(x)
	ss, res, ok := l.run(pr, true)
	if !ok {
		return nil, fmt.Errorf("%w: likelihood undefined at the optimum", ErrNonConvergence)
	}

	nu := float64(res.nu)
	sigma2 := res.ssq / nu
	logLik := -0.5 * (nu*math.Log(2*math.Pi*sigma2) + res.sumlog + nu)

	nParams := l.order.NumCoeffs() + 1
	if l.intercept {
		nParams++
	}
	ic := stats.CalculateIC(logLik, res.nu, nParams)

	return &Model{
		Order:        l.order,
		ARCoeffs:     pr.ar,
		MACoeffs:     pr.ma,
		SARCoeffs:    pr.sar,
		SMACoeffs:    pr.sma,
		Intercept:    pr.mu,
		HasIntercept: l.intercept,
		Variance:     sigma2,
		LogLik:       logLik,
		AIC:          ic.AIC,
		AICc:         ic.AICc,
		BIC:          ic.BIC,
		NObs:         res.nu,
		NParams:      nParams,
		params:       append([]float64(nil), x...),
		ss:           ss,
		state:        res.state,
		residuals:    res.resid,
	}, nil
}

// differenceStack returns the series after each differencing step: first
// the d ordinary differences, then the D seasonal ones. Element 0 is the
// input.
func differenceStack(values []float64, order Order) [][]float64 {
	levels := [][]float64{values}
	cur := timeseries.New(values)
	for i := 0; i < order.D; i++ {
		cur = cur.Diff()
		levels = append(levels, cur.Values)
	}
	for i := 0; i < order.SD; i++ {
		cur = cur.SeasonalDiff(order.M)
		levels = append(levels, cur.Values)
	}
	return levels
}
