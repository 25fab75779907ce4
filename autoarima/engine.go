package autoarima

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sartorproj/pricearima/arima"
	"github.com/sartorproj/pricearima/stats"
	"github.com/sartorproj/pricearima/timeseries"
	"golang.org/x/sync/errgroup"
)

// Fitter fits one order. *arima.Estimator is the default implementation.
type Fitter interface {
	Fit(ctx context.Context, series *timeseries.Series, order arima.Order, intercept bool) (*arima.Model, error)
}

// Observer receives search events. ObserveFit is called from worker
// goroutines and must be safe for concurrent use.
type Observer interface {
	ObserveFit(order arima.Order, elapsed time.Duration, err error)
	ObserveSearch(result *Result, elapsed time.Duration, err error)
}

// StopReason tells why a search ended.
type StopReason string

const (
	StopConverged StopReason = "converged" // no neighbor improved on the best model
	StopExhausted StopReason = "exhausted" // every candidate was tried
	StopBudget    StopReason = "max_fits"  // Config.MaxFits was reached
	StopCanceled  StopReason = "canceled"
	StopDeadline  StopReason = "deadline"
)

// Option configures an Engine.
type Option func(*Engine)

// WithFitter replaces the default estimator.
func WithFitter(f Fitter) Option {
	return func(e *Engine) {
		e.fitter = f
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithObserver registers an observer for fit and search events.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// Engine runs order searches. It holds no state between searches and is
// safe for concurrent use.
type Engine struct {
	cfg      Config
	fitter   Fitter
	logger   zerolog.Logger
	observer Observer
}

// NewEngine validates cfg and returns an Engine. A nil cfg selects
// DefaultConfig.
func NewEngine(cfg *Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("autoarima: %w", err)
	}
	e := &Engine{
		cfg:    *cfg,
		fitter: arima.DefaultEstimator(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// AutoARIMA automatically selects the best ARIMA or SARIMA model.
func AutoARIMA(series *timeseries.Series, config *Config) (*Result, error) {
	engine, err := NewEngine(config)
	if err != nil {
		return nil, err
	}
	return engine.Search(context.Background(), series)
}

// Fitter returns the estimator used for candidate fits.
func (e *Engine) Fitter() Fitter {
	return e.fitter
}

// Search selects the differencing orders once and then searches the ARMA
// orders at those fixed orders, stepwise or exhaustively.
//
// Candidates that fail to fit are recorded in Result.Failures. When the
// context ends or Config.MaxFits is reached the best model so far is
// returned. A search without any fitted candidate fails with a
// *SearchError matching ErrNoModelFound.
func (e *Engine) Search(ctx context.Context, series *timeseries.Series) (*Result, error) {
	start := time.Now()
	res, err := e.search(ctx, series)
	elapsed := time.Since(start)

	if e.observer != nil {
		e.observer.ObserveSearch(res, elapsed, err)
	}
	if err != nil {
		e.logger.Warn().Err(err).Int("n", series.Len()).Dur("elapsed", elapsed).Msg("order search failed")
		return nil, err
	}
	e.logger.Info().
		Str("model", res.Order.String()).
		Bool("intercept", res.Intercept).
		Str("criterion", res.CriterionName).
		Float64("value", res.Criterion).
		Int("fits", res.ModelsEvaluated).
		Int("failed", res.ModelsFailed).
		Str("stop", string(res.StopReason)).
		Dur("elapsed", elapsed).
		Msg("order search finished")
	return res, nil
}

func (e *Engine) search(ctx context.Context, series *timeseries.Series) (*Result, error) {
	n := series.Len()
	if err := ctx.Err(); err != nil {
		return nil, &SearchError{NObs: n, Cause: err}
	}

	m, sd := 0, 0
	work := series
	if e.cfg.Seasonal {
		m = e.cfg.SeasonalM
		if e.cfg.MaxSD > 0 {
			sd = stats.NSDiffs(series, m, e.cfg.MaxSD)
		}
		for i := 0; i < sd; i++ {
			work = work.SeasonalDiff(m)
		}
	}

	diff, err := stats.EstimateD(work, e.cfg.diffOptions())
	if err != nil {
		return nil, fmt.Errorf("autoarima: select d: %w", err)
	}
	e.logger.Debug().Int("d", diff.D).Int("D", sd).Int("m", m).Msg("differencing selected")

	st := &searchState{
		engine: e,
		series: series,
		n:      n,
		d:      diff.D,
		sd:     sd,
		m:      m,
		space: space{
			maxP:      e.cfg.MaxP,
			maxQ:      e.cfg.MaxQ,
			maxSP:     e.cfg.MaxSP,
			maxSQ:     e.cfg.MaxSQ,
			seasonal:  m > 1,
			intercept: diff.D+sd <= 1,
		},
		visited: make(map[Candidate]bool),
	}
	if e.cfg.Stepwise {
		st.stepwise(ctx)
	} else {
		st.exhaustive(ctx)
	}

	if st.best == nil {
		serr := &SearchError{NObs: n, D: diff.D, Failures: st.failures}
		if st.stop == StopCanceled || st.stop == StopDeadline {
			serr.Cause = ctx.Err()
		}
		return nil, serr
	}
	return st.result(diff), nil
}

// searchState is owned by a single search. Workers only write their own
// slot of a round; everything else is touched by the search goroutine.
type searchState struct {
	engine *Engine
	series *timeseries.Series
	n      int
	d, sd  int
	m      int
	space  space

	visited  map[Candidate]bool
	best     *scored
	fits     int
	failures []FitFailure
	stop     StopReason
}

func (s *searchState) stepwise(ctx context.Context) {
	s.consider(s.evaluate(ctx, s.space.seeds()))
	for s.stop == "" {
		if s.interrupted(ctx) {
			return
		}
		if s.best == nil {
			s.stop = StopExhausted
			return
		}
		improved := s.consider(s.evaluate(ctx, s.space.neighbors(s.best.cand)))
		if s.stop == "" && !s.interrupted(ctx) && !improved {
			s.stop = StopConverged
		}
	}
}

func (s *searchState) exhaustive(ctx context.Context) {
	s.consider(s.evaluate(ctx, s.space.grid()))
	if s.stop == "" && !s.interrupted(ctx) {
		s.stop = StopExhausted
	}
}

// interrupted records the context error as the stop reason.
func (s *searchState) interrupted(ctx context.Context) bool {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		s.stop = StopDeadline
	case ctx.Err() != nil:
		s.stop = StopCanceled
	default:
		return false
	}
	return true
}

// consider adopts every result that ranks strictly ahead of the current
// best and reports whether the best changed.
func (s *searchState) consider(results []*scored) bool {
	improved := false
	for _, r := range results {
		if better(r, s.best) {
			s.best = r
			improved = true
		}
	}
	return improved
}

type outcome struct {
	ran     bool
	model   *arima.Model
	err     error
	elapsed time.Duration
}

// evaluate fits the unvisited candidates of one round concurrently and
// returns the successful ones in candidate order.
func (s *searchState) evaluate(ctx context.Context, cands []Candidate) []*scored {
	e := s.engine
	todo := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if s.visited[c] {
			continue
		}
		s.visited[c] = true
		order := c.order(s.d, s.sd, s.m)
		if float64(order.NumCoeffs()) >= float64(s.n)/10 {
			err := &arima.FitError{Order: order, NObs: s.n, Err: fmt.Errorf("%w: %d coefficients for %d observations",
				arima.ErrOverparameterized, order.NumCoeffs(), s.n)}
			s.failures = append(s.failures, FitFailure{Order: order, Intercept: c.Intercept, Err: err})
			continue
		}
		todo = append(todo, c)
	}
	if budget := e.cfg.MaxFits; budget > 0 && s.fits+len(todo) > budget {
		todo = todo[:budget-s.fits]
		s.stop = StopBudget
	}

	slots := make([]outcome, len(todo))
	var g errgroup.Group
	g.SetLimit(e.cfg.workers())
	for i, c := range todo {
		if ctx.Err() != nil {
			break
		}
		order := c.order(s.d, s.sd, s.m)
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			start := time.Now()
			model, err := e.fitter.Fit(ctx, s.series, order, c.Intercept)
			slots[i] = outcome{ran: true, model: model, err: err, elapsed: time.Since(start)}
			if e.observer != nil {
				e.observer.ObserveFit(order, slots[i].elapsed, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	var results []*scored
	for i, out := range slots {
		if !out.ran {
			continue
		}
		s.fits++
		c := todo[i]
		order := c.order(s.d, s.sd, s.m)
		if out.err == nil && out.model == nil {
			out.err = &arima.FitError{Order: order, NObs: s.n, Err: errors.New("fitter returned no model")}
		}
		if out.err != nil {
			s.failures = append(s.failures, FitFailure{Order: order, Intercept: c.Intercept, Err: out.err})
			if e.cfg.Trace {
				e.logger.Debug().Str("model", order.String()).Bool("intercept", c.Intercept).
					Err(out.err).Dur("elapsed", out.elapsed).Msg("fit failed")
			}
			continue
		}
		r := &scored{cand: c, model: out.model, score: out.model.Criterion(e.cfg.Criterion)}
		if e.cfg.Trace {
			e.logger.Debug().Str("model", order.String()).Bool("intercept", c.Intercept).
				Float64(e.cfg.Criterion, r.score).Dur("elapsed", out.elapsed).Msg("fit")
		}
		results = append(results, r)
	}
	return results
}

func (s *searchState) result(diff *stats.DiffResult) *Result {
	b := s.best
	order := b.cand.order(s.d, s.sd, s.m)
	return &Result{
		Model:           b.model,
		Order:           order,
		P:               order.P,
		D:               order.D,
		Q:               order.Q,
		SP:              order.SP,
		SD:              order.SD,
		SQ:              order.SQ,
		M:               order.M,
		Intercept:       b.cand.Intercept,
		AIC:             b.model.AIC,
		AICc:            b.model.AICc,
		BIC:             b.model.BIC,
		LogLik:          b.model.LogLik,
		Criterion:       b.score,
		CriterionName:   s.engine.cfg.Criterion,
		ModelsEvaluated: s.fits,
		ModelsFailed:    len(s.failures),
		Failures:        s.failures,
		StopReason:      s.stop,
		Differencing:    diff,
		IsSeasonal:      order.IsSeasonal(),
	}
}
