// Package analysis runs the full price series pipeline: cleaning, the ADF
// stationarity test, the ARIMA order search, forecasting and a holdout
// backtest, and collects the outcome into a report.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sartorproj/pricearima/autoarima"
	"github.com/sartorproj/pricearima/report"
	"github.com/sartorproj/pricearima/stats"
	"github.com/sartorproj/pricearima/timeseries"
)

// Options controls one analysis run.
type Options struct {
	MinObservations int
	LogTransform    bool // model log prices; forecasts are mapped back to prices
	ADF             stats.ADFOptions
	Search          *autoarima.Config
	Horizon         int     // forecast steps, 0 disables the forecast
	Confidence      float64 // forecast interval level
	Holdout         float64 // share of the series held out for the backtest, 0 disables it
}

// DefaultOptions returns the options used by the command line tool when no
// configuration overrides them.
func DefaultOptions() Options {
	return Options{
		MinObservations: timeseries.DefaultMinObservations,
		ADF:             stats.DefaultADFOptions(),
		Search:          autoarima.DefaultConfig(),
		Horizon:         10,
		Confidence:      0.95,
		Holdout:         0.2,
	}
}

func (o *Options) validate() error {
	if o.Horizon < 0 {
		return errors.New("horizon must not be negative")
	}
	if o.Horizon > 0 && (o.Confidence <= 0 || o.Confidence >= 1) {
		return errors.New("confidence must be in (0, 1)")
	}
	if o.Holdout < 0 || o.Holdout >= 1 {
		return errors.New("holdout must be in [0, 1)")
	}
	return nil
}

// Analyzer runs the pipeline. It is safe for concurrent use.
type Analyzer struct {
	opts   Options
	engine *autoarima.Engine
	fitter autoarima.Fitter
	logger zerolog.Logger
}

// New builds an Analyzer. engineOpts are passed to the order search engine
// after the logger, so they may replace it.
func New(opts Options, logger zerolog.Logger, engineOpts ...autoarima.Option) (*Analyzer, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	engine, err := autoarima.NewEngine(opts.Search, append([]autoarima.Option{autoarima.WithLogger(logger)}, engineOpts...)...)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		opts:   opts,
		engine: engine,
		fitter: engine.Fitter(),
		logger: logger,
	}, nil
}

// Run analyses one price series. Only cleaning and the order search are
// fatal; a failed stationarity test, forecast or backtest is logged and the
// corresponding report section is left empty.
func (a *Analyzer) Run(ctx context.Context, series *timeseries.Series) (*report.Report, error) {
	start := time.Now()
	runID := uuid.NewString()

	name := ""
	if series != nil {
		name = series.Name
	}
	logger := a.logger.With().Str("run_id", runID).Str("series", name).Logger()

	work, err := a.prepare(series)
	if err != nil {
		logger.Error().Err(err).Msg("series rejected")
		return nil, err
	}
	logger.Debug().Int("observations", work.Len()).Bool("log", a.opts.LogTransform).Msg("series cleaned")

	adf, err := stats.ADF(work, a.opts.ADF)
	if err != nil {
		logger.Warn().Err(err).Msg("stationarity test failed")
		adf = nil
	} else {
		logger.Info().
			Float64("statistic", adf.Statistic).
			Float64("p_value", adf.PValue).
			Int("lags", adf.Lags).
			Stringer("verdict", adf.Verdict).
			Msg("stationarity test")
	}

	res, err := a.engine.Search(ctx, work)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}

	rep := report.Summarize(adf, res.D, res.Model)
	rep.RunID = runID
	rep.Name = name
	rep.GeneratedAt = start.UTC()
	rep.AttachSearch(res)

	if a.opts.Horizon > 0 {
		if err := a.forecast(rep, res, work); err != nil {
			logger.Warn().Err(err).Msg("forecast failed")
		}
	}

	if a.opts.Holdout > 0 {
		bt, err := a.backtest(ctx, res, work)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("backtest skipped")
		default:
			rep.Backtest = bt
			logger.Info().
				Int("test", bt.Test).
				Float64("rmse", bt.RMSE).
				Float64("mape", bt.MAPE).
				Msg("backtest")
		}
	}

	logger.Info().
		Str("order", res.Order.String()).
		Int("d", res.D).
		Dur("elapsed", time.Since(start)).
		Msg("analysis finished")
	return rep, nil
}

// prepare cleans the series and applies the log transform. Non-positive
// prices have no logarithm and are dropped with the other invalid values.
func (a *Analyzer) prepare(series *timeseries.Series) (*timeseries.Series, error) {
	work, err := timeseries.Clean(series, a.opts.MinObservations)
	if err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	if !a.opts.LogTransform {
		return work, nil
	}

	work, err = timeseries.Clean(work.Log(), a.opts.MinObservations)
	if err != nil {
		return nil, fmt.Errorf("analysis: log prices: %w", err)
	}
	return work, nil
}

func (a *Analyzer) forecast(rep *report.Report, res *autoarima.Result, work *timeseries.Series) error {
	fc, err := res.Forecast(a.opts.Horizon, a.opts.Confidence)
	if err != nil {
		return err
	}
	if a.opts.LogTransform {
		// Standard errors stay on the log scale.
		expAll(fc.Mean)
		expAll(fc.Lower)
		expAll(fc.Upper)
	}

	var dates []time.Time
	if work.HasTimestamps() {
		dates = forecastDates(work.Timestamps, a.opts.Horizon)
	}
	rep.AttachForecast(fc, dates)
	return nil
}

func expAll(v []float64) {
	for i := range v {
		v[i] = math.Exp(v[i])
	}
}
