// Package metrics provides Prometheus instrumentation for the order search.
//
// Metrics exposed:
//   - pricearima_fit_seconds: Histogram of single model fit duration
//   - pricearima_fits_total: Counter of fits by outcome
//   - pricearima_search_seconds: Histogram of whole search duration
//   - pricearima_searches_total: Counter of searches by outcome
//   - pricearima_search_models_evaluated: Gauge of fits in the last search
//   - pricearima_selected_criterion: Gauge of the criterion value of the last selected model
//
// Metrics implements autoarima.Observer and is safe for concurrent use.
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sartorproj/pricearima/arima"
	"github.com/sartorproj/pricearima/autoarima"
	"github.com/sartorproj/pricearima/stats"
	"github.com/sartorproj/pricearima/timeseries"
)

// Outcome label values.
const (
	OutcomeOK                = "ok"
	OutcomeNonConvergence    = "non_convergence"
	OutcomeOverparameterized = "overparameterized"
	OutcomeInsufficientData  = "insufficient_data"
	OutcomeDegenerate        = "degenerate"
	OutcomeCanceled          = "canceled"
	OutcomeNoModel           = "no_model"
	OutcomeError             = "error"
)

// Metrics holds all Prometheus metrics for the order search.
type Metrics struct {
	FitSeconds            prometheus.Histogram
	FitsTotal             *prometheus.CounterVec
	SearchSeconds         prometheus.Histogram
	SearchesTotal         *prometheus.CounterVec
	SearchModelsEvaluated prometheus.Gauge
	SelectedCriterion     *prometheus.GaugeVec
}

// New creates the metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer, series string) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	labels := prometheus.Labels{"series": series}

	return &Metrics{
		FitSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "pricearima_fit_seconds",
			Help:        "Time spent fitting a single candidate model",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.0005, 4, 10),
		}),

		FitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "pricearima_fits_total",
			Help:        "Total number of candidate fits by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),

		SearchSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "pricearima_search_seconds",
			Help:        "Time spent selecting a model order",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),

		SearchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "pricearima_searches_total",
			Help:        "Total number of order searches by outcome",
			ConstLabels: labels,
		}, []string{"outcome"}),

		SearchModelsEvaluated: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "pricearima_search_models_evaluated",
			Help:        "Number of candidate fits in the last search",
			ConstLabels: labels,
		}),

		SelectedCriterion: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "pricearima_selected_criterion",
			Help:        "Information criterion of the last selected model",
			ConstLabels: labels,
		}, []string{"criterion"}),
	}
}

// ObserveFit records the duration and outcome of one candidate fit.
func (m *Metrics) ObserveFit(_ arima.Order, elapsed time.Duration, err error) {
	m.FitSeconds.Observe(elapsed.Seconds())
	m.FitsTotal.WithLabelValues(Outcome(err)).Inc()
}

// ObserveSearch records the duration and outcome of a search.
func (m *Metrics) ObserveSearch(result *autoarima.Result, elapsed time.Duration, err error) {
	m.SearchSeconds.Observe(elapsed.Seconds())
	m.SearchesTotal.WithLabelValues(Outcome(err)).Inc()
	if result == nil {
		return
	}
	m.SearchModelsEvaluated.Set(float64(result.ModelsEvaluated))
	m.SelectedCriterion.WithLabelValues(result.CriterionName).Set(result.Criterion)
}

// Outcome maps an error to its outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, autoarima.ErrNoModelFound):
		return OutcomeNoModel
	case errors.Is(err, arima.ErrNonConvergence):
		return OutcomeNonConvergence
	case errors.Is(err, arima.ErrOverparameterized):
		return OutcomeOverparameterized
	case errors.Is(err, timeseries.ErrInsufficientData):
		return OutcomeInsufficientData
	case errors.Is(err, stats.ErrDegenerateSeries):
		return OutcomeDegenerate
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
