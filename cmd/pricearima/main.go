// Command pricearima analyses a saved daily price history: it tests the
// series for a unit root, selects a differencing order, searches ARIMA
// orders by information criterion and prints a report with a forecast and a
// holdout backtest.
//
// Usage:
//
//	pricearima [flags] prices.csv
//	pricearima -i quotes.json --criterion=bic --horizon=20 -f json
//
// Settings are read from a YAML config file (--config, or pricearima.yaml in
// the working directory), then PRICEARIMA_* environment variables, then
// flags. For example PRICEARIMA_SEARCH_MAX_P=3 sets search.max_p.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/sartorproj/pricearima/analysis"
	"github.com/sartorproj/pricearima/autoarima"
	"github.com/sartorproj/pricearima/internal/config"
	"github.com/sartorproj/pricearima/internal/logging"
	"github.com/sartorproj/pricearima/metrics"
	"github.com/sartorproj/pricearima/report"
	"github.com/sartorproj/pricearima/timeseries"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "pricearima:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("pricearima", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if *showVersion {
		fmt.Fprintln(stdout, "pricearima", version)
		return nil
	}
	if fs.NArg() > 0 && !fs.Changed("input") {
		if err := fs.Set("input", fs.Arg(0)); err != nil {
			return err
		}
	}

	configPath, _ := fs.GetString("config")
	cfg, err := config.Load(configPath, fs)
	if err != nil {
		return err
	}
	if cfg.Input.File == "" {
		return errors.New("no input file given")
	}

	logger, closer, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		return err
	}
	defer closer.Close()

	series, err := loadSeries(cfg)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Input.File, err)
	}
	logger.Info().
		Str("version", version).
		Str("file", cfg.Input.File).
		Str("series", series.Name).
		Int("rows", series.Len()).
		Msg("price history loaded")

	reg := prometheus.NewRegistry()
	m := metrics.New(reg, series.Name)

	analyzer, err := analysis.New(analysisOptions(cfg), logger, autoarima.WithObserver(m))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Search.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Search.Timeout)
		defer cancel()
	}

	rep, runErr := analyzer.Run(ctx, series)

	// Metrics are written even when the run failed.
	if cfg.Output.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.Output.MetricsFile, reg); err != nil {
			logger.Error().Err(err).Str("path", cfg.Output.MetricsFile).Msg("failed to write metrics")
		}
	}
	if runErr != nil {
		return runErr
	}

	return writeReport(rep, cfg.Output, stdout, logger)
}

func loadSeries(cfg *config.Config) (*timeseries.Series, error) {
	in := cfg.Input

	var (
		series *timeseries.Series
		err    error
	)
	switch in.ResolvedFormat() {
	case "json":
		opts := timeseries.DefaultJSONOptions()
		if in.ValuesPath != "" {
			opts.ValuesPath = in.ValuesPath
		}
		opts.TimesPath = in.TimesPath
		opts.TimeLayout = in.DateFormat
		series, err = timeseries.LoadJSON(in.File, opts)
	default:
		opts := timeseries.DefaultCSVOptions()
		if in.ValueColumn != "" {
			opts.ValueColumn = in.ValueColumn
		}
		if in.DateFormat != "" {
			opts.DateFormat = in.DateFormat
		}
		opts.DateColumn = in.DateColumn
		opts.IDColumn = in.IDColumn
		opts.IDFilter = in.IDFilter
		series, err = timeseries.LoadCSV(in.File, opts)
	}
	if err != nil {
		return nil, err
	}

	series.Name = seriesName(cfg)
	return series, nil
}

func seriesName(cfg *config.Config) string {
	switch {
	case cfg.Series.Name != "":
		return cfg.Series.Name
	case cfg.Input.IDFilter != "":
		return cfg.Input.IDFilter
	default:
		return cfg.Input.File
	}
}

func analysisOptions(cfg *config.Config) analysis.Options {
	return analysis.Options{
		MinObservations: cfg.Series.MinObservations,
		LogTransform:    cfg.Series.LogTransform,
		ADF:             cfg.ADFOptions(),
		Search:          cfg.AutoARIMA(),
		Horizon:         cfg.Forecast.Horizon,
		Confidence:      cfg.Forecast.Confidence,
		Holdout:         cfg.Forecast.Holdout,
	}
}

func writeReport(rep *report.Report, out config.OutputConfig, stdout io.Writer, logger zerolog.Logger) error {
	if out.Path == "" {
		return rep.Write(stdout, out.Format)
	}

	f, err := os.Create(out.Path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := rep.Write(f, out.Format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info().Str("path", out.Path).Str("format", out.Format).Msg("report written")
	return nil
}
