package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sartorproj/pricearima/autoarima"
	"github.com/sartorproj/pricearima/stats"
)

type Config struct {
	Input        InputConfig        `mapstructure:"input"`
	Series       SeriesConfig       `mapstructure:"series"`
	Stationarity StationarityConfig `mapstructure:"stationarity"`
	Search       SearchConfig       `mapstructure:"search"`
	Forecast     ForecastConfig     `mapstructure:"forecast"`
	Output       OutputConfig       `mapstructure:"output"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

type InputConfig struct {
	File        string `mapstructure:"file"`         // Saved price history (CSV or JSON)
	Format      string `mapstructure:"format"`       // csv, json; empty picks by file extension
	ValueColumn string `mapstructure:"value_column"` // CSV price column (default: Close)
	DateColumn  string `mapstructure:"date_column"`  // CSV date column; empty picks Date/date/ds/timestamp
	DateFormat  string `mapstructure:"date_format"`
	IDColumn    string `mapstructure:"id_column"`   // CSV ticker column for multi-asset exports
	IDFilter    string `mapstructure:"id_filter"`   // Ticker to keep
	ValuesPath  string `mapstructure:"values_path"` // gjson path of the price array
	TimesPath   string `mapstructure:"times_path"`  // gjson path of the time array
}

type SeriesConfig struct {
	Name            string `mapstructure:"name"`
	MinObservations int    `mapstructure:"min_observations"`
	LogTransform    bool   `mapstructure:"log_transform"` // Model log prices
}

type StationarityConfig struct {
	Test         string  `mapstructure:"test"`       // adf, kpss (differencing order only)
	Regression   string  `mapstructure:"regression"` // n, c, ct
	Significance float64 `mapstructure:"significance"`
	Autolag      string  `mapstructure:"autolag"` // aic, bic, none
}

type SearchConfig struct {
	MaxP      int           `mapstructure:"max_p"`
	MaxD      int           `mapstructure:"max_d"`
	MaxQ      int           `mapstructure:"max_q"`
	MaxSP     int           `mapstructure:"max_sp"`
	MaxSD     int           `mapstructure:"max_sd"`
	MaxSQ     int           `mapstructure:"max_sq"`
	Seasonal  bool          `mapstructure:"seasonal"`
	Period    int           `mapstructure:"period"` // e.g. 5 for a trading week
	Stepwise  bool          `mapstructure:"stepwise"`
	Criterion string        `mapstructure:"criterion"` // aic, aicc, bic
	MaxFits   int           `mapstructure:"max_fits"`
	Workers   int           `mapstructure:"workers"` // 0 uses GOMAXPROCS
	Timeout   time.Duration `mapstructure:"timeout"` // 0 disables the deadline
	Trace     bool          `mapstructure:"trace"`
}

type ForecastConfig struct {
	Horizon    int     `mapstructure:"horizon"`
	Confidence float64 `mapstructure:"confidence"`
	Holdout    float64 `mapstructure:"holdout"` // Fraction held out for the backtest, 0 disables
}

type OutputConfig struct {
	Format      string `mapstructure:"format"`       // text, json, yaml
	Path        string `mapstructure:"path"`         // empty writes to stdout
	MetricsFile string `mapstructure:"metrics_file"` // Prometheus textfile; empty disables
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

func (c *Config) Validate() error {
	if err := c.Input.Validate(); err != nil {
		return fmt.Errorf("input config: %w", err)
	}

	if c.Series.MinObservations < 1 {
		return fmt.Errorf("series.min_observations must be at least 1")
	}

	switch c.Stationarity.Test {
	case stats.StationTestADF, stats.StationTestKPSS:
	default:
		return fmt.Errorf("stationarity.test must be one of: %s, %s", stats.StationTestADF, stats.StationTestKPSS)
	}

	if _, err := stats.ParseRegression(c.Stationarity.Regression); err != nil {
		return fmt.Errorf("stationarity config: %w", err)
	}

	switch c.Stationarity.Autolag {
	case "aic", "bic", "none":
	default:
		return fmt.Errorf("stationarity.autolag must be one of: aic, bic, none")
	}

	if err := c.AutoARIMA().Validate(); err != nil {
		return fmt.Errorf("search config: %w", err)
	}

	if c.Search.Timeout < 0 {
		return fmt.Errorf("search.timeout must not be negative")
	}

	if err := c.Forecast.Validate(); err != nil {
		return fmt.Errorf("forecast config: %w", err)
	}

	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func (c *InputConfig) Validate() error {
	switch c.Format {
	case "", "csv", "json":
	default:
		return fmt.Errorf("input.format must be 'csv' or 'json'")
	}

	if c.IDFilter != "" && c.IDColumn == "" {
		return fmt.Errorf("input.id_filter requires input.id_column")
	}

	return nil
}

// ResolvedFormat returns the input format, falling back to the file extension.
func (c *InputConfig) ResolvedFormat() string {
	if c.Format != "" {
		return c.Format
	}
	if strings.HasSuffix(strings.ToLower(c.File), ".json") {
		return "json"
	}
	return "csv"
}

func (c *ForecastConfig) Validate() error {
	if c.Horizon < 0 {
		return fmt.Errorf("forecast.horizon must not be negative")
	}

	if c.Confidence <= 0 || c.Confidence >= 1 {
		return fmt.Errorf("forecast.confidence must be in (0, 1)")
	}

	if c.Holdout < 0 || c.Holdout >= 1 {
		return fmt.Errorf("forecast.holdout must be in [0, 1)")
	}

	return nil
}

func (c *OutputConfig) Validate() error {
	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("output.format must be one of: text, json, yaml")
	}

	return nil
}

func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}

// AutoARIMA maps the search and stationarity settings onto an order search
// configuration.
func (c *Config) AutoARIMA() *autoarima.Config {
	return &autoarima.Config{
		MaxP:         c.Search.MaxP,
		MaxD:         c.Search.MaxD,
		MaxQ:         c.Search.MaxQ,
		MaxSP:        c.Search.MaxSP,
		MaxSD:        c.Search.MaxSD,
		MaxSQ:        c.Search.MaxSQ,
		Seasonal:     c.Search.Seasonal,
		SeasonalM:    c.Search.Period,
		Stepwise:     c.Search.Stepwise,
		Criterion:    c.Search.Criterion,
		Trace:        c.Search.Trace,
		StationTest:  c.Stationarity.Test,
		Regression:   c.Stationarity.Regression,
		Significance: c.Stationarity.Significance,
		MaxFits:      c.Search.MaxFits,
		Workers:      c.Search.Workers,
	}
}

// ADFOptions maps the stationarity settings onto the ADF test options.
func (c *Config) ADFOptions() stats.ADFOptions {
	reg, _ := stats.ParseRegression(c.Stationarity.Regression)
	opts := stats.DefaultADFOptions()
	opts.Regression = reg
	opts.Significance = c.Stationarity.Significance
	opts.Autolag = c.Stationarity.Autolag
	return opts
}
