package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sartorproj/pricearima/autoarima"
	"github.com/sartorproj/pricearima/timeseries"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PRICEARIMA_SEARCH_MAX_P.
const EnvPrefix = "PRICEARIMA"

// flagKeys maps command-line flags onto configuration keys.
var flagKeys = map[string]string{
	"input":        "input.file",
	"input-format": "input.format",
	"column":       "input.value_column",
	"ticker":       "input.id_filter",
	"name":         "series.name",
	"log-prices":   "series.log_transform",
	"test":         "stationarity.test",
	"regression":   "stationarity.regression",
	"max-p":        "search.max_p",
	"max-d":        "search.max_d",
	"max-q":        "search.max_q",
	"seasonal":     "search.seasonal",
	"period":       "search.period",
	"stepwise":     "search.stepwise",
	"criterion":    "search.criterion",
	"max-fits":     "search.max_fits",
	"workers":      "search.workers",
	"timeout":      "search.timeout",
	"trace":        "search.trace",
	"horizon":      "forecast.horizon",
	"holdout":      "forecast.holdout",
	"format":       "output.format",
	"output":       "output.path",
	"metrics-file": "output.metrics_file",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
}

// RegisterFlags adds the command-line overrides to fs. Flags left unset fall
// back to the config file, the environment and then the defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("config", "c", "", "path to config file")
	fs.StringP("input", "i", "", "price history file (CSV or JSON)")
	fs.String("input-format", "", "input format: csv or json")
	fs.String("column", "", "CSV price column")
	fs.String("ticker", "", "keep rows with this ticker (needs input.id_column)")
	fs.String("name", "", "series name used in the report")
	fs.Bool("log-prices", false, "model log prices")
	fs.String("test", "", "differencing test: adf or kpss")
	fs.String("regression", "", "ADF deterministic terms: n, c or ct")
	fs.Int("max-p", 0, "maximum AR order")
	fs.Int("max-d", 0, "maximum differencing order")
	fs.Int("max-q", 0, "maximum MA order")
	fs.Bool("seasonal", false, "search seasonal orders")
	fs.Int("period", 0, "seasonal period")
	fs.Bool("stepwise", true, "stepwise search instead of the full grid")
	fs.String("criterion", "", "selection criterion: aic, aicc or bic")
	fs.Int("max-fits", 0, "cap on model fits")
	fs.Int("workers", 0, "concurrent fits (0 uses GOMAXPROCS)")
	fs.Duration("timeout", 0, "search deadline")
	fs.Bool("trace", false, "log every candidate fit")
	fs.IntP("horizon", "n", 0, "forecast horizon")
	fs.Float64("holdout", 0, "fraction of the series held out for the backtest")
	fs.StringP("format", "f", "", "report format: text, json or yaml")
	fs.StringP("output", "o", "", "report path (default stdout)")
	fs.String("metrics-file", "", "write Prometheus metrics to this textfile")
	fs.String("log-level", "", "log level")
	fs.String("log-format", "", "log format: json or console")
}

// Load loads configuration from file, environment and flags, in increasing
// order of precedence. flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("pricearima")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return parseConfig(v)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("input.file", d.Input.File)
	v.SetDefault("input.format", d.Input.Format)
	v.SetDefault("input.value_column", d.Input.ValueColumn)
	v.SetDefault("input.date_column", d.Input.DateColumn)
	v.SetDefault("input.date_format", d.Input.DateFormat)
	v.SetDefault("input.id_column", d.Input.IDColumn)
	v.SetDefault("input.id_filter", d.Input.IDFilter)
	v.SetDefault("input.values_path", d.Input.ValuesPath)
	v.SetDefault("input.times_path", d.Input.TimesPath)

	v.SetDefault("series.name", d.Series.Name)
	v.SetDefault("series.min_observations", d.Series.MinObservations)
	v.SetDefault("series.log_transform", d.Series.LogTransform)

	v.SetDefault("stationarity.test", d.Stationarity.Test)
	v.SetDefault("stationarity.regression", d.Stationarity.Regression)
	v.SetDefault("stationarity.significance", d.Stationarity.Significance)
	v.SetDefault("stationarity.autolag", d.Stationarity.Autolag)

	v.SetDefault("search.max_p", d.Search.MaxP)
	v.SetDefault("search.max_d", d.Search.MaxD)
	v.SetDefault("search.max_q", d.Search.MaxQ)
	v.SetDefault("search.max_sp", d.Search.MaxSP)
	v.SetDefault("search.max_sd", d.Search.MaxSD)
	v.SetDefault("search.max_sq", d.Search.MaxSQ)
	v.SetDefault("search.seasonal", d.Search.Seasonal)
	v.SetDefault("search.period", d.Search.Period)
	v.SetDefault("search.stepwise", d.Search.Stepwise)
	v.SetDefault("search.criterion", d.Search.Criterion)
	v.SetDefault("search.max_fits", d.Search.MaxFits)
	v.SetDefault("search.workers", d.Search.Workers)
	v.SetDefault("search.timeout", d.Search.Timeout)
	v.SetDefault("search.trace", d.Search.Trace)

	v.SetDefault("forecast.horizon", d.Forecast.Horizon)
	v.SetDefault("forecast.confidence", d.Forecast.Confidence)
	v.SetDefault("forecast.holdout", d.Forecast.Holdout)

	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.metrics_file", d.Output.MetricsFile)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.time_format", d.Logging.TimeFormat)
}

func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	search := autoarima.DefaultConfig()
	return &Config{
		Input: InputConfig{
			ValueColumn: "Close",
			DateFormat:  "2006-01-02",
			ValuesPath:  "#.close",
			TimesPath:   "#.date",
		},
		Series: SeriesConfig{
			MinObservations: timeseries.DefaultMinObservations,
		},
		Stationarity: StationarityConfig{
			Test:         search.StationTest,
			Regression:   search.Regression,
			Significance: search.Significance,
			Autolag:      "aic",
		},
		Search: SearchConfig{
			MaxP:      search.MaxP,
			MaxD:      search.MaxD,
			MaxQ:      search.MaxQ,
			MaxSP:     search.MaxSP,
			MaxSD:     search.MaxSD,
			MaxSQ:     search.MaxSQ,
			Period:    5,
			Stepwise:  search.Stepwise,
			Criterion: search.Criterion,
			MaxFits:   search.MaxFits,
		},
		Forecast: ForecastConfig{
			Horizon:    10,
			Confidence: 0.95,
			Holdout:    0.2,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
			TimeFormat: "RFC3339",
		},
	}
}
