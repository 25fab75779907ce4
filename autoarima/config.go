package autoarima

import (
	"fmt"
	"runtime"

	"github.com/sartorproj/pricearima/stats"
)

// Config holds configuration for auto ARIMA search.
type Config struct {
	MaxP         int     // Maximum AR order (default: 5)
	MaxD         int     // Maximum differencing order (default: 2)
	MaxQ         int     // Maximum MA order (default: 5)
	MaxSP        int     // Maximum seasonal AR order (default: 2)
	MaxSD        int     // Maximum seasonal differencing order (default: 1)
	MaxSQ        int     // Maximum seasonal MA order (default: 2)
	Seasonal     bool    // Whether to consider seasonal models
	SeasonalM    int     // Seasonal period (required if Seasonal=true)
	Stepwise     bool    // Use stepwise search instead of exhaustive
	Criterion    string  // Information criterion: "aic", "aicc" or "bic" (default: "aic")
	Trace        bool    // Log every fit at debug level
	StationTest  string  // Stationarity test: "adf" or "kpss" (default: "adf")
	Regression   string  // Deterministic terms of the stationarity test: "n", "c" or "ct"
	Significance float64 // Level of the stationarity test (default: 0.05)

	// MaxFits caps the number of estimator calls. Zero means no cap.
	MaxFits int
	// Workers bounds the number of concurrent fits. Zero uses GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the default auto ARIMA configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxP:         5,
		MaxD:         stats.DefaultMaxD,
		MaxQ:         5,
		MaxSP:        2,
		MaxSD:        1,
		MaxSQ:        2,
		Seasonal:     false,
		Stepwise:     true,
		Criterion:    "aic",
		StationTest:  stats.StationTestADF,
		Regression:   string(stats.RegressionConstant),
		Significance: stats.DefaultSignificance,
		MaxFits:      100,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.MaxP < 0 || c.MaxD < 0 || c.MaxQ < 0 {
		return fmt.Errorf("max orders must be non-negative, got p=%d d=%d q=%d", c.MaxP, c.MaxD, c.MaxQ)
	}
	if c.Seasonal {
		if c.SeasonalM <= 1 {
			return fmt.Errorf("seasonal search needs a period > 1, got %d", c.SeasonalM)
		}
		if c.MaxSP < 0 || c.MaxSD < 0 || c.MaxSQ < 0 {
			return fmt.Errorf("max seasonal orders must be non-negative, got P=%d D=%d Q=%d", c.MaxSP, c.MaxSD, c.MaxSQ)
		}
	}
	switch c.Criterion {
	case "aic", "aicc", "bic":
	default:
		return fmt.Errorf("unknown information criterion %q", c.Criterion)
	}
	switch c.StationTest {
	case stats.StationTestADF, stats.StationTestKPSS:
	default:
		return fmt.Errorf("unknown stationarity test %q", c.StationTest)
	}
	if _, err := stats.ParseRegression(c.Regression); err != nil {
		return err
	}
	if c.Significance <= 0 || c.Significance >= 1 {
		return fmt.Errorf("significance must be in (0, 1), got %g", c.Significance)
	}
	if c.MaxFits < 0 {
		return fmt.Errorf("max fits must be non-negative, got %d", c.MaxFits)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}

func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (c *Config) diffOptions() stats.DiffOptions {
	reg, _ := stats.ParseRegression(c.Regression)
	return stats.DiffOptions{
		MaxD:         c.MaxD,
		Test:         c.StationTest,
		Regression:   reg,
		Significance: c.Significance,
	}
}
