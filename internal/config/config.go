package config

import (
	"errors"
	"fmt"

	"github.com/AKSoo/statsmodels/ardl"
	"github.com/AKSoo/statsmodels/deterministic"
	"github.com/AKSoo/statsmodels/internal/logging"
	"github.com/AKSoo/statsmodels/ols"
)

// Config is the command line configuration.
type Config struct {
	Data     DataConfig     `koanf:"data"`
	Model    ModelConfig    `koanf:"model"`
	Fit      FitConfig      `koanf:"fit"`
	Forecast ForecastConfig `koanf:"forecast"`
	Select   SelectConfig   `koanf:"select"`
	Logging  logging.Config `koanf:"logging"`
}

// DataConfig names the input file and its columns.
type DataConfig struct {
	Path  string   `koanf:"path"`
	Endog string   `koanf:"endog"`
	Exog  []string `koanf:"exog"`
	Fixed []string `koanf:"fixed"`
	// Time is the optional time index column.
	Time string `koanf:"time"`
}

// ModelConfig mirrors ardl.ModelSpec. An order of -1 excludes the variable.
type ModelConfig struct {
	Lags     int            `koanf:"lags"`
	Order    int            `koanf:"order"`
	Orders   map[string]int `koanf:"orders"`
	Trend    string         `koanf:"trend"`
	Causal   bool           `koanf:"causal"`
	Seasonal bool           `koanf:"seasonal"`
	Period   int            `koanf:"period"`
	HoldBack int            `koanf:"hold_back"`
	Missing  string         `koanf:"missing"`
}

// FitConfig mirrors ols.FitOptions.
type FitConfig struct {
	CovType       string `koanf:"cov_type"`
	HACMaxLags    int    `koanf:"hac_maxlags"`
	HACKernel     string `koanf:"hac_kernel"`
	HACCorrection bool   `koanf:"hac_correction"`
	UseT          bool   `koanf:"use_t"`
}

// ForecastConfig controls out-of-sample forecasting.
type ForecastConfig struct {
	Steps int     `koanf:"steps"`
	Alpha float64 `koanf:"alpha"`
}

// SelectConfig controls order selection.
type SelectConfig struct {
	MaxLag        int    `koanf:"maxlag"`
	MaxOrder      int    `koanf:"maxorder"`
	IC            string `koanf:"ic"`
	Global        bool   `koanf:"global"`
	MaxCandidates int    `koanf:"max_candidates"`
	Fallback      bool   `koanf:"fallback"`
	Workers       int    `koanf:"workers"`
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Data.Endog == "" {
		cfg.Data.Endog = "y"
	}
	if cfg.Model.Trend == "" {
		cfg.Model.Trend = "c"
	}
	if cfg.Model.Missing == "" {
		cfg.Model.Missing = "none"
	}
	if cfg.Fit.CovType == "" {
		cfg.Fit.CovType = ols.CovNonRobust
	}
	if cfg.Forecast.Steps == 0 {
		cfg.Forecast.Steps = 1
	}
	if cfg.Forecast.Alpha == 0 {
		cfg.Forecast.Alpha = 0.05
	}
	if cfg.Select.IC == "" {
		cfg.Select.IC = "bic"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = logging.FormatConsole
	}
}

// Validate rejects values the library would refuse later.
func (c *Config) Validate() error {
	var errs []error

	if _, err := deterministic.ParseTrend(c.Model.Trend); err != nil {
		errs = append(errs, fmt.Errorf("model.trend: %w", err))
	}
	if _, err := ardl.ParseMissing(c.Model.Missing); err != nil {
		errs = append(errs, fmt.Errorf("model.missing: %w", err))
	}
	if c.Model.Lags < 0 {
		errs = append(errs, fmt.Errorf("model.lags must be non-negative, got %d", c.Model.Lags))
	}
	if c.Model.Order < -1 {
		errs = append(errs, fmt.Errorf("model.order must be -1 or larger, got %d", c.Model.Order))
	}
	for name, o := range c.Model.Orders {
		if o < -1 {
			errs = append(errs, fmt.Errorf("model.orders.%s must be -1 or larger, got %d", name, o))
		}
	}
	if _, err := c.FitOptions().Normalize(); err != nil {
		errs = append(errs, fmt.Errorf("fit: %w", err))
	}
	if c.Forecast.Steps < 1 {
		errs = append(errs, fmt.Errorf("forecast.steps must be positive, got %d", c.Forecast.Steps))
	}
	if c.Forecast.Alpha <= 0 || c.Forecast.Alpha >= 1 {
		errs = append(errs, fmt.Errorf("forecast.alpha must be in (0, 1), got %g", c.Forecast.Alpha))
	}
	if _, err := ardl.ParseCriterion(c.Select.IC); err != nil {
		errs = append(errs, fmt.Errorf("select.ic: %w", err))
	}
	if c.Select.MaxLag < 0 || c.Select.MaxOrder < 0 {
		errs = append(errs, fmt.Errorf("select.maxlag and select.maxorder must be non-negative"))
	}
	if c.Select.Workers < 0 || c.Select.MaxCandidates < 0 {
		errs = append(errs, fmt.Errorf("select.workers and select.max_candidates must be non-negative"))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func lagSpec(order int) ardl.LagSpec {
	if order < 0 {
		return ardl.Excluded()
	}
	return ardl.UpTo(order)
}

// ModelSpec converts the model section. Orders, when set, take precedence
// over the uniform Order.
func (c *Config) ModelSpec() (ardl.ModelSpec, error) {
	trend, err := deterministic.ParseTrend(c.Model.Trend)
	if err != nil {
		return ardl.ModelSpec{}, err
	}
	missing, err := ardl.ParseMissing(c.Model.Missing)
	if err != nil {
		return ardl.ModelSpec{}, err
	}

	order := ardl.Uniform(lagSpec(c.Model.Order))
	if len(c.Model.Orders) > 0 {
		m := make(map[string]ardl.LagSpec, len(c.Model.Orders))
		for name, o := range c.Model.Orders {
			m[name] = lagSpec(o)
		}
		order = ardl.PerVariable(m)
	}

	return ardl.ModelSpec{
		Lags:     ardl.UpTo(c.Model.Lags),
		Order:    order,
		Trend:    trend,
		Causal:   c.Model.Causal,
		Seasonal: c.Model.Seasonal,
		Period:   c.Model.Period,
		HoldBack: c.Model.HoldBack,
		Missing:  missing,
	}, nil
}

// FitOptions converts the fit section.
func (c *Config) FitOptions() ardl.FitOptions {
	return ardl.FitOptions{
		CovType:       c.Fit.CovType,
		HACMaxLags:    c.Fit.HACMaxLags,
		HACKernel:     c.Fit.HACKernel,
		HACCorrection: c.Fit.HACCorrection,
		UseT:          c.Fit.UseT,
	}
}

// SelectSpec converts the select section, reusing the deterministic and
// sample settings of the model section.
func (c *Config) SelectSpec() (ardl.SelectSpec, error) {
	base, err := c.ModelSpec()
	if err != nil {
		return ardl.SelectSpec{}, err
	}
	ic, err := ardl.ParseCriterion(c.Select.IC)
	if err != nil {
		return ardl.SelectSpec{}, err
	}
	return ardl.SelectSpec{
		Model:            base,
		MaxLag:           c.Select.MaxLag,
		MaxOrder:         ardl.Uniform(ardl.UpTo(c.Select.MaxOrder)),
		IC:               ic,
		Global:           c.Select.Global,
		MaxCandidates:    c.Select.MaxCandidates,
		FallbackToNested: c.Select.Fallback,
		Workers:          c.Select.Workers,
	}, nil
}
