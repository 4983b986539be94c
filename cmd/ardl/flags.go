package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AKSoo/statsmodels/ardl"
	"github.com/AKSoo/statsmodels/internal/config"
	"github.com/AKSoo/statsmodels/timeseries"
)

// modelFlags override the data and model sections of the configuration.
type modelFlags struct {
	data     string
	endog    string
	exog     []string
	fixed    []string
	timeCol  string
	lags     int
	order    int
	trend    string
	causal   bool
	seasonal bool
	period   int
	holdBack int
	missing  string
}

func (m *modelFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&m.data, "data", "", "CSV file with a header row")
	f.StringVar(&m.endog, "endog", "", "dependent variable column (default y)")
	f.StringSliceVar(&m.exog, "exog", nil, "exogenous variable columns")
	f.StringSliceVar(&m.fixed, "fixed", nil, "fixed regressor columns, entered without lags")
	f.StringVar(&m.timeCol, "time", "", "time index column, excluded from the variables")
	f.IntVar(&m.lags, "lags", 0, "autoregressive order")
	f.IntVar(&m.order, "order", 0, "exog lag order for every variable, -1 excludes them")
	f.StringVar(&m.trend, "trend", "", "deterministic trend: n, c, t, ct or ctt")
	f.BoolVar(&m.causal, "causal", false, "exclude contemporaneous exog values")
	f.BoolVar(&m.seasonal, "seasonal", false, "include seasonal dummies")
	f.IntVar(&m.period, "period", 0, "number of seasons")
	f.IntVar(&m.holdBack, "hold-back", 0, "leading observations excluded from estimation (default max lag)")
	f.StringVar(&m.missing, "missing", "", "missing value policy: none, drop or raise")
}

func (m *modelFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.Data.Path = m.data
	}
	if flags.Changed("endog") {
		cfg.Data.Endog = m.endog
	}
	if flags.Changed("exog") {
		cfg.Data.Exog = m.exog
	}
	if flags.Changed("fixed") {
		cfg.Data.Fixed = m.fixed
	}
	if flags.Changed("time") {
		cfg.Data.Time = m.timeCol
	}
	if flags.Changed("lags") {
		cfg.Model.Lags = m.lags
	}
	if flags.Changed("order") {
		cfg.Model.Order = m.order
		cfg.Model.Orders = nil
	}
	if flags.Changed("trend") {
		cfg.Model.Trend = m.trend
	}
	if flags.Changed("causal") {
		cfg.Model.Causal = m.causal
	}
	if flags.Changed("seasonal") {
		cfg.Model.Seasonal = m.seasonal
	}
	if flags.Changed("period") {
		cfg.Model.Period = m.period
	}
	if flags.Changed("hold-back") {
		cfg.Model.HoldBack = m.holdBack
	}
	if flags.Changed("missing") {
		cfg.Model.Missing = m.missing
	}
}

// fitFlags override the fit section.
type fitFlags struct {
	covType    string
	hacMaxLags int
	useT       bool
}

func (f *fitFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.covType, "cov-type", "", "covariance: nonrobust, HC0, HC1, HC2, HC3 or HAC")
	fs.IntVar(&f.hacMaxLags, "hac-maxlags", 0, "lags used by the HAC covariance")
	fs.BoolVar(&f.useT, "use-t", false, "use Student's t for inference")
}

func (f *fitFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("cov-type") {
		cfg.Fit.CovType = f.covType
	}
	if flags.Changed("hac-maxlags") {
		cfg.Fit.HACMaxLags = f.hacMaxLags
	}
	if flags.Changed("use-t") {
		cfg.Fit.UseT = f.useT
	}
}

// loadData reads the configured CSV file into model data.
func loadData(cfg *config.Config) (ardl.Data, error) {
	if cfg.Data.Path == "" {
		return ardl.Data{}, fmt.Errorf("no data file: set --data or data.path")
	}
	ts, err := timeseries.LoadCSV(cfg.Data.Path, cfg.Data.Time)
	if err != nil {
		return ardl.Data{}, err
	}

	endog, err := ts.Column(cfg.Data.Endog)
	if err != nil {
		return ardl.Data{}, fmt.Errorf("endog: %w", err)
	}
	exog, err := ts.Columns(cfg.Data.Exog)
	if err != nil {
		return ardl.Data{}, fmt.Errorf("exog: %w", err)
	}
	fixed, err := ts.Columns(cfg.Data.Fixed)
	if err != nil {
		return ardl.Data{}, fmt.Errorf("fixed: %w", err)
	}

	return ardl.Data{
		Endog:      endog,
		EndogName:  cfg.Data.Endog,
		Exog:       exog,
		ExogNames:  cfg.Data.Exog,
		Fixed:      fixed,
		FixedNames: cfg.Data.Fixed,
	}, nil
}

// buildModel loads the data and constructs the configured model.
func (a *app) buildModel() (*ardl.Model, error) {
	data, err := loadData(a.cfg)
	if err != nil {
		return nil, err
	}
	spec, err := a.cfg.ModelSpec()
	if err != nil {
		return nil, err
	}
	return ardl.New(data, spec, ardl.WithLogger(a.log))
}
