// Command ardl fits, forecasts and selects autoregressive distributed lag
// models from CSV data.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AKSoo/statsmodels/internal/config"
	"github.com/AKSoo/statsmodels/internal/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by the subcommands of one invocation.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	model      modelFlags
	fit        fitFlags

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "ardl",
		Short: "Autoregressive distributed lag models",
		Long: `ardl estimates ARDL models by least squares, forecasts them and searches
for the lag orders minimizing an information criterion.

Settings are read from an optional YAML file (--config), then ARDL_ environment
variables (ARDL_MODEL_LAGS -> model.lags), then command line flags.

Examples:
  # Fit ARDL(2,1) of y on x1 and x2
  ardl fit --data flu.csv --endog y --exog x1,x2 --lags 2 --order 1

  # Forecast 8 steps of an AR(3)
  ardl forecast --data flu.csv --lags 3 --order -1 --steps 8 --plot fc.png

  # Pick the orders with BIC over every lag subset
  ardl select --data flu.csv --exog x1 --maxlag 4 --maxorder 4 --global`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&a.logFormat, "log-format", "", "log format: console or json")

	root.AddCommand(a.fitCmd())
	root.AddCommand(a.forecastCmd())
	root.AddCommand(a.selectCmd())
	return root
}

// setup loads the configuration, applies flag overrides and builds the
// logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = a.logFormat
	}
	a.model.apply(cmd, cfg)
	a.fit.apply(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.cfg, a.log = cfg, log
	return nil
}
