package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *app) fitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Estimate an ARDL model and print its summary",
		Long: `Estimate an ARDL model by least squares and print the coefficient table
with the information criteria.

Examples:
  ardl fit --data flu.csv --exog temp,humidity --lags 2 --order 1
  ardl fit --data flu.csv --exog temp --lags 1 --order 2 --cov-type HAC --hac-maxlags 4`,
		Args: cobra.NoArgs,
		RunE: a.runFit,
	}
	a.model.register(cmd)
	a.fit.register(cmd)
	return cmd
}

func (a *app) runFit(cmd *cobra.Command, _ []string) error {
	model, err := a.buildModel()
	if err != nil {
		return err
	}
	res, err := model.Fit(a.cfg.FitOptions())
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}
	a.log.Info("model fitted",
		zap.Int("nobs", res.NObs()),
		zap.Int("params", res.DFModel()),
		zap.Float64("bic", res.BIC()),
	)

	out := cmd.OutOrStdout()
	for _, w := range model.Warnings() {
		fmt.Fprintln(out, "warning:", w)
	}
	fmt.Fprint(out, res.Summary())
	return nil
}
