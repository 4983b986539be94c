package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AKSoo/statsmodels/ardl"
	"github.com/AKSoo/statsmodels/internal/config"
	"github.com/AKSoo/statsmodels/timeseries"
)

type selectFlags struct {
	maxLag        int
	maxOrder      int
	ic            string
	global        bool
	maxCandidates int
	fallback      bool
	workers       int
	top           int
	out           string
}

func (s *selectFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("maxlag") {
		cfg.Select.MaxLag = s.maxLag
	}
	if flags.Changed("maxorder") {
		cfg.Select.MaxOrder = s.maxOrder
	}
	if flags.Changed("ic") {
		cfg.Select.IC = s.ic
	}
	if flags.Changed("global") {
		cfg.Select.Global = s.global
	}
	if flags.Changed("max-candidates") {
		cfg.Select.MaxCandidates = s.maxCandidates
	}
	if flags.Changed("fallback") {
		cfg.Select.Fallback = s.fallback
	}
	if flags.Changed("workers") {
		cfg.Select.Workers = s.workers
	}
}

func (a *app) selectCmd() *cobra.Command {
	var sf selectFlags
	cmd := &cobra.Command{
		Use:   "select",
		Short: "Search lag orders by information criterion",
		Long: `Fit every candidate lag structure on a common sample and report the one
minimizing the chosen information criterion, followed by the refitted model.

Nested search keeps lags 1..p of y and the first lags of each exog variable.
Global search tries every subset of the lag columns.

Examples:
  ardl select --data flu.csv --exog temp,humidity --maxlag 4 --maxorder 3
  ardl select --data flu.csv --exog temp --maxlag 3 --maxorder 2 --global --ic aic --out candidates.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sf.apply(cmd, a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}
			return a.runSelect(cmd, sf)
		},
	}
	a.model.register(cmd)
	a.fit.register(cmd)

	f := cmd.Flags()
	f.IntVar(&sf.maxLag, "maxlag", 0, "largest autoregressive lag considered")
	f.IntVar(&sf.maxOrder, "maxorder", 0, "largest exog lag considered")
	f.StringVar(&sf.ic, "ic", "", "criterion: aic, bic or hqic (default bic)")
	f.BoolVar(&sf.global, "global", false, "search every subset of lags instead of nested orders")
	f.IntVar(&sf.maxCandidates, "max-candidates", 0, "refuse searches larger than this (0 = no limit)")
	f.BoolVar(&sf.fallback, "fallback", false, "fall back to nested search when the global search is too large")
	f.IntVar(&sf.workers, "workers", 0, "concurrent candidate fits (default GOMAXPROCS)")
	f.IntVar(&sf.top, "top", 10, "number of ranked candidates to print (0 = all)")
	f.StringVar(&sf.out, "out", "", "write every candidate to this CSV file")
	return cmd
}

func (a *app) runSelect(cmd *cobra.Command, sf selectFlags) error {
	data, err := loadData(a.cfg)
	if err != nil {
		return err
	}
	sel, err := a.cfg.SelectSpec()
	if err != nil {
		return err
	}

	n, err := ardl.CandidateCount(data, sel, ardl.WithLogger(a.log))
	if err != nil {
		return err
	}
	a.log.Info("searching lag orders",
		zap.Int("candidates", n),
		zap.Bool("global", sel.Global),
		zap.Stringer("ic", sel.IC),
	)

	res, err := ardl.SelectOrder(data, sel, ardl.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}

	out := cmd.OutOrStdout()
	best := res.Best()
	mode := "nested"
	if res.Global {
		mode = "global"
	}
	fmt.Fprintf(out, "Selected by %s (%s search, %d candidates): %s\n", res.IC, mode, len(res.Candidates), best.Key)
	fmt.Fprintln(out, renderCandidates(res, sf.top))

	fitted, err := res.Model.Fit(a.cfg.FitOptions())
	if err != nil {
		return fmt.Errorf("refit: %w", err)
	}
	fmt.Fprint(out, fitted.Summary())

	if sf.out != "" {
		if err := timeseries.SaveRecords(sf.out, candidateHeader, candidateRecords(res.Candidates)); err != nil {
			return fmt.Errorf("write %s: %w", sf.out, err)
		}
		a.log.Info("candidates written", zap.String("path", sf.out))
	}
	return nil
}

var candidateHeader = []string{"key", "aic", "bic", "hqic"}

func candidateRecords(cands []ardl.Candidate) [][]string {
	records := make([][]string, len(cands))
	for i, c := range cands {
		records[i] = []string{
			c.Key.String(),
			strconv.FormatFloat(c.AIC, 'g', -1, 64),
			strconv.FormatFloat(c.BIC, 'g', -1, 64),
			strconv.FormatFloat(c.HQIC, 'g', -1, 64),
		}
	}
	return records
}

// renderCandidates tabulates the top candidates ranked by the selection
// criterion.
func renderCandidates(res *ardl.SelectionResult, top int) string {
	ranked := res.Ranked(res.IC)
	if top > 0 && top < len(ranked) {
		ranked = ranked[:top]
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("rank", "lags", "aic", "bic", "hqic")
	for i, c := range ranked {
		t.Row(
			strconv.Itoa(i+1),
			c.Key.String(),
			fmt.Sprintf("%.4f", c.AIC),
			fmt.Sprintf("%.4f", c.BIC),
			fmt.Sprintf("%.4f", c.HQIC),
		)
	}
	return t.String()
}
