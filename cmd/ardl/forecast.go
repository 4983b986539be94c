package main

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/AKSoo/statsmodels/ardl"
	"github.com/AKSoo/statsmodels/timeseries"
)

type forecastFlags struct {
	steps    int
	alpha    float64
	start    int
	dynamic  int
	exogOOS  string
	fixedOOS string
	out      string
	plot     string
}

func (a *app) forecastCmd() *cobra.Command {
	var ff forecastFlags
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Fit a model and forecast past the end of the sample",
		Long: `Fit an ARDL model, then predict from --start through --steps observations
past the end of the sample with normal prediction intervals.

Models with contemporaneous exog or fixed regressors need their future values
in --exog-oos or --fixed-oos, CSV files with the same column names.

Examples:
  ardl forecast --data flu.csv --lags 2 --order -1 --steps 12
  ardl forecast --data flu.csv --exog temp --causal --lags 2 --order 2 --steps 2
  ardl forecast --data flu.csv --exog temp --lags 1 --order 1 --steps 4 \
    --exog-oos future.csv --out forecast.csv --plot forecast.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("steps") {
				a.cfg.Forecast.Steps = ff.steps
			}
			if cmd.Flags().Changed("alpha") {
				a.cfg.Forecast.Alpha = ff.alpha
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid options: %w", err)
			}
			return a.runForecast(cmd, ff)
		},
	}
	a.model.register(cmd)
	a.fit.register(cmd)

	f := cmd.Flags()
	f.IntVar(&ff.steps, "steps", 1, "number of out-of-sample steps")
	f.Float64Var(&ff.alpha, "alpha", 0.05, "prediction interval level is 1-alpha")
	f.IntVar(&ff.start, "start", -1, "first predicted observation (default end of sample)")
	f.IntVar(&ff.dynamic, "dynamic", -1, "offset from start at which predictions replace observed lags")
	f.StringVar(&ff.exogOOS, "exog-oos", "", "CSV file with future exog values")
	f.StringVar(&ff.fixedOOS, "fixed-oos", "", "CSV file with future fixed regressor values")
	f.StringVar(&ff.out, "out", "", "write predictions to this CSV file")
	f.StringVar(&ff.plot, "plot", "", "write a chart to this image file (png, svg, pdf)")
	return cmd
}

func (a *app) runForecast(cmd *cobra.Command, ff forecastFlags) error {
	model, err := a.buildModel()
	if err != nil {
		return err
	}
	res, err := model.Fit(a.cfg.FitOptions())
	if err != nil {
		return fmt.Errorf("fit: %w", err)
	}

	opts := ardl.PredictOptions{Dynamic: ff.dynamic >= 0, DynamicStart: ff.dynamic}
	if opts.ExogOOS, err = a.readFuture(ff.exogOOS, a.cfg.Data.Exog); err != nil {
		return fmt.Errorf("exog-oos: %w", err)
	}
	if opts.FixedOOS, err = a.readFuture(ff.fixedOOS, a.cfg.Data.Fixed); err != nil {
		return fmt.Errorf("fixed-oos: %w", err)
	}

	endog := model.Endog()
	start := ff.start
	if start < 0 {
		start = len(endog)
	}
	end := len(endog) + a.cfg.Forecast.Steps - 1

	pred, err := res.GetPrediction(start, end, opts)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	ci, err := pred.ConfInt(a.cfg.Forecast.Alpha)
	if err != nil {
		return err
	}
	a.log.Info("forecast computed",
		zap.Int("start", start),
		zap.Int("end", end),
		zap.Bool("dynamic", opts.Dynamic),
	)

	fmt.Fprintln(cmd.OutOrStdout(), renderForecast(start, pred, ci, a.cfg.Forecast.Alpha))

	if ff.out != "" {
		if err := saveForecast(ff.out, start, pred, ci); err != nil {
			return fmt.Errorf("write %s: %w", ff.out, err)
		}
		a.log.Info("predictions written", zap.String("path", ff.out))
	}
	if ff.plot != "" {
		if err := plotForecast(ff.plot, a.cfg.Data.Endog, endog, start, pred, ci); err != nil {
			return fmt.Errorf("plot %s: %w", ff.plot, err)
		}
		a.log.Info("chart written", zap.String("path", ff.plot))
	}
	return nil
}

// readFuture loads the named columns of a CSV file, or returns nil when no
// file or no columns are configured.
func (a *app) readFuture(path string, names []string) (*mat.Dense, error) {
	if path == "" || len(names) == 0 {
		return nil, nil
	}
	ts, err := timeseries.LoadCSV(path, a.cfg.Data.Time)
	if err != nil {
		return nil, err
	}
	return ts.Columns(names)
}

func renderForecast(start int, pred *ardl.Prediction, ci [][2]float64, alpha float64) string {
	level := strconv.FormatFloat(100*(1-alpha), 'g', 4, 64) + "%"
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("obs", "mean", "std err", "lower "+level, "upper "+level)
	for i, m := range pred.Mean {
		t.Row(
			strconv.Itoa(start+i),
			fmt.Sprintf("%.4f", m),
			fmt.Sprintf("%.4f", math.Sqrt(pred.Var[i])),
			fmt.Sprintf("%.4f", ci[i][0]),
			fmt.Sprintf("%.4f", ci[i][1]),
		)
	}
	return t.String()
}

func saveForecast(path string, start int, pred *ardl.Prediction, ci [][2]float64) error {
	n := len(pred.Mean)
	obs := make([]float64, n)
	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := range pred.Mean {
		obs[i] = float64(start + i)
		lower[i], upper[i] = ci[i][0], ci[i][1]
	}
	return timeseries.SaveCSV(path,
		[]string{"obs", "mean", "var", "lower", "upper"},
		[][]float64{obs, pred.Mean, pred.Var, lower, upper},
	)
}

// finiteXYs pairs x0, x0+1, ... with ys, skipping non-finite values.
func finiteXYs(x0 int, ys []float64) plotter.XYs {
	out := make(plotter.XYs, 0, len(ys))
	for i, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		out = append(out, plotter.XY{X: float64(x0 + i), Y: y})
	}
	return out
}

func plotForecast(path, name string, endog []float64, start int, pred *ardl.Prediction, ci [][2]float64) error {
	p := plot.New()
	p.Title.Text = "Forecast of " + name
	p.X.Label.Text = "observation"
	p.Y.Label.Text = name
	p.Add(plotter.NewGrid())

	lower := make([]float64, len(ci))
	upper := make([]float64, len(ci))
	for i := range ci {
		lower[i], upper[i] = ci[i][0], ci[i][1]
	}

	series := []struct {
		label  string
		xys    plotter.XYs
		color  color.Color
		dashed bool
	}{
		{"observed", finiteXYs(0, endog), color.Black, false},
		{"predicted", finiteXYs(start, pred.Mean), color.RGBA{R: 200, A: 255}, false},
		{"lower", finiteXYs(start, lower), color.RGBA{B: 200, A: 255}, true},
		{"upper", finiteXYs(start, upper), color.RGBA{B: 200, A: 255}, true},
	}
	for _, s := range series {
		if len(s.xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(s.xys)
		if err != nil {
			return err
		}
		line.Color = s.color
		if s.dashed {
			line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		p.Add(line)
		p.Legend.Add(s.label, line)
	}
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 4*vg.Inch, path)
}
