package main

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AKSoo/statsmodels/ardl"
	"github.com/AKSoo/statsmodels/internal/config"
)

// writeSample writes t,y,x with y_t = 0.5 + 0.5 y_{t-1} + x_t + e_t.
func writeSample(t *testing.T, n int) string {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	var b strings.Builder
	b.WriteString("t,y,x\n")
	prev := 0.0
	for i := 0; i < n; i++ {
		x := rng.NormFloat64()
		y := 0.5 + 0.5*prev + x + rng.NormFloat64()
		prev = y
		fmt.Fprintf(&b, "%d,%g,%g\n", 2000+i, y, x)
	}
	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--log-level", "error"))
	err := root.Execute()
	return out.String(), err
}

func TestLoadData(t *testing.T) {
	path := writeSample(t, 50)
	cfg := config.Default()
	cfg.Data.Path = path
	cfg.Data.Time = "t"
	cfg.Data.Exog = []string{"x"}

	data, err := loadData(cfg)
	require.NoError(t, err)
	assert.Len(t, data.Endog, 50)
	assert.Equal(t, "y", data.EndogName)
	r, c := data.Exog.Dims()
	assert.Equal(t, 50, r)
	assert.Equal(t, 1, c)
	assert.Nil(t, data.Fixed)

	cfg.Data.Exog = []string{"w"}
	_, err = loadData(cfg)
	assert.Error(t, err)

	cfg.Data.Path = ""
	_, err = loadData(cfg)
	assert.Error(t, err)
}

func TestFitCommand(t *testing.T) {
	path := writeSample(t, 300)

	out, err := run(t, "fit", "--data", path, "--time", "t", "--exog", "x", "--lags", "1", "--order", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "ARDL(1,1) results for y")
	for _, name := range []string{"const", "y.L1", "x.L0", "x.L1"} {
		assert.Contains(t, out, name)
	}

	_, err = run(t, "fit", "--data", path, "--trend", "quadratic")
	assert.Error(t, err)

	_, err = run(t, "fit", "--data", path, "--endog", "missing")
	assert.Error(t, err)
}

func TestFitCommandConfigFile(t *testing.T) {
	path := writeSample(t, 200)
	cfgPath := filepath.Join(t.TempDir(), "ardl.yaml")
	content := fmt.Sprintf("data:\n  path: %s\n  time: t\n  exog: [x]\nmodel:\n  lags: 2\n  order: -1\nfit:\n  cov_type: HC1\n", path)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))

	out, err := run(t, "fit", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ARDL(2) results for y")
	assert.Contains(t, out, "Covariance: HC1")
	assert.NotContains(t, out, "x.L0")

	// flags win over the file
	out, err = run(t, "fit", "--config", cfgPath, "--lags", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "ARDL(1) results for y")
}

func TestForecastCommand(t *testing.T) {
	path := writeSample(t, 200)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "fc.csv")
	pngPath := filepath.Join(dir, "fc.png")

	out, err := run(t, "forecast", "--data", path, "--time", "t", "--lags", "2",
		"--steps", "3", "--out", csvPath, "--plot", pngPath)
	require.NoError(t, err)
	assert.Contains(t, out, "lower 95%")
	assert.Contains(t, out, "200")
	assert.Contains(t, out, "202")

	raw, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "obs,mean,var,lower,upper", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "200,"))

	info, err := os.Stat(pngPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestForecastCommandNeedsFutureExog(t *testing.T) {
	path := writeSample(t, 100)
	_, err := run(t, "forecast", "--data", path, "--time", "t", "--exog", "x", "--lags", "1", "--order", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ardl.ErrExogOOSRequired)

	future := filepath.Join(t.TempDir(), "future.csv")
	require.NoError(t, os.WriteFile(future, []byte("t,x\n2100,0.1\n2101,-0.2\n"), 0600))
	out, err := run(t, "forecast", "--data", path, "--time", "t", "--exog", "x", "--lags", "1", "--order", "1",
		"--steps", "2", "--exog-oos", future)
	require.NoError(t, err)
	assert.Contains(t, out, "101")
}

func TestSelectCommand(t *testing.T) {
	path := writeSample(t, 400)
	outPath := filepath.Join(t.TempDir(), "cands.csv")

	out, err := run(t, "select", "--data", path, "--time", "t", "--exog", "x",
		"--maxlag", "2", "--maxorder", "1", "--top", "3", "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Selected by bic (nested search, 9 candidates): ar=[1] x=[0]")
	assert.Contains(t, out, "results for y")

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 10)
	assert.Equal(t, "key,aic,bic,hqic", lines[0])

	_, err = run(t, "select", "--data", path, "--exog", "x", "--maxlag", "2", "--maxorder", "1",
		"--global", "--max-candidates", "4")
	assert.ErrorIs(t, err, ardl.ErrSearchTooLarge)
}

func TestCandidateRecords(t *testing.T) {
	cands := []ardl.Candidate{
		{Key: ardl.SelectionKey{AR: []int{1}}, AIC: 1.5, BIC: 2, HQIC: 1.75},
	}
	assert.Equal(t, [][]string{{"ar=[1]", "1.5", "2", "1.75"}}, candidateRecords(cands))
}
