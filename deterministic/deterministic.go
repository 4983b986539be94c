// Package deterministic generates trend and seasonal regressors for
// in-sample estimation and out-of-sample forecasting.
package deterministic

import (
	"errors"
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Process supplies deterministic columns for the estimation sample and for
// the steps following it.
type Process interface {
	// Names returns one name per column.
	Names() []string
	// InSample returns nobs x len(Names()); nil when there are no columns.
	InSample() *mat.Dense
	// OutOfSample returns the next steps rows; nil when there are no columns.
	OutOfSample(steps int) *mat.Dense
}

// Trend selects the polynomial time trend.
type Trend int

const (
	TrendNone Trend = iota
	TrendConst
	TrendTime
	TrendConstTime
	TrendConstTimeSquared
)

var ErrInvalidTrend = errors.New("invalid trend")

// ParseTrend converts n, c, t, ct or ctt into a Trend.
func ParseTrend(s string) (Trend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "none", "":
		return TrendNone, nil
	case "c", "const":
		return TrendConst, nil
	case "t":
		return TrendTime, nil
	case "ct":
		return TrendConstTime, nil
	case "ctt":
		return TrendConstTimeSquared, nil
	}
	return TrendNone, fmt.Errorf("%q (expected n, c, t, ct or ctt): %w", s, ErrInvalidTrend)
}

func (t Trend) String() string {
	switch t {
	case TrendNone:
		return "n"
	case TrendConst:
		return "c"
	case TrendTime:
		return "t"
	case TrendConstTime:
		return "ct"
	case TrendConstTimeSquared:
		return "ctt"
	}
	return fmt.Sprintf("Trend(%d)", int(t))
}

// HasConst reports whether the trend includes an intercept.
func (t Trend) HasConst() bool {
	return t == TrendConst || t == TrendConstTime || t == TrendConstTimeSquared
}

// order returns the highest power of time included.
func (t Trend) order() int {
	switch t {
	case TrendTime, TrendConstTime:
		return 1
	case TrendConstTimeSquared:
		return 2
	}
	return 0
}

// Options configures a TrendProcess.
type Options struct {
	Trend    Trend
	Seasonal bool
	// Period is the number of seasons, required (>= 2) when Seasonal is set.
	Period int
}

// TrendProcess produces constant, polynomial time trend and seasonal dummy
// columns. Time runs 1..nobs in sample and continues from nobs+1.
type TrendProcess struct {
	nobs  int
	opts  Options
	names []string
}

var _ Process = (*TrendProcess)(nil)

// New builds a TrendProcess for a sample of nobs observations.
func New(nobs int, opts Options) (*TrendProcess, error) {
	if nobs < 0 {
		return nil, fmt.Errorf("nobs must be non-negative, got %d", nobs)
	}
	if opts.Trend < TrendNone || opts.Trend > TrendConstTimeSquared {
		return nil, fmt.Errorf("%v: %w", opts.Trend, ErrInvalidTrend)
	}
	if opts.Seasonal && opts.Period < 2 {
		return nil, fmt.Errorf("seasonal terms require period >= 2, got %d", opts.Period)
	}

	p := &TrendProcess{nobs: nobs, opts: opts}

	if opts.Trend.HasConst() {
		p.names = append(p.names, "const")
	}
	switch opts.Trend.order() {
	case 1:
		p.names = append(p.names, "trend")
	case 2:
		p.names = append(p.names, "trend", "trend_squared")
	}
	if opts.Seasonal {
		first := 1
		if opts.Trend.HasConst() {
			// the constant absorbs the first season
			first = 2
		}
		for s := first; s <= opts.Period; s++ {
			p.names = append(p.names, fmt.Sprintf("s(%d,%d)", s, opts.Period))
		}
	}
	return p, nil
}

// Names implements Process.
func (p *TrendProcess) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

// NObs returns the in-sample length.
func (p *TrendProcess) NObs() int { return p.nobs }

// InSample implements Process.
func (p *TrendProcess) InSample() *mat.Dense {
	return p.rows(0, p.nobs)
}

// OutOfSample implements Process.
func (p *TrendProcess) OutOfSample(steps int) *mat.Dense {
	return p.rows(p.nobs, steps)
}

// rows builds count rows starting at zero-based observation from.
func (p *TrendProcess) rows(from, count int) *mat.Dense {
	k := len(p.names)
	if k == 0 || count <= 0 {
		return nil
	}

	out := mat.NewDense(count, k, nil)
	order := p.opts.Trend.order()
	hasConst := p.opts.Trend.HasConst()

	for i := 0; i < count; i++ {
		obs := from + i
		t := float64(obs + 1)
		col := 0
		if hasConst {
			out.Set(i, col, 1)
			col++
		}
		for pow := 1; pow <= order; pow++ {
			v := t
			if pow == 2 {
				v = t * t
			}
			out.Set(i, col, v)
			col++
		}
		if p.opts.Seasonal {
			season := obs % p.opts.Period
			first := 0
			if hasConst {
				first = 1
			}
			if season >= first {
				out.Set(i, col+season-first, 1)
			}
		}
	}
	return out
}
