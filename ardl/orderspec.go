package ardl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// LagKind tags the variant held by a LagSpec.
type LagKind int

const (
	// LagsExcluded drops the variable.
	LagsExcluded LagKind = iota
	// LagsUpTo includes every lag from the first admissible one up to a maximum.
	LagsUpTo
	// LagsExplicit includes exactly the listed lags, in the given order.
	LagsExplicit
)

// LagSpec is a lag-order request for one variable. The zero value excludes
// the variable.
type LagSpec struct {
	kind LagKind
	max  int
	lags []int
}

// Excluded returns a LagSpec that omits the variable.
func Excluded() LagSpec { return LagSpec{} }

// UpTo returns a LagSpec including lags causal?1:0 through k.
func UpTo(k int) LagSpec { return LagSpec{kind: LagsUpTo, max: k} }

// Lags returns a LagSpec including exactly the given lags.
func Lags(lags ...int) LagSpec {
	cp := make([]int, len(lags))
	copy(cp, lags)
	return LagSpec{kind: LagsExplicit, lags: cp}
}

// Kind returns the variant tag.
func (s LagSpec) Kind() LagKind { return s.kind }

func (s LagSpec) String() string {
	switch s.kind {
	case LagsUpTo:
		return strconv.Itoa(s.max)
	case LagsExplicit:
		return formatLags(s.lags)
	}
	return "excluded"
}

// Validate checks the spec against the causality flag.
func (s LagSpec) Validate(causal bool) error {
	first := firstLag(causal)
	switch s.kind {
	case LagsExcluded:
		return nil
	case LagsUpTo:
		if s.max < first {
			return fmt.Errorf("integer orders must be at least %d when causal is %t, got %d: %w",
				first, causal, s.max, ErrInvalidOrder)
		}
		return nil
	case LagsExplicit:
		seen := make(map[int]bool, len(s.lags))
		for _, l := range s.lags {
			if l < 0 {
				return fmt.Errorf("sequence orders must contain non-negative values, got %d: %w", l, ErrInvalidOrder)
			}
			if seen[l] {
				return fmt.Errorf("sequence orders must contain distinct values, %d repeated: %w", l, ErrInvalidOrder)
			}
			seen[l] = true
			if causal && l < 1 {
				return fmt.Errorf("sequence orders must be strictly positive when causal is true: %w", ErrInvalidOrder)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown lag spec kind %d: %w", s.kind, ErrInvalidOrder)
}

// Expand validates the spec and returns the lags it includes, or nil when the
// variable is excluded.
func (s LagSpec) Expand(causal bool) ([]int, error) {
	if err := s.Validate(causal); err != nil {
		return nil, err
	}
	switch s.kind {
	case LagsUpTo:
		first := firstLag(causal)
		out := make([]int, 0, s.max-first+1)
		for l := first; l <= s.max; l++ {
			out = append(out, l)
		}
		return out, nil
	case LagsExplicit:
		if len(s.lags) == 0 {
			return nil, nil
		}
		out := make([]int, len(s.lags))
		copy(out, s.lags)
		return out, nil
	}
	return nil, nil
}

func firstLag(causal bool) int {
	if causal {
		return 1
	}
	return 0
}

// Order is the lag-order request for the exogenous variables: either one
// LagSpec applied to every variable, or a mapping keyed by variable name or
// by column index. The zero value excludes every variable.
type Order struct {
	all     LagSpec
	byName  map[string]LagSpec
	byIndex map[int]LagSpec
}

// Uniform applies spec to every exogenous variable.
func Uniform(spec LagSpec) Order { return Order{all: spec} }

// PerVariable maps exogenous variable names to their specs.
func PerVariable(m map[string]LagSpec) Order {
	cp := make(map[string]LagSpec, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Order{byName: cp}
}

// ByColumn maps exogenous column indices to their specs.
func ByColumn(m map[int]LagSpec) Order {
	cp := make(map[int]LagSpec, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return Order{byIndex: cp}
}

// IsMapping reports whether the order is keyed per variable.
func (o Order) IsMapping() bool { return o.byName != nil || o.byIndex != nil }

// VarLags is the validated lag set of one exogenous variable.
type VarLags struct {
	// Name is the variable name used as the lag column base.
	Name string
	// Column is the index of the variable in the exog data.
	Column int
	Lags   []int
}

// formatOrder resolves an Order against the exog variable names. Variables
// whose spec is excluded are omitted. The returned warning is non-empty when
// a mapping leaves exog variables unspecified.
func formatOrder(names []string, order Order, causal bool) ([]VarLags, string, error) {
	if len(names) == 0 {
		if order.IsMapping() && (len(order.byName) > 0 || len(order.byIndex) > 0) {
			return nil, "", fmt.Errorf("no exog provided, extra keys: %s: %w", mappingKeys(order), ErrUnknownOrderKeys)
		}
		return nil, "", nil
	}

	specs := make([]LagSpec, len(names))
	warning := ""

	if order.IsMapping() {
		present := make([]bool, len(names))
		var extra []string

		index := make(map[string]int, len(names))
		for i, n := range names {
			index[n] = i
		}
		for key, spec := range order.byName {
			i, ok := index[key]
			if !ok {
				extra = append(extra, key)
				continue
			}
			specs[i], present[i] = spec, true
		}
		for key, spec := range order.byIndex {
			if key < 0 || key >= len(names) {
				extra = append(extra, strconv.Itoa(key))
				continue
			}
			specs[key], present[key] = spec, true
		}

		if len(extra) > 0 {
			sort.Strings(extra)
			return nil, "", fmt.Errorf("extra keys: %s: %w", strings.Join(extra, ", "), ErrUnknownOrderKeys)
		}

		var missing []string
		for i, ok := range present {
			if !ok {
				missing = append(missing, names[i])
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			warning = "exog contains variables that are missing from the order mapping. Missing keys: " +
				strings.Join(missing, ", ") + "."
		}
	} else {
		if err := order.all.Validate(causal); err != nil {
			return nil, "", err
		}
		for i := range specs {
			specs[i] = order.all
		}
	}

	var out []VarLags
	for i, spec := range specs {
		lags, err := spec.Expand(causal)
		if err != nil {
			return nil, "", fmt.Errorf("order for %s: %w", names[i], err)
		}
		if len(lags) == 0 {
			continue
		}
		out = append(out, VarLags{Name: names[i], Column: i, Lags: lags})
	}
	return out, warning, nil
}

func mappingKeys(o Order) string {
	var keys []string
	for k := range o.byName {
		keys = append(keys, k)
	}
	for k := range o.byIndex {
		keys = append(keys, strconv.Itoa(k))
	}
	sort.Strings(keys)
	return strings.Join(keys, ", ")
}

// arLags expands the autoregressive lag request. Lag 0 is never admissible.
func arLags(spec LagSpec) ([]int, error) {
	switch spec.kind {
	case LagsUpTo:
		if spec.max < 0 {
			return nil, fmt.Errorf("lags must be non-negative, got %d: %w", spec.max, ErrInvalidOrder)
		}
		out := make([]int, 0, spec.max)
		for l := 1; l <= spec.max; l++ {
			out = append(out, l)
		}
		return out, nil
	case LagsExplicit:
		lags, err := spec.Expand(true)
		if err != nil {
			return nil, fmt.Errorf("autoregressive lags: %w", err)
		}
		return lags, nil
	}
	return nil, nil
}

func formatLags(lags []int) string {
	parts := make([]string, len(lags))
	for i, l := range lags {
		parts[i] = strconv.Itoa(l)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
