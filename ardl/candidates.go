package ardl

import (
	"math"

	"gonum.org/v1/gonum/stat/combin"
)

// candidateGenerator yields column subsets of the selectable lag columns.
// Columns are indices into the concatenation of the endog lag block and the
// exog lag blocks. The sequence is finite and restartable with Reset.
type candidateGenerator interface {
	Next() bool
	// Columns returns the current subset in increasing order.
	Columns() []int
	// Count returns the total number of subsets the generator yields.
	Count() int
	Reset()
}

// nestedGenerator yields, for each block, the leading 0..width columns, as
// the cartesian product over blocks with the last block varying fastest.
type nestedGenerator struct {
	widths  []int
	offsets []int
	lens    []int
	gen     *combin.CartesianGenerator
	counts  []int
}

func newNestedGenerator(widths []int) *nestedGenerator {
	g := &nestedGenerator{
		widths:  widths,
		offsets: make([]int, len(widths)),
		lens:    make([]int, len(widths)),
	}
	off := 0
	for i, w := range widths {
		g.offsets[i] = off
		g.lens[i] = w + 1
		off += w
	}
	g.Reset()
	return g
}

func (g *nestedGenerator) Next() bool {
	if !g.gen.Next() {
		return false
	}
	g.counts = g.gen.Product(g.counts)
	return true
}

func (g *nestedGenerator) Columns() []int {
	var cols []int
	for b, n := range g.counts {
		for j := 0; j < n; j++ {
			cols = append(cols, g.offsets[b]+j)
		}
	}
	return cols
}

func (g *nestedGenerator) Count() int { return combin.Card(g.lens) }

func (g *nestedGenerator) Reset() {
	g.gen = combin.NewCartesianGenerator(g.lens)
	g.counts = make([]int, len(g.lens))
}

// globalGenerator yields every subset of n columns, by size ascending and
// lexicographically within a size.
type globalGenerator struct {
	n    int
	size int
	gen  *combin.CombinationGenerator
	cur  []int
}

func newGlobalGenerator(n int) *globalGenerator {
	g := &globalGenerator{n: n}
	g.Reset()
	return g
}

func (g *globalGenerator) Next() bool {
	if g.size < 0 {
		// the empty subset comes first
		g.size = 0
		g.cur = nil
		return true
	}
	for {
		if g.gen != nil && g.gen.Next() {
			g.cur = g.gen.Combination(g.cur)
			return true
		}
		if g.size >= g.n {
			return false
		}
		g.size++
		g.gen = combin.NewCombinationGenerator(g.n, g.size)
		g.cur = make([]int, g.size)
	}
}

func (g *globalGenerator) Columns() []int { return append([]int(nil), g.cur...) }

func (g *globalGenerator) Count() int { return globalCount(g.n) }

func (g *globalGenerator) Reset() {
	g.size = -1
	g.gen = nil
	g.cur = nil
}

// globalCount returns 2^n, saturating at math.MaxInt.
func globalCount(n int) int {
	if n >= 62 {
		return math.MaxInt
	}
	return 1 << n
}
