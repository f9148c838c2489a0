package simplex

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
)

const (
	pivotTolerance       = 1e-9
	feasibilityTolerance = 1e-6
)

// tableau is a dense two-phase simplex over the standard form
//
//	minimize cᵀx  s.t.  Ax = b, x >= 0
//
// Every row owns an artificial column (n+i), so the starting basis is always
// the identity and rank-deficient or degenerate systems need no special case.
// The last row carries the reduced costs and the last column the right-hand
// side; the bottom-right cell holds the negated objective.
type tableau struct {
	t     *mat.Dense
	basis []int
	m, n  int
	rhs   int
	tol   float64
}

func newTableau(A *mat.Dense, b []float64, tol float64) *tableau {
	m, n := A.Dims()
	width := n + m + 1
	tb := &tableau{
		t:     mat.NewDense(m+1, width, nil),
		basis: make([]int, m),
		m:     m,
		n:     n,
		rhs:   width - 1,
		tol:   tol,
	}
	for i := 0; i < m; i++ {
		sign := 1.0
		if b[i] < 0 {
			sign = -1
		}
		row := tb.t.RawRowView(i)
		for j := 0; j < n; j++ {
			row[j] = sign * A.At(i, j)
		}
		row[n+i] = 1
		row[tb.rhs] = sign * b[i]
		tb.basis[i] = n + i
	}
	return tb
}

// solveStandard runs both phases and returns the primal values of the n
// structural columns.
func solveStandard(c []float64, A *mat.Dense, b []float64, tol float64) ([]float64, lp.Status) {
	tb := newTableau(A, b, tol)
	m, n := tb.m, tb.n
	maxIter := 50 * (m + n + 1)

	phase1 := make([]float64, n+m)
	for i := 0; i < m; i++ {
		phase1[n+i] = 1
	}
	tb.price(phase1)
	if st := tb.iterate(n+m, maxIter); st != lp.StatusOptimal {
		return nil, lp.StatusFailed
	}
	if tb.objective() > feasibilityTolerance {
		return nil, lp.StatusInfeasible
	}
	tb.evictArtificials()

	phase2 := make([]float64, n+m)
	copy(phase2, c)
	tb.price(phase2)
	if st := tb.iterate(n, maxIter); st != lp.StatusOptimal {
		return nil, st
	}

	x := make([]float64, n)
	for i, j := range tb.basis {
		if j < n {
			x[j] = math.Max(tb.t.At(i, tb.rhs), 0)
		}
	}
	return x, lp.StatusOptimal
}

func (tb *tableau) objective() float64 {
	return -tb.t.At(tb.m, tb.rhs)
}

// price rebuilds the reduced-cost row for cost against the current basis.
func (tb *tableau) price(cost []float64) {
	obj := tb.t.RawRowView(tb.m)
	for j := range obj {
		obj[j] = 0
	}
	copy(obj, cost)
	for i, j := range tb.basis {
		if cb := cost[j]; cb != 0 {
			floats.AddScaled(obj, -cb, tb.t.RawRowView(i))
		}
	}
}

// iterate pivots until no column below limit has a negative reduced cost.
// Dantzig's rule picks the entering column; after a degenerate step Bland's
// rule takes over until the objective moves again, which rules out cycling.
func (tb *tableau) iterate(limit, maxIter int) lp.Status {
	obj := tb.t.RawRowView(tb.m)
	bland := false
	for iter := 0; iter < maxIter; iter++ {
		col := -1
		for j := 0; j < limit; j++ {
			if obj[j] >= -tb.tol {
				continue
			}
			if bland {
				col = j
				break
			}
			if col < 0 || obj[j] < obj[col] {
				col = j
			}
		}
		if col < 0 {
			return lp.StatusOptimal
		}

		row := -1
		best := math.Inf(1)
		for i := 0; i < tb.m; i++ {
			a := tb.t.At(i, col)
			if a <= pivotTolerance {
				continue
			}
			ratio := tb.t.At(i, tb.rhs) / a
			switch {
			case ratio < best-pivotTolerance:
				row, best = i, ratio
			case ratio <= best+pivotTolerance && tb.basis[i] < tb.basis[row]:
				row, best = i, math.Min(ratio, best)
			}
		}
		if row < 0 {
			return lp.StatusUnbounded
		}
		bland = best <= pivotTolerance
		tb.pivot(row, col)
	}
	return lp.StatusFailed
}

// evictArtificials swaps artificial columns still basic at zero level for a
// structural column of the same row. Rows with no usable entry are redundant
// and keep their artificial, which never re-enters.
func (tb *tableau) evictArtificials() {
	for i, j := range tb.basis {
		if j < tb.n {
			continue
		}
		row := tb.t.RawRowView(i)
		col := -1
		for k := 0; k < tb.n; k++ {
			if math.Abs(row[k]) > pivotTolerance && (col < 0 || math.Abs(row[k]) > math.Abs(row[col])) {
				col = k
			}
		}
		row[tb.rhs] = 0
		if col >= 0 {
			tb.pivot(i, col)
		}
	}
}

func (tb *tableau) pivot(r, c int) {
	prow := tb.t.RawRowView(r)
	floats.Scale(1/prow[c], prow)
	prow[c] = 1
	rows, _ := tb.t.Dims()
	for i := 0; i < rows; i++ {
		if i == r {
			continue
		}
		row := tb.t.RawRowView(i)
		if f := row[c]; f != 0 {
			floats.AddScaled(row, -f, prow)
			row[c] = 0
			if i < tb.m && row[tb.rhs] < 0 {
				row[tb.rhs] = 0
			}
		}
	}
	tb.basis[r] = c
}
