// Package simplex is a small reference backend for lp.Solver: a two-phase dense
// tableau simplex over gonum matrices. Binary variables are handled with depth-first branch and bound.
// It is meant for toy and test-sized models; production deployments plug a real
// MILP solver in through the lp.Solver interface.
package simplex

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
)

const (
	DefaultTolerance = 1e-9
	DefaultInfinity  = 1e5
	DefaultMaxNodes  = 10000

	integralityTolerance = 1e-6
	pruneTolerance       = 1e-9
)

// Solver solves lp.Problem values. The zero value is not usable; call New.
type Solver struct {
	tolerance float64
	infinity  float64
	maxNodes  int
}

// Option configures a Solver
type Option func(*Solver)

// WithTolerance sets the reduced-cost tolerance of the simplex
func WithTolerance(tol float64) Option {
	return func(s *Solver) {
		if tol > 0 {
			s.tolerance = tol
		}
	}
}

// WithInfinity sets the magnitude infinite bounds are clamped to
func WithInfinity(inf float64) Option {
	return func(s *Solver) {
		if inf > 0 {
			s.infinity = inf
		}
	}
}

// WithMaxNodes caps the number of branch-and-bound nodes per solve
func WithMaxNodes(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.maxNodes = n
		}
	}
}

// New creates a solver with defaults overridden by opts
func New(opts ...Option) *Solver {
	s := &Solver{
		tolerance: DefaultTolerance,
		infinity:  DefaultInfinity,
		maxNodes:  DefaultMaxNodes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve implements lp.Solver
func (s *Solver) Solve(ctx context.Context, p *lp.Problem) (*lp.Solution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("simplex: problem is required")
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("simplex: %w", err)
	}
	if len(p.Variables) == 0 {
		return &lp.Solution{Status: lp.StatusOptimal, Values: map[string]float64{}}, nil
	}

	lower := make([]float64, len(p.Variables))
	upper := make([]float64, len(p.Variables))
	for j, v := range p.Variables {
		lower[j] = s.clamp(v.Lower)
		upper[j] = s.clamp(v.Upper)
		if v.Type == lp.Binary {
			lower[j] = math.Max(math.Ceil(lower[j]-integralityTolerance), 0)
			upper[j] = math.Min(math.Floor(upper[j]+integralityTolerance), 1)
		}
		if lower[j] > upper[j] {
			return &lp.Solution{Status: lp.StatusInfeasible}, nil
		}
	}

	if !p.HasIntegers() {
		return s.solution(p, s.relax(p, lower, upper)), nil
	}
	return s.branchAndBound(ctx, p, lower, upper)
}

func (s *Solver) clamp(v float64) float64 {
	if v > s.infinity {
		return s.infinity
	}
	if v < -s.infinity {
		return -s.infinity
	}
	return v
}

type relaxation struct {
	status    lp.Status
	objective float64
	x         []float64
}

type node struct {
	lower []float64
	upper []float64
}

func (s *Solver) branchAndBound(ctx context.Context, p *lp.Problem, lower, upper []float64) (*lp.Solution, error) {
	var (
		best       *relaxation
		stack      = []node{{lower: lower, upper: upper}}
		visited    int
		incomplete bool
	)
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if visited >= s.maxNodes {
			incomplete = true
			break
		}
		visited++

		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		r := s.relax(p, nd.lower, nd.upper)
		switch r.status {
		case lp.StatusInfeasible:
			continue
		case lp.StatusUnbounded:
			return &lp.Solution{Status: lp.StatusUnbounded}, nil
		case lp.StatusFailed:
			incomplete = true
			continue
		}
		if best != nil && !improves(p.Objective.Sense, r.objective, best.objective) {
			continue
		}

		j := fractional(p, r.x)
		if j < 0 {
			rr := r
			best = &rr
			continue
		}

		down := node{lower: nd.lower, upper: cloneBounds(nd.upper)}
		down.upper[j] = math.Floor(r.x[j])
		up := node{lower: cloneBounds(nd.lower), upper: nd.upper}
		up.lower[j] = math.Ceil(r.x[j])
		// The child nearest to the relaxed value is explored first.
		if r.x[j]-math.Floor(r.x[j]) >= 0.5 {
			stack = append(stack, down, up)
		} else {
			stack = append(stack, up, down)
		}
	}

	if best == nil {
		if incomplete {
			return &lp.Solution{Status: lp.StatusFailed}, nil
		}
		return &lp.Solution{Status: lp.StatusInfeasible}, nil
	}
	for j, v := range p.Variables {
		if v.Type == lp.Binary {
			best.x[j] = math.Round(best.x[j])
		}
	}
	best.objective = objectiveValue(p, best.x)
	return s.solution(p, *best), nil
}

func improves(sense lp.Sense, candidate, incumbent float64) bool {
	if sense == lp.Minimize {
		return candidate < incumbent-pruneTolerance
	}
	return candidate > incumbent+pruneTolerance
}

func fractional(p *lp.Problem, x []float64) int {
	for j, v := range p.Variables {
		if v.Type != lp.Binary {
			continue
		}
		if math.Abs(x[j]-math.Round(x[j])) > integralityTolerance {
			return j
		}
	}
	return -1
}

func cloneBounds(b []float64) []float64 {
	out := make([]float64, len(b))
	copy(out, b)
	return out
}

func (s *Solver) solution(p *lp.Problem, r relaxation) *lp.Solution {
	sol := &lp.Solution{Status: r.status}
	if r.status != lp.StatusOptimal {
		return sol
	}
	sol.ObjectiveValue = r.objective
	sol.Values = make(map[string]float64, len(p.Variables))
	for j, v := range p.Variables {
		sol.Values[v.Name] = r.x[j]
	}
	return sol
}

func objectiveValue(p *lp.Problem, x []float64) float64 {
	total := 0.0
	for j, v := range p.Variables {
		total += p.Objective.Expr[v.Name] * x[j]
	}
	return total
}

// relax solves the continuous relaxation of p under the given variable bounds.
//
// Variables are shifted to x = lower + x' so that x' >= 0, and every variable
// gets an upper-bound row x' + u = upper - lower. Equalities stay a single row;
// inequalities get a slack or surplus column and ranged rows a bounded slack.
func (s *Solver) relax(p *lp.Problem, lower, upper []float64) relaxation {
	n := len(p.Variables)
	index := make(map[string]int, n)
	for j, v := range p.Variables {
		index[v.Name] = j
	}

	type row struct {
		coefs map[int]float64
		rhs   float64
	}
	rows := make([]row, 0, n+len(p.Constraints))
	cols := 2 * n
	for j := 0; j < n; j++ {
		rows = append(rows, row{coefs: map[int]float64{j: 1, n + j: 1}, rhs: upper[j] - lower[j]})
	}

	for _, c := range p.Constraints {
		coefs := make(map[int]float64, len(c.Expr)+1)
		shift := 0.0
		for name, coef := range c.Expr {
			j := index[name]
			coefs[j] += coef
			shift += coef * lower[j]
		}
		hasLower := !math.IsInf(c.Lower, -1)
		hasUpper := !math.IsInf(c.Upper, 1)
		switch {
		case hasLower && hasUpper && c.Lower == c.Upper:
			rows = append(rows, row{coefs: coefs, rhs: c.Lower - shift})
		case hasLower && hasUpper:
			w := cols
			t := cols + 1
			cols += 2
			coefs[w] = -1
			rows = append(rows,
				row{coefs: coefs, rhs: c.Lower - shift},
				row{coefs: map[int]float64{w: 1, t: 1}, rhs: c.Upper - c.Lower},
			)
		case hasLower:
			coefs[cols] = -1
			cols++
			rows = append(rows, row{coefs: coefs, rhs: c.Lower - shift})
		case hasUpper:
			coefs[cols] = 1
			cols++
			rows = append(rows, row{coefs: coefs, rhs: c.Upper - shift})
		}
	}

	A := mat.NewDense(len(rows), cols, nil)
	b := make([]float64, len(rows))
	for i, rw := range rows {
		for j, v := range rw.coefs {
			A.Set(i, j, v)
		}
		b[i] = rw.rhs
	}

	sign := 1.0
	if p.Objective.Sense == lp.Maximize {
		sign = -1
	}
	cost := make([]float64, cols)
	for name, coef := range p.Objective.Expr {
		cost[index[name]] = sign * coef
	}

	xs, status := solveStandard(cost, A, b, s.tolerance)
	if status != lp.StatusOptimal {
		return relaxation{status: status}
	}

	x := make([]float64, n)
	for j := 0; j < n; j++ {
		x[j] = lower[j] + xs[j]
	}
	return relaxation{status: lp.StatusOptimal, objective: objectiveValue(p, x), x: x}
}
