// Package lp describes linear and mixed-integer problems in a solver-neutral form
// and the Solver contract the scoring engine drives.
package lp

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// VarType distinguishes continuous from binary variables
type VarType int

const (
	Continuous VarType = iota
	Binary
)

func (t VarType) String() string {
	switch t {
	case Continuous:
		return "continuous"
	case Binary:
		return "binary"
	default:
		return fmt.Sprintf("VarType(%d)", int(t))
	}
}

// Sense is the optimization direction
type Sense int

const (
	Maximize Sense = iota
	Minimize
)

func (s Sense) String() string {
	if s == Minimize {
		return "min"
	}
	return "max"
}

// Expr is a linear expression: variable name -> coefficient
type Expr map[string]float64

// Add accumulates coef*name into the expression and returns it
func (e Expr) Add(name string, coef float64) Expr {
	e[name] += coef
	return e
}

// Names returns the variables of the expression in sorted order
func (e Expr) Names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Eval computes the expression value for the given variable values
func (e Expr) Eval(values map[string]float64) float64 {
	total := 0.0
	for name, coef := range e {
		total += coef * values[name]
	}
	return total
}

// Clone copies the expression
func (e Expr) Clone() Expr {
	out := make(Expr, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Variable is a decision variable with bounds
type Variable struct {
	Name  string
	Lower float64
	Upper float64
	Type  VarType
}

// Constraint bounds a linear expression: Lower <= Expr <= Upper.
// Use math.Inf for a one-sided constraint.
type Constraint struct {
	Name  string
	Expr  Expr
	Lower float64
	Upper float64
}

// AtMost builds the constraint expr <= ub
func AtMost(name string, expr Expr, ub float64) Constraint {
	return Constraint{Name: name, Expr: expr, Lower: math.Inf(-1), Upper: ub}
}

// AtLeast builds the constraint expr >= lb
func AtLeast(name string, expr Expr, lb float64) Constraint {
	return Constraint{Name: name, Expr: expr, Lower: lb, Upper: math.Inf(1)}
}

// Equal builds the constraint expr == rhs
func Equal(name string, expr Expr, rhs float64) Constraint {
	return Constraint{Name: name, Expr: expr, Lower: rhs, Upper: rhs}
}

// Objective is the expression to optimize and its direction
type Objective struct {
	Expr  Expr
	Sense Sense
}

// Problem is a complete optimization problem handed to a Solver
type Problem struct {
	Variables   []Variable
	Constraints []Constraint
	Objective   Objective
}

// Validate checks that every constraint and the objective reference declared
// variables and that bounds are consistent
func (p *Problem) Validate() error {
	declared := make(map[string]bool, len(p.Variables))
	for _, v := range p.Variables {
		if v.Name == "" {
			return fmt.Errorf("variable name cannot be empty")
		}
		if declared[v.Name] {
			return fmt.Errorf("duplicate variable: %s", v.Name)
		}
		if v.Lower > v.Upper {
			return fmt.Errorf("variable %s: lower bound %g exceeds upper bound %g", v.Name, v.Lower, v.Upper)
		}
		declared[v.Name] = true
	}
	for _, c := range p.Constraints {
		if c.Lower > c.Upper {
			return fmt.Errorf("constraint %s: lower bound %g exceeds upper bound %g", c.Name, c.Lower, c.Upper)
		}
		for name := range c.Expr {
			if !declared[name] {
				return fmt.Errorf("constraint %s references unknown variable %s", c.Name, name)
			}
		}
	}
	for name := range p.Objective.Expr {
		if !declared[name] {
			return fmt.Errorf("objective references unknown variable %s", name)
		}
	}
	return nil
}

// HasIntegers reports whether the problem contains binary variables
func (p *Problem) HasIntegers() bool {
	for _, v := range p.Variables {
		if v.Type == Binary {
			return true
		}
	}
	return false
}

// Status is the outcome of a solve
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	// StatusFailed covers node/iteration limits and numerical trouble
	StatusFailed Status = "failed"
)

// Solution is the ephemeral result of one solve
type Solution struct {
	Status         Status
	ObjectiveValue float64
	Values         map[string]float64
}

// Optimal reports whether the solve reached optimality
func (s *Solution) Optimal() bool {
	return s != nil && s.Status == StatusOptimal
}

// Value returns the value of a variable, 0 when absent
func (s *Solution) Value(name string) float64 {
	if s == nil {
		return 0
	}
	return s.Values[name]
}

// Solver solves optimization problems. Infeasibility and unboundedness are
// reported through Solution.Status; an error means the solve could not be
// attempted or failed unexpectedly.
type Solver interface {
	Solve(ctx context.Context, p *Problem) (*Solution, error)
}

// SolverFunc adapts a function to the Solver interface
type SolverFunc func(ctx context.Context, p *Problem) (*Solution, error)

// Solve calls f(ctx, p)
func (f SolverFunc) Solve(ctx context.Context, p *Problem) (*Solution, error) {
	return f(ctx, p)
}
