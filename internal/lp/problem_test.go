package lp

import (
	"context"
	"math"
	"strings"
	"testing"
)

func TestExprHelpers(t *testing.T) {
	e := Expr{}
	e.Add("b", 2).Add("a", 1).Add("b", 1)

	if e["b"] != 3 {
		t.Fatalf("expected accumulated coefficient 3, got %f", e["b"])
	}
	names := e.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("expected sorted names [a b], got %v", names)
	}
	if got := e.Eval(map[string]float64{"a": 2, "b": 1}); got != 5 {
		t.Fatalf("expected eval 5, got %f", got)
	}

	cloned := e.Clone()
	cloned["a"] = 10
	if e["a"] != 1 {
		t.Fatalf("clone is not independent")
	}
}

func TestConstraintBuilders(t *testing.T) {
	c := AtMost("cut", Expr{"y": 1}, 0)
	if !math.IsInf(c.Lower, -1) || c.Upper != 0 {
		t.Fatalf("unexpected AtMost bounds [%f, %f]", c.Lower, c.Upper)
	}
	c = AtLeast("growth", Expr{"bio": 1}, 0.1)
	if c.Lower != 0.1 || !math.IsInf(c.Upper, 1) {
		t.Fatalf("unexpected AtLeast bounds [%f, %f]", c.Lower, c.Upper)
	}
	c = Equal("mass", Expr{"r": 1}, 0)
	if c.Lower != 0 || c.Upper != 0 {
		t.Fatalf("unexpected Equal bounds [%f, %f]", c.Lower, c.Upper)
	}
}

func TestProblemValidate(t *testing.T) {
	tests := []struct {
		name    string
		problem Problem
		want    string
	}{
		{
			name:    "valid",
			problem: Problem{Variables: []Variable{{Name: "x", Upper: 1}}, Objective: Objective{Expr: Expr{"x": 1}}},
		},
		{
			name:    "duplicate variable",
			problem: Problem{Variables: []Variable{{Name: "x"}, {Name: "x"}}},
			want:    "duplicate variable",
		},
		{
			name:    "inverted variable bounds",
			problem: Problem{Variables: []Variable{{Name: "x", Lower: 1, Upper: 0}}},
			want:    "exceeds upper bound",
		},
		{
			name: "unknown constraint variable",
			problem: Problem{
				Variables:   []Variable{{Name: "x", Upper: 1}},
				Constraints: []Constraint{AtMost("c", Expr{"y": 1}, 1)},
			},
			want: "unknown variable y",
		},
		{
			name: "unknown objective variable",
			problem: Problem{
				Variables: []Variable{{Name: "x", Upper: 1}},
				Objective: Objective{Expr: Expr{"z": 1}},
			},
			want: "objective references unknown variable z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.problem.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestHasIntegers(t *testing.T) {
	p := Problem{Variables: []Variable{{Name: "x"}}}
	if p.HasIntegers() {
		t.Fatalf("expected continuous problem")
	}
	p.Variables = append(p.Variables, Variable{Name: "y", Upper: 1, Type: Binary})
	if !p.HasIntegers() {
		t.Fatalf("expected problem with binaries")
	}
}

func TestSolutionAccessors(t *testing.T) {
	var nilSol *Solution
	if nilSol.Optimal() {
		t.Fatalf("nil solution must not be optimal")
	}
	if nilSol.Value("x") != 0 {
		t.Fatalf("nil solution value must be 0")
	}

	sol := &Solution{Status: StatusOptimal, Values: map[string]float64{"x": 2}}
	if !sol.Optimal() || sol.Value("x") != 2 || sol.Value("y") != 0 {
		t.Fatalf("unexpected solution accessors")
	}
}

func TestSolverFunc(t *testing.T) {
	called := false
	var s Solver = SolverFunc(func(ctx context.Context, p *Problem) (*Solution, error) {
		called = true
		return &Solution{Status: StatusInfeasible}, nil
	})
	sol, err := s.Solve(context.Background(), &Problem{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called || sol.Status != StatusInfeasible {
		t.Fatalf("expected SolverFunc to delegate")
	}
}

func TestEnumStrings(t *testing.T) {
	if Binary.String() != "binary" || Continuous.String() != "continuous" {
		t.Fatalf("unexpected VarType strings")
	}
	if Minimize.String() != "min" || Maximize.String() != "max" {
		t.Fatalf("unexpected Sense strings")
	}
}
