package simplex

import (
	"context"
	"math"
	"testing"

	"github.com/GoSim-25-26J-441/smetana-core/internal/community"
	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
	"github.com/GoSim-25-26J-441/smetana-core/internal/medium"
	"github.com/GoSim-25-26J-441/smetana-core/internal/testmodels"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestSolveLinearMaximize(t *testing.T) {
	p := &lp.Problem{
		Variables: []lp.Variable{
			{Name: "x", Upper: math.Inf(1)},
			{Name: "y", Upper: math.Inf(1)},
		},
		Constraints: []lp.Constraint{
			lp.AtMost("c1", lp.Expr{"x": 1, "y": 2}, 4),
			lp.AtMost("c2", lp.Expr{"x": 3, "y": 1}, 6),
		},
		Objective: lp.Objective{Expr: lp.Expr{"x": 1, "y": 1}, Sense: lp.Maximize},
	}

	sol, err := New().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sol.Optimal() {
		t.Fatalf("expected optimal, got %s", sol.Status)
	}
	if !approx(sol.ObjectiveValue, 2.8) || !approx(sol.Value("x"), 1.6) || !approx(sol.Value("y"), 1.2) {
		t.Fatalf("unexpected solution: obj=%f x=%f y=%f", sol.ObjectiveValue, sol.Value("x"), sol.Value("y"))
	}
}

func TestSolveMinimizeWithNegativeBounds(t *testing.T) {
	// A free variable pinned by an equality row and a variable that must be negative.
	p := &lp.Problem{
		Variables: []lp.Variable{
			{Name: "free", Lower: math.Inf(-1), Upper: math.Inf(1)},
			{Name: "neg", Lower: -10, Upper: -2},
		},
		Constraints: []lp.Constraint{
			lp.Equal("pin", lp.Expr{"free": 1}, -3),
		},
		Objective: lp.Objective{Expr: lp.Expr{"neg": -1}, Sense: lp.Minimize},
	}

	sol, err := New().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sol.Optimal() {
		t.Fatalf("expected optimal, got %s", sol.Status)
	}
	if !approx(sol.Value("free"), -3) || !approx(sol.Value("neg"), -2) || !approx(sol.ObjectiveValue, 2) {
		t.Fatalf("unexpected solution: free=%f neg=%f obj=%f", sol.Value("free"), sol.Value("neg"), sol.ObjectiveValue)
	}
}

func TestSolveRangedConstraint(t *testing.T) {
	p := &lp.Problem{
		Variables: []lp.Variable{{Name: "x", Upper: 100}},
		Constraints: []lp.Constraint{
			{Name: "range", Expr: lp.Expr{"x": 2}, Lower: 4, Upper: 10},
		},
		Objective: lp.Objective{Expr: lp.Expr{"x": 1}, Sense: lp.Minimize},
	}
	sol, err := New().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sol.Optimal() || !approx(sol.Value("x"), 2) {
		t.Fatalf("expected x=2, got %s %f", sol.Status, sol.Value("x"))
	}

	p.Objective.Sense = lp.Maximize
	sol, err = New().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sol.Optimal() || !approx(sol.Value("x"), 5) {
		t.Fatalf("expected x=5, got %s %f", sol.Status, sol.Value("x"))
	}
}

func TestSolveInfeasible(t *testing.T) {
	p := &lp.Problem{
		Variables: []lp.Variable{{Name: "x", Upper: 10}},
		Constraints: []lp.Constraint{
			lp.AtLeast("low", lp.Expr{"x": 1}, 5),
			lp.AtMost("high", lp.Expr{"x": 1}, 3),
		},
		Objective: lp.Objective{Expr: lp.Expr{"x": 1}, Sense: lp.Maximize},
	}
	sol, err := New().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if sol.Status != lp.StatusInfeasible {
		t.Fatalf("expected infeasible, got %s", sol.Status)
	}
}

func TestSolveKnapsack(t *testing.T) {
	p := &lp.Problem{
		Variables: []lp.Variable{
			{Name: "a", Upper: 1, Type: lp.Binary},
			{Name: "b", Upper: 1, Type: lp.Binary},
			{Name: "c", Upper: 1, Type: lp.Binary},
		},
		Constraints: []lp.Constraint{
			lp.AtMost("weight", lp.Expr{"a": 2, "b": 3, "c": 1}, 5),
		},
		Objective: lp.Objective{Expr: lp.Expr{"a": 5, "b": 4, "c": 3}, Sense: lp.Maximize},
	}
	sol, err := New().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sol.Optimal() {
		t.Fatalf("expected optimal, got %s", sol.Status)
	}
	if sol.ObjectiveValue != 9 || sol.Value("a") != 1 || sol.Value("b") != 1 || sol.Value("c") != 0 {
		t.Fatalf("unexpected knapsack solution: obj=%f a=%f b=%f c=%f",
			sol.ObjectiveValue, sol.Value("a"), sol.Value("b"), sol.Value("c"))
	}
}

func TestSolveIntegerCut(t *testing.T) {
	p := &lp.Problem{
		Variables: []lp.Variable{
			{Name: "y1", Upper: 1, Type: lp.Binary},
			{Name: "y2", Upper: 1, Type: lp.Binary},
		},
		Constraints: []lp.Constraint{
			lp.AtLeast("cover", lp.Expr{"y1": 1, "y2": 1}, 1),
			lp.AtMost("cut_1", lp.Expr{"y1": 1}, 0),
		},
		Objective: lp.Objective{Expr: lp.Expr{"y1": 1, "y2": 1}, Sense: lp.Minimize},
	}
	sol, err := New().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sol.Optimal() || sol.Value("y1") != 0 || sol.Value("y2") != 1 {
		t.Fatalf("unexpected solution: %s y1=%f y2=%f", sol.Status, sol.Value("y1"), sol.Value("y2"))
	}

	p.Constraints = append(p.Constraints, lp.AtMost("cut_2", lp.Expr{"y2": 1}, 0))
	sol, err = New().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if sol.Status != lp.StatusInfeasible {
		t.Fatalf("expected infeasible after both cuts, got %s", sol.Status)
	}
}

func TestSolveNodeLimit(t *testing.T) {
	p := &lp.Problem{
		Variables: []lp.Variable{
			{Name: "a", Upper: 1, Type: lp.Binary},
			{Name: "b", Upper: 1, Type: lp.Binary},
		},
		Constraints: []lp.Constraint{
			lp.AtMost("weight", lp.Expr{"a": 2, "b": 2}, 3),
		},
		Objective: lp.Objective{Expr: lp.Expr{"a": 1, "b": 1}, Sense: lp.Maximize},
	}
	sol, err := New(WithMaxNodes(1)).Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if sol.Status != lp.StatusFailed {
		t.Fatalf("expected failed status when the node limit stops the search, got %s", sol.Status)
	}
}

func TestSolveHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &lp.Problem{Variables: []lp.Variable{{Name: "x", Upper: 1}}}
	if _, err := New().Solve(ctx, p); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestSolveRejectsInvalidProblem(t *testing.T) {
	p := &lp.Problem{
		Variables: []lp.Variable{{Name: "x", Upper: 1}},
		Objective: lp.Objective{Expr: lp.Expr{"missing": 1}},
	}
	if _, err := New().Solve(context.Background(), p); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSolveEmptyProblem(t *testing.T) {
	sol, err := New().Solve(context.Background(), &lp.Problem{})
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sol.Optimal() || sol.ObjectiveValue != 0 {
		t.Fatalf("expected trivial optimum, got %+v", sol)
	}
}

func TestInfiniteBoundsAreClamped(t *testing.T) {
	p := &lp.Problem{
		Variables: []lp.Variable{{Name: "x", Upper: math.Inf(1)}},
		Objective: lp.Objective{Expr: lp.Expr{"x": 1}, Sense: lp.Maximize},
	}
	sol, err := New(WithInfinity(50)).Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sol.Optimal() || !approx(sol.Value("x"), 50) {
		t.Fatalf("expected x clamped to 50, got %s %f", sol.Status, sol.Value("x"))
	}
}

func TestSolveRedundantEqualities(t *testing.T) {
	// Rows two and four are implied by the others, and every vertex is degenerate.
	p := &lp.Problem{
		Variables: []lp.Variable{
			{Name: "a", Upper: 10},
			{Name: "b", Upper: 10},
			{Name: "c", Upper: 10},
		},
		Constraints: []lp.Constraint{
			lp.Equal("ab", lp.Expr{"a": 1, "b": -1}, 0),
			lp.Equal("ab2", lp.Expr{"a": 2, "b": -2}, 0),
			lp.Equal("bc", lp.Expr{"b": 1, "c": -1}, 0),
			lp.Equal("ac", lp.Expr{"a": 1, "c": -1}, 0),
		},
		Objective: lp.Objective{Expr: lp.Expr{"a": 1}, Sense: lp.Maximize},
	}
	sol, err := New().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve error: %v", err)
	}
	if !sol.Optimal() || !approx(sol.ObjectiveValue, 10) || !approx(sol.Value("c"), 10) {
		t.Fatalf("expected a=b=c=10, got %s obj=%f c=%f", sol.Status, sol.ObjectiveValue, sol.Value("c"))
	}
}

func TestSolveCommunityMediumIsFeasible(t *testing.T) {
	c, err := community.Build("community", testmodels.Pair())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}

	tests := []struct {
		interacting bool
		want        []string
	}{
		{interacting: true, want: []string{"EX_glc_e"}},
		{interacting: false, want: []string{"EX_glc_e", "EX_x_e"}},
	}
	for _, tol := range []float64{1e-9, 1e-7, 1e-5} {
		for _, tt := range tests {
			est := medium.NewFluxEstimator(New(WithTolerance(tol)), medium.MethodFlux, 1e-6, 1000)
			got, err := est.MinimalMedium(context.Background(), c, medium.Request{
				MinGrowth:   0.1,
				Interacting: tt.interacting,
			})
			if err != nil {
				t.Fatalf("tol=%g interacting=%v: MinimalMedium error: %v", tol, tt.interacting, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("tol=%g interacting=%v: expected %v, got %v", tol, tt.interacting, tt.want, got)
			}
			for _, id := range tt.want {
				if _, ok := got[id]; !ok {
					t.Fatalf("tol=%g interacting=%v: expected %s in %v", tol, tt.interacting, id, got)
				}
			}
		}
	}
}

func TestSolveCommunityComponentsMedium(t *testing.T) {
	c, err := community.Build("community", testmodels.Pair())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	est := medium.NewFluxEstimator(New(), medium.MethodComponents, 1e-6, 1000)
	got, err := est.MinimalMedium(context.Background(), c, medium.Request{MinGrowth: 0.1, Interacting: true})
	if err != nil {
		t.Fatalf("MinimalMedium error: %v", err)
	}
	if _, ok := got["EX_glc_e"]; !ok || len(got) != 1 {
		t.Fatalf("expected glucose alone, got %v", got)
	}
}
