package scoring

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
	"github.com/GoSim-25-26J-441/smetana-core/internal/testmodels"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/config"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

func TestProductionPotentialLoop(t *testing.T) {
	solver := &scriptedSolver{script: []*lp.Solution{
		optimal(20, map[string]float64{"EX_x_e": 20, "EX_y_e": 0}), // round 1: x contributes
		optimal(0, map[string]float64{"EX_y_e": 0}),                // round 2: nothing changes
		optimal(0, map[string]float64{"EX_y_e": 0}),                // confirmation of EX_y_e
	}}
	m := testmodels.Producer()
	set, err := ProductionPotential(context.Background(), solver, m, models.Medium{"EX_glc_e": 1}, testParams())
	if err != nil {
		t.Fatalf("ProductionPotential error: %v", err)
	}
	if !reflect.DeepEqual(set.Sorted(), []string{"x_e"}) {
		t.Fatalf("expected {x_e}, got %v", set.Sorted())
	}
	if solver.calls() != 3 {
		t.Fatalf("expected 3 solves, got %d", solver.calls())
	}

	first := solver.problems[0].Objective
	if first.Sense != lp.Maximize || len(first.Expr) != 2 || first.Expr["EX_x_e"] != 1 || first.Expr["EX_y_e"] != 1 {
		t.Fatalf("expected to maximize both candidates, got %+v", first)
	}
	if _, ok := first.Expr["EX_glc_e"]; ok {
		t.Fatalf("community medium exchanges must not be candidates")
	}

	// candidate sets never grow
	prev := len(first.Expr)
	for _, p := range solver.problems[1:] {
		if len(p.Objective.Expr) > prev {
			t.Fatalf("candidate set grew from %d to %d", prev, len(p.Objective.Expr))
		}
		prev = len(p.Objective.Expr)
	}
	if len(set) > len(m.ExchangeReactions()) {
		t.Fatalf("contribution set larger than the exchange count")
	}
}

func TestProductionPotentialConfirmationModes(t *testing.T) {
	script := func() []*lp.Solution {
		return []*lp.Solution{
			optimal(20, map[string]float64{"EX_x_e": 20}),
			optimal(0, map[string]float64{"EX_y_e": 0}),
			optimal(3, map[string]float64{"EX_y_e": 3}), // individually EX_y_e can secrete
		}
	}

	tests := []struct {
		mode string
		want []string
	}{
		{config.ConfirmationLegacy, []string{"x_e"}},
		{config.ConfirmationInclusive, []string{"x_e", "y_e"}},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			p := testParams()
			p.Confirmation = tt.mode
			solver := &scriptedSolver{script: script()}
			set, err := ProductionPotential(context.Background(), solver, testmodels.Producer(), models.Medium{"EX_glc_e": 1}, p)
			if err != nil {
				t.Fatalf("ProductionPotential error: %v", err)
			}
			if !reflect.DeepEqual(set.Sorted(), tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, set.Sorted())
			}
		})
	}
}

func TestProductionPotentialLegacyRemovesConfirmed(t *testing.T) {
	// two exchanges of x: the first contributes x_e, the second is confirmed
	// individually, which in legacy mode removes x_e again
	m := testmodels.Producer()
	m.Reactions = append(m.Reactions, models.Reaction{
		ID: "EX_x_e_alt", Metabolites: map[string]float64{"x_e": -1}, LowerBound: 0, UpperBound: 1000,
	})
	if err := m.Index(); err != nil {
		t.Fatalf("Index error: %v", err)
	}
	solver := &scriptedSolver{script: []*lp.Solution{
		optimal(20, map[string]float64{"EX_x_e": 20}),
		optimal(0, nil),
		optimal(5, map[string]float64{"EX_y_e": 5}),      // confirm EX_y_e
		optimal(5, map[string]float64{"EX_x_e_alt": 5}), // confirm EX_x_e_alt
	}}
	set, err := ProductionPotential(context.Background(), solver, m, models.Medium{"EX_glc_e": 1}, testParams())
	if err != nil {
		t.Fatalf("ProductionPotential error: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected legacy confirmation to empty the set, got %v", set.Sorted())
	}
}

func TestProductionPotentialStopsWhenNotOptimal(t *testing.T) {
	solver := &scriptedSolver{script: []*lp.Solution{infeasible()}}
	set, err := ProductionPotential(context.Background(), solver, testmodels.Producer(), nil, testParams())
	if err != nil {
		t.Fatalf("ProductionPotential error: %v", err)
	}
	if len(set) != 0 {
		t.Fatalf("expected an empty set, got %v", set.Sorted())
	}
	// one failed round, then one confirmation per exchange (no community medium)
	if solver.calls() != 4 {
		t.Fatalf("expected 4 solves, got %d", solver.calls())
	}
}

func TestProductionPotentialSkipsBlockedExchanges(t *testing.T) {
	m := testmodels.Producer()
	r, _ := m.Reaction("EX_y_e")
	r.UpperBound = 0
	solver := &scriptedSolver{}
	if _, err := ProductionPotential(context.Background(), solver, m, models.Medium{"EX_glc_e": 1}, testParams()); err != nil {
		t.Fatalf("ProductionPotential error: %v", err)
	}
	obj := solver.problems[0].Objective.Expr
	if _, ok := obj["EX_y_e"]; ok {
		t.Fatalf("exchanges without secretion capacity must not be candidates")
	}
}

func TestProductionPotentialAppliesEnvironment(t *testing.T) {
	p := testParams()
	p.Environment = testmodels.GlucoseOnly()
	solver := &scriptedSolver{}
	if _, err := ProductionPotential(context.Background(), solver, testmodels.Producer(), nil, p); err != nil {
		t.Fatalf("ProductionPotential error: %v", err)
	}
	v, ok := findVariable(solver.problems[0], "EX_y_e")
	if !ok || v.Lower != 0 {
		t.Fatalf("expected y uptake to be closed by the environment, got %+v", v)
	}
	v, _ = findVariable(solver.problems[0], "EX_glc_e")
	if v.Lower != -10 {
		t.Fatalf("expected glucose uptake of 10, got %+v", v)
	}
}

func TestProductionPotentialSolverError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ProductionPotential(context.Background(), &scriptedSolver{err: boom}, testmodels.Producer(), nil, testParams())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped solver error, got %v", err)
	}
	if !strings.Contains(err.Error(), "mp: organism producer") {
		t.Fatalf("expected scorer context in %q", err)
	}
}
