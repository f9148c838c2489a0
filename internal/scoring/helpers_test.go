package scoring

import (
	"context"
	"sync"

	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/logger"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// scriptedSolver replays solutions in order and records every problem it saw.
// Once the script is exhausted it reports infeasibility.
type scriptedSolver struct {
	mu       sync.Mutex
	script   []*lp.Solution
	problems []*lp.Problem
	err      error
}

func (s *scriptedSolver) Solve(_ context.Context, p *lp.Problem) (*lp.Solution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.problems = append(s.problems, p)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.script) == 0 {
		return &lp.Solution{Status: lp.StatusInfeasible}, nil
	}
	sol := s.script[0]
	s.script = s.script[1:]
	return sol, nil
}

func (s *scriptedSolver) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.problems)
}

func optimal(objective float64, values map[string]float64) *lp.Solution {
	return &lp.Solution{Status: lp.StatusOptimal, ObjectiveValue: objective, Values: values}
}

func infeasible() *lp.Solution {
	return &lp.Solution{Status: lp.StatusInfeasible}
}

func findConstraint(p *lp.Problem, name string) (lp.Constraint, bool) {
	for _, c := range p.Constraints {
		if c.Name == name {
			return c, true
		}
	}
	return lp.Constraint{}, false
}

func findVariable(p *lp.Problem, name string) (lp.Variable, bool) {
	for _, v := range p.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return lp.Variable{}, false
}

func testParams() Params {
	p := DefaultParams()
	p.Logger = logger.Discard()
	return p
}

// uptakeModel has one uptake-capable exchange per metabolite id and a biomass
// reaction consuming all of them
func uptakeModel(id string, mets ...string) *models.Model {
	var metabolites []models.Metabolite
	var reactions []models.Reaction
	bio := map[string]float64{}
	for _, met := range mets {
		metabolites = append(metabolites, models.Metabolite{ID: met, Compartment: "e0"})
		reactions = append(reactions, models.Reaction{
			ID:          "EX_" + met,
			Metabolites: map[string]float64{met: -1},
			LowerBound:  -10,
			UpperBound:  1000,
		})
		bio[met] = -1
	}
	reactions = append(reactions, models.Reaction{ID: "bio1", Metabolites: bio, UpperBound: 1000})
	m, err := models.NewModel(id, metabolites, reactions, map[string]float64{"bio1": 1})
	if err != nil {
		panic(err)
	}
	return m
}
