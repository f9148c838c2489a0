// Package medium estimates minimal media: the smallest set of exchange uptakes
// that lets a model reach a growth threshold.
package medium

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/smetana-core/internal/fba"
	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// ErrNoMedium is returned when no medium drawn from the environment sustains the
// requested growth
var ErrNoMedium = errors.New("no medium sustains the requested growth")

// Request parameterizes one minimal-medium estimation
type Request struct {
	MinGrowth   float64
	Environment models.Medium // nil means complete media
	// Interacting allows community members to feed each other through the shared
	// extracellular pool. Ignored for single-organism models.
	Interacting bool
	// SolutionCap bounds estimators that enumerate alternative media.
	// FluxEstimator returns a single optimum and ignores it.
	SolutionCap int
}

// Estimator computes the minimal medium of a model
type Estimator interface {
	MinimalMedium(ctx context.Context, m *models.Model, req Request) (models.Medium, error)
}

// Method selects what a FluxEstimator minimizes
type Method string

const (
	// MethodFlux minimizes the total uptake flux
	MethodFlux Method = "flux"
	// MethodComponents minimizes the number of exchanges used for uptake
	MethodComponents Method = "components"
)

// ParseMethod validates a method name; an empty name selects MethodFlux
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", MethodFlux:
		return MethodFlux, nil
	case MethodComponents:
		return MethodComponents, nil
	default:
		return "", fmt.Errorf("unknown medium method: %s (want flux or components)", s)
	}
}

// FluxEstimator is the default Estimator, formulated over the model's own
// constraint system
type FluxEstimator struct {
	solver    lp.Solver
	method    Method
	tolerance float64
	bigM      float64
}

// NewFluxEstimator creates an estimator. Uptakes at or below tolerance are not
// part of the medium; bigM replaces unbounded uptake rates in the components
// formulation.
func NewFluxEstimator(solver lp.Solver, method Method, tolerance, bigM float64) *FluxEstimator {
	if method == "" {
		method = MethodFlux
	}
	return &FluxEstimator{
		solver:    solver,
		method:    method,
		tolerance: tolerance,
		bigM:      bigM,
	}
}

// Method returns the estimation method, used in cache keys
func (e *FluxEstimator) Method() string {
	return string(e.method)
}

// MinimalMedium implements Estimator
func (e *FluxEstimator) MinimalMedium(ctx context.Context, m *models.Model, req Request) (models.Medium, error) {
	s, err := fba.Open(m, e.solver)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if err := s.ApplyMedium(req.Environment); err != nil {
		return nil, err
	}
	if !req.Interacting && m.IsCommunity() {
		if err := isolateMembers(s); err != nil {
			return nil, err
		}
	}

	if err := requireGrowth(s, req.MinGrowth); err != nil {
		return nil, err
	}

	objective := lp.Expr{}
	for _, rxn := range s.ExchangeReactions() {
		lower, _, err := s.Bounds(rxn.ID)
		if err != nil {
			return nil, err
		}
		if lower >= 0 {
			continue
		}
		switch e.method {
		case MethodComponents:
			name := "use_" + rxn.ID
			capacity := -lower
			if math.IsInf(capacity, 1) || capacity > e.bigM {
				capacity = e.bigM
			}
			if err := s.AddVariable(lp.Variable{Name: name, Upper: 1, Type: lp.Binary}); err != nil {
				return nil, err
			}
			link := lp.Expr{rxn.ID: 1, name: capacity}
			if err := s.AddConstraint(lp.AtLeast("link_"+rxn.ID, link, 0)); err != nil {
				return nil, err
			}
			objective[name] = 1
		default:
			name := "uptake_" + rxn.ID
			if err := s.AddVariable(lp.Variable{Name: name, Upper: -lower}); err != nil {
				return nil, err
			}
			link := lp.Expr{rxn.ID: 1, name: 1}
			if err := s.AddConstraint(lp.AtLeast("link_"+rxn.ID, link, 0)); err != nil {
				return nil, err
			}
			objective[name] = 1
		}
	}
	if err := s.SetObjective(objective, lp.Minimize); err != nil {
		return nil, err
	}

	sol, err := s.Optimize(ctx)
	if err != nil {
		return nil, fmt.Errorf("minimal medium of %s: %w", m.ID, err)
	}
	if !sol.Optimal() {
		return nil, fmt.Errorf("minimal medium of %s (%s): %w", m.ID, sol.Status, ErrNoMedium)
	}

	medium := models.Medium{}
	for _, rxn := range s.ExchangeReactions() {
		if flux := sol.Value(rxn.ID); flux < -e.tolerance {
			medium[rxn.ID] = -flux
		}
	}
	return medium, nil
}

// requireGrowth bounds growth from below. Every member of a community must reach
// the threshold on its own; an organism uses its objective.
func requireGrowth(s *fba.Session, minGrowth float64) error {
	m := s.Model()
	if !m.IsCommunity() {
		growth := s.Objective().Expr
		if len(growth) == 0 {
			return fmt.Errorf("model %s has no objective", m.ID)
		}
		return s.AddConstraint(lp.AtLeast("min_growth", growth, minGrowth))
	}
	for _, member := range m.Members {
		biomass := m.BiomassReactions(member)
		if len(biomass) == 0 {
			return fmt.Errorf("model %s: member %s has no biomass reaction", m.ID, member)
		}
		expr := lp.Expr{}
		for _, rxn := range biomass {
			expr[rxn.ID] = 1
		}
		if err := s.AddConstraint(lp.AtLeast("min_growth_"+member, expr, minGrowth)); err != nil {
			return err
		}
	}
	return nil
}

// isolateMembers stops every member reaction from releasing metabolites into the
// shared extracellular pool, so members can only draw on the environment.
func isolateMembers(s *fba.Session) error {
	m := s.Model()
	for i := range m.Reactions {
		rxn := &m.Reactions[i]
		if rxn.Member == "" {
			continue
		}
		lower, upper, err := s.Bounds(rxn.ID)
		if err != nil {
			return err
		}
		for metID, coef := range rxn.Metabolites {
			met, ok := m.Metabolite(metID)
			if !ok || !met.Extracellular() {
				continue
			}
			if coef > 0 {
				upper = math.Min(upper, 0)
			} else if coef < 0 {
				lower = math.Max(lower, 0)
			}
		}
		if lower > upper {
			lower, upper = 0, 0
		}
		if err := s.SetBounds(rxn.ID, lower, upper); err != nil {
			return err
		}
	}
	return nil
}
