// Package fba adapts flux models to the solver-neutral problem form.
//
// A Session is the only way to mutate a model's constraint system: it takes an
// exclusive lease on the model, keeps a private working copy of bounds,
// objective, added variables and added constraints, and is discarded on Close.
// The underlying models.Model is never written to.
package fba

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

var (
	// ErrModelBusy is returned when another session holds the model
	ErrModelBusy = errors.New("model is leased by another session")
	// ErrSessionClosed is returned for any use of a closed session
	ErrSessionClosed = errors.New("session is closed")
)

// leases tracks which models currently have an open session
var leases sync.Map

// Session is an exclusive, scoped view of one model's constraint system.
// It is not safe for concurrent use.
type Session struct {
	model  *models.Model
	solver lp.Solver

	lower []float64
	upper []float64

	objective lp.Objective
	extraVars []lp.Variable
	extraCons []lp.Constraint
	varNames  map[string]bool
	conNames  map[string]bool

	closed bool
}

// Open leases m and returns a session solving through solver
func Open(m *models.Model, solver lp.Solver) (*Session, error) {
	if m == nil {
		return nil, fmt.Errorf("model is required")
	}
	if solver == nil {
		return nil, fmt.Errorf("solver is required")
	}
	if _, held := leases.LoadOrStore(m, struct{}{}); held {
		return nil, fmt.Errorf("open session on %s: %w", m.ID, ErrModelBusy)
	}

	s := &Session{
		model:    m,
		solver:   solver,
		lower:    make([]float64, len(m.Reactions)),
		upper:    make([]float64, len(m.Reactions)),
		varNames: make(map[string]bool, len(m.Reactions)),
		conNames: make(map[string]bool),
	}
	for i, rxn := range m.Reactions {
		s.lower[i] = rxn.LowerBound
		s.upper[i] = rxn.UpperBound
		s.varNames[rxn.ID] = true
	}
	objective := make(lp.Expr, len(m.Objective))
	for rxnID, coef := range m.Objective {
		objective[rxnID] = coef
	}
	s.objective = lp.Objective{Expr: objective, Sense: lp.Maximize}
	return s, nil
}

// Close releases the lease; further use of the session fails
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	leases.Delete(s.model)
}

// Model returns the leased model (read-only)
func (s *Session) Model() *models.Model {
	return s.model
}

// ExchangeReactions returns the model's exchange reactions
func (s *Session) ExchangeReactions() []*models.Reaction {
	return s.model.ExchangeReactions()
}

func (s *Session) reactionIndex(id string) (int, error) {
	idx, ok := s.model.ReactionIndex(id)
	if !ok {
		return -1, fmt.Errorf("model %s: unknown reaction %s", s.model.ID, id)
	}
	return idx, nil
}

// Bounds returns the session's current bounds of a reaction
func (s *Session) Bounds(rxnID string) (lower, upper float64, err error) {
	idx, err := s.reactionIndex(rxnID)
	if err != nil {
		return 0, 0, err
	}
	return s.lower[idx], s.upper[idx], nil
}

// SetBounds overrides the bounds of a reaction for this session
func (s *Session) SetBounds(rxnID string, lower, upper float64) error {
	if s.closed {
		return ErrSessionClosed
	}
	if lower > upper {
		return fmt.Errorf("reaction %s: lower bound %g exceeds upper bound %g", rxnID, lower, upper)
	}
	idx, err := s.reactionIndex(rxnID)
	if err != nil {
		return err
	}
	s.lower[idx] = lower
	s.upper[idx] = upper
	return nil
}

// ApplyMedium restricts uptake to the medium: exchanges listed get a lower bound of
// -rate, every other exchange loses its uptake direction. A nil medium leaves the
// bounds untouched (complete media).
func (s *Session) ApplyMedium(medium models.Medium) error {
	if s.closed {
		return ErrSessionClosed
	}
	if medium == nil {
		return nil
	}
	for _, rxn := range s.model.ExchangeReactions() {
		idx, err := s.reactionIndex(rxn.ID)
		if err != nil {
			return err
		}
		lower := 0.0
		if rate, ok := medium[rxn.ID]; ok {
			lower = -rate
		}
		if lower > s.upper[idx] {
			lower = s.upper[idx]
		}
		s.lower[idx] = lower
	}
	return nil
}

// HasVariable reports whether name is a reaction flux or an added variable
func (s *Session) HasVariable(name string) bool {
	return s.varNames[name]
}

// AddVariable appends a variable to the constraint system
func (s *Session) AddVariable(v lp.Variable) error {
	if s.closed {
		return ErrSessionClosed
	}
	if v.Name == "" {
		return fmt.Errorf("variable name cannot be empty")
	}
	if s.varNames[v.Name] {
		return fmt.Errorf("model %s: variable %s already exists", s.model.ID, v.Name)
	}
	if v.Lower > v.Upper {
		return fmt.Errorf("variable %s: lower bound %g exceeds upper bound %g", v.Name, v.Lower, v.Upper)
	}
	s.varNames[v.Name] = true
	s.extraVars = append(s.extraVars, v)
	return nil
}

// AddConstraint appends a constraint; constraint names must be unique
func (s *Session) AddConstraint(c lp.Constraint) error {
	if s.closed {
		return ErrSessionClosed
	}
	if c.Name == "" {
		return fmt.Errorf("constraint name cannot be empty")
	}
	if s.conNames[c.Name] {
		return fmt.Errorf("model %s: constraint %s already exists", s.model.ID, c.Name)
	}
	for name := range c.Expr {
		if !s.varNames[name] {
			return fmt.Errorf("constraint %s references unknown variable %s", c.Name, name)
		}
	}
	s.conNames[c.Name] = true
	s.extraCons = append(s.extraCons, lp.Constraint{
		Name:  c.Name,
		Expr:  c.Expr.Clone(),
		Lower: c.Lower,
		Upper: c.Upper,
	})
	return nil
}

// ConstraintCount returns how many constraints were added to the session
func (s *Session) ConstraintCount() int {
	return len(s.extraCons)
}

// SetObjective replaces the session objective
func (s *Session) SetObjective(expr lp.Expr, sense lp.Sense) error {
	if s.closed {
		return ErrSessionClosed
	}
	for name := range expr {
		if !s.varNames[name] {
			return fmt.Errorf("objective references unknown variable %s", name)
		}
	}
	s.objective = lp.Objective{Expr: expr.Clone(), Sense: sense}
	return nil
}

// Objective returns the current objective
func (s *Session) Objective() lp.Objective {
	return lp.Objective{Expr: s.objective.Expr.Clone(), Sense: s.objective.Sense}
}

// Problem renders the session as a solver problem: one variable per reaction flux
// (named by reaction ID), one steady-state row per metabolite, then added
// variables and constraints in insertion order.
func (s *Session) Problem() *lp.Problem {
	m := s.model
	p := &lp.Problem{
		Variables:   make([]lp.Variable, 0, len(m.Reactions)+len(s.extraVars)),
		Constraints: make([]lp.Constraint, 0, len(m.Metabolites)+len(s.extraCons)),
		Objective:   s.Objective(),
	}
	for i, rxn := range m.Reactions {
		p.Variables = append(p.Variables, lp.Variable{
			Name:  rxn.ID,
			Lower: s.lower[i],
			Upper: s.upper[i],
			Type:  lp.Continuous,
		})
	}
	p.Variables = append(p.Variables, s.extraVars...)

	balances := make([]lp.Expr, len(m.Metabolites))
	metPos := make(map[string]int, len(m.Metabolites))
	for i, met := range m.Metabolites {
		metPos[met.ID] = i
	}
	for _, rxn := range m.Reactions {
		for metID, coef := range rxn.Metabolites {
			if coef == 0 {
				continue
			}
			pos := metPos[metID]
			if balances[pos] == nil {
				balances[pos] = lp.Expr{}
			}
			balances[pos][rxn.ID] += coef
		}
	}
	for i, met := range m.Metabolites {
		if len(balances[i]) == 0 {
			continue
		}
		p.Constraints = append(p.Constraints, lp.Equal("mb_"+met.ID, balances[i], 0))
	}
	p.Constraints = append(p.Constraints, s.extraCons...)
	return p
}

// Optimize solves the current constraint system
func (s *Session) Optimize(ctx context.Context) (*lp.Solution, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	sol, err := s.solver.Solve(ctx, s.Problem())
	if err != nil {
		return nil, fmt.Errorf("optimize %s: %w", s.model.ID, err)
	}
	if sol == nil {
		return nil, fmt.Errorf("optimize %s: solver returned no solution", s.model.ID)
	}
	return sol, nil
}

// FluxExpr sums the fluxes of the given reactions
func FluxExpr(rxnIDs ...string) lp.Expr {
	expr := make(lp.Expr, len(rxnIDs))
	for _, id := range rxnIDs {
		expr[id] += 1
	}
	return expr
}
