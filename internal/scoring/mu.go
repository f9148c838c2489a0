package scoring

import (
	"context"
	"fmt"

	"github.com/GoSim-25-26J-441/smetana-core/internal/fba"
	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// UptakeProfile is the MU result of one organism
type UptakeProfile struct {
	Iterations  int                `json:"iterations"`
	Frequencies map[string]float64 `json:"frequencies"` // metabolite ID -> fraction of iterations
}

// Frequency returns the uptake frequency of a metabolite, 0 when never received
func (u *UptakeProfile) Frequency(metID string) float64 {
	if u == nil {
		return 0
	}
	return u.Frequencies[metID]
}

// Empty reports whether the profile lists no received metabolite
func (u *UptakeProfile) Empty() bool {
	return u == nil || len(u.Frequencies) == 0
}

// UptakeFrequency enumerates up to p.SolutionCap alternative growth solutions
// of organism m and counts how often each metabolite in available is taken up.
// Every uptake-capable exchange gets a binary indicator y with
// v + M*y >= 0, so an exchange can only take up when its indicator is set.
// Solutions maximize the model objective with no growth floor unless
// p.UptakeGrowthFloor is set; a solution receiving nothing still counts as an
// iteration. The result is nil when no solution was recorded.
func UptakeFrequency(ctx context.Context, solver lp.Solver, m *models.Model, available MetaboliteSet, p Params) (*UptakeProfile, error) {
	s, err := fba.Open(m, solver)
	if err != nil {
		return nil, fmt.Errorf("mu: organism %s: %w", m.ID, err)
	}
	defer s.Close()

	if err := s.ApplyMedium(p.Environment); err != nil {
		return nil, fmt.Errorf("mu: organism %s: %w", m.ID, err)
	}

	indicator := make(map[string]string)
	metaboliteOf := make(map[string]string)
	var uptakes []string
	for _, rxn := range s.ExchangeReactions() {
		lower, _, err := s.Bounds(rxn.ID)
		if err != nil {
			return nil, fmt.Errorf("mu: organism %s: %w", m.ID, err)
		}
		if lower >= 0 {
			continue
		}
		y := "y_" + rxn.ID
		if err := s.AddVariable(lp.Variable{Name: y, Lower: 0, Upper: 1, Type: lp.Binary}); err != nil {
			return nil, fmt.Errorf("mu: organism %s: %w", m.ID, err)
		}
		link := lp.AtLeast("uptake_"+rxn.ID, lp.Expr{rxn.ID: 1, y: p.capacity(lower)}, 0)
		if err := s.AddConstraint(link); err != nil {
			return nil, fmt.Errorf("mu: organism %s: %w", m.ID, err)
		}
		indicator[rxn.ID] = y
		metaboliteOf[rxn.ID] = models.ExchangeMetabolite(rxn)
		uptakes = append(uptakes, rxn.ID)
	}
	if p.UptakeGrowthFloor {
		if err := s.AddConstraint(lp.AtLeast("min_growth", s.Objective().Expr, p.MinGrowth)); err != nil {
			return nil, fmt.Errorf("mu: organism %s: %w", m.ID, err)
		}
	}

	log := p.logger().With("scorer", "mu", "model", m.ID)
	counts := make(map[string]int)
	enum := NewEnumerator(s, p.SolutionCap, func(sol *lp.Solution) []string {
		var selected []string
		received := NewMetaboliteSet()
		for _, id := range uptakes {
			met := metaboliteOf[id]
			if sol.Value(id) < -p.Tolerance && available.Has(met) {
				received.Add(met)
				selected = append(selected, indicator[id])
			}
		}
		for met := range received {
			counts[met]++
		}
		return selected
	})
	for {
		alt, ok, err := enum.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("mu: organism %s: %w", m.ID, err)
		}
		if !ok {
			break
		}
		log.Debug("uptake solution", "iteration", enum.Recorded(), "received", len(alt.Selected))
	}
	p.Metrics.ObserveIterations("mu", enum.Recorded())

	if enum.Recorded() == 0 {
		return nil, nil
	}
	profile := &UptakeProfile{
		Iterations:  enum.Recorded(),
		Frequencies: make(map[string]float64, len(counts)),
	}
	for met, n := range counts {
		if n > 0 {
			profile.Frequencies[met] = float64(n) / float64(profile.Iterations)
		}
	}
	return profile, nil
}
