package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/smetana-core/internal/fba"
	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// CouplingProfile is the SC result of one community member
type CouplingProfile struct {
	Iterations int                `json:"iterations"`
	Donors     map[string]float64 `json:"donors"` // other member -> fraction of iterations it was required
}

// Score returns how often donor was required, 0 when it never was
func (c *CouplingProfile) Score(donor string) float64 {
	if c == nil {
		return 0
	}
	return c.Donors[donor]
}

// SpeciesCoupling computes how often member depends on each other member of
// community comm. Each member i gets a binary y_i that switches its reactions
// on (-M*y_i <= v <= M*y_i); member must grow by at least p.MinGrowth while
// the number of other active members is minimized. Up to p.SolutionCap
// alternative donor combinations are enumerated.
//
// A nil profile means the coupling is undefined: the first solve was not optimal.
func SpeciesCoupling(ctx context.Context, solver lp.Solver, comm *models.Model, member string, p Params) (*CouplingProfile, error) {
	if !comm.IsCommunity() {
		return nil, parameterError("model %s is not a community", comm.ID)
	}
	known := false
	for _, id := range comm.Members {
		if id == member {
			known = true
		}
	}
	if !known {
		return nil, parameterError("community %s has no member %s", comm.ID, member)
	}

	s, err := fba.Open(comm, solver)
	if err != nil {
		return nil, fmt.Errorf("sc: member %s: %w", member, err)
	}
	defer s.Close()

	if err := s.ApplyMedium(p.Environment); err != nil {
		return nil, fmt.Errorf("sc: member %s: %w", member, err)
	}
	for _, id := range comm.Members {
		if err := s.AddVariable(lp.Variable{Name: "y_" + id, Lower: 0, Upper: 1, Type: lp.Binary}); err != nil {
			return nil, fmt.Errorf("sc: member %s: %w", member, err)
		}
	}

	growth := lp.Expr{}
	for i := range comm.Reactions {
		rxn := &comm.Reactions[i]
		if rxn.Member == "" {
			continue
		}
		if rxn.IsBiomass() {
			_, upper, err := s.Bounds(rxn.ID)
			if err != nil {
				return nil, fmt.Errorf("sc: member %s: %w", member, err)
			}
			if err := s.SetBounds(rxn.ID, 0, math.Max(upper, 0)); err != nil {
				return nil, fmt.Errorf("sc: member %s: %w", member, err)
			}
			if rxn.Member == member {
				growth.Add(rxn.ID, 1)
			}
			continue
		}
		y := "y_" + rxn.Member
		lower := lp.AtLeast("c_"+rxn.ID+"_lb", lp.Expr{rxn.ID: 1, y: p.BigM}, 0)
		upper := lp.AtMost("c_"+rxn.ID+"_ub", lp.Expr{rxn.ID: 1, y: -p.BigM}, 0)
		if err := s.AddConstraint(lower); err != nil {
			return nil, fmt.Errorf("sc: member %s: %w", member, err)
		}
		if err := s.AddConstraint(upper); err != nil {
			return nil, fmt.Errorf("sc: member %s: %w", member, err)
		}
	}
	if len(growth) == 0 {
		return nil, parameterError("community %s: member %s has no biomass reaction", comm.ID, member)
	}
	if err := s.AddConstraint(lp.AtLeast("community_growth", growth, p.MinGrowth)); err != nil {
		return nil, fmt.Errorf("sc: member %s: %w", member, err)
	}

	var others []string
	objective := lp.Expr{}
	for _, id := range comm.Members {
		if id == member {
			continue
		}
		others = append(others, id)
		objective.Add("y_"+id, 1)
	}
	if err := s.SetObjective(objective, lp.Minimize); err != nil {
		return nil, fmt.Errorf("sc: member %s: %w", member, err)
	}

	log := p.logger().With("scorer", "sc", "model", member)
	counts := make(map[string]int, len(others))
	enum := NewEnumerator(s, p.SolutionCap, func(sol *lp.Solution) []string {
		var selected []string
		for _, id := range others {
			if sol.Value("y_"+id) > p.CouplingTolerance {
				counts[id]++
				selected = append(selected, "y_"+id)
			}
		}
		return selected
	})
	for {
		alt, ok, err := enum.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("sc: member %s: %w", member, err)
		}
		if !ok {
			break
		}
		log.Debug("coupling solution", "iteration", enum.Recorded(), "donors", len(alt.Selected))
	}
	p.Metrics.ObserveIterations("sc", enum.Recorded())

	if enum.Recorded() == 0 {
		log.Info("species coupling undefined, first solve not optimal")
		return nil, nil
	}
	profile := &CouplingProfile{
		Iterations: enum.Recorded(),
		Donors:     make(map[string]float64, len(others)),
	}
	for _, id := range others {
		profile.Donors[id] = float64(counts[id]) / float64(profile.Iterations)
	}
	return profile, nil
}
