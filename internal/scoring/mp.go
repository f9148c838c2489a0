package scoring

import (
	"context"
	"fmt"

	"github.com/GoSim-25-26J-441/smetana-core/internal/fba"
	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/config"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// ProductionPotential discovers the metabolites organism m can contribute to a
// community whose minimal medium is communityMedium.
//
// Candidates are the exchanges outside the community medium that can secrete.
// Each round maximizes their summed flux; every candidate carrying more than
// the tolerance contributes its metabolite and leaves the candidate set. The
// loop ends when a round is not optimal or changes nothing. The remaining
// candidates are then maximized one at a time and handled per
// Params.Confirmation.
func ProductionPotential(ctx context.Context, solver lp.Solver, m *models.Model, communityMedium models.Medium, p Params) (MetaboliteSet, error) {
	s, err := fba.Open(m, solver)
	if err != nil {
		return nil, fmt.Errorf("mp: organism %s: %w", m.ID, err)
	}
	defer s.Close()

	if err := s.ApplyMedium(p.Environment); err != nil {
		return nil, fmt.Errorf("mp: organism %s: %w", m.ID, err)
	}

	metaboliteOf := make(map[string]string)
	var ids []string
	for _, rxn := range s.ExchangeReactions() {
		if communityMedium.Has(rxn.ID) {
			continue
		}
		_, upper, err := s.Bounds(rxn.ID)
		if err != nil {
			return nil, fmt.Errorf("mp: organism %s: %w", m.ID, err)
		}
		if upper <= 0 {
			continue
		}
		ids = append(ids, rxn.ID)
		metaboliteOf[rxn.ID] = models.ExchangeMetabolite(rxn)
	}

	log := p.logger().With("scorer", "mp", "model", m.ID)
	produced := NewMetaboliteSet()
	candidates := newCandidateSet(ids)
	rounds := 0
	for candidates.Len() > 0 {
		if err := s.SetObjective(fba.FluxExpr(candidates.ids...), lp.Maximize); err != nil {
			return nil, fmt.Errorf("mp: organism %s: %w", m.ID, err)
		}
		sol, err := s.Optimize(ctx)
		if err != nil {
			return nil, fmt.Errorf("mp: organism %s: %w", m.ID, err)
		}
		rounds++
		if !sol.Optimal() {
			log.Debug("production round not optimal", "round", rounds, "status", sol.Status)
			break
		}
		next := candidates.without(func(id string) bool {
			if sol.Value(id) > p.Tolerance {
				produced.Add(metaboliteOf[id])
				return true
			}
			return false
		})
		log.Debug("production round", "round", rounds, "candidates", candidates.Len(), "remaining", next.Len())
		if next.equal(candidates) {
			break
		}
		candidates = next
	}
	p.Metrics.ObserveIterations("mp", rounds)

	for _, id := range candidates.ids {
		if err := s.SetObjective(fba.FluxExpr(id), lp.Maximize); err != nil {
			return nil, fmt.Errorf("mp: organism %s: %w", m.ID, err)
		}
		sol, err := s.Optimize(ctx)
		if err != nil {
			return nil, fmt.Errorf("mp: organism %s: confirm %s: %w", m.ID, id, err)
		}
		if !sol.Optimal() || sol.ObjectiveValue <= p.Tolerance {
			continue
		}
		if p.Confirmation == config.ConfirmationInclusive {
			produced.Add(metaboliteOf[id])
		} else {
			produced.Remove(metaboliteOf[id])
		}
	}
	return produced, nil
}
