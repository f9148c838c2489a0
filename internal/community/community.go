// Package community normalizes organism models and merges them into a
// community model.
package community

import (
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// Separator joins a member-local identifier and its member ID in a community
const Separator = "__"

// Standardizer normalizes exchange identifiers across heterogeneous models
type Standardizer interface {
	Standardize(ms []*models.Model) ([]*models.Model, error)
}

// ExchangeStandardizer renames every exchange of an extracellular metabolite to
// EX_<metabolite>. Inputs are not modified.
type ExchangeStandardizer struct{}

// Standardize implements Standardizer
func (ExchangeStandardizer) Standardize(ms []*models.Model) ([]*models.Model, error) {
	out := make([]*models.Model, 0, len(ms))
	for _, m := range ms {
		std, err := standardize(m)
		if err != nil {
			return nil, err
		}
		out = append(out, std)
	}
	return out, nil
}

func standardize(m *models.Model) (*models.Model, error) {
	cloned := m.Clone()
	renamed := make(map[string]string)
	seen := make(map[string]string)
	for i := range cloned.Reactions {
		rxn := &cloned.Reactions[i]
		if !cloned.IsExchange(rxn.ID) {
			continue
		}
		metID := models.ExchangeMetabolite(rxn)
		met, ok := cloned.Metabolite(metID)
		if !ok || !met.Extracellular() {
			continue
		}
		id := ExchangeID(metID)
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("model %s: exchanges %s and %s both exchange %s", m.ID, prev, rxn.ID, metID)
		}
		seen[id] = rxn.ID
		if id != rxn.ID {
			renamed[rxn.ID] = id
			rxn.ID = id
		}
	}
	for old, id := range renamed {
		if coef, ok := cloned.Objective[old]; ok {
			delete(cloned.Objective, old)
			cloned.Objective[id] = coef
		}
	}
	if err := cloned.Index(); err != nil {
		return nil, fmt.Errorf("standardize %s: %w", m.ID, err)
	}
	return cloned, nil
}

// ExchangeID returns the standard exchange identifier of a metabolite
func ExchangeID(metID string) string {
	return "EX_" + metID
}

// LocalID returns the community identifier of a member-local reaction or metabolite
func LocalID(id, member string) string {
	return id + Separator + member
}

// Build merges members into a community model. Extracellular metabolites are
// shared, every other metabolite and every non-exchange reaction is renamed with
// LocalID and owned by its member. Member exchanges of the same extracellular
// metabolite collapse into one shared exchange spanning the widest bounds. The
// community objective is the sum of the member objectives.
func Build(id string, members []*models.Model) (*models.Model, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("community %s: at least one member is required", id)
	}

	c := &models.Model{ID: id, Objective: make(map[string]float64)}
	metSeen := make(map[string]bool)
	exchangePos := make(map[string]int)

	for _, m := range members {
		if m == nil {
			return nil, fmt.Errorf("community %s: nil member", id)
		}
		if strings.Contains(m.ID, Separator) {
			return nil, fmt.Errorf("community %s: member id %s contains %q", id, m.ID, Separator)
		}
		for _, existing := range c.Members {
			if existing == m.ID {
				return nil, fmt.Errorf("community %s: duplicate member %s", id, m.ID)
			}
		}
		c.Members = append(c.Members, m.ID)

		metName := make(map[string]string, len(m.Metabolites))
		for _, met := range m.Metabolites {
			if met.Extracellular() {
				metName[met.ID] = met.ID
				if !metSeen[met.ID] {
					metSeen[met.ID] = true
					c.Metabolites = append(c.Metabolites, met)
				}
				continue
			}
			local := met
			local.ID = LocalID(met.ID, m.ID)
			metName[met.ID] = local.ID
			c.Metabolites = append(c.Metabolites, local)
		}

		for _, rxn := range m.Reactions {
			metID := models.ExchangeMetabolite(&rxn)
			if m.IsExchange(rxn.ID) && metName[metID] == metID {
				// Shared exchanges are written as met -> (uptake is negative flux).
				lower, upper := rxn.LowerBound, rxn.UpperBound
				if rxn.Metabolites[metID] > 0 {
					lower, upper = -upper, -lower
				}
				exID := ExchangeID(metID)
				if pos, ok := exchangePos[exID]; ok {
					shared := &c.Reactions[pos]
					shared.LowerBound = min(shared.LowerBound, lower)
					shared.UpperBound = max(shared.UpperBound, upper)
				} else {
					exchangePos[exID] = len(c.Reactions)
					c.Reactions = append(c.Reactions, models.Reaction{
						ID:          exID,
						Name:        rxn.Name,
						Metabolites: map[string]float64{metID: -1},
						LowerBound:  lower,
						UpperBound:  upper,
					})
				}
				continue
			}

			local := models.Reaction{
				ID:          LocalID(rxn.ID, m.ID),
				Name:        rxn.Name,
				Metabolites: make(map[string]float64, len(rxn.Metabolites)),
				LowerBound:  rxn.LowerBound,
				UpperBound:  rxn.UpperBound,
				Biomass:     rxn.IsBiomass(),
				Member:      m.ID,
			}
			for metID, coef := range rxn.Metabolites {
				local.Metabolites[metName[metID]] = coef
			}
			c.Reactions = append(c.Reactions, local)
		}

		for rxnID, coef := range m.Objective {
			if m.IsExchange(rxnID) {
				continue
			}
			c.Objective[LocalID(rxnID, m.ID)] += coef
		}
	}

	if err := c.Index(); err != nil {
		return nil, fmt.Errorf("build community %s: %w", id, err)
	}
	return c, nil
}
