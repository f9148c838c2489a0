package scoring

import (
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// Interaction is the SMETANA score of one donor -> receiver direction
type Interaction struct {
	Donor    string  `json:"donor"`
	Receiver string  `json:"receiver"`
	Score    float64 `json:"score"`
}

// Key returns the "donor---receiver" report key
func (i Interaction) Key() string {
	return PairKey(i.Donor, i.Receiver)
}

// CombineScores computes the SMETANA score of every direction between the
// members. For each unordered pair (in member order) both directions are
// scored as the sum, over the metabolites of either organism, of
// MU[receiver][met] * SC[receiver][donor] * [met in MP[donor]].
//
// A pair is skipped when either organism has an empty uptake profile or an
// empty production set. sc == nil disables coupling (factor 1); otherwise a
// direction whose receiver has an undefined coupling profile is skipped.
func CombineScores(members []*models.Model, mu map[string]*UptakeProfile, mp map[string]MetaboliteSet, sc map[string]*CouplingProfile) []Interaction {
	var out []Interaction
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			a, b := members[i], members[j]
			if mu[a.ID].Empty() || mu[b.ID].Empty() || len(mp[a.ID]) == 0 || len(mp[b.ID]) == 0 {
				continue
			}
			mets := metaboliteUnion(a, b)
			for _, dir := range [2][2]*models.Model{{a, b}, {b, a}} {
				donor, receiver := dir[0], dir[1]
				coupling := 1.0
				if sc != nil {
					profile := sc[receiver.ID]
					if profile == nil {
						continue
					}
					coupling = profile.Score(donor.ID)
				}
				score := 0.0
				for _, met := range mets {
					if !mp[donor.ID].Has(met) {
						continue
					}
					score += mu[receiver.ID].Frequency(met) * coupling
				}
				out = append(out, Interaction{Donor: donor.ID, Receiver: receiver.ID, Score: score})
			}
		}
	}
	return out
}

func metaboliteUnion(a, b *models.Model) []string {
	seen := make(map[string]bool, len(a.Metabolites)+len(b.Metabolites))
	var out []string
	for _, m := range []*models.Model{a, b} {
		for _, id := range m.MetaboliteIDs() {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
