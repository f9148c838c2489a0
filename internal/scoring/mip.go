package scoring

import "github.com/GoSim-25-26J-441/smetana-core/pkg/models"

// MIPResult is the interaction potential of a community
type MIPResult struct {
	Score   int      `json:"score"`
	Removed []string `json:"removed,omitempty"`
}

// InteractionPotential counts the exchanges required by the non-interacting
// community that the interacting community no longer needs. Removed is sorted
// and nil when nothing was removed.
func InteractionPotential(interacting, nonInteracting models.Medium) MIPResult {
	var removed []string
	for _, id := range nonInteracting.IDs() {
		if !interacting.Has(id) {
			removed = append(removed, id)
		}
	}
	return MIPResult{Score: len(removed), Removed: removed}
}
