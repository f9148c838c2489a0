package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/GoSim-25-26J-441/smetana-core/internal/fba"
	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// Growth optimizes m's objective under env (nil means complete media)
func Growth(ctx context.Context, solver lp.Solver, m *models.Model, env models.Medium) (*lp.Solution, error) {
	s, err := fba.Open(m, solver)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	if err := s.ApplyMedium(env); err != nil {
		return nil, err
	}
	return s.Optimize(ctx)
}

// requireGrowth fails with a NoGrowthError unless m grows above tolerance
func requireGrowth(ctx context.Context, solver lp.Solver, m *models.Model, env models.Medium, tolerance float64) (float64, error) {
	sol, err := Growth(ctx, solver, m, env)
	if err != nil {
		return 0, fmt.Errorf("growth check: %w", err)
	}
	if !sol.Optimal() || sol.ObjectiveValue <= tolerance {
		return 0, &NoGrowthError{ModelID: m.ID, Growth: sol.ObjectiveValue, Status: sol.Status}
	}
	return sol.ObjectiveValue, nil
}

// GrowthDifferences returns |g1-g2| / min(g1,g2) for every unordered pair of
// members, keyed by PairKey. Pairs where either member does not grow are omitted.
func GrowthDifferences(ctx context.Context, solver lp.Solver, members []*models.Model, env models.Medium) (map[string]float64, error) {
	growth := make([]float64, len(members))
	for i, m := range members {
		sol, err := Growth(ctx, solver, m, env)
		if err != nil {
			return nil, fmt.Errorf("growth_diff: organism %s: %w", m.ID, err)
		}
		growth[i] = math.NaN()
		if sol.Optimal() {
			growth[i] = sol.ObjectiveValue
		}
	}

	out := make(map[string]float64)
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			g1, g2 := growth[i], growth[j]
			low := math.Min(g1, g2)
			if math.IsNaN(low) || low <= 0 {
				continue
			}
			out[PairKey(members[i].ID, members[j].ID)] = math.Abs(g1-g2) / low
		}
	}
	return out, nil
}
