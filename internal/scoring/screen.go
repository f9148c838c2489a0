package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
	"github.com/GoSim-25-26J-441/smetana-core/internal/metrics"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/config"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/logger"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// ScreenOptions configures a pairwise screen
type ScreenOptions struct {
	PairLimit int // 0 screens every pair
	Workers   int
	Scoring   config.ScoringConfig
	Logger    *slog.Logger
	Metrics   *metrics.Collector
}

// PairSummary holds the pairwise scores of two members
type PairSummary struct {
	First         string   `json:"first"`
	Second        string   `json:"second"`
	MROForward    float64  `json:"mro_forward"`  // first on second
	MROBackward   float64  `json:"mro_backward"` // second on first
	MIP           int      `json:"mip"`
	Removed       []string `json:"removed,omitempty"`
	GrowthDiff    float64  `json:"growth_diff"`
	GrowthDefined bool     `json:"growth_defined"`
	Error         string   `json:"error,omitempty"` // set when the pair failed its growth check
}

// Key returns the pair's report key
func (s PairSummary) Key() string {
	return PairKey(s.First, s.Second)
}

// Screen scores every unordered pair of members (in member order, truncated to
// PairLimit) with MRO, MIP and growth difference. Each pair runs on its own
// cloned models and two-member community, at most Workers pairs at a time.
// Pairs that fail a growth check are reported with Error set; any other
// failure aborts the screen.
func Screen(ctx context.Context, solver lp.Solver, members []*models.Model, opts ScreenOptions) ([]PairSummary, error) {
	if len(members) < 2 {
		return nil, parameterError("a screen needs at least two members, got %d", len(members))
	}
	if opts.PairLimit < 0 {
		return nil, parameterError("pair limit cannot be negative")
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default
	}
	if opts.Scoring.NSolutions == 0 {
		opts.Scoring = config.DefaultScoring()
	}

	type pair struct{ a, b *models.Model }
	var pairs []pair
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			pairs = append(pairs, pair{members[i], members[j]})
		}
	}
	if opts.PairLimit > 0 && len(pairs) > opts.PairLimit {
		pairs = pairs[:opts.PairLimit]
	}

	results := make([]PairSummary, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, pr := range pairs {
		g.Go(func() error {
			summary, err := screenPair(ctx, solver, pr.a.Clone(), pr.b.Clone(), opts)
			if err != nil {
				return fmt.Errorf("screen %s: %w", PairKey(pr.a.ID, pr.b.ID), err)
			}
			results[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	opts.Logger.Info("screen completed", "pairs", len(results))
	return results, nil
}

func screenPair(ctx context.Context, solver lp.Solver, a, b *models.Model, opts ScreenOptions) (PairSummary, error) {
	summary := PairSummary{First: a.ID, Second: b.ID}
	log := opts.Logger.With("pair", summary.Key())

	o, err := New(ctx, solver, []*models.Model{a, b}, nil,
		WithConfig(opts.Scoring),
		WithLogger(log),
		WithMetrics(opts.Metrics),
	)
	if errors.Is(err, ErrNoGrowth) {
		summary.Error = err.Error()
		log.Warn("pair skipped", "error", err)
		return summary, nil
	}
	if err != nil {
		return summary, err
	}

	mro, err := o.MRO(ctx)
	if err != nil {
		return summary, err
	}
	summary.MROForward = mro[PairKey(a.ID, b.ID)].Score
	summary.MROBackward = mro[PairKey(b.ID, a.ID)].Score

	mip, err := o.MIP(ctx)
	if err != nil {
		return summary, err
	}
	summary.MIP = mip.Score
	summary.Removed = mip.Removed

	diffs, err := o.GrowthDiff(ctx)
	if err != nil {
		return summary, err
	}
	summary.GrowthDiff, summary.GrowthDefined = diffs[summary.Key()]
	return summary, nil
}
