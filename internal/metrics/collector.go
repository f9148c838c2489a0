package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
)

// Collector exposes solver and scorer activity as prometheus metrics.
// A nil *Collector is valid and records nothing.
type Collector struct {
	solves        *prometheus.CounterVec
	solveDuration *prometheus.HistogramVec
	iterations    *prometheus.HistogramVec
	scores        *prometheus.CounterVec
}

// NewCollector creates a collector and registers its metrics on reg
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricSolvesTotal,
			Help: "Optimization problems solved, by scorer and solution status.",
		}, []string{LabelScorer, LabelStatus}),
		solveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricSolveDuration,
			Help:    "Wall time of a single solve.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{LabelScorer}),
		iterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricEnumerationIterations,
			Help:    "Solutions recorded by one alternative-solution enumeration.",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100, 200},
		}, []string{LabelScorer}),
		scores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricScoresTotal,
			Help: "Score computations, by scorer and outcome.",
		}, []string{LabelScorer, LabelOutcome}),
	}
	for _, col := range []prometheus.Collector{c.solves, c.solveDuration, c.iterations, c.scores} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return c, nil
}

// Solver wraps next so every solve is counted and timed under scorer
func (c *Collector) Solver(next lp.Solver, scorer string) lp.Solver {
	if c == nil {
		return next
	}
	return lp.SolverFunc(func(ctx context.Context, p *lp.Problem) (*lp.Solution, error) {
		start := time.Now()
		sol, err := next.Solve(ctx, p)
		c.solveDuration.WithLabelValues(scorer).Observe(time.Since(start).Seconds())
		status := StatusError
		if err == nil && sol != nil {
			status = string(sol.Status)
		}
		c.solves.WithLabelValues(scorer, status).Inc()
		return sol, err
	})
}

// ObserveIterations records the length of one enumeration
func (c *Collector) ObserveIterations(scorer string, n int) {
	if c == nil {
		return
	}
	c.iterations.WithLabelValues(scorer).Observe(float64(n))
}

// ObserveScore counts one score computation
func (c *Collector) ObserveScore(scorer, outcome string) {
	if c == nil {
		return
	}
	c.scores.WithLabelValues(scorer, outcome).Inc()
}
