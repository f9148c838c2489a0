package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GoSim-25-26J-441/smetana-core/internal/community"
	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
	"github.com/GoSim-25-26J-441/smetana-core/internal/medium"
	"github.com/GoSim-25-26J-441/smetana-core/internal/metrics"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/config"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/logger"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// CommunityID is the ID of communities built by the orchestrator
const CommunityID = "community"

// Orchestrator runs the scorers over one set of members and their community.
// Minimal media and production sets are computed once and reused by every
// score call until RecomputeMedia. Calls are serialized.
type Orchestrator struct {
	mu sync.Mutex

	solver    lp.Solver
	cfg       config.ScoringConfig
	members   []*models.Model
	community *models.Model

	log          *slog.Logger
	metrics      *metrics.Collector
	estimator    medium.Estimator
	cache        *medium.Cache
	standardizer community.Standardizer
	seed         *mediaSeed
	env          *models.Medium

	media      map[string]models.Medium
	production map[string]MetaboliteSet
}

type mediaSeed struct {
	members        map[string]models.Medium
	interacting    models.Medium
	nonInteracting models.Medium
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithConfig sets the scoring parameters. An environment given with
// WithEnvironment takes precedence over cfg.Environment in any option order.
func WithConfig(cfg config.ScoringConfig) Option {
	return func(o *Orchestrator) {
		o.cfg = cfg
	}
}

// WithEnvironment sets the nutritional environment; nil means complete media
func WithEnvironment(env models.Medium) Option {
	return func(o *Orchestrator) {
		cloned := env.Clone()
		o.env = &cloned
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.log = l
	}
}

// WithMetrics instruments every solve and score with c
func WithMetrics(c *metrics.Collector) Option {
	return func(o *Orchestrator) {
		o.metrics = c
	}
}

// WithEstimator replaces the default minimal-medium estimator
func WithEstimator(est medium.Estimator) Option {
	return func(o *Orchestrator) {
		o.estimator = est
	}
}

// WithStandardizer normalizes the member models before anything else
func WithStandardizer(s community.Standardizer) Option {
	return func(o *Orchestrator) {
		o.standardizer = s
	}
}

// WithMedia seeds precomputed minimal media: per member, and the community's
// interacting and non-interacting media. Nil entries are computed on demand.
func WithMedia(members map[string]models.Medium, interacting, nonInteracting models.Medium) Option {
	return func(o *Orchestrator) {
		seed := &mediaSeed{members: make(map[string]models.Medium, len(members))}
		for id, m := range members {
			seed.members[id] = m.Clone()
		}
		seed.interacting = interacting.Clone()
		seed.nonInteracting = nonInteracting.Clone()
		o.seed = seed
	}
}

// New validates the inputs, builds the community when comm is nil and checks
// that every member grows in complete media and the community grows in the
// environment. It fails with a *ParameterError or a *NoGrowthError.
func New(ctx context.Context, solver lp.Solver, members []*models.Model, comm *models.Model, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{
		solver: solver,
		cfg:    config.DefaultScoring(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.env != nil {
		o.cfg.Environment = *o.env
	}
	if o.log == nil {
		o.log = logger.Default
	}
	if solver == nil {
		return nil, parameterError("a solver is required")
	}
	if err := config.ValidateScoring(&o.cfg); err != nil {
		return nil, &ParameterError{Reason: err.Error()}
	}
	if len(members) == 0 {
		return nil, parameterError("at least one member model is required")
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m == nil {
			return nil, parameterError("member model cannot be nil")
		}
		if seen[m.ID] {
			return nil, parameterError("duplicate member model %s", m.ID)
		}
		seen[m.ID] = true
	}

	if o.standardizer != nil {
		standardized, err := o.standardizer.Standardize(members)
		if err != nil {
			return nil, fmt.Errorf("standardize members: %w", err)
		}
		members = standardized
	}
	o.members = members

	if comm == nil {
		built, err := community.Build(CommunityID, members)
		if err != nil {
			return nil, fmt.Errorf("build community: %w", err)
		}
		comm = built
	} else if !comm.IsCommunity() {
		return nil, parameterError("model %s is not a community model", comm.ID)
	}
	o.community = comm

	if o.estimator == nil {
		method, err := medium.ParseMethod(o.cfg.MediumMethod)
		if err != nil {
			return nil, &ParameterError{Reason: err.Error()}
		}
		o.estimator = medium.NewFluxEstimator(o.metrics.Solver(solver, "medium"), method, o.cfg.Tolerance, o.cfg.BigM)
	}
	if cache, ok := o.estimator.(*medium.Cache); ok {
		o.cache = cache
	} else {
		o.cache = medium.NewCache(o.estimator)
	}
	o.estimator = o.cache
	o.applySeed()

	growthSolver := o.metrics.Solver(solver, "growth")
	for _, m := range members {
		g, err := requireGrowth(ctx, growthSolver, m, nil, o.cfg.Tolerance)
		if err != nil {
			return nil, err
		}
		o.log.Debug("member grows", "model", m.ID, "growth", g)
	}
	if _, err := requireGrowth(ctx, growthSolver, comm, o.cfg.Environment, o.cfg.Tolerance); err != nil {
		return nil, err
	}
	o.log.Info("orchestrator ready", "members", len(members), "community", comm.ID)
	return o, nil
}

func (o *Orchestrator) applySeed() {
	o.media = make(map[string]models.Medium, len(o.members))
	o.production = nil
	if o.seed == nil {
		return
	}
	for id, m := range o.seed.members {
		if m != nil {
			o.media[id] = m.Clone()
		}
	}
	if o.seed.interacting != nil {
		o.cache.Put(o.community.ID, o.mediumRequest(true), o.seed.interacting)
	}
	if o.seed.nonInteracting != nil {
		o.cache.Put(o.community.ID, o.mediumRequest(false), o.seed.nonInteracting)
	}
}

// Members returns the (standardized) member models
func (o *Orchestrator) Members() []*models.Model {
	return o.members
}

// Community returns the community model
func (o *Orchestrator) Community() *models.Model {
	return o.community
}

// RecomputeMedia drops every cached minimal medium and production set.
// Seeded media are dropped as well.
func (o *Orchestrator) RecomputeMedia() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seed = nil
	o.cache.Invalidate()
	o.applySeed()
}

func (o *Orchestrator) params(scorer string) (Params, lp.Solver) {
	p := ParamsFrom(o.cfg)
	p.Logger = o.log
	p.Metrics = o.metrics
	return p, o.metrics.Solver(o.solver, scorer)
}

func (o *Orchestrator) mediumRequest(interacting bool) medium.Request {
	return medium.Request{
		MinGrowth:   o.cfg.MinGrowth,
		Environment: o.cfg.Environment,
		Interacting: interacting,
		SolutionCap: o.cfg.NSolutions,
	}
}

func (o *Orchestrator) memberMedia(ctx context.Context) (map[string]models.Medium, error) {
	for _, m := range o.members {
		if _, ok := o.media[m.ID]; ok {
			continue
		}
		med, err := o.estimator.MinimalMedium(ctx, m, o.mediumRequest(true))
		if err != nil {
			return nil, fmt.Errorf("minimal medium of %s: %w", m.ID, err)
		}
		o.media[m.ID] = med
	}
	return o.media, nil
}

func (o *Orchestrator) communityMedium(ctx context.Context, interacting bool) (models.Medium, error) {
	med, err := o.estimator.MinimalMedium(ctx, o.community, o.mediumRequest(interacting))
	if err != nil {
		return nil, fmt.Errorf("community medium (interacting=%t): %w", interacting, err)
	}
	return med, nil
}

func (o *Orchestrator) memberIDs() []string {
	ids := make([]string, len(o.members))
	for i, m := range o.members {
		ids[i] = m.ID
	}
	return ids
}

func (o *Orchestrator) observe(scorer string, err error) {
	o.metrics.ObserveScore(scorer, metrics.Outcome(err))
	if err != nil {
		o.log.Error("score failed", "scorer", scorer, "error", err)
	}
}

// MRO computes the resource overlap of every ordered member pair
func (o *Orchestrator) MRO(ctx context.Context) (map[string]Overlap, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out, err := o.mro(ctx)
	o.observe("mro", err)
	return out, err
}

func (o *Orchestrator) mro(ctx context.Context) (map[string]Overlap, error) {
	media, err := o.memberMedia(ctx)
	if err != nil {
		return nil, fmt.Errorf("mro: %w", err)
	}
	out, err := ResourceOverlap(o.memberIDs(), media)
	if err != nil {
		return nil, fmt.Errorf("mro: %w", err)
	}
	o.log.Info("score computed", "scorer", "mro", "pairs", len(out))
	return out, nil
}

// MIP computes the community's interaction potential
func (o *Orchestrator) MIP(ctx context.Context) (MIPResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out, err := o.mip(ctx)
	o.observe("mip", err)
	return out, err
}

func (o *Orchestrator) mip(ctx context.Context) (MIPResult, error) {
	nonInteracting, err := o.communityMedium(ctx, false)
	if err != nil {
		return MIPResult{}, fmt.Errorf("mip: %w", err)
	}
	interacting, err := o.communityMedium(ctx, true)
	if err != nil {
		return MIPResult{}, fmt.Errorf("mip: %w", err)
	}
	out := InteractionPotential(interacting, nonInteracting)
	o.log.Info("score computed", "scorer", "mip", "model", o.community.ID, "score", out.Score)
	return out, nil
}

// MP computes the production set of every member
func (o *Orchestrator) MP(ctx context.Context) (map[string]MetaboliteSet, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out, err := o.mp(ctx)
	o.observe("mp", err)
	return out, err
}

func (o *Orchestrator) mp(ctx context.Context) (map[string]MetaboliteSet, error) {
	if o.production != nil {
		return o.production, nil
	}
	comMedium, err := o.communityMedium(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("mp: %w", err)
	}
	p, solver := o.params("mp")
	out := make(map[string]MetaboliteSet, len(o.members))
	for _, m := range o.members {
		set, err := ProductionPotential(ctx, solver, m, comMedium, p)
		if err != nil {
			return nil, err
		}
		out[m.ID] = set
		o.log.Info("score computed", "scorer", "mp", "model", m.ID, "produced", len(set))
	}
	o.production = out
	return out, nil
}

// MU computes the uptake profile of every member against the production of the others
func (o *Orchestrator) MU(ctx context.Context) (map[string]*UptakeProfile, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out, err := o.uptake(ctx)
	o.observe("mu", err)
	return out, err
}

func (o *Orchestrator) uptake(ctx context.Context) (map[string]*UptakeProfile, error) {
	produced, err := o.mp(ctx)
	if err != nil {
		return nil, err
	}
	p, solver := o.params("mu")
	out := make(map[string]*UptakeProfile, len(o.members))
	for _, m := range o.members {
		available := NewMetaboliteSet()
		for id, set := range produced {
			if id == m.ID {
				continue
			}
			for met := range set {
				available.Add(met)
			}
		}
		profile, err := UptakeFrequency(ctx, solver, m, available, p)
		if err != nil {
			return nil, err
		}
		out[m.ID] = profile
		o.log.Info("score computed", "scorer", "mu", "model", m.ID, "defined", profile != nil)
	}
	return out, nil
}

// SC computes the coupling profile of every member inside the community.
// A nil entry marks an undefined profile.
func (o *Orchestrator) SC(ctx context.Context) (map[string]*CouplingProfile, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out, err := o.coupling(ctx)
	o.observe("sc", err)
	return out, err
}

func (o *Orchestrator) coupling(ctx context.Context) (map[string]*CouplingProfile, error) {
	p, solver := o.params("sc")
	out := make(map[string]*CouplingProfile, len(o.community.Members))
	for _, member := range o.community.Members {
		profile, err := SpeciesCoupling(ctx, solver, o.community, member, p)
		if err != nil {
			return nil, err
		}
		out[member] = profile
		if profile == nil {
			o.metrics.ObserveScore("sc", metrics.OutcomeUndefined)
		}
		o.log.Info("score computed", "scorer", "sc", "model", member, "defined", profile != nil)
	}
	return out, nil
}

// Smetana computes the SMETANA score of every donor -> receiver direction.
// Species coupling is included when enabled in the configuration.
func (o *Orchestrator) Smetana(ctx context.Context) ([]Interaction, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out, err := o.smetana(ctx)
	o.observe("smetana", err)
	return out, err
}

func (o *Orchestrator) smetana(ctx context.Context) ([]Interaction, error) {
	produced, err := o.mp(ctx)
	if err != nil {
		return nil, err
	}
	uptake, err := o.uptake(ctx)
	if err != nil {
		return nil, err
	}
	var coupling map[string]*CouplingProfile
	if o.cfg.SpeciesCoupling {
		if coupling, err = o.coupling(ctx); err != nil {
			return nil, err
		}
	}
	out := CombineScores(o.members, uptake, produced, coupling)
	o.log.Info("score computed", "scorer", "smetana", "interactions", len(out))
	return out, nil
}

// GrowthDiff compares the growth of every member pair in the environment
func (o *Orchestrator) GrowthDiff(ctx context.Context) (map[string]float64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	out, err := GrowthDifferences(ctx, o.metrics.Solver(o.solver, "growth"), o.members, o.cfg.Environment)
	o.observe("growth_diff", err)
	return out, err
}

// All runs every scorer and assembles a report
func (o *Orchestrator) All(ctx context.Context) (*Report, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	r := &Report{RawContent: o.cfg.RawContent}
	var err error
	if r.MRO, err = o.mro(ctx); err != nil {
		o.observe("mro", err)
		return nil, err
	}
	o.observe("mro", nil)

	mip, err := o.mip(ctx)
	o.observe("mip", err)
	if err != nil {
		return nil, err
	}
	r.MIP = &mip

	if r.MP, err = o.mp(ctx); err != nil {
		o.observe("mp", err)
		return nil, err
	}
	o.observe("mp", nil)

	if r.MU, err = o.uptake(ctx); err != nil {
		o.observe("mu", err)
		return nil, err
	}
	o.observe("mu", nil)

	var coupling map[string]*CouplingProfile
	if o.cfg.SpeciesCoupling {
		if coupling, err = o.coupling(ctx); err != nil {
			o.observe("sc", err)
			return nil, err
		}
		o.observe("sc", nil)
		r.SC = coupling
	}
	r.Smetana = CombineScores(o.members, r.MU, r.MP, coupling)
	o.observe("smetana", nil)

	if r.GrowthDiff, err = GrowthDifferences(ctx, o.metrics.Solver(o.solver, "growth"), o.members, o.cfg.Environment); err != nil {
		o.observe("growth_diff", err)
		return nil, err
	}
	o.observe("growth_diff", nil)
	return r, nil
}
