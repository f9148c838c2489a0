package smetanad

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/smetana-core/internal/community"
	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
	"github.com/GoSim-25-26J-441/smetana-core/internal/medium"
	"github.com/GoSim-25-26J-441/smetana-core/internal/metrics"
	"github.com/GoSim-25-26J-441/smetana-core/internal/scoring"
	"github.com/GoSim-25-26J-441/smetana-core/internal/store"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/config"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/logger"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/utils"
)

// Server implements ScoringServiceServer on top of a report store
type Server struct {
	store   *store.Store
	solver  lp.Solver
	cfg     *config.Config
	metrics *metrics.Collector
	log     *slog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithMetrics instruments scoring runs with c
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) {
		s.metrics = c
	}
}

// WithLogger sets the server logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.log = l
	}
}

// NewServer creates a Server. cfg supplies the default scoring parameters and
// the screen settings; nil means defaults.
func NewServer(st *store.Store, solver lp.Solver, cfg *config.Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{store: st, solver: solver, cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Default
	}
	return s
}

// Score decodes the members, runs every scorer and stores the report.
func (s *Server) Score(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req scoreRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	if len(req.Members) == 0 {
		return nil, status.Error(codes.InvalidArgument, "members are required")
	}
	if err := indexModels(req.Members); err != nil {
		return nil, toStatus(err)
	}
	if req.Community != nil {
		if err := indexModels([]*models.Model{req.Community}); err != nil {
			return nil, toStatus(err)
		}
	}
	cfg, err := scoringConfig(s.cfg.Scoring, &req.Config)
	if err != nil {
		return nil, toStatus(err)
	}

	start := time.Now()
	runID := utils.GenerateRunID()
	log := s.log.With("run_id", runID)
	opts := []scoring.Option{
		scoring.WithConfig(cfg),
		scoring.WithLogger(log),
		scoring.WithMetrics(s.metrics),
	}
	if req.Environment != nil {
		opts = append(opts, scoring.WithEnvironment(req.Environment))
	}
	if req.Media != nil {
		opts = append(opts, scoring.WithMedia(req.Media.Members, req.Media.Interacting, req.Media.NonInteracting))
	}
	if req.Standardize {
		opts = append(opts, scoring.WithStandardizer(community.ExchangeStandardizer{}))
	}

	orch, err := scoring.New(ctx, s.solver, req.Members, req.Community, opts...)
	if err != nil {
		return nil, toStatus(err)
	}
	report, err := orch.All(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.store.Save(ctx, runID, report); err != nil {
		return nil, toStatus(err)
	}
	log.Info("scoring run stored",
		"members", len(req.Members),
		"smetana", report.SmetanaTotal(),
		"elapsed", utils.FormatDuration(time.Since(start)))

	out, err := structpb.NewStruct(map[string]any{
		"run_id": runID,
		"report": report.AsMap(),
	})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// GetReport returns a stored report
func (s *Server) GetReport(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req lookupRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	if req.RunID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}
	rec, err := s.store.Get(ctx, req.RunID)
	if err != nil {
		return nil, toStatus(err)
	}
	out, err := structpb.NewStruct(recordMap(rec, true))
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// ListReports lists stored runs without their reports
func (s *Server) ListReports(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req lookupRequest
	if in != nil {
		if err := decodeStruct(in, &req); err != nil {
			return nil, toStatus(err)
		}
	}
	recs, err := s.store.List(ctx, req.Limit)
	if err != nil {
		return nil, toStatus(err)
	}
	runs := make([]any, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, recordMap(rec, false))
	}
	out, err := structpb.NewStruct(map[string]any{"reports": runs})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Screen scores every pair of the submitted members with MRO, MIP and growth
// difference.
func (s *Server) Screen(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req screenRequest
	if err := decodeStruct(in, &req); err != nil {
		return nil, toStatus(err)
	}
	if err := indexModels(req.Members); err != nil {
		return nil, toStatus(err)
	}
	cfg, err := scoringConfig(s.cfg.Scoring, &req.Config)
	if err != nil {
		return nil, toStatus(err)
	}
	opts := scoring.ScreenOptions{
		PairLimit: s.cfg.Screen.PairLimit,
		Workers:   s.cfg.Screen.Workers,
		Scoring:   cfg,
		Logger:    s.log,
		Metrics:   s.metrics,
	}
	if req.PairLimit != nil {
		opts.PairLimit = *req.PairLimit
	}
	if req.Workers != nil {
		opts.Workers = *req.Workers
	}

	start := time.Now()
	pairs, err := scoring.Screen(ctx, s.solver, req.Members, opts)
	if err != nil {
		return nil, toStatus(err)
	}
	s.log.Info("screen finished", "pairs", len(pairs), "elapsed", utils.FormatDuration(time.Since(start)))
	list := make([]any, 0, len(pairs))
	for _, p := range pairs {
		list = append(list, pairMap(p))
	}
	out, err := structpb.NewStruct(map[string]any{"pairs": list})
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

func recordMap(rec *store.Record, withReport bool) map[string]any {
	m := map[string]any{
		"run_id":     rec.RunID,
		"created_at": rec.CreatedAt.Format(time.RFC3339Nano),
	}
	if withReport {
		m["report"] = rec.Report.AsMap()
	}
	return m
}

func pairMap(p scoring.PairSummary) map[string]any {
	m := map[string]any{
		"first":        p.First,
		"second":       p.Second,
		"mro_forward":  p.MROForward,
		"mro_backward": p.MROBackward,
		"mip":          float64(p.MIP),
	}
	removed := make([]any, 0, len(p.Removed))
	for _, id := range p.Removed {
		removed = append(removed, id)
	}
	m["removed"] = removed
	if p.GrowthDefined {
		m["growth_diff"] = p.GrowthDiff
	} else {
		m["growth_diff"] = nil
	}
	if p.Error != "" {
		m["error"] = p.Error
	}
	return m
}

// toStatus maps domain errors onto gRPC codes
func toStatus(err error) error {
	switch {
	case errors.Is(err, errInvalidRequest), errors.Is(err, scoring.ErrParameter):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, scoring.ErrNoGrowth), errors.Is(err, medium.ErrNoMedium):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
