package scoring

import (
	"log/slog"

	"github.com/GoSim-25-26J-441/smetana-core/internal/metrics"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/config"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/logger"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

// Params carries the numeric policy and collaborators shared by the scorers
type Params struct {
	MinGrowth         float64
	Tolerance         float64
	CouplingTolerance float64
	BigM              float64
	SolutionCap       int
	Confirmation      string
	Environment       models.Medium
	// UptakeGrowthFloor requires every MU alternative to reach MinGrowth
	UptakeGrowthFloor bool

	Logger  *slog.Logger
	Metrics *metrics.Collector
}

// ParamsFrom converts a scoring configuration
func ParamsFrom(cfg config.ScoringConfig) Params {
	var env models.Medium
	if cfg.Environment != nil {
		env = models.Medium(cfg.Environment).Clone()
	}
	return Params{
		MinGrowth:         cfg.MinGrowth,
		Tolerance:         cfg.Tolerance,
		CouplingTolerance: cfg.CouplingTolerance,
		BigM:              cfg.BigM,
		SolutionCap:       cfg.NSolutions,
		Confirmation:      cfg.ConfirmationMode,
		Environment:       env,
		UptakeGrowthFloor: cfg.MUGrowthFloor,
	}
}

// DefaultParams returns the default scoring policy
func DefaultParams() Params {
	return ParamsFrom(config.DefaultScoring())
}

func (p Params) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return logger.Default
}

// capacity bounds an uptake rate for big-M linking
func (p Params) capacity(lower float64) float64 {
	c := -lower
	if c > p.BigM {
		return p.BigM
	}
	return c
}
