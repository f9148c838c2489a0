package config

// Config represents the main scoring configuration
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Scoring  ScoringConfig `yaml:"scoring"`
	Solver   SolverConfig  `yaml:"solver"`
	Screen   ScreenConfig  `yaml:"screen"`
	Server   ServerConfig  `yaml:"server"`
}

// ScoringConfig holds the parameters shared by every scorer
type ScoringConfig struct {
	MinGrowth         float64 `yaml:"min_growth"`
	Tolerance         float64 `yaml:"tolerance"`          // flux decisions
	CouplingTolerance float64 `yaml:"coupling_tolerance"` // species-coupling indicators
	NSolutions        int     `yaml:"n_solutions"`        // enumeration cap
	BigM              float64 `yaml:"big_m"`
	// ConfirmationMode is "legacy" (confirmed metabolites are removed) or
	// "inclusive" (confirmed metabolites are added)
	ConfirmationMode string             `yaml:"confirmation_mode"`
	SpeciesCoupling  bool               `yaml:"species_coupling"`
	RawContent       bool               `yaml:"raw_content"`
	MediumMethod     string             `yaml:"medium_method"` // flux or components
	Environment      map[string]float64 `yaml:"environment,omitempty"`
	// MUGrowthFloor makes MU alternatives reach min_growth. Off by default, so
	// enumeration stops only when the cuts leave no feasible solution.
	MUGrowthFloor bool `yaml:"mu_growth_floor"`
}

// SolverConfig configures the reference solver backend
type SolverConfig struct {
	Tolerance float64 `yaml:"tolerance"`
	MaxNodes  int     `yaml:"max_nodes"`
	Infinity  float64 `yaml:"infinity"`
}

// ScreenConfig configures the pairwise screen
type ScreenConfig struct {
	PairLimit int `yaml:"pair_limit"` // 0 means every pair
	Workers   int `yaml:"workers"`
}

// ServerConfig configures the scoring daemon
type ServerConfig struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
	DBPath      string `yaml:"db_path"`
}

// Confirmation modes
const (
	ConfirmationLegacy    = "legacy"
	ConfirmationInclusive = "inclusive"
)

// Default returns a configuration populated with default values
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// DefaultScoring returns the default scoring parameters
func DefaultScoring() ScoringConfig {
	return Default().Scoring
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	s := &cfg.Scoring
	if s.MinGrowth == 0 {
		s.MinGrowth = 0.1
	}
	if s.Tolerance == 0 {
		s.Tolerance = 1e-3
	}
	if s.CouplingTolerance == 0 {
		s.CouplingTolerance = 1e-6
	}
	if s.NSolutions == 0 {
		s.NSolutions = 100
	}
	if s.BigM == 0 {
		s.BigM = 1000
	}
	if s.ConfirmationMode == "" {
		s.ConfirmationMode = ConfirmationLegacy
	}
	if s.MediumMethod == "" {
		s.MediumMethod = "flux"
	}

	if cfg.Solver.Tolerance == 0 {
		cfg.Solver.Tolerance = 1e-9
	}
	if cfg.Solver.MaxNodes == 0 {
		cfg.Solver.MaxNodes = 10000
	}
	if cfg.Solver.Infinity == 0 {
		cfg.Solver.Infinity = 1e5
	}

	if cfg.Screen.Workers == 0 {
		cfg.Screen.Workers = 4
	}

	if cfg.Server.GRPCAddr == "" {
		cfg.Server.GRPCAddr = ":50051"
	}
	if cfg.Server.MetricsAddr == "" {
		cfg.Server.MetricsAddr = ":9090"
	}
	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = "smetana.db"
	}
}
