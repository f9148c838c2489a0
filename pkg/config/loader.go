package config

import (
	"fmt"
	"os"
)

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// validateConfig performs validation on the configuration
func validateConfig(cfg *Config) error {
	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	if err := ValidateScoring(&cfg.Scoring); err != nil {
		return fmt.Errorf("scoring validation failed: %w", err)
	}
	if err := validateSolver(&cfg.Solver); err != nil {
		return fmt.Errorf("solver validation failed: %w", err)
	}
	if cfg.Screen.PairLimit < 0 {
		return fmt.Errorf("screen pair_limit cannot be negative, got %d", cfg.Screen.PairLimit)
	}
	if cfg.Screen.Workers <= 0 {
		return fmt.Errorf("screen workers must be positive, got %d", cfg.Screen.Workers)
	}
	return nil
}

// ValidateScoring validates scoring parameters
func ValidateScoring(s *ScoringConfig) error {
	if s.MinGrowth <= 0 {
		return fmt.Errorf("min_growth must be positive, got %g", s.MinGrowth)
	}
	if s.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", s.Tolerance)
	}
	if s.CouplingTolerance <= 0 {
		return fmt.Errorf("coupling_tolerance must be positive, got %g", s.CouplingTolerance)
	}
	if s.NSolutions <= 0 {
		return fmt.Errorf("n_solutions must be positive, got %d", s.NSolutions)
	}
	if s.BigM <= 0 {
		return fmt.Errorf("big_m must be positive, got %g", s.BigM)
	}
	if s.ConfirmationMode != ConfirmationLegacy && s.ConfirmationMode != ConfirmationInclusive {
		return fmt.Errorf("invalid confirmation_mode: %s (must be legacy or inclusive)", s.ConfirmationMode)
	}
	if s.MediumMethod != "flux" && s.MediumMethod != "components" {
		return fmt.Errorf("invalid medium_method: %s (must be flux or components)", s.MediumMethod)
	}
	for id, rate := range s.Environment {
		if id == "" {
			return fmt.Errorf("environment exchange id cannot be empty")
		}
		if rate < 0 {
			return fmt.Errorf("environment %s: uptake rate cannot be negative, got %g", id, rate)
		}
	}
	return nil
}

func validateSolver(s *SolverConfig) error {
	if s.Tolerance <= 0 {
		return fmt.Errorf("tolerance must be positive, got %g", s.Tolerance)
	}
	if s.MaxNodes <= 0 {
		return fmt.Errorf("max_nodes must be positive, got %d", s.MaxNodes)
	}
	if s.Infinity <= 0 {
		return fmt.Errorf("infinity must be positive, got %g", s.Infinity)
	}
	return nil
}
