package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseConfigYAML parses a Config from YAML bytes, fills defaults and validates it.
// This is used for APIs where config is provided as payload (not via filesystem).
func ParseConfigYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// ParseConfigYAMLString parses a Config from a YAML string and validates it.
func ParseConfigYAMLString(yamlText string) (*Config, error) {
	return ParseConfigYAML([]byte(yamlText))
}

// ParseScoringYAML parses only the scoring section, as sent with a single request
func ParseScoringYAML(data []byte) (*ScoringConfig, error) {
	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg.Scoring); err != nil {
		return nil, fmt.Errorf("failed to parse scoring yaml: %w", err)
	}
	applyDefaults(&cfg)
	if err := ValidateScoring(&cfg.Scoring); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	return &cfg.Scoring, nil
}
