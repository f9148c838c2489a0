package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadModel reads a model file (YAML or JSON) and indexes it
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %s: %w", path, err)
	}
	m, err := ParseModel(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}
	return m, nil
}

// ParseModel decodes a model document. JSON input is accepted since it is valid YAML.
func ParseModel(data []byte) (*Model, error) {
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse model yaml: %w", err)
	}
	if err := m.Index(); err != nil {
		return nil, fmt.Errorf("invalid model: %w", err)
	}
	return &m, nil
}

// LoadMedium reads a medium file mapping exchange IDs to uptake rates
func LoadMedium(path string) (Medium, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read medium file %s: %w", path, err)
	}
	var medium Medium
	if err := yaml.Unmarshal(data, &medium); err != nil {
		return nil, fmt.Errorf("failed to parse medium file %s: %w", path, err)
	}
	for id, rate := range medium {
		if rate < 0 {
			return nil, fmt.Errorf("medium %s: uptake rate for %s cannot be negative", path, id)
		}
	}
	return medium, nil
}
