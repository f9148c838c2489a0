package smetanad

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"github.com/GoSim-25-26J-441/smetana-core/pkg/config"
	"github.com/GoSim-25-26J-441/smetana-core/pkg/models"
)

var errInvalidRequest = errors.New("invalid request")

// mediaPayload carries precomputed minimal media
type mediaPayload struct {
	Members        map[string]models.Medium `yaml:"members"`
	Interacting    models.Medium            `yaml:"interacting"`
	NonInteracting models.Medium            `yaml:"non_interacting"`
}

type scoreRequest struct {
	Config      yaml.Node       `yaml:"config"`
	Members     []*models.Model `yaml:"members"`
	Community   *models.Model   `yaml:"community"`
	Environment models.Medium   `yaml:"environment"`
	Media       *mediaPayload   `yaml:"media"`
	Standardize bool            `yaml:"standardize"`
}

type screenRequest struct {
	Config    yaml.Node       `yaml:"config"`
	Members   []*models.Model `yaml:"members"`
	PairLimit *int            `yaml:"pair_limit"`
	Workers   *int            `yaml:"workers"`
}

type lookupRequest struct {
	RunID string `yaml:"run_id"`
	Limit int    `yaml:"limit"`
}

// decodeStruct renders in as JSON and decodes it with the yaml tags the
// config and model packages already carry.
func decodeStruct(in *structpb.Struct, out any) error {
	if in == nil {
		return fmt.Errorf("%w: empty request", errInvalidRequest)
	}
	data, err := protojson.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

// scoringConfig overlays the request's config section on base
func scoringConfig(base config.ScoringConfig, node *yaml.Node) (config.ScoringConfig, error) {
	cfg := base
	if node.Kind != 0 {
		if err := node.Decode(&cfg); err != nil {
			return base, fmt.Errorf("%w: config: %v", errInvalidRequest, err)
		}
	}
	if err := config.ValidateScoring(&cfg); err != nil {
		return base, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return cfg, nil
}

// indexModels indexes decoded models and rejects missing ones
func indexModels(ms []*models.Model) error {
	for i, m := range ms {
		if m == nil {
			return fmt.Errorf("%w: member %d is empty", errInvalidRequest, i)
		}
		if err := m.Index(); err != nil {
			return fmt.Errorf("%w: model %s: %v", errInvalidRequest, m.ID, err)
		}
	}
	return nil
}
