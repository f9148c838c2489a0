package scoring

import (
	"errors"
	"fmt"

	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
)

var (
	// ErrParameter matches every *ParameterError
	ErrParameter = errors.New("invalid scoring parameters")
	// ErrNoGrowth matches every *NoGrowthError
	ErrNoGrowth = errors.New("model does not grow")
)

// ParameterError reports an unsatisfied combination of scoring inputs
type ParameterError struct {
	Reason string
}

func (e *ParameterError) Error() string {
	return "parameter error: " + e.Reason
}

// Is reports whether target is ErrParameter
func (e *ParameterError) Is(target error) bool {
	return target == ErrParameter
}

func parameterError(format string, args ...any) error {
	return &ParameterError{Reason: fmt.Sprintf(format, args...)}
}

// NoGrowthError reports a model whose growth precondition failed
type NoGrowthError struct {
	ModelID string
	Growth  float64
	Status  lp.Status
}

func (e *NoGrowthError) Error() string {
	return fmt.Sprintf("model %s does not grow (status %s, objective %g); scores against it are meaningless",
		e.ModelID, e.Status, e.Growth)
}

// Is reports whether target is ErrNoGrowth
func (e *NoGrowthError) Is(target error) bool {
	return target == ErrNoGrowth
}
