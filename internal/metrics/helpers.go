package metrics

// Common metric names
const (
	MetricSolvesTotal           = "smetana_solves_total"
	MetricSolveDuration         = "smetana_solve_duration_seconds"
	MetricEnumerationIterations = "smetana_enumeration_iterations"
	MetricScoresTotal           = "smetana_scores_total"
)

// Label names
const (
	LabelScorer  = "scorer"
	LabelStatus  = "status"
	LabelOutcome = "outcome"
)

// Score outcomes
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	// OutcomeUndefined marks a score that could not be defined, such as species
	// coupling whose first solve is infeasible
	OutcomeUndefined = "undefined"
)

// StatusError labels solves that returned an error instead of a solution
const StatusError = "error"

// Outcome maps a score error to its outcome label
func Outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
