package scoring

import (
	"context"
	"fmt"

	"github.com/GoSim-25-26J-441/smetana-core/internal/fba"
	"github.com/GoSim-25-26J-441/smetana-core/internal/lp"
)

type enumState int

const (
	stateSolving enumState = iota
	stateRecorded
	stateCutApplied
	stateTerminated
)

func (s enumState) String() string {
	switch s {
	case stateSolving:
		return "solving"
	case stateRecorded:
		return "recorded"
	case stateCutApplied:
		return "cut-applied"
	case stateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("enumState(%d)", int(s))
	}
}

// Alternative is one accepted solution of an enumeration together with the
// indicator variables its cut excludes
type Alternative struct {
	Solution *lp.Solution
	Selected []string
}

// Selector picks the indicator variables that characterize a solution
type Selector func(sol *lp.Solution) []string

// Enumerator yields a lazy, finite, non-restartable sequence of alternative
// optima. After each accepted solution it appends the integer cut
// sum(selected) <= |selected| - 1 to the session, so the next solve has to
// differ. It stops at the limit, on the first non-optimal solve, or after a
// solution with an empty selection, which no cut can exclude.
type Enumerator struct {
	session  *fba.Session
	limit    int
	selector Selector

	state    enumState
	recorded int
}

// NewEnumerator creates an enumerator over session yielding at most limit solutions
func NewEnumerator(session *fba.Session, limit int, selector Selector) *Enumerator {
	return &Enumerator{
		session:  session,
		limit:    limit,
		selector: selector,
		state:    stateSolving,
	}
}

// Next solves for the next alternative. ok is false once the sequence is exhausted.
func (e *Enumerator) Next(ctx context.Context) (alt Alternative, ok bool, err error) {
	if e.state == stateTerminated {
		return Alternative{}, false, nil
	}
	if e.recorded >= e.limit {
		e.state = stateTerminated
		return Alternative{}, false, nil
	}

	e.state = stateSolving
	sol, err := e.session.Optimize(ctx)
	if err != nil {
		e.state = stateTerminated
		return Alternative{}, false, err
	}
	if !sol.Optimal() {
		e.state = stateTerminated
		return Alternative{}, false, nil
	}

	e.state = stateRecorded
	e.recorded++
	selected := e.selector(sol)
	if len(selected) == 0 {
		e.state = stateTerminated
		return Alternative{Solution: sol}, true, nil
	}

	cut := make(lp.Expr, len(selected))
	for _, name := range selected {
		cut[name] = 1
	}
	name := fmt.Sprintf("cut_%d", e.recorded)
	if err := e.session.AddConstraint(lp.AtMost(name, cut, float64(len(selected)-1))); err != nil {
		e.state = stateTerminated
		return Alternative{}, false, fmt.Errorf("apply %s: %w", name, err)
	}
	e.state = stateCutApplied
	return Alternative{Solution: sol, Selected: selected}, true, nil
}

// Recorded returns how many solutions were accepted so far
func (e *Enumerator) Recorded() int {
	return e.recorded
}

// Done reports whether the enumeration has terminated
func (e *Enumerator) Done() bool {
	return e.state == stateTerminated
}
