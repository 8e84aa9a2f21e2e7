package scheduler

import (
	"context"
	"time"

	"github.com/Language-Creation-Society/slotmachine/internal/domain"
	"github.com/Language-Creation-Society/slotmachine/internal/milp"
)

// Status is the solver's terminal status, independent of any concrete
// oracle's own status representation.
type Status int

const (
	StatusUndefined Status = iota
	StatusOptimal
	StatusInfeasible
	StatusUnbounded
	StatusNotSolved
)

func (st Status) String() string {
	switch st {
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUnbounded:
		return "Unbounded"
	case StatusNotSolved:
		return "NotSolved"
	default:
		return "Undefined"
	}
}

// SolveHints carries the pass-through thread/time options an oracle may
// honor.
type SolveHints struct {
	Threads   int
	TimeLimit int // milliseconds; 0 means no deadline
}

// Valuation reads a solved variable's value by name, the only access the
// scheduling domain needs back from an oracle's solution.
type Valuation interface {
	Value(name string) (float64, bool)
}

// Oracle is the narrow contract a MILP solver must satisfy to back a
// Session's solve: accept the assembled problem, a sense, and hints;
// return a terminal status and, when Optimal, a valuation.
type Oracle interface {
	Solve(ctx context.Context, problem *milp.Problem, hints SolveHints) (Status, Valuation, error)
}

// milpOracle adapts internal/milp's branch-and-bound engine to the Oracle
// contract.
type milpOracle struct {
	heuristic milp.BranchHeuristic
}

// NewMILPOracle returns the concrete, in-process Oracle used by the CLI.
func NewMILPOracle(heuristic milp.BranchHeuristic) Oracle {
	return &milpOracle{heuristic: heuristic}
}

func (o *milpOracle) Solve(ctx context.Context, problem *milp.Problem, hints SolveHints) (Status, Valuation, error) {
	workers := hints.Threads
	if workers < 1 {
		workers = 1
	}
	if hints.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(hints.TimeLimit)*time.Millisecond)
		defer cancel()
	}
	sol, err := problem.Solve(ctx, workers, o.heuristic)
	if err != nil {
		return StatusUndefined, nil, err
	}
	return fromMILPStatus(sol.Status), &milpValuation{problem: problem, sol: sol}, nil
}

func fromMILPStatus(st milp.Status) Status {
	switch st {
	case milp.StatusOptimal:
		return StatusOptimal
	case milp.StatusInfeasible:
		return StatusInfeasible
	case milp.StatusUnbounded:
		return StatusUnbounded
	case milp.StatusNotSolved:
		return StatusNotSolved
	default:
		return StatusUndefined
	}
}

type milpValuation struct {
	problem *milp.Problem
	sol     *milp.Solution
}

func (v *milpValuation) Value(name string) (float64, bool) {
	return v.sol.ValueByName(name)
}

// Solve runs the oracle against the assembled problem (running Assemble
// first if it has not run yet) and produces the annotated descriptor on
// success. On a
// non-Optimal terminal status it runs the infeasibility diagnosis and
// fails with a domain.UnsatisfiableError.
func (s *Session) Solve(ctx context.Context, oracle Oracle) error {
	if !s.used {
		if err := s.Assemble(); err != nil {
			return err
		}
		s.markUsed()
	}

	hints := SolveHints{Threads: s.Options.Threads, TimeLimit: s.Options.TimeLimit}
	status, valuation, err := oracle.Solve(ctx, s.Problem, hints)
	if err != nil {
		return &domain.SolverUnavailableError{Reason: err.Error()}
	}

	if status != StatusOptimal {
		violatedConstraints, violatedVariables := s.diagnose()
		return &domain.UnsatisfiableError{
			Status:              status.String(),
			ViolatedConstraints: violatedConstraints,
			ViolatedVariables:   violatedVariables,
			Timeout:             status == StatusNotSolved,
		}
	}

	return s.project(valuation)
}
