package domain

import "fmt"

// Kind classifies an error the way the persistence layer records it and
// the CLI maps it to an exit code, without reflection or string matching
// on Error().
type Kind interface {
	Kind() string
}

// BadDescriptorError reports a malformed or inconsistent input descriptor,
// detected while loading it. Fatal; never retried.
type BadDescriptorError struct {
	Reason string
}

func (e *BadDescriptorError) Error() string { return "bad descriptor: " + e.Reason }
func (e *BadDescriptorError) Kind() string  { return "BadDescriptor" }

// UnsatisfiableError reports that the solver returned a non-Optimal
// terminal status. It carries the named constraint/variable lists produced
// by the infeasibility diagnosis.
type UnsatisfiableError struct {
	Status              string
	ViolatedConstraints []string
	ViolatedVariables   []string
	Timeout             bool
}

func (e *UnsatisfiableError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("unsatisfiable: solver timed out before reaching status %s", e.Status)
	}
	return fmt.Sprintf("unsatisfiable: solver status %s", e.Status)
}
func (e *UnsatisfiableError) Kind() string { return "Unsatisfiable" }

// SolverUnavailableError reports that the oracle could not be invoked at
// all (the oracle's Solve returned an error). A panic recovered by the
// pipeline surfaces as a pipeline.PanicError instead.
type SolverUnavailableError struct {
	Reason string
}

func (e *SolverUnavailableError) Error() string { return "solver unavailable: " + e.Reason }
func (e *SolverUnavailableError) Kind() string  { return "SolverUnavailable" }
