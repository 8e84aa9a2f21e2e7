// Package scheduler builds and solves the MILP model for one conference
// descriptor: variable factory, constraint builder, objective builder,
// solver driver, result projector, and infeasibility diagnosis. A Session
// owns every domain record and MILP variable for one solve and is
// single-use.
package scheduler

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Language-Creation-Society/slotmachine/internal/loader"
	"github.com/Language-Creation-Society/slotmachine/internal/milp"
)

// restMinSpacingSlots / restMaxSpacingSlots bound the gap between
// consecutive rest talks: 60 and 120 minutes.
const (
	restMinSpacingSlots = 12
	restMaxSpacingSlots = 24
)

// Options configures one Session's model assembly and solve.
type Options struct {
	// BigM is the constant used by the plenary-exclusivity and before/after
	// rest big-M encodings. Zero means "compute maxSlot + maxDuration", a
	// tightened bound that scales with the problem instead of a fixed 2^32.
	BigM float64

	Threads         int
	TimeLimit       int // milliseconds; 0 means no deadline
	BranchHeuristic milp.BranchHeuristic
}

// varKind distinguishes the eight variable families within a single typed
// cache key, never a formatted string.
type varKind uint8

const (
	kindStart varKind = iota
	kindActive
	kindAttend
	kindAttendAt
	kindDistance
	kindAbsDistance
	kindAdjacentOrBefore
	kindAdjacent
)

// varKey is the lazy variable cache's key: a small struct of integers,
// never a string built on the hot path.
type varKey struct {
	kind varKind
	a, b, c int
}

// Session owns all domain records and MILP variables for one solve.
type Session struct {
	Loaded  *loader.Result
	Problem *milp.Problem
	Options Options
	log     *zap.SugaredLogger

	vars map[varKey]*milp.Variable

	maxSlot        int
	slotAvailable  map[int]bool
	contiguityDone map[varKey]bool

	used bool
}

// NewSession creates a Session over an already-loaded descriptor. Solving
// twice on the same Session is undefined; callers needing to re-solve must
// build a fresh Session from the same Result.
func NewSession(loaded *loader.Result, opts Options, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	maxSlot := 0
	for _, s := range loaded.SlotsAvailable {
		if s > maxSlot {
			maxSlot = s
		}
	}
	maxDuration := 0
	for _, t := range loaded.Talks {
		if t.Duration > maxDuration {
			maxDuration = t.Duration
		}
	}
	if opts.BigM == 0 {
		opts.BigM = float64(maxSlot + maxDuration)
	}
	slotAvailable := make(map[int]bool, len(loaded.SlotsAvailable))
	for _, sl := range loaded.SlotsAvailable {
		slotAvailable[sl] = true
	}
	return &Session{
		Loaded:         loaded,
		Problem:        milp.NewProblem(),
		Options:        opts,
		log:            log,
		vars:           make(map[varKey]*milp.Variable),
		contiguityDone: make(map[varKey]bool),
		maxSlot:        maxSlot,
		slotAvailable:  slotAvailable,
	}
}

// Assemble builds every variable, constraint, and objective term for the
// loaded descriptor. It must run exactly once before Solve.
func (s *Session) Assemble() error {
	if s.used {
		return fmt.Errorf("scheduler: session already assembled")
	}
	s.Problem.Maximize = true
	if err := s.buildConstraints(); err != nil {
		return err
	}
	s.buildObjective()
	s.markUsed()
	return nil
}

func (s *Session) markUsed() {
	s.used = true
}

func (s *Session) isSlotAvailable(slot int) bool {
	return s.slotAvailable[slot]
}
