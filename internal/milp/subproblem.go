package milp

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// bnbConstraint is one inequality row added by a branching decision:
// gsharp·x <= hsharp, on top of the root problem's own G/h rows.
type bnbConstraint struct {
	branchedVariable int
	gsharp           []float64
	hsharp           float64
}

// subProblem is one node of the branch-and-bound search tree. It shares
// the root problem's equality system (A, b) and carries its own growing
// set of inequality rows (the root's G/h plus every bnbConstraint
// accumulated on the path from the root).
type subProblem struct {
	id, parent int64

	c []float64
	A *mat.Dense
	b []float64
	G *mat.Dense
	h []float64

	integrality     []bool
	branchHeuristic BranchHeuristic
	bnbConstraints  []bnbConstraint
}

func (s *subProblem) copy() *subProblem {
	cp := *s
	cp.bnbConstraints = append([]bnbConstraint(nil), s.bnbConstraints...)
	return &cp
}

// combineInequalities stacks the root's G/h with every bnbConstraint row
// accumulated so far into one inequality system.
func (s *subProblem) combineInequalities() (*mat.Dense, []float64) {
	rootRows, n := s.G.Dims()
	total := rootRows + len(s.bnbConstraints)
	if total == 0 {
		return mat.NewDense(0, n, nil), nil
	}
	combined := mat.NewDense(total, n, nil)
	combined.Copy(s.G)
	h := append([]float64(nil), s.h...)
	for i, bc := range s.bnbConstraints {
		combined.SetRow(rootRows+i, bc.gsharp)
		h = append(h, bc.hsharp)
	}
	return combined, h
}

// convertToEqualities appends one slack variable per inequality row,
// turning G x <= h into G x + s = h, s >= 0, and stacks it under the
// existing equality system A x = b so the whole thing can be handed to a
// standard-form simplex solver.
func convertToEqualities(c []float64, A *mat.Dense, b []float64, G *mat.Dense, h []float64) (newC []float64, newA *mat.Dense, newB []float64) {
	nVar := len(c)
	nEq, _ := A.Dims()
	nIneq, _ := G.Dims()
	newN := nVar + nIneq

	newC = make([]float64, newN)
	copy(newC, c)

	newA = mat.NewDense(nEq+nIneq, newN, nil)
	for i := 0; i < nEq; i++ {
		for j := 0; j < nVar; j++ {
			newA.Set(i, j, A.At(i, j))
		}
	}
	for i := 0; i < nIneq; i++ {
		for j := 0; j < nVar; j++ {
			newA.Set(nEq+i, j, G.At(i, j))
		}
		newA.Set(nEq+i, nVar+i, 1)
	}

	newB = make([]float64, nEq+nIneq)
	copy(newB, b)
	copy(newB[nEq:], h)

	return newC, newA, newB
}

// solution is the result of relaxing one subProblem's LP (ignoring
// integrality) via simplex.
type solution struct {
	problem *subProblem
	x       []float64 // only the first len(c) entries are real variables
	z       float64
	err     error
}

func (s *subProblem) solve() solution {
	G, h := s.combineInequalities()
	c, A, b := convertToEqualities(s.c, s.A, s.b, G, h)

	nRows, nCols := A.Dims()
	if nRows == 0 {
		// No constraints at all: every variable free at its (shifted) lower
		// bound of 0 is feasible; simplex requires at least one row, so
		// special-case it rather than feeding gonum a degenerate matrix.
		x := make([]float64, nCols)
		return solution{problem: s, x: x, z: 0}
	}

	z, x, err := lp.Simplex(nil, c, A, b, 0)
	if err != nil {
		return solution{problem: s, err: err}
	}
	return solution{problem: s, x: x, z: z}
}

// fractionalVariable returns the index of an integrality-constrained
// variable whose relaxed value is not (within tol) an integer, and false
// if the relaxation is already integer-feasible.
func (sol solution) fractionalVariable(tol float64) (int, bool) {
	for i, integer := range sol.problem.integrality {
		if !integer {
			continue
		}
		v := sol.x[i]
		frac := v - roundNearest(v)
		if frac < 0 {
			frac = -frac
		}
		if frac > tol {
			return i, true
		}
	}
	return 0, false
}

func roundNearest(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return -float64(int64(-v + 0.5))
}

// branch creates the two child subproblems obtained by branching on the
// variable the configured heuristic selects: one forcing it down to
// floor(value), one forcing it up to ceil(value).
func (sol solution) branch() (down, up *subProblem) {
	branchOn := sol.selectBranchVariable()
	value := sol.x[branchOn]
	floorVal := float64(int64(value))
	ceilVal := floorVal + 1

	n := len(sol.problem.c)

	downRow := make([]float64, n)
	downRow[branchOn] = 1
	down = sol.problem.copy()
	down.bnbConstraints = append(down.bnbConstraints, bnbConstraint{
		branchedVariable: branchOn,
		gsharp:           downRow,
		hsharp:           floorVal,
	})

	upRow := make([]float64, n)
	upRow[branchOn] = -1
	up = sol.problem.copy()
	up.bnbConstraints = append(up.bnbConstraints, bnbConstraint{
		branchedVariable: branchOn,
		gsharp:           upRow,
		hsharp:           -ceilVal,
	})

	return down, up
}

func (sol solution) selectBranchVariable() int {
	switch sol.problem.branchHeuristic {
	case BranchMaxFun:
		return maxFunBranchPoint(sol.problem.c, sol.problem.integrality)
	case BranchNaive:
		return naiveBranchPoint(sol)
	default:
		return mostInfeasibleBranchPoint(sol.x, sol.problem.integrality)
	}
}
