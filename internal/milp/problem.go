// Package milp is a small branch-and-bound mixed-integer linear solver: the
// concrete Oracle behind the scheduling domain's narrow solver contract.
// Its builder API (Problem/Variable/Constraint) and branch-and-bound shape
// are modeled on a retrieved Go MILP implementation; the LP relaxation at
// each node is solved with gonum's dense-matrix simplex.
package milp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Variable is one decision or auxiliary variable. Bounds default to [0,
// +Inf); Lower must be finite (this engine always shifts the variable
// domain to zero internally, so an unbounded-below variable — DISTANCE_V,
// for instance — must still be given a finite lower bound by its caller,
// computed from the slot domain it's drawn from).
type Variable struct {
	Name        string
	Coefficient float64
	Integer     bool
	Lower       float64
	Upper       float64

	problem *Problem
	index   int
}

func (v *Variable) SetCoefficient(c float64) *Variable {
	v.Coefficient = c
	return v
}

// AddCoefficient accumulates into the variable's objective coefficient,
// for objective terms that add weight to a variable already referenced by
// an earlier term.
func (v *Variable) AddCoefficient(delta float64) *Variable {
	v.Coefficient += delta
	return v
}

// ViolatedAtZero reports whether zero is outside this variable's bounds —
// the variable-level half of the infeasibility diagnosis that runs after a
// non-Optimal solve.
func (v *Variable) ViolatedAtZero() bool {
	return 0 < v.Lower || 0 > v.Upper
}

func (v *Variable) SetInteger(integer bool) *Variable {
	v.Integer = integer
	return v
}

func (v *Variable) SetBounds(lower, upper float64) *Variable {
	v.Lower = lower
	v.Upper = upper
	return v
}

// ForceZero pins the variable to exactly zero, the structural pruning
// policy for trivially infeasible variables: the variable stays in the
// problem (named, referenceable) but can never take a nonzero value.
func (v *Variable) ForceZero() *Variable {
	v.Lower = 0
	v.Upper = 0
	return v
}

// term is one coefficient*variable pair inside a constraint's expression.
type term struct {
	coef float64
	v    *Variable
}

// Inequality is the comparison a Constraint's expression is checked against.
type Inequality int

const (
	LessOrEqual Inequality = iota
	Equal
	GreaterOrEqual
)

// Constraint is a single named linear constraint: Σ coef·var {<=,=,>=} rhs.
type Constraint struct {
	Name       string
	terms      []term
	inequality Inequality
	rhs        float64
}

func (c *Constraint) AddTerm(coef float64, v *Variable) *Constraint {
	c.terms = append(c.terms, term{coef: coef, v: v})
	return c
}

func (c *Constraint) LessOrEqualTo(rhs float64) *Constraint {
	c.inequality = LessOrEqual
	c.rhs = rhs
	return c
}

func (c *Constraint) EqualTo(rhs float64) *Constraint {
	c.inequality = Equal
	c.rhs = rhs
	return c
}

// GreaterOrEqualTo sets the constraint's sense to Σ coef·var >= rhs, for
// expressions more natural to state as a lower bound than as a negated
// upper bound.
func (c *Constraint) GreaterOrEqualTo(rhs float64) *Constraint {
	c.inequality = GreaterOrEqual
	c.rhs = rhs
	return c
}

// ViolatedAtZero reports whether setting every referenced variable to zero
// would violate this constraint — the constraint-level half of the
// infeasibility diagnosis that runs after a non-Optimal solve.
func (c *Constraint) ViolatedAtZero() bool {
	switch c.inequality {
	case Equal:
		return c.rhs != 0
	case GreaterOrEqual:
		return 0 < c.rhs
	default:
		return 0 > c.rhs
	}
}

// Problem accumulates variables and constraints for one solve. It is not
// safe for concurrent mutation — building stays single-threaded within one
// Session; the solver's own worker pool is internal to Solve.
type Problem struct {
	Maximize bool

	variables   []*Variable
	constraints []*Constraint

	byName map[string]*Variable
}

func NewProblem() *Problem {
	return &Problem{byName: make(map[string]*Variable)}
}

// AddVariable creates and caches a new variable. Names must be unique;
// callers (the scheduling domain's variable factory) are responsible for
// memoizing by their own typed key and never calling AddVariable twice for
// the same logical variable.
func (p *Problem) AddVariable(name string) *Variable {
	v := &Variable{Name: name, Upper: math.Inf(1), problem: p, index: len(p.variables)}
	p.variables = append(p.variables, v)
	p.byName[name] = v
	return v
}

func (p *Problem) AddConstraint(name string) *Constraint {
	c := &Constraint{Name: name}
	p.constraints = append(p.constraints, c)
	return c
}

func (p *Problem) NumVariables() int   { return len(p.variables) }
func (p *Problem) NumConstraints() int { return len(p.constraints) }

// Variables returns every variable in creation order, for infeasibility
// diagnosis and metrics reporting.
func (p *Problem) Variables() []*Variable { return p.variables }

// Constraints returns every constraint in creation order.
func (p *Problem) Constraints() []*Constraint { return p.constraints }

// toSolveable builds the dense matrices the branch-and-bound search works
// over, shifting every variable's domain to start at zero (gonum's simplex
// assumes x >= 0) and folding the resulting constant back into objConst so
// Solution.Objective reports the true, unshifted value.
func (p *Problem) toSolveable() (c []float64, A *mat.Dense, b []float64, G *mat.Dense, h []float64, integrality []bool, objConst float64, err error) {
	n := len(p.variables)
	c = make([]float64, n)
	integrality = make([]bool, n)
	shift := make([]float64, n)

	for i, v := range p.variables {
		if math.IsInf(v.Lower, -1) {
			return nil, nil, nil, nil, nil, nil, 0, fmt.Errorf("milp: variable %q has an unbounded-below lower bound", v.Name)
		}
		if v.Upper < v.Lower {
			return nil, nil, nil, nil, nil, nil, 0, fmt.Errorf("milp: variable %q has upper bound below lower bound", v.Name)
		}
		shift[i] = v.Lower
		coef := v.Coefficient
		if p.Maximize {
			coef = -coef
		}
		c[i] = coef
		objConst += coef * shift[i]
		integrality[i] = v.Integer
	}

	var aRows [][]float64
	var bRows []float64
	var gRows [][]float64
	var hRows []float64

	for i, v := range p.variables {
		if !math.IsInf(v.Upper, 1) {
			row := make([]float64, n)
			row[i] = 1
			gRows = append(gRows, row)
			hRows = append(hRows, v.Upper-shift[i])
		}
	}

	for _, cons := range p.constraints {
		row := make([]float64, n)
		rhs := cons.rhs
		for _, t := range cons.terms {
			row[t.v.index] += t.coef
			rhs -= t.coef * shift[t.v.index]
		}
		switch cons.inequality {
		case Equal:
			aRows = append(aRows, row)
			bRows = append(bRows, rhs)
		case GreaterOrEqual:
			negRow := make([]float64, n)
			for i, x := range row {
				negRow[i] = -x
			}
			gRows = append(gRows, negRow)
			hRows = append(hRows, -rhs)
		default:
			gRows = append(gRows, row)
			hRows = append(hRows, rhs)
		}
	}

	A = rowsToDense(aRows, n)
	G = rowsToDense(gRows, n)
	b = bRows
	h = hRows
	return c, A, b, G, h, integrality, objConst, nil
}

func rowsToDense(rows [][]float64, n int) *mat.Dense {
	if len(rows) == 0 {
		return mat.NewDense(0, n, nil)
	}
	flat := make([]float64, 0, len(rows)*n)
	for _, r := range rows {
		flat = append(flat, r...)
	}
	return mat.NewDense(len(rows), n, flat)
}
