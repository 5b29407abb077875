// Package xsexp implements the transport sweep's exponential term,
// 1 - exp(-tau/sin(theta_p)), either evaluated directly or looked up from a
// precomputed, linearly-interpolated table.
//
// The table is read-only once built (§5 "Exponential table sharing"), so a
// *Table value can be shared across sweep goroutines without locking, the
// same "immutable after setup" contract applied to
// meteorology/cross-section inputs.
package xsexp

import "math"

// Mode selects how the exponential term is evaluated.
type Mode int

// Evaluation modes.
const (
	Direct Mode = iota
	Interpolated
)

// Evaluator computes 1 - exp(-tau/sinTheta) for one polar angle at a time.
type Evaluator interface {
	// Eval returns 1 - exp(-tau / sinTheta) for optical path length tau and
	// polar index p (0-based, < NumPolar()).
	Eval(tau float64, p int) float64
	NumPolar() int
}

// direct evaluates the exponential with the platform math library every
// call.
type direct struct {
	sinTheta []float64
}

// NewDirect returns an Evaluator that calls math.Exp on every evaluation.
func NewDirect(sinTheta []float64) Evaluator {
	s := make([]float64, len(sinTheta))
	copy(s, sinTheta)
	return &direct{sinTheta: s}
}

func (d *direct) NumPolar() int { return len(d.sinTheta) }

func (d *direct) Eval(tau float64, p int) float64 {
	return 1 - math.Exp(-tau/d.sinTheta[p])
}

// Table is a precomputed, linearly-interpolated exponential evaluator:
// E(tau,p) ~= T[i,p] + (tau - i*dTau)*S[i,p], i = floor(tau/dTau), beyond
// tauMax the term saturates to 1.
type Table struct {
	sinTheta []float64
	dTau     float64
	tauMax   float64
	nSteps   int
	values   [][]float64 // [step][polar]
	slopes   [][]float64 // [step][polar]
}

// NewTable builds an interpolation table spanning [0, tauMax] with the
// given step count, accurate to the relative tolerance used to pick tauMax
// by the caller.
func NewTable(sinTheta []float64, tauMax float64, nSteps int) *Table {
	s := make([]float64, len(sinTheta))
	copy(s, sinTheta)
	t := &Table{
		sinTheta: s,
		tauMax:   tauMax,
		nSteps:   nSteps,
		dTau:     tauMax / float64(nSteps),
		values:   make([][]float64, nSteps+1),
		slopes:   make([][]float64, nSteps+1),
	}
	np := len(s)
	for i := 0; i <= nSteps; i++ {
		t.values[i] = make([]float64, np)
		tau := float64(i) * t.dTau
		for p := 0; p < np; p++ {
			t.values[i][p] = 1 - math.Exp(-tau/s[p])
		}
	}
	for i := 0; i < nSteps; i++ {
		t.slopes[i] = make([]float64, np)
		for p := 0; p < np; p++ {
			t.slopes[i][p] = (t.values[i+1][p] - t.values[i][p]) / t.dTau
		}
	}
	t.slopes[nSteps] = make([]float64, np) // unused past the last bin
	return t
}

// NewDefaultTable picks a table resolution tight enough for 1e-5 relative
// error in the typical tau in [0, 10] operating range of the sweep.
func NewDefaultTable(sinTheta []float64) *Table {
	return NewTable(sinTheta, 10.0, 100000)
}

func (t *Table) NumPolar() int { return len(t.sinTheta) }

func (t *Table) Eval(tau float64, p int) float64 {
	if tau >= t.tauMax {
		return 1
	}
	if tau < 0 {
		tau = 0
	}
	i := int(tau / t.dTau)
	if i >= t.nSteps {
		i = t.nSteps - 1
	}
	return t.values[i][p] + (tau-float64(i)*t.dTau)*t.slopes[i][p]
}
