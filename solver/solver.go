// Package solver implements the MOC transport sweep and power iteration
// (module C6): it drives repeated sweeps over a fixed set of tracks,
// updating FSR scalar flux, track boundary angular flux, and per-group
// sources until the fission source converges or an iteration cap is hit.
//
// The sweep's worker-pool shape -- stride a fixed-size goroutine pool over
// a flat slice, guarded by a sync.WaitGroup, with one lock per mutable
// record touched concurrently -- strides over tracks instead of grid cells,
// locking one FSR instead of one grid cell.
package solver

import (
	"fmt"
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/cpmech-moc/moctran/fsr"
	"github.com/cpmech-moc/moctran/track"
	"github.com/cpmech-moc/moctran/xsdata"
	"github.com/cpmech-moc/moctran/xsexp"
)

// Quadrature holds the polar angle set shared by every track.
type Quadrature struct {
	SinTheta []float64 // sin(theta_p)
	Weight   []float64 // w_p
}

func (q Quadrature) numPolar() int { return len(q.SinTheta) }

// Config bundles the tunables the power iteration needs beyond the
// geometry/track/material inputs.
type Config struct {
	MaxIterations   int
	SourceTolerance float64
	ThreadCount     int // 0 means runtime.GOMAXPROCS(0)
	ExponentialMode xsexp.Mode
}

// DefaultConfig returns reasonable defaults for the power iteration; 200 is
// a generous but bounded ceiling for a fixed-point source iteration.
func DefaultConfig() Config {
	return Config{
		MaxIterations:   200,
		SourceTolerance: 1e-5,
		ExponentialMode: xsexp.Interpolated,
	}
}

// Result is returned in place of an error for a sweep that exhausted its
// iteration budget without converging; the caller decides whether that is
// fatal.
type Result struct {
	Converged  bool
	Iterations int
	KEff       float64
	Residual   float64
	Leakage    float64
}

// psi holds boundary angular flux per track x direction x polar x group,
// flattened to one []float64 per (track,direction) pair.
type psi struct {
	numPolar, numGroups int
	plus, minus         [][]float64 // [trackUID][polar*numGroups+group]
}

func newPsi(numTracks, numPolar, numGroups int, init float64) *psi {
	p := &psi{numPolar: numPolar, numGroups: numGroups,
		plus:  make([][]float64, numTracks),
		minus: make([][]float64, numTracks)}
	for i := 0; i < numTracks; i++ {
		p.plus[i] = constVec(numPolar*numGroups, init)
		p.minus[i] = constVec(numPolar*numGroups, init)
	}
	return p
}

func constVec(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func (p *psi) vec(d track.Dir, uid int) []float64 {
	if d == track.Plus {
		return p.plus[uid]
	}
	return p.minus[uid]
}

func (p *psi) idx(pol, g int) int { return pol*p.numGroups + g }

func (p *psi) scale(factor float64) {
	for _, v := range p.plus {
		floats.Scale(factor, v)
	}
	for _, v := range p.minus {
		floats.Scale(factor, v)
	}
}

// Solver owns the fixed inputs to the power iteration: the FSR registry,
// track registry, materials keyed by handle, polar quadrature, and
// exponential evaluator.
type Solver struct {
	FSRs      *fsr.Registry
	Tracks    *track.Registry
	Materials map[int]*xsdata.Material
	Quad      Quadrature
	Config    Config

	groups int
	exp    xsexp.Evaluator
	psi    *psi
	leak   []float64 // [polar*groups+group], accumulated per iteration
}

// New builds a Solver ready to run Solve. groups is the number of energy
// groups shared by every material.
func New(fsrs *fsr.Registry, tracks *track.Registry, materials map[int]*xsdata.Material, quad Quadrature, groups int, cfg Config) (*Solver, error) {
	if fsrs.Len() == 0 {
		return nil, fmt.Errorf("solver: no FSRs registered")
	}
	if tracks.Len() == 0 {
		return nil, fmt.Errorf("solver: no tracks registered")
	}
	if len(quad.SinTheta) == 0 || len(quad.SinTheta) != len(quad.Weight) {
		return nil, fmt.Errorf("solver: polar quadrature must have matching, nonempty sinTheta/weight")
	}
	var exp xsexp.Evaluator
	switch cfg.ExponentialMode {
	case xsexp.Direct:
		exp = xsexp.NewDirect(quad.SinTheta)
	default:
		exp = xsexp.NewDefaultTable(quad.SinTheta)
	}
	return &Solver{
		FSRs:      fsrs,
		Tracks:    tracks,
		Materials: materials,
		Quad:      quad,
		Config:    cfg,
		groups:    groups,
		exp:       exp,
		psi:       newPsi(tracks.Len(), quad.numPolar(), groups, 1.0),
		leak:      make([]float64, quad.numPolar()*groups),
	}, nil
}

// nprocs returns the worker-pool size: the configured ThreadCount, or
// runtime.GOMAXPROCS(0) if unset.
func (s *Solver) nprocs() int {
	if s.Config.ThreadCount > 0 {
		return s.Config.ThreadCount
	}
	return runtime.GOMAXPROCS(0)
}

// Solve runs the power iteration to convergence or the iteration cap,
// whichever comes first. It returns an error, wrapping xsdata.ErrNumericFailure,
// if normalization ever finds a zero total fission source.
func (s *Solver) Solve() (Result, error) {
	kEff := 1.0
	for _, f := range s.FSRs.All() {
		for g := range f.Flux {
			f.Flux[g] = 1.0
			f.OldSource[g] = 1.0
		}
	}

	var residual float64
	iterations := 0
	for iterations < s.Config.MaxIterations {
		iterations++
		if err := s.normalize(); err != nil {
			return Result{}, fmt.Errorf("solver: iteration %d: %w", iterations, err)
		}
		residual = s.buildSource(kEff)
		s.sweep()
		s.accumulateFlux()
		kEff = s.computeKEff()

		if residual < s.Config.SourceTolerance {
			return Result{Converged: true, Iterations: iterations, KEff: kEff, Residual: residual, Leakage: sum(s.leak)}, nil
		}
	}
	return Result{Converged: false, Iterations: iterations, KEff: kEff, Residual: residual, Leakage: sum(s.leak)}, nil
}

// normalize scales phi and psi so the total fission source is 1. A zero
// total fission source means every FSR's flux has collapsed to zero, which
// the power iteration can never recover from on its own.
func (s *Solver) normalize() error {
	var fission float64
	for _, f := range s.FSRs.All() {
		m := s.Materials[f.MaterialHandle]
		for g := 0; g < s.groups; g++ {
			fission += m.NuSigF.At(g) * f.Flux[g] * f.Volume
		}
	}
	if fission == 0 {
		return fmt.Errorf("total fission source is zero: %w", xsdata.ErrNumericFailure)
	}
	factor := 1 / fission
	for _, f := range s.FSRs.All() {
		floats.Scale(factor, f.Flux)
	}
	s.psi.scale(factor)
	return nil
}

// buildSource computes Q, ratio, and the source residual.
func (s *Solver) buildSource(kEff float64) float64 {
	const fourPi = 4 * math.Pi
	var sumSq float64
	var n int
	for _, f := range s.FSRs.All() {
		m := s.Materials[f.MaterialHandle]
		fission := floats.Dot(m.NuSigF.Raw()[:s.groups], f.Flux)
		for G := 0; G < s.groups; G++ {
			scatter := floats.Dot(m.SigmaS[G].Raw()[:s.groups], f.Flux)
			q := (fission*m.Chi.At(G)/kEff + scatter) / fourPi
			f.Source[G] = q
			f.Ratio[G] = q / m.SigmaT.At(G)

			if math.Abs(f.OldSource[G]) > 1e-10 {
				d := (q - f.OldSource[G]) / f.OldSource[G]
				sumSq += d * d
				n++
			}
			f.OldSource[G] = q
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sumSq / float64(n))
}

// sweep performs the transport sweep over both azimuthal half-spaces in
// sequence; the two halves are traversed one after the other, not concurrently.
func (s *Solver) sweep() {
	for g := range s.leak {
		s.leak[g] = 0
	}
	for half := 0; half < 2; half++ {
		s.sweepHalf(half)
	}
}

func (s *Solver) sweepHalf(half int) {
	var halfTracks []*track.Track
	for _, t := range s.Tracks.All() {
		if t.Half == half {
			halfTracks = append(halfTracks, t)
		}
	}
	nprocs := s.nprocs()
	var wg sync.WaitGroup
	var leakMu sync.Mutex
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			localLeak := make([]float64, len(s.leak))
			for ii := pp; ii < len(halfTracks); ii += nprocs {
				s.sweepTrack(halfTracks[ii], localLeak)
			}
			leakMu.Lock()
			for i, v := range localLeak {
				s.leak[i] += v
			}
			leakMu.Unlock()
		}(pp)
	}
	wg.Wait()
}

// sweepTrack runs the forward pass (track_out end) and reverse pass
// (track_in end) for one track.
func (s *Solver) sweepTrack(t *track.Track, localLeak []float64) {
	s.sweepDirection(t, track.Plus, localLeak)
	s.sweepDirection(t, track.Minus, localLeak)
}

func (s *Solver) sweepDirection(t *track.Track, dir track.Dir, localLeak []float64) {
	np, ng := s.Quad.numPolar(), s.groups
	psiVec := s.psi.vec(dir, t.UID)

	segs := t.Segments
	if dir == track.Minus {
		segs = reversed(segs)
	}

	phiTmp := make([]float64, ng)
	for _, seg := range segs {
		f := s.FSRs.Get(seg.FSR)
		m := s.Materials[f.MaterialHandle]
		for g := 0; g < ng; g++ {
			phiTmp[g] = 0
		}
		for p := 0; p < np; p++ {
			for g := 0; g < ng; g++ {
				tau := m.SigmaT.At(g) * seg.Length
				e := s.exp.Eval(tau, p)
				idx := s.psi.idx(p, g)
				delta := (psiVec[idx] - f.Ratio[g]) * e
				phiTmp[g] += delta * s.Quad.Weight[p]
				psiVec[idx] -= delta
			}
		}
		f.AddFlux(phiTmp)
	}

	destUID, destDir, bc, vacuum := s.Tracks.Route(t, dir)
	if vacuum {
		for p := 0; p < np; p++ {
			for g := 0; g < ng; g++ {
				idx := s.psi.idx(p, g)
				localLeak[idx] += psiVec[idx] * s.Quad.Weight[p]
			}
		}
		return
	}
	destVec := s.psi.vec(destDir, destUID)
	copy(destVec, psiVec)
	_ = bc
}

func reversed(segs []track.Segment) []track.Segment {
	out := make([]track.Segment, len(segs))
	for i, s := range segs {
		out[len(segs)-1-i] = s
	}
	return out
}

// accumulateFlux folds the sweep's source term back into phi, halving to
// account for the two sweep halves.
func (s *Solver) accumulateFlux() {
	const fourPi = 4 * math.Pi
	for _, f := range s.FSRs.All() {
		m := s.Materials[f.MaterialHandle]
		for g := 0; g < s.groups; g++ {
			f.Flux[g] = fourPi*f.Ratio[g] + (f.Flux[g]/2)/(m.SigmaT.At(g)*f.Volume)
		}
	}
}

// computeKEff evaluates the fixed-point k_eff update.
func (s *Solver) computeKEff() float64 {
	var numerator, denom float64
	for _, f := range s.FSRs.All() {
		m := s.Materials[f.MaterialHandle]
		for g := 0; g < s.groups; g++ {
			numerator += m.NuSigF.At(g) * f.Flux[g] * f.Volume
			denom += m.SigmaA.At(g) * f.Flux[g] * f.Volume
		}
	}
	denom += sum(s.leak) / 2
	if denom == 0 {
		return numerator
	}
	return numerator / denom
}

func sum(v []float64) float64 {
	return floats.Sum(v)
}
