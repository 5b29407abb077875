// Package xsdata defines the per-group cross-section data model and the
// SIMD-friendly aligned storage a vectorized sweep needs.
//
// Loading materials from a file format is an external collaborator; this
// package only defines the in-memory shape the solver consumes, plus the
// padding helper, following the same convention of padding per-entity
// slices out to a fixed width before handing them to downstream numeric
// code.
package xsdata

import "fmt"

// AlignedVector is a float64 slice logically Len() long but physically
// padded to a multiple of the vector width, so cross-section arrays can be
// processed in fixed-width SIMD-friendly chunks. Go slices cannot express
// byte alignment directly, so the padding is element-count only; the
// padding elements are zero. The solver's loops stop at the logical group
// count rather than at PaddedLen().
type AlignedVector struct {
	data     []float64
	logicalN int
}

// NewAlignedVector returns a zeroed vector of logical length n, padded so
// PaddedLen() is a multiple of width.
func NewAlignedVector(n, width int) AlignedVector {
	if width < 1 {
		width = 1
	}
	padded := ((n + width - 1) / width) * width
	return AlignedVector{data: make([]float64, padded), logicalN: n}
}

// FromSlice copies vals into a new AlignedVector padded to width.
func FromSlice(vals []float64, width int) AlignedVector {
	v := NewAlignedVector(len(vals), width)
	copy(v.data, vals)
	return v
}

// Len returns the logical (unpadded) length.
func (v AlignedVector) Len() int { return v.logicalN }

// PaddedLen returns the physical length, a multiple of the vector width.
func (v AlignedVector) PaddedLen() int { return len(v.data) }

// Raw exposes the padded backing slice for vectorized loops.
func (v AlignedVector) Raw() []float64 { return v.data }

// At returns element i (must be < Len()).
func (v AlignedVector) At(i int) float64 { return v.data[i] }

// Set assigns element i (must be < Len()).
func (v AlignedVector) Set(i int, x float64) { v.data[i] = x }

// Material holds the per-group cross sections for one homogenized region.
// Handle is an opaque caller-assigned identifier: the geometry layer only
// ever stores a MaterialHandle int on a Cell, never a *Material, keeping
// geomx free of a dependency on this package.
type Material struct {
	Handle int
	Name   string
	Groups int

	SigmaT AlignedVector   // Σ_t[g]
	SigmaA AlignedVector   // Σ_a[g]
	NuSigF AlignedVector   // νΣ_f[g]
	Chi    AlignedVector   // χ[g]
	SigmaS []AlignedVector // Σ_s[G][g'], row-major by destination group G
}

// VectorWidth and VectorAlignment are the default SIMD tunables.
const (
	VectorWidth     = 8  // V
	VectorAlignment = 16 // A, bytes
)

// NewMaterial validates and wraps the given per-group vectors, padding each
// to width (VectorWidth by default; pass 0 to use it).
func NewMaterial(handle int, name string, sigmaT, sigmaA, nuSigF, chi []float64, sigmaS [][]float64, width int) (*Material, error) {
	g := len(sigmaT)
	if g == 0 {
		return nil, fmt.Errorf("material %q: zero groups", name)
	}
	if len(sigmaA) != g || len(nuSigF) != g || len(chi) != g || len(sigmaS) != g {
		return nil, fmt.Errorf("material %q: inconsistent group counts", name)
	}
	if width <= 0 {
		width = VectorWidth
	}
	m := &Material{
		Handle: handle,
		Name:   name,
		Groups: g,
		SigmaT: FromSlice(sigmaT, width),
		SigmaA: FromSlice(sigmaA, width),
		NuSigF: FromSlice(nuSigF, width),
		Chi:    FromSlice(chi, width),
		SigmaS: make([]AlignedVector, g),
	}
	for i, row := range sigmaS {
		if len(row) != g {
			return nil, fmt.Errorf("material %q: scatter row %d has %d entries, want %d", name, i, len(row), g)
		}
		for _, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("material %q: negative scatter cross section in row %d: %w", name, i, ErrNumericFailure)
			}
		}
		m.SigmaS[i] = FromSlice(row, width)
	}
	for g2 := 0; g2 < g; g2++ {
		if m.SigmaT.At(g2) < 0 || m.SigmaA.At(g2) < 0 || m.NuSigF.At(g2) < 0 {
			return nil, fmt.Errorf("material %q: negative cross section in group %d: %w", name, g2, ErrNumericFailure)
		}
	}
	return m, nil
}
