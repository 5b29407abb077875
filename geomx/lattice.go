package geomx

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
)

// Lattice is a regular-grid universe: an Nx x Ny array of cell handles on a
// fixed pitch, looked up by coordinate hashing instead of the linear
// containment scan a general Universe performs.
//
// This is the single-resolution special case of a nested-grid index
// arithmetic scheme (origin/pitch/extent per axis, nest depth one) — one
// nesting level, uniform pitch.
type Lattice struct {
	ID         int
	OriginX    float64
	OriginY    float64
	PitchX     float64
	PitchY     float64
	Nx, Ny     int
	cellOfGrid []*Cell // row-major, length Nx*Ny
}

// NewLattice allocates an Nx x Ny lattice with lower-left corner (x0,y0) and
// the given pitch.
func NewLattice(id int, x0, y0, pitchX, pitchY float64, nx, ny int) *Lattice {
	return &Lattice{
		ID: id, OriginX: x0, OriginY: y0, PitchX: pitchX, PitchY: pitchY,
		Nx: nx, Ny: ny,
		cellOfGrid: make([]*Cell, nx*ny),
	}
}

// Set assigns the cell (material or fill) occupying lattice position
// (ix, iy) (0 indexed from the lower-left).
func (l *Lattice) Set(ix, iy int, c *Cell) error {
	if ix < 0 || ix >= l.Nx || iy < 0 || iy >= l.Ny {
		return fmt.Errorf("lattice %d: index (%d,%d) out of range [%d,%d): %w", l.ID, ix, iy, l.Nx, l.Ny, ErrInvalidGeometry)
	}
	l.cellOfGrid[iy*l.Nx+ix] = c
	return nil
}

// Locate hashes p directly to a grid index (O(1), no containment scan) and
// returns the occupying cell plus p re-expressed relative to that cell's
// center, which becomes the local point handed to a fill universe.
func (l *Lattice) Locate(p geom.Point) (*Cell, geom.Point, error) {
	ix := int(math.Floor((p.X - l.OriginX) / l.PitchX))
	iy := int(math.Floor((p.Y - l.OriginY) / l.PitchY))
	if ix < 0 || ix >= l.Nx || iy < 0 || iy >= l.Ny {
		return nil, geom.Point{}, fmt.Errorf("lattice %d: point (%v,%v) outside grid: %w", l.ID, p.X, p.Y, ErrPointNotFound)
	}
	c := l.cellOfGrid[iy*l.Nx+ix]
	if c == nil {
		return nil, geom.Point{}, fmt.Errorf("lattice %d: cell at (%d,%d) unset: %w", l.ID, ix, iy, ErrPointNotFound)
	}
	cx := l.OriginX + (float64(ix)+0.5)*l.PitchX
	cy := l.OriginY + (float64(iy)+0.5)*l.PitchY
	local := geom.Point{X: p.X - cx, Y: p.Y - cy}
	return c, local, nil
}

// Bounds returns the lattice's overall axis-aligned extent.
func (l *Lattice) Bounds() geom.Bounds {
	return geom.Bounds{
		Min: geom.Point{X: l.OriginX, Y: l.OriginY},
		Max: geom.Point{X: l.OriginX + float64(l.Nx)*l.PitchX, Y: l.OriginY + float64(l.Ny)*l.PitchY},
	}
}
