// Package geomx implements the constructive solid geometry layer: cells
// bounded by signed halfspaces of surfaces, the universe hierarchy that
// composes them, and the ring/sector subdivider.
//
// The arena-and-handle shape (flat Cells/Universes slices keyed by dense
// integer handles, no parent/child pointers) avoids a pointer-linked cell
// graph in favor of something that clones cheaply.
package geomx

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/cpmech-moc/moctran/idgen"
	"github.com/cpmech-moc/moctran/surface"
)

// toleranceBand collapses points within OnSurfaceThreshold of a bound onto
// the "inside" side.
const toleranceBand = surface.OnSurfaceThreshold

// CellKind distinguishes a material-filled leaf cell from one filled by
// another universe.
type CellKind int

// Cell kinds.
const (
	MaterialCell CellKind = iota
	FillCell
)

// Bound is a value-semantics (surface handle, halfspace) pair, stored by
// value in the Cell's map rather than as an individually heap-allocated
// record shared by pointer.
type Bound struct {
	Surface   *surface.Surface
	Halfspace int // +1 or -1
}

// Cell is a region defined by the intersection of surface halfspaces.
type Cell struct {
	Handle     int
	UserID     int
	UniverseID int
	Kind       CellKind

	bounds map[int]Bound // keyed by surface UserID

	// MaterialCell fields.
	MaterialHandle int
	NumRings       int
	NumSectors     int

	// FillCell fields.
	FillUniverseID int
}

// Registry owns id allocation for one arena of cells.
type Registry struct {
	ids   *idgen.Registry
	cells []*Cell
}

// NewRegistry returns an empty cell Registry.
func NewRegistry() *Registry {
	return &Registry{ids: idgen.NewRegistry()}
}

// Cells returns all cells ever allocated from this registry, indexed by
// Handle.
func (r *Registry) Cells() []*Cell { return r.cells }

func (r *Registry) alloc(userID, universeID int) (*Cell, error) {
	id, err := r.ids.Resolve(userID)
	if err != nil {
		return nil, fmt.Errorf("cell: %v: %w", err, ErrInvalidGeometry)
	}
	c := &Cell{
		Handle:     r.ids.NextHandle(),
		UserID:     id,
		UniverseID: universeID,
		bounds:     make(map[int]Bound),
	}
	r.cells = append(r.cells, c)
	return c, nil
}

// NewMaterialCell allocates a material-filled cell.
func (r *Registry) NewMaterialCell(userID, universeID, materialHandle int, numRings, numSectors int) (*Cell, error) {
	c, err := r.alloc(userID, universeID)
	if err != nil {
		return nil, err
	}
	c.Kind = MaterialCell
	c.MaterialHandle = materialHandle
	c.NumRings = numRings
	// A request for exactly one sector is equivalent to no sectorization at
	// all, so it's normalized to 0 here rather than carrying a degenerate
	// single-sector split through subdivision.
	if numSectors == 1 {
		numSectors = 0
	}
	c.NumSectors = numSectors
	return c, nil
}

// NewFillCell allocates a cell filled by another universe.
func (r *Registry) NewFillCell(userID, universeID, fillUniverseID int) (*Cell, error) {
	c, err := r.alloc(userID, universeID)
	if err != nil {
		return nil, err
	}
	c.Kind = FillCell
	c.FillUniverseID = fillUniverseID
	return c, nil
}

// AddSurface binds a surface to the cell with the given halfspace (+1 or
// -1), keyed by the surface's user id.
func (c *Cell) AddSurface(halfspace int, s *surface.Surface) error {
	if halfspace != 1 && halfspace != -1 {
		return fmt.Errorf("cell %d: invalid halfspace %d: %w", c.UserID, halfspace, ErrInvalidGeometry)
	}
	c.bounds[s.UserID] = Bound{Surface: s, Halfspace: halfspace}
	return nil
}

// Bounds returns the cell's (surface, halfspace) constraints.
func (c *Cell) Bounds() map[int]Bound { return c.bounds }

// Contains reports whether p satisfies every bounding halfspace within the
// on-surface tolerance band.
func (c *Cell) Contains(p geom.Point) bool {
	for _, b := range c.bounds {
		v := b.Surface.Evaluate(p)
		if float64(b.Halfspace)*v < -toleranceBand {
			return false
		}
	}
	return true
}

// MinSurfaceDistance returns the nearest forward ray/surface intersection
// among all of the cell's bounds.
func (c *Cell) MinSurfaceDistance(p geom.Point, theta float64) (dist float64, out geom.Point, hit *surface.Surface, found bool) {
	best := math.Inf(1)
	for _, b := range c.bounds {
		d, pt, ok := b.Surface.MinDistance(p, theta)
		if ok && d < best {
			best, out, hit, found = d, pt, b.Surface, true
		}
	}
	return best, out, hit, found
}

// Extent returns the cell's axis-aligned bounding box, the intersection of
// the extents of its bounding halfspaces. X/Y-plane halfspaces and the
// inside of a circle narrow the box; general planes and the outside of a
// circle leave it unbounded.
func (c *Cell) Extent() geom.Bounds {
	inf := math.Inf(1)
	b := geom.Bounds{Min: geom.Point{X: -inf, Y: -inf}, Max: geom.Point{X: inf, Y: inf}}
	for _, bd := range c.bounds {
		s := bd.Surface
		switch {
		case s.Kind == surface.XPlane && bd.Halfspace == 1:
			b.Min.X = math.Max(b.Min.X, s.C)
		case s.Kind == surface.XPlane:
			b.Max.X = math.Min(b.Max.X, s.C)
		case s.Kind == surface.YPlane && bd.Halfspace == 1:
			b.Min.Y = math.Max(b.Min.Y, s.C)
		case s.Kind == surface.YPlane:
			b.Max.Y = math.Min(b.Max.Y, s.C)
		case s.Kind == surface.Circle && bd.Halfspace == -1:
			sb := s.Bounds()
			b.Min.X, b.Min.Y = math.Max(b.Min.X, sb.Min.X), math.Max(b.Min.Y, sb.Min.Y)
			b.Max.X, b.Max.Y = math.Min(b.Max.X, sb.Max.X), math.Min(b.Max.Y, sb.Max.Y)
		}
	}
	return b
}

// Clone deep-copies a MaterialCell into a fresh cell with a new handle/user
// id, sharing bound surfaces by handle rather than by value. Clone returns
// an error if called on a FillCell; only material cells are ever
// subdivided.
func (r *Registry) Clone(c *Cell) (*Cell, error) {
	if c.Kind != MaterialCell {
		return nil, fmt.Errorf("cell %d: clone is only defined for material cells", c.UserID)
	}
	clone, err := r.NewMaterialCell(0, c.UniverseID, c.MaterialHandle, c.NumRings, c.NumSectors)
	if err != nil {
		return nil, err
	}
	for userID, b := range c.bounds {
		clone.bounds[userID] = b
	}
	return clone, nil
}
