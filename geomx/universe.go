package geomx

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/cpmech-moc/moctran/surface"
)

// LocalCoords is one link in the chain produced by descending the universe
// hierarchy at a single global point: (universe, cell, point-in-that-
// universe's-frame). The head of the chain is the root universe, the tail
// is the innermost material cell.
type LocalCoords struct {
	UniverseID int
	CellHandle int
	Point      geom.Point
	Next       *LocalCoords
}

// Universe is a keyed collection of general (non-lattice) cells, searched
// by linear containment scan.
type Universe struct {
	ID    int
	cells []*Cell
}

// NewUniverse allocates a Universe with the given id (ids are owned by the
// caller's Registry, the same arena-and-handle convention as Surface/Cell).
func NewUniverse(id int) *Universe {
	return &Universe{ID: id}
}

// AddCell registers a cell (already allocated from a cell Registry) as a
// member of this universe.
func (u *Universe) AddCell(c *Cell) {
	u.cells = append(u.cells, c)
}

// Cells returns the universe's member cells.
func (u *Universe) Cells() []*Cell { return u.cells }

// FindCellLocal returns the single cell of this universe (not recursing
// into fills) that contains p, or nil if none does.
func (u *Universe) FindCellLocal(p geom.Point) *Cell {
	for _, c := range u.cells {
		if c.Contains(p) {
			return c
		}
	}
	return nil
}

// Resolver looks up general universes and lattices by id. World is the
// concrete implementation; World.FindCell reads World's own maps directly
// rather than going through this interface.
type Resolver interface {
	Universe(id int) (*Universe, bool)
	Lattice(id int) (*Lattice, bool)
}

// World is the frozen geometry: every surface, cell, and universe built for
// one problem, plus the id of the root universe.
type World struct {
	Surfaces     *surface.Registry
	Cells        *Registry
	universes    map[int]*Universe
	lattices     map[int]*Lattice
	RootUniverse int
}

// NewWorld returns an empty World.
func NewWorld(rootUniverse int) *World {
	return &World{
		universes:    make(map[int]*Universe),
		lattices:     make(map[int]*Lattice),
		RootUniverse: rootUniverse,
	}
}

// AddUniverse registers a general universe.
func (w *World) AddUniverse(u *Universe) { w.universes[u.ID] = u }

// AddLattice registers a lattice universe.
func (w *World) AddLattice(l *Lattice) { w.lattices[l.ID] = l }

// Universe implements Resolver.
func (w *World) Universe(id int) (*Universe, bool) {
	u, ok := w.universes[id]
	return u, ok
}

// Lattice implements Resolver.
func (w *World) Lattice(id int) (*Lattice, bool) {
	l, ok := w.lattices[id]
	return l, ok
}

// Bounds returns the union of the axis-aligned extents of every material
// cell that is a member of one of this world's general universes; the
// track generator uses it to size its ray fan. Cells placed directly in a
// lattice are not included.
func (w *World) Bounds() geom.Bounds {
	inf := math.Inf(1)
	b := geom.Bounds{Min: geom.Point{X: inf, Y: inf}, Max: geom.Point{X: -inf, Y: -inf}}
	for _, u := range w.universes {
		for _, c := range u.cells {
			if c.Kind != MaterialCell {
				continue
			}
			cb := c.Extent()
			if math.IsInf(cb.Min.X, 1) || math.IsInf(cb.Max.X, -1) {
				continue
			}
			b.Min.X = math.Min(b.Min.X, cb.Min.X)
			b.Min.Y = math.Min(b.Min.Y, cb.Min.Y)
			b.Max.X = math.Max(b.Max.X, cb.Max.X)
			b.Max.Y = math.Max(b.Max.Y, cb.Max.Y)
		}
	}
	return b
}

// FindCell descends the universe hierarchy from the root, appending one
// LocalCoords link per (universe, cell) visited, and returns the head of
// the chain plus the innermost material cell.
func (w *World) FindCell(p geom.Point) (*LocalCoords, *Cell, error) {
	return w.findCellIn(w.RootUniverse, p)
}

func (w *World) findCellIn(universeID int, p geom.Point) (*LocalCoords, *Cell, error) {
	if lat, ok := w.lattices[universeID]; ok {
		cell, local, err := lat.Locate(p)
		if err != nil {
			return nil, nil, err
		}
		head := &LocalCoords{UniverseID: universeID, CellHandle: cell.Handle, Point: p}
		return w.descend(head, cell, local)
	}
	u, ok := w.universes[universeID]
	if !ok {
		return nil, nil, fmt.Errorf("universe %d: %w", universeID, ErrPointNotFound)
	}
	cell := u.FindCellLocal(p)
	if cell == nil {
		return nil, nil, fmt.Errorf("universe %d, point (%v,%v): %w", universeID, p.X, p.Y, ErrPointNotFound)
	}
	head := &LocalCoords{UniverseID: universeID, CellHandle: cell.Handle, Point: p}
	return w.descend(head, cell, p)
}

// descend appends recursively through FillCells until a MaterialCell is
// reached.
func (w *World) descend(head *LocalCoords, cell *Cell, localPoint geom.Point) (*LocalCoords, *Cell, error) {
	if cell.Kind == MaterialCell {
		return head, cell, nil
	}
	nestedHead, leaf, err := w.findCellIn(cell.FillUniverseID, localPoint)
	if err != nil {
		return nil, nil, err
	}
	head.Next = nestedHead
	return head, leaf, nil
}
