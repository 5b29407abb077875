package geomx

import (
	"fmt"
	"math"

	"github.com/cpmech-moc/moctran/surface"
)

// Subdivider partitions annular material cells into equal-volume rings and
// equal-angular sectors, synthesizing the bounding planes/circles and
// cloning the cell for each resulting subregion. Ordering is sectorize
// first, then ringify, so the final subcell list is the cartesian product
// sectors x rings.
type Subdivider struct {
	Surfaces *surface.Registry
	Cells    *Registry
	Warnings []Warning
}

// NewSubdivider returns a Subdivider sharing the given surface/cell
// registries so synthesized surfaces and clone cells land in the same
// arenas as the rest of the geometry.
func NewSubdivider(surfaces *surface.Registry, cells *Registry) *Subdivider {
	return &Subdivider{Surfaces: surfaces, Cells: cells}
}

// Subdivide returns the list of leaf cells replacing c. A cell with
// NumRings <= 1 and NumSectors == 0 is returned unchanged (single-element
// slice). Degenerate subdivision requests are recorded as warnings and the
// cell is left undivided, per the error-handling design.
func (s *Subdivider) Subdivide(c *Cell) ([]*Cell, error) {
	if c.Kind != MaterialCell {
		return nil, fmt.Errorf("cell %d: subdivide requires a material cell: %w", c.UserID, ErrInvalidGeometry)
	}

	sectorCells, err := s.sectorize(c)
	if err != nil {
		return nil, err
	}

	var out []*Cell
	for _, sc := range sectorCells {
		rings, warned, err := s.ringify(sc, c.NumRings)
		if err != nil {
			return nil, err
		}
		if warned {
			out = append(out, sc) // left undivided
			continue
		}
		out = append(out, rings...)
	}
	return out, nil
}

// sectorize synthesizes NumSectors planes through the origin and returns one
// clone cell per angular wedge. NumSectors == 0 or 1 means "no
// sectorization".
func (s *Subdivider) sectorize(c *Cell) ([]*Cell, error) {
	n := c.NumSectors
	if n < 2 {
		return []*Cell{c}, nil
	}

	planes := make([]*surface.Surface, n)
	for i := 0; i < n; i++ {
		angle := float64(i) * 2 * math.Pi / float64(n)
		a, b := math.Cos(angle), math.Sin(angle)
		// Plane through the origin with A,B = (cos angle, sin angle), so
		// at angle 0, pi/2, pi, 3pi/2 this reproduces scenario 3's
		// A,B = (1,0), (0,1), (-1,0), (0,-1) exactly.
		p, err := s.Surfaces.NewPlane(0, a, b, 0, surface.BoundaryNone)
		if err != nil {
			return nil, err
		}
		planes[i] = p
	}

	out := make([]*Cell, n)
	for i := 0; i < n; i++ {
		clone, err := s.Cells.Clone(c)
		if err != nil {
			return nil, err
		}
		clone.NumSectors = 0
		clone.NumRings = 0
		if err := clone.AddSurface(1, planes[i]); err != nil {
			return nil, err
		}
		if n != 2 {
			next := planes[(i+1)%n]
			if err := clone.AddSurface(-1, next); err != nil {
				return nil, err
			}
		}
		out[i] = clone
	}
	return out, nil
}

// ringify partitions c into numRings equal-area annuli; numRings is the
// original cell's ring count, since sector clones carry NumRings == 0. It
// requires exactly one or two CIRCLE bounds sharing a center. Returns
// (nil, true, nil) if the request is degenerate (non-fatal: caller keeps
// the cell undivided).
func (s *Subdivider) ringify(c *Cell, numRings int) ([]*Cell, bool, error) {
	if numRings < 2 {
		return []*Cell{c}, false, nil
	}

	var outer, inner *surface.Surface
	var outerUserID, innerUserID int
	circleCount := 0
	for userID, b := range c.bounds {
		if b.Surface.Kind != surface.Circle {
			continue
		}
		circleCount++
		if b.Halfspace == -1 {
			outer, outerUserID = b.Surface, userID
		} else {
			inner, innerUserID = b.Surface, userID
		}
	}

	switch {
	case circleCount == 0:
		return nil, false, fmt.Errorf("cell %d: ringify requires a circle bound: %w", c.UserID, ErrInvalidGeometry)
	case circleCount > 2:
		s.warn(c.UserID, "ringify: more than two circle bounds, skipping")
		return nil, true, nil
	case outer == nil:
		return nil, false, fmt.Errorf("cell %d: ringify requires an outer (halfspace -1) circle: %w", c.UserID, ErrInvalidGeometry)
	}

	rOut := outer.Radius()
	rIn := 0.0
	centerOK := true
	if inner != nil {
		rIn = inner.Radius()
		if inner.Center() != outer.Center() {
			centerOK = false
		}
	}
	if !centerOK {
		return nil, false, fmt.Errorf("cell %d: ringify circle centers disagree: %w", c.UserID, ErrInvalidGeometry)
	}
	if rOut <= rIn {
		s.warn(c.UserID, fmt.Sprintf("ringify: outer radius %.6g <= inner radius %.6g, skipping", rOut, rIn))
		return nil, true, nil
	}

	center := outer.Center()
	n := numRings
	area := math.Pi * (rOut*rOut - rIn*rIn) / float64(n)

	radii := make([]float64, n+1)
	radii[0] = rOut
	for k := 0; k < n; k++ {
		radii[k+1] = math.Sqrt(radii[k]*radii[k] - area/math.Pi)
	}
	radii[n] = rIn // clamp accumulated rounding error to the exact inner radius

	out := make([]*Cell, n)
	for k := 0; k < n; k++ {
		clone, err := s.Cells.Clone(c)
		if err != nil {
			return nil, false, err
		}
		clone.NumRings = 0
		clone.NumSectors = 0
		delete(clone.bounds, outerUserID)
		if inner != nil {
			delete(clone.bounds, innerUserID)
		}
		var outerRingSurf *surface.Surface
		if k == 0 {
			outerRingSurf = outer
		} else {
			outerRingSurf, err = s.Surfaces.NewCircleCR(0, center.X, center.Y, radii[k], surface.BoundaryNone)
			if err != nil {
				return nil, false, err
			}
		}
		if err := clone.AddSurface(-1, outerRingSurf); err != nil {
			return nil, false, err
		}
		if k < n-1 {
			innerRingSurf, err := s.Surfaces.NewCircleCR(0, center.X, center.Y, radii[k+1], surface.BoundaryNone)
			if err != nil {
				return nil, false, err
			}
			if err := clone.AddSurface(1, innerRingSurf); err != nil {
				return nil, false, err
			}
		} else if inner != nil {
			if err := clone.AddSurface(1, inner); err != nil {
				return nil, false, err
			}
		}
		out[k] = clone
	}
	return out, false, nil
}

func (s *Subdivider) warn(cellUserID int, msg string) {
	s.Warnings = append(s.Warnings, Warning{CellUserID: cellUserID, Message: msg})
}

// RingRadii exposes the ring-boundary radii computation for testing scenario
// 2 directly (4 rings from R=1 -> 1, sqrt(3)/2, sqrt(1/2), 0.5).
func RingRadii(rOuter, rInner float64, n int) []float64 {
	area := math.Pi * (rOuter*rOuter - rInner*rInner) / float64(n)
	radii := make([]float64, n+1)
	radii[0] = rOuter
	for k := 0; k < n; k++ {
		radii[k+1] = math.Sqrt(radii[k]*radii[k] - area/math.Pi)
	}
	radii[n] = rInner
	return radii
}
