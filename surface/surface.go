// Package surface implements the analytic boundary primitives (planes and
// circles) used to carve the 2-D geometry: signed evaluation, forward-ray
// intersection, and axis-aligned extents.
//
// The point type and bounding-box arithmetic come from
// github.com/ctessum/geom, the same library used elsewhere for grid-cell
// bounds and spatial indexing.
package surface

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/cpmech-moc/moctran/idgen"
)

// OnSurfaceThreshold is the tolerance below which a point is considered to
// lie exactly on a surface.
const OnSurfaceThreshold = 1e-12

// AutoIDFloor re-exports idgen.AutoIDFloor for callers that only import
// this package.
const AutoIDFloor = idgen.AutoIDFloor

// halfVerticalBand is the angular tolerance, in radians, used to detect a
// ray running vertically (θ ≈ π/2).
const halfVerticalBand = 1e-10

// BoundaryType classifies how a surface behaves at the edge of the modeled
// domain.
type BoundaryType int

// Boundary kinds.
const (
	BoundaryNone BoundaryType = iota
	BoundaryReflective
	BoundaryVacuum
)

// Kind is the closed set of analytic primitives this package implements.
// Go has no sum types, so Kind plus a handful of untagged coefficient
// fields stands in for a tagged variant: the set of five kinds is closed
// and hot paths switch on Kind directly rather than going through an
// interface dispatch.
type Kind int

// Surface kinds.
const (
	Plane Kind = iota
	XPlane
	YPlane
	ZPlane
	Circle
)

func (k Kind) String() string {
	switch k {
	case Plane:
		return "PLANE"
	case XPlane:
		return "XPLANE"
	case YPlane:
		return "YPLANE"
	case ZPlane:
		return "ZPLANE"
	case Circle:
		return "CIRCLE"
	default:
		return "UNKNOWN"
	}
}

// Surface is an immutable (after construction) analytic boundary.
//
// Implicit forms:
//   - Plane:  A*x + B*y + C = 0
//   - XPlane: x - C = 0        (A, B unused)
//   - YPlane: y - C = 0        (A, B unused)
//   - ZPlane: z - C = 0        (2-D sweeps never evaluate this kind)
//   - Circle: x^2 + y^2 + C*x + D*y + E = 0
type Surface struct {
	Handle   int
	UserID   int
	Kind     Kind
	A, B     float64
	C, D, E  float64
	Boundary BoundaryType
}

// Registry owns the id-allocation state for a family of surfaces built
// together; pass the same Registry to every constructor for one geometry.
type Registry struct {
	ids *idgen.Registry
}

// NewRegistry returns an empty surface Registry.
func NewRegistry() *Registry {
	return &Registry{ids: idgen.NewRegistry()}
}

func (r *Registry) build(userID int, kind Kind, a, b, c, d, e float64, bc BoundaryType) (*Surface, error) {
	id, err := r.ids.Resolve(userID)
	if err != nil {
		return nil, fmt.Errorf("surface: %w", err)
	}
	return &Surface{
		Handle:   r.ids.NextHandle(),
		UserID:   id,
		Kind:     kind,
		A:        a,
		B:        b,
		C:        c,
		D:        d,
		E:        e,
		Boundary: bc,
	}, nil
}

// NewPlane builds A*x + B*y + C = 0. userID of 0 auto-assigns.
func (r *Registry) NewPlane(userID int, a, b, c float64, bc BoundaryType) (*Surface, error) {
	return r.build(userID, Plane, a, b, c, 0, 0, bc)
}

// NewXPlane builds x = x0.
func (r *Registry) NewXPlane(userID int, x0 float64, bc BoundaryType) (*Surface, error) {
	return r.build(userID, XPlane, 0, 0, x0, 0, 0, bc)
}

// NewYPlane builds y = y0.
func (r *Registry) NewYPlane(userID int, y0 float64, bc BoundaryType) (*Surface, error) {
	return r.build(userID, YPlane, 0, 0, y0, 0, 0, bc)
}

// NewZPlane builds z = z0 (inert in the 2-D sweep; present so the kind set
// stays closed at five variants).
func (r *Registry) NewZPlane(userID int, z0 float64, bc BoundaryType) (*Surface, error) {
	return r.build(userID, ZPlane, 0, 0, z0, 0, 0, bc)
}

// NewCircle builds x^2+y^2+C*x+D*y+E = 0, centered at (-C/2, -D/2) with
// radius^2 = C^2/4+D^2/4-E.
func (r *Registry) NewCircle(userID int, c, d, e float64, bc BoundaryType) (*Surface, error) {
	return r.build(userID, Circle, 0, 0, c, d, e, bc)
}

// NewCircleCR builds a circle from its center and radius.
func (r *Registry) NewCircleCR(userID int, cx, cy, radius float64, bc BoundaryType) (*Surface, error) {
	return r.NewCircle(userID, -2*cx, -2*cy, cx*cx+cy*cy-radius*radius, bc)
}

// Center returns the circle's center; only meaningful for Kind == Circle.
func (s *Surface) Center() geom.Point {
	return geom.Point{X: -s.C / 2, Y: -s.D / 2}
}

// Radius returns the circle's radius; only meaningful for Kind == Circle.
func (s *Surface) Radius() float64 {
	cx, cy := -s.C/2, -s.D/2
	r2 := cx*cx + cy*cy - s.E
	if r2 < 0 {
		return 0
	}
	return math.Sqrt(r2)
}

// Evaluate returns the signed implicit-form value at p: positive outside,
// negative inside, by the halfspace convention (+1 = positive side).
func (s *Surface) Evaluate(p geom.Point) float64 {
	switch s.Kind {
	case Plane:
		return s.A*p.X + s.B*p.Y + s.C
	case XPlane:
		return p.X - s.C
	case YPlane:
		return p.Y - s.C
	case ZPlane:
		return -s.C // 2-D sweeps carry no z; treat as always on the positive side of z=0 unless offset.
	case Circle:
		return p.X*p.X + p.Y*p.Y + s.C*p.X + s.D*p.Y + s.E
	default:
		return math.NaN()
	}
}

// OnSurface reports whether p lies within OnSurfaceThreshold of the surface.
func (s *Surface) OnSurface(p geom.Point) bool {
	return math.Abs(s.Evaluate(p)) < OnSurfaceThreshold
}

// Bounds returns the axis-aligned extent of the surface; unbounded
// directions are returned as +/-Inf.
func (s *Surface) Bounds() geom.Bounds {
	inf := math.Inf(1)
	switch s.Kind {
	case XPlane:
		return geom.Bounds{Min: geom.Point{X: s.C, Y: -inf}, Max: geom.Point{X: s.C, Y: inf}}
	case YPlane:
		return geom.Bounds{Min: geom.Point{X: -inf, Y: s.C}, Max: geom.Point{X: inf, Y: s.C}}
	case Plane, ZPlane:
		return geom.Bounds{Min: geom.Point{X: -inf, Y: -inf}, Max: geom.Point{X: inf, Y: inf}}
	case Circle:
		c, r := s.Center(), s.Radius()
		return geom.Bounds{Min: geom.Point{X: c.X - r, Y: c.Y - r}, Max: geom.Point{X: c.X + r, Y: c.Y + r}}
	default:
		return geom.Bounds{Min: geom.Point{X: -inf, Y: -inf}, Max: geom.Point{X: inf, Y: inf}}
	}
}

// forward reports whether candidate q is on the forward half of the ray
// leaving p at angle theta, using the y-monotonicity rule:
// retain iff (theta<pi && q.Y>p.Y) || (theta>pi && q.Y<p.Y). Rays running
// exactly along y=p.Y (theta==0 or theta==pi) fall back to x-monotonicity.
func forward(p, q geom.Point, theta float64) bool {
	const twoPi = 2 * math.Pi
	t := math.Mod(theta, twoPi)
	if t < 0 {
		t += twoPi
	}
	switch {
	case math.Abs(t) < 1e-12 || math.Abs(t-math.Pi) < 1e-12:
		if t < math.Pi/2 {
			return q.X > p.X
		}
		return q.X < p.X
	case t < math.Pi:
		return q.Y > p.Y
	default:
		return q.Y < p.Y
	}
}

// Intersection returns the 0, 1 or 2 forward-travel points where the ray
// from p at angle theta crosses the surface.
func (s *Surface) Intersection(p geom.Point, theta float64) []geom.Point {
	var candidates []geom.Point
	vertical := math.Abs(math.Mod(theta-math.Pi/2, math.Pi)) < halfVerticalBand

	switch s.Kind {
	case XPlane:
		if !vertical {
			candidates = append(candidates, geom.Point{X: s.C, Y: p.Y + (s.C-p.X)*math.Tan(theta)})
		} else if theta == math.Pi/2 || theta == 3*math.Pi/2 {
			// A vertical ray parallel to an x-plane never crosses it unless coincident.
		}
	case YPlane:
		if vertical {
			candidates = append(candidates, geom.Point{X: p.X, Y: s.C})
		} else {
			m := math.Tan(theta)
			if math.Abs(m) > 1e-300 {
				candidates = append(candidates, geom.Point{X: p.X + (s.C-p.Y)/m, Y: s.C})
			}
		}
	case Plane, ZPlane:
		candidates = intersectGeneralPlane(s, p, theta, vertical)
	case Circle:
		candidates = intersectCircle(s, p, theta, vertical)
	}

	out := candidates[:0:0]
	for _, c := range candidates {
		if forward(p, c, theta) {
			out = append(out, c)
		}
	}
	return out
}

func intersectGeneralPlane(s *Surface, p geom.Point, theta float64, vertical bool) []geom.Point {
	if s.Kind == ZPlane {
		return nil
	}
	if vertical {
		if s.B == 0 {
			return nil
		}
		x0 := p.X
		y := (-s.A*x0 - s.C) / s.B
		return []geom.Point{{X: x0, Y: y}}
	}
	m := math.Tan(theta)
	if s.B != 0 && math.Abs(-s.A/s.B-m) < 1e-11 {
		return nil // parallel
	}
	if s.B == 0 {
		// Surface is a vertical line A*x + C = 0 => x = -C/A.
		if s.A == 0 {
			return nil
		}
		x := -s.C / s.A
		y := p.Y + (x-p.X)*m
		return []geom.Point{{X: x, Y: y}}
	}
	// Solve A*x + B*(p.Y + (x-p.X)*m) + C = 0 for x.
	denom := s.A + s.B*m
	if math.Abs(denom) < 1e-300 {
		return nil
	}
	x := (-s.C - s.B*(p.Y-m*p.X)) / denom
	y := p.Y + (x-p.X)*m
	return []geom.Point{{X: x, Y: y}}
}

func intersectCircle(s *Surface, p geom.Point, theta float64, vertical bool) []geom.Point {
	if vertical {
		x0 := p.X
		// y^2 + D*y + (x0^2 + C*x0 + E) = 0
		b := s.D
		c := x0*x0 + s.C*x0 + s.E
		disc := b*b - 4*c
		return quadraticPoints(disc, b, 1, func(y float64) geom.Point { return geom.Point{X: x0, Y: y} })
	}
	m := math.Tan(theta)
	k := p.Y - m*p.X
	// x^2 + (m*x+k)^2 + C*x + D*(m*x+k) + E = 0
	a := 1 + m*m
	b := 2*m*k + s.C + s.D*m
	c := k*k + s.D*k + s.E
	disc := b*b - 4*a*c
	return quadraticPoints(disc, b, a, func(x float64) geom.Point { return geom.Point{X: x, Y: m*x + k} })
}

func quadraticPoints(disc, b, a float64, build func(float64) geom.Point) []geom.Point {
	const tol = 1e-12
	switch {
	case disc < -tol:
		return nil
	case disc < tol:
		return []geom.Point{build(-b / (2 * a))}
	default:
		sq := math.Sqrt(disc)
		return []geom.Point{build((-b - sq) / (2 * a)), build((-b + sq) / (2 * a))}
	}
}

// MinDistance returns the nearest forward intersection point and its
// Euclidean distance from p, or math.Inf(1) if the ray never crosses.
func (s *Surface) MinDistance(p geom.Point, theta float64) (dist float64, out geom.Point, found bool) {
	best := math.Inf(1)
	for _, c := range s.Intersection(p, theta) {
		d := math.Hypot(c.X-p.X, c.Y-p.Y)
		if d < best {
			best = d
			out = c
			found = true
		}
	}
	return best, out, found
}
