// Package trackgen is the minimal track generator used to exercise the
// solver in tests: a deterministic cyclic-ray walker, not a production MOC
// ray tracer. It produces a fan of parallel chords across a world's
// bounding box, segmenting each chord by repeated Cell.MinSurfaceDistance
// calls and registering FSRs as it goes, using the same deterministic
// grid-walk style a nested-grid flattener uses to index a structured
// population onto a coordinate-ordered walk.
//
// Real MOC codes pair each track's ends with a distinct partner track via
// exact cyclic-ray geometry. This generator instead couples each track's
// two ends back to itself: for the idealized, axis-aligned reflective test
// geometries this package targets, the Minus sweep direction already
// retraces the chord in reverse, which is the same physical path a
// normal-incidence reflection would take. It is sufficient for the
// reflective-cube style scenarios this solver is checked against, not a
// substitute for a full cyclic tracker.
package trackgen

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"

	"github.com/cpmech-moc/moctran/fsr"
	"github.com/cpmech-moc/moctran/geomx"
	"github.com/cpmech-moc/moctran/track"
)

// Config controls the ray fan.
type Config struct {
	NumAzimuthal int        // number of angles sampled across (0, pi)
	RaySpacing   float64    // perpendicular spacing between parallel rays
	Boundary     track.BC   // boundary condition applied at both ends of every track
	MaxSegments  int        // safety cap per track against degenerate geometry; 0 means a sane default
}

const defaultMaxSegments = 10000

// Generate traces a deterministic fan of parallel tracks across world's
// bounding box and returns the populated track registry. fsrs accumulates
// the FSRs (and their volumes) discovered along the way.
func Generate(world *geomx.World, fsrs *fsr.Registry, cfg Config) (*track.Registry, error) {
	if cfg.NumAzimuthal < 1 {
		return nil, fmt.Errorf("trackgen: NumAzimuthal must be >= 1")
	}
	if cfg.RaySpacing <= 0 {
		return nil, fmt.Errorf("trackgen: RaySpacing must be > 0")
	}
	maxSegs := cfg.MaxSegments
	if maxSegs <= 0 {
		maxSegs = defaultMaxSegments
	}

	bounds := world.Bounds()
	if math.IsInf(bounds.Min.X, 0) || math.IsInf(bounds.Max.X, 0) {
		return nil, fmt.Errorf("trackgen: world has no bounded material cells")
	}

	diag := math.Hypot(bounds.Max.X-bounds.Min.X, bounds.Max.Y-bounds.Min.Y)
	if diag == 0 {
		return nil, fmt.Errorf("trackgen: world bounding box is degenerate")
	}
	reach := diag // push ray origins this far outside the box before marching in

	registry := track.NewRegistry()
	weight := cfg.RaySpacing // uniform azimuthal weight for the minimal quadrature

	for a := 0; a < cfg.NumAzimuthal; a++ {
		theta := math.Pi * (float64(a) + 0.5) / float64(cfg.NumAzimuthal)
		dir := geom.Point{X: math.Cos(theta), Y: math.Sin(theta)}
		perp := geom.Point{X: -math.Sin(theta), Y: math.Cos(theta)}
		half := a % 2

		cx := (bounds.Min.X + bounds.Max.X) / 2
		cy := (bounds.Min.Y + bounds.Max.Y) / 2

		numRays := int(diag/cfg.RaySpacing) + 1
		for k := 0; k < numRays; k++ {
			offset := (float64(k) - float64(numRays-1)/2) * cfg.RaySpacing
			origin := geom.Point{
				X: cx + perp.X*offset - dir.X*reach,
				Y: cy + perp.Y*offset - dir.Y*reach,
			}

			entry, ok := boxEntry(origin, dir, bounds)
			if !ok {
				continue
			}
			segs, err := traceSegments(world, fsrs, entry, theta, bounds, weight, maxSegs)
			if err != nil {
				return nil, err
			}
			if len(segs) == 0 {
				continue
			}

			t := &track.Track{
				AzimIndex: a,
				Half:      half,
				Weight:    weight,
				Segments:  segs,
				BCIn:      cfg.Boundary,
				BCOut:     cfg.Boundary,
				ReflIn:    cfg.Boundary == track.Reflective,
				ReflOut:   cfg.Boundary == track.Reflective,
			}
			registry.Add(t)
			t.TrackIn = t.UID
			t.TrackOut = t.UID
		}
	}
	return registry, nil
}

// boxEntry marches origin forward along dir to the point where it first
// enters bounds, using the standard AABB slab test. ok is false if the ray
// never intersects bounds.
func boxEntry(origin, dir geom.Point, bounds geom.Bounds) (geom.Point, bool) {
	tEntry, tExit, ok := slabIntersect(origin, dir, bounds)
	if !ok || tExit < 0 {
		return geom.Point{}, false
	}
	if tEntry < 0 {
		tEntry = 0
	}
	return geom.Point{X: origin.X + dir.X*tEntry, Y: origin.Y + dir.Y*tEntry}, true
}

// slabIntersect returns the entry/exit ray parameters for origin+t*dir
// against bounds, or ok=false if the ray is parallel to and outside a slab.
func slabIntersect(origin, dir geom.Point, b geom.Bounds) (tEntry, tExit float64, ok bool) {
	tEntry, tExit = math.Inf(-1), math.Inf(1)
	for _, axis := range [2]struct{ o, d, lo, hi float64 }{
		{origin.X, dir.X, b.Min.X, b.Max.X},
		{origin.Y, dir.Y, b.Min.Y, b.Max.Y},
	} {
		if axis.d == 0 {
			if axis.o < axis.lo || axis.o > axis.hi {
				return 0, 0, false
			}
			continue
		}
		t1 := (axis.lo - axis.o) / axis.d
		t2 := (axis.hi - axis.o) / axis.d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tEntry {
			tEntry = t1
		}
		if t2 < tExit {
			tExit = t2
		}
	}
	if tEntry > tExit {
		return 0, 0, false
	}
	return tEntry, tExit, true
}

// distanceToExit returns how far p can travel along theta before leaving
// bounds.
func distanceToExit(p geom.Point, theta float64, bounds geom.Bounds) float64 {
	dir := geom.Point{X: math.Cos(theta), Y: math.Sin(theta)}
	_, tExit, ok := slabIntersect(p, dir, bounds)
	if !ok {
		return 0
	}
	return tExit
}

// traceSegments walks forward from entry along theta, asking the universe
// hierarchy for the containing FSR/material at each point and the nearest
// bounding surface of the leaf cell, stopping at the bounding box edge.
func traceSegments(world *geomx.World, fsrs *fsr.Registry, entry geom.Point, theta float64, bounds geom.Bounds, weight float64, maxSegs int) ([]track.Segment, error) {
	dir := geom.Point{X: math.Cos(theta), Y: math.Sin(theta)}
	p := entry
	var segs []track.Segment

	for i := 0; i < maxSegs; i++ {
		chain, leaf, err := world.FindCell(p)
		if err != nil {
			break // left the modeled geometry
		}
		boxDist := distanceToExit(p, theta, bounds)
		dist, _, _, found := leaf.MinSurfaceDistance(p, theta)
		if !found || dist > boxDist {
			dist = boxDist
		}
		if dist <= 1e-12 {
			break // degenerate step; avoid an infinite loop
		}

		fsrID := fsrs.Lookup(chain, leaf)
		fsrs.AddVolume(fsrID, dist*weight)
		segs = append(segs, track.Segment{Length: dist, FSR: fsrID, Material: leaf.MaterialHandle})

		p = geom.Point{X: p.X + dist*dir.X, Y: p.Y + dist*dir.Y}
		if dist >= boxDist-1e-9 {
			break
		}
	}
	return segs, nil
}
