// Package track defines the track/segment records the external track
// generator produces and the boundary-coupling routing logic (module C8)
// that tells the transport sweep where an outgoing angular flux goes next:
// a partner track endpoint, possibly direction-flipped by reflection, or
// the leakage accumulator for a vacuum boundary.
//
// Tracks and their segments are immutable once built, so *Track values are
// shared read-only across sweep goroutines without locking.
package track

import "fmt"

// Dir is the two senses a track is swept in: Plus (forward pass ending at
// track_out) and Minus (reverse pass ending at track_in).
type Dir int

// Sweep directions.
const (
	Plus Dir = iota
	Minus
)

// Opposite returns the other direction.
func (d Dir) Opposite() Dir {
	if d == Plus {
		return Minus
	}
	return Plus
}

func (d Dir) String() string {
	if d == Plus {
		return "+"
	}
	return "-"
}

// BC is a track endpoint's boundary condition.
type BC int

// Boundary conditions.
const (
	Vacuum     BC = 0
	Reflective BC = 1
)

// Segment is one (length, FSR, material) piece of a track.
type Segment struct {
	Length   float64
	FSR      int
	Material int
}

// Track is a parallel chord through the geometry, segmented at each cell
// boundary it crosses.
type Track struct {
	UID       int
	AzimIndex int // index into the polar-independent azimuthal quadrature
	Half      int // 0 or 1: which of the two azimuthal half-spaces this track belongs to
	Weight    float64 // w_azim, used to weight FSR volume accumulation

	Segments []Segment

	TrackIn  int // uid of the track entered when leaving through the "in" end
	TrackOut int // uid of the track entered when leaving through the "out" end

	BCIn, BCOut     BC
	ReflIn, ReflOut bool
}

// Length returns the track's total chord length, the sum of its segment
// lengths.
func (t *Track) Length() float64 {
	var l float64
	for _, s := range t.Segments {
		l += s.Length
	}
	return l
}

// Registry owns every track built for one geometry, keyed by dense uid.
type Registry struct {
	tracks []*Track
}

// NewRegistry returns an empty track Registry.
func NewRegistry() *Registry { return &Registry{} }

// Add appends t to the registry, assigning it the next dense uid. The
// caller must not rely on t.UID before Add returns.
func (r *Registry) Add(t *Track) *Track {
	t.UID = len(r.tracks)
	r.tracks = append(r.tracks, t)
	return t
}

// Get returns the track with the given uid.
func (r *Registry) Get(uid int) *Track { return r.tracks[uid] }

// Len returns the number of tracks registered.
func (r *Registry) Len() int { return len(r.tracks) }

// All returns every track, indexed by uid.
func (r *Registry) All() []*Track { return r.tracks }

// Route resolves where the angular flux leaving track t through its end
// in direction dir (Plus leaves through the "out" end, Minus through the
// "in" end) goes next: either a destination (track uid, direction) pair to
// continue the sweep, or a report that the boundary is vacuum and the flux
// is leaked instead.
//
// The destination direction follows a "reflective ? opposite-start :
// same-start" rule, mirrored for the in end: a reflective partner is
// entered in the flipped sense, any other coupling continues in the same
// sense.
func (r *Registry) Route(t *Track, dir Dir) (destUID int, destDir Dir, bc BC, vacuum bool) {
	var partnerUID int
	var refl bool
	switch dir {
	case Plus:
		partnerUID, refl, bc = t.TrackOut, t.ReflOut, t.BCOut
	case Minus:
		partnerUID, refl, bc = t.TrackIn, t.ReflIn, t.BCIn
	default:
		panic(fmt.Sprintf("track: invalid direction %d", dir))
	}
	if bc == Vacuum {
		return -1, dir, bc, true
	}
	destDir = dir
	if refl {
		destDir = dir.Opposite()
	}
	return partnerUID, destDir, bc, false
}
