// Package fsr implements the flat-source-region registry: it assigns a
// dense integer id to each distinct leaf-cell trajectory a ray traverses
// through the universe tree, and owns the per-FSR flux/source state the
// solver mutates every sweep.
//
// Keying a dense id off a hashed trajectory is the same trick a nested grid
// flattener uses to assign a dense row index while collapsing a
// multi-level grid into a single slice, just applied to a universe-descent
// chain instead of a quadtree path.
package fsr

import (
	"strconv"
	"strings"
	"sync"

	"github.com/cpmech-moc/moctran/geomx"
)

// FSR is one flat source region: the equivalence class of points sharing a
// (universe, cell) chain from root to leaf.
type FSR struct {
	ID             int
	MaterialHandle int
	Volume         float64

	Flux      []float64 // phi[g]
	Source    []float64 // Q[g]
	OldSource []float64 // Q_old[g]
	Ratio     []float64 // (Q/Sigma_t)[g]

	mu sync.Mutex // guards Flux accumulation during a sweep
}

// Lock/Unlock expose the per-FSR critical section used by the transport
// sweep to add a thread-local flux buffer into Flux without racing other
// goroutines sweeping the same FSR from a different track.
func (f *FSR) Lock()   { f.mu.Lock() }
func (f *FSR) Unlock() { f.mu.Unlock() }

// AddFlux atomically (with respect to other sweep goroutines) adds delta
// into Flux group-by-group.
func (f *FSR) AddFlux(delta []float64) {
	f.mu.Lock()
	for g, d := range delta {
		f.Flux[g] += d
	}
	f.mu.Unlock()
}

// Registry maps leaf-cell trajectories to dense FSR ids.
type Registry struct {
	groups int
	byKey  map[string]int
	fsrs   []*FSR
}

// NewRegistry returns an empty Registry sized for the given number of
// energy groups.
func NewRegistry(groups int) *Registry {
	return &Registry{groups: groups, byKey: make(map[string]int)}
}

// trajectoryKey renders a LocalCoords chain as a stable string key: the
// concatenation of (universe id, cell handle) pairs from root to leaf.
// Handles (not user ids) are used since they are guaranteed dense and
// unique within one World.
func trajectoryKey(chain *geomx.LocalCoords) string {
	var b strings.Builder
	for c := chain; c != nil; c = c.Next {
		b.WriteString(strconv.Itoa(c.UniverseID))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(c.CellHandle))
		b.WriteByte('/')
	}
	return b.String()
}

// Lookup returns the FSR id for the given trajectory, allocating a new one
// (with fresh, zeroed flux/source arrays) on first encounter.
func (r *Registry) Lookup(chain *geomx.LocalCoords, leaf *geomx.Cell) int {
	key := trajectoryKey(chain)
	if id, ok := r.byKey[key]; ok {
		return id
	}
	id := len(r.fsrs)
	f := &FSR{
		ID:             id,
		MaterialHandle: leaf.MaterialHandle,
		Flux:           make([]float64, r.groups),
		Source:         make([]float64, r.groups),
		OldSource:      make([]float64, r.groups),
		Ratio:          make([]float64, r.groups),
	}
	r.byKey[key] = id
	r.fsrs = append(r.fsrs, f)
	return id
}

// AddVolume accumulates ray-traced volume into FSR id: V_r += sum over
// tracks of segment length times azimuthal weight.
func (r *Registry) AddVolume(id int, v float64) {
	r.fsrs[id].Volume += v
}

// Get returns the FSR for id.
func (r *Registry) Get(id int) *FSR { return r.fsrs[id] }

// Len returns the number of distinct FSRs registered so far.
func (r *Registry) Len() int { return len(r.fsrs) }

// All returns every FSR, indexed by id.
func (r *Registry) All() []*FSR { return r.fsrs }

// ResetFluxes sets every FSR's Flux to initVal, for the start of a fresh
// sweep.
func (r *Registry) ResetFluxes(initVal float64) {
	for _, f := range r.fsrs {
		for g := range f.Flux {
			f.Flux[g] = initVal
		}
	}
}
