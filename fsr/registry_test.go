package fsr

import (
	"testing"

	"github.com/cpmech-moc/moctran/geomx"
)

func TestLookupFirstEncounterAllocatesThenReuses(t *testing.T) {
	r := NewRegistry(2)
	leaf := &geomx.Cell{MaterialHandle: 7}
	chainA := &geomx.LocalCoords{UniverseID: 0, CellHandle: 3}

	id1 := r.Lookup(chainA, leaf)
	id2 := r.Lookup(chainA, leaf)
	if id1 != id2 {
		t.Fatalf("same trajectory gave different ids: %d vs %d", id1, id2)
	}
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}

	chainB := &geomx.LocalCoords{UniverseID: 0, CellHandle: 4}
	id3 := r.Lookup(chainB, leaf)
	if id3 == id1 {
		t.Fatalf("distinct trajectory reused id %d", id1)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
}

func TestLookupDistinguishesNestedChains(t *testing.T) {
	r := NewRegistry(1)
	leaf := &geomx.Cell{MaterialHandle: 1}

	inner := &geomx.LocalCoords{UniverseID: 1, CellHandle: 2}
	outer := &geomx.LocalCoords{UniverseID: 0, CellHandle: 5, Next: inner}

	idFlat := r.Lookup(inner, leaf)
	idNested := r.Lookup(outer, leaf)
	if idFlat == idNested {
		t.Fatalf("flat and nested chains collided on id %d", idFlat)
	}
}

func TestAddVolumeAccumulates(t *testing.T) {
	r := NewRegistry(1)
	leaf := &geomx.Cell{MaterialHandle: 1}
	chain := &geomx.LocalCoords{UniverseID: 0, CellHandle: 1}
	id := r.Lookup(chain, leaf)

	r.AddVolume(id, 1.5)
	r.AddVolume(id, 2.5)
	if got := r.Get(id).Volume; got != 4.0 {
		t.Fatalf("Volume = %v, want 4.0", got)
	}
}

func TestAddFluxIsRaceFree(t *testing.T) {
	r := NewRegistry(1)
	leaf := &geomx.Cell{MaterialHandle: 1}
	chain := &geomx.LocalCoords{UniverseID: 0, CellHandle: 1}
	id := r.Lookup(chain, leaf)
	f := r.Get(id)

	const n = 1000
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		go func() {
			f.AddFlux([]float64{1})
			done <- struct{}{}
		}()
	}
	for i := 0; i < n; i++ {
		<-done
	}
	if f.Flux[0] != float64(n) {
		t.Fatalf("Flux[0] = %v, want %v", f.Flux[0], n)
	}
}

func TestResetFluxes(t *testing.T) {
	r := NewRegistry(2)
	leaf := &geomx.Cell{MaterialHandle: 1}
	chain := &geomx.LocalCoords{UniverseID: 0, CellHandle: 1}
	id := r.Lookup(chain, leaf)
	r.Get(id).Flux[0] = 9

	r.ResetFluxes(1.0)
	for _, g := range r.Get(id).Flux {
		if g != 1.0 {
			t.Fatalf("Flux = %v, want all 1.0", r.Get(id).Flux)
		}
	}
}
