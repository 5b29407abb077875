package trackgen

import (
	"testing"

	"github.com/cpmech-moc/moctran/fsr"
	"github.com/cpmech-moc/moctran/geomx"
	"github.com/cpmech-moc/moctran/surface"
	"github.com/cpmech-moc/moctran/track"
)

// buildUnitSquare returns a world with a single material cell occupying
// [-0.5, 0.5] x [-0.5, 0.5].
func buildUnitSquare(t *testing.T) *geomx.World {
	t.Helper()
	surfs := surface.NewRegistry()
	left, err := surfs.NewXPlane(0, -0.5, surface.BoundaryReflective)
	if err != nil {
		t.Fatal(err)
	}
	right, err := surfs.NewXPlane(0, 0.5, surface.BoundaryReflective)
	if err != nil {
		t.Fatal(err)
	}
	bottom, err := surfs.NewYPlane(0, -0.5, surface.BoundaryReflective)
	if err != nil {
		t.Fatal(err)
	}
	top, err := surfs.NewYPlane(0, 0.5, surface.BoundaryReflective)
	if err != nil {
		t.Fatal(err)
	}

	cells := geomx.NewRegistry()
	cell, err := cells.NewMaterialCell(0, 1, 1, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := cell.AddSurface(1, left); err != nil {
		t.Fatal(err)
	}
	if err := cell.AddSurface(-1, right); err != nil {
		t.Fatal(err)
	}
	if err := cell.AddSurface(1, bottom); err != nil {
		t.Fatal(err)
	}
	if err := cell.AddSurface(-1, top); err != nil {
		t.Fatal(err)
	}

	u := geomx.NewUniverse(1)
	u.AddCell(cell)

	w := geomx.NewWorld(1)
	w.AddUniverse(u)
	return w
}

func TestGenerateProducesSelfCoupledReflectiveTracks(t *testing.T) {
	w := buildUnitSquare(t)
	fsrs := fsr.NewRegistry(1)

	reg, err := Generate(w, fsrs, Config{NumAzimuthal: 4, RaySpacing: 0.2, Boundary: track.Reflective})
	if err != nil {
		t.Fatal(err)
	}
	if reg.Len() == 0 {
		t.Fatal("expected at least one track")
	}
	for _, tr := range reg.All() {
		if tr.TrackIn != tr.UID || tr.TrackOut != tr.UID {
			t.Fatalf("track %d: expected self-coupled ends, got in=%d out=%d", tr.UID, tr.TrackIn, tr.TrackOut)
		}
		if !tr.ReflIn || !tr.ReflOut {
			t.Fatalf("track %d: expected reflective ends", tr.UID)
		}
		if len(tr.Segments) == 0 {
			t.Fatalf("track %d: expected at least one segment", tr.UID)
		}
	}
	if fsrs.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 (single homogeneous cell)", fsrs.Len())
	}
	if fsrs.Get(0).Volume <= 0 {
		t.Fatalf("FSR volume = %v, want > 0", fsrs.Get(0).Volume)
	}
}

func TestGenerateRejectsUnboundedWorld(t *testing.T) {
	w := geomx.NewWorld(1)
	w.AddUniverse(geomx.NewUniverse(1))
	fsrs := fsr.NewRegistry(1)
	if _, err := Generate(w, fsrs, Config{NumAzimuthal: 4, RaySpacing: 0.1}); err == nil {
		t.Fatal("expected error for a world with no bounded material cells")
	}
}

func TestGenerateRejectsBadConfig(t *testing.T) {
	w := buildUnitSquare(t)
	fsrs := fsr.NewRegistry(1)
	if _, err := Generate(w, fsrs, Config{NumAzimuthal: 0, RaySpacing: 0.1}); err == nil {
		t.Fatal("expected error for NumAzimuthal < 1")
	}
	if _, err := Generate(w, fsrs, Config{NumAzimuthal: 4, RaySpacing: 0}); err == nil {
		t.Fatal("expected error for non-positive RaySpacing")
	}
}
