package geomx

import (
	"math"
	"testing"

	"github.com/ctessum/geom"

	"github.com/cpmech-moc/moctran/surface"
)

func TestCellContainment(t *testing.T) {
	// Scenario 5: x>0, y>0, x^2+y^2<1.
	sregs := surface.NewRegistry()
	xp, _ := sregs.NewXPlane(0, 0, surface.BoundaryNone)
	yp, _ := sregs.NewYPlane(0, 0, surface.BoundaryNone)
	circ, _ := sregs.NewCircleCR(0, 0, 0, 1, surface.BoundaryNone)

	creg := NewRegistry()
	c, err := creg.NewMaterialCell(0, 0, 1, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	c.AddSurface(1, xp)
	c.AddSurface(1, yp)
	c.AddSurface(-1, circ)

	cases := []struct {
		p    geom.Point
		want bool
	}{
		{geom.Point{X: 0.5, Y: 0.5}, true},
		{geom.Point{X: -0.1, Y: 0.5}, false},
		{geom.Point{X: 0.8, Y: 0.8}, false},
	}
	for _, tc := range cases {
		if got := c.Contains(tc.p); got != tc.want {
			t.Errorf("Contains(%v) = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestInvalidHalfspace(t *testing.T) {
	sregs := surface.NewRegistry()
	xp, _ := sregs.NewXPlane(0, 0, surface.BoundaryNone)
	creg := NewRegistry()
	c, _ := creg.NewMaterialCell(0, 0, 1, 0, 0)
	if err := c.AddSurface(2, xp); err == nil {
		t.Fatal("expected error for invalid halfspace")
	}
}

func TestSectorizeFourWedges(t *testing.T) {
	sregs := surface.NewRegistry()
	creg := NewRegistry()
	sub := NewSubdivider(sregs, creg)

	circ, _ := sregs.NewCircleCR(0, 0, 0, 1, surface.BoundaryNone)
	c, _ := creg.NewMaterialCell(0, 0, 1, 0, 4)
	c.AddSurface(-1, circ)

	cells, err := sub.Subdivide(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 4 {
		t.Fatalf("got %d cells, want 4", len(cells))
	}
	wantAB := [][2]float64{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	for i, sc := range cells {
		found := false
		for _, b := range sc.bounds {
			if b.Surface.Kind != surface.Plane {
				continue
			}
			if math.Abs(b.Surface.A-wantAB[i][0]) < 1e-9 && math.Abs(b.Surface.B-wantAB[i][1]) < 1e-9 && b.Halfspace == 1 {
				found = true
			}
		}
		if !found {
			t.Errorf("sector %d: expected bounding plane with A,B=%v", i, wantAB[i])
		}
	}
}

func TestRingifyFourRingsAreaPreserved(t *testing.T) {
	sregs := surface.NewRegistry()
	creg := NewRegistry()
	sub := NewSubdivider(sregs, creg)

	circ, _ := sregs.NewCircleCR(0, 0, 0, 1, surface.BoundaryNone)
	c, _ := creg.NewMaterialCell(0, 0, 1, 4, 0)
	c.AddSurface(-1, circ)

	cells, err := sub.Subdivide(c)
	if err != nil {
		t.Fatal(err)
	}
	if len(cells) != 4 {
		t.Fatalf("got %d cells, want 4", len(cells))
	}

	radii := RingRadii(1, 0, 4)
	want := []float64{1.0, math.Sqrt(0.75), math.Sqrt(0.5), 0.5}
	for i, w := range want {
		if math.Abs(radii[i]-w) > 1e-9 {
			t.Errorf("radius[%d] = %v, want %v", i, radii[i], w)
		}
	}

	total := 0.0
	for k := 0; k < 4; k++ {
		ringArea := math.Pi * (radii[k]*radii[k] - radii[k+1]*radii[k+1])
		total += ringArea
		expectedArea := math.Pi * (1 - 0) / 4
		if math.Abs(ringArea-expectedArea) > 1e-9 {
			t.Errorf("ring %d area %v, want %v", k, ringArea, expectedArea)
		}
	}
	if math.Abs(total-math.Pi) > 1e-9 {
		t.Errorf("total ring area %v, want pi", total)
	}
}

func TestRingifyWithoutOuterCircleFails(t *testing.T) {
	sregs := surface.NewRegistry()
	creg := NewRegistry()
	sub := NewSubdivider(sregs, creg)

	circ, _ := sregs.NewCircleCR(0, 0, 0, 1, surface.BoundaryNone)
	c, _ := creg.NewMaterialCell(0, 0, 1, 0, 0)
	c.AddSurface(1, circ) // only an inner (+1) circle: invalid outer

	c.NumRings = 3
	cells, err := sub.Subdivide(c)
	if err == nil {
		t.Fatalf("expected error, got cells=%v", cells)
	}
}

func TestUniverseFindCell(t *testing.T) {
	sregs := surface.NewRegistry()
	creg := NewRegistry()
	xp, _ := sregs.NewXPlane(0, 0, surface.BoundaryNone)
	c, _ := creg.NewMaterialCell(0, 0, 1, 0, 0)
	c.AddSurface(1, xp)

	u := NewUniverse(0)
	u.AddCell(c)
	w := NewWorld(0)
	w.AddUniverse(u)

	_, leaf, err := w.FindCell(geom.Point{X: 1, Y: 0})
	if err != nil {
		t.Fatal(err)
	}
	if leaf.Handle != c.Handle {
		t.Fatalf("got cell %d, want %d", leaf.Handle, c.Handle)
	}
	if _, _, err := w.FindCell(geom.Point{X: -1, Y: 0}); err == nil {
		t.Fatal("expected ErrPointNotFound")
	}
}

func TestLatticeFillRecurses(t *testing.T) {
	sregs := surface.NewRegistry()
	creg := NewRegistry()

	xp, _ := sregs.NewXPlane(0, 0, surface.BoundaryNone)
	inner, _ := creg.NewMaterialCell(0, 1, 1, 0, 0)
	inner.AddSurface(1, xp)
	innerUniv := NewUniverse(1)
	innerUniv.AddCell(inner)

	lat := NewLattice(2, 0, 0, 1, 1, 2, 2)
	fillCell, _ := creg.NewFillCell(0, 2, 1)
	for ix := 0; ix < 2; ix++ {
		for iy := 0; iy < 2; iy++ {
			lat.Set(ix, iy, fillCell)
		}
	}

	w := NewWorld(2)
	w.AddUniverse(innerUniv)
	w.AddLattice(lat)

	chain, leaf, err := w.FindCell(geom.Point{X: 1.6, Y: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if leaf.Handle != inner.Handle {
		t.Fatalf("got cell %d, want %d", leaf.Handle, inner.Handle)
	}
	if chain.Next == nil {
		t.Fatal("expected a two-link LocalCoords chain")
	}
}
