package track

import "testing"

func TestRouteReflectiveFlipsDirection(t *testing.T) {
	r := NewRegistry()
	a := r.Add(&Track{TrackOut: 1, BCOut: Reflective, ReflOut: true})
	r.Add(&Track{})

	destUID, destDir, bc, vacuum := r.Route(a, Plus)
	if vacuum {
		t.Fatal("expected non-vacuum route")
	}
	if destUID != 1 || destDir != Minus || bc != Reflective {
		t.Fatalf("got (%d,%v,%v), want (1,-,reflective)", destUID, destDir, bc)
	}
}

func TestRouteNonReflectiveKeepsDirection(t *testing.T) {
	r := NewRegistry()
	a := r.Add(&Track{TrackIn: 1, BCIn: Reflective, ReflIn: false})
	r.Add(&Track{})

	destUID, destDir, _, vacuum := r.Route(a, Minus)
	if vacuum {
		t.Fatal("expected non-vacuum route")
	}
	if destUID != 1 || destDir != Minus {
		t.Fatalf("got (%d,%v), want (1,-)", destUID, destDir)
	}
}

func TestRouteVacuumLeaks(t *testing.T) {
	r := NewRegistry()
	a := r.Add(&Track{BCOut: Vacuum})

	_, _, bc, vacuum := r.Route(a, Plus)
	if !vacuum {
		t.Fatal("expected vacuum route")
	}
	if bc != Vacuum {
		t.Fatalf("bc = %v, want Vacuum", bc)
	}
}

func TestDirOpposite(t *testing.T) {
	if Plus.Opposite() != Minus || Minus.Opposite() != Plus {
		t.Fatal("Opposite() is not involutive")
	}
}

func TestTrackLength(t *testing.T) {
	tr := &Track{Segments: []Segment{{Length: 1.5}, {Length: 2.5}}}
	if got := tr.Length(); got != 4.0 {
		t.Fatalf("Length() = %v, want 4.0", got)
	}
}

func TestRegistryAddAssignsDenseUIDs(t *testing.T) {
	r := NewRegistry()
	a := r.Add(&Track{})
	b := r.Add(&Track{})
	if a.UID != 0 || b.UID != 1 {
		t.Fatalf("uids = %d,%d, want 0,1", a.UID, b.UID)
	}
	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}
}
