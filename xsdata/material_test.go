package xsdata

import "testing"

func TestNewMaterialPadding(t *testing.T) {
	m, err := NewMaterial(1, "fuel",
		[]float64{1.0},
		[]float64{0.1},
		[]float64{0.2},
		[]float64{1.0},
		[][]float64{{0.9}},
		8,
	)
	if err != nil {
		t.Fatal(err)
	}
	if m.SigmaT.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.SigmaT.Len())
	}
	if m.SigmaT.PaddedLen() != 8 {
		t.Fatalf("PaddedLen() = %d, want 8", m.SigmaT.PaddedLen())
	}
	for i := 1; i < 8; i++ {
		if m.SigmaT.At(i) != 0 {
			t.Fatalf("padding at %d not zero", i)
		}
	}
}

func TestNewMaterialRejectsNegative(t *testing.T) {
	_, err := NewMaterial(1, "bad",
		[]float64{-1.0}, []float64{0.1}, []float64{0.2}, []float64{1.0},
		[][]float64{{0.9}}, 8)
	if err == nil {
		t.Fatal("expected error for negative Sigma_t")
	}
}

func TestNewMaterialRejectsMismatchedGroups(t *testing.T) {
	_, err := NewMaterial(1, "bad",
		[]float64{1.0, 1.0}, []float64{0.1}, []float64{0.2}, []float64{1.0},
		[][]float64{{0.9}}, 8)
	if err == nil {
		t.Fatal("expected error for mismatched group counts")
	}
}
