package xsexp

import (
	"math"
	"testing"
)

func TestDirectMatchesFormula(t *testing.T) {
	e := NewDirect([]float64{0.5, 1.0})
	got := e.Eval(2.0, 0)
	want := 1 - math.Exp(-2.0/0.5)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestTableWithinTolerance(t *testing.T) {
	sin := []float64{0.3, 0.7, 1.0}
	table := NewDefaultTable(sin)
	direct := NewDirect(sin)
	for _, tau := range []float64{0.001, 0.1, 0.5, 1.0, 2.5, 5.0, 9.9} {
		for p := range sin {
			got := table.Eval(tau, p)
			want := direct.Eval(tau, p)
			if want > 1e-8 {
				relErr := math.Abs(got-want) / want
				if relErr > 1e-5 {
					t.Errorf("tau=%v p=%d: rel err %v exceeds 1e-5 (got %v want %v)", tau, p, relErr, got, want)
				}
			}
		}
	}
}

func TestTableSaturatesBeyondTauMax(t *testing.T) {
	table := NewTable([]float64{1.0}, 5.0, 100)
	if got := table.Eval(100, 0); got != 1 {
		t.Fatalf("got %v, want 1", got)
	}
}
