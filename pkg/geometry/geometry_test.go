package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/benchtop/beaker/pkg/array"
)

const tol = 1e-12

// triangle is one configuration of three atoms with pair distances
// 0.3 (0-1), 0.4 (0-2), and 0.5 (1-2).
func triangle(t *testing.T) *array.Dense {
	t.Helper()
	a, err := array.FromSlice([]float64{
		0, 0, 0,
		0.3, 0, 0,
		0, 0.4, 0,
	}, 1, 3, 3)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	return a
}

func TestDisplacement(t *testing.T) {
	d, err := Displacement(triangle(t), 0, 2, 1)
	if err != nil {
		t.Fatalf("Displacement: %v", err)
	}
	want := [3]float64{-0.3, 0.4, 0}
	for k := range want {
		if math.Abs(d[k]-want[k]) > tol {
			t.Errorf("component %d = %v, want %v", k, d[k], want[k])
		}
	}
}

func TestDisplacementPBC(t *testing.T) {
	a, err := array.FromSlice([]float64{
		0.05, 0, 0,
		0.95, 0, 0,
	}, 1, 2, 3)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	d, err := DisplacementPBC(a, 0, 0, 1, Box{X: 1, Y: 1, Z: 1})
	if err != nil {
		t.Fatalf("DisplacementPBC: %v", err)
	}
	if math.Abs(d[0]-0.1) > tol {
		t.Errorf("x component = %v, want 0.1", d[0])
	}
}

func TestPairsWithinCutoff(t *testing.T) {
	tests := []struct {
		name   string
		cutoff float64
		want   []Pair
	}{
		{"below all", 0.2, nil},
		{"two pairs", 0.45, []Pair{{0, 1, 0.3}, {0, 2, 0.4}}},
		{"all pairs", 1.0, []Pair{{0, 1, 0.3}, {0, 2, 0.4}, {1, 2, 0.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs, err := PairsWithinCutoff(triangle(t), 0, tt.cutoff)
			if err != nil {
				t.Fatalf("PairsWithinCutoff: %v", err)
			}
			if len(pairs) != len(tt.want) {
				t.Fatalf("got %d pairs, want %d", len(pairs), len(tt.want))
			}
			for k, p := range pairs {
				w := tt.want[k]
				if p.I != w.I || p.J != w.J || math.Abs(p.Distance-w.Distance) > tol {
					t.Errorf("pair %d = %+v, want %+v", k, p, w)
				}
			}
		})
	}
}

func TestPairsWithinCutoffPBC(t *testing.T) {
	a, err := array.FromSlice([]float64{
		0.05, 0, 0,
		0.95, 0, 0,
	}, 1, 2, 3)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	box := Box{X: 1, Y: 1, Z: 1}

	free, err := PairsWithinCutoff(a, 0, 0.5)
	if err != nil {
		t.Fatalf("PairsWithinCutoff: %v", err)
	}
	if len(free) != 0 {
		t.Errorf("without images got %d pairs, want 0", len(free))
	}

	wrapped, err := PairsWithinCutoffPBC(a, 0, 0.5, box)
	if err != nil {
		t.Fatalf("PairsWithinCutoffPBC: %v", err)
	}
	if len(wrapped) != 1 || math.Abs(wrapped[0].Distance-0.1) > tol {
		t.Errorf("with images got %+v, want one pair at 0.1", wrapped)
	}
}

func TestMinDistance(t *testing.T) {
	p, err := MinDistance(triangle(t), 0)
	if err != nil {
		t.Fatalf("MinDistance: %v", err)
	}
	if p.I != 0 || p.J != 1 || math.Abs(p.Distance-0.3) > tol {
		t.Errorf("got %+v, want {0 1 0.3}", p)
	}
}

func TestMinDistances(t *testing.T) {
	a, err := array.FromSlice([]float64{
		0, 0, 0,
		0.3, 0, 0,
		0, 0, 0,
		0, 0, 0.25,
	}, 2, 2, 3)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	pairs, err := MinDistances(a)
	if err != nil {
		t.Fatalf("MinDistances: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d results, want 2", len(pairs))
	}
	if math.Abs(pairs[0].Distance-0.3) > tol {
		t.Errorf("configuration 0 distance = %v, want 0.3", pairs[0].Distance)
	}
	if math.Abs(pairs[1].Distance-0.25) > tol {
		t.Errorf("configuration 1 distance = %v, want 0.25", pairs[1].Distance)
	}
}

func TestMinDistancePBC(t *testing.T) {
	a, err := array.FromSlice([]float64{
		0.05, 0, 0,
		0.95, 0, 0,
	}, 1, 2, 3)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	p, err := MinDistancePBC(a, 0, Box{X: 1, Y: 1, Z: 1})
	if err != nil {
		t.Fatalf("MinDistancePBC: %v", err)
	}
	if math.Abs(p.Distance-0.1) > tol {
		t.Errorf("distance = %v, want 0.1", p.Distance)
	}
}

func TestGeometryErrors(t *testing.T) {
	flat, err := array.FromSlice([]float64{0, 0, 0, 1, 1, 1}, 2, 3)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	single, err := array.FromSlice([]float64{0, 0, 0}, 1, 1, 3)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}

	if _, err := MinDistance(flat, 0); !errors.Is(err, array.ErrShapeMismatch) {
		t.Errorf("rank-2 positions: got %v, want ErrShapeMismatch", err)
	}
	if _, err := MinDistance(triangle(t), 3); !errors.Is(err, array.ErrInvalidIndex) {
		t.Errorf("configuration out of range: got %v, want ErrInvalidIndex", err)
	}
	if _, err := MinDistance(single, 0); !errors.Is(err, ErrTooFewAtoms) {
		t.Errorf("single atom: got %v, want ErrTooFewAtoms", err)
	}
	if _, err := PairsWithinCutoff(triangle(t), 0, 0); !errors.Is(err, ErrInvalidCutoff) {
		t.Errorf("zero cutoff: got %v, want ErrInvalidCutoff", err)
	}
	if _, err := MinDistancePBC(triangle(t), 0, Box{X: 1, Y: 0, Z: 1}); !errors.Is(err, ErrInvalidBox) {
		t.Errorf("zero box length: got %v, want ErrInvalidBox", err)
	}
	if _, err := Displacement(triangle(t), 0, 0, 5); !errors.Is(err, array.ErrInvalidIndex) {
		t.Errorf("atom out of range: got %v, want ErrInvalidIndex", err)
	}
}
