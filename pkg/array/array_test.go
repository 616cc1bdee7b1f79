package array

import (
	"errors"
	"testing"
)

func TestNewChecked(t *testing.T) {
	tests := []struct {
		name    string
		shape   []int
		wantErr error
	}{
		{name: "vector", shape: []int{4}},
		{name: "matrix", shape: []int{2, 3}},
		{name: "three dims", shape: []int{5, 2, 3}},
		{name: "empty shape", shape: nil, wantErr: ErrInvalidShape},
		{name: "zero dim", shape: []int{2, 0}, wantErr: ErrInvalidShape},
		{name: "negative dim", shape: []int{-1, 3}, wantErr: ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewChecked(tt.shape...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewChecked(%v) error = %v, want %v", tt.shape, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewChecked(%v) unexpected error: %v", tt.shape, err)
			}
			want := 1
			for _, s := range tt.shape {
				want *= s
			}
			if d.Len() != want {
				t.Errorf("Len() = %d, want %d", d.Len(), want)
			}
			if d.Rank() != len(tt.shape) {
				t.Errorf("Rank() = %d, want %d", d.Rank(), len(tt.shape))
			}
		})
	}
}

func TestFromSlice(t *testing.T) {
	d, err := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 2, 3)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if got := d.At(1, 2); got != 6 {
		t.Errorf("At(1,2) = %v, want 6", got)
	}
	if got := d.At(0, 1); got != 2 {
		t.Errorf("At(0,1) = %v, want 2", got)
	}

	if _, err := FromSlice([]float64{1, 2, 3}, 2, 2); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("FromSlice with short data: error = %v, want ErrShapeMismatch", err)
	}
}

func TestFromSliceCopiesInput(t *testing.T) {
	src := []float64{1, 2}
	d, err := FromSlice(src, 2, 1)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	src[0] = 99
	if got := d.At(0, 0); got != 1 {
		t.Errorf("mutation of source slice leaked into array: At(0,0) = %v", got)
	}
}

func TestShapeCopiesOut(t *testing.T) {
	d := New(2, 3)
	shape := d.Shape()
	shape[0] = 99
	if d.Dim(0) != 2 {
		t.Errorf("mutation of returned shape leaked into array: Dim(0) = %d", d.Dim(0))
	}
}

func TestInts(t *testing.T) {
	d, err := FromInts([]int64{1, 6, 8}, 3, 1)
	if err != nil {
		t.Fatalf("FromInts: %v", err)
	}
	got, err := d.Ints()
	if err != nil {
		t.Fatalf("Ints: %v", err)
	}
	want := []int64{1, 6, 8}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ints()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	f, err := FromSlice([]float64{1.5}, 1)
	if err != nil {
		t.Fatalf("FromSlice: %v", err)
	}
	if _, err := f.Ints(); !errors.Is(err, ErrNotIntegral) {
		t.Errorf("Ints on 1.5: error = %v, want ErrNotIntegral", err)
	}
}

func TestSetAt(t *testing.T) {
	d := New(2, 2)
	d.SetAt(3.5, 1, 0)
	if got := d.At(1, 0); got != 3.5 {
		t.Errorf("At(1,0) = %v, want 3.5", got)
	}
	if got := d.At(0, 0); got != 0 {
		t.Errorf("At(0,0) = %v, want 0", got)
	}
}

func TestConcatRows(t *testing.T) {
	t.Run("matrices", func(t *testing.T) {
		a, _ := FromSlice([]float64{1, 2, 3, 4}, 2, 2)
		b, _ := FromSlice([]float64{5, 6}, 1, 2)
		out, err := ConcatRows(a, b)
		if err != nil {
			t.Fatalf("ConcatRows: %v", err)
		}
		if out.Rows() != 3 || out.Dim(1) != 2 {
			t.Fatalf("shape = %v, want [3 2]", out.Shape())
		}
		if got := out.At(2, 1); got != 6 {
			t.Errorf("At(2,1) = %v, want 6", got)
		}
	})

	t.Run("three dims", func(t *testing.T) {
		a := New(2, 4, 3)
		b := New(5, 4, 3)
		out, err := ConcatRows(a, b)
		if err != nil {
			t.Fatalf("ConcatRows: %v", err)
		}
		if out.Rows() != 7 {
			t.Errorf("Rows() = %d, want 7", out.Rows())
		}
	})

	t.Run("trailing mismatch", func(t *testing.T) {
		a := New(2, 3)
		b := New(2, 4)
		if _, err := ConcatRows(a, b); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("error = %v, want ErrShapeMismatch", err)
		}
	})

	t.Run("rank mismatch", func(t *testing.T) {
		a := New(2, 3)
		b := New(2, 3, 1)
		if _, err := ConcatRows(a, b); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("error = %v, want ErrShapeMismatch", err)
		}
	})

	t.Run("inputs untouched", func(t *testing.T) {
		a, _ := FromSlice([]float64{1, 2}, 1, 2)
		b, _ := FromSlice([]float64{3, 4}, 1, 2)
		out, err := ConcatRows(a, b)
		if err != nil {
			t.Fatalf("ConcatRows: %v", err)
		}
		out.SetAt(99, 0, 0)
		if a.At(0, 0) != 1 {
			t.Errorf("concat output shares storage with input")
		}
	})
}

func TestScaledShifted(t *testing.T) {
	d, _ := FromSlice([]float64{1, 2, 3}, 3, 1)
	s := d.Scaled(2)
	if got := s.At(2, 0); got != 6 {
		t.Errorf("Scaled At(2,0) = %v, want 6", got)
	}
	if d.At(2, 0) != 3 {
		t.Errorf("Scaled mutated the receiver")
	}

	sh := d.Shifted(-1)
	if got := sh.At(0, 0); got != 0 {
		t.Errorf("Shifted At(0,0) = %v, want 0", got)
	}
}

func TestReshape(t *testing.T) {
	d, _ := FromSlice([]float64{1, 2, 3, 4, 5, 6}, 6)
	m, err := d.Reshape(2, 3)
	if err != nil {
		t.Fatalf("Reshape: %v", err)
	}
	if got := m.At(1, 0); got != 4 {
		t.Errorf("At(1,0) = %v, want 4", got)
	}

	if _, err := d.Reshape(4, 2); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("Reshape to wrong size: error = %v, want ErrShapeMismatch", err)
	}
}

func TestEqual(t *testing.T) {
	a, _ := FromSlice([]float64{1, 2}, 2, 1)
	b, _ := FromSlice([]float64{1, 2}, 2, 1)
	c, _ := FromSlice([]float64{1, 2}, 1, 2)
	d, _ := FromSlice([]float64{1, 3}, 2, 1)

	if !Equal(a, b) {
		t.Errorf("Equal(a, b) = false, want true")
	}
	if Equal(a, c) {
		t.Errorf("Equal with different shapes = true, want false")
	}
	if Equal(a, d) {
		t.Errorf("Equal with different values = true, want false")
	}
	if !EqualApprox(a, d, 1.1) {
		t.Errorf("EqualApprox within tolerance = false, want true")
	}
	if EqualApprox(a, d, 0.5) {
		t.Errorf("EqualApprox outside tolerance = true, want false")
	}
}

func TestString(t *testing.T) {
	d := New(2, 3, 1)
	if got := d.String(); got != "Dense(2x3x1)" {
		t.Errorf("String() = %q, want %q", got, "Dense(2x3x1)")
	}
}
