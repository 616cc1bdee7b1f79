// Package array provides dense multi-dimensional float64 arrays.
//
// A Dense stores its elements flat in row-major (C-contiguous) order
// alongside an explicit shape. The package covers the small set of
// operations dataset curation needs: shape-checked construction,
// element access, axis-0 concatenation, and elementwise scale/shift.
// It is not a linear-algebra library.
//
// Implements: prd001-property-containers R4.
package array

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrShapeMismatch indicates incompatible shapes for an operation.
	ErrShapeMismatch = errors.New("array: shape mismatch")

	// ErrInvalidShape indicates an empty shape or a non-positive dimension.
	ErrInvalidShape = errors.New("array: invalid shape")

	// ErrInvalidIndex indicates an out-of-bounds index access.
	ErrInvalidIndex = errors.New("array: invalid index")

	// ErrNotIntegral indicates an element that is not a whole number
	// where one is required.
	ErrNotIntegral = errors.New("array: not an integral value")
)

// Dense is a multi-dimensional array of float64 values in row-major order.
//
// Dense is not safe for concurrent mutation. Synchronization is the
// caller's responsibility.
type Dense struct {
	data  []float64
	shape []int
}

// New creates a zero-filled array with the given shape.
// Panics if the shape is empty or has a non-positive dimension;
// shapes written in source are programmer input, not data.
func New(shape ...int) *Dense {
	d, err := NewChecked(shape...)
	if err != nil {
		panic(err)
	}
	return d
}

// NewChecked creates a zero-filled array with the given shape,
// returning ErrInvalidShape instead of panicking. Use it when the
// shape originates from data rather than source code.
func NewChecked(shape ...int) (*Dense, error) {
	size, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	return &Dense{
		data:  make([]float64, size),
		shape: copyShape(shape),
	}, nil
}

// FromSlice creates an array with the given shape from a flat row-major
// slice. The slice is copied. Fails with ErrShapeMismatch when the
// element count does not match the shape.
func FromSlice(data []float64, shape ...int) (*Dense, error) {
	size, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != size {
		return nil, fmt.Errorf("%w: %d elements for shape %v (want %d)", ErrShapeMismatch, len(data), shape, size)
	}
	d := &Dense{
		data:  make([]float64, size),
		shape: copyShape(shape),
	}
	copy(d.data, data)
	return d, nil
}

// FromInts creates an array from integer data, for quantities such as
// atomic numbers that are stored as float64 but remain whole numbers.
func FromInts(data []int64, shape ...int) (*Dense, error) {
	floats := make([]float64, len(data))
	for i, v := range data {
		floats[i] = float64(v)
	}
	return FromSlice(floats, shape...)
}

// Shape returns a copy of the array's shape.
func (d *Dense) Shape() []int {
	return copyShape(d.shape)
}

// Rank returns the number of dimensions.
func (d *Dense) Rank() int {
	return len(d.shape)
}

// Len returns the total number of elements.
func (d *Dense) Len() int {
	return len(d.data)
}

// Dim returns the size of dimension i. Panics if i is out of range.
func (d *Dense) Dim(i int) int {
	if i < 0 || i >= len(d.shape) {
		panic(fmt.Sprintf("array: dimension %d out of range for rank %d", i, len(d.shape)))
	}
	return d.shape[i]
}

// Rows returns the size of the leading dimension.
func (d *Dense) Rows() int {
	return d.shape[0]
}

// At returns the element at the given indices.
// Panics if the indices are invalid; index arithmetic is a programmer
// error, not a data condition.
func (d *Dense) At(indices ...int) float64 {
	return d.data[d.flatIndex(indices)]
}

// SetAt sets the element at the given indices. Panics if invalid.
func (d *Dense) SetAt(value float64, indices ...int) {
	d.data[d.flatIndex(indices)] = value
}

// flatIndex converts multi-dimensional indices to a flat row-major index.
func (d *Dense) flatIndex(indices []int) int {
	if len(indices) != len(d.shape) {
		panic(fmt.Sprintf("array: expected %d indices, got %d", len(d.shape), len(indices)))
	}
	idx := 0
	stride := 1
	for i := len(indices) - 1; i >= 0; i-- {
		if indices[i] < 0 || indices[i] >= d.shape[i] {
			panic(fmt.Sprintf("array: index[%d]=%d out of bounds [0,%d)", i, indices[i], d.shape[i]))
		}
		idx += indices[i] * stride
		stride *= d.shape[i]
	}
	return idx
}

// Data returns a copy of the flat row-major element slice.
func (d *Dense) Data() []float64 {
	data := make([]float64, len(d.data))
	copy(data, d.data)
	return data
}

// Ints returns the elements as int64 values. Fails with ErrNotIntegral
// if any element is not a whole number or overflows int64.
func (d *Dense) Ints() ([]int64, error) {
	ints := make([]int64, len(d.data))
	for i, v := range d.data {
		if v != math.Trunc(v) || math.IsNaN(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return nil, fmt.Errorf("%w: element %d is %v", ErrNotIntegral, i, v)
		}
		ints[i] = int64(v)
	}
	return ints, nil
}

// Clone creates a deep copy of the array.
func (d *Dense) Clone() *Dense {
	clone := &Dense{
		data:  make([]float64, len(d.data)),
		shape: copyShape(d.shape),
	}
	copy(clone.data, d.data)
	return clone
}

// Scaled returns a new array with every element multiplied by factor.
func (d *Dense) Scaled(factor float64) *Dense {
	out := d.Clone()
	for i := range out.data {
		out.data[i] *= factor
	}
	return out
}

// Shifted returns a new array with delta added to every element.
func (d *Dense) Shifted(delta float64) *Dense {
	out := d.Clone()
	for i := range out.data {
		out.data[i] += delta
	}
	return out
}

// Reshape returns a new array with the same elements and a different
// shape. The element count must be unchanged.
func (d *Dense) Reshape(shape ...int) (*Dense, error) {
	size, err := checkShape(shape)
	if err != nil {
		return nil, err
	}
	if size != len(d.data) {
		return nil, fmt.Errorf("%w: cannot reshape %v to %v", ErrShapeMismatch, d.shape, shape)
	}
	out := d.Clone()
	out.shape = copyShape(shape)
	return out, nil
}

// ConcatRows concatenates two arrays along axis 0. The arrays must have
// the same rank and identical trailing dimensions. Fails with
// ErrShapeMismatch naming both shapes otherwise.
func ConcatRows(a, b *Dense) (*Dense, error) {
	if a.Rank() != b.Rank() {
		return nil, fmt.Errorf("%w: cannot concatenate rank %d with rank %d", ErrShapeMismatch, a.Rank(), b.Rank())
	}
	for i := 1; i < a.Rank(); i++ {
		if a.shape[i] != b.shape[i] {
			return nil, fmt.Errorf("%w: trailing dimensions differ, %v vs %v", ErrShapeMismatch, a.shape, b.shape)
		}
	}
	shape := copyShape(a.shape)
	shape[0] = a.shape[0] + b.shape[0]
	out := &Dense{
		data:  make([]float64, 0, len(a.data)+len(b.data)),
		shape: shape,
	}
	out.data = append(out.data, a.data...)
	out.data = append(out.data, b.data...)
	return out, nil
}

// Equal reports whether two arrays have identical shapes and elements.
func Equal(a, b *Dense) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	for i := range a.data {
		if a.data[i] != b.data[i] {
			return false
		}
	}
	return true
}

// EqualApprox reports whether two arrays have identical shapes and
// elements within tol of each other.
func EqualApprox(a, b *Dense, tol float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	for i := range a.data {
		if math.Abs(a.data[i]-b.data[i]) > tol {
			return false
		}
	}
	return true
}

// String returns a compact description such as "Dense(2x3x1)".
func (d *Dense) String() string {
	dims := make([]string, len(d.shape))
	for i, s := range d.shape {
		dims[i] = fmt.Sprintf("%d", s)
	}
	return "Dense(" + strings.Join(dims, "x") + ")"
}

func checkShape(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: shape is empty", ErrInvalidShape)
	}
	size := 1
	for i, dim := range shape {
		if dim <= 0 {
			return 0, fmt.Errorf("%w: shape[%d] is %d", ErrInvalidShape, i, dim)
		}
		size *= dim
	}
	return size, nil
}

func copyShape(shape []int) []int {
	out := make([]int, len(shape))
	copy(out, shape)
	return out
}
