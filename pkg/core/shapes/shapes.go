// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines the strided layout of an N-dimensional view over a flat buffer.
//
// A Shape is an ordered list of Dimension (one per axis, axis 0 first), each with a length and a stride
// (in elements, not bytes), plus a base offset into the buffer. The linear index of the multi-index
// (i0, ..., ik) is:
//
//	Offset + i0*Dims[0].Stride + ... + ik*Dims[k].Stride
//
// Strides can be zero (broadcast axes), negative (reversed axes) or in any order (transposed axes), so no
// canonical memory order is ever assumed, except where explicitly stated (see Shape.IsContiguous).
//
// All transformations (Reshape, SubviewIndex, SubviewRange, DropAxis, ...) return a new Shape and never
// touch the underlying data.
package shapes

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

var (
	// ErrShape is matched (with errors.Is) by errors caused by element-count or dimensionality
	// mismatches between shapes that are expected to conform.
	ErrShape = errors.New("shape error")

	// ErrIndex is matched (with errors.Is) by errors caused by an axis or an index out of its valid range.
	ErrIndex = errors.New("index error")
)

// Dimension describes one axis of a view.
type Dimension struct {
	// Length is the number of elements along the axis.
	Length int

	// Stride is the number of buffer elements to advance to reach the next index along the axis.
	Stride int
}

// Shape describes how to interpret a flat buffer as an N-dimensional array.
type Shape struct {
	Dims   []Dimension
	Offset int
}

// Make returns a row-major (last axis fastest) contiguous shape with the given lengths and offset 0.
//
// It panics if any of the lengths is negative.
func Make(lengths ...int) Shape {
	for axis, length := range lengths {
		if length < 0 {
			exceptions.Panicf("shapes.Make(%v): length for axis %d is negative", lengths, axis)
		}
	}
	strides := RowMajorStrides(lengths...)
	s := Shape{Dims: make([]Dimension, len(lengths))}
	for axis, length := range lengths {
		s.Dims[axis] = Dimension{Length: length, Stride: strides[axis]}
	}
	return s
}

// MakeStrided returns a shape with the given offset and dimensions. The dimensions are copied.
func MakeStrided(offset int, dims ...Dimension) Shape {
	return Shape{Dims: append([]Dimension(nil), dims...), Offset: offset}
}

// Scalar returns a rank-0 shape pointing to the given offset.
func Scalar(offset int) Shape {
	return Shape{Offset: offset}
}

// RowMajorStrides returns the strides of a contiguous row-major layout for the given lengths.
//
// Notice the strides are **not in bytes**, but in elements.
func RowMajorStrides(lengths ...int) []int {
	rank := len(lengths)
	if rank == 0 {
		return nil
	}
	strides := make([]int, rank)
	currentStride := 1
	for axis := rank - 1; axis >= 0; axis-- {
		strides[axis] = currentStride
		currentStride *= max(lengths[axis], 1)
	}
	return strides
}

// Rank returns the number of axes.
func (s Shape) Rank() int {
	return len(s.Dims)
}

// IsScalar returns whether the shape has rank 0.
func (s Shape) IsScalar() bool {
	return len(s.Dims) == 0
}

// Size returns the number of elements addressed by the shape: the product of the lengths.
// A scalar has size 1.
func (s Shape) Size() int {
	size := 1
	for _, dim := range s.Dims {
		size *= dim.Length
	}
	return size
}

// IsZeroSize returns whether some axis has length 0.
func (s Shape) IsZeroSize() bool {
	for _, dim := range s.Dims {
		if dim.Length == 0 {
			return true
		}
	}
	return false
}

// Dim returns the Dimension of the given axis. It panics if axis is out of range.
func (s Shape) Dim(axis int) Dimension {
	if axis < 0 || axis >= len(s.Dims) {
		exceptions.Panicf("Shape.Dim(%d) out of range for shape %s", axis, s)
	}
	return s.Dims[axis]
}

// Lengths returns a newly allocated slice with the length of each axis.
func (s Shape) Lengths() []int {
	lengths := make([]int, len(s.Dims))
	for axis, dim := range s.Dims {
		lengths[axis] = dim.Length
	}
	return lengths
}

// Strides returns a newly allocated slice with the stride of each axis.
func (s Shape) Strides() []int {
	strides := make([]int, len(s.Dims))
	for axis, dim := range s.Dims {
		strides[axis] = dim.Stride
	}
	return strides
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	return MakeStrided(s.Offset, s.Dims...)
}

// Equal returns whether both shapes have the same lengths, strides and offset, that is, whether they
// address the exact same linear indices in the same order.
func (s Shape) Equal(other Shape) bool {
	if s.Offset != other.Offset || len(s.Dims) != len(other.Dims) {
		return false
	}
	for axis, dim := range s.Dims {
		if dim != other.Dims[axis] {
			return false
		}
	}
	return true
}

// SameLengths returns whether both shapes have the same rank and the same length on every axis.
// Strides and offsets are not compared.
func (s Shape) SameLengths(other Shape) bool {
	if len(s.Dims) != len(other.Dims) {
		return false
	}
	for axis, dim := range s.Dims {
		if dim.Length != other.Dims[axis].Length {
			return false
		}
	}
	return true
}

// IsContiguous returns whether the shape addresses a dense row-major block of the buffer: each stride
// is the product of the lengths of the following axes. Axes of length 1 are ignored, since their
// stride is never used.
func (s Shape) IsContiguous() bool {
	if s.IsZeroSize() {
		return true
	}
	expected := 1
	for axis := len(s.Dims) - 1; axis >= 0; axis-- {
		dim := s.Dims[axis]
		if dim.Length != 1 && dim.Stride != expected {
			return false
		}
		expected *= dim.Length
	}
	return true
}

// LinearIndex returns the buffer position of the element at the given multi-index.
//
// It returns an error matching ErrIndex if the number of indices differ from the rank, or if any index is
// out of bounds.
func (s Shape) LinearIndex(indices ...int) (int, error) {
	if len(indices) != len(s.Dims) {
		return 0, errors.Wrapf(ErrIndex, "%d indices given for shape %s of rank %d", len(indices), s, s.Rank())
	}
	linear := s.Offset
	for axis, idx := range indices {
		dim := s.Dims[axis]
		if idx < 0 || idx >= dim.Length {
			return 0, errors.Wrapf(ErrIndex, "index %d out of bounds for axis %d of shape %s", idx, axis, s)
		}
		linear += idx * dim.Stride
	}
	return linear, nil
}

// LinearBounds returns the smallest and largest linear index addressed by the shape.
// For a zero-sized shape it returns ok=false.
func (s Shape) LinearBounds() (lowest, highest int, ok bool) {
	if s.IsZeroSize() {
		return 0, 0, false
	}
	lowest, highest = s.Offset, s.Offset
	for _, dim := range s.Dims {
		span := (dim.Length - 1) * dim.Stride
		if span < 0 {
			lowest += span
		} else {
			highest += span
		}
	}
	return lowest, highest, true
}

// CheckAxis returns an error matching ErrIndex if axis is not in [0, rank).
func (s Shape) CheckAxis(axis int) error {
	if axis < 0 || axis >= len(s.Dims) {
		return errors.Wrapf(ErrIndex, "axis %d out of range for shape %s of rank %d", axis, s, s.Rank())
	}
	return nil
}

// String implements fmt.Stringer. E.g.: "(2, 3)" for contiguous shapes at offset 0, and
// "(2, 3)[strides=1,2 offset=4]" otherwise.
func (s Shape) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for axis, dim := range s.Dims {
		if axis > 0 {
			sb.WriteString(", ")
		}
		_, _ = fmt.Fprintf(&sb, "%d", dim.Length)
	}
	sb.WriteByte(')')
	if s.Offset == 0 && s.IsContiguous() {
		return sb.String()
	}
	sb.WriteString("[strides=")
	for axis, dim := range s.Dims {
		if axis > 0 {
			sb.WriteByte(',')
		}
		_, _ = fmt.Fprintf(&sb, "%d", dim.Stride)
	}
	_, _ = fmt.Fprintf(&sb, " offset=%d]", s.Offset)
	return sb.String()
}
