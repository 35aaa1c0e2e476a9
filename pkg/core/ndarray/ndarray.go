// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ndarray implements NdArray, a strided N-dimensional view over a shared flat Buffer.
//
// Views are cheap: all transformations (Reshape, SubviewIndex, SubviewRange, DropAxis, Transpose, ...)
// only derive a new shapes.Shape and share the same Buffer, so a mutation through any view is visible
// through all the others. This aliasing is intentional, it is what allows in-place accumulation, and the
// engines in package ufunc rely on it.
package ndarray

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/gomlx/ndarray/pkg/support/xslices"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// NdArray is a view: a buffer plus the shape describing how to interpret it.
//
// The zero value is not usable, create arrays with New, FromFlat, Wrap or any of the transformations.
type NdArray[T any] struct {
	buffer *Buffer[T]
	shape  shapes.Shape
}

// New creates an array with a fresh zero-initialized contiguous buffer.
//
// It panics if any length is negative.
func New[T any](lengths ...int) *NdArray[T] {
	return NewWith[T](HeapAllocator[T]{}, lengths...)
}

// NewWith creates an array with a contiguous buffer taken from the given allocator.
func NewWith[T any](allocator Allocator[T], lengths ...int) *NdArray[T] {
	shape := shapes.Make(lengths...)
	return &NdArray[T]{
		buffer: allocator.Alloc(shape.Size()),
		shape:  shape,
	}
}

// FromFlat creates an array with a fresh buffer holding a copy of data, interpreted in row-major order.
func FromFlat[T any](data []T, lengths ...int) (*NdArray[T], error) {
	shape := shapes.Make(lengths...)
	if shape.Size() != len(data) {
		return nil, errors.Wrapf(shapes.ErrShape, "FromFlat: %d values given for shape %s with %d elements",
			len(data), shape, shape.Size())
	}
	buffer := NewBuffer[T](len(data))
	copy(buffer.data, data)
	return &NdArray[T]{buffer: buffer, shape: shape}, nil
}

// Scalar creates a rank-0 array holding value.
func Scalar[T any](value T) *NdArray[T] {
	return &NdArray[T]{
		buffer: WrapBuffer([]T{value}),
		shape:  shapes.Scalar(0),
	}
}

// Iota creates a contiguous array filled with 0, 1, 2, ... in row-major order.
func Iota[T constraints.Integer | constraints.Float](lengths ...int) *NdArray[T] {
	shape := shapes.Make(lengths...)
	return &NdArray[T]{
		buffer: WrapBuffer(xslices.Iota(T(0), shape.Size())),
		shape:  shape,
	}
}

// Wrap creates a view of the buffer with the given shape. The shape is copied.
//
// It returns an error matching shapes.ErrIndex if the shape addresses positions outside the buffer.
func Wrap[T any](buffer *Buffer[T], shape shapes.Shape) (*NdArray[T], error) {
	if buffer == nil {
		return nil, errors.New("ndarray.Wrap: nil buffer")
	}
	for axis, dim := range shape.Dims {
		if dim.Length < 0 {
			return nil, errors.Wrapf(shapes.ErrShape, "ndarray.Wrap: negative length for axis %d of shape %s", axis, shape)
		}
	}
	if lowest, highest, ok := shape.LinearBounds(); ok && (lowest < 0 || highest >= buffer.Len()) {
		return nil, errors.Wrapf(shapes.ErrIndex, "ndarray.Wrap: shape %s addresses positions [%d, %d], buffer has %d elements",
			shape, lowest, highest, buffer.Len())
	}
	return &NdArray[T]{buffer: buffer, shape: shape.Clone()}, nil
}

// withShape returns a new view on the same buffer.
func (a *NdArray[T]) withShape(shape shapes.Shape) *NdArray[T] {
	return &NdArray[T]{buffer: a.buffer, shape: shape}
}

// Buffer returns the buffer shared by this view.
func (a *NdArray[T]) Buffer() *Buffer[T] {
	return a.buffer
}

// Shape returns a copy of the view's shape.
func (a *NdArray[T]) Shape() shapes.Shape {
	return a.shape.Clone()
}

// Dims returns the view's dimensions without copying them. The returned slice must not be modified.
func (a *NdArray[T]) Dims() []shapes.Dimension {
	return a.shape.Dims
}

// Offset returns the position in the buffer of the view's first element.
func (a *NdArray[T]) Offset() int {
	return a.shape.Offset
}

// Rank returns the number of axes.
func (a *NdArray[T]) Rank() int {
	return a.shape.Rank()
}

// Size returns the number of elements in the view.
func (a *NdArray[T]) Size() int {
	return a.shape.Size()
}

// Lengths returns the length of each axis.
func (a *NdArray[T]) Lengths() []int {
	return a.shape.Lengths()
}

// Dim returns the length and stride of the axis. It panics if axis is out of range.
func (a *NdArray[T]) Dim(axis int) shapes.Dimension {
	return a.shape.Dim(axis)
}

// DType returns the dtype of the elements, or dtypes.InvalidDType if T is not one of the known types.
func (a *NdArray[T]) DType() dtypes.DType {
	return dtypes.For[T]()
}

// IsContiguous returns whether the view addresses a dense row-major block of its buffer.
func (a *NdArray[T]) IsContiguous() bool {
	return a.shape.IsContiguous()
}

// SharesBuffer returns whether both views use the same underlying buffer.
func (a *NdArray[T]) SharesBuffer(other *NdArray[T]) bool {
	return other != nil && a.buffer == other.buffer
}

// ContiguousData returns the slice of the buffer covered by the view, in row-major order, if the view
// is contiguous. The slice shares memory with the buffer.
func (a *NdArray[T]) ContiguousData() ([]T, bool) {
	if !a.shape.IsContiguous() {
		return nil, false
	}
	size := a.shape.Size()
	if size == 0 {
		return nil, true
	}
	return a.buffer.data[a.shape.Offset : a.shape.Offset+size], true
}

// At returns the element at the given multi-index.
func (a *NdArray[T]) At(indices ...int) (T, error) {
	pos, err := a.shape.LinearIndex(indices...)
	if err != nil {
		var zero T
		return zero, err
	}
	return a.buffer.data[pos], nil
}

// Set changes the element at the given multi-index.
func (a *NdArray[T]) Set(value T, indices ...int) error {
	pos, err := a.shape.LinearIndex(indices...)
	if err != nil {
		return err
	}
	a.buffer.data[pos] = value
	return nil
}

// Item returns the only element of a view of size 1 (for instance, a scalar).
func (a *NdArray[T]) Item() (T, error) {
	if a.shape.Size() != 1 {
		var zero T
		return zero, errors.Wrapf(shapes.ErrShape, "Item() requires a view with exactly one element, got shape %s", a.shape)
	}
	for pos := range a.shape.Iter() {
		return a.buffer.data[pos], nil
	}
	panic("unreachable")
}

// Flat returns a newly allocated copy of the elements, in row-major order of the view.
func (a *NdArray[T]) Flat() []T {
	flat := make([]T, 0, a.shape.Size())
	for pos := range a.shape.Iter() {
		flat = append(flat, a.buffer.data[pos])
	}
	return flat
}

// Fill sets every element of the view to value.
func (a *NdArray[T]) Fill(value T) {
	for pos := range a.shape.Iter() {
		a.buffer.data[pos] = value
	}
}

// Clone returns a contiguous deep copy of the view, with its own buffer.
func (a *NdArray[T]) Clone() *NdArray[T] {
	return &NdArray[T]{
		buffer: WrapBuffer(a.Flat()),
		shape:  shapes.Make(a.shape.Lengths()...),
	}
}

// Reshape returns a view with the given lengths over the same elements. See shapes.Shape.Reshape.
func (a *NdArray[T]) Reshape(lengths ...int) (*NdArray[T], error) {
	shape, err := a.shape.Reshape(lengths...)
	if err != nil {
		return nil, err
	}
	return a.withShape(shape), nil
}

// SubviewIndex returns the view with axis fixed at index, and removed. See shapes.Shape.SubviewIndex.
func (a *NdArray[T]) SubviewIndex(index, axis int) (*NdArray[T], error) {
	shape, err := a.shape.SubviewIndex(index, axis)
	if err != nil {
		return nil, err
	}
	return a.withShape(shape), nil
}

// SubviewRange returns the view restricted to a range of the axis. See shapes.Shape.SubviewRange.
func (a *NdArray[T]) SubviewRange(r shapes.Range, axis int) (*NdArray[T], error) {
	shape, err := a.shape.SubviewRange(r, axis)
	if err != nil {
		return nil, err
	}
	return a.withShape(shape), nil
}

// DropAxis returns the view without the given axis, which must have length 1. See shapes.Shape.DropAxis.
func (a *NdArray[T]) DropAxis(axis int) (*NdArray[T], error) {
	shape, err := a.shape.DropAxis(axis)
	if err != nil {
		return nil, err
	}
	return a.withShape(shape), nil
}

// InsertAxis returns the view with a new axis of length 1 at the given position.
func (a *NdArray[T]) InsertAxis(axis int) (*NdArray[T], error) {
	shape, err := a.shape.InsertAxis(axis)
	if err != nil {
		return nil, err
	}
	return a.withShape(shape), nil
}

// Transpose returns the view with its axes permuted. See shapes.Shape.Transpose.
func (a *NdArray[T]) Transpose(permutation ...int) (*NdArray[T], error) {
	shape, err := a.shape.Transpose(permutation...)
	if err != nil {
		return nil, err
	}
	return a.withShape(shape), nil
}

// BroadcastAxis returns the view with an axis of length 1 repeated length times (with stride 0).
// Writing through such a view is undefined, since many positions share the same element.
func (a *NdArray[T]) BroadcastAxis(axis, length int) (*NdArray[T], error) {
	shape, err := a.shape.BroadcastAxis(axis, length)
	if err != nil {
		return nil, err
	}
	return a.withShape(shape), nil
}

// maxStringElements is the maximum number of elements printed by String.
const maxStringElements = 100

// String implements fmt.Stringer. Small arrays print their values, nested by axis.
func (a *NdArray[T]) String() string {
	var sb strings.Builder
	size := a.shape.Size()
	var memory int
	if dtype := a.DType(); dtype == dtypes.InvalidDType {
		var zero T
		_, _ = fmt.Fprintf(&sb, "NdArray[%T]", zero)
		memory = size * int(unsafe.Sizeof(zero))
	} else {
		_, _ = fmt.Fprintf(&sb, "NdArray[%s]", dtype)
		memory = dtype.SizeForDimensions(a.shape.Lengths()...)
	}
	_, _ = fmt.Fprintf(&sb, "%s (%s)", a.shape, humanize.Bytes(uint64(memory)))
	if size > maxStringElements {
		return sb.String()
	}
	sb.WriteString(": ")
	flat := a.Flat()
	lengths := a.shape.Lengths()
	var writeAxis func(axis, start, count int)
	writeAxis = func(axis, start, count int) {
		if axis == len(lengths) {
			_, _ = fmt.Fprintf(&sb, "%v", flat[start])
			return
		}
		sb.WriteByte('[')
		subCount := count / max(lengths[axis], 1)
		for idx := range lengths[axis] {
			if idx > 0 {
				sb.WriteByte(' ')
			}
			writeAxis(axis+1, start+idx*subCount, subCount)
		}
		sb.WriteByte(']')
	}
	writeAxis(0, 0, size)
	return sb.String()
}
