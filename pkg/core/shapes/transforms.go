// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"slices"

	"github.com/pkg/errors"
)

// Reshape returns a shape with the given lengths addressing the same elements, in the same row-major order,
// starting at the same offset.
//
// The new strides are row-major, so the source shape must be contiguous (see IsContiguous), and the
// element count must be preserved. Otherwise, it returns an error matching ErrShape.
func (s Shape) Reshape(lengths ...int) (Shape, error) {
	newSize := 1
	for axis, length := range lengths {
		if length < 0 {
			return Shape{}, errors.Wrapf(ErrShape, "Reshape%v: negative length for axis %d", lengths, axis)
		}
		newSize *= length
	}
	if newSize != s.Size() {
		return Shape{}, errors.Wrapf(ErrShape, "Reshape%v has %d elements, shape %s has %d elements",
			lengths, newSize, s, s.Size())
	}
	if !s.IsContiguous() {
		return Shape{}, errors.Wrapf(ErrShape, "Reshape%v requires a contiguous (row-major) shape, got %s", lengths, s)
	}
	reshaped := Make(lengths...)
	reshaped.Offset = s.Offset
	return reshaped, nil
}

// SubviewIndex selects a single index along axis: the offset is moved to that index and the axis
// is removed, so the rank decreases by one.
func (s Shape) SubviewIndex(index, axis int) (Shape, error) {
	if err := s.CheckAxis(axis); err != nil {
		return Shape{}, errors.WithMessage(err, "SubviewIndex")
	}
	dim := s.Dims[axis]
	if index < 0 || index >= dim.Length {
		return Shape{}, errors.Wrapf(ErrIndex, "SubviewIndex(index=%d, axis=%d) out of bounds for shape %s", index, axis, s)
	}
	sub := Shape{
		Dims:   slices.Delete(slices.Clone(s.Dims), axis, axis+1),
		Offset: s.Offset + index*dim.Stride,
	}
	return sub, nil
}

// Range selects the indices Start, Start+Step, Start+2*Step, ... up to, and excluding, Stop.
//
// A Step of 0 is taken as 1. With a negative Step the selection walks backwards, and Start must be
// larger than Stop: use Stop=-1 to include index 0.
type Range struct {
	Start, Stop, Step int
}

// FullRange selects all the indices of an axis of the given length.
func FullRange(length int) Range {
	return Range{Start: 0, Stop: length, Step: 1}
}

// step returns the effective step.
func (r Range) step() int {
	if r.Step == 0 {
		return 1
	}
	return r.Step
}

// lengthIn returns the number of indices selected by the range on an axis of the given length.
func (r Range) lengthIn(axisLength int) (int, error) {
	step := r.step()
	if step > 0 {
		if r.Start < 0 || r.Stop > axisLength || r.Start > r.Stop {
			return 0, errors.Wrapf(ErrIndex, "range %+v invalid for axis of length %d", r, axisLength)
		}
		return (r.Stop - r.Start + step - 1) / step, nil
	}
	if r.Stop < -1 || r.Start >= axisLength || r.Start < r.Stop {
		return 0, errors.Wrapf(ErrIndex, "range %+v invalid for axis of length %d", r, axisLength)
	}
	return (r.Start - r.Stop - step - 1) / (-step), nil
}

// SubviewRange selects a sub-range along axis: the axis is kept with the number of selected indices
// as its length and its stride scaled by the range step.
func (s Shape) SubviewRange(r Range, axis int) (Shape, error) {
	if err := s.CheckAxis(axis); err != nil {
		return Shape{}, errors.WithMessage(err, "SubviewRange")
	}
	dim := s.Dims[axis]
	length, err := r.lengthIn(dim.Length)
	if err != nil {
		return Shape{}, errors.WithMessagef(err, "SubviewRange(axis=%d) of shape %s", axis, s)
	}
	sub := s.Clone()
	sub.Dims[axis] = Dimension{Length: length, Stride: dim.Stride * r.step()}
	if length > 0 {
		sub.Offset += r.Start * dim.Stride
	}
	return sub, nil
}

// DropAxis removes an axis of length 1. Neither the other strides nor the offset change.
//
// It is used to convert a "keep dimensions" reduction output into the lower-rank shape it logically
// represents.
func (s Shape) DropAxis(axis int) (Shape, error) {
	if err := s.CheckAxis(axis); err != nil {
		return Shape{}, errors.WithMessage(err, "DropAxis")
	}
	if s.Dims[axis].Length != 1 {
		return Shape{}, errors.Wrapf(ErrShape, "DropAxis(%d) requires an axis of length 1, shape is %s", axis, s)
	}
	return Shape{
		Dims:   slices.Delete(slices.Clone(s.Dims), axis, axis+1),
		Offset: s.Offset,
	}, nil
}

// InsertAxis inserts a new axis of length 1 (and stride 0) at the given position, which must be in [0, rank].
func (s Shape) InsertAxis(axis int) (Shape, error) {
	if axis < 0 || axis > s.Rank() {
		return Shape{}, errors.Wrapf(ErrIndex, "InsertAxis(%d) out of range for shape %s of rank %d", axis, s, s.Rank())
	}
	return Shape{
		Dims:   slices.Insert(slices.Clone(s.Dims), axis, Dimension{Length: 1, Stride: 0}),
		Offset: s.Offset,
	}, nil
}

// Transpose returns the shape with its axes permuted: axis i of the result is axis permutation[i] of s.
func (s Shape) Transpose(permutation ...int) (Shape, error) {
	if len(permutation) != s.Rank() {
		return Shape{}, errors.Wrapf(ErrShape, "Transpose%v: permutation must have %d axes for shape %s",
			permutation, s.Rank(), s)
	}
	seen := make([]bool, s.Rank())
	transposed := Shape{Dims: make([]Dimension, s.Rank()), Offset: s.Offset}
	for toAxis, fromAxis := range permutation {
		if fromAxis < 0 || fromAxis >= s.Rank() || seen[fromAxis] {
			return Shape{}, errors.Wrapf(ErrIndex, "Transpose%v: invalid or repeated axis %d for shape %s",
				permutation, fromAxis, s)
		}
		seen[fromAxis] = true
		transposed.Dims[toAxis] = s.Dims[fromAxis]
	}
	return transposed, nil
}

// BroadcastAxis expands an axis of length 1 to the given length, with stride 0: every index along the axis
// addresses the same elements.
func (s Shape) BroadcastAxis(axis, length int) (Shape, error) {
	if err := s.CheckAxis(axis); err != nil {
		return Shape{}, errors.WithMessage(err, "BroadcastAxis")
	}
	if s.Dims[axis].Length != 1 {
		return Shape{}, errors.Wrapf(ErrShape, "BroadcastAxis(%d, %d) requires an axis of length 1, shape is %s",
			axis, length, s)
	}
	if length < 0 {
		return Shape{}, errors.Wrapf(ErrShape, "BroadcastAxis(%d, %d): negative length", axis, length)
	}
	broadcast := s.Clone()
	broadcast.Dims[axis] = Dimension{Length: length, Stride: 0}
	return broadcast, nil
}
