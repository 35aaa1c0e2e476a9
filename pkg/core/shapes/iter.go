// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"iter"

	"github.com/pkg/errors"
)

// Iter iterates sequentially, in row-major order (axis 0 outermost, last axis fastest), over all the
// multi-indices of the shape.
//
// It yields the linear index (the position in the buffer, that is, including the offset and strides)
// and a slice of indices for each axis.
//
// To avoid allocating the slice of indices, the yielded indices is owned by the Iter() method:
// don't change it inside the loop.
func (s Shape) Iter() iter.Seq2[int, []int] {
	indices := make([]int, s.Rank())
	return s.IterOn(indices)
}

// IterOn iterates over all possible indices of the given shape, like Iter.
//
// The iteration updates the indices on the given indices slice.
// During the iteration the caller shouldn't modify the slice of indices, otherwise it will lead to undefined behavior.
//
// It expects len(indices) == s.Rank(). It will panic otherwise.
func (s Shape) IterOn(indices []int) iter.Seq2[int, []int] {
	if len(indices) != s.Rank() {
		panic(errors.Errorf("Shape.IterOn given len(indices) == %d, want it to be equal to the rank %d", len(indices), s.Rank()))
	}
	return func(yield func(int, []int) bool) {
		rank := s.Rank()
		if rank == 0 {
			_ = yield(s.Offset, indices)
			return
		}
		if s.IsZeroSize() {
			return
		}
		for axis := range indices {
			indices[axis] = 0
		}

		// This structure simulates an N-dimensional counter for the indices, and keeps
		// the linear index updated incrementally.
		linear := s.Offset
	yielder:
		for {
			if !yield(linear, indices) {
				return // Consumer requested to stop iteration.
			}
			for axis := rank - 1; axis >= 0; axis-- {
				dim := s.Dims[axis]
				if dim.Length == 1 {
					// Nothing to iterate at this axis.
					continue
				}
				indices[axis]++
				linear += dim.Stride
				if indices[axis] < dim.Length {
					// Successfully incremented this axis; no carry-over needed.
					continue yielder
				}
				// The current axis overflowed; reset it to 0 and
				// continue to increment the next higher-order axis (carry-over).
				linear -= dim.Length * dim.Stride
				indices[axis] = 0
			}
			// All axes overflowed: iteration is complete.
			return
		}
	}
}

// LinearIndices returns the buffer positions of all elements of the shape, in row-major order.
func (s Shape) LinearIndices() []int {
	positions := make([]int, 0, s.Size())
	for linear := range s.Iter() {
		positions = append(positions, linear)
	}
	return positions
}
