// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ufunc

import (
	"sync"

	"github.com/gomlx/ndarray/pkg/core/shapes"
)

// maxOperands is the maximum number of views walked together: lhs, rhs and dst.
const maxOperands = 3

// walker walks up to maxOperands views of the same lengths together, in row-major order.
//
// The outer axes (all but the last) are visited with an N-dimensional counter that keeps the start
// position of each operand updated incrementally; the last axis is left to the caller as a "row" with
// innerLength elements and a stride per operand, so it can be run in a tight loop.
type walker struct {
	rank, numOperands int
	lengths           []int
	strides           [maxOperands][]int
	indices           []int
	starts            [maxOperands]int

	innerLength  int
	innerStrides [maxOperands]int
}

// Walkers are pooled by rank (0-maxPooledRank). Ranks beyond maxPooledRank fall back to regular allocation.
const maxPooledRank = 8

var walkerPools [maxPooledRank + 1]sync.Pool

func newWalker(rank int) *walker {
	w := &walker{
		rank:    rank,
		lengths: make([]int, rank),
		indices: make([]int, rank),
	}
	for k := range w.strides {
		w.strides[k] = make([]int, rank)
	}
	return w
}

// getWalker gets a walker from the pool or allocates a new one, and sets it up for the given views.
// The first view defines the lengths, the others must have the same lengths.
//
// The caller must call putWalker when done.
func getWalker(views ...walkerView) *walker {
	rank := len(views[0].dims)
	var w *walker
	if rank > maxPooledRank {
		w = newWalker(rank)
	} else if v := walkerPools[rank].Get(); v != nil {
		w = v.(*walker)
	} else {
		w = newWalker(rank)
	}
	w.numOperands = len(views)
	w.starts = [maxOperands]int{}
	w.innerStrides = [maxOperands]int{}
	for axis, dim := range views[0].dims {
		w.lengths[axis] = dim.Length
	}
	for k, view := range views {
		for axis, dim := range view.dims {
			w.strides[k][axis] = dim.Stride
		}
		w.starts[k] = view.offset
		if rank > 0 {
			w.innerStrides[k] = view.dims[rank-1].Stride
		} else {
			w.innerStrides[k] = 0
		}
	}
	w.innerLength = 1
	if rank > 0 {
		w.innerLength = w.lengths[rank-1]
	}
	return w
}

// putWalker returns a walker to the pool.
func putWalker(w *walker) {
	if w.rank <= maxPooledRank {
		walkerPools[w.rank].Put(w)
	}
}

// walkerView is the part of a view needed by the walker.
type walkerView struct {
	dims   []shapes.Dimension
	offset int
}

// forEachRow calls fn with the start position of each operand for every row (last axis) of the views,
// in row-major order. Rank 0 views have one row with one element. Zero-sized views have no rows.
func (w *walker) forEachRow(fn func(starts [maxOperands]int)) {
	for _, length := range w.lengths {
		if length == 0 {
			return
		}
	}
	if w.rank <= 1 {
		fn(w.starts)
		return
	}
	clear(w.indices)
	starts := w.starts
	for {
		fn(starts)

		// Increment the counter over the outer axes, with carry-over.
		axis := w.rank - 2
		for ; axis >= 0; axis-- {
			w.indices[axis]++
			for k := range w.numOperands {
				starts[k] += w.strides[k][axis]
			}
			if w.indices[axis] < w.lengths[axis] {
				break
			}
			for k := range w.numOperands {
				starts[k] -= w.lengths[axis] * w.strides[k][axis]
			}
			w.indices[axis] = 0
		}
		if axis < 0 {
			// All outer axes overflowed.
			return
		}
	}
}
