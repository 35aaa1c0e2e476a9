// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ufunc

import (
	"runtime"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/ndarray/pkg/core/ndarray"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"k8s.io/klog/v2"
)

// parallelChunks returns in how many chunks to split the work along axis 0 of dst, or 0 if the work
// should run sequentially.
//
// Work is only split if parallelism is enabled, dst is large enough and dst doesn't share its buffer
// with any of the inputs.
func (e *Engine[T]) parallelChunks(dst *ndarray.NdArray[T], inputs ...*ndarray.NdArray[T]) int {
	if !e.pool.IsEnabled() || dst.Rank() == 0 || dst.Size() < max(e.minParallelSize, 2) {
		return 0
	}
	for _, input := range inputs {
		if dst.SharesBuffer(input) {
			return 0
		}
	}
	workers := e.pool.MaxParallelism()
	if workers < 0 {
		workers = runtime.NumCPU()
	}
	return min(dst.Dim(0).Length, workers)
}

// runParallel splits [0, length) into numChunks contiguous ranges and calls fn for each of them using the
// engine's workers. It waits for all chunks to finish, and then re-panics with the *OperatorError of the
// first failing chunk, if any.
func (e *Engine[T]) runParallel(op string, numChunks, length int, fn func(r shapes.Range)) {
	if klog.V(2).Enabled() {
		klog.Infof("ufunc: %s split in %d chunks over %d positions", op, numChunks, length)
	}
	err := e.pool.RunChunks(numChunks, func(chunk int) {
		fn(shapes.Range{
			Start: chunk * length / numChunks,
			Stop:  (chunk + 1) * length / numChunks,
			Step:  1,
		})
	})
	if err != nil {
		panic(operatorError(op, err))
	}
}

// mustRange returns the sub-view of a restricted to the range on axis. Ranges are built by the engine,
// so an error is a bug.
func mustRange[T any](a *ndarray.NdArray[T], r shapes.Range, axis int) *ndarray.NdArray[T] {
	sub, err := a.SubviewRange(r, axis)
	if err != nil {
		exceptions.Panicf("ufunc: invalid chunk %+v of axis %d: %+v", r, axis, err)
	}
	return sub
}

// mustIndex returns the sub-view of a with axis fixed at index.
func mustIndex[T any](a *ndarray.NdArray[T], index, axis int) *ndarray.NdArray[T] {
	sub, err := a.SubviewIndex(index, axis)
	if err != nil {
		exceptions.Panicf("ufunc: invalid sub-view %d of axis %d: %+v", index, axis, err)
	}
	return sub
}

// mustDropAxis returns the view of a without axis, which must have length 1.
func mustDropAxis[T any](a *ndarray.NdArray[T], axis int) *ndarray.NdArray[T] {
	sub, err := a.DropAxis(axis)
	if err != nil {
		exceptions.Panicf("ufunc: can't drop axis %d: %+v", axis, err)
	}
	return sub
}
