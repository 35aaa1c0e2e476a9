// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ufunc

import (
	"github.com/gomlx/ndarray/pkg/core/ndarray"
)

// FastPath is offered every operation before the generic strategies run. It returns true if it performed
// the operation, or false if it doesn't apply, in which case it must not have written anything.
//
// The arguments were already validated: lengths match, and for TryReduce the axis is normalized to
// [0, rank) and output is the reduced view with the axis removed.
//
// A FastPath must produce exactly the same output as the generic strategies, including the order of
// the accumulation, so it can't for instance reorder a floating point sum.
type FastPath[T any] interface {
	TryReduce(op BinaryOp[T], axis int, input, output *ndarray.NdArray[T]) bool
	TryUnary(op UnaryOp[T], src, dst *ndarray.NdArray[T]) bool
	TryBinary(op BinaryOp[T], lhs, rhs, dst *ndarray.NdArray[T]) bool
}

// NoFastPath declines every operation.
type NoFastPath[T any] struct{}

// TryReduce implements FastPath.
func (NoFastPath[T]) TryReduce(BinaryOp[T], int, *ndarray.NdArray[T], *ndarray.NdArray[T]) bool {
	return false
}

// TryUnary implements FastPath.
func (NoFastPath[T]) TryUnary(UnaryOp[T], *ndarray.NdArray[T], *ndarray.NdArray[T]) bool {
	return false
}

// TryBinary implements FastPath.
func (NoFastPath[T]) TryBinary(BinaryOp[T], *ndarray.NdArray[T], *ndarray.NdArray[T], *ndarray.NdArray[T]) bool {
	return false
}

// Contiguous runs operations on row-major contiguous views as loops over flat slices.
//
// Reductions are decomposed as (outer, n, inner) blocks, where n is the length of the reduced axis,
// and each output element is still folded in increasing index order. It declines reductions where the
// output shares the buffer of the input.
type Contiguous[T any] struct{}

// TryReduce implements FastPath.
func (Contiguous[T]) TryReduce(op BinaryOp[T], axis int, input, output *ndarray.NdArray[T]) bool {
	if input.SharesBuffer(output) {
		return false
	}
	inData, ok := input.ContiguousData()
	if !ok {
		return false
	}
	outData, ok := output.ContiguousData()
	if !ok {
		return false
	}
	dims := input.Dims()
	outer, inner := 1, 1
	for ii, dim := range dims {
		if ii < axis {
			outer *= dim.Length
		} else if ii > axis {
			inner *= dim.Length
		}
	}
	n := dims[axis].Length
	for o := range outer {
		block := inData[o*n*inner : (o+1)*n*inner]
		dst := outData[o*inner : (o+1)*inner]
		copy(dst, block[:inner])
		for j := 1; j < n; j++ {
			row := block[j*inner : (j+1)*inner]
			for k := range dst {
				dst[k] = op.Combine(dst[k], row[k])
			}
		}
	}
	return true
}

// TryUnary implements FastPath.
func (Contiguous[T]) TryUnary(op UnaryOp[T], src, dst *ndarray.NdArray[T]) bool {
	srcData, ok := src.ContiguousData()
	if !ok {
		return false
	}
	dstData, ok := dst.ContiguousData()
	if !ok {
		return false
	}
	for ii, v := range srcData {
		dstData[ii] = op.Apply(v)
	}
	return true
}

// TryBinary implements FastPath.
func (Contiguous[T]) TryBinary(op BinaryOp[T], lhs, rhs, dst *ndarray.NdArray[T]) bool {
	lhsData, ok := lhs.ContiguousData()
	if !ok {
		return false
	}
	rhsData, ok := rhs.ContiguousData()
	if !ok {
		return false
	}
	dstData, ok := dst.ContiguousData()
	if !ok {
		return false
	}
	for ii, v := range lhsData {
		dstData[ii] = op.Combine(v, rhsData[ii])
	}
	return true
}

// chain of fast paths, see Chain.
type chain[T any] []FastPath[T]

// Chain returns a FastPath that offers each operation to the given paths in order, until one accepts it.
func Chain[T any](paths ...FastPath[T]) FastPath[T] {
	return chain[T](paths)
}

// TryReduce implements FastPath.
func (c chain[T]) TryReduce(op BinaryOp[T], axis int, input, output *ndarray.NdArray[T]) bool {
	for _, path := range c {
		if path.TryReduce(op, axis, input, output) {
			return true
		}
	}
	return false
}

// TryUnary implements FastPath.
func (c chain[T]) TryUnary(op UnaryOp[T], src, dst *ndarray.NdArray[T]) bool {
	for _, path := range c {
		if path.TryUnary(op, src, dst) {
			return true
		}
	}
	return false
}

// TryBinary implements FastPath.
func (c chain[T]) TryBinary(op BinaryOp[T], lhs, rhs, dst *ndarray.NdArray[T]) bool {
	for _, path := range c {
		if path.TryBinary(op, lhs, rhs, dst) {
			return true
		}
	}
	return false
}

var (
	_ FastPath[float32] = NoFastPath[float32]{}
	_ FastPath[float32] = Contiguous[float32]{}
	_ FastPath[float32] = chain[float32]{}
)
