// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ufunc

import (
	"github.com/gomlx/ndarray/pkg/core/ndarray"
	"github.com/gomlx/ndarray/pkg/core/shapes"
)

// ApplyUnary sets every element of dst to op.Apply of the element of src at the same multi-index.
//
// src and dst must have the same lengths (there is no implicit broadcasting, use
// NdArray.BroadcastAxis), otherwise it returns an error matching shapes.ErrShape. Elements are visited
// in row-major order, and each element of dst is written exactly once.
//
// dst may be the same view as src, or any view addressing the same positions (in-place update).
// If dst partially overlaps src at different positions the result is undefined.
//
// A panic in op is returned as an *OperatorError, and the elements already written keep their values.
func (e *Engine[T]) ApplyUnary(op UnaryOp[T], src, dst *ndarray.NdArray[T]) error {
	if err := checkNotNil("ApplyUnary", src, dst); err != nil {
		return err
	}
	if err := checkSameLengths("ApplyUnary", src, dst); err != nil {
		return err
	}
	return catchOperator(opName(op), func() {
		if e.fastPath.TryUnary(op, src, dst) {
			return
		}
		if chunks := e.parallelChunks(dst, src); chunks > 1 {
			e.runParallel(opName(op), chunks, dst.Dim(0).Length, func(r shapes.Range) {
				walkUnary(op, mustRange(src, r, 0), mustRange(dst, r, 0))
			})
			return
		}
		walkUnary(op, src, dst)
	})
}

// ApplyBinary sets every element of dst to op.Combine of the elements of lhs and rhs at the same
// multi-index.
//
// The three views must have the same lengths. See ApplyUnary for the order, aliasing and errors.
func (e *Engine[T]) ApplyBinary(op BinaryOp[T], lhs, rhs, dst *ndarray.NdArray[T]) error {
	if err := checkNotNil("ApplyBinary", lhs, rhs, dst); err != nil {
		return err
	}
	if err := checkSameLengths("ApplyBinary", lhs, rhs, dst); err != nil {
		return err
	}
	return catchOperator(opName(op), func() {
		if e.fastPath.TryBinary(op, lhs, rhs, dst) {
			return
		}
		if chunks := e.parallelChunks(dst, lhs, rhs); chunks > 1 {
			e.runParallel(opName(op), chunks, dst.Dim(0).Length, func(r shapes.Range) {
				walkBinary(op, mustRange(lhs, r, 0), mustRange(rhs, r, 0), mustRange(dst, r, 0))
			})
			return
		}
		walkBinary(op, lhs, rhs, dst)
	})
}

// applyUnary is the sequential ApplyUnary used by the reduction strategies, with arguments already validated.
// Operator panics are not caught.
func (e *Engine[T]) applyUnary(op UnaryOp[T], src, dst *ndarray.NdArray[T]) {
	if e.fastPath.TryUnary(op, src, dst) {
		return
	}
	walkUnary(op, src, dst)
}

// applyBinary is the sequential ApplyBinary used by the reduction strategies, with arguments already validated.
// Operator panics are not caught.
func (e *Engine[T]) applyBinary(op BinaryOp[T], lhs, rhs, dst *ndarray.NdArray[T]) {
	if e.fastPath.TryBinary(op, lhs, rhs, dst) {
		return
	}
	walkBinary(op, lhs, rhs, dst)
}

func viewOf[T any](a *ndarray.NdArray[T]) walkerView {
	return walkerView{dims: a.Dims(), offset: a.Offset()}
}

// walkUnary is the generic strided loop for unary operations.
func walkUnary[T any](op UnaryOp[T], src, dst *ndarray.NdArray[T]) {
	srcData, dstData := src.Buffer().Data(), dst.Buffer().Data()
	w := getWalker(viewOf(src), viewOf(dst))
	defer putWalker(w)
	n := w.innerLength
	srcStride, dstStride := w.innerStrides[0], w.innerStrides[1]
	w.forEachRow(func(starts [maxOperands]int) {
		srcPos, dstPos := starts[0], starts[1]
		for range n {
			dstData[dstPos] = op.Apply(srcData[srcPos])
			srcPos += srcStride
			dstPos += dstStride
		}
	})
}

// walkBinary is the generic strided loop for binary operations.
func walkBinary[T any](op BinaryOp[T], lhs, rhs, dst *ndarray.NdArray[T]) {
	lhsData, rhsData, dstData := lhs.Buffer().Data(), rhs.Buffer().Data(), dst.Buffer().Data()
	w := getWalker(viewOf(lhs), viewOf(rhs), viewOf(dst))
	defer putWalker(w)
	n := w.innerLength
	lhsStride, rhsStride, dstStride := w.innerStrides[0], w.innerStrides[1], w.innerStrides[2]
	w.forEachRow(func(starts [maxOperands]int) {
		lhsPos, rhsPos, dstPos := starts[0], starts[1], starts[2]
		for range n {
			dstData[dstPos] = op.Combine(lhsData[lhsPos], rhsData[rhsPos])
			lhsPos += lhsStride
			rhsPos += rhsStride
			dstPos += dstStride
		}
	})
}
