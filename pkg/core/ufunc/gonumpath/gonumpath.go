// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package gonumpath implements a ufunc.FastPath for float64 arrays backed by gonum's floats package.
//
// Only gonum primitives that produce exactly the same values as the generic engine are used: gonum's
// Sum is not used for instance, since it doesn't accumulate in index order.
//
// Usage:
//
//	engine := ufunc.New[float64]().WithFastPath(ufunc.Chain[float64](gonumpath.Float64{}, ufunc.Contiguous[float64]{}))
package gonumpath

import (
	"github.com/gomlx/ndarray/pkg/core/ndarray"
	"github.com/gomlx/ndarray/pkg/core/ufunc"
	"github.com/gomlx/ndarray/pkg/ops"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"
)

// Float64 is a ufunc.FastPath for float64 contiguous views and the ops Max, Min, Add, Sub, Mul and ufunc.Copy
// operators.
type Float64 struct{}

var _ ufunc.FastPath[float64] = Float64{}

// TryReduce implements ufunc.FastPath. It handles Max and Min reductions of contiguous rank-1 inputs
// without NaNs: gonum skips NaNs, while the fold keeps a leading NaN.
func (Float64) TryReduce(op ufunc.BinaryOp[float64], axis int, input, output *ndarray.NdArray[float64]) bool {
	if input.Rank() != 1 {
		return false
	}
	var reduceFn func([]float64) float64
	switch op.(type) {
	case ops.Max[float64], *ops.Max[float64]:
		reduceFn = floats.Max
	case ops.Min[float64], *ops.Min[float64]:
		reduceFn = floats.Min
	default:
		return false
	}
	data, ok := input.ContiguousData()
	if !ok || len(data) == 0 || floats.HasNaN(data) {
		return false
	}
	output.Buffer().Data()[output.Offset()] = reduceFn(data)
	if klog.V(2).Enabled() {
		klog.Infof("gonumpath: %T reduction of %d elements", op, len(data))
	}
	return true
}

// TryUnary implements ufunc.FastPath. Only ufunc.Copy is handled.
func (Float64) TryUnary(op ufunc.UnaryOp[float64], src, dst *ndarray.NdArray[float64]) bool {
	switch op.(type) {
	case ufunc.Copy[float64], *ufunc.Copy[float64]:
	default:
		return false
	}
	srcData, ok := src.ContiguousData()
	if !ok {
		return false
	}
	dstData, ok := dst.ContiguousData()
	if !ok {
		return false
	}
	copy(dstData, srcData)
	return true
}

// TryBinary implements ufunc.FastPath for Add, Sub and Mul.
func (Float64) TryBinary(op ufunc.BinaryOp[float64], lhs, rhs, dst *ndarray.NdArray[float64]) bool {
	var binaryFn func(dst, s, t []float64) []float64
	switch op.(type) {
	case ops.Add[float64], *ops.Add[float64]:
		binaryFn = floats.AddTo
	case ops.Sub[float64], *ops.Sub[float64]:
		binaryFn = floats.SubTo
	case ops.Mul[float64], *ops.Mul[float64]:
		binaryFn = floats.MulTo
	default:
		return false
	}
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
	binaryFn(dstData, lhsData, rhsData)
	return true
}
