// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ufunc

import (
	"fmt"
	"testing"

	"github.com/gomlx/ndarray/pkg/core/ndarray"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/gomlx/ndarray/pkg/ops"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

func TestApplyBinary(t *testing.T) {
	for viewName, view := range testViews() {
		lhs := view
		rhs := must.M1(tokens(4, 3, 2).Transpose(2, 1, 0))
		want := make([]string, 0, lhs.Size())
		for ii, l := range lhs.Flat() {
			want = append(want, concat.Combine(l, rhs.Flat()[ii]))
		}
		for engineName, e := range testEngines[string]() {
			msg := fmt.Sprintf("view=%s, engine=%s", viewName, engineName)
			dst := ndarray.New[string](2, 3, 4)
			require.NoError(t, e.ApplyBinary(concat, lhs, rhs, dst), msg)
			require.Equal(t, want, dst.Flat(), msg)

			// Strided destination.
			dst = must.M1(ndarray.New[string](4, 3, 2).Transpose(2, 1, 0))
			require.NoError(t, e.ApplyBinary(concat, lhs, rhs, dst), msg)
			require.Equal(t, want, dst.Flat(), msg)
		}
	}
}

func TestApplyUnary(t *testing.T) {
	for name, e := range testEngines[float64]() {
		src := must.M1(ndarray.Iota[float64](3, 4).Transpose(1, 0))
		dst := ndarray.New[float64](4, 3)
		require.NoError(t, e.ApplyUnary(ops.Neg[float64]{}, src, dst), name)
		require.Equal(t, []float64{0, -4, -8, -1, -5, -9, -2, -6, -10, -3, -7, -11}, dst.Flat(), name)

		require.NoError(t, e.ApplyUnary(Copy[float64]{}, src, dst), name)
		require.Equal(t, src.Flat(), dst.Flat(), name)
	}
}

func TestElementwise_RowMajorOrder(t *testing.T) {
	e := FromConfig[int](Config{FastPath: FastPathNone})
	src := must.M1(ndarray.Iota[int](2, 3).Transpose(1, 0))
	var visited []int
	record := UnaryFunc[int](func(a int) int {
		visited = append(visited, a)
		return a
	})
	require.NoError(t, e.ApplyUnary(record, src, ndarray.New[int](3, 2)))
	require.Equal(t, []int{0, 3, 1, 4, 2, 5}, visited)
}

func TestElementwise_InPlace(t *testing.T) {
	for name, e := range testEngines[int]() {
		acc := ndarray.Iota[int](4, 5)
		other := ndarray.Iota[int](4, 5)
		require.NoError(t, e.ApplyBinary(ops.Add[int]{}, acc, other, acc), name)
		for ii, v := range acc.Flat() {
			require.Equal(t, 2*ii, v, name)
		}

		// In-place through a different view of the same positions.
		alias := must.M1(acc.Reshape(20))
		require.NoError(t, e.ApplyUnary(ops.Neg[int]{}, acc, must.M1(alias.Reshape(4, 5))), name)
		require.Equal(t, 0, must.M1(alias.At(0)))
		require.Equal(t, -38, must.M1(alias.At(19)))
	}
}

func TestElementwise_Broadcast(t *testing.T) {
	for name, e := range testEngines[int]() {
		row := must.M1(ndarray.FromFlat([]int{10, 20, 30}, 1, 3))
		broadcast := must.M1(row.BroadcastAxis(0, 2))
		lhs := ndarray.Iota[int](2, 3)
		dst := ndarray.New[int](2, 3)
		require.NoError(t, e.ApplyBinary(ops.Add[int]{}, lhs, broadcast, dst), name)
		require.Equal(t, []int{10, 21, 32, 13, 24, 35}, dst.Flat(), name)
	}
}

func TestElementwise_EdgeCases(t *testing.T) {
	for name, e := range testEngines[int]() {
		// Rank 0.
		dst := ndarray.New[int]()
		require.NoError(t, e.ApplyBinary(ops.Mul[int]{}, ndarray.Scalar(6), ndarray.Scalar(7), dst), name)
		require.Equal(t, 42, must.M1(dst.Item()), name)

		// Zero-size arrays write nothing.
		never := BinaryFunc[int](func(a, b int) int { panic("should not be called") })
		require.NoError(t, e.ApplyBinary(never, ndarray.New[int](3, 0), ndarray.New[int](3, 0), ndarray.New[int](3, 0)), name)

		// No broadcasting.
		err := e.ApplyBinary(ops.Add[int]{}, ndarray.New[int](2, 3), ndarray.New[int](1, 3), ndarray.New[int](2, 3))
		require.ErrorIs(t, err, shapes.ErrShape, name)
		err = e.ApplyUnary(ops.Neg[int]{}, ndarray.New[int](2, 3), ndarray.New[int](3, 2))
		require.ErrorIs(t, err, shapes.ErrShape, name)
		err = e.ApplyUnary(ops.Neg[int]{}, ndarray.New[int](6), ndarray.New[int](2, 3))
		require.ErrorIs(t, err, shapes.ErrShape, name)
		require.Error(t, e.ApplyUnary(ops.Neg[int]{}, nil, ndarray.New[int](2, 3)), name)
	}
}

func TestElementwise_OperatorFailure(t *testing.T) {
	e := FromConfig[int](Config{FastPath: FastPathNone})
	lhs := must.M1(ndarray.FromFlat([]int{6, 8, 10, 12}, 4))
	rhs := must.M1(ndarray.FromFlat([]int{3, 2, 0, 4}, 4))
	dst := ndarray.New[int](4)
	dst.Fill(-1)
	err := e.ApplyBinary(ops.IntDiv[int]{}, lhs, rhs, dst)
	require.ErrorIs(t, err, ErrOperator)
	require.ErrorIs(t, err, ops.ErrDivisionByZero)
	require.ErrorContains(t, err, "IntDiv")
	require.Equal(t, []int{2, 4, -1, -1}, dst.Flat())

	// Non-error panics are reported as well.
	err = e.ApplyUnary(UnaryFunc[int](func(int) int { panic(17) }), lhs, dst)
	require.ErrorIs(t, err, ErrOperator)
	require.ErrorContains(t, err, "17")
}

func TestWalker(t *testing.T) {
	a := must.M1(ndarray.Iota[int](2, 3, 4).Transpose(2, 0, 1))
	b := ndarray.New[int](4, 2, 3)
	w := getWalker(viewOf(a), viewOf(b))
	defer putWalker(w)
	require.Equal(t, 3, w.innerLength)
	require.Equal(t, [maxOperands]int{4, 1, 0}, w.innerStrides)
	var rowStarts [][2]int
	w.forEachRow(func(starts [maxOperands]int) {
		rowStarts = append(rowStarts, [2]int{starts[0], starts[1]})
	})
	require.Equal(t, [][2]int{
		{0, 0}, {12, 3},
		{1, 6}, {13, 9},
		{2, 12}, {14, 15},
		{3, 18}, {15, 21},
	}, rowStarts)

	// Walkers are reused with a different number of operands.
	w2 := getWalker(viewOf(ndarray.New[int](0, 2)))
	defer putWalker(w2)
	w2.forEachRow(func([maxOperands]int) { t.Fatal("zero-sized views have no rows") })
}
