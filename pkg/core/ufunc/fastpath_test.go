// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ufunc

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/gomlx/ndarray/pkg/core/ndarray"
	"github.com/gomlx/ndarray/pkg/ops"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/require"
)

// countingPath records the calls it gets and declines them all.
type countingPath[T any] struct {
	reduces, unaries, binaries int
}

func (c *countingPath[T]) TryReduce(BinaryOp[T], int, *ndarray.NdArray[T], *ndarray.NdArray[T]) bool {
	c.reduces++
	return false
}

func (c *countingPath[T]) TryUnary(UnaryOp[T], *ndarray.NdArray[T], *ndarray.NdArray[T]) bool {
	c.unaries++
	return false
}

func (c *countingPath[T]) TryBinary(BinaryOp[T], *ndarray.NdArray[T], *ndarray.NdArray[T], *ndarray.NdArray[T]) bool {
	c.binaries++
	return false
}

func randomArray(rng *rand.Rand, lengths ...int) *ndarray.NdArray[float64] {
	a := ndarray.New[float64](lengths...)
	data := a.Buffer().Data()
	for ii := range data {
		data[ii] = rng.NormFloat64() * 1e3
	}
	return a
}

func TestContiguous_Equivalence(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	sequential := FromConfig[float64](Config{FastPath: FastPathNone})
	contiguous := FromConfig[float64](Config{FastPath: FastPathContiguous})
	for _, lengths := range [][]int{{7}, {5, 9}, {3, 4, 5}, {2, 3, 1, 4}, {6, 1}} {
		input := randomArray(rng, lengths...)
		for axis := range len(lengths) {
			outLengths := input.Lengths()
			outLengths[axis] = 1
			for _, op := range []BinaryOp[float64]{ops.Add[float64]{}, ops.Sub[float64]{}, ops.Max[float64]{}, ops.Div[float64]{}} {
				want := ndarray.New[float64](outLengths...)
				got := ndarray.New[float64](outLengths...)
				require.NoError(t, sequential.Reduce(op, axis, input, want))
				require.NoError(t, contiguous.Reduce(op, axis, input, got))
				wantData, gotData := want.Flat(), got.Flat()
				for ii := range wantData {
					require.Equalf(t, math.Float64bits(wantData[ii]), math.Float64bits(gotData[ii]),
						"lengths=%v, axis=%d, op=%T, element %d: %g != %g", lengths, axis, op, ii, wantData[ii], gotData[ii])
				}
			}
		}
	}
}

func TestParallel_Equivalence(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sequential := FromConfig[float64](Config{FastPath: FastPathNone})
	parallel := FromConfig[float64](Config{FastPath: FastPathNone, Parallelism: 4})
	input := must.M1(randomArray(rng, 30, 17, 9).Transpose(2, 0, 1))
	for axis := range 3 {
		outLengths := input.Lengths()
		outLengths[axis] = 1
		want := ndarray.New[float64](outLengths...)
		got := ndarray.New[float64](outLengths...)
		require.NoError(t, sequential.Reduce(ops.Sub[float64]{}, axis, input, want))
		require.NoError(t, parallel.Reduce(ops.Sub[float64]{}, axis, input, got))
		require.Equal(t, want.Flat(), got.Flat(), "axis=%d", axis)
	}

	lhs, rhs := randomArray(rng, 40, 3), randomArray(rng, 40, 3)
	want, got := ndarray.New[float64](40, 3), ndarray.New[float64](40, 3)
	require.NoError(t, sequential.ApplyBinary(ops.Mul[float64]{}, lhs, rhs, want))
	require.NoError(t, parallel.ApplyBinary(ops.Mul[float64]{}, lhs, rhs, got))
	require.Equal(t, want.Flat(), got.Flat())
}

func TestChain(t *testing.T) {
	counter := &countingPath[int]{}
	e := FromConfig[int](Defaults()).WithFastPath(Chain[int](counter, Contiguous[int]{}))
	input := ndarray.Iota[int](3, 4)
	output := ndarray.New[int](4)
	require.NoError(t, e.Reduce(ops.Add[int]{}, 0, input, output))
	require.Equal(t, []int{12, 15, 18, 21}, output.Flat())
	require.Equal(t, 1, counter.reduces)

	dst := ndarray.New[int](3, 4)
	require.NoError(t, e.ApplyBinary(ops.Add[int]{}, input, input, dst))
	require.NoError(t, e.ApplyUnary(ops.Neg[int]{}, input, dst))
	require.Equal(t, 1, counter.binaries)
	require.Equal(t, 1, counter.unaries)

	// The N-D strategy offers each step to the fast path.
	counter = &countingPath[int]{}
	e.WithFastPath(counter)
	require.NoError(t, e.Reduce(ops.Add[int]{}, 1, ndarray.Iota[int](2, 3, 2), ndarray.New[int](2, 2)))
	require.Equal(t, 1, counter.reduces)
	require.Equal(t, 1, counter.unaries)
	require.Equal(t, 2, counter.binaries)
}

func TestContiguous_Declines(t *testing.T) {
	var path Contiguous[int]
	input := ndarray.Iota[int](3, 4)
	transposed := must.M1(input.Transpose(1, 0))
	require.False(t, path.TryReduce(ops.Add[int]{}, 0, transposed, ndarray.New[int](3)))
	require.False(t, path.TryReduce(ops.Add[int]{}, 0, input, must.M1(input.SubviewIndex(0, 0))))
	require.False(t, path.TryUnary(ops.Neg[int]{}, transposed, ndarray.New[int](4, 3)))
	require.False(t, path.TryBinary(ops.Add[int]{}, input, input, must.M1(ndarray.New[int](4, 3).Transpose(1, 0))))
	require.False(t, NoFastPath[int]{}.TryBinary(ops.Add[int]{}, input, input, ndarray.New[int](3, 4)))
}
