// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShape_Iter(t *testing.T) {
	// Only trivial axes: there is only one value to iterate.
	shape := Make(1, 1, 1, 1)
	collect := make([][]int, 0, shape.Size())
	for linear, indices := range shape.Iter() {
		collect = append(collect, slices.Clone(indices))
		require.Equal(t, 0, linear)
	}
	require.Equal(t, [][]int{{0, 0, 0, 0}}, collect)

	// Contiguous shape: linear indices are sequential.
	shape = Make(3, 2)
	collect = collect[:0]
	var counter int
	for linear, indices := range shape.Iter() {
		collect = append(collect, slices.Clone(indices))
		require.Equal(t, counter, linear)
		counter++
	}
	want := [][]int{
		{0, 0},
		{0, 1},
		{1, 0},
		{1, 1},
		{2, 0},
		{2, 1},
	}
	require.Equal(t, want, collect)

	// Mixed trivial and non-trivial axes.
	shape = Make(3, 1, 2, 1)
	collect = collect[:0]
	for _, indices := range shape.Iter() {
		collect = append(collect, slices.Clone(indices))
	}
	require.Equal(t, [][]int{
		{0, 0, 0, 0},
		{0, 0, 1, 0},
		{1, 0, 0, 0},
		{1, 0, 1, 0},
		{2, 0, 0, 0},
		{2, 0, 1, 0},
	}, collect)

	// Scalar yields once, at its offset.
	counter = 0
	for linear, indices := range Scalar(7).Iter() {
		require.Equal(t, 7, linear)
		require.Empty(t, indices)
		counter++
	}
	require.Equal(t, 1, counter)

	// Zero-sized shapes yield nothing.
	for range Make(2, 0, 3).Iter() {
		t.Fatal("zero-sized shape should not yield")
	}
}

func TestShape_IterStrided(t *testing.T) {
	// Transposed (2, 3) contiguous shape, visited in the order of its own axes.
	transposed, err := Make(2, 3).Transpose(1, 0)
	require.NoError(t, err)
	require.Equal(t, []int{0, 3, 1, 4, 2, 5}, transposed.LinearIndices())

	// Reversed axis with an offset.
	reversed, err := Make(4).SubviewRange(Range{Start: 3, Stop: -1, Step: -1}, 0)
	require.NoError(t, err)
	require.Equal(t, []int{3, 2, 1, 0}, reversed.LinearIndices())

	// Broadcast axis repeats the same positions.
	broadcast, err := Make(1, 2).BroadcastAxis(0, 3)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 0, 1, 0, 1}, broadcast.LinearIndices())

	// Early termination.
	var count int
	for range Make(10, 10).Iter() {
		count++
		if count == 5 {
			break
		}
	}
	require.Equal(t, 5, count)

	require.Panics(t, func() { _ = Make(2, 2).IterOn(make([]int, 1)) })
}
