// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	shape0 := Make()
	require.True(t, shape0.IsScalar())
	require.Equal(t, 0, shape0.Rank())
	require.Equal(t, 1, shape0.Size())

	shape1 := Make(4, 3, 2)
	require.False(t, shape1.IsScalar())
	require.Equal(t, 3, shape1.Rank())
	require.Equal(t, 4*3*2, shape1.Size())
	require.Equal(t, []int{4, 3, 2}, shape1.Lengths())
	require.Equal(t, []int{6, 2, 1}, shape1.Strides())
	require.True(t, shape1.IsContiguous())
	require.Equal(t, "(4, 3, 2)", shape1.String())

	require.Equal(t, Dimension{Length: 3, Stride: 2}, shape1.Dim(1))
	require.Panics(t, func() { _ = shape1.Dim(3) })
	require.Panics(t, func() { _ = shape1.Dim(-1) })
	require.Panics(t, func() { _ = Make(2, -1) })

	require.True(t, Make(2, 0).IsZeroSize())
	require.Equal(t, 0, Make(2, 0).Size())
}

func TestRowMajorStrides(t *testing.T) {
	require.Equal(t, []int{12, 4, 1}, RowMajorStrides(2, 3, 4))
	require.Equal(t, []int{1}, RowMajorStrides(5))
	require.Equal(t, []int{2, 2, 1}, RowMajorStrides(3, 1, 2))
	require.Nil(t, RowMajorStrides())
}

func TestShape_LinearIndex(t *testing.T) {
	s := MakeStrided(5, Dimension{Length: 2, Stride: -3}, Dimension{Length: 3, Stride: 1})
	got, err := s.LinearIndex(1, 2)
	require.NoError(t, err)
	require.Equal(t, 5-3+2, got)

	_, err = s.LinearIndex(2, 0)
	require.ErrorIs(t, err, ErrIndex)
	_, err = s.LinearIndex(0)
	require.ErrorIs(t, err, ErrIndex)

	lowest, highest, ok := s.LinearBounds()
	require.True(t, ok)
	require.Equal(t, 2, lowest)
	require.Equal(t, 7, highest)
	_, _, ok = Make(0).LinearBounds()
	require.False(t, ok)
}

func TestShape_Reshape(t *testing.T) {
	s := Make(2, 3, 4)
	s.Offset = 10
	reshaped, err := s.Reshape(6, 4)
	require.NoError(t, err)
	require.Equal(t, []int{6, 4}, reshaped.Lengths())
	require.Equal(t, []int{4, 1}, reshaped.Strides())
	require.Equal(t, 10, reshaped.Offset)
	// Element count is preserved.
	require.Equal(t, s.Size(), reshaped.Size())

	_, err = s.Reshape(5, 5)
	require.ErrorIs(t, err, ErrShape)

	transposed, err := s.Transpose(2, 1, 0)
	require.NoError(t, err)
	_, err = transposed.Reshape(24)
	require.ErrorIs(t, err, ErrShape)

	// Axes of length 1 don't break contiguity.
	withUnit, err := Make(3, 4).InsertAxis(1)
	require.NoError(t, err)
	require.True(t, withUnit.IsContiguous())
	_, err = withUnit.Reshape(12)
	require.NoError(t, err)
}

func TestShape_SubviewIndex(t *testing.T) {
	s := Make(2, 3, 4)
	sub, err := s.SubviewIndex(1, 1)
	require.NoError(t, err)
	require.Equal(t, []int{2, 4}, sub.Lengths())
	require.Equal(t, []int{12, 1}, sub.Strides())
	require.Equal(t, 4, sub.Offset)

	_, err = s.SubviewIndex(3, 1)
	require.ErrorIs(t, err, ErrIndex)
	_, err = s.SubviewIndex(0, 3)
	require.ErrorIs(t, err, ErrIndex)
}

func TestShape_SubviewRange(t *testing.T) {
	s := Make(2, 10)
	sub, err := s.SubviewRange(Range{Start: 1, Stop: 8, Step: 3}, 1)
	require.NoError(t, err)
	require.Equal(t, []Dimension{{2, 10}, {3, 3}}, sub.Dims)
	require.Equal(t, 1, sub.Offset)

	// Zero step is taken as 1.
	sub, err = s.SubviewRange(Range{Start: 2, Stop: 5}, 1)
	require.NoError(t, err)
	require.Equal(t, Dimension{Length: 3, Stride: 1}, sub.Dims[1])

	// Backwards.
	sub, err = s.SubviewRange(Range{Start: 9, Stop: -1, Step: -2}, 1)
	require.NoError(t, err)
	require.Equal(t, Dimension{Length: 5, Stride: -2}, sub.Dims[1])
	require.Equal(t, 9, sub.Offset)

	// Empty range.
	sub, err = s.SubviewRange(Range{Start: 4, Stop: 4}, 1)
	require.NoError(t, err)
	require.True(t, sub.IsZeroSize())

	for _, r := range []Range{{Start: -1, Stop: 3}, {Start: 0, Stop: 11}, {Start: 5, Stop: 2}, {Start: 10, Stop: 0, Step: -1}} {
		_, err = s.SubviewRange(r, 1)
		require.ErrorIs(t, err, ErrIndex, "range %+v", r)
	}
}

func TestShape_SubviewFullRangeRoundTrip(t *testing.T) {
	shapes := []Shape{
		Make(2, 3, 4),
		MakeStrided(7, Dimension{Length: 3, Stride: -2}, Dimension{Length: 2, Stride: 5}),
	}
	for _, s := range shapes {
		for axis := range s.Rank() {
			sub, err := s.SubviewRange(FullRange(s.Dims[axis].Length), axis)
			require.NoError(t, err)
			assert.True(t, s.Equal(sub), "full range of axis %d of %s should be identical, got %s", axis, s, sub)
			assert.Equal(t, s.LinearIndices(), sub.LinearIndices())
		}
	}
}

func TestShape_DropInsertAxis(t *testing.T) {
	s := MakeStrided(3, Dimension{Length: 4, Stride: 7}, Dimension{Length: 1, Stride: 99}, Dimension{Length: 2, Stride: 1})
	dropped, err := s.DropAxis(1)
	require.NoError(t, err)
	require.Equal(t, []Dimension{{4, 7}, {2, 1}}, dropped.Dims)
	require.Equal(t, 3, dropped.Offset)
	require.Equal(t, s.LinearIndices(), dropped.LinearIndices())

	_, err = s.DropAxis(0)
	require.ErrorIs(t, err, ErrShape)
	_, err = s.DropAxis(5)
	require.ErrorIs(t, err, ErrIndex)

	inserted, err := dropped.InsertAxis(2)
	require.NoError(t, err)
	require.Equal(t, []Dimension{{4, 7}, {2, 1}, {1, 0}}, inserted.Dims)
	_, err = dropped.InsertAxis(3)
	require.ErrorIs(t, err, ErrIndex)

	// Dropping doesn't alias the original dims.
	dropped.Dims[0].Length = 100
	require.Equal(t, 4, s.Dims[0].Length)
}

func TestShape_Transpose(t *testing.T) {
	s := Make(2, 3, 4)
	transposed, err := s.Transpose(2, 0, 1)
	require.NoError(t, err)
	require.Equal(t, []int{4, 2, 3}, transposed.Lengths())
	require.Equal(t, []int{1, 12, 4}, transposed.Strides())
	require.False(t, transposed.IsContiguous())
	require.Equal(t, "(4, 2, 3)[strides=1,12,4 offset=0]", transposed.String())

	_, err = s.Transpose(0, 1)
	require.ErrorIs(t, err, ErrShape)
	_, err = s.Transpose(0, 1, 1)
	require.ErrorIs(t, err, ErrIndex)
}

func TestShape_BroadcastAxis(t *testing.T) {
	s := Make(1, 3)
	broadcast, err := s.BroadcastAxis(0, 4)
	require.NoError(t, err)
	require.Equal(t, []Dimension{{4, 0}, {3, 1}}, broadcast.Dims)
	_, err = broadcast.BroadcastAxis(0, 2)
	require.ErrorIs(t, err, ErrShape)
}

func TestShape_EqualSameLengths(t *testing.T) {
	a := Make(2, 3)
	b, err := Make(3, 2).Transpose(1, 0)
	require.NoError(t, err)
	require.True(t, a.SameLengths(b))
	require.False(t, a.Equal(b))
	require.True(t, a.Equal(a.Clone()))
	require.False(t, a.SameLengths(Make(2, 3, 1)))

	err = a.CheckAxis(2)
	require.True(t, errors.Is(err, ErrIndex))
}
