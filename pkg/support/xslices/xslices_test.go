// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xslices

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIota(t *testing.T) {
	require.Equal(t, []float64{3, 4}, Iota(3.0, 2))
	require.Equal(t, []int{0, 1, 2}, Iota(0, 3))
	require.Empty(t, Iota(0, 0))
}

func TestMapProduct(t *testing.T) {
	require.Equal(t, []string{"1", "2"}, Map([]int{1, 2}, strconv.Itoa))
	require.Equal(t, 24, Product([]int{2, 3, 4}))
	require.Equal(t, 1, Product[int](nil))
}

func TestFlag(t *testing.T) {
	f := &genericSliceFlagImpl[int]{parserFn: strconv.Atoi}
	require.NoError(t, f.Set("1, 2,3"))
	require.Equal(t, []int{1, 2, 3}, f.parsedSlice)
	require.Equal(t, "1,2,3", f.String())
	require.Error(t, f.Set("1,x"))
	require.NoError(t, f.Set(""))
	require.Empty(t, f.parsedSlice)
}
