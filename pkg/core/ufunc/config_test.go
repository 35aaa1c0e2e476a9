// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ufunc

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig("")
	require.NoError(t, err)
	require.Equal(t, Defaults(), c)

	c, err = ParseConfig(" parallelism=8, axis=wrap ,fastpath=none,minparallel=100,")
	require.NoError(t, err)
	require.Equal(t, Config{Parallelism: 8, MinParallelSize: 100, FastPath: FastPathNone, AxisRule: AxisRuleWrap}, c)

	c, err = ParseConfig("Parallelism=-1,FastPath=Contiguous,axis=LEGACY")
	require.NoError(t, err)
	require.Equal(t, -1, c.Parallelism)
	require.Equal(t, FastPathContiguous, c.FastPath)
	require.Equal(t, AxisRuleLegacy, c.AxisRule)

	// String round-trip.
	c2, err := ParseConfig(c.String())
	require.NoError(t, err)
	require.Equal(t, c, c2)

	for _, invalid := range []string{
		"parallelism", "parallelism=-2", "parallelism=x", "minparallel=-1",
		"fastpath=simd", "axis=modulo", "workers=3",
	} {
		_, err = ParseConfig(invalid)
		assert.Error(t, err, "config %q should fail", invalid)
	}
}

func TestNewWithConfig(t *testing.T) {
	e, err := NewWithConfig[float32]("parallelism=2,axis=wrap,fastpath=none")
	require.NoError(t, err)
	require.Equal(t, 2, e.Parallelism())
	require.Equal(t, AxisRuleWrap, e.AxisRule())
	require.Equal(t, NoFastPath[float32]{}, e.FastPath())

	_, err = NewWithConfig[float32]("axis=sideways")
	require.Error(t, err)

	// Each engine limits its own workers.
	other := must.M1(NewWithConfig[float32]("parallelism=2"))
	require.NotSame(t, e.pool, other.pool)
	require.Equal(t, 2, other.pool.MaxParallelism())

	e = e.WithParallelism(0).WithFastPath(nil).WithAxisRule(AxisRuleLegacy)
	require.Equal(t, 0, e.Parallelism())
	require.Equal(t, NoFastPath[float32]{}, e.FastPath())
}

func TestNew_Environment(t *testing.T) {
	t.Setenv(NDARRAY_UFUNC, "parallelism=3,axis=wrap")
	e := New[int]()
	require.Equal(t, 3, e.Parallelism())
	require.Equal(t, AxisRuleWrap, e.AxisRule())
	require.Equal(t, Contiguous[int]{}, e.FastPath())

	// Invalid configurations fall back to the defaults.
	t.Setenv(NDARRAY_UFUNC, "parallelism=many")
	e = New[int]()
	require.Equal(t, 0, e.Parallelism())
	require.Equal(t, AxisRuleLegacy, e.AxisRule())
}

func TestConfigStrings(t *testing.T) {
	require.Equal(t, "wrap", AxisRuleWrap.String())
	require.Equal(t, "AxisRule(7)", AxisRule(7).String())
	require.Equal(t, "contiguous", FastPathContiguous.String())
	require.Equal(t, "parallelism=0,minparallel=16384,fastpath=contiguous,axis=legacy", Defaults().String())
}
