// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ufunc

import (
	"sync"

	"github.com/gomlx/ndarray/internal/workerspool"
	"github.com/gomlx/ndarray/pkg/core/ndarray"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Engine executes ufuncs on NdArray[T] views.
//
// It holds no per-call state and is safe for concurrent use, provided concurrent calls don't write to
// overlapping regions of a buffer.
type Engine[T any] struct {
	fastPath        FastPath[T]
	axisRule        AxisRule
	pool            *workerspool.Pool
	minParallelSize int
}

// New returns an Engine configured from the environment variable NDARRAY_UFUNC, or DefaultConfig if
// it is not set. An invalid configuration is logged and the defaults are used instead.
func New[T any]() *Engine[T] {
	return FromConfig[T](loadConfig())
}

// NewWithConfig returns an Engine configured by the given configuration string. See ParseConfig.
func NewWithConfig[T any](config string) (*Engine[T], error) {
	c, err := ParseConfig(config)
	if err != nil {
		return nil, err
	}
	return FromConfig[T](c), nil
}

// FromConfig returns an Engine with the given configuration.
func FromConfig[T any](c Config) *Engine[T] {
	e := &Engine[T]{
		axisRule:        c.AxisRule,
		minParallelSize: c.MinParallelSize,
	}
	switch c.FastPath {
	case FastPathContiguous:
		e.fastPath = Contiguous[T]{}
	default:
		e.fastPath = NoFastPath[T]{}
	}
	return e.WithParallelism(c.Parallelism)
}

// WithFastPath sets the fast path offered every operation. A nil path is the same as NoFastPath.
// It returns the engine itself, to allow cascading configuration calls.
func (e *Engine[T]) WithFastPath(path FastPath[T]) *Engine[T] {
	if path == nil {
		path = NoFastPath[T]{}
	}
	e.fastPath = path
	return e
}

// WithAxisRule sets how negative reduction axes are resolved.
func (e *Engine[T]) WithAxisRule(rule AxisRule) *Engine[T] {
	e.axisRule = rule
	return e
}

// WithParallelism sets the maximum number of workers: 0 disables parallelism, and -1 means unlimited.
func (e *Engine[T]) WithParallelism(parallelism int) *Engine[T] {
	if parallelism == 0 {
		e.pool = workerspool.Disabled()
	} else {
		e.pool = workerspool.New(parallelism)
	}
	return e
}

// WithMinParallelSize sets the minimum output size for which the work is split across workers.
func (e *Engine[T]) WithMinParallelSize(size int) *Engine[T] {
	e.minParallelSize = size
	return e
}

// FastPath returns the current fast path.
func (e *Engine[T]) FastPath() FastPath[T] {
	return e.fastPath
}

// AxisRule returns the current rule for negative axes.
func (e *Engine[T]) AxisRule() AxisRule {
	return e.axisRule
}

// Parallelism returns the maximum number of workers, 0 if parallelism is disabled.
func (e *Engine[T]) Parallelism() int {
	return e.pool.MaxParallelism()
}

// checkNotNil returns an error if any of the views is nil.
func checkNotNil[T any](method string, views ...*ndarray.NdArray[T]) error {
	for ii, view := range views {
		if view == nil {
			return errors.Errorf("%s: view #%d is nil", method, ii)
		}
	}
	return nil
}

// checkSameLengths returns an error matching shapes.ErrShape if the views don't have the same lengths.
func checkSameLengths[T any](method string, views ...*ndarray.NdArray[T]) error {
	dims0 := views[0].Dims()
	for ii, view := range views[1:] {
		dims := view.Dims()
		same := len(dims) == len(dims0)
		if same {
			for axis, dim := range dims {
				if dim.Length != dims0[axis].Length {
					same = false
					break
				}
			}
		}
		if !same {
			return errors.Wrapf(shapes.ErrShape, "%s: view #%d has lengths %v, but view #0 has lengths %v",
				method, ii+1, view.Lengths(), views[0].Lengths())
		}
	}
	return nil
}

// defaultEngines caches one Engine per element type, built from the default configuration.
var (
	defaultConfig  = sync.OnceValue(loadConfig)
	defaultEngines sync.Map
)

// Default returns the Engine used by the package level functions for T.
//
// It is built once per type, with the configuration from NDARRAY_UFUNC or DefaultConfig
// read at the first call for any type.
func Default[T any]() *Engine[T] {
	var key *T
	if e, found := defaultEngines.Load(key); found {
		return e.(*Engine[T])
	}
	e, _ := defaultEngines.LoadOrStore(key, FromConfig[T](defaultConfig()))
	return e.(*Engine[T])
}

// Reduce folds input along axis into output, using the Default engine. See Engine.Reduce.
func Reduce[T any](op BinaryOp[T], axis int, input, output *ndarray.NdArray[T]) error {
	return Default[T]().Reduce(op, axis, input, output)
}

// ReduceAll folds all elements of input, using the Default engine. See Engine.ReduceAll.
func ReduceAll[T any](op BinaryOp[T], input *ndarray.NdArray[T]) (T, error) {
	return Default[T]().ReduceAll(op, input)
}

// ApplyUnary sets dst to op(src), using the Default engine. See Engine.ApplyUnary.
func ApplyUnary[T any](op UnaryOp[T], src, dst *ndarray.NdArray[T]) error {
	return Default[T]().ApplyUnary(op, src, dst)
}

// ApplyBinary sets dst to op(lhs, rhs), using the Default engine. See Engine.ApplyBinary.
func ApplyBinary[T any](op BinaryOp[T], lhs, rhs, dst *ndarray.NdArray[T]) error {
	return Default[T]().ApplyBinary(op, lhs, rhs, dst)
}

// logStrategy logs the strategy chosen for an operation, at verbosity level 2.
func logStrategy(strategy string, op any, shape []int, axis int) {
	if klog.V(2).Enabled() {
		klog.Infof("ufunc: %s with %s on lengths %v, axis %d", strategy, opName(op), shape, axis)
	}
}
