// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ufunc

import (
	"github.com/gomlx/ndarray/pkg/core/ndarray"
	"github.com/gomlx/ndarray/pkg/core/shapes"
	"github.com/pkg/errors"
)

// Reduce folds input along axis with op, and writes the result into output.
//
// For each position of the other axes the result is the left fold of the elements along axis in
// increasing index order, seeded with the first one: op(op(op(x[0], x[1]), x[2]), ...).
//
// Output lengths must be the input lengths with axis removed, or with axis kept with length 1: both
// forms produce the same buffer contents. Output may share the input's buffer: if it is exactly the view
// input.SubviewIndex(0, axis) the reduction runs in place, otherwise the result is accumulated in a
// temporary array and copied into output at the end.
//
// A negative axis is resolved by the engine's AxisRule. With the default AxisRuleLegacy it resolves
// to rank-axis, so negative axes always fail.
//
// Errors:
//
//   - shapes.ErrIndex if the resolved axis is not in [0, rank).
//   - shapes.ErrShape if the output lengths don't conform, or the reduced axis has length 0.
//   - *OperatorError (matching ErrOperator) if op panics. Output elements already written keep their values;
//     a staged output is left untouched.
//
// The argument checks happen before anything is written.
func (e *Engine[T]) Reduce(op BinaryOp[T], axis int, input, output *ndarray.NdArray[T]) error {
	if op == nil {
		return errors.New("Reduce: nil operator")
	}
	if err := checkNotNil("Reduce", input, output); err != nil {
		return err
	}
	rank := input.Rank()
	normalized, err := e.normalizeAxis(axis, rank)
	if err != nil {
		return err
	}
	if input.Dim(normalized).Length == 0 {
		return errors.Wrapf(shapes.ErrShape, "Reduce: can't reduce axis %d of length 0, shape %s", normalized, input.Shape())
	}
	out, err := conformOutput(input, normalized, output)
	if err != nil {
		return err
	}
	return catchOperator(opName(op), func() {
		staged := stagedOutput(input, normalized, out)
		if staged == nil {
			e.reduce(op, normalized, input, out)
			return
		}
		e.reduce(op, normalized, input, staged)
		e.applyUnary(Copy[T]{}, staged, out)
	})
}

// stagedOutput returns a new array to reduce into when output shares the input's buffer and is not
// the first slice along axis, the only aliased view the strategies can write as they go. It returns
// nil if output can be written directly.
func stagedOutput[T any](input *ndarray.NdArray[T], axis int, output *ndarray.NdArray[T]) *ndarray.NdArray[T] {
	if !output.SharesBuffer(input) {
		return nil
	}
	if mustIndex(input, 0, axis).Shape().Equal(output.Shape()) {
		return nil
	}
	return ndarray.New[T](output.Lengths()...)
}

// normalizeAxis resolves negative axes with the engine's AxisRule, and checks the result is a valid axis.
func (e *Engine[T]) normalizeAxis(axis, rank int) (int, error) {
	resolved := axis
	if axis < 0 {
		switch e.axisRule {
		case AxisRuleWrap:
			resolved = rank + axis
		default:
			resolved = rank - axis
		}
	}
	if resolved < 0 || resolved >= rank {
		return 0, errors.Wrapf(shapes.ErrIndex, "Reduce: axis %d (resolved to %d with the %s axis rule) is out of range for rank %d",
			axis, resolved, e.axisRule, rank)
	}
	return resolved, nil
}

// conformOutput checks the output lengths and returns the output view with the reduced axis removed.
func conformOutput[T any](input *ndarray.NdArray[T], axis int, output *ndarray.NdArray[T]) (*ndarray.NdArray[T], error) {
	inDims, outDims := input.Dims(), output.Dims()
	rank := len(inDims)
	switch len(outDims) {
	case rank - 1:
		conforms := true
		for outAxis, dim := range outDims {
			inAxis := outAxis
			if outAxis >= axis {
				inAxis++
			}
			if dim.Length != inDims[inAxis].Length {
				conforms = false
				break
			}
		}
		if conforms {
			return output, nil
		}
	case rank:
		conforms := true
		for ii, dim := range outDims {
			if (ii == axis && dim.Length != 1) || (ii != axis && dim.Length != inDims[ii].Length) {
				conforms = false
				break
			}
		}
		if conforms {
			return output.DropAxis(axis)
		}
	}
	return nil, errors.Wrapf(shapes.ErrShape, "Reduce: output lengths %v don't match input lengths %v reduced on axis %d",
		output.Lengths(), input.Lengths(), axis)
}

// reduce classifies the validated reduction and runs it with the matching strategy.
func (e *Engine[T]) reduce(op BinaryOp[T], axis int, input, output *ndarray.NdArray[T]) {
	if e.fastPath.TryReduce(op, axis, input, output) {
		logStrategy("fast path reduction", op, input.Lengths(), axis)
		return
	}
	rank := input.Rank()
	switch {
	case input.Dim(axis).Length == 1 && rank > 1:
		logStrategy("degenerate axis copy", op, input.Lengths(), axis)
		e.applyUnary(Copy[T]{}, mustDropAxis(input, axis), output)
	case rank == 1:
		logStrategy("rank-1 fold", op, input.Lengths(), axis)
		reduceRank1(op, input, output)
	case rank == 2:
		logStrategy("rank-2 reduction", op, input.Lengths(), axis)
		e.reduceInChunks(op, axis, input, output, reduceRank2[T])
	default:
		logStrategy("N-D reduction", op, input.Lengths(), axis)
		e.reduceInChunks(op, axis, input, output, e.reduceND)
	}
}

// reduceStrategy reduces input on axis into the (axis removed) output.
type reduceStrategy[T any] func(op BinaryOp[T], axis int, input, output *ndarray.NdArray[T])

// reduceInChunks runs the strategy, in parallel if enabled, splitting the work along the first axis
// of the output: each chunk of output positions is folded independently and in the same order, so the
// results are the same as the sequential run.
func (e *Engine[T]) reduceInChunks(op BinaryOp[T], axis int, input, output *ndarray.NdArray[T], strategy reduceStrategy[T]) {
	chunks := e.parallelChunks(output, input)
	if chunks <= 1 {
		strategy(op, axis, input, output)
		return
	}
	// Axis 0 of the output is the first non-reduced axis of the input.
	inputAxis := 0
	if axis == 0 {
		inputAxis = 1
	}
	e.runParallel(opName(op), chunks, output.Dim(0).Length, func(r shapes.Range) {
		strategy(op, axis, mustRange(input, r, inputAxis), mustRange(output, r, 0))
	})
}

// reduceRank1 folds all elements of a rank-1 input into the scalar output.
func reduceRank1[T any](op BinaryOp[T], input, output *ndarray.NdArray[T]) {
	data := input.Buffer().Data()
	dim := input.Dims()[0]
	pos := input.Offset()
	acc := data[pos]
	for range dim.Length - 1 {
		pos += dim.Stride
		acc = op.Combine(acc, data[pos])
	}
	output.Buffer().Data()[output.Offset()] = acc
}

// reduceRank2 reduces a rank-2 input: for axis 0 it seeds the output with row 0 and accumulates the
// following rows into it; for axis 1 it folds each row into its output element.
func reduceRank2[T any](op BinaryOp[T], axis int, input, output *ndarray.NdArray[T]) {
	inData, outData := input.Buffer().Data(), output.Buffer().Data()
	rows, cols := input.Dims()[0], input.Dims()[1]
	outDim := output.Dims()[0]

	if axis == 0 {
		inPos, outPos := input.Offset(), output.Offset()
		for range cols.Length {
			outData[outPos] = inData[inPos]
			inPos += cols.Stride
			outPos += outDim.Stride
		}
		rowStart := input.Offset()
		for range rows.Length - 1 {
			rowStart += rows.Stride
			inPos, outPos = rowStart, output.Offset()
			for range cols.Length {
				outData[outPos] = op.Combine(outData[outPos], inData[inPos])
				inPos += cols.Stride
				outPos += outDim.Stride
			}
		}
		return
	}

	rowStart, outPos := input.Offset(), output.Offset()
	for range rows.Length {
		inPos := rowStart
		acc := inData[inPos]
		for range cols.Length - 1 {
			inPos += cols.Stride
			acc = op.Combine(acc, inData[inPos])
		}
		outData[outPos] = acc
		rowStart += rows.Stride
		outPos += outDim.Stride
	}
}

// reduceND copies slice 0 of the input into the output, and accumulates each following slice into it.
func (e *Engine[T]) reduceND(op BinaryOp[T], axis int, input, output *ndarray.NdArray[T]) {
	e.applyUnary(Copy[T]{}, mustIndex(input, 0, axis), output)
	for j := 1; j < input.Dim(axis).Length; j++ {
		e.applyBinary(op, output, mustIndex(input, j, axis), output)
	}
}

// ReduceAll folds all elements of input, in row-major order, seeded with the first one.
//
// It returns an error matching shapes.ErrShape if input has no elements, and an *OperatorError if op panics.
func (e *Engine[T]) ReduceAll(op BinaryOp[T], input *ndarray.NdArray[T]) (T, error) {
	var result T
	if op == nil {
		return result, errors.New("ReduceAll: nil operator")
	}
	if err := checkNotNil("ReduceAll", input); err != nil {
		return result, err
	}
	if input.Size() == 0 {
		return result, errors.Wrapf(shapes.ErrShape, "ReduceAll: can't reduce empty shape %s", input.Shape())
	}
	logStrategy("full reduction", op, input.Lengths(), -1)
	data := input.Buffer().Data()
	err := catchOperator(opName(op), func() {
		w := getWalker(viewOf(input))
		defer putWalker(w)
		n, stride := w.innerLength, w.innerStrides[0]
		seeded := false
		w.forEachRow(func(starts [maxOperands]int) {
			pos := starts[0]
			start := 0
			if !seeded {
				result = data[pos]
				pos += stride
				start = 1
				seeded = true
			}
			for range n - start {
				result = op.Combine(result, data[pos])
				pos += stride
			}
		})
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
