// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ufunc implements "universal functions" over strided ndarray views: elementwise unary and
// binary operations, and reductions along an axis.
//
// The operations are generic on the element type T and take an operator value (see BinaryOp and
// UnaryOp, and package ops for a reference set). They work on arbitrary views (transposed, reversed,
// broadcast, sub-ranges) without copying, and allow the output to alias the inputs at identical
// positions, which is how in-place accumulation is done.
//
// Reductions are a left fold in strictly increasing index order along the reduced axis, seeded with
// the first element: for Sub the result of reducing [a, b, c] is (a-b)-c. Depending on the rank and the
// axis the Engine chooses one of four strategies:
//
//   - Degenerate axis (length 1, rank > 1): a copy of the input without the axis.
//   - Rank 1: a single fold into the output scalar.
//   - Rank 2: an outer accumulation over rows (axis 0) or a fold of each row (axis 1).
//   - N-D: copy slice 0 into the output, then accumulate each following slice into it.
//
// Before that, the operation is offered to a FastPath, which may run it with specialized loops
// as long as the results are identical.
//
// The Engine is configured with a string (see ParseConfig), taken by default from the environment
// variable NDARRAY_UFUNC, or with the With* methods. The package level functions (Reduce, ApplyUnary,
// ApplyBinary, ReduceAll) use an Engine built from the default configuration.
package ufunc
