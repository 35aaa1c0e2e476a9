// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package ops is a reference set of operators for the ufunc engines.
//
// Binary operators implement Combine(a, b T) T and unary operators implement Apply(a T) T, so they satisfy
// ufunc.BinaryOp[T] and ufunc.UnaryOp[T] respectively. All operators are stateless empty structs, so
// their zero values are ready to use, and they can be compared by type (fast paths do that).
//
// Operators signal failures (like an integer division by zero) by panicking with an error, which the
// engines report as a ufunc.OperatorError.
package ops

import (
	"math"

	"github.com/gomlx/ndarray/pkg/core/dtypes"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

var (
	// ErrDivisionByZero is raised by integer division and modulo with a zero divisor.
	ErrDivisionByZero = errors.New("integer division by zero")

	// ErrOverflow is raised by the checked operators when the result doesn't fit the type.
	ErrOverflow = errors.New("integer overflow")
)

// Signed is any Go signed numeric type except complex numbers.
type Signed interface {
	constraints.Signed | constraints.Float
}

// Add returns a + b.
type Add[T dtypes.Number] struct{}

// Combine implements ufunc.BinaryOp.
func (Add[T]) Combine(a, b T) T { return a + b }

// Name implements ufunc.Named.
func (Add[T]) Name() string { return "Add" }

// Sub returns a - b.
type Sub[T dtypes.Number] struct{}

// Combine implements ufunc.BinaryOp.
func (Sub[T]) Combine(a, b T) T { return a - b }

// Name implements ufunc.Named.
func (Sub[T]) Name() string { return "Sub" }

// Mul returns a * b.
type Mul[T dtypes.Number] struct{}

// Combine implements ufunc.BinaryOp.
func (Mul[T]) Combine(a, b T) T { return a * b }

// Name implements ufunc.Named.
func (Mul[T]) Name() string { return "Mul" }

// Div returns a / b for floating point and complex types, following IEEE-754 for zero divisors.
type Div[T constraints.Float | constraints.Complex] struct{}

// Combine implements ufunc.BinaryOp.
func (Div[T]) Combine(a, b T) T { return a / b }

// Name implements ufunc.Named.
func (Div[T]) Name() string { return "Div" }

// IntDiv returns a / b truncated towards zero. It panics with ErrDivisionByZero if b is 0.
type IntDiv[T constraints.Integer] struct{}

// Combine implements ufunc.BinaryOp.
func (IntDiv[T]) Combine(a, b T) T {
	if b == 0 {
		panic(errors.WithStack(ErrDivisionByZero))
	}
	return a / b
}

// Name implements ufunc.Named.
func (IntDiv[T]) Name() string { return "IntDiv" }

// Mod returns the remainder of a / b, with the sign of a. It panics with ErrDivisionByZero if b is 0.
type Mod[T constraints.Integer] struct{}

// Combine implements ufunc.BinaryOp.
func (Mod[T]) Combine(a, b T) T {
	if b == 0 {
		panic(errors.WithStack(ErrDivisionByZero))
	}
	return a % b
}

// Name implements ufunc.Named.
func (Mod[T]) Name() string { return "Mod" }

// Max returns the larger of a and b. If they are unordered (NaN) it returns a.
type Max[T constraints.Ordered] struct{}

// Combine implements ufunc.BinaryOp.
func (Max[T]) Combine(a, b T) T {
	if b > a {
		return b
	}
	return a
}

// Name implements ufunc.Named.
func (Max[T]) Name() string { return "Max" }

// Min returns the smaller of a and b. If they are unordered (NaN) it returns a.
type Min[T constraints.Ordered] struct{}

// Combine implements ufunc.BinaryOp.
func (Min[T]) Combine(a, b T) T {
	if b < a {
		return b
	}
	return a
}

// Name implements ufunc.Named.
func (Min[T]) Name() string { return "Min" }

// PowInt returns base**exp using exponentiation by squaring. Negative exponents return 1.
type PowInt[T constraints.Integer] struct{}

// Combine implements ufunc.BinaryOp.
func (PowInt[T]) Combine(base, exp T) T {
	result := T(1)
	for exp > 0 {
		if exp%2 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1 // exp /= 2
	}
	return result
}

// Name implements ufunc.Named.
func (PowInt[T]) Name() string { return "PowInt" }

// PowFloat returns math.Pow(base, exp).
type PowFloat[T constraints.Float] struct{}

// Combine implements ufunc.BinaryOp.
func (PowFloat[T]) Combine(base, exp T) T { return T(math.Pow(float64(base), float64(exp))) }

// Name implements ufunc.Named.
func (PowFloat[T]) Name() string { return "PowFloat" }

// CheckedAdd returns a + b, and panics with ErrOverflow if the result overflows.
type CheckedAdd[T constraints.Signed] struct{}

// Combine implements ufunc.BinaryOp.
func (CheckedAdd[T]) Combine(a, b T) T {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		panic(errors.Wrapf(ErrOverflow, "%d + %d", a, b))
	}
	return sum
}

// Name implements ufunc.Named.
func (CheckedAdd[T]) Name() string { return "CheckedAdd" }

// BitwiseAnd returns a & b.
type BitwiseAnd[T constraints.Integer] struct{}

// Combine implements ufunc.BinaryOp.
func (BitwiseAnd[T]) Combine(a, b T) T { return a & b }

// Name implements ufunc.Named.
func (BitwiseAnd[T]) Name() string { return "BitwiseAnd" }

// BitwiseOr returns a | b.
type BitwiseOr[T constraints.Integer] struct{}

// Combine implements ufunc.BinaryOp.
func (BitwiseOr[T]) Combine(a, b T) T { return a | b }

// Name implements ufunc.Named.
func (BitwiseOr[T]) Name() string { return "BitwiseOr" }

// BitwiseXor returns a ^ b.
type BitwiseXor[T constraints.Integer] struct{}

// Combine implements ufunc.BinaryOp.
func (BitwiseXor[T]) Combine(a, b T) T { return a ^ b }

// Name implements ufunc.Named.
func (BitwiseXor[T]) Name() string { return "BitwiseXor" }

// LogicalAnd returns a && b.
type LogicalAnd struct{}

// Combine implements ufunc.BinaryOp.
func (LogicalAnd) Combine(a, b bool) bool { return a && b }

// Name implements ufunc.Named.
func (LogicalAnd) Name() string { return "LogicalAnd" }

// LogicalOr returns a || b.
type LogicalOr struct{}

// Combine implements ufunc.BinaryOp.
func (LogicalOr) Combine(a, b bool) bool { return a || b }

// Name implements ufunc.Named.
func (LogicalOr) Name() string { return "LogicalOr" }

// LogicalXor returns a != b.
type LogicalXor struct{}

// Combine implements ufunc.BinaryOp.
func (LogicalXor) Combine(a, b bool) bool { return a != b }

// Name implements ufunc.Named.
func (LogicalXor) Name() string { return "LogicalXor" }

// Neg returns -a.
type Neg[T Signed] struct{}

// Apply implements ufunc.UnaryOp.
func (Neg[T]) Apply(a T) T { return -a }

// Name implements ufunc.Named.
func (Neg[T]) Name() string { return "Neg" }

// Abs returns the absolute value of a. For the most negative integer it returns a unchanged.
type Abs[T Signed] struct{}

// Apply implements ufunc.UnaryOp.
func (Abs[T]) Apply(a T) T {
	if a < 0 {
		return -a
	}
	return a
}

// Name implements ufunc.Named.
func (Abs[T]) Name() string { return "Abs" }

// Square returns a * a.
type Square[T dtypes.Number] struct{}

// Apply implements ufunc.UnaryOp.
func (Square[T]) Apply(a T) T { return a * a }

// Name implements ufunc.Named.
func (Square[T]) Name() string { return "Square" }
