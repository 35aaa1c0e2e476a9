// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ufunc

import "fmt"

// BinaryOp combines two values into one. It is used by ApplyBinary and, as the accumulation step, by Reduce.
//
// Implementations should be stateless, and they may be called concurrently if parallelism is enabled.
// Failures are signaled by panicking with an error.
type BinaryOp[T any] interface {
	Combine(a, b T) T
}

// UnaryOp transforms one value. It is used by ApplyUnary.
type UnaryOp[T any] interface {
	Apply(a T) T
}

// Copy is the identity UnaryOp.
type Copy[T any] struct{}

// Apply implements UnaryOp.
func (Copy[T]) Apply(a T) T { return a }

// Name implements Named.
func (Copy[T]) Name() string { return "Copy" }

// Named is optionally implemented by operators, and used in logs and errors.
type Named interface {
	Name() string
}

// BinaryFunc adapts a function to a BinaryOp.
type BinaryFunc[T any] func(a, b T) T

// Combine implements BinaryOp.
func (fn BinaryFunc[T]) Combine(a, b T) T { return fn(a, b) }

// UnaryFunc adapts a function to a UnaryOp.
type UnaryFunc[T any] func(a T) T

// Apply implements UnaryOp.
func (fn UnaryFunc[T]) Apply(a T) T { return fn(a) }

// opName returns the operator name, if it implements Named, or its Go type otherwise.
func opName(op any) string {
	if named, ok := op.(Named); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", op)
}
