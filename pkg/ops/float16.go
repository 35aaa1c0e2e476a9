// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package ops

import (
	"github.com/gomlx/ndarray/pkg/core/dtypes/bfloat16"
	"github.com/x448/float16"
)

// Half precision operators compute in float32 and round the result back.

// AddFloat16 returns a + b.
type AddFloat16 struct{}

// Combine implements ufunc.BinaryOp.
func (AddFloat16) Combine(a, b float16.Float16) float16.Float16 {
	return float16.Fromfloat32(a.Float32() + b.Float32())
}

// Name implements ufunc.Named.
func (AddFloat16) Name() string { return "AddFloat16" }

// MulFloat16 returns a * b.
type MulFloat16 struct{}

// Combine implements ufunc.BinaryOp.
func (MulFloat16) Combine(a, b float16.Float16) float16.Float16 {
	return float16.Fromfloat32(a.Float32() * b.Float32())
}

// Name implements ufunc.Named.
func (MulFloat16) Name() string { return "MulFloat16" }

// MaxFloat16 returns the larger of a and b, or a if they are unordered.
type MaxFloat16 struct{}

// Combine implements ufunc.BinaryOp.
func (MaxFloat16) Combine(a, b float16.Float16) float16.Float16 {
	if b.Float32() > a.Float32() {
		return b
	}
	return a
}

// Name implements ufunc.Named.
func (MaxFloat16) Name() string { return "MaxFloat16" }

// MinFloat16 returns the smaller of a and b, or a if they are unordered.
type MinFloat16 struct{}

// Combine implements ufunc.BinaryOp.
func (MinFloat16) Combine(a, b float16.Float16) float16.Float16 {
	if b.Float32() < a.Float32() {
		return b
	}
	return a
}

// Name implements ufunc.Named.
func (MinFloat16) Name() string { return "MinFloat16" }

// AddBFloat16 returns a + b.
type AddBFloat16 struct{}

// Combine implements ufunc.BinaryOp.
func (AddBFloat16) Combine(a, b bfloat16.BFloat16) bfloat16.BFloat16 {
	return bfloat16.FromFloat32(a.Float32() + b.Float32())
}

// Name implements ufunc.Named.
func (AddBFloat16) Name() string { return "AddBFloat16" }

// MulBFloat16 returns a * b.
type MulBFloat16 struct{}

// Combine implements ufunc.BinaryOp.
func (MulBFloat16) Combine(a, b bfloat16.BFloat16) bfloat16.BFloat16 {
	return bfloat16.FromFloat32(a.Float32() * b.Float32())
}

// Name implements ufunc.Named.
func (MulBFloat16) Name() string { return "MulBFloat16" }

// MaxBFloat16 returns the larger of a and b, or a if they are unordered.
type MaxBFloat16 struct{}

// Combine implements ufunc.BinaryOp.
func (MaxBFloat16) Combine(a, b bfloat16.BFloat16) bfloat16.BFloat16 {
	if b.Float32() > a.Float32() {
		return b
	}
	return a
}

// Name implements ufunc.Named.
func (MaxBFloat16) Name() string { return "MaxBFloat16" }
