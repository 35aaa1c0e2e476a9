// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dtypes includes the DType enum for the element types an ndarray buffer can hold, and the
// mapping from Go types to it.
package dtypes

import (
	"reflect"
	"strconv"

	"github.com/gomlx/ndarray/pkg/core/dtypes/bfloat16"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"golang.org/x/exp/constraints"
)

// Number is any Go numeric type, including complex numbers.
// It doesn't include float16.Float16 or bfloat16.BFloat16, which are not native number types.
type Number interface {
	constraints.Integer | constraints.Float | constraints.Complex
}

// goTypes maps each valid DType to its Go type.
var goTypes = [numDTypes]reflect.Type{
	Bool:       reflect.TypeFor[bool](),
	Int8:       reflect.TypeFor[int8](),
	Int16:      reflect.TypeFor[int16](),
	Int32:      reflect.TypeFor[int32](),
	Int64:      reflect.TypeFor[int64](),
	Uint8:      reflect.TypeFor[uint8](),
	Uint16:     reflect.TypeFor[uint16](),
	Uint32:     reflect.TypeFor[uint32](),
	Uint64:     reflect.TypeFor[uint64](),
	Float16:    reflect.TypeFor[float16.Float16](),
	Float32:    reflect.TypeFor[float32](),
	Float64:    reflect.TypeFor[float64](),
	BFloat16:   reflect.TypeFor[bfloat16.BFloat16](),
	Complex64:  reflect.TypeFor[complex64](),
	Complex128: reflect.TypeFor[complex128](),
}

// kindDTypes maps the reflect.Kind of the portable Go types to their DType.
var kindDTypes = map[reflect.Kind]DType{
	reflect.Bool:       Bool,
	reflect.Int8:       Int8,
	reflect.Int16:      Int16,
	reflect.Int32:      Int32,
	reflect.Int64:      Int64,
	reflect.Uint8:      Uint8,
	reflect.Uint16:     Uint16,
	reflect.Uint32:     Uint32,
	reflect.Uint64:     Uint64,
	reflect.Float32:    Float32,
	reflect.Float64:    Float64,
	reflect.Complex64:  Complex64,
	reflect.Complex128: Complex128,
}

// FromGoType returns the DType for the given reflect.Type, or InvalidDType for types it doesn't know about.
//
// Named types map to the DType of their underlying kind, and Go's int maps to Int32 or Int64 depending
// on the platform.
func FromGoType(t reflect.Type) DType {
	switch {
	case t == nil:
		return InvalidDType
	case t == goTypes[Float16]:
		return Float16
	case t == goTypes[BFloat16]:
		return BFloat16
	case t.Kind() == reflect.Int:
		if strconv.IntSize == 32 {
			return Int32
		}
		return Int64
	}
	return kindDTypes[t.Kind()]
}

// For returns the DType of the generic parameter T, or InvalidDType if T is not a known element type.
func For[T any]() DType {
	return FromGoType(reflect.TypeFor[T]())
}

// GoType returns the Go reflect.Type corresponding to the DType.
//
// It panics for InvalidDType or unknown values.
func (dtype DType) GoType() reflect.Type {
	if dtype <= InvalidDType || dtype >= numDTypes {
		panic(errors.Errorf("dtype %s has no Go type", dtype))
	}
	return goTypes[dtype]
}

// Size returns the number of bytes of one element of the DType.
func (dtype DType) Size() int {
	return int(dtype.GoType().Size())
}

// SizeForDimensions returns the size in bytes used by an array with the given lengths.
//
// It works also for scalars, where the list of lengths is empty.
func (dtype DType) SizeForDimensions(lengths ...int) int {
	numElements := 1
	for _, length := range lengths {
		if length < 0 {
			panic(errors.Errorf("SizeForDimensions: negative length in %v", lengths))
		}
		numElements *= length
	}
	return numElements * dtype.Size()
}
