// Package bfloat16 implements the bfloat16 ("brain floating point") element type.
//
// Values are stored as the upper 16 bits of an IEEE 754 float32, and all arithmetic
// is done by widening to float32 and narrowing back.
package bfloat16

import (
	"math"
	"strconv"
)

// BFloat16 is a 16-bit floating point number: 1 sign bit, 8 exponent bits and 7 mantissa bits.
// It has the dynamic range of a float32 with much lower precision.
type BFloat16 uint16

// Float32 widens f to a float32. The conversion is exact.
func (f BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(f) << 16)
}

// FromFloat32 narrows x to a BFloat16, rounding to the nearest value (ties to even).
// NaN values stay NaN.
func FromFloat32(x float32) BFloat16 {
	bits := math.Float32bits(x)
	if math.IsNaN(float64(x)) {
		// Force a quiet NaN, the upper bits alone may have an empty mantissa.
		return BFloat16(bits>>16 | 0x0040)
	}
	roundingBias := uint32(0x7FFF) + (bits>>16)&1
	return BFloat16((bits + roundingBias) >> 16)
}

// String implements fmt.Stringer, and prints a float representation of the BFloat16.
func (f BFloat16) String() string {
	return strconv.FormatFloat(float64(f.Float32()), 'f', -1, 32)
}
