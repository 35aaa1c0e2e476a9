package dtypes

import "strconv"

// DType is an enum that represents the element type of an array buffer.
//
// The zero value is InvalidDType.
type DType int32

const (
	// InvalidDType is the default value, used for Go types that have no DType.
	InvalidDType DType = iota

	// Bool holds two-state predicates.
	Bool

	// Int8 and the following are signed integral values of fixed width.
	Int8
	Int16
	Int32
	Int64

	// Uint8 and the following are unsigned integral values of fixed width.
	Uint8
	Uint16
	Uint32
	Uint64

	// Float16 is the IEEE 754 half-precision format, backed by github.com/x448/float16.
	Float16

	// Float32 and Float64 are the native Go floating point types.
	Float32
	Float64

	// BFloat16 is the truncated 16-bit floating-point format: 1 bit for the sign, 8 bits for the exponent
	// and 7 bits for the mantissa.
	BFloat16

	// Complex64 is paired Float32 (real, imag).
	Complex64

	// Complex128 is paired Float64 (real, imag).
	Complex128

	numDTypes
)

var dtypeNames = [numDTypes]string{
	InvalidDType: "InvalidDType",
	Bool:         "Bool",
	Int8:         "Int8",
	Int16:        "Int16",
	Int32:        "Int32",
	Int64:        "Int64",
	Uint8:        "Uint8",
	Uint16:       "Uint16",
	Uint32:       "Uint32",
	Uint64:       "Uint64",
	Float16:      "Float16",
	Float32:      "Float32",
	Float64:      "Float64",
	BFloat16:     "BFloat16",
	Complex64:    "Complex64",
	Complex128:   "Complex128",
}

// String implements fmt.Stringer.
func (dtype DType) String() string {
	if dtype < 0 || dtype >= numDTypes {
		return "DType(" + strconv.Itoa(int(dtype)) + ")"
	}
	return dtypeNames[dtype]
}
