package structure

import (
	"bytes"
	"math"
	"strconv"
	"unicode/utf8"
	"unsafe"
)

// ScalarKind tells which primitive a Scalar was built from.
type ScalarKind uint8

// Scalar kinds, one per constructor. ScalarNone and ScalarUnit always
// carry empty text.
const (
	ScalarString ScalarKind = iota // String
	ScalarBytes                    // Bytes
	ScalarBool                     // Bool
	ScalarInt                      // Int
	ScalarUint                     // Uint
	ScalarFloat                    // Float and Float32
	ScalarChar                     // Char
	ScalarNone                     // None, an absent optional
	ScalarUnit                     // Unit
)

var scalarKindNames = [...]string{"string", "bytes", "bool", "int", "uint", "float", "char", "none", "unit"}

func (k ScalarKind) String() string {
	if int(k) < len(scalarKindNames) {
		return scalarKindNames[k]
	}
	return "unknown"
}

// Scalar is a single value with a textual representation.
type Scalar struct {
	kind ScalarKind
	text []byte
}

// Accept implements Value.
func (s Scalar) Accept(v Visitor) error { return v.VisitScalar(s) }

// Kind returns the primitive the scalar was built from.
func (s Scalar) Kind() ScalarKind { return s.kind }

// Text returns the scalar's textual form. The slice must not be modified.
func (s Scalar) Text() []byte { return s.text }

// IsEmpty reports whether the scalar renders as an empty field.
func (s Scalar) IsEmpty() bool { return len(s.text) == 0 }

// String returns a scalar holding s.
func String(s string) Scalar {
	// read-only view; Scalar never writes to text
	return Scalar{kind: ScalarString, text: unsafe.Slice(unsafe.StringData(s), len(s))}
}

// Bytes returns a scalar holding b verbatim.
func Bytes(b []byte) Scalar { return Scalar{kind: ScalarBytes, text: b} }

// Bool returns "true" or "false".
func Bool(b bool) Scalar {
	return Scalar{kind: ScalarBool, text: strconv.AppendBool(nil, b)}
}

// Int returns the decimal form of i.
func Int(i int64) Scalar {
	return Scalar{kind: ScalarInt, text: strconv.AppendInt(nil, i, 10)}
}

// Uint returns the decimal form of u.
func Uint(u uint64) Scalar {
	return Scalar{kind: ScalarUint, text: strconv.AppendUint(nil, u, 10)}
}

// Float returns the shortest form of f that round-trips as a float64.
func Float(f float64) Scalar {
	return Scalar{kind: ScalarFloat, text: appendFloat(nil, f, 64)}
}

// Float32 is Float for float32 values.
func Float32(f float32) Scalar {
	return Scalar{kind: ScalarFloat, text: appendFloat(nil, float64(f), 32)}
}

// Char returns the UTF-8 encoding of r.
func Char(r rune) Scalar {
	return Scalar{kind: ScalarChar, text: utf8.AppendRune(nil, r)}
}

// None is an absent optional value. It renders as an empty field.
func None() Scalar { return Scalar{kind: ScalarNone} }

// Unit is a value without content. It renders as an empty field.
func Unit() Scalar { return Scalar{kind: ScalarUnit} }

// appendFloat writes the shortest digits that round-trip. Magnitudes in
// [1e-5, 1e16) use decimal form, with ".0" kept on integral values; the
// upper bound is 1e13 for float32. Everything else uses exponent form with
// an unsigned, unpadded exponent unless it is negative: 1e21, 1.5e-10.
func appendFloat(dst []byte, f float64, bits int) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "NaN"...)
	case math.IsInf(f, 1):
		return append(dst, "inf"...)
	case math.IsInf(f, -1):
		return append(dst, "-inf"...)
	}

	start := len(dst)
	dst = strconv.AppendFloat(dst, f, 'e', -1, bits)
	mark := start + bytes.IndexByte(dst[start:], 'e')
	exp, _ := strconv.Atoi(string(dst[mark+1:]))

	maxExp := 15
	if bits == 32 {
		maxExp = 12
	}
	if f == 0 || (exp >= -5 && exp <= maxExp) {
		dst = strconv.AppendFloat(dst[:start], f, 'f', -1, bits)
		if bytes.IndexByte(dst[start:], '.') < 0 {
			dst = append(dst, ".0"...)
		}
		return dst
	}

	dst = dst[:mark+1]
	if exp < 0 {
		dst = append(dst, '-')
		exp = -exp
	}
	return strconv.AppendInt(dst, int64(exp), 10)
}
