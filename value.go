// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

// Value is a tag value. Scalars are represented as one-element arrays,
// use Byte, Short, Long, Rat, Float and Double to create them.
type Value interface {
	// Len returns the number of elements.
	Len() int

	isValue()
}

type (
	// Bytes is written as BYTE.
	Bytes []byte
	// ASCII is written as a NUL terminated ASCII value.
	ASCII string
	// Shorts is written as SHORT.
	Shorts []uint16
	// Longs is written as LONG in classic TIFF and as LONG8 in BigTIFF.
	Longs []int64
	// Rationals is written as RATIONAL.
	Rationals []Rational
	// Floats is written as FLOAT.
	Floats []float32
	// Doubles is written as DOUBLE.
	Doubles []float64

	// Bool is only used for the writer hints TagLittleEndian and TagBigTIFF.
	// It has no on-disk representation.
	Bool bool
)

// Byte returns a single BYTE value.
func Byte(v byte) Bytes { return Bytes{v} }

// Short returns a single SHORT value.
func Short(v uint16) Shorts { return Shorts{v} }

// Long returns a single LONG (LONG8 in BigTIFF) value.
func Long(v int64) Longs { return Longs{v} }

// Rat returns a single RATIONAL value num/den.
func Rat(num, den int64) Rationals { return Rationals{NewRational(num, den)} }

// Float returns a single FLOAT value.
func Float(v float32) Floats { return Floats{v} }

// Double returns a single DOUBLE value.
func Double(v float64) Doubles { return Doubles{v} }

func (v Bytes) Len() int     { return len(v) }
func (v ASCII) Len() int     { return len(v) }
func (v Shorts) Len() int    { return len(v) }
func (v Longs) Len() int     { return len(v) }
func (v Rationals) Len() int { return len(v) }
func (v Floats) Len() int    { return len(v) }
func (v Doubles) Len() int   { return len(v) }
func (v Bool) Len() int      { return 1 }

func (Bytes) isValue()     {}
func (ASCII) isValue()     {}
func (Shorts) isValue()    {}
func (Longs) isValue()     {}
func (Rationals) isValue() {}
func (Floats) isValue()    {}
func (Doubles) isValue()   {}
func (Bool) isValue()      {}

// toInts converts integer valued arrays to ints.
func toInts(v Value) ([]int64, bool) {
	switch vv := v.(type) {
	case Bytes:
		out := make([]int64, len(vv))
		for i, b := range vv {
			out[i] = int64(b)
		}
		return out, true
	case Shorts:
		out := make([]int64, len(vv))
		for i, s := range vv {
			out[i] = int64(s)
		}
		return out, true
	case Longs:
		return append([]int64(nil), vv...), true
	default:
		return nil, false
	}
}
