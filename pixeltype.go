// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

import "fmt"

// PixelType is the sample type of the pixel buffers passed to the Writer.
type PixelType int

const (
	Int8 PixelType = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Float32
	Float64
)

// BytesPerPixel returns the size of one sample.
func (p PixelType) BytesPerPixel() int {
	switch p {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// IsFloatingPoint reports whether samples are IEEE floating point.
func (p PixelType) IsFloatingPoint() bool {
	return p == Float32 || p == Float64
}

func (p PixelType) String() string {
	switch p {
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Float32:
		return "float"
	case Float64:
		return "double"
	default:
		return fmt.Sprintf("PixelType(%d)", int(p))
	}
}
