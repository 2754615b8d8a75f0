// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

import "fmt"

// ValueType is a TIFF field type as stored in the type field of a directory entry.
type ValueType uint16

const (
	TypeByte      ValueType = 1
	TypeASCII     ValueType = 2
	TypeShort     ValueType = 3
	TypeLong      ValueType = 4
	TypeRational  ValueType = 5
	TypeSByte     ValueType = 6
	TypeUndefined ValueType = 7
	TypeSShort    ValueType = 8
	TypeSLong     ValueType = 9
	TypeSRational ValueType = 10
	TypeFloat     ValueType = 11
	TypeDouble    ValueType = 12
	TypeIFD       ValueType = 13

	// BigTIFF only.
	TypeLong8  ValueType = 16
	TypeSLong8 ValueType = 17
	TypeIFD8   ValueType = 18
)

// Size in bytes of each type.
var valueTypeSize = map[ValueType]uint32{
	TypeByte:      1,
	TypeASCII:     1,
	TypeShort:     2,
	TypeLong:      4,
	TypeRational:  8,
	TypeSByte:     1,
	TypeUndefined: 1,
	TypeSShort:    2,
	TypeSLong:     4,
	TypeSRational: 8,
	TypeFloat:     4,
	TypeDouble:    8,
	TypeIFD:       4,
	TypeLong8:     8,
	TypeSLong8:    8,
	TypeIFD8:      8,
}

var valueTypeNames = map[ValueType]string{
	TypeByte:      "BYTE",
	TypeASCII:     "ASCII",
	TypeShort:     "SHORT",
	TypeLong:      "LONG",
	TypeRational:  "RATIONAL",
	TypeSByte:     "SBYTE",
	TypeUndefined: "UNDEFINED",
	TypeSShort:    "SSHORT",
	TypeSLong:     "SLONG",
	TypeSRational: "SRATIONAL",
	TypeFloat:     "FLOAT",
	TypeDouble:    "DOUBLE",
	TypeIFD:       "IFD",
	TypeLong8:     "LONG8",
	TypeSLong8:    "SLONG8",
	TypeIFD8:      "IFD8",
}

// ValueTypeFromCode returns the ValueType for code, or an *UnknownTypeError.
func ValueTypeFromCode(code uint16) (ValueType, error) {
	typ := ValueType(code)
	if _, ok := valueTypeSize[typ]; !ok {
		return 0, &UnknownTypeError{Code: code}
	}
	return typ, nil
}

// Code returns the numeric code written to files.
func (t ValueType) Code() uint16 {
	return uint16(t)
}

// Size returns the number of bytes per element, or 0 for unknown types.
func (t ValueType) Size() uint32 {
	return valueTypeSize[t]
}

func (t ValueType) String() string {
	if s, ok := valueTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ValueType(%d)", uint16(t))
}
