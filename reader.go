// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
)

const (
	byteOrderBigEndian    = 0x4d4d
	byteOrderLittleEndian = 0x4949

	magicClassic = 42
	magicBigTIFF = 43
)

// header is the parsed file header.
type header struct {
	littleEndian   bool
	bigTIFF        bool
	firstIFDOffset uint64
}

// firstIFDField returns the position of the first IFD offset field.
func (h header) firstIFDField() int64 {
	if h.bigTIFF {
		return 8
	}
	return 4
}

func (h header) countSize() int64 {
	if h.bigTIFF {
		return 8
	}
	return 2
}

// ifdChain lists the directories reachable from the header.
type ifdChain struct {
	offsets []uint64
	// lastNextField is the position of the next IFD offset field of the
	// last directory, or of the header field if there are no directories.
	lastNextField int64
}

// parseHeader reads the file header and sets the reader's byte order from it.
func (e *streamReader) parseHeader() header {
	e.seek(0)
	var h header
	switch e.read2() {
	case byteOrderBigEndian:
		e.byteOrder = binary.BigEndian
	case byteOrderLittleEndian:
		e.byteOrder = binary.LittleEndian
		h.littleEndian = true
	default:
		e.stop(newFormatError("invalid TIFF header"))
	}

	switch e.read2() {
	case magicClassic:
		h.firstIFDOffset = uint64(e.read4())
	case magicBigTIFF:
		h.bigTIFF = true
		if e.read2() != 8 || e.read2() != 0 {
			e.stop(newFormatError("invalid BigTIFF header"))
		}
		h.firstIFDOffset = e.read8()
	default:
		e.stop(newFormatError("invalid TIFF header"))
	}
	return h
}

// readIFDChain follows the next IFD offsets until one is zero or points past the end of the file.
func (e *streamReader) readIFDChain(h header) ifdChain {
	length := e.length()
	chain := ifdChain{lastNextField: h.firstIFDField()}
	seen := make(map[uint64]bool)

	for offset := h.firstIFDOffset; offset > 0 && offset < uint64(length); {
		if seen[offset] {
			e.stop(newFormatErrorf("IFD cycle detected at offset %d", offset))
		}
		seen[offset] = true
		chain.offsets = append(chain.offsets, offset)

		chain.lastNextField = e.nextField(h, offset)
		e.seek(chain.lastNextField)
		offset = e.readOffset(h.bigTIFF)
	}

	return chain
}

func (e *streamReader) readCount(h header) uint64 {
	if h.bigTIFF {
		return e.read8()
	}
	return uint64(e.read2())
}

// readEntry reads the directory entry at the current position.
// It returns the entry and the raw inline field.
func (e *streamReader) readEntry(h header) (DirectoryEntry, []byte) {
	tag := e.read2()
	code := e.read2()
	typ, err := ValueTypeFromCode(code)
	if err != nil {
		e.stop(err)
	}
	count := e.readOffset(h.bigTIFF)
	field := e.readBytes(int(inlineCapacity(h.bigTIFF)))

	var offset uint64
	if h.bigTIFF {
		offset = e.byteOrder.Uint64(field)
	} else {
		offset = uint64(e.byteOrder.Uint32(field))
	}
	return NewDirectoryEntry(tag, typ, count, offset), field
}

// readIFD reads the directory at offset into an IFD.
// Value types without a Value counterpart are mapped to the closest kind
// and their tags returned in retyped.
func (e *streamReader) readIFD(h header, offset uint64) (ifd *IFD, entries []DirectoryEntry, retyped []Tag) {
	length := uint64(e.length())
	e.seek(int64(offset))
	n := e.readCount(h)
	if n*uint64(entrySize(h.bigTIFF)) > length {
		e.stop(newFormatErrorf("IFD at %d has too many entries (%d)", offset, n))
	}

	ifd = NewIFD()
	ifd.Put(TagLittleEndian, Bool(h.littleEndian))
	ifd.Put(TagBigTIFF, Bool(h.bigTIFF))

	for i := uint64(0); i < n; i++ {
		e.seek(int64(offset) + h.countSize() + int64(i)*int64(entrySize(h.bigTIFF)))
		entry, field := e.readEntry(h)
		entries = append(entries, entry)

		size := entry.ValueLength()
		if entry.ValueCount() > length || size > length {
			e.stop(newFormatErrorf("value of tag %d is larger than the file", entry.Tag()))
		}
		data := field
		if size <= inlineCapacity(h.bigTIFF) {
			data = field[:size]
		} else {
			if entry.ValueOffset()+size > length {
				e.stop(newFormatErrorf("value of tag %d extends past end of file", entry.Tag()))
			}
			e.seek(int64(entry.ValueOffset()))
			data = e.readBytes(int(size))
		}

		v, exact := decodeValue(entry.Type(), data, e.byteOrder, h.bigTIFF)
		if !exact {
			retyped = append(retyped, Tag(entry.Tag()))
		}
		ifd.Put(Tag(entry.Tag()), v)
	}

	return ifd, entries, retyped
}

// decodeValue converts raw value bytes. exact is false if writing the value
// back would use a different type code.
func decodeValue(typ ValueType, data []byte, order binary.ByteOrder, bigTIFF bool) (v Value, exact bool) {
	size := int(typ.Size())
	count := len(data) / size
	switch typ {
	case TypeByte, TypeSByte, TypeUndefined:
		return Bytes(bytes.Clone(data)), typ == TypeByte
	case TypeASCII:
		return ASCII(bytes.TrimRight(data, "\x00")), true
	case TypeShort, TypeSShort:
		out := make(Shorts, count)
		for i := range out {
			out[i] = order.Uint16(data[2*i:])
		}
		return out, typ == TypeShort
	case TypeLong, TypeSLong, TypeIFD:
		out := make(Longs, count)
		for i := range out {
			u := order.Uint32(data[4*i:])
			if typ == TypeSLong {
				out[i] = int64(int32(u))
			} else {
				out[i] = int64(u)
			}
		}
		return out, typ == TypeLong && !bigTIFF
	case TypeLong8, TypeSLong8, TypeIFD8:
		out := make(Longs, count)
		for i := range out {
			out[i] = int64(order.Uint64(data[8*i:]))
		}
		return out, typ == TypeLong8 && bigTIFF
	case TypeRational, TypeSRational:
		out := make(Rationals, count)
		for i := range out {
			n, d := order.Uint32(data[8*i:]), order.Uint32(data[8*i+4:])
			if typ == TypeSRational {
				out[i] = NewRational(int64(int32(n)), int64(int32(d)))
			} else {
				out[i] = NewRational(int64(n), int64(d))
			}
		}
		return out, typ == TypeRational
	case TypeFloat:
		out := make(Floats, count)
		for i := range out {
			out[i] = math.Float32frombits(order.Uint32(data[4*i:]))
		}
		return out, true
	case TypeDouble:
		out := make(Doubles, count)
		for i := range out {
			out[i] = math.Float64frombits(order.Uint64(data[8*i:]))
		}
		return out, true
	}
	return Bytes(bytes.Clone(data)), false
}

// ReadComment returns the ImageDescription of the first directory in r.
// The text is returned as stored, without charset conversion.
func ReadComment(r io.ReadSeeker) (comment string, err error) {
	sr := newStreamReader(r)
	defer sr.recoverStop(&err)

	h := sr.parseHeader()
	chain := sr.readIFDChain(h)
	if len(chain.offsets) == 0 {
		return "", newFormatError("no IFDs found")
	}
	ifd, _, _ := sr.readIFD(h, chain.offsets[0])
	return ifd.ImageDescription(), nil
}

// nextField returns the position of the next IFD offset field of the directory at offset.
func (e *streamReader) nextField(h header, offset uint64) int64 {
	e.seek(int64(offset))
	n := e.readCount(h)
	return int64(offset) + h.countSize() + int64(n)*int64(entrySize(h.bigTIFF))
}
