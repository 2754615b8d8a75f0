// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

import (
	"math"

	"golang.org/x/text/encoding"
)

type encodeOptions struct {
	byteOrder    byteOrder
	bigTIFF      bool
	textEncoding encoding.Encoding
}

// encodedEntry is one directory entry in its on-disk form.
type encodedEntry struct {
	// entry is the 12 (classic) or 20 (BigTIFF) byte record.
	entry []byte
	// overflow holds the value if it did not fit inline.
	overflow []byte
	// lossy is set when text could not be represented in the text encoding.
	lossy bool
}

func (e encodedEntry) isInline() bool {
	return e.overflow == nil
}

func entrySize(bigTIFF bool) int {
	if bigTIFF {
		return 20
	}
	return 12
}

// directorySize returns the size of a directory with n entries, excluding its overflow.
func directorySize(n int, bigTIFF bool) int {
	if bigTIFF {
		return 16 + 20*n
	}
	return 6 + 12*n
}

func appendOffset(b []byte, v uint64, order byteOrder, bigTIFF bool) []byte {
	if bigTIFF {
		return order.AppendUint64(b, v)
	}
	return order.AppendUint32(b, uint32(v))
}

// encodeEntry renders tag and v as a directory entry. If the value does not
// fit in the inline field, the entry points at offset and the value bytes are
// returned as overflow. Doubles are always stored at offset.
func encodeEntry(tag Tag, v Value, offset uint64, opts encodeOptions) (encodedEntry, error) {
	if tag > math.MaxUint16 {
		return encodedEntry{}, newFormatErrorf("tag %s cannot be written to a directory", tag)
	}

	order := opts.byteOrder
	var (
		typ          ValueType
		count        int
		data         []byte
		alwaysOffset bool
		lossy        bool
	)

	switch vv := v.(type) {
	case Bytes:
		typ, count = TypeByte, len(vv)
		data = vv
	case ASCII:
		var b []byte
		b, lossy = encodeText(string(vv), opts.textEncoding)
		data = append(b, 0)
		typ, count = TypeASCII, len(data)
	case Shorts:
		typ, count = TypeShort, len(vv)
		data = make([]byte, 0, 2*len(vv))
		for _, s := range vv {
			data = order.AppendUint16(data, s)
		}
	case Longs:
		count = len(vv)
		if opts.bigTIFF {
			typ = TypeLong8
			data = make([]byte, 0, 8*len(vv))
			for _, l := range vv {
				data = order.AppendUint64(data, uint64(l))
			}
		} else {
			typ = TypeLong
			data = make([]byte, 0, 4*len(vv))
			for _, l := range vv {
				data = order.AppendUint32(data, uint32(l))
			}
		}
	case Rationals:
		typ, count = TypeRational, len(vv)
		data = make([]byte, 0, 8*len(vv))
		for _, r := range vv {
			data = order.AppendUint32(data, uint32(r.Num))
			data = order.AppendUint32(data, uint32(r.Den))
		}
	case Floats:
		typ, count = TypeFloat, len(vv)
		data = make([]byte, 0, 4*len(vv))
		for _, f := range vv {
			data = order.AppendUint32(data, math.Float32bits(f))
		}
	case Doubles:
		typ, count = TypeDouble, len(vv)
		data = make([]byte, 0, 8*len(vv))
		for _, f := range vv {
			data = order.AppendUint64(data, math.Float64bits(f))
		}
		alwaysOffset = true
	default:
		return encodedEntry{}, newFormatErrorf("unknown IFD value type (%T) for tag %s", v, tag)
	}

	capacity := int(inlineCapacity(opts.bigTIFF))
	e := make([]byte, 0, entrySize(opts.bigTIFF))
	e = order.AppendUint16(e, uint16(tag))
	e = order.AppendUint16(e, typ.Code())
	e = appendOffset(e, uint64(count), order, opts.bigTIFF)

	if len(data) <= capacity && !alwaysOffset {
		e = append(e, data...)
		e = append(e, make([]byte, capacity-len(data))...)
		return encodedEntry{entry: e, lossy: lossy}, nil
	}

	e = appendOffset(e, offset, order, opts.bigTIFF)
	if data == nil {
		data = []byte{}
	}
	return encodedEntry{entry: e, overflow: data, lossy: lossy}, nil
}

// encodeIFD renders d as a directory starting at file position fp:
// the entry count, the entries in ascending tag order, the next directory
// offset and the overflow region.
// It returns the tags whose text was encoded lossily.
func encodeIFD(d *IFD, fp, nextOffset uint64, opts encodeOptions) ([]byte, []Tag, error) {
	var tags []Tag
	for _, tag := range d.Tags() {
		if !tag.isPseudo() {
			tags = append(tags, tag)
		}
	}

	order := opts.byteOrder
	out := make([]byte, 0, directorySize(len(tags), opts.bigTIFF))
	if opts.bigTIFF {
		out = order.AppendUint64(out, uint64(len(tags)))
	} else {
		out = order.AppendUint16(out, uint16(len(tags)))
	}

	extra := getBuffer()
	defer putBuffer(extra)

	base := fp + uint64(directorySize(len(tags), opts.bigTIFF))
	var lossy []Tag
	for _, tag := range tags {
		enc, err := encodeEntry(tag, d.Get(tag), base+uint64(extra.Len()), opts)
		if err != nil {
			return nil, nil, err
		}
		if enc.lossy {
			lossy = append(lossy, tag)
		}
		out = append(out, enc.entry...)
		extra.Write(enc.overflow)
	}
	out = appendOffset(out, nextOffset, order, opts.bigTIFF)
	out = append(out, extra.Bytes()...)
	return out, lossy, nil
}

// encodeText converts s with enc. Characters enc cannot represent are
// replaced and reported with lossy set.
func encodeText(s string, enc encoding.Encoding) (b []byte, lossy bool) {
	if enc == nil {
		return []byte(s), false
	}
	out, err := enc.NewEncoder().String(s)
	if err == nil {
		return []byte(out), false
	}
	out, _ = encoding.ReplaceUnsupported(enc.NewEncoder()).String(s)
	return []byte(out), true
}
