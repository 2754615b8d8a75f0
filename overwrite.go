// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

import "math"

// placementKind says where an overwritten value ends up.
type placementKind int

const (
	// The new value is stored in the entry itself.
	placeInline placementKind = iota
	// The old value ended at the end of the file and is overwritten there.
	placeAtEOF
	// The new value is not larger than the old one and replaces it.
	placeInPlace
	// The new value is appended to the file; the old bytes are orphaned.
	placeAppend
)

func (k placementKind) String() string {
	switch k {
	case placeInline:
		return "inline"
	case placeAtEOF:
		return "at EOF"
	case placeInPlace:
		return "in place"
	default:
		return "append"
	}
}

type placement struct {
	kind   placementKind
	offset uint64
}

// OverwriteIFDValue replaces the value of tag in directory ifdIndex of an
// existing file, touching only that entry and, if needed, the value bytes.
// The byte order and BigTIFF mode are read from the file, not from Options.
// It reads from Options.R and writes to Options.W, which must be the same file.
func (w *Writer) OverwriteIFDValue(ifdIndex int, tag Tag, v Value) (err error) {
	if w.opts.R == nil {
		return newFormatError("no input stream bound")
	}
	sr := newStreamReader(w.opts.R)
	defer sr.recoverStop(&err)

	h := sr.parseHeader()
	ifdOffset := sr.locateIFD(h, ifdIndex)
	old, entryPos := sr.scanEntries(h, ifdOffset, tag)

	opts := encodeOptions{
		byteOrder:    orderOf(h.littleEndian),
		bigTIFF:      h.bigTIFF,
		textEncoding: w.opts.TextEncoding,
	}
	enc, err := encodeEntry(tag, v, old.ValueOffset(), opts)
	if err != nil {
		return err
	}
	if enc.lossy {
		w.opts.Warnf("%s: characters not representable in the text encoding were replaced", tag)
	}

	p := decidePlacement(old, enc, uint64(sr.length()), h.bigTIFF)
	w.warnOrphaned(tag, old, enc, p, h.bigTIFF)

	return w.patchEntry(h, entryPos, enc, p)
}

// OverwriteComment replaces the ImageDescription of the first directory.
func (w *Writer) OverwriteComment(comment string) error {
	return w.OverwriteIFDValue(0, TagImageDescription, ASCII(comment))
}

// OverwriteLastIFDOffset sets the next IFD offset of the last directory
// in the chain to 0, terminating the chain there.
// The last directory is found by walking the chain, so the result does not
// depend on the current position of the output.
func (w *Writer) OverwriteLastIFDOffset() (err error) {
	if w.opts.R == nil {
		return newFormatError("no input stream bound")
	}
	sr := newStreamReader(w.opts.R)
	defer sr.recoverStop(&err)

	h := sr.parseHeader()
	chain := sr.readIFDChain(h)
	if len(chain.offsets) == 0 {
		return newFormatError("no IFDs found")
	}

	out := &streamWriter{w: w.opts.W, byteOrder: orderOf(h.littleEndian)}
	out.seek(chain.lastNextField)
	out.writeOffset(0, h.bigTIFF)
	return out.err
}

// locateIFD returns the offset of directory index.
func (e *streamReader) locateIFD(h header, index int) uint64 {
	if index < 0 {
		e.stop(newFormatErrorf("no such IFD (%d)", index))
	}
	length := uint64(e.length())
	offset := h.firstIFDOffset
	for i := 0; ; i++ {
		if offset == 0 || offset >= length {
			e.stop(newFormatErrorf("no such IFD (%d of %d)", index, i))
		}
		if i == index {
			return offset
		}
		e.seek(e.nextField(h, offset))
		offset = e.readOffset(h.bigTIFF)
	}
}

// scanEntries finds tag in the directory at ifdOffset and returns
// the entry and its position in the file.
func (e *streamReader) scanEntries(h header, ifdOffset uint64, tag Tag) (DirectoryEntry, int64) {
	if tag <= math.MaxUint16 {
		e.seek(int64(ifdOffset))
		n := e.readCount(h)
		for j := uint64(0); j < n; j++ {
			pos := int64(ifdOffset) + h.countSize() + int64(j)*int64(entrySize(h.bigTIFF))
			e.seek(pos)
			entry, _ := e.readEntry(h)
			if entry.Tag() == uint16(tag) {
				return entry, pos
			}
		}
	}
	e.stop(newFormatErrorf("tag not found (%s)", tag))
	return DirectoryEntry{}, 0
}

// decidePlacement chooses where the new value goes. The order of the
// checks bounds file growth under repeated overwrites.
func decidePlacement(old DirectoryEntry, enc encodedEntry, fileLength uint64, bigTIFF bool) placement {
	oldInline := old.IsInline(bigTIFF)
	switch {
	case enc.isInline():
		return placement{kind: placeInline}
	case !oldInline && old.ValueOffset()+old.ValueLength() == fileLength:
		return placement{kind: placeAtEOF, offset: old.ValueOffset()}
	case !oldInline && uint64(len(enc.overflow)) <= old.ValueLength():
		return placement{kind: placeInPlace, offset: old.ValueOffset()}
	default:
		return placement{kind: placeAppend, offset: fileLength}
	}
}

func (w *Writer) warnOrphaned(tag Tag, old DirectoryEntry, enc encodedEntry, p placement, bigTIFF bool) {
	if old.IsInline(bigTIFF) {
		return
	}
	switch p.kind {
	case placeInline, placeAppend:
		w.opts.Warnf("%s: %d bytes at offset %d are no longer referenced", tag, old.ValueLength(), old.ValueOffset())
	case placeInPlace:
		if n := old.ValueLength() - uint64(len(enc.overflow)); n > 0 {
			w.opts.Warnf("%s: %d trailing bytes of the old value left at offset %d", tag, n, old.ValueOffset()+uint64(len(enc.overflow)))
		}
	}
}

// patchEntry rewrites the entry at entryPos and writes the overflow bytes, if any.
func (w *Writer) patchEntry(h header, entryPos int64, enc encodedEntry, p placement) error {
	order := orderOf(h.littleEndian)
	entry := enc.entry
	if !enc.isInline() {
		// tag(2) + type(2) + count(4|8)
		head := entrySize(h.bigTIFF) - int(inlineCapacity(h.bigTIFF))
		entry = appendOffset(append([]byte(nil), entry[:head]...), p.offset, order, h.bigTIFF)
	}

	out := &streamWriter{w: w.opts.W, byteOrder: order}
	out.seek(entryPos)
	out.write(entry)
	if !enc.isInline() {
		out.seek(int64(p.offset))
		out.write(enc.overflow)
	}
	return out.err
}
