// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

// DirectoryEntry describes one raw directory entry as found in a file:
// where the value lives and its shape, not the value itself.
type DirectoryEntry struct {
	tag    uint16
	typ    ValueType
	count  uint64
	offset uint64
}

// NewDirectoryEntry creates a DirectoryEntry. For values that fit inline,
// offset holds the raw inline field interpreted as an integer.
func NewDirectoryEntry(tag uint16, typ ValueType, count, offset uint64) DirectoryEntry {
	return DirectoryEntry{tag: tag, typ: typ, count: count, offset: offset}
}

func (e DirectoryEntry) Tag() uint16 {
	return e.tag
}

func (e DirectoryEntry) Type() ValueType {
	return e.typ
}

func (e DirectoryEntry) ValueCount() uint64 {
	return e.count
}

func (e DirectoryEntry) ValueOffset() uint64 {
	return e.offset
}

// ValueLength returns the number of bytes occupied by the value.
func (e DirectoryEntry) ValueLength() uint64 {
	return e.count * uint64(e.typ.Size())
}

// IsInline reports whether the value is stored in the entry itself.
func (e DirectoryEntry) IsInline(bigTIFF bool) bool {
	return e.ValueLength() <= inlineCapacity(bigTIFF)
}

// Compare orders entries with the larger value offset first:
// it returns 0 for equal offsets, 1 if e's offset is smaller than o's, else -1.
// Walking a sorted slice therefore visits the entry stored last in the file first.
func (e DirectoryEntry) Compare(o DirectoryEntry) int {
	if e.offset == o.offset {
		return 0
	}
	if e.offset < o.offset {
		return 1
	}
	return -1
}

func inlineCapacity(bigTIFF bool) uint64 {
	if bigTIFF {
		return 8
	}
	return 4
}
