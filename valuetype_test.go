// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/bep/tiffsave"

	qt "github.com/frankban/quicktest"
)

func TestValueTypeFromCode(t *testing.T) {
	c := qt.New(t)

	sizes := map[uint16]uint32{
		1: 1, 2: 1, 3: 2, 4: 4, 5: 8, 6: 1, 7: 1, 8: 2, 9: 4, 10: 8, 11: 4, 12: 8, 13: 4,
		16: 8, 17: 8, 18: 8,
	}
	for code, size := range sizes {
		typ, err := tiffsave.ValueTypeFromCode(code)
		c.Assert(err, qt.IsNil)
		c.Assert(typ.Code(), qt.Equals, code)
		c.Assert(typ.Size(), qt.Equals, size, qt.Commentf("type %s", typ))
	}

	for _, code := range []uint16{0, 14, 15, 19, 0xffff} {
		_, err := tiffsave.ValueTypeFromCode(code)
		var ute *tiffsave.UnknownTypeError
		c.Assert(errors.As(err, &ute), qt.IsTrue)
		c.Assert(ute.Code, qt.Equals, code)
	}

	c.Assert(tiffsave.TypeLong8.String(), qt.Equals, "LONG8")
	c.Assert(tiffsave.ValueType(99).String(), qt.Equals, "ValueType(99)")
}

func TestDirectoryEntry(t *testing.T) {
	c := qt.New(t)

	e100 := tiffsave.NewDirectoryEntry(270, tiffsave.TypeASCII, 20, 100)
	e100b := tiffsave.NewDirectoryEntry(271, tiffsave.TypeShort, 1, 100)
	e200 := tiffsave.NewDirectoryEntry(273, tiffsave.TypeLong, 10, 200)

	c.Assert(e100.Tag(), qt.Equals, uint16(270))
	c.Assert(e100.Type(), qt.Equals, tiffsave.TypeASCII)
	c.Assert(e100.ValueCount(), qt.Equals, uint64(20))
	c.Assert(e100.ValueOffset(), qt.Equals, uint64(100))
	c.Assert(e200.ValueLength(), qt.Equals, uint64(40))

	c.Assert(e100.Compare(e200) > 0, qt.IsTrue)
	c.Assert(e200.Compare(e100) < 0, qt.IsTrue)
	c.Assert(e100.Compare(e100b), qt.Equals, 0)

	entries := []tiffsave.DirectoryEntry{e100, e200}
	slices.SortFunc(entries, tiffsave.DirectoryEntry.Compare)
	c.Assert(entries[0].ValueOffset(), qt.Equals, uint64(200))

	c.Assert(tiffsave.NewDirectoryEntry(1, tiffsave.TypeShort, 2, 0).IsInline(false), qt.IsTrue)
	c.Assert(tiffsave.NewDirectoryEntry(1, tiffsave.TypeShort, 3, 0).IsInline(false), qt.IsFalse)
	c.Assert(tiffsave.NewDirectoryEntry(1, tiffsave.TypeShort, 4, 0).IsInline(true), qt.IsTrue)
}
