// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestStripLayoutSingleChannel(t *testing.T) {
	c := qt.New(t)

	buf := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	for _, interleaved := range []bool{true, false} {
		l := newStripLayout(1, 4, 2, 1, 1, interleaved)
		c.Assert(l.stripSize, qt.Equals, 4)
		c.Assert(l.stripCount, qt.Equals, 2)
		c.Assert(l.pack(buf, 0, 2), qt.DeepEquals, [][]byte{{0, 1, 2, 3}, {4, 5, 6, 7}})
	}
}

func TestStripLayoutTwoChannels(t *testing.T) {
	c := qt.New(t)

	c.Run("Planar", func(c *qt.C) {
		// Two 2x2 planes.
		buf := []byte{'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h'}
		l := newStripLayout(1, 2, 2, 1, 2, false)
		c.Assert(l.stripCount, qt.Equals, 4)
		c.Assert(l.stripsPerChannel(), qt.Equals, 2)
		c.Assert(l.pack(buf, 0, 2), qt.DeepEquals, [][]byte{[]byte("ab"), []byte("cd"), []byte("ef"), []byte("gh")})
	})

	c.Run("Chunky", func(c *qt.C) {
		buf := []byte{'a', 'e', 'b', 'f', 'c', 'g', 'd', 'h'}
		l := newStripLayout(1, 2, 2, 1, 2, true)
		c.Assert(l.stripSize, qt.Equals, 4)
		c.Assert(l.stripCount, qt.Equals, 2)
		c.Assert(l.pack(buf, 0, 2), qt.DeepEquals, [][]byte{[]byte("aebf"), []byte("cgdh")})
	})

	c.Run("Chunky 16 bit", func(c *qt.C) {
		buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
		l := newStripLayout(2, 1, 2, 2, 2, true)
		c.Assert(l.stripCount, qt.Equals, 1)
		c.Assert(l.pack(buf, 0, 2), qt.DeepEquals, [][]byte{buf})
	})
}

func TestStripLayoutTile(t *testing.T) {
	c := qt.New(t)

	l := newStripLayout(2, 4, 3, 1, 1, true)
	c.Assert(l.stripCount, qt.Equals, 2)
	c.Assert(l.rowsInStrip(0), qt.Equals, 2)
	c.Assert(l.rowsInStrip(1), qt.Equals, 1)

	strips := l.pack([]byte{0, 1, 2, 3, 4, 5, 6, 7}, 0, 2)
	c.Assert(strips[0], qt.DeepEquals, []byte{0, 1, 2, 3, 4, 5, 6, 7})
	c.Assert(strips[1], qt.IsNil)

	strips = l.pack([]byte{8, 9, 10, 11}, 2, 1)
	c.Assert(strips[0], qt.IsNil)
	c.Assert(strips[1], qt.DeepEquals, []byte{8, 9, 10, 11})

	planar := newStripLayout(2, 1, 3, 1, 3, false)
	c.Assert(planar.stripCount, qt.Equals, 6)
	c.Assert(planar.rowsInStrip(4), qt.Equals, 2)
	c.Assert(planar.rowsInStrip(5), qt.Equals, 1)
}
