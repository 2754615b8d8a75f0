// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave_test

import (
	"encoding"
	"math"
	"testing"

	"github.com/bep/tiffsave"

	qt "github.com/frankban/quicktest"
)

func TestRational(t *testing.T) {
	c := qt.New(t)

	c.Run("Accessors", func(c *qt.C) {
		r := tiffsave.NewRational(3, 4)
		c.Assert(r.Numerator(), qt.Equals, int64(3))
		c.Assert(r.Denominator(), qt.Equals, int64(4))
		c.Assert(r.Float64(), qt.Equals, 0.75)
		c.Assert(r.Int64(), qt.Equals, int64(0))
		c.Assert(tiffsave.NewRational(-7, 2).Int64(), qt.Equals, int64(-3))
	})

	c.Run("Zero denominator saturates", func(c *qt.C) {
		r := tiffsave.NewRational(1, 0)
		c.Assert(r.Float64(), qt.Equals, math.MaxFloat64)
		c.Assert(r.Int64(), qt.Equals, int64(math.MaxInt64))
	})

	c.Run("Compare", func(c *qt.C) {
		half := tiffsave.NewRational(1, 2)
		c.Assert(half.Compare(tiffsave.NewRational(2, 4)), qt.Equals, 0)
		c.Assert(half.Equal(tiffsave.NewRational(2, 4)), qt.IsTrue)
		c.Assert(half == tiffsave.NewRational(2, 4), qt.IsFalse)
		c.Assert(half.Compare(tiffsave.NewRational(2, 3)), qt.Equals, -1)
		c.Assert(tiffsave.NewRational(2, 3).Compare(half), qt.Equals, 1)

		// The cross product difference is far outside the int32 range.
		big := tiffsave.NewRational(math.MaxInt32, 1)
		small := tiffsave.NewRational(-math.MaxInt32, 1)
		c.Assert(big.Compare(small), qt.Equals, 1)
		c.Assert(small.Compare(big), qt.Equals, -1)
	})

	c.Run("Reduce", func(c *qt.C) {
		r := tiffsave.NewRational(12, 16)
		r.Reduce()
		c.Assert(r, qt.Equals, tiffsave.NewRational(3, 4))

		r = tiffsave.NewRational(36, 48)
		r.Reduce()
		c.Assert(r, qt.Equals, tiffsave.NewRational(3, 4))

		r = tiffsave.NewRational(-12, 16)
		r.Reduce()
		c.Assert(r, qt.Equals, tiffsave.NewRational(-3, 4))

		// The search starts at the smaller square root, so the common
		// divisor 3 of 6/9 is above the bound of 2 and not found.
		r = tiffsave.NewRational(6, 9)
		r.Reduce()
		c.Assert(r, qt.Equals, tiffsave.NewRational(6, 9))

		r = tiffsave.NewRational(5, 0)
		r.Reduce()
		c.Assert(r, qt.Equals, tiffsave.NewRational(5, 0))
	})

	c.Run("MarshalText", func(c *qt.C) {
		text, err := tiffsave.NewRational(1, 2).MarshalText()
		c.Assert(err, qt.IsNil)
		c.Assert(string(text), qt.Equals, "1/2")
		c.Assert(tiffsave.NewRational(4, 1).String(), qt.Equals, "4")
	})

	c.Run("UnmarshalText", func(c *qt.C) {
		var r tiffsave.Rational
		var u encoding.TextUnmarshaler = &r
		c.Assert(u.UnmarshalText([]byte("3/4")), qt.IsNil)
		c.Assert(r, qt.Equals, tiffsave.NewRational(3, 4))
		c.Assert(u.UnmarshalText([]byte("4")), qt.IsNil)
		c.Assert(r, qt.Equals, tiffsave.NewRational(4, 1))
		c.Assert(u.UnmarshalText([]byte("x/y")), qt.ErrorMatches, `failed to parse "x/y" as a rational number.*`)
	})
}
