// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave_test

import (
	"testing"

	"github.com/bep/tiffsave"
	qt "github.com/frankban/quicktest"
)

func TestIFDDefaults(t *testing.T) {
	c := qt.New(t)

	ifd := tiffsave.NewIFD()
	_, err := ifd.ImageWidth()
	c.Assert(err, qt.ErrorMatches, "tiffsave: missing ImageWidth")
	c.Assert(ifd.BitsPerSample(), qt.DeepEquals, []int{1})
	c.Assert(ifd.SamplesPerPixel(), qt.Equals, 1)
	c.Assert(ifd.Compression(), qt.Equals, tiffsave.CompressionNone)
	c.Assert(ifd.Predictor(), qt.Equals, 1)
	c.Assert(ifd.PlanarConfiguration(), qt.Equals, tiffsave.Chunky)
	c.Assert(ifd.RowsPerStrip(), qt.DeepEquals, []int64{1})
	c.Assert(ifd.StripOffsets(), qt.IsNil)
	c.Assert(ifd.ImageDescription(), qt.Equals, "")
	c.Assert(ifd.IsLittleEndian(), qt.IsFalse)
	c.Assert(ifd.IsBigTIFF(), qt.IsFalse)
}

func TestIFDAccessors(t *testing.T) {
	c := qt.New(t)

	ifd := tiffsave.NewIFD()
	ifd.Put(tiffsave.TagSoftware, tiffsave.ASCII("x"))
	ifd.Put(tiffsave.TagBigTIFF, tiffsave.Bool(true))
	ifd.Put(tiffsave.TagImageWidth, tiffsave.Short(640))
	ifd.Put(tiffsave.TagImageLength, tiffsave.Long(480))
	ifd.Put(tiffsave.TagBitsPerSample, tiffsave.Shorts{8, 8, 8})
	ifd.Put(tiffsave.TagCompression, tiffsave.Short(uint16(tiffsave.CompressionLZW)))
	ifd.Put(tiffsave.TagColorMap, tiffsave.Shorts{1, 2, 3})

	width, err := ifd.ImageWidth()
	c.Assert(err, qt.IsNil)
	c.Assert(width, qt.Equals, int64(640))
	length, err := ifd.ImageLength()
	c.Assert(err, qt.IsNil)
	c.Assert(length, qt.Equals, int64(480))
	c.Assert(ifd.BitsPerSample(), qt.DeepEquals, []int{8, 8, 8})
	c.Assert(ifd.Compression(), qt.Equals, tiffsave.CompressionLZW)
	c.Assert(ifd.ColorMap(), qt.DeepEquals, tiffsave.Shorts{1, 2, 3})
	c.Assert(ifd.IsBigTIFF(), qt.IsTrue)

	c.Assert(ifd.Len(), qt.Equals, 7)
	c.Assert(ifd.Tags(), qt.DeepEquals, []tiffsave.Tag{
		tiffsave.TagImageWidth,
		tiffsave.TagImageLength,
		tiffsave.TagBitsPerSample,
		tiffsave.TagCompression,
		tiffsave.TagSoftware,
		tiffsave.TagColorMap,
		tiffsave.TagBigTIFF,
	})

	clone := ifd.Clone()
	clone.Delete(tiffsave.TagSoftware)
	clone.Put(tiffsave.TagImageWidth, tiffsave.Short(1))
	c.Assert(ifd.Has(tiffsave.TagSoftware), qt.IsTrue)
	c.Assert(clone.Has(tiffsave.TagSoftware), qt.IsFalse)
	width, _ = ifd.ImageWidth()
	c.Assert(width, qt.Equals, int64(640))

	c.Assert(tiffsave.TagImageDescription.String(), qt.Equals, "ImageDescription")
	c.Assert(tiffsave.Tag(0x8769).String(), qt.Equals, "Tag(0x8769)")
}

func TestIFDValidate(t *testing.T) {
	c := qt.New(t)

	ifd := tiffsave.NewIFD()
	ifd.Put(tiffsave.TagImageLength, tiffsave.Short(0))
	ifd.Put(tiffsave.TagRowsPerStrip, tiffsave.Long(0))
	ifd.Put(tiffsave.TagStripOffsets, tiffsave.Longs{1, 2})
	ifd.Put(tiffsave.TagStripByteCounts, tiffsave.Longs{1})

	err := ifd.Validate()
	c.Assert(tiffsave.IsFormatError(err), qt.IsTrue)
	c.Assert(err, qt.ErrorMatches, `(?s).*4 errors occurred.*missing ImageWidth.*ImageLength must be positive, got 0.*RowsPerStrip must be positive, got 0.*2 StripOffsets but 1 StripByteCounts.*`)

	ifd = tiffsave.NewIFD()
	ifd.Put(tiffsave.TagImageWidth, tiffsave.Short(1))
	ifd.Put(tiffsave.TagImageLength, tiffsave.Short(1))
	c.Assert(ifd.Validate(), qt.IsNil)
}
