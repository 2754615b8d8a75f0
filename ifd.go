// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

import (
	"fmt"
	"maps"
	"slices"

	"github.com/hashicorp/go-multierror"
)

// Tag is a directory tag id. Real tags fit in 16 bits; the writer hints
// TagLittleEndian and TagBigTIFF live above that range and are never written.
type Tag uint32

const (
	TagNewSubfileType            Tag = 0x00fe
	TagImageWidth                Tag = 0x0100
	TagImageLength               Tag = 0x0101
	TagBitsPerSample             Tag = 0x0102
	TagCompression               Tag = 0x0103
	TagPhotometricInterpretation Tag = 0x0106
	TagImageDescription          Tag = 0x010e
	TagStripOffsets              Tag = 0x0111
	TagSamplesPerPixel           Tag = 0x0115
	TagRowsPerStrip              Tag = 0x0116
	TagStripByteCounts           Tag = 0x0117
	TagXResolution               Tag = 0x011a
	TagYResolution               Tag = 0x011b
	TagPlanarConfiguration       Tag = 0x011c
	TagResolutionUnit            Tag = 0x0128
	TagSoftware                  Tag = 0x0131
	TagDateTime                  Tag = 0x0132
	TagPredictor                 Tag = 0x013d
	TagColorMap                  Tag = 0x0140
	TagTileWidth                 Tag = 0x0142
	TagTileLength                Tag = 0x0143
	TagSampleFormat              Tag = 0x0153

	TagLittleEndian Tag = 500000
	TagBigTIFF      Tag = 500001
)

var tagNames = map[Tag]string{
	TagNewSubfileType:            "NewSubfileType",
	TagImageWidth:                "ImageWidth",
	TagImageLength:               "ImageLength",
	TagBitsPerSample:             "BitsPerSample",
	TagCompression:               "Compression",
	TagPhotometricInterpretation: "PhotometricInterpretation",
	TagImageDescription:          "ImageDescription",
	TagStripOffsets:              "StripOffsets",
	TagSamplesPerPixel:           "SamplesPerPixel",
	TagRowsPerStrip:              "RowsPerStrip",
	TagStripByteCounts:           "StripByteCounts",
	TagXResolution:               "XResolution",
	TagYResolution:               "YResolution",
	TagPlanarConfiguration:       "PlanarConfiguration",
	TagResolutionUnit:            "ResolutionUnit",
	TagSoftware:                  "Software",
	TagDateTime:                  "DateTime",
	TagPredictor:                 "Predictor",
	TagColorMap:                  "ColorMap",
	TagTileWidth:                 "TileWidth",
	TagTileLength:                "TileLength",
	TagSampleFormat:              "SampleFormat",
	TagLittleEndian:              "LittleEndian",
	TagBigTIFF:                   "BigTIFF",
}

func (t Tag) String() string {
	if s, ok := tagNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Tag(0x%04x)", uint32(t))
}

// isPseudo reports whether t is a writer hint with no on-disk entry.
func (t Tag) isPseudo() bool {
	return t == TagLittleEndian || t == TagBigTIFF
}

// PlanarConfiguration tells how channel samples are laid out.
type PlanarConfiguration int

const (
	// Chunky interleaves the channel samples of each pixel.
	Chunky PlanarConfiguration = 1
	// Planar stores each channel in its own range of strips.
	Planar PlanarConfiguration = 2
)

// Photometric interpretations set by the writer.
const (
	photometricBlackIsZero = 1
	photometricRGB         = 2
	photometricPalette     = 3
)

const sampleFormatIEEEFP = 3

// IFD holds the tag values of one image file directory.
// An IFD must not be used by more than one Writer at a time.
type IFD struct {
	values map[Tag]Value
}

// NewIFD returns an empty IFD.
func NewIFD() *IFD {
	return &IFD{values: make(map[Tag]Value)}
}

// Put sets the value for tag.
func (d *IFD) Put(tag Tag, v Value) {
	if d.values == nil {
		d.values = make(map[Tag]Value)
	}
	d.values[tag] = v
}

// Get returns the value for tag, or nil.
func (d *IFD) Get(tag Tag) Value {
	return d.values[tag]
}

// Has reports whether tag is set.
func (d *IFD) Has(tag Tag) bool {
	_, ok := d.values[tag]
	return ok
}

// Delete removes tag.
func (d *IFD) Delete(tag Tag) {
	delete(d.values, tag)
}

// Len returns the number of keys, pseudo-tags included.
func (d *IFD) Len() int {
	return len(d.values)
}

// Tags returns all keys in ascending order, pseudo-tags included.
func (d *IFD) Tags() []Tag {
	return slices.Sorted(maps.Keys(d.values))
}

// Clone returns a shallow copy of d.
func (d *IFD) Clone() *IFD {
	return &IFD{values: maps.Clone(d.values)}
}

// ImageWidth returns the required ImageWidth tag.
func (d *IFD) ImageWidth() (int64, error) {
	return d.requiredInt(TagImageWidth)
}

// ImageLength returns the required ImageLength tag.
func (d *IFD) ImageLength() (int64, error) {
	return d.requiredInt(TagImageLength)
}

// BitsPerSample returns one entry per channel, defaulting to [1].
func (d *IFD) BitsPerSample() []int {
	v, ok := d.ints(TagBitsPerSample)
	if !ok || len(v) == 0 {
		return []int{1}
	}
	out := make([]int, len(v))
	for i, b := range v {
		out[i] = int(b)
	}
	return out
}

// SamplesPerPixel defaults to 1.
func (d *IFD) SamplesPerPixel() int {
	return int(d.intOr(TagSamplesPerPixel, 1))
}

// Compression defaults to None.
func (d *IFD) Compression() Compression {
	return Compression(d.intOr(TagCompression, int64(CompressionNone)))
}

// Predictor defaults to 1 (no prediction).
func (d *IFD) Predictor() int {
	return int(d.intOr(TagPredictor, 1))
}

// PlanarConfiguration defaults to Chunky.
func (d *IFD) PlanarConfiguration() PlanarConfiguration {
	return PlanarConfiguration(d.intOr(TagPlanarConfiguration, int64(Chunky)))
}

// RowsPerStrip defaults to [1].
func (d *IFD) RowsPerStrip() []int64 {
	v, ok := d.ints(TagRowsPerStrip)
	if !ok || len(v) == 0 {
		return []int64{1}
	}
	return v
}

// StripOffsets returns nil if the tag is not set.
func (d *IFD) StripOffsets() []int64 {
	v, _ := d.ints(TagStripOffsets)
	return v
}

// StripByteCounts returns nil if the tag is not set.
func (d *IFD) StripByteCounts() []int64 {
	v, _ := d.ints(TagStripByteCounts)
	return v
}

// ImageDescription returns the ImageDescription tag, or "".
func (d *IFD) ImageDescription() string {
	s, _ := d.values[TagImageDescription].(ASCII)
	return string(s)
}

// ColorMap returns the ColorMap tag, or nil.
func (d *IFD) ColorMap() Shorts {
	s, _ := d.values[TagColorMap].(Shorts)
	return s
}

// IsLittleEndian returns the TagLittleEndian hint, defaulting to false.
func (d *IFD) IsLittleEndian() bool {
	b, _ := d.values[TagLittleEndian].(Bool)
	return bool(b)
}

// IsBigTIFF returns the TagBigTIFF hint, defaulting to false.
func (d *IFD) IsBigTIFF() bool {
	b, _ := d.values[TagBigTIFF].(Bool)
	return bool(b)
}

// Validate checks the tags needed to lay out image data and reports
// every problem found.
func (d *IFD) Validate() error {
	var err error
	for _, tag := range []Tag{TagImageWidth, TagImageLength} {
		v, e := d.requiredInt(tag)
		if e != nil {
			err = multierror.Append(err, e)
		} else if v <= 0 {
			err = multierror.Append(err, fmt.Errorf("%s must be positive, got %d", tag, v))
		}
	}
	if pc := d.PlanarConfiguration(); pc != Chunky && pc != Planar {
		err = multierror.Append(err, fmt.Errorf("invalid PlanarConfiguration %d", pc))
	}
	if rps := d.RowsPerStrip(); rps[0] <= 0 {
		err = multierror.Append(err, fmt.Errorf("RowsPerStrip must be positive, got %d", rps[0]))
	}
	if p := d.Predictor(); p != 1 && p != 2 {
		err = multierror.Append(err, fmt.Errorf("unknown Predictor %d", p))
	}
	offsets, counts := d.StripOffsets(), d.StripByteCounts()
	if offsets != nil && counts != nil && len(offsets) != len(counts) {
		err = multierror.Append(err, fmt.Errorf("%d StripOffsets but %d StripByteCounts", len(offsets), len(counts)))
	}
	if err != nil {
		return wrapFormatError("invalid IFD", err)
	}
	return nil
}

func (d *IFD) ints(tag Tag) ([]int64, bool) {
	v, ok := d.values[tag]
	if !ok {
		return nil, false
	}
	return toInts(v)
}

func (d *IFD) intOr(tag Tag, def int64) int64 {
	v, ok := d.ints(tag)
	if !ok || len(v) == 0 {
		return def
	}
	return v[0]
}

func (d *IFD) requiredInt(tag Tag) (int64, error) {
	v, ok := d.ints(tag)
	if !ok || len(v) == 0 {
		return 0, newFormatErrorf("missing %s", tag)
	}
	return v[0], nil
}
