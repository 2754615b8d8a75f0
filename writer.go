// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

import (
	"cmp"
	"io"
	"slices"

	"golang.org/x/text/encoding"
)

// DefaultSoftware is written to the Software tag when the IFD has none.
const DefaultSoftware = "tiffsave"

// Options contains the options for NewWriter.
type Options struct {
	// The output (typically a *os.File) to write to.
	W io.WriteSeeker

	// The input to read previously written directories from.
	// This is usually the same file as W.
	// Required by WriteImage, WriteImageTile and the Overwrite methods.
	R io.ReadSeeker

	// Write little endian (II) files. The default is big endian (MM).
	LittleEndian bool

	// Write BigTIFF files with 64-bit offsets.
	BigTIFF bool

	// If set, WriteImage never reads back existing directories and always
	// appends the next directory at the end of the output.
	SequentialWrite bool

	// Software is written to the Software tag if not already set.
	// Default value is DefaultSoftware.
	Software string

	// TextEncoding is used to encode ASCII values.
	// If not set, the bytes of the Go string are written as-is.
	TextEncoding encoding.Encoding

	// Compressor compresses strips.
	// If not set, DefaultCompressor is used.
	Compressor Compressor

	// Warnf will be called for each warning.
	Warnf func(string, ...any)
}

// Writer writes TIFF and BigTIFF directories and image strips.
// A Writer must not be used concurrently. After an I/O error the output
// is left partially written and all further writes fail with the same error.
type Writer struct {
	opts Options
	out  *streamWriter
}

// NewWriter creates a new Writer.
func NewWriter(opts Options) (*Writer, error) {
	if opts.W == nil {
		return nil, newFormatError("no writer provided")
	}
	if opts.Software == "" {
		opts.Software = DefaultSoftware
	}
	if opts.Compressor == nil {
		opts.Compressor = DefaultCompressor
	}
	if opts.Warnf == nil {
		opts.Warnf = func(string, ...any) {}
	}

	return &Writer{
		opts: opts,
		out: &streamWriter{
			w:         opts.W,
			byteOrder: orderOf(opts.LittleEndian),
		},
	}, nil
}

func (w *Writer) encodeOptions() encodeOptions {
	return encodeOptions{
		byteOrder:    w.out.byteOrder,
		bigTIFF:      w.opts.BigTIFF,
		textEncoding: w.opts.TextEncoding,
	}
}

// WriteHeader writes the file header at the start of the output.
// The first directory is expected at offset 8 (classic) or 16 (BigTIFF).
func (w *Writer) WriteHeader() error {
	out := w.out
	out.seek(0)

	marker := byte('M')
	if w.opts.LittleEndian {
		marker = 'I'
	}
	out.write1(marker)
	out.write1(marker)

	if w.opts.BigTIFF {
		out.write2(magicBigTIFF)
		// Bytesize of offsets, always 8, followed by a zero.
		out.write2(8)
		out.write2(0)
		out.write8(16)
	} else {
		out.write2(magicClassic)
		out.write4(8)
	}

	return out.err
}

// WriteIFD writes ifd at the current output position, followed by its
// overflow region. nextOffset is the offset of the following directory, or 0.
func (w *Writer) WriteIFD(ifd *IFD, nextOffset uint64) error {
	if ifd == nil {
		return newFormatError("IFD cannot be nil")
	}
	fp := w.out.pos()
	if w.out.err != nil {
		return w.out.err
	}
	return w.writeIFD(ifd, fp, nextOffset)
}

func (w *Writer) writeIFD(ifd *IFD, fp int64, nextOffset uint64) error {
	b, lossy, err := encodeIFD(ifd, uint64(fp), nextOffset, w.encodeOptions())
	if err != nil {
		return err
	}
	for _, tag := range lossy {
		w.opts.Warnf("%s: characters not representable in the text encoding were replaced", tag)
	}
	w.out.write(b)
	return w.out.err
}

// WriteImage writes the full image in buf as image number no.
// The IFD must have ImageWidth and ImageLength set.
// If last is set the directory terminates the IFD chain.
func (w *Writer) WriteImage(buf []byte, ifd *IFD, no int, pixelType PixelType, last bool) error {
	if ifd == nil {
		return newFormatError("IFD cannot be nil")
	}
	width, err := ifd.ImageWidth()
	if err != nil {
		return err
	}
	length, err := ifd.ImageLength()
	if err != nil {
		return err
	}
	return w.WriteImageTile(buf, ifd, no, pixelType, 0, 0, int(width), int(length), last)
}

// WriteImageTile writes the rows y to y+height of image number no.
// The tile must span the full image width.
// Strips not covered by the tile keep the data already written for them.
func (w *Writer) WriteImageTile(buf []byte, ifd *IFD, no int, pixelType PixelType, x, y, width, height int, last bool) error {
	if buf == nil {
		return newFormatError("image data cannot be nil")
	}
	if w.opts.R == nil {
		return newFormatError("no input stream bound; an input is required to update strip offsets")
	}
	if ifd == nil {
		return newFormatError("IFD cannot be nil")
	}
	if no < 0 {
		return newFormatErrorf("invalid image number %d", no)
	}

	if !ifd.Has(TagImageWidth) {
		ifd.Put(TagImageWidth, Long(int64(width)))
	}
	if !ifd.Has(TagImageLength) {
		ifd.Put(TagImageLength, Long(int64(y+height)))
	}
	imageWidth, _ := ifd.ImageWidth()
	if x != 0 || int64(width) != imageWidth {
		return newFormatErrorf("tile of width %d at x=%d does not span the image width %d; partial-width tiles are not supported", width, x, imageWidth)
	}
	if width <= 0 || height <= 0 || y < 0 {
		return newFormatErrorf("invalid tile %dx%d at y=%d", width, height, y)
	}

	bpp := pixelType.BytesPerPixel()
	if bpp == 0 {
		return newFormatErrorf("unsupported pixel type %s", pixelType)
	}
	nChannels := len(buf) / (width * height * bpp)
	if nChannels == 0 {
		return newFormatErrorf("buffer of %d bytes is too small for a %dx%d %s tile", len(buf), width, height, pixelType)
	}

	ifd.Put(TagLittleEndian, Bool(w.opts.LittleEndian))
	ifd.Put(TagBigTIFF, Bool(w.opts.BigTIFF))
	interleaved := ifd.PlanarConfiguration() == Chunky

	w.makeValidIFD(ifd, pixelType, nChannels)
	if err := ifd.Validate(); err != nil {
		return err
	}

	imageLength, _ := ifd.ImageLength()
	if int64(y+height) > imageLength {
		return newFormatErrorf("tile rows %d to %d exceed the image length %d", y, y+height, imageLength)
	}
	if rps := int(ifd.RowsPerStrip()[0]); y%rps != 0 || ((y+height)%rps != 0 && int64(y+height) != imageLength) {
		return newFormatErrorf("tile rows %d to %d do not fall on strip boundaries (RowsPerStrip %d); partial strips are not supported", y, y+height, rps)
	}

	layout := newStripLayout(int(ifd.RowsPerStrip()[0]), width, int(imageLength), bpp, nChannels, interleaved)
	strips := layout.pack(buf, y, height)
	if err := w.compressStrips(strips, ifd, layout); err != nil {
		return err
	}

	return w.writeImageIFD(ifd, no, strips, last)
}

// makeValidIFD sets the tags derived from the pixel data and fills in
// defaults for the descriptive tags the caller did not set.
func (w *Writer) makeValidIFD(ifd *IFD, pixelType PixelType, nChannels int) {
	bps := make(Shorts, nChannels)
	for i := range bps {
		bps[i] = uint16(8 * pixelType.BytesPerPixel())
	}
	ifd.Put(TagBitsPerSample, bps)
	if pixelType.IsFloatingPoint() {
		ifd.Put(TagSampleFormat, Short(sampleFormatIEEEFP))
	}
	if !ifd.Has(TagCompression) {
		ifd.Put(TagCompression, Short(uint16(CompressionNone)))
	}

	photometric := photometricRGB
	if nChannels == 1 {
		photometric = photometricBlackIsZero
		if ifd.Has(TagColorMap) {
			photometric = photometricPalette
		}
	}
	ifd.Put(TagPhotometricInterpretation, Short(uint16(photometric)))
	ifd.Put(TagSamplesPerPixel, Short(uint16(nChannels)))

	if !ifd.Has(TagXResolution) {
		ifd.Put(TagXResolution, Rat(1, 1))
	}
	if !ifd.Has(TagYResolution) {
		ifd.Put(TagYResolution, Rat(1, 1))
	}
	if !ifd.Has(TagSoftware) {
		ifd.Put(TagSoftware, ASCII(w.opts.Software))
	}
	if !ifd.Has(TagRowsPerStrip) {
		ifd.Put(TagRowsPerStrip, Long(1))
	}
	if !ifd.Has(TagImageDescription) {
		ifd.Put(TagImageDescription, ASCII(""))
	}
}

func (w *Writer) compressStrips(strips [][]byte, ifd *IFD, layout stripLayout) error {
	compression := ifd.Compression()
	for i, strip := range strips {
		if len(strip) == 0 {
			continue
		}
		if err := difference(strip, ifd); err != nil {
			return err
		}
		opts := CodecOptionsFor(ifd)
		opts.Height = layout.rowsInStrip(i)
		b, err := w.opts.Compressor.Compress(compression, strip, opts)
		if err != nil {
			return err
		}
		strips[i] = b
	}
	return nil
}

// writeImageIFD writes the directory for image no, then the strips, then
// rewrites the directory with the final strip offsets and byte counts.
func (w *Writer) writeImageIFD(ifd *IFD, no int, strips [][]byte, last bool) (err error) {
	out := w.out

	eof := out.seekEnd()
	if out.err != nil {
		return out.err
	}
	if eof == 0 {
		if err := w.WriteHeader(); err != nil {
			return err
		}
		eof = out.seekEnd()
	}

	var (
		fp        = eof
		following uint64 // the directory after this one, if it already exists
		relocate  int64  // field pointing at this directory, if it must move
	)

	if !w.opts.SequentialWrite {
		sr := newStreamReader(w.opts.R)
		defer sr.recoverStop(&err)

		h := sr.parseHeader()
		if h.bigTIFF != w.opts.BigTIFF || h.littleEndian != w.opts.LittleEndian {
			return newFormatError("existing file does not match the configured byte order or BigTIFF mode")
		}
		chain := sr.readIFDChain(h)
		if no < len(chain.offsets) {
			existing, entries, retyped := sr.readIFD(h, chain.offsets[no])
			for _, tag := range retyped {
				w.opts.Warnf("IFD %d: %s will be rewritten with a different value type", no, tag)
			}
			for _, tag := range []Tag{TagStripOffsets, TagStripByteCounts} {
				if v := existing.Get(tag); v != nil {
					ifd.Put(tag, v)
				}
			}
			fp = int64(chain.offsets[no])
			if no+1 < len(chain.offsets) {
				following = chain.offsets[no+1]
			}

			if w.directoryGrows(onDiskSize(h, chain.offsets[no], entries), ifd, len(strips)) {
				fp = eof
				relocate = h.firstIFDField()
				if no > 0 {
					relocate = sr.nextField(h, chain.offsets[no-1])
				}
			}
		}
	}

	offsets, byteCounts := w.stripBookkeeping(ifd, strips)

	out.seek(fp)
	if err := w.writeIFD(ifd, fp, 0); err != nil {
		return err
	}

	for i, strip := range strips {
		if len(strip) == 0 {
			// Nothing new for this strip, keep what is on disk.
			continue
		}
		offsets[i] = out.seekEnd()
		byteCounts[i] = int64(len(strip))
		out.write(strip)
	}
	ifd.Put(TagStripOffsets, offsets)
	ifd.Put(TagStripByteCounts, byteCounts)

	endFP := out.seekEnd()
	var next uint64
	switch {
	case last:
	case following != 0:
		next = following
	default:
		next = uint64(endFP)
	}

	out.seek(fp)
	if err := w.writeIFD(ifd, fp, next); err != nil {
		return err
	}

	if relocate != 0 {
		out.seek(relocate)
		out.writeOffset(uint64(fp), w.opts.BigTIFF)
	}

	out.seekEnd()
	return out.err
}

// stripBookkeeping returns the StripOffsets and StripByteCounts of ifd if they
// match the strip count, else fresh arrays with the byte counts taken from strips.
func (w *Writer) stripBookkeeping(ifd *IFD, strips [][]byte) (offsets, byteCounts Longs) {
	offsets, byteCounts = ifd.StripOffsets(), ifd.StripByteCounts()
	if len(byteCounts) != len(strips) {
		byteCounts = make(Longs, len(strips))
		for i, s := range strips {
			byteCounts[i] = int64(len(s))
		}
	}
	if len(offsets) != len(strips) {
		offsets = make(Longs, len(strips))
	}
	ifd.Put(TagStripOffsets, offsets)
	ifd.Put(TagStripByteCounts, byteCounts)
	return offsets, byteCounts
}

// onDiskSize returns the number of bytes the directory at offset occupies:
// the directory itself plus the values stored contiguously after it.
// Values stored elsewhere, e.g. appended by OverwriteIFDValue, do not count.
func onDiskSize(h header, offset uint64, entries []DirectoryEntry) int64 {
	var values []DirectoryEntry
	for _, e := range entries {
		if !e.IsInline(h.bigTIFF) {
			values = append(values, e)
		}
	}
	slices.SortFunc(values, func(a, b DirectoryEntry) int {
		return cmp.Compare(a.ValueOffset(), b.ValueOffset())
	})

	end := offset + uint64(directorySize(len(entries), h.bigTIFF))
	for _, e := range values {
		if e.ValueOffset() < offset+uint64(directorySize(len(entries), h.bigTIFF)) {
			continue
		}
		if e.ValueOffset() > end {
			break
		}
		end = max(end, e.ValueOffset()+e.ValueLength())
	}
	return int64(end - offset)
}

// directoryGrows reports whether ifd would need more than the size bytes
// the directory already occupies on disk.
func (w *Writer) directoryGrows(size int64, ifd *IFD, stripCount int) bool {
	probe := ifd.Clone()
	if len(probe.StripOffsets()) != stripCount {
		probe.Put(TagStripOffsets, make(Longs, stripCount))
	}
	if len(probe.StripByteCounts()) != stripCount {
		probe.Put(TagStripByteCounts, make(Longs, stripCount))
	}
	after, _, err := encodeIFD(probe, 0, 0, w.encodeOptions())
	if err != nil {
		return true
	}
	return int64(len(after)) > size
}
