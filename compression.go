// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"

	"github.com/hhrutter/lzw"
)

// Compression is the value of the Compression tag.
type Compression uint16

const (
	CompressionNone       Compression = 1
	CompressionLZW        Compression = 5
	CompressionDeflate    Compression = 8
	CompressionPackBits   Compression = 32773
	CompressionDeflateOld Compression = 32946
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionLZW:
		return "LZW"
	case CompressionDeflate:
		return "Deflate"
	case CompressionPackBits:
		return "PackBits"
	case CompressionDeflateOld:
		return "DeflateOld"
	default:
		return fmt.Sprintf("Compression(%d)", uint16(c))
	}
}

// CodecOptions describes the strip handed to a Compressor.
type CodecOptions struct {
	Width        int
	Height       int // rows in this strip
	Channels     int // channels stored in this strip
	BitsPerPixel int // bits per sample
	LittleEndian bool
	Interleaved  bool
}

// RowLength returns the number of bytes in one row of the strip.
func (o CodecOptions) RowLength() int {
	return o.Width * o.Channels * ((o.BitsPerPixel + 7) / 8)
}

// CodecOptionsFor returns the codec options for a strip of d.
// Height is set to RowsPerStrip; the writer adjusts it for a short last strip.
func CodecOptionsFor(d *IFD) CodecOptions {
	width, _ := d.ImageWidth()
	interleaved := d.PlanarConfiguration() == Chunky
	bps := d.BitsPerSample()
	channels := 1
	if interleaved {
		channels = d.SamplesPerPixel()
	}
	return CodecOptions{
		Width:        int(width),
		Height:       int(d.RowsPerStrip()[0]),
		Channels:     channels,
		BitsPerPixel: bps[0],
		LittleEndian: d.IsLittleEndian(),
		Interleaved:  interleaved,
	}
}

// Compressor compresses one strip with the given scheme.
type Compressor interface {
	Compress(c Compression, b []byte, opts CodecOptions) ([]byte, error)
}

// CompressorFunc adapts a function to Compressor.
type CompressorFunc func(c Compression, b []byte, opts CodecOptions) ([]byte, error)

func (f CompressorFunc) Compress(c Compression, b []byte, opts CodecOptions) ([]byte, error) {
	return f(c, b, opts)
}

// DefaultCompressor handles None, LZW, Deflate and PackBits.
var DefaultCompressor Compressor = CompressorFunc(compress)

func compress(c Compression, b []byte, opts CodecOptions) ([]byte, error) {
	var (
		buf bytes.Buffer
		dst io.WriteCloser
	)
	switch c {
	case CompressionNone:
		return b, nil
	case CompressionLZW:
		dst = lzw.NewWriter(&buf, true)
	case CompressionDeflate, CompressionDeflateOld:
		dst = zlib.NewWriter(&buf)
	case CompressionPackBits:
		rowLen := opts.RowLength()
		if rowLen <= 0 {
			rowLen = len(b)
		}
		for len(b) > 0 {
			n := min(rowLen, len(b))
			packBits(&buf, b[:n])
			b = b[n:]
		}
		return buf.Bytes(), nil
	default:
		return nil, newFormatErrorf("unsupported compression %s", c)
	}
	if _, err := dst.Write(b); err != nil {
		return nil, err
	}
	if err := dst.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// packBits encodes one row. Runs never exceed 128 bytes.
func packBits(dst *bytes.Buffer, src []byte) {
	for i := 0; i < len(src); {
		j := i + 1
		for j < len(src) && j-i < 128 && src[j] == src[i] {
			j++
		}
		if j-i > 1 {
			dst.WriteByte(byte(1 - (j - i)))
			dst.WriteByte(src[i])
			i = j
			continue
		}
		for j < len(src) && j-i < 128 && !(j+1 < len(src) && src[j] == src[j+1]) {
			j++
		}
		dst.WriteByte(byte(j - i - 1))
		dst.Write(src[i:j])
		i = j
	}
}

// difference applies the horizontal predictor of d to one strip in place.
func difference(b []byte, d *IFD) error {
	predictor := d.Predictor()
	if predictor == 1 {
		return nil
	}
	if predictor != 2 {
		return newFormatErrorf("unknown Predictor %d", predictor)
	}
	bps := d.BitsPerSample()
	width, err := d.ImageWidth()
	if err != nil {
		return err
	}
	little := d.IsLittleEndian()
	size := (bps[0] + 7) / 8
	if size == 0 || size > 8 {
		return newFormatErrorf("cannot apply predictor to %d bit samples", bps[0])
	}
	stride := len(bps)
	if d.PlanarConfiguration() == Planar || bps[len(bps)-1] == 0 {
		stride = 1
	}
	stride *= size

	for i := len(b) - size; i >= 0; i -= size {
		if int64(i/stride)%width == 0 {
			continue
		}
		v := bytesToUint(b[i:i+size], little) - bytesToUint(b[i-stride:i-stride+size], little)
		uintToBytes(v, b[i:i+size], little)
	}
	return nil
}

func bytesToUint(b []byte, little bool) uint64 {
	var v uint64
	for i := range b {
		shift := i
		if !little {
			shift = len(b) - 1 - i
		}
		v |= uint64(b[i]) << (8 * shift)
	}
	return v
}

func uintToBytes(v uint64, b []byte, little bool) {
	for i := range b {
		shift := i
		if !little {
			shift = len(b) - 1 - i
		}
		b[i] = byte(v >> (8 * shift))
	}
}
