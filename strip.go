// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

// stripLayout is the strip geometry of one image write.
type stripLayout struct {
	rowsPerStrip int
	width        int
	imageLength  int
	bytesPerPix  int
	channels     int
	interleaved  bool

	// stripSize is the uncompressed size of a full strip.
	stripSize int
	// stripCount includes all channels.
	stripCount int
}

func newStripLayout(rowsPerStrip, width, imageLength, bytesPerPix, channels int, interleaved bool) stripLayout {
	l := stripLayout{
		rowsPerStrip: rowsPerStrip,
		width:        width,
		imageLength:  imageLength,
		bytesPerPix:  bytesPerPix,
		channels:     channels,
		interleaved:  interleaved,
		stripSize:    rowsPerStrip * width * bytesPerPix,
		stripCount:   (imageLength + rowsPerStrip - 1) / rowsPerStrip,
	}
	if interleaved {
		l.stripSize *= channels
	} else {
		l.stripCount *= channels
	}
	return l
}

func (l stripLayout) stripsPerChannel() int {
	if l.interleaved {
		return l.stripCount
	}
	return l.stripCount / l.channels
}

// rowsInStrip returns the number of image rows in strip i.
func (l stripLayout) rowsInStrip(i int) int {
	first := (i % l.stripsPerChannel()) * l.rowsPerStrip
	return min(l.rowsPerStrip, l.imageLength-first)
}

// pack copies the rows y to y+height held in buf into per-strip buffers.
// buf is chunky if the layout is interleaved, else one plane per channel.
// Strips without rows in the tile are left empty.
func (l stripLayout) pack(buf []byte, y, height int) [][]byte {
	strips := make([][]byte, l.stripCount)
	perChannel := l.stripsPerChannel()
	bpp := l.bytesPerPix
	planeSize := l.width * height * bpp

	for row := range height {
		strip := (y + row) / l.rowsPerStrip
		for col := range l.width {
			for c := range l.channels {
				s := strip
				if !l.interleaved {
					s = c*perChannel + strip
				}
				if strips[s] == nil {
					strips[s] = make([]byte, 0, l.stripSize)
				}
				for n := range bpp {
					var off int
					if l.interleaved {
						off = row*l.width*bpp*l.channels + col*bpp*l.channels + c*bpp + n
					} else {
						off = c*planeSize + row*l.width*bpp + col*bpp + n
					}
					strips[s] = append(strips[s], buf[off])
				}
			}
		}
	}

	return strips
}
