// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sync"
)

// byteOrder is implemented by binary.BigEndian and binary.LittleEndian.
type byteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

func orderOf(littleEndian bool) byteOrder {
	if littleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

var bufferPool = &sync.Pool{
	New: func() any {
		return &bytes.Buffer{}
	},
}

func getBuffer() *bytes.Buffer {
	return bufferPool.Get().(*bytes.Buffer)
}

func putBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufferPool.Put(buf)
}

// streamReader is a wrapper around a ReadSeeker that provides methods to read binary data.
// A failed read stores the error in readErr and panics with errStop;
// exported entry points recover with recoverStop.
// Note that this is not thread safe.
type streamReader struct {
	r         io.ReadSeeker
	byteOrder binary.ByteOrder

	buf [8]byte

	readErr error
}

func newStreamReader(r io.ReadSeeker) *streamReader {
	return &streamReader{
		r:         r,
		byteOrder: binary.BigEndian,
	}
}

// recoverStop must be deferred directly.
func (e *streamReader) recoverStop(errp *error) {
	if r := recover(); r != nil {
		if r != errStop {
			panic(r)
		}
		if *errp == nil {
			*errp = e.readErr
		}
	}
}

func (e *streamReader) stop(err error) {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = wrapFormatError("unexpected end of file", err)
	}
	e.readErr = err
	panic(errStop)
}

func (e *streamReader) readNIntoBuf(n int) []byte {
	if _, err := io.ReadFull(e.r, e.buf[:n]); err != nil {
		e.stop(err)
	}
	return e.buf[:n]
}

func (e *streamReader) read2() uint16 {
	return e.byteOrder.Uint16(e.readNIntoBuf(2))
}

func (e *streamReader) read4() uint32 {
	return e.byteOrder.Uint32(e.readNIntoBuf(4))
}

func (e *streamReader) read8() uint64 {
	return e.byteOrder.Uint64(e.readNIntoBuf(8))
}

// readOffset reads a 4 or 8 byte offset or count field.
func (e *streamReader) readOffset(bigTIFF bool) uint64 {
	if bigTIFF {
		return e.read8()
	}
	return uint64(e.read4())
}

func (e *streamReader) readBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := io.ReadFull(e.r, b); err != nil {
		e.stop(err)
	}
	return b
}

func (e *streamReader) pos() int64 {
	n, err := e.r.Seek(0, io.SeekCurrent)
	if err != nil {
		e.stop(err)
	}
	return n
}

func (e *streamReader) seek(pos int64) {
	if _, err := e.r.Seek(pos, io.SeekStart); err != nil {
		e.stop(err)
	}
}

// length returns the stream length and leaves the position unchanged.
func (e *streamReader) length() int64 {
	pos := e.pos()
	n, err := e.r.Seek(0, io.SeekEnd)
	if err != nil {
		e.stop(err)
	}
	e.seek(pos)
	return n
}

// streamWriter writes binary data in the configured byte order.
// The first error is kept and all further calls are no-ops.
// Note that this is not thread safe.
type streamWriter struct {
	w         io.WriteSeeker
	byteOrder byteOrder

	buf []byte
	err error
}

func (e *streamWriter) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *streamWriter) write1(v byte) {
	e.buf = append(e.buf[:0], v)
	e.write(e.buf)
}

func (e *streamWriter) write2(v uint16) {
	e.buf = e.byteOrder.AppendUint16(e.buf[:0], v)
	e.write(e.buf)
}

func (e *streamWriter) write4(v uint32) {
	e.buf = e.byteOrder.AppendUint32(e.buf[:0], v)
	e.write(e.buf)
}

func (e *streamWriter) write8(v uint64) {
	e.buf = e.byteOrder.AppendUint64(e.buf[:0], v)
	e.write(e.buf)
}

// writeOffset writes a 4 or 8 byte offset or count field.
func (e *streamWriter) writeOffset(v uint64, bigTIFF bool) {
	if bigTIFF {
		e.write8(v)
	} else {
		e.write4(uint32(v))
	}
}

func (e *streamWriter) seek(pos int64) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Seek(pos, io.SeekStart)
}

func (e *streamWriter) seekEnd() int64 {
	if e.err != nil {
		return 0
	}
	var n int64
	n, e.err = e.w.Seek(0, io.SeekEnd)
	return n
}

func (e *streamWriter) pos() int64 {
	if e.err != nil {
		return 0
	}
	var n int64
	n, e.err = e.w.Seek(0, io.SeekCurrent)
	return n
}
