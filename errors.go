// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package tiffsave

import (
	"errors"
	"fmt"
)

// FormatError is returned when the input to an operation is malformed in a
// way the caller can correct: a missing buffer or directory, an unsupported
// layout, an unknown value kind, a missing tag or directory in an existing file,
// or an invalid file header.
type FormatError struct {
	msg string
	err error
}

func (e *FormatError) Error() string {
	if e.err == nil {
		return "tiffsave: " + e.msg
	}
	return fmt.Sprintf("tiffsave: %s: %s", e.msg, e.err)
}

func (e *FormatError) Unwrap() error {
	return e.err
}

// IsFormatError reports whether any error in err's tree is a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// UnknownTypeError is returned when a value type code read from a file
// is not a TIFF or BigTIFF field type.
type UnknownTypeError struct {
	Code uint16
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("tiffsave: unknown value type %d", e.Code)
}

func newFormatError(msg string) error {
	return &FormatError{msg: msg}
}

func newFormatErrorf(format string, args ...any) error {
	return &FormatError{msg: fmt.Sprintf(format, args...)}
}

func wrapFormatError(msg string, err error) error {
	return &FormatError{msg: msg, err: err}
}

// errStop is used to unwind a read sequence on the first I/O failure.
// The failure itself is kept in streamReader.readErr.
var errStop = errors.New("stop")
