// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

// Package tiffsave writes TIFF and BigTIFF image file directories and strip
// data, and can overwrite a single tag value in an existing file in place.
//
// The TIFF 6.0 specification is at https://www.itu.int/itudoc/itu-t/com16/tiff-fx/docs/tiff6.pdf
// and BigTIFF is described at https://www.awaresystems.be/imaging/tiff/bigtiff.html
package tiffsave
