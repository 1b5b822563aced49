// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gldriver

// flipRows packs top-down rows stride bytes apart into a tight bottom-up
// buffer.
func flipRows(pix []byte, stride, w, h int) []byte {
	row := w * 4
	out := make([]byte, row*h)
	for y := range h {
		copy(out[(h-1-y)*row:(h-y)*row], pix[y*stride:y*stride+row])
	}
	return out
}
