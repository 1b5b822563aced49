// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gldriver

import (
	"bytes"
	"testing"
)

func TestFlipRows(t *testing.T) {
	// Two rows of one pixel each, with four bytes of row padding.
	pix := []byte{
		1, 2, 3, 4, 0xEE, 0xEE, 0xEE, 0xEE,
		5, 6, 7, 8,
	}
	got := flipRows(pix, 8, 1, 2)
	want := []byte{5, 6, 7, 8, 1, 2, 3, 4}
	if !bytes.Equal(got, want) {
		t.Errorf("flipRows = %v, want %v", got, want)
	}
}

func TestFlipRowsSingleRow(t *testing.T) {
	pix := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	got := flipRows(pix, 8, 2, 1)
	if !bytes.Equal(got, pix) {
		t.Errorf("flipRows = %v, want %v", got, pix)
	}
	got[0] = 9
	if pix[0] != 1 {
		t.Error("flipRows shares memory with its input")
	}
}
