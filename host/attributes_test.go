// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package host

import "testing"

func TestDefaultAttributes(t *testing.T) {
	a := DefaultAttributes()
	if !a.Alpha || !a.Depth || !a.Stencil || !a.Antialias || !a.PremultipliedAlpha {
		t.Errorf("DefaultAttributes() = %+v, want alpha/depth/stencil/antialias/premul enabled", a)
	}
	if a.PreserveDrawingBuffer {
		t.Error("DefaultAttributes().PreserveDrawingBuffer = true, want false")
	}
	if a.MajorVersion != 2 {
		t.Errorf("MajorVersion = %d, want 2", a.MajorVersion)
	}
}

func TestAttributesDerived(t *testing.T) {
	tests := []struct {
		name         string
		attrs        ContextAttributes
		wantW, wantH int
		wantSamples  int
		wantStencil  int
	}{
		{"zero", ContextAttributes{}, DefaultWidth, DefaultHeight, 1, 0},
		{"defaults", DefaultAttributes(), DefaultWidth, DefaultHeight, 4, 8},
		{"sized", ContextAttributes{Width: 64, Height: 32, Stencil: true}, 64, 32, 1, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := tt.attrs.Size()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Size() = (%d, %d), want (%d, %d)", w, h, tt.wantW, tt.wantH)
			}
			if got := tt.attrs.SampleCount(); got != tt.wantSamples {
				t.Errorf("SampleCount() = %d, want %d", got, tt.wantSamples)
			}
			if got := tt.attrs.StencilBits(); got != tt.wantStencil {
				t.Errorf("StencilBits() = %d, want %d", got, tt.wantStencil)
			}
		})
	}
}
