// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package haldriver

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/grcontext"
	"github.com/gogpu/ggctx/host"
	"github.com/gogpu/ggctx/surface"
)

func newTestInterface(t *testing.T) (*Host, host.Handle, *Interface) {
	t.Helper()
	h := newNoopHost(t)
	id := mustCreate(t, h, host.DefaultAttributes())
	iface, err := h.NewInterface(id)
	if err != nil {
		t.Fatalf("NewInterface() error = %v", err)
	}
	t.Cleanup(iface.Release)
	return h, id, iface.(*Interface)
}

func rgba(w, h int) driver.TargetDesc {
	return driver.TargetDesc{Width: w, Height: h, Format: gputypes.TextureFormatRGBA8Unorm, SampleCount: 1}
}

func TestNewInterfaceUnknownContext(t *testing.T) {
	h := newNoopHost(t)
	if _, err := h.NewInterface(42); !errors.Is(err, host.ErrUnknownContext) {
		t.Errorf("NewInterface(42) error = %v, want ErrUnknownContext", err)
	}
}

func TestInterfaceCaps(t *testing.T) {
	_, _, iface := newTestInterface(t)
	caps := iface.Caps()
	if err := caps.Validate(); err != nil {
		t.Errorf("Caps().Validate() error = %v", err)
	}
	for _, f := range []gputypes.TextureFormat{
		gputypes.TextureFormatRGBA8Unorm,
		gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatRGBA16Float,
	} {
		if !caps.Supports(f) {
			t.Errorf("Supports(%v) = false", f)
		}
	}
}

func TestInterfaceDefaultFramebuffer(t *testing.T) {
	_, _, iface := newTestInterface(t)

	if err := iface.BindDefaultFramebuffer(); err != nil {
		t.Errorf("BindDefaultFramebuffer() error = %v", err)
	}
	if err := iface.ClearDefaultFramebuffer(); err != nil {
		t.Errorf("ClearDefaultFramebuffer() error = %v", err)
	}

	desc := driver.TargetDesc{Width: 300, Height: 150, Format: gputypes.TextureFormatRGBA8Unorm, SampleCount: 4, StencilBits: 8}
	tgt, err := iface.WrapDefaultFramebuffer(desc)
	if err != nil {
		t.Fatalf("WrapDefaultFramebuffer() error = %v", err)
	}
	if !tgt.Borrowed() || tgt.SizeBytes() != 0 {
		t.Errorf("wrapped framebuffer borrowed=%v size=%d, want borrowed and unbudgeted", tgt.Borrowed(), tgt.SizeBytes())
	}
	tgt.Destroy()
	if err := iface.WritePixels(tgt, make([]byte, 300*150*4), 300*4); err != nil {
		t.Errorf("WritePixels() after borrowed Destroy error = %v", err)
	}

	tests := []struct {
		name string
		desc driver.TargetDesc
	}{
		{"format", driver.TargetDesc{Width: 300, Height: 150, Format: gputypes.TextureFormatRGBA16Float}},
		{"too large", driver.TargetDesc{Width: 301, Height: 150, Format: gputypes.TextureFormatRGBA8Unorm}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := iface.WrapDefaultFramebuffer(tt.desc); !errors.Is(err, driver.ErrFramebufferMismatch) {
				t.Errorf("WrapDefaultFramebuffer() error = %v, want ErrFramebufferMismatch", err)
			}
		})
	}
}

func TestInterfaceTargets(t *testing.T) {
	_, _, iface := newTestInterface(t)

	tgt, err := iface.CreateTarget(rgba(16, 8))
	if err != nil {
		t.Fatalf("CreateTarget() error = %v", err)
	}
	if got, want := tgt.SizeBytes(), uint64(16*8*4); got != want {
		t.Errorf("SizeBytes() = %d, want %d", got, want)
	}
	msaa, err := iface.CreateTarget(driver.TargetDesc{Width: 8, Height: 8, Format: gputypes.TextureFormatRGBA8Unorm, SampleCount: 4})
	if err != nil {
		t.Fatalf("CreateTarget(4 samples) error = %v", err)
	}
	if len(iface.owned) != 2 {
		t.Errorf("owned = %d, want 2", len(iface.owned))
	}

	pix := make([]byte, 16*8*4)
	if err := iface.WritePixels(tgt, pix, 16*4); err != nil {
		t.Errorf("WritePixels() error = %v", err)
	}
	if err := iface.ReadPixels(tgt, pix, 16*4); err != nil {
		t.Errorf("ReadPixels() error = %v", err)
	}

	msaa.Destroy()
	msaa.Destroy()
	if len(iface.owned) != 1 {
		t.Errorf("owned after Destroy = %d, want 1", len(iface.owned))
	}
	if err := iface.WritePixels(msaa, pix, 8*4); !errors.Is(err, driver.ErrReleased) {
		t.Errorf("WritePixels(destroyed) error = %v, want ErrReleased", err)
	}

	if _, err := iface.CreateTarget(driver.TargetDesc{Width: 8, Height: 8, Format: gputypes.TextureFormatDepth24PlusStencil8}); !errors.Is(err, driver.ErrUnsupportedFormat) {
		t.Errorf("CreateTarget(depth) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestInterfaceBlitUpload(t *testing.T) {
	_, _, iface := newTestInterface(t)

	half, err := iface.CreateTarget(driver.TargetDesc{Width: 8, Height: 4, Format: gputypes.TextureFormatRGBA16Float, SampleCount: 1})
	if err != nil {
		t.Fatalf("CreateTarget(RGBA16Float) error = %v", err)
	}
	plain, err := iface.CreateTarget(rgba(8, 4))
	if err != nil {
		t.Fatalf("CreateTarget() error = %v", err)
	}

	pix := make([]byte, 8*4*4)
	if err := iface.WritePixels(plain, pix, 8*4); err != nil {
		t.Fatalf("WritePixels(RGBA8) error = %v", err)
	}
	if iface.Pending() != 0 {
		t.Errorf("Pending() after RGBA8 upload = %d, want 0", iface.Pending())
	}
	if _, ok := iface.blit.pipelines[gputypes.TextureFormatRGBA8Unorm]; ok {
		t.Error("RGBA8 upload built a blit pipeline")
	}

	for range 2 {
		if err := iface.WritePixels(half, pix, 8*4); err != nil {
			t.Fatalf("WritePixels(RGBA16Float) error = %v", err)
		}
	}
	if iface.Pending() != 2 {
		t.Errorf("Pending() after half-float uploads = %d, want 2", iface.Pending())
	}
	if len(iface.blit.pipelines) != 1 {
		t.Errorf("blit pipelines = %d, want 1", len(iface.blit.pipelines))
	}
	for _, f := range iface.inflight {
		if f.upload == nil || f.upload.group == nil {
			t.Error("blit submission does not hold its upload resources")
		}
	}

	if err := iface.ReadPixels(half, pix, 8*4); err != nil {
		t.Errorf("ReadPixels() error = %v", err)
	}
	if err := iface.Submit(true); err != nil {
		t.Fatalf("Submit(true) error = %v", err)
	}
	if iface.Pending() != 0 {
		t.Errorf("Pending() after sync submit = %d, want 0", iface.Pending())
	}

	iface.Release()
	if iface.blit != nil {
		t.Error("blit pipeline survived Release")
	}
}

func TestInterfaceForeignTarget(t *testing.T) {
	_, _, a := newTestInterface(t)
	_, _, b := newTestInterface(t)

	tgt, err := a.CreateTarget(rgba(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if err := b.WritePixels(tgt, make([]byte, 64), 16); !errors.Is(err, driver.ErrForeignTarget) {
		t.Errorf("WritePixels(foreign) error = %v, want ErrForeignTarget", err)
	}
}

func TestInterfaceWrapTexture(t *testing.T) {
	h, id, iface := newTestInterface(t)
	tex, err := h.CreateTexture(id, 8, 8, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}

	tgt, err := iface.WrapTexture(tex, driver.TextureDesc{Width: 8, Height: 8, Format: gputypes.TextureFormatRGBA8Unorm})
	if err != nil {
		t.Fatalf("WrapTexture() error = %v", err)
	}
	if !tgt.Borrowed() {
		t.Error("wrapped texture is not borrowed")
	}
	if err := iface.ReadPixels(tgt, make([]byte, 8*8*4), 32); err != nil {
		t.Errorf("ReadPixels() error = %v", err)
	}

	tests := []struct {
		name    string
		id      uint32
		desc    driver.TextureDesc
		wantErr error
	}{
		{"unknown", tex + 1, driver.TextureDesc{Width: 8, Height: 8, Format: gputypes.TextureFormatRGBA8Unorm}, driver.ErrUnknownTexture},
		{"too large", tex, driver.TextureDesc{Width: 9, Height: 8, Format: gputypes.TextureFormatRGBA8Unorm}, driver.ErrInvalidSize},
		{"format", tex, driver.TextureDesc{Width: 8, Height: 8, Format: gputypes.TextureFormatBGRA8Unorm}, driver.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := iface.WrapTexture(tt.id, tt.desc); !errors.Is(err, tt.wantErr) {
				t.Errorf("WrapTexture() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInterfaceSubmit(t *testing.T) {
	_, _, iface := newTestInterface(t)

	for range 3 {
		if err := iface.Submit(false); err != nil {
			t.Fatalf("Submit(false) error = %v", err)
		}
	}
	if iface.Pending() != 3 {
		t.Errorf("Pending() = %d, want 3", iface.Pending())
	}
	if err := iface.Submit(true); err != nil {
		t.Fatalf("Submit(true) error = %v", err)
	}
	if iface.Pending() != 0 {
		t.Errorf("Pending() after sync submit = %d, want 0", iface.Pending())
	}
}

func TestInterfaceRelease(t *testing.T) {
	_, _, iface := newTestInterface(t)
	tgt, _ := iface.CreateTarget(rgba(4, 4))
	_ = iface.Submit(false)

	iface.Release()
	iface.Release()

	if iface.Pending() != 0 {
		t.Errorf("Pending() after Release = %d, want 0", iface.Pending())
	}
	if len(iface.owned) != 0 {
		t.Errorf("owned after Release = %d, want 0", len(iface.owned))
	}
	if !tgt.(*target).destroyed {
		t.Error("owned target survived Release")
	}
	if err := iface.Submit(false); !errors.Is(err, driver.ErrReleased) {
		t.Errorf("Submit() after Release error = %v, want ErrReleased", err)
	}
	if _, err := iface.CreateTarget(rgba(4, 4)); !errors.Is(err, driver.ErrReleased) {
		t.Errorf("CreateTarget() after Release error = %v, want ErrReleased", err)
	}
}

// TestResolverOnNoop tests the full resolve path on the noop backend.
func TestResolverOnNoop(t *testing.T) {
	h := newNoopHost(t)
	r := grcontext.NewResolver(h, h)

	id := mustCreate(t, h, host.DefaultAttributes())
	if err := r.MakeCurrent(id); err != nil {
		t.Fatal(err)
	}
	ctx, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if r.LastError() != grcontext.CodeOK {
		t.Errorf("LastError() = %v, want ok", r.LastError())
	}

	f := surface.NewFactory(r)
	s, err := f.MakeBestAvailable(300, 150)
	if err != nil {
		t.Fatal(err)
	}
	if s.Kind() != surface.KindOnscreen {
		t.Errorf("Kind() = %v, want onscreen", s.Kind())
	}
	s.Canvas().Clear(surface.ColorFromARGB(0xff336699))
	if err := ctx.FlushAndSubmit(true); err != nil {
		t.Errorf("FlushAndSubmit() error = %v", err)
	}
	_ = s.Close()

	rt, err := f.MakeRenderTarget(32, 32)
	if err != nil {
		t.Fatalf("MakeRenderTarget() error = %v", err)
	}
	if ctx.ResourceCacheUsage() != 32*32*4 {
		t.Errorf("ResourceCacheUsage() = %d, want %d", ctx.ResourceCacheUsage(), 32*32*4)
	}
	_ = rt.Close()

	iface := ctx.Interface().(*Interface)
	h.LoseContext(id)
	if !iface.released {
		t.Error("interface not released when the context was lost")
	}
	if r.Registry().Len() != 0 {
		t.Error("lost context still registered")
	}
}
