// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package grcontext

import (
	"errors"
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/host"
	"github.com/gogpu/ggctx/internal/fakegpu"
)

// fakeClock is a manually advanced clock.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestContext(t *testing.T, opts ...Option) (*DirectContext, *fakegpu.Interface) {
	t.Helper()
	h := fakegpu.NewHost()
	id, err := h.CreateContext("#canvas", host.DefaultAttributes())
	if err != nil {
		t.Fatal(err)
	}
	iface, err := h.NewInterface(id)
	if err != nil {
		t.Fatal(err)
	}
	ctx, err := NewDirectContext(iface, opts...)
	if err != nil {
		t.Fatalf("NewDirectContext() error = %v", err)
	}
	return ctx, iface.(*fakegpu.Interface)
}

func rgbaDesc(w, h int) driver.TargetDesc {
	return driver.TargetDesc{Width: w, Height: h, Format: gputypes.TextureFormatRGBA8Unorm, SampleCount: 1}
}

func TestNewDirectContextNil(t *testing.T) {
	if _, err := NewDirectContext(nil); !errors.Is(err, ErrNilInterface) {
		t.Errorf("NewDirectContext(nil) error = %v, want ErrNilInterface", err)
	}
}

func TestCacheLimit(t *testing.T) {
	ctx, _ := newTestContext(t)
	if got := ctx.ResourceCacheLimit(); got != DefaultCacheLimit {
		t.Errorf("default limit = %d, want %d", got, DefaultCacheLimit)
	}
	for _, n := range []uint64{0, 1, 4096, 1 << 30} {
		ctx.SetResourceCacheLimit(n)
		if got := ctx.ResourceCacheLimit(); got != n {
			t.Errorf("SetResourceCacheLimit(%d) then limit = %d", n, got)
		}
	}

	ctx, _ = newTestContext(t, WithCacheLimit(1024))
	if got := ctx.ResourceCacheLimit(); got != 1024 {
		t.Errorf("WithCacheLimit(1024) limit = %d", got)
	}
}

// TestCacheLimitAdvisory tests that allocations beyond the limit succeed.
func TestCacheLimitAdvisory(t *testing.T) {
	ctx, _ := newTestContext(t, WithCacheLimit(100))

	a, err := ctx.CreateRenderTarget(rgbaDesc(10, 10))
	if err != nil {
		t.Fatalf("CreateRenderTarget() error = %v", err)
	}
	b, err := ctx.CreateRenderTarget(rgbaDesc(10, 10))
	if err != nil {
		t.Fatalf("CreateRenderTarget() over budget error = %v", err)
	}
	if got := ctx.ResourceCacheUsage(); got != 800 {
		t.Errorf("usage = %d, want 800", got)
	}

	// Locked targets survive cleanup.
	ctx.PerformDeferredCleanup(0)
	if got := ctx.ResourceCacheUsage(); got != 800 {
		t.Errorf("usage after cleanup of locked targets = %d, want 800", got)
	}

	ctx.ReleaseRenderTarget(a)
	ctx.ReleaseRenderTarget(b)
	if got := ctx.CacheStats().PurgeableBytes; got != 800 {
		t.Errorf("purgeable = %d, want 800", got)
	}
}

func TestFreeGPUResources(t *testing.T) {
	ctx, iface := newTestContext(t)
	for i := 0; i < 3; i++ {
		tgt, err := ctx.CreateRenderTarget(rgbaDesc(16+i, 16))
		if err != nil {
			t.Fatal(err)
		}
		ctx.ReleaseRenderTarget(tgt)
	}
	if ctx.ResourceCacheUsage() == 0 {
		t.Fatal("usage = 0 before free")
	}

	ctx.FreeGPUResources()

	if got := ctx.ResourceCacheUsage(); got != 0 {
		t.Errorf("usage after FreeGPUResources = %d, want 0", got)
	}
	if iface.Live != 0 {
		t.Errorf("live targets = %d, want 0", iface.Live)
	}
	if got := ctx.CacheStats().Purged; got != 3 {
		t.Errorf("purged = %d, want 3", got)
	}
}

func TestScratchReuse(t *testing.T) {
	ctx, iface := newTestContext(t)

	first, err := ctx.CreateRenderTarget(rgbaDesc(32, 32))
	if err != nil {
		t.Fatal(err)
	}
	ctx.ReleaseRenderTarget(first)

	other, err := ctx.CreateRenderTarget(rgbaDesc(64, 32))
	if err != nil {
		t.Fatal(err)
	}
	if other == first {
		t.Error("scratch reused across sizes")
	}

	again, err := ctx.CreateRenderTarget(rgbaDesc(32, 32))
	if err != nil {
		t.Fatal(err)
	}
	if again != first {
		t.Error("matching scratch target was not reused")
	}
	if iface.Live != 2 {
		t.Errorf("live targets = %d, want 2", iface.Live)
	}
}

func TestPerformDeferredCleanup(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	ctx, _ := newTestContext(t, WithClock(clock.now))

	old, err := ctx.CreateRenderTarget(rgbaDesc(8, 8))
	if err != nil {
		t.Fatal(err)
	}
	ctx.ReleaseRenderTarget(old)

	clock.advance(10 * time.Second)
	recent, err := ctx.CreateRenderTarget(rgbaDesc(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	ctx.ReleaseRenderTarget(recent)

	clock.advance(time.Second)
	ctx.PerformDeferredCleanup(5 * time.Second)

	if got := ctx.ResourceCacheUsage(); got != 64 {
		t.Errorf("usage = %d, want 64 (only the recent target)", got)
	}
	if !old.(*fakegpu.Target).Destroyed() {
		t.Error("stale target not destroyed")
	}
	if recent.(*fakegpu.Target).Destroyed() {
		t.Error("recent target destroyed")
	}
}

func TestPerformDeferredCleanupTrimsToLimit(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	ctx, _ := newTestContext(t, WithClock(clock.now), WithCacheLimit(1<<20))

	var targets []driver.Target
	for i := 0; i < 4; i++ {
		tgt, err := ctx.CreateRenderTarget(rgbaDesc(10, 10+i))
		if err != nil {
			t.Fatal(err)
		}
		targets = append(targets, tgt)
	}
	for _, tgt := range targets {
		clock.advance(time.Millisecond)
		ctx.ReleaseRenderTarget(tgt)
	}

	ctx.SetResourceCacheLimit(900)
	if got := ctx.CacheStats().Resources; got != 4 {
		t.Fatalf("SetResourceCacheLimit released resources eagerly: %d left", got)
	}
	ctx.PerformDeferredCleanup(time.Hour)
	if got := ctx.ResourceCacheUsage(); got > 900 {
		t.Errorf("usage = %d, want <= 900", got)
	}
	if !targets[0].(*fakegpu.Target).Destroyed() {
		t.Error("least recently used target survived")
	}
}

func TestFlushAndSubmit(t *testing.T) {
	ctx, iface := newTestContext(t)

	f := &countingFlusher{}
	ctx.MarkPending(f)
	ctx.MarkPending(f)

	if err := ctx.FlushAndSubmit(true); err != nil {
		t.Fatalf("FlushAndSubmit() error = %v", err)
	}
	if f.n != 1 {
		t.Errorf("flushed = %d, want 1", f.n)
	}
	if iface.Submits != 1 || iface.SyncSubmits != 1 {
		t.Errorf("submits = %d/%d, want 1/1", iface.Submits, iface.SyncSubmits)
	}

	if err := ctx.Flush(); err != nil {
		t.Fatal(err)
	}
	if f.n != 1 {
		t.Error("Flush() re-flushed a clean surface")
	}
	if err := ctx.Submit(false); err != nil {
		t.Fatal(err)
	}
	if iface.SyncSubmits != 1 {
		t.Error("Submit(false) waited")
	}
}

func TestFlushJoinsErrors(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.MarkPending(&countingFlusher{err: fakegpu.ErrInjected})
	if err := ctx.Flush(); !errors.Is(err, fakegpu.ErrInjected) {
		t.Errorf("Flush() error = %v, want injected error", err)
	}
}

func TestPrepareDefaultFramebuffer(t *testing.T) {
	ctx, iface := newTestContext(t)
	desc := rgbaDesc(host.DefaultWidth, host.DefaultHeight)

	t1, err := ctx.WrapDefaultFramebuffer(desc)
	if err != nil {
		t.Fatal(err)
	}
	t2, err := ctx.WrapDefaultFramebuffer(desc)
	if err != nil {
		t.Fatal(err)
	}
	if t1 != t2 {
		t.Error("framebuffer wrap not cached")
	}

	if err := ctx.PrepareDefaultFramebuffer(); err != nil {
		t.Fatal(err)
	}
	if iface.Binds != 1 || iface.Clears != 1 {
		t.Errorf("binds/clears = %d/%d, want 1/1", iface.Binds, iface.Clears)
	}
	if ctx.Resets() != 1 {
		t.Errorf("resets = %d, want 1", ctx.Resets())
	}
	t3, err := ctx.WrapDefaultFramebuffer(desc)
	if err != nil {
		t.Fatal(err)
	}
	if t3 == t1 {
		t.Error("ResetState did not invalidate the framebuffer wrap")
	}
}

func TestAbandon(t *testing.T) {
	ctx, iface := newTestContext(t)
	locked, err := ctx.CreateRenderTarget(rgbaDesc(8, 8))
	if err != nil {
		t.Fatal(err)
	}

	ctx.Abandon()
	ctx.Abandon()

	if !ctx.Abandoned() {
		t.Fatal("Abandoned() = false")
	}
	if !iface.Released {
		t.Error("interface not released")
	}
	if !locked.(*fakegpu.Target).Destroyed() {
		t.Error("locked target survived abandonment")
	}
	if got := ctx.ResourceCacheUsage(); got != 0 {
		t.Errorf("usage = %d, want 0", got)
	}
	if _, err := ctx.CreateRenderTarget(rgbaDesc(8, 8)); !errors.Is(err, ErrAbandoned) {
		t.Errorf("CreateRenderTarget() error = %v, want ErrAbandoned", err)
	}
	if err := ctx.PrepareDefaultFramebuffer(); !errors.Is(err, ErrAbandoned) {
		t.Errorf("PrepareDefaultFramebuffer() error = %v, want ErrAbandoned", err)
	}

	// Budget operations are no-ops.
	ctx.SetResourceCacheLimit(1)
	ctx.FreeGPUResources()
	ctx.PerformDeferredCleanup(0)
	if err := ctx.FlushAndSubmit(true); err != nil {
		t.Errorf("FlushAndSubmit() on abandoned context error = %v", err)
	}
	if iface.Submits != 0 {
		t.Error("abandoned context submitted work")
	}
}

func TestCacheStatsString(t *testing.T) {
	s := CacheStats{LimitBytes: 256 << 20, UsedBytes: 8 << 20, PurgeableBytes: 2 << 20, Resources: 3, Purged: 1}
	want := "Cache[8/256 MB used, 2 MB purgeable, 3 resources, 1 purged]"
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

type countingFlusher struct {
	n   int
	err error
}

func (f *countingFlusher) FlushPending() error {
	f.n++
	return f.err
}
