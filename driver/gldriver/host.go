// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build sdl

package gldriver

import (
	"fmt"
	"slices"
	"sync"
	"unsafe"

	"github.com/go-gl/gl/v2.1/gl"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/host"
	"github.com/gogpu/ggctx/internal/thread"
)

// Host manages GL contexts, one hidden SDL window each.
//
// Host implements host.Host, host.DestroyNotifier and driver.Factory.
type Host struct {
	mu          sync.Mutex
	next        host.Handle
	current     host.Handle
	contexts    map[host.Handle]*glContext
	subscribers []func(host.Handle)

	// loaded is set once GL entry points have been resolved.
	loaded bool
}

// glContext is the window and GL state behind one handle.
type glContext struct {
	handle host.Handle
	target string
	attrs  host.ContextAttributes
	window *sdl.Window
	gl     sdl.GLContext

	// textures are the ids handed out by CreateTexture.
	textures map[uint32]struct{}
}

// NewHost initializes SDL video.
func NewHost() (*Host, error) {
	err := thread.MainErr(func() error { return sdl.Init(sdl.INIT_VIDEO) })
	if err != nil {
		return nil, fmt.Errorf("gldriver: init SDL: %w", err)
	}
	return &Host{contexts: make(map[host.Handle]*glContext)}, nil
}

func setAttributes(attrs host.ContextAttributes) error {
	values := []struct {
		attr  sdl.GLattr
		value int
	}{
		{sdl.GL_CONTEXT_MAJOR_VERSION, 2},
		{sdl.GL_CONTEXT_MINOR_VERSION, 1},
		{sdl.GL_RED_SIZE, 8},
		{sdl.GL_GREEN_SIZE, 8},
		{sdl.GL_BLUE_SIZE, 8},
		{sdl.GL_ALPHA_SIZE, boolInt(attrs.Alpha, 8)},
		{sdl.GL_DEPTH_SIZE, boolInt(attrs.Depth, 24)},
		{sdl.GL_STENCIL_SIZE, attrs.StencilBits()},
		{sdl.GL_DOUBLEBUFFER, 1},
		{sdl.GL_MULTISAMPLEBUFFERS, boolInt(attrs.Antialias, 1)},
		{sdl.GL_MULTISAMPLESAMPLES, boolInt(attrs.Antialias, attrs.SampleCount())},
	}
	for _, v := range values {
		if err := sdl.GLSetAttribute(v.attr, v.value); err != nil {
			return fmt.Errorf("gldriver: set GL attribute %d: %w", v.attr, err)
		}
	}
	return nil
}

func boolInt(b bool, v int) int {
	if b {
		return v
	}
	return 0
}

// CreateContext implements host.Host. It opens a hidden window sized from
// attrs. The previously current context stays current.
func (h *Host) CreateContext(target string, attrs host.ContextAttributes) (host.Handle, error) {
	c := &glContext{target: target, attrs: attrs, textures: make(map[uint32]struct{})}
	w, ht := attrs.Size()
	err := thread.MainErr(func() error {
		if err := setAttributes(attrs); err != nil {
			return err
		}
		window, err := sdl.CreateWindow(target, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
			int32(w), int32(ht), sdl.WINDOW_OPENGL|sdl.WINDOW_HIDDEN)
		if err != nil {
			return fmt.Errorf("gldriver: create window: %w", err)
		}
		glc, err := window.GLCreateContext()
		if err != nil {
			_ = window.Destroy()
			return fmt.Errorf("gldriver: create GL context: %w", err)
		}
		c.window, c.gl = window, glc
		return nil
	})
	if err != nil {
		return host.NoContext, fmt.Errorf("%w: %w", host.ErrContextCreation, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.loaded {
		if err := gl.InitWithProcAddrFunc(sdl.GLGetProcAddress); err != nil {
			c.destroy()
			return host.NoContext, fmt.Errorf("%w: gldriver: load GL: %w", host.ErrContextCreation, err)
		}
		h.loaded = true
	}
	h.next++
	for h.next == host.NoContext || h.contexts[h.next] != nil {
		h.next++
	}
	c.handle = h.next
	h.contexts[c.handle] = c
	if prev, ok := h.contexts[h.current]; ok {
		prev.bind()
	}
	ggctx.Logger().Debug("gldriver: context created",
		"handle", c.handle, "target", target, "version", gl.GoStr(gl.GetString(gl.VERSION)))
	return c.handle, nil
}

// bind makes c the GL-current context of the calling thread.
func (c *glContext) bind() {
	thread.MainMaybe(func() {
		if err := c.window.GLMakeCurrent(c.gl); err != nil {
			ggctx.Logger().Warn("gldriver: make current failed", "handle", c.handle, "error", err)
		}
	})
}

func (c *glContext) destroy() {
	thread.MainMaybe(func() {
		sdl.GLDeleteContext(c.gl)
		_ = c.window.Destroy()
	})
}

func (h *Host) lookup(id host.Handle) (*glContext, error) {
	if id == host.NoContext {
		return nil, host.ErrInvalidHandle
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.contexts[id]
	if !ok {
		return nil, host.ErrUnknownContext
	}
	return c, nil
}

// MakeContextCurrent implements host.Host.
func (h *Host) MakeContextCurrent(id host.Handle) error {
	c, err := h.lookup(id)
	if err != nil {
		return err
	}
	c.bind()
	h.mu.Lock()
	h.current = id
	h.mu.Unlock()
	return nil
}

// CurrentContext implements host.Host.
func (h *Host) CurrentContext() host.Handle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// DestroyContext implements host.Host. Subscribers run while the context
// is still alive.
func (h *Host) DestroyContext(id host.Handle) error {
	if id == host.NoContext {
		return host.ErrInvalidHandle
	}
	h.mu.Lock()
	c, ok := h.contexts[id]
	if !ok {
		h.mu.Unlock()
		return host.ErrUnknownContext
	}
	delete(h.contexts, id)
	wasCurrent := h.current == id
	if wasCurrent {
		h.current = host.NoContext
	}
	subs := slices.Clone(h.subscribers)
	h.mu.Unlock()

	for _, fn := range subs {
		fn(id)
	}
	c.bind()
	for tex := range c.textures {
		gl.DeleteTextures(1, &tex)
	}
	c.destroy()
	if !wasCurrent {
		if cur, err := h.lookup(h.CurrentContext()); err == nil {
			cur.bind()
		}
	}
	return nil
}

// OnContextDestroyed implements host.DestroyNotifier.
func (h *Host) OnContextDestroyed(fn func(host.Handle)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers = append(h.subscribers, fn)
}

// Close destroys every context and shuts SDL down.
func (h *Host) Close() {
	h.mu.Lock()
	ids := make([]host.Handle, 0, len(h.contexts))
	for id := range h.contexts {
		ids = append(ids, id)
	}
	h.mu.Unlock()
	for _, id := range ids {
		_ = h.DestroyContext(id)
	}
	thread.MainMaybe(sdl.Quit)
}

// CreateTexture allocates an RGBA8 texture on context id that the caller
// may hand to an importer by its GL name. It is released with the context.
func (h *Host) CreateTexture(id host.Handle, width, height int, pix []byte) (uint32, error) {
	c, err := h.lookup(id)
	if err != nil {
		return 0, err
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", driver.ErrInvalidSize, width, height)
	}
	if pix != nil && len(pix) < width*height*4 {
		return 0, fmt.Errorf("%w: %d bytes for %dx%d", driver.ErrInvalidSize, len(pix), width, height)
	}
	var tex uint32
	h.within(c, func() {
		gl.GenTextures(1, &tex)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		var ptr unsafe.Pointer
		if pix != nil {
			ptr = gl.Ptr(&pix[0])
		}
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, ptr)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		err = glError("create texture")
	})
	if err != nil {
		return 0, err
	}
	c.textures[tex] = struct{}{}
	return tex, nil
}

// within runs fn with c GL-current and rebinds the host's current context
// afterwards.
func (h *Host) within(c *glContext, fn func()) {
	cur := h.CurrentContext()
	if cur != c.handle {
		c.bind()
	}
	fn()
	if cur != c.handle && cur != host.NoContext {
		if prev, err := h.lookup(cur); err == nil {
			prev.bind()
		}
	}
}

// NewInterface implements driver.Factory.
func (h *Host) NewInterface(id host.Handle) (driver.Interface, error) {
	c, err := h.lookup(id)
	if err != nil {
		return nil, err
	}
	return newInterface(h, c), nil
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("gldriver: %s: GL error 0x%x", op, code)
	}
	return nil
}

var (
	_ host.Host            = (*Host)(nil)
	_ host.DestroyNotifier = (*Host)(nil)
	_ driver.Factory       = (*Host)(nil)
)
