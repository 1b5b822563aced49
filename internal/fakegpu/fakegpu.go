// Package fakegpu provides an in-memory host and driver for tests.
//
// The fake keeps pixel contents on the CPU so readback is exact, and exposes
// switches to inject interface and context creation failures.
package fakegpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/host"
)

// ErrInjected is returned by operations a test asked to fail.
var ErrInjected = errors.New("fakegpu: injected failure")

// Context is the host-side state of a fake context.
type Context struct {
	Handle      host.Handle
	Target      string
	Attrs       host.ContextAttributes
	Framebuffer driver.Framebuffer
	textures    map[uint32]driver.TextureDesc
}

// Host is a fake host that also acts as a driver.Factory.
type Host struct {
	// FailInterface makes NewInterface fail.
	FailInterface bool
	// BadCaps makes NewInterface return an interface with unusable caps.
	BadCaps bool
	// FailDestroy is returned from DestroyContext after the context is
	// removed.
	FailDestroy error
	// Formats overrides the renderable formats of new interfaces.
	Formats []gputypes.TextureFormat

	// Interfaces counts successful NewInterface calls.
	Interfaces int

	next        host.Handle
	nextTexture uint32
	current     host.Handle
	contexts    map[host.Handle]*Context
	subscribers []func(host.Handle)
}

// NewHost returns an empty fake host.
func NewHost() *Host {
	return &Host{contexts: make(map[host.Handle]*Context)}
}

// CreateContext implements host.Host.
func (h *Host) CreateContext(target string, attrs host.ContextAttributes) (host.Handle, error) {
	h.next++
	for h.contexts[h.next] != nil {
		h.next++
	}
	return h.CreateContextAt(h.next, target, attrs)
}

// CreateContextAt creates a context with a caller-chosen handle value.
func (h *Host) CreateContextAt(id host.Handle, target string, attrs host.ContextAttributes) (host.Handle, error) {
	if id == host.NoContext {
		return host.NoContext, host.ErrInvalidHandle
	}
	if _, ok := h.contexts[id]; ok {
		return host.NoContext, fmt.Errorf("%w: handle %d in use", host.ErrContextCreation, id)
	}
	w, ht := attrs.Size()
	h.contexts[id] = &Context{
		Handle: id,
		Target: target,
		Attrs:  attrs,
		Framebuffer: driver.Framebuffer{
			Width:       w,
			Height:      ht,
			SampleCount: attrs.SampleCount(),
			StencilBits: attrs.StencilBits(),
			Format:      gputypes.TextureFormatRGBA8Unorm,
		},
		textures: make(map[uint32]driver.TextureDesc),
	}
	return id, nil
}

// MakeContextCurrent implements host.Host.
func (h *Host) MakeContextCurrent(id host.Handle) error {
	if id == host.NoContext {
		return host.ErrInvalidHandle
	}
	if _, ok := h.contexts[id]; !ok {
		return host.ErrUnknownContext
	}
	h.current = id
	return nil
}

// ClearCurrent leaves no context current.
func (h *Host) ClearCurrent() { h.current = host.NoContext }

// CurrentContext implements host.Host.
func (h *Host) CurrentContext() host.Handle { return h.current }

// DestroyContext implements host.Host.
func (h *Host) DestroyContext(id host.Handle) error {
	if _, ok := h.contexts[id]; !ok {
		return host.ErrUnknownContext
	}
	delete(h.contexts, id)
	if h.current == id {
		h.current = host.NoContext
	}
	return h.FailDestroy
}

// LoseContext destroys id out of band and notifies subscribers.
func (h *Host) LoseContext(id host.Handle) {
	delete(h.contexts, id)
	if h.current == id {
		h.current = host.NoContext
	}
	for _, fn := range h.subscribers {
		fn(id)
	}
}

// OnContextDestroyed implements host.DestroyNotifier.
func (h *Host) OnContextDestroyed(fn func(host.Handle)) {
	h.subscribers = append(h.subscribers, fn)
}

// Context returns the host-side state for id.
func (h *Host) Context(id host.Handle) (*Context, bool) {
	c, ok := h.contexts[id]
	return c, ok
}

// Framebuffer implements driver.FramebufferReporter.
func (h *Host) Framebuffer(id host.Handle) (driver.Framebuffer, error) {
	c, ok := h.contexts[id]
	if !ok {
		return driver.Framebuffer{}, host.ErrUnknownContext
	}
	return c.Framebuffer, nil
}

// Len returns the number of live contexts.
func (h *Host) Len() int { return len(h.contexts) }

// AddTexture registers an externally-owned texture on context id and
// returns its native id.
func (h *Host) AddTexture(id host.Handle, w, ht int) uint32 {
	c, ok := h.contexts[id]
	if !ok {
		return 0
	}
	h.nextTexture++
	c.textures[h.nextTexture] = driver.TextureDesc{Width: w, Height: ht, Format: gputypes.TextureFormatRGBA8Unorm}
	return h.nextTexture
}

// NewInterface implements driver.Factory.
func (h *Host) NewInterface(id host.Handle) (driver.Interface, error) {
	if h.FailInterface {
		return nil, ErrInjected
	}
	c, ok := h.contexts[id]
	if !ok {
		return nil, host.ErrUnknownContext
	}
	caps := driver.Caps{
		Name:           "fake",
		MaxTextureSize: 8192,
		MaxSamples:     4,
		Formats:        []gputypes.TextureFormat{gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA16Float},
	}
	if h.Formats != nil {
		caps.Formats = h.Formats
	}
	if h.BadCaps {
		caps.MaxTextureSize = 0
	}
	h.Interfaces++
	return &Interface{ctx: c, caps: caps}, nil
}

var (
	_ host.Host            = (*Host)(nil)
	_ host.DestroyNotifier = (*Host)(nil)
	_ driver.Factory       = (*Host)(nil)
)
