// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package haldriver

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/host"
)

// ErrNoAdapter is returned when a backend exposes no adapters.
var ErrNoAdapter = errors.New("haldriver: no GPU adapters found")

// Backend creates HAL instances. Registered wgpu backends and noop.API
// satisfy it.
type Backend interface {
	CreateInstance(desc *hal.InstanceDescriptor) (hal.Instance, error)
}

// Option configures a Host.
type Option func(*Host)

// WithBackend makes every context open its device on b.
func WithBackend(b Backend) Option {
	return func(h *Host) { h.backend = b }
}

// WithFramebufferFormat sets the color format of default framebuffers.
func WithFramebufferFormat(f gputypes.TextureFormat) Option {
	return func(h *Host) { h.fbFormat = f }
}

// Host manages contexts backed by wgpu HAL devices. Each context owns a
// default framebuffer (color texture plus optional multisample color and
// depth/stencil attachments) and a table of importable textures.
//
// Host implements host.Host, host.DestroyNotifier and driver.Factory.
// It is safe for concurrent use.
type Host struct {
	backend  Backend
	fbFormat gputypes.TextureFormat

	mu          sync.Mutex
	next        host.Handle
	current     host.Handle
	contexts    map[host.Handle]*hostContext
	subscribers []func(host.Handle)
}

// NewHost creates a host. Without options it opens devices on the
// registered Vulkan backend with RGBA8 framebuffers.
func NewHost(opts ...Option) *Host {
	h := &Host{
		fbFormat: gputypes.TextureFormatRGBA8Unorm,
		contexts: make(map[host.Handle]*hostContext),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// hostContext is the device state behind one handle.
type hostContext struct {
	handle  host.Handle
	target  string
	attrs   host.ContextAttributes
	adapter string

	// instance is nil when the device belongs to an external provider.
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	fb       framebuffer

	mu          sync.Mutex
	textures    map[uint32]*texture
	nextTexture uint32
}

// texture is an externally-owned texture registered for import.
type texture struct {
	tex    hal.Texture
	width  int
	height int
	format gputypes.TextureFormat
}

// openDevice creates an instance and opens a device on its preferred
// adapter.
func (h *Host) openDevice() (*hostContext, error) {
	b := h.backend
	if b == nil {
		registered, ok := hal.GetBackend(gputypes.BackendVulkan)
		if !ok {
			return nil, errors.New("haldriver: vulkan backend not available")
		}
		b = registered
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("haldriver: create instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("haldriver: open device: %w", err)
	}
	return &hostContext{
		adapter:  selected.Info.Name,
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
	}, nil
}

// CreateContext implements host.Host. It opens a new device and allocates
// the default framebuffer described by attrs.
func (h *Host) CreateContext(target string, attrs host.ContextAttributes) (host.Handle, error) {
	c, err := h.openDevice()
	if err != nil {
		return host.NoContext, fmt.Errorf("%w: %w", host.ErrContextCreation, err)
	}
	c.target, c.attrs = target, attrs
	if err := c.fb.create(c.device, attrs, h.fbFormat); err != nil {
		c.device.Destroy()
		c.instance.Destroy()
		return host.NoContext, fmt.Errorf("%w: %w", host.ErrContextCreation, err)
	}
	return h.add(c), nil
}

// AttachProvider registers a context on a device owned by p, such as a
// gogpu window. p must expose HalDevice() and HalQueue() returning
// hal.Device and hal.Queue. The device outlives the context.
func (h *Host) AttachProvider(target string, attrs host.ContextAttributes, p gpucontext.DeviceProvider) (host.Handle, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := p.(halProvider)
	if !ok {
		return host.NoContext, fmt.Errorf("%w: provider does not expose HAL types", host.ErrContextCreation)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return host.NoContext, fmt.Errorf("%w: provider HalDevice is not hal.Device", host.ErrContextCreation)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return host.NoContext, fmt.Errorf("%w: provider HalQueue is not hal.Queue", host.ErrContextCreation)
	}

	format := h.fbFormat
	if f := p.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		format = f
	}
	c := &hostContext{
		target:  target,
		attrs:   attrs,
		adapter: "external",
		device:  device,
		queue:   queue,
	}
	if err := c.fb.create(device, attrs, format); err != nil {
		return host.NoContext, fmt.Errorf("%w: %w", host.ErrContextCreation, err)
	}
	return h.add(c), nil
}

func (h *Host) add(c *hostContext) host.Handle {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.next++
	for h.next == host.NoContext || h.contexts[h.next] != nil {
		h.next++
	}
	c.handle = h.next
	c.textures = make(map[uint32]*texture)
	h.contexts[c.handle] = c
	ggctx.Logger().Debug("haldriver: context created",
		"handle", c.handle, "target", c.target, "adapter", c.adapter)
	return c.handle
}

func (h *Host) lookup(id host.Handle) (*hostContext, error) {
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
	if _, err := h.lookup(id); err != nil {
		return err
	}
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

// DestroyContext implements host.Host. Subscribers are notified before the
// device is torn down.
func (h *Host) DestroyContext(id host.Handle) error {
	c, subs, err := h.detach(id)
	if err != nil {
		return err
	}
	for _, fn := range subs {
		fn(id)
	}
	c.destroy()
	return nil
}

// LoseContext tears id down as if the device was lost. Subscribers learn
// of it through OnContextDestroyed.
func (h *Host) LoseContext(id host.Handle) {
	if err := h.DestroyContext(id); err != nil {
		return
	}
	ggctx.Logger().Warn("haldriver: context lost", "handle", id)
}

func (h *Host) detach(id host.Handle) (*hostContext, []func(host.Handle), error) {
	if id == host.NoContext {
		return nil, nil, host.ErrInvalidHandle
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.contexts[id]
	if !ok {
		return nil, nil, host.ErrUnknownContext
	}
	delete(h.contexts, id)
	if h.current == id {
		h.current = host.NoContext
	}
	return c, slices.Clone(h.subscribers), nil
}

// OnContextDestroyed implements host.DestroyNotifier.
func (h *Host) OnContextDestroyed(fn func(host.Handle)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers = append(h.subscribers, fn)
}

// Len returns the number of live contexts.
func (h *Host) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.contexts)
}

// Close destroys every context.
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
}

// Framebuffer returns the default framebuffer of id.
func (h *Host) Framebuffer(id host.Handle) (driver.Framebuffer, error) {
	c, err := h.lookup(id)
	if err != nil {
		return driver.Framebuffer{}, err
	}
	return c.fb.info, nil
}

// CreateTexture allocates a texture on context id that the caller owns and
// may hand to an importer by its native id.
func (h *Host) CreateTexture(id host.Handle, width, height int, format gputypes.TextureFormat) (uint32, error) {
	c, err := h.lookup(id)
	if err != nil {
		return 0, err
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", driver.ErrInvalidSize, width, height)
	}
	if driver.BytesPerPixel(format) == 0 {
		return 0, fmt.Errorf("%w: %v", driver.ErrUnsupportedFormat, format)
	}
	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "imported",
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage: gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopySrc |
			gputypes.TextureUsageCopyDst | gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return 0, fmt.Errorf("haldriver: create texture: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextTexture++
	c.textures[c.nextTexture] = &texture{tex: tex, width: width, height: height, format: format}
	return c.nextTexture, nil
}

// UploadTexture fills texture tex of context id from RGBA8 premultiplied
// rows stride bytes apart.
func (h *Host) UploadTexture(id host.Handle, tex uint32, pix []byte, stride int) error {
	c, err := h.lookup(id)
	if err != nil {
		return err
	}
	t, ok := c.texture(tex)
	if !ok {
		return fmt.Errorf("%w: %d", driver.ErrUnknownTexture, tex)
	}
	if stride < t.width*4 || len(pix) < stride*(t.height-1)+t.width*4 {
		return fmt.Errorf("%w: %d bytes with stride %d for %dx%d", driver.ErrInvalidSize, len(pix), stride, t.width, t.height)
	}
	return writeTexture(c.queue, t.tex, t.format, pix, stride, t.width, t.height)
}

// DeleteTexture releases texture tex of context id.
func (h *Host) DeleteTexture(id host.Handle, tex uint32) error {
	c, err := h.lookup(id)
	if err != nil {
		return err
	}
	c.mu.Lock()
	t, ok := c.textures[tex]
	delete(c.textures, tex)
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", driver.ErrUnknownTexture, tex)
	}
	c.device.DestroyTexture(t.tex)
	return nil
}

func (c *hostContext) texture(id uint32) (*texture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.textures[id]
	return t, ok
}

// destroy releases the framebuffer, registered textures and, when owned,
// the device and instance.
func (c *hostContext) destroy() {
	c.mu.Lock()
	for id, t := range c.textures {
		c.device.DestroyTexture(t.tex)
		delete(c.textures, id)
	}
	c.mu.Unlock()
	c.fb.destroy(c.device)
	if c.instance != nil {
		c.device.Destroy()
		c.instance.Destroy()
	}
	ggctx.Logger().Debug("haldriver: context destroyed", "handle", c.handle)
}

// NewInterface implements driver.Factory.
func (h *Host) NewInterface(id host.Handle) (driver.Interface, error) {
	c, err := h.lookup(id)
	if err != nil {
		return nil, err
	}
	return newInterface(c)
}

var (
	_ host.Host                  = (*Host)(nil)
	_ host.DestroyNotifier       = (*Host)(nil)
	_ driver.Factory             = (*Host)(nil)
	_ driver.FramebufferReporter = (*Host)(nil)
)
