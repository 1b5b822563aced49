package fakegpu

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggctx/driver"
)

// Interface is an in-memory driver.Interface.
type Interface struct {
	ctx  *Context
	caps driver.Caps

	// Counters observed by tests.
	Binds       int
	Clears      int
	Submits     int
	SyncSubmits int
	Live        int
	Released    bool
}

// Target is an in-memory driver.Target.
type Target struct {
	owner     *Interface
	width     int
	height    int
	format    gputypes.TextureFormat
	size      uint64
	borrowed  bool
	destroyed bool
	pix       []byte
}

func (t *Target) Width() int                     { return t.width }
func (t *Target) Height() int                    { return t.height }
func (t *Target) Format() gputypes.TextureFormat { return t.format }
func (t *Target) SizeBytes() uint64              { return t.size }
func (t *Target) Borrowed() bool                 { return t.borrowed }

// Destroyed reports whether Destroy released owned memory.
func (t *Target) Destroyed() bool { return t.destroyed }

// Destroy implements driver.Target.
func (t *Target) Destroy() {
	if t.destroyed || t.borrowed {
		return
	}
	t.destroyed = true
	t.owner.Live--
}

// Caps implements driver.Interface.
func (i *Interface) Caps() driver.Caps { return i.caps }

// BindDefaultFramebuffer implements driver.Interface.
func (i *Interface) BindDefaultFramebuffer() error {
	if i.Released {
		return driver.ErrReleased
	}
	i.Binds++
	return nil
}

// ClearDefaultFramebuffer implements driver.Interface.
func (i *Interface) ClearDefaultFramebuffer() error {
	if i.Released {
		return driver.ErrReleased
	}
	i.Clears++
	return nil
}

// DefaultFramebuffer implements driver.Interface.
func (i *Interface) DefaultFramebuffer() driver.Framebuffer { return i.ctx.Framebuffer }

// WrapDefaultFramebuffer implements driver.Interface.
func (i *Interface) WrapDefaultFramebuffer(desc driver.TargetDesc) (driver.Target, error) {
	if i.Released {
		return nil, driver.ErrReleased
	}
	if err := i.caps.ValidateTarget(desc); err != nil {
		return nil, err
	}
	fb := i.ctx.Framebuffer
	if desc.Format != fb.Format {
		return nil, fmt.Errorf("%w: format %v, framebuffer %v", driver.ErrFramebufferMismatch, desc.Format, fb.Format)
	}
	return &Target{
		owner:    i,
		width:    desc.Width,
		height:   desc.Height,
		format:   desc.Format,
		borrowed: true,
		pix:      make([]byte, desc.Width*desc.Height*4),
	}, nil
}

// CreateTarget implements driver.Interface.
func (i *Interface) CreateTarget(desc driver.TargetDesc) (driver.Target, error) {
	if i.Released {
		return nil, driver.ErrReleased
	}
	if err := i.caps.ValidateTarget(desc); err != nil {
		return nil, err
	}
	i.Live++
	return &Target{
		owner:  i,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		size:   driver.TargetBytes(desc.Width, desc.Height, desc.Format, desc.SampleCount),
		pix:    make([]byte, desc.Width*desc.Height*4),
	}, nil
}

// WrapTexture implements driver.Interface.
func (i *Interface) WrapTexture(id uint32, desc driver.TextureDesc) (driver.Target, error) {
	if i.Released {
		return nil, driver.ErrReleased
	}
	known, ok := i.ctx.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", driver.ErrUnknownTexture, id)
	}
	if desc.Width > known.Width || desc.Height > known.Height {
		return nil, fmt.Errorf("%w: %dx%d exceeds texture %dx%d",
			driver.ErrInvalidSize, desc.Width, desc.Height, known.Width, known.Height)
	}
	return &Target{
		owner:    i,
		width:    desc.Width,
		height:   desc.Height,
		format:   desc.Format,
		borrowed: true,
		pix:      make([]byte, desc.Width*desc.Height*4),
	}, nil
}

func (i *Interface) own(t driver.Target) (*Target, error) {
	ft, ok := t.(*Target)
	if !ok || ft.owner != i {
		return nil, driver.ErrForeignTarget
	}
	return ft, nil
}

// WritePixels implements driver.Interface.
func (i *Interface) WritePixels(t driver.Target, pix []byte, stride int) error {
	ft, err := i.own(t)
	if err != nil {
		return err
	}
	row := ft.width * 4
	for y := 0; y < ft.height; y++ {
		copy(ft.pix[y*row:(y+1)*row], pix[y*stride:y*stride+row])
	}
	return nil
}

// ReadPixels implements driver.Interface.
func (i *Interface) ReadPixels(t driver.Target, dst []byte, stride int) error {
	ft, err := i.own(t)
	if err != nil {
		return err
	}
	row := ft.width * 4
	for y := 0; y < ft.height; y++ {
		copy(dst[y*stride:y*stride+row], ft.pix[y*row:(y+1)*row])
	}
	return nil
}

// Submit implements driver.Interface.
func (i *Interface) Submit(wait bool) error {
	if i.Released {
		return driver.ErrReleased
	}
	i.Submits++
	if wait {
		i.SyncSubmits++
	}
	return nil
}

// Release implements driver.Interface.
func (i *Interface) Release() {
	i.Released = true
}

var (
	_ driver.Interface = (*Interface)(nil)
	_ driver.Target    = (*Target)(nil)
)
