// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides drawing surfaces bound to GPU contexts or CPU
// memory.
//
// # Surface Kinds
//
//   - Onscreen: wraps the current context's default framebuffer
//   - Render target: a budgeted offscreen texture from the resource cache
//   - Raster: an *image.RGBA, no context needed
//
// Every surface exposes a [Canvas]. GPU surfaces draw on a CPU staging image
// that is uploaded to the GPU target when the surface or its context is
// flushed.
//
// # Best Available
//
// [Factory.MakeBestAvailable] tries registered backends by priority:
// onscreen first, raster last. A GPU failure silently falls back to raster,
// so a valid size always yields a surface.
//
// # Color Settings
//
// [ColorSettingsFor] maps a color space to storage: sRGB or unspecified
// selects 8-bit RGBA; anything else selects half-float RGBA.
//
// # Texture Import
//
// [Factory.ImportTexture] wraps an externally-owned texture as a read-only
// [Image]. Closing the image never releases the texture.
package surface
