// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package haldriver implements host contexts and the driver interface on
// gogpu/wgpu HAL devices.
//
// Every context created by Host opens its own device, unless it is attached
// to a device owned by a gpucontext.DeviceProvider. Its default framebuffer
// is a single-sample color texture, resolved from a multisample attachment
// when the context is antialiased, plus a Depth24PlusStencil8 attachment
// when it has depth or stencil.
//
// For tests and headless runs pass noop.API{}:
//
//	h := haldriver.NewHost(haldriver.WithBackend(noop.API{}))
//	r := grcontext.NewResolver(h, h)
package haldriver
